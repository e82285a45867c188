// Package config provides the configuration-reader collaborator:
// typed knobs for macro evaluation (currently only the inter-keystroke
// sleep interval), with per-mapping overrides shadowing a global default.
//
// Raw option documents are validated against a JSON Schema before being
// decoded; the schema is compiled once at package init and reused for
// every ParseOptions call.
package config

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// DefaultKeystrokeSleepMs is used when neither a per-mapping override
// nor the global config sets keystroke_sleep_ms. Macro timing targets
// human-perceptible delays, on the order of tens of milliseconds.
const DefaultKeystrokeSleepMs = 20

// Options holds the typed knobs the evaluator consults. Fields are
// pointers so "unset" (fall through to the next layer) is distinguishable
// from "explicitly zero".
type Options struct {
	KeystrokeSleepMs *int `json:"keystroke_sleep_ms,omitempty"`
}

const schemaJSON = `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "object",
	"properties": {
		"keystroke_sleep_ms": {
			"type": "integer",
			"minimum": 0,
			"maximum": 60000
		}
	},
	"additionalProperties": false
}`

var optionsSchema = mustCompileSchema()

func mustCompileSchema() *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020

	const url = "schema://keymacro-config.json"
	if err := compiler.AddResource(url, strings.NewReader(schemaJSON)); err != nil {
		panic(fmt.Sprintf("config: invalid embedded schema: %v", err))
	}

	s, err := compiler.Compile(url)
	if err != nil {
		panic(fmt.Sprintf("config: schema compile failed: %v", err))
	}
	return s
}

// ParseOptions validates raw JSON against the config schema and decodes it
// into Options. Unknown fields and out-of-range sleep values are rejected
// before a bad config can ever reach a running macro.
func ParseOptions(raw []byte) (Options, error) {
	var doc interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return Options{}, errors.Wrap(err, "config: invalid json")
	}

	if err := optionsSchema.Validate(doc); err != nil {
		return Options{}, errors.Wrap(err, "config")
	}

	var opts Options
	if err := json.Unmarshal(raw, &opts); err != nil {
		return Options{}, errors.Wrap(err, "config: decode")
	}
	return opts, nil
}

// Store resolves keystroke_sleep_ms (and future knobs) with per-mapping
// overrides shadowing a process-wide global, shadowed in turn by the
// package default. It is safe for concurrent use.
type Store struct {
	mu        sync.RWMutex
	global    Options
	overrides map[string]Options
}

// NewStore builds a Store with the given global options.
func NewStore(global Options) *Store {
	return &Store{
		global:    global,
		overrides: make(map[string]Options),
	}
}

// SetGlobal replaces the process-wide default options.
func (s *Store) SetGlobal(opts Options) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.global = opts
}

// SetOverride installs per-mapping options that shadow the global default
// for the given mapping ID.
func (s *Store) SetOverride(mappingID string, opts Options) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overrides[mappingID] = opts
}

// ClearOverride removes a mapping's override, falling back to global.
func (s *Store) ClearOverride(mappingID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.overrides, mappingID)
}

// KeystrokeSleepMs resolves the per-keystroke sleep for mappingID: the
// mapping's override if set, else the global value if set, else
// DefaultKeystrokeSleepMs. mappingID may be empty for unmapped/ad-hoc
// evaluation (e.g. the CLI tool), in which case only global/default apply.
func (s *Store) KeystrokeSleepMs(mappingID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if mappingID != "" {
		if o, ok := s.overrides[mappingID]; ok && o.KeystrokeSleepMs != nil {
			return *o.KeystrokeSleepMs
		}
	}
	if s.global.KeystrokeSleepMs != nil {
		return *s.global.KeystrokeSleepMs
	}
	return DefaultKeystrokeSleepMs
}
