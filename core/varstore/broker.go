package varstore

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"

	"github.com/fxamacker/cbor/v2"

	"github.com/keymacro/keymacro/core/invariant"
)

// request is the wire shape of a single store operation, CBOR-encoded on
// the socket.
type request struct {
	Op    string `cbor:"op"`
	Name  string `cbor:"name"`
	Value string `cbor:"value,omitempty"`
}

// response is the wire shape of a store operation's result.
type response struct {
	Value string `cbor:"value,omitempty"`
	Ok    bool   `cbor:"ok"`
	Err   string `cbor:"err,omitempty"`
}

const (
	opGet = "get"
	opSet = "set"
)

// Broker exposes a Store over a Unix domain socket so that a `set` in one
// process is observable by an `ifeq` in another.
type Broker struct {
	store    Store
	listener net.Listener

	mu     sync.Mutex
	closed bool
}

// NewBroker wraps store and listens on the given Unix socket path.
func NewBroker(store Store, socketPath string) (*Broker, error) {
	invariant.NotNil(store, "store")

	ln, err := net.Listen("unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("varstore: listen %s: %w", socketPath, err)
	}
	return &Broker{store: store, listener: ln}, nil
}

// Serve accepts connections until ctx is cancelled or Close is called.
// ctx governs the broker's own lifetime (the owning process shutting the
// IPC endpoint down), never an in-flight macro's execution; macros have
// no cancellation API.
func (b *Broker) Serve(ctx context.Context) error {
	invariant.ContextNotBackground(ctx, "Broker.Serve")

	go func() {
		<-ctx.Done()
		_ = b.Close()
	}()

	for {
		conn, err := b.listener.Accept()
		if err != nil {
			b.mu.Lock()
			closed := b.closed
			b.mu.Unlock()
			if closed {
				return nil
			}
			return fmt.Errorf("varstore: accept: %w", err)
		}
		go b.handleConn(conn)
	}
}

// Close stops the broker from accepting further connections.
func (b *Broker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	return b.listener.Close()
}

func (b *Broker) handleConn(conn net.Conn) {
	defer conn.Close()

	dec := cbor.NewDecoder(conn)
	enc := cbor.NewEncoder(conn)

	for {
		var req request
		if err := dec.Decode(&req); err != nil {
			return
		}

		resp := b.apply(req)
		if err := enc.Encode(resp); err != nil {
			return
		}
	}
}

func (b *Broker) apply(req request) response {
	switch req.Op {
	case opGet:
		v, ok := b.store.Get(req.Name)
		return response{Value: v, Ok: ok}
	case opSet:
		b.store.Set(req.Name, req.Value)
		return response{Ok: true}
	default:
		return response{Err: fmt.Sprintf("varstore: unknown op %q", req.Op)}
	}
}

// Client is a Store backed by a Broker reachable over a Unix socket.
// Each call dials a fresh connection; the broker and the macro language's
// access pattern (occasional set/ifeq, never a hot loop) make connection
// pooling unnecessary.
type Client struct {
	socketPath string
}

// NewClient builds a Client targeting socketPath.
func NewClient(socketPath string) *Client {
	return &Client{socketPath: socketPath}
}

// Get implements Store by round-tripping to the broker.
func (c *Client) Get(name string) (string, bool) {
	resp, err := c.call(request{Op: opGet, Name: name})
	if err != nil {
		return "", false
	}
	return resp.Value, resp.Ok
}

// Set implements Store by round-tripping to the broker. Errors are
// swallowed to match Store's no-error signature; a macro's `set` never
// aborts a run.
func (c *Client) Set(name, value string) {
	_, _ = c.call(request{Op: opSet, Name: name, Value: value})
}

func (c *Client) call(req request) (response, error) {
	conn, err := net.Dial("unix", c.socketPath)
	if err != nil {
		return response{}, fmt.Errorf("varstore: dial %s: %w", c.socketPath, err)
	}
	defer conn.Close()

	if err := cbor.NewEncoder(conn).Encode(req); err != nil {
		return response{}, fmt.Errorf("varstore: encode request: %w", err)
	}

	var resp response
	if err := cbor.NewDecoder(conn).Decode(&resp); err != nil {
		return response{}, fmt.Errorf("varstore: decode response: %w", err)
	}
	if resp.Err != "" {
		return response{}, errors.New(resp.Err)
	}
	return resp, nil
}

var _ Store = (*Local)(nil)
var _ Store = (*Client)(nil)
