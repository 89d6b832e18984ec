package swapprovider

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/arkade-os/boltz-swap-go/swap"
	"github.com/arkade-os/boltz-swap-go/swaperr"
)

// connectTimeout bounds the WebSocket handshake (spec §5 "Timeouts:
// WebSocket connect 15 s").
const connectTimeout = 15 * time.Second

// StatusUpdate is a single decoded server-pushed update (spec §6.3:
// `{event:"update", args:[{id, status, error?, transaction?}]}`).
type StatusUpdate struct {
	ID          string
	Status      swap.Status
	Error       string
	Transaction string
}

// wireEnvelope is the outer shape of every WebSocket message in both
// directions, grounded on lnwire/message.go's single-type-tag dispatch
// (there a 2-byte binary MessageType, here a JSON "op"/"event"
// string) -- one field selects how the rest of the payload decodes.
type wireEnvelope struct {
	Op      string            `json:"op,omitempty"`
	Channel string            `json:"channel,omitempty"`
	Args    []string          `json:"args,omitempty"`
	Event   string            `json:"event,omitempty"`
	RawArgs []json.RawMessage `json:"-"`
}

// subscribeChannel is the only channel name the client subscribes to
// (spec §4.2).
const subscribeChannel = "swap.update"

// inboundEnvelope mirrors wireEnvelope but keeps Args as raw JSON so
// update payload objects can be decoded into wireStatus.
type inboundEnvelope struct {
	Event string            `json:"event"`
	Args  []json.RawMessage `json:"args"`
}

// Stream is a single WebSocket connection to the provider's
// /v2/ws endpoint. One Stream belongs to one monitor (spec §4.2:
// "single connection per monitor"). The engines' waitAndClaim calls
// open no Stream of their own; they wait on the monitor that owns
// this one.
type Stream struct {
	conn *websocket.Conn

	updates chan StatusUpdate
	errs    chan error

	closeOnce sync.Once
	done      chan struct{}
}

// Dial opens a WebSocket connection to the client's derived
// /v2/ws endpoint and starts its read pump. The caller owns the
// returned Stream and must call Close when done.
func (c *Client) Dial(ctx context.Context) (*Stream, error) {
	dialCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	conn, _, err := websocket.DefaultDialer.DialContext(dialCtx, c.wsURL(), nil)
	if err != nil {
		return nil, &swaperr.NetworkError{Cause: err}
	}

	s := &Stream{
		conn:    conn,
		updates: make(chan StatusUpdate, 32),
		errs:    make(chan error, 1),
		done:    make(chan struct{}),
	}
	go s.readPump()
	return s, nil
}

// Subscribe sends a subscribe op for every id in one burst (spec
// §4.4's open handler: "subscribe to every registered id in one
// burst").
func (s *Stream) Subscribe(ids []string) error {
	env := wireEnvelope{Op: "subscribe", Channel: subscribeChannel, Args: ids}
	return s.conn.WriteJSON(env)
}

// Unsubscribe sends an unsubscribe op for ids, used once a swap
// reaches a terminal status (spec §4.4 step 5).
func (s *Stream) Unsubscribe(ids []string) error {
	env := wireEnvelope{Op: "unsubscribe", Channel: subscribeChannel, Args: ids}
	return s.conn.WriteJSON(env)
}

// Updates returns the channel of decoded status updates. Closed when
// the underlying connection closes.
func (s *Stream) Updates() <-chan StatusUpdate { return s.updates }

// Errs returns the channel the read pump reports its terminal error
// on, exactly once, before Updates is closed.
func (s *Stream) Errs() <-chan error { return s.errs }

// Close closes the underlying connection. Idempotent.
func (s *Stream) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)
		err = s.conn.Close()
	})
	return err
}

// readPump decodes incoming frames and dispatches "update" events onto
// updates, generalizing htlcswitch.Switch's htlcPlex dispatch loop (a
// single goroutine draining one transport into typed channels) from a
// binary packet switch to a JSON event stream.
func (s *Stream) readPump() {
	defer close(s.updates)

	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			log.Debugf("websocket read pump exiting: %v", err)
			select {
			case s.errs <- err:
			default:
			}
			return
		}

		var env inboundEnvelope
		if err := json.Unmarshal(raw, &env); err != nil {
			// Malformed frame: skip it rather than tearing down the
			// whole connection over one bad message.
			continue
		}
		if env.Event != "update" {
			continue
		}

		for _, rawArg := range env.Args {
			var ws wireStatus
			if err := json.Unmarshal(rawArg, &ws); err != nil {
				continue
			}
			id, status, err := ws.decode()
			if err != nil {
				continue
			}
			select {
			case s.updates <- StatusUpdate{
				ID:          id,
				Status:      status,
				Error:       ws.Error,
				Transaction: ws.Transaction,
			}:
			case <-s.done:
				return
			}
		}
	}
}
