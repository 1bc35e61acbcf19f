package control

import (
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/merrow/brim/internal/logging"
	"go.uber.org/zap"
)

const (
	// DefaultTimeout is the deadline applied to each read and write
	DefaultTimeout = 10 * time.Second

	// DefaultHandshakeTimeout bounds the WebSocket dial
	DefaultHandshakeTimeout = 5 * time.Second

	// DefaultMaxRetries is the default number of retry attempts for failed requests
	DefaultMaxRetries = 3

	// DefaultRetryDelay is the default delay between retry attempts
	DefaultRetryDelay = 1 * time.Second

	// DefaultMaxRetryDelay is the maximum delay for exponential backoff
	DefaultMaxRetryDelay = 30 * time.Second
)

// Client talks the control protocol with a single brim instance.
// Requests are serialized; one request is in flight at a time.
type Client struct {
	// URL is the control endpoint (e.g., "ws://192.168.1.30:8470/ctl")
	URL string

	// Dialer performs the WebSocket handshake
	Dialer *websocket.Dialer

	// Timeout is the per-message read and write deadline
	Timeout time.Duration

	// MaxRetries is the maximum number of retry attempts for failed requests
	MaxRetries int

	// RetryDelay is the initial delay between retry attempts
	RetryDelay time.Duration

	// MaxRetryDelay is the maximum delay for exponential backoff
	MaxRetryDelay time.Duration

	// UseExponentialBackoff enables exponential backoff for retries
	UseExponentialBackoff bool

	mu    sync.Mutex
	conn  *websocket.Conn
	seq   uint64
	hello *HelloPayload
}

// NewClient creates a control client for an instance address
// ip: Instance IP address (e.g., "192.168.1.30")
// port: Instance control port (typically 8470)
func NewClient(ip string, port int) *Client {
	return NewClientWithURL(fmt.Sprintf("ws://%s:%d%s", ip, port, Path))
}

// NewClientWithURL creates a control client with a full endpoint URL
// url: Full WebSocket URL (e.g., "ws://192.168.1.30:8470/ctl")
func NewClientWithURL(url string) *Client {
	return &Client{
		URL:                   url,
		Dialer:                &websocket.Dialer{HandshakeTimeout: DefaultHandshakeTimeout},
		Timeout:               DefaultTimeout,
		MaxRetries:            DefaultMaxRetries,
		RetryDelay:            DefaultRetryDelay,
		MaxRetryDelay:         DefaultMaxRetryDelay,
		UseExponentialBackoff: true, // Enable by default
	}
}

// SetTimeout sets the per-message read and write deadline
func (c *Client) SetTimeout(timeout time.Duration) {
	c.Timeout = timeout
}

// SetRetry configures retry behavior
func (c *Client) SetRetry(maxRetries int, retryDelay time.Duration) {
	c.MaxRetries = maxRetries
	c.RetryDelay = retryDelay
}

// Connect dials the instance and waits for its hello greeting.
// Calling Connect on an already connected client is a no-op.
func (c *Client) Connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connectLocked()
}

func (c *Client) connectLocked() error {
	if c.conn != nil {
		return nil
	}

	conn, _, err := c.Dialer.Dial(c.URL, nil)
	if err != nil {
		return NewNetworkError("failed to connect to instance", err, c.URL)
	}

	// The instance speaks first
	if err := conn.SetReadDeadline(time.Now().Add(c.Timeout)); err != nil {
		_ = conn.Close()
		return NewNetworkError("failed to set read deadline", err, c.URL)
	}

	_, data, err := conn.ReadMessage()
	if err != nil {
		_ = conn.Close()
		return NewNetworkError("no greeting from instance", err, c.URL)
	}

	env, err := DecodeEnvelope(data)
	if err != nil {
		_ = conn.Close()
		return NewProtocolError("malformed greeting", err)
	}
	if env.Type != MessageHello {
		_ = conn.Close()
		return NewProtocolError(fmt.Sprintf("expected hello, got %s", env.Type), nil)
	}

	hello, err := env.DecodeHello()
	if err != nil {
		_ = conn.Close()
		return NewProtocolError("malformed hello payload", err)
	}

	c.conn = conn
	c.hello = hello

	logging.LogConnection(c.URL, "control_connected")
	logging.Debug("Instance greeting received",
		zap.String("url", c.URL),
		zap.String("name", hello.Name),
		zap.String("version", hello.Version),
		zap.String("profile", hello.Profile),
	)

	return nil
}

// Close performs a best-effort close handshake and releases the connection.
// The last hello stays available through Hello after closing.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return nil
	}

	deadline := time.Now().Add(time.Second)
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)

	err := c.conn.Close()
	c.conn = nil

	logging.LogConnection(c.URL, "control_closed")
	return err
}

// Hello returns the greeting received from the instance, or nil before
// the first successful Connect
func (c *Client) Hello() *HelloPayload {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.hello == nil {
		return nil
	}
	hello := *c.hello
	return &hello
}

// FetchState retrieves the instance's current settings snapshot
func (c *Client) FetchState() (map[string]any, error) {
	var lastErr error
	currentDelay := c.RetryDelay

	// Retry loop with exponential backoff
	for attempt := 0; attempt <= c.MaxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(currentDelay)

			// Exponential backoff
			if c.UseExponentialBackoff {
				currentDelay *= 2
				if currentDelay > c.MaxRetryDelay {
					currentDelay = c.MaxRetryDelay
				}
			}
		}

		values, err := c.fetchStateAttempt()
		if err == nil {
			return values, nil
		}

		lastErr = err

		// Don't retry non-retryable errors
		if !IsRetryable(err) {
			return nil, err
		}
	}

	return nil, lastErr
}

func (c *Client) fetchStateAttempt() (map[string]any, error) {
	env, err := c.roundTrip(MessageState, nil)
	if err != nil {
		return nil, err
	}

	if env.Type == MessageAck {
		return nil, rejectionFromAck(env)
	}
	if env.Type != MessageState {
		return nil, NewProtocolError(fmt.Sprintf("expected state reply, got %s", env.Type), nil)
	}

	state, err := env.DecodeState()
	if err != nil {
		return nil, NewProtocolError("malformed state payload", err)
	}
	return state.Values, nil
}

// Push sends a settings snapshot to the instance and waits for the ack.
// A partial success (some keys rejected) returns the ack with a nil error;
// callers inspect AckPayload.Rejected.
func (c *Client) Push(values map[string]any) (*AckPayload, error) {
	var lastErr error
	currentDelay := c.RetryDelay

	// Retry loop with exponential backoff
	for attempt := 0; attempt <= c.MaxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(currentDelay)

			// Exponential backoff
			if c.UseExponentialBackoff {
				currentDelay *= 2
				if currentDelay > c.MaxRetryDelay {
					currentDelay = c.MaxRetryDelay
				}
			}
		}

		ack, err := c.pushAttempt(values)
		if err == nil {
			return ack, nil
		}

		lastErr = err

		// Don't retry non-retryable errors
		if !IsRetryable(err) {
			return nil, err
		}
	}

	return nil, lastErr
}

func (c *Client) pushAttempt(values map[string]any) (*AckPayload, error) {
	env, err := c.roundTrip(MessageApply, &ApplyPayload{Values: values})
	if err != nil {
		return nil, err
	}
	return ackFromEnvelope(env)
}

// ClearData asks the instance to clear the selected browsing data categories
func (c *Client) ClearData(selection ClearDataPayload) (*AckPayload, error) {
	var lastErr error
	currentDelay := c.RetryDelay

	// Retry loop with exponential backoff
	for attempt := 0; attempt <= c.MaxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(currentDelay)

			// Exponential backoff
			if c.UseExponentialBackoff {
				currentDelay *= 2
				if currentDelay > c.MaxRetryDelay {
					currentDelay = c.MaxRetryDelay
				}
			}
		}

		ack, err := c.clearDataAttempt(selection)
		if err == nil {
			return ack, nil
		}

		lastErr = err

		// Don't retry non-retryable errors
		if !IsRetryable(err) {
			return nil, err
		}
	}

	return nil, lastErr
}

func (c *Client) clearDataAttempt(selection ClearDataPayload) (*AckPayload, error) {
	env, err := c.roundTrip(MessageClearData, &selection)
	if err != nil {
		return nil, err
	}
	return ackFromEnvelope(env)
}

// VerifyState retrieves the instance's snapshot and checks that every
// expected key carries the expected value.
// This is useful after Push to ensure the instance applied the changes.
func (c *Client) VerifyState(expected map[string]any) error {
	current, err := c.FetchState()
	if err != nil {
		return fmt.Errorf("failed to retrieve state for verification: %w", err)
	}

	for key, want := range expected {
		got, ok := current[key]
		if !ok {
			return NewValidationError(fmt.Sprintf("key %s missing from instance state", key))
		}
		if !valueEqual(want, got) {
			return NewValidationError(fmt.Sprintf("key %s mismatch: expected %v, got %v", key, want, got))
		}
	}

	return nil
}

// roundTrip sends one request and returns the reply envelope carrying the
// matching sequence number. Hello re-announcements refresh the cached
// greeting; replies with stale sequence numbers are discarded.
func (c *Client) roundTrip(msgType string, payload any) (*Envelope, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.connectLocked(); err != nil {
		return nil, err
	}

	c.seq++
	seq := c.seq

	env, err := NewEnvelope(msgType, seq, payload)
	if err != nil {
		return nil, NewProtocolError("failed to build request", err)
	}
	data, err := env.Marshal()
	if err != nil {
		return nil, NewProtocolError("failed to encode request", err)
	}

	if err := c.conn.SetWriteDeadline(time.Now().Add(c.Timeout)); err != nil {
		c.dropConnLocked()
		return nil, NewNetworkError("failed to set write deadline", err, c.URL)
	}
	if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		c.dropConnLocked()
		return nil, NewNetworkError("failed to send "+msgType+" request", err, c.URL)
	}

	logging.LogControlMessage(c.URL, "sent", msgType, data)

	for {
		if err := c.conn.SetReadDeadline(time.Now().Add(c.Timeout)); err != nil {
			c.dropConnLocked()
			return nil, NewNetworkError("failed to set read deadline", err, c.URL)
		}

		_, reply, err := c.conn.ReadMessage()
		if err != nil {
			c.dropConnLocked()
			return nil, NewNetworkError("failed to read reply", err, c.URL)
		}

		replyEnv, err := DecodeEnvelope(reply)
		if err != nil {
			return nil, NewProtocolError("malformed reply", err)
		}

		logging.LogControlMessage(c.URL, "received", replyEnv.Type, reply)

		if replyEnv.Type == MessageHello {
			if hello, err := replyEnv.DecodeHello(); err == nil {
				c.hello = hello
			}
			continue
		}

		if replyEnv.Seq != seq {
			logging.Warn("Discarding reply with stale sequence number",
				zap.String("url", c.URL),
				zap.Uint64("want_seq", seq),
				zap.Uint64("got_seq", replyEnv.Seq),
			)
			continue
		}

		return replyEnv, nil
	}
}

func (c *Client) dropConnLocked() {
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
}

// ackFromEnvelope decodes an ack reply and converts a refusal into an error
func ackFromEnvelope(env *Envelope) (*AckPayload, error) {
	if env.Type != MessageAck {
		return nil, NewProtocolError(fmt.Sprintf("expected ack reply, got %s", env.Type), nil)
	}

	ack, err := env.DecodeAck()
	if err != nil {
		return nil, NewProtocolError("malformed ack payload", err)
	}

	if !ack.OK {
		return nil, rejectionError(ack)
	}

	return ack, nil
}

func rejectionFromAck(env *Envelope) error {
	ack, err := env.DecodeAck()
	if err != nil {
		return NewProtocolError("malformed ack payload", err)
	}
	return rejectionError(ack)
}

func rejectionError(ack *AckPayload) error {
	msg := ack.Error
	if msg == "" {
		msg = "instance rejected the request"
	}
	return NewRejectedError(msg)
}

// valueEqual compares setting values across the JSON boundary, where
// integers come back as float64
func valueEqual(want, got any) bool {
	switch w := want.(type) {
	case bool:
		g, ok := got.(bool)
		return ok && w == g
	case string:
		g, ok := got.(string)
		return ok && w == g
	}

	wi, wok := toInt(want)
	gi, gok := toInt(got)
	return wok && gok && wi == gi
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	}
	return 0, false
}
