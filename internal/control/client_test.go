package control

import (
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// fakeInstance is an in-process control endpoint used to exercise the client
// without a running brim.
type fakeInstance struct {
	t *testing.T

	mu            sync.Mutex
	values        map[string]any
	cleared       []ClearDataPayload
	conns         int
	rejectApply   bool
	rejectKeys    map[string]string
	dropFirstConn bool
}

func (f *fakeInstance) handler(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		f.t.Errorf("upgrade failed: %v", err)
		return
	}
	defer func() { _ = conn.Close() }()

	f.mu.Lock()
	f.conns++
	connNum := f.conns
	f.mu.Unlock()

	if !f.send(conn, mustEnvelope(f.t, MessageHello, 0, &HelloPayload{
		Name:    "brim-test",
		Version: "1.4.0",
		Profile: "default",
	})) {
		return
	}

	// Simulates an instance that dies right after greeting
	if f.dropFirstConn && connNum == 1 {
		return
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}

		env, err := DecodeEnvelope(data)
		if err != nil {
			return
		}

		var reply *Envelope
		switch env.Type {
		case MessageState:
			reply = f.handleState(env)
		case MessageApply:
			reply = f.handleApply(env)
		case MessageClearData:
			reply = f.handleClearData(env)
		default:
			reply = mustEnvelope(f.t, MessageAck, env.Seq, &AckPayload{
				Seq: env.Seq, OK: false, Error: "unknown message type",
			})
		}

		if !f.send(conn, reply) {
			return
		}
	}
}

func (f *fakeInstance) handleState(env *Envelope) *Envelope {
	f.mu.Lock()
	values := make(map[string]any, len(f.values))
	for k, v := range f.values {
		values[k] = v
	}
	f.mu.Unlock()

	return mustEnvelope(f.t, MessageState, env.Seq, &StatePayload{Values: values})
}

func (f *fakeInstance) handleApply(env *Envelope) *Envelope {
	if f.rejectApply {
		return mustEnvelope(f.t, MessageAck, env.Seq, &AckPayload{
			Seq: env.Seq, OK: false, Error: "profile is read-only",
		})
	}

	apply, err := env.DecodeApply()
	if err != nil {
		return mustEnvelope(f.t, MessageAck, env.Seq, &AckPayload{
			Seq: env.Seq, OK: false, Error: err.Error(),
		})
	}

	applied := 0
	rejected := make(map[string]string)

	f.mu.Lock()
	if f.values == nil {
		f.values = make(map[string]any)
	}
	for key, value := range apply.Values {
		if reason, bad := f.rejectKeys[key]; bad {
			rejected[key] = reason
			continue
		}
		f.values[key] = value
		applied++
	}
	f.mu.Unlock()

	ack := &AckPayload{Seq: env.Seq, OK: true, Applied: applied}
	if len(rejected) > 0 {
		ack.Rejected = rejected
	}
	return mustEnvelope(f.t, MessageAck, env.Seq, ack)
}

func (f *fakeInstance) handleClearData(env *Envelope) *Envelope {
	selection, err := env.DecodeClearData()
	if err != nil {
		return mustEnvelope(f.t, MessageAck, env.Seq, &AckPayload{
			Seq: env.Seq, OK: false, Error: err.Error(),
		})
	}

	f.mu.Lock()
	f.cleared = append(f.cleared, *selection)
	f.mu.Unlock()

	applied := 0
	for _, on := range []bool{selection.Cache, selection.Cookies, selection.History, selection.Downloads} {
		if on {
			applied++
		}
	}

	return mustEnvelope(f.t, MessageAck, env.Seq, &AckPayload{Seq: env.Seq, OK: true, Applied: applied})
}

func (f *fakeInstance) send(conn *websocket.Conn, env *Envelope) bool {
	data, err := env.Marshal()
	if err != nil {
		f.t.Errorf("marshal reply failed: %v", err)
		return false
	}
	return conn.WriteMessage(websocket.TextMessage, data) == nil
}

func mustEnvelope(t *testing.T, msgType string, seq uint64, payload any) *Envelope {
	env, err := NewEnvelope(msgType, seq, payload)
	if err != nil {
		t.Errorf("NewEnvelope(%s) failed: %v", msgType, err)
		return &Envelope{Type: msgType, Seq: seq}
	}
	return env
}

func startFakeInstance(t *testing.T, f *fakeInstance) *Client {
	t.Helper()

	f.t = t
	server := httptest.NewServer(http.HandlerFunc(f.handler))
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http") + Path
	client := NewClientWithURL(url)
	client.SetTimeout(2 * time.Second)
	client.SetRetry(2, time.Millisecond)
	t.Cleanup(func() { _ = client.Close() })

	return client
}

func TestClientConnectReceivesHello(t *testing.T) {
	client := startFakeInstance(t, &fakeInstance{})

	if err := client.Connect(); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}

	hello := client.Hello()
	if hello == nil {
		t.Fatal("Hello() = nil after Connect")
	}
	if hello.Name != "brim-test" {
		t.Errorf("hello.Name = %q, want %q", hello.Name, "brim-test")
	}
	if hello.Version != "1.4.0" {
		t.Errorf("hello.Version = %q, want %q", hello.Version, "1.4.0")
	}
	if hello.Profile != "default" {
		t.Errorf("hello.Profile = %q, want %q", hello.Profile, "default")
	}
}

func TestClientConnectTwiceIsNoOp(t *testing.T) {
	fake := &fakeInstance{}
	client := startFakeInstance(t, fake)

	if err := client.Connect(); err != nil {
		t.Fatalf("first Connect() error = %v", err)
	}
	if err := client.Connect(); err != nil {
		t.Fatalf("second Connect() error = %v", err)
	}

	fake.mu.Lock()
	conns := fake.conns
	fake.mu.Unlock()

	if conns != 1 {
		t.Errorf("instance saw %d connections, want 1", conns)
	}
}

func TestClientFetchState(t *testing.T) {
	client := startFakeInstance(t, &fakeInstance{
		values: map[string]any{
			"tabBarVisibility": 2,
			"blockPopups":      true,
		},
	})

	values, err := client.FetchState()
	if err != nil {
		t.Fatalf("FetchState() error = %v", err)
	}

	if got := values["tabBarVisibility"]; got != float64(2) {
		t.Errorf("tabBarVisibility = %v (%T), want 2", got, got)
	}
	if got := values["blockPopups"]; got != true {
		t.Errorf("blockPopups = %v, want true", got)
	}
}

func TestClientPush(t *testing.T) {
	fake := &fakeInstance{}
	client := startFakeInstance(t, fake)

	ack, err := client.Push(map[string]any{
		"tabBarVisibility": 2,
		"homepageURL":      "https://example.net",
	})
	if err != nil {
		t.Fatalf("Push() error = %v", err)
	}

	if !ack.OK {
		t.Error("ack.OK = false, want true")
	}
	if ack.Applied != 2 {
		t.Errorf("ack.Applied = %d, want 2", ack.Applied)
	}

	fake.mu.Lock()
	got := fake.values["homepageURL"]
	fake.mu.Unlock()

	if got != "https://example.net" {
		t.Errorf("instance stored homepageURL = %v, want https://example.net", got)
	}
}

func TestClientPushPartialRejection(t *testing.T) {
	client := startFakeInstance(t, &fakeInstance{
		rejectKeys: map[string]string{"bogusKey": "unknown preference key"},
	})

	ack, err := client.Push(map[string]any{
		"blockPopups": true,
		"bogusKey":    1,
	})
	if err != nil {
		t.Fatalf("Push() error = %v", err)
	}

	if !ack.OK {
		t.Error("ack.OK = false, want true for partial success")
	}
	if ack.Applied != 1 {
		t.Errorf("ack.Applied = %d, want 1", ack.Applied)
	}
	if reason := ack.Rejected["bogusKey"]; reason != "unknown preference key" {
		t.Errorf("ack.Rejected[bogusKey] = %q, want %q", reason, "unknown preference key")
	}
}

func TestClientPushRejected(t *testing.T) {
	client := startFakeInstance(t, &fakeInstance{rejectApply: true})

	_, err := client.Push(map[string]any{"blockPopups": true})
	if err == nil {
		t.Fatal("Push() to rejecting instance succeeded, want error")
	}

	if !IsRejectedError(err) {
		t.Errorf("Push() error = %v, want rejection error", err)
	}
	if IsRetryable(err) {
		t.Error("rejection error is retryable, want non-retryable")
	}
}

func TestClientClearData(t *testing.T) {
	fake := &fakeInstance{}
	client := startFakeInstance(t, fake)

	ack, err := client.ClearData(ClearDataPayload{Cache: true, History: true})
	if err != nil {
		t.Fatalf("ClearData() error = %v", err)
	}

	if ack.Applied != 2 {
		t.Errorf("ack.Applied = %d, want 2", ack.Applied)
	}

	fake.mu.Lock()
	defer fake.mu.Unlock()

	if len(fake.cleared) != 1 {
		t.Fatalf("instance saw %d clear requests, want 1", len(fake.cleared))
	}
	sel := fake.cleared[0]
	if !sel.Cache || sel.Cookies || !sel.History || sel.Downloads {
		t.Errorf("clear selection = %+v, want cache and history only", sel)
	}
}

func TestClientVerifyState(t *testing.T) {
	client := startFakeInstance(t, &fakeInstance{})

	pushed := map[string]any{
		"tabBarVisibility": 1,
		"blockPopups":      true,
		"homepageURL":      "brim:start",
	}
	if _, err := client.Push(pushed); err != nil {
		t.Fatalf("Push() error = %v", err)
	}

	if err := client.VerifyState(pushed); err != nil {
		t.Errorf("VerifyState() error = %v, want nil", err)
	}

	err := client.VerifyState(map[string]any{"tabBarVisibility": 2})
	if err == nil {
		t.Fatal("VerifyState() with stale expectation succeeded, want error")
	}
	if !IsValidationError(err) {
		t.Errorf("VerifyState() error = %v, want validation error", err)
	}
}

func TestClientReconnectsAfterDrop(t *testing.T) {
	client := startFakeInstance(t, &fakeInstance{
		dropFirstConn: true,
		values:        map[string]any{"blockPopups": true},
	})

	if err := client.Connect(); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}

	// First attempt hits the dropped connection; the retry redials
	values, err := client.FetchState()
	if err != nil {
		t.Fatalf("FetchState() error = %v", err)
	}
	if got := values["blockPopups"]; got != true {
		t.Errorf("blockPopups = %v, want true", got)
	}
}

func TestClientConnectRefused(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to reserve port: %v", err)
	}
	port := listener.Addr().(*net.TCPAddr).Port
	_ = listener.Close()

	client := NewClient("127.0.0.1", port)
	client.Dialer.HandshakeTimeout = time.Second

	err = client.Connect()
	if err == nil {
		t.Fatal("Connect() to closed port succeeded, want error")
	}
	if !IsNetworkError(err) {
		t.Errorf("Connect() error = %v, want network error", err)
	}
}

func TestClientURLFromAddress(t *testing.T) {
	client := NewClient("192.168.1.30", 8470)

	want := "ws://192.168.1.30:8470/ctl"
	if client.URL != want {
		t.Errorf("client.URL = %q, want %q", client.URL, want)
	}
}

func TestValueEqual(t *testing.T) {
	tests := []struct {
		name string
		want any
		got  any
		eq   bool
	}{
		{"bool match", true, true, true},
		{"bool mismatch", true, false, false},
		{"string match", "brim:start", "brim:start", true},
		{"int against float64", 2, float64(2), true},
		{"int mismatch", 2, float64(3), false},
		{"kind mismatch", true, "true", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := valueEqual(tt.want, tt.got); got != tt.eq {
				t.Errorf("valueEqual(%v, %v) = %v, want %v", tt.want, tt.got, got, tt.eq)
			}
		})
	}
}
