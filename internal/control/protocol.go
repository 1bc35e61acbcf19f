package control

import (
	"encoding/json"
	"fmt"
)

// Path is the WebSocket endpoint every brim instance serves the control
// protocol on.
const Path = "/ctl"

// Message types carried in Envelope.Type
const (
	// MessageHello is sent by the instance once per connection, before
	// anything else
	MessageHello = "hello"

	// MessageState requests (client to instance) or carries (instance to
	// client) the full settings snapshot
	MessageState = "state"

	// MessageApply asks the instance to apply a settings snapshot
	MessageApply = "apply"

	// MessageAck is the instance's reply to apply and clear-data requests
	MessageAck = "ack"

	// MessageClearData asks the instance to clear browsing data
	MessageClearData = "clear-data"
)

// Envelope is the wire frame for every control message.
// Payload is left raw so each side decodes only the types it dispatches on.
type Envelope struct {
	Type    string          `json:"type"`
	Seq     uint64          `json:"seq,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// HelloPayload announces the instance on a fresh connection
type HelloPayload struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Profile string `json:"profile,omitempty"`
}

// StatePayload carries a full settings snapshot keyed by preference key
type StatePayload struct {
	Values map[string]any `json:"values"`
}

// ApplyPayload carries the settings values the instance should apply
type ApplyPayload struct {
	Values map[string]any `json:"values"`
}

// AckPayload reports the outcome of an apply or clear-data request.
// Rejected maps preference keys to the reason each one was refused;
// a request can succeed partially (OK true with a non-empty Rejected map).
type AckPayload struct {
	Seq      uint64            `json:"seq"`
	OK       bool              `json:"ok"`
	Applied  int               `json:"applied,omitempty"`
	Rejected map[string]string `json:"rejected,omitempty"`
	Error    string            `json:"error,omitempty"`
}

// ClearDataPayload selects which browsing data categories to clear
type ClearDataPayload struct {
	Cache     bool `json:"cache"`
	Cookies   bool `json:"cookies"`
	History   bool `json:"history"`
	Downloads bool `json:"downloads"`
}

// NewEnvelope builds an envelope with the payload marshaled in place.
// A nil payload produces an envelope with no payload field.
func NewEnvelope(msgType string, seq uint64, payload any) (*Envelope, error) {
	env := &Envelope{
		Type: msgType,
		Seq:  seq,
	}

	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s payload: %w", msgType, err)
		}
		env.Payload = data
	}

	return env, nil
}

// Marshal serializes the envelope for the wire
func (e *Envelope) Marshal() ([]byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s envelope: %w", e.Type, err)
	}
	return data, nil
}

// DecodeEnvelope parses a wire frame into an Envelope.
// Unknown message types are not rejected here; dispatchers decide what
// to do with types they don't handle.
func DecodeEnvelope(data []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("failed to parse envelope: %w", err)
	}

	if env.Type == "" {
		return nil, fmt.Errorf("envelope missing type field")
	}

	return &env, nil
}

// DecodeHello parses the envelope payload as a hello announcement
func (e *Envelope) DecodeHello() (*HelloPayload, error) {
	var payload HelloPayload
	if err := e.decodePayload(&payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// DecodeState parses the envelope payload as a settings snapshot
func (e *Envelope) DecodeState() (*StatePayload, error) {
	var payload StatePayload
	if err := e.decodePayload(&payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// DecodeApply parses the envelope payload as an apply request
func (e *Envelope) DecodeApply() (*ApplyPayload, error) {
	var payload ApplyPayload
	if err := e.decodePayload(&payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// DecodeAck parses the envelope payload as an acknowledgement
func (e *Envelope) DecodeAck() (*AckPayload, error) {
	var payload AckPayload
	if err := e.decodePayload(&payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// DecodeClearData parses the envelope payload as a clear-data request
func (e *Envelope) DecodeClearData() (*ClearDataPayload, error) {
	var payload ClearDataPayload
	if err := e.decodePayload(&payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func (e *Envelope) decodePayload(dst any) error {
	if len(e.Payload) == 0 {
		return fmt.Errorf("%s envelope has no payload", e.Type)
	}
	if err := json.Unmarshal(e.Payload, dst); err != nil {
		return fmt.Errorf("failed to parse %s payload: %w", e.Type, err)
	}
	return nil
}
