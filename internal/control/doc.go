// Package control implements the brim control protocol: a small JSON
// message exchange over a WebSocket endpoint that running brim instances
// expose at ws://host:port/ctl.
//
// # Wire Format
//
// Every message is a single WebSocket text frame carrying an Envelope:
//
//	{"type": "apply", "seq": 3, "payload": {"values": {"blockPopups": true}}}
//
// The instance greets each new connection with a "hello" envelope
// announcing its name, version and profile. After that the exchange is
// strictly request/response: the client sends "state", "apply" or
// "clear-data" with a sequence number, and the instance answers with a
// "state" or "ack" envelope echoing that sequence number.
//
// # Client
//
// Client wraps the exchange with connection management, deadlines and a
// retry loop with exponential backoff:
//
//	client := control.NewClient("192.168.1.30", 8470)
//	if err := client.Connect(); err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	ack, err := client.Push(store.Snapshot())
//
// Errors are classified into ControlError values so callers can decide
// whether a failure is worth retrying or should be surfaced to the user.
package control
