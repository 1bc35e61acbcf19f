package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/merrow/brim/internal/control"
	"github.com/merrow/brim/internal/logging"
	"github.com/merrow/brim/internal/prefs"
	"github.com/merrow/brim/internal/version"
	"go.uber.org/zap"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Maximum message size allowed from peer
	maxMessageSize = 64 * 1024
)

// handleControl upgrades the HTTP request and runs the control exchange
// until the peer disconnects
func (s *Server) handleControl(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response
		logging.Warn("WebSocket upgrade failed",
			zap.String("remote_addr", r.RemoteAddr),
			zap.Error(err),
		)
		return
	}

	remoteAddr := conn.RemoteAddr().String()
	conn.SetReadLimit(maxMessageSize)

	s.trackConn(remoteAddr, conn)
	logging.LogConnection(remoteAddr, "control_accepted")

	defer func() {
		_ = conn.Close()
		s.untrackConn(remoteAddr)
		logging.LogConnection(remoteAddr, "control_closed")
	}()

	// The instance speaks first
	if err := s.sendHello(conn, remoteAddr); err != nil {
		logging.Error("Failed to send greeting",
			zap.String("remote_addr", remoteAddr),
			zap.Error(err),
		)
		return
	}

	// Main request/response loop
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logging.Info("Connection closed by peer",
					zap.String("remote_addr", remoteAddr),
				)
			} else {
				logging.Info("Connection closed or error reading message",
					zap.String("remote_addr", remoteAddr),
					zap.Error(err),
				)
			}
			return
		}

		env, err := control.DecodeEnvelope(data)
		if err != nil {
			logging.Warn("Discarding malformed control message",
				zap.String("remote_addr", remoteAddr),
				zap.Int("length", len(data)),
				zap.Error(err),
			)
			continue
		}

		logging.LogControlMessage(remoteAddr, "received", env.Type, data)

		reply := s.dispatch(remoteAddr, env)
		if reply == nil {
			continue
		}

		if err := s.sendEnvelope(conn, remoteAddr, reply); err != nil {
			logging.Error("Failed to send reply",
				zap.String("remote_addr", remoteAddr),
				zap.String("type", reply.Type),
				zap.Error(err),
			)
			return
		}
	}
}

// dispatch routes one decoded request to its handler and returns the reply
func (s *Server) dispatch(remoteAddr string, env *control.Envelope) *control.Envelope {
	switch env.Type {
	case control.MessageState:
		return s.handleState(env)
	case control.MessageApply:
		return s.handleApply(remoteAddr, env)
	case control.MessageClearData:
		return s.handleClearData(remoteAddr, env)
	default:
		logging.Warn("Unknown control message type",
			zap.String("remote_addr", remoteAddr),
			zap.String("type", env.Type),
		)
		return s.nack(env.Seq, fmt.Sprintf("unknown message type: %s", env.Type))
	}
}

// handleState answers with the full settings snapshot
func (s *Server) handleState(env *control.Envelope) *control.Envelope {
	reply, err := control.NewEnvelope(control.MessageState, env.Seq, &control.StatePayload{
		Values: s.store.Snapshot(),
	})
	if err != nil {
		return s.nack(env.Seq, "failed to build state reply")
	}
	return reply
}

// handleApply writes the pushed values into the store and acknowledges,
// reporting per-key rejections the way a real instance does
func (s *Server) handleApply(remoteAddr string, env *control.Envelope) *control.Envelope {
	apply, err := env.DecodeApply()
	if err != nil {
		return s.nack(env.Seq, fmt.Sprintf("malformed apply payload: %v", err))
	}

	applied, rejected := prefs.ApplySnapshot(s.store, apply.Values)

	logging.Info("Applied settings update",
		zap.String("remote_addr", remoteAddr),
		zap.Int("applied", applied),
		zap.Int("rejected", len(rejected)),
	)
	for key, reason := range rejected {
		logging.Warn("Rejected setting",
			zap.String("remote_addr", remoteAddr),
			zap.String("key", key),
			zap.String("reason", reason),
		)
	}

	ack := &control.AckPayload{Seq: env.Seq, OK: true, Applied: applied}
	if len(rejected) > 0 {
		ack.Rejected = rejected
	}

	reply, err := control.NewEnvelope(control.MessageAck, env.Seq, ack)
	if err != nil {
		return s.nack(env.Seq, "failed to build ack")
	}
	return reply
}

// handleClearData records the request and acknowledges it.
// The emulator has no browsing data; a real instance clears the
// selected categories here.
func (s *Server) handleClearData(remoteAddr string, env *control.Envelope) *control.Envelope {
	selection, err := env.DecodeClearData()
	if err != nil {
		return s.nack(env.Seq, fmt.Sprintf("malformed clear-data payload: %v", err))
	}

	s.mu.Lock()
	s.cleared = append(s.cleared, *selection)
	s.mu.Unlock()

	applied := 0
	for _, on := range []bool{selection.Cache, selection.Cookies, selection.History, selection.Downloads} {
		if on {
			applied++
		}
	}

	logging.Info("Clear-data request received",
		zap.String("remote_addr", remoteAddr),
		zap.Bool("cache", selection.Cache),
		zap.Bool("cookies", selection.Cookies),
		zap.Bool("history", selection.History),
		zap.Bool("downloads", selection.Downloads),
	)

	reply, err := control.NewEnvelope(control.MessageAck, env.Seq, &control.AckPayload{
		Seq: env.Seq, OK: true, Applied: applied,
	})
	if err != nil {
		return s.nack(env.Seq, "failed to build ack")
	}
	return reply
}

// nack builds a refusal ack for a request that could not be served
func (s *Server) nack(seq uint64, reason string) *control.Envelope {
	reply, err := control.NewEnvelope(control.MessageAck, seq, &control.AckPayload{
		Seq: seq, OK: false, Error: reason,
	})
	if err != nil {
		return &control.Envelope{Type: control.MessageAck, Seq: seq}
	}
	return reply
}

// sendHello sends the greeting every connection receives first
func (s *Server) sendHello(conn *websocket.Conn, remoteAddr string) error {
	hello, err := control.NewEnvelope(control.MessageHello, 0, &control.HelloPayload{
		Name:    s.config.Name,
		Version: version.Version,
		Profile: s.config.Profile,
	})
	if err != nil {
		return err
	}
	return s.sendEnvelope(conn, remoteAddr, hello)
}

// sendEnvelope writes one envelope with the write deadline applied
func (s *Server) sendEnvelope(conn *websocket.Conn, remoteAddr string, env *control.Envelope) error {
	data, err := env.Marshal()
	if err != nil {
		return fmt.Errorf("failed to encode %s envelope: %w", env.Type, err)
	}

	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return fmt.Errorf("failed to set write deadline: %w", err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("write failed: %w", err)
	}

	logging.LogControlMessage(remoteAddr, "sent", env.Type, data)
	return nil
}
