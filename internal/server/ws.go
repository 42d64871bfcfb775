package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"LanderRescue/internal/game"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

var errUnknownMessage = errors.New("unknown message type")

const (
	formatJSON  = "json"
	formatProto = "proto"
)

type liveConn struct {
	conn     *websocket.Conn
	format   string
	sendTick *time.Ticker
}

func (lc *liveConn) send(frame outboundFrame) error {
	if lc.format == formatProto {
		return sendProtoFrame(lc.conn, frame)
	}
	return lc.conn.WriteJSON(frame)
}

func serveWS(h *Hub, w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	missionID := strings.TrimSpace(query.Get("mission"))
	format := strings.ToLower(query.Get("format"))
	if format != formatProto {
		format = formatJSON
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Println("upgrade:", err)
		return
	}
	lc := &liveConn{
		conn:     conn,
		format:   format,
		sendTick: time.NewTicker(time.Duration(1000.0/game.SimHz) * time.Millisecond),
	}

	session := h.NewSession()
	h.logger.Printf("session %s connected (%s)", session.ID, format)

	// replies carries frames produced by the reader; only the loop below writes.
	replies := make(chan outboundFrame, 16)
	reply := func(frame outboundFrame) {
		select {
		case replies <- frame:
		default:
			h.logger.Printf("session %s: reply dropped (%s)", session.ID, frame.Type)
		}
	}

	if missionID != "" {
		if err := session.Prepare(missionID, query.Get("attempt")); err != nil {
			reply(errorFrame(err))
		}
	}
	reply(outboundFrame{Type: "session", Payload: session.View()})

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	go func() {
		defer cancel()
		for {
			msgType, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if msgType != websocket.TextMessage {
				continue
			}
			var msg inboundMessage
			if err := json.Unmarshal(data, &msg); err != nil {
				reply(errorFrame(fmt.Errorf("decode message: %w", err)))
				continue
			}
			if err := dispatch(session, msg); err != nil {
				reply(errorFrame(fmt.Errorf("%s: %w", msg.Type, err)))
				continue
			}
			if msg.Type == "prepare" || msg.Type == "status" {
				reply(outboundFrame{Type: "session", Payload: session.View()})
			}
		}
	}()

	func() {
		for {
			select {
			case <-ctx.Done():
				return
			case frame := <-replies:
				if err := lc.send(frame); err != nil {
					h.logger.Printf("session %s: send error: %v", session.ID, err)
					return
				}
			case <-lc.sendTick.C:
				for _, n := range session.Drain() {
					if err := lc.send(notificationFrame(n)); err != nil {
						h.logger.Printf("session %s: send notification error: %v", session.ID, err)
						return
					}
				}
			}
		}
	}()

	lc.sendTick.Stop()
	conn.Close()
	h.Remove(session.ID)
	h.logger.Printf("session %s disconnected", session.ID)
}

// dispatch maps one inbound message onto the session.
func dispatch(s *Session, msg inboundMessage) error {
	switch msg.Type {
	case "prepare":
		var p prepareDTO
		if err := decodePayload(msg.Payload, &p); err != nil {
			return err
		}
		return s.Prepare(p.MissionID, p.AttemptID)
	case "start":
		return s.Start()
	case "abort":
		var p abortDTO
		if err := decodePayload(msg.Payload, &p); err != nil {
			return err
		}
		s.Abort(p.Reason)
	case "pause":
		s.SetPaused(true)
	case "resume":
		s.SetPaused(false)
	case "complete_phase":
		var p phaseDTO
		if err := decodePayload(msg.Payload, &p); err != nil {
			return err
		}
		return s.CompletePhase(p.PhaseID)
	case "status":
		return nil
	default:
		ev, err := decodeTelemetry(msg)
		if err != nil {
			return err
		}
		s.Handle(ev)
	}
	return nil
}

func decodeTelemetry(msg inboundMessage) (game.Telemetry, error) {
	switch msg.Type {
	case "touchdown":
		var p touchdownDTO
		if err := decodePayload(msg.Payload, &p); err != nil {
			return nil, err
		}
		return game.Touchdown{
			VerticalSpeed:   p.VerticalSpeed,
			HorizontalSpeed: p.HorizontalSpeed,
			CombinedSpeed:   p.CombinedSpeed,
			Tilt:            p.Tilt,
			ZoneID:          p.ZoneID,
		}, nil
	case "lander_destroyed", "player_died":
		var p causeDTO
		if err := decodePayload(msg.Payload, &p); err != nil {
			return nil, err
		}
		if msg.Type == "player_died" {
			return game.PlayerDied{Cause: p.Cause, Context: p.Context}, nil
		}
		return game.LanderDestroyed{Cause: p.Cause, Context: p.Context}, nil
	case "fuel", "altitude", "attitude", "orbit_reached":
		var p valueDTO
		if err := decodePayload(msg.Payload, &p); err != nil {
			return nil, err
		}
		switch msg.Type {
		case "fuel":
			return game.FuelChanged{Ratio: p.Value}, nil
		case "altitude":
			return game.AltitudeChanged{Meters: p.Value}, nil
		case "attitude":
			return game.AttitudeChanged{Tilt: p.Value}, nil
		}
		return game.OrbitReached{Altitude: p.Value}, nil
	case "zone_reached", "poi_reached", "rescue_completed":
		var p idDTO
		if err := decodePayload(msg.Payload, &p); err != nil {
			return nil, err
		}
		switch msg.Type {
		case "zone_reached":
			return game.ZoneReached{ID: p.ID}, nil
		case "poi_reached":
			return game.POIReached{ID: p.ID}, nil
		}
		return game.RescueInteractionCompleted{ID: p.ID}, nil
	}
	return nil, fmt.Errorf("%w: %q", errUnknownMessage, msg.Type)
}

func decodePayload(raw json.RawMessage, dst any) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	return nil
}
