package server

import (
	"encoding/json"

	"LanderRescue/internal/game"
)

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// outboundFrame is the JSON envelope for every server message.
type outboundFrame struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type touchdownDTO struct {
	VerticalSpeed   float64 `json:"vertical_speed"`
	HorizontalSpeed float64 `json:"horizontal_speed"`
	CombinedSpeed   float64 `json:"combined_speed,omitempty"`
	Tilt            float64 `json:"tilt"`
	ZoneID          string  `json:"zone_id,omitempty"`
}

type valueDTO struct {
	Value float64 `json:"value"`
}

type idDTO struct {
	ID string `json:"id"`
}

type causeDTO struct {
	Cause   string            `json:"cause"`
	Context map[string]string `json:"context,omitempty"`
}

type prepareDTO struct {
	MissionID string `json:"mission_id"`
	AttemptID string `json:"attempt_id,omitempty"`
}

type abortDTO struct {
	Reason string `json:"reason,omitempty"`
}

type phaseDTO struct {
	PhaseID string `json:"phase_id"`
}

type sessionDTO struct {
	SessionID  string                  `json:"session_id"`
	MissionID  string                  `json:"mission_id,omitempty"`
	AttemptID  string                  `json:"attempt_id,omitempty"`
	State      game.MissionState       `json:"state"`
	Phase      string                  `json:"phase,omitempty"`
	Elapsed    float64                 `json:"elapsed"`
	Remaining  float64                 `json:"remaining"`
	Fuel       float64                 `json:"fuel"`
	Altitude   float64                 `json:"altitude"`
	Objectives []game.ObjectiveOutcome `json:"objectives,omitempty"`
}

type errorDTO struct {
	Message string `json:"message"`
}

type verdictDTO struct {
	Outcome string              `json:"outcome"`
	Cause   string              `json:"cause,omitempty"`
	Event   game.TouchdownEvent `json:"event"`
}

type notificationDTO struct {
	MissionID string                 `json:"mission_id"`
	AttemptID string                 `json:"attempt_id"`
	Elapsed   float64                `json:"elapsed"`
	Reason    string                 `json:"reason,omitempty"`
	Mode      game.PhaseMode         `json:"mode,omitempty"`
	PhaseID   string                 `json:"phase_id,omitempty"`
	Altitude  float64                `json:"altitude,omitempty"`
	Objective *game.ObjectiveOutcome `json:"objective,omitempty"`
	Touchdown *verdictDTO            `json:"touchdown,omitempty"`
	Result    *game.MissionResult    `json:"result,omitempty"`
}

func notificationFrame(n game.Notification) outboundFrame {
	dto := notificationDTO{
		MissionID: n.MissionID,
		AttemptID: n.AttemptID,
		Elapsed:   n.Elapsed,
		Reason:    n.Reason,
		Mode:      n.Mode,
		Altitude:  n.Altitude,
		Objective: n.Objective,
		Result:    n.Result,
	}
	if n.Phase != nil {
		dto.PhaseID = n.Phase.ID
	}
	if n.Touchdown != nil {
		dto.Touchdown = &verdictDTO{
			Outcome: n.Touchdown.Outcome.String(),
			Cause:   n.Touchdown.Cause,
			Event:   n.Touchdown.Event,
		}
	}
	return outboundFrame{Type: string(n.Kind), Payload: dto}
}

func errorFrame(err error) outboundFrame {
	return outboundFrame{Type: "error", Payload: errorDTO{Message: err.Error()}}
}

type missionSummaryDTO struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name,omitempty"`
	Category    string `json:"category,omitempty"`
	Phases      int    `json:"phases"`
	Available   bool   `json:"available"`
}
