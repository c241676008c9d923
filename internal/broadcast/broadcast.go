// Package broadcast implements the single routing policy deciding which
// room(s) receive each outbound event.
package broadcast

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/thanhkt275/RMS-BE-sub001/internal/display"
	"github.com/thanhkt275/RMS-BE-sub001/internal/events"
)

// Broadcaster is the narrow seam handed to the timer engine, the score bridge
// and the ranking relay so none of them depend on the transport layer.
type Broadcaster interface {
	Emit(event string, scope events.Scope, payload any)
}

// RoomBroadcaster is what the policy needs from the transport hub.
type RoomBroadcaster interface {
	BroadcastRoom(key string, msg []byte)
	BroadcastAll(msg []byte)
}

const fieldRoomPrefix = "field:"

// FieldRoom returns the room key for a field id.
func FieldRoom(fieldID string) string { return fieldRoomPrefix + fieldID }

type envelope struct {
	Event string `json:"event"`
	Body  any    `json:"body,omitempty"`
}

// Emitter routes every event by one rule set:
//
//  1. payload names a fieldId → field room, then mirrored to the tournament
//     room so tournament-wide consumers see every field's traffic;
//  2. payload names a tournamentId → that tournament room only, except the
//     "all" sentinel on display_mode_change/announcement which means every
//     connected client;
//  3. neither present → every connected client.
//
// display_mode_change is additionally written to the display store before
// fan-out so later joiners replay it.
type Emitter struct {
	rooms    RoomBroadcaster
	displays display.Store
}

func NewEmitter(rooms RoomBroadcaster, displays display.Store) *Emitter {
	return &Emitter{rooms: rooms, displays: displays}
}

func (e *Emitter) Emit(event string, scope events.Scope, payload any) {
	if event == events.DisplayModeChange {
		e.storeDisplaySettings(payload)
	}

	frame, err := json.Marshal(envelope{Event: event, Body: payload})
	if err != nil {
		zap.L().Error("broadcast.marshal", zap.String("event", event), zap.Error(err))
		return
	}

	switch {
	case scope.FieldID != "":
		// Field delivery first, tournament mirror second.
		e.rooms.BroadcastRoom(FieldRoom(scope.FieldID), frame)
		if scope.TournamentID != "" && scope.TournamentID != events.TournamentAll {
			e.rooms.BroadcastRoom(scope.TournamentID, frame)
		}
	case scope.TournamentID == events.TournamentAll && isSystemWideEvent(event):
		e.rooms.BroadcastAll(frame)
	case scope.TournamentID != "":
		e.rooms.BroadcastRoom(scope.TournamentID, frame)
	default:
		e.rooms.BroadcastAll(frame)
	}
}

// isSystemWideEvent reports whether the "all" sentinel is honored for the
// event. Other events with tournamentId "all" fall through to plain room
// delivery.
func isSystemWideEvent(event string) bool {
	return event == events.DisplayModeChange || event == events.Announcement
}

func (e *Emitter) storeDisplaySettings(payload any) {
	s, ok := payload.(events.DisplaySettings)
	if !ok || s.TournamentID == "" || s.TournamentID == events.TournamentAll {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := e.displays.Put(ctx, s); err != nil {
		zap.L().Error("broadcast.display_store", zap.String("tournament", s.TournamentID), zap.Error(err))
	}
}
