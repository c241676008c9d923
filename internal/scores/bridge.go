// Package scores splits score traffic into the ephemeral live echo path and
// the explicit persist path, so high-frequency console updates never touch
// durable storage.
package scores

import (
	"context"
	"errors"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/thanhkt275/RMS-BE-sub001/internal/broadcast"
	"github.com/thanhkt275/RMS-BE-sub001/internal/events"
)

var (
	ErrNotRealtime = errors.New("score update must be tagged realtime")
	ErrNotPersist  = errors.New("persist request must be tagged persist")
)

// MatchScores is the structured payload handed to the storage collaborator.
type MatchScores struct {
	MatchID        string                `json:"matchId"`
	TournamentID   string                `json:"tournamentId,omitempty"`
	RedAutoScore   int                   `json:"redAutoScore"`
	RedDriveScore  int                   `json:"redDriveScore"`
	RedTotalScore  int                   `json:"redTotalScore"`
	BlueAutoScore  int                   `json:"blueAutoScore"`
	BlueDriveScore int                   `json:"blueDriveScore"`
	BlueTotalScore int                   `json:"blueTotalScore"`
	RedElements    []events.GameElement  `json:"redElements"`
	BlueElements   []events.GameElement  `json:"blueElements"`
	FinalScores    map[string]any        `json:"finalScores,omitempty"`
	SubmittedBy    string                `json:"submittedBy,omitempty"`
	SubmittedAt    time.Time             `json:"submittedAt"`
}

// Store is the single persistence operation this subsystem consumes. The
// implementation must behave as an upsert; create-vs-update is its decision.
type Store interface {
	UpsertMatchScores(ctx context.Context, ms MatchScores) (*MatchScores, error)
}

type Bridge struct {
	store Store
	emit  broadcast.Broadcaster
	now   func() time.Time
}

func NewBridge(store Store, emit broadcast.Broadcaster) *Bridge {
	return &Bridge{store: store, emit: emit, now: time.Now}
}

// StreamRealtime relays a live score update to the room, stamping it if the
// sender did not. No storage write, no retry; the next update within a second
// supersedes a dropped one.
func (b *Bridge) StreamRealtime(u events.RealtimeScoreUpdate) error {
	if u.Type != "realtime" {
		return ErrNotRealtime
	}
	if u.Timestamp == 0 {
		u.Timestamp = b.now().UnixMilli()
	}

	b.emit.Emit(events.ScoreUpdateRealtime, events.Scope{TournamentID: u.TournamentID, FieldID: u.FieldID}, u)
	return nil
}

// Persist hands the request to the storage collaborator and reports the
// outcome twice: the returned result goes back to the requester only, and a
// scoresPersisted / scoresPersistenceFailed event goes to the room. A storage
// failure is converted, never propagated.
func (b *Bridge) Persist(ctx context.Context, req events.PersistScoresRequest) (events.PersistenceResultBody, error) {
	if req.Type != "persist" {
		return events.PersistenceResultBody{}, ErrNotPersist
	}

	if req.Timestamp == 0 {
		req.Timestamp = b.now().UnixMilli()
	}

	ms := MatchScores{
		MatchID:        req.MatchID,
		TournamentID:   req.TournamentID,
		RedAutoScore:   req.RedAutoScore,
		RedDriveScore:  req.RedDriveScore,
		RedTotalScore:  req.RedTotalScore,
		BlueAutoScore:  req.BlueAutoScore,
		BlueDriveScore: req.BlueDriveScore,
		BlueTotalScore: req.BlueTotalScore,
		RedElements:    ConvertGameElements(req.RedGameElements),
		BlueElements:   ConvertGameElements(req.BlueGameElements),
		FinalScores:    req.FinalScores,
		SubmittedBy:    req.SubmittedBy,
		SubmittedAt:    time.UnixMilli(req.Timestamp),
	}

	scope := events.Scope{TournamentID: req.TournamentID, FieldID: req.FieldID}
	settledAt := b.now().UnixMilli()

	stored, err := b.store.UpsertMatchScores(ctx, ms)
	if err != nil {
		zap.L().Error("scores.persist_failed", zap.String("match", req.MatchID), zap.Error(err))
		b.emit.Emit(events.ScoresPersistenceFailed, scope, events.ScoresPersistedEvent{
			PersistScoresRequest: req,
			Success:              false,
			Error:                err.Error(),
		})
		return events.PersistenceResultBody{
			MatchID:   req.MatchID,
			Success:   false,
			Error:     err.Error(),
			Timestamp: settledAt,
		}, nil
	}

	b.emit.Emit(events.ScoresPersisted, scope, events.ScoresPersistedEvent{
		PersistScoresRequest: req,
		Success:              true,
		PersistedAt:          settledAt,
		PersistedBy:          req.SubmittedBy,
	})
	return events.PersistenceResultBody{
		MatchID:   req.MatchID,
		Success:   true,
		Data:      stored,
		Timestamp: settledAt,
	}, nil
}

// ConvertGameElements turns a free-form element → count tally into the
// structured element list. Each entry gets a default unit value of 1 and a
// multiply operation; richer scoring formulas come from the scoring
// configuration path, not from this bridge.
func ConvertGameElements(tally map[string]int) []events.GameElement {
	out := make([]events.GameElement, 0, len(tally))
	if len(tally) == 0 {
		return out
	}

	names := make([]string, 0, len(tally))
	for name := range tally {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		count := tally[name]
		out = append(out, events.GameElement{
			Element:     name,
			Count:       count,
			PointsEach:  1,
			TotalPoints: count,
			Operation:   "multiply",
		})
	}
	return out
}
