package events

import "encoding/json"

// Wire event names. Inbound and broadcast names share the same identifiers so a
// relayed event reaches other room members under the name it arrived with. The
// mixed snake/camel casing is part of the client protocol and must not change.
const (
	JoinTournament      = "join_tournament"
	LeaveTournament     = "leave_tournament"
	JoinFieldRoom       = "joinFieldRoom"
	LeaveFieldRoom      = "leaveFieldRoom"
	SubscribeRankings   = "subscribe_rankings"
	UnsubscribeRankings = "unsubscribe_rankings"

	MatchUpdate       = "match_update"
	ScoreUpdate       = "score_update"
	MatchStateChange  = "match_state_change"
	DisplayModeChange = "display_mode_change"
	Announcement      = "announcement"
	TimerUpdate       = "timer_update"

	StartTimer = "start_timer"
	PauseTimer = "pause_timer"
	ResetTimer = "reset_timer"

	ScoreUpdateRealtime     = "scoreUpdateRealtime"
	PersistScores           = "persistScores"
	ScoresPersisted         = "scoresPersisted"
	ScoresPersistenceFailed = "scoresPersistenceFailed"
	PersistenceResult       = "persistenceResult"

	RankingUpdate                  = "ranking_update"
	RankingSubscriptionConfirmed   = "ranking_subscription_confirmed"
	RankingUnsubscriptionConfirmed = "ranking_unsubscription_confirmed"
)

// TournamentAll is a sentinel tournament id on display_mode_change and
// announcement meaning "deliver to every connected client".
const TournamentAll = "all"

// Scope carries the routing fields every broadcastable payload may name.
type Scope struct {
	TournamentID string `json:"tournamentId,omitempty"`
	FieldID      string `json:"fieldId,omitempty"`
}

// ─────────────────────────── Room membership ────────────────────────────────

type JoinTournamentRequest struct {
	TournamentID string `json:"tournamentId" validate:"required"`
}

type FieldRoomRequest struct {
	FieldID string `json:"fieldId" validate:"required"`
}

type RankingSubscriptionRequest struct {
	TournamentID string `json:"tournamentId" validate:"required"`
	StageID      string `json:"stageId,omitempty"`
}

type RankingSubscriptionAck struct {
	TournamentID string `json:"tournamentId"`
	StageID      string `json:"stageId,omitempty"`
	Subscribed   bool   `json:"subscribed"`
}

// ─────────────────────────────── Timer ──────────────────────────────────────

type TimerStartRequest struct {
	TournamentID string `json:"tournamentId" validate:"required"`
	FieldID      string `json:"fieldId,omitempty"`
	DurationMs   int64  `json:"duration" validate:"gt=0"`
	RemainingMs  int64  `json:"remaining" validate:"gte=0"`
	IsRunning    bool   `json:"isRunning"`
}

type TimerPauseRequest struct {
	TournamentID string `json:"tournamentId" validate:"required"`
	FieldID      string `json:"fieldId,omitempty"`
	RemainingMs  int64  `json:"remaining" validate:"gte=0"`
}

type TimerResetRequest struct {
	TournamentID string `json:"tournamentId" validate:"required"`
	FieldID      string `json:"fieldId,omitempty"`
	DurationMs   int64  `json:"duration" validate:"gt=0"`
}

// TimerTick is the timer_update broadcast payload. When IsRunning is true,
// RemainingMs is derived from the StartedAt anchor, never accumulated per tick.
type TimerTick struct {
	TournamentID string `json:"tournamentId"`
	FieldID      string `json:"fieldId,omitempty"`
	DurationMs   int64  `json:"duration"`
	RemainingMs  int64  `json:"remaining"`
	IsRunning    bool   `json:"isRunning"`
	StartedAt    int64  `json:"startedAt,omitempty"`
	PausedAt     int64  `json:"pausedAt,omitempty"`
}

// ─────────────────────────── Audience display ───────────────────────────────

// DisplaySettings is the last-write-wins audience display state, one value per
// tournament, replayed to late joiners.
type DisplaySettings struct {
	TournamentID string `json:"tournamentId" validate:"required"`
	FieldID      string `json:"fieldId,omitempty"`
	DisplayMode  string `json:"displayMode" validate:"required"`
	MatchID      string `json:"matchId,omitempty"`
	ShowTimer    *bool  `json:"showTimer,omitempty"`
	ShowScores   *bool  `json:"showScores,omitempty"`
	ShowTeams    *bool  `json:"showTeams,omitempty"`
	Message      string `json:"message,omitempty"`
	UpdatedAt    int64  `json:"updatedAt,omitempty"`
}

type AnnouncementEvent struct {
	Message      string `json:"message" validate:"required"`
	TournamentID string `json:"tournamentId,omitempty"`
	FieldID      string `json:"fieldId,omitempty"`
	DurationMs   int64  `json:"duration,omitempty"`
}

// ─────────────────────────────── Scores ─────────────────────────────────────

// ScoreFields is the alliance score block shared by the realtime and persist
// paths. Game element maps are free-form element → count tallies.
type ScoreFields struct {
	MatchID          string         `json:"matchId" validate:"required"`
	TournamentID     string         `json:"tournamentId,omitempty"`
	FieldID          string         `json:"fieldId,omitempty"`
	RedAutoScore     int            `json:"redAutoScore"`
	RedDriveScore    int            `json:"redDriveScore"`
	RedTotalScore    int            `json:"redTotalScore"`
	BlueAutoScore    int            `json:"blueAutoScore"`
	BlueDriveScore   int            `json:"blueDriveScore"`
	BlueTotalScore   int            `json:"blueTotalScore"`
	RedMultiplier    float64        `json:"redMultiplier,omitempty"`
	BlueMultiplier   float64        `json:"blueMultiplier,omitempty"`
	RedGameElements  map[string]int `json:"redGameElements,omitempty"`
	BlueGameElements map[string]int `json:"blueGameElements,omitempty"`
}

// RealtimeScoreUpdate is the ephemeral live-score echo. It never reaches
// durable storage.
type RealtimeScoreUpdate struct {
	Type string `json:"type" validate:"required,eq=realtime"`
	ScoreFields
	Timestamp int64 `json:"timestamp,omitempty"`
}

// PersistScoresRequest asks the storage collaborator to upsert the match's
// scores and reports the outcome to the whole room.
type PersistScoresRequest struct {
	Type string `json:"type" validate:"required,eq=persist"`
	ScoreFields
	FinalScores map[string]any `json:"finalScores,omitempty"`
	SubmittedBy string         `json:"submittedBy,omitempty"`
	Timestamp   int64          `json:"timestamp,omitempty"`
}

// GameElement is the structured form of one element → count tally entry.
type GameElement struct {
	Element     string `json:"element"`
	Count       int    `json:"count"`
	PointsEach  int    `json:"pointsEach"`
	TotalPoints int    `json:"totalPoints"`
	Operation   string `json:"operation"`
}

type PersistenceResultBody struct {
	MatchID   string `json:"matchId"`
	Success   bool   `json:"success"`
	Data      any    `json:"data,omitempty"`
	Error     string `json:"error,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// ScoresPersistedEvent mirrors the original request to the room once the
// collaborator call settles.
type ScoresPersistedEvent struct {
	PersistScoresRequest
	Success     bool   `json:"success"`
	Error       string `json:"error,omitempty"`
	PersistedAt int64  `json:"persistedAt,omitempty"`
	PersistedBy string `json:"persistedBy,omitempty"`
}

// ─────────────────────────────── Rankings ───────────────────────────────────

// RankingSnapshot is a finished ranking computation handed to the gateway by
// the external ranking engine. Rows are relayed opaquely.
type RankingSnapshot struct {
	TournamentID string          `json:"tournamentId" validate:"required"`
	StageID      string          `json:"stageId,omitempty"`
	Rankings     json.RawMessage `json:"rankings"`
	UpdateType   string          `json:"updateType,omitempty"`
}
