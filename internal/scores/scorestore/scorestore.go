// Package scorestore is the Postgres implementation of the match-score
// persistence collaborator.
package scorestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/thanhkt275/RMS-BE-sub001/internal/scores"
)

type PGStore struct {
	db *sql.DB
}

func New(db *sql.DB) *PGStore { return &PGStore{db: db} }

const upsert = `
INSERT INTO match_scores (match_id, tournament_id,
                          red_auto, red_drive, red_total,
                          blue_auto, blue_drive, blue_total,
                          red_elements, blue_elements, final_scores,
                          submitted_by, submitted_at)
     VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
ON CONFLICT (match_id) DO UPDATE
       SET tournament_id = EXCLUDED.tournament_id,
           red_auto      = EXCLUDED.red_auto,
           red_drive     = EXCLUDED.red_drive,
           red_total     = EXCLUDED.red_total,
           blue_auto     = EXCLUDED.blue_auto,
           blue_drive    = EXCLUDED.blue_drive,
           blue_total    = EXCLUDED.blue_total,
           red_elements  = EXCLUDED.red_elements,
           blue_elements = EXCLUDED.blue_elements,
           final_scores  = EXCLUDED.final_scores,
           submitted_by  = EXCLUDED.submitted_by,
           submitted_at  = EXCLUDED.submitted_at
 RETURNING submitted_at`

// UpsertMatchScores writes the match's scores, replacing any prior row for
// the same match id, and returns the stored record.
func (s *PGStore) UpsertMatchScores(ctx context.Context, ms scores.MatchScores) (*scores.MatchScores, error) {
	redElements, err := json.Marshal(ms.RedElements)
	if err != nil {
		return nil, err
	}
	blueElements, err := json.Marshal(ms.BlueElements)
	if err != nil {
		return nil, err
	}
	finalScores, err := json.Marshal(ms.FinalScores)
	if err != nil {
		return nil, err
	}

	var storedAt time.Time
	err = s.db.QueryRowContext(ctx, upsert,
		ms.MatchID, ms.TournamentID,
		ms.RedAutoScore, ms.RedDriveScore, ms.RedTotalScore,
		ms.BlueAutoScore, ms.BlueDriveScore, ms.BlueTotalScore,
		redElements, blueElements, finalScores,
		ms.SubmittedBy, ms.SubmittedAt,
	).Scan(&storedAt)
	if err != nil {
		return nil, err
	}

	stored := ms
	stored.SubmittedAt = storedAt
	return &stored, nil
}
