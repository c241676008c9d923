package display

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/thanhkt275/RMS-BE-sub001/internal/events"
)

const (
	redisDisplayKeyPrefix = "display:"

	// Display state is only useful while the tournament is live; let stale
	// entries age out instead of accumulating forever.
	redisDisplayTTL = 24 * time.Hour
)

// RedisStore keeps the replay state out-of-process so late joiners still see
// current settings after a gateway restart.
type RedisStore struct {
	rdc *redis.Client
}

func NewRedisStore(rdc *redis.Client) *RedisStore { return &RedisStore{rdc: rdc} }

func (r *RedisStore) Put(ctx context.Context, s events.DisplaySettings) error {
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return r.rdc.Set(ctx, redisDisplayKeyPrefix+s.TournamentID, data, redisDisplayTTL).Err()
}

func (r *RedisStore) Get(ctx context.Context, tournamentID string) (events.DisplaySettings, bool, error) {
	var s events.DisplaySettings

	data, err := r.rdc.Get(ctx, redisDisplayKeyPrefix+tournamentID).Bytes()
	if err == redis.Nil {
		return s, false, nil
	}
	if err != nil {
		return s, false, err
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return s, false, err
	}
	return s, true, nil
}
