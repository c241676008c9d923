// Package rankings is the inversion-of-control seam letting the external
// ranking engine push finished snapshots to tournament rooms without
// depending on the transport layer.
package rankings

import (
	"go.uber.org/zap"

	"github.com/thanhkt275/RMS-BE-sub001/internal/broadcast"
	"github.com/thanhkt275/RMS-BE-sub001/internal/events"
)

// Relay holds the broadcaster by construction; the ranking engine holds a
// *Relay, never the hub.
type Relay struct {
	emit broadcast.Broadcaster
}

func NewRelay(emit broadcast.Broadcaster) *Relay { return &Relay{emit: emit} }

// Publish fans a finished ranking snapshot out to the tournament room.
// Rankings are never field-scoped.
func (r *Relay) Publish(snapshot events.RankingSnapshot) {
	if snapshot.TournamentID == "" {
		zap.L().Warn("rankings.publish_unscoped", zap.String("update_type", snapshot.UpdateType))
		return
	}

	r.emit.Emit(events.RankingUpdate, events.Scope{TournamentID: snapshot.TournamentID}, snapshot)
}
