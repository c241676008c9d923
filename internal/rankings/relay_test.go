package rankings

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thanhkt275/RMS-BE-sub001/internal/events"
)

type recordedEmit struct {
	event   string
	scope   events.Scope
	payload any
}

type fakeBroadcaster struct {
	emits []recordedEmit
}

func (f *fakeBroadcaster) Emit(event string, scope events.Scope, payload any) {
	f.emits = append(f.emits, recordedEmit{event: event, scope: scope, payload: payload})
}

func TestPublish_TournamentRoomOnly(t *testing.T) {
	fb := &fakeBroadcaster{}
	relay := NewRelay(fb)

	snapshot := events.RankingSnapshot{
		TournamentID: "T",
		StageID:      "swiss-1",
		Rankings:     json.RawMessage(`[{"teamNumber":"42","rank":1}]`),
		UpdateType:   "full",
	}
	relay.Publish(snapshot)

	require.Len(t, fb.emits, 1)
	assert.Equal(t, events.RankingUpdate, fb.emits[0].event)
	assert.Equal(t, events.Scope{TournamentID: "T"}, fb.emits[0].scope, "rankings are never field-scoped")
	assert.Equal(t, snapshot, fb.emits[0].payload)
}

func TestPublish_UnscopedSnapshotDropped(t *testing.T) {
	fb := &fakeBroadcaster{}
	relay := NewRelay(fb)

	relay.Publish(events.RankingSnapshot{UpdateType: "full"})
	assert.Empty(t, fb.emits)
}
