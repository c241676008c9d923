package ws

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func roomCount(h *Hub) int {
	n := 0
	h.rooms.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

func TestHub_JoinLeave(t *testing.T) {
	h := NewHub()
	c := &clientConn{}

	h.join("T", c)
	h.join("T", c) // idempotent
	assert.Equal(t, 1, roomCount(h))

	v, ok := h.rooms.Load("T")
	require.True(t, ok)
	r := v.(*room)
	assert.Len(t, r.conns, 1)

	h.leave("T", c)
	assert.Equal(t, 0, roomCount(h), "empty room is removed")
}

func TestHub_LeaveUnknownRoomIsNoop(t *testing.T) {
	h := NewHub()
	h.leave("missing", &clientConn{})
}

func TestHub_UntrackRemovesFromEveryRoom(t *testing.T) {
	h := NewHub()
	c := &clientConn{}
	other := &clientConn{}

	h.track(c)
	h.track(other)
	h.join("T", c)
	h.join("field:F", c)
	h.join("T", other)

	h.untrack(c)

	assert.Len(t, h.conns, 1)
	v, ok := h.rooms.Load("T")
	require.True(t, ok, "room with remaining member survives")
	assert.Len(t, v.(*room).conns, 1)
	_, ok = h.rooms.Load("field:F")
	assert.False(t, ok, "emptied field room is removed")
}

func TestHub_BroadcastUnknownRoomIsNoop(t *testing.T) {
	h := NewHub()
	h.BroadcastRoom("nobody", []byte(`{}`))
}
