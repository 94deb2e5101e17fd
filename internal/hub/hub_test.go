package hub

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recv(t *testing.T, s *Stream) Event {
	t.Helper()
	select {
	case ev := <-s.Send:
		return ev
	default:
		t.Fatal("expected a buffered event")
		return Event{}
	}
}

func TestHub_PublishFansOutToAllStreams(t *testing.T) {
	h := NewHub()
	defer h.Close()

	s1, err := h.Subscribe("u1")
	require.NoError(t, err)
	s2, err := h.Subscribe("u1")
	require.NoError(t, err)

	require.NoError(t, h.Publish("u1", "message", map[string]string{"text": "hi"}))

	for _, s := range []*Stream{s1, s2} {
		ev := recv(t, s)
		assert.Equal(t, "message", ev.Name)

		var payload map[string]string
		require.NoError(t, json.Unmarshal(ev.Data, &payload))
		assert.Equal(t, "hi", payload["text"])
	}
}

func TestHub_PublishWithoutSubscribersIsDropped(t *testing.T) {
	h := NewHub()
	defer h.Close()

	assert.NoError(t, h.Publish("nobody", "message", "x"))
}

func TestHub_PublishPreservesOrder(t *testing.T) {
	h := NewHub()
	defer h.Close()

	s, err := h.Subscribe("u1")
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		require.NoError(t, h.Publish("u1", "message", i))
	}

	for i := 0; i < 5; i++ {
		ev := recv(t, s)
		var n int
		require.NoError(t, json.Unmarshal(ev.Data, &n))
		assert.Equal(t, i, n)
	}
}

func TestHub_UnsubscribeIsIdempotent(t *testing.T) {
	h := NewHub()
	defer h.Close()

	s, err := h.Subscribe("u1")
	require.NoError(t, err)

	h.Unsubscribe("u1", s)
	h.Unsubscribe("u1", s)

	assert.Equal(t, 0, h.StreamCount("u1"))

	select {
	case <-s.Done():
	default:
		t.Fatal("expected Done to be closed after unsubscribe")
	}
}

func TestHub_FullStreamGetsDisconnected(t *testing.T) {
	h := NewHub()
	defer h.Close()

	slow, err := h.Subscribe("u1")
	require.NoError(t, err)
	healthy, err := h.Subscribe("u1")
	require.NoError(t, err)

	// Fill the slow stream's buffer without draining it.
	for i := 0; i < cap(slow.Send); i++ {
		require.NoError(t, h.Publish("u1", "message", i))
		recv(t, healthy)
	}

	// One more publish overflows the slow stream.
	require.NoError(t, h.Publish("u1", "message", "overflow"))

	select {
	case <-slow.Done():
	default:
		t.Fatal("expected slow stream to be disconnected")
	}

	assert.Equal(t, 1, h.StreamCount("u1"))
	ev := recv(t, healthy)
	assert.Equal(t, "message", ev.Name)
}

func TestHub_CloseDisconnectsEverything(t *testing.T) {
	h := NewHub()

	s, err := h.Subscribe("u1")
	require.NoError(t, err)

	h.Close()

	select {
	case <-s.Done():
	default:
		t.Fatal("expected Done to be closed after hub close")
	}

	_, err = h.Subscribe("u2")
	assert.ErrorIs(t, err, ErrHubClosed)
}
