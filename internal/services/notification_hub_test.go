package services

import (
	"testing"

	"github.com/justsurfingit/hiring-board/internal/dtos"
	"github.com/stretchr/testify/require"
)

func TestNotificationHubReplayAndLive(t *testing.T) {
	hub := NewNotificationHub(3)
	for i := 0; i < 5; i++ {
		hub.Publish(1, dtos.EventApplicationCreated, i)
	}

	replay, live, cancel := hub.Subscribe(0, 0)
	defer cancel()
	require.Len(t, replay, 3, "backlog keeps the newest events only")
	require.Equal(t, int64(3), replay[0].Seq)

	replay, _, cancelFrom := hub.Subscribe(0, 3)
	defer cancelFrom()
	require.Len(t, replay, 2)
	require.Equal(t, int64(4), replay[0].Seq)
	require.Equal(t, int64(5), replay[1].Seq)

	hub.Publish(1, dtos.EventStatusChanged, "x")
	n := <-live
	require.Equal(t, int64(6), n.Seq)
	require.Equal(t, uint(1), n.JobID)
	require.Equal(t, dtos.EventStatusChanged, n.Event)
}

func TestNotificationHubScopesStreamsToJob(t *testing.T) {
	hub := NewNotificationHub(10)
	hub.Publish(1, dtos.EventApplicationCreated, nil)
	hub.Publish(2, dtos.EventApplicationCreated, nil)

	replay, live, cancel := hub.Subscribe(2, 0)
	defer cancel()
	require.Len(t, replay, 1)
	require.Equal(t, uint(2), replay[0].JobID)

	hub.Publish(1, dtos.EventStatusChanged, nil)
	hub.Publish(2, dtos.EventStatusChanged, nil)
	n := <-live
	require.Equal(t, uint(2), n.JobID)
	require.Equal(t, int64(4), n.Seq, "sequence numbers are shared across jobs")
	require.Empty(t, live)
}

func TestNotificationHubDropsSlowSubscriber(t *testing.T) {
	hub := NewNotificationHub(10)
	hub.buffer = 1

	var counts []int
	hub.OnSubscribersChanged = func(n int) { counts = append(counts, n) }

	_, live, cancel := hub.Subscribe(7, 0)
	defer cancel()

	hub.Publish(7, "a", nil)
	hub.Publish(8, "other job", nil)
	hub.Publish(7, "b", nil)

	first, ok := <-live
	require.True(t, ok)
	require.Equal(t, "a", first.Event)
	_, ok = <-live
	require.False(t, ok, "slow subscriber should be closed")
	require.Equal(t, []int{1, 0}, counts)
}

func TestNotificationHubCancelIsIdempotent(t *testing.T) {
	hub := NewNotificationHub(0)
	_, live, cancel := hub.Subscribe(0, 0)
	cancel()
	cancel()
	_, ok := <-live
	require.False(t, ok)
}
