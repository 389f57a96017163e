package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventServiceSynchronousDispatch(t *testing.T) {
	s := NewEventService(&EventConfig{QueueSize: 0}, testLogger())
	defer s.Stop()

	var got []*Event
	s.Subscribe("relationship.linked", func(ctx context.Context, event *Event) {
		got = append(got, event)
	})

	s.Publish(context.Background(), "relationship.linked", 1, 2, "parent")
	s.Publish(context.Background(), "member.created", 3, 0, "")

	require.Len(t, got, 1)
	assert.Equal(t, uint(1), got[0].MemberID)
	assert.Equal(t, uint(2), got[0].RelativeID)
	assert.NotEmpty(t, got[0].ID)
}

func TestEventServiceWildcardSubscriber(t *testing.T) {
	s := NewEventService(&EventConfig{QueueSize: 0}, testLogger())
	defer s.Stop()

	var count int
	s.Subscribe("*", func(ctx context.Context, event *Event) {
		count++
	})

	s.Publish(context.Background(), "relationship.linked", 1, 2, "")
	s.Publish(context.Background(), "member.created", 3, 0, "")

	assert.Equal(t, 2, count)
}

func TestEventServiceAsyncQueueDrainsOnStop(t *testing.T) {
	s := NewEventService(&EventConfig{QueueSize: 16}, testLogger())

	var mu sync.Mutex
	var count int
	s.Subscribe("*", func(ctx context.Context, event *Event) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	for i := 0; i < 10; i++ {
		s.Publish(context.Background(), "member.created", uint(i+1), 0, "")
	}
	s.Stop()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 10, count)
}
