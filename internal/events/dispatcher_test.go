package events_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yashitanamdeo/janmat-sub001/internal/events"
)

func TestDispatcher_RunsAllHandlersAndJoinsErrors(t *testing.T) {
	d := events.NewInMemoryDispatcher()
	boom := errors.New("boom")
	var seen []string

	d.Subscribe(events.EventComplaintAssigned, func(_ context.Context, e events.Event) error {
		seen = append(seen, "first:"+e.ComplaintID)
		return boom
	})
	d.Subscribe(events.EventComplaintAssigned, func(_ context.Context, e events.Event) error {
		require.NotEmpty(t, e.ID)
		require.False(t, e.Timestamp.IsZero())
		seen = append(seen, "second:"+e.ComplaintID)
		return nil
	})
	d.Subscribe(events.EventComplaintArchived, func(context.Context, events.Event) error {
		seen = append(seen, "archived")
		return nil
	})

	err := d.Publish(context.Background(), events.Event{Type: events.EventComplaintAssigned, ComplaintID: "c1"})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"first:c1", "second:c1"}, seen)
}
