package core_test

import (
	"context"
	"testing"

	"github.com/elthrasher/eventreg/internal/core"
	"github.com/elthrasher/eventreg/internal/domain/event"
	"github.com/elthrasher/eventreg/internal/store/storetest"
	"github.com/elthrasher/eventreg/internal/validate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventService_CreateEvent_GeneratesIDWhenOmitted(t *testing.T) {
	svc := core.NewEventService(storetest.New(), nil)

	e, err := svc.CreateEvent(context.Background(), validate.CreateEventParams{
		Title:    "Go Meetup",
		Capacity: 10,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, e.ID)
	assert.Zero(t, e.RegisteredCount)
	assert.Empty(t, e.Waitlist)
}

func TestEventService_GetEvent_ComputesView(t *testing.T) {
	s := storetest.New()
	svc := core.NewEventService(s, nil)

	e, err := svc.CreateEvent(context.Background(), validate.CreateEventParams{
		Title:    "Go Meetup",
		Capacity: 10,
	})
	require.NoError(t, err)

	view, err := svc.GetEvent(context.Background(), e.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, view.AvailableSpots)
	assert.Zero(t, view.WaitlistCount)
}

func TestEventService_GetEvent_NotFound(t *testing.T) {
	svc := core.NewEventService(storetest.New(), nil)
	_, err := svc.GetEvent(context.Background(), "missing")
	assert.ErrorIs(t, err, event.ErrNotFound)
}

func TestEventService_UpdateEvent_OpaqueOnly(t *testing.T) {
	s := storetest.New()
	svc := core.NewEventService(s, nil)

	e, err := svc.CreateEvent(context.Background(), validate.CreateEventParams{
		Title:    "Go Meetup",
		Capacity: 10,
	})
	require.NoError(t, err)

	newTitle := "Updated Title"
	updated, err := svc.UpdateEvent(context.Background(), e.ID, validate.UpdateEventParams{Title: &newTitle})
	require.NoError(t, err)
	assert.Equal(t, newTitle, updated.Title)
	assert.Equal(t, 10, updated.Capacity, "capacity must be untouched by an opaque patch")
}

func TestEventService_DeleteEvent(t *testing.T) {
	s := storetest.New()
	svc := core.NewEventService(s, nil)

	e, err := svc.CreateEvent(context.Background(), validate.CreateEventParams{
		Title:    "Go Meetup",
		Capacity: 10,
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteEvent(context.Background(), e.ID))

	_, err = svc.GetEvent(context.Background(), e.ID)
	assert.ErrorIs(t, err, event.ErrNotFound)
}

func TestEventService_ListEvents_FiltersByStatus(t *testing.T) {
	s := storetest.New()
	svc := core.NewEventService(s, nil)

	published := "published"
	_, err := svc.CreateEvent(context.Background(), validate.CreateEventParams{
		Title: "Published Event", Capacity: 5, Status: "published",
	})
	require.NoError(t, err)
	_, err = svc.CreateEvent(context.Background(), validate.CreateEventParams{
		Title: "Draft Event", Capacity: 5,
	})
	require.NoError(t, err)

	items, err := svc.ListEvents(context.Background(), &published)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "published", items[0].Status)
}
