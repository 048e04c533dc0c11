package events

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEntityChangedEvent(t *testing.T) {
	type taskPayload struct {
		ID    int64  `json:"id"`
		Title string `json:"title"`
	}

	event, err := NewEntityChangedEvent(EntityTask, ActionCreated, 7, taskPayload{ID: 7, Title: "write"})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, event.ID)
	assert.Equal(t, EntityTask, event.EntityType)
	assert.Equal(t, ActionCreated, event.Action)
	assert.Equal(t, int64(7), event.EntityID)
	assert.WithinDuration(t, time.Now(), event.OccurredAt, 2*time.Second)

	var decoded taskPayload
	require.NoError(t, event.UnmarshalPayload(&decoded))
	assert.Equal(t, taskPayload{ID: 7, Title: "write"}, decoded)
}

func TestNewEntityChangedEvent_NilPayload(t *testing.T) {
	event, err := NewEntityChangedEvent(EntityJob, ActionDeleted, 9, nil)
	require.NoError(t, err)
	assert.Empty(t, event.Payload)
}

func TestNewEntityChangedEvent_UnencodablePayload(t *testing.T) {
	_, err := NewEntityChangedEvent(EntityTask, ActionCreated, 1, make(chan int))
	assert.Error(t, err)
}

func TestEventIDsAreUnique(t *testing.T) {
	a, err := NewEntityChangedEvent(EntityTask, ActionCreated, 1, nil)
	require.NoError(t, err)
	b, err := NewEntityChangedEvent(EntityTask, ActionCreated, 1, nil)
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
}
