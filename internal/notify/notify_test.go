package notify

import (
	"context"
	"testing"
	"time"

	"github.com/ihirwe/event-locator/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFor(t *testing.T) {
	ev := domain.Event{
		ID:       "ev-1",
		Title:    "Jazz Night",
		Category: "music",
		City:     "Kigali",
		Status:   domain.StatusDue,
	}

	n := For(ev)

	assert.Equal(t, "ev-1", n.EventID)
	assert.Equal(t, "Jazz Night", n.Title)
	assert.Equal(t, "music", n.Category)
	assert.Equal(t, "Kigali", n.City)
	assert.Equal(t, "due", n.Status)
}

func TestSerializeToMessage(t *testing.T) {
	n := EventNotification{
		EventID:  "ev-1",
		Title:    "Jazz Night",
		Category: "music",
		City:     "Kigali",
	}

	msg, err := serializeToMessage(n)
	require.NoError(t, err)

	assert.Equal(t, []byte("ev-1"), msg.Key)
	assert.JSONEq(t, `{"eventId":"ev-1","title":"Jazz Night","category":"music","city":"Kigali"}`, string(msg.Value))
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, "category", msg.Headers[0].Key)
	assert.Equal(t, []byte("music"), msg.Headers[0].Value)
}

func TestNopPublisher(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	var p Publisher = NopPublisher{}
	assert.NoError(t, p.Publish(ctx, EventNotification{EventID: "ev-1"}))
	assert.NoError(t, p.Close())
}
