package eventstest

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/retail_shop/internal/events"
)

var _ events.Publisher = (*Recorder)(nil)

func TestRecorder_KeepsOrder(t *testing.T) {
	var r Recorder
	ctx := context.Background()

	require.NoError(t, r.Publish(ctx, events.TopicProducts, "a", events.ProductEvent{Type: events.ProductCreated}))
	require.NoError(t, r.Publish(ctx, events.TopicCart, "b", events.CartEvent{Type: events.CartItemAdded}))

	msgs := r.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, events.TopicProducts, msgs[0].Topic)

	last, ok := r.Last()
	require.True(t, ok)
	assert.Equal(t, "b", last.Key)
	assert.Equal(t, events.CartItemAdded, last.Event.(events.CartEvent).Type)
}

func TestRecorder_Err(t *testing.T) {
	r := Recorder{Err: errors.New("down")}
	require.Error(t, r.Publish(context.Background(), events.TopicUsers, "k", nil))
	assert.Empty(t, r.Messages())
}
