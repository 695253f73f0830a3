package service

import (
	"context"

	"github.com/Skotchmaster/retail_shop/internal/events"
	"github.com/Skotchmaster/retail_shop/internal/logging"
)

// publish is best effort: a broker outage never fails the request.
func publish(ctx context.Context, p events.Publisher, topic, key string, event any) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, topic, key, event); err != nil {
		logging.FromContext(ctx).Warn("publish_event_failed", "topic", topic, "key", key, "error", err)
	}
}
