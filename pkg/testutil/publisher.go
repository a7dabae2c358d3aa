package testutil

import (
	"context"

	"github.com/cardcon-lab/backend/pkg/pubsub"
)

type MockPublisher struct {
	PublishFunc func(ctx context.Context, topic string, pack *pubsub.Pack) error
}

func (m *MockPublisher) Publish(ctx context.Context, topic string, pack *pubsub.Pack) error {
	if m.PublishFunc != nil {
		return m.PublishFunc(ctx, topic, pack)
	}

	return nil
}
