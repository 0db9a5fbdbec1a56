package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/sueworkspace/sungji-drop/pkg/redis"
)

// Publisher fans committed state changes out over redis pub/sub so streaming
// connections on any instance see them.
type Publisher struct {
	redis *redis.Client
}

func NewPublisher(client *redis.Client) (*Publisher, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	return &Publisher{redis: client}, nil
}

// PublishChatMessage pushes a message payload onto the room's channel.
func (p *Publisher) PublishChatMessage(ctx context.Context, roomID uuid.UUID, payload any) error {
	return p.publish(ctx, p.redis.ChatRoomChannel(roomID.String()), payload)
}

// PublishRequestUpdate pushes a request status change onto the owner's channel.
func (p *Publisher) PublishRequestUpdate(ctx context.Context, userID uuid.UUID, payload any) error {
	return p.publish(ctx, p.redis.UserRequestsChannel(userID.String()), payload)
}

func (p *Publisher) publish(ctx context.Context, channel string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	if err := p.redis.Publish(ctx, channel, data); err != nil {
		return fmt.Errorf("publish to %s: %w", channel, err)
	}
	return nil
}
