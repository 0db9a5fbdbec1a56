package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/sueworkspace/sungji-drop/pkg/logger"
	"github.com/sueworkspace/sungji-drop/pkg/redis"
)

const streamBufferSize = 16

// Event is one server-sent event ready to be written to a stream. ID is the
// originating entity id when the payload carries one.
type Event struct {
	ID   string
	Data []byte
}

// Streamer turns redis pub/sub channels into per-connection event streams
// backing the SSE endpoints.
type Streamer struct {
	redis *redis.Client
	logg  *logger.Logger
}

func NewStreamer(client *redis.Client, logg *logger.Logger) (*Streamer, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &Streamer{redis: client, logg: logg}, nil
}

// StreamRoom delivers a chat room's messages, dropping duplicate message ids
// so redelivery upstream never repaints the client.
func (s *Streamer) StreamRoom(ctx context.Context, roomID uuid.UUID) (<-chan Event, error) {
	return s.stream(ctx, s.redis.ChatRoomChannel(roomID.String()), true)
}

// StreamUserRequests delivers a user's request status updates. Updates are
// idempotent on the client so no dedup is applied.
func (s *Streamer) StreamUserRequests(ctx context.Context, userID uuid.UUID) (<-chan Event, error) {
	return s.stream(ctx, s.redis.UserRequestsChannel(userID.String()), false)
}

func (s *Streamer) stream(ctx context.Context, channel string, dedup bool) (<-chan Event, error) {
	sub, err := s.redis.Subscribe(ctx, channel)
	if err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", channel, err)
	}

	out := make(chan Event, streamBufferSize)
	go func() {
		defer close(out)
		defer func() {
			if err := sub.Close(); err != nil {
				s.logg.Warn(s.logg.WithField(ctx, "channel", channel), "closing subscription failed")
			}
		}()

		var seen *seenRing
		if dedup {
			seen = newSeenRing(128)
		}

		messages := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-messages:
				if !ok {
					return
				}
				event := Event{ID: payloadID([]byte(msg.Payload)), Data: []byte(msg.Payload)}
				if seen != nil && event.ID != "" && !seen.Add(event.ID) {
					continue
				}
				select {
				case out <- event:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

// payloadID pulls the entity id out of a JSON payload, if present.
func payloadID(data []byte) string {
	var probe struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return ""
	}
	return probe.ID
}

// seenRing remembers the last N ids with O(1) membership checks.
type seenRing struct {
	order []string
	index map[string]struct{}
	next  int
}

func newSeenRing(size int) *seenRing {
	return &seenRing{
		order: make([]string, size),
		index: make(map[string]struct{}, size),
	}
}

// Add records the id and reports whether it was new.
func (r *seenRing) Add(id string) bool {
	if _, ok := r.index[id]; ok {
		return false
	}
	if evicted := r.order[r.next]; evicted != "" {
		delete(r.index, evicted)
	}
	r.order[r.next] = id
	r.index[id] = struct{}{}
	r.next = (r.next + 1) % len(r.order)
	return true
}
