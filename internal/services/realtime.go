package services

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/AnshRaj112/travel-journal-backend/internal/models"
)

const (
	notificationChannelPrefix = "notifications:user:"
	subscriberBuffer          = 16
)

// Hub fans notification events out to the websocket connections of their
// recipient. With Redis configured, events travel through pub/sub so every
// instance delivers to its own connections; without it delivery is local.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan models.NotificationEvent]struct{}

	redis   *redis.Client
	log     *zap.Logger
	started sync.Once
}

func NewHub(client *redis.Client, log *zap.Logger) *Hub {
	return &Hub{
		subscribers: make(map[string]map[chan models.NotificationEvent]struct{}),
		redis:       client,
		log:         log,
	}
}

// Subscribe registers a listener for userID. The returned func unregisters
// it and closes the channel.
func (h *Hub) Subscribe(userID string) (<-chan models.NotificationEvent, func()) {
	ch := make(chan models.NotificationEvent, subscriberBuffer)

	h.mu.Lock()
	if h.subscribers[userID] == nil {
		h.subscribers[userID] = make(map[chan models.NotificationEvent]struct{})
	}
	h.subscribers[userID][ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subscribers[userID], ch)
			if len(h.subscribers[userID]) == 0 {
				delete(h.subscribers, userID)
			}
			close(ch)
			h.mu.Unlock()
		})
	}
}

// FanOut delivers event to local listeners of its recipient. Slow listeners
// drop events rather than block the publisher.
func (h *Hub) FanOut(event models.NotificationEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.subscribers[event.RecipientID] {
		select {
		case ch <- event:
		default:
			h.log.Debug("dropping notification for slow listener", zap.String("recipient", event.RecipientID))
		}
	}
}

// Publish sends event to its recipient on every instance.
func (h *Hub) Publish(ctx context.Context, event models.NotificationEvent) error {
	if h.redis == nil {
		h.FanOut(event)
		return nil
	}
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return h.redis.Publish(ctx, notificationChannelPrefix+event.RecipientID, data).Err()
}

// Start launches the shared Redis subscriber once per instance. It is a no-op
// without Redis.
func (h *Hub) Start(ctx context.Context) {
	if h.redis == nil {
		return
	}
	h.started.Do(func() {
		go h.runSubscriber(ctx)
	})
}

func (h *Hub) runSubscriber(ctx context.Context) {
	backoff := time.Second

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		func() {
			pubsub := h.redis.PSubscribe(ctx, notificationChannelPrefix+"*")
			defer pubsub.Close()

			h.log.Info("notification subscriber started", zap.String("pattern", notificationChannelPrefix+"*"))

			for {
				msg, err := pubsub.ReceiveMessage(ctx)
				if err != nil {
					if ctx.Err() != nil {
						return
					}
					h.log.Warn("notification subscriber error", zap.Error(err), zap.Duration("retry_in", backoff))
					select {
					case <-time.After(backoff):
					case <-ctx.Done():
					}
					backoff *= 2
					if backoff > 30*time.Second {
						backoff = 30 * time.Second
					}
					return
				}

				backoff = time.Second

				var event models.NotificationEvent
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					h.log.Warn("undecodable notification event", zap.Error(err))
					continue
				}
				if event.RecipientID == "" {
					event.RecipientID = strings.TrimPrefix(msg.Channel, notificationChannelPrefix)
				}
				h.FanOut(event)
			}
		}()
	}
}
