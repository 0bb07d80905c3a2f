package community

import (
	"context"
	"sync"

	"github.com/UkralStul/wikikisan-service/internal/domain"
	"github.com/google/uuid"
)

// EventType - тип события ленты.
type EventType string

const (
	EventPostCreated  EventType = "post_created"
	EventReaction     EventType = "reaction"
	EventCommentAdded EventType = "comment_added"
)

// Event - событие, рассылаемое подписчикам живой ленты.
type Event struct {
	Type    EventType       `json:"type"`
	PostID  string          `json:"postId"`
	Post    *domain.Post    `json:"post,omitempty"`
	Comment *domain.Comment `json:"comment,omitempty"`
	Count   int             `json:"count,omitempty"`
}

// Hub хранит каналы подписчиков на события ленты.
type Hub struct {
	mu     sync.RWMutex
	buffer int
	//   map[subscriberID] channel
	subs map[string]chan Event
}

// NewHub - конструктор хаба; buffer - размер буфера канала каждого подписчика.
func NewHub(buffer int) *Hub {
	if buffer < 1 {
		buffer = 1
	}
	return &Hub{
		buffer: buffer,
		subs:   make(map[string]chan Event),
	}
}

// Subscribe регистрирует подписчика. Канал закрывается после отмены ctx.
func (h *Hub) Subscribe(ctx context.Context) <-chan Event {
	ch := make(chan Event, h.buffer)
	subID := uuid.NewString()

	h.mu.Lock()
	h.subs[subID] = ch
	h.mu.Unlock()

	// Горутина для очистки при отключении клиента
	go func() {
		<-ctx.Done()
		h.mu.Lock()
		delete(h.subs, subID)
		close(ch)
		h.mu.Unlock()
	}()

	return ch
}

// Publish рассылает событие без блокировки: медленный подписчик событие пропускает.
func (h *Hub) Publish(e Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, ch := range h.subs {
		select {
		case ch <- e:
		default:
		}
	}
}

// Subscribers возвращает число активных подписчиков.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
