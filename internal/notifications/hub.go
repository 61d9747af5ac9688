package notifications

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	EventCycleUpdated    = "cycle_updated"
	EventProgressUpdated = "progress_updated"
)

type Event struct {
	Type      string      `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data,omitempty"`
}

// Hub рассылает события изменений цикла подписчикам домохозяйства.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[uuid.UUID]map[chan Event]struct{}
}

// NewHub создает хаб для SSE-подписок.
func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[uuid.UUID]map[chan Event]struct{}),
	}
}

// Subscribe подписывает домохозяйство на события и возвращает канал и
// функцию отписки.
func (h *Hub) Subscribe(householdID uuid.UUID) (<-chan Event, func()) {
	ch := make(chan Event, 10)

	h.mu.Lock()
	defer h.mu.Unlock()

	subs, ok := h.subscribers[householdID]
	if !ok {
		subs = make(map[chan Event]struct{})
		h.subscribers[householdID] = subs
	}
	subs[ch] = struct{}{}

	return ch, func() {
		h.mu.Lock()
		defer h.mu.Unlock()

		if subs, exists := h.subscribers[householdID]; exists {
			delete(subs, ch)
			if len(subs) == 0 {
				delete(h.subscribers, householdID)
			}
		}
		close(ch)
	}
}

// Publish отправляет событие всем подписчикам домохозяйства. Медленные
// подписчики пропускают события, не блокируя отправителя.
func (h *Hub) Publish(householdID uuid.UUID, event Event) {
	event.Timestamp = time.Now().UTC()

	h.mu.RLock()
	defer h.mu.RUnlock()

	subs, ok := h.subscribers[householdID]
	if !ok {
		return
	}

	for ch := range subs {
		select {
		case ch <- event:
		default:
		}
	}
}

// PublishProgress сообщает об изменении реестра прогресса цикла.
func (h *Hub) PublishProgress(householdID uuid.UUID, cycleKey, occurrenceKey string) {
	h.Publish(householdID, Event{
		Type: EventProgressUpdated,
		Data: map[string]interface{}{
			"cycle_key":      cycleKey,
			"occurrence_key": occurrenceKey,
		},
	})
}

// PublishCycle сообщает об изменении настроек цикла.
func (h *Hub) PublishCycle(householdID uuid.UUID, cycleKey string) {
	h.Publish(householdID, Event{
		Type: EventCycleUpdated,
		Data: map[string]interface{}{
			"cycle_key": cycleKey,
		},
	})
}
