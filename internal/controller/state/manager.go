package state

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/Freeeeeet/lesson_scheduler/internal/model"
	"github.com/google/uuid"
)

// ListKind вид списка, последним показанного пользователю
type ListKind string

const (
	ListSlots    ListKind = "slots"
	ListRequests ListKind = "requests"
	ListLessons  ListKind = "lessons"
)

// Manager помнит последние показанные пользователю списки, чтобы команды
// могли ссылаться на элементы по номеру (/accept 2) вместо UUID
type Manager struct {
	mu    sync.RWMutex
	lists map[string]map[ListKind][]uuid.UUID // userID -> kind -> ids
}

// NewManager создаёт новый менеджер состояний
func NewManager() *Manager {
	return &Manager{
		lists: make(map[string]map[ListKind][]uuid.UUID),
	}
}

// Remember сохраняет порядок элементов показанного списка
func (sm *Manager) Remember(userID string, kind ListKind, ids []uuid.UUID) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if _, exists := sm.lists[userID]; !exists {
		sm.lists[userID] = make(map[ListKind][]uuid.UUID)
	}
	sm.lists[userID][kind] = append([]uuid.UUID(nil), ids...)
}

// Resolve превращает ссылку в ID: полный UUID или номер в последнем списке (1, #1)
func (sm *Manager) Resolve(userID string, kind ListKind, ref string) (uuid.UUID, error) {
	if id, err := uuid.Parse(ref); err == nil {
		return id, nil
	}

	n, err := strconv.Atoi(strings.TrimPrefix(ref, "#"))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %q is neither an id nor a list number", model.ErrValidation, ref)
	}

	sm.mu.RLock()
	defer sm.mu.RUnlock()

	ids := sm.lists[userID][kind]
	if n < 1 || n > len(ids) {
		return uuid.Nil, fmt.Errorf("%w: no item #%d in the last %s list", model.ErrValidation, n, kind)
	}
	return ids[n-1], nil
}

// ClearState забывает все списки пользователя
func (sm *Manager) ClearState(userID string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	delete(sm.lists, userID)
}
