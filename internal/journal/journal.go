// Package journal копит изменения движка в памяти до сброса в хранилище.
package journal

import (
	"sync"

	"github.com/Freeeeeet/lesson_scheduler/internal/model"
)

// Journal упорядоченный буфер изменений. Record вызывается внутри
// критических секций движка и не делает ввод-вывод.
type Journal struct {
	mu      sync.Mutex
	pending []model.Change
}

func New() *Journal {
	return &Journal{}
}

// Record добавляет изменения в конец очереди
func (j *Journal) Record(changes ...model.Change) {
	if len(changes) == 0 {
		return
	}

	j.mu.Lock()
	j.pending = append(j.pending, changes...)
	j.mu.Unlock()
}

// Drain забирает все накопленные изменения
func (j *Journal) Drain() []model.Change {
	j.mu.Lock()
	defer j.mu.Unlock()

	changes := j.pending
	j.pending = nil
	return changes
}

// Requeue возвращает неприменённые изменения в начало очереди,
// перед теми, что успели накопиться после Drain
func (j *Journal) Requeue(changes []model.Change) {
	if len(changes) == 0 {
		return
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	merged := make([]model.Change, 0, len(changes)+len(j.pending))
	merged = append(merged, changes...)
	j.pending = append(merged, j.pending...)
}

// Len количество ожидающих изменений
func (j *Journal) Len() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.pending)
}
