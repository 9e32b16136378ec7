package app

import (
	"context"
	"sync"
	"time"

	"github.com/Freeeeeet/lesson_scheduler/internal/metrics"
	"github.com/Freeeeeet/lesson_scheduler/internal/model"
	"github.com/Freeeeeet/lesson_scheduler/internal/repository"
	"go.uber.org/zap"
)

// ChangeSource очередь изменений, ожидающих сохранения
type ChangeSource interface {
	Drain() []model.Change
	Requeue(changes []model.Change)
	Len() int
}

// ChangeApplier сохраняет изменения в хранилище
type ChangeApplier interface {
	Apply(ctx context.Context, changes []model.Change) error
}

// Scheduler периодически сбрасывает журнал изменений в базу
type Scheduler struct {
	source   ChangeSource
	applier  ChangeApplier
	interval time.Duration
	logger   *zap.Logger

	stopOnce sync.Once
	stopChan chan struct{}
	done     chan struct{}
}

// NewScheduler создаёт новый планировщик
func NewScheduler(source ChangeSource, applier ChangeApplier, interval time.Duration, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		source:   source,
		applier:  applier,
		interval: interval,
		logger:   logger,
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start запускает фоновый сброс журнала
func (s *Scheduler) Start(ctx context.Context) {
	s.logger.Info("Starting journal flush scheduler", zap.Duration("interval", s.interval))
	go s.runFlushTask(ctx)
}

// Stop останавливает планировщик и дожидается финального сброса
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		s.logger.Info("Stopping journal flush scheduler")
		close(s.stopChan)
	})
	<-s.done
}

func (s *Scheduler) runFlushTask(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			_ = s.Flush(ctx)
		case <-s.stopChan:
			s.finalFlush(ctx, "Journal flush task stopped")
			return
		case <-ctx.Done():
			s.finalFlush(ctx, "Journal flush task cancelled")
			return
		}
	}
}

// finalFlush сохраняет остаток журнала; контекст приложения к этому моменту
// может быть уже отменён
func (s *Scheduler) finalFlush(ctx context.Context, msg string) {
	_ = s.Flush(context.WithoutCancel(ctx))
	s.logger.Info(msg, zap.Int("pending", s.source.Len()))
}

// Flush сохраняет накопленные изменения. При временной ошибке пакет
// возвращается в очередь; если база отвергла пакет окончательно, изменения
// применяются по одному и отвергнутые отбрасываются.
func (s *Scheduler) Flush(ctx context.Context) error {
	changes := s.source.Drain()
	if len(changes) == 0 {
		metrics.SetJournalPending(0)
		return nil
	}

	err := s.applier.Apply(ctx, changes)
	switch {
	case err == nil:
		metrics.AddFlushed(len(changes))
		s.logger.Debug("Journal flushed", zap.Int("changes", len(changes)))
	case repository.IsPermanent(err):
		s.logger.Warn("Journal batch rejected, applying changes one by one",
			zap.Int("changes", len(changes)), zap.Error(err))
		err = s.flushEach(ctx, changes)
	default:
		s.requeue(changes, err)
	}

	metrics.SetJournalPending(s.source.Len())
	return err
}

func (s *Scheduler) flushEach(ctx context.Context, changes []model.Change) error {
	applied := 0
	defer func() { metrics.AddFlushed(applied) }()

	for i, change := range changes {
		err := s.applier.Apply(ctx, []model.Change{change})
		switch {
		case err == nil:
			applied++
		case repository.IsPermanent(err):
			metrics.IncDropped()
			s.logger.Error("Dropping change rejected by database",
				zap.String("kind", string(change.Kind)),
				zap.String("id", change.ID.String()),
				zap.Error(err),
			)
		default:
			s.requeue(changes[i:], err)
			return err
		}
	}
	return nil
}

func (s *Scheduler) requeue(changes []model.Change, err error) {
	s.source.Requeue(changes)
	metrics.IncFlushFailure()
	s.logger.Error("Failed to flush journal", zap.Int("changes", len(changes)), zap.Error(err))
}
