package app

import (
	"context"
	"fmt"
	"io/fs"
	"os"

	"github.com/Freeeeeet/lesson_scheduler/migrations"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

// Migrator приводит схему слотов, заявок, занятий и подписок к версии сборки
type Migrator struct {
	provider *goose.Provider
	logger   *zap.Logger
}

// NewMigrator создаёт мигратор поверх пула. Пустой dir означает схему,
// встроенную в бинарник; иначе миграции читаются из каталога.
func NewMigrator(pool *pgxpool.Pool, dir string, logger *zap.Logger) (*Migrator, error) {
	var source fs.FS = migrations.FS
	if dir != "" {
		source = os.DirFS(dir)
	}

	// закрытие этого sql.DB не закрывает пул
	db := stdlib.OpenDBFromPool(pool)
	provider, err := goose.NewProvider(goose.DialectPostgres, db, source)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create goose provider: %w", err)
	}

	return &Migrator{provider: provider, logger: logger}, nil
}

// Run применяет недостающие миграции. Схему новее сборки не трогает:
// Restore не сможет прочитать из неё состояние.
func (mg *Migrator) Run(ctx context.Context) error {
	current, target, err := mg.provider.GetVersions(ctx)
	if err != nil {
		return fmt.Errorf("get schema versions: %w", err)
	}
	if current > target {
		return fmt.Errorf("database schema version %d is newer than supported %d", current, target)
	}
	if current == target {
		mg.logger.Info("Database schema is up to date", zap.Int64("version", current))
		return nil
	}

	results, err := mg.provider.Up(ctx)
	for _, r := range results {
		if r.Error != nil {
			continue
		}
		mg.logger.Info("Migration applied",
			zap.String("file", r.Source.Path),
			zap.Int64("version", r.Source.Version),
			zap.Duration("took", r.Duration),
		)
	}
	if err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	mg.logger.Info("Database schema migrated", zap.Int64("from", current), zap.Int64("to", target))
	return nil
}

// Close закрывает sql.DB мигратора
func (mg *Migrator) Close() error {
	return mg.provider.Close()
}
