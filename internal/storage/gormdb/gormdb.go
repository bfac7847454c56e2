// internal/storage/gormdb/gormdb.go
package gormdb

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/trajrec/trajrec/internal/config"
	"github.com/trajrec/trajrec/internal/model"
	"github.com/trajrec/trajrec/internal/model/convert"
	"github.com/trajrec/trajrec/internal/storage"
	"github.com/trajrec/trajrec/pkg/joints"
)

// Backend persists trajectories to a relational database through GORM.
// It supports Postgres and SQLite; a failed Postgres connection falls back
// to the configured SQLite file so recordings are never lost.
type Backend struct {
	db         *gorm.DB
	sqlDB      *sql.DB
	usingLocal bool
	log        zerolog.Logger
}

// New connects to the database selected by typ ("postgres" or "sqlite").
func New(typ string, log zerolog.Logger) (*Backend, error) {
	b := &Backend{log: log}
	cfg := config.GetDBConfig()

	var err error
	switch typ {
	case "postgres":
		b.db, err = openPostgres(cfg, log)
		if err != nil {
			log.Error().Err(err).Msg("Failed to connect to Postgres DB, trying SQLite")
			b.usingLocal = true
			b.db, err = openSqlite(cfg.SqlitePath, log)
		}
	case "sqlite":
		b.usingLocal = true
		b.db, err = openSqlite(cfg.SqlitePath, log)
	default:
		return nil, fmt.Errorf("unknown database type: %s", typ)
	}
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	b.sqlDB, err = b.db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access sql interface: %w", err)
	}
	if err := b.sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to validate connection: %w", err)
	}
	if !b.usingLocal {
		b.sqlDB.SetMaxOpenConns(10)
	}
	b.log.Info().Bool("local", b.usingLocal).Msg("Connected to database")

	return b, nil
}

// Init verifies the connection is still usable. The schema is migrated by
// the explicit Migrate step, not here.
func (b *Backend) Init() error {
	return b.sqlDB.Ping()
}

// Migrate creates or updates the schema.
func (b *Backend) Migrate() error {
	if err := b.db.AutoMigrate(model.DatabaseModels...); err != nil {
		return fmt.Errorf("error migrating schema: %w", err)
	}
	return nil
}

// Close closes the underlying connection pool.
func (b *Backend) Close() error {
	if b.sqlDB == nil {
		return nil
	}
	return b.sqlDB.Close()
}

// SaveTrajectory writes the trajectory and all its step rows in one
// transaction. An existing trajectory with the same name is replaced.
func (b *Backend) SaveTrajectory(info model.TrajectoryInfo, traj *joints.JointsTrajectory) error {
	rec, steps, err := convert.TrajectoryToRecords(info, traj)
	if err != nil {
		return err
	}

	return b.db.Transaction(func(tx *gorm.DB) error {
		var existing model.TrajectoryRecord
		err := tx.Where("name = ?", rec.Name).First(&existing).Error
		switch {
		case err == nil:
			if err := tx.Where("trajectory_id = ?", existing.ID).Delete(&model.StepRecord{}).Error; err != nil {
				return err
			}
			if err := tx.Delete(&existing).Error; err != nil {
				return err
			}
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}

		if err := tx.Create(&rec).Error; err != nil {
			return err
		}
		for i := range steps {
			steps[i].TrajectoryID = rec.ID
		}
		if len(steps) == 0 {
			return nil
		}
		return tx.CreateInBatches(steps, 1000).Error
	})
}

// LoadTrajectory reads a trajectory and its steps back by name.
func (b *Backend) LoadTrajectory(name string) (model.TrajectoryInfo, *joints.JointsTrajectory, error) {
	var rec model.TrajectoryRecord
	err := b.db.Where("name = ?", name).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.TrajectoryInfo{}, nil, storage.ErrNotFound
	}
	if err != nil {
		return model.TrajectoryInfo{}, nil, fmt.Errorf("error loading trajectory: %w", err)
	}

	var steps []model.StepRecord
	if err := b.db.Where("trajectory_id = ?", rec.ID).Order("step_index ASC").Find(&steps).Error; err != nil {
		return model.TrajectoryInfo{}, nil, fmt.Errorf("error loading steps: %w", err)
	}

	return convert.RecordsToTrajectory(rec, steps)
}

// ListTrajectories returns metadata for every stored trajectory.
func (b *Backend) ListTrajectories() ([]model.TrajectoryInfo, error) {
	var recs []model.TrajectoryRecord
	if err := b.db.Order("name ASC").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("error listing trajectories: %w", err)
	}

	infos := make([]model.TrajectoryInfo, len(recs))
	for i, rec := range recs {
		infos[i] = model.TrajectoryInfo{
			Name:      rec.Name,
			Robot:     rec.Robot,
			CreatedAt: rec.CreatedAt,
		}
	}
	return infos, nil
}

func openPostgres(cfg config.DBConfig, log zerolog.Logger) (*gorm.DB, error) {
	dsn := fmt.Sprintf(`host=%s port=%s user=%s password=%s dbname=%s sslmode=disable`,
		cfg.Host, cfg.Port, cfg.Username, cfg.Password, cfg.Database)

	log.Debug().Str("host", cfg.Host).Str("database", cfg.Database).Msg("Connecting to Postgres DB")

	return gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		CreateBatchSize:        10000,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
}

func openSqlite(path string, log zerolog.Logger) (*gorm.DB, error) {
	if path == "" {
		path = "file::memory:?cache=shared"
		log.Info().Msg("Using in-memory SQLite DB")
	} else {
		log.Info().Str("path", path).Msg("Using local SQLite DB")
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		PrepareStmt:            true,
		SkipDefaultTransaction: true,
		CreateBatchSize:        2000,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	pragmas := []string{
		"PRAGMA journal_mode = MEMORY;",
		"PRAGMA synchronous = OFF;",
		"PRAGMA cache_size = -32000;",
		"PRAGMA temp_store = MEMORY;",
	}
	for _, pragma := range pragmas {
		if err := db.Exec(pragma).Error; err != nil {
			return nil, fmt.Errorf("error setting PRAGMA: %w", err)
		}
	}

	return db, nil
}
