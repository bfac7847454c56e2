// internal/storage/storage.go
package storage

import (
	"errors"

	"github.com/trajrec/trajrec/internal/model"
	"github.com/trajrec/trajrec/pkg/joints"
)

// ErrNotFound is returned when a trajectory name is unknown to the backend.
var ErrNotFound = errors.New("storage: trajectory not found")

// Backend is the interface all persistence implementations must satisfy.
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	// Trajectory persistence
	SaveTrajectory(info model.TrajectoryInfo, traj *joints.JointsTrajectory) error
	LoadTrajectory(name string) (model.TrajectoryInfo, *joints.JointsTrajectory, error)
	ListTrajectories() ([]model.TrajectoryInfo, error)
}

// Exportable is an optional interface for storage backends that produce a
// file suitable for downstream tooling.
type Exportable interface {
	ExportedFilePath() string
}

// Migrator is an optional interface for backends with a schema to migrate.
// Migration is an explicit step, not part of Init.
type Migrator interface {
	Migrate() error
}
