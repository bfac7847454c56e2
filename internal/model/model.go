// internal/model/model.go
package model

import (
	"time"

	"gorm.io/datatypes"
)

// TrajectoryInfo identifies a recorded trajectory independently of how it is
// persisted.
type TrajectoryInfo struct {
	Name      string    `json:"name"`
	Robot     string    `json:"robot"`
	CreatedAt time.Time `json:"createdAt"`
}

// TrajectoryRecord is the database row for one recorded trajectory.
// JointNames is a JSON string array; TimesNs is a JSON array of per-sample
// time values in nanoseconds, empty for untimed trajectories.
type TrajectoryRecord struct {
	ID         uint   `gorm:"primarykey"`
	Name       string `gorm:"uniqueIndex"`
	Robot      string
	CreatedAt  time.Time
	NumJoints  int
	TimeSteps  int
	JointNames datatypes.JSON
	TimesNs    datatypes.JSON
}

// StepRecord is the database row for a single time step of a trajectory.
// States holds the JSON-encoded per-joint states in joint order.
type StepRecord struct {
	ID           uint `gorm:"primarykey"`
	TrajectoryID uint `gorm:"index"`
	StepIndex    int
	States       datatypes.JSON
}

// DatabaseModels lists every row type for schema migration.
var DatabaseModels = []any{
	&TrajectoryRecord{},
	&StepRecord{},
}
