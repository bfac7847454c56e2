package joints

import "time"

// Joints is a snapshot of every joint's state at a single instant, with the
// names aligned to the states by index.
type Joints struct {
	NamedVector[JointState]

	// Time is when the snapshot was taken. Zero when unknown.
	Time time.Time `json:"time"`
}
