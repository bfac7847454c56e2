// Package joints holds the joint-space value types shared by the recorder:
// the per-joint state, the single-instant snapshot of all joints, and the
// multi-joint trajectory. The types are plain values with no locking; an
// instance belongs to one owner at a time.
package joints

// JointState is the state of a single joint at one instant. The zero value
// is the default state; fields a source does not report are simply left at
// zero.
type JointState struct {
	// Position in radians (meters for prismatic joints).
	Position float64 `json:"position"`
	// Speed in radians per second.
	Speed float64 `json:"speed"`
	// Effort in newton-meters.
	Effort float64 `json:"effort"`
	// Raw actuator-native reading, e.g. PWM duty or encoder ticks.
	Raw float64 `json:"raw"`
	// Acceleration in radians per second squared.
	Acceleration float64 `json:"acceleration"`
}
