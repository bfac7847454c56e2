package joints

import (
	"fmt"
	"time"
)

// JointsTrajectory holds a time series of JointState values for multiple,
// optionally named joints. Elements[jointIndex][timeStep] addresses one
// state; the joint index lines up with Names.
//
// Times optionally stamps the samples: it must be either empty (an untimed
// trajectory) or hold exactly one entry per time step. The trajectory is
// valid only while every joint series has the same length and Times agrees
// with it; mutating the slices directly can break that, so callers check
// IsValid after reshaping by hand.
type JointsTrajectory struct {
	NamedVector[[]JointState]

	// Times holds one time value per sample, shared across all joints.
	// Empty when the trajectory carries no timing information.
	Times []time.Duration `json:"times"`
}

// InvalidTimeStepError reports a request for a time step beyond the
// trajectory's step count. It carries the offending index.
type InvalidTimeStepError struct {
	TimeStep int
}

func (e *InvalidTimeStepError) Error() string {
	return fmt.Sprintf("joints: time step %d is out of range", e.TimeStep)
}

// ResizeSteps sets the number of joints and then the length of every joint
// series to numSamples, padding with zero JointStates or truncating. Times is
// left untouched; a caller reshaping a timed trajectory must keep Times
// consistent itself.
func (t *JointsTrajectory) ResizeSteps(numJoints, numSamples int) {
	t.Resize(numJoints)
	for i := range t.Elements {
		t.Elements[i] = resizeSlice(t.Elements[i], numSamples)
	}
}

// IsValid reports whether every joint series has the same length as the
// first, and Times is either empty or exactly that length.
func (t *JointsTrajectory) IsValid() bool {
	steps := t.TimeSteps()
	for i := range t.Elements {
		if len(t.Elements[i]) != steps {
			return false
		}
	}
	if len(t.Times) != 0 && len(t.Times) != steps {
		return false
	}
	return true
}

// IsTimed reports whether the trajectory carries per-sample timing
// information.
func (t *JointsTrajectory) IsTimed() bool {
	return len(t.Times) != 0
}

// TimeSteps returns the number of time steps, taken from the first joint
// series, or 0 when there are no joints. It does not check that the remaining
// series agree; use IsValid for that.
func (t *JointsTrajectory) TimeSteps() int {
	if len(t.Elements) == 0 {
		return 0
	}
	return len(t.Elements[0])
}

// NumberOfJoints returns the number of joint series, independent of how many
// are named.
func (t *JointsTrajectory) NumberOfJoints() int {
	return len(t.Elements)
}

// Duration returns the sum of all entries in Times, or zero for an untimed
// trajectory.
//
// Note this is a plain sum over the samples, not last minus first: when Times
// holds absolute offsets rather than per-step deltas the result is not the
// elapsed time of the trajectory.
func (t *JointsTrajectory) Duration() time.Duration {
	var sum time.Duration
	for _, d := range t.Times {
		sum += d
	}
	return sum
}

// JointsAtTimeStep extracts the snapshot of all joints at the given time step
// into out: out is resized to NumberOfJoints(), receives a copy of the name
// list, and out.Elements[i] is set to Elements[i][timeStep]. The trajectory
// itself is not modified.
//
// Returns *InvalidTimeStepError when timeStep is negative or exceeds
// TimeSteps(). The guard lets timeStep == TimeSteps() through even though
// that index addresses no stored sample; for a non-empty trajectory the
// series access then panics. The boundary is kept as-is for compatibility
// with existing callers that rely on it.
func (t *JointsTrajectory) JointsAtTimeStep(timeStep int, out *Joints) error {
	if timeStep < 0 || timeStep > t.TimeSteps() {
		return &InvalidTimeStepError{TimeStep: timeStep}
	}
	out.Resize(t.NumberOfJoints())
	copy(out.Names, t.Names)
	for i := range t.Elements {
		out.Elements[i] = t.Elements[i][timeStep]
	}
	return nil
}
