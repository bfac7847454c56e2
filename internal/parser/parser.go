// internal/parser/parser.go

// Package parser decodes the text records emitted by the robot-side bridge.
// Each record is a kind followed by string fields; the three kinds are
// "begin", "sample" and "end".
package parser

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/trajrec/trajrec/pkg/joints"
)

// ParseBegin decodes a "begin" record:
//
//	args[0] = trajectory name
//	args[1] = joint names, ";"-separated (optional)
func ParseBegin(args []string) (trajectory string, jointNames []string, err error) {
	if len(args) < 1 || args[0] == "" {
		return "", nil, fmt.Errorf("begin: missing trajectory name")
	}
	trajectory = args[0]

	if len(args) > 1 && args[1] != "" {
		jointNames = strings.Split(args[1], ";")
	}
	return trajectory, jointNames, nil
}

// ParseSample decodes a "sample" record:
//
//	args[0] = trajectory name
//	args[1] = time since previous sample, integer nanoseconds
//	args[2] = joint states, "|"-separated; each joint is ":"-separated
//	          floats pos[:speed[:effort[:accel[:raw]]]]
//
// Omitted fields stay zero; in particular Raw is only set when the bridge
// sends the fifth field.
func ParseSample(args []string) (trajectory string, dt time.Duration, states []joints.JointState, err error) {
	if len(args) < 3 {
		return "", 0, nil, fmt.Errorf("sample: expected 3 arguments, got %d", len(args))
	}
	if args[0] == "" {
		return "", 0, nil, fmt.Errorf("sample: missing trajectory name")
	}
	trajectory = args[0]

	nanos, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return "", 0, nil, fmt.Errorf("sample: bad time value %q: %w", args[1], err)
	}
	if nanos < 0 {
		return "", 0, nil, fmt.Errorf("sample: negative time value %q", args[1])
	}
	dt = time.Duration(nanos)

	for _, jointPart := range strings.Split(args[2], "|") {
		state, err := parseJointState(jointPart)
		if err != nil {
			return "", 0, nil, fmt.Errorf("sample: %w", err)
		}
		states = append(states, state)
	}
	if len(states) == 0 {
		return "", 0, nil, fmt.Errorf("sample: no joint states")
	}

	return trajectory, dt, states, nil
}

// ParseEnd decodes an "end" record:
//
//	args[0] = trajectory name
func ParseEnd(args []string) (string, error) {
	if len(args) < 1 || args[0] == "" {
		return "", fmt.Errorf("end: missing trajectory name")
	}
	return args[0], nil
}

func parseJointState(part string) (joints.JointState, error) {
	var state joints.JointState

	targets := []*float64{&state.Position, &state.Speed, &state.Effort, &state.Acceleration, &state.Raw}

	fields := strings.Split(part, ":")
	if len(fields) > len(targets) {
		return state, fmt.Errorf("bad joint state %q", part)
	}

	for i, field := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
		if err != nil {
			return state, fmt.Errorf("bad joint state %q: %w", part, err)
		}
		*targets[i] = v
	}

	return state, nil
}
