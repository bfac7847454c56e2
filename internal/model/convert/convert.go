// Package convert translates between the joint-space value types and their
// database row representations.
package convert

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"

	"github.com/trajrec/trajrec/internal/model"
	"github.com/trajrec/trajrec/pkg/joints"
)

// TrajectoryToRecords flattens a trajectory into one TrajectoryRecord plus
// one StepRecord per time step. The trajectory must be valid; a non-uniform
// trajectory cannot be sliced per step.
func TrajectoryToRecords(info model.TrajectoryInfo, traj *joints.JointsTrajectory) (model.TrajectoryRecord, []model.StepRecord, error) {
	if !traj.IsValid() {
		return model.TrajectoryRecord{}, nil, fmt.Errorf("convert: trajectory %q is not valid", info.Name)
	}

	names, err := json.Marshal(traj.Names)
	if err != nil {
		return model.TrajectoryRecord{}, nil, fmt.Errorf("convert: marshaling joint names: %w", err)
	}

	timesNs := make([]int64, len(traj.Times))
	for i, d := range traj.Times {
		timesNs[i] = d.Nanoseconds()
	}
	times, err := json.Marshal(timesNs)
	if err != nil {
		return model.TrajectoryRecord{}, nil, fmt.Errorf("convert: marshaling times: %w", err)
	}

	rec := model.TrajectoryRecord{
		Name:       info.Name,
		Robot:      info.Robot,
		CreatedAt:  info.CreatedAt,
		NumJoints:  traj.NumberOfJoints(),
		TimeSteps:  traj.TimeSteps(),
		JointNames: datatypes.JSON(names),
		TimesNs:    datatypes.JSON(times),
	}

	steps := make([]model.StepRecord, 0, traj.TimeSteps())
	var snapshot joints.Joints
	for s := 0; s < traj.TimeSteps(); s++ {
		if err := traj.JointsAtTimeStep(s, &snapshot); err != nil {
			return model.TrajectoryRecord{}, nil, fmt.Errorf("convert: extracting step %d: %w", s, err)
		}
		states, err := json.Marshal(snapshot.Elements)
		if err != nil {
			return model.TrajectoryRecord{}, nil, fmt.Errorf("convert: marshaling step %d: %w", s, err)
		}
		steps = append(steps, model.StepRecord{
			StepIndex: s,
			States:    datatypes.JSON(states),
		})
	}

	return rec, steps, nil
}

// RecordsToTrajectory rebuilds a trajectory from its rows. steps must be
// ordered by StepIndex.
func RecordsToTrajectory(rec model.TrajectoryRecord, steps []model.StepRecord) (model.TrajectoryInfo, *joints.JointsTrajectory, error) {
	info := model.TrajectoryInfo{
		Name:      rec.Name,
		Robot:     rec.Robot,
		CreatedAt: rec.CreatedAt,
	}

	var names []string
	if len(rec.JointNames) > 0 {
		if err := json.Unmarshal(rec.JointNames, &names); err != nil {
			return info, nil, fmt.Errorf("convert: unmarshaling joint names: %w", err)
		}
	}

	var traj joints.JointsTrajectory
	traj.ResizeSteps(rec.NumJoints, rec.TimeSteps)
	copy(traj.Names, names)

	for _, step := range steps {
		if step.StepIndex < 0 || step.StepIndex >= rec.TimeSteps {
			return info, nil, fmt.Errorf("convert: step index %d out of range for %d time steps", step.StepIndex, rec.TimeSteps)
		}
		var states []joints.JointState
		if err := json.Unmarshal(step.States, &states); err != nil {
			return info, nil, fmt.Errorf("convert: unmarshaling step %d: %w", step.StepIndex, err)
		}
		if len(states) != rec.NumJoints {
			return info, nil, fmt.Errorf("convert: step %d has %d states, want %d", step.StepIndex, len(states), rec.NumJoints)
		}
		for i, state := range states {
			traj.Elements[i][step.StepIndex] = state
		}
	}

	if len(rec.TimesNs) > 0 {
		var timesNs []int64
		if err := json.Unmarshal(rec.TimesNs, &timesNs); err != nil {
			return info, nil, fmt.Errorf("convert: unmarshaling times: %w", err)
		}
		if len(timesNs) > 0 {
			traj.Times = make([]time.Duration, len(timesNs))
			for i, ns := range timesNs {
				traj.Times[i] = time.Duration(ns)
			}
		}
	}

	return info, &traj, nil
}
