package convert

import (
	"testing"
	"time"

	"github.com/trajrec/trajrec/internal/model"
	"github.com/trajrec/trajrec/pkg/joints"
)

func buildTrajectory() *joints.JointsTrajectory {
	var traj joints.JointsTrajectory
	traj.ResizeSteps(2, 3)
	copy(traj.Names, []string{"shoulder", "elbow"})
	for i := range traj.Elements {
		for s := range traj.Elements[i] {
			traj.Elements[i][s] = joints.JointState{
				Position: float64(i) + float64(s)/10,
				Speed:    float64(s),
			}
		}
	}
	traj.Times = []time.Duration{
		100 * time.Millisecond,
		100 * time.Millisecond,
		150 * time.Millisecond,
	}
	return &traj
}

func TestTrajectoryRoundTrip(t *testing.T) {
	info := model.TrajectoryInfo{
		Name:      "pick_place",
		Robot:     "arm-01",
		CreatedAt: time.Unix(1700000000, 0).UTC(),
	}
	traj := buildTrajectory()

	rec, steps, err := TrajectoryToRecords(info, traj)
	if err != nil {
		t.Fatalf("TrajectoryToRecords: %v", err)
	}

	if rec.NumJoints != 2 || rec.TimeSteps != 3 {
		t.Errorf("record shape = (%d joints, %d steps), want (2, 3)", rec.NumJoints, rec.TimeSteps)
	}
	if len(steps) != 3 {
		t.Fatalf("expected 3 step records, got %d", len(steps))
	}

	gotInfo, gotTraj, err := RecordsToTrajectory(rec, steps)
	if err != nil {
		t.Fatalf("RecordsToTrajectory: %v", err)
	}

	if gotInfo != info {
		t.Errorf("info = %+v, want %+v", gotInfo, info)
	}
	if !gotTraj.IsValid() {
		t.Error("expected valid rebuilt trajectory")
	}
	if gotTraj.NumberOfJoints() != 2 || gotTraj.TimeSteps() != 3 {
		t.Errorf("rebuilt shape = (%d, %d), want (2, 3)", gotTraj.NumberOfJoints(), gotTraj.TimeSteps())
	}
	if gotTraj.Names[0] != "shoulder" || gotTraj.Names[1] != "elbow" {
		t.Errorf("rebuilt names = %v", gotTraj.Names)
	}
	if gotTraj.Duration() != traj.Duration() {
		t.Errorf("rebuilt duration = %v, want %v", gotTraj.Duration(), traj.Duration())
	}
	for i := range traj.Elements {
		for s := range traj.Elements[i] {
			if gotTraj.Elements[i][s] != traj.Elements[i][s] {
				t.Errorf("element [%d][%d] = %+v, want %+v", i, s, gotTraj.Elements[i][s], traj.Elements[i][s])
			}
		}
	}
}

func TestTrajectoryToRecords_RejectsInvalid(t *testing.T) {
	traj := buildTrajectory()
	traj.Elements[1] = traj.Elements[1][:2]

	_, _, err := TrajectoryToRecords(model.TrajectoryInfo{Name: "bad"}, traj)
	if err == nil {
		t.Error("expected error for non-uniform trajectory")
	}
}

func TestRecordsToTrajectory_Untimed(t *testing.T) {
	var traj joints.JointsTrajectory
	traj.ResizeSteps(1, 2)
	copy(traj.Names, []string{"base"})

	rec, steps, err := TrajectoryToRecords(model.TrajectoryInfo{Name: "untimed"}, &traj)
	if err != nil {
		t.Fatalf("TrajectoryToRecords: %v", err)
	}

	_, got, err := RecordsToTrajectory(rec, steps)
	if err != nil {
		t.Fatalf("RecordsToTrajectory: %v", err)
	}
	if got.IsTimed() {
		t.Error("expected untimed trajectory")
	}
	if got.Duration() != 0 {
		t.Errorf("Duration() = %v, want 0", got.Duration())
	}
}

func TestRecordsToTrajectory_BadStep(t *testing.T) {
	rec, steps, err := TrajectoryToRecords(model.TrajectoryInfo{Name: "t"}, buildTrajectory())
	if err != nil {
		t.Fatalf("TrajectoryToRecords: %v", err)
	}

	steps[1].StepIndex = 99
	if _, _, err := RecordsToTrajectory(rec, steps); err == nil {
		t.Error("expected error for out-of-range step index")
	}
}
