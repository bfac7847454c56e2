package gormdb

import (
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/trajrec/trajrec/internal/model"
	"github.com/trajrec/trajrec/internal/storage"
	"github.com/trajrec/trajrec/pkg/joints"
)

func newTestBackend(t *testing.T) *Backend {
	t.Cleanup(viper.Reset)
	viper.Set("db.sqlitePath", "file::memory:?cache=shared")

	b, err := New("sqlite", zerolog.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { b.Close() })

	if err := b.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if err := b.Migrate(); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return b
}

func TestBackend_InitDoesNotMigrate(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("db.sqlitePath", "file::memory:")

	b, err := New("sqlite", zerolog.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { b.Close() })
	if err := b.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}

	// Without Migrate there is no schema to write into.
	err = b.SaveTrajectory(model.TrajectoryInfo{Name: "premature"}, buildTrajectory())
	if err == nil {
		t.Error("expected save to fail before Migrate")
	}
}

func buildTrajectory() *joints.JointsTrajectory {
	var traj joints.JointsTrajectory
	traj.ResizeSteps(2, 3)
	copy(traj.Names, []string{"shoulder", "elbow"})
	for i := range traj.Elements {
		for s := range traj.Elements[i] {
			traj.Elements[i][s] = joints.JointState{
				Position: float64(i) + float64(s)/10,
				Effort:   float64(s),
			}
		}
	}
	traj.Times = []time.Duration{time.Second, time.Second, 2 * time.Second}
	return &traj
}

func TestBackend_SaveLoad(t *testing.T) {
	b := newTestBackend(t)

	info := model.TrajectoryInfo{
		Name:      "pick_place",
		Robot:     "arm-01",
		CreatedAt: time.Unix(1700000000, 0).UTC(),
	}
	traj := buildTrajectory()
	if err := b.SaveTrajectory(info, traj); err != nil {
		t.Fatalf("SaveTrajectory: %v", err)
	}

	gotInfo, gotTraj, err := b.LoadTrajectory("pick_place")
	if err != nil {
		t.Fatalf("LoadTrajectory: %v", err)
	}
	if gotInfo.Name != info.Name || gotInfo.Robot != info.Robot {
		t.Errorf("info = %+v, want %+v", gotInfo, info)
	}
	if gotTraj.NumberOfJoints() != 2 || gotTraj.TimeSteps() != 3 {
		t.Errorf("shape = (%d, %d), want (2, 3)", gotTraj.NumberOfJoints(), gotTraj.TimeSteps())
	}
	if gotTraj.Duration() != 4*time.Second {
		t.Errorf("Duration() = %v, want 4s", gotTraj.Duration())
	}
	if gotTraj.Elements[1][2] != traj.Elements[1][2] {
		t.Errorf("element [1][2] = %+v, want %+v", gotTraj.Elements[1][2], traj.Elements[1][2])
	}
}

func TestBackend_SaveReplacesExisting(t *testing.T) {
	b := newTestBackend(t)

	if err := b.SaveTrajectory(model.TrajectoryInfo{Name: "run", Robot: "arm-01"}, buildTrajectory()); err != nil {
		t.Fatalf("first SaveTrajectory: %v", err)
	}

	var smaller joints.JointsTrajectory
	smaller.ResizeSteps(1, 1)
	copy(smaller.Names, []string{"base"})
	if err := b.SaveTrajectory(model.TrajectoryInfo{Name: "run", Robot: "arm-02"}, &smaller); err != nil {
		t.Fatalf("second SaveTrajectory: %v", err)
	}

	gotInfo, gotTraj, err := b.LoadTrajectory("run")
	if err != nil {
		t.Fatalf("LoadTrajectory: %v", err)
	}
	if gotInfo.Robot != "arm-02" {
		t.Errorf("robot = %q, want arm-02", gotInfo.Robot)
	}
	if gotTraj.NumberOfJoints() != 1 || gotTraj.TimeSteps() != 1 {
		t.Errorf("shape = (%d, %d), want (1, 1)", gotTraj.NumberOfJoints(), gotTraj.TimeSteps())
	}
}

func TestBackend_LoadUnknown(t *testing.T) {
	b := newTestBackend(t)

	_, _, err := b.LoadTrajectory("nope")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestBackend_ListTrajectories(t *testing.T) {
	b := newTestBackend(t)

	for _, name := range []string{"zeta", "alpha"} {
		if err := b.SaveTrajectory(model.TrajectoryInfo{Name: name}, buildTrajectory()); err != nil {
			t.Fatalf("SaveTrajectory(%s): %v", name, err)
		}
	}

	infos, err := b.ListTrajectories()
	if err != nil {
		t.Fatalf("ListTrajectories: %v", err)
	}
	if len(infos) != 2 || infos[0].Name != "alpha" || infos[1].Name != "zeta" {
		t.Errorf("infos = %+v, want sorted [alpha zeta]", infos)
	}
}
