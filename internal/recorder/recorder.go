// internal/recorder/recorder.go

// Package recorder accumulates joint samples into trajectories and hands
// finished trajectories to a storage backend.
package recorder

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/trajrec/trajrec/internal/buffer"
	"github.com/trajrec/trajrec/internal/dispatcher"
	"github.com/trajrec/trajrec/internal/influx"
	"github.com/trajrec/trajrec/internal/model"
	"github.com/trajrec/trajrec/internal/parser"
	"github.com/trajrec/trajrec/internal/storage"
	"github.com/trajrec/trajrec/pkg/joints"
)

type activeTrajectory struct {
	info    model.TrajectoryInfo
	traj    *joints.JointsTrajectory
	started time.Time
	elapsed time.Duration
}

// Service records trajectories. Multiple trajectories may be open at once,
// keyed by name.
type Service struct {
	log     zerolog.Logger
	backend storage.Backend
	robot   string

	// points receives one telemetry sample per joint per step. A nil buffer
	// disables telemetry export.
	points *buffer.Buffer[influx.SamplePoint]

	mu     sync.Mutex
	active map[string]*activeTrajectory
}

// New creates a recorder service writing finished trajectories to backend.
func New(backend storage.Backend, robot string, points *buffer.Buffer[influx.SamplePoint], log zerolog.Logger) *Service {
	return &Service{
		log:     log,
		backend: backend,
		robot:   robot,
		points:  points,
		active:  make(map[string]*activeTrajectory),
	}
}

// Begin opens a new trajectory. When jointNames is non-empty the joint count
// is fixed immediately; otherwise it is fixed by the first sample.
func (s *Service) Begin(name string, jointNames []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.active[name]; ok {
		return fmt.Errorf("trajectory %q is already being recorded", name)
	}

	traj := &joints.JointsTrajectory{}
	if len(jointNames) > 0 {
		traj.Resize(len(jointNames))
		copy(traj.Names, jointNames)
	}

	s.active[name] = &activeTrajectory{
		info: model.TrajectoryInfo{
			Name:      name,
			Robot:     s.robot,
			CreatedAt: time.Now().UTC(),
		},
		traj:    traj,
		started: time.Now(),
	}

	s.log.Info().Str("trajectory", name).Int("joints", len(jointNames)).Msg("Recording started")
	return nil
}

// Append adds one sample to an open trajectory. dt is the time since the
// previous sample.
func (s *Service) Append(name string, dt time.Duration, states []joints.JointState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	at, ok := s.active[name]
	if !ok {
		return fmt.Errorf("no open trajectory %q", name)
	}

	// First sample fixes the joint count when begin gave no names.
	if at.traj.NumberOfJoints() == 0 && at.traj.TimeSteps() == 0 {
		at.traj.Resize(len(states))
	}
	if len(states) != at.traj.NumberOfJoints() {
		return fmt.Errorf("trajectory %q: sample has %d joints, trajectory has %d",
			name, len(states), at.traj.NumberOfJoints())
	}

	step := at.traj.TimeSteps()
	for i := range at.traj.Elements {
		at.traj.Elements[i] = append(at.traj.Elements[i], states[i])
	}
	at.traj.Times = append(at.traj.Times, dt)
	at.elapsed += dt

	if s.points != nil {
		sampleTime := at.started.Add(at.elapsed)
		for i, state := range states {
			jointName := at.traj.Names[i]
			if jointName == "" {
				jointName = fmt.Sprintf("joint_%d", i)
			}
			s.points.Add(influx.SamplePoint{
				Trajectory: name,
				Joint:      jointName,
				Step:       step,
				State:      state,
				Time:       sampleTime,
			})
		}
	}

	return nil
}

// End closes a trajectory and persists it.
func (s *Service) End(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	at, ok := s.active[name]
	if !ok {
		return fmt.Errorf("no open trajectory %q", name)
	}
	if !at.traj.IsValid() {
		return fmt.Errorf("trajectory %q is inconsistent, not saving", name)
	}

	if err := s.backend.SaveTrajectory(at.info, at.traj); err != nil {
		return fmt.Errorf("error saving trajectory %q: %w", name, err)
	}
	delete(s.active, name)

	s.log.Info().
		Str("trajectory", name).
		Int("joints", at.traj.NumberOfJoints()).
		Int("steps", at.traj.TimeSteps()).
		Dur("duration", at.traj.Duration()).
		Msg("Recording finished")
	return nil
}

// OpenTrajectories returns the names of all trajectories still recording.
func (s *Service) OpenTrajectories() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.active))
	for name := range s.active {
		names = append(names, name)
	}
	return names
}

// RegisterHandlers wires the stream record kinds into the dispatcher. All
// three run synchronously so a trajectory's samples land before its end
// record persists it.
func (s *Service) RegisterHandlers(d *dispatcher.Dispatcher) {
	d.Handle(dispatcher.KindBegin, func(r dispatcher.Record) error {
		name, jointNames, err := parser.ParseBegin(r.Fields)
		if err != nil {
			return err
		}
		return s.Begin(name, jointNames)
	})

	d.Handle(dispatcher.KindSample, func(r dispatcher.Record) error {
		name, dt, states, err := parser.ParseSample(r.Fields)
		if err != nil {
			return err
		}
		return s.Append(name, dt, states)
	})

	d.Handle(dispatcher.KindEnd, func(r dispatcher.Record) error {
		name, err := parser.ParseEnd(r.Fields)
		if err != nil {
			return err
		}
		return s.End(name)
	})
}
