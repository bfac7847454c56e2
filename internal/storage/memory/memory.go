// internal/storage/memory/memory.go
package memory

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/trajrec/trajrec/internal/config"
	"github.com/trajrec/trajrec/internal/model"
	"github.com/trajrec/trajrec/internal/storage"
	"github.com/trajrec/trajrec/pkg/joints"
)

// entry groups a trajectory with its metadata.
type entry struct {
	Info       model.TrajectoryInfo    `json:"info"`
	Trajectory joints.JointsTrajectory `json:"trajectory"`
}

// export is the JSON document written on Close.
type export struct {
	ExportedAt   time.Time `json:"exportedAt"`
	Trajectories []entry   `json:"trajectories"`
}

// Backend stores trajectories in memory and exports them to JSON on Close.
type Backend struct {
	cfg config.MemoryConfig

	mu           sync.RWMutex
	trajectories map[string]entry
	exportedPath string
}

// New creates a new memory backend.
func New(cfg config.MemoryConfig) *Backend {
	return &Backend{
		cfg:          cfg,
		trajectories: make(map[string]entry),
	}
}

// Init creates the output directory.
func (b *Backend) Init() error {
	if b.cfg.OutputDir == "" {
		return nil
	}
	return os.MkdirAll(b.cfg.OutputDir, 0755)
}

// Close exports all stored trajectories to a JSON file.
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.trajectories) == 0 {
		return nil
	}
	return b.exportJSON()
}

// SaveTrajectory stores a deep copy of the trajectory, so later mutation by
// the caller does not affect the stored data.
func (b *Backend) SaveTrajectory(info model.TrajectoryInfo, traj *joints.JointsTrajectory) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.trajectories[info.Name] = entry{
		Info:       info,
		Trajectory: *cloneTrajectory(traj),
	}
	return nil
}

// LoadTrajectory returns a copy of the stored trajectory.
func (b *Backend) LoadTrajectory(name string) (model.TrajectoryInfo, *joints.JointsTrajectory, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	e, ok := b.trajectories[name]
	if !ok {
		return model.TrajectoryInfo{}, nil, storage.ErrNotFound
	}
	return e.Info, cloneTrajectory(&e.Trajectory), nil
}

// ListTrajectories returns metadata for all stored trajectories, sorted by
// name.
func (b *Backend) ListTrajectories() ([]model.TrajectoryInfo, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	infos := make([]model.TrajectoryInfo, 0, len(b.trajectories))
	for _, e := range b.trajectories {
		infos = append(infos, e.Info)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos, nil
}

// ExportedFilePath returns the path of the last export, or empty before the
// first Close.
func (b *Backend) ExportedFilePath() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.exportedPath
}

// exportJSON writes all trajectories to a timestamped file in the output
// directory. Caller holds b.mu.
func (b *Backend) exportJSON() error {
	doc := export{
		ExportedAt:   time.Now().UTC(),
		Trajectories: make([]entry, 0, len(b.trajectories)),
	}
	names := make([]string, 0, len(b.trajectories))
	for name := range b.trajectories {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		doc.Trajectories = append(doc.Trajectories, b.trajectories[name])
	}

	fileName := fmt.Sprintf("trajectories_%s.json", doc.ExportedAt.Format("20060102_150405"))
	if b.cfg.CompressOutput {
		fileName += ".gz"
	}
	path := filepath.Join(b.cfg.OutputDir, fileName)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating export file: %w", err)
	}
	defer f.Close()

	if b.cfg.CompressOutput {
		gz := gzip.NewWriter(f)
		if err := json.NewEncoder(gz).Encode(doc); err != nil {
			gz.Close()
			return fmt.Errorf("error writing export: %w", err)
		}
		if err := gz.Close(); err != nil {
			return fmt.Errorf("error closing gzip writer: %w", err)
		}
	} else {
		if err := json.NewEncoder(f).Encode(doc); err != nil {
			return fmt.Errorf("error writing export: %w", err)
		}
	}

	b.exportedPath = path
	return nil
}

// cloneTrajectory deep-copies a trajectory including every joint series.
func cloneTrajectory(traj *joints.JointsTrajectory) *joints.JointsTrajectory {
	var out joints.JointsTrajectory
	out.Names = append([]string(nil), traj.Names...)
	out.Elements = make([][]joints.JointState, len(traj.Elements))
	for i, series := range traj.Elements {
		out.Elements[i] = append([]joints.JointState(nil), series...)
	}
	out.Times = append([]time.Duration(nil), traj.Times...)
	return &out
}
