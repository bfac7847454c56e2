// cmd/trajrec/commands.go
package main

import (
	"bufio"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/trajrec/trajrec/internal/dispatcher"
	"github.com/trajrec/trajrec/internal/recorder"
	"github.com/trajrec/trajrec/internal/storage"
)

// cmdRecord replays a sample stream file through the dispatcher. Each line is
// a record: the record kind and its fields, ","-separated. Blank lines
// and lines starting with "#" are skipped.
func (a *app) cmdRecord(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("record: missing stream file argument")
	}
	streamPath := args[0]

	d, err := dispatcher.New(a.log)
	if err != nil {
		return fmt.Errorf("error creating dispatcher: %w", err)
	}
	svc := recorder.New(a.backend, a.robotName(), a.points, a.log)
	svc.RegisterHandlers(d)

	f, err := os.Open(streamPath)
	if err != nil {
		return fmt.Errorf("error opening stream file: %w", err)
	}
	defer f.Close()

	a.log.Info().Str("file", streamPath).Msg("Replaying sample stream")

	lineNo := 0
	failed := 0
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Split(line, ",")
		rec := dispatcher.Record{
			Kind:       dispatcher.RecordKind(parts[0]),
			Fields:     parts[1:],
			ReceivedAt: time.Now(),
		}
		if err := d.Dispatch(rec); err != nil {
			failed++
			a.log.Error().Err(err).Int("line", lineNo).Str("kind", string(rec.Kind)).
				Msg("Record rejected")
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading stream file: %w", err)
	}

	if open := svc.OpenTrajectories(); len(open) > 0 {
		a.log.Warn().Strs("trajectories", open).
			Msg("Stream ended with trajectories still open, discarding")
	}
	a.log.Info().Int("lines", lineNo).Int("failed", failed).Msg("Stream replay finished")

	if failed > 0 {
		return fmt.Errorf("%d of %d records rejected", failed, lineNo)
	}
	return nil
}

// cmdSetupDB migrates the schema on the configured backend.
func (a *app) cmdSetupDB() error {
	m, ok := a.backend.(storage.Migrator)
	if !ok {
		a.log.Info().Msg("Storage backend has no schema to migrate")
		return nil
	}
	if err := m.Migrate(); err != nil {
		return fmt.Errorf("error migrating schema: %w", err)
	}
	a.log.Info().Msg("Database schema migrated")
	return nil
}

// cmdExport writes a stored trajectory to <name>.traj.json.gz in the working
// directory.
func (a *app) cmdExport(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("export: missing trajectory name argument")
	}
	name := args[0]

	info, traj, err := a.backend.LoadTrajectory(name)
	if err != nil {
		return fmt.Errorf("error loading trajectory %q: %w", name, err)
	}

	outPath := fmt.Sprintf("%s.traj.json.gz", name)
	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("error creating export file: %w", err)
	}
	defer f.Close()

	gz := gzip.NewWriter(f)
	doc := struct {
		Info       any `json:"info"`
		Trajectory any `json:"trajectory"`
	}{Info: info, Trajectory: traj}
	if err := json.NewEncoder(gz).Encode(doc); err != nil {
		gz.Close()
		return fmt.Errorf("error writing export: %w", err)
	}
	if err := gz.Close(); err != nil {
		return fmt.Errorf("error closing gzip writer: %w", err)
	}

	a.log.Info().Str("trajectory", name).Str("path", outPath).
		Int("joints", traj.NumberOfJoints()).Int("steps", traj.TimeSteps()).
		Msg("Trajectory exported")
	return nil
}

// cmdList prints stored trajectories to stdout.
func (a *app) cmdList() error {
	infos, err := a.backend.ListTrajectories()
	if err != nil {
		return fmt.Errorf("error listing trajectories: %w", err)
	}
	if len(infos) == 0 {
		fmt.Println("no trajectories stored")
		return nil
	}
	for _, info := range infos {
		fmt.Printf("%s\t%s\t%s\n", info.Name, info.Robot, info.CreatedAt.Format(time.RFC3339))
	}
	return nil
}
