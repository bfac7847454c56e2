// cmd/trajrec/main.go
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/trajrec/trajrec/internal/buffer"
	"github.com/trajrec/trajrec/internal/config"
	"github.com/trajrec/trajrec/internal/influx"
	"github.com/trajrec/trajrec/internal/logging"
	"github.com/trajrec/trajrec/internal/storage"
)

// Version can be set at build time via ldflags.
var (
	Version   string = "0.0.1"
	BuildDate string = "unknown"
)

var sessionStartTime = time.Now()

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	app, err := setup()
	if err != nil {
		fmt.Fprintf(os.Stderr, "trajrec: %v\n", err)
		os.Exit(1)
	}
	defer app.shutdown()

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "record":
		err = app.cmdRecord(args)
	case "setupdb":
		err = app.cmdSetupDB()
	case "export":
		err = app.cmdExport(args)
	case "list":
		err = app.cmdList()
	case "version":
		fmt.Printf("trajrec %s (built %s)\n", Version, BuildDate)
	default:
		usage()
		os.Exit(2)
	}

	if err != nil {
		app.log.Error().Err(err).Str("command", command).Msg("Command failed")
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: trajrec <command> [args]

commands:
  record <file>   record trajectories from a sample stream file
  setupdb         migrate the database schema
  export <name>   export a stored trajectory to gzip JSON
  list            list stored trajectories
  version         print version`)
}

// app holds the wired services shared by all commands.
type app struct {
	log      zerolog.Logger
	logFile  *os.File
	backend  storage.Backend
	points   *buffer.Buffer[influx.SamplePoint]
	exporter *influx.Exporter
}

// setup loads configuration and wires logging, storage and telemetry.
func setup() (*app, error) {
	a := &app{}

	configErr := config.Load(".")

	logsDir := config.GetString("logsDir")
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return nil, fmt.Errorf("error creating logs directory: %w", err)
	}
	logPath := logging.LogFilePath(logsDir, "trajrec", sessionStartTime)
	logFile, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("error opening log file: %w", err)
	}
	a.logFile = logFile

	graylogAddr := ""
	if gl := config.GetGraylogConfig(); gl.Enabled {
		graylogAddr = gl.Address
	}
	a.log, err = logging.Setup(logFile, config.GetString("logLevel"), graylogAddr)
	if err != nil {
		return nil, err
	}
	if configErr != nil {
		a.log.Warn().Err(configErr).Msg("Config file not loaded, using defaults")
	}

	a.backend, err = newBackend(config.GetStorageConfig(), a.log)
	if err != nil {
		return nil, fmt.Errorf("error creating storage backend: %w", err)
	}
	if err := a.backend.Init(); err != nil {
		return nil, fmt.Errorf("error initializing storage backend: %w", err)
	}

	if influxCfg := config.GetInfluxConfig(); influxCfg.Enabled {
		a.points = buffer.New[influx.SamplePoint](influx.DefaultBufferLimit)
		a.exporter = influx.NewExporter(influxCfg, a.points, a.log)
		if err := a.exporter.Connect(); err != nil {
			a.log.Warn().Err(err).Msg("InfluxDB export disabled")
			a.points = nil
			a.exporter = nil
		} else {
			a.exporter.Start()
		}
	}

	a.log.Info().Str("version", Version).Msg("trajrec started")
	return a, nil
}

// robotName returns the configured robot identifier, falling back to the
// hostname.
func (a *app) robotName() string {
	if name := config.GetString("robotName"); name != "" {
		return name
	}
	host, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	return host
}

// shutdown flushes telemetry and closes the backend and log file.
func (a *app) shutdown() {
	if a.exporter != nil {
		a.exporter.Stop()
	}
	if a.backend != nil {
		if err := a.backend.Close(); err != nil {
			a.log.Error().Err(err).Msg("Error closing storage backend")
		}
		if exp, ok := a.backend.(storage.Exportable); ok {
			if path := exp.ExportedFilePath(); path != "" {
				a.log.Info().Str("path", path).Msg("Trajectories exported")
			}
		}
	}
	if a.logFile != nil {
		a.logFile.Close()
	}
}
