// internal/influx/influx.go
package influx

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	influxdb2_api "github.com/influxdata/influxdb-client-go/v2/api"
	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/influxdata/influxdb-client-go/v2/domain"
	"github.com/rs/zerolog"

	"github.com/trajrec/trajrec/internal/buffer"
	"github.com/trajrec/trajrec/internal/config"
	"github.com/trajrec/trajrec/pkg/joints"
)

// DefaultBufferLimit bounds the sample buffer between recorder and exporter.
// At a 1 kHz sample rate on a 6-axis arm this is roughly 16 seconds of
// telemetry headroom.
const DefaultBufferLimit = 100000

// SamplePoint is a single joint sample destined for InfluxDB.
type SamplePoint struct {
	Trajectory string
	Joint      string
	Step       int
	State      joints.JointState
	Time       time.Time
}

// Exporter ships joint samples to InfluxDB. When the server is unreachable
// the samples go to a gzip line-protocol backup file instead, so a recording
// session never drops telemetry.
type Exporter struct {
	client       influxdb2.Client
	writer       influxdb2_api.WriteAPI
	backupWriter *gzip.Writer
	isValid      bool
	cfg          config.InfluxConfig
	log          zerolog.Logger

	points *buffer.Buffer[SamplePoint]
	done   chan struct{}
}

// NewExporter creates an exporter flushing the given sample buffer.
func NewExporter(cfg config.InfluxConfig, points *buffer.Buffer[SamplePoint], log zerolog.Logger) *Exporter {
	return &Exporter{
		cfg:    cfg,
		log:    log,
		points: points,
		done:   make(chan struct{}),
	}
}

// Connect establishes a connection to InfluxDB, falling back to the backup
// file when the ping fails.
func (e *Exporter) Connect() error {
	if !e.cfg.Enabled {
		return errors.New("influx.enabled is false")
	}

	e.client = influxdb2.NewClientWithOptions(
		fmt.Sprintf("%s://%s:%s", e.cfg.Protocol, e.cfg.Host, e.cfg.Port),
		e.cfg.Token,
		influxdb2.DefaultOptions().
			SetBatchSize(2500).
			SetFlushInterval(1000),
	)

	running, err := e.client.Ping(context.Background())
	if err != nil || !running {
		e.isValid = false
		if e.backupWriter == nil {
			e.log.Info().Str("backupPath", e.cfg.BackupPath).
				Msg("Failed to initialize InfluxDB client, writing to backup file")

			file, err := os.OpenFile(e.cfg.BackupPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
			if err != nil {
				return fmt.Errorf("error creating backup file: %v", err)
			}
			e.backupWriter = gzip.NewWriter(file)
		}
	} else {
		e.isValid = true
	}

	if e.isValid {
		if err := e.setupOrganizationAndBucket(); err != nil {
			return err
		}
		e.createWriter()
		e.log.Info().Msg("InfluxDB client initialized")
	} else {
		e.log.Warn().Msg("InfluxDB client failed to initialize, using backup writer")
	}

	return nil
}

func (e *Exporter) setupOrganizationAndBucket() error {
	ctx := context.Background()

	// ensure org exists
	_, err := e.client.OrganizationsAPI().FindOrganizationByName(ctx, e.cfg.Org)
	if err != nil {
		e.log.Info().Str("org", e.cfg.Org).Msg("Organization not found, creating")
		_, err = e.client.OrganizationsAPI().CreateOrganizationWithName(ctx, e.cfg.Org)
		if err != nil {
			e.log.Error().Err(err).Str("org", e.cfg.Org).Msg("Error creating organization")
			return err
		}
	}

	influxOrg, err := e.client.OrganizationsAPI().FindOrganizationByName(ctx, e.cfg.Org)
	if err != nil {
		e.log.Error().Err(err).Str("org", e.cfg.Org).Msg("Error getting organization")
		return err
	}

	// ensure bucket exists with 90 day retention
	_, err = e.client.BucketsAPI().FindBucketByName(ctx, e.cfg.Bucket)
	if err != nil {
		e.log.Info().Str("bucket", e.cfg.Bucket).Msg("Bucket not found, creating")

		rule := domain.RetentionRuleTypeExpire
		_, err = e.client.BucketsAPI().CreateBucketWithName(ctx, influxOrg, e.cfg.Bucket, domain.RetentionRule{
			Type:         &rule,
			EverySeconds: 60 * 60 * 24 * 90, // 90 days
		})
		if err != nil {
			e.log.Error().Err(err).Str("bucket", e.cfg.Bucket).Msg("Error creating bucket")
			return err
		}
	}

	return nil
}

func (e *Exporter) createWriter() {
	e.writer = e.client.WriteAPI(e.cfg.Org, e.cfg.Bucket)

	errorsCh := e.writer.Errors()
	go func() {
		for writeErr := range errorsCh {
			e.log.Error().Err(writeErr).Str("bucket", e.cfg.Bucket).
				Msg("Error sending data to InfluxDB")
		}
	}()
}

// Start begins flushing the sample buffer in the background.
func (e *Exporter) Start() {
	go func() {
		ticker := time.NewTicker(500 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-e.done:
				e.flush()
				return
			case <-ticker.C:
				e.flush()
			}
		}
	}()
}

// Stop drains remaining samples and closes the connection.
func (e *Exporter) Stop() {
	close(e.done)
	if n := e.points.Evicted(); n > 0 {
		e.log.Warn().Uint64("samples", n).Msg("Telemetry samples evicted before export")
	}
	if e.writer != nil {
		e.writer.Flush()
	}
	if e.client != nil {
		e.client.Close()
	}
	if e.backupWriter != nil {
		if err := e.backupWriter.Close(); err != nil {
			e.log.Error().Err(err).Msg("Error closing InfluxDB backup writer")
		}
	}
}

func (e *Exporter) flush() {
	for _, sample := range e.points.Flush() {
		if err := e.writePoint(pointFromSample(sample)); err != nil {
			e.log.Error().Err(err).Msg("Error writing sample point")
		}
	}
}

// writePoint writes a point to InfluxDB or the backup file.
func (e *Exporter) writePoint(point *influxdb2_write.Point) error {
	if e.isValid {
		e.writer.WritePoint(point)
		return nil
	}

	if e.backupWriter == nil {
		return fmt.Errorf("influxDB client not initialized and backup writer not available")
	}
	lineProtocol := influxdb2_write.PointToLineProtocol(point, time.Duration(1*time.Nanosecond))
	if _, err := e.backupWriter.Write([]byte(lineProtocol)); err != nil {
		return fmt.Errorf("error writing to InfluxDB backup file: %s", err)
	}
	return nil
}

// pointFromSample converts a joint sample into a line-protocol point.
func pointFromSample(sample SamplePoint) *influxdb2_write.Point {
	return influxdb2_write.NewPointWithMeasurement("joint_state").
		AddTag("trajectory", sample.Trajectory).
		AddTag("joint", sample.Joint).
		AddField("step", sample.Step).
		AddField("position", sample.State.Position).
		AddField("speed", sample.State.Speed).
		AddField("effort", sample.State.Effort).
		AddField("raw", sample.State.Raw).
		AddField("acceleration", sample.State.Acceleration).
		SetTime(sample.Time)
}
