package influx

import (
	"context"
	"fmt"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

const (
	measurementSync  = "telemetry_sync"
	measurementDrift = "clock_drift"
)

// Sample is one diagnostics reading of a live session.
type Sample struct {
	Session    string
	Source     string
	Connected  bool
	Frames     uint64
	Discarded  uint64
	Reconnects uint64
	Equipment  int
	Fresh      int
	Drifts     map[string]int // per site, seconds
	Time       time.Time
}

// Writer writes session diagnostics to InfluxDB.
type Writer struct {
	client influxdb2.Client
	api    api.WriteAPIBlocking
}

// NewWriter creates an InfluxDB write API client. Caller should call Close() when done.
func NewWriter(url, token, org, bucket string) *Writer {
	client := influxdb2.NewClient(url, token)
	return &Writer{client: client, api: client.WriteAPIBlocking(org, bucket)}
}

// Close releases the InfluxDB client.
func (w *Writer) Close() {
	w.client.Close()
}

// Health checks that InfluxDB is reachable and the token is valid.
func (w *Writer) Health(ctx context.Context) error {
	_, err := w.client.Health(ctx)
	return err
}

// Write saves one sample: a sync point plus one drift point per site.
func (w *Writer) Write(ctx context.Context, s Sample) error {
	if err := w.api.WritePoint(ctx, Points(s)...); err != nil {
		return fmt.Errorf("influx write: %w", err)
	}
	return nil
}

// Points converts a sample to line-protocol points.
func Points(s Sample) []*write.Point {
	t := s.Time
	if t.IsZero() {
		t = time.Now()
	}

	points := make([]*write.Point, 0, 1+len(s.Drifts))
	points = append(points, influxdb2.NewPointWithMeasurement(measurementSync).
		AddTag("session", s.Session).
		AddTag("source", s.Source).
		AddField("connected", s.Connected).
		AddField("frames", s.Frames).
		AddField("discarded", s.Discarded).
		AddField("reconnects", s.Reconnects).
		AddField("equipment", s.Equipment).
		AddField("fresh", s.Fresh).
		SetTime(t))

	for site, drift := range s.Drifts {
		points = append(points, influxdb2.NewPointWithMeasurement(measurementDrift).
			AddTag("router_sn", site).
			AddTag("session", s.Session).
			AddField("drift_sec", drift).
			SetTime(t))
	}
	return points
}

// Run writes collect() every interval until ctx is done. Write errors are
// passed to onError and do not stop the loop.
func (w *Writer) Run(ctx context.Context, interval time.Duration, collect func() Sample, onError func(error)) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := w.Write(ctx, collect()); err != nil && ctx.Err() == nil {
				onError(err)
			}
		}
	}
}
