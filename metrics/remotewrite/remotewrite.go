// Package remotewrite implements a metrics reporter that pushes records
// to a Prometheus remote-write endpoint.
package remotewrite

import (
	"bytes"
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/eryajf/promwrite"
	"github.com/kestrelmetrics/kestrel/log"
	"github.com/kestrelmetrics/kestrel/metrics"
	"github.com/kestrelmetrics/kestrel/utils/pool"
	"github.com/pkg/errors"
)

// _keyBufPool pools the buffers used to build aggregation keys.
var _keyBufPool = pool.NewPool("rwkeybufpool", func() any {
	return &bytes.Buffer{}
})

const (
	_recordChanSize      = 100000
	_defaultFlushSeconds = 15
	_writeTimeout        = 15 * time.Second
)

// Config contains configuration for the remote-write reporter.
type Config struct {
	Tag              string            `mapstructure:"tag"`              // Service tag
	URL              string            `mapstructure:"url"`              // Remote-write endpoint URL
	FlushIntervalSec int               `mapstructure:"flushIntervalSec"` // Flush interval in seconds
	ServiceName      string            `mapstructure:"serviceName"`      // Reported as the _target_ label
	InstanceIP       string            `mapstructure:"instanceIP"`       // Reported as the instance label
	ExtLabels        map[string]string `mapstructure:"extLabels"`        // External labels added to every series
}

// Reporter buffers records, merges them per metric and flushes the result
// to the remote-write endpoint on a fixed interval.
type Reporter struct {
	cfg        *Config
	client     *promwrite.Client
	recordChan chan metrics.Record
	pending    map[string]*metrics.Record
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
}

// NewReporter creates a reporter for the configured endpoint and starts
// its aggregation and flush loop.
func NewReporter(cfg *Config) (*Reporter, error) {
	if cfg == nil || cfg.URL == "" {
		return nil, errors.New("remotewrite: endpoint URL must not be empty")
	}
	if cfg.FlushIntervalSec <= 0 {
		cfg.FlushIntervalSec = _defaultFlushSeconds
	}

	ctx, cancel := context.WithCancel(context.Background())
	r := &Reporter{
		cfg:        cfg,
		client:     promwrite.NewClient(cfg.URL),
		recordChan: make(chan metrics.Record, _recordChanSize),
		pending:    map[string]*metrics.Record{},
		ctx:        ctx,
		cancel:     cancel,
	}

	r.wg.Add(1)
	go r.loop()
	return r, nil
}

// FactoryName returns the plugin factory name for this reporter.
func (r *Reporter) FactoryName() string {
	return "remotewrite"
}

// Report enqueues a record for the next flush. Records are dropped with an
// error log when the channel is full.
func (r *Reporter) Report(rc metrics.Record) {
	select {
	case r.recordChan <- rc:
	default:
		log.Error().Msg("remotewrite record chan full")
	}
}

// Stop flushes pending records and terminates the loop.
func (r *Reporter) Stop() {
	r.cancel()
	r.wg.Wait()
}

func (r *Reporter) loop() {
	defer r.wg.Done()
	log.Info().Str("url", r.cfg.URL).Msg("remotewrite reporter started")

	ticker := time.NewTicker(time.Duration(r.cfg.FlushIntervalSec) * time.Second)
	defer ticker.Stop()

	for {
		select {
		case rc := <-r.recordChan:
			r.merge(&rc)
		case <-ticker.C:
			r.flush()
		case <-r.ctx.Done():
			r.flush()
			log.Info().Msg("remotewrite reporter stopped")
			return
		}
	}
}

// merge folds a record into the pending set according to its policy.
func (r *Reporter) merge(rc *metrics.Record) {
	key := fullName(rc)
	if prev, ok := r.pending[key]; ok {
		if err := prev.Merge(*rc); err != nil {
			log.Error().Err(err).Msg("remotewrite merge")
		}
		return
	}
	r.pending[key] = rc.Clone()
}

// flush converts the pending records to time series and writes them. The
// pending set is cleared afterwards so each interval reports fresh data.
func (r *Reporter) flush() {
	if len(r.pending) == 0 {
		return
	}

	now := time.Now()
	series := make([]promwrite.TimeSeries, 0, len(r.pending))
	for _, rc := range r.pending {
		series = append(series, r.toTimeSeries(rc, now))
	}
	r.pending = map[string]*metrics.Record{}

	ctx, cancel := context.WithTimeout(context.Background(), _writeTimeout)
	defer cancel()

	if _, err := r.client.Write(ctx, &promwrite.WriteRequest{TimeSeries: series}); err != nil {
		log.Error().Err(err).Int("series", len(series)).Msg("remotewrite flush failed")
	}
}

// toTimeSeries builds one series: metric name from group and name, then
// instance and target labels, external labels, and the record dimensions.
func (r *Reporter) toTimeSeries(rc *metrics.Record, at time.Time) promwrite.TimeSeries {
	name := strings.ReplaceAll(rc.Metrics().Group(), ".", "_") + "_" +
		strings.ReplaceAll(rc.Metrics().Name(), ".", "_")

	labels := make([]promwrite.Label, 0, 3+len(r.cfg.ExtLabels)+len(rc.Dimensions()))
	labels = append(labels, promwrite.Label{Name: "__name__", Value: name})
	if r.cfg.InstanceIP != "" {
		labels = append(labels, promwrite.Label{Name: "instance", Value: r.cfg.InstanceIP})
	}
	if r.cfg.ServiceName != "" {
		labels = append(labels, promwrite.Label{Name: "_target_", Value: r.cfg.ServiceName})
	}
	for k, v := range r.cfg.ExtLabels {
		labels = append(labels, promwrite.Label{Name: k, Value: v})
	}
	for k, v := range rc.Dimensions() {
		labels = append(labels, promwrite.Label{Name: k, Value: v})
	}

	return promwrite.TimeSeries{
		Labels: labels,
		Sample: promwrite.Sample{
			Time:  at,
			Value: float64(rc.Value()),
		},
	}
}

// fullName generates a stable aggregation key from group, name and sorted
// dimensions.
func fullName(rc *metrics.Record) string {
	buf := _keyBufPool.Get().(*bytes.Buffer)
	defer func() {
		buf.Reset()
		_keyBufPool.Put(buf)
	}()

	buf.WriteString(rc.Metrics().Group())
	buf.WriteString("*")
	buf.WriteString(rc.Metrics().Name())

	keys := make([]string, 0, len(rc.Dimensions()))
	for k := range rc.Dimensions() {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		buf.WriteString("*")
		buf.WriteString(k)
		buf.WriteString(":")
		buf.WriteString(rc.Dimensions()[k])
	}
	return buf.String()
}
