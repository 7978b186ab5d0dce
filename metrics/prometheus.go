package metrics

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"path"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/kestrelmetrics/kestrel/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/push"
)

const (
	_metricsChanSize     = 1000000
	_serviceName         = "exporter"
	_healthCheckInterval = 30 * time.Second
)

// metricType defines the type of Prometheus metric.
type metricType int

const (
	_metricTypeCounter metricType = iota
	_metricTypeGauge
	_metricTypeHistogram
	_metricTypeSummary
)

// metricOpt contains options for creating a Prometheus metric.
type metricOpt struct {
	subsystem   string
	name        string
	constLabels map[string]string
}

// newMetricOpt creates metric options from a metric record and external labels.
func newMetricOpt(rc *Record, extLabels map[string]string) *metricOpt {
	opts := &metricOpt{
		subsystem:   strings.ReplaceAll(rc.Metrics().Group(), ".", "_"),
		name:        strings.ReplaceAll(rc.Metrics().Name(), ".", "_"),
		constLabels: make(map[string]string, len(rc.Dimensions())+len(extLabels)),
	}

	for k, v := range extLabels {
		opts.constLabels[k] = strings.ReplaceAll(v, ".", "_")
	}

	for k, v := range rc.Dimensions() {
		opts.constLabels[k] = strings.ReplaceAll(v, ".", "_")
	}
	return opts
}

// promGauge wraps a Prometheus gauge with value/count tracking for
// averaging policies.
type promGauge struct {
	prometheus.Gauge
	value float64
	count int
}

// newPromGauge creates a new Prometheus gauge wrapper from a metric record.
func newPromGauge(rc *Record, extLabels map[string]string) *metricWrapper {
	o := newMetricOpt(rc, extLabels)
	opts := prometheus.GaugeOpts{
		Subsystem:   o.subsystem,
		Name:        o.name,
		ConstLabels: o.constLabels,
	}

	g := &promGauge{
		Gauge: promauto.NewGauge(opts),
	}
	_ = g.merge(rc)

	return &metricWrapper{
		m:  g,
		mt: _metricTypeGauge,
	}
}

// merge updates the gauge value based on the metric policy. For Policy_Max
// the record already carries the aggregated window maximum, so the value
// is applied as-is.
func (p *promGauge) merge(rc *Record) error {
	switch rc.Metrics().Policy() {
	case Policy_Set, Policy_Max, Policy_Min:
		p.Set(float64(rc.Value()))
	case Policy_Sum:
		p.Add(float64(rc.Value()))
	case Policy_Avg, Policy_Stopwatch:
		v, c := rc.RawData()
		p.value += float64(v)
		p.count += c
		if p.count <= 0 {
			return fmt.Errorf("metrics(%s) count invalid", rc.Metrics().Name())
		}
		p.Set(p.value / float64(p.count))
	default:
		return fmt.Errorf("metrics(%s) policy invalid", rc.Metrics().Name())
	}
	return nil
}

// newPromCounter creates a new Prometheus counter from a metric record.
func newPromCounter(rc *Record, extLabels map[string]string) *metricWrapper {
	o := newMetricOpt(rc, extLabels)
	opts := prometheus.CounterOpts{
		Subsystem:   o.subsystem,
		Name:        o.name,
		ConstLabels: o.constLabels,
	}

	c := promauto.NewCounter(opts)
	c.Add(float64(rc.Value()))
	return &metricWrapper{
		m:  c,
		mt: _metricTypeCounter,
	}
}

// metricWrapper wraps Prometheus metrics since Counter and Gauge interfaces
// are similar; one wrapper structure stores the metric and its type.
type metricWrapper struct {
	m  prometheus.Metric
	mt metricType
}

// merge updates the wrapped metric with new record data.
func (m *metricWrapper) merge(rc *Record) {
	converted := false
	switch m.mt {
	case _metricTypeGauge:
		if g, ok := m.m.(*promGauge); ok && g != nil {
			converted = true
			if err := g.merge(rc); err != nil {
				log.Error().Err(err).Msg("prometheus merge")
			}
		}
	case _metricTypeCounter:
		if c, ok := m.m.(prometheus.Counter); ok && c != nil {
			converted = true
			c.Add(float64(rc.Value()))
		}
	}

	if !converted {
		log.Error().Str("promtype", fmt.Sprintf("%T", m.m)).
			Int("metrictype", int(m.mt)).Msg("prometheus merge failed")
	}
}

// PrometheusReporterConfig contains configuration for the Prometheus reporter.
type PrometheusReporterConfig struct {
	Tag               string            `mapstructure:"tag"`               // Service tag
	PushAddr          string            `mapstructure:"pushAddr"`          // Push gateway address
	PushIntervalSec   int               `mapstructure:"pushIntervalSec"`   // Push interval in seconds
	PushJobName       string            `mapstructure:"pushJobName"`       // Push job name
	UsePush           bool              `mapstructure:"usePush"`           // Enable push mode
	HTTPListenIP      string            `mapstructure:"httpListenIP"`      // HTTP server listen IP
	MetricPath        string            `mapstructure:"metricPath"`        // Metrics HTTP path
	ExtLabels         map[string]string `mapstructure:"extLabels"`         // External labels
	EnableHealthCheck bool              `mapstructure:"enableHealthCheck"` // Enable health check
	HealthCheckPath   string            `mapstructure:"healthCheckPath"`   // Health check path

	extLabelsStr string
}

// GetExtLabelsStr returns the cached external labels string used for
// metric identification and grouping.
func (x *PrometheusReporterConfig) GetExtLabelsStr() string {
	return x.extLabelsStr
}

// PrometheusReporter converts records to Prometheus metrics and exposes
// them via an HTTP endpoint or a push gateway.
type PrometheusReporter struct {
	cfg               *PrometheusReporterConfig
	promSvr           *http.Server
	pusher            *push.Pusher
	metricsChan       chan Record
	metrics           map[string]*metricWrapper
	ctx               context.Context
	cancel            context.CancelFunc
	healthCheckTicker *time.Ticker
	lastHealthCheck   time.Time
	healthStatus      int32 // 0=healthy, 1=unhealthy
}

// NewPrometheusReporter creates a reporter with the given configuration
// and starts its aggregation loop, HTTP endpoint and optional pusher.
func NewPrometheusReporter(cfg *PrometheusReporterConfig) (*PrometheusReporter, error) {
	if cfg == nil {
		cfg = &PrometheusReporterConfig{}
	}
	if cfg.MetricPath == "" {
		cfg.MetricPath = "/metrics"
	}
	if cfg.HealthCheckPath == "" {
		cfg.HealthCheckPath = "/health"
	}

	extKeys := make([]string, 0, len(cfg.ExtLabels))
	for k := range cfg.ExtLabels {
		extKeys = append(extKeys, k)
	}
	sort.Strings(extKeys)
	var sb strings.Builder
	for _, k := range extKeys {
		sb.WriteString(k)
		sb.WriteString(":")
		sb.WriteString(cfg.ExtLabels[k])
		sb.WriteString(",")
	}
	cfg.extLabelsStr = sb.String()

	ctx, cancel := context.WithCancel(context.Background())
	p := &PrometheusReporter{
		cfg:         cfg,
		metricsChan: make(chan Record, _metricsChanSize),
		metrics:     map[string]*metricWrapper{},
		ctx:         ctx,
		cancel:      cancel,
	}

	if err := p.start(); err != nil {
		cancel()
		return nil, err
	}
	return p, nil
}

// FactoryName returns the plugin factory name for this reporter.
func (x *PrometheusReporter) FactoryName() string {
	return "prometheus"
}

// Report enqueues a record for aggregation. Records are dropped with an
// error log when the channel is full.
func (x *PrometheusReporter) Report(r Record) {
	select {
	case x.metricsChan <- r:
	default:
		log.Error().Msg("metrics chan full")
	}
}

func (x *PrometheusReporter) start() error {
	x.startAggregate()
	if x.cfg.UsePush {
		x.startPusher()
	}

	if _, err := x.startHTTPSvr(); err != nil {
		return err
	}

	x.startHealthCheck()
	return nil
}

// Stop shuts down the aggregation loop, the HTTP server and the health
// check ticker.
func (x *PrometheusReporter) Stop() {
	if x.cancel != nil {
		x.cancel()
		x.cancel = nil
	}

	if x.healthCheckTicker != nil {
		x.healthCheckTicker.Stop()
		x.healthCheckTicker = nil
	}

	if x.promSvr != nil {
		if err := x.promSvr.Close(); err != nil {
			log.Error().Err(err).Msg("stop prometheus http server")
		}
		x.promSvr = nil
	}
}

func (x *PrometheusReporter) startPusher() {
	x.pusher = push.New(x.cfg.PushAddr, x.cfg.PushJobName)
	x.pusher.Gatherer(prometheus.DefaultGatherer)
	go func() {
		log.Info().Msg("prometheus pusher started")
		t := time.NewTicker(time.Second * time.Duration(x.cfg.PushIntervalSec))
		defer t.Stop()
		for {
			select {
			case <-x.ctx.Done():
				log.Info().Msg("prometheus pusher end")
				return
			case <-t.C:
				newCtx, cancel := context.WithTimeout(x.ctx, time.Second*5)
				if err := x.pusher.PushContext(newCtx); err != nil {
					log.Error().Err(err).End()
				}
				cancel()
			}
		}
	}()
}

// startHTTPSvr starts the Prometheus HTTP server on an ephemeral port and
// returns the address it listens on.
func (x *PrometheusReporter) startHTTPSvr() (net.Addr, error) {
	l, err := net.ListenTCP("tcp", &net.TCPAddr{IP: net.ParseIP(x.cfg.HTTPListenIP), Port: 0}) //nolint:gosec
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.Handle(x.cfg.MetricPath, promhttp.Handler())

	if x.cfg.EnableHealthCheck {
		mux.HandleFunc(x.cfg.HealthCheckPath, x.healthCheckHandler)
		log.Info().Str("path", x.cfg.HealthCheckPath).Msg("health check endpoint enabled")
	}

	x.promSvr = &http.Server{Handler: mux} //nolint:gosec
	go x.promSvr.Serve(l)
	log.Info().Str("url", path.Join(l.Addr().String(), x.cfg.MetricPath)).Msg("prometheus http listening")

	return l.Addr(), nil
}

// startAggregate starts the goroutine merging incoming records into the
// internal metric storage until the context is cancelled.
func (x *PrometheusReporter) startAggregate() {
	go func() {
		log.Info().Msg("prometheus collector begin")
		for {
			select {
			case rc := <-x.metricsChan:
				x.merge(&rc)
			case <-x.ctx.Done():
				log.Info().Msg("prometheus collector shutdown")
				return
			}
		}
	}()
}

// healthCheckHandler responds with the reporter's health status: HTTP 200
// when healthy, HTTP 503 otherwise.
func (x *PrometheusReporter) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if atomic.LoadInt32(&x.healthStatus) == 0 {
		x.lastHealthCheck = time.Now()

		response := map[string]interface{}{
			"status":    "healthy",
			"timestamp": x.lastHealthCheck.Format(time.RFC3339),
			"service":   _serviceName,
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(response)
	} else {
		response := map[string]interface{}{
			"status":    "unhealthy",
			"timestamp": time.Now().Format(time.RFC3339),
			"service":   _serviceName,
			"message":   "Metrics reporter is experiencing issues",
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(response)
	}
}

// startHealthCheck starts the periodic health check loop.
func (x *PrometheusReporter) startHealthCheck() {
	if !x.cfg.EnableHealthCheck {
		return
	}

	x.healthCheckTicker = time.NewTicker(_healthCheckInterval)
	x.lastHealthCheck = time.Now()

	go func() {
		log.Info().Float64("interval_seconds", _healthCheckInterval.Seconds()).Msg("health check started")
		for {
			select {
			case <-x.ctx.Done():
				if x.healthCheckTicker != nil {
					x.healthCheckTicker.Stop()
				}
				log.Info().Msg("health check stopped")
				return
			case <-x.healthCheckTicker.C:
				x.performHealthCheck()
			}
		}
	}()
}

// performHealthCheck flags the reporter unhealthy on high channel usage or
// a stalled check loop.
func (x *PrometheusReporter) performHealthCheck() {
	chanUsage := float64(len(x.metricsChan)) / float64(cap(x.metricsChan))
	timeSinceLastCheck := time.Since(x.lastHealthCheck)

	if chanUsage > 0.9 {
		atomic.StoreInt32(&x.healthStatus, 1)
		log.Warn().
			Float64("chan_usage", chanUsage).
			Float64("since_last_check_seconds", timeSinceLastCheck.Seconds()).
			Msg("health check failed - high channel usage")
	} else if timeSinceLastCheck > _healthCheckInterval*2 {
		atomic.StoreInt32(&x.healthStatus, 1)
		log.Warn().
			Float64("since_last_check_seconds", timeSinceLastCheck.Seconds()).
			Msg("health check failed - no recent health updates")
	} else {
		atomic.StoreInt32(&x.healthStatus, 0)
		log.Debug().
			Float64("chan_usage", chanUsage).
			Float64("since_last_check_seconds", timeSinceLastCheck.Seconds()).
			Msg("health check passed")
	}

	x.lastHealthCheck = time.Now()
}

// merge combines a record into the internal storage, creating the backing
// Prometheus metric on first sight.
//
//nolint:gocritic,staticcheck
func (x *PrometheusReporter) merge(rc *Record) {
	key := x.getFullName(rc)
	if m, exist := x.metrics[key]; exist {
		m.merge(rc)
		return
	}
	switch m := rc.Metrics().(type) {
	case Counter:
		x.metrics[key] = newPromCounter(rc, x.cfg.ExtLabels)
	case StopWatch, Gauge, *DecayingMaxGauge:
		x.metrics[key] = newPromGauge(rc, x.cfg.ExtLabels)
	default:
		log.Error().Str("metrictype", fmt.Sprintf("%T", m)).Msg("prometheus merge unknown")
	}
}

// getFullName generates a unique storage key for a record from its group,
// name, external labels and sorted dimensions.
func (x *PrometheusReporter) getFullName(rc *Record) string {
	var sb strings.Builder
	sb.Grow(256)
	sb.WriteString(rc.Metrics().Group())
	sb.WriteString("*")
	sb.WriteString(rc.Metrics().Name())
	sb.WriteString("*")
	sb.WriteString(x.cfg.GetExtLabelsStr())
	type kv struct {
		key   string
		value string
	}
	keys := make([]*kv, 0, len(rc.Dimensions()))
	for k, v := range rc.Dimensions() {
		if _, ok := x.cfg.ExtLabels[k]; ok {
			continue
		}
		keys = append(keys, &kv{
			key:   k,
			value: v,
		})
	}
	sort.Slice(keys, func(a, b int) bool {
		return keys[a].key < keys[b].key
	})
	for _, v := range keys {
		sb.WriteString(v.key)
		sb.WriteString(":")
		sb.WriteString(v.value)
		sb.WriteString(",")
	}
	return sb.String()
}
