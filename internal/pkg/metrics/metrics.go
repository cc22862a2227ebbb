// Package metrics records fetch and transaction counters.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metric names.
const (
	FetchTotal         = "fetch_total"
	FetchDuration      = "fetch_duration_seconds"
	StaleResultsTotal  = "stale_results_total"
	TransactionsTotal  = "transactions_total"
	TransactionLatency = "transaction_duration_seconds"
)

// Recorder is the sink services report to.
type Recorder interface {
	IncCounter(name string, labels map[string]string)
	ObserveDuration(name string, d time.Duration, labels map[string]string)
}

// NoopRecorder discards everything.
type NoopRecorder struct{}

func (NoopRecorder) IncCounter(string, map[string]string) {}

func (NoopRecorder) ObserveDuration(string, time.Duration, map[string]string) {}

// PrometheusRecorder implements Recorder over client_golang collectors.
type PrometheusRecorder struct {
	counters   map[string]*prometheus.CounterVec
	histograms map[string]*prometheus.HistogramVec
	labels     map[string][]string
}

// NewPrometheusRecorder registers the collectors on reg.
func NewPrometheusRecorder(namespace string, reg prometheus.Registerer) (*PrometheusRecorder, error) {
	r := &PrometheusRecorder{
		counters:   map[string]*prometheus.CounterVec{},
		histograms: map[string]*prometheus.HistogramVec{},
		labels:     map[string][]string{},
	}

	counters := []struct {
		name, help string
		labels     []string
	}{
		{FetchTotal, "Balance and dividend fetches by kind and result.", []string{"kind", "network", "result"}},
		{StaleResultsTotal, "Fetch results discarded because a newer refresh superseded them.", []string{"network"}},
		{TransactionsTotal, "Claim and sweep attempts by result.", []string{"action", "network", "result"}},
	}
	for _, c := range counters {
		vec := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: c.name, Help: c.help}, c.labels)
		if err := reg.Register(vec); err != nil {
			return nil, err
		}
		r.counters[c.name] = vec
		r.labels[c.name] = c.labels
	}

	histograms := []struct {
		name, help string
		labels     []string
	}{
		{FetchDuration, "Fetch latency.", []string{"kind", "network"}},
		{TransactionLatency, "Claim and sweep latency from guard to receipt.", []string{"action", "network"}},
	}
	for _, h := range histograms {
		vec := prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      h.name,
			Help:      h.help,
			Buckets:   prometheus.DefBuckets,
		}, h.labels)
		if err := reg.Register(vec); err != nil {
			return nil, err
		}
		r.histograms[h.name] = vec
		r.labels[h.name] = h.labels
	}
	return r, nil
}

// IncCounter implements Recorder. Unknown metric names are ignored.
func (r *PrometheusRecorder) IncCounter(name string, labels map[string]string) {
	vec, ok := r.counters[name]
	if !ok {
		return
	}
	vec.With(r.complete(name, labels)).Inc()
}

// ObserveDuration implements Recorder.
func (r *PrometheusRecorder) ObserveDuration(name string, d time.Duration, labels map[string]string) {
	vec, ok := r.histograms[name]
	if !ok {
		return
	}
	vec.With(r.complete(name, labels)).Observe(d.Seconds())
}

// complete fills missing label values so With never panics.
func (r *PrometheusRecorder) complete(name string, labels map[string]string) prometheus.Labels {
	out := prometheus.Labels{}
	for _, l := range r.labels[name] {
		out[l] = labels[l]
	}
	return out
}
