// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package pipeline

import (
	"time"

	"github.com/poiesic/notevec/core"
	"github.com/poiesic/notevec/sentence"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics collects pipeline measurements on a private registry.
// A nil *Metrics records nothing.
type Metrics struct {
	registry     *prometheus.Registry
	notes        *prometheus.GaugeVec
	sentences    *prometheus.GaugeVec
	vocabSize    prometheus.Gauge
	tags         prometheus.Gauge
	stageSeconds *prometheus.GaugeVec
	runs         *prometheus.CounterVec
}

// NewMetrics creates and registers the pipeline metrics.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		notes: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "notevec",
			Name:      "notes_loaded",
			Help:      "Notes loaded in the last run, by category.",
		}, []string{"category"}),
		sentences: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "notevec",
			Name:      "sentences",
			Help:      "Sentences seen in the last run, by outcome.",
		}, []string{"outcome"}),
		vocabSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "notevec",
			Name:      "vocabulary_size",
			Help:      "Words retained in the model vocabulary.",
		}),
		tags: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "notevec",
			Name:      "tags",
			Help:      "Unique sentence tags in the model.",
		}),
		stageSeconds: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "notevec",
			Name:      "stage_duration_seconds",
			Help:      "Wall time of each pipeline stage in the last run.",
		}, []string{"stage"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "notevec",
			Name:      "runs_total",
			Help:      "Pipeline runs, by result.",
		}, []string{"result"}),
	}
	m.registry.MustRegister(m.notes, m.sentences, m.vocabSize, m.tags, m.stageSeconds, m.runs)
	return m
}

// Registry returns the registry holding the pipeline metrics.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes the metrics in the Prometheus text format, for the
// node exporter's textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}

func (m *Metrics) observeNotes(records []core.NoteRecord) {
	if m == nil {
		return
	}
	counts := make(map[core.Category]int)
	for i := range records {
		counts[records[i].Category]++
	}
	for _, c := range []core.Category{core.CategoryPhysician, core.CategorySocialWork} {
		m.notes.WithLabelValues(c.String()).Set(float64(counts[c]))
	}
}

func (m *Metrics) observeLabeling(stats sentence.Stats) {
	if m == nil {
		return
	}
	m.sentences.WithLabelValues("labeled").Set(float64(stats.Labeled))
	m.sentences.WithLabelValues("dropped").Set(float64(stats.Dropped))
}

func (m *Metrics) observeVocabulary(words, tags int) {
	if m == nil {
		return
	}
	m.vocabSize.Set(float64(words))
	m.tags.Set(float64(tags))
}

func (m *Metrics) observeStage(stage core.Stage, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.stageSeconds.WithLabelValues(stage.String()).Set(elapsed.Seconds())
}

func (m *Metrics) observeRun(err error) {
	if m == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "failure"
	}
	m.runs.WithLabelValues(result).Inc()
}
