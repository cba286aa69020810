// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package scheduler

import (
	"github.com/consensys/go-pgm/pkg/schedule"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics records the progress of a scheduler as Prometheus metrics.  A nil
// *Metrics records nothing.
type Metrics struct {
	operations *prometheus.CounterVec
	cells      prometheus.Counter
	memory     prometheus.Gauge
	duration   *prometheus.HistogramVec
}

// NewMetrics constructs a set of scheduler metrics, registering them with a
// given registerer.  When the registerer is nil, the metrics are not
// registered anywhere.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	//
	return &Metrics{
		operations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pgm_scheduler_operations_total",
			Help: "Total number of schedule operations executed",
		}, []string{"kind"}),
		cells: factory.NewCounter(prometheus.CounterOpts{
			Name: "pgm_scheduler_cells_total",
			Help: "Total number of elementary table operations performed",
		}),
		memory: factory.NewGauge(prometheus.GaugeOpts{
			Name: "pgm_scheduler_memory_bytes",
			Help: "Bytes currently held by tables computed by executed operations",
		}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pgm_scheduler_operation_duration_seconds",
			Help:    "Duration of schedule operations",
			Buckets: prometheus.ExponentialBuckets(0.00001, 10, 7),
		}, []string{"kind"}),
	}
}

// Execute an operation, recording its duration and effects.
func observe[T any](m *Metrics, s *schedule.Schedule[T], op schedule.Operation[T]) {
	if m == nil {
		op.Execute()
		return
	}
	//
	timer := prometheus.NewTimer(m.duration.WithLabelValues(op.Kind().String()))
	op.Execute()
	timer.ObserveDuration()
	//
	m.operations.WithLabelValues(op.Kind().String()).Inc()
	m.cells.Add(op.NbOperations())
	//
	for _, r := range op.Results() {
		if n, err := r.Memory(); err == nil {
			m.memory.Add(float64(n))
		}
	}
	// Source tables were never counted
	for _, h := range op.Releases() {
		if _, ok := s.Producer(h); !ok {
			continue
		} else if n, err := h.Memory(); err == nil {
			m.memory.Sub(float64(n))
		}
	}
}
