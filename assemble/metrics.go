// Copyright 2026 Paideia DAO
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

package assemble

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type assemblerMetrics struct {
	operationsTotal   *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
}

func newAssemblerMetrics(
	promRegistry prometheus.Registerer,
) *assemblerMetrics {
	promFactory := promauto.With(promRegistry)
	return &assemblerMetrics{
		operationsTotal: promFactory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "paideia_operations_total",
				Help: "total assembled operations by name and outcome",
			},
			[]string{"operation", "outcome"},
		),
		operationDuration: promFactory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "paideia_operation_duration_seconds",
				Help:    "operation assembly duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}
