// SPDX-License-Identifier: AGPL-3.0-or-later
// hpsdr-emu - Emulate an OpenHPSDR Protocol 1 radio in a single binary
// Copyright (C) 2026 Jacob McSwain
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// The source code is available at <https://github.com/USA-RedDragon/hpsdr-emu>

package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the protocol engine's Prometheus collectors.
type Metrics struct {
	DatagramsReceived *prometheus.CounterVec
	DatagramsDropped  prometheus.Counter
	DiscoveryRequests prometheus.Counter
	DataPacketsSent   prometheus.Counter
	SendErrors        prometheus.Counter
	ReceiveErrors     prometheus.Counter
	EchoCommits       prometheus.Counter
	SampleRate        prometheus.Gauge
	Streaming         prometheus.Gauge
}

var (
	defaultMetrics *Metrics
	defaultOnce    sync.Once
)

// NewMetrics returns the process-wide metrics set, registering the collectors
// with the default registry on first call.
func NewMetrics() *Metrics {
	defaultOnce.Do(func() {
		defaultMetrics = &Metrics{
			DatagramsReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "hpsdr_datagrams_received_total",
				Help: "The total number of datagrams received, by message type",
			}, []string{"type"}),
			DatagramsDropped: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "hpsdr_datagrams_dropped_total",
				Help: "The total number of malformed or unrecognized datagrams dropped",
			}),
			DiscoveryRequests: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "hpsdr_discovery_requests_total",
				Help: "The total number of discovery requests answered",
			}),
			DataPacketsSent: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "hpsdr_data_packets_sent_total",
				Help: "The total number of outbound data packets sent",
			}),
			SendErrors: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "hpsdr_send_errors_total",
				Help: "The total number of UDP send failures",
			}),
			ReceiveErrors: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "hpsdr_receive_errors_total",
				Help: "The total number of UDP receive failures",
			}),
			EchoCommits: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "hpsdr_echo_commits_total",
				Help: "The total number of echo recordings stopped by a MOX release, including stops whose recording was empty or at frequency 0 and so not stored",
			}),
			SampleRate: prometheus.NewGauge(prometheus.GaugeOpts{
				Name: "hpsdr_sample_rate_hz",
				Help: "The current sample rate in Hz",
			}),
			Streaming: prometheus.NewGauge(prometheus.GaugeOpts{
				Name: "hpsdr_streaming",
				Help: "1 while a host is subscribed to streaming, else 0",
			}),
		}
		defaultMetrics.register()
	})
	return defaultMetrics
}

func (m *Metrics) register() {
	prometheus.MustRegister(m.DatagramsReceived)
	prometheus.MustRegister(m.DatagramsDropped)
	prometheus.MustRegister(m.DiscoveryRequests)
	prometheus.MustRegister(m.DataPacketsSent)
	prometheus.MustRegister(m.SendErrors)
	prometheus.MustRegister(m.ReceiveErrors)
	prometheus.MustRegister(m.EchoCommits)
	prometheus.MustRegister(m.SampleRate)
	prometheus.MustRegister(m.Streaming)
}
