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

package config

// Config stores the emulator configuration.
type Config struct {
	Radio      string    `name:"radio" description:"Radio hardware variant to emulate (atlas, hermes, hermesii, angelia, orion, orionmkii, hermeslite, saturn, saturnmkii)"`
	MAC        string    `name:"mac" description:"MAC address as 12 hex digits, separators ignored. Random locally-administered address if empty"`
	ToneOffset float64   `name:"tone-offset" description:"Test tone offset from center in Hz" default:"1000"`
	NoiseLevel float64   `name:"noise-level" description:"Noise level as a fraction of full scale" default:"0.000003"`
	Echo       bool      `name:"echo" description:"Record transmitted IQ and loop it back on receive"`
	LogLevel   LogLevel  `name:"log-level" description:"Logging level (debug, info, warn, error)" default:"info"`
	Protocol1  Protocol1 `name:"protocol1" description:"Protocol 1 UDP transport settings"`
	Metrics    Metrics   `name:"metrics" description:"Prometheus metrics server settings"`
	PProf      PProf     `name:"pprof" description:"Profiling server settings"`
	Stats      Stats     `name:"stats" description:"Periodic streaming statistics settings"`
}

// Protocol1 configures the UDP transport shared by discovery, control, and data.
type Protocol1 struct {
	Bind string `name:"bind" description:"Address to bind the Protocol 1 UDP socket to" default:"0.0.0.0"`
	Port int    `name:"port" description:"UDP port for discovery, control, and data" default:"1024"`
}

// Metrics configures the Prometheus metrics server.
type Metrics struct {
	Enabled      bool   `name:"enabled" description:"Enable the Prometheus metrics server"`
	Bind         string `name:"bind" description:"Address to bind the metrics server to" default:"0.0.0.0"`
	Port         int    `name:"port" description:"Port for the metrics server" default:"9100"`
	OTLPEndpoint string `name:"otlp-endpoint" description:"OTLP gRPC endpoint for tracing. Tracing is disabled if empty"`
}

// PProf configures the profiling server.
type PProf struct {
	Enabled bool   `name:"enabled" description:"Enable the pprof server"`
	Bind    string `name:"bind" description:"Address to bind the pprof server to" default:"0.0.0.0"`
	Port    int    `name:"port" description:"Port for the pprof server" default:"6060"`
}

// Stats configures the periodic streaming statistics log line.
type Stats struct {
	IntervalMinutes int `name:"interval-minutes" description:"Minutes between streaming statistics log lines" default:"1"`
}
