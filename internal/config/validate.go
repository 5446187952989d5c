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

import (
	"errors"
	"fmt"
	"strings"

	"github.com/USA-RedDragon/hpsdr-emu/internal/hpsdr/hpsdrconst"
	"github.com/USA-RedDragon/hpsdr-emu/internal/radio"
)

var (
	// ErrRadioRequired indicates that no radio hardware variant was provided.
	ErrRadioRequired = errors.New("a radio hardware variant is required")
	// ErrInvalidLogLevel indicates that the provided log level is not valid.
	ErrInvalidLogLevel = errors.New("invalid log level provided")
	// ErrInvalidNoiseLevel indicates that the provided noise level is not valid.
	ErrInvalidNoiseLevel = errors.New("noise level must not be negative")
	// ErrInvalidProtocol1Port indicates that the provided Protocol 1 port is not valid.
	ErrInvalidProtocol1Port = errors.New("invalid Protocol 1 port provided")
	// ErrInvalidMetricsPort indicates that the provided metrics server port is not valid.
	ErrInvalidMetricsPort = errors.New("invalid metrics server port provided")
	// ErrInvalidPProfPort indicates that the provided pprof server port is not valid.
	ErrInvalidPProfPort = errors.New("invalid pprof server port provided")
	// ErrInvalidStatsInterval indicates that the provided statistics interval is not valid.
	ErrInvalidStatsInterval = errors.New("statistics interval must be at least one minute")
)

// Validate checks the configuration for errors.
func (c Config) Validate() error {
	if c.Radio == "" {
		return fmt.Errorf("%w, valid radios: %s", ErrRadioRequired, strings.Join(hpsdrconst.HardwareNames(), ", "))
	}
	if _, err := hpsdrconst.ParseHardware(c.Radio); err != nil {
		return err
	}
	if c.MAC != "" {
		if _, err := radio.ParseMAC(c.MAC); err != nil {
			return err
		}
	}
	switch c.LogLevel {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
	default:
		return ErrInvalidLogLevel
	}
	if c.NoiseLevel < 0 {
		return ErrInvalidNoiseLevel
	}
	if c.Protocol1.Port < 0 || c.Protocol1.Port > 65535 {
		return ErrInvalidProtocol1Port
	}
	if c.Metrics.Enabled && (c.Metrics.Port < 1 || c.Metrics.Port > 65535) {
		return ErrInvalidMetricsPort
	}
	if c.PProf.Enabled && (c.PProf.Port < 1 || c.PProf.Port > 65535) {
		return ErrInvalidPProfPort
	}
	if c.Stats.IntervalMinutes < 1 {
		return ErrInvalidStatsInterval
	}
	return nil
}
