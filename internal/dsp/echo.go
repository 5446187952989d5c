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

package dsp

import (
	"log/slog"
	"math"
	"sync"

	"github.com/puzpuzpuz/xsync/v4"
)

// echoAttenuationDB is how far below the transmitted level playback sits.
const echoAttenuationDB = 60.0

// defaultMaxDuration caps each recording, in seconds of audio.
const defaultMaxDuration = 10.0

// recording is one committed transmission, keyed by the TX frequency that was
// current when PTT rose. pos and shiftPhase advance during playback.
type recording struct {
	samples    []complex128
	pos        int
	shiftPhase float64
}

// EchoBuffer records transmitted IQ while PTT is held and plays it back on
// any DDC tuned within the receiver's bandwidth of the recorded frequency,
// attenuated by 60 dB. It implements Source.
type EchoBuffer struct {
	// MaxDuration is the per-recording cap in seconds. Set before first use.
	MaxDuration float64

	sampleRate  uint32
	attenuation float64

	recordings *xsync.Map[uint32, *recording]

	mu          sync.Mutex
	staging     []complex128
	stagingFreq uint32
	active      bool
}

// NewEchoBuffer creates an empty echo buffer. sampleRate is the emulator's
// audio rate, used to cap recording length.
func NewEchoBuffer(sampleRate uint32) *EchoBuffer {
	return &EchoBuffer{
		MaxDuration: defaultMaxDuration,
		sampleRate:  sampleRate,
		attenuation: math.Pow(10, -echoAttenuationDB/20.0),
		recordings:  xsync.NewMap[uint32, *recording](),
	}
}

// StartRecording begins staging TX samples under txFreq. An in-flight
// recording is committed first.
func (e *EchoBuffer) StartRecording(txFreq uint32) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.active {
		e.commit()
	}
	e.staging = e.staging[:0]
	e.stagingFreq = txFreq
	e.active = true
	slog.Info("Echo recording started", "freq", txFreq)
}

// Feed appends TX samples to the staging area while recording.
func (e *EchoBuffer) Feed(samples []complex128) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.active || len(samples) == 0 {
		return
	}
	e.staging = append(e.staging, samples...)
}

// StopRecording commits the staging area and leaves the recording state.
func (e *EchoBuffer) StopRecording() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.active {
		e.commit()
		e.active = false
	}
}

// commit moves the staging area into the recordings map. Caller holds e.mu.
func (e *EchoBuffer) commit() {
	if len(e.staging) == 0 {
		return
	}
	freq := e.stagingFreq
	if freq == 0 {
		slog.Debug("Echo discarding recording with freq=0")
		e.staging = e.staging[:0]
		return
	}
	maxSamples := int(float64(e.sampleRate) * e.MaxDuration)
	n := len(e.staging)
	if n > maxSamples {
		n = maxSamples
	}
	if n == 0 {
		return
	}
	buf := make([]complex128, n)
	copy(buf, e.staging[:n])
	e.staging = e.staging[:0]

	// Playback restarts at the head, but the shift oscillator for this key
	// keeps its accumulated angle across re-recordings.
	var shift float64
	if old, ok := e.recordings.Load(freq); ok {
		shift = old.shiftPhase
	}
	e.recordings.Store(freq, &recording{samples: buf, shiftPhase: shift})
	slog.Info("Echo recording committed",
		"freq", freq,
		"samples", n,
		"seconds", float64(n)/float64(e.sampleRate))
}

// RecordingCount returns how many frequencies currently hold a recording.
func (e *EchoBuffer) RecordingCount() int {
	return e.recordings.Size()
}

// Generate sums every in-band recording, continued circularly from its
// playback position and shifted to the DDC's tuning, then attenuates the
// result. With no recordings it returns silence.
func (e *EchoBuffer) Generate(n int, _ int, rxFreq uint32, sampleRate uint32) []complex128 {
	result := make([]complex128, n)
	if e.recordings.Size() == 0 {
		return result
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	halfBW := float64(sampleRate) / 2
	sr := float64(sampleRate)

	e.recordings.Range(func(freq uint32, rec *recording) bool {
		offsetHz := float64(rxFreq) - float64(freq)
		if math.Abs(offsetHz) > halfBW {
			return true
		}
		echoLen := len(rec.samples)
		if echoLen == 0 {
			return true
		}

		chunk := make([]complex128, n)
		pos := rec.pos
		for written := 0; written < n; {
			avail := n - written
			if remain := echoLen - pos; avail > remain {
				avail = remain
			}
			copy(chunk[written:written+avail], rec.samples[pos:pos+avail])
			pos = (pos + avail) % echoLen
			written += avail
		}
		rec.pos = pos

		if offsetHz != 0 {
			phase0 := rec.shiftPhase
			step := 2 * math.Pi * offsetHz / sr
			for i := range chunk {
				angle := phase0 + step*float64(i)
				chunk[i] *= complex(math.Cos(angle), math.Sin(angle))
			}
			newPhase := phase0 + step*float64(n)
			if math.Abs(newPhase) > phaseFoldLimit {
				newPhase = math.Mod(newPhase, 2*math.Pi)
			}
			rec.shiftPhase = newPhase
		}

		for i := range chunk {
			result[i] += chunk[i]
		}
		return true
	})

	for i := range result {
		result[i] *= complex(e.attenuation, 0)
	}
	return result
}
