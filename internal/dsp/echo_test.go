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

package dsp_test

import (
	"math"
	"testing"

	"github.com/USA-RedDragon/hpsdr-emu/internal/dsp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const echoFreq = uint32(7_074_000)

func toneSamples(n int, freq float64) []complex128 {
	samples := make([]complex128, n)
	for i := range samples {
		angle := 2 * math.Pi * freq * float64(i) / sampleRate
		samples[i] = complex(math.Cos(angle), math.Sin(angle))
	}
	return samples
}

func TestEchoNoRecordingsIsSilence(t *testing.T) {
	t.Parallel()
	e := dsp.NewEchoBuffer(sampleRate)
	out := e.Generate(64, 0, echoFreq, sampleRate)
	require.Len(t, out, 64)
	for _, s := range out {
		assert.Equal(t, complex(0, 0), s)
	}
}

func TestEchoRecordCommitPlayback(t *testing.T) {
	t.Parallel()
	e := dsp.NewEchoBuffer(sampleRate)
	rec := toneSamples(480, 1000)

	e.StartRecording(echoFreq)
	e.Feed(rec)
	e.StopRecording()
	require.Equal(t, 1, e.RecordingCount())

	// Tuned exactly to the recording there is no shift, only attenuation.
	out := e.Generate(480, 0, echoFreq, sampleRate)
	atten := math.Pow(10, -60.0/20.0)
	var inEnergy, outEnergy float64
	for i := range out {
		assert.InDelta(t, real(rec[i])*atten, real(out[i]), 1e-12, "sample %d", i)
		assert.InDelta(t, imag(rec[i])*atten, imag(out[i]), 1e-12, "sample %d", i)
		inEnergy += real(rec[i])*real(rec[i]) + imag(rec[i])*imag(rec[i])
		outEnergy += real(out[i])*real(out[i]) + imag(out[i])*imag(out[i])
	}
	ratioDB := 10 * math.Log10(outEnergy/inEnergy)
	assert.InDelta(t, -60.0, ratioDB, 0.1)
}

func TestEchoCircularPlayback(t *testing.T) {
	t.Parallel()
	e := dsp.NewEchoBuffer(sampleRate)
	rec := toneSamples(100, 1000)

	e.StartRecording(echoFreq)
	e.Feed(rec)
	e.StopRecording()

	// Ask for more than the recording holds; playback wraps to the head.
	out := e.Generate(250, 0, echoFreq, sampleRate)
	atten := math.Pow(10, -60.0/20.0)
	for i := 0; i < 250; i++ {
		want := rec[i%100]
		assert.InDelta(t, real(want)*atten, real(out[i]), 1e-12, "sample %d", i)
	}

	// The next chunk continues from the stored playback position.
	out2 := e.Generate(50, 0, echoFreq, sampleRate)
	for i := 0; i < 50; i++ {
		want := rec[(250+i)%100]
		assert.InDelta(t, real(want)*atten, real(out2[i]), 1e-12, "sample %d", i)
	}
}

func TestEchoFrequencyShift(t *testing.T) {
	t.Parallel()
	e := dsp.NewEchoBuffer(sampleRate)
	// A DC recording makes the applied shift directly observable.
	rec := make([]complex128, 200)
	for i := range rec {
		rec[i] = complex(1, 0)
	}
	e.StartRecording(echoFreq)
	e.Feed(rec)
	e.StopRecording()

	const delta = 500.0
	rxFreq := echoFreq + uint32(delta)
	atten := math.Pow(10, -60.0/20.0)
	step := 2 * math.Pi * delta / sampleRate

	out := e.Generate(100, 0, rxFreq, sampleRate)
	for i := range out {
		angle := step * float64(i)
		assert.InDelta(t, atten*math.Cos(angle), real(out[i]), 1e-12, "sample %d", i)
		assert.InDelta(t, atten*math.Sin(angle), imag(out[i]), 1e-12, "sample %d", i)
	}

	// The shift oscillator continues where it left off.
	out2 := e.Generate(10, 0, rxFreq, sampleRate)
	for i := range out2 {
		angle := step * float64(100+i)
		assert.InDelta(t, atten*math.Cos(angle), real(out2[i]), 1e-12, "sample %d", i)
	}
}

func TestEchoOutOfBandRejected(t *testing.T) {
	t.Parallel()
	e := dsp.NewEchoBuffer(sampleRate)
	e.StartRecording(echoFreq)
	e.Feed(toneSamples(100, 1000))
	e.StopRecording()

	// An offset beyond half the sample rate is outside the receiver.
	out := e.Generate(64, 0, echoFreq+sampleRate, sampleRate)
	for _, s := range out {
		assert.Equal(t, complex(0, 0), s)
	}
}

func TestEchoMaxDurationCap(t *testing.T) {
	t.Parallel()
	e := dsp.NewEchoBuffer(sampleRate)
	e.MaxDuration = 0.001 // 48 samples

	rec := toneSamples(100, 1000)
	e.StartRecording(echoFreq)
	e.Feed(rec)
	e.StopRecording()

	// Playback wraps at the cap, proving the tail was dropped.
	out := e.Generate(96, 0, echoFreq, sampleRate)
	atten := math.Pow(10, -60.0/20.0)
	for i := 0; i < 48; i++ {
		assert.InDelta(t, real(rec[i])*atten, real(out[i]), 1e-12, "sample %d", i)
		assert.InDelta(t, real(rec[i])*atten, real(out[48+i]), 1e-12, "wrapped sample %d", i)
	}
}

func TestEchoZeroFreqDiscarded(t *testing.T) {
	t.Parallel()
	e := dsp.NewEchoBuffer(sampleRate)
	e.StartRecording(0)
	e.Feed(toneSamples(100, 1000))
	e.StopRecording()
	assert.Equal(t, 0, e.RecordingCount())
}

func TestEchoEmptyCommitDiscarded(t *testing.T) {
	t.Parallel()
	e := dsp.NewEchoBuffer(sampleRate)
	e.StartRecording(echoFreq)
	e.StopRecording()
	assert.Equal(t, 0, e.RecordingCount())

	// Feeding while not recording must not stage anything either.
	e.Feed(toneSamples(10, 1000))
	e.StartRecording(echoFreq)
	e.StopRecording()
	assert.Equal(t, 0, e.RecordingCount())
}

func TestEchoRestartCommitsInFlight(t *testing.T) {
	t.Parallel()
	e := dsp.NewEchoBuffer(sampleRate)
	e.StartRecording(echoFreq)
	e.Feed(toneSamples(50, 1000))
	// A second start without a stop commits the in-flight recording first.
	e.StartRecording(echoFreq + 100_000)
	e.Feed(toneSamples(60, 1000))
	e.StopRecording()
	assert.Equal(t, 2, e.RecordingCount())
}

func TestEchoRecommitReplacesAndKeepsShiftPhase(t *testing.T) {
	t.Parallel()
	e := dsp.NewEchoBuffer(sampleRate)
	rec := make([]complex128, 100)
	for i := range rec {
		rec[i] = complex(1, 0)
	}
	e.StartRecording(echoFreq)
	e.Feed(rec)
	e.StopRecording()

	const delta = 500.0
	rxFreq := echoFreq + uint32(delta)
	step := 2 * math.Pi * delta / sampleRate
	e.Generate(75, 0, rxFreq, sampleRate)

	// Re-record at the same frequency: playback restarts at the head, but the
	// shift oscillator keeps its accumulated angle.
	e.StartRecording(echoFreq)
	e.Feed(rec)
	e.StopRecording()
	require.Equal(t, 1, e.RecordingCount())

	out := e.Generate(10, 0, rxFreq, sampleRate)
	atten := math.Pow(10, -60.0/20.0)
	for i := range out {
		angle := step * float64(75+i)
		assert.InDelta(t, atten*math.Cos(angle), real(out[i]), 1e-12, "sample %d", i)
	}
}

func TestEchoSumsMultipleRecordings(t *testing.T) {
	t.Parallel()
	e := dsp.NewEchoBuffer(sampleRate)
	rec := make([]complex128, 50)
	for i := range rec {
		rec[i] = complex(1, 0)
	}
	e.StartRecording(echoFreq)
	e.Feed(rec)
	// Same samples a few kHz up, still inside the passband.
	e.StartRecording(echoFreq + 2000)
	e.Feed(rec)
	e.StopRecording()
	require.Equal(t, 2, e.RecordingCount())

	out := e.Generate(1, 0, echoFreq, sampleRate)
	// Sample 0 of both contributions has zero shift angle, so they add.
	atten := math.Pow(10, -60.0/20.0)
	assert.InDelta(t, 2*atten, real(out[0]), 1e-12)
}

func TestEchoImplementsSource(t *testing.T) {
	t.Parallel()
	var _ dsp.Source = dsp.NewEchoBuffer(sampleRate)
	var _ dsp.Source = dsp.NewGenerator(1000, 3e-6)
}
