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
	"math"
	"sync"

	"gonum.org/v1/gonum/stat/distuv"
)

// phaseFoldLimit bounds the phase accumulators. The fold point must land on a
// tone-period multiple so the sinusoid stays continuous.
const phaseFoldLimit = 1e6

const defaultAmplitude = 0.3

// Generator synthesizes a test tone plus Gaussian noise for each DDC. The
// per-DDC phase accumulator (in seconds) survives across calls so the tone is
// continuous from one sub-frame to the next.
type Generator struct {
	ToneOffset float64
	NoiseLevel float64
	Amplitude  float64

	mu     sync.Mutex
	normal distuv.Normal
	phase  map[int]float64
}

// NewGenerator creates a synthetic signal source. toneOffset is the tone's
// offset from center in Hz, noiseLevel the standard deviation of the additive
// noise as a fraction of full scale.
func NewGenerator(toneOffset, noiseLevel float64) *Generator {
	return &Generator{
		ToneOffset: toneOffset,
		NoiseLevel: noiseLevel,
		Amplitude:  defaultAmplitude,
		normal:     distuv.Normal{Mu: 0, Sigma: 1},
		phase:      make(map[int]float64),
	}
}

// Generate produces n IQ samples for the given DDC. rxFreq is ignored; the
// tone sits at a fixed offset from center regardless of tuning.
func (g *Generator) Generate(n int, ddc int, _ uint32, sampleRate uint32) []complex128 {
	g.mu.Lock()
	defer g.mu.Unlock()

	phase := g.phase[ddc]
	sr := float64(sampleRate)

	samples := make([]complex128, n)
	for i := range samples {
		t := float64(i)/sr + phase
		angle := 2 * math.Pi * g.ToneOffset * t
		tone := complex(math.Cos(angle)*g.Amplitude, math.Sin(angle)*g.Amplitude)
		noise := complex(g.normal.Rand()*g.NoiseLevel, g.normal.Rand()*g.NoiseLevel)
		samples[i] = tone + noise
	}

	newPhase := phase + float64(n)/sr
	if math.Abs(newPhase) > phaseFoldLimit {
		if g.ToneOffset != 0 {
			newPhase = math.Mod(newPhase, 1/g.ToneOffset)
		} else {
			newPhase = 0
		}
	}
	g.phase[ddc] = newPhase

	return samples
}
