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

package protocol1

import (
	"encoding/binary"

	"github.com/USA-RedDragon/hpsdr-emu/internal/hpsdr/hpsdrconst"
)

// rxFullScale is the largest positive 24-bit sample value.
const rxFullScale = 8_388_607

// txScale converts 16-bit TX samples to floats.
const txScale = 32768.0

// PackIQ24 writes one IQ sample into buf at offset as two 24-bit signed
// big-endian integers, I then Q. Inputs outside [-1, 1] saturate. Returns the
// offset past the written bytes.
func PackIQ24(buf []byte, offset int, sample complex128) int {
	iu := to24bit(real(sample))
	qu := to24bit(imag(sample))
	buf[offset] = byte(iu >> 16)
	buf[offset+1] = byte(iu >> 8)
	buf[offset+2] = byte(iu)
	buf[offset+3] = byte(qu >> 16)
	buf[offset+4] = byte(qu >> 8)
	buf[offset+5] = byte(qu)
	return offset + 6
}

func to24bit(v float64) uint32 {
	if v > 1 {
		v = 1
	} else if v < -1 {
		v = -1
	}
	return uint32(int32(v*rxFullScale)) & 0xFF_FFFF
}

// UnpackTXIQ decodes host transmit data. Each 8-byte block carries a 16-bit
// big-endian audio pair followed by a 16-bit big-endian IQ pair; only the IQ
// pair is kept. A trailing partial block is discarded.
func UnpackTXIQ(data []byte) []complex128 {
	nBlocks := len(data) / hpsdrconst.TXIQBlockSize
	samples := make([]complex128, nBlocks)
	for k := 0; k < nBlocks; k++ {
		off := k * hpsdrconst.TXIQBlockSize
		i := int16(binary.BigEndian.Uint16(data[off+4 : off+6]))
		q := int16(binary.BigEndian.Uint16(data[off+6 : off+8]))
		samples[k] = complex(float64(i)/txScale, float64(q)/txScale)
	}
	return samples
}
