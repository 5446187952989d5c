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

const paSupplyReading = 3200

// buildDataPacket assembles one 1032-byte outbound data packet: header,
// sequence number, and two sub-frames.
func (s *Server) buildDataPacket() []byte {
	buf := make([]byte, hpsdrconst.PacketSize)
	buf[0] = hpsdrconst.Magic0
	buf[1] = hpsdrconst.Magic1
	buf[2] = byte(hpsdrconst.MessageData)
	buf[3] = hpsdrconst.DataEndpoint
	binary.BigEndian.PutUint32(buf[4:8], s.state.NextSeq(StreamP1Data))

	s.fillSubframe(buf[hpsdrconst.SubframeAOffset:hpsdrconst.SubframeBOffset])
	s.fillSubframe(buf[hpsdrconst.SubframeBOffset:])
	return buf
}

// fillSubframe writes sync, the rotating control response, and interleaved
// IQ+mic sample rows into one 512-byte sub-frame. The rotation counter
// advances once per sub-frame, so the two sub-frames of a packet carry
// consecutive response addresses.
func (s *Server) fillSubframe(sf []byte) {
	sf[0] = hpsdrconst.SyncByte
	sf[1] = hpsdrconst.SyncByte
	sf[2] = hpsdrconst.SyncByte

	c0Addr := hpsdrconst.ResponseAddrs[s.controlIdx]
	s.controlIdx = (s.controlIdx + 1) % uint8(len(hpsdrconst.ResponseAddrs))

	var pttBit byte
	if s.state.PTT {
		pttBit = 1
	}
	sf[3] = c0Addr | 0x80 | pttBit
	s.fillTelemetry(sf[4:8], c0Addr)

	nddc := int(s.state.NDDC)
	if nddc < 1 {
		nddc = 1
	}
	spr := hpsdrconst.SamplesPerSubframe(nddc)

	ddcSamples := make([][]complex128, nddc)
	for ddc := 0; ddc < nddc; ddc++ {
		ddcSamples[ddc] = s.source.Generate(spr, ddc, s.state.RXFrequencies[ddc], s.state.SampleRate)
	}

	offset := 8
	for row := 0; row < spr; row++ {
		for ddc := 0; ddc < nddc; ddc++ {
			offset = PackIQ24(sf, offset, ddcSamples[ddc][row])
		}
		// Mic: two bytes of silence.
		sf[offset] = 0
		sf[offset+1] = 0
		offset += 2
	}
}

// fillTelemetry writes the C1..C4 response for the given C0 address. Values
// are synthetic but scale with TX drive the way host power meters expect.
func (s *Server) fillTelemetry(c []byte, c0Addr byte) {
	drive := uint16(s.state.TXDrive)
	switch c0Addr {
	case 0x00:
		// C1: ADC overflow (none), C2: firmware version, C3: Penny version, C4: reserved.
		c[0] = 0x00
		c[1] = s.state.FirmwareVersion
		c[2] = s.state.PennyVersion
		c[3] = 0x00
	case 0x08:
		// C1-C2: exciter power (AIN5), C3-C4: forward power (AIN1).
		var exc, fwd uint16
		if s.state.PTT {
			exc = drive * 10
			fwd = (drive * drive) >> 4
		}
		binary.BigEndian.PutUint16(c[0:2], exc)
		binary.BigEndian.PutUint16(c[2:4], fwd)
	case 0x10:
		// C1-C2: reverse power (AIN2), C3-C4: PA supply volts (AIN3).
		var rev uint16
		if s.state.PTT {
			fwd := (drive * drive) >> 4
			rev = fwd / 50
			if rev < 1 {
				rev = 1
			}
		}
		binary.BigEndian.PutUint16(c[0:2], rev)
		binary.BigEndian.PutUint16(c[2:4], paSupplyReading)
	case 0x18:
		// C1-C2: PA current (AIN4), C3-C4: supply volts (AIN6).
		var pa uint16
		if s.state.PTT {
			pa = drive * 5
		}
		binary.BigEndian.PutUint16(c[0:2], pa)
		binary.BigEndian.PutUint16(c[2:4], paSupplyReading)
	}
}
