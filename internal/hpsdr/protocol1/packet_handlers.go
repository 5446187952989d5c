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
	"context"
	"encoding/binary"
	"log/slog"
	"net"

	"github.com/USA-RedDragon/hpsdr-emu/internal/hpsdr/hpsdrconst"
	"github.com/google/uuid"
)

// handleDatagram dispatches one inbound datagram. Anything without the Metis
// magic or with an unknown type byte is dropped without a reply.
func (s *Server) handleDatagram(ctx context.Context, dg datagram) {
	data := dg.data
	if len(data) < 4 || data[0] != hpsdrconst.Magic0 || data[1] != hpsdrconst.Magic1 {
		slog.Debug("Dropping malformed datagram", "from", dg.addr.String(), "length", len(data))
		s.metrics.DatagramsDropped.Inc()
		return
	}

	msgType := hpsdrconst.MessageType(data[2])
	s.metrics.DatagramsReceived.WithLabelValues(msgType.String()).Inc()

	switch msgType {
	case hpsdrconst.MessageDiscovery:
		s.handleDiscovery(ctx, dg.addr)
	case hpsdrconst.MessageStartStop:
		s.handleStartStop(ctx, dg.addr, data)
	case hpsdrconst.MessageData:
		s.handleHostData(dg.addr, data)
	default:
		slog.Debug("Dropping datagram with unknown type", "from", dg.addr.String(), "type", data[2])
		s.metrics.DatagramsDropped.Inc()
	}
}

// handleDiscovery answers a discovery request inline, in any state.
func (s *Server) handleDiscovery(ctx context.Context, addr *net.UDPAddr) {
	_, span := s.tracer.Start(ctx, "Server.handleDiscovery")
	defer span.End()

	s.metrics.DiscoveryRequests.Inc()
	slog.Info("Discovery request", "from", addr.String())

	resp := s.buildDiscoveryResponse()
	if _, err := s.Server.WriteToUDP(resp, addr); err != nil {
		slog.Error("Error sending discovery response", "error", err)
		s.metrics.SendErrors.Inc()
		return
	}
	slog.Info("Discovery response sent", "to", addr.String(), "bytes", len(resp))
}

// buildDiscoveryResponse lays out the 60-byte Metis discovery reply.
func (s *Server) buildDiscoveryResponse() []byte {
	buf := make([]byte, hpsdrconst.DiscoveryResponseSize)
	buf[0] = hpsdrconst.Magic0
	buf[1] = hpsdrconst.Magic1
	buf[2] = byte(hpsdrconst.MessageDiscovery)
	copy(buf[3:9], s.state.MAC[:])
	buf[9] = s.state.FirmwareVersion
	buf[10] = s.state.HW.Code()
	buf[11] = 0 // protocol version 0 for P1
	copy(buf[14:18], s.state.MercuryVersions[:])
	buf[18] = s.state.PennyVersion
	buf[19] = s.state.MetisVersion
	buf[20] = s.state.NDDC
	return buf
}

// handleStartStop processes a start/stop request. Start latches the sender as
// the streaming client; a start while already streaming only rebinds the
// client address and leaves the sequence counters alone.
func (s *Server) handleStartStop(ctx context.Context, addr *net.UDPAddr, data []byte) {
	_, span := s.tracer.Start(ctx, "Server.handleStartStop")
	defer span.End()

	switch data[3] {
	case 0x01:
		if !s.state.Running {
			s.sessionID = uuid.NewString()
		}
		s.client = addr
		s.state.Running = true
		s.running.Store(true)
		s.metrics.Streaming.Set(1)
		slog.Info("Start streaming", "to", addr.String(), "session", s.sessionID)
	case 0x00:
		s.state.Running = false
		s.running.Store(false)
		s.metrics.Streaming.Set(0)
		slog.Info("Stop streaming", "session", s.sessionID)
	}
}

// handleHostData demuxes an inbound data packet: both sub-frame slots are
// parsed for control words independently, then TX IQ is extracted for the
// echo recorder while PTT is held.
func (s *Server) handleHostData(addr *net.UDPAddr, data []byte) {
	s.client = addr
	if len(data) < hpsdrconst.PacketSize {
		s.metrics.DatagramsDropped.Inc()
		return
	}

	for _, offset := range [2]int{hpsdrconst.SubframeAOffset, hpsdrconst.SubframeBOffset} {
		sf := data[offset : offset+hpsdrconst.SubframeSize]
		if sf[0] != hpsdrconst.SyncByte || sf[1] != hpsdrconst.SyncByte || sf[2] != hpsdrconst.SyncByte {
			continue
		}
		var cw [5]byte
		copy(cw[:], sf[3:8])
		s.processControl(cw)

		if s.state.PTT && s.echo != nil {
			txData := sf[8 : 8+hpsdrconst.TXIQBlocksPerSubframe*hpsdrconst.TXIQBlockSize]
			s.echo.Feed(UnpackTXIQ(txData))
		}
	}
}

// processControl applies one C0..C4 control word to radio state.
func (s *Server) processControl(cw [5]byte) {
	mox := cw[0]&0x01 != 0
	addr := cw[0] & 0xFE

	if mox != s.state.PTT {
		slog.Info("MOX", "active", mox)
		s.state.PTT = mox
		if s.echo != nil {
			if mox {
				s.echo.StartRecording(s.state.TXFrequency)
			} else {
				s.echo.StopRecording()
				s.metrics.EchoCommits.Inc()
			}
		}
	}

	switch {
	case addr == hpsdrconst.AddrConfig:
		rate := hpsdrconst.CodeToSampleRate(cw[1] & 0x03)
		if rate != 0 && rate != s.state.SampleRate {
			slog.Info("Sample rate", "hz", rate)
			s.state.SampleRate = rate
			s.metrics.SampleRate.Set(float64(rate))
		}
		// C4 bits [5:3] carry (nddc - 1). Values are accepted as sent,
		// without clamping to the board's DDC count.
		nddc := ((cw[4] >> 3) & 0x07) + 1
		if nddc != s.state.NDDC {
			slog.Info("Active DDCs", "count", nddc)
			s.state.NDDC = nddc
		}
	case addr == hpsdrconst.AddrTXFreq:
		freq := binary.BigEndian.Uint32(cw[1:5])
		if freq != s.state.TXFrequency {
			slog.Info("TX frequency", "hz", freq)
			s.state.TXFrequency = freq
		}
	case addr >= hpsdrconst.AddrRXFreq0 && addr <= hpsdrconst.AddrRXFreq6 && addr%2 == 0:
		ddc := int(addr-hpsdrconst.AddrRXFreq0) / 2
		freq := binary.BigEndian.Uint32(cw[1:5])
		if freq != s.state.RXFrequencies[ddc] {
			slog.Info("RX frequency", "ddc", ddc, "hz", freq)
			s.state.RXFrequencies[ddc] = freq
		}
	case addr == hpsdrconst.AddrTXDrive:
		if cw[1] != s.state.TXDrive {
			slog.Info("TX drive", "level", cw[1])
			s.state.TXDrive = cw[1]
		}
	}
}
