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

package radio

import (
	"crypto/rand"
	"fmt"
	"strings"
	"sync"

	"github.com/USA-RedDragon/hpsdr-emu/internal/hpsdr/hpsdrconst"
)

const (
	// MaxRXFrequencies is the number of receive frequency slots the control
	// plane can address, independent of how many DDCs are active.
	MaxRXFrequencies = 12

	// DefaultFrequency is the initial RX and TX frequency (40m FT8).
	DefaultFrequency uint32 = 7_074_000

	defaultVersionByte = 25
	defaultSampleRate  = 48000
)

// State is the in-memory model of the emulated radio. Field mutation is
// serialized by the protocol engine's event loop; only the sequence counters
// carry their own lock so telemetry paths can mint sequence numbers without
// owning the loop.
type State struct {
	HW  hpsdrconst.Hardware
	MAC [6]byte

	FirmwareVersion byte
	MercuryVersions [4]byte
	PennyVersion    byte
	MetisVersion    byte

	SampleRate    uint32
	NDDC          uint8
	RXFrequencies [MaxRXFrequencies]uint32
	TXFrequency   uint32
	TXDrive       uint8

	Running bool
	PTT     bool

	seqMu sync.Mutex
	seq   map[string]uint32
}

// NewState creates radio state with the power-on defaults for the variant.
func NewState(hw hpsdrconst.Hardware, mac [6]byte) *State {
	s := &State{
		HW:              hw,
		MAC:             mac,
		FirmwareVersion: defaultVersionByte,
		MercuryVersions: [4]byte{defaultVersionByte, defaultVersionByte, defaultVersionByte, defaultVersionByte},
		PennyVersion:    defaultVersionByte,
		MetisVersion:    defaultVersionByte,
		SampleRate:      defaultSampleRate,
		NDDC:            hw.MaxDDCs(),
		TXFrequency:     DefaultFrequency,
		seq:             make(map[string]uint32),
	}
	for i := range s.RXFrequencies {
		s.RXFrequencies[i] = DefaultFrequency
	}
	return s
}

// NextSeq returns the current sequence number for the named stream and
// advances it, wrapping at 2^32.
func (s *State) NextSeq(stream string) uint32 {
	s.seqMu.Lock()
	defer s.seqMu.Unlock()
	val := s.seq[stream]
	s.seq[stream] = val + 1
	return val
}

// MACString formats the MAC as six lowercase hex bytes joined by ':'.
func (s *State) MACString() string {
	parts := make([]string, len(s.MAC))
	for i, b := range s.MAC {
		parts[i] = fmt.Sprintf("%02x", b)
	}
	return strings.Join(parts, ":")
}

// RandomMAC generates a locally administered, unicast MAC address.
func RandomMAC() ([6]byte, error) {
	var mac [6]byte
	if _, err := rand.Read(mac[:]); err != nil {
		return mac, fmt.Errorf("failed to generate MAC: %w", err)
	}
	mac[0] = (mac[0] | 0x02) & 0xFE
	return mac, nil
}

// ParseMAC parses 12 hex digits in any separator-insensitive form.
func ParseMAC(s string) ([6]byte, error) {
	var mac [6]byte
	hex := make([]byte, 0, 12)
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			hex = append(hex, byte(r-'0'))
		case r >= 'a' && r <= 'f':
			hex = append(hex, byte(r-'a'+10))
		case r >= 'A' && r <= 'F':
			hex = append(hex, byte(r-'A'+10))
		case r == ':' || r == '-' || r == '.' || r == ' ':
		default:
			return mac, fmt.Errorf("MAC address %q contains invalid character %q", s, r)
		}
	}
	if len(hex) != 12 {
		return mac, fmt.Errorf("MAC address %q must be 6 bytes (12 hex digits)", s)
	}
	for i := 0; i < 6; i++ {
		mac[i] = hex[i*2]<<4 | hex[i*2+1]
	}
	return mac, nil
}
