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

package radio_test

import (
	"testing"

	"github.com/USA-RedDragon/hpsdr-emu/internal/hpsdr/hpsdrconst"
	"github.com/USA-RedDragon/hpsdr-emu/internal/radio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStateDefaults(t *testing.T) {
	t.Parallel()
	mac := [6]byte{0x00, 0x1c, 0xc0, 0xa2, 0x22, 0x5e}
	s := radio.NewState(hpsdrconst.HardwareHermes, mac)

	assert.Equal(t, hpsdrconst.HardwareHermes, s.HW)
	assert.Equal(t, mac, s.MAC)
	assert.Equal(t, byte(25), s.FirmwareVersion)
	assert.Equal(t, [4]byte{25, 25, 25, 25}, s.MercuryVersions)
	assert.Equal(t, byte(25), s.PennyVersion)
	assert.Equal(t, byte(25), s.MetisVersion)
	assert.Equal(t, uint32(48000), s.SampleRate)
	assert.Equal(t, uint8(4), s.NDDC)
	for i, f := range s.RXFrequencies {
		assert.Equal(t, radio.DefaultFrequency, f, "RX frequency %d", i)
	}
	assert.Equal(t, radio.DefaultFrequency, s.TXFrequency)
	assert.Equal(t, uint8(0), s.TXDrive)
	assert.False(t, s.Running)
	assert.False(t, s.PTT)
}

func TestNextSeq(t *testing.T) {
	t.Parallel()
	s := radio.NewState(hpsdrconst.HardwareAtlas, [6]byte{})

	for i := uint32(0); i < 100; i++ {
		assert.Equal(t, i, s.NextSeq("p1_data"))
	}
	// Streams count independently.
	assert.Equal(t, uint32(0), s.NextSeq("other"))
	assert.Equal(t, uint32(1), s.NextSeq("other"))
	assert.Equal(t, uint32(100), s.NextSeq("p1_data"))
}

func TestMACString(t *testing.T) {
	t.Parallel()
	s := radio.NewState(hpsdrconst.HardwareHermes, [6]byte{0x00, 0x1C, 0xC0, 0xA2, 0x22, 0x5E})
	assert.Equal(t, "00:1c:c0:a2:22:5e", s.MACString())
}

func TestRandomMAC(t *testing.T) {
	t.Parallel()
	mac, err := radio.RandomMAC()
	require.NoError(t, err)
	// Locally administered, unicast.
	assert.Equal(t, byte(0x02), mac[0]&0x03)
}

func TestParseMAC(t *testing.T) {
	t.Parallel()
	want := [6]byte{0x00, 0x1c, 0xc0, 0xa2, 0x22, 0x5e}

	for _, input := range []string{
		"00:1c:c0:a2:22:5e",
		"00-1C-C0-A2-22-5E",
		"001cc0a2225e",
		"001c.c0a2.225e",
	} {
		mac, err := radio.ParseMAC(input)
		require.NoError(t, err, "input %q", input)
		assert.Equal(t, want, mac, "input %q", input)
	}

	_, err := radio.ParseMAC("001cc0a2225")
	assert.Error(t, err)
	_, err = radio.ParseMAC("001cc0a2225ef0")
	assert.Error(t, err)
	_, err = radio.ParseMAC("zz:1c:c0:a2:22:5e")
	assert.Error(t, err)
}
