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

package hpsdrconst

import (
	"fmt"
	"strings"
)

// Hardware is an emulated OpenHPSDR board variant.
type Hardware string

const (
	HardwareAtlas      Hardware = "atlas"
	HardwareHermes     Hardware = "hermes"
	HardwareHermesII   Hardware = "hermesii"
	HardwareAngelia    Hardware = "angelia"
	HardwareOrion      Hardware = "orion"
	HardwareOrionMkII  Hardware = "orionmkii"
	HardwareHermesLite Hardware = "hermeslite"
	HardwareSaturn     Hardware = "saturn"
	HardwareSaturnMkII Hardware = "saturnmkii"
)

type hardwareInfo struct {
	code    byte
	maxDDCs uint8
}

var hardwareTable = map[Hardware]hardwareInfo{
	HardwareAtlas:      {code: 0, maxDDCs: 2},
	HardwareHermes:     {code: 1, maxDDCs: 4},
	HardwareHermesII:   {code: 2, maxDDCs: 4},
	HardwareAngelia:    {code: 3, maxDDCs: 5},
	HardwareOrion:      {code: 4, maxDDCs: 5},
	HardwareOrionMkII:  {code: 5, maxDDCs: 8},
	HardwareHermesLite: {code: 6, maxDDCs: 2},
	HardwareSaturn:     {code: 10, maxDDCs: 10},
	HardwareSaturnMkII: {code: 11, maxDDCs: 10},
}

// hardwareNames is the stable listing order for error messages and help text.
var hardwareNames = []Hardware{
	HardwareAtlas,
	HardwareHermes,
	HardwareHermesII,
	HardwareAngelia,
	HardwareOrion,
	HardwareOrionMkII,
	HardwareHermesLite,
	HardwareSaturn,
	HardwareSaturnMkII,
}

// Code returns the one-byte board code reported in discovery responses.
func (h Hardware) Code() byte {
	return hardwareTable[h].code
}

// MaxDDCs returns the number of receive DDCs the board variant supports.
func (h Hardware) MaxDDCs() uint8 {
	return hardwareTable[h].maxDDCs
}

// String returns the display name of the board variant.
func (h Hardware) String() string {
	return strings.ToUpper(string(h))
}

// HardwareNames returns all recognized board variant names.
func HardwareNames() []string {
	names := make([]string, 0, len(hardwareNames))
	for _, h := range hardwareNames {
		names = append(names, string(h))
	}
	return names
}

// ParseHardware resolves a case-insensitive board variant name.
func ParseHardware(name string) (Hardware, error) {
	h := Hardware(strings.ToLower(name))
	if _, ok := hardwareTable[h]; !ok {
		return "", fmt.Errorf("unknown radio %q, valid radios: %s", name, strings.Join(HardwareNames(), ", "))
	}
	return h, nil
}
