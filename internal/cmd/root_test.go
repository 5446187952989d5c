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

package cmd_test

import (
	"testing"

	"github.com/USA-RedDragon/hpsdr-emu/internal/cmd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCommand(t *testing.T) {
	t.Parallel()
	command := cmd.NewCommand("1.0.0", "abc123")
	require.NotNil(t, command)
	assert.Equal(t, "hpsdr-emu", command.Use)
	assert.Equal(t, "1.0.0 - abc123", command.Version)
	assert.Equal(t, "1.0.0", command.Annotations["version"])
	assert.Equal(t, "abc123", command.Annotations["commit"])
}
