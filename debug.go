// rfid-util
// Copyright (c) 2025 The rfid-util Contributors.
// SPDX-License-Identifier: LGPL-3.0-or-later
//
// This file is part of rfid-util.
//
// rfid-util is free software; you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public
// License as published by the Free Software Foundation; either
// version 3 of the License, or (at your option) any later version.
//
// rfid-util is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with rfid-util; if not, write to the Free Software Foundation,
// Inc., 51 Franklin Street, Fifth Floor, Boston, MA  02110-1301, USA.

package rfidutil

import (
	"fmt"
	"sync/atomic"

	"github.com/rs/zerolog"
)

var (
	pkgLogger atomic.Pointer[zerolog.Logger]
	// pkgLevel is the level of the logger passed to SetLogger
	pkgLevel  atomic.Int32
)

func init() {
	SetLogger(zerolog.Nop())
}

// SetLogger installs the logger used by the library. The default discards
// everything.
func SetLogger(l zerolog.Logger) {
	pkgLevel.Store(int32(l.GetLevel()))
	pkgLogger.Store(&l)
}

// Logger returns the library logger. Subpackages log through it so a single
// SetLogger call configures the whole module.
func Logger() *zerolog.Logger {
	return pkgLogger.Load()
}

// SetDebugEnabled raises the library logger to debug level. Disabling it
// restores the level of the logger installed with SetLogger.
func SetDebugEnabled(enabled bool) {
	level := zerolog.Level(pkgLevel.Load())
	if enabled {
		level = zerolog.DebugLevel
	}
	l := Logger().Level(level)
	pkgLogger.Store(&l)
}

func debugf(format string, args ...any) {
	Logger().Debug().Msgf(format, args...)
}

func debugln(args ...any) {
	Logger().Debug().Msg(fmt.Sprint(args...))
}
