// Copyright (C) 2021  Antonio Lassandro

// This program is free software: you can redistribute it and/or modify it
// under the terms of the GNU General Public License as published by the Free
// Software Foundation, either version 3 of the License, or (at your option)
// any later version.

// This program is distributed in the hope that it will be useful, but WITHOUT
// ANY WARRANTY; without even the implied warranty of MERCHANTABILITY or
// FITNESS FOR A PARTICULAR PURPOSE.  See the GNU General Public License for
// more details.

// You should have received a copy of the GNU General Public License along
// with this program.  If not, see <http://www.gnu.org/licenses/>.

//go:build !(darwin || freebsd || linux)

package machine

import (
	"errors"
	"runtime"
)

type NativeModule struct {
	Path string
}

func Open(path string) (*NativeModule, error) {
	return nil, errors.New("loading native modules is not supported on " + runtime.GOOS)
}

func (m *NativeModule) Invoke(
	mem, regs []byte, onRead, onWrite TrapFunc, counter *uint64,
) {
	panic("machine: native modules are not supported on " + runtime.GOOS)
}

func (m *NativeModule) Close() error {
	return nil
}
