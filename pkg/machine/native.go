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

//go:build darwin || freebsd || linux

package machine

import (
	"fmt"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/ebitengine/purego"

	"github.com/lassandro/mctrans/pkg/codegen"
)

// A shared object produced by the toolchain from generated code
type NativeModule struct {
	Path string

	handle uintptr
	entry  func(mem, regs *byte, onRead, onWrite uintptr, counter *uint64)
}

// The native trap pointers are created once per process and forward to the
// invocation currently running. Translated code is synchronous, so at most
// one invocation is active at a time.
type session struct {
	mem     []byte
	onRead  TrapFunc
	onWrite TrapFunc
}

var (
	trapsOnce sync.Once
	readTrap  uintptr
	writeTrap uintptr
	active    atomic.Pointer[session]
	invokeMu  sync.Mutex
)

func registerTraps() {
	readTrap = purego.NewCallback(func(mem, addr uintptr) {
		s := active.Load()
		s.check(mem)
		s.onRead(s.mem, addr)
	})

	writeTrap = purego.NewCallback(func(mem, addr uintptr) {
		s := active.Load()
		s.check(mem)
		s.onWrite(s.mem, addr)
	})
}

// The traps only ever touch the Go slice of the active session; the raw
// pointer from native code is compared against it, never dereferenced.
func (s *session) check(mem uintptr) {
	if s == nil {
		panic("machine: trap called with no active invocation")
	}

	if mem != uintptr(unsafe.Pointer(&s.mem[0])) {
		panic(fmt.Sprintf("machine: trap called with foreign memory %#x", mem))
	}
}

// Loads a shared object and resolves the entry symbol
func Open(path string) (*NativeModule, error) {
	handle, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_LOCAL)

	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}

	sym, err := purego.Dlsym(handle, codegen.EntrySymbol)

	if err != nil {
		purego.Dlclose(handle)
		return nil, fmt.Errorf("resolve %s in %s: %w", codegen.EntrySymbol, path, err)
	}

	module := &NativeModule{Path: path, handle: handle}
	purego.RegisterFunc(&module.entry, sym)

	return module, nil
}

func (m *NativeModule) Invoke(
	mem, regs []byte, onRead, onWrite TrapFunc, counter *uint64,
) {
	trapsOnce.Do(registerTraps)

	invokeMu.Lock()
	defer invokeMu.Unlock()

	active.Store(&session{mem: mem, onRead: onRead, onWrite: onWrite})
	defer active.Store(nil)

	m.entry(&mem[0], &regs[0], readTrap, writeTrap, counter)
}

func (m *NativeModule) Close() error {
	return purego.Dlclose(m.handle)
}
