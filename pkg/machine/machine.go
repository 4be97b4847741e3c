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

package machine

import (
	"time"
)

func (mc *MachineState) Reset() {
	for i := range mc.Registers {
		mc.Registers[i] = 0x00
	}

	for i := range mc.Memory {
		mc.Memory[i] = 0x00
	}
}

// Runs the module the given number of times, resetting memory and registers
// before each run. The instruction count accumulates across iterations and
// only the time spent inside the module is measured.
func (mc *Machine) Run(iterations int) Stats {
	if iterations < 1 {
		iterations = 1
	}

	stats := Stats{Iterations: iterations}

	for i := 0; i < iterations; i++ {
		mc.State.Reset()

		start := time.Now()
		mc.Module.Invoke(
			mc.State.Memory[:],
			mc.State.Registers[:],
			mc.read,
			mc.write,
			&stats.Instructions,
		)
		stats.Elapsed += time.Since(start)
	}

	return stats
}

func (mc *Machine) read(mem []byte, addr uintptr) {
	if mc.Devices != nil {
		mc.Devices.OnRead(mem, addr)
	}

	if mc.Debugger != nil && addr < uintptr(len(mem)) {
		mc.Debugger.Read(uint8(addr), mc)
	}
}

func (mc *Machine) write(mem []byte, addr uintptr) {
	if mc.Devices != nil {
		mc.Devices.OnWrite(mem, addr)
	}

	if mc.Debugger != nil && addr < uintptr(len(mem)) {
		mc.Debugger.Write(uint8(addr), mc)
	}
}
