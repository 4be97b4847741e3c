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
	"fmt"
	"time"

	"github.com/lassandro/mctrans/pkg/isa"
	"github.com/lassandro/mctrans/pkg/peripheral"
)

// Per run execution context. Both buffers are handed to the translated
// program by address and must stay put for the whole invocation.
type MachineState struct {
	Memory    [peripheral.MEMORY_SIZE]byte
	Registers [isa.RegisterCount]byte
}

// Called by translated code with the guest memory and the accessed address
type TrapFunc func(mem []byte, addr uintptr)

// A translated program ready to run. Invoke runs the program once to its halt
// instruction; counter is incremented once per executed guest instruction
// when the program was generated with counting enabled.
type Module interface {
	Invoke(mem, regs []byte, onRead, onWrite TrapFunc, counter *uint64)
}

type MachineDebugger interface {
	Read(addr uint8, mc *Machine)
	Write(addr uint8, mc *Machine)
}

type Machine struct {
	Devices  *peripheral.Peripherals
	State    MachineState
	Debugger MachineDebugger
	Module   Module
}

type Stats struct {
	Iterations   int
	Instructions uint64 // summed over all iterations
	Elapsed      time.Duration
}

func (s Stats) PerIteration() time.Duration {
	if s.Iterations == 0 {
		return 0
	}

	return s.Elapsed / time.Duration(s.Iterations)
}

// Guest instructions per second, zero when nothing was counted
func (s Stats) Throughput() float64 {
	if s.Elapsed <= 0 {
		return 0
	}

	return float64(s.Instructions) / s.Elapsed.Seconds()
}

func (s Stats) String() string {
	str := fmt.Sprintf(
		"%d iterations in %s (%s per iteration)",
		s.Iterations, s.Elapsed, s.PerIteration(),
	)

	if s.Instructions > 0 {
		str += fmt.Sprintf(
			", %d instructions, %.2f MIPS",
			s.Instructions, s.Throughput()/1e6,
		)
	}

	return str
}
