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

package debugger

import (
	"fmt"
	"io"

	"github.com/lassandro/mctrans/pkg/machine"
)

// Adds a watchpoint, merging it into an existing one on the same address
func (dbg *Debugger) Watch(addr uint8, wtype WatchpointType) {
	for i, watchpoint := range dbg.Watchpoints {
		if watchpoint.Addr == addr {
			dbg.Watchpoints[i].Type |= wtype
			return
		}
	}

	dbg.Watchpoints = append(dbg.Watchpoints, Watchpoint{addr, wtype})
}

func (dbg *Debugger) watched(addr uint8, wtype WatchpointType) bool {
	if dbg.Trace {
		return true
	}

	for _, watchpoint := range dbg.Watchpoints {
		if watchpoint.Addr == addr && watchpoint.Type&wtype != 0 {
			return true
		}
	}

	return false
}

func (dbg *Debugger) Read(addr uint8, mc *machine.Machine) {
	dbg.Reads[addr]++

	if dbg.HandleRead != nil && dbg.watched(addr, ReadWatch) {
		dbg.HandleRead(addr, dbg, mc)
	}
}

func (dbg *Debugger) Write(addr uint8, mc *machine.Machine) {
	dbg.Writes[addr]++

	if dbg.HandleWrite != nil && dbg.watched(addr, WriteWatch) {
		dbg.HandleWrite(addr, dbg, mc)
	}
}

func (dbg *Debugger) Reset() {
	dbg.Reads = [256]uint64{}
	dbg.Writes = [256]uint64{}
}

// Prints the addresses that were accessed at least once with their counts
func (dbg *Debugger) PrintCounts(w io.Writer) {
	for addr := range dbg.Reads {
		if dbg.Reads[addr] == 0 && dbg.Writes[addr] == 0 {
			continue
		}

		fmt.Fprintf(
			w, "\033[1m[%#02x]\033[0m R:%d W:%d\n",
			addr, dbg.Reads[addr], dbg.Writes[addr],
		)
	}
}

func PrintMem(w io.Writer, mc *machine.MachineState, addr, count int) {
	for i := addr; i < addr+count && i < len(mc.Memory); i++ {
		if i == addr {
			fmt.Fprintf(w, "\033[1m[%#02x]\033[0m ", i)
		} else if (i-addr)%8 == 0 {
			fmt.Fprintln(w)
			fmt.Fprintf(w, "\033[1m[%#02x]\033[0m ", i)
		}

		result := mc.Memory[i]

		if result == 0 {
			fmt.Fprintf(w, "\033[1;30m%#02x\033[0m ", result)
		} else {
			fmt.Fprintf(w, "%#02x ", result)
		}
	}

	fmt.Fprintln(w)
}
