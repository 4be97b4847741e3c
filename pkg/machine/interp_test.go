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

package machine_test

import (
	"github.com/lassandro/mctrans/pkg/isa"
	"github.com/lassandro/mctrans/pkg/machine"
)

// Executes a program in Go with the semantics the generated host code has:
// the same flag rules, the same trap order and the same register 0 sink.
type interpModule struct {
	program []isa.Instruction
	count   bool
}

func (m *interpModule) Invoke(
	mem, regs []byte, onRead, onWrite machine.TrapFunc, counter *uint64,
) {
	var zero, carry bool
	var calls []int

	set := func(r isa.Register, value uint8) {
		if r != 0 {
			regs[r] = value
		}
	}

	logic := func(value uint8) uint8 {
		zero, carry = value == 0, false
		return value
	}

	for pc := 0; pc < len(m.program); {
		in := m.program[pc]
		pc++

		if m.count {
			*counter++
		}

		switch in := in.(type) {
		case isa.Hlt:
			return
		case isa.Add:
			sum := uint16(regs[in.A]) + uint16(regs[in.B])
			set(in.C, uint8(sum))
			zero, carry = uint8(sum) == 0, sum > 0xFF
		case isa.Sub:
			diff := regs[in.A] - regs[in.B]
			set(in.C, diff)
			zero, carry = diff == 0, regs[in.A] < regs[in.B]
		case isa.Nor:
			set(in.C, logic(^(regs[in.A] | regs[in.B])))
		case isa.And:
			set(in.C, logic(regs[in.A]&regs[in.B]))
		case isa.Xor:
			set(in.C, logic(regs[in.A]^regs[in.B]))
		case isa.Rsh:
			value := regs[in.A]
			set(in.C, value>>1)
			zero, carry = value>>1 == 0, value&1 == 1
		case isa.Ldi:
			set(in.A, uint8(in.Imm))
		case isa.Adi:
			sum := uint16(regs[in.A]) + uint16(in.Imm)
			set(in.A, uint8(sum))
			zero, carry = uint8(sum) == 0, sum > 0xFF
		case isa.Jmp:
			pc = int(in.Addr)
		case isa.Brh:
			taken := map[isa.Condition]bool{
				isa.Equal:          zero,
				isa.NotEqual:       !zero,
				isa.GreaterOrEqual: !carry,
				isa.Less:           carry,
			}[in.Cond]

			if taken {
				pc = int(in.Addr)
			}
		case isa.Cal:
			calls = append(calls, pc)
			pc = int(in.Addr)
		case isa.Ret:
			pc = calls[len(calls)-1]
			calls = calls[:len(calls)-1]
		case isa.Lod:
			addr := uintptr(regs[in.A] + uint8(in.Offset))
			onRead(mem, addr)
			set(in.B, mem[addr])
		case isa.Str:
			addr := uintptr(regs[in.A] + uint8(in.Offset))
			mem[addr] = regs[in.B]
			onWrite(mem, addr)
		}
	}
}
