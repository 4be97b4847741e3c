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

package isa

// One decoder per opcode; every 4-bit value is assigned so decoding is total
var decoders = [OpcodeCount]func(Word) Instruction{
	OP_NOP: func(Word) Instruction { return Nop{} },
	OP_HLT: func(Word) Instruction { return Hlt{} },
	OP_ADD: func(w Word) Instruction { return Add{w.RegA(), w.RegB(), w.RegC()} },
	OP_SUB: func(w Word) Instruction { return Sub{w.RegA(), w.RegB(), w.RegC()} },
	OP_NOR: func(w Word) Instruction { return Nor{w.RegA(), w.RegB(), w.RegC()} },
	OP_AND: func(w Word) Instruction { return And{w.RegA(), w.RegB(), w.RegC()} },
	OP_XOR: func(w Word) Instruction { return Xor{w.RegA(), w.RegB(), w.RegC()} },
	OP_RSH: func(w Word) Instruction { return Rsh{w.RegA(), w.RegC()} },
	OP_LDI: func(w Word) Instruction { return Ldi{w.RegA(), w.Immediate()} },
	OP_ADI: func(w Word) Instruction { return Adi{w.RegA(), w.Immediate()} },
	OP_JMP: func(w Word) Instruction { return Jmp{w.Address()} },
	OP_BRH: func(w Word) Instruction { return Brh{w.Condition(), w.Address()} },
	OP_CAL: func(w Word) Instruction { return Cal{w.Address()} },
	OP_RET: func(Word) Instruction { return Ret{} },
	OP_LOD: func(w Word) Instruction { return Lod{w.RegA(), w.RegB(), w.Offset()} },
	OP_STR: func(w Word) Instruction { return Str{w.RegA(), w.RegB(), w.Offset()} },
}

func Decode(w Word) Instruction {
	return decoders[w.Opcode()](w)
}

// Decodes a whole program. The result has one instruction per word, in the
// same order, so an instruction's index is its address.
func Disassemble(words []uint16) []Instruction {
	program := make([]Instruction, len(words))

	for i, word := range words {
		program[i] = Decode(Word(word))
	}

	return program
}

// Returns the destination of a jump, branch or call
func Target(in Instruction) (Address, bool) {
	switch in := in.(type) {
	case Jmp:
		return in.Addr, true
	case Brh:
		return in.Addr, true
	case Cal:
		return in.Addr, true
	}

	return 0, false
}

// Encodes an instruction back into its word. Bits that the variant does not
// use are left clear.
func Encode(in Instruction) Word {
	w := uint16(in.Opcode()) << 12

	switch in := in.(type) {
	case Add:
		w |= regs(in.A, in.B, in.C)
	case Sub:
		w |= regs(in.A, in.B, in.C)
	case Nor:
		w |= regs(in.A, in.B, in.C)
	case And:
		w |= regs(in.A, in.B, in.C)
	case Xor:
		w |= regs(in.A, in.B, in.C)
	case Rsh:
		w |= regs(in.A, 0, in.C)
	case Ldi:
		w |= uint16(in.A&0xF)<<8 | uint16(in.Imm)
	case Adi:
		w |= uint16(in.A&0xF)<<8 | uint16(in.Imm)
	case Jmp:
		w |= uint16(in.Addr) & 0x3FF
	case Brh:
		w |= uint16(in.Cond&0x3)<<10 | uint16(in.Addr)&0x3FF
	case Cal:
		w |= uint16(in.Addr) & 0x3FF
	case Lod:
		w |= regs(in.A, in.B, 0) | uint16(uint8(in.Offset))&0xF
	case Str:
		w |= regs(in.A, in.B, 0) | uint16(uint8(in.Offset))&0xF
	}

	return Word(w)
}

func regs(a, b, c Register) uint16 {
	return uint16(a&0xF)<<8 | uint16(b&0xF)<<4 | uint16(c&0xF)
}
