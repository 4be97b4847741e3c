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

import (
	"fmt"

	"github.com/lassandro/mctrans/pkg/encoding"
)

type Register uint8
type Immediate uint8
type Address uint16
type Offset int8

// An encoded instruction. The fields overlap; which of them are meaningful
// depends on the opcode.
//
// |opcode |reg_a  |reg_b  |reg_c  |
// |opcode |reg_a  |immediate      |
// |opcode |cnd|address            |
// |opcode |reg_a  |reg_b  |s|mag  |
// [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
type Word uint16

func (w Word) bits(start, end uint) uint16 {
	return encoding.ReadBits(uint16(w), start, end)
}

func (w Word) Opcode() Opcode       { return Opcode(w.bits(0, 4)) }
func (w Word) RegA() Register       { return Register(w.bits(4, 8)) }
func (w Word) RegB() Register       { return Register(w.bits(8, 12)) }
func (w Word) RegC() Register       { return Register(w.bits(12, 16)) }
func (w Word) Immediate() Immediate { return Immediate(w.bits(8, 16)) }
func (w Word) Address() Address     { return Address(w.bits(6, 16)) }
func (w Word) Condition() Condition { return Condition(w.bits(4, 6)) }

// Four bit two's complement offset in [-8, 7]
func (w Word) Offset() Offset {
	return Offset(int8(encoding.SignExtend(w.bits(12, 16), 4)))
}

// Instruction is one of the sixteen decoded variants below. The set is closed;
// values are only produced by Decode or built directly by callers.
type Instruction interface {
	Opcode() Opcode
	String() string
	instruction()
}

type (
	Nop struct{}
	Hlt struct{}
	Ret struct{}

	Add struct{ A, B, C Register }
	Sub struct{ A, B, C Register }
	Nor struct{ A, B, C Register }
	And struct{ A, B, C Register }
	Xor struct{ A, B, C Register }

	Rsh struct{ A, C Register }

	Ldi struct {
		A   Register
		Imm Immediate
	}
	Adi struct {
		A   Register
		Imm Immediate
	}

	Jmp struct{ Addr Address }
	Brh struct {
		Cond Condition
		Addr Address
	}
	Cal struct{ Addr Address }

	Lod struct {
		A, B   Register
		Offset Offset
	}
	Str struct {
		A, B   Register
		Offset Offset
	}
)

func (Nop) Opcode() Opcode { return OP_NOP }
func (Hlt) Opcode() Opcode { return OP_HLT }
func (Add) Opcode() Opcode { return OP_ADD }
func (Sub) Opcode() Opcode { return OP_SUB }
func (Nor) Opcode() Opcode { return OP_NOR }
func (And) Opcode() Opcode { return OP_AND }
func (Xor) Opcode() Opcode { return OP_XOR }
func (Rsh) Opcode() Opcode { return OP_RSH }
func (Ldi) Opcode() Opcode { return OP_LDI }
func (Adi) Opcode() Opcode { return OP_ADI }
func (Jmp) Opcode() Opcode { return OP_JMP }
func (Brh) Opcode() Opcode { return OP_BRH }
func (Cal) Opcode() Opcode { return OP_CAL }
func (Ret) Opcode() Opcode { return OP_RET }
func (Lod) Opcode() Opcode { return OP_LOD }
func (Str) Opcode() Opcode { return OP_STR }

func (Nop) instruction() {}
func (Hlt) instruction() {}
func (Add) instruction() {}
func (Sub) instruction() {}
func (Nor) instruction() {}
func (And) instruction() {}
func (Xor) instruction() {}
func (Rsh) instruction() {}
func (Ldi) instruction() {}
func (Adi) instruction() {}
func (Jmp) instruction() {}
func (Brh) instruction() {}
func (Cal) instruction() {}
func (Ret) instruction() {}
func (Lod) instruction() {}
func (Str) instruction() {}

func (Nop) String() string { return "NOP" }
func (Hlt) String() string { return "HLT" }
func (Ret) String() string { return "RET" }

func (in Add) String() string { return threeReg(OP_ADD, in.A, in.B, in.C) }
func (in Sub) String() string { return threeReg(OP_SUB, in.A, in.B, in.C) }
func (in Nor) String() string { return threeReg(OP_NOR, in.A, in.B, in.C) }
func (in And) String() string { return threeReg(OP_AND, in.A, in.B, in.C) }
func (in Xor) String() string { return threeReg(OP_XOR, in.A, in.B, in.C) }

func (in Rsh) String() string { return fmt.Sprintf("RSH r%d r%d", in.A, in.C) }
func (in Ldi) String() string { return fmt.Sprintf("LDI r%d %d", in.A, in.Imm) }
func (in Adi) String() string { return fmt.Sprintf("ADI r%d %d", in.A, in.Imm) }
func (in Jmp) String() string { return fmt.Sprintf("JMP %d", in.Addr) }
func (in Brh) String() string { return fmt.Sprintf("BRH %s %d", in.Cond, in.Addr) }
func (in Cal) String() string { return fmt.Sprintf("CAL %d", in.Addr) }

func (in Lod) String() string {
	return fmt.Sprintf("LOD r%d r%d %d", in.A, in.B, in.Offset)
}

func (in Str) String() string {
	return fmt.Sprintf("STR r%d r%d %d", in.A, in.B, in.Offset)
}

func threeReg(op Opcode, a, b, c Register) string {
	return fmt.Sprintf("%s r%d r%d r%d", op, a, b, c)
}
