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

type Opcode uint8

const (
	OP_NOP Opcode = 0b0000
	OP_HLT Opcode = 0b0001
	OP_ADD Opcode = 0b0010
	OP_SUB Opcode = 0b0011
	OP_NOR Opcode = 0b0100
	OP_AND Opcode = 0b0101
	OP_XOR Opcode = 0b0110
	OP_RSH Opcode = 0b0111
	OP_LDI Opcode = 0b1000
	OP_ADI Opcode = 0b1001
	OP_JMP Opcode = 0b1010
	OP_BRH Opcode = 0b1011
	OP_CAL Opcode = 0b1100
	OP_RET Opcode = 0b1101
	OP_LOD Opcode = 0b1110
	OP_STR Opcode = 0b1111
)

const (
	OpcodeCount   = 16
	RegisterCount = 16
)

var mnemonics = [OpcodeCount]string{
	"NOP", "HLT", "ADD", "SUB", "NOR", "AND", "XOR", "RSH",
	"LDI", "ADI", "JMP", "BRH", "CAL", "RET", "LOD", "STR",
}

func (op Opcode) String() string {
	if int(op) < len(mnemonics) {
		return mnemonics[op]
	}

	return "???"
}

type Condition uint8

const (
	Equal          Condition = 0b00
	NotEqual       Condition = 0b01
	GreaterOrEqual Condition = 0b10
	Less           Condition = 0b11
)

func (c Condition) String() string {
	switch c {
	case Equal:
		return "eq"
	case NotEqual:
		return "ne"
	case GreaterOrEqual:
		return "ge"
	case Less:
		return "lt"
	}

	return "??"
}
