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

package codegen

import (
	"fmt"

	"github.com/lassandro/mctrans/pkg/isa"
)

// The host code for one guest instruction
type Fragment struct {
	Addr  isa.Address
	Label string // empty when nothing transfers control here
	Guest isa.Instruction
	Code  []string
}

// Register operands. Sources always come from the register file; register 0
// is never written there, so it reads as zero.
func src(r isa.Register) string {
	return fmt.Sprintf("byte [%s + %d]", HOST_REGS, r)
}

func dest(r isa.Register) string {
	if r == 0 {
		return HOST_ZERO_SINK
	}

	return src(r)
}

// ADD/SUB/AND/XOR leave ZF and CF from the operation itself.
func lowerALU(op string, a, b, c isa.Register) []string {
	return []string{
		"mov cl, " + src(a),
		fmt.Sprintf("%s cl, %s", op, src(b)),
		"mov " + dest(c) + ", cl",
	}
}

func lowerNor(a, b, c isa.Register) []string {
	return []string{
		"mov cl, " + src(a),
		"or cl, " + src(b),
		"not cl",
		"test cl, cl",
		"mov " + dest(c) + ", cl",
	}
}

func lowerRsh(a, c isa.Register) []string {
	return []string{
		"mov cl, " + src(a),
		"shr cl, 1",
		"mov " + dest(c) + ", cl",
	}
}

func lowerLdi(a isa.Register, imm isa.Immediate) []string {
	return []string{fmt.Sprintf("mov %s, %d", dest(a), imm)}
}

func lowerAdi(a isa.Register, imm isa.Immediate) []string {
	return []string{
		"mov cl, " + src(a),
		fmt.Sprintf("add cl, %d", imm),
		"mov " + dest(a) + ", cl",
	}
}

var branches = [...]string{
	isa.Equal:          "je",
	isa.NotEqual:       "jne",
	isa.GreaterOrEqual: "jae",
	isa.Less:           "jb",
}

// Leaves (base + offset) mod 256 zero extended in rsi
func effectiveAddress(base isa.Register, offset isa.Offset) []string {
	code := []string{"movzx esi, " + src(base)}

	if offset != 0 {
		code = append(code, fmt.Sprintf("add sil, %d", offset), "movzx esi, sil")
	}

	return code
}

// Calls a trap with (mem, rsi) on a 16 byte aligned stack. Guest calls leave
// the stack at any 8 byte alignment, so the old rsp is saved above the
// aligned slot together with the address.
func trapCall(trap string) []string {
	return []string{
		"mov rax, rsp",
		"and rsp, -16",
		"sub rsp, 16",
		"mov [rsp], rax",
		"mov [rsp + 8], rsi",
		"mov rdi, " + HOST_MEM,
		"call " + trap,
		"mov rsi, [rsp + 8]",
		"mov rsp, [rsp]",
	}
}

// Loads and stores never change the guest flags
func lowerLod(a, b isa.Register, offset isa.Offset) []string {
	code := []string{"pushfq"}
	code = append(code, effectiveAddress(a, offset)...)
	code = append(code, trapCall(HOST_ONREAD)...)

	return append(code,
		fmt.Sprintf("mov dl, byte [%s + rsi]", HOST_MEM),
		"mov "+dest(b)+", dl",
		"popfq",
	)
}

func lowerStr(a, b isa.Register, offset isa.Offset) []string {
	code := []string{"pushfq"}
	code = append(code, effectiveAddress(a, offset)...)
	code = append(code,
		"mov dl, "+src(b),
		fmt.Sprintf("mov byte [%s + rsi], dl", HOST_MEM),
	)
	code = append(code, trapCall(HOST_ONWRITE)...)

	return append(code, "popfq")
}

func lowerInstruction(in isa.Instruction, labels *LabelTable) []string {
	switch in := in.(type) {
	case isa.Nop:
		return []string{"nop"}
	case isa.Hlt:
		return []string{"jmp " + LABEL_HALT}
	case isa.Add:
		return lowerALU("add", in.A, in.B, in.C)
	case isa.Sub:
		return lowerALU("sub", in.A, in.B, in.C)
	case isa.Nor:
		return lowerNor(in.A, in.B, in.C)
	case isa.And:
		return lowerALU("and", in.A, in.B, in.C)
	case isa.Xor:
		return lowerALU("xor", in.A, in.B, in.C)
	case isa.Rsh:
		return lowerRsh(in.A, in.C)
	case isa.Ldi:
		return lowerLdi(in.A, in.Imm)
	case isa.Adi:
		return lowerAdi(in.A, in.Imm)
	case isa.Jmp:
		return []string{"jmp " + labels.Name(in.Addr)}
	case isa.Brh:
		return []string{branches[in.Cond] + " " + labels.Name(in.Addr)}
	case isa.Cal:
		return []string{"call " + labels.Name(in.Addr)}
	case isa.Ret:
		return []string{"ret"}
	case isa.Lod:
		return lowerLod(in.A, in.B, in.Offset)
	case isa.Str:
		return lowerStr(in.A, in.B, in.Offset)
	}

	panic(fmt.Sprintf("codegen: unknown instruction %T", in))
}
