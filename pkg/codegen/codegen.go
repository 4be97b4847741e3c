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
	"io"
	"strings"

	"github.com/lassandro/mctrans/pkg/isa"
)

type Options struct {
	// Count every executed guest instruction into the counter argument
	Count bool
}

type Listing struct {
	Options   Options
	Labels    *LabelTable
	Fragments []Fragment

	// Labels whose address is at or past the end of the program. They are
	// placed on the epilogue, so control reaching them halts.
	Trailing []string
}

// Lowers a program to host code. Each instruction becomes one fragment, at the
// same index as its guest address.
func Lower(program []isa.Instruction, opts Options) *Listing {
	labels := FindLabels(program)

	listing := &Listing{
		Options:   opts,
		Labels:    labels,
		Fragments: make([]Fragment, len(program)),
	}

	for i, in := range program {
		addr := isa.Address(i)
		label, _ := labels.Lookup(addr)

		var code []string

		if opts.Count {
			code = append(code, fmt.Sprintf("lea %s, [%s + 1]", HOST_COUNT, HOST_COUNT))
		}

		listing.Fragments[i] = Fragment{
			Addr:  addr,
			Label: label,
			Guest: in,
			Code:  append(code, lowerInstruction(in, labels)...),
		}
	}

	for _, addr := range labels.Addrs() {
		if int(addr) >= len(program) {
			listing.Trailing = append(listing.Trailing, labels.Name(addr))
		}
	}

	return listing
}

func Generate(program []isa.Instruction, opts Options) string {
	return Lower(program, opts).String()
}

func (l *Listing) String() string {
	var sb strings.Builder

	writeLines(&sb, "", prologue())

	for _, fragment := range l.Fragments {
		if fragment.Label != "" {
			sb.WriteString(fragment.Label + ":\n")
		}

		fmt.Fprintf(&sb, "\t; %04d %s\n", fragment.Addr, fragment.Guest)
		writeLines(&sb, "\t", fragment.Code)
	}

	for _, label := range l.Trailing {
		sb.WriteString(label + ":\n")
	}

	sb.WriteString(LABEL_HALT + ":\n")
	writeLines(&sb, "\t", epilogue(l.Options))

	return sb.String()
}

func (l *Listing) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, l.String())
	return int64(n), err
}

func writeLines(sb *strings.Builder, indent string, lines []string) {
	for _, line := range lines {
		sb.WriteString(indent + line + "\n")
	}
}

// Saves the callee-saved registers, then moves the five arguments into their
// dedicated host registers. rsp is 16 byte aligned after the frame slot.
// The guest starts with its zero and carry flags clear.
func prologue() []string {
	return []string{
		"\tbits 64",
		"\tdefault rel",
		"\tsection .text",
		fmt.Sprintf("\tglobal %s:function", EntrySymbol),
		"",
		EntrySymbol + ":",
		"\tpush rbx",
		"\tpush rbp",
		"\tpush r12",
		"\tpush r13",
		"\tpush r14",
		"\tpush r15",
		"\tsub rsp, 8",
		fmt.Sprintf("\tmov %s, rsp", HOST_FRAME),
		fmt.Sprintf("\tmov [%s], r8", HOST_FRAME),
		fmt.Sprintf("\tmov %s, rdi", HOST_MEM),
		fmt.Sprintf("\tmov %s, rsi", HOST_REGS),
		fmt.Sprintf("\tmov %s, rdx", HOST_ONREAD),
		fmt.Sprintf("\tmov %s, rcx", HOST_ONWRITE),
		"\txor ebx, ebx",
		"\txor eax, eax",
		"\ttest rsp, rsp",
	}
}

// Restoring rsp from the frame drops any return addresses left by a halt
// inside a guest subroutine.
func epilogue(opts Options) []string {
	code := []string{fmt.Sprintf("mov rsp, %s", HOST_FRAME)}

	if opts.Count {
		code = append(code,
			fmt.Sprintf("mov rax, [%s]", HOST_FRAME),
			fmt.Sprintf("add [rax], %s", HOST_COUNT),
		)
	}

	return append(code,
		"add rsp, 8",
		"pop r15",
		"pop r14",
		"pop r13",
		"pop r12",
		"pop rbp",
		"pop rbx",
		"ret",
	)
}
