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

// Symbol the harness resolves in the linked module. Its System V signature is
//
//	void microcode_main(uint8_t *mem, uint8_t *regs,
//	                    void (*on_read)(uint8_t *, size_t),
//	                    void (*on_write)(uint8_t *, size_t),
//	                    uint64_t *counter);
const EntrySymbol = "microcode_main"

// Host register assignment for the lifetime of the entry point. All of these
// are callee-saved so they survive the trap calls.
const (
	HOST_MEM     = "r12" // guest memory base
	HOST_REGS    = "r13" // register file base
	HOST_ONREAD  = "r14" // read trap
	HOST_ONWRITE = "r15" // write trap
	HOST_COUNT   = "rbx" // executed instruction count
	HOST_FRAME   = "rbp" // entry frame, [rbp] holds the counter pointer
)

// Guest register 0 always reads as zero. Writes to it land in this dedicated
// byte register and are never read back.
const HOST_ZERO_SINK = "al"

const (
	LABEL_PREFIX = "label_"
	LABEL_HALT   = "guest_halt"
)
