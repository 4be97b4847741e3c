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
	"sort"

	"github.com/lassandro/mctrans/pkg/isa"
)

// Maps every address that is the target of a jump, branch or call to a
// symbolic name. Names are numbered in ascending address order.
type LabelTable struct {
	addrs []isa.Address
	names map[isa.Address]string
}

func FindLabels(program []isa.Instruction) *LabelTable {
	targets := make(map[isa.Address]struct{})

	for _, in := range program {
		if addr, ok := isa.Target(in); ok {
			targets[addr] = struct{}{}
		}
	}

	table := &LabelTable{
		addrs: make([]isa.Address, 0, len(targets)),
		names: make(map[isa.Address]string, len(targets)),
	}

	for addr := range targets {
		table.addrs = append(table.addrs, addr)
	}

	sort.Slice(table.addrs, func(i, j int) bool {
		return table.addrs[i] < table.addrs[j]
	})

	for i, addr := range table.addrs {
		table.names[addr] = fmt.Sprintf("%s%d", LABEL_PREFIX, i)
	}

	return table
}

func (lt *LabelTable) Len() int {
	return len(lt.addrs)
}

// Referenced addresses in ascending order
func (lt *LabelTable) Addrs() []isa.Address {
	return append([]isa.Address(nil), lt.addrs...)
}

func (lt *LabelTable) Lookup(addr isa.Address) (string, bool) {
	name, ok := lt.names[addr]
	return name, ok
}

// Name panics when addr was never referenced: the table is built from the same
// program it is used to lower, so a miss means the generator itself is broken.
func (lt *LabelTable) Name(addr isa.Address) string {
	name, ok := lt.names[addr]

	if !ok {
		panic(fmt.Sprintf("codegen: no label for target address %d", addr))
	}

	return name
}
