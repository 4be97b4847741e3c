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

package main

import (
	"fmt"
	"strings"

	"github.com/lassandro/mctrans/pkg/debugger"
	"github.com/lassandro/mctrans/pkg/encoding"
)

// Collects repeated -watch flags of the form addr[:r|w|rw]. The address is
// hex (0xF4, xF4) or decimal (244, #244).
type watchFlags []debugger.Watchpoint

func (wf *watchFlags) String() string {
	var parts []string

	for _, watchpoint := range *wf {
		parts = append(parts, fmt.Sprintf("%#02x:%s", watchpoint.Addr, watchpoint.Type))
	}

	return strings.Join(parts, ",")
}

func (wf *watchFlags) Set(value string) error {
	addrstr, typestr, _ := strings.Cut(value, ":")

	addr, err := decodeAddr(addrstr)

	if err != nil {
		return err
	}

	var wtype debugger.WatchpointType

	switch strings.ToLower(typestr) {
	case "r", "read":
		wtype = debugger.ReadWatch
	case "w", "write":
		wtype = debugger.WriteWatch
	case "", "rw", "readwrite":
		wtype = debugger.ReadWriteWatch
	default:
		return fmt.Errorf("'%s' is not a watch type, want r, w or rw", typestr)
	}

	*wf = append(*wf, debugger.Watchpoint{Addr: addr, Type: wtype})
	return nil
}

func decodeAddr(s string) (uint8, error) {
	var value int

	if strings.ContainsAny(s, "xX") {
		hex, err := encoding.DecodeHex(s)

		if err != nil {
			return 0, err
		}

		value = int(hex)
	} else {
		dec, err := encoding.DecodeInt(s)

		if err != nil {
			return 0, err
		}

		value = int(dec)
	}

	if value < 0 || value > 0xFF {
		return 0, fmt.Errorf("Address %d out of range", value)
	}

	return uint8(value), nil
}
