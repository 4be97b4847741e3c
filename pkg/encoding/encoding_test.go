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

package encoding_test

import (
	"reflect"
	"strings"
	"testing"

	"github.com/lassandro/mctrans/pkg/encoding"
)

func TestReadWords(t *testing.T) {
	input := "1000000100000101\r\n" +
		"\n" +
		"  0001000000000000  \n" +
		"1111111111111111"

	want := []uint16{0x8105, 0x1000, 0xFFFF}
	have, err := encoding.ReadWords(strings.NewReader(input))

	if err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(have, want) {
		t.Errorf("Word mismatch\nwant:%#04x\nhave:%#04x", want, have)
	}
}

func TestReadWordsFailure(t *testing.T) {
	tests := map[string]string{
		"Short line":    "101\n",
		"Long line":     "10000001000001011\n",
		"Bad digit":     "100000010000010x\n",
		"Later failure": "0000000000000000\n000000000000000\n",
	}

	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := encoding.ReadWords(strings.NewReader(input)); err == nil {
				t.Error("Expected error, have nil")
			}
		})
	}
}

func TestReadBits(t *testing.T) {
	tests := []struct {
		Value      uint16
		Start, End uint
		Want       uint16
	}{
		{0b1011_0000_0000_0000, 0, 4, 0b1011},
		{0b0000_1100_0000_0000, 4, 6, 0b11},
		{0b0000_0011_1111_1111, 6, 16, 0x3FF},
		{0b0000_0000_0000_1000, 12, 13, 1},
		{0xFFFF, 8, 16, 0xFF},
	}

	for _, test := range tests {
		if have := encoding.ReadBits(test.Value, test.Start, test.End); have != test.Want {
			t.Errorf(
				"Bits [%d,%d) of %016b\nwant:%b\nhave:%b",
				test.Start, test.End, test.Value, test.Want, have,
			)
		}
	}
}

func TestDecodeHex(t *testing.T) {
	for input, want := range map[string]uint16{"0xF4": 0xF4, "xff": 0xFF} {
		have, err := encoding.DecodeHex(input)

		if err != nil {
			t.Fatal(err)
		}

		if have != want {
			t.Errorf("Hex mismatch for %s\nwant:%#x\nhave:%#x", input, want, have)
		}
	}

	if _, err := encoding.DecodeHex("244"); err == nil {
		t.Error("Expected error for decimal input, have nil")
	}
}
