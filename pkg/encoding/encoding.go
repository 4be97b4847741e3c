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

package encoding

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const WordBits = 16

// Decodes a hexidecimal string in the formats: 0xFF, xFF
func DecodeHex(s string) (uint16, error) {
	if i := strings.IndexAny(s, "xX"); i == 0 {
		s = "0" + s
	} else if i == -1 || i != 1 {
		return 0, errors.New("Invalid hex string")
	}

	result, err := strconv.ParseUint(s, 0, 16)

	if err != nil {
		return 0, err
	}

	return uint16(result), nil
}

// Decodes a base-10 string in the formats: #123, 123
func DecodeInt(s string) (int16, error) {
	if i := strings.Index(s, "#"); i == 0 {
		s = s[1:]
	}

	result, err := strconv.ParseInt(s, 10, 16)

	if err != nil {
		return 0, err
	}

	return int16(result), nil
}

// Decodes one instruction word written as exactly 16 binary digits, most
// significant bit first
func DecodeBinary(s string) (uint16, error) {
	if len(s) != WordBits {
		return 0, fmt.Errorf("Invalid word length %d, want %d", len(s), WordBits)
	}

	result, err := strconv.ParseUint(s, 2, WordBits)

	if err != nil {
		return 0, err
	}

	return uint16(result), nil
}

// Reads a program in the binary instruction format, one word per line. The
// line order is the program address order; blank lines are skipped.
func ReadWords(reader io.Reader) ([]uint16, error) {
	var words []uint16

	scanner := bufio.NewScanner(reader)
	line := 0

	for scanner.Scan() {
		line++

		text := strings.TrimSpace(scanner.Text())

		if text == "" {
			continue
		}

		word, err := DecodeBinary(text)

		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		words = append(words, word)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return words, nil
}

// Returns the bits [start, end) of a word, counting from the most significant
// bit, shifted down to the low end of the result
func ReadBits(value uint16, start, end uint) uint16 {
	shifted := value >> (WordBits - end)
	mask := uint16(1)<<(end-start) - 1

	return shifted & mask
}

func SignExtend(value uint16, bitcount uint16) uint16 {
	if (value>>(bitcount-1))&0x1 == 1 {
		value |= (0xFFFF << bitcount)
	}

	return value
}
