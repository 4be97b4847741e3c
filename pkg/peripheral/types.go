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

package peripheral

import (
	"strconv"
	"strings"
	"sync"
)

// Indexed [y][x]; y = 0 is the bottom row
type PixelBuffer [SCREEN_HEIGHT][SCREEN_WIDTH]bool

type NumberDisplay struct {
	Value   uint8
	Visible bool
	Signed  bool
}

func (nd NumberDisplay) String() string {
	if !nd.Visible {
		return ""
	}

	if nd.Signed {
		return strconv.Itoa(int(int8(nd.Value)))
	}

	return strconv.Itoa(int(nd.Value))
}

// Guest memory as seen by the traps. Every access is bounds checked so a
// stray address from translated code cannot reach past the buffer.
type Memory []byte

func (m Memory) Load(addr uintptr) (uint8, bool) {
	if addr >= uintptr(len(m)) {
		return 0, false
	}

	return m[addr], true
}

func (m Memory) Store(addr uintptr, value uint8) bool {
	if addr >= uintptr(len(m)) {
		return false
	}

	m[addr] = value
	return true
}

// A consumer visible value and its dirty flag, guarded together so a reader
// never sees one without the other
type slot[T any] struct {
	mu    sync.Mutex
	value T
	dirty bool
}

func (s *slot[T]) update(fn func(*T)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fn(&s.value)
	s.dirty = true
}

func (s *slot[T]) poll() (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	value, dirty := s.value, s.dirty
	s.dirty = false

	return value, dirty
}

func (s *slot[T]) peek() T {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.value
}

type charBuffer struct {
	data [CHAR_DISPLAY_WIDTH]byte
	size int
}

func (cb *charBuffer) push(c byte) {
	if cb.size < len(cb.data) {
		cb.data[cb.size] = c
		cb.size++
	}
}

func (cb *charBuffer) String() string {
	return string(cb.data[:cb.size]) +
		strings.Repeat(" ", len(cb.data)-cb.size)
}
