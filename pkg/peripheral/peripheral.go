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
	crand "crypto/rand"
	"encoding/binary"
	"math/rand/v2"
	"sync"
	"sync/atomic"
)

// The devices behind guest addresses 240-255. One value is shared by the
// executing program, which drives it through OnRead and OnWrite, and the
// display, which polls the screen, character and number slots.
type Peripherals struct {
	rngMu sync.Mutex
	rng   *rand.Rand

	// Working buffers, only visible to the guest
	pixelMu sync.Mutex
	pixels  PixelBuffer
	charMu  sync.Mutex
	chars   charBuffer

	screen     slot[PixelBuffer]
	charscreen slot[charBuffer]
	number     slot[NumberDisplay]

	controller atomic.Uint32
}

func New() *Peripherals {
	var seed [32]byte

	// crypto/rand.Read never fails on supported platforms
	_, _ = crand.Read(seed[:])

	return NewSeeded(seed)
}

func NewSeeded(seed [32]byte) *Peripherals {
	p := &Peripherals{rng: rand.New(rand.NewChaCha8(seed))}
	p.number.value.Signed = true

	return p
}

func (p *Peripherals) pixelCoords(mem Memory) (int, int) {
	x, _ := mem.Load(uintptr(DEV_PIXEL_X))
	y, _ := mem.Load(uintptr(DEV_PIXEL_Y))

	return int(x & COORD_MASK), int(y & COORD_MASK)
}

// Read trap, called before the guest consumes mem[addr]
func (p *Peripherals) OnRead(buf []byte, addr uintptr) {
	mem := Memory(buf)

	if addr >= uintptr(len(mem)) || addr < uintptr(MEMSPACE_DEVICES) {
		return
	}

	switch uint8(addr) {
	case DEV_LOAD_PIXEL:
		x, y := p.pixelCoords(mem)

		p.pixelMu.Lock()
		set := p.pixels[y][x]
		p.pixelMu.Unlock()

		if set {
			mem.Store(addr, 1)
		} else {
			mem.Store(addr, 0)
		}

	case DEV_RNG:
		p.rngMu.Lock()
		value := uint8(p.rng.Uint32())
		p.rngMu.Unlock()

		mem.Store(addr, value)

	case DEV_CONTROLLER:
		mem.Store(addr, p.Controller())
	}
}

// Write trap, called after the guest stored mem[addr]
func (p *Peripherals) OnWrite(buf []byte, addr uintptr) {
	mem := Memory(buf)

	if addr >= uintptr(len(mem)) || addr < uintptr(MEMSPACE_DEVICES) {
		return
	}

	value, _ := mem.Load(addr)

	switch uint8(addr) {
	case DEV_DRAW_PIXEL, DEV_CLEAR_PIXEL:
		x, y := p.pixelCoords(mem)

		p.pixelMu.Lock()
		p.pixels[y][x] = uint8(addr) == DEV_DRAW_PIXEL
		p.pixelMu.Unlock()

	case DEV_PUSH_SCREEN:
		p.pixelMu.Lock()
		pixels := p.pixels
		p.pixelMu.Unlock()

		p.screen.update(func(screen *PixelBuffer) { *screen = pixels })

	case DEV_CLEAR_SCREEN:
		p.pixelMu.Lock()
		p.pixels = PixelBuffer{}
		p.pixelMu.Unlock()

	case DEV_WRITE_CHAR:
		p.charMu.Lock()
		p.chars.push(value)
		p.charMu.Unlock()

	case DEV_PUSH_CHARS:
		p.charMu.Lock()
		chars := p.chars
		p.charMu.Unlock()

		p.charscreen.update(func(cb *charBuffer) { *cb = chars })

	case DEV_CLEAR_CHARS:
		p.charMu.Lock()
		p.chars = charBuffer{}
		p.charMu.Unlock()

	case DEV_SHOW_NUMBER:
		p.number.update(func(nd *NumberDisplay) {
			nd.Value = value
			nd.Visible = true
		})

	case DEV_CLEAR_NUMBER:
		p.number.update(func(nd *NumberDisplay) { nd.Visible = false })

	case DEV_SIGNED_MODE:
		p.number.update(func(nd *NumberDisplay) { nd.Signed = true })

	case DEV_UNSIGNED:
		p.number.update(func(nd *NumberDisplay) { nd.Signed = false })
	}
}

// Returns the last pushed screen and whether it changed since the previous
// poll. The dirty flag is cleared.
func (p *Peripherals) PollScreen() (PixelBuffer, bool) {
	return p.screen.poll()
}

// Returns the character display padded to CHAR_DISPLAY_WIDTH
func (p *Peripherals) PollCharacters() (string, bool) {
	chars, dirty := p.charscreen.poll()
	return chars.String(), dirty
}

func (p *Peripherals) PollNumber() (NumberDisplay, bool) {
	return p.number.poll()
}

func (p *Peripherals) Screen() PixelBuffer {
	return p.screen.peek()
}

func (p *Peripherals) Characters() string {
	chars := p.charscreen.peek()
	return chars.String()
}

func (p *Peripherals) Number() NumberDisplay {
	return p.number.peek()
}

func (p *Peripherals) SetController(bits uint8) {
	p.controller.Store(uint32(bits))
}

func (p *Peripherals) Controller() uint8 {
	return uint8(p.controller.Load())
}

// Expands a 64 bit seed for NewSeeded, for reproducible runs
func SeedFromUint64(v uint64) [32]byte {
	var seed [32]byte
	binary.LittleEndian.PutUint64(seed[:], v)
	return seed
}
