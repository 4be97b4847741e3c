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

package peripheral_test

import (
	"strings"
	"sync"
	"testing"

	"github.com/lassandro/mctrans/pkg/peripheral"
)

type bus struct {
	Memory [peripheral.MEMORY_SIZE]byte
	Dev    *peripheral.Peripherals
}

func newBus() *bus {
	return &bus{Dev: peripheral.NewSeeded(peripheral.SeedFromUint64(1))}
}

// Stores then traps, the way translated code does
func (b *bus) write(addr uint8, value uint8) {
	b.Memory[addr] = value
	b.Dev.OnWrite(b.Memory[:], uintptr(addr))
}

// Traps then loads, the way translated code does
func (b *bus) read(addr uint8) uint8 {
	b.Dev.OnRead(b.Memory[:], uintptr(addr))
	return b.Memory[addr]
}

func TestPixelReadBack(t *testing.T) {
	b := newBus()

	b.write(peripheral.DEV_PIXEL_X, 5)
	b.write(peripheral.DEV_PIXEL_Y, 3)
	b.write(peripheral.DEV_DRAW_PIXEL, 1)

	if have := b.read(peripheral.DEV_LOAD_PIXEL); have != 1 {
		t.Errorf("Pixel (5,3) mismatch\nwant:1\nhave:%d", have)
	}

	for _, coord := range [][2]uint8{{0, 0}, {3, 5}, {31, 31}, {6, 3}} {
		b.write(peripheral.DEV_PIXEL_X, coord[0])
		b.write(peripheral.DEV_PIXEL_Y, coord[1])

		if have := b.read(peripheral.DEV_LOAD_PIXEL); have != 0 {
			t.Errorf("Pixel %v mismatch\nwant:0\nhave:%d", coord, have)
		}
	}

	b.write(peripheral.DEV_PIXEL_X, 5)
	b.write(peripheral.DEV_PIXEL_Y, 3)
	b.write(peripheral.DEV_CLEAR_PIXEL, 1)

	if have := b.read(peripheral.DEV_LOAD_PIXEL); have != 0 {
		t.Errorf("Cleared pixel mismatch\nwant:0\nhave:%d", have)
	}
}

func TestPixelCoordinateMask(t *testing.T) {
	b := newBus()

	b.write(peripheral.DEV_PIXEL_X, 0b111_00101) // 5
	b.write(peripheral.DEV_PIXEL_Y, 0b010_00011) // 3
	b.write(peripheral.DEV_DRAW_PIXEL, 0)

	b.write(peripheral.DEV_PIXEL_X, 5)
	b.write(peripheral.DEV_PIXEL_Y, 3)

	if have := b.read(peripheral.DEV_LOAD_PIXEL); have != 1 {
		t.Errorf("Masked pixel mismatch\nwant:1\nhave:%d", have)
	}

	b.write(peripheral.DEV_PUSH_SCREEN, 0)

	if screen, _ := b.Dev.PollScreen(); !screen[3][5] {
		t.Errorf("Masked pixel missing from the screen buffer")
	}
}

func TestScreenPush(t *testing.T) {
	b := newBus()

	b.write(peripheral.DEV_PIXEL_X, 5)
	b.write(peripheral.DEV_PIXEL_Y, 3)
	b.write(peripheral.DEV_DRAW_PIXEL, 0)

	if _, dirty := b.Dev.PollScreen(); dirty {
		t.Errorf("Screen dirty before push")
	}

	b.write(peripheral.DEV_PUSH_SCREEN, 0)

	screen, dirty := b.Dev.PollScreen()

	if !dirty {
		t.Errorf("Screen not dirty after push")
	}

	for y := range screen {
		for x := range screen[y] {
			if want := x == 5 && y == 3; screen[y][x] != want {
				t.Errorf(
					"Screen pixel (%d,%d) mismatch\nwant:%t\nhave:%t",
					x, y, want, screen[y][x],
				)
			}
		}
	}

	if _, dirty := b.Dev.PollScreen(); dirty {
		t.Errorf("Screen still dirty after poll")
	}

	b.write(peripheral.DEV_CLEAR_SCREEN, 0)

	if !b.Dev.Screen()[3][5] {
		t.Errorf("Clearing the working buffer changed the visible screen")
	}

	b.write(peripheral.DEV_PUSH_SCREEN, 0)

	screen, dirty = b.Dev.PollScreen()

	if !dirty {
		t.Errorf("Screen not dirty after second push")
	}

	if screen != (peripheral.PixelBuffer{}) {
		t.Errorf("Screen not clear after clear and push")
	}
}

func TestCharacterDisplay(t *testing.T) {
	b := newBus()

	b.write(peripheral.DEV_WRITE_CHAR, 'H')
	b.write(peripheral.DEV_WRITE_CHAR, 'i')

	if _, dirty := b.Dev.PollCharacters(); dirty {
		t.Errorf("Character display dirty before push")
	}

	b.write(peripheral.DEV_PUSH_CHARS, 0)

	text, dirty := b.Dev.PollCharacters()
	want := "Hi" + strings.Repeat(" ", peripheral.CHAR_DISPLAY_WIDTH-2)

	if !dirty {
		t.Errorf("Character display not dirty after push")
	}

	if text != want {
		t.Errorf("Character display mismatch\nwant:%q\nhave:%q", want, text)
	}

	b.write(peripheral.DEV_CLEAR_CHARS, 0)
	b.write(peripheral.DEV_WRITE_CHAR, '!')

	if have := b.Dev.Characters(); have != want {
		t.Errorf("Staging buffer leaked before push\nwant:%q\nhave:%q", want, have)
	}

	b.write(peripheral.DEV_PUSH_CHARS, 0)

	want = "!" + strings.Repeat(" ", peripheral.CHAR_DISPLAY_WIDTH-1)
	if have, _ := b.Dev.PollCharacters(); have != want {
		t.Errorf("Character display mismatch\nwant:%q\nhave:%q", want, have)
	}
}

func TestCharacterOverflow(t *testing.T) {
	b := newBus()

	for i := 0; i < peripheral.CHAR_DISPLAY_WIDTH+5; i++ {
		b.write(peripheral.DEV_WRITE_CHAR, 'A'+uint8(i))
	}

	b.write(peripheral.DEV_PUSH_CHARS, 0)

	want := "ABCDEFGHIJKLMNOPQRST"
	if have, _ := b.Dev.PollCharacters(); have != want {
		t.Errorf("Character display mismatch\nwant:%q\nhave:%q", want, have)
	}
}

func TestNumberDisplay(t *testing.T) {
	b := newBus()

	b.write(peripheral.DEV_UNSIGNED, 0)
	b.write(peripheral.DEV_SHOW_NUMBER, 200)

	nd, dirty := b.Dev.PollNumber()

	if !dirty || nd.String() != "200" {
		t.Errorf("Unsigned display mismatch\nwant:200 true\nhave:%s %t", nd, dirty)
	}

	b.write(peripheral.DEV_SIGNED_MODE, 0)

	nd, dirty = b.Dev.PollNumber()

	if !dirty || nd.String() != "-56" {
		t.Errorf("Signed display mismatch\nwant:-56 true\nhave:%s %t", nd, dirty)
	}

	b.write(peripheral.DEV_CLEAR_NUMBER, 0)

	nd, dirty = b.Dev.PollNumber()

	if !dirty || nd.Visible || nd.String() != "" {
		t.Errorf("Hidden display mismatch\nwant:\"\" true\nhave:%q %t", nd, dirty)
	}

	if _, dirty := b.Dev.PollNumber(); dirty {
		t.Errorf("Number display still dirty after poll")
	}
}

func TestNumberDisplayDefaultsSigned(t *testing.T) {
	b := newBus()

	b.write(peripheral.DEV_SHOW_NUMBER, 255)

	if have := b.Dev.Number().String(); have != "-1" {
		t.Errorf("Default display mismatch\nwant:-1\nhave:%s", have)
	}
}

func TestRandom(t *testing.T) {
	b := newBus()
	repeats := 0

	prev := b.read(peripheral.DEV_RNG)
	for i := 0; i < 1000; i++ {
		next := b.read(peripheral.DEV_RNG)

		if next == prev {
			repeats++
		}

		prev = next
	}

	// Expected about 4 in 1000
	if repeats > 40 {
		t.Errorf("Random source repeated itself %d times in 1000 reads", repeats)
	}
}

func TestController(t *testing.T) {
	b := newBus()

	b.Dev.SetController(peripheral.BUTTON_A | peripheral.BUTTON_LEFT)

	if have := b.read(peripheral.DEV_CONTROLLER); have != 0b0010_0001 {
		t.Errorf("Controller mismatch\nwant:%08b\nhave:%08b", 0b0010_0001, have)
	}
}

func TestPlainMemory(t *testing.T) {
	b := newBus()

	for addr := 0; addr < int(peripheral.MEMSPACE_DEVICES); addr++ {
		b.Memory[addr] = uint8(addr)
		b.Dev.OnWrite(b.Memory[:], uintptr(addr))
		b.Dev.OnRead(b.Memory[:], uintptr(addr))

		if b.Memory[addr] != uint8(addr) {
			t.Fatalf("Trap changed plain memory at %d", addr)
		}
	}

	// Out of range addresses are ignored rather than faulting
	b.Dev.OnRead(b.Memory[:], 1000)
	b.Dev.OnWrite(b.Memory[:16], uintptr(peripheral.DEV_SHOW_NUMBER))

	if _, dirty := b.Dev.PollNumber(); dirty {
		t.Errorf("Out of range write reached the number display")
	}
}

// Every push carries a full frame that is either all set or all clear; a
// reader must never observe a mix or a dirty flag without its frame.
func TestScreenConsistency(t *testing.T) {
	dev := peripheral.New()

	var frames [2]peripheral.PixelBuffer
	for y := range frames[1] {
		for x := range frames[1][y] {
			frames[1][y][x] = true
		}
	}

	var wg sync.WaitGroup
	wg.Add(1)

	go func() {
		defer wg.Done()

		var mem [peripheral.MEMORY_SIZE]byte
		for i := 0; i < 2000; i++ {
			mem[peripheral.DEV_CLEAR_SCREEN] = 0
			dev.OnWrite(mem[:], uintptr(peripheral.DEV_CLEAR_SCREEN))

			if i%2 == 1 {
				for y := 0; y < peripheral.SCREEN_HEIGHT; y++ {
					for x := 0; x < peripheral.SCREEN_WIDTH; x++ {
						mem[peripheral.DEV_PIXEL_X] = uint8(x)
						mem[peripheral.DEV_PIXEL_Y] = uint8(y)
						dev.OnWrite(mem[:], uintptr(peripheral.DEV_DRAW_PIXEL))
					}
				}
			}

			dev.OnWrite(mem[:], uintptr(peripheral.DEV_PUSH_SCREEN))
		}
	}()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	for {
		select {
		case <-done:
			return
		default:
		}

		if screen, dirty := dev.PollScreen(); dirty {
			if screen != frames[0] && screen != frames[1] {
				t.Fatalf("Observed a torn screen frame")
			}
		}
	}
}
