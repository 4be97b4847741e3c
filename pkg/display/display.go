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

package display

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/lassandro/mctrans/pkg/peripheral"
)

var ErrQuit = errors.New("display closed")

const (
	TICK_INTERVAL = 50 * time.Millisecond

	// A terminal only reports key presses, so a button stays down for this
	// long after its last press
	BUTTON_HOLD = 150 * time.Millisecond

	KEY_ESC = 0x1B
)

// Layout relative to the origin, in character cells
const (
	FRAME_HEIGHT = peripheral.SCREEN_HEIGHT + 2
	SCREEN_COL   = 1
	SCREEN_ROW   = 1
	NUMBER_COL   = 2*peripheral.SCREEN_WIDTH + 6
	NUMBER_ROW   = 2
	TEXT_COL     = NUMBER_COL
	TEXT_ROW     = 8
)

var Keymap = map[byte]uint8{
	'a': peripheral.BUTTON_LEFT,
	's': peripheral.BUTTON_DOWN,
	'd': peripheral.BUTTON_RIGHT,
	'w': peripheral.BUTTON_UP,
	'j': peripheral.BUTTON_B,
	'k': peripheral.BUTTON_A,
	'q': peripheral.BUTTON_SELECT,
	'e': peripheral.BUTTON_START,
}

// Draws the peripherals of a running program in a terminal
type Terminal struct {
	Out     io.Writer
	Devices *peripheral.Peripherals

	// Top row of the drawing area, counted from 0
	Origin int

	pressed map[uint8]time.Time
}

func NewTerminal(out io.Writer, devices *peripheral.Peripherals) *Terminal {
	origin := 0

	if _, height, err := term.GetSize(int(os.Stdout.Fd())); err == nil && height > FRAME_HEIGHT {
		origin = height - FRAME_HEIGHT
	}

	return &Terminal{
		Out:     out,
		Devices: devices,
		Origin:  origin,
		pressed: make(map[uint8]time.Time),
	}
}

// Polls the peripherals and keys until ESC is pressed or ctx is done.
// Returns ErrQuit on ESC.
func (t *Terminal) Run(ctx context.Context, keys <-chan byte) error {
	ticker := time.NewTicker(TICK_INTERVAL)
	defer ticker.Stop()

	t.clear()
	defer t.restore()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case key := <-keys:
			if key == KEY_ESC {
				return ErrQuit
			}

			t.press(key, time.Now())

		case now := <-ticker.C:
			t.release(now)
			t.Refresh()
		}
	}
}

func (t *Terminal) press(key byte, now time.Time) {
	if button, ok := Keymap[key]; ok {
		if t.pressed == nil {
			t.pressed = make(map[uint8]time.Time)
		}

		t.pressed[button] = now
		t.updateController()
	}
}

func (t *Terminal) release(now time.Time) {
	for button, at := range t.pressed {
		if now.Sub(at) >= BUTTON_HOLD {
			delete(t.pressed, button)
		}
	}

	t.updateController()
}

func (t *Terminal) updateController() {
	var bits uint8

	for button := range t.pressed {
		bits |= button
	}

	t.Devices.SetController(bits)
}

// Redraws every display whose dirty flag is set, clearing the flags
func (t *Terminal) Refresh() {
	if nd, dirty := t.Devices.PollNumber(); dirty {
		DrawNumber(t.Out, t.Origin+NUMBER_ROW, NUMBER_COL, nd)
	}

	if text, dirty := t.Devices.PollCharacters(); dirty {
		DrawText(t.Out, t.Origin+TEXT_ROW, TEXT_COL, text)
	}

	if screen, dirty := t.Devices.PollScreen(); dirty {
		DrawScreen(t.Out, t.Origin+SCREEN_ROW, SCREEN_COL, &screen)
	}
}

func (t *Terminal) clear() {
	fmt.Fprintf(t.Out, "\033[?25l%s\033[J", moveTo(t.Origin, 0))
}

func (t *Terminal) restore() {
	fmt.Fprintf(t.Out, "\033[0m\033[?25h%s\033[J", moveTo(t.Origin, 0))
}

// Zero based row and column to a cursor position sequence
func moveTo(row, col int) string {
	return fmt.Sprintf("\033[%d;%dH", row+1, col+1)
}

// Row 0 of the pixel buffer is the bottom of the screen
func DrawScreen(w io.Writer, row, col int, screen *peripheral.PixelBuffer) {
	var sb strings.Builder

	for y := 0; y < peripheral.SCREEN_HEIGHT; y++ {
		sb.WriteString(moveTo(row+y, col))

		for _, set := range screen[peripheral.SCREEN_HEIGHT-1-y] {
			if set {
				sb.WriteString("\033[47m  ")
			} else {
				sb.WriteString("\033[100m  ")
			}
		}

		sb.WriteString("\033[0m")
	}

	io.WriteString(w, sb.String())
}

func DrawText(w io.Writer, row, col int, text string) {
	fmt.Fprintf(w, "%s%-*s", moveTo(row, col), peripheral.CHAR_DISPLAY_WIDTH, text)
}

// Three line digits, index by value
var digits = [10][3]string{
	{" _ ", "| |", "|_|"},
	{"   ", "  |", "  |"},
	{" _ ", " _|", "|_ "},
	{" _ ", " _|", " _|"},
	{"   ", "|_|", "  |"},
	{" _ ", "|_ ", " _|"},
	{" _ ", "|_ ", "|_|"},
	{" _ ", "  |", "  |"},
	{" _ ", "|_|", "|_|"},
	{" _ ", "|_|", " _|"},
}

// Renders a number display as three text lines: a sign column followed by
// three digits. A hidden display renders blank.
func RenderNumber(nd peripheral.NumberDisplay) [3]string {
	var lines [3]string

	if !nd.Visible {
		for i := range lines {
			lines[i] = strings.Repeat(" ", 1+3*4)
		}

		return lines
	}

	value := int(nd.Value)
	sign := " "

	if nd.Signed && int8(nd.Value) < 0 {
		value = -int(int8(nd.Value))
		sign = "-"
	}

	decimal := [3]int{value / 100, value / 10 % 10, value % 10}

	for i := range lines {
		if i == 1 {
			lines[i] = sign
		} else {
			lines[i] = " "
		}

		for _, d := range decimal {
			lines[i] += digits[d][i] + " "
		}
	}

	return lines
}

func DrawNumber(w io.Writer, row, col int, nd peripheral.NumberDisplay) {
	for i, line := range RenderNumber(nd) {
		fmt.Fprintf(w, "%s%s", moveTo(row+i, col), line)
	}
}
