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

const MEMORY_SIZE = 256

// Addresses below MEMSPACE_DEVICES are plain memory
const MEMSPACE_DEVICES uint8 = 240

const (
	DEV_PIXEL_X      uint8 = 240 // latch, low 5 bits
	DEV_PIXEL_Y      uint8 = 241 // latch, low 5 bits
	DEV_DRAW_PIXEL   uint8 = 242 // W
	DEV_CLEAR_PIXEL  uint8 = 243 // W
	DEV_LOAD_PIXEL   uint8 = 244 // R
	DEV_PUSH_SCREEN  uint8 = 245 // W
	DEV_CLEAR_SCREEN uint8 = 246 // W
	DEV_WRITE_CHAR   uint8 = 247 // W
	DEV_PUSH_CHARS   uint8 = 248 // W
	DEV_CLEAR_CHARS  uint8 = 249 // W
	DEV_SHOW_NUMBER  uint8 = 250 // W
	DEV_CLEAR_NUMBER uint8 = 251 // W
	DEV_SIGNED_MODE  uint8 = 252 // W
	DEV_UNSIGNED     uint8 = 253 // W
	DEV_RNG          uint8 = 254 // R
	DEV_CONTROLLER   uint8 = 255 // R
)

const (
	SCREEN_WIDTH       = 32
	SCREEN_HEIGHT      = 32
	COORD_MASK         = 0b11111
	CHAR_DISPLAY_WIDTH = 20
)

// Controller bits as read from DEV_CONTROLLER
const (
	BUTTON_LEFT   uint8 = 1 << 0
	BUTTON_DOWN   uint8 = 1 << 1
	BUTTON_RIGHT  uint8 = 1 << 2
	BUTTON_UP     uint8 = 1 << 3
	BUTTON_B      uint8 = 1 << 4
	BUTTON_A      uint8 = 1 << 5
	BUTTON_SELECT uint8 = 1 << 6
	BUTTON_START  uint8 = 1 << 7
)
