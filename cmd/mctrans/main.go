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
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lassandro/mctrans/pkg/codegen"
	"github.com/lassandro/mctrans/pkg/debugger"
	"github.com/lassandro/mctrans/pkg/display"
	"github.com/lassandro/mctrans/pkg/encoding"
	"github.com/lassandro/mctrans/pkg/isa"
	"github.com/lassandro/mctrans/pkg/machine"
	"github.com/lassandro/mctrans/pkg/peripheral"
	"github.com/lassandro/mctrans/pkg/toolchain"
)

var helpvar bool
var benchmarkvar bool
var headlessvar bool
var iterationsvar int
var frontendvar string
var nasmvar string
var ldvar string
var keepvar bool
var disvar bool
var asmvar string
var tracevar bool
var dumpvar bool
var watchvar watchFlags

const usage = "mctrans [flags] filename"

// Binary programs are read directly, anything else goes through the front end
const BINARY_EXT = ".mc"

// Polling interval of the key reader while stdin has nothing to offer
const KEY_POLL = 10 * time.Millisecond

func init() {
	exe, _ := os.Executable()
	log.SetFlags(0)
	log.SetPrefix(fmt.Sprintf("%s: ", filepath.Base(exe)))
	log.SetOutput(os.Stderr)
}

func init() {
	tc := toolchain.Default()

	flag.BoolVar(&helpvar, "help", false, "Displays command usage")
	flag.BoolVar(&benchmarkvar, "benchmark", false, "Counts executed instructions and reports timing")
	flag.BoolVar(&headlessvar, "headless", false, "Runs without the terminal display")
	flag.IntVar(&iterationsvar, "iterations", 1, "Number of runs in benchmark mode")
	flag.StringVar(&frontendvar, "frontend", strings.Join(tc.Frontend, " "), "Command assembling source into "+BINARY_EXT+" format")
	flag.StringVar(&nasmvar, "nasm", tc.Assembler, "Host assembler")
	flag.StringVar(&ldvar, "ld", tc.Linker, "Host linker")
	flag.BoolVar(&keepvar, "keep", false, "Keeps the build directory")
	flag.BoolVar(&disvar, "dis", false, "Prints the disassembled program and exits")
	flag.StringVar(&asmvar, "S", "", "Also writes the generated assembly to `file`")
	flag.BoolVar(&tracevar, "trace", false, "Logs every guest memory access")
	flag.Var(&watchvar, "watch", "Logs accesses to `addr[:r|w|rw]`, may be repeated")
	flag.BoolVar(&dumpvar, "dump", false, "Prints guest memory and access counts after the run")
}

func handleRead(addr uint8, dbg *debugger.Debugger, mc *machine.Machine) {
	log.Printf("read  %#02x = %#02x\n", addr, mc.State.Memory[addr])
}

func handleWrite(addr uint8, dbg *debugger.Debugger, mc *machine.Machine) {
	log.Printf("write %#02x = %#02x\n", addr, mc.State.Memory[addr])
}

// Reads the program words from path, assembling it first when needed
func loadProgram(ctx context.Context, tc *toolchain.Toolchain, path, dir string) ([]uint16, error) {
	if filepath.Ext(path) != BINARY_EXT {
		binary := filepath.Join(dir, "program"+BINARY_EXT)

		if err := tc.Assemble(ctx, path, binary); err != nil {
			return nil, err
		}

		path = binary
	}

	file, err := os.Open(path)

	if err != nil {
		return nil, &toolchain.StepError{Step: "read", Err: err}
	}

	defer file.Close()

	words, err := encoding.ReadWords(file)

	if err != nil {
		return nil, &toolchain.StepError{Step: "read", Err: fmt.Errorf("%s: %w", path, err)}
	}

	return words, nil
}

// Forwards stdin bytes until ctx is done. Stdin is expected in raw mode with
// non-blocking reads.
func readKeys(ctx context.Context, in io.Reader, keys chan<- byte) error {
	buf := make([]byte, 16)

	for {
		n, err := in.Read(buf)

		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}

		for _, key := range buf[:n] {
			select {
			case keys <- key:
			case <-ctx.Done():
				return nil
			}
		}

		if n == 0 {
			select {
			case <-time.After(KEY_POLL):
			case <-ctx.Done():
				return nil
			}
		}
	}
}

// Runs the machine while the terminal display draws its peripherals. Returns
// false when the display was closed before the program halted.
func runInteractive(ctx context.Context, mc *machine.Machine, iterations int) (machine.Stats, bool, error) {
	var stats machine.Stats
	done := make(chan struct{})

	// A guest program cannot be interrupted, so it stays outside the group
	go func() {
		stats = mc.Run(iterations)
		close(done)
	}()

	if err := enterRawTerm(); err != nil {
		return machine.Stats{}, false, err
	}

	defer exitRawTerm()

	keys := make(chan byte)
	group, gctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		return readKeys(gctx, os.Stdin, keys)
	})

	group.Go(func() error {
		return display.NewTerminal(os.Stdout, mc.Devices).Run(gctx, keys)
	})

	err := group.Wait()

	if errors.Is(err, display.ErrQuit) || errors.Is(err, context.Canceled) {
		err = nil
	}

	select {
	case <-done:
		return stats, true, err
	default:
		return machine.Stats{}, false, err
	}
}

func mctrans() int {
	flag.Parse()

	if helpvar {
		fmt.Println(usage)
		flag.PrintDefaults()
		return 0
	}

	args := flag.Args()

	if len(args) != 1 {
		log.Println(usage)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	tc := &toolchain.Toolchain{
		Frontend:  strings.Fields(frontendvar),
		Assembler: nasmvar,
		Linker:    ldvar,
		Stdout:    os.Stderr,
		Stderr:    os.Stderr,
	}

	dir, err := os.MkdirTemp("", "mctrans-")

	if err != nil {
		log.Println(err)
		return 1
	}

	if keepvar {
		log.Println("Build directory", dir)
	} else {
		defer os.RemoveAll(dir)
	}

	words, err := loadProgram(ctx, tc, args[0], dir)

	if err != nil {
		log.Println(err)
		return 1
	}

	program := isa.Disassemble(words)

	if disvar {
		for addr, in := range program {
			fmt.Printf("%04d  %04x  %s\n", addr, words[addr], in)
		}

		return 0
	}

	source := codegen.Generate(program, codegen.Options{Count: benchmarkvar})

	if asmvar != "" {
		if err := os.WriteFile(asmvar, []byte(source), 0644); err != nil {
			log.Println(err)
			return 1
		}
	}

	lib, err := tc.Build(ctx, source, dir)

	if err != nil {
		log.Println(err)
		return 1
	}

	module, err := machine.Open(lib)

	if err != nil {
		log.Println(err)
		return 1
	}

	defer module.Close()

	iterations := 1

	if benchmarkvar {
		iterations = iterationsvar
	}

	var mc machine.Machine
	mc.Devices = peripheral.New()
	mc.Module = module

	var dbg *debugger.Debugger

	if tracevar || len(watchvar) > 0 || dumpvar {
		dbg = &debugger.Debugger{Trace: tracevar}

		if tracevar || len(watchvar) > 0 {
			dbg.HandleRead = handleRead
			dbg.HandleWrite = handleWrite
		}

		for _, watchpoint := range watchvar {
			dbg.Watch(watchpoint.Addr, watchpoint.Type)
		}

		mc.Debugger = dbg
	}

	var stats machine.Stats

	if headlessvar {
		stats = mc.Run(iterations)
	} else {
		var halted bool
		stats, halted, err = runInteractive(ctx, &mc, iterations)

		if err != nil {
			log.Println(err)
			return 1
		}

		if !halted {
			log.Println("Program closed before halting")
			return 1
		}
	}

	if benchmarkvar {
		fmt.Println(stats)
	}

	if dbg != nil && dumpvar {
		debugger.PrintMem(os.Stdout, &mc.State, 0, peripheral.MEMORY_SIZE)
		dbg.PrintCounts(os.Stdout)
	}

	return 0
}

func main() {
	os.Exit(mctrans())
}
