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

package toolchain

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

const (
	SOURCE_NAME = "program.asm"
	OBJECT_NAME = "program.o"
	MODULE_NAME = "program.so"
)

// The external programs around the translator. Frontend turns assembly
// source into the binary instruction format; Assembler and Linker turn
// generated host assembly into a loadable module.
type Toolchain struct {
	Frontend  []string
	Assembler string
	Linker    string

	// Where subprocess output goes; discarded when nil
	Stdout io.Writer
	Stderr io.Writer
}

// Identifies the step of the pipeline that failed
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

func Default() *Toolchain {
	return &Toolchain{
		Frontend:  []string{"python", "assembler/main.py"},
		Assembler: "nasm",
		Linker:    "ld",
	}
}

func (tc *Toolchain) run(ctx context.Context, step string, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = tc.Stdout
	cmd.Stderr = tc.Stderr

	if err := cmd.Run(); err != nil {
		return &StepError{
			Step: step,
			Err:  fmt.Errorf("%s %s: %w", name, strings.Join(args, " "), err),
		}
	}

	return nil
}

// Runs the front end assembler as `Frontend... input output`
func (tc *Toolchain) Assemble(ctx context.Context, input, output string) error {
	if len(tc.Frontend) == 0 {
		return &StepError{Step: "frontend", Err: fmt.Errorf("no front end configured")}
	}

	args := append(append([]string(nil), tc.Frontend[1:]...), input, output)

	return tc.run(ctx, "frontend", tc.Frontend[0], args...)
}

// Assembles and links generated source in dir, returning the module path
func (tc *Toolchain) Build(ctx context.Context, source string, dir string) (string, error) {
	src := filepath.Join(dir, SOURCE_NAME)
	obj := filepath.Join(dir, OBJECT_NAME)
	lib := filepath.Join(dir, MODULE_NAME)

	if err := os.WriteFile(src, []byte(source), 0644); err != nil {
		return "", &StepError{Step: "write", Err: err}
	}

	if err := tc.run(
		ctx, "assemble", tc.Assembler, "-f", "elf64", "-O0", "-o", obj, src,
	); err != nil {
		return "", err
	}

	if err := tc.run(ctx, "link", tc.Linker, "-shared", "-o", lib, obj); err != nil {
		return "", err
	}

	return lib, nil
}
