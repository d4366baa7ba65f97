package vm

import (
	"errors"
)

// ---------------------------------------------------------------------------
// Limits and failure modes
// ---------------------------------------------------------------------------

const (
	// TapeSize is the number of byte cells on the memory tape.
	TapeSize = 1024
	// MaxOutput bounds the output buffer.
	MaxOutput = 1024
)

var (
	// ErrTapeOutOfBounds indicates a pointer move outside [0, TapeSize).
	ErrTapeOutOfBounds = errors.New("vm: tape pointer out of bounds")
	// ErrOutputOverflow indicates a write past the MaxOutput bound.
	ErrOutputOverflow = errors.New("vm: output buffer overflow")
	// ErrInputExhausted indicates a read past the end of the input.
	ErrInputExhausted = errors.New("vm: read past end of input")
	// ErrFuelExhausted indicates the execution budget ran out before the
	// program terminated.
	ErrFuelExhausted = errors.New("vm: fuel exhausted")
)

// ---------------------------------------------------------------------------
// Engine: encoded-program execution
// ---------------------------------------------------------------------------

// Engine interprets an encoded Program against a fresh tape. All state
// lives for a single Run call: the tape, the output buffer, and the
// cursor registers are allocated per engine and never shared.
//
// Loops make the instruction stream Turing-ish, so every dispatched
// instruction costs one unit of fuel; when the budget runs out the run
// aborts and the partial output is discarded. A failed run never
// returns bytes.
type Engine struct {
	code  []Instruction
	input []byte

	tape []byte
	out  []byte
	cell byte // staging register for the cell under the pointer
	pc   int  // program counter
	ptr  int  // tape pointer
	in   int  // input cursor (one past the last byte read)

	fuel int
	used int
}

// NewEngine creates an engine for one run of the given program.
func NewEngine(p *Program, input []byte, fuel int) *Engine {
	return &Engine{
		code:  p.Code,
		input: input,
		tape:  make([]byte, TapeSize),
		out:   make([]byte, 0, MaxOutput),
		fuel:  fuel,
	}
}

// FuelUsed returns how many instructions have been dispatched.
func (e *Engine) FuelUsed() int {
	return e.used
}

// Run executes the program to completion and returns the output bytes.
//
// Cell arithmetic wraps modulo 256. The tape pointer and the output
// buffer are bounds-checked: a program that strays returns an error
// with no partial output. The current cell lives in a staging register
// that is flushed to the tape exactly when the pointer moves.
func (e *Engine) Run() ([]byte, error) {
	for e.pc < len(e.code) {
		if e.used >= e.fuel {
			return nil, ErrFuelExhausted
		}
		e.used++

		inst := e.code[e.pc]
		switch inst.Op {
		case OpInc:
			e.cell += byte(inst.Arg)

		case OpDec:
			e.cell -= byte(inst.Arg)

		case OpRight:
			if err := e.move(inst.Arg); err != nil {
				return nil, err
			}

		case OpLeft:
			if err := e.move(-inst.Arg); err != nil {
				return nil, err
			}

		case OpRead:
			// Arg counts how many input positions the run consumed;
			// only the last one is kept, matching one-at-a-time reads.
			e.in += inst.Arg
			if e.in > len(e.input) {
				return nil, ErrInputExhausted
			}
			e.cell = e.input[e.in-1]
			e.tape[e.ptr] = e.cell

		case OpWrite:
			if len(e.out)+inst.Arg > MaxOutput {
				return nil, ErrOutputOverflow
			}
			for k := 0; k < inst.Arg; k++ {
				e.out = append(e.out, e.cell)
			}

		case OpOpen:
			if e.cell == 0 {
				e.pc = inst.Arg
				continue
			}

		case OpClose:
			if e.cell != 0 {
				e.pc = inst.Arg
				continue
			}
		}
		e.pc++
	}
	return e.out, nil
}

// move flushes the staging register, shifts the pointer, and reloads
// the register from the new cell.
func (e *Engine) move(delta int) error {
	e.tape[e.ptr] = e.cell
	e.ptr += delta
	if e.ptr < 0 || e.ptr >= TapeSize {
		return ErrTapeOutOfBounds
	}
	e.cell = e.tape[e.ptr]
	return nil
}
