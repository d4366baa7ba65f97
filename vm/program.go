package vm

import (
	"errors"
)

// ErrUnbalancedBrackets indicates a program whose loop brackets do not
// pair up. The encoder rejects these outright rather than guessing at
// a jump target.
var ErrUnbalancedBrackets = errors.New("vm: unbalanced brackets")

// ---------------------------------------------------------------------------
// Instruction and Program
// ---------------------------------------------------------------------------

// Instruction is one decoded operation.
//
// The meaning of Arg depends on the opcode:
//   - OpInc, OpDec, OpLeft, OpRight, OpWrite: repeat count (>= 1)
//   - OpRead: how far to advance the input cursor before reading
//   - OpOpen, OpClose: resolved jump target (an instruction index)
type Instruction struct {
	Op  Opcode
	Arg int
}

// Program is an encoded instruction sequence ready for execution.
// Insertion order is execution order. Merging and no-op elision mean
// len(Code) never exceeds the length of the raw source.
type Program struct {
	Code      []Instruction
	HasOutput bool // at least one WRITE instruction present
}

// Len returns the number of encoded instructions.
func (p *Program) Len() int {
	return len(p.Code)
}

// ---------------------------------------------------------------------------
// Encoder
// ---------------------------------------------------------------------------

// Encode compiles raw source bytes into a Program in a single
// left-to-right pass.
//
// Runs of the same instruction collapse into one Instruction carrying
// the run length; no-op bytes inside a run neither emit anything nor
// break the run. Loop brackets are matched through a balance stack and
// their jump targets resolved at encode time:
//
//   - an OPEN's Arg is the index just past its matching CLOSE
//   - a CLOSE's Arg is the index just past its matching OPEN
//
// so the engine never searches for a branch target at run time.
func Encode(raw []byte) (*Program, error) {
	code := make([]Instruction, 0, len(raw))
	var open []int // pending OPEN instruction indices
	hasOutput := false

	for i := 0; i < len(raw); {
		op := Opcode(raw[i])
		if !op.Valid() {
			i++
			continue
		}

		switch op {
		case OpOpen:
			open = append(open, len(code))
			code = append(code, Instruction{Op: OpOpen}) // target patched at CLOSE
			i++

		case OpClose:
			if len(open) == 0 {
				return nil, ErrUnbalancedBrackets
			}
			start := open[len(open)-1]
			open = open[:len(open)-1]
			// The CLOSE lands at len(code); its partner jumps just past it.
			code[start].Arg = len(code) + 1
			code = append(code, Instruction{Op: OpClose, Arg: start + 1})
			i++

		default:
			// Run-length scan: same instruction extends the run, no-ops
			// are skipped without breaking it, any other instruction
			// byte (or end of input) ends it.
			n := 1
			i++
			for i < len(raw) {
				next := Opcode(raw[i])
				if next == op {
					n++
					i++
					continue
				}
				if !next.Valid() {
					i++
					continue
				}
				break
			}
			if op == OpWrite {
				hasOutput = true
			}
			code = append(code, Instruction{Op: op, Arg: n})
		}
	}

	if len(open) != 0 {
		return nil, ErrUnbalancedBrackets
	}
	return &Program{Code: code, HasOutput: hasOutput}, nil
}
