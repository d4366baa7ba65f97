package vm

import (
	"fmt"
)

// ---------------------------------------------------------------------------
// Opcode definitions
// ---------------------------------------------------------------------------

// Opcode is one of the eight tape machine instructions. Each opcode's
// numeric value is its source byte, so classifying a raw program byte
// is a conversion plus a table lookup. Every other byte value is a
// no-op in source programs.
type Opcode byte

const (
	OpInc   Opcode = '+' // add to the current cell
	OpRead  Opcode = ',' // read an input byte into the current cell
	OpDec   Opcode = '-' // subtract from the current cell
	OpWrite Opcode = '.' // append the current cell to the output
	OpLeft  Opcode = '<' // move the tape pointer left
	OpRight Opcode = '>' // move the tape pointer right
	OpOpen  Opcode = '[' // jump past the matching ] when the cell is zero
	OpClose Opcode = ']' // jump back into the loop while the cell is non-zero
)

// ---------------------------------------------------------------------------
// Opcode metadata
// ---------------------------------------------------------------------------

// OpcodeInfo holds metadata about an opcode.
type OpcodeInfo struct {
	Name   string // human-readable name
	Merges bool   // consecutive occurrences merge into a single run
}

// opcodeTable maps opcodes to their metadata. Brackets never merge:
// each one is a distinct jump site.
var opcodeTable = map[Opcode]OpcodeInfo{
	OpInc:   {"INC", true},
	OpRead:  {"READ", true},
	OpDec:   {"DEC", true},
	OpWrite: {"WRITE", true},
	OpLeft:  {"LEFT", true},
	OpRight: {"RIGHT", true},
	OpOpen:  {"OPEN", false},
	OpClose: {"CLOSE", false},
}

// Valid reports whether the byte is one of the eight instruction bytes.
func (op Opcode) Valid() bool {
	_, ok := opcodeTable[op]
	return ok
}

// Info returns the metadata for an opcode.
func (op Opcode) Info() OpcodeInfo {
	if info, ok := opcodeTable[op]; ok {
		return info
	}
	return OpcodeInfo{Name: fmt.Sprintf("UNKNOWN_%02X", byte(op))}
}

// Name returns the human-readable name for an opcode.
func (op Opcode) Name() string {
	return op.Info().Name
}

// String implements the Stringer interface.
func (op Opcode) String() string {
	return op.Name()
}
