// Package charm maps collectible attribute codes to tape machine
// instructions.
//
// Each collectible carries a 4-bit attribute code. Half of the code
// space encodes an instruction; the other half is inert. Inert codes
// are rejected here, before a byte ever reaches the stash or the VM.
package charm

import (
	"errors"
	"fmt"
)

// CodeSpace is the size of the attribute code space.
const CodeSpace = 16

// ErrInertCode indicates an attribute code outside the instruction half
// of the code space.
var ErrInertCode = errors.New("charm: attribute code has no instruction")

// codeTable maps a 4-bit attribute code to its instruction byte.
// Codes 8 through 15 are inert.
var codeTable = [CodeSpace]byte{
	0: '>',
	1: '<',
	2: '+',
	3: '-',
	4: '.',
	5: ',',
	6: '[',
	7: ']',
}

// Instruction returns the instruction byte for an attribute code.
func Instruction(code uint8) (byte, error) {
	if code >= CodeSpace || codeTable[code] == 0 {
		return 0, fmt.Errorf("%w: %#x", ErrInertCode, code)
	}
	return codeTable[code], nil
}
