// Package wire defines the canonical CBOR messages exchanged by the
// Ribbon server and its clients, plus the content hashing used by
// settlement receipts.
package wire

import (
	"crypto/sha256"
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/chazu/ribbon/vm"
)

// cborEncMode uses canonical mode so the same message always encodes
// to the same bytes.
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("wire: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// Marshal serializes a message to canonical CBOR bytes.
func Marshal(v any) ([]byte, error) {
	return cborEncMode.Marshal(v)
}

// Unmarshal deserializes CBOR bytes into a message.
func Unmarshal(data []byte, v any) error {
	return cbor.Unmarshal(data, v)
}

// HashProgram computes the SHA-256 content hash of raw program bytes.
// Receipts carry this rather than the program itself.
func HashProgram(raw []byte) [32]byte {
	return sha256.Sum256(raw)
}

// ---------------------------------------------------------------------------
// Program snapshots
// ---------------------------------------------------------------------------

// ImageInstruction is one encoded instruction in transit.
type ImageInstruction struct {
	Op  byte `cbor:"1,keyasint"`
	Arg int  `cbor:"2,keyasint,omitempty"`
}

// ProgramImage is an encoded program snapshot, as returned by the
// Program RPC so clients can inspect resolved jump targets.
type ProgramImage struct {
	Code      []ImageInstruction `cbor:"1,keyasint,omitempty"`
	HasOutput bool               `cbor:"2,keyasint"`
}

// ImageOf snapshots an encoded program.
func ImageOf(p *vm.Program) *ProgramImage {
	im := &ProgramImage{
		Code:      make([]ImageInstruction, len(p.Code)),
		HasOutput: p.HasOutput,
	}
	for i, inst := range p.Code {
		im.Code[i] = ImageInstruction{Op: byte(inst.Op), Arg: inst.Arg}
	}
	return im
}

// Program rebuilds the vm form of a snapshot.
func (im *ProgramImage) Program() *vm.Program {
	p := &vm.Program{
		Code:      make([]vm.Instruction, len(im.Code)),
		HasOutput: im.HasOutput,
	}
	for i, inst := range im.Code {
		p.Code[i] = vm.Instruction{Op: vm.Opcode(inst.Op), Arg: inst.Arg}
	}
	return p
}

// ---------------------------------------------------------------------------
// Receipts
// ---------------------------------------------------------------------------

// Receipt records one metered execution of an actor's program.
type Receipt struct {
	Actor       string   `cbor:"1,keyasint"`
	ProgramHash [32]byte `cbor:"2,keyasint"`
	Input       []byte   `cbor:"3,keyasint,omitempty"`
	Output      []byte   `cbor:"4,keyasint,omitempty"`
	FuelUsed    int      `cbor:"5,keyasint"`
	Accepted    bool     `cbor:"6,keyasint"`
}

// MarshalReceipt serializes a Receipt to CBOR bytes.
func MarshalReceipt(r *Receipt) ([]byte, error) {
	return cborEncMode.Marshal(r)
}

// UnmarshalReceipt deserializes a Receipt from CBOR bytes.
func UnmarshalReceipt(data []byte) (*Receipt, error) {
	var r Receipt
	if err := cbor.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("wire: unmarshal receipt: %w", err)
	}
	return &r, nil
}
