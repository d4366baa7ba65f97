package wire

// RPC request/response messages for the TapeService procedures. These
// travel as canonical CBOR through the Connect codec.

// ExecuteRequest runs a caller-supplied program.
type ExecuteRequest struct {
	Program []byte `cbor:"1,keyasint"`
	Input   []byte `cbor:"2,keyasint,omitempty"`
	Fuel    int    `cbor:"3,keyasint,omitempty"` // 0 means the server default
}

// ExecuteResponse carries the output of a completed run.
type ExecuteResponse struct {
	Output   []byte `cbor:"1,keyasint"`
	FuelUsed int    `cbor:"2,keyasint"`
}

// PushRequest appends the instruction for a collectible attribute code
// to an actor's tape.
type PushRequest struct {
	Actor string `cbor:"1,keyasint"`
	Code  uint8  `cbor:"2,keyasint"`
}

// PushResponse reports the instruction that was appended and the new
// tape length.
type PushResponse struct {
	Instruction byte `cbor:"1,keyasint"`
	Length      int  `cbor:"2,keyasint"`
}

// PopRequest removes the most recently pushed instruction.
type PopRequest struct {
	Actor string `cbor:"1,keyasint"`
}

// PopResponse reports the removed instruction and the remaining tape
// length.
type PopResponse struct {
	Instruction byte `cbor:"1,keyasint"`
	Length      int  `cbor:"2,keyasint"`
}

// ProgramRequest asks for an actor's current tape.
type ProgramRequest struct {
	Actor string `cbor:"1,keyasint"`
}

// ProgramResponse carries the raw tape and, when the tape is
// well-formed, its encoded snapshot.
type ProgramResponse struct {
	Tape  []byte        `cbor:"1,keyasint,omitempty"`
	Image *ProgramImage `cbor:"2,keyasint,omitempty"`
}

// RunRequest executes an actor's accumulated tape and settles the
// result.
type RunRequest struct {
	Actor string `cbor:"1,keyasint"`
	Input []byte `cbor:"2,keyasint,omitempty"`
}

// RunResponse carries the receipt for the run.
type RunResponse struct {
	Receipt Receipt `cbor:"1,keyasint"`
}
