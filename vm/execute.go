package vm

// DefaultFuel is the execution budget used when the caller does not
// supply one. Generous for programs that terminate, cheap to exhaust
// for ones that don't.
const DefaultFuel = 65536

// Execute compiles raw source bytes and runs them against the input,
// returning the output bytes.
//
// A program that contains no WRITE instruction cannot produce output,
// so the engine is skipped entirely and an empty (non-nil) output is
// returned. This is observably identical to running such a program to
// completion.
func Execute(raw, input []byte, fuel int) ([]byte, error) {
	p, err := Encode(raw)
	if err != nil {
		return nil, err
	}
	if !p.HasOutput {
		return []byte{}, nil
	}
	return NewEngine(p, input, fuel).Run()
}
