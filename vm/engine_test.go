package vm

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func run(t *testing.T, src string, input []byte) []byte {
	t.Helper()
	p, err := Encode([]byte(src))
	if err != nil {
		t.Fatalf("Encode(%q): %v", src, err)
	}
	out, err := NewEngine(p, input, DefaultFuel).Run()
	if err != nil {
		t.Fatalf("Run(%q): %v", src, err)
	}
	return out
}

// ---------------------------------------------------------------------------
// Arithmetic and movement
// ---------------------------------------------------------------------------

func TestRun_MinimalProgram(t *testing.T) {
	out := run(t, "++.", nil)
	if !bytes.Equal(out, []byte{0x02}) {
		t.Errorf("output = %#v, want [0x02]", out)
	}
}

func TestRun_IncrementWrapsAt256(t *testing.T) {
	out := run(t, strings.Repeat("+", 256)+".", nil)
	if !bytes.Equal(out, []byte{0x00}) {
		t.Errorf("output = %#v, want [0x00]", out)
	}
}

func TestRun_DecrementWrapsToFF(t *testing.T) {
	out := run(t, "-.", nil)
	if !bytes.Equal(out, []byte{0xFF}) {
		t.Errorf("output = %#v, want [0xFF]", out)
	}
}

func TestRun_StagingRegisterFlushesOnMove(t *testing.T) {
	// Write 1 into cell 1, come back, print the untouched cell 0,
	// then go read cell 1 back.
	out := run(t, ">+<.>.", nil)
	if !bytes.Equal(out, []byte{0x00, 0x01}) {
		t.Errorf("output = %#v, want [0x00 0x01]", out)
	}
}

func TestRun_LoopCountdown(t *testing.T) {
	// Prints then decrements until the cell reaches zero.
	out := run(t, ",[.-]", []byte{0x03})
	if !bytes.Equal(out, []byte{0x03, 0x02, 0x01}) {
		t.Errorf("output = %#v, want [0x03 0x02 0x01]", out)
	}
}

func TestRun_SkippedLoopBody(t *testing.T) {
	// Cell is zero at the OPEN, so the body never executes.
	out := run(t, "[+++.].", nil)
	if !bytes.Equal(out, []byte{0x00}) {
		t.Errorf("output = %#v, want [0x00]", out)
	}
}

func TestRun_MergedReadKeepsLastByte(t *testing.T) {
	// Two merged reads consume two input bytes; only the second lands.
	out := run(t, ",,.", []byte{0x41, 0x42})
	if !bytes.Equal(out, []byte{0x42}) {
		t.Errorf("output = %#v, want [0x42]", out)
	}
}

func TestRun_OutputRepeatCount(t *testing.T) {
	out := run(t, "+...", nil)
	if !bytes.Equal(out, []byte{0x01, 0x01, 0x01}) {
		t.Errorf("output = %#v, want three 0x01 bytes", out)
	}
}

// ---------------------------------------------------------------------------
// Bounds and fuel
// ---------------------------------------------------------------------------

func runErr(t *testing.T, src string, input []byte, fuel int) error {
	t.Helper()
	p, err := Encode([]byte(src))
	if err != nil {
		t.Fatalf("Encode(%q): %v", src, err)
	}
	out, err := NewEngine(p, input, fuel).Run()
	if err == nil {
		t.Fatalf("Run(%q) succeeded, wanted failure", src)
	}
	if out != nil {
		t.Errorf("Run(%q) returned partial output %#v on failure", src, out)
	}
	return err
}

func TestRun_TapePointerUnderflow(t *testing.T) {
	err := runErr(t, "<.", nil, DefaultFuel)
	if !errors.Is(err, ErrTapeOutOfBounds) {
		t.Errorf("err = %v, want ErrTapeOutOfBounds", err)
	}
}

func TestRun_TapePointerOverflow(t *testing.T) {
	err := runErr(t, strings.Repeat(">", TapeSize)+".", nil, DefaultFuel)
	if !errors.Is(err, ErrTapeOutOfBounds) {
		t.Errorf("err = %v, want ErrTapeOutOfBounds", err)
	}
}

func TestRun_PointerMayTouchLastCell(t *testing.T) {
	out := run(t, strings.Repeat(">", TapeSize-1)+"+.", nil)
	if !bytes.Equal(out, []byte{0x01}) {
		t.Errorf("output = %#v, want [0x01]", out)
	}
}

func TestRun_OutputOverflow(t *testing.T) {
	err := runErr(t, strings.Repeat(".", MaxOutput+1), nil, DefaultFuel)
	if !errors.Is(err, ErrOutputOverflow) {
		t.Errorf("err = %v, want ErrOutputOverflow", err)
	}
}

func TestRun_OutputMayFillBuffer(t *testing.T) {
	out := run(t, strings.Repeat(".", MaxOutput), nil)
	if len(out) != MaxOutput {
		t.Errorf("output length = %d, want %d", len(out), MaxOutput)
	}
}

func TestRun_InputExhausted(t *testing.T) {
	err := runErr(t, ",.", nil, DefaultFuel)
	if !errors.Is(err, ErrInputExhausted) {
		t.Errorf("err = %v, want ErrInputExhausted", err)
	}
}

func TestRun_FuelExhausted(t *testing.T) {
	// +[] never terminates; the budget has to stop it, and the write
	// before the loop must not leak out.
	err := runErr(t, ".+[]", nil, 100)
	if !errors.Is(err, ErrFuelExhausted) {
		t.Errorf("err = %v, want ErrFuelExhausted", err)
	}
}

func TestRun_FuelAccounting(t *testing.T) {
	p, err := Encode([]byte("++."))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	e := NewEngine(p, nil, DefaultFuel)
	if _, err := e.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	// Two merged instructions dispatched: INC 2 and WRITE 1.
	if e.FuelUsed() != 2 {
		t.Errorf("FuelUsed = %d, want 2", e.FuelUsed())
	}
}

func TestRun_ExactFuelSucceeds(t *testing.T) {
	p, err := Encode([]byte("++."))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if _, err := NewEngine(p, nil, 2).Run(); err != nil {
		t.Errorf("Run with exact fuel: %v", err)
	}
	if _, err := NewEngine(p, nil, 1).Run(); !errors.Is(err, ErrFuelExhausted) {
		t.Errorf("Run with short fuel: err = %v, want ErrFuelExhausted", err)
	}
}
