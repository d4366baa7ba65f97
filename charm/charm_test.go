package charm

import (
	"errors"
	"testing"

	"github.com/chazu/ribbon/vm"
)

func TestInstruction_ValidCodes(t *testing.T) {
	tests := []struct {
		code uint8
		want byte
	}{
		{0, '>'},
		{1, '<'},
		{2, '+'},
		{3, '-'},
		{4, '.'},
		{5, ','},
		{6, '['},
		{7, ']'},
	}
	for _, tt := range tests {
		got, err := Instruction(tt.code)
		if err != nil {
			t.Fatalf("Instruction(%d): %v", tt.code, err)
		}
		if got != tt.want {
			t.Errorf("Instruction(%d) = %q, want %q", tt.code, got, tt.want)
		}
		if !vm.Opcode(got).Valid() {
			t.Errorf("Instruction(%d) = %q is not a VM instruction", tt.code, got)
		}
	}
}

func TestInstruction_InertCodes(t *testing.T) {
	for code := uint8(8); code < 32; code++ {
		if _, err := Instruction(code); !errors.Is(err, ErrInertCode) {
			t.Errorf("Instruction(%d): err = %v, want ErrInertCode", code, err)
		}
	}
}
