package vm

import (
	"fmt"
	"strings"
)

// Disassemble returns a line-per-instruction listing of an encoded
// program. Jump instructions show their resolved target.
func Disassemble(p *Program) string {
	var b strings.Builder
	for i, inst := range p.Code {
		if i > 0 {
			b.WriteByte('\n')
		}
		switch inst.Op {
		case OpOpen, OpClose:
			fmt.Fprintf(&b, "%04d  %s (-> %04d)", i, inst.Op.Name(), inst.Arg)
		default:
			fmt.Fprintf(&b, "%04d  %s %d", i, inst.Op.Name(), inst.Arg)
		}
	}
	return b.String()
}
