// Package vm implements the Ribbon virtual machine.
//
// This package contains:
//   - the eight-instruction opcode set and its metadata
//   - the program encoder (run-length merging, jump resolution)
//   - the fuel-metered execution engine
package vm
