package server

import (
	"context"
	"errors"
	"fmt"

	"connectrpc.com/connect"

	"github.com/chazu/ribbon/charm"
	"github.com/chazu/ribbon/settle"
	"github.com/chazu/ribbon/stash"
	"github.com/chazu/ribbon/vm"
	"github.com/chazu/ribbon/wire"
)

// Procedure paths for the TapeService handlers.
const (
	ExecuteProcedure = "/ribbon.v1.TapeService/Execute"
	PushProcedure    = "/ribbon.v1.TapeService/Push"
	PopProcedure     = "/ribbon.v1.TapeService/Pop"
	ProgramProcedure = "/ribbon.v1.TapeService/Program"
	RunProcedure     = "/ribbon.v1.TapeService/Run"
)

// TapeService implements the Connect handlers for program execution
// and the per-actor instruction stash.
type TapeService struct {
	stash   *stash.Store
	checker *settle.Checker
	worker  *Worker
	fuel    int
}

// NewTapeService creates a TapeService. fuel is the per-run execution
// budget applied to every server-side run.
func NewTapeService(st *stash.Store, checker *settle.Checker, fuel int) *TapeService {
	if fuel <= 0 {
		fuel = vm.DefaultFuel
	}
	return &TapeService{
		stash:   st,
		checker: checker,
		worker:  NewWorker(),
		fuel:    fuel,
	}
}

// Stop shuts down the service's execution worker.
func (s *TapeService) Stop() {
	s.worker.Stop()
}

// runError maps an engine failure to a Connect error code.
func runError(err error) *connect.Error {
	switch {
	case errors.Is(err, vm.ErrUnbalancedBrackets):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, vm.ErrFuelExhausted):
		return connect.NewError(connect.CodeResourceExhausted, err)
	case errors.Is(err, vm.ErrTapeOutOfBounds),
		errors.Is(err, vm.ErrOutputOverflow),
		errors.Is(err, vm.ErrInputExhausted):
		return connect.NewError(connect.CodeOutOfRange, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}

// ---------------------------------------------------------------------------
// Execute — run a caller-supplied program
// ---------------------------------------------------------------------------

type executeResult struct {
	output   []byte
	fuelUsed int
	err      error
}

// Execute compiles and runs the request's program against its input.
func (s *TapeService) Execute(
	ctx context.Context,
	req *connect.Request[wire.ExecuteRequest],
) (*connect.Response[wire.ExecuteResponse], error) {
	fuel := req.Msg.Fuel
	if fuel <= 0 || fuel > s.fuel {
		fuel = s.fuel
	}

	value, err := s.worker.Do(func() any {
		return s.execute(req.Msg.Program, req.Msg.Input, fuel)
	})
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	res := value.(*executeResult)
	if res.err != nil {
		return nil, runError(res.err)
	}
	return connect.NewResponse(&wire.ExecuteResponse{
		Output:   res.output,
		FuelUsed: res.fuelUsed,
	}), nil
}

func (s *TapeService) execute(program, input []byte, fuel int) *executeResult {
	p, err := vm.Encode(program)
	if err != nil {
		return &executeResult{err: err}
	}
	if !p.HasOutput {
		return &executeResult{output: []byte{}}
	}
	eng := vm.NewEngine(p, input, fuel)
	out, err := eng.Run()
	if err != nil {
		return &executeResult{err: err}
	}
	return &executeResult{output: out, fuelUsed: eng.FuelUsed()}
}

// ---------------------------------------------------------------------------
// Push / Pop / Program — the instruction stash
// ---------------------------------------------------------------------------

// Push maps the collectible attribute code to its instruction and
// appends it to the actor's tape.
func (s *TapeService) Push(
	ctx context.Context,
	req *connect.Request[wire.PushRequest],
) (*connect.Response[wire.PushResponse], error) {
	actor := req.Msg.Actor
	if actor == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("actor is required"))
	}

	inst, err := charm.Instruction(req.Msg.Code)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}

	value, err := s.worker.Do(func() any {
		n, err := s.stash.Push(actor, inst)
		if err != nil {
			return &stashResult{err: err}
		}
		return &stashResult{op: inst, length: n}
	})
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	res := value.(*stashResult)
	if res.err != nil {
		return nil, connect.NewError(connect.CodeInternal, res.err)
	}
	return connect.NewResponse(&wire.PushResponse{
		Instruction: res.op,
		Length:      res.length,
	}), nil
}

type stashResult struct {
	op     byte
	length int
	err    error
}

// Pop removes the actor's most recently pushed instruction.
func (s *TapeService) Pop(
	ctx context.Context,
	req *connect.Request[wire.PopRequest],
) (*connect.Response[wire.PopResponse], error) {
	actor := req.Msg.Actor
	if actor == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("actor is required"))
	}

	value, err := s.worker.Do(func() any {
		op, n, err := s.stash.Pop(actor)
		if err != nil {
			return &stashResult{err: err}
		}
		return &stashResult{op: op, length: n}
	})
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	res := value.(*stashResult)
	if res.err != nil {
		if errors.Is(res.err, stash.ErrEmptyTape) {
			return nil, connect.NewError(connect.CodeFailedPrecondition, res.err)
		}
		return nil, connect.NewError(connect.CodeInternal, res.err)
	}
	return connect.NewResponse(&wire.PopResponse{
		Instruction: res.op,
		Length:      res.length,
	}), nil
}

// Program returns the actor's current tape, with an encoded snapshot
// when the tape's brackets are balanced.
func (s *TapeService) Program(
	ctx context.Context,
	req *connect.Request[wire.ProgramRequest],
) (*connect.Response[wire.ProgramResponse], error) {
	actor := req.Msg.Actor
	if actor == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("actor is required"))
	}

	tape, err := s.stash.Tape(actor)
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	resp := &wire.ProgramResponse{Tape: tape}
	if p, err := vm.Encode(tape); err == nil {
		resp.Image = wire.ImageOf(p)
	}
	return connect.NewResponse(resp), nil
}

// ---------------------------------------------------------------------------
// Run — execute an actor's tape and settle the result
// ---------------------------------------------------------------------------

type runOutcome struct {
	receipt *wire.Receipt
	err     error
}

// Run executes the actor's accumulated tape against the request input,
// settles the output, and returns a receipt. A failed run produces no
// receipt: the execution is atomic.
func (s *TapeService) Run(
	ctx context.Context,
	req *connect.Request[wire.RunRequest],
) (*connect.Response[wire.RunResponse], error) {
	actor := req.Msg.Actor
	if actor == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("actor is required"))
	}

	value, err := s.worker.Do(func() any {
		return s.runActor(actor, req.Msg.Input)
	})
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	out := value.(*runOutcome)
	if out.err != nil {
		return nil, runError(out.err)
	}
	return connect.NewResponse(&wire.RunResponse{Receipt: *out.receipt}), nil
}

func (s *TapeService) runActor(actor string, input []byte) *runOutcome {
	tape, err := s.stash.Tape(actor)
	if err != nil {
		return &runOutcome{err: err}
	}
	p, err := vm.Encode(tape)
	if err != nil {
		return &runOutcome{err: err}
	}

	rec := &wire.Receipt{
		Actor:       actor,
		ProgramHash: wire.HashProgram(tape),
		Input:       input,
	}
	if p.HasOutput {
		eng := vm.NewEngine(p, input, s.fuel)
		out, err := eng.Run()
		if err != nil {
			return &runOutcome{err: err}
		}
		rec.Output = out
		rec.FuelUsed = eng.FuelUsed()
	} else {
		rec.Output = []byte{}
	}

	accepted, err := s.checker.Settle(actor, rec.Output)
	if err != nil {
		return &runOutcome{err: err}
	}
	rec.Accepted = accepted
	if accepted {
		log.Infof("actor %s settled: output hash matched, reward released", actor)
	}
	return &runOutcome{receipt: rec}
}
