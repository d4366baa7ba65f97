// Package server exposes the Ribbon VM and instruction stash over
// Connect RPC. Handlers speak canonical CBOR through a custom codec;
// executions are serialized through a single worker goroutine.
package server

import (
	"net/http"

	"connectrpc.com/connect"
	"github.com/tliron/commonlog"

	"github.com/chazu/ribbon/settle"
	"github.com/chazu/ribbon/stash"

	_ "github.com/tliron/commonlog/simple"
)

var log = commonlog.GetLogger("ribbon.server")

// Server wires the tape service handlers onto one HTTP mux.
type Server struct {
	svc *TapeService
	mux *http.ServeMux
}

// Option configures a Server.
type Option func(*serverConfig)

type serverConfig struct {
	target [32]byte
	reward settle.RewardFunc
}

// WithTarget overrides the settlement target hash.
func WithTarget(target [32]byte) Option {
	return func(c *serverConfig) { c.target = target }
}

// WithReward sets the reward release callback invoked when an actor's
// output matches the target. Without this, acceptance is recorded but
// nothing is released.
func WithReward(fn settle.RewardFunc) Option {
	return func(c *serverConfig) { c.reward = fn }
}

// New creates a Server over the given stash with the given per-run
// fuel budget.
func New(st *stash.Store, fuel int, opts ...Option) *Server {
	cfg := &serverConfig{target: settle.DefaultTarget}
	for _, opt := range opts {
		opt(cfg)
	}

	svc := NewTapeService(st, settle.New(cfg.target, cfg.reward), fuel)
	codec := connect.WithCodec(cborCodec{})

	mux := http.NewServeMux()
	mux.Handle(ExecuteProcedure, connect.NewUnaryHandler(ExecuteProcedure, svc.Execute, codec))
	mux.Handle(PushProcedure, connect.NewUnaryHandler(PushProcedure, svc.Push, codec))
	mux.Handle(PopProcedure, connect.NewUnaryHandler(PopProcedure, svc.Pop, codec))
	mux.Handle(ProgramProcedure, connect.NewUnaryHandler(ProgramProcedure, svc.Program, codec))
	mux.Handle(RunProcedure, connect.NewUnaryHandler(RunProcedure, svc.Run, codec))

	return &Server{svc: svc, mux: mux}
}

// Handler returns the HTTP handler serving all procedures.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// ListenAndServe starts the HTTP server on the given address.
// The address should be in the form "host:port" or ":port".
func (s *Server) ListenAndServe(addr string) error {
	log.Noticef("ribbon server listening on %s", addr)
	log.Infof("  Execute: http://%s%s", addr, ExecuteProcedure)
	log.Infof("  Run:     http://%s%s", addr, RunProcedure)
	return http.ListenAndServe(addr, s.mux)
}

// Stop shuts down the server's execution worker.
func (s *Server) Stop() {
	s.svc.Stop()
}

// Codec returns a connect option selecting the server's CBOR codec,
// for clients built with connect.NewClient.
func Codec() connect.ClientOption {
	return connect.WithCodec(cborCodec{})
}
