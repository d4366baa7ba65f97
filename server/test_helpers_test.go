package server

import (
	"context"
	"path/filepath"
	"testing"

	"connectrpc.com/connect"

	"github.com/chazu/ribbon/settle"
	"github.com/chazu/ribbon/stash"
)

func bg() context.Context {
	return context.Background()
}

func connectReq[T any](msg *T) *connect.Request[T] {
	return connect.NewRequest(msg)
}

// newTestService builds a TapeService over a throwaway stash. The
// returned reward pointer records the last rewarded actor.
func newTestService(t *testing.T, fuel int) (*TapeService, *string) {
	t.Helper()

	st, err := stash.Open(filepath.Join(t.TempDir(), "stash.db"))
	if err != nil {
		t.Fatalf("stash.Open: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	var rewarded string
	checker := settle.New(settle.DefaultTarget, func(actor string) error {
		rewarded = actor
		return nil
	})

	svc := NewTapeService(st, checker, fuel)
	t.Cleanup(svc.Stop)
	return svc, &rewarded
}

// pushAll pushes raw instruction bytes straight into the stash,
// bypassing the attribute-code mapping.
func pushAll(t *testing.T, svc *TapeService, actor, tape string) {
	t.Helper()
	for _, op := range []byte(tape) {
		if _, err := svc.stash.Push(actor, op); err != nil {
			t.Fatalf("Push(%q): %v", op, err)
		}
	}
}
