package server

import (
	"bytes"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"connectrpc.com/connect"

	"github.com/chazu/ribbon/stash"
	"github.com/chazu/ribbon/wire"
)

// Full round trip: Connect client -> HTTP -> CBOR codec -> handler.
func TestServer_ExecuteOverHTTP(t *testing.T) {
	st, err := stash.Open(filepath.Join(t.TempDir(), "stash.db"))
	if err != nil {
		t.Fatalf("stash.Open: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	s := New(st, 0)
	t.Cleanup(s.Stop)

	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)

	client := connect.NewClient[wire.ExecuteRequest, wire.ExecuteResponse](
		ts.Client(), ts.URL+ExecuteProcedure, Codec())

	resp, err := client.CallUnary(bg(), connectReq(&wire.ExecuteRequest{
		Program: []byte(",[.-]"),
		Input:   []byte{0x02},
	}))
	if err != nil {
		t.Fatalf("CallUnary: %v", err)
	}
	if !bytes.Equal(resp.Msg.Output, []byte{0x02, 0x01}) {
		t.Errorf("Output = %#v, want [0x02 0x01]", resp.Msg.Output)
	}
}

func TestServer_PushThenRunOverHTTP(t *testing.T) {
	st, err := stash.Open(filepath.Join(t.TempDir(), "stash.db"))
	if err != nil {
		t.Fatalf("stash.Open: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	var rewarded string
	s := New(st, 0, WithReward(func(actor string) error {
		rewarded = actor
		return nil
	}))
	t.Cleanup(s.Stop)

	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)

	push := connect.NewClient[wire.PushRequest, wire.PushResponse](
		ts.Client(), ts.URL+PushProcedure, Codec())
	run := connect.NewClient[wire.RunRequest, wire.RunResponse](
		ts.Client(), ts.URL+RunProcedure, Codec())

	// Assemble ".": attribute code 4.
	if _, err := push.CallUnary(bg(), connectReq(&wire.PushRequest{Actor: "alice", Code: 4})); err != nil {
		t.Fatalf("Push: %v", err)
	}

	resp, err := run.CallUnary(bg(), connectReq(&wire.RunRequest{Actor: "alice"}))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !bytes.Equal(resp.Msg.Receipt.Output, []byte{0x00}) {
		t.Errorf("Output = %#v, want [0x00]", resp.Msg.Receipt.Output)
	}
	if resp.Msg.Receipt.Accepted || rewarded != "" {
		t.Error("a single zero byte should not settle")
	}
}

func TestServer_ErrorCodeCrossesTheWire(t *testing.T) {
	st, err := stash.Open(filepath.Join(t.TempDir(), "stash.db"))
	if err != nil {
		t.Fatalf("stash.Open: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	s := New(st, 0)
	t.Cleanup(s.Stop)

	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)

	client := connect.NewClient[wire.ExecuteRequest, wire.ExecuteResponse](
		ts.Client(), ts.URL+ExecuteProcedure, Codec())

	_, err = client.CallUnary(bg(), connectReq(&wire.ExecuteRequest{
		Program: []byte("[."),
	}))
	if connect.CodeOf(err) != connect.CodeInvalidArgument {
		t.Errorf("code = %v, want invalid_argument", connect.CodeOf(err))
	}
}
