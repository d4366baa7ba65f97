// Ribbon CLI - run tape machine programs or serve the stash API
package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"os"

	"github.com/tliron/commonlog"

	"github.com/chazu/ribbon/manifest"
	"github.com/chazu/ribbon/server"
	"github.com/chazu/ribbon/stash"
	"github.com/chazu/ribbon/vm"

	_ "github.com/tliron/commonlog/simple"
)

func main() {
	verbose := flag.Bool("v", false, "Verbose output")
	disasm := flag.Bool("d", false, "Disassemble the program instead of running it")
	input := flag.String("in", "", "Input bytes (literal)")
	hexInput := flag.String("hex-in", "", "Input bytes (hex)")
	fuel := flag.Int("fuel", 0, "Execution budget (default from ribbon.toml or built-in)")
	serveMode := flag.Bool("serve", false, "Start the stash/execution server")
	servePort := flag.Int("port", 0, "Server port (used with --serve, default from ribbon.toml)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: ribbon [options] [program-file]\n\n")
		fmt.Fprintf(os.Stderr, "Runs an eight-instruction tape machine program and prints its output.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  ribbon hi.rib                # Run hi.rib with empty input\n")
		fmt.Fprintf(os.Stderr, "  ribbon -in abc prog.rib      # Run with input bytes 'abc'\n")
		fmt.Fprintf(os.Stderr, "  ribbon -hex-in 03 prog.rib   # Run with input byte 0x03\n")
		fmt.Fprintf(os.Stderr, "  ribbon -d prog.rib           # Show the encoded instructions\n")
		fmt.Fprintf(os.Stderr, "  ribbon --serve               # Serve the stash API on the configured port\n")
	}
	flag.Parse()

	// Manifest is optional; built-in defaults apply without one.
	m, err := manifest.FindAndLoad(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading ribbon.toml: %v\n", err)
		os.Exit(1)
	}
	if m == nil {
		m = manifest.Default()
	}
	if *fuel > 0 {
		m.Engine.Fuel = *fuel
	}
	if *servePort > 0 {
		m.Server.Port = *servePort
	}

	if *serveMode {
		serve(m, *verbose)
		return
	}

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	raw, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading program: %v\n", err)
		os.Exit(1)
	}

	if *disasm {
		p, err := vm.Encode(raw)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding program: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(vm.Disassemble(p))
		return
	}

	in, err := inputBytes(*input, *hexInput)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	out, err := vm.Execute(raw, in, m.Engine.Fuel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	os.Stdout.Write(out)
	if *verbose {
		fmt.Fprintf(os.Stderr, "\n%d output bytes (%s)\n", len(out), hex.EncodeToString(out))
	}
}

// inputBytes resolves the two input flags; at most one may be set.
func inputBytes(literal, hexIn string) ([]byte, error) {
	if literal != "" && hexIn != "" {
		return nil, fmt.Errorf("use -in or -hex-in, not both")
	}
	if hexIn != "" {
		in, err := hex.DecodeString(hexIn)
		if err != nil {
			return nil, fmt.Errorf("bad -hex-in: %w", err)
		}
		return in, nil
	}
	return []byte(literal), nil
}

func serve(m *manifest.Manifest, verbose bool) {
	if verbose {
		commonlog.Configure(1, nil)
	} else {
		commonlog.Configure(0, nil)
	}
	log := commonlog.GetLogger("ribbon")

	target, err := m.TargetHash()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error in ribbon.toml: %v\n", err)
		os.Exit(1)
	}

	st, err := stash.Open(m.StashPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening stash: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	s := server.New(st, m.Engine.Fuel,
		server.WithTarget(target),
		server.WithReward(func(actor string) error {
			// Custody lives elsewhere; the server only announces.
			log.Noticef("reward released to %s", actor)
			return nil
		}))
	defer s.Stop()

	addr := fmt.Sprintf(":%d", m.Server.Port)
	if err := s.ListenAndServe(addr); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}
