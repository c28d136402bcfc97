package ctp_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/maxatome/go-testdeep/td"

	ctp "github.com/Viatorus/compile-time-printer"
	"github.com/Viatorus/compile-time-printer/encio"
	"github.com/Viatorus/compile-time-printer/token"
	"github.com/Viatorus/compile-time-printer/wire"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	td.Require(t).CmpNoError(os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeFile(t, "ctp.yaml", "quiet: true\nmax_depth: 12\noutput: out.ctp\nchecksum: true\n")

	config, err := ctp.LoadConfig(path)
	td.Require(t).CmpNoError(err)
	td.Cmp(t, *config, ctp.Config{
		Quiet:    true,
		MaxDepth: 12,
		Output:   "out.ctp",
		Checksum: true,
	})
}

func TestLoadConfigEnv(t *testing.T) {
	path := writeFile(t, "ctp.yaml", "quiet: true\n")

	t.Setenv(ctp.EnvQuiet, "false")
	t.Setenv(ctp.EnvDeadQuiet, "1")

	config, err := ctp.LoadConfig(path)
	td.Require(t).CmpNoError(err)
	td.CmpFalse(t, config.Quiet)
	td.CmpTrue(t, config.DeadQuiet)

	config, err = ctp.LoadConfig("")
	td.Require(t).CmpNoError(err)
	td.CmpTrue(t, config.DeadQuiet)
}

func TestLoadConfigErrors(t *testing.T) {
	testCases := []struct {
		desc  string
		path  func(t *testing.T) string
		quiet string
	}{
		{desc: "missing file", path: func(t *testing.T) string { return filepath.Join(t.TempDir(), "nope.yaml") }},
		{desc: "bad yaml", path: func(t *testing.T) string { return writeFile(t, "bad.yaml", "quiet: [") }},
		{desc: "wrong field type", path: func(t *testing.T) string { return writeFile(t, "bad.yaml", "max_depth: deep\n") }},
		{desc: "bad env", path: func(*testing.T) string { return "" }, quiet: "sometimes"},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			if tC.quiet != "" {
				t.Setenv(ctp.EnvQuiet, tC.quiet)
			}
			_, err := ctp.LoadConfig(tC.path(t))
			td.CmpErrorIs(t, err, encio.ErrBadConfig)
		})
	}
}

func TestDefault(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.ctp.zst")
	t.Setenv(ctp.EnvConfig, writeFile(t, "ctp.yaml", "checksum: true\noutput: "+out+"\n"))

	td.CmpFalse(t, ctp.Default().Quiet())
	td.CmpTrue(t, ctp.DefaultRegistry.Frozen())
	td.CmpTrue(t, ctp.Default() == ctp.Default())

	_, err := ctp.Print(1)
	td.CmpNoError(t, err)
	_, err = ctp.Printf("{}", 2)
	td.CmpNoError(t, err)
	_, err = ctp.Fprint(ctp.Stderr, 3)
	td.CmpNoError(t, err)
	_, err = ctp.Fprintf(ctp.Stderr, "{}", 4)
	td.CmpNoError(t, err)
	td.CmpNoError(t, ctp.Close())

	f, err := os.Open(out)
	td.Require(t).CmpNoError(err)
	defer f.Close()

	dec, err := wire.NewReader(f)
	td.Require(t).CmpNoError(err)
	defer dec.Close()
	tokens, err := dec.DecodeAll()
	td.Require(t).CmpNoError(err)
	td.CmpNoError(t, token.Validate(tokens))

	var starts []token.Tag
	for _, tok := range tokens {
		if tok.Tag.IsStart() {
			starts = append(starts, tok.Tag)
		}
	}
	td.Cmp(t, starts, []token.Tag{token.StartOut, token.StartOutFormat, token.StartErr, token.StartErrFormat})
}
