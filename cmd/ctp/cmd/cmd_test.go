package cmd_test

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/maxatome/go-testdeep/td"

	ctp "github.com/Viatorus/compile-time-printer"
	"github.com/Viatorus/compile-time-printer/cmd/ctp/cmd"
	"github.com/Viatorus/compile-time-printer/decode"
	"github.com/Viatorus/compile-time-printer/formatter"
	"github.com/Viatorus/compile-time-printer/sink"
	"github.com/Viatorus/compile-time-printer/token"
)

const envHelper = "CTP_TEST_HELPER"

// TestMain lets the test binary stand in for a program printing with the default printer.
func TestMain(m *testing.M) {
	if os.Getenv(envHelper) == "1" {
		fmt.Fprintln(os.Stderr, "compiling...")
		ctp.Print("hello", 42)
		ctp.Fprint(ctp.Stderr, "oops")
		os.Exit(3)
	}
	os.Exit(m.Run())
}

func run(t *testing.T, stdin string, args ...string) (stdout, stderr string, err error) {
	t.Helper()

	var out, errOut bytes.Buffer
	c := cmd.New(args)
	c.SetIn(strings.NewReader(stdin))
	c.SetOut(&out)
	c.SetErr(&errOut)

	err = c.Run(context.Background())
	return out.String(), errOut.String(), err
}

func writeStream(t *testing.T, name string, opts *sink.Options) string {
	t.Helper()
	require := td.Require(t)

	path := filepath.Join(t.TempDir(), name)
	s, err := sink.Create(path, opts)
	require.CmpNoError(err)

	p, err := ctp.New(s, &ctp.Config{Registry: formatter.NewRegistry()})
	require.CmpNoError(err)

	_, err = p.Print(1.5, "x")
	require.CmpNoError(err)
	_, err = p.Printf("{} + {} = {}", 1, 2, 3)
	require.CmpNoError(err)
	_, err = p.Fprint(ctp.Stderr, []int{1, 2})
	require.CmpNoError(err)
	require.CmpNoError(p.Close())

	return path
}

const textStream = `Version(1)
StartOut
PositiveInteger(7) "int"
End
build log
StartErrFormat
StringBegin
PositiveInteger(123) "rune"
PositiveInteger(125) "rune"
StringEnd
Type "main.Celsius"
End
`

func TestDecode(t *testing.T) {
	testCases := []struct {
		desc       string
		opts       *sink.Options
		name       string
		args       []string
		wantStdout string
		wantStderr string
	}{
		{
			desc:       "plain",
			name:       "out.ctp",
			wantStdout: "1.5 x\n1 + 2 = 3",
			wantStderr: "[1, 2]\n",
		},
		{
			desc:       "checksum compressed",
			opts:       &sink.Options{Checksum: true},
			name:       "out.ctp.zst",
			wantStdout: "1.5 x\n1 + 2 = 3",
			wantStderr: "[1, 2]\n",
		},
		{
			desc:       "time point",
			name:       "out.ctp",
			args:       []string{"--time-point"},
			wantStdout: `^\S+ - 1\.5 x\n\S+ - 1 \+ 2 = 3$`,
			wantStderr: `^\S+ - \[1, 2\]\n$`,
		},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			path := writeStream(t, tC.name, tC.opts)

			stdout, stderr, err := run(t, "", append([]string{"decode", path}, tC.args...)...)
			td.Require(t).CmpNoError(err)
			if len(tC.args) > 0 {
				td.Cmp(t, stdout, td.Re(tC.wantStdout))
				td.Cmp(t, stderr, td.Re(tC.wantStderr))
				return
			}
			td.Cmp(t, stdout, tC.wantStdout)
			td.Cmp(t, stderr, tC.wantStderr)
		})
	}
}

func TestDecodeText(t *testing.T) {
	testCases := []struct {
		desc       string
		args       []string
		wantStdout string
		wantStderr string
	}{
		{
			desc:       "log copied",
			wantStdout: "7\n",
			wantStderr: "build log\nmain.Celsius",
		},
		{
			desc:       "log hidden",
			args:       []string{"--hide-log"},
			wantStdout: "7\n",
			wantStderr: "main.Celsius",
		},
		{
			desc:       "prettified",
			args:       []string{"--hide-log", "-r", `main\.`},
			wantStdout: "7\n",
			wantStderr: "Celsius",
		},
		{
			desc:       "capture removed",
			args:       []string{"--hide-log", "--capture-remove", `main\.(\w)\w*`},
			wantStdout: "7\n",
			wantStderr: "C",
		},
		{
			desc:       "no color",
			args:       []string{"--hide-log", "--no-color"},
			wantStdout: "7\n",
			wantStderr: "main.Celsius",
		},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			stdout, stderr, err := run(t, textStream, append([]string{"decode", "--text"}, tC.args...)...)
			td.Require(t).CmpNoError(err)
			td.Cmp(t, stdout, tC.wantStdout)
			td.Cmp(t, stderr, tC.wantStderr)
		})
	}
}

func TestDecodeTokens(t *testing.T) {
	stdout, _, err := run(t, textStream, "decode", "--text", "--hide-log", "--tokens")
	td.Require(t).CmpNoError(err)

	lines := strings.Split(strings.TrimSuffix(stdout, "\n"), "\n")
	td.Cmp(t, lines, []string{
		"Version(1)",
		"StartOut",
		`PositiveInteger(7) "int"`,
		"End",
		"StartErrFormat",
		"StringBegin",
		`PositiveInteger(123) "rune"`,
		`PositiveInteger(125) "rune"`,
		"StringEnd",
		`Type "main.Celsius"`,
		"End",
	})
}

func TestDecodeNoOutput(t *testing.T) {
	stdout, stderr, err := run(t, "just a compiler\n", "decode", "--text", "-")
	td.Require(t).CmpNoError(err)
	td.Cmp(t, stdout, "")
	td.Cmp(t, stderr, "just a compiler\nNo CTP output found.\n")
}

func TestDecodeErrors(t *testing.T) {
	testCases := []struct {
		desc    string
		stdin   string
		args    []string
		wantErr error
	}{
		{desc: "not a binary stream", stdin: "hello", args: []string{"decode"}},
		{desc: "newer version", stdin: "Version(2)\n", args: []string{"decode", "--text"}, wantErr: decode.ErrVersionMismatch},
		{desc: "bad regexp", stdin: textStream, args: []string{"decode", "--text", "-r", "("}},
		{desc: "missing file", args: []string{"decode", filepath.Join(t.TempDir(), "nope")}, wantErr: os.ErrNotExist},
		{desc: "too many args", args: []string{"decode", "a", "b"}},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			_, _, err := run(t, tC.stdin, tC.args...)
			if tC.wantErr != nil {
				td.CmpErrorIs(t, err, tC.wantErr)
				return
			}
			td.CmpNotNil(t, err)
		})
	}
}

func TestCheck(t *testing.T) {
	path := writeStream(t, "out.ctp.zst", &sink.Options{Checksum: true})

	stdout, _, err := run(t, "", "check", path)
	td.Require(t).CmpNoError(err)
	td.Cmp(t, stdout, td.Re(`^ok: 3 frames, \d+ tokens\n$`))

	stdout, _, err = run(t, textStream+"Version(1)\n", "check", "--text")
	td.Require(t).CmpNoError(err)
	td.Cmp(t, stdout, "ok: 2 frames, 12 tokens\n")
}

func TestCheckErrors(t *testing.T) {
	testCases := []struct {
		desc    string
		stdin   string
		wantErr error
	}{
		{desc: "unbalanced", stdin: "StartOut\nArrayBegin\nEnd\n", wantErr: token.ErrUnbalanced},
		{desc: "left open", stdin: "StartOut\n", wantErr: token.ErrUnbalanced},
		{desc: "outside frame", stdin: "PositiveInteger(1)\n", wantErr: token.ErrUnexpected},
		{desc: "newer version", stdin: "Version(2)\n", wantErr: decode.ErrVersionMismatch},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			_, _, err := run(t, tC.stdin, "check", "--text")
			td.CmpErrorIs(t, err, tC.wantErr)
		})
	}
}

func TestVersion(t *testing.T) {
	stdout, _, err := run(t, "", "version")
	td.Require(t).CmpNoError(err)
	td.Cmp(t, stdout, td.Re(`^ctp version \S+\nprotocol version 1\n$`))
}

func TestRun(t *testing.T) {
	exe, err := os.Executable()
	td.Require(t).CmpNoError(err)
	t.Setenv(envHelper, "1")

	testCases := []struct {
		desc       string
		args       []string
		wantStderr string
	}{
		{desc: "log copied", wantStderr: "compiling...\noops\n"},
		{desc: "log hidden", args: []string{"--hide-log"}, wantStderr: "oops\n"},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			args := append([]string{"run"}, tC.args...)
			args = append(args, "--", exe)

			stdout, stderr, err := run(t, "", args...)
			td.Cmp(t, err, &cmd.ExitError{Code: 3})
			td.Cmp(t, stdout, "hello 42\n")
			td.Cmp(t, stderr, tC.wantStderr)
		})
	}
}

func TestRunNotFound(t *testing.T) {
	_, _, err := run(t, "", "run", "--", filepath.Join(t.TempDir(), "nope"))
	td.CmpNotNil(t, err)
}
