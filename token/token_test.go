package token_test

import (
	"testing"

	"github.com/cockroachdb/apd/v3"
	"github.com/maxatome/go-testdeep/td"

	"github.com/Viatorus/compile-time-printer/token"
)

func TestTagValues(t *testing.T) {
	td.Cmp(t, uint8(token.Version), uint8(32))
	td.Cmp(t, uint8(token.End), uint8(37))
	td.Cmp(t, uint8(token.NaNFloat), uint8(128))
	td.Cmp(t, uint8(token.Type), uint8(136))
	td.Cmp(t, uint8(token.CustomFormatEnd), uint8(145))
	td.Cmp(t, token.ProtocolVersion, 1)
}

func TestTagClassification(t *testing.T) {
	testCases := []struct {
		desc    string
		tag     token.Tag
		payload bool
		start   bool
		begin   bool
		end     bool
		closer  token.Tag
	}{
		{desc: "Version", tag: token.Version, payload: true},
		{desc: "StartErrFormat", tag: token.StartErrFormat, start: true, closer: token.End},
		{desc: "End", tag: token.End, end: true},
		{desc: "FractionFloat", tag: token.FractionFloat, payload: true},
		{desc: "NaNFloat", tag: token.NaNFloat},
		{desc: "Type", tag: token.Type},
		{desc: "ArrayBegin", tag: token.ArrayBegin, begin: true, closer: token.ArrayEnd},
		{desc: "StringBegin", tag: token.StringBegin, begin: true, closer: token.StringEnd},
		{desc: "TupleBegin", tag: token.TupleBegin, begin: true, closer: token.TupleEnd},
		{desc: "CustomFormatBegin", tag: token.CustomFormatBegin, begin: true, closer: token.CustomFormatEnd},
		{desc: "TupleEnd", tag: token.TupleEnd, end: true},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			td.CmpTrue(t, tC.tag.Valid())
			td.Cmp(t, tC.tag.String(), tC.desc)
			td.Cmp(t, tC.tag.HasPayload(), tC.payload)
			td.Cmp(t, tC.tag.IsStart(), tC.start)
			td.Cmp(t, tC.tag.IsBegin(), tC.begin)
			td.Cmp(t, tC.tag.IsEnd(), tC.end)

			closer, ok := tC.tag.Closer()
			td.Cmp(t, ok, tC.start || tC.begin)
			td.Cmp(t, closer, tC.closer)
		})
	}

	td.CmpFalse(t, token.Tag(137).Valid())
	td.Cmp(t, token.Tag(137).String(), "Tag(137)")
}

func TestStartTag(t *testing.T) {
	td.Cmp(t, token.StartTag(false, false), token.StartOut)
	td.Cmp(t, token.StartTag(true, false), token.StartErr)
	td.Cmp(t, token.StartTag(false, true), token.StartOutFormat)
	td.Cmp(t, token.StartTag(true, true), token.StartErrFormat)
}

func TestText(t *testing.T) {
	huge, _ := new(apd.BigInt).SetString("18446744073709551616", 10)

	testCases := []struct {
		desc string
		tok  token.Token
		text string
	}{
		{desc: "structural", tok: token.New(token.ArrayBegin), text: "ArrayBegin"},
		{desc: "version", tok: token.VersionToken(), text: "Version(1)"},
		{desc: "typed integer", tok: token.Uint(token.PositiveInteger, 42, "int"), text: `PositiveInteger(42) "int"`},
		{desc: "beyond uint64", tok: token.WithPayload(token.NegativeInteger, huge, "big.Int"), text: `NegativeInteger(18446744073709551616) "big.Int"`},
		{desc: "type names", tok: token.Token{Tag: token.Type, Type: `int, map[string]"x"`}, text: `Type "int, map[string]\"x\""`},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			td.Cmp(t, tC.tok.String(), tC.text)

			got, err := token.Parse(tC.text)
			td.Require(t).CmpNoError(err)
			td.CmpTrue(t, got.Equal(tC.tok), "parsed %v", got)
		})
	}
}

func TestParseErrors(t *testing.T) {
	for _, text := range []string{
		"",
		"Bogus",
		"PositiveInteger",
		"ArrayBegin(3)",
		"PositiveInteger(-3)",
		"PositiveInteger(3",
		`Type "unterminated`,
	} {
		_, err := token.Parse(text)
		td.CmpErrorIs(t, err, token.ErrSyntax, "%q", text)
	}
}

func TestWithPayloadPanicsOnNegative(t *testing.T) {
	td.CmpPanic(t, func() {
		token.WithPayload(token.PositiveInteger, apd.NewBigInt(-1), "")
	}, td.Contains("negative payload"))
}
