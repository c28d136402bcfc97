// Package token defines the tag protocol shared by the encoder and any observer of its output.
//
// A stream is an optional Version token followed by frames.
// Each frame opens with one of the Start tags, holds the dispatched values and closes with End.
// Inside a frame, Begin tags and their End tags nest like brackets.
package token

import "fmt"

// ProtocolVersion is the payload of the Version token.
// Observers refuse streams carrying any other version.
const ProtocolVersion = 1

// Tag identifies a token. Its numeric values are part of the protocol and never change.
type Tag uint8

// Protocol tags.
const (
	Version        Tag = 32
	StartOut       Tag = 33
	StartErr       Tag = 34
	StartOutFormat Tag = 35
	StartErrFormat Tag = 36
	End            Tag = 37

	NaNFloat              Tag = 128
	PositiveInfinityFloat Tag = 129
	NegativeInfinityFloat Tag = 130
	NegativeFloat         Tag = 131
	PositiveFloat         Tag = 132
	FractionFloat         Tag = 133
	PositiveInteger       Tag = 134
	NegativeInteger       Tag = 135
	Type                  Tag = 136

	ArrayBegin        Tag = 138
	ArrayEnd          Tag = 139
	StringBegin       Tag = 140
	StringEnd         Tag = 141
	TupleBegin        Tag = 142
	TupleEnd          Tag = 143
	CustomFormatBegin Tag = 144
	CustomFormatEnd   Tag = 145
)

var tagNames = map[Tag]string{
	Version:               "Version",
	StartOut:              "StartOut",
	StartErr:              "StartErr",
	StartOutFormat:        "StartOutFormat",
	StartErrFormat:        "StartErrFormat",
	End:                   "End",
	NaNFloat:              "NaNFloat",
	PositiveInfinityFloat: "PositiveInfinityFloat",
	NegativeInfinityFloat: "NegativeInfinityFloat",
	NegativeFloat:         "NegativeFloat",
	PositiveFloat:         "PositiveFloat",
	FractionFloat:         "FractionFloat",
	PositiveInteger:       "PositiveInteger",
	NegativeInteger:       "NegativeInteger",
	Type:                  "Type",
	ArrayBegin:            "ArrayBegin",
	ArrayEnd:              "ArrayEnd",
	StringBegin:           "StringBegin",
	StringEnd:             "StringEnd",
	TupleBegin:            "TupleBegin",
	TupleEnd:              "TupleEnd",
	CustomFormatBegin:     "CustomFormatBegin",
	CustomFormatEnd:       "CustomFormatEnd",
}

var tagsByName = func() map[string]Tag {
	m := make(map[string]Tag, len(tagNames))
	for tag, name := range tagNames {
		m[name] = tag
	}
	return m
}()

// String implements fmt.Stringer.
func (t Tag) String() string {
	if name, ok := tagNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Tag(%d)", uint8(t))
}

// Valid returns true if t is one of the protocol tags.
func (t Tag) Valid() bool {
	_, ok := tagNames[t]
	return ok
}

// HasPayload returns true if tokens with this tag carry a magnitude.
func (t Tag) HasPayload() bool {
	switch t {
	case Version, NegativeFloat, PositiveFloat, FractionFloat, PositiveInteger, NegativeInteger:
		return true
	}
	return false
}

// IsStart returns true for the tags that open a frame.
func (t Tag) IsStart() bool {
	return t >= StartOut && t <= StartErrFormat
}

// IsFormat returns true for the Start tags of formatted frames.
func (t Tag) IsFormat() bool {
	return t == StartOutFormat || t == StartErrFormat
}

// IsErr returns true for the Start tags addressing the error channel.
func (t Tag) IsErr() bool {
	return t == StartErr || t == StartErrFormat
}

// IsBegin returns true for the tags that open a bracket inside a frame.
func (t Tag) IsBegin() bool {
	switch t {
	case ArrayBegin, StringBegin, TupleBegin, CustomFormatBegin:
		return true
	}
	return false
}

// IsEnd returns true for the tags that close a bracket or a frame.
func (t Tag) IsEnd() bool {
	switch t {
	case End, ArrayEnd, StringEnd, TupleEnd, CustomFormatEnd:
		return true
	}
	return false
}

// Closer returns the tag closing t, or false if t opens nothing.
func (t Tag) Closer() (Tag, bool) {
	switch {
	case t.IsStart():
		return End, true
	case t.IsBegin():
		return t + 1, true
	}
	return 0, false
}

// StartTag returns the Start tag for the given destination and mode.
func StartTag(toErr, formatted bool) Tag {
	switch {
	case toErr && formatted:
		return StartErrFormat
	case toErr:
		return StartErr
	case formatted:
		return StartOutFormat
	default:
		return StartOut
	}
}
