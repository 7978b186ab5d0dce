package log

import (
	"bytes"
	"math"
	"strconv"
	"unicode/utf8"
)

// Low-level JSON append helpers shared by LogEvent field methods.
// All helpers write directly into the event buffer without intermediate
// allocations.

func appendBeginMarker(buf *bytes.Buffer) {
	buf.WriteByte('{')
}

func appendEndMarker(buf *bytes.Buffer) {
	buf.WriteByte('}')
}

func appendKey(buf *bytes.Buffer, key string) {
	if buf.Len() >= 1 && buf.Bytes()[buf.Len()-1] != '{' {
		buf.WriteByte(',')
	}
	appendString(buf, key)
	buf.WriteByte(':')
}

func appendNil(buf *bytes.Buffer) {
	buf.WriteString("null")
}

func appendLineBreak(buf *bytes.Buffer) {
	buf.WriteByte('\n')
}

func appendBool(buf *bytes.Buffer, v bool) {
	buf.WriteString(strconv.FormatBool(v))
}

func appendInt64(buf *bytes.Buffer, v int64) {
	buf.WriteString(strconv.FormatInt(v, 10))
}

func appendUint64(buf *bytes.Buffer, v uint64) {
	buf.WriteString(strconv.FormatUint(v, 10))
}

func appendFloat64(buf *bytes.Buffer, v float64) {
	// JSON has no representation for these values.
	switch {
	case math.IsNaN(v):
		buf.WriteString(`"NaN"`)
	case math.IsInf(v, 1):
		buf.WriteString(`"+Inf"`)
	case math.IsInf(v, -1):
		buf.WriteString(`"-Inf"`)
	default:
		buf.WriteString(strconv.FormatFloat(v, 'f', -1, 64))
	}
}

// appendString writes s as a quoted JSON string, escaping as needed.
func appendString(buf *bytes.Buffer, s string) {
	buf.WriteByte('"')
	for i := 0; i < len(s); i++ {
		if s[i] < 0x20 || s[i] == '"' || s[i] == '\\' || s[i] >= utf8.RuneSelf {
			appendStringComplex(buf, s, i)
			buf.WriteByte('"')
			return
		}
	}
	buf.WriteString(s)
	buf.WriteByte('"')
}

// appendStringComplex handles the slow path with escape sequences and
// multi-byte runes, starting at the first byte that needs attention.
func appendStringComplex(buf *bytes.Buffer, s string, at int) {
	buf.WriteString(s[:at])
	for i := at; i < len(s); {
		b := s[i]
		if b >= utf8.RuneSelf {
			r, size := utf8.DecodeRuneInString(s[i:])
			if r == utf8.RuneError && size == 1 {
				buf.WriteString(`�`)
			} else {
				buf.WriteString(s[i : i+size])
			}
			i += size
			continue
		}
		switch b {
		case '"':
			buf.WriteString(`\"`)
		case '\\':
			buf.WriteString(`\\`)
		case '\n':
			buf.WriteString(`\n`)
		case '\r':
			buf.WriteString(`\r`)
		case '\t':
			buf.WriteString(`\t`)
		default:
			if b < 0x20 {
				buf.WriteString(`\u00`)
				const hex = "0123456789abcdef"
				buf.WriteByte(hex[b>>4])
				buf.WriteByte(hex[b&0xF])
			} else {
				buf.WriteByte(b)
			}
		}
		i++
	}
}
