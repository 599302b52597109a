package jsonpath

import (
	"fmt"
	"strconv"
	"strings"
)

// CanonicalPath renders a node location as a normalized path: $ followed
// by one bracketed step per element, a single-quoted name for strings and
// a decimal index for integers.
//
//	CanonicalPath([]any{"store", "book", 0}) == "$['store']['book'][0]"
func CanonicalPath(location []any) string {
	var b strings.Builder
	b.WriteByte('$')
	for _, step := range location {
		b.WriteByte('[')
		switch s := step.(type) {
		case string:
			writeName(&b, s)
		case int:
			b.WriteString(strconv.Itoa(s))
		default:
			fmt.Fprint(&b, s)
		}
		b.WriteByte(']')
	}
	return b.String()
}

// writeName writes name as a single-quoted string literal that compiles
// back to the same name.
func writeName(b *strings.Builder, name string) {
	b.WriteByte('\'')
	for _, r := range name {
		switch r {
		case '\'':
			b.WriteString(`\'`)
		case '\\':
			b.WriteString(`\\`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if r < 0x20 {
				fmt.Fprintf(b, `\u%04x`, r)
				continue
			}
			b.WriteRune(r)
		}
	}
	b.WriteByte('\'')
}
