// Package brackets repairs brace and parenthesis counts in generated text.
//
// Balance is a best-effort formatter, not a parser. It only makes the counts
// of '{' and '}' (and of '(' and ')') equal: closers that have no opener are
// dropped and missing closers are appended at the very end, in reverse
// opening order. It cannot know where a closer logically belongs, so the
// result can still be wrong Kotlin with the right number of brackets.
// String literals and comments are not special; every bracket counts.
package brackets

import "strings"

// Counts is the number of each bracket character in a text.
type Counts struct {
	OpenBrace  int
	CloseBrace int
	OpenParen  int
	CloseParen int
}

// Balanced reports whether both bracket kinds have equal counts.
func (c Counts) Balanced() bool {
	return c.OpenBrace == c.CloseBrace && c.OpenParen == c.CloseParen
}

// Count tallies the brackets in s.
func Count(s string) Counts {
	return Counts{
		OpenBrace:  strings.Count(s, "{"),
		CloseBrace: strings.Count(s, "}"),
		OpenParen:  strings.Count(s, "("),
		CloseParen: strings.Count(s, ")"),
	}
}

// Balance returns s with unmatched closers removed and missing closers
// appended. A missing ')' is appended to the current last line, a missing
// '}' goes on a line of its own.
func Balance(s string) string {
	var (
		b      strings.Builder
		open   []byte // unmatched openers, in order
		braces int
		parens int
	)
	b.Grow(len(s) + 16)

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '{':
			braces++
			open = append(open, c)
		case '(':
			parens++
			open = append(open, c)
		case '}':
			if braces == 0 {
				continue
			}
			braces--
			open = removeLast(open, '{')
		case ')':
			if parens == 0 {
				continue
			}
			parens--
			open = removeLast(open, '(')
		}
		b.WriteByte(c)
	}

	for i := len(open) - 1; i >= 0; i-- {
		if open[i] == '{' {
			b.WriteString("\n}")
		} else {
			b.WriteByte(')')
		}
	}
	return b.String()
}

func removeLast(stack []byte, c byte) []byte {
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i] == c {
			return append(stack[:i], stack[i+1:]...)
		}
	}
	return stack
}
