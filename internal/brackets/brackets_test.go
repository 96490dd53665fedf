package brackets

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBalance(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"already balanced", "fun a() {\n}", "fun a() {\n}"},
		{"missing brace", "Column {\n    Text(text = \"a\")", "Column {\n    Text(text = \"a\")\n}"},
		{"missing paren", "Text(text = \"a\"", "Text(text = \"a\")"},
		{"stray closers dropped", "}\n)a(b)}", "\na(b)"},
		{"reverse opening order", "Row(modifier = Modifier) {\n    Box(", "Row(modifier = Modifier) {\n    Box()\n}"},
		{"paren opened before brace", "Button(onClick = {", "Button(onClick = {\n})"},
		{"empty", "", ""},
		// brackets inside string literals count, so the literal's ')' closes
		// the call and the real closer is dropped
		{"closer inside string literal", "Text(text = \"Hi :)\")", "Text(text = \"Hi :)\""},
		{"opener inside string literal", "Text(text = \":(\")", "Text(text = \":(\"))"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Balance(tt.in)
			assert.Equal(t, tt.want, got)
			assert.True(t, Count(got).Balanced())
		})
	}
}

func TestBalance_CountsAlwaysEqual(t *testing.T) {
	alphabet := []byte("{}()ab \n\"")
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 500; i++ {
		n := rng.Intn(40)
		var sb strings.Builder
		for j := 0; j < n; j++ {
			sb.WriteByte(alphabet[rng.Intn(len(alphabet))])
		}
		in := sb.String()
		out := Balance(in)

		assert.Equal(t, strings.Count(out, "{"), strings.Count(out, "}"), "input %q", in)
		assert.Equal(t, strings.Count(out, "("), strings.Count(out, ")"), "input %q", in)
	}
}

func TestBalance_Idempotent(t *testing.T) {
	in := "LazyColumn {\n    item {\n        Text(\"x\"\n"
	once := Balance(in)
	assert.Equal(t, once, Balance(once))
}

func TestCount(t *testing.T) {
	c := Count("a({)}}")
	assert.Equal(t, Counts{OpenBrace: 1, CloseBrace: 2, OpenParen: 1, CloseParen: 1}, c)
	assert.False(t, c.Balanced())
}
