package signature

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simonhull/firebird-suite/magpie/internal/swift"
	"github.com/simonhull/firebird-suite/magpie/internal/tables"
	"github.com/simonhull/firebird-suite/magpie/internal/typemap"
)

func mapper() *typemap.Mapper {
	return typemap.New(tables.Default().Types)
}

func TestTranslate_VoidReturnIsUnit(t *testing.T) {
	for _, ret := range []string{"Void", "", "()", "None"} {
		sig := Translate(swift.Method{Name: "fetch", Return: ret}, mapper())
		assert.Equal(t, "suspend fun fetch(): Unit", sig.Declaration("suspend"), "return %q", ret)
	}
}

func TestTranslate_LabelledParamsKeepCountAndOrder(t *testing.T) {
	types := []string{"String", "Int", "Bool", "Double", "[String]", "Date"}
	want := []string{"String", "Int", "Boolean", "Double", "List<String>", "LocalDateTime"}

	for n := 1; n <= len(types); n++ {
		var raw, expected []string
		for i := 0; i < n; i++ {
			raw = append(raw, fmt.Sprintf("label%d name%d: %s", i, i, types[i]))
			expected = append(expected, fmt.Sprintf("name%d: %s", i, want[i]))
		}

		sig := Translate(swift.Method{Name: "f", Params: strings.Join(raw, ", ")}, mapper())
		require.Len(t, sig.Params, n)
		assert.Equal(t, strings.Join(expected, ", "), sig.ParamList())
		assert.Len(t, strings.Split(sig.ParamList(), ", "), n)
	}
}

func TestTranslateParams(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"argument label", "from prompt: String", "prompt: String"},
		{"underscore label", "_ user: User", "user: User"},
		{"dictionary type", "headers: [String: String]", "headers: Map<String, String>"},
		{"closure with commas", "completion: @escaping (Result<User, Error>) -> Void", "completion: (Result<User>) -> Unit"},
		{"default values", `limit: Int = 20, query: String = ""`, `limit: Int = 20, query: String = ""`},
		{"inout", "value: inout Int", "value: Int"},
		{"variadic", "ids: String...", "vararg ids: String"},
		{"optional", "user id: UUID?", "id: String?"},
		{"untyped", "x", "x: Any"},
		{"empty", "  ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig := Signature{Params: TranslateParams(tt.raw, mapper())}
			assert.Equal(t, tt.want, sig.ParamList())
		})
	}
}

func TestSignature_Rendering(t *testing.T) {
	m := swift.Method{Name: "search", Params: "for query: String, page: Int", Return: "[Item]", Async: true, Throws: true}
	sig := Translate(m, mapper())

	assert.Equal(t, "fun search(query: String, page: Int): List<Item>", sig.Declaration(""))
	assert.Equal(t, "override suspend fun search(query: String, page: Int): List<Item>", sig.Declaration("override suspend"))
	assert.Equal(t, "query, page", sig.Args())
	assert.True(t, sig.Async)
	assert.True(t, sig.Throws)

	flow := sig.WithReturn("Flow<List<Item>>")
	assert.Equal(t, "Flow<List<Item>>", flow.Return)
	assert.Equal(t, "List<Item>", sig.Return, "WithReturn copies")
}
