package typemap

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/simonhull/firebird-suite/magpie/internal/tables"
)

func defaultMapper() *Mapper {
	return New(tables.Default().Types)
}

func TestMap_TableEntries(t *testing.T) {
	table := tables.Default().Types
	m := New(table)

	for swiftType, kotlinType := range table {
		assert.Equal(t, kotlinType, m.Map(swiftType), swiftType)
		assert.Equal(t, m.Map(swiftType)+"?", m.Map(swiftType+"?"), swiftType+"?")
	}
}

func TestMap(t *testing.T) {
	m := defaultMapper()

	tests := []struct {
		in   string
		want string
	}{
		{"Bool", "Boolean"},
		{"Optional<Date>", "LocalDateTime?"},
		{"[User]", "List<User>"},
		{"Array<Int64>", "List<Long>"},
		{"[UUID: Bool]", "Map<String, Boolean>"},
		{"Dictionary<String, [Int]>", "Map<String, List<Int>>"},
		{"Set<String>", "Set<String>"},
		{"[String: [String: Double]]", "Map<String, Map<String, Double>>"},
		{"Result<User, Error>", "Result<User>"},
		{"(String) -> Void", "(String) -> Unit"},
		{"@escaping (Result<[User], Error>) -> Void", "(Result<List<User>>) -> Unit"},
		{"() async throws -> Data", "() -> ByteArray"},
		{"((Int) -> Void)?", "((Int) -> Unit)?"},
		{"(Int, String)", "Pair<Int, String>"},
		{"()", "Unit"},
		{"some View", "View"},
		{"Published<Int>", "Int"},
		{"AnyPublisher<[Note], Error>", "Flow<List<Note>>"},
		{"Binding<Bool>", "Boolean"},
		{"CustomThing", "CustomThing"},
		{"User!", "User"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, m.Map(tt.in), tt.in)
	}
}

func TestMap_OverridesComeFromTable(t *testing.T) {
	m := New(map[string]string{"Date": "Instant"})
	assert.Equal(t, "List<Instant?>", m.Map("[Date?]"))
	assert.Equal(t, "String", m.Map("String"), "unknown names map to themselves")
}

func TestMapLoose(t *testing.T) {
	m := defaultMapper()

	assert.Equal(t, "Map<String, Boolean>", m.MapLoose("List<UUID: Bool>"))
	assert.Equal(t, "Map<String, Int>", m.MapLoose("String: Int"))
	// the guess also fires on a label, which is wrong but expected
	assert.Equal(t, "Map<label, String>", m.MapLoose("label: String"))
	assert.Equal(t, "List<Int>", m.MapLoose("[Int]"))
	assert.Equal(t, "Map<String, Int>", m.MapLoose("[String: Int]"))
}

func TestReturnType(t *testing.T) {
	m := defaultMapper()
	for _, in := range []string{"", "Void", "None", "()", "  "} {
		assert.Equal(t, "Unit", ReturnType(m, in), "%q", in)
	}
	assert.Equal(t, "List<User>", ReturnType(m, "[User]"))
}

func TestDefaultValue(t *testing.T) {
	tests := map[string]string{
		"String":           `""`,
		"Int":              "0",
		"Long":             "0L",
		"Float":            "0f",
		"Double":           "0.0",
		"Boolean":          "false",
		"List<User>":       "emptyList()",
		"Set<String>":      "emptySet()",
		"Map<String, Int>": "emptyMap()",
		"List<User>?":      "null",
		"User":             "null",
	}
	for in, want := range tests {
		assert.Equal(t, want, DefaultValue(in), in)
	}
}

func TestLiteral(t *testing.T) {
	tests := []struct {
		expr, kotlinType, want string
	}{
		{"[]", "List<String>", "emptyList()"},
		{"[]", "Set<Int>", "emptySet()"},
		{"[]", "Map<String, Int>", "emptyMap()"},
		{"[:]", "Map<String, Int>", "emptyMap()"},
		{"nil", "String?", "null"},
		{`""`, "String", `""`},
		{"0", "Double", "0.0"},
		{"1.5", "Float", "1.5f"},
		{"10", "Long", "10L"},
		{"true", "Boolean", "true"},
		{".active", "Status", "Status.ACTIVE"},
		{".pendingReview", "Status?", "Status.PENDING_REVIEW"},
		{"Date()", "LocalDateTime", "LocalDateTime.now()"},
		{"UUID().uuidString", "String", "java.util.UUID.randomUUID().toString()"},
		{`["a", "b"]`, "List<String>", `listOf("a", "b")`},
		{`["a": 1]`, "Map<String, Int>", `mapOf("a" to 1)`},
		{`"Hi \(name)"`, "String", `"Hi ${name}"`},
		{"Config.shared", "Config", "Config.shared"},
		{"", "Int", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Literal(tt.expr, tt.kotlinType), tt.expr)
	}
}

func TestInterpolate(t *testing.T) {
	assert.Equal(t, `"${items.count()} items"`, Interpolate(`"\(items.count()) items"`))
	assert.Equal(t, `"plain"`, Interpolate(`"plain"`))
}
