package swift

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScan_OneLineStruct(t *testing.T) {
	u := Scan(`struct User { var name: String; var age: Int }`)

	assert.Equal(t, "User", u.ClassName)
	assert.Equal(t, KindStruct, u.Kind)
	require.Len(t, u.Properties, 2)
	assert.Equal(t, Property{Name: "name", Type: "String", Mutable: true}, u.Properties[0])
	assert.Equal(t, Property{Name: "age", Type: "Int", Mutable: true}, u.Properties[1])
}

func TestScan_ViewModel(t *testing.T) {
	src := `import Foundation
import Combine

@MainActor
final class LoginViewModel: ObservableObject, Identifiable {
    @Published var email: String = ""
    @Published private(set) var isLoading: Bool = false
    let service: AuthService

    // func notAMethod() -> Int
    func login(email: String, password: String) async throws -> User {
        let token: String = try await service.token()
        return try await service.login(token)
    }

    func reset() {
    }
}
`
	u := Scan(src)

	assert.Equal(t, "LoginViewModel", u.ClassName)
	assert.Equal(t, KindClass, u.Kind)
	assert.Equal(t, "ObservableObject", u.Superclass)
	assert.Equal(t, []string{"Identifiable"}, u.Protocols)
	assert.True(t, u.Inherits("Identifiable"))
	assert.Equal(t, []string{"Foundation", "Combine"}, u.Imports)
	assert.True(t, u.UsesCombine)
	assert.False(t, u.UsesSwiftData)

	names := make([]string, 0, len(u.Properties))
	for _, p := range u.Properties {
		names = append(names, p.Name)
	}
	// the local inside login() is picked up too
	assert.Equal(t, []string{"email", "isLoading", "service", "token"}, names)

	email := u.Properties[0]
	assert.Equal(t, `""`, email.Default)
	assert.True(t, email.Observable)
	assert.True(t, email.HasAttribute("Published"))
	assert.True(t, u.Properties[1].Observable)
	assert.False(t, u.Properties[2].Mutable)
	assert.Len(t, u.ObservableProperties(), 2)

	require.Len(t, u.Methods, 2)
	assert.Equal(t, Method{
		Name: "login", Params: "email: String, password: String",
		Return: "User", Async: true, Throws: true,
	}, u.Methods[0])
	assert.Equal(t, Method{Name: "reset"}, u.Methods[1])
}

func TestScan_Enum(t *testing.T) {
	u := Scan(`enum Status: String, Codable {
    case active = "active"
    case inactive, pending
    case failed(Error)

    var label: String {
        switch self {
        case .active: return "On"
        default: return "Off"
        }
    }
}`)

	assert.Equal(t, KindEnum, u.Kind)
	assert.Equal(t, "String", u.Superclass)
	assert.Equal(t, []EnumCase{
		{Name: "active", RawValue: `"active"`},
		{Name: "inactive"},
		{Name: "pending"},
		{Name: "failed"},
	}, u.EnumCases)
}

func TestScan_FirstDeclarationWins(t *testing.T) {
	u := Scan(`struct Header: View {
    var body: some View { Text("A") }
}

struct Footer: View {
    var body: some View { Text("B") }
}

extension Footer {
}
`)
	assert.Equal(t, "Header", u.ClassName)
	assert.Equal(t, []string{"Footer", "Footer"}, u.Dropped)
}

func TestScan_ProtocolAndCompletionHandler(t *testing.T) {
	u := Scan(`protocol UserService {
    func fetch(id: String, completion: @escaping (Result<User, Error>) -> Void)
    func all() async throws -> [User]
}`)
	assert.Equal(t, KindProtocol, u.Kind)
	require.Len(t, u.Methods, 2)
	assert.Equal(t, "id: String, completion: @escaping (Result<User, Error>) -> Void", u.Methods[0].Params)
	assert.Equal(t, "", u.Methods[0].Return)
	assert.Equal(t, "[User]", u.Methods[1].Return)
}

func TestScan_SwiftDataAndFirebase(t *testing.T) {
	u := Scan("import SwiftData\nimport FirebaseAuth\n@Model\nfinal class Note {\n  var title: String\n}")
	assert.True(t, u.UsesSwiftData)
	assert.True(t, u.UsesFirebase)
	assert.Equal(t, "Note", u.ClassName)
}

func TestScan_NoDeclaration(t *testing.T) {
	u := Scan("let answer = 42\n")
	assert.Equal(t, KindNone, u.Kind)
	assert.Empty(t, u.ClassName)
	assert.Empty(t, u.Properties)
}

func TestStripComments(t *testing.T) {
	src := "let a = \"// not a comment\" // trailing\n/* block\nspans */let b = 1\n"
	got := StripComments(src)
	assert.Equal(t, "let a = \"// not a comment\" \n\nlet b = 1\n", got)
}

func TestSplitTopLevel(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"a: Int, b: String", []string{"a: Int", " b: String"}},
		{"d: [String: Int], f: (Int, Int) -> Void", []string{"d: [String: Int]", " f: (Int, Int) -> Void"}},
		{`x: String = "a,b"`, []string{`x: String = "a,b"`}},
		{"", []string{""}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SplitTopLevel(tt.in, ','), tt.in)
	}
}

func TestExtractBlock(t *testing.T) {
	src := `struct V: View {
    var body: some View {
        VStack {
            Text("}")
        }
    }
}`
	body, ok := ExtractBlock(src, regexp.MustCompile(`var\s+body\s*:\s*some\s+View\s*\{`))
	require.True(t, ok)
	assert.Contains(t, body, "VStack {")
	assert.Contains(t, body, `Text("}")`)
	assert.NotContains(t, body, "var body")

	_, ok = ExtractBlock(src, regexp.MustCompile(`func\s+missing`))
	assert.False(t, ok)
}

func TestCache(t *testing.T) {
	path := filepath.Join(t.TempDir(), "User.swift")
	require.NoError(t, os.WriteFile(path, []byte("struct User {}"), 0644))

	c, err := NewCache(0)
	require.NoError(t, err)

	first, err := c.Load(path)
	require.NoError(t, err)
	again, err := c.Load(path)
	require.NoError(t, err)
	assert.Same(t, first, again)

	require.NoError(t, os.WriteFile(path, []byte("class Account {}"), 0644))
	changed, err := c.Load(path)
	require.NoError(t, err)
	assert.NotSame(t, first, changed)
	assert.Equal(t, "Account", changed.Unit.ClassName)
	assert.Equal(t, 1, c.Len())

	_, err = c.Load(filepath.Join(t.TempDir(), "missing.swift"))
	assert.Error(t, err)
}
