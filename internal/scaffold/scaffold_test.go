package scaffold

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simonhull/firebird-suite/magpie/internal/analyzer"
	"github.com/simonhull/firebird-suite/magpie/pkg/generator"
	"github.com/simonhull/firebird-suite/magpie/pkg/logger"
)

const pkg = "com.example.tasks"

func newGenerator(t *testing.T, opts Options) *Generator {
	t.Helper()
	if opts.OutputDir == "" {
		opts.OutputDir = t.TempDir()
	}
	if opts.PackageName == "" {
		opts.PackageName = pkg
	}
	if opts.AppName == "" {
		opts.AppName = "Task Board"
	}
	return New(opts).WithLogger(logger.NewSilentLogger())
}

// written maps the target of every WriteFileOp, relative to the output
// directory, to its content.
func written(t *testing.T, g *Generator, ops []generator.Operation) map[string]string {
	t.Helper()
	out := make(map[string]string)
	for _, op := range ops {
		w, ok := op.(*generator.WriteFileOp)
		if !ok {
			continue
		}
		rel, err := filepath.Rel(g.opts.OutputDir, w.Path)
		require.NoError(t, err)
		out[filepath.ToSlash(rel)] = string(w.Content)
	}
	return out
}

func copies(ops []generator.Operation) map[string]string {
	out := make(map[string]string)
	for _, op := range ops {
		if c, ok := op.(*generator.CopyFileOp); ok {
			out[c.Dst] = c.Src
		}
	}
	return out
}

const src = "app/src/main/java/com/example/tasks/"

func TestAppClass(t *testing.T) {
	tests := []struct {
		app  string
		want string
	}{
		{"Task Board", "TaskBoard"},
		{"my-app", "MyApp"},
		{"2048", "App2048"},
		{"!!!", "App"},
	}
	for _, tt := range tests {
		t.Run(tt.app, func(t *testing.T) {
			g := newGenerator(t, Options{AppName: tt.app})
			assert.Equal(t, tt.want, g.appClass())
		})
	}
}

func TestBinding_Gets(t *testing.T) {
	assert.Equal(t, "", Binding{Name: "A"}.Gets())
	assert.Equal(t, "get()", Binding{Name: "A", Args: 1}.Gets())
	assert.Equal(t, "get(), get(), get()", Binding{Name: "A", Args: 3}.Gets())
}

func TestStructure(t *testing.T) {
	tmpl := t.TempDir()
	files := map[string]string{
		"gradlew":                "#!/bin/sh",
		"gradle/wrapper/x.jar":   "jar",
		"local.properties":       "sdk.dir=/tmp",
		".git/HEAD":              "ref",
		"app/build/out.txt":      "stale",
		"app/proguard-rules.pro": "-keep class *",
	}
	for rel, content := range files {
		p := filepath.Join(tmpl, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}

	g := newGenerator(t, Options{TemplateKotlin: tmpl})
	ops, err := g.Structure()
	require.NoError(t, err)

	cp := copies(ops)
	out := g.opts.OutputDir
	assert.Len(t, cp, 3)
	assert.Contains(t, cp, filepath.Join(out, "gradlew"))
	assert.Contains(t, cp, filepath.Join(out, "gradle", "wrapper", "x.jar"))
	assert.Contains(t, cp, filepath.Join(out, "app", "proguard-rules.pro"))

	var dirs []string
	for _, op := range ops {
		if m, ok := op.(*generator.MkdirOp); ok {
			dirs = append(dirs, m.Path)
		}
	}
	assert.Contains(t, dirs, filepath.Join(out, filepath.FromSlash(src), "ui", "screens"))
	assert.Contains(t, dirs, filepath.Join(out, filepath.FromSlash(src), "data", "local"))
	assert.Contains(t, dirs, filepath.Join(out, "app", "src", "main", "res", "values-night"))
}

func TestStructure_MissingTemplate(t *testing.T) {
	g := newGenerator(t, Options{TemplateKotlin: filepath.Join(t.TempDir(), "nope")})
	ops, err := g.Structure()
	require.NoError(t, err)
	assert.Empty(t, copies(ops))
	assert.NotEmpty(t, ops)
}

func TestGradle_BuiltIn(t *testing.T) {
	g := newGenerator(t, Options{})
	ops, err := g.Gradle(Inventory{UsesDatabase: true})
	require.NoError(t, err)
	files := written(t, g, ops)

	require.Len(t, files, 4)
	assert.Contains(t, files["settings.gradle.kts"], `rootProject.name = "task-board"`)
	app := files["app/build.gradle.kts"]
	assert.Contains(t, app, `namespace = "com.example.tasks"`)
	assert.Contains(t, app, `create("TaskBoardDatabase")`)
	assert.Contains(t, app, "sqldelight")
	assert.NotContains(t, app, "firebase")
}

func TestGradle_Firebase(t *testing.T) {
	g := newGenerator(t, Options{})
	ops, err := g.Gradle(Inventory{UsesFirebase: true})
	require.NoError(t, err)
	files := written(t, g, ops)

	assert.Contains(t, files["app/build.gradle.kts"], "firebase")
	assert.Contains(t, files["build.gradle.kts"], "google-services")
	assert.NotContains(t, files["app/build.gradle.kts"], "sqldelight")
}

func TestGradle_PatchesTemplate(t *testing.T) {
	tmpl := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(tmpl, "app"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(tmpl, "settings.gradle.kts"),
		[]byte("rootProject.name = \"Template\"\ninclude(\":app\")\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(tmpl, "app", "build.gradle.kts"),
		[]byte("android {\n    namespace = \"com.company.amap\"\n    defaultConfig {\n        applicationId = \"com.company.amap\"\n    }\n}\nsqldelight { databases { create(\"AmapDatabase\") { } } }\n"), 0o644))

	g := newGenerator(t, Options{TemplateKotlin: tmpl})
	ops, err := g.Gradle(Inventory{})
	require.NoError(t, err)
	files := written(t, g, ops)

	assert.Equal(t, "rootProject.name = \"task-board\"\ninclude(\":app\")\n", files["settings.gradle.kts"])
	app := files["app/build.gradle.kts"]
	assert.Contains(t, app, `namespace = "com.example.tasks"`)
	assert.Contains(t, app, `applicationId = "com.example.tasks"`)
	assert.Contains(t, app, `create("TaskBoardDatabase")`)
	assert.NotContains(t, app, "amap")
}

func TestNavigation(t *testing.T) {
	screens := []Screen{
		{Name: "DetailScreen", Route: "detail"},
		{Name: "HomeScreen", Route: "home", Tab: true},
		{Name: "UserProfileScreen", Route: "user_profile", Tab: true},
	}
	d := navigation(screens)
	assert.Equal(t, "Home", d.Start)
	require.Len(t, d.Tabs, 2)
	assert.Equal(t, navTab{Object: "Home", Label: "Home", Icon: "Home"}, d.Tabs[0])
	assert.Equal(t, navTab{Object: "UserProfile", Label: "User Profile", Icon: "Star"}, d.Tabs[1])

	d = navigation(screens[:1])
	assert.Equal(t, "Detail", d.Start)
	assert.Empty(t, d.Tabs)

	assert.Equal(t, navData{}, navigation(nil))
}

func TestTabLabel(t *testing.T) {
	tests := []struct {
		object string
		want   string
	}{
		{"Home", "Home"},
		{"UserProfile", "User Profile"},
		{"RecentOrderHistory", "Recent Order History"},
	}
	for _, tt := range tests {
		t.Run(tt.object, func(t *testing.T) {
			assert.Equal(t, tt.want, tabLabel(tt.object))
		})
	}
}

func TestManifest(t *testing.T) {
	g := newGenerator(t, Options{})
	ops, err := g.Manifest(Inventory{Screens: []Screen{
		{Name: "HomeScreen", Route: "home", Tab: true},
		{Name: "SettingsScreen", Route: "settings", Tab: true},
		{Name: "DetailScreen", Route: "detail"},
	}})
	require.NoError(t, err)
	files := written(t, g, ops)

	assert.Contains(t, files["app/src/main/AndroidManifest.xml"], "Theme.TaskBoard")
	assert.Contains(t, files[src+"MyApplication.kt"], "package com.example.tasks\n")
	assert.Contains(t, files[src+"MyApplication.kt"], "viewModelModule")

	nav := files[src+"ui/navigation/AppNavHost.kt"]
	assert.Contains(t, nav, `object Home : Destination("home")`)
	assert.Contains(t, nav, `object Detail : Destination("detail")`)
	assert.Contains(t, nav, "NavigationBar")
	assert.Contains(t, nav, "HomeScreen(navController = navController)")
	assert.Contains(t, nav, "DetailScreen(navController = navController)")

	assert.Contains(t, files, src+"ui/theme/Theme.kt")
	assert.Contains(t, files, "app/src/main/res/xml/backup_rules.xml")
}

func TestManifest_NoScreens(t *testing.T) {
	g := newGenerator(t, Options{})
	ops, err := g.Manifest(Inventory{})
	require.NoError(t, err)
	nav := written(t, g, ops)[src+"ui/navigation/AppNavHost.kt"]
	assert.NotContains(t, nav, "NavigationBar {")
	assert.Contains(t, nav, `Text("No screens were converted"`)
}

func TestParseStrings(t *testing.T) {
	content := `/* Greeting */
"welcome_title" = "Welcome!";
"Item Count" = "You have %d items";
"greeting" = "Hello, %@ and %1$@";
"quote" = "Say \"hi\"";
// "commented" = "nope";
not an entry
`
	assert.Equal(t, []Value{
		{"welcome_title", "Welcome!"},
		{"item_count", "You have %d items"},
		{"greeting", "Hello, %s and %1$s"},
		{"quote", `Say "hi"`},
	}, ParseStrings(content))
}

func TestDecodeText(t *testing.T) {
	le := []byte{0xFF, 0xFE, 'h', 0, 'i', 0}
	be := []byte{0xFE, 0xFF, 0, 'h', 0, 'i'}
	assert.Equal(t, "hi", decodeText(le))
	assert.Equal(t, "hi", decodeText(be))
	assert.Equal(t, "hi", decodeText([]byte("\uFEFFhi")))
	assert.Equal(t, "x", decodeText([]byte("x")))
}

func TestParseColorSet(t *testing.T) {
	tests := []struct {
		name string
		json string
		want string
		err  bool
	}{
		{
			name: "floats",
			json: `{"colors":[{"idiom":"universal","color":{"color-space":"srgb","components":{"alpha":"1.000","red":"1.000","green":"0.500","blue":"0.000"}}}]}`,
			want: "#FFFF8000",
		},
		{
			name: "hex and dark appearance",
			json: `{"colors":[
				{"idiom":"universal","appearances":[{"appearance":"luminosity","value":"dark"}],"color":{"components":{"alpha":"1","red":"0x00","green":"0x00","blue":"0x00"}}},
				{"idiom":"universal","color":{"components":{"alpha":"1","red":"0x12","green":"0xAB","blue":"0xFF"}}}
			]}`,
			want: "#FF12ABFF",
		},
		{
			name: "integers and numeric alpha",
			json: `{"colors":[{"idiom":"universal","color":{"components":{"alpha":0.5,"red":"255","green":"0","blue":"128"}}}]}`,
			want: "#80FF0080",
		},
		{name: "no color", json: `{"colors":[]}`, err: true},
		{name: "invalid", json: `{`, err: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseColorSet([]byte(tt.json))
			if tt.err {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
}

func TestResources(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"fr.lproj/Localizable.strings":                   `"ok" = "D'accord";`,
		"Base.lproj/Localizable.strings":                 `"ok" = "Okay";` + "\n" + `"title" = "Tasks & more";`,
		"Assets.xcassets/Brand.colorset/Contents.json":   `{"colors":[{"idiom":"universal","color":{"components":{"alpha":"1.000","red":"0x00","green":"0x80","blue":"0xFF"}}}]}`,
		"Assets.xcassets/Primary.colorset/Contents.json": `{"colors":[{"idiom":"universal","color":{"components":{"alpha":"1.000","red":"0x11","green":"0x22","blue":"0x33"}}}]}`,
		"Assets.xcassets/AppLogo.imageset/logo@2x.png":   "png",
		"Assets.xcassets/AppLogo.imageset/logo@3x.png":   "png",
		"Resources/Header Photo.jpeg":                    "jpg",
		"Resources/seed.json":                            "{}",
	})
	info := &analyzer.ProjectInfo{
		Root:    root,
		Strings: []string{"fr.lproj/Localizable.strings", "Base.lproj/Localizable.strings"},
		Colors: []string{
			"Assets.xcassets/Brand.colorset/Contents.json",
			"Assets.xcassets/Primary.colorset/Contents.json",
		},
		Resources: []string{
			"Assets.xcassets/AppLogo.imageset/logo@2x.png",
			"Assets.xcassets/AppLogo.imageset/logo@3x.png",
			"Resources/Header Photo.jpeg",
			"Resources/seed.json",
		},
	}

	g := newGenerator(t, Options{})
	ops, err := g.Resources(info)
	require.NoError(t, err)
	files := written(t, g, ops)

	strs := files["app/src/main/res/values/strings.xml"]
	assert.Contains(t, strs, `<string name="app_name">Task Board</string>`)
	assert.Contains(t, strs, `<string name="ok">Okay</string>`)
	assert.Contains(t, strs, `<string name="title">Tasks &amp; more</string>`)
	assert.Contains(t, strs, `<string name="retry">Retry</string>`)
	assert.NotContains(t, strs, "D'accord")

	colors := files["app/src/main/res/values/colors.xml"]
	assert.Contains(t, colors, `<color name="primary">#FF112233</color>`)
	assert.Contains(t, colors, `<color name="brand">#FF0080FF</color>`)
	assert.NotContains(t, colors, "#FF6200EE")

	assert.Contains(t, files, "app/src/main/res/values-night/themes.xml")

	cp := copies(ops)
	res := filepath.Join(g.opts.OutputDir, "app", "src", "main", "res")
	assert.Len(t, cp, 3)
	assert.Equal(t, filepath.Join(root, "Assets.xcassets", "AppLogo.imageset", "logo@2x.png"), cp[filepath.Join(res, "drawable", "app_logo.png")])
	assert.Contains(t, cp, filepath.Join(res, "drawable", "header_photo.jpg"))
	assert.Contains(t, cp, filepath.Join(res, "raw", "seed.json"))
}

func TestDI(t *testing.T) {
	g := newGenerator(t, Options{})
	ops, err := g.DI(Inventory{
		ViewModels:   []Binding{{Name: "HomeViewModel", Args: 1}, {Name: "AboutViewModel"}},
		Repositories: []Binding{{Name: "TaskRepository", Args: 2}},
		Services:     []Binding{{Name: "AuthService", Args: 2}},
		UsesFirebase: true,
		UsesDatabase: true,
	})
	require.NoError(t, err)
	files := written(t, g, ops)
	require.Len(t, files, 5)

	app := files[src+"di/AppModule.kt"]
	assert.Contains(t, app, "single { ApiClient.create() }")
	assert.Contains(t, app, "single { FirebaseAuth.getInstance() }")
	assert.Contains(t, app, "AppDatabase.getInstance(androidContext())")

	assert.Contains(t, files[src+"di/DataModule.kt"], "single<LocalDataSource> { LocalDataSourceImpl(get()) }")
	assert.Contains(t, files[src+"di/RepositoryModule.kt"], "single<TaskRepository> { TaskRepositoryImpl(get(), get()) }")
	svc := files[src+"di/ServiceModule.kt"]
	assert.Contains(t, svc, "single<AuthService> { AuthServiceImpl(get(), get()) }")
	assert.Contains(t, svc, "single { FirebaseAuthService(get()) }")
	vm := files[src+"di/ViewModelModule.kt"]
	assert.Contains(t, vm, "viewModel { HomeViewModel(get()) }")
	assert.Contains(t, vm, "viewModel { AboutViewModel() }")
}

func TestDI_Minimal(t *testing.T) {
	g := newGenerator(t, Options{})
	ops, err := g.DI(Inventory{})
	require.NoError(t, err)
	files := written(t, g, ops)

	app := files[src+"di/AppModule.kt"]
	assert.NotContains(t, app, "FirebaseAuth")
	assert.NotContains(t, app, "AppDatabase")
	assert.Contains(t, files[src+"di/DataModule.kt"], "LocalDataSourceImpl() }")
	assert.NotContains(t, files[src+"di/ServiceModule.kt"], "FirebaseAuthService")
}

func TestDatabase(t *testing.T) {
	g := newGenerator(t, Options{})
	ops, err := g.Database(Inventory{Models: []string{"Task", "UserModel"}, UsesDatabase: true})
	require.NoError(t, err)
	files := written(t, g, ops)

	local := files[src+"data/local/LocalDataSource.kt"]
	assert.Contains(t, local, "private val database: TaskBoardDatabase")
	assert.Contains(t, local, `"Task" -> database.taskEntityQueries.selectAll()`)
	assert.Contains(t, local, `"UserModel" -> database.userEntityQueries.insert(id, json, now, now)`)
	assert.Contains(t, files[src+"data/local/AppDatabase.kt"], "TaskBoardDatabase.Schema")
	assert.Contains(t, files[src+"data/remote/RemoteDataSource.kt"], "class RemoteDataSourceImpl(")

	sq := files["app/src/main/sqldelight/com/example/tasks/data/local/TaskEntity.sq"]
	assert.Contains(t, sq, "CREATE TABLE TaskEntity (")
	assert.Contains(t, sq, "selectById:")
	assert.Contains(t, files, "app/src/main/sqldelight/com/example/tasks/data/local/UserEntity.sq")
}

func TestDatabase_InMemory(t *testing.T) {
	g := newGenerator(t, Options{})
	ops, err := g.Database(Inventory{Models: []string{"Task"}})
	require.NoError(t, err)
	files := written(t, g, ops)

	assert.Len(t, files, 2)
	assert.Contains(t, files[src+"data/local/LocalDataSource.kt"], "class LocalDataSourceImpl : LocalDataSource")
}

func TestNetwork(t *testing.T) {
	g := newGenerator(t, Options{})
	ops, err := g.Network(Inventory{})
	require.NoError(t, err)
	files := written(t, g, ops)

	assert.Contains(t, files[src+"network/ApiClient.kt"], "install(ContentNegotiation)")
	assert.Contains(t, files[src+"network/ApiService.kt"], "class ApiServiceImpl(")
	assert.Contains(t, files[src+"network/models/ApiResponse.kt"], "package com.example.tasks.network.models")
}

func TestFirebase(t *testing.T) {
	from := t.TempDir()
	g := newGenerator(t, Options{FromDir: from})
	ops, err := g.Firebase(Inventory{UsesFirebase: true})
	require.NoError(t, err)
	files := written(t, g, ops)
	assert.Contains(t, files[src+"services/FirebaseAuthService.kt"], "class FirebaseAuthService(")
	assert.Contains(t, files["app/google-services.json"], `"package_name": "com.example.tasks"`)

	writeTree(t, from, map[string]string{"google-services.json": "{}"})
	ops, err = g.Firebase(Inventory{UsesFirebase: true})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(from, "google-services.json"),
		copies(ops)[filepath.Join(g.opts.OutputDir, "app", "google-services.json")])
	assert.NotContains(t, written(t, g, ops), "app/google-services.json")
}
