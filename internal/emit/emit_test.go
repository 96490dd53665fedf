package emit

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simonhull/firebird-suite/magpie/internal/brackets"
	"github.com/simonhull/firebird-suite/magpie/internal/compose"
	"github.com/simonhull/firebird-suite/magpie/internal/swift"
)

func newEmitter(opts Options) *Emitter {
	opts.Layout = Layout{Base: "com.example.app", Root: "out"}
	return New(opts)
}

func emit(t *testing.T, e *Emitter, role Role, src, filename string) GeneratedFile {
	t.Helper()
	f, err := e.Emit(role, swift.Scan(src), src, filename)
	require.NoError(t, err)
	require.True(t, brackets.Count(f.Content).Balanced(), "unbalanced output:\n%s", f.Content)
	return f
}

func TestRoute(t *testing.T) {
	tests := []struct {
		name     string
		category Role
		want     Role
	}{
		{"HomeViewModel", RoleModel, RoleViewModel},
		{"UserRepository", RoleModel, RoleRepository},
		{"UserRepositoryProtocol", RoleView, RoleRepository},
		{"NetworkService", RoleModel, RoleService},
		{"ProfileView", RoleModel, RoleView},
		{"User", RoleModel, RoleModel},
		{"Settings", RoleView, RoleView},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Route(&swift.Unit{ClassName: tt.name}, tt.category))
		})
	}
}

func TestLayout(t *testing.T) {
	l := Layout{Base: "com.example.app", Root: "app/src/main/java"}

	assert.Equal(t, "com.example.app", l.Package(""))
	assert.Equal(t, "com.example.app.ui.screens", l.Package(SubScreens))
	assert.Equal(t, filepath.Join("app/src/main/java", "com/example/app/ui/screens", "HomeScreen.kt"), l.File(SubScreens, "HomeScreen"))
}

func TestModel_DataClass(t *testing.T) {
	f := emit(t, newEmitter(Options{}), RoleModel, `import Foundation

struct User: Codable {
    let name: String
    let age: Int
    var nickname: String? = nil
}
`, "User.swift")

	assert.Equal(t, filepath.Join("out", "com/example/app/models", "User.kt"), f.Path)
	assert.True(t, strings.HasPrefix(f.Content, "package com.example.app.models\n"))
	assert.Contains(t, f.Content, "import kotlinx.serialization.Serializable")
	assert.Contains(t, f.Content, "@Serializable\ndata class User(")
	assert.Contains(t, f.Content, "    val name: String,")
	assert.Contains(t, f.Content, "    val age: Int,")
	assert.Contains(t, f.Content, "    val nickname: String? = null\n)")
}

func TestModel_SkipsLocalsAndComputed(t *testing.T) {
	f := emit(t, newEmitter(Options{}), RoleModel, `struct Order {
    let total: Double
    static let shared: Order = Order(total: 0)
    var label: String {
        let prefix: String = "#"
        return prefix
    }
    func discounted(by rate: Double) -> Double {
        let result: Double = total * rate
        return result
    }
}
`, "Order.swift")

	assert.Contains(t, f.Content, "val total: Double")
	assert.NotContains(t, f.Content, "val shared")
	assert.NotContains(t, f.Content, "val label")
	assert.NotContains(t, f.Content, "val prefix")
	assert.NotContains(t, f.Content, "val result")
	assert.Contains(t, f.Content, `fun discounted(rate: Double): Double = TODO("Port discounted")`)
}

func TestModel_Enum(t *testing.T) {
	f := emit(t, newEmitter(Options{}), RoleModel, `enum Status: String, Codable {
    case active
    case inProgress = "in_progress"
}
`, "Status.swift")

	assert.Contains(t, f.Content, "enum class Status(val rawValue: String) {")
	assert.Contains(t, f.Content, `    ACTIVE("active"),`)
	assert.Contains(t, f.Content, `    IN_PROGRESS("in_progress");`)
}

func TestModel_SwiftDataAdapter(t *testing.T) {
	f := emit(t, newEmitter(Options{}), RoleModel, `import SwiftData

@Model
class Note {
    var title: String = ""
}
`, "Note.swift")

	assert.Contains(t, f.Content, "object NoteAdapter : ColumnAdapter<Note, String> {")
	assert.Contains(t, f.Content, "import app.cash.sqldelight.ColumnAdapter")
	assert.Contains(t, f.Content, "import kotlinx.serialization.json.Json")
}

func TestViewModel(t *testing.T) {
	f := emit(t, newEmitter(Options{}), RoleViewModel, `import Foundation

class HomeViewModel: ObservableObject {
    @Published var items: [String] = []
    @Published var isLoading: Bool = false
    private let repository: TaskRepository

    init(repository: TaskRepository) {
        self.repository = repository
    }

    func refresh() {
        isLoading = true
    }
}
`, "HomeViewModel.swift")

	assert.Equal(t, filepath.Join("out", "com/example/app/viewmodels", "HomeViewModel.kt"), f.Path)
	assert.Contains(t, f.Content, "class HomeViewModel(\n    private val repository: TaskRepository\n) : ViewModel() {")
	assert.Contains(t, f.Content, "private val _items = MutableStateFlow<List<String>>(emptyList())")
	assert.Contains(t, f.Content, "val items: StateFlow<List<String>> = _items.asStateFlow()")
	assert.Contains(t, f.Content, "    init {\n        loadData()\n    }")
	assert.Contains(t, f.Content, "private fun loadData() {")
	assert.Contains(t, f.Content, "    fun refresh() {\n        viewModelScope.launch {\n            _isLoading.value = true\n            try {\n                // isLoading = true")
	assert.Contains(t, f.Content, "} finally {\n                _isLoading.value = false")
	assert.Contains(t, f.Content, "import com.example.app.repositories.*")
	assert.Contains(t, f.Content, "import androidx.lifecycle.viewModelScope")
	assert.NotContains(t, f.Content, "UiState")
	assert.Equal(t, "HomeViewModel", f.Name)
	assert.Equal(t, 1, f.Args)
}

func TestViewModel_UiStateFallback(t *testing.T) {
	f := emit(t, newEmitter(Options{}), RoleViewModel, `class SettingsViewModel: ObservableObject {
    func loadData() {
    }
}
`, "SettingsViewModel.swift")

	assert.Contains(t, f.Content, "class SettingsViewModel : ViewModel() {")
	assert.Contains(t, f.Content, "private val _uiState = MutableStateFlow(SettingsViewModelUiState())")
	assert.Contains(t, f.Content, "data class SettingsViewModelUiState(")
	assert.Contains(t, f.Content, "_uiState.value = _uiState.value.copy(errorMessage = e.message)")
	assert.Equal(t, 1, strings.Count(f.Content, "fun loadData()"))
}

func TestService_SuspendUnit(t *testing.T) {
	f := emit(t, newEmitter(Options{}), RoleService, `protocol APIService {
    func fetch() async throws
}
`, "APIService.swift")

	assert.Equal(t, filepath.Join("out", "com/example/app/services", "APIService.kt"), f.Path)
	assert.Contains(t, f.Content, "interface APIService {\n    suspend fun fetch(): Unit\n}")
	assert.Contains(t, f.Content, "class APIServiceImpl(\n    private val client: HttpClient\n) : APIService {")
	assert.Contains(t, f.Content, "override suspend fun fetch(): Unit = withContext(Dispatchers.IO) {")
	assert.Contains(t, f.Content, "throw e")
	assert.Contains(t, f.Content, "import io.ktor.client.HttpClient")
	assert.NotContains(t, f.Content, "TODO(")
}

func TestService_Firebase(t *testing.T) {
	f := emit(t, newEmitter(Options{UsesFirebase: true}), RoleService, `class AuthService {
    func currentUserID() -> String? {
        return nil
    }
}
`, "AuthService.swift")

	assert.Contains(t, f.Content, "private val auth: FirebaseAuth")
	assert.Contains(t, f.Content, `TODO("Port currentUserID")`)
	assert.Contains(t, f.Content, "// return nil")
	assert.Equal(t, 2, f.Args)
}

func TestRepository(t *testing.T) {
	f := emit(t, newEmitter(Options{Models: []string{"Task"}}), RoleRepository, `class TaskRepository {
    func fetchTasks() async throws -> [Task] {
        return []
    }

    func save(_ task: Task) async throws {
    }
}
`, "TaskRepository.swift")

	assert.Equal(t, filepath.Join("out", "com/example/app/repositories", "TaskRepository.kt"), f.Path)
	assert.Contains(t, f.Content, "interface TaskRepository {")
	assert.Contains(t, f.Content, "    fun fetchTasks(): Flow<List<Task>>\n")
	assert.Contains(t, f.Content, "    suspend fun save(task: Task): Unit\n")
	assert.Contains(t, f.Content, "class TaskRepositoryImpl(\n    private val localDataSource: LocalDataSource,\n    private val remoteDataSource: RemoteDataSource\n) : TaskRepository {")
	assert.Contains(t, f.Content, "}.flowOn(Dispatchers.IO)")
	assert.Contains(t, f.Content, "// return []")
	assert.Contains(t, f.Content, "import com.example.app.data.local.LocalDataSource")
	assert.Contains(t, f.Content, "import com.example.app.models.*")
	assert.Contains(t, f.Content, "import kotlinx.coroutines.flow.flowOn")
	assert.Equal(t, "TaskRepository", f.Name)
	assert.Equal(t, 2, f.Args)
}

func TestRepositoryBase(t *testing.T) {
	assert.Equal(t, "Task", RepositoryBase("TaskRepository"))
	assert.Equal(t, "Task", RepositoryBase("TaskRepositoryProtocol"))
	assert.Equal(t, "Task", RepositoryBase("TaskRepositoryImpl"))
	assert.Equal(t, "Repository", RepositoryBase("Repository"))
}

func TestIsScreen(t *testing.T) {
	tests := []struct {
		filename string
		content  string
		want     bool
	}{
		{"HomeView.swift", "", true},
		{"SettingsScreen.swift", "", true},
		{"ItemRowView.swift", "", false},
		{"ProfileCard.swift", "", false},
		{"ItemRowView.swift", "NavigationLink(\"x\", destination: D())", true},
		{"Avatar.swift", "", false},
		{"Root.swift", "TabView {", true},
	}
	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			assert.Equal(t, tt.want, IsScreen(tt.filename, tt.content))
		})
	}
}

func TestComposableName(t *testing.T) {
	assert.Equal(t, "HomeScreen", ComposableName("HomeView", true))
	assert.Equal(t, "SettingsScreen", ComposableName("SettingsScreen", true))
	assert.Equal(t, "ItemRowView", ComposableName("ItemRowView", false))
}

func TestView_Screen(t *testing.T) {
	e := newEmitter(Options{Models: []string{"User"}})
	f := emit(t, e, RoleView, `import SwiftUI

struct ProfileView: View {
    let user: User
    @State private var count: Int = 0

    var body: some View {
        VStack {
            header
            Text(user.name)
            Button("Add") { count += 1 }
        }
    }

    private var header: some View {
        Text("Profile")
            .font(.title)
    }
}
`, "ProfileView.swift")

	assert.Equal(t, filepath.Join("out", "com/example/app/ui/screens", "ProfileScreen.kt"), f.Path)
	assert.Contains(t, f.Content, "@Composable\nfun ProfileScreen(\n    user: User,\n    navController: NavController = rememberNavController(),\n    modifier: Modifier = Modifier\n) {")
	assert.Contains(t, f.Content, "var count by remember { mutableStateOf<Int>(0) }")
	assert.Contains(t, f.Content, "modifier = modifier.fillMaxSize(),")
	assert.Contains(t, f.Content, "Header()")
	assert.Contains(t, f.Content, "Text(text = user.name)")
	assert.Contains(t, f.Content, "private fun Header(modifier: Modifier = Modifier) {")
	assert.Contains(t, f.Content, "style = MaterialTheme.typography.headlineMedium")
	assert.Contains(t, f.Content, "import androidx.navigation.NavController")
	assert.Contains(t, f.Content, "import com.example.app.models.*")
	assert.NotContains(t, f.Content, "@State")
	assert.NotContains(t, f.Content, "@Preview", "a required User parameter has no preview value")
}

func TestView_Component(t *testing.T) {
	f := emit(t, newEmitter(Options{}), RoleView, `struct ItemRowView: View {
    let title: String

    var body: some View {
        Text(title)
    }
}
`, "ItemRowView.swift")

	assert.Equal(t, filepath.Join("out", "com/example/app/ui/components", "ItemRowView.kt"), f.Path)
	assert.Contains(t, f.Content, "fun ItemRowView(\n    title: String,\n    modifier: Modifier = Modifier\n)")
	assert.Contains(t, f.Content, "modifier = modifier,")
	assert.Contains(t, f.Content, "        Text(text = title)")
	assert.Contains(t, f.Content, "@Preview(showBackground = true)")
	assert.Contains(t, f.Content, `ItemRowView(title = "")`)
	assert.Contains(t, f.Content, "import com.example.app.ui.theme.AppTheme")
	assert.NotContains(t, f.Content, "NavController")
}

func TestView_ScreenOverride(t *testing.T) {
	e := newEmitter(Options{Screens: map[string]bool{"ItemRowView": true}})
	f := emit(t, e, RoleView, `struct ItemRowView: View {
    var body: some View {
        Text("Row")
    }
}
`, "ItemRowView.swift")

	assert.Equal(t, filepath.Join("out", "com/example/app/ui/screens", "ItemRowScreen.kt"), f.Path)
	assert.Equal(t, "ItemRowScreen", f.Name)
	assert.Contains(t, f.Content, "navController: NavController")
}

func TestView_ReferencesOtherViews(t *testing.T) {
	e := newEmitter(Options{Views: map[string]compose.ViewRef{
		"ItemRowView": {Name: "ItemRowView"},
		"DetailView":  {Name: "DetailScreen", Screen: true},
	}})
	f := emit(t, e, RoleView, `struct HomeView: View {
    @State private var showSheet = false

    var body: some View {
        List {
            ItemRowView(title: "A")
        }
        .sheet(isPresented: $showSheet) {
            DetailView()
        }
    }
}
`, "HomeView.swift")

	assert.Contains(t, f.Content, "ItemRowView(title = \"A\")")
	assert.Contains(t, f.Content, "DetailScreen(navController = navController)")
	assert.Contains(t, f.Content, "import com.example.app.ui.components.ItemRowView")
	assert.NotContains(t, f.Content, "import com.example.app.ui.screens.DetailScreen")
	assert.Contains(t, f.Content, "@OptIn(ExperimentalMaterial3Api::class)\n@Composable\nfun HomeScreen(")
}

func TestView_TaskUsesCoroutineScope(t *testing.T) {
	f := emit(t, newEmitter(Options{}), RoleView, `struct SyncView: View {
    var body: some View {
        Button("Sync") {
            Task {
                await sync()
            }
        }
    }
}
`, "SyncView.swift")

	assert.Contains(t, f.Content, "val coroutineScope = rememberCoroutineScope()")
	assert.Contains(t, f.Content, "coroutineScope.launch {")
	assert.Contains(t, f.Content, "import kotlinx.coroutines.launch")
}

func TestGeneratedFile_Operation(t *testing.T) {
	op := GeneratedFile{Path: "out/A.kt", Content: "x"}.Operation()
	assert.Contains(t, op.Description(), "A.kt")
}
