package flows

import (
	"fmt"
	"path"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"demoreel/internal/analyzer"
)

func analysisWith(keyFiles ...analyzer.FileRecord) *analyzer.Result {
	return &analyzer.Result{KeyFiles: keyFiles}
}

func kf(relPath, content string) analyzer.FileRecord {
	return analyzer.FileRecord{
		RelPath:  relPath,
		Ext:      path.Ext(relPath),
		Content:  content,
		Category: analyzer.CategorySource,
	}
}

func TestAuthFlowSteps(t *testing.T) {
	a := analysisWith(
		kf("src/auth/signup.ts", ""),
		kf("src/auth/login.ts", ""),
		kf("lib/session.ts", ""),
	)
	res := Extract(a)

	require.Len(t, res.Flows, 1)
	flow := res.Flows[0]
	assert.Equal(t, FlowAuthentication, flow.Type)
	assert.Equal(t, []string{
		"Create a new account",
		"Log in with credentials",
		"Maintain an authenticated session",
		"Access protected features",
	}, flow.Steps)
}

func TestAuthFlowPartialSteps(t *testing.T) {
	// Only login files present: no signup or session steps.
	a := analysisWith(kf("pages/login.tsx", ""))
	res := Extract(a)

	require.Len(t, res.Flows, 1)
	assert.Equal(t, []string{
		"Log in with credentials",
		"Access protected features",
	}, res.Flows[0].Steps)
}

func TestAuthFlowLoginAndSessionOnly(t *testing.T) {
	a := analysisWith(
		kf("src/auth/login.ts", ""),
		kf("src/auth/session.ts", ""),
	)
	res := Extract(a)

	require.Len(t, res.Flows, 1)
	steps := res.Flows[0].Steps
	assert.Contains(t, steps, "Log in with credentials")
	assert.Contains(t, steps, "Maintain an authenticated session")
	assert.NotContains(t, steps, "Create a new account")
}

func TestAuthFlowAbsent(t *testing.T) {
	a := analysisWith(kf("src/index.ts", ""))
	res := Extract(a)
	for _, flow := range res.Flows {
		assert.NotEqual(t, FlowAuthentication, flow.Type)
	}
}

func TestDataFlowRequiresBothKeywordGroups(t *testing.T) {
	// CRUD keyword alone is not enough; the same path must also contain an
	// API keyword.
	crudOnly := analysisWith(kf("src/createUser.ts", ""))
	assert.Empty(t, Extract(crudOnly).Flows)

	both := analysisWith(kf("api/users/create.ts", ""))
	res := Extract(both)
	require.Len(t, res.Flows, 1)
	assert.Equal(t, FlowDataManagement, res.Flows[0].Type)
	assert.Len(t, res.Flows[0].Steps, 4)
}

func TestFormFlowFromContent(t *testing.T) {
	a := analysisWith(kf("src/pages/contact.tsx", "<form onSubmit={handleSubmit}>"))
	res := Extract(a)
	require.Len(t, res.Flows, 1)
	assert.Equal(t, FlowUIInteraction, res.Flows[0].Type)
	assert.Len(t, res.Flows[0].Steps, 5)
}

func TestRouterCallEndpoints(t *testing.T) {
	a := analysisWith(kf("src/api/server.ts", `
router.get('/users')
router.post("/users")
app.delete('/users/:id')
`))
	res := Extract(a)

	require.Len(t, res.Endpoints, 3)
	assert.Equal(t, "GET", res.Endpoints[0].Method)
	assert.Equal(t, "/users", res.Endpoints[0].Path)
	assert.Equal(t, "DELETE", res.Endpoints[2].Method)
	assert.Equal(t, "/users/:id", res.Endpoints[2].Path)
}

func TestConventionEndpoints(t *testing.T) {
	a := analysisWith(kf("app/api/users/route.ts", "export async function GET() {}\nexport function POST() {}"))
	res := Extract(a)

	require.Len(t, res.Endpoints, 2)
	assert.Equal(t, "GET", res.Endpoints[0].Method)
	assert.Equal(t, "/api/users", res.Endpoints[0].Path)
	assert.Equal(t, "POST", res.Endpoints[1].Method)
	assert.Equal(t, "/api/users", res.Endpoints[1].Path)
}

func TestEndpointsNotDeduplicated(t *testing.T) {
	// A route file that also registers routes explicitly is reported by both
	// passes.
	a := analysisWith(kf("app/api/items/route.ts", `
handler.get('/api/items')
export async function GET() {}
`))
	res := Extract(a)
	assert.Len(t, res.Endpoints, 2)
}

func TestRoutePathFromFile(t *testing.T) {
	tests := []struct {
		file string
		want string
	}{
		{"app/api/users/route.ts", "/api/users"},
		{"src/app/api/items/route.ts", "/api/items"},
		{"app/route.ts", "/"},
		{"route.ts", "/"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, routePathFromFile(tt.file), tt.file)
	}
}

func TestRoutingFeatureNeedsFramework(t *testing.T) {
	a := analysisWith(kf("src/pages/home.tsx", ""))
	res := Extract(a)
	for _, f := range res.Features {
		assert.NotEqual(t, "Page Routing", f.Name)
	}

	a.Stack.Frameworks = []string{"Next.js"}
	res = Extract(a)
	names := featureNames(res.Features)
	assert.Contains(t, names, "Page Routing")
}

func TestDatabaseFeature(t *testing.T) {
	a := analysisWith(kf("prisma/schema.prisma", ""))
	a.Dependencies = []string{"prisma"}
	res := Extract(a)
	names := featureNames(res.Features)
	assert.Contains(t, names, "Database Integration")
}

func TestExtractComponentsDedupe(t *testing.T) {
	a := analysisWith(kf("src/components/Button.tsx", `
export function Button() {}
export const Button = () => {}
export default class Card {}
export const helper = 1
`))
	res := Extract(a)
	assert.Equal(t, []string{"Button", "Card"}, res.Components)
}

func TestExtractComponentsCap(t *testing.T) {
	content := ""
	for i := 0; i < 60; i++ {
		content += fmt.Sprintf("export function Comp%02d() {}\n", i)
	}
	a := analysisWith(kf("src/components/all.tsx", content))
	res := Extract(a)
	assert.Len(t, res.Components, maxComponentNames)
}

func TestExtractModelsExcludesPropShapes(t *testing.T) {
	a := analysisWith(kf("src/types.ts", `
interface User {}
interface ButtonProps {}
type AppState = {}
type Order = {}
`))
	res := Extract(a)
	assert.Equal(t, []string{"User", "Order"}, res.Models)
}

func featureNames(features []Feature) []string {
	var names []string
	for _, f := range features {
		names = append(names, f.Name)
	}
	return names
}
