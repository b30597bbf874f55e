//go:build integration

package integration

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simonhull/firebird-suite/weaver/internal/catalog"
	"github.com/simonhull/firebird-suite/weaver/internal/testing/testutil"
)

var weaverBin string

// TestMain builds the weaver binary once, unless WEAVER_BIN points at one.
func TestMain(m *testing.M) {
	if bin := os.Getenv("WEAVER_BIN"); bin != "" {
		weaverBin = bin
		os.Exit(m.Run())
	}

	dir, err := os.MkdirTemp("", "weaver-integration")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	weaverBin = filepath.Join(dir, "weaver")
	build := exec.Command("go", "build", "-o", weaverBin, "../../cmd/weaver")
	if out, err := build.CombinedOutput(); err != nil {
		fmt.Fprintf(os.Stderr, "building weaver: %v\n%s", err, out)
		os.Exit(1)
	}
	code := m.Run()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

const goMain = `package main

import (
	"fmt"
	"net/http"
)

func main() {
	mux := http.NewServeMux()
	//^^ Routes
	fmt.Println("listening on :8080")
	_ = http.ListenAndServe(":8080", mux)
}
`

const healthRoute = `//{[{ Routes
	mux.HandleFunc("/healthz", health)
//}]}
`

const handlerRoute = `//{[{ Routes
	mux.HandleFunc("/Widget", handleWidget)
//}]}
`

func goCatalog(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	testutil.WriteCatalog(t, dir,
		testutil.Rec("Proj.Service", catalog.TypeProject,
			testutil.ProjectTypes("Service"),
			testutil.Platform("Go", "Go"),
			testutil.File("go.mod", "module Param_ProjectName\n\ngo 1.21\n"),
			testutil.File("main.go", goMain),
		),
		testutil.Rec("Feat.Health", catalog.TypeFeature,
			testutil.Platform("Go", "Go"),
			testutil.RightClick(),
			testutil.File("health.go", "package main\n\nimport \"net/http\"\n\nfunc health(w http.ResponseWriter, _ *http.Request) {\n\tw.WriteHeader(http.StatusOK)\n}\n"),
			testutil.File("main_postaction.go", healthRoute),
		),
		testutil.Rec("Page.Handler", catalog.TypePage,
			testutil.Platform("Go", "Go"),
			testutil.RightClick(),
			testutil.SourceName("Widget"),
			testutil.File("handler_Widget.go", "package main\n\nimport \"net/http\"\n\nfunc handleWidget(w http.ResponseWriter, _ *http.Request) {\n\t_, _ = w.Write([]byte(\"Widget\"))\n}\n"),
			testutil.File("main_postaction.go", handlerRoute),
		),
	)
	return dir
}

func TestGenerateAddBuild(t *testing.T) {
	if _, err := exec.LookPath("go"); err != nil {
		t.Skip("go toolchain not on PATH")
	}
	p := testutil.NewTestProject(t, weaverBin, goCatalog(t), "inventory")

	_, err := p.RunWeaver("new", p.Name, "-t", "Service", "-p", "Go", "-l", "Go", "-i", "Feat.Health", "--check-syntax")
	require.NoError(t, err)
	assert.True(t, p.FileExists("go.mod"))
	assert.True(t, p.FileExists("health.go"))
	assert.True(t, p.FileExists("weaver.yml"))

	gomod, err := p.ReadFile("go.mod")
	require.NoError(t, err)
	assert.Contains(t, gomod, "module inventory")

	_, err = p.RunWeaver("add", "Page.Handler:Orders", "--skip")
	require.NoError(t, err)
	assert.True(t, p.FileExists("handler_Orders.go"))

	main, err := p.ReadFile("main.go")
	require.NoError(t, err)
	health := strings.Index(main, `"/healthz"`)
	orders := strings.Index(main, `"/Orders", handleOrders`)
	require.True(t, health >= 0 && orders >= 0, main)
	assert.Less(t, health, orders)
	assert.Contains(t, main, "//^^ Routes")

	out, err := p.RunWeaver("build")
	require.NoError(t, err)
	assert.Contains(t, out, "inventory builds on Go")
}

func TestAddTwiceUsesFreshItemNames(t *testing.T) {
	p := testutil.NewTestProject(t, weaverBin, goCatalog(t), "catalogsvc")

	_, err := p.RunWeaver("new", p.Name, "-t", "Service", "-p", "Go", "-l", "Go")
	require.NoError(t, err)

	_, err = p.RunWeaver("add", "Page.Handler", "--skip")
	require.NoError(t, err)
	_, err = p.RunWeaver("add", "Page.Handler", "--skip")
	require.NoError(t, err)

	assert.True(t, p.FileExists("handler_Handler.go"))
	assert.True(t, p.FileExists("handler_Handler1.go"))

	main, err := p.ReadFile("main.go")
	require.NoError(t, err)
	assert.Contains(t, main, "handleHandler)")
	assert.Contains(t, main, "handleHandler1)")
}
