package bookmark_test

import (
	"go/build"
	"strings"
	"testing"
)

func TestBrowserBuildLeavesOutHTTPHandlers(t *testing.T) {
	ctx := build.Default
	ctx.GOOS, ctx.GOARCH, ctx.CgoEnabled = "js", "wasm", false

	pkg, err := ctx.ImportDir(".", 0)
	if err != nil {
		t.Fatalf("import for js/wasm: %v", err)
	}
	for _, imp := range pkg.Imports {
		if strings.HasSuffix(imp, "/internal/auth") || strings.HasPrefix(imp, "github.com/gorilla/") {
			t.Errorf("js/wasm build imports %s", imp)
		}
	}
}
