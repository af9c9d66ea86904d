package architecture_test

import (
	"bufio"
	"fmt"
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

type importEdge struct {
	file string // relative to the module root
	imp  string
}

// TestImportBoundaries keeps the layers pointing one way:
// domain <- platform <- data <- modules <- http <- app.
func TestImportBoundaries(t *testing.T) {
	modulePath, edges := internalImports(t)

	var bad []string
	for _, e := range edges {
		for _, rule := range disallowedImports(modulePath, layerFor(e.file)) {
			if strings.HasPrefix(e.imp, rule) {
				bad = append(bad, fmt.Sprintf("- %s imports %q (disallowed: %q)", e.file, e.imp, rule))
				break
			}
		}
	}
	if len(bad) > 0 {
		t.Fatal("import boundary violations:\n" + strings.Join(bad, "\n"))
	}
}

func TestAppOnlyImportedByCommands(t *testing.T) {
	modulePath, edges := internalImports(t)
	appPkg := modulePath + "/internal/app"

	for _, e := range edges {
		if layerFor(e.file) == "app" {
			continue
		}
		if e.imp == appPkg || strings.HasPrefix(e.imp, appPkg+"/") {
			t.Errorf("%s imports %q; only cmd/ may wire the application", e.file, e.imp)
		}
	}
}

func layerFor(rel string) string {
	for _, layer := range []string{"domain", "platform", "observability", "config", "data", "modules", "http", "app"} {
		if strings.HasPrefix(rel, "internal/"+layer+"/") {
			return layer
		}
	}
	return ""
}

func disallowedImports(modulePath string, layer string) []string {
	in := func(pkgs ...string) []string {
		out := make([]string, len(pkgs))
		for i, p := range pkgs {
			out[i] = modulePath + "/internal/" + p + "/"
		}
		return out
	}
	switch layer {
	case "domain":
		return in("platform", "data", "modules", "http", "app")
	case "platform", "observability", "config":
		return in("data", "modules", "http", "app")
	case "data":
		return in("modules", "http", "app")
	case "modules":
		return in("http", "app")
	case "http":
		return in("app")
	default:
		return nil
	}
}

// internalImports parses every .go file under internal/ and returns the
// module path with one edge per in-module import.
func internalImports(t *testing.T) (string, []importEdge) {
	t.Helper()

	start, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	root, err := findModuleRoot(start)
	if err != nil {
		t.Fatalf("find module root: %v", err)
	}
	modulePath, err := readModulePath(filepath.Join(root, "go.mod"))
	if err != nil {
		t.Fatalf("read module path: %v", err)
	}

	fset := token.NewFileSet()
	var edges []importEdge
	walkErr := filepath.WalkDir(filepath.Join(root, "internal"), func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".go") {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		f, err := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
		if err != nil {
			return err
		}
		for _, spec := range f.Imports {
			imp, err := strconv.Unquote(spec.Path.Value)
			if err != nil || !strings.HasPrefix(imp, modulePath+"/") {
				continue
			}
			edges = append(edges, importEdge{file: filepath.ToSlash(rel), imp: imp})
		}
		return nil
	})
	if walkErr != nil {
		t.Fatalf("walk internal/: %v", walkErr)
	}
	return modulePath, edges
}

func findModuleRoot(start string) (string, error) {
	dir := start
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("go.mod not found from %s", start)
		}
		dir = parent
	}
}

func readModulePath(goModPath string) (string, error) {
	f, err := os.Open(goModPath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if rest, ok := strings.CutPrefix(line, "module "); ok {
			return strings.Trim(strings.TrimSpace(rest), "\""), nil
		}
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", fmt.Errorf("module directive not found in %s", goModPath)
}
