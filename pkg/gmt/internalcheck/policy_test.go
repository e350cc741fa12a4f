package internalcheck

import (
	"fmt"
	"go/ast"
	"strings"
	"testing"

	"golang.org/x/tools/go/packages"
)

const libraryPattern = "github.com/geobind/gmt-go/pkg/gmt/..."

// forbidden maps package paths to the functions library code must not call.
// An empty set forbids the whole package.
var forbidden = map[string]map[string]string{
	"fmt": {
		"Print":   "use the logging facade",
		"Printf":  "use the logging facade",
		"Println": "use the logging facade",
	},
	"log": {
		"": "use the logging facade",
	},
	"os": {
		"Exit":       "return an error",
		"Open":       "go through afero.Fs",
		"OpenFile":   "go through afero.Fs",
		"Create":     "go through afero.Fs",
		"CreateTemp": "go through afero.Fs",
		"ReadFile":   "go through afero.Fs",
		"WriteFile":  "go through afero.Fs",
		"Remove":     "go through afero.Fs",
		"RemoveAll":  "go through afero.Fs",
		"Mkdir":      "go through afero.Fs",
		"MkdirAll":   "go through afero.Fs",
		"Stat":       "go through afero.Fs",
	},
}

func loadLibrary(t *testing.T) []*packages.Package {
	t.Helper()
	cfg := &packages.Config{
		Mode: packages.NeedSyntax | packages.NeedTypes | packages.NeedTypesInfo | packages.NeedFiles | packages.NeedName,
	}
	pkgs, err := packages.Load(cfg, libraryPattern)
	if err != nil {
		t.Fatalf("load packages: %v", err)
	}
	if packages.PrintErrors(pkgs) > 0 {
		t.Fatalf("packages contain errors")
	}
	return pkgs
}

func TestLibraryCallPolicy(t *testing.T) {
	var findings []string
	for _, pkg := range loadLibrary(t) {
		for _, file := range pkg.Syntax {
			ast.Inspect(file, func(n ast.Node) bool {
				sel, ok := n.(*ast.SelectorExpr)
				if !ok {
					return true
				}
				obj := pkg.TypesInfo.Uses[sel.Sel]
				if obj == nil || obj.Pkg() == nil {
					return true
				}
				rules, ok := forbidden[obj.Pkg().Path()]
				if !ok {
					return true
				}
				reason, hit := rules[obj.Name()]
				if !hit {
					reason, hit = rules[""]
				}
				if hit {
					pos := pkg.Fset.Position(sel.Pos())
					findings = append(findings, fmt.Sprintf("%s: %s.%s: %s", pos, obj.Pkg().Name(), obj.Name(), reason))
				}
				return true
			})
		}
	}
	if len(findings) > 0 {
		t.Fatalf("library call policy violation:\n%s", strings.Join(findings, "\n"))
	}
}
