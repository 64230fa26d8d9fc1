// Package parser evaluates Starlark BUILD files into build.Package
// records. Rule calls are recorded generically from their keyword
// arguments, so repository-local macros parse without special cases.
package parser

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/depscope-dev/depscope/pkg/build"
	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// BuildFileNames are the file names recognized as package manifests,
// in priority order. When a directory has both, BUILD.bazel wins.
var BuildFileNames = []string{"BUILD.bazel", "BUILD"}

// Parser evaluates BUILD files beneath a workspace root.
type Parser struct {
	// Root is the absolute workspace root directory.
	Root string
}

// New creates a parser for the given workspace root.
func New(root string) *Parser {
	return &Parser{Root: root}
}

// ParseFile evaluates a single BUILD file. The package path is derived
// from the file's directory relative to the workspace root.
func (p *Parser) ParseFile(buildFile string) (*build.Package, error) {
	src, err := os.ReadFile(buildFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read build file: %w", err)
	}

	pkgPath, err := p.packagePath(buildFile)
	if err != nil {
		return nil, err
	}
	return p.ParseContent(pkgPath, buildFile, src)
}

// ParseContent evaluates BUILD file content for the given package path.
func (p *Parser) ParseContent(pkgPath, buildFile string, src []byte) (*build.Package, error) {
	rec := &recorder{
		pkg: &build.Package{
			Path:      pkgPath,
			BuildFile: buildFile,
		},
		dir: filepath.Dir(buildFile),
	}

	opts := &syntax.FileOptions{
		Set:             true,
		GlobalReassign:  true,
		TopLevelControl: true,
		Recursion:       true,
	}

	// Pre-scan load() statements so loaded symbols resolve to generic
	// rule recorders. BUILD macros are opaque at this layer; what matters
	// is the attribute surface of each call.
	loads, err := scanLoads(opts, buildFile, src)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", buildFile, err)
	}

	thread := &starlark.Thread{
		Name: "//" + pkgPath,
		Load: func(_ *starlark.Thread, module string) (starlark.StringDict, error) {
			symbols, ok := loads[module]
			if !ok {
				return starlark.StringDict{}, nil
			}
			dict := make(starlark.StringDict, len(symbols))
			for _, sym := range symbols {
				dict[sym] = rec.ruleBuiltin(sym)
			}
			return dict, nil
		},
		Print: func(_ *starlark.Thread, _ string) {
			// BUILD files have no business printing; drop it.
		},
	}

	if _, err := starlark.ExecFileOptions(opts, thread, buildFile, src, rec.predeclared()); err != nil {
		var evalErr *starlark.EvalError
		if errors.As(err, &evalErr) {
			return nil, fmt.Errorf("failed to evaluate %s: %s", buildFile, evalErr.Backtrace())
		}
		return nil, fmt.Errorf("failed to evaluate %s: %w", buildFile, err)
	}

	rec.finalize()
	return rec.pkg, nil
}

// packagePath maps a BUILD file path to its package path relative to
// the workspace root ("" for the root package).
func (p *Parser) packagePath(buildFile string) (string, error) {
	rel, err := filepath.Rel(p.Root, filepath.Dir(buildFile))
	if err != nil {
		return "", fmt.Errorf("build file %s outside workspace root: %w", buildFile, err)
	}
	if rel == "." {
		return "", nil
	}
	if strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("build file %s outside workspace root", buildFile)
	}
	return filepath.ToSlash(rel), nil
}

// scanLoads collects load() statements: module path -> loaded symbols.
func scanLoads(opts *syntax.FileOptions, filename string, src []byte) (map[string][]string, error) {
	f, err := opts.Parse(filename, src, 0)
	if err != nil {
		return nil, err
	}

	loads := make(map[string][]string)
	for _, stmt := range f.Stmts {
		ls, ok := stmt.(*syntax.LoadStmt)
		if !ok {
			continue
		}
		module, ok := ls.Module.Value.(string)
		if !ok {
			continue
		}
		for _, ident := range ls.From {
			loads[module] = append(loads[module], ident.Name)
		}
	}
	return loads, nil
}
