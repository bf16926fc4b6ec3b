// sqllint verifies that every SQL string literal in the tree opens with an
// "--sql <uuid>" audit marker, the convention the SQL runner relies on to
// log statements by identity instead of by text.
package main

import (
	"flag"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

var (
	sqlPattern    = regexp.MustCompile(`(?i)\b(select|insert|update|delete|create|with)\b`)
	markerPattern = regexp.MustCompile(`^--sql [0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)
)

type finding struct {
	file    string
	line    int
	context string
}

func main() {
	flag.Parse()
	targets := flag.Args()
	if len(targets) == 0 {
		targets = []string{"./internal"}
	}

	var findings []finding
	for _, target := range targets {
		found, err := collect(target)
		if err != nil {
			fmt.Fprintf(os.Stderr, "sqllint: %v\n", err)
			os.Exit(1)
		}
		findings = append(findings, found...)
	}

	if len(findings) > 0 {
		fmt.Fprintln(os.Stderr, "sqllint: SQL literals without audit markers")
		for _, f := range findings {
			fmt.Fprintf(os.Stderr, "  %s:%d (%s)\n", f.file, f.line, f.context)
		}
		os.Exit(1)
	}
}

func collect(target string) ([]finding, error) {
	info, err := os.Stat(target)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		if filepath.Ext(target) != ".go" {
			return nil, nil
		}
		return lintFile(target)
	}

	var findings []finding
	err = filepath.WalkDir(target, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") || d.Name() == "vendor" || strings.HasPrefix(d.Name(), "_") {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".go" || strings.HasSuffix(path, "_test.go") {
			return nil
		}
		found, err := lintFile(path)
		if err != nil {
			return err
		}
		findings = append(findings, found...)
		return nil
	})
	return findings, err
}

func lintFile(path string) ([]finding, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, path, nil, parser.ParseComments)
	if err != nil {
		return nil, err
	}

	var findings []finding
	check := func(bl *ast.BasicLit, context string) {
		raw, err := unquote(bl.Value)
		if err != nil || !sqlPattern.MatchString(raw) {
			return
		}
		if markerPattern.MatchString(firstLine(raw)) {
			return
		}
		pos := fset.Position(bl.Pos())
		findings = append(findings, finding{file: path, line: pos.Line, context: context})
	}

	ast.Inspect(file, func(n ast.Node) bool {
		vs, ok := n.(*ast.ValueSpec)
		if !ok {
			return true
		}
		name := specName(vs)
		for _, value := range vs.Values {
			switch v := value.(type) {
			case *ast.BasicLit:
				if v.Kind == token.STRING {
					check(v, name)
				}
			case *ast.CompositeLit:
				// Covers []string schema slices.
				for _, elt := range v.Elts {
					if bl, ok := elt.(*ast.BasicLit); ok && bl.Kind == token.STRING {
						check(bl, name)
					}
				}
			}
		}
		return true
	})
	return findings, nil
}

func firstLine(s string) string {
	s = strings.TrimLeft(s, "\n\r \t")
	if idx := strings.IndexAny(s, "\n\r"); idx >= 0 {
		return strings.TrimSpace(s[:idx])
	}
	return strings.TrimSpace(s)
}

func unquote(v string) (string, error) {
	if len(v) == 0 {
		return v, nil
	}
	if v[0] == '`' {
		return v[1 : len(v)-1], nil
	}
	return strconv.Unquote(v)
}

func specName(vs *ast.ValueSpec) string {
	parts := make([]string, 0, len(vs.Names))
	for _, ident := range vs.Names {
		if ident != nil {
			parts = append(parts, ident.Name)
		}
	}
	return strings.Join(parts, ",")
}
