// Command sqllint checks that every inline SQL string literal starts with a
// unique `--sql <uuid>` marker line, the audit tag SQLRunner logs.
package main

import (
	"flag"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

var (
	sqlKeywordPattern = regexp.MustCompile(`(?i)\b(select|insert|update|delete|with|create|drop|alter)\b`)
	uuidMarkerPattern = regexp.MustCompile(`^--sql [0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)
)

type violation struct {
	file    string
	name    string
	line    int
	message string
}

type linter struct {
	seen       map[string]string
	violations []violation
}

func newLinter() *linter {
	return &linter{seen: make(map[string]string)}
}

func main() {
	flag.Parse()
	targets := flag.Args()
	if len(targets) == 0 {
		targets = []string{"."}
	}

	l := newLinter()
	for _, target := range targets {
		if err := l.lintTarget(target); err != nil {
			fmt.Fprintf(os.Stderr, "sqllint: %v\n", err)
			os.Exit(1)
		}
	}

	if len(l.violations) > 0 {
		fmt.Fprintln(os.Stderr, "sqllint: SQL audit marker problems")
		for _, v := range l.violations {
			fmt.Fprintf(os.Stderr, "  %s:%d %s (%s)\n", v.file, v.line, v.message, v.name)
		}
		os.Exit(1)
	}
}

func (l *linter) lintTarget(target string) error {
	info, err := os.Stat(target)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		if filepath.Ext(target) != ".go" {
			return nil
		}
		return l.lintFile(target, nil)
	}
	return filepath.WalkDir(target, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if path != target && (strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") || name == "vendor") {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".go" || strings.HasSuffix(path, "_test.go") {
			return nil
		}
		return l.lintFile(path, nil)
	})
}

// lintFile parses path, or src when non-nil, and records violations.
func (l *linter) lintFile(path string, src any) error {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, path, src, parser.ParseComments)
	if err != nil {
		return err
	}
	ast.Inspect(file, func(n ast.Node) bool {
		vs, ok := n.(*ast.ValueSpec)
		if !ok {
			return true
		}
		name := joinNames(vs.Names)
		for _, value := range vs.Values {
			switch v := value.(type) {
			case *ast.BasicLit:
				l.check(fset, path, name, v)
			case *ast.CompositeLit:
				for i, elt := range v.Elts {
					if bl, ok := elt.(*ast.BasicLit); ok {
						l.check(fset, path, fmt.Sprintf("%s[%d]", name, i), bl)
					}
				}
			}
		}
		return true
	})
	return nil
}

func (l *linter) check(fset *token.FileSet, path, name string, bl *ast.BasicLit) {
	if bl.Kind != token.STRING {
		return
	}
	raw, err := unquote(bl.Value)
	if err != nil || !sqlKeywordPattern.MatchString(raw) {
		return
	}
	pos := fset.Position(bl.Pos())
	marker := firstLine(raw)
	if !uuidMarkerPattern.MatchString(marker) {
		l.violations = append(l.violations, violation{
			file:    path,
			line:    pos.Line,
			name:    name,
			message: "missing or invalid --sql <uuid> marker",
		})
		return
	}
	if prev, dup := l.seen[marker]; dup {
		l.violations = append(l.violations, violation{
			file:    path,
			line:    pos.Line,
			name:    name,
			message: "marker already used by " + prev,
		})
		return
	}
	l.seen[marker] = name
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

func joinNames(idents []*ast.Ident) string {
	parts := make([]string, 0, len(idents))
	for _, ident := range idents {
		if ident == nil {
			continue
		}
		parts = append(parts, ident.Name)
	}
	return strings.Join(parts, ",")
}
