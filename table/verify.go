package table

import (
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

var gfm = goldmark.New(goldmark.WithExtensions(extension.Table))

// Verify parses rendered markdown with GFM table extension and reports
// layout problems: markdown not recognized as a table, header or row count
// not matching the table spec, unescaped pipes in cells which silently shift
// values. Result is meant for warnings, rendering is never changed.
func (s *Spec) Verify(markdown string, opts Options) []string {
	var problems []string

	src := []byte(markdown)
	doc := gfm.Parser().Parse(text.NewReader(src))

	var tbl *east.Table
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if t, ok := n.(*east.Table); ok && entering {
			tbl = t
			return ast.WalkStop, nil
		}
		return ast.WalkContinue, nil
	})
	if tbl == nil {
		return append(problems, "rendered markdown is not recognized as a table")
	}

	rows := 0
	for n := tbl.FirstChild(); n != nil; n = n.NextSibling() {
		switch n.(type) {
		case *east.TableHeader:
			if got := n.ChildCount(); got != len(s.Columns) {
				problems = append(problems, fmt.Sprintf("header has %d cells, spec declares %d columns", got, len(s.Columns)))
			}
		case *east.TableRow:
			rows++
		}
	}
	if rows != len(s.Rows) {
		problems = append(problems, fmt.Sprintf("table has %d rows, spec has %d", rows, len(s.Rows)))
	}

	if !opts.EscapePipes {
		for _, col := range s.Columns {
			if strings.Contains(col, "|") {
				problems = append(problems, fmt.Sprintf("column %q contains unescaped '|'", col))
			}
		}
		for r, row := range s.Rows {
			for _, col := range s.Columns {
				if strings.Contains(CellText(row[col]), "|") {
					problems = append(problems, fmt.Sprintf("row %d, column %q contains unescaped '|'", r, col))
				}
			}
		}
	}
	return problems
}
