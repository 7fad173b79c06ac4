package discovery

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"strconv"
)

// FileCases is what a test file statically declares
type FileCases struct {
	Cases   []string // Case descriptions in registration order
	Skipped bool
}

// Parser extracts case descriptions from test files without running them
type Parser struct{}

// NewParser creates a new Parser
func NewParser() *Parser {
	return &Parser{}
}

// FindTestCases finds the literal descriptions passed to Test and whether Skip is called
func (p *Parser) FindTestCases(filePath string) (FileCases, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, filePath, nil, parser.SkipObjectResolution)
	if err != nil {
		return FileCases{}, fmt.Errorf("error reading file %s: %w", filePath, err)
	}

	var out FileCases
	ast.Inspect(file, func(n ast.Node) bool {
		call, ok := n.(*ast.CallExpr)
		if !ok {
			return true
		}
		sel, ok := call.Fun.(*ast.SelectorExpr)
		if !ok {
			return true
		}

		switch sel.Sel.Name {
		case "Skip":
			out.Skipped = true
		case "Test":
			if len(call.Args) != 2 {
				return true
			}
			lit, ok := call.Args[0].(*ast.BasicLit)
			if !ok || lit.Kind != token.STRING {
				out.Cases = append(out.Cases, "<dynamic>")
				return true
			}
			if s, err := strconv.Unquote(lit.Value); err == nil {
				out.Cases = append(out.Cases, s)
			}
		}
		return true
	})
	return out, nil
}
