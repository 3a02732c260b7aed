package backend

import (
	"bytes"
	"fmt"
	goast "go/ast"
	"go/format"
	"go/token"

	"golang.org/x/tools/imports"
)

// Source renders f as formatted Go source, with its imports fixed up
func Source(f *goast.File) (string, error) {
	buf := bytes.NewBuffer(nil)
	if err := format.Node(buf, token.NewFileSet(), f); err != nil {
		return "", fmt.Errorf("could not print generated file: %w", err)
	}
	out, err := imports.Process(f.Name.Name+".go", buf.Bytes(), &imports.Options{
		Comments:  true,
		TabIndent: true,
		TabWidth:  8,
	})
	if err != nil {
		return "", fmt.Errorf("could not format generated file: %w\n%s", err, buf.String())
	}
	return string(out), nil
}
