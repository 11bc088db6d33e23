package driver

import (
	"fmt"
	"io"
	"strings"

	"fortio.org/safecast"

	"lpcfmt/internal/diag"
	"lpcfmt/internal/parser"
	"lpcfmt/internal/source"
	"lpcfmt/internal/tree"
)

type ParseResult struct {
	FileSet *source.FileSet
	File    *source.File
	Root    *tree.Node
	Bag     *diag.Bag
	Errors  uint
}

func Parse(filePath string, maxDiagnostics int) (*ParseResult, error) {
	fs := source.NewFileSet()
	fileID, err := fs.Load(filePath)
	if err != nil {
		return nil, err
	}
	file := fs.Get(fileID)

	bag := diag.NewBag(maxDiagnostics)
	maxErrors, err := safecast.Conv[uint](maxDiagnostics)
	if err != nil {
		return nil, err
	}

	res := parser.ParseFile(file, parser.Options{
		Reporter:  diag.BagReporter{Bag: bag},
		MaxErrors: maxErrors,
	})

	return &ParseResult{
		FileSet: fs,
		File:    file,
		Root:    res.Root,
		Bag:     bag,
		Errors:  res.Errors,
	}, nil
}

// WriteTree prints the tree one node per line, two spaces per level.
// Terminals show their token kind and text.
func WriteTree(w io.Writer, root *tree.Node) error {
	var err error
	var walk func(n *tree.Node, depth int)
	walk = func(n *tree.Node, depth int) {
		if err != nil || n == nil {
			return
		}
		pad := strings.Repeat("  ", depth)
		if n.IsTerminal() {
			tok := n.Token()
			_, err = fmt.Fprintf(w, "%s%s %q\n", pad, tok.Kind, tok.Text)
			return
		}
		_, err = fmt.Fprintf(w, "%s%s\n", pad, n.Kind())
		for _, ch := range n.Children() {
			walk(ch, depth+1)
		}
	}
	walk(root, 0)
	return err
}
