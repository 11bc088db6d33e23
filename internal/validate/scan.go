package validate

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"lpcfmt/internal/lexer"
	"lpcfmt/internal/source"
	"lpcfmt/internal/token"
)

// scanned is text run through the lexer once.
type scanned struct {
	file *source.File
	toks []token.Token
}

func scan(name, text string) scanned {
	fs := source.NewFileSet()
	f := fs.Get(fs.AddVirtual(name, []byte(text)))
	return scanned{file: f, toks: lexer.New(f, lexer.Options{}).All()}
}

// comments returns every comment, NFC-normalized with outer space trimmed.
func (s scanned) comments() []string {
	var out []string
	for _, t := range s.toks {
		for _, tv := range t.Leading {
			if tv.IsComment() {
				out = append(out, norm.NFC.String(strings.TrimSpace(tv.Text)))
			}
		}
	}
	return out
}

func (s scanned) count(k token.Kind) int {
	n := 0
	for _, t := range s.toks {
		if t.Kind == k {
			n++
		}
	}
	return n
}

func (s scanned) line(t token.Token) int {
	return int(s.file.Position(t.Span.Start).Line)
}

// lines splits text on '\n' without dropping a final empty line.
func lines(text string) []string {
	return strings.Split(text, "\n")
}

func blank(line string) bool {
	return strings.TrimSpace(line) == ""
}
