package validate

import (
	"fmt"
	"math"
	"regexp"
	"slices"
	"strings"

	"lpcfmt/internal/token"
	"lpcfmt/internal/tree"
)

// Names of the built-in rules.
const (
	RuleSyntaxValidity      = "syntax-validity"
	RuleParseTreeIntegrity  = "parse-tree-integrity"
	RuleCodeInjection       = "code-injection-prevention"
	RuleIndentation         = "indentation-consistency"
	RuleCommentPreservation = "comment-preservation"
	RuleWhitespace          = "whitespace-normalization"
	RuleLineBreaks          = "line-break-consistency"
	RuleBracePosition       = "brace-position-consistency"
	RuleOperatorSpacing     = "operator-spacing"
)

// Builtin returns fresh instances of the stock rules.
func Builtin() []Rule {
	return []Rule{
		syntaxValidity{},
		parseTreeIntegrity{},
		codeInjection{},
		indentation{},
		commentPreservation{},
		whitespace{},
		lineBreaks{},
		bracePosition{},
		operatorSpacing{},
	}
}

// outcome builds the usual shape: passes when there are no messages.
func outcome(failSev Severity, score int, msgs []string) Outcome {
	if len(msgs) == 0 {
		return Outcome{Passed: true, Severity: Info, Score: clampScore(score)}
	}
	return Outcome{Severity: failSev, Messages: msgs, Score: clampScore(score)}
}

type syntaxValidity struct{}

func (syntaxValidity) Name() string        { return RuleSyntaxValidity }
func (syntaxValidity) Description() string { return "Braces and parentheses of the output balance" }
func (syntaxValidity) Priority() int       { return 100 }

func (syntaxValidity) Check(in Input) (Outcome, error) {
	s := scan("formatted", in.Formatted)
	var msgs []string
	// "({" and "([" open a paren that a plain ")" closes; "(:" pairs with ":)".
	openBrace := s.count(token.LBrace) + s.count(token.ArrayOpen)
	closeBrace := s.count(token.RBrace)
	if openBrace != closeBrace {
		msgs = append(msgs, fmt.Sprintf("Unmatched braces: %d open, %d close", openBrace, closeBrace))
	}
	openParen := s.count(token.LParen) + s.count(token.ArrayOpen) + s.count(token.MappingOpen)
	closeParen := s.count(token.RParen)
	if openParen != closeParen {
		msgs = append(msgs, fmt.Sprintf("Unmatched parentheses: %d open, %d close", openParen, closeParen))
	}
	if len(msgs) > 0 {
		return outcome(Critical, 0, msgs), nil
	}
	return outcome(Critical, 100, nil), nil
}

type parseTreeIntegrity struct{}

func (parseTreeIntegrity) Name() string        { return RuleParseTreeIntegrity }
func (parseTreeIntegrity) Description() string { return "The parse tree is present and has no error nodes" }
func (parseTreeIntegrity) Priority() int       { return 95 }

func (parseTreeIntegrity) Check(in Input) (Outcome, error) {
	if in.Tree == nil {
		return outcome(Error, 0, []string{"Parse tree is missing"}), nil
	}
	nodes := in.Tree.Count()
	if nodes == 0 {
		return outcome(Error, 0, []string{"Parse tree contains no nodes"}), nil
	}
	errs := 0
	in.Tree.Walk(func(n *tree.Node) bool {
		if n.IsError() {
			errs++
		}
		return true
	})
	if errs > 0 {
		return outcome(Error, 100-10*errs, []string{fmt.Sprintf("Found %d error nodes in parse tree", errs)}), nil
	}
	return outcome(Error, 100, nil), nil
}

// suspicious are shapes that a formatter must never introduce.
var suspicious = []*regexp.Regexp{
	regexp.MustCompile(`eval\s*\(`),
	regexp.MustCompile(`exec\s*\(`),
	regexp.MustCompile(`system\s*\(`),
	regexp.MustCompile(`\$\{[^}]*\}`),
	regexp.MustCompile(`(?i)<script[^>]*>`),
	regexp.MustCompile(`(?i)javascript\s*:`),
}

// sizeDeltaPercent is the largest tolerated length change.
const sizeDeltaPercent = 50.0

type codeInjection struct{}

func (codeInjection) Name() string        { return RuleCodeInjection }
func (codeInjection) Description() string { return "Formatting introduced no dangerous patterns and kept the size" }
func (codeInjection) Priority() int       { return 90 }

// Check flags a pattern only when the output has more matches than the
// input; LPC code calls exec() and friends legitimately.
func (codeInjection) Check(in Input) (Outcome, error) {
	var msgs []string
	score := 100
	for i, re := range suspicious {
		if len(re.FindAllStringIndex(in.Formatted, -1)) > len(re.FindAllStringIndex(in.Original, -1)) {
			msgs = append(msgs, fmt.Sprintf("Suspicious pattern detected: pattern %d (%s)", i+1, re))
			score = 0
		}
	}
	if len(in.Original) > 0 {
		delta := math.Abs(float64(len(in.Formatted)-len(in.Original))) / float64(len(in.Original)) * 100
		if delta > sizeDeltaPercent {
			msgs = append(msgs, fmt.Sprintf("Significant size change detected: %.1f%%", delta))
			score -= 30
		}
	}
	return outcome(Error, score, msgs), nil
}

type indentation struct{}

func (indentation) Name() string        { return RuleIndentation }
func (indentation) Description() string { return "Indentation uses one unit and one character" }
func (indentation) Priority() int       { return 80 }

// Check takes the first indented line as the unit. Lines inside block
// comments and macro continuations are skipped.
func (indentation) Check(in Input) (Outcome, error) {
	var issues []string
	unit := 0
	spaces, tabs := false, false
	inComment, continued := false, false
	for i, line := range lines(in.Formatted) {
		skip := inComment || continued
		inComment = blockCommentOpen(line, inComment)
		continued = strings.HasSuffix(strings.TrimRight(line, " \t\r"), "\\")
		if skip || blank(line) {
			continue
		}
		lead := line[:len(line)-len(strings.TrimLeft(line, " \t"))]
		if lead == "" {
			continue
		}
		spaces = spaces || strings.Contains(lead, " ")
		tabs = tabs || strings.Contains(lead, "\t")
		if spaces && tabs {
			issues = append(issues, fmt.Sprintf("Line %d: Mixed spaces and tabs", i+1))
			continue
		}
		if unit == 0 {
			unit = len(lead)
			continue
		}
		if len(lead)%unit != 0 {
			issues = append(issues, fmt.Sprintf("Line %d: Inconsistent indent size", i+1))
		}
	}
	if len(issues) == 0 {
		return outcome(Warning, 100, nil), nil
	}
	msg := "Inconsistent indentation detected: " + strings.Join(issues, ", ")
	return outcome(Warning, 100-15*len(issues), []string{msg}), nil
}

// blockCommentOpen reports whether a block comment is still open at the end
// of line. String literals are not tracked.
func blockCommentOpen(line string, open bool) bool {
	for {
		if open {
			i := strings.Index(line, "*/")
			if i < 0 {
				return true
			}
			line, open = line[i+2:], false
			continue
		}
		i := strings.Index(line, "/*")
		if i < 0 {
			return false
		}
		if j := strings.Index(line, "//"); j >= 0 && j < i {
			return false
		}
		line, open = line[i+2:], true
	}
}

type commentPreservation struct{}

func (commentPreservation) Name() string        { return RuleCommentPreservation }
func (commentPreservation) Description() string { return "Every comment of the input is in the output" }
func (commentPreservation) Priority() int       { return 75 }

func (commentPreservation) Check(in Input) (Outcome, error) {
	before := scan("original", in.Original).comments()
	after := scan("formatted", in.Formatted).comments()
	var msgs []string
	score := 100
	if len(before) != len(after) {
		msgs = append(msgs, fmt.Sprintf("Comment count mismatch: original %d, formatted %d", len(before), len(after)))
		score -= 30
	}
	missing := 0
	for _, c := range before {
		if !slices.Contains(after, c) {
			missing++
		}
	}
	if missing > 0 {
		msgs = append(msgs, fmt.Sprintf("Missing comments: %d comments lost", missing))
		score -= 10 * missing
	}
	return outcome(Warning, score, msgs), nil
}

// maxBlankRun is the longest run of blank lines accepted.
const maxBlankRun = 2

type whitespace struct{}

func (whitespace) Name() string        { return RuleWhitespace }
func (whitespace) Description() string { return "No trailing spaces or long runs of blank lines" }
func (whitespace) Priority() int       { return 70 }

func (whitespace) Check(in Input) (Outcome, error) {
	trailing, excess, run := 0, 0, 0
	for _, line := range lines(in.Formatted) {
		line = strings.TrimSuffix(line, "\r")
		if line != "" && line != strings.TrimRight(line, " \t") {
			trailing++
		}
		if blank(line) {
			run++
			continue
		}
		if run > maxBlankRun {
			excess += run - maxBlankRun
		}
		run = 0
	}
	var msgs []string
	score := 100
	if trailing > 0 {
		msgs = append(msgs, fmt.Sprintf("Found trailing spaces on %d lines", trailing))
		score -= 2 * trailing
	}
	if excess > 0 {
		msgs = append(msgs, fmt.Sprintf("Found %d excessive blank lines", excess))
		score -= 5 * excess
	}
	return outcome(Warning, score, msgs), nil
}

type lineBreaks struct{}

func (lineBreaks) Name() string        { return RuleLineBreaks }
func (lineBreaks) Description() string { return "One line ending style throughout" }
func (lineBreaks) Priority() int       { return 65 }

func (lineBreaks) Check(in Input) (Outcome, error) {
	crlf, lf, cr := 0, 0, 0
	text := in.Formatted
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '\r':
			if i+1 < len(text) && text[i+1] == '\n' {
				crlf++
				i++
			} else {
				cr++
			}
		case '\n':
			lf++
		}
	}
	kinds := 0
	for _, n := range []int{crlf, lf, cr} {
		if n > 0 {
			kinds++
		}
	}
	if kinds <= 1 {
		return outcome(Warning, 100, nil), nil
	}
	msg := fmt.Sprintf("Inconsistent line endings: %d CRLF, %d LF, %d CR", crlf, lf, cr)
	return outcome(Warning, 80, []string{msg}), nil
}

// braceConsistency is the share of the dominant style required.
const braceConsistency = 0.8

type bracePosition struct{}

func (bracePosition) Name() string        { return RuleBracePosition }
func (bracePosition) Description() string { return "Opening braces sit either all on the same line or all on the next" }
func (bracePosition) Priority() int       { return 60 }

func (bracePosition) Check(in Input) (Outcome, error) {
	ls := lines(in.Formatted)
	same, next := 0, 0
	for i, raw := range ls {
		line := strings.TrimSpace(raw)
		at := strings.IndexByte(line, '{')
		if at < 0 || strings.HasPrefix(line, "//") || strings.HasPrefix(line, "*") {
			continue
		}
		// "({" opens an array literal, not a block.
		if at > 0 && line[at-1] == '(' {
			continue
		}
		switch {
		case strings.TrimSpace(line[:at]) != "":
			same++
		case i > 0 && !blank(ls[i-1]):
			next++
		}
	}
	total := same + next
	if total == 0 || float64(max(same, next))/float64(total) >= braceConsistency {
		return outcome(Warning, 100, nil), nil
	}
	msg := fmt.Sprintf("Inconsistent brace style: Mixed brace styles: %d same-line, %d new-line", same, next)
	return outcome(Warning, 85, []string{msg}), nil
}

// spacedOperators are the binary operators sampled for spacing.
var spacedOperators = map[token.Kind]string{
	token.Plus: "+", token.Minus: "-", token.Star: "*", token.Slash: "/",
	token.Assign: "=", token.EqEq: "==", token.BangEq: "!=",
	token.Lt: "<", token.Gt: ">", token.LtEq: "<=", token.GtEq: ">=",
}

type operatorSpacing struct{}

func (operatorSpacing) Name() string        { return RuleOperatorSpacing }
func (operatorSpacing) Description() string { return "Binary operators are surrounded by spaces" }
func (operatorSpacing) Priority() int       { return 55 }

// Check flags an operator glued to an operand on both sides, once per
// operator and line. It passes trivially when the context turned operator
// spacing off.
func (operatorSpacing) Check(in Input) (Outcome, error) {
	if in.Context != nil && !in.Context.Layout.SpaceAroundOperators {
		return outcome(Warning, 100, nil), nil
	}
	s := scan("formatted", in.Formatted)
	type key struct {
		line int
		op   string
	}
	seen := make(map[key]bool)
	var msgs []string
	for i := 1; i+1 < len(s.toks); i++ {
		t := s.toks[i]
		op, ok := spacedOperators[t.Kind]
		if !ok {
			continue
		}
		prev, next := s.toks[i-1], s.toks[i+1]
		if !endsOperand(prev) || !startsOperand(next) {
			continue
		}
		if prev.Span.End != t.Span.Start || t.Span.End != next.Span.Start {
			continue
		}
		k := key{s.line(t), op}
		if seen[k] {
			continue
		}
		seen[k] = true
		msgs = append(msgs, fmt.Sprintf("Line %d: Missing spaces around '%s' operator", k.line, op))
	}
	return outcome(Warning, 100-5*len(msgs), msgs), nil
}

func endsOperand(t token.Token) bool {
	return t.IsIdent() || t.IsLiteral() || t.Kind == token.RParen || t.Kind == token.RBracket
}

func startsOperand(t token.Token) bool {
	return t.IsIdent() || t.IsLiteral() || t.Kind == token.LParen
}
