package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Лексические
	LexUnknownChar              Code = 1001
	LexUnterminatedString       Code = 1002
	LexUnterminatedBlockComment Code = 1003
	LexBadNumber                Code = 1004
	LexUnterminatedChar         Code = 1005

	// Парсерные
	SynUnexpectedToken    Code = 2001
	SynExpectSemicolon    Code = 2002
	SynUnclosedParen      Code = 2003
	SynUnclosedBrace      Code = 2004
	SynUnclosedBracket    Code = 2005
	SynExpectExpression   Code = 2006
	SynExpectIdentifier   Code = 2007
	SynUnexpectedTopLevel Code = 2008
	SynTooDeep            Code = 2009

	// Форматирование
	FmtFormatterError Code = 6001
	FmtNodeLimit      Code = 6002
	FmtFallback       Code = 6003
	FmtValidation     Code = 6004
	FmtStrategy       Code = 6005
)

var codeDescription = map[Code]string{
	UnknownCode:                 "Unknown error",
	LexUnknownChar:              "Unknown character",
	LexUnterminatedString:       "Unterminated string literal",
	LexUnterminatedBlockComment: "Unterminated block comment",
	LexBadNumber:                "Malformed number literal",
	LexUnterminatedChar:         "Unterminated character literal",
	SynUnexpectedToken:          "Unexpected token",
	SynExpectSemicolon:          "Expected ';'",
	SynUnclosedParen:            "Unclosed parenthesis",
	SynUnclosedBrace:            "Unclosed brace",
	SynUnclosedBracket:          "Unclosed bracket",
	SynExpectExpression:         "Expected expression",
	SynExpectIdentifier:         "Expected identifier",
	SynUnexpectedTopLevel:       "Unexpected top-level construct",
	SynTooDeep:                  "Nesting too deep",
	FmtFormatterError:           "Category formatter failed",
	FmtNodeLimit:                "Node limit reached",
	FmtFallback:                 "Formatting fell back to source text",
	FmtValidation:               "Formatted output failed validation",
	FmtStrategy:                 "Strategy error",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("LEX%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("SYN%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("FMT%04d", ic)
	default:
		return fmt.Sprintf("E%04d", ic)
	}
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
