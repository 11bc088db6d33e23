// Package diag carries diagnostics produced while lexing, parsing and formatting.
//
// Phases report through the Reporter interface; the default sink is a Bag with
// a hard cap on the number of stored items. Codes are grouped by range:
//
//	1000-1999 lexer
//	2000-2999 parser
//	6000-6999 formatter (routing, node limits, validation)
package diag
