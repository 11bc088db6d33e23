package token

// Kind represents the category of a source token.
type Kind uint8

const (
	// Invalid indicates an erroneous token.
	Invalid Kind = iota
	// EOF marks the end of the source input.
	EOF

	Ident
	IntLit
	FloatLit
	StringLit
	CharLit
	// Directive is a whole preprocessor line.
	Directive

	keywordBegin
	KwIf       // if
	KwElse     // else
	KwWhile    // while
	KwDo       // do
	KwFor      // for
	KwForeach  // foreach
	KwIn       // in
	KwSwitch   // switch
	KwCase     // case
	KwDefault  // default
	KwBreak    // break
	KwContinue // continue
	KwReturn   // return
	KwInherit  // inherit
	KwClass    // class
	KwStruct   // struct
	KwNew      // new
	KwCatch    // catch
	KwFunction // function

	// type keywords
	KwInt     // int
	KwFloat   // float
	KwString  // string
	KwObject  // object
	KwMapping // mapping
	KwMixed   // mixed
	KwVoid    // void
	KwStatus  // status
	KwBuffer  // buffer
	KwClosure // closure

	// modifiers
	KwPublic    // public
	KwProtected // protected
	KwPrivate   // private
	KwStatic    // static
	KwNomask    // nomask
	KwVarargs   // varargs
	KwVirtual   // virtual
	KwNosave    // nosave
	KwRef       // ref
	keywordEnd

	Plus          // +
	Minus         // -
	Star          // *
	Slash         // /
	Percent       // %
	Assign        // =
	PlusAssign    // +=
	MinusAssign   // -=
	StarAssign    // *=
	SlashAssign   // /=
	PercentAssign // %=
	AmpAssign     // &=
	PipeAssign    // |=
	CaretAssign   // ^=
	ShlAssign     // <<=
	ShrAssign     // >>=
	EqEq          // ==
	BangEq        // !=
	Lt            // <
	LtEq          // <=
	Gt            // >
	GtEq          // >=
	Shl           // <<
	Shr           // >>
	Amp           // &
	Pipe          // |
	Caret         // ^
	AndAnd        // &&
	OrOr          // ||
	Bang          // !
	Tilde         // ~
	PlusPlus      // ++
	MinusMinus    // --
	Question      // ?
	Colon         // :
	ColonColon    // ::
	Semicolon     // ;
	Comma         // ,
	Dot           // .
	DotDot        // ..
	DotDotDot     // ...
	Arrow         // ->
	LParen        // (
	RParen        // )
	LBrace        // {
	RBrace        // }
	LBracket      // [
	RBracket      // ]
	ArrayOpen     // ({
	MappingOpen   // ([
	ClosureOpen   // (:
	ClosureClose  // :)
	Dollar        // $
	Hash          // #
)

var names = map[Kind]string{
	Invalid:   "Invalid",
	EOF:       "EOF",
	Ident:     "Ident",
	IntLit:    "IntLit",
	FloatLit:  "FloatLit",
	StringLit: "StringLit",
	CharLit:   "CharLit",
	Directive: "Directive",
}

func init() {
	for text, k := range keywords {
		names[k] = "Kw(" + text + ")"
	}
	for text, k := range punct {
		names[k] = "'" + text + "'"
	}
}

func (k Kind) String() string {
	if s, ok := names[k]; ok {
		return s
	}
	return "Kind(?)"
}

// IsAssignOp reports whether k is '=' or a compound assignment.
func (k Kind) IsAssignOp() bool {
	switch k {
	case Assign, PlusAssign, MinusAssign, StarAssign, SlashAssign, PercentAssign,
		AmpAssign, PipeAssign, CaretAssign, ShlAssign, ShrAssign:
		return true
	default:
		return false
	}
}

// IsTypeKeyword reports whether k names a builtin LPC type.
func (k Kind) IsTypeKeyword() bool {
	return k >= KwInt && k <= KwClosure || k == KwFunction
}

// IsModifier reports whether k is a declaration modifier.
func (k Kind) IsModifier() bool {
	return k >= KwPublic && k <= KwRef
}
