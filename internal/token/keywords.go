package token

var keywords = map[string]Kind{
	"if":        KwIf,
	"else":      KwElse,
	"while":     KwWhile,
	"do":        KwDo,
	"for":       KwFor,
	"foreach":   KwForeach,
	"in":        KwIn,
	"switch":    KwSwitch,
	"case":      KwCase,
	"default":   KwDefault,
	"break":     KwBreak,
	"continue":  KwContinue,
	"return":    KwReturn,
	"inherit":   KwInherit,
	"class":     KwClass,
	"struct":    KwStruct,
	"new":       KwNew,
	"catch":     KwCatch,
	"function":  KwFunction,
	"int":       KwInt,
	"float":     KwFloat,
	"string":    KwString,
	"object":    KwObject,
	"mapping":   KwMapping,
	"mixed":     KwMixed,
	"void":      KwVoid,
	"status":    KwStatus,
	"buffer":    KwBuffer,
	"closure":   KwClosure,
	"public":    KwPublic,
	"protected": KwProtected,
	"private":   KwPrivate,
	"static":    KwStatic,
	"nomask":    KwNomask,
	"varargs":   KwVarargs,
	"virtual":   KwVirtual,
	"nosave":    KwNosave,
	"ref":       KwRef,
}

// punct maps operator spellings to kinds; the lexer matches greedily by length.
var punct = map[string]Kind{
	"+": Plus, "-": Minus, "*": Star, "/": Slash, "%": Percent,
	"=": Assign, "+=": PlusAssign, "-=": MinusAssign, "*=": StarAssign,
	"/=": SlashAssign, "%=": PercentAssign, "&=": AmpAssign, "|=": PipeAssign,
	"^=": CaretAssign, "<<=": ShlAssign, ">>=": ShrAssign,
	"==": EqEq, "!=": BangEq, "<": Lt, "<=": LtEq, ">": Gt, ">=": GtEq,
	"<<": Shl, ">>": Shr, "&": Amp, "|": Pipe, "^": Caret,
	"&&": AndAnd, "||": OrOr, "!": Bang, "~": Tilde, "++": PlusPlus, "--": MinusMinus,
	"?": Question, ":": Colon, "::": ColonColon, ";": Semicolon, ",": Comma,
	".": Dot, "..": DotDot, "...": DotDotDot, "->": Arrow,
	"(": LParen, ")": RParen, "{": LBrace, "}": RBrace, "[": LBracket, "]": RBracket,
	"({": ArrayOpen, "([": MappingOpen, "(:": ClosureOpen, ":)": ClosureClose,
	"$": Dollar, "#": Hash,
}

// LookupKeyword возвращает тип и bool если это ключевое слово.
// Keywords are case-sensitive.
func LookupKeyword(ident string) (Kind, bool) {
	k, ok := keywords[ident]
	return k, ok
}

// LookupPunct returns the kind of an operator or punctuation spelling.
func LookupPunct(text string) (Kind, bool) {
	k, ok := punct[text]
	return k, ok
}
