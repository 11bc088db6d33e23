package tree

// NodeKind is the closed set of syntax categories the formatter understands.
// Kinds are assigned once, when a tree is built or adapted; nothing downstream
// inspects type names.
type NodeKind uint8

const (
	KindInvalid NodeKind = iota
	// Terminal is a leaf carrying one token.
	Terminal
	// Error wraps tokens the parser could not place.
	Error
	// Opaque is a non-terminal from a foreign tree whose kind is unknown.
	Opaque
	Program

	// declarations
	FunctionDef
	VariableDecl
	VariableDeclarator
	Parameter
	ParameterList
	TypeSpec
	Modifiers
	StructDef
	ClassDef
	StructMember
	StructMemberList
	IncludeStatement
	InheritStatement
	Directive

	// statements
	Block
	IfStatement
	WhileStatement
	ForStatement
	DoWhileStatement
	ForeachStatement
	SwitchStatement
	SwitchSection
	CaseLabel
	BreakStatement
	ContinueStatement
	ReturnStatement
	ExprStatement
	EmptyStatement

	// expressions
	Expression
	ExpressionList
	AssignmentExpression
	ConditionalExpression
	LogicalOrExpression
	LogicalAndExpression
	BitwiseOrExpression
	BitwiseXorExpression
	BitwiseAndExpression
	EqualityExpression
	RelationalExpression
	ShiftExpression
	AdditiveExpression
	MultiplicativeExpression
	UnaryExpression
	PostfixExpression
	CastExpression
	ParenExpression
	CallExpression
	MemberCallExpression
	IndexExpression
	ClosureExpression
	CatchExpression

	// literals
	ArrayLiteral
	MappingLiteral
	MappingPair

	kindCount
)

var kindNames = [...]string{
	KindInvalid:              "Invalid",
	Terminal:                 "Terminal",
	Error:                    "Error",
	Opaque:                   "Opaque",
	Program:                  "Program",
	FunctionDef:              "FunctionDef",
	VariableDecl:             "VariableDecl",
	VariableDeclarator:       "VariableDeclarator",
	Parameter:                "Parameter",
	ParameterList:            "ParameterList",
	TypeSpec:                 "TypeSpec",
	Modifiers:                "Modifiers",
	StructDef:                "StructDef",
	ClassDef:                 "ClassDef",
	StructMember:             "StructMember",
	StructMemberList:         "StructMemberList",
	IncludeStatement:         "IncludeStatement",
	InheritStatement:         "InheritStatement",
	Directive:                "Directive",
	Block:                    "Block",
	IfStatement:              "IfStatement",
	WhileStatement:           "WhileStatement",
	ForStatement:             "ForStatement",
	DoWhileStatement:         "DoWhileStatement",
	ForeachStatement:         "ForeachStatement",
	SwitchStatement:          "SwitchStatement",
	SwitchSection:            "SwitchSection",
	CaseLabel:                "CaseLabel",
	BreakStatement:           "BreakStatement",
	ContinueStatement:        "ContinueStatement",
	ReturnStatement:          "ReturnStatement",
	ExprStatement:            "ExprStatement",
	EmptyStatement:           "EmptyStatement",
	Expression:               "Expression",
	ExpressionList:           "ExpressionList",
	AssignmentExpression:     "AssignmentExpression",
	ConditionalExpression:    "ConditionalExpression",
	LogicalOrExpression:      "LogicalOrExpression",
	LogicalAndExpression:     "LogicalAndExpression",
	BitwiseOrExpression:      "BitwiseOrExpression",
	BitwiseXorExpression:     "BitwiseXorExpression",
	BitwiseAndExpression:     "BitwiseAndExpression",
	EqualityExpression:       "EqualityExpression",
	RelationalExpression:     "RelationalExpression",
	ShiftExpression:          "ShiftExpression",
	AdditiveExpression:       "AdditiveExpression",
	MultiplicativeExpression: "MultiplicativeExpression",
	UnaryExpression:          "UnaryExpression",
	PostfixExpression:        "PostfixExpression",
	CastExpression:           "CastExpression",
	ParenExpression:          "ParenExpression",
	CallExpression:           "CallExpression",
	MemberCallExpression:     "MemberCallExpression",
	IndexExpression:          "IndexExpression",
	ClosureExpression:        "ClosureExpression",
	CatchExpression:          "CatchExpression",
	ArrayLiteral:             "ArrayLiteral",
	MappingLiteral:           "MappingLiteral",
	MappingPair:              "MappingPair",
}

func (k NodeKind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "Invalid"
}

// ParseKind maps a kind name back to its NodeKind. Adapters for foreign trees
// use it to classify nodes once.
func ParseKind(name string) (NodeKind, bool) {
	k, ok := kindByName[name]
	return k, ok
}

// Kinds returns every valid node kind in declaration order.
func Kinds() []NodeKind {
	out := make([]NodeKind, 0, kindCount-1)
	for k := Terminal; k < kindCount; k++ {
		out = append(out, k)
	}
	return out
}

var kindByName = func() map[string]NodeKind {
	m := make(map[string]NodeKind, len(kindNames))
	for i, name := range kindNames {
		if name != "" && i != int(KindInvalid) {
			m[name] = NodeKind(i)
		}
	}
	return m
}()
