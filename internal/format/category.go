package format

import (
	"fmt"

	"lpcfmt/internal/tree"
)

// Category names one of the five category formatters.
type Category uint8

const (
	CategoryExpression Category = iota
	CategoryStatement
	CategoryLiteral
	CategoryDeclaration
	CategoryBlock
	categoryCount
)

var categoryNames = [...]string{
	CategoryExpression:  "ExpressionFormatter",
	CategoryStatement:   "StatementFormatter",
	CategoryLiteral:     "LiteralFormatter",
	CategoryDeclaration: "DeclarationFormatter",
	CategoryBlock:       "BlockFormatter",
}

func (c Category) String() string {
	if int(c) < len(categoryNames) {
		return categoryNames[c]
	}
	return fmt.Sprintf("Category(%d)", c)
}

// Categories lists every category in declaration order.
func Categories() []Category {
	return []Category{CategoryExpression, CategoryStatement, CategoryLiteral, CategoryDeclaration, CategoryBlock}
}

// Operation is a single entry point of a category formatter.
type Operation uint8

const (
	OpInvalid Operation = iota

	// expression
	OpAssignmentExpression
	OpAdditiveExpression
	OpMultiplicativeExpression
	OpEqualityExpression
	OpRelationalExpression
	OpLogicalAndExpression
	OpLogicalOrExpression
	OpBitwiseAndExpression
	OpBitwiseOrExpression
	OpBitwiseXorExpression
	OpShiftExpression
	OpExpression
	OpExpressionList
	OpConditionalExpression
	OpUnaryExpression
	OpPostfixExpression
	OpCastExpression
	OpParenExpression
	OpCallExpression
	OpMemberCallExpression
	OpIndexExpression
	OpClosureExpression
	OpCatchExpression

	// statement
	OpIfStatement
	OpWhileStatement
	OpForStatement
	OpDoWhileStatement
	OpForeachStatement
	OpSwitchStatement
	OpSwitchSection
	OpBreakStatement
	OpContinueStatement
	OpReturnStatement
	OpExprStatement

	// literal
	OpMappingLiteral
	OpArrayLiteral

	// declaration
	OpFunctionDef
	OpVariableDecl
	OpParameter
	OpParameterList
	OpTypeSpec
	OpStructDef
	OpClassDef
	OpStructMember
	OpStructMemberList
	OpIncludeStatement
	OpInheritStatement

	// block
	OpBlock
	OpProgram
	OpErrorNode
	OpDirective

	opCount
)

// operationKinds maps each operation to the node kind it formats. Names of
// operations derive from it.
var operationKinds = [...]tree.NodeKind{
	OpAssignmentExpression:     tree.AssignmentExpression,
	OpAdditiveExpression:       tree.AdditiveExpression,
	OpMultiplicativeExpression: tree.MultiplicativeExpression,
	OpEqualityExpression:       tree.EqualityExpression,
	OpRelationalExpression:     tree.RelationalExpression,
	OpLogicalAndExpression:     tree.LogicalAndExpression,
	OpLogicalOrExpression:      tree.LogicalOrExpression,
	OpBitwiseAndExpression:     tree.BitwiseAndExpression,
	OpBitwiseOrExpression:      tree.BitwiseOrExpression,
	OpBitwiseXorExpression:     tree.BitwiseXorExpression,
	OpShiftExpression:          tree.ShiftExpression,
	OpExpression:               tree.Expression,
	OpExpressionList:           tree.ExpressionList,
	OpConditionalExpression:    tree.ConditionalExpression,
	OpUnaryExpression:          tree.UnaryExpression,
	OpPostfixExpression:        tree.PostfixExpression,
	OpCastExpression:           tree.CastExpression,
	OpParenExpression:          tree.ParenExpression,
	OpCallExpression:           tree.CallExpression,
	OpMemberCallExpression:     tree.MemberCallExpression,
	OpIndexExpression:          tree.IndexExpression,
	OpClosureExpression:        tree.ClosureExpression,
	OpCatchExpression:          tree.CatchExpression,
	OpIfStatement:              tree.IfStatement,
	OpWhileStatement:           tree.WhileStatement,
	OpForStatement:             tree.ForStatement,
	OpDoWhileStatement:         tree.DoWhileStatement,
	OpForeachStatement:         tree.ForeachStatement,
	OpSwitchStatement:          tree.SwitchStatement,
	OpSwitchSection:            tree.SwitchSection,
	OpBreakStatement:           tree.BreakStatement,
	OpContinueStatement:        tree.ContinueStatement,
	OpReturnStatement:          tree.ReturnStatement,
	OpExprStatement:            tree.ExprStatement,
	OpMappingLiteral:           tree.MappingLiteral,
	OpArrayLiteral:             tree.ArrayLiteral,
	OpFunctionDef:              tree.FunctionDef,
	OpVariableDecl:             tree.VariableDecl,
	OpParameter:                tree.Parameter,
	OpParameterList:            tree.ParameterList,
	OpTypeSpec:                 tree.TypeSpec,
	OpStructDef:                tree.StructDef,
	OpClassDef:                 tree.ClassDef,
	OpStructMember:             tree.StructMember,
	OpStructMemberList:         tree.StructMemberList,
	OpIncludeStatement:         tree.IncludeStatement,
	OpInheritStatement:         tree.InheritStatement,
	OpBlock:                    tree.Block,
	OpProgram:                  tree.Program,
	OpErrorNode:                tree.Error,
	OpDirective:                tree.Directive,
}

// String returns the method-style name, e.g. "formatIfStatement".
func (op Operation) String() string {
	if op == OpInvalid || op >= opCount {
		return fmt.Sprintf("Operation(%d)", op)
	}
	if op == OpErrorNode {
		return "formatErrorNode"
	}
	return "format" + operationKinds[op].String()
}

// Kind returns the node kind the operation formats.
func (op Operation) Kind() tree.NodeKind {
	if op == OpInvalid || op >= opCount {
		return tree.KindInvalid
	}
	return operationKinds[op]
}

// OperationFor returns the operation that formats kind, if any.
func OperationFor(kind tree.NodeKind) (Operation, bool) {
	op, ok := opByKind[kind]
	return op, ok
}

// ParseOperation resolves a method-style name back to an Operation.
func ParseOperation(name string) (Operation, bool) {
	for op := OpInvalid + 1; op < opCount; op++ {
		if op.String() == name {
			return op, true
		}
	}
	return OpInvalid, false
}

var opByKind = func() map[tree.NodeKind]Operation {
	m := make(map[tree.NodeKind]Operation, opCount)
	for op := OpInvalid + 1; op < opCount; op++ {
		m[operationKinds[op]] = op
	}
	return m
}()
