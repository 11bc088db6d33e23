package router

import (
	"lpcfmt/internal/format"
	"lpcfmt/internal/tree"
)

// route builds a cacheable table entry for the operation that formats kind.
func route(cat format.Category, kind tree.NodeKind, cost int) Route {
	op, _ := format.OperationFor(kind)
	return Route{Kind: kind, Category: cat, Operation: op, Cacheable: true, EstimatedCost: cost}
}

// defaultRoutes is the stock table. Kinds absent here (empty statements,
// opaque foreign nodes) go through the visitor's default path; case labels,
// declarators, mapping pairs and modifiers are laid out by their parents.
var defaultRoutes = []Route{
	route(format.CategoryExpression, tree.AssignmentExpression, 2),
	route(format.CategoryExpression, tree.AdditiveExpression, 1),
	route(format.CategoryExpression, tree.MultiplicativeExpression, 1),
	route(format.CategoryExpression, tree.EqualityExpression, 1),
	route(format.CategoryExpression, tree.RelationalExpression, 1),
	route(format.CategoryExpression, tree.LogicalAndExpression, 1),
	route(format.CategoryExpression, tree.LogicalOrExpression, 1),
	route(format.CategoryExpression, tree.BitwiseAndExpression, 1),
	route(format.CategoryExpression, tree.BitwiseOrExpression, 1),
	route(format.CategoryExpression, tree.BitwiseXorExpression, 1),
	route(format.CategoryExpression, tree.ShiftExpression, 1),
	route(format.CategoryExpression, tree.Expression, 2),
	route(format.CategoryExpression, tree.ExpressionList, 3),
	route(format.CategoryExpression, tree.ConditionalExpression, 2),
	route(format.CategoryExpression, tree.UnaryExpression, 1),
	route(format.CategoryExpression, tree.PostfixExpression, 1),
	route(format.CategoryExpression, tree.CastExpression, 1),
	route(format.CategoryExpression, tree.ParenExpression, 1),
	route(format.CategoryExpression, tree.CallExpression, 2),
	route(format.CategoryExpression, tree.MemberCallExpression, 2),
	route(format.CategoryExpression, tree.IndexExpression, 1),
	route(format.CategoryExpression, tree.ClosureExpression, 3),
	route(format.CategoryExpression, tree.CatchExpression, 2),

	route(format.CategoryStatement, tree.IfStatement, 3),
	route(format.CategoryStatement, tree.WhileStatement, 2),
	route(format.CategoryStatement, tree.ForStatement, 3),
	route(format.CategoryStatement, tree.DoWhileStatement, 2),
	route(format.CategoryStatement, tree.ForeachStatement, 3),
	route(format.CategoryStatement, tree.SwitchStatement, 4),
	route(format.CategoryStatement, tree.SwitchSection, 2),
	route(format.CategoryStatement, tree.BreakStatement, 1),
	route(format.CategoryStatement, tree.ContinueStatement, 1),
	route(format.CategoryStatement, tree.ReturnStatement, 2),
	route(format.CategoryStatement, tree.ExprStatement, 2),

	route(format.CategoryLiteral, tree.MappingLiteral, 3),
	route(format.CategoryLiteral, tree.ArrayLiteral, 2),

	route(format.CategoryDeclaration, tree.FunctionDef, 5),
	route(format.CategoryDeclaration, tree.VariableDecl, 2),
	route(format.CategoryDeclaration, tree.Parameter, 1),
	route(format.CategoryDeclaration, tree.ParameterList, 3),
	route(format.CategoryDeclaration, tree.TypeSpec, 1),
	route(format.CategoryDeclaration, tree.StructDef, 4),
	route(format.CategoryDeclaration, tree.ClassDef, 4),
	route(format.CategoryDeclaration, tree.StructMember, 1),
	route(format.CategoryDeclaration, tree.StructMemberList, 3),
	route(format.CategoryDeclaration, tree.IncludeStatement, 1),
	route(format.CategoryDeclaration, tree.InheritStatement, 1),

	route(format.CategoryBlock, tree.Block, 3),
	route(format.CategoryBlock, tree.Program, 5),
	route(format.CategoryBlock, tree.Error, 1),
	route(format.CategoryBlock, tree.Directive, 1),
}
