package parser

import (
	"slices"

	"lpcfmt/internal/token"
	"lpcfmt/internal/tree"
)

// binaryLevel: один уровень приоритета бинарных операторов.
// Все операторы уровня левоассоциативны; цепочка a+b-c собирается
// в один узел с чередованием операндов и операторов.
type binaryLevel struct {
	kind tree.NodeKind
	ops  []token.Kind
}

// Таблица приоритетов, от низшего к высшему.
var binaryLevels = []binaryLevel{
	{tree.LogicalOrExpression, []token.Kind{token.OrOr}},
	{tree.LogicalAndExpression, []token.Kind{token.AndAnd}},
	{tree.BitwiseOrExpression, []token.Kind{token.Pipe}},
	{tree.BitwiseXorExpression, []token.Kind{token.Caret}},
	{tree.BitwiseAndExpression, []token.Kind{token.Amp}},
	{tree.EqualityExpression, []token.Kind{token.EqEq, token.BangEq}},
	{tree.RelationalExpression, []token.Kind{token.Lt, token.LtEq, token.Gt, token.GtEq}},
	{tree.ShiftExpression, []token.Kind{token.Shl, token.Shr}},
	{tree.AdditiveExpression, []token.Kind{token.Plus, token.Minus}},
	{tree.MultiplicativeExpression, []token.Kind{token.Star, token.Slash, token.Percent}},
}

func (l binaryLevel) has(k token.Kind) bool {
	return slices.Contains(l.ops, k)
}

// prefix-операторы
func isUnaryOp(k token.Kind) bool {
	switch k {
	case token.Bang, token.Tilde, token.Minus, token.Plus,
		token.PlusPlus, token.MinusMinus, token.Amp, token.Star, token.Dollar:
		return true
	default:
		return false
	}
}

// BinaryKinds lists the node kinds produced for binary operator chains.
func BinaryKinds() []tree.NodeKind {
	out := make([]tree.NodeKind, len(binaryLevels))
	for i, l := range binaryLevels {
		out[i] = l.kind
	}
	return out
}
