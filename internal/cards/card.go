// internal/cards/card.go
//
// Card value types for the arithmetic card game.
// Defines:
//   - Kind:   which variant a Card holds (number/operator/special).
//   - Op:     arithmetic operators (Multiply is only placed via a special).
//   - Effect: special-card effects (forced multiply, square root).
//   - Card:   a single immutable tagged value over the three variants.
//
// Cards are plain values. Copying a Card yields an equal, independent value.

package cards

import (
	"fmt"
	"strconv"
	"strings"
)

// Number cards carry a value clamped to this range.
const (
	MinValue = 0
	MaxValue = 10
)

// Kind identifies the variant held by a Card.
type Kind uint8

const (
	KindNumber Kind = iota
	KindOperator
	KindSpecial
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindOperator:
		return "operator"
	case KindSpecial:
		return "special"
	}
	return "unknown"
}

// Op is an arithmetic operator.
type Op uint8

const (
	OpAdd Op = iota
	OpSubtract
	OpDivide
	OpMultiply
)

// BaseOps lists the freely playable operators in enumeration order.
var BaseOps = [...]Op{OpAdd, OpSubtract, OpDivide}

// Symbol returns the display symbol for op.
func (o Op) Symbol() string {
	switch o {
	case OpAdd:
		return "+"
	case OpSubtract:
		return "-"
	case OpDivide:
		return "÷"
	case OpMultiply:
		return "×"
	}
	return "?"
}

func (o Op) String() string {
	switch o {
	case OpAdd:
		return "add"
	case OpSubtract:
		return "subtract"
	case OpDivide:
		return "divide"
	case OpMultiply:
		return "multiply"
	}
	return "op(" + strconv.Itoa(int(o)) + ")"
}

// ParseOp accepts a symbol or a name (case-insensitive).
func ParseOp(s string) (Op, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "+", "add", "plus":
		return OpAdd, nil
	case "-", "sub", "subtract", "minus":
		return OpSubtract, nil
	case "/", "÷", "div", "divide":
		return OpDivide, nil
	case "*", "x", "×", "mul", "multiply":
		return OpMultiply, nil
	}
	return 0, fmt.Errorf("cards: unknown operator %q", s)
}

// Effect is what a Special card grants.
type Effect uint8

const (
	EffectForcedMultiply Effect = iota
	EffectSquareRoot
)

func (e Effect) String() string {
	switch e {
	case EffectForcedMultiply:
		return "forced-multiply"
	case EffectSquareRoot:
		return "square-root"
	}
	return "effect(" + strconv.Itoa(int(e)) + ")"
}

// Card is a tagged value over {Number, Operator, Special}.
// Fields are unexported so variant and payload are fixed at construction.
type Card struct {
	kind   Kind
	value  int
	op     Op
	effect Effect
}

// Number returns a number card; v is clamped to [MinValue, MaxValue].
func Number(v int) Card {
	return Card{kind: KindNumber, value: clamp(v)}
}

// Operator returns an operator card.
func Operator(op Op) Card {
	return Card{kind: KindOperator, op: op}
}

// Special returns a special card.
func Special(e Effect) Card {
	return Card{kind: KindSpecial, effect: e}
}

func (c Card) Kind() Kind       { return c.kind }
func (c Card) Value() int       { return c.value }
func (c Card) Op() Op           { return c.op }
func (c Card) Effect() Effect   { return c.effect }
func (c Card) IsNumber() bool   { return c.kind == KindNumber }
func (c Card) IsSpecial() bool  { return c.kind == KindSpecial }
func (c Card) IsOperator() bool { return c.kind == KindOperator }

func (c Card) String() string {
	switch c.kind {
	case KindNumber:
		return strconv.Itoa(c.value)
	case KindOperator:
		return c.op.Symbol()
	case KindSpecial:
		if c.effect == EffectSquareRoot {
			return "√"
		}
		return "[×]"
	}
	return "?"
}

func clamp(v int) int {
	if v < MinValue {
		return MinValue
	}
	if v > MaxValue {
		return MaxValue
	}
	return v
}
