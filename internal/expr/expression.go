// internal/expr/expression.go
//
// Expression is an append-only sequence alternating number terms and
// operators: t0 op0 t1 op1 ... tn. It is assembled one token at a time by
// either the human input path or the solver.
//
// Invariants:
//   - len(ops) == len(terms)-1 when the last token is a term.
//   - len(ops) == len(terms)   when the last token is an operator.
//   - A failed append leaves the expression unchanged.
//
// Hand an Expression to another owner via Clone so later appends by the
// assembler cannot change an already-scored copy.

package expr

import (
	"strconv"
	"strings"

	"github.com/robalobadob/mathduel/internal/cards"
)

// SqrtMarker prefixes a rooted term in display form.
const SqrtMarker = "√"

// Term is one number slot, optionally square-rooted before use.
type Term struct {
	Value int  `json:"value"`
	Sqrt  bool `json:"sqrt"`
}

func (t Term) String() string {
	if t.Sqrt {
		return SqrtMarker + strconv.Itoa(t.Value)
	}
	return strconv.Itoa(t.Value)
}

// Expression is the zero-value-ready token sequence.
type Expression struct {
	terms []Term
	ops   []cards.Op
}

// New returns an empty expression.
func New() *Expression { return &Expression{} }

// AppendNumber appends a term. It fails with ErrNotExpectingNumber when the
// sequence currently ends in a term.
func (e *Expression) AppendNumber(value int, sqrt bool) error {
	if !e.ExpectingNumber() {
		return ErrNotExpectingNumber
	}
	e.terms = append(e.terms, Term{Value: value, Sqrt: sqrt})
	return nil
}

// AppendOperator appends op. It fails with ErrNotExpectingOperator when the
// sequence is empty or ends in an operator.
func (e *Expression) AppendOperator(op cards.Op) error {
	if e.ExpectingNumber() {
		return ErrNotExpectingOperator
	}
	e.ops = append(e.ops, op)
	return nil
}

// Clear empties the expression, keeping capacity.
func (e *Expression) Clear() {
	e.terms = e.terms[:0]
	e.ops = e.ops[:0]
}

func (e *Expression) IsEmpty() bool { return len(e.terms) == 0 }

// ExpectingNumber is true when empty or ending in an operator.
func (e *Expression) ExpectingNumber() bool { return len(e.ops) == len(e.terms) }

// Len is the token count.
func (e *Expression) Len() int { return len(e.terms) + len(e.ops) }

// Terms returns a copy of the terms.
func (e *Expression) Terms() []Term { return append([]Term(nil), e.terms...) }

// Ops returns a copy of the operators.
func (e *Expression) Ops() []cards.Op { return append([]cards.Op(nil), e.ops...) }

// Clone returns an independent deep copy. A nil receiver clones to empty.
func (e *Expression) Clone() *Expression {
	if e == nil {
		return New()
	}
	return &Expression{
		terms: append([]Term(nil), e.terms...),
		ops:   append([]cards.Op(nil), e.ops...),
	}
}

// Tokens renders the alternating display tokens.
func (e *Expression) Tokens() []string {
	out := make([]string, 0, e.Len())
	for i, t := range e.terms {
		out = append(out, t.String())
		if i < len(e.ops) {
			out = append(out, e.ops[i].Symbol())
		}
	}
	return out
}

// String is the display form, e.g. "√9 - 4". Presentation only.
func (e *Expression) String() string {
	if e == nil {
		return ""
	}
	return strings.Join(e.Tokens(), " ")
}
