// Package parser turns formula text into expression trees.
//
// Tokenize produces a flat token sequence; Parse runs a shunting-yard pass
// over it. Function calls are handled by a subroutine that splits the
// argument list at top-level commas and parses each argument on its own.
package parser

import (
	"strconv"

	"github.com/leapstack-labs/leapcell/pkg/core"
	"github.com/leapstack-labs/leapcell/pkg/token"
)

// ParseFormula tokenizes and parses formula text (without the leading '=').
func ParseFormula(text string) (core.Expr, error) {
	tokens, err := Tokenize(text)
	if err != nil {
		return nil, err
	}
	return Parse(tokens)
}

// Parse builds an expression tree from a token sequence.
//
// All binary operators are left-associative, so 2^3^2 is (2^3)^2. Chains of
// '+' are collapsed into a single Sum call.
func Parse(tokens []token.Token) (core.Expr, error) {
	return parseRange(tokens)
}

// Parser state for one token range. Function arguments get their own
// parser, so nesting depth of calls is bounded by the formula itself.
type Parser struct {
	tokens []token.Token
	output []core.Expr
	ops    []token.Token // operators and LPAREN markers
}

func parseRange(tokens []token.Token) (core.Expr, error) {
	p := &Parser{tokens: tokens}
	return p.parse()
}

func (p *Parser) parse() (core.Expr, error) {
	if len(p.tokens) == 0 {
		return nil, &ParseError{Kind: EmptyExpression}
	}

	expectOperand := true
	for i := 0; i < len(p.tokens); {
		tok := p.tokens[i]
		switch {
		case tok.Type == token.INT || tok.Type == token.CELL:
			if !expectOperand {
				return nil, unexpected(tok)
			}
			expr, err := operand(tok)
			if err != nil {
				return nil, err
			}
			p.output = append(p.output, expr)
			expectOperand = false
			i++

		case tok.Type == token.FUNC:
			if !expectOperand {
				return nil, unexpected(tok)
			}
			call, next, err := parseCall(p.tokens, i)
			if err != nil {
				return nil, err
			}
			p.output = append(p.output, call)
			expectOperand = false
			i = next

		case token.IsOperator(tok.Type):
			if expectOperand {
				return nil, unexpected(tok)
			}
			prec := token.Precedence(tok.Type)
			for len(p.ops) > 0 {
				top := p.ops[len(p.ops)-1]
				if top.Type == token.LPAREN || token.Precedence(top.Type) < prec {
					break
				}
				p.reduce()
			}
			p.ops = append(p.ops, tok)
			expectOperand = true
			i++

		case tok.Type == token.LPAREN:
			if !expectOperand {
				return nil, unexpected(tok)
			}
			p.ops = append(p.ops, tok)
			i++

		case tok.Type == token.RPAREN:
			if expectOperand {
				if n := len(p.ops); n > 0 && p.ops[n-1].Type == token.LPAREN {
					return nil, &ParseError{Kind: EmptyExpression, Pos: tok.Pos}
				}
				return nil, unexpected(tok)
			}
			if !p.closeParen() {
				return nil, &ParseError{Kind: MismatchedParens, Pos: tok.Pos}
			}
			i++

		default:
			return nil, unexpected(tok)
		}
	}

	if expectOperand {
		return nil, unexpected(eofAfter(p.tokens))
	}
	for len(p.ops) > 0 {
		top := p.ops[len(p.ops)-1]
		if top.Type == token.LPAREN {
			return nil, &ParseError{Kind: MismatchedParens, Pos: top.Pos}
		}
		p.reduce()
	}
	return p.output[0], nil
}

// closeParen reduces operators down to the matching LPAREN and drops it.
func (p *Parser) closeParen() bool {
	for len(p.ops) > 0 {
		top := p.ops[len(p.ops)-1]
		if top.Type == token.LPAREN {
			p.ops = p.ops[:len(p.ops)-1]
			return true
		}
		p.reduce()
	}
	return false
}

// reduce pops one operator and its two operands and pushes the combined
// node. The operand/operator alternation enforced by parse guarantees both
// operands exist.
func (p *Parser) reduce() {
	op := p.ops[len(p.ops)-1]
	p.ops = p.ops[:len(p.ops)-1]

	n := len(p.output)
	left, right := p.output[n-2], p.output[n-1]
	p.output = p.output[:n-2]
	p.output = append(p.output, combine(op.Type, left, right))
}

// combine builds the node for a binary operator. Addition becomes a Sum
// call, splicing in the arguments of operands that are Sums already.
func combine(op token.TokenType, left, right core.Expr) core.Expr {
	switch op {
	case token.PLUS:
		args := make([]core.Expr, 0, 2)
		args = appendSumArgs(args, left)
		args = appendSumArgs(args, right)
		return &core.CallExpr{Func: core.FuncSum, Args: args}
	case token.MINUS:
		return &core.BinaryExpr{Op: core.OpSub, Left: left, Right: right}
	case token.STAR:
		return &core.BinaryExpr{Op: core.OpMul, Left: left, Right: right}
	case token.SLASH:
		return &core.BinaryExpr{Op: core.OpDiv, Left: left, Right: right}
	default:
		return &core.BinaryExpr{Op: core.OpPow, Left: left, Right: right}
	}
}

func appendSumArgs(args []core.Expr, e core.Expr) []core.Expr {
	if call, ok := e.(*core.CallExpr); ok && call.Func == core.FuncSum {
		return append(args, call.Args...)
	}
	return append(args, e)
}

func operand(tok token.Token) (core.Expr, error) {
	if tok.Type == token.CELL {
		id, err := core.ParseCellID(tok.Literal)
		if err != nil {
			return nil, &ParseError{Kind: BadCellRef, Pos: tok.Pos}
		}
		return &core.CellRef{Cell: id}, nil
	}
	v, err := strconv.ParseInt(tok.Literal, 10, 64)
	if err != nil {
		return nil, &ParseError{Kind: InvalidNumber, Pos: tok.Pos}
	}
	return &core.IntLit{Value: v}, nil
}

// parseCall parses a function call starting at tokens[start] (the FUNC
// token) and returns the index just past its closing parenthesis.
func parseCall(tokens []token.Token, start int) (core.Expr, int, error) {
	name := tokens[start]
	fn, ok := core.LookupFunction(name.Literal)
	if !ok {
		return nil, 0, &ParseError{Kind: UnknownFunction, Pos: name.Pos, Func: name.Literal}
	}
	if start+1 >= len(tokens) || tokens[start+1].Type != token.LPAREN {
		return nil, 0, &ParseError{Kind: ExpectedOpenParen, Pos: name.Pos, Func: name.Literal}
	}

	var args []core.Expr
	i := start + 2
	for {
		if i >= len(tokens) {
			return nil, 0, unclosedCall(tokens)
		}

		end := argumentEnd(tokens, i)
		if end == i {
			// "Fn()" is an arity problem; "Fn(,x)" and "Fn(x,)" are empty arguments.
			if tokens[i].Type == token.RPAREN && len(args) == 0 {
				if err := checkArity(fn, name, 0); err != nil {
					return nil, 0, err
				}
			}
			return nil, 0, &ParseError{Kind: EmptyExpression, Pos: tokens[i].Pos}
		}

		arg, err := parseRange(tokens[i:end])
		if err != nil {
			return nil, 0, err
		}
		args = append(args, arg)

		if end >= len(tokens) {
			return nil, 0, unclosedCall(tokens)
		}
		i = end + 1
		if tokens[end].Type == token.RPAREN {
			break
		}
	}

	if err := checkArity(fn, name, len(args)); err != nil {
		return nil, 0, err
	}
	return &core.CallExpr{Func: fn, Args: args}, i, nil
}

// unclosedCall reports an argument list that runs to the end of the
// formula, with or without a trailing comma.
func unclosedCall(tokens []token.Token) error {
	return &ParseError{Kind: ExpectedCommaOrCloseParen, Pos: eofAfter(tokens).Pos}
}

// argumentEnd returns the index of the comma or closing parenthesis that
// ends the argument starting at tokens[start], or len(tokens) if the
// argument list is never closed.
func argumentEnd(tokens []token.Token, start int) int {
	depth := 0
	for i := start; i < len(tokens); i++ {
		switch tokens[i].Type {
		case token.LPAREN:
			depth++
		case token.RPAREN:
			if depth == 0 {
				return i
			}
			depth--
		case token.COMMA:
			if depth == 0 {
				return i
			}
		}
	}
	return len(tokens)
}

func checkArity(fn core.Function, name token.Token, got int) error {
	lo, hi := fn.Arity()
	if got >= lo && (hi < 0 || got <= hi) {
		return nil
	}
	want := strconv.Itoa(lo)
	if hi < 0 {
		want = "at least " + want
	}
	return &ParseError{Kind: WrongArity, Pos: name.Pos, Func: fn.String(), Want: want, Got: got}
}

func unexpected(tok token.Token) error {
	return &ParseError{Kind: UnexpectedToken, Pos: tok.Pos, Token: tok}
}

// eofAfter synthesizes an EOF token positioned just past the last token.
func eofAfter(tokens []token.Token) token.Token {
	if len(tokens) == 0 {
		return token.Token{Type: token.EOF, Pos: token.Position{Column: 1}}
	}
	last := tokens[len(tokens)-1]
	return token.Token{
		Type: token.EOF,
		Pos: token.Position{
			Column: last.Pos.Column + len(last.Literal),
			Offset: last.Pos.Offset + len(last.Literal),
		},
	}
}
