package formula

import (
	"strconv"
	"strings"

	"github.com/gregoriobaldi/tesi/internal/cell"
)

// DefaultMaxDepth bounds expression nesting when no limit is supplied.
const DefaultMaxDepth = 64

type parser struct {
	tokens   []Token
	pos      int
	depth    int
	maxDepth int
}

// Parse builds an AST from formula text without the leading "=".
func Parse(input string) (Node, error) {
	return ParseDepth(input, DefaultMaxDepth)
}

// ParseDepth parses with an explicit nesting limit. Exceeding the limit
// is a syntax error, so pathological formulas fail before evaluation.
func ParseDepth(input string, maxDepth int) (Node, error) {
	tokens, err := Tokenize(input)
	if err != nil {
		return nil, err
	}
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	p := &parser{tokens: tokens, maxDepth: maxDepth}
	node, err := p.parseComparison()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.Type != TokenEOF {
		return nil, syntaxErrorf(tok.Pos, "unexpected %s %q after expression", tok.Type, tok.Value)
	}
	return node, nil
}

func (p *parser) peek() Token {
	return p.tokens[p.pos]
}

func (p *parser) next() Token {
	tok := p.tokens[p.pos]
	if tok.Type != TokenEOF {
		p.pos++
	}
	return tok
}

func (p *parser) enter() error {
	p.depth++
	if p.depth > p.maxDepth {
		return syntaxErrorf(p.peek().Pos, "expression nested deeper than %d levels", p.maxDepth)
	}
	return nil
}

func (p *parser) leave() {
	p.depth--
}

func (p *parser) peekOperator(ops ...string) (string, bool) {
	tok := p.peek()
	if tok.Type != TokenOperator {
		return "", false
	}
	for _, op := range ops {
		if tok.Value == op {
			return op, true
		}
	}
	return "", false
}

func (p *parser) parseComparison() (Node, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()
	left, err := p.parseAddition()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := p.peekOperator("=", "<>", "<", "<=", ">", ">=")
		if !ok {
			return left, nil
		}
		p.next()
		right, err := p.parseAddition()
		if err != nil {
			return nil, err
		}
		left = &BinaryOpNode{Op: op, Left: left, Right: right}
	}
}

func (p *parser) parseAddition() (Node, error) {
	left, err := p.parseMultiplication()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := p.peekOperator("+", "-")
		if !ok {
			return left, nil
		}
		p.next()
		right, err := p.parseMultiplication()
		if err != nil {
			return nil, err
		}
		left = &BinaryOpNode{Op: op, Left: left, Right: right}
	}
}

func (p *parser) parseMultiplication() (Node, error) {
	left, err := p.parsePower()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := p.peekOperator("*", "/")
		if !ok {
			return left, nil
		}
		p.next()
		right, err := p.parsePower()
		if err != nil {
			return nil, err
		}
		left = &BinaryOpNode{Op: op, Left: left, Right: right}
	}
}

// parsePower is right associative: 2^3^2 is 2^(3^2).
func (p *parser) parsePower() (Node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	if _, ok := p.peekOperator("^"); !ok {
		return left, nil
	}
	p.next()
	right, err := p.parsePower()
	if err != nil {
		return nil, err
	}
	return &BinaryOpNode{Op: "^", Left: left, Right: right}, nil
}

func (p *parser) parseUnary() (Node, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()
	if op, ok := p.peekOperator("+", "-"); ok {
		p.next()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &UnaryOpNode{Op: op, Operand: operand}, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (Node, error) {
	tok := p.peek()
	switch tok.Type {
	case TokenNumber:
		p.next()
		n, err := strconv.ParseFloat(tok.Value, 64)
		if err != nil {
			return nil, syntaxErrorf(tok.Pos, "bad number %q", tok.Value)
		}
		return &NumberNode{Value: n}, nil
	case TokenString:
		p.next()
		return &StringNode{Value: tok.Value}, nil
	case TokenIdentifier:
		return p.parseIdentifier()
	case TokenLeftParen:
		p.next()
		if err := p.enter(); err != nil {
			return nil, err
		}
		inner, err := p.parseComparison()
		p.leave()
		if err != nil {
			return nil, err
		}
		if closing := p.peek(); closing.Type != TokenRightParen {
			return nil, syntaxErrorf(closing.Pos, "expected closing parenthesis")
		}
		p.next()
		return inner, nil
	case TokenEOF:
		return nil, syntaxErrorf(tok.Pos, "unexpected end of formula")
	default:
		return nil, syntaxErrorf(tok.Pos, "unexpected %s %q", tok.Type, tok.Value)
	}
}

// parseIdentifier resolves the identifier classes the lexer leaves
// undistinguished: boolean literals, function calls, cell references,
// and colon-joined ranges.
func (p *parser) parseIdentifier() (Node, error) {
	tok := p.next()
	upper := strings.ToUpper(tok.Value)

	if p.peek().Type == TokenLeftParen {
		return p.parseCall(upper, tok.Pos)
	}

	switch upper {
	case "TRUE":
		return &BooleanNode{Value: true}, nil
	case "FALSE":
		return &BooleanNode{Value: false}, nil
	}

	start, err := cell.ParseAddress(tok.Value)
	if err != nil {
		// not an address and not a call: keep it and resolve to the
		// name error at evaluation time
		return &NameNode{Name: tok.Value}, nil
	}

	if p.peek().Type == TokenColon {
		p.next()
		endTok := p.next()
		if endTok.Type != TokenIdentifier {
			return nil, syntaxErrorf(endTok.Pos, "expected cell reference after colon")
		}
		end, err := cell.ParseAddress(endTok.Value)
		if err != nil {
			return nil, syntaxErrorf(endTok.Pos, "bad range end %q", endTok.Value)
		}
		return &RangeRefNode{Rng: cell.NewRange(start, end)}, nil
	}
	return &CellRefNode{Addr: start}, nil
}

func (p *parser) parseCall(name string, pos int) (Node, error) {
	p.next() // consume "("
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	call := &FunctionCallNode{Name: name}
	if p.peek().Type == TokenRightParen {
		p.next()
		return call, nil
	}
	for {
		arg, err := p.parseComparison()
		if err != nil {
			return nil, err
		}
		call.Args = append(call.Args, arg)
		switch tok := p.peek(); tok.Type {
		case TokenComma:
			p.next()
		case TokenRightParen:
			p.next()
			return call, nil
		default:
			return nil, syntaxErrorf(tok.Pos, "expected comma or closing parenthesis in %s call", name)
		}
	}
}
