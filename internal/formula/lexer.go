// Package formula tokenizes, parses, and evaluates spreadsheet
// formulas. The text after a leading "=" is turned into an AST which
// the engine caches and evaluates against a cell lookup.
package formula

import (
	"fmt"
	"strings"
	"unicode"
)

// TokenType identifies the lexical class of a token.
type TokenType uint8

const (
	TokenEOF TokenType = iota
	TokenNumber
	TokenString
	TokenIdentifier
	TokenOperator
	TokenLeftParen
	TokenRightParen
	TokenComma
	TokenColon
)

func (t TokenType) String() string {
	switch t {
	case TokenEOF:
		return "eof"
	case TokenNumber:
		return "number"
	case TokenString:
		return "string"
	case TokenIdentifier:
		return "identifier"
	case TokenOperator:
		return "operator"
	case TokenLeftParen:
		return "("
	case TokenRightParen:
		return ")"
	case TokenComma:
		return ","
	case TokenColon:
		return ":"
	default:
		return "unknown"
	}
}

// Token is a lexeme with its byte position in the formula text.
type Token struct {
	Type  TokenType
	Value string
	Pos   int
}

// SyntaxError reports a tokenize or parse failure with its position.
type SyntaxError struct {
	Pos int
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at position %d: %s", e.Pos, e.Msg)
}

func syntaxErrorf(pos int, format string, args ...any) error {
	return &SyntaxError{Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

type lexer struct {
	input  []rune
	pos    int
	tokens []Token
}

// Tokenize splits formula text (without the leading "=") into tokens.
// The returned slice always ends with a TokenEOF entry.
func Tokenize(input string) ([]Token, error) {
	l := &lexer{input: []rune(input)}
	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		switch {
		case ch == ' ' || ch == '\t':
			l.pos++
		case ch >= '0' && ch <= '9':
			l.scanNumber()
		case ch == '.' && l.pos+1 < len(l.input) && isDigit(l.input[l.pos+1]):
			l.scanNumber()
		case ch == '"':
			if err := l.scanString(); err != nil {
				return nil, err
			}
		case unicode.IsLetter(ch):
			l.scanIdentifier()
		case ch == '(':
			l.emit(TokenLeftParen, "(")
		case ch == ')':
			l.emit(TokenRightParen, ")")
		case ch == ',':
			l.emit(TokenComma, ",")
		case ch == ':':
			l.emit(TokenColon, ":")
		case isOperatorStart(ch):
			l.scanOperator()
		default:
			return nil, syntaxErrorf(l.pos, "unexpected character %q", ch)
		}
	}
	l.tokens = append(l.tokens, Token{Type: TokenEOF, Pos: len(l.input)})
	return l.tokens, nil
}

func (l *lexer) emit(t TokenType, v string) {
	l.tokens = append(l.tokens, Token{Type: t, Value: v, Pos: l.pos})
	l.pos += len([]rune(v))
}

func (l *lexer) scanNumber() {
	start := l.pos
	for l.pos < len(l.input) && isDigit(l.input[l.pos]) {
		l.pos++
	}
	if l.pos < len(l.input) && l.input[l.pos] == '.' {
		l.pos++
		for l.pos < len(l.input) && isDigit(l.input[l.pos]) {
			l.pos++
		}
	}
	// exponent only counts when digits follow, otherwise back off and
	// let "e" lex as an identifier
	if l.pos < len(l.input) && (l.input[l.pos] == 'e' || l.input[l.pos] == 'E') {
		mark := l.pos
		l.pos++
		if l.pos < len(l.input) && (l.input[l.pos] == '+' || l.input[l.pos] == '-') {
			l.pos++
		}
		if l.pos < len(l.input) && isDigit(l.input[l.pos]) {
			for l.pos < len(l.input) && isDigit(l.input[l.pos]) {
				l.pos++
			}
		} else {
			l.pos = mark
		}
	}
	l.tokens = append(l.tokens, Token{Type: TokenNumber, Value: string(l.input[start:l.pos]), Pos: start})
}

func (l *lexer) scanString() error {
	start := l.pos
	l.pos++ // opening quote
	var b strings.Builder
	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		if ch == '"' {
			if l.pos+1 < len(l.input) && l.input[l.pos+1] == '"' {
				b.WriteRune('"')
				l.pos += 2
				continue
			}
			l.pos++
			l.tokens = append(l.tokens, Token{Type: TokenString, Value: b.String(), Pos: start})
			return nil
		}
		b.WriteRune(ch)
		l.pos++
	}
	return syntaxErrorf(start, "unterminated string")
}

func (l *lexer) scanIdentifier() {
	start := l.pos
	for l.pos < len(l.input) && (unicode.IsLetter(l.input[l.pos]) || isDigit(l.input[l.pos]) || l.input[l.pos] == '_') {
		l.pos++
	}
	l.tokens = append(l.tokens, Token{Type: TokenIdentifier, Value: string(l.input[start:l.pos]), Pos: start})
}

func (l *lexer) scanOperator() {
	start := l.pos
	ch := l.input[l.pos]
	op := string(ch)
	// greedy two-character forms: <=, >=, <>
	if l.pos+1 < len(l.input) {
		next := l.input[l.pos+1]
		if (ch == '<' && (next == '=' || next == '>')) || (ch == '>' && next == '=') {
			op = string(ch) + string(next)
		}
	}
	l.pos += len(op)
	l.tokens = append(l.tokens, Token{Type: TokenOperator, Value: op, Pos: start})
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isOperatorStart(r rune) bool {
	switch r {
	case '+', '-', '*', '/', '^', '=', '<', '>':
		return true
	}
	return false
}
