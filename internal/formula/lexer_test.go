package formula

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenizeKinds(t *testing.T) {
	cases := []struct {
		input string
		types []TokenType
	}{
		{"1+2", []TokenType{TokenNumber, TokenOperator, TokenNumber, TokenEOF}},
		{"A1*B2", []TokenType{TokenIdentifier, TokenOperator, TokenIdentifier, TokenEOF}},
		{`SUM(A1:A3)`, []TokenType{TokenIdentifier, TokenLeftParen, TokenIdentifier, TokenColon, TokenIdentifier, TokenRightParen, TokenEOF}},
		{`IF(A1>5,"y","n")`, []TokenType{TokenIdentifier, TokenLeftParen, TokenIdentifier, TokenOperator, TokenNumber, TokenComma, TokenString, TokenComma, TokenString, TokenRightParen, TokenEOF}},
		{"  1.5e3  ", []TokenType{TokenNumber, TokenEOF}},
	}
	for _, tc := range cases {
		t.Run(tc.input, func(t *testing.T) {
			tokens, err := Tokenize(tc.input)
			require.NoError(t, err)
			got := make([]TokenType, len(tokens))
			for i, tok := range tokens {
				got[i] = tok.Type
			}
			assert.Equal(t, tc.types, got)
		})
	}
}

func TestTokenizeTwoCharOperators(t *testing.T) {
	tokens, err := Tokenize("A1<=2<>3>=4")
	require.NoError(t, err)
	var ops []string
	for _, tok := range tokens {
		if tok.Type == TokenOperator {
			ops = append(ops, tok.Value)
		}
	}
	assert.Equal(t, []string{"<=", "<>", ">="}, ops)
}

func TestTokenizeStringEscapes(t *testing.T) {
	tokens, err := Tokenize(`"he said ""hi"""`)
	require.NoError(t, err)
	require.Len(t, tokens, 2)
	assert.Equal(t, `he said "hi"`, tokens[0].Value)
}

func TestTokenizeNumberForms(t *testing.T) {
	cases := []struct {
		input string
		value string
	}{
		{"42", "42"},
		{"3.14", "3.14"},
		{".5", ".5"},
		{"1e6", "1e6"},
		{"2.5E-3", "2.5E-3"},
	}
	for _, tc := range cases {
		t.Run(tc.input, func(t *testing.T) {
			tokens, err := Tokenize(tc.input)
			require.NoError(t, err)
			require.Equal(t, TokenNumber, tokens[0].Type)
			assert.Equal(t, tc.value, tokens[0].Value)
		})
	}
}

func TestTokenizeErrors(t *testing.T) {
	for _, input := range []string{`"open`, "1+#", "a1 ! b1"} {
		t.Run(input, func(t *testing.T) {
			_, err := Tokenize(input)
			var serr *SyntaxError
			assert.ErrorAs(t, err, &serr)
		})
	}
}

func TestTokenPositions(t *testing.T) {
	tokens, err := Tokenize("A1 + 2")
	require.NoError(t, err)
	assert.Equal(t, 0, tokens[0].Pos)
	assert.Equal(t, 3, tokens[1].Pos)
	assert.Equal(t, 5, tokens[2].Pos)
}
