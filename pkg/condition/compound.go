package condition

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// Compound evaluates boolean compositions of simple comparisons:
//
//	ticketType == "student" && !uiState.locked
//	(status === "Violation" || status === "Non-standard") && count != 0
//
// It is a behaviour change relative to Simple (which reads `a && b` as one
// dotted path) and is only used when configured explicitly.
type Compound struct {
	logger *zap.Logger
}

var _ Evaluator = (*Compound)(nil)

// NewCompound constructs the compound-expression evaluator.
func NewCompound(opts ...Option) *Compound {
	cfg := newOptions(opts)
	return &Compound{logger: cfg.logger}
}

func (c *Compound) Evaluate(condition string, data map[string]any) (result bool) {
	defer func() {
		if rec := recover(); rec != nil {
			c.logger.Warn("condition: evaluation panicked",
				zap.String("condition", condition),
				zap.String("panic", fmt.Sprint(rec)),
			)
			result = false
		}
	}()

	node, err := Parse(condition)
	if err != nil {
		c.logger.Debug("condition: parse failed", zap.String("condition", condition), zap.Error(err))
		return false
	}
	return node.eval(data)
}

// Node is a parsed compound expression.
type Node interface {
	eval(data map[string]any) bool
}

// Parse compiles a compound expression. An empty expression is an error.
func Parse(condition string) (Node, error) {
	tokens, err := tokenize(strings.TrimSpace(condition))
	if err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		return nil, errors.New("condition: empty expression")
	}
	stream := &tokenStream{tokens: tokens}
	node, err := parseOr(stream)
	if err != nil {
		return nil, err
	}
	if stream.pos < len(stream.tokens) {
		return nil, fmt.Errorf("condition: unexpected token %q", stream.tokens[stream.pos].raw)
	}
	return node, nil
}

type tokenKind int

const (
	tokenIdentifier tokenKind = iota
	tokenString
	tokenNumber
	tokenBool
	tokenNull
	tokenEq
	tokenNeq
	tokenStrictEq
	tokenStrictNeq
	tokenAnd
	tokenOr
	tokenNot
	tokenLParen
	tokenRParen
)

type token struct {
	kind tokenKind
	raw  string
}

func tokenize(input string) ([]token, error) {
	var tokens []token
	i := 0
	peek := func(offset int) byte {
		if i+offset >= len(input) {
			return 0
		}
		return input[i+offset]
	}

	for i < len(input) {
		ch := input[i]
		switch {
		case ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r':
			i++
		case ch == '(':
			tokens = append(tokens, token{kind: tokenLParen, raw: "("})
			i++
		case ch == ')':
			tokens = append(tokens, token{kind: tokenRParen, raw: ")"})
			i++
		case ch == '!' && peek(1) == '=' && peek(2) == '=':
			tokens = append(tokens, token{kind: tokenStrictNeq, raw: "!=="})
			i += 3
		case ch == '!' && peek(1) == '=':
			tokens = append(tokens, token{kind: tokenNeq, raw: "!="})
			i += 2
		case ch == '!':
			tokens = append(tokens, token{kind: tokenNot, raw: "!"})
			i++
		case ch == '=' && peek(1) == '=' && peek(2) == '=':
			tokens = append(tokens, token{kind: tokenStrictEq, raw: "==="})
			i += 3
		case ch == '=' && peek(1) == '=':
			tokens = append(tokens, token{kind: tokenEq, raw: "=="})
			i += 2
		case ch == '=':
			return nil, errors.New("condition: unexpected '='; use '==' or '==='")
		case ch == '&':
			if peek(1) != '&' {
				return nil, errors.New("condition: unexpected '&'; use '&&'")
			}
			tokens = append(tokens, token{kind: tokenAnd, raw: "&&"})
			i += 2
		case ch == '|':
			if peek(1) != '|' {
				return nil, errors.New("condition: unexpected '|'; use '||'")
			}
			tokens = append(tokens, token{kind: tokenOr, raw: "||"})
			i += 2
		case ch == '"' || ch == '\'':
			end := strings.IndexByte(input[i+1:], ch)
			if end < 0 {
				return nil, errors.New("condition: unterminated string literal")
			}
			tokens = append(tokens, token{kind: tokenString, raw: input[i+1 : i+1+end]})
			i += end + 2
		default:
			start := i
			for i < len(input) && !strings.ContainsRune(" \t\n\r()!=&|", rune(input[i])) {
				i++
			}
			raw := input[start:i]
			switch strings.ToLower(raw) {
			case "true", "false":
				tokens = append(tokens, token{kind: tokenBool, raw: strings.ToLower(raw)})
			case "null", "nil", "undefined":
				tokens = append(tokens, token{kind: tokenNull, raw: "null"})
			default:
				if looksLikeNumber(raw) {
					tokens = append(tokens, token{kind: tokenNumber, raw: raw})
				} else {
					tokens = append(tokens, token{kind: tokenIdentifier, raw: raw})
				}
			}
		}
	}
	return tokens, nil
}

func looksLikeNumber(raw string) bool {
	if raw == "" {
		return false
	}
	_, err := strconv.ParseFloat(raw, 64)
	return err == nil
}

type tokenStream struct {
	tokens []token
	pos    int
}

func (s *tokenStream) match(kind tokenKind) bool {
	if s.pos >= len(s.tokens) || s.tokens[s.pos].kind != kind {
		return false
	}
	s.pos++
	return true
}

func (s *tokenStream) next() (token, bool) {
	if s.pos >= len(s.tokens) {
		return token{}, false
	}
	tok := s.tokens[s.pos]
	s.pos++
	return tok, true
}

func parseOr(stream *tokenStream) (Node, error) {
	left, err := parseAnd(stream)
	if err != nil {
		return nil, err
	}
	for stream.match(tokenOr) {
		right, err := parseAnd(stream)
		if err != nil {
			return nil, err
		}
		left = orNode{left: left, right: right}
	}
	return left, nil
}

func parseAnd(stream *tokenStream) (Node, error) {
	left, err := parseUnary(stream)
	if err != nil {
		return nil, err
	}
	for stream.match(tokenAnd) {
		right, err := parseUnary(stream)
		if err != nil {
			return nil, err
		}
		left = andNode{left: left, right: right}
	}
	return left, nil
}

func parseUnary(stream *tokenStream) (Node, error) {
	if stream.match(tokenNot) {
		inner, err := parseUnary(stream)
		if err != nil {
			return nil, err
		}
		return notNode{inner: inner}, nil
	}
	return parsePrimary(stream)
}

func parsePrimary(stream *tokenStream) (Node, error) {
	if stream.match(tokenLParen) {
		inner, err := parseOr(stream)
		if err != nil {
			return nil, err
		}
		if !stream.match(tokenRParen) {
			return nil, errors.New("condition: missing closing ')'")
		}
		return inner, nil
	}

	ident, ok := stream.next()
	if !ok {
		return nil, errors.New("condition: unexpected end of expression")
	}
	if ident.kind != tokenIdentifier {
		return nil, fmt.Errorf("condition: expected path, got %q", ident.raw)
	}

	for _, op := range []tokenKind{tokenStrictEq, tokenStrictNeq, tokenEq, tokenNeq} {
		if !stream.match(op) {
			continue
		}
		lit, ok := stream.next()
		if !ok {
			return nil, errors.New("condition: missing literal")
		}
		switch lit.kind {
		case tokenString, tokenNumber, tokenBool, tokenNull:
		case tokenIdentifier:
			lit.kind = tokenString
		default:
			return nil, fmt.Errorf("condition: expected literal, got %q", lit.raw)
		}
		return compareNode{path: ident.raw, op: op, literal: lit}, nil
	}
	return truthyNode{path: ident.raw}, nil
}

type orNode struct{ left, right Node }

func (n orNode) eval(data map[string]any) bool { return n.left.eval(data) || n.right.eval(data) }

type andNode struct{ left, right Node }

func (n andNode) eval(data map[string]any) bool { return n.left.eval(data) && n.right.eval(data) }

type notNode struct{ inner Node }

func (n notNode) eval(data map[string]any) bool { return !n.inner.eval(data) }

type truthyNode struct{ path string }

func (n truthyNode) eval(data map[string]any) bool {
	value, _ := Lookup(data, n.path)
	return Truthy(value)
}

type compareNode struct {
	path    string
	op      tokenKind
	literal token
}

func (n compareNode) eval(data map[string]any) bool {
	value, found := Lookup(data, n.path)
	var equal bool
	switch n.op {
	case tokenStrictEq, tokenStrictNeq:
		equal = strictMatch(value, found, n.literal)
	default:
		equal = looseMatch(value, n.literal)
	}
	if n.op == tokenNeq || n.op == tokenStrictNeq {
		return !equal
	}
	return equal
}

func strictMatch(value any, found bool, lit token) bool {
	switch lit.kind {
	case tokenNull:
		return !found || value == nil
	case tokenBool:
		b, ok := value.(bool)
		return ok && strconv.FormatBool(b) == lit.raw
	case tokenNumber:
		want, _ := strconv.ParseFloat(lit.raw, 64)
		got, ok := number(value)
		return ok && got == want
	default:
		s, ok := value.(string)
		return ok && s == lit.raw
	}
}

func looseMatch(value any, lit token) bool {
	switch lit.kind {
	case tokenNull:
		return value == nil
	case tokenBool:
		return Truthy(value) == (lit.raw == "true")
	case tokenNumber:
		want, _ := strconv.ParseFloat(lit.raw, 64)
		got, ok := number(value)
		if !ok {
			if s, isString := value.(string); isString {
				parsed, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
				return err == nil && parsed == want
			}
			return false
		}
		return got == want
	default:
		return String(value) == lit.raw
	}
}

func number(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case int32:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint64:
		return float64(v), true
	default:
		return 0, false
	}
}
