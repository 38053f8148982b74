// Package formula evaluates derived-metric expressions. The grammar is
// limited to numbers, canonical keys, + - * / and parentheses; expressions
// only see the row they are evaluated against.
package formula

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

var (
	ErrSyntax          = errors.New("formula syntax error")
	ErrMissingOperand  = errors.New("missing operand")
	ErrDivisionByZero  = errors.New("division by zero")
	ErrNonFiniteResult = errors.New("non-finite result")
)

const maxExpressionLength = 1024

// Expression is a compiled formula.
type Expression struct {
	source string
	root   node
	refs   []string
}

// Compile parses src into an Expression.
func Compile(src string) (*Expression, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return nil, errors.Wrap(ErrSyntax, "expression is empty")
	}
	if len(src) > maxExpressionLength {
		return nil, errors.Wrapf(ErrSyntax, "expression longer than %d characters", maxExpressionLength)
	}

	tokens, err := tokenize(src)
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: tokens}
	root, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.kind != tokenEOF {
		return nil, errors.Wrapf(ErrSyntax, "unexpected %q at position %d", tok.text, tok.pos)
	}

	seen := make(map[string]struct{})
	collectRefs(root, seen)
	refs := make([]string, 0, len(seen))
	for ref := range seen {
		refs = append(refs, ref)
	}
	sort.Strings(refs)

	return &Expression{source: src, root: root, refs: refs}, nil
}

func (e *Expression) String() string {
	return e.source
}

// References lists the canonical keys the expression reads, sorted.
func (e *Expression) References() []string {
	return append([]string(nil), e.refs...)
}

// Eval computes the expression against row.
func (e *Expression) Eval(row map[string]float64) (float64, error) {
	v, err := e.root.eval(row)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errors.Wrapf(ErrNonFiniteResult, "%s", e.source)
	}
	return v, nil
}

type node interface {
	eval(row map[string]float64) (float64, error)
}

type numberNode float64

func (n numberNode) eval(map[string]float64) (float64, error) {
	return float64(n), nil
}

type refNode string

func (n refNode) eval(row map[string]float64) (float64, error) {
	v, ok := row[string(n)]
	if !ok {
		return 0, errors.Wrapf(ErrMissingOperand, "%q", string(n))
	}
	return v, nil
}

type negNode struct {
	operand node
}

func (n negNode) eval(row map[string]float64) (float64, error) {
	v, err := n.operand.eval(row)
	if err != nil {
		return 0, err
	}
	return -v, nil
}

type binaryNode struct {
	op          byte
	left, right node
}

func (n binaryNode) eval(row map[string]float64) (float64, error) {
	l, err := n.left.eval(row)
	if err != nil {
		return 0, err
	}
	r, err := n.right.eval(row)
	if err != nil {
		return 0, err
	}
	switch n.op {
	case '+':
		return l + r, nil
	case '-':
		return l - r, nil
	case '*':
		return l * r, nil
	default:
		if r == 0 {
			return 0, ErrDivisionByZero
		}
		return l / r, nil
	}
}

func collectRefs(n node, out map[string]struct{}) {
	switch v := n.(type) {
	case refNode:
		out[string(v)] = struct{}{}
	case negNode:
		collectRefs(v.operand, out)
	case binaryNode:
		collectRefs(v.left, out)
		collectRefs(v.right, out)
	}
}

type tokenKind int

const (
	tokenEOF tokenKind = iota
	tokenNumber
	tokenIdent
	tokenOp
	tokenLParen
	tokenRParen
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

func tokenize(src string) ([]token, error) {
	var out []token
	for i := 0; i < len(src); {
		c := src[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c == '+' || c == '-' || c == '*' || c == '/':
			out = append(out, token{kind: tokenOp, text: string(c), pos: i})
			i++
		case c == '(':
			out = append(out, token{kind: tokenLParen, text: "(", pos: i})
			i++
		case c == ')':
			out = append(out, token{kind: tokenRParen, text: ")", pos: i})
			i++
		case isDigit(c) || c == '.':
			start := i
			for i < len(src) && (isDigit(src[i]) || src[i] == '.') {
				i++
			}
			out = append(out, token{kind: tokenNumber, text: src[start:i], pos: start})
		case isIdentStart(c):
			start := i
			for i < len(src) && (isIdentStart(src[i]) || isDigit(src[i])) {
				i++
			}
			out = append(out, token{kind: tokenIdent, text: src[start:i], pos: start})
		default:
			return nil, errors.Wrapf(ErrSyntax, "unexpected character %q at position %d", c, i)
		}
	}
	out = append(out, token{kind: tokenEOF, pos: len(src)})
	return out, nil
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// parser implements:
//
//	expr   = term { ("+" | "-") term }
//	term   = unary { ("*" | "/") unary }
//	unary  = "-" unary | primary
//	primary = number | ident | "(" expr ")"
type parser struct {
	tokens []token
	pos    int
	depth  int
}

const maxNestingDepth = 64

func (p *parser) peek() token {
	return p.tokens[p.pos]
}

func (p *parser) next() token {
	tok := p.tokens[p.pos]
	if tok.kind != tokenEOF {
		p.pos++
	}
	return tok
}

func (p *parser) parseExpr() (node, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for {
		tok := p.peek()
		if tok.kind != tokenOp || (tok.text != "+" && tok.text != "-") {
			return left, nil
		}
		p.next()
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = binaryNode{op: tok.text[0], left: left, right: right}
	}
}

func (p *parser) parseTerm() (node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		tok := p.peek()
		if tok.kind != tokenOp || (tok.text != "*" && tok.text != "/") {
			return left, nil
		}
		p.next()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = binaryNode{op: tok.text[0], left: left, right: right}
	}
}

func (p *parser) parseUnary() (node, error) {
	tok := p.peek()
	if tok.kind == tokenOp && tok.text == "-" {
		p.next()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return negNode{operand: operand}, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (node, error) {
	tok := p.next()
	switch tok.kind {
	case tokenNumber:
		v, err := strconv.ParseFloat(tok.text, 64)
		if err != nil {
			return nil, errors.Wrapf(ErrSyntax, "invalid number %q at position %d", tok.text, tok.pos)
		}
		return numberNode(v), nil
	case tokenIdent:
		return refNode(tok.text), nil
	case tokenLParen:
		p.depth++
		if p.depth > maxNestingDepth {
			return nil, errors.Wrapf(ErrSyntax, "nesting deeper than %d", maxNestingDepth)
		}
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if closing := p.next(); closing.kind != tokenRParen {
			return nil, errors.Wrapf(ErrSyntax, "expected ) at position %d", closing.pos)
		}
		p.depth--
		return inner, nil
	case tokenEOF:
		return nil, errors.Wrap(ErrSyntax, "unexpected end of expression")
	default:
		return nil, errors.Wrapf(ErrSyntax, "unexpected %q at position %d", tok.text, tok.pos)
	}
}
