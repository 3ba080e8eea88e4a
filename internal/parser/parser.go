// Package parser turns fragment source text into an expression tree.
//
// The rewriter itself treats parsing as an external collaborator; this
// package is the concrete collaborator the CLI, the inclusion path, and the
// tests use. The grammar is a small expression language: numeric and string
// literals, identifiers, calls, element-wise broadcast calls f.(x), array
// literals, assignment, and the arithmetic operators + - * / \ ^ (operators
// parse as calls with the operator name as callee).
package parser

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/reprec/reprec/internal/expr"
)

// ParseError reports a syntax error with its byte offset in the source.
type ParseError struct {
	Offset  int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at offset %d: %s", e.Offset, e.Message)
}

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokInt
	tokFloat
	tokString
	tokIdent
	tokOp     // + - * / \ ^
	tokLParen // (
	tokRParen // )
	tokLBrack // [
	tokRBrack // ]
	tokComma
	tokAssign // =
	tokTerm   // newline or ;
	tokDotParen
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

type lexer struct {
	src  string
	pos  int
	toks []token
}

// Parse parses a whole fragment. A single-statement fragment returns the
// statement itself; multiple statements return a Block.
func Parse(src string) (expr.Node, error) {
	toks, err := lex(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	var stmts []expr.Node
	p.skipTerms()
	for !p.at(tokEOF) {
		stmt, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
		if !p.at(tokEOF) && !p.at(tokTerm) {
			return nil, p.errorf("expected end of statement, found %q", p.peek().text)
		}
		p.skipTerms()
	}
	switch len(stmts) {
	case 0:
		return nil, &ParseError{Offset: 0, Message: "empty fragment"}
	case 1:
		return stmts[0], nil
	default:
		return &expr.Block{Stmts: stmts}, nil
	}
}

func lex(src string) ([]token, error) {
	l := &lexer{src: src}
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case c == ' ' || c == '\t' || c == '\r':
			l.pos++
		case c == '#': // comment to end of line
			for l.pos < len(l.src) && l.src[l.pos] != '\n' {
				l.pos++
			}
		case c == '\n' || c == ';':
			l.emit(tokTerm, string(c))
		case c == '(':
			l.emit(tokLParen, "(")
		case c == ')':
			l.emit(tokRParen, ")")
		case c == '[':
			l.emit(tokLBrack, "[")
		case c == ']':
			l.emit(tokRBrack, "]")
		case c == ',':
			l.emit(tokComma, ",")
		case c == '=':
			l.emit(tokAssign, "=")
		case strings.IndexByte("+-*/\\^", c) >= 0:
			l.emit(tokOp, string(c))
		case c == '"':
			if err := l.lexString(); err != nil {
				return nil, err
			}
		case c >= '0' && c <= '9' || c == '.' && l.pos+1 < len(l.src) && isDigit(l.src[l.pos+1]):
			l.lexNumber()
		case isIdentStart(rune(c)):
			l.lexIdent()
		default:
			return nil, &ParseError{Offset: l.pos, Message: fmt.Sprintf("unexpected character %q", c)}
		}
	}
	l.toks = append(l.toks, token{kind: tokEOF, pos: l.pos})
	return l.toks, nil
}

func (l *lexer) emit(kind tokenKind, text string) {
	l.toks = append(l.toks, token{kind: kind, text: text, pos: l.pos})
	l.pos += len(text)
}

func (l *lexer) lexString() error {
	start := l.pos
	l.pos++ // opening quote
	for l.pos < len(l.src) && l.src[l.pos] != '"' {
		if l.src[l.pos] == '\n' {
			return &ParseError{Offset: start, Message: "unterminated string literal"}
		}
		l.pos++
	}
	if l.pos >= len(l.src) {
		return &ParseError{Offset: start, Message: "unterminated string literal"}
	}
	l.pos++ // closing quote
	l.toks = append(l.toks, token{kind: tokString, text: l.src[start+1 : l.pos-1], pos: start})
	return nil
}

// lexNumber scans an integer or float literal. Float literal text is kept
// verbatim so the rewriter can re-parse it at the destination width.
func (l *lexer) lexNumber() {
	start := l.pos
	isFloat := false
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case isDigit(c):
			l.pos++
		case c == '.':
			// A '.' followed by '(' is a broadcast marker, not a
			// decimal point.
			if l.pos+1 < len(l.src) && l.src[l.pos+1] == '(' {
				goto done
			}
			isFloat = true
			l.pos++
		case c == 'e' || c == 'E':
			if l.pos+1 < len(l.src) && (isDigit(l.src[l.pos+1]) || l.src[l.pos+1] == '+' || l.src[l.pos+1] == '-') {
				isFloat = true
				l.pos += 2
				continue
			}
			goto done
		default:
			goto done
		}
	}
done:
	text := l.src[start:l.pos]
	kind := tokInt
	if isFloat {
		kind = tokFloat
	}
	l.toks = append(l.toks, token{kind: kind, text: text, pos: start})
}

func (l *lexer) lexIdent() {
	start := l.pos
	for l.pos < len(l.src) && isIdentPart(rune(l.src[l.pos])) {
		l.pos++
	}
	text := l.src[start:l.pos]
	// f.(x) broadcast form: fold the ".(" into a single token so the
	// parser sees it as a postfix marker.
	if l.pos+1 < len(l.src) && l.src[l.pos] == '.' && l.src[l.pos+1] == '(' {
		l.toks = append(l.toks, token{kind: tokIdent, text: text, pos: start})
		l.toks = append(l.toks, token{kind: tokDotParen, text: ".(", pos: l.pos})
		l.pos += 2
		return
	}
	l.toks = append(l.toks, token{kind: tokIdent, text: text, pos: start})
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isIdentStart(r rune) bool { return r == '_' || unicode.IsLetter(r) }

func isIdentPart(r rune) bool { return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) }

type parser struct {
	toks []token
	idx  int
}

func (p *parser) peek() token { return p.toks[p.idx] }

func (p *parser) next() token {
	t := p.toks[p.idx]
	if t.kind != tokEOF {
		p.idx++
	}
	return t
}

func (p *parser) at(kind tokenKind) bool { return p.peek().kind == kind }

func (p *parser) atOp(text string) bool {
	t := p.peek()
	return t.kind == tokOp && t.text == text
}

func (p *parser) skipTerms() {
	for p.at(tokTerm) {
		p.next()
	}
}

func (p *parser) errorf(format string, args ...any) error {
	return &ParseError{Offset: p.peek().pos, Message: fmt.Sprintf(format, args...)}
}

func (p *parser) parseStmt() (expr.Node, error) {
	if p.at(tokIdent) && p.idx+1 < len(p.toks) && p.toks[p.idx+1].kind == tokAssign {
		name := p.next().text
		p.next() // '='
		val, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return &expr.Assign{Name: name, Value: val}, nil
	}
	return p.parseExpr()
}

func (p *parser) parseExpr() (expr.Node, error) {
	return p.parseAdditive()
}

func (p *parser) parseAdditive() (expr.Node, error) {
	lhs, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for p.atOp("+") || p.atOp("-") {
		op := p.next().text
		rhs, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		lhs = opCall(op, lhs, rhs)
	}
	return lhs, nil
}

func (p *parser) parseMultiplicative() (expr.Node, error) {
	lhs, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.atOp("*") || p.atOp("/") || p.atOp("\\") {
		op := p.next().text
		rhs, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		lhs = opCall(op, lhs, rhs)
	}
	return lhs, nil
}

func (p *parser) parseUnary() (expr.Node, error) {
	if p.atOp("-") {
		p.next()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		// Fold unary minus into numeric literals so -1.5 stays a
		// single literal with its sign in the decimal text.
		switch lit := operand.(type) {
		case *expr.IntLit:
			return &expr.IntLit{Text: "-" + lit.Text, Val: -lit.Val}, nil
		case *expr.FloatLit:
			return &expr.FloatLit{Text: "-" + lit.Text}, nil
		}
		return &expr.Call{Callee: &expr.Ident{Name: "-"}, Args: []expr.Node{operand}}, nil
	}
	return p.parsePower()
}

// parsePower parses base ^ exp, right-associative, binding tighter than
// unary minus on the right (as in the fragment language's source notation).
func (p *parser) parsePower() (expr.Node, error) {
	base, err := p.parsePostfix()
	if err != nil {
		return nil, err
	}
	if p.atOp("^") {
		p.next()
		exp, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return opCall("^", base, exp), nil
	}
	return base, nil
}

func (p *parser) parsePostfix() (expr.Node, error) {
	node, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.at(tokLParen):
			p.next()
			args, err := p.parseArgs(tokRParen)
			if err != nil {
				return nil, err
			}
			node = &expr.Call{Callee: node, Args: args}
		case p.at(tokDotParen):
			p.next()
			args, err := p.parseArgs(tokRParen)
			if err != nil {
				return nil, err
			}
			node = &expr.Broadcast{Callee: node, Args: args}
		default:
			return node, nil
		}
	}
}

func (p *parser) parsePrimary() (expr.Node, error) {
	switch t := p.peek(); t.kind {
	case tokInt:
		p.next()
		v, err := strconv.ParseInt(t.text, 10, 64)
		if err != nil {
			return nil, &ParseError{Offset: t.pos, Message: fmt.Sprintf("integer literal out of range: %s", t.text)}
		}
		return &expr.IntLit{Text: t.text, Val: v}, nil
	case tokFloat:
		p.next()
		return &expr.FloatLit{Text: t.text}, nil
	case tokString:
		p.next()
		return &expr.StrLit{Val: t.text}, nil
	case tokIdent:
		p.next()
		return &expr.Ident{Name: t.text}, nil
	case tokLParen:
		p.next()
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if !p.at(tokRParen) {
			return nil, p.errorf("expected ')'")
		}
		p.next()
		return inner, nil
	case tokLBrack:
		p.next()
		elems, err := p.parseArgs(tokRBrack)
		if err != nil {
			return nil, err
		}
		return &expr.ArrayLit{Elems: elems}, nil
	default:
		return nil, p.errorf("unexpected token %q", t.text)
	}
}

func (p *parser) parseArgs(closer tokenKind) ([]expr.Node, error) {
	var args []expr.Node
	if p.at(closer) {
		p.next()
		return args, nil
	}
	for {
		arg, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		switch {
		case p.at(tokComma):
			p.next()
		case p.at(closer):
			p.next()
			return args, nil
		default:
			return nil, p.errorf("expected ',' or closing delimiter")
		}
	}
}

func opCall(op string, args ...expr.Node) expr.Node {
	return &expr.Call{Callee: &expr.Ident{Name: op}, Args: args}
}
