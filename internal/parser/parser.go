// Package parser implements a recursive-descent parser with
// precedence climbing, producing an *ast.Document from source text.
package parser

import (
	"fmt"
	"strings"

	"github.com/benrogmans/Lemma/internal/ast"
	"github.com/benrogmans/Lemma/internal/lemmaerr"
	"github.com/benrogmans/Lemma/internal/lexer"
	"github.com/benrogmans/Lemma/internal/token"
	"github.com/benrogmans/Lemma/internal/units"
)

// Resource limits guarding against pathological input.
const (
	MaxNestingDepth = 100
	MaxTokenCount   = 10000
)

type Parser struct {
	tokens     []token.Token
	current    int
	sourceName string
	depth      int
}

// Parse tokenizes and parses a single document from source text.
func Parse(source, sourceName string) (*ast.Document, error) {
	toks, err := lexer.Tokenize(source, sourceName)
	if err != nil {
		return nil, err
	}
	if len(toks) > MaxTokenCount {
		return nil, &lemmaerr.LimitExceeded{Limit: "token count", Allowed: MaxTokenCount, Actual: len(toks)}
	}
	p := &Parser{tokens: toks, sourceName: sourceName}
	return p.parseDocument()
}

// --- token stream helpers ---

func (p *Parser) peek() token.Token    { return p.tokens[p.current] }
func (p *Parser) previous() token.Token { return p.tokens[p.current-1] }
func (p *Parser) atEnd() bool          { return p.peek().Type == token.EOF }

func (p *Parser) check(t token.Type) bool {
	return !p.atEnd() && p.peek().Type == t
}

func (p *Parser) advance() token.Token {
	if !p.atEnd() {
		p.current++
	}
	return p.previous()
}

func (p *Parser) match(types ...token.Type) bool {
	for _, t := range types {
		if p.check(t) {
			p.advance()
			return true
		}
	}
	return false
}

func (p *Parser) expect(t token.Type, context string) (token.Token, error) {
	if p.check(t) {
		return p.advance(), nil
	}
	tok := p.peek()
	return token.Token{}, &lemmaerr.SyntaxError{
		Span:     p.spanOf(tok.Range),
		Expected: t.String(),
		Message:  fmt.Sprintf("%s: got %q", context, tok.Text),
	}
}

func (p *Parser) spanOf(r ast.Range) lemmaerr.Span {
	return lemmaerr.Span{
		SourceName: p.sourceName,
		StartLine:  r.Start.Line, StartCol: r.Start.Column,
		EndLine: r.End.Line, EndCol: r.End.Column,
	}
}

func (p *Parser) syntaxErr(tok token.Token, msg string) error {
	return &lemmaerr.SyntaxError{Span: p.spanOf(tok.Range), Message: msg}
}

// enterDepth/exitDepth guard expression nesting depth via defer at
// each recursive call site.
func (p *Parser) enterDepth() error {
	p.depth++
	if p.depth > MaxNestingDepth {
		return &lemmaerr.LimitExceeded{Limit: "expression nesting depth", Allowed: MaxNestingDepth, Actual: p.depth}
	}
	return nil
}

func (p *Parser) exitDepth() { p.depth-- }

// --- document / statements ---

func (p *Parser) parseDocument() (*ast.Document, error) {
	start := p.peek().Range.Start
	if _, err := p.expect(token.KwDoc, "expected 'doc'"); err != nil {
		return nil, err
	}
	name, err := p.parseQualifiedName()
	if err != nil {
		return nil, err
	}

	doc := &ast.Document{Name: name, SourceName: p.sourceName}

	if p.check(token.COMMENTARY) {
		doc.Commentary = p.advance().Value
	}

	for !p.atEnd() {
		switch {
		case p.check(token.KwFact):
			fact, err := p.parseFact()
			if err != nil {
				return nil, err
			}
			doc.Facts = append(doc.Facts, fact)
		case p.check(token.KwRule):
			rule, err := p.parseRule()
			if err != nil {
				return nil, err
			}
			doc.Rules = append(doc.Rules, rule)
		default:
			tok := p.peek()
			return nil, p.syntaxErr(tok, "expected 'fact' or 'rule'")
		}
	}

	doc.Range = ast.Range{Start: start, End: p.previous().Range.End}
	return doc, nil
}

func (p *Parser) parseQualifiedName() (string, error) {
	first, err := p.expect(token.IDENT, "expected a name")
	if err != nil {
		return "", err
	}
	parts := []string{first.Text}
	for p.check(token.SLASH) {
		p.advance()
		next, err := p.expect(token.IDENT, "expected a name segment after '/'")
		if err != nil {
			return "", err
		}
		parts = append(parts, next.Text)
	}
	return strings.Join(parts, "/"), nil
}

// parseDottedPath reads IDENT ("." IDENT)*, used for fact/rule
// references (`doc_name.name`, `<ref>.<field>`).
func (p *Parser) parseDottedPath() (string, ast.Range, error) {
	first, err := p.expect(token.IDENT, "expected an identifier")
	if err != nil {
		return "", ast.Range{}, err
	}
	r := first.Range
	parts := []string{first.Text}
	for p.check(token.DOT) {
		p.advance()
		next, err := p.expect(token.IDENT, "expected a name after '.'")
		if err != nil {
			return "", ast.Range{}, err
		}
		parts = append(parts, next.Text)
		r.End = next.Range.End
	}
	return strings.Join(parts, "."), r, nil
}

func (p *Parser) parseFact() (*ast.Fact, error) {
	start := p.peek().Range.Start
	p.advance() // 'fact'
	name, err := p.parseDottedPath_Name()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.ASSIGN, "expected '=' after fact name"); err != nil {
		return nil, err
	}

	if p.check(token.LBRACKET) || p.check(token.KwDoc) {
		annot, err := p.parseTypeAnnotation()
		if err != nil {
			return nil, err
		}
		return &ast.Fact{Name: name, Declared: annot, Range: ast.Range{Start: start, End: p.previous().Range.End}}, nil
	}

	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return &ast.Fact{Name: name, Default: expr, Range: ast.Range{Start: start, End: p.previous().Range.End}}, nil
}

func (p *Parser) parseDottedPath_Name() (string, error) {
	name, _, err := p.parseDottedPath()
	return name, err
}

func (p *Parser) parseTypeAnnotation() (*ast.TypeAnnotation, error) {
	start := p.peek().Range.Start
	if p.check(token.KwDoc) {
		p.advance()
		ref, err := p.parseQualifiedName()
		if err != nil {
			return nil, err
		}
		return &ast.TypeAnnotation{DocRef: ref, Range: ast.Range{Start: start, End: p.previous().Range.End}}, nil
	}

	if _, err := p.expect(token.LBRACKET, "expected '[' to start a type annotation"); err != nil {
		return nil, err
	}
	multi := false
	if p.check(token.KwMulti) {
		p.advance()
		multi = true
	}
	typeTok, err := p.expect(token.IDENT, "expected a type name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RBRACKET, "expected ']' to close a type annotation"); err != nil {
		return nil, err
	}
	return &ast.TypeAnnotation{Multi: multi, TypeName: typeTok.Text, Range: ast.Range{Start: start, End: p.previous().Range.End}}, nil
}

func (p *Parser) parseRule() (*ast.Rule, error) {
	start := p.peek().Range.Start
	p.advance() // 'rule'
	nameTok, err := p.expect(token.IDENT, "expected a rule name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.ASSIGN, "expected '=' after rule name"); err != nil {
		return nil, err
	}
	base, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	rule := &ast.Rule{Name: nameTok.Text, Base: base}

	for p.check(token.KwUnless) {
		clause, err := p.parseUnlessClause()
		if err != nil {
			return nil, err
		}
		rule.UnlessClauses = append(rule.UnlessClauses, clause)
	}

	rule.Range = ast.Range{Start: start, End: p.previous().Range.End}
	return rule, nil
}

func (p *Parser) parseUnlessClause() (*ast.UnlessClause, error) {
	start := p.peek().Range.Start
	p.advance() // 'unless'
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.KwThen, "expected 'then' after unless condition"); err != nil {
		return nil, err
	}

	clause := &ast.UnlessClause{Condition: cond}
	if p.check(token.KwVeto) {
		vetoStart := p.peek().Range.Start
		p.advance()
		var msg ast.Node
		if p.check(token.TEXT) {
			msg, err = p.parsePrimary()
			if err != nil {
				return nil, err
			}
		}
		clause.Veto = &ast.VetoExpr{Message: msg, Range: ast.Range{Start: vetoStart, End: p.previous().Range.End}}
	} else {
		result, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		clause.Result = result
	}

	clause.Range = ast.Range{Start: start, End: p.previous().Range.End}
	return clause, nil
}

// --- expressions: precedence-climbing ---
// or < and < not < comparison < additive < multiplicative < exponent
// < unary/prefix-math < postfix(?, in)

func (p *Parser) parseExpression() (ast.Node, error) {
	return p.parseOr()
}

func (p *Parser) parseOr() (ast.Node, error) {
	if err := p.enterDepth(); err != nil {
		return nil, err
	}
	defer p.exitDepth()

	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.check(token.KwOr) {
		opTok := p.advance()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &ast.LogicalExpr{Operator: "or", Left: left, Right: right, Range: spanOver(left, right, opTok)}
	}
	return left, nil
}

func (p *Parser) parseAnd() (ast.Node, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.check(token.KwAnd) {
		opTok := p.advance()
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = &ast.LogicalExpr{Operator: "and", Left: left, Right: right, Range: spanOver(left, right, opTok)}
	}
	return left, nil
}

func (p *Parser) parseNot() (ast.Node, error) {
	if p.check(token.KwNot) {
		opTok := p.advance()
		operand, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		// `not have X` is the same expression as `have not X`.
		if h, ok := operand.(*ast.HaveExpr); ok {
			h.Negated = !h.Negated
			h.Range.Start = opTok.Range.Start
			return h, nil
		}
		return &ast.UnaryExpr{Operator: "not", Operand: operand, Range: ast.Range{Start: opTok.Range.Start, End: operand.GetRange().End}}, nil
	}
	return p.parseComparison()
}

var comparisonOps = map[token.Type]string{
	token.EQ: "==", token.NEQ: "!=", token.LT: "<", token.LTE: "<=", token.GT: ">", token.GTE: ">=",
}

func (p *Parser) parseComparison() (ast.Node, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}

	if op, ok := comparisonOps[p.peek().Type]; ok {
		p.advance()
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		return &ast.ComparisonExpr{Operator: op, Left: left, Right: right, Range: ast.Range{Start: left.GetRange().Start, End: right.GetRange().End}}, nil
	}

	if p.check(token.KwIs) {
		p.advance()
		op := "is"
		if p.check(token.KwNot) {
			p.advance()
			op = "is not"
		}
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		return &ast.ComparisonExpr{Operator: op, Left: left, Right: right, Range: ast.Range{Start: left.GetRange().Start, End: right.GetRange().End}}, nil
	}

	return left, nil
}

func (p *Parser) parseAdditive() (ast.Node, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for p.check(token.PLUS) || p.check(token.MINUS) {
		opTok := p.advance()
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Operator: opTok.Text, Left: left, Right: right, Range: spanOver(left, right, opTok)}
	}
	return left, nil
}

func (p *Parser) parseMultiplicative() (ast.Node, error) {
	left, err := p.parseExponent()
	if err != nil {
		return nil, err
	}
	for p.check(token.STAR) || p.check(token.SLASH) || p.check(token.PERCENT_OP) {
		opTok := p.advance()
		right, err := p.parseExponent()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Operator: opTok.Text, Left: left, Right: right, Range: spanOver(left, right, opTok)}
	}
	return left, nil
}

// parseExponent is right-associative: "^" binds tighter on the right.
func (p *Parser) parseExponent() (ast.Node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	if p.check(token.CARET) {
		opTok := p.advance()
		right, err := p.parseExponent()
		if err != nil {
			return nil, err
		}
		return &ast.BinaryExpr{Operator: "^", Left: left, Right: right, Range: spanOver(left, right, opTok)}, nil
	}
	return left, nil
}

var prefixMathOps = map[token.Type]string{
	token.KwSqrt: "sqrt", token.KwSin: "sin", token.KwCos: "cos", token.KwTan: "tan",
	token.KwLog: "log", token.KwExp: "exp", token.KwAbs: "abs", token.KwFloor: "floor",
	token.KwCeil: "ceil", token.KwRound: "round",
}

func (p *Parser) parseUnary() (ast.Node, error) {
	if p.check(token.MINUS) {
		opTok := p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpr{Operator: "-", Operand: operand, Range: ast.Range{Start: opTok.Range.Start, End: operand.GetRange().End}}, nil
	}
	if name, ok := prefixMathOps[p.peek().Type]; ok {
		opTok := p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpr{Operator: name, Operand: operand, Range: ast.Range{Start: opTok.Range.Start, End: operand.GetRange().End}}, nil
	}
	return p.parsePostfix()
}

func (p *Parser) parsePostfix() (ast.Node, error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	for {
		switch {
		case p.check(token.QUESTION):
			qTok := p.advance()
			id, ok := expr.(*ast.Identifier)
			if !ok {
				return nil, p.syntaxErr(qTok, "'?' may only follow a rule name")
			}
			expr = &ast.RuleReference{Path: id.Path, Range: ast.Range{Start: id.Range.Start, End: qTok.Range.End}}
		case p.check(token.KwIn):
			p.advance()
			unitTok, err := p.expect(token.IDENT, "expected a unit name after 'in'")
			if err != nil {
				return nil, err
			}
			expr = &ast.UnitConversionExpr{Value: expr, TargetUnit: unitTok.Text, Range: ast.Range{Start: expr.GetRange().Start, End: unitTok.Range.End}}
		default:
			return expr, nil
		}
	}
}

func (p *Parser) parsePrimary() (ast.Node, error) {
	if err := p.enterDepth(); err != nil {
		return nil, err
	}
	defer p.exitDepth()

	tok := p.peek()
	switch tok.Type {
	case token.LPAREN:
		p.advance()
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RPAREN, "expected ')' to close parenthesized expression"); err != nil {
			return nil, err
		}
		return expr, nil

	case token.NUMBER:
		p.advance()
		return p.composeNumberLiteral(tok)

	case token.PERCENT:
		p.advance()
		return &ast.PercentageLiteral{Value: tok.Value, Range: tok.Range}, nil

	case token.TEXT:
		p.advance()
		return &ast.TextLiteral{Value: tok.Value, Range: tok.Range}, nil

	case token.REGEX:
		p.advance()
		return &ast.RegexLiteral{Pattern: tok.Value, Range: tok.Range}, nil

	case token.DATE:
		p.advance()
		return &ast.DateLiteral{Text: tok.Value, Range: tok.Range}, nil

	case token.KwTrue:
		p.advance()
		return &ast.BooleanLiteral{Value: true, Range: tok.Range}, nil

	case token.KwFalse:
		p.advance()
		return &ast.BooleanLiteral{Value: false, Range: tok.Range}, nil

	case token.KwHave:
		p.advance()
		negated := false
		if p.check(token.KwNot) {
			p.advance()
			negated = true
		}
		path, r, err := p.parseDottedPath()
		if err != nil {
			return nil, err
		}
		return &ast.HaveExpr{FactPath: path, Negated: negated, Range: ast.Range{Start: tok.Range.Start, End: r.End}}, nil

	case token.IDENT:
		path, r, err := p.parseDottedPath()
		if err != nil {
			return nil, err
		}
		return &ast.Identifier{Path: path, Range: r}, nil

	default:
		return nil, p.syntaxErr(tok, fmt.Sprintf("unexpected token %q", tok.Text))
	}
}

// composeNumberLiteral looks ahead for a currency code or unit-name
// suffix immediately following a number, composing a MoneyLiteral,
// DurationLiteral or UnitLiteral from adjacent NUMBER + IDENT tokens.
func (p *Parser) composeNumberLiteral(numTok token.Token) (ast.Node, error) {
	if p.check(token.IDENT) {
		nameTok := p.peek()
		switch {
		case lexer.IsCurrencyCode(nameTok.Text):
			p.advance()
			return &ast.MoneyLiteral{Value: numTok.Value, Currency: nameTok.Text, Range: ast.Range{Start: numTok.Range.Start, End: nameTok.Range.End}}, nil
		case units.IsDurationUnit(nameTok.Text):
			p.advance()
			return &ast.DurationLiteral{Value: numTok.Value, UnitName: nameTok.Text, Range: ast.Range{Start: numTok.Range.Start, End: nameTok.Range.End}}, nil
		case units.IsKnown(nameTok.Text):
			p.advance()
			return &ast.UnitLiteral{Value: numTok.Value, UnitName: nameTok.Text, Range: ast.Range{Start: numTok.Range.Start, End: nameTok.Range.End}}, nil
		}
	}
	return &ast.NumberLiteral{Value: numTok.Value, Range: numTok.Range}, nil
}

func spanOver(left, right ast.Node, opTok token.Token) ast.Range {
	return ast.Range{Start: left.GetRange().Start, End: right.GetRange().End}
}
