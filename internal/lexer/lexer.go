// Package lexer tokenizes Lemma source text, returning the full token
// slice before parsing begins rather than streaming.
package lexer

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/currency"

	"github.com/benrogmans/Lemma/internal/ast"
	"github.com/benrogmans/Lemma/internal/lemmaerr"
	"github.com/benrogmans/Lemma/internal/token"
	"github.com/benrogmans/Lemma/internal/units"
)

// Resource limits guarding against pathological input.
const (
	MaxIdentifierLength = 256
	MaxNumberLength     = 100
	MaxStringLength     = 1 << 20 // 1 MiB
)

type Lexer struct {
	input      []rune
	pos        int
	line       int
	column     int
	sourceName string
	tokens     []token.Token
}

func New(input, sourceName string) *Lexer {
	return &Lexer{input: []rune(input), pos: 0, line: 1, column: 1, sourceName: sourceName}
}

// Tokenize scans the entire input and returns its tokens, or the first
// SyntaxError/LimitExceeded encountered.
func Tokenize(input, sourceName string) ([]token.Token, error) {
	l := New(input, sourceName)
	return l.run()
}

func (l *Lexer) run() ([]token.Token, error) {
	for {
		l.skipWhitespaceAndComments()
		if l.atEnd() {
			break
		}
		tok, err := l.next()
		if err != nil {
			return nil, err
		}
		l.tokens = append(l.tokens, tok)
	}
	l.tokens = append(l.tokens, token.Token{Type: token.EOF, Range: l.pointRange()})
	return l.tokens, nil
}

func (l *Lexer) atEnd() bool { return l.pos >= len(l.input) }

func (l *Lexer) current() rune {
	if l.atEnd() {
		return 0
	}
	return l.input[l.pos]
}

func (l *Lexer) peekAt(offset int) rune {
	if l.pos+offset >= len(l.input) {
		return 0
	}
	return l.input[l.pos+offset]
}

func (l *Lexer) advance() rune {
	r := l.current()
	l.pos++
	if r == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
	return r
}

func (l *Lexer) pos_() ast.Position { return ast.Position{Line: l.line, Column: l.column} }

func (l *Lexer) pointRange() ast.Range {
	p := l.pos_()
	return ast.Range{Start: p, End: p}
}

func (l *Lexer) skipWhitespaceAndComments() {
	for !l.atEnd() {
		r := l.current()
		if unicode.IsSpace(r) {
			l.advance()
			continue
		}
		if r == '#' {
			for !l.atEnd() && l.current() != '\n' {
				l.advance()
			}
			continue
		}
		break
	}
}

func (l *Lexer) syntaxErr(msg string) error {
	p := l.pos_()
	return &lemmaerr.SyntaxError{
		Span:    lemmaerr.Span{SourceName: l.sourceName, StartLine: p.Line, StartCol: p.Column, EndLine: p.Line, EndCol: p.Column},
		Message: msg,
	}
}

func (l *Lexer) next() (token.Token, error) {
	start := l.pos_()
	r := l.current()

	switch {
	case r == '"' && l.peekAt(1) == '"' && l.peekAt(2) == '"':
		return l.readCommentary(start)
	case r == '"':
		return l.readText(start)
	case r == '/':
		if isRegexStart(l) {
			return l.readRegex(start)
		}
		l.advance()
		return l.tok(token.SLASH, "/", start), nil
	case unicode.IsDigit(r):
		return l.readNumberOrDate(start)
	case isIdentStart(r):
		return l.readIdentifier(start)
	}

	switch r {
	case '+':
		l.advance()
		return l.tok(token.PLUS, "+", start), nil
	case '-':
		l.advance()
		return l.tok(token.MINUS, "-", start), nil
	case '*':
		l.advance()
		return l.tok(token.STAR, "*", start), nil
	case '%':
		l.advance()
		return l.tok(token.PERCENT_OP, "%", start), nil
	case '^':
		l.advance()
		return l.tok(token.CARET, "^", start), nil
	case '(':
		l.advance()
		return l.tok(token.LPAREN, "(", start), nil
	case ')':
		l.advance()
		return l.tok(token.RPAREN, ")", start), nil
	case '[':
		l.advance()
		return l.tok(token.LBRACKET, "[", start), nil
	case ']':
		l.advance()
		return l.tok(token.RBRACKET, "]", start), nil
	case ',':
		l.advance()
		return l.tok(token.COMMA, ",", start), nil
	case '.':
		l.advance()
		return l.tok(token.DOT, ".", start), nil
	case '?':
		l.advance()
		return l.tok(token.QUESTION, "?", start), nil
	case '=':
		l.advance()
		if l.current() == '=' {
			l.advance()
			return l.tok(token.EQ, "==", start), nil
		}
		return l.tok(token.ASSIGN, "=", start), nil
	case '!':
		l.advance()
		if l.current() == '=' {
			l.advance()
			return l.tok(token.NEQ, "!=", start), nil
		}
		return token.Token{}, l.syntaxErr("unexpected '!'")
	case '<':
		l.advance()
		if l.current() == '=' {
			l.advance()
			return l.tok(token.LTE, "<=", start), nil
		}
		return l.tok(token.LT, "<", start), nil
	case '>':
		l.advance()
		if l.current() == '=' {
			l.advance()
			return l.tok(token.GTE, ">=", start), nil
		}
		return l.tok(token.GT, ">", start), nil
	}

	return token.Token{}, l.syntaxErr(fmt.Sprintf("unexpected character %q", r))
}

func (l *Lexer) tok(t token.Type, text string, start ast.Position) token.Token {
	return token.Token{Type: t, Text: text, Range: ast.Range{Start: start, End: l.pos_()}}
}

func isIdentStart(r rune) bool {
	return unicode.IsLetter(r) || r == '_'
}

func isIdentPart(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

// readIdentifier reads keywords, booleans, prefix math names and bare
// identifiers. Currency-code and unit-name suffixes following a number
// are recognised by the parser's parsePrimary, which composes a NUMBER
// token with the IDENT token that follows it.
func (l *Lexer) readIdentifier(start ast.Position) (token.Token, error) {
	begin := l.pos
	for !l.atEnd() && isIdentPart(l.current()) {
		l.advance()
		if l.pos-begin > MaxIdentifierLength {
			return token.Token{}, &lemmaerr.LimitExceeded{Limit: "identifier length", Allowed: MaxIdentifierLength, Actual: l.pos - begin}
		}
	}
	text := string(l.input[begin:l.pos])
	lower := strings.ToLower(text)
	if kw, ok := token.Keywords[lower]; ok {
		return l.tok(kw, text, start), nil
	}
	return l.tok(token.IDENT, text, start), nil
}

// readNumberOrDate reads a digit run, distinguishing a date literal
// (YYYY-MM-DD with optional time/zone), a plain number and a percentage
// (no whitespace before '%'). A unit or currency-code suffix is not
// consumed here; it is lexed as the following IDENT token.
func (l *Lexer) readNumberOrDate(start ast.Position) (token.Token, error) {
	begin := l.pos

	if looksLikeDate(l) {
		return l.readDate(start)
	}

	l.scanDigits()
	if l.current() == '.' && unicode.IsDigit(l.peekAt(1)) {
		l.advance()
		l.scanDigits()
	}
	if l.pos-begin > MaxNumberLength {
		return token.Token{}, &lemmaerr.LimitExceeded{Limit: "number literal length", Allowed: MaxNumberLength, Actual: l.pos - begin}
	}
	numText := string(l.input[begin:l.pos])

	// "<number>%" with no intervening whitespace is a percentage.
	if l.current() == '%' {
		l.advance()
		return token.Token{Type: token.PERCENT, Text: numText + "%", Value: numText, Range: ast.Range{Start: start, End: l.pos_()}}, nil
	}

	return token.Token{Type: token.NUMBER, Text: numText, Value: numText, Range: ast.Range{Start: start, End: l.pos_()}}, nil
}

func (l *Lexer) scanDigits() {
	for !l.atEnd() && unicode.IsDigit(l.current()) {
		l.advance()
	}
}

func looksLikeDate(l *Lexer) bool {
	// YYYY-MM-DD: exactly 4 digits, '-', 2 digits, '-', 2 digits.
	if l.pos+10 > len(l.input) {
		return false
	}
	for i, want := range []bool{true, true, true, true, false, true, true, false, true, true} {
		r := l.input[l.pos+i]
		if want {
			if !unicode.IsDigit(r) {
				return false
			}
		} else {
			if r != '-' {
				return false
			}
		}
	}
	return true
}

func (l *Lexer) readDate(start ast.Position) (token.Token, error) {
	begin := l.pos
	for i := 0; i < 10; i++ {
		l.advance()
	}
	if l.current() == 'T' {
		l.advance()
		for !l.atEnd() && (unicode.IsDigit(l.current()) || l.current() == ':') {
			l.advance()
		}
		if l.current() == 'Z' {
			l.advance()
		} else if l.current() == '+' || l.current() == '-' {
			l.advance()
			for !l.atEnd() && (unicode.IsDigit(l.current()) || l.current() == ':') {
				l.advance()
			}
		}
	}
	text := string(l.input[begin:l.pos])
	return token.Token{Type: token.DATE, Text: text, Value: text, Range: ast.Range{Start: start, End: l.pos_()}}, nil
}

func (l *Lexer) readText(start ast.Position) (token.Token, error) {
	l.advance() // opening quote
	var b strings.Builder
	for {
		if l.atEnd() {
			return token.Token{}, l.syntaxErr("unterminated text literal")
		}
		r := l.current()
		if r == '"' {
			l.advance()
			break
		}
		if r == '\\' {
			l.advance()
			esc := l.current()
			switch esc {
			case '"':
				b.WriteRune('"')
			case '\\':
				b.WriteRune('\\')
			case 'n':
				b.WriteRune('\n')
			case 't':
				b.WriteRune('\t')
			case 'r':
				b.WriteRune('\r')
			case 'u':
				l.advance()
				if l.pos+4 > len(l.input) {
					return token.Token{}, l.syntaxErr("incomplete unicode escape")
				}
				hex := string(l.input[l.pos : l.pos+4])
				var code rune
				if _, err := fmt.Sscanf(hex, "%04x", &code); err != nil {
					return token.Token{}, l.syntaxErr("invalid unicode escape")
				}
				b.WriteRune(code)
				for i := 0; i < 3; i++ {
					l.advance()
				}
			default:
				return token.Token{}, l.syntaxErr(fmt.Sprintf("invalid escape \\%c", esc))
			}
			l.advance()
			continue
		}
		b.WriteRune(r)
		l.advance()
		if b.Len() > MaxStringLength {
			return token.Token{}, &lemmaerr.LimitExceeded{Limit: "string literal length", Allowed: MaxStringLength, Actual: b.Len()}
		}
	}
	return token.Token{Type: token.TEXT, Value: b.String(), Range: ast.Range{Start: start, End: l.pos_()}}, nil
}

// readCommentary reads a `"""..."""` document-level commentary block
// verbatim, with no escape processing.
func (l *Lexer) readCommentary(start ast.Position) (token.Token, error) {
	l.advance()
	l.advance()
	l.advance()
	begin := l.pos
	for {
		if l.atEnd() {
			return token.Token{}, l.syntaxErr("unterminated commentary block")
		}
		if l.current() == '"' && l.peekAt(1) == '"' && l.peekAt(2) == '"' {
			text := string(l.input[begin:l.pos])
			l.advance()
			l.advance()
			l.advance()
			return token.Token{Type: token.COMMENTARY, Value: text, Range: ast.Range{Start: start, End: l.pos_()}}, nil
		}
		l.advance()
	}
}

func isRegexStart(l *Lexer) bool {
	// A '/' begins a regex literal unless the token the lexer emitted
	// last is an operand (identifier, number, percentage, date, text,
	// regex, ')' or ']'), in which case it is the division operator.
	// Whitespace between that token and the '/' makes no difference.
	return l.lastSignificantAllowsRegex()
}

func (l *Lexer) lastSignificantAllowsRegex() bool {
	if len(l.tokens) == 0 {
		return true
	}
	switch l.tokens[len(l.tokens)-1].Type {
	case token.IDENT, token.NUMBER, token.PERCENT, token.DATE, token.RPAREN, token.RBRACKET, token.TEXT, token.REGEX:
		return false
	default:
		return true
	}
}

func (l *Lexer) readRegex(start ast.Position) (token.Token, error) {
	l.advance() // opening slash
	var b strings.Builder
	for {
		if l.atEnd() {
			return token.Token{}, l.syntaxErr("unterminated regex literal")
		}
		r := l.current()
		if r == '/' {
			l.advance()
			break
		}
		if r == '\\' {
			l.advance()
			if l.atEnd() {
				return token.Token{}, l.syntaxErr("unterminated regex literal")
			}
			if l.current() == '/' {
				b.WriteRune('/')
			} else {
				b.WriteRune('\\')
				b.WriteRune(l.current())
			}
			l.advance()
			continue
		}
		b.WriteRune(r)
		l.advance()
	}
	return token.Token{Type: token.REGEX, Value: b.String(), Range: ast.Range{Start: start, End: l.pos_()}}, nil
}

// IsCurrencyCode reports whether s is a valid ISO 4217 currency code:
// three uppercase letters validated via golang.org/x/text/currency.
func IsCurrencyCode(s string) bool {
	if utf8.RuneCountInString(s) != 3 {
		return false
	}
	for _, r := range s {
		if !unicode.IsUpper(r) || !unicode.IsLetter(r) {
			return false
		}
	}
	u, err := currency.ParseISO(s)
	if err != nil {
		return false
	}
	return u.String() == s
}

// IsUnitName reports whether s names a known dimension or duration
// unit (singular or plural, case-insensitive).
func IsUnitName(s string) bool {
	return units.IsKnown(s) || units.IsDurationUnit(s)
}
