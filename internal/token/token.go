// Package token defines the lexical token types produced by the lexer.
package token

import "github.com/benrogmans/Lemma/internal/ast"

type Type int

const (
	EOF Type = iota
	IDENT
	NUMBER
	PERCENT // "<number>%" with no intervening whitespace
	TEXT
	REGEX
	DATE

	KwDoc
	KwFact
	KwRule
	KwUnless
	KwThen
	KwVeto
	KwIn
	KwIs
	KwNot
	KwAnd
	KwOr
	KwHave
	KwTrue
	KwFalse
	KwMulti

	KwSqrt
	KwSin
	KwCos
	KwTan
	KwLog
	KwExp
	KwAbs
	KwFloor
	KwCeil
	KwRound

	PLUS
	MINUS
	STAR
	SLASH
	PERCENT_OP // modulus
	CARET

	EQ
	NEQ
	LT
	LTE
	GT
	GTE
	ASSIGN

	LPAREN
	RPAREN
	LBRACKET
	RBRACKET
	COMMA
	DOT
	QUESTION
	COMMENTARY
)

var names = map[Type]string{
	EOF: "EOF", IDENT: "identifier", NUMBER: "number", PERCENT: "percentage",
	TEXT: "text", REGEX: "regex", DATE: "date",
	KwDoc: "doc", KwFact: "fact", KwRule: "rule", KwUnless: "unless", KwThen: "then",
	KwVeto: "veto", KwIn: "in", KwIs: "is", KwNot: "not", KwAnd: "and", KwOr: "or",
	KwHave: "have", KwTrue: "true", KwFalse: "false", KwMulti: "multi",
	KwSqrt: "sqrt", KwSin: "sin", KwCos: "cos", KwTan: "tan", KwLog: "log", KwExp: "exp",
	KwAbs: "abs", KwFloor: "floor", KwCeil: "ceil", KwRound: "round",
	PLUS: "+", MINUS: "-", STAR: "*", SLASH: "/", PERCENT_OP: "%", CARET: "^",
	EQ: "==", NEQ: "!=", LT: "<", LTE: "<=", GT: ">", GTE: ">=", ASSIGN: "=",
	LPAREN: "(", RPAREN: ")", LBRACKET: "[", RBRACKET: "]", COMMA: ",", DOT: ".",
	QUESTION: "?", COMMENTARY: "commentary",
}

func (t Type) String() string {
	if n, ok := names[t]; ok {
		return n
	}
	return "unknown"
}

// Keywords maps lower-cased lexemes to keyword token types. Boolean
// aliases (yes/no/accept/reject) resolve to KwTrue/KwFalse directly so
// the parser never special-cases them.
var Keywords = map[string]Type{
	"doc": KwDoc, "fact": KwFact, "rule": KwRule, "unless": KwUnless, "then": KwThen,
	"veto": KwVeto, "in": KwIn, "is": KwIs, "not": KwNot, "and": KwAnd, "or": KwOr,
	"have": KwHave, "multi": KwMulti,
	"true": KwTrue, "yes": KwTrue, "accept": KwTrue,
	"false": KwFalse, "no": KwFalse, "reject": KwFalse,
	"sqrt": KwSqrt, "sin": KwSin, "cos": KwCos, "tan": KwTan, "log": KwLog, "exp": KwExp,
	"abs": KwAbs, "floor": KwFloor, "ceil": KwCeil, "round": KwRound,
}

// Token is one lexical unit with its source span and, for literals, its
// decoded value.
type Token struct {
	Type  Type
	Text  string // raw lexeme as written
	Value string // decoded value (unescaped text, percentage numeral, ...)
	Range ast.Range
}
