// Package ast defines the abstract syntax tree produced by the parser:
// documents, facts, rules and the expression nodes inside rule bodies.
package ast

import "fmt"

// Position is a 1-indexed line/column location in a source string.
type Position struct {
	Line   int
	Column int
}

// Range spans from Start to End within a single source.
type Range struct {
	Start Position
	End   Position
}

func (r Range) String() string {
	return fmt.Sprintf("%d:%d", r.Start.Line, r.Start.Column)
}

// Node is implemented by every expression node.
type Node interface {
	String() string
	GetRange() Range
}

// Document is the top-level parse result for one source.
type Document struct {
	Name        string
	Commentary  string
	Facts       []*Fact
	Rules       []*Rule
	SourceName  string
	Range       Range
}

// TypeAnnotation names a bare declared type with no default, as in
// `fact weight = [mass]` or `fact employee = doc employees`.
type TypeAnnotation struct {
	Multi      bool
	TypeName   string // built-in type name, or "" when DocRef is set
	DocRef     string // set for `doc <name>` annotations
	Range      Range
}

// Fact is a named typed input. Exactly one of Default or Declared is set;
// a bare declaration has no default and is a required fact.
type Fact struct {
	Name     string
	Declared *TypeAnnotation
	Default  Node // nil when Declared is set
	Range    Range
}

// UnlessClause is a (condition, result) pair. Result is either an
// expression or a veto. Source order is significant and preserved.
type UnlessClause struct {
	Condition Node
	Result    Node // nil when Veto is set
	Veto      *VetoExpr
	Range     Range
}

// Rule is a named expression plus its ordered override clauses.
type Rule struct {
	Name          string
	Base          Node
	UnlessClauses []*UnlessClause
	Range         Range
}

// --- Expression nodes ---

type NumberLiteral struct {
	Value string // canonical decimal text
	Range Range
}

func (n *NumberLiteral) String() string   { return fmt.Sprintf("Number(%s)", n.Value) }
func (n *NumberLiteral) GetRange() Range  { return n.Range }

type PercentageLiteral struct {
	Value string // the numeral before '%', e.g. "25" for "25%"
	Range Range
}

func (p *PercentageLiteral) String() string  { return fmt.Sprintf("Percentage(%s%%)", p.Value) }
func (p *PercentageLiteral) GetRange() Range { return p.Range }

type TextLiteral struct {
	Value string // already unescaped
	Range Range
}

func (t *TextLiteral) String() string  { return fmt.Sprintf("Text(%q)", t.Value) }
func (t *TextLiteral) GetRange() Range { return t.Range }

type BooleanLiteral struct {
	Value bool
	Range Range
}

func (b *BooleanLiteral) String() string  { return fmt.Sprintf("Boolean(%v)", b.Value) }
func (b *BooleanLiteral) GetRange() Range { return b.Range }

type DateLiteral struct {
	Text  string // ISO-8601 text as written
	Range Range
}

func (d *DateLiteral) String() string  { return fmt.Sprintf("Date(%s)", d.Text) }
func (d *DateLiteral) GetRange() Range { return d.Range }

type RegexLiteral struct {
	Pattern string
	Range   Range
}

func (r *RegexLiteral) String() string  { return fmt.Sprintf("Regex(/%s/)", r.Pattern) }
func (r *RegexLiteral) GetRange() Range { return r.Range }

// MoneyLiteral is a number immediately followed by a currency code.
type MoneyLiteral struct {
	Value    string
	Currency string
	Range    Range
}

func (m *MoneyLiteral) String() string  { return fmt.Sprintf("Money(%s %s)", m.Value, m.Currency) }
func (m *MoneyLiteral) GetRange() Range { return m.Range }

// UnitLiteral is a number immediately followed by a unit name belonging
// to one of the non-duration dimensions.
type UnitLiteral struct {
	Value     string
	UnitName  string
	Range     Range
}

func (u *UnitLiteral) String() string  { return fmt.Sprintf("Unit(%s %s)", u.Value, u.UnitName) }
func (u *UnitLiteral) GetRange() Range { return u.Range }

// DurationLiteral is a number immediately followed by a time unit name.
type DurationLiteral struct {
	Value    string
	UnitName string
	Range    Range
}

func (d *DurationLiteral) String() string  { return fmt.Sprintf("Duration(%s %s)", d.Value, d.UnitName) }
func (d *DurationLiteral) GetRange() Range { return d.Range }

// Identifier references a fact or a rule by name, possibly qualified
// with a document name or a document-reference fact (`doc_name.name`,
// `<ref>.<field>`).
type Identifier struct {
	Path  string // dotted path as written
	Range Range
}

func (i *Identifier) String() string  { return fmt.Sprintf("Identifier(%s)", i.Path) }
func (i *Identifier) GetRange() Range { return i.Range }

// RuleReference is `name?`: resolves to the referenced rule's outcome.
type RuleReference struct {
	Path  string
	Range Range
}

func (r *RuleReference) String() string  { return fmt.Sprintf("RuleRef(%s?)", r.Path) }
func (r *RuleReference) GetRange() Range { return r.Range }

// HaveExpr implements `have X` / `not have X` / `have not X`.
type HaveExpr struct {
	FactPath string
	Negated  bool
	Range    Range
}

func (h *HaveExpr) String() string  { return fmt.Sprintf("Have(%s, neg=%v)", h.FactPath, h.Negated) }
func (h *HaveExpr) GetRange() Range { return h.Range }

type UnaryExpr struct {
	Operator string // "-", "not", "sqrt", "sin", "cos", "tan", "log", "exp", "abs", "floor", "ceil", "round"
	Operand  Node
	Range    Range
}

func (u *UnaryExpr) String() string  { return fmt.Sprintf("Unary(%s, %s)", u.Operator, u.Operand) }
func (u *UnaryExpr) GetRange() Range { return u.Range }

type BinaryExpr struct {
	Operator string // + - * / % ^
	Left     Node
	Right    Node
	Range    Range
}

func (b *BinaryExpr) String() string  { return fmt.Sprintf("Binary(%s, %s, %s)", b.Operator, b.Left, b.Right) }
func (b *BinaryExpr) GetRange() Range { return b.Range }

type ComparisonExpr struct {
	Operator string // == != is "is not" < <= > >=
	Left     Node
	Right    Node
	Range    Range
}

func (c *ComparisonExpr) String() string {
	return fmt.Sprintf("Comparison(%s, %s, %s)", c.Operator, c.Left, c.Right)
}
func (c *ComparisonExpr) GetRange() Range { return c.Range }

type LogicalExpr struct {
	Operator string // "and", "or"
	Left     Node
	Right    Node
	Range    Range
}

func (l *LogicalExpr) String() string  { return fmt.Sprintf("Logical(%s, %s, %s)", l.Operator, l.Left, l.Right) }
func (l *LogicalExpr) GetRange() Range { return l.Range }

// UnitConversionExpr implements the postfix `in <unit>` operator.
type UnitConversionExpr struct {
	Value      Node
	TargetUnit string
	Range      Range
}

func (u *UnitConversionExpr) String() string {
	return fmt.Sprintf("In(%s, %s)", u.Value, u.TargetUnit)
}
func (u *UnitConversionExpr) GetRange() Range { return u.Range }

// VetoExpr is the RHS of an unless clause that vetoes, with an optional
// message expression (usually a text literal).
type VetoExpr struct {
	Message Node // nil for a bare `veto`
	Range   Range
}

func (v *VetoExpr) String() string  { return "Veto" }
func (v *VetoExpr) GetRange() Range { return v.Range }
