package wgsl

// Node is implemented by every AST node; Pos locates it in the source text
// that produced it, for diagnostics.
type Node interface {
	Pos() Span
}

// Decl is implemented by every module-level (or, for VarDecl/ConstDecl,
// also local) declaration.
type Decl interface {
	Node
	declNode()
}

// Stmt is implemented by every statement a function body can contain.
type Stmt interface {
	Node
	stmtNode()
}

// Expr is implemented by every expression node.
type Expr interface {
	Node
	exprNode()
}

// Type is implemented by every type reference syntax can produce: a named
// type, an array, a binding array, or a pointer.
type Type interface {
	Node
	typeNode()
}

// Module is the parsed form of one WGSL source file.
type Module struct {
	Enables     []Enable
	Diagnostics []Diagnostic
	Structs     []*StructDecl
	Functions   []*FunctionDecl
	GlobalVars  []*VarDecl
	Aliases     []*AliasDecl
	Constants   []*ConstDecl
}

// Enable records an `enable` directive naming one or more language
// extensions the module depends on.
type Enable struct {
	Extensions []string
	Span       Span
}

// Diagnostic records a `diagnostic` directive controlling how the compiler
// should treat a named diagnostic rule.
type Diagnostic struct {
	Severity string
	Rule     string
	Span     Span
}

// --- declarations --------------------------------------------------------

// StructDecl is a `struct Name { ... }` declaration.
type StructDecl struct {
	Name    string
	Members []*StructMember
	Span    Span
}

func (s *StructDecl) Pos() Span { return s.Span }
func (s *StructDecl) declNode() {}

// StructMember is one field inside a StructDecl.
type StructMember struct {
	Name       string
	Type       Type
	Attributes []Attribute
	Span       Span
}

// FunctionDecl is a `fn name(...) -> T { ... }` declaration.
type FunctionDecl struct {
	Name        string
	Params      []*Parameter
	ReturnType  Type
	ReturnAttrs []Attribute // attributes on the return type itself, e.g. @builtin(position)
	Attributes  []Attribute
	Body        *BlockStmt
	Span        Span
}

func (f *FunctionDecl) Pos() Span { return f.Span }
func (f *FunctionDecl) declNode() {}

// Parameter is one entry in a FunctionDecl's parameter list.
type Parameter struct {
	Name       string
	Type       Type
	Attributes []Attribute
	Span       Span
}

// VarDecl is a `var` declaration. It is both a Decl (module scope) and a
// Stmt (function-local scope); WGSL allows `var` in both positions with
// identical syntax.
type VarDecl struct {
	Name         string
	Type         Type
	Init         Expr
	AddressSpace string // function, private, workgroup, uniform, storage
	AccessMode   string // read, write, read_write
	Attributes   []Attribute
	Span         Span
}

func (v *VarDecl) Pos() Span { return v.Span }
func (v *VarDecl) declNode() {}
func (v *VarDecl) stmtNode() {}

// ConstDecl is a `const` declaration, also valid at both module and
// function scope.
type ConstDecl struct {
	Name string
	Type Type
	Init Expr
	Span Span
}

func (c *ConstDecl) Pos() Span { return c.Span }
func (c *ConstDecl) declNode() {}
func (c *ConstDecl) stmtNode() {}

// AliasDecl is an `alias Name = Type` declaration.
type AliasDecl struct {
	Name string
	Type Type
	Span Span
}

func (a *AliasDecl) Pos() Span { return a.Span }
func (a *AliasDecl) declNode() {}

// Attribute is one `@name(args...)` annotation attached to a declaration,
// parameter, struct member, or return type.
type Attribute struct {
	Name string
	Args []Expr
	Span Span
}

// --- types -----------------------------------------------------------

// NamedType is a bare or generic type name, e.g. `f32` or `vec3<f32>`.
type NamedType struct {
	Name       string
	TypeParams []Type
	Span       Span
}

func (n *NamedType) Pos() Span { return n.Span }
func (n *NamedType) typeNode() {}

// ArrayType is `array<T>` or `array<T, N>`; Size is nil for the runtime-
// sized form, which is only legal as the last member of a struct.
type ArrayType struct {
	Element Type
	Size    Expr
	Span    Span
}

func (a *ArrayType) Pos() Span { return a.Span }
func (a *ArrayType) typeNode() {}

// BindingArrayType is `binding_array<T>` or `binding_array<T, N>`, used for
// arrays of opaque resources bound as a single descriptor.
type BindingArrayType struct {
	Element Type
	Size    Expr
	Span    Span
}

func (b *BindingArrayType) Pos() Span { return b.Span }
func (b *BindingArrayType) typeNode() {}

// PtrType is `ptr<space, T>` or `ptr<space, T, access>`.
type PtrType struct {
	AddressSpace string
	PointeeType  Type
	AccessMode   string
	Span         Span
}

func (p *PtrType) Pos() Span { return p.Span }
func (p *PtrType) typeNode() {}

// --- statements ------------------------------------------------------

// BlockStmt is a brace-delimited statement sequence.
type BlockStmt struct {
	Statements []Stmt
	Span       Span
}

func (b *BlockStmt) Pos() Span { return b.Span }
func (b *BlockStmt) stmtNode() {}

// ReturnStmt is `return;` or `return expr;`.
type ReturnStmt struct {
	Value Expr
	Span  Span
}

func (r *ReturnStmt) Pos() Span { return r.Span }
func (r *ReturnStmt) stmtNode() {}

// IfStmt is an `if`/`else if`/`else` chain; Else holds either a *BlockStmt
// (plain else) or a nested *IfStmt (else if), or nil.
type IfStmt struct {
	Condition Expr
	Body      *BlockStmt
	Else      Stmt
	Span      Span
}

func (i *IfStmt) Pos() Span { return i.Span }
func (i *IfStmt) stmtNode() {}

// ForStmt is a C-style `for (init; cond; update) { ... }` loop. Any of
// Init, Condition, or Update may be nil.
type ForStmt struct {
	Init      Stmt
	Condition Expr
	Update    Stmt
	Body      *BlockStmt
	Span      Span
}

func (f *ForStmt) Pos() Span { return f.Span }
func (f *ForStmt) stmtNode() {}

// WhileStmt is a `while (cond) { ... }` loop.
type WhileStmt struct {
	Condition Expr
	Body      *BlockStmt
	Span      Span
}

func (w *WhileStmt) Pos() Span { return w.Span }
func (w *WhileStmt) stmtNode() {}

// LoopStmt is WGSL's `loop { ... continuing { ... } }` construct; Continuing
// is nil when the loop has no continuing block.
type LoopStmt struct {
	Body       *BlockStmt
	Continuing *BlockStmt
	Span       Span
}

func (l *LoopStmt) Pos() Span { return l.Span }
func (l *LoopStmt) stmtNode() {}

// BreakStmt is `break;`.
type BreakStmt struct {
	Span Span
}

func (b *BreakStmt) Pos() Span { return b.Span }
func (b *BreakStmt) stmtNode() {}

// ContinueStmt is `continue;`.
type ContinueStmt struct {
	Span Span
}

func (c *ContinueStmt) Pos() Span { return c.Span }
func (c *ContinueStmt) stmtNode() {}

// DiscardStmt is `discard;`.
type DiscardStmt struct {
	Span Span
}

func (d *DiscardStmt) Pos() Span { return d.Span }
func (d *DiscardStmt) stmtNode() {}

// AssignStmt is `lhs op rhs;` for `=` and every compound-assignment
// operator (`+=`, `&=`, etc., carried in Op).
type AssignStmt struct {
	Left  Expr
	Op    TokenKind
	Right Expr
	Span  Span
}

func (a *AssignStmt) Pos() Span { return a.Span }
func (a *AssignStmt) stmtNode() {}

// ExprStmt is an expression evaluated for its side effect, e.g. a bare
// function call statement.
type ExprStmt struct {
	Expr Expr
	Span Span
}

func (e *ExprStmt) Pos() Span { return e.Span }
func (e *ExprStmt) stmtNode() {}

// SwitchStmt is a `switch (selector) { case ...: ... }` statement.
type SwitchStmt struct {
	Selector Expr
	Cases    []*SwitchCaseClause
	Span     Span
}

func (s *SwitchStmt) Pos() Span { return s.Span }
func (s *SwitchStmt) stmtNode() {}

// SwitchCaseClause is one `case a, b:` or `default:` arm of a SwitchStmt.
// Selectors is empty and IsDefault is true for the default arm.
type SwitchCaseClause struct {
	Selectors []Expr
	IsDefault bool
	Body      *BlockStmt
	Span      Span
}

// --- expressions -------------------------------------------------------

// Ident is a bare identifier reference.
type Ident struct {
	Name string
	Span Span
}

func (i *Ident) Pos() Span { return i.Span }
func (i *Ident) exprNode() {}

// Literal is a raw int, float, or bool literal; Value keeps the source
// spelling so the resolver can reparse it once the literal's type is known.
type Literal struct {
	Kind  TokenKind
	Value string
	Span  Span
}

func (l *Literal) Pos() Span { return l.Span }
func (l *Literal) exprNode() {}

// BinaryExpr is `left op right`.
type BinaryExpr struct {
	Left  Expr
	Op    TokenKind
	Right Expr
	Span  Span
}

func (b *BinaryExpr) Pos() Span { return b.Span }
func (b *BinaryExpr) exprNode() {}

// UnaryExpr is `op operand`.
type UnaryExpr struct {
	Op      TokenKind
	Operand Expr
	Span    Span
}

func (u *UnaryExpr) Pos() Span { return u.Span }
func (u *UnaryExpr) exprNode() {}

// CallExpr is `func(args...)`, covering both user function calls and
// built-in function invocations (the parser does not distinguish them;
// that happens during resolution).
type CallExpr struct {
	Func *Ident
	Args []Expr
	Span Span
}

func (c *CallExpr) Pos() Span { return c.Span }
func (c *CallExpr) exprNode() {}

// IndexExpr is `expr[index]`.
type IndexExpr struct {
	Expr  Expr
	Index Expr
	Span  Span
}

func (i *IndexExpr) Pos() Span { return i.Span }
func (i *IndexExpr) exprNode() {}

// MemberExpr is `expr.member`, covering both struct field access and
// vector swizzles.
type MemberExpr struct {
	Expr   Expr
	Member string
	Span   Span
}

func (m *MemberExpr) Pos() Span { return m.Span }
func (m *MemberExpr) exprNode() {}

// ConstructExpr is `Type(args...)`, a type constructor call such as
// `vec3<f32>(1.0, 2.0, 3.0)`.
type ConstructExpr struct {
	Type Type
	Args []Expr
	Span Span
}

func (c *ConstructExpr) Pos() Span { return c.Span }
func (c *ConstructExpr) exprNode() {}

// BitcastExpr is `bitcast<TargetType>(expr)`.
type BitcastExpr struct {
	Type Type
	Expr Expr
	Span Span
}

func (b *BitcastExpr) Pos() Span { return b.Span }
func (b *BitcastExpr) exprNode() {}
