package preprocess

import (
	"strconv"
	"strings"

	"sdslc/internal/diag"
	"sdslc/internal/source"
)

// Conditions are parsed into a tree first and evaluated afterwards, so an
// operand that short-circuiting skips is never expanded.

type cnode interface{ span() source.Span }

type (
	numNode struct {
		v  int64
		sp source.Span
	}
	// macroNode is an identifier or a call; it is expanded only when evaluated.
	macroNode struct {
		toks []tok
		sp   source.Span
	}
	definedNode struct {
		name string
		sp   source.Span
	}
	unaryNode struct {
		op string
		x  cnode
		sp source.Span
	}
	binaryNode struct {
		op   string
		l, r cnode
		sp   source.Span
	}
	ternaryNode struct {
		c, a, b cnode
		sp      source.Span
	}
)

func (n *numNode) span() source.Span     { return n.sp }
func (n *macroNode) span() source.Span   { return n.sp }
func (n *definedNode) span() source.Span { return n.sp }
func (n *unaryNode) span() source.Span   { return n.sp }
func (n *binaryNode) span() source.Span  { return n.sp }
func (n *ternaryNode) span() source.Span { return n.sp }

var binaryPrec = map[string]int{
	"||": 1, "&&": 2, "|": 3, "^": 4, "&": 5,
	"==": 6, "!=": 6,
	"<": 7, ">": 7, "<=": 7, ">=": 7,
	"<<": 8, ">>": 8,
	"+": 9, "-": 9,
	"*": 10, "/": 10, "%": 10,
}

type condParser struct {
	toks []tok
	pos  int
	all  source.Span
}

func parseCondition(toks []tok, span source.Span) (cnode, error) {
	var clean []tok
	for _, t := range toks {
		if !t.blank() {
			clean = append(clean, t)
		}
	}
	p := &condParser{toks: clean, all: span}
	if len(clean) == 0 {
		return nil, errorf(diag.PreBadExpression, span, "missing expression")
	}
	n, err := p.ternary()
	if err != nil {
		return nil, err
	}
	if p.pos < len(p.toks) {
		t := p.toks[p.pos]
		return nil, errorf(diag.PreBadExpression, t.span, "unexpected %q in expression", t.text)
	}
	return n, nil
}

func (p *condParser) peek() (tok, bool) {
	if p.pos >= len(p.toks) {
		return tok{}, false
	}
	return p.toks[p.pos], true
}

func (p *condParser) is(text string) bool {
	t, ok := p.peek()
	return ok && t.kind == tkPunct && t.text == text
}

func (p *condParser) here() source.Span {
	if t, ok := p.peek(); ok {
		return t.span
	}
	if len(p.toks) > 0 {
		last := p.toks[len(p.toks)-1].span
		return source.At(last.File, last.End)
	}
	return p.all
}

func (p *condParser) ternary() (cnode, error) {
	c, err := p.binary(1)
	if err != nil || !p.is("?") {
		return c, err
	}
	p.pos++
	a, err := p.ternary()
	if err != nil {
		return nil, err
	}
	if !p.is(":") {
		return nil, errorf(diag.PreBadExpression, p.here(), "expected ':' in conditional expression")
	}
	p.pos++
	b, err := p.ternary()
	if err != nil {
		return nil, err
	}
	return &ternaryNode{c: c, a: a, b: b, sp: c.span().Cover(b.span())}, nil
}

func (p *condParser) binary(minPrec int) (cnode, error) {
	l, err := p.unary()
	if err != nil {
		return nil, err
	}
	for {
		t, ok := p.peek()
		if !ok || t.kind != tkPunct {
			return l, nil
		}
		prec, isOp := binaryPrec[t.text]
		if !isOp || prec < minPrec {
			return l, nil
		}
		p.pos++
		r, err := p.binary(prec + 1)
		if err != nil {
			return nil, err
		}
		l = &binaryNode{op: t.text, l: l, r: r, sp: l.span().Cover(r.span())}
	}
}

func (p *condParser) unary() (cnode, error) {
	t, ok := p.peek()
	if !ok {
		return nil, errorf(diag.PreBadExpression, p.here(), "unexpected end of expression")
	}
	if t.kind == tkPunct {
		switch t.text {
		case "!", "~", "-", "+":
			p.pos++
			x, err := p.unary()
			if err != nil {
				return nil, err
			}
			return &unaryNode{op: t.text, x: x, sp: t.span.Cover(x.span())}, nil
		case "(":
			p.pos++
			n, err := p.ternary()
			if err != nil {
				return nil, err
			}
			if !p.is(")") {
				return nil, errorf(diag.PreBadExpression, p.here(), "expected ')'")
			}
			p.pos++
			return n, nil
		}
	}
	switch t.kind {
	case tkNumber, tkChar:
		p.pos++
		v, err := parseNumber(t)
		if err != nil {
			return nil, err
		}
		return &numNode{v: v, sp: t.span}, nil
	case tkIdent:
		p.pos++
		if t.text == "defined" {
			return p.defined(t)
		}
		if !p.is("(") {
			return &macroNode{toks: []tok{t}, sp: t.span}, nil
		}
		start := p.pos - 1
		depth := 0
		for ; p.pos < len(p.toks); p.pos++ {
			switch {
			case p.is("("):
				depth++
			case p.is(")"):
				depth--
			}
			if depth == 0 {
				break
			}
		}
		if p.pos >= len(p.toks) {
			return nil, errorf(diag.PreUnterminatedArgs, t.span, "unterminated argument list invoking %s", t.text)
		}
		p.pos++
		toks := p.toks[start:p.pos]
		return &macroNode{toks: toks, sp: t.span.Cover(toks[len(toks)-1].span)}, nil
	}
	return nil, errorf(diag.PreBadExpression, t.span, "unexpected %q in expression", t.text)
}

func (p *condParser) defined(kw tok) (cnode, error) {
	paren := p.is("(")
	if paren {
		p.pos++
	}
	t, ok := p.peek()
	if !ok || t.kind != tkIdent {
		return nil, errorf(diag.PreBadExpression, p.here(), "'defined' expects a macro name")
	}
	p.pos++
	end := t.span
	if paren {
		if !p.is(")") {
			return nil, errorf(diag.PreBadExpression, p.here(), "expected ')' after defined(%s", t.text)
		}
		end = p.toks[p.pos].span
		p.pos++
	}
	return &definedNode{name: t.text, sp: kw.span.Cover(end)}, nil
}

func parseNumber(t tok) (int64, error) {
	text := t.text
	if t.kind == tkChar {
		body := strings.Trim(text, "'")
		if v, _, _, err := strconv.UnquoteChar(body, '\''); err == nil {
			return int64(v), nil
		}
		return 0, errorf(diag.PreBadExpression, t.span, "invalid character constant %s", text)
	}
	text = strings.TrimRight(text, "uUlL")
	base := 10
	switch {
	case strings.HasPrefix(text, "0x") || strings.HasPrefix(text, "0X"):
		base, text = 16, text[2:]
	case len(text) > 1 && text[0] == '0':
		base, text = 8, text[1:]
	}
	v, err := strconv.ParseUint(text, base, 64)
	if err != nil {
		return 0, errorf(diag.PreBadExpression, t.span, "invalid integer %s in preprocessor expression", t.text)
	}
	return int64(v), nil // #nosec G115 -- C semantics wrap
}

// evaluator walks the tree; macroNode leaves are expanded on demand.
type evaluator struct {
	exp   *expander
	depth int
}

func boolInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func (ev *evaluator) eval(n cnode) (int64, error) {
	switch n := n.(type) {
	case *numNode:
		return n.v, nil
	case *definedNode:
		_, ok := ev.exp.macros[n.name]
		return boolInt(ok), nil
	case *macroNode:
		return ev.evalMacro(n)
	case *unaryNode:
		x, err := ev.eval(n.x)
		if err != nil {
			return 0, err
		}
		switch n.op {
		case "!":
			return boolInt(x == 0), nil
		case "~":
			return ^x, nil
		case "-":
			return -x, nil
		}
		return x, nil
	case *ternaryNode:
		c, err := ev.eval(n.c)
		if err != nil {
			return 0, err
		}
		if c != 0 {
			return ev.eval(n.a)
		}
		return ev.eval(n.b)
	case *binaryNode:
		return ev.evalBinary(n)
	}
	return 0, errorf(diag.PreBadExpression, n.span(), "unsupported expression")
}

func (ev *evaluator) evalBinary(n *binaryNode) (int64, error) {
	l, err := ev.eval(n.l)
	if err != nil {
		return 0, err
	}
	switch n.op {
	case "&&":
		if l == 0 {
			return 0, nil
		}
		r, err := ev.eval(n.r)
		return boolInt(r != 0), err
	case "||":
		if l != 0 {
			return 1, nil
		}
		r, err := ev.eval(n.r)
		return boolInt(r != 0), err
	}
	r, err := ev.eval(n.r)
	if err != nil {
		return 0, err
	}
	switch n.op {
	case "|":
		return l | r, nil
	case "^":
		return l ^ r, nil
	case "&":
		return l & r, nil
	case "==":
		return boolInt(l == r), nil
	case "!=":
		return boolInt(l != r), nil
	case "<":
		return boolInt(l < r), nil
	case ">":
		return boolInt(l > r), nil
	case "<=":
		return boolInt(l <= r), nil
	case ">=":
		return boolInt(l >= r), nil
	case "<<":
		return l << uint64(r&63), nil
	case ">>":
		return l >> uint64(r&63), nil
	case "+":
		return l + r, nil
	case "-":
		return l - r, nil
	case "*":
		return l * r, nil
	case "/", "%":
		if r == 0 {
			return 0, errorf(diag.PreBadExpression, n.r.span(), "division by zero in preprocessor expression")
		}
		if n.op == "/" {
			return l / r, nil
		}
		return l % r, nil
	}
	return 0, errorf(diag.PreBadExpression, n.sp, "unknown operator %s", n.op)
}

// evalMacro expands the identifier or call and evaluates the result.
// Unknown identifiers are 0.
func (ev *evaluator) evalMacro(n *macroNode) (int64, error) {
	head := n.toks[0]
	m := ev.exp.lookup(head)
	call := len(n.toks) > 1
	switch {
	case m == nil && call:
		return 0, errorf(diag.PreBadExpression, n.sp, "%s is not a function-like macro", head.text)
	case m == nil, m.FuncLike && !call:
		return 0, nil
	}
	if ev.depth > 64 {
		return 0, errorf(diag.PreBadExpression, n.sp, "macro expansion too deep")
	}
	out, err := ev.exp.expand(n.toks)
	if err != nil {
		return 0, err
	}
	sub, err := parseCondition(out, n.sp)
	if err != nil {
		return 0, err
	}
	ev.depth++
	defer func() { ev.depth-- }()
	return ev.eval(sub)
}
