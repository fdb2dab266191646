package term

import (
	"fmt"
	"strings"
	"sync"

	"github.com/timtadh/lexmachine"
	"github.com/timtadh/lexmachine/machines"
	"golang.org/x/text/unicode/norm"
)

// Token types of the surface syntax.
const (
	tokLambda = iota + 1
	tokDot
	tokLParen
	tokRParen
	tokIdent
	tokEOF
)

var tokenNames = map[int]string{
	tokLambda: "λ",
	tokDot:    "'.'",
	tokLParen: "'('",
	tokRParen: "')'",
	tokIdent:  "identifier",
	tokEOF:    "end of input",
}

var (
	lexerOnce sync.Once
	lexer     *lexmachine.Lexer
	lexerErr  error
)

func skip(*lexmachine.Scanner, *machines.Match) (interface{}, error) {
	return nil, nil
}

func makeToken(id int) lexmachine.Action {
	return func(s *lexmachine.Scanner, m *machines.Match) (interface{}, error) {
		return s.Token(id, string(m.Bytes), m), nil
	}
}

// termLexer compiles the DFA once per process.
func termLexer() (*lexmachine.Lexer, error) {
	lexerOnce.Do(func() {
		lx := lexmachine.NewLexer()
		lx.Add([]byte(`\-\-[^\n]*\n?`), skip)
		lx.Add([]byte(`( |\t|\n|\r)+`), skip)
		lx.Add([]byte(`\\`), makeToken(tokLambda))
		lx.Add([]byte(`\.`), makeToken(tokDot))
		lx.Add([]byte(`\(`), makeToken(tokLParen))
		lx.Add([]byte(`\)`), makeToken(tokRParen))
		lx.Add([]byte(`([a-z]|[A-Z]|_)([a-z]|[A-Z]|[0-9]|_|'|/)*`), makeToken(tokIdent))
		if err := lx.Compile(); err != nil {
			lexerErr = fmt.Errorf("compiling term lexer: %w", err)
			return
		}
		lexer = lx
	})
	return lexer, lexerErr
}

type token struct {
	typ    int
	text   string
	line   int
	column int
}

// scan tokenizes src. The Greek λ is accepted as an alias for '\'.
func scan(src string) ([]token, error) {
	lx, err := termLexer()
	if err != nil {
		return nil, err
	}
	src = norm.NFC.String(src)
	src = strings.ReplaceAll(src, "λ", `\`)
	s, err := lx.Scanner([]byte(src))
	if err != nil {
		return nil, err
	}
	var toks []token
	for tok, err, eof := s.Next(); !eof; tok, err, eof = s.Next() {
		if err != nil {
			if ui, is := err.(*machines.UnconsumedInput); is {
				return nil, &SyntaxError{
					Line:    ui.StartLine,
					Column:  ui.StartColumn,
					Message: fmt.Sprintf("unexpected input %q", string(ui.Text)),
				}
			}
			return nil, err
		}
		lt := tok.(*lexmachine.Token)
		toks = append(toks, token{
			typ:    lt.Type,
			text:   string(lt.Lexeme),
			line:   lt.StartLine,
			column: lt.StartColumn,
		})
	}
	toks = append(toks, token{typ: tokEOF})
	return toks, nil
}

// Resolver maps a free identifier to the qualified name of a definition.
type Resolver func(name string) (string, bool)

// NoGlobals resolves nothing: every free identifier is unbound.
func NoGlobals(string) (string, bool) { return "", false }

// DefsResolver resolves identifiers that are keys of defs verbatim.
func DefsResolver(defs Defs) Resolver {
	return func(name string) (string, bool) {
		_, ok := defs[name]
		return name, ok
	}
}

// Parse reads a term in surface syntax:
//
//	term  := '\' ident+ '.' term | app
//	app   := atom+            (a trailing λ is allowed as last argument)
//	atom  := ident | '(' term ')'
//
// Identifiers resolve to the innermost binder, then through resolve to a
// Ref. Anything else is an *UnboundError.
func Parse(src string, resolve Resolver) (Term, error) {
	toks, err := scan(src)
	if err != nil {
		return nil, err
	}
	if resolve == nil {
		resolve = NoGlobals
	}
	p := &parser{toks: toks, resolve: resolve}
	t, err := p.term()
	if err != nil {
		return nil, err
	}
	if p.peek().typ != tokEOF {
		return nil, p.unexpected()
	}
	return t, nil
}

// MustParse is like Parse but panics on error.
// Use only in tests or for literals known to be valid.
func MustParse(src string, resolve Resolver) Term {
	t, err := Parse(src, resolve)
	if err != nil {
		panic(err)
	}
	return t
}

type parser struct {
	toks    []token
	pos     int
	scope   []string
	resolve Resolver
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.typ != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) unexpected() error {
	t := p.peek()
	msg := "unexpected " + tokenNames[t.typ]
	if t.typ == tokIdent {
		msg += " " + t.text
	}
	return &SyntaxError{Line: t.line, Column: t.column, Message: msg}
}

func (p *parser) expect(typ int) (token, error) {
	if p.peek().typ != typ {
		t := p.peek()
		return t, &SyntaxError{
			Line:    t.line,
			Column:  t.column,
			Message: fmt.Sprintf("expected %s, found %s", tokenNames[typ], tokenNames[t.typ]),
		}
	}
	return p.next(), nil
}

func (p *parser) term() (Term, error) {
	if p.peek().typ == tokLambda {
		return p.lambda()
	}
	return p.app()
}

func (p *parser) lambda() (Term, error) {
	p.next()
	var names []string
	for p.peek().typ == tokIdent {
		names = append(names, p.next().text)
	}
	if len(names) == 0 {
		return nil, p.unexpected()
	}
	if _, err := p.expect(tokDot); err != nil {
		return nil, err
	}
	depth := len(p.scope)
	p.scope = append(p.scope, names...)
	body, err := p.term()
	p.scope = p.scope[:depth]
	if err != nil {
		return nil, err
	}
	return Lams(names, body), nil
}

func (p *parser) app() (Term, error) {
	f, err := p.atom()
	if err != nil {
		return nil, err
	}
	for {
		switch p.peek().typ {
		case tokIdent, tokLParen:
			a, err := p.atom()
			if err != nil {
				return nil, err
			}
			f = App{Func: f, Argm: a}
		case tokLambda:
			a, err := p.lambda()
			if err != nil {
				return nil, err
			}
			return App{Func: f, Argm: a}, nil
		default:
			return f, nil
		}
	}
}

func (p *parser) atom() (Term, error) {
	switch p.peek().typ {
	case tokIdent:
		return p.ident(p.next())
	case tokLParen:
		p.next()
		t, err := p.term()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokRParen); err != nil {
			return nil, err
		}
		return t, nil
	default:
		return nil, p.unexpected()
	}
}

func (p *parser) ident(tok token) (Term, error) {
	for i := len(p.scope) - 1; i >= 0; i-- {
		if p.scope[i] == tok.text {
			return Var{Index: len(p.scope) - 1 - i, Name: tok.text}, nil
		}
	}
	if name, ok := p.resolve(tok.text); ok {
		return Ref{Name: name}, nil
	}
	return nil, &UnboundError{Name: tok.text}
}
