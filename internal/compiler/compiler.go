// Package compiler implements the single-pass Jack-to-VM translator.
//
// The Compiler is a recursive-descent parser over the Jack grammar that
// is fused with symbol-table maintenance and code emission: each
// compile method consumes the tokens of one grammar production and
// writes the VM commands implementing it. One token of lookahead
// decides every branch; there is no AST and no backtracking.
package compiler

import (
	"bytes"
	"fmt"

	"github.com/cwbudde/go-jack/internal/lexer"
	"github.com/cwbudde/go-jack/internal/symtab"
	"github.com/cwbudde/go-jack/internal/vm"
)

// ParseError is a grammar mismatch at a specific token. The first
// mismatch aborts compilation of the file; there is no recovery.
type ParseError struct {
	Message string
	Pos     lexer.Position
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Pos.Line, e.Pos.Column, e.Message)
}

// Compiler translates one tokenized Jack class into VM commands.
type Compiler struct {
	tz  *lexer.Tokenizer
	st  *symtab.Table
	out *vm.Writer

	className    string
	ifCounter    int
	whileCounter int
}

// New creates a Compiler reading from tz and emitting through out.
// Each class compilation needs a fresh Compiler; nothing is shared
// across files.
func New(tz *lexer.Tokenizer, out *vm.Writer) *Compiler {
	return &Compiler{
		tz:  tz,
		st:  symtab.New(),
		out: out,
	}
}

// CompileSource tokenizes and compiles a complete Jack class, returning
// the VM text. It fails on the first lexical or parse error; on failure
// no partial output is returned.
func CompileSource(src string) (string, error) {
	tz := lexer.New(src)
	if err := tz.Err(); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	c := New(tz, vm.NewWriter(&buf))
	if err := c.CompileClass(); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// CompileClass compiles `class IDENT { classVarDec* subroutineDec* }`,
// the root production. The class header emits no code; everything comes
// from the subroutine bodies.
func (c *Compiler) CompileClass() error {
	if _, err := c.expect(lexer.CLASS); err != nil {
		return err
	}

	name, err := c.expectIdent()
	if err != nil {
		return err
	}
	c.className = name

	if _, err := c.expect(lexer.LBRACE); err != nil {
		return err
	}

	for c.cur().Type == lexer.STATIC || c.cur().Type == lexer.FIELD {
		if err := c.compileClassVarDec(); err != nil {
			return err
		}
	}

	for isSubroutineKind(c.cur().Type) {
		if err := c.compileSubroutine(); err != nil {
			return err
		}
	}

	if _, err := c.expect(lexer.RBRACE); err != nil {
		return err
	}
	if tok := c.cur(); tok.Type != lexer.EOF {
		return c.errorf(tok, "unexpected %q after end of class", tok.Literal)
	}

	return c.out.Err()
}

// compileClassVarDec compiles `('static'|'field') type IDENT (',' IDENT)* ';'`.
// Declarations only populate the class scope; no code is emitted.
func (c *Compiler) compileClassVarDec() error {
	kind := symtab.Static
	if c.cur().Type == lexer.FIELD {
		kind = symtab.Field
	}
	c.advance()

	typ, err := c.compileType()
	if err != nil {
		return err
	}

	for {
		name, err := c.expectIdent()
		if err != nil {
			return err
		}
		c.st.Define(name, typ, kind)

		if c.cur().Type != lexer.COMMA {
			break
		}
		c.advance()
	}

	_, err = c.expect(lexer.SEMICOLON)
	return err
}

// compileSubroutine compiles a constructor, function, or method
// declaration including its body.
func (c *Compiler) compileSubroutine() error {
	c.st.StartSubroutine()

	kind := c.cur().Type // CONSTRUCTOR | FUNCTION | METHOD
	c.advance()

	// Return type: void or any type. It is not recorded; the VM calling
	// convention makes every subroutine return a word regardless.
	tok := c.cur()
	switch tok.Type {
	case lexer.VOID, lexer.INT, lexer.CHAR, lexer.BOOLEAN, lexer.IDENT:
		c.advance()
	default:
		return c.errorf(tok, "expected return type, found %q", tok.Literal)
	}

	name, err := c.expectIdent()
	if err != nil {
		return err
	}

	// A method receives its object as argument 0, so user parameters
	// start at index 1.
	if kind == lexer.METHOD {
		c.st.Define("this", c.className, symtab.Arg)
	}

	if _, err := c.expect(lexer.LPAREN); err != nil {
		return err
	}
	if err := c.compileParameterList(); err != nil {
		return err
	}
	if _, err := c.expect(lexer.RPAREN); err != nil {
		return err
	}

	return c.compileSubroutineBody(kind, name)
}

// compileParameterList compiles a possibly empty `(type IDENT)
// (',' type IDENT)*`, defining each parameter as an arg.
func (c *Compiler) compileParameterList() error {
	if c.cur().Type == lexer.RPAREN {
		return nil
	}

	for {
		typ, err := c.compileType()
		if err != nil {
			return err
		}
		name, err := c.expectIdent()
		if err != nil {
			return err
		}
		c.st.Define(name, typ, symtab.Arg)

		if c.cur().Type != lexer.COMMA {
			break
		}
		c.advance()
	}
	return nil
}

// compileSubroutineBody compiles `{ varDec* statements }`. The function
// header is emitted after the varDecs, once the local count is known,
// followed by the kind-specific prologue.
func (c *Compiler) compileSubroutineBody(kind lexer.TokenType, name string) error {
	if _, err := c.expect(lexer.LBRACE); err != nil {
		return err
	}

	for c.cur().Type == lexer.VAR {
		if err := c.compileVarDec(); err != nil {
			return err
		}
	}

	c.out.WriteFunction(c.className+"."+name, c.st.VarCount(symtab.Var))

	switch kind {
	case lexer.CONSTRUCTOR:
		// Allocate one word per field and anchor the new object.
		c.out.WritePush(vm.Constant, c.st.VarCount(symtab.Field))
		c.out.WriteCall("Memory.alloc", 1)
		c.out.WritePop(vm.Pointer, 0)
	case lexer.METHOD:
		c.out.WritePush(vm.Argument, 0)
		c.out.WritePop(vm.Pointer, 0)
	}

	if err := c.compileStatements(); err != nil {
		return err
	}

	_, err := c.expect(lexer.RBRACE)
	return err
}

// compileVarDec compiles `var type IDENT (',' IDENT)* ';'`.
func (c *Compiler) compileVarDec() error {
	c.advance() // var

	typ, err := c.compileType()
	if err != nil {
		return err
	}

	for {
		name, err := c.expectIdent()
		if err != nil {
			return err
		}
		c.st.Define(name, typ, symtab.Var)

		if c.cur().Type != lexer.COMMA {
			break
		}
		c.advance()
	}

	_, err = c.expect(lexer.SEMICOLON)
	return err
}

// compileType consumes a type name: int, char, boolean, or an
// identifier naming a class.
func (c *Compiler) compileType() (string, error) {
	tok := c.cur()
	switch tok.Type {
	case lexer.INT, lexer.CHAR, lexer.BOOLEAN, lexer.IDENT:
		c.advance()
		return tok.Literal, nil
	}
	return "", c.errorf(tok, "expected type, found %q", tok.Literal)
}

// Parsing helpers

func (c *Compiler) cur() lexer.Token {
	return c.tz.Current()
}

func (c *Compiler) advance() {
	c.tz.Advance()
}

// expect consumes and returns the current token when it has the wanted
// type, and fails with a ParseError otherwise.
func (c *Compiler) expect(typ lexer.TokenType) (lexer.Token, error) {
	tok := c.cur()
	if tok.Type != typ {
		return tok, c.errorf(tok, "expected %s, found %q", typ, tok.Literal)
	}
	c.advance()
	return tok, nil
}

func (c *Compiler) expectIdent() (string, error) {
	tok, err := c.expect(lexer.IDENT)
	return tok.Literal, err
}

func (c *Compiler) errorf(tok lexer.Token, format string, args ...any) error {
	return &ParseError{
		Pos:     tok.Pos,
		Message: fmt.Sprintf(format, args...),
	}
}

func isSubroutineKind(typ lexer.TokenType) bool {
	return typ == lexer.CONSTRUCTOR || typ == lexer.FUNCTION || typ == lexer.METHOD
}

// segmentOf maps a symbol kind to the VM segment holding it.
func segmentOf(kind symtab.Kind) vm.Segment {
	switch kind {
	case symtab.Static:
		return vm.Static
	case symtab.Field:
		return vm.This
	case symtab.Arg:
		return vm.Argument
	default:
		return vm.Local
	}
}
