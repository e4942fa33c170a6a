package compiler

import (
	"github.com/cwbudde/go-jack/internal/lexer"
	"github.com/cwbudde/go-jack/internal/vm"
)

// compileExpression compiles `term (op term)*`. All binary operators
// have equal precedence and associate left: operands are emitted in
// source order and each operator right after its second operand.
func (c *Compiler) compileExpression() error {
	if err := c.compileTerm(); err != nil {
		return err
	}

	for isBinaryOp(c.cur().Type) {
		op := c.cur().Type
		c.advance()
		if err := c.compileTerm(); err != nil {
			return err
		}
		c.emitBinaryOp(op)
	}
	return nil
}

func isBinaryOp(typ lexer.TokenType) bool {
	switch typ {
	case lexer.PLUS, lexer.MINUS, lexer.ASTERISK, lexer.SLASH,
		lexer.AMP, lexer.PIPE, lexer.LESS, lexer.GREATER, lexer.EQ:
		return true
	}
	return false
}

// emitBinaryOp emits the code for one binary operator. Multiplication
// and division have no VM instruction and call into the OS math
// routines instead.
func (c *Compiler) emitBinaryOp(op lexer.TokenType) {
	switch op {
	case lexer.PLUS:
		c.out.WriteArithmetic(vm.Add)
	case lexer.MINUS:
		c.out.WriteArithmetic(vm.Sub)
	case lexer.ASTERISK:
		c.out.WriteCall("Math.multiply", 2)
	case lexer.SLASH:
		c.out.WriteCall("Math.divide", 2)
	case lexer.AMP:
		c.out.WriteArithmetic(vm.And)
	case lexer.PIPE:
		c.out.WriteArithmetic(vm.Or)
	case lexer.LESS:
		c.out.WriteArithmetic(vm.Lt)
	case lexer.GREATER:
		c.out.WriteArithmetic(vm.Gt)
	case lexer.EQ:
		c.out.WriteArithmetic(vm.Eq)
	}
}

// compileTerm compiles one term, dispatching on the current token.
func (c *Compiler) compileTerm() error {
	tok := c.cur()
	switch tok.Type {
	case lexer.INT_CONST:
		c.out.WritePush(vm.Constant, tok.IntVal())
		c.advance()
		return nil

	case lexer.STRING_CONST:
		c.compileStringConstant(tok.StringVal())
		c.advance()
		return nil

	case lexer.TRUE:
		// true is -1 on the VM
		c.out.WritePush(vm.Constant, 0)
		c.out.WriteArithmetic(vm.Not)
		c.advance()
		return nil

	case lexer.FALSE, lexer.NULL:
		c.out.WritePush(vm.Constant, 0)
		c.advance()
		return nil

	case lexer.THIS:
		c.out.WritePush(vm.Pointer, 0)
		c.advance()
		return nil

	case lexer.LPAREN:
		c.advance()
		if err := c.compileExpression(); err != nil {
			return err
		}
		_, err := c.expect(lexer.RPAREN)
		return err

	case lexer.MINUS, lexer.TILDE:
		c.advance()
		if err := c.compileTerm(); err != nil {
			return err
		}
		if tok.Type == lexer.MINUS {
			c.out.WriteArithmetic(vm.Neg)
		} else {
			c.out.WriteArithmetic(vm.Not)
		}
		return nil

	case lexer.IDENT:
		return c.compileIdentTerm(tok)
	}

	return c.errorf(tok, "expected term, found %q", tok.Literal)
}

// compileIdentTerm disambiguates the three uses of an identifier inside
// a term with one token of lookahead: array element read, subroutine
// call, or scalar variable read. The identifier is consumed before the
// lookahead and carried as a pending token into the chosen branch.
func (c *Compiler) compileIdentTerm(nameTok lexer.Token) error {
	c.advance()

	switch c.cur().Type {
	case lexer.LBRACK:
		sym, ok := c.st.Lookup(nameTok.Literal)
		if !ok {
			return c.errorf(nameTok, "undefined variable %q", nameTok.Literal)
		}
		c.out.WritePush(segmentOf(sym.Kind), sym.Index)
		c.advance()
		if err := c.compileExpression(); err != nil {
			return err
		}
		if _, err := c.expect(lexer.RBRACK); err != nil {
			return err
		}
		c.out.WriteArithmetic(vm.Add)
		c.out.WritePop(vm.Pointer, 1)
		c.out.WritePush(vm.That, 0)
		return nil

	case lexer.LPAREN, lexer.DOT:
		return c.compileSubroutineCall(nameTok)

	default:
		sym, ok := c.st.Lookup(nameTok.Literal)
		if !ok {
			return c.errorf(nameTok, "undefined variable %q", nameTok.Literal)
		}
		c.out.WritePush(segmentOf(sym.Kind), sym.Index)
		return nil
	}
}

// compileSubroutineCall compiles a call whose leading identifier has
// already been consumed. Three forms, resolved by the next token and
// the symbol table:
//
//	sub(args)       method call on the current object
//	obj.sub(args)   method call, obj is a variable in scope
//	Cls.sub(args)   function or constructor call, Cls is not in scope
//
// When a receiver exists it is pushed before the arguments and counted
// in the call arity; form three pushes none.
func (c *Compiler) compileSubroutineCall(nameTok lexer.Token) error {
	var callName string
	receiver := false

	if c.cur().Type == lexer.DOT {
		c.advance()
		subName, err := c.expectIdent()
		if err != nil {
			return err
		}
		if sym, ok := c.st.Lookup(nameTok.Literal); ok {
			c.out.WritePush(segmentOf(sym.Kind), sym.Index)
			callName = sym.Type + "." + subName
			receiver = true
		} else {
			callName = nameTok.Literal + "." + subName
		}
	} else {
		c.out.WritePush(vm.Pointer, 0)
		callName = c.className + "." + nameTok.Literal
		receiver = true
	}

	if _, err := c.expect(lexer.LPAREN); err != nil {
		return err
	}
	nArgs, err := c.compileExpressionList()
	if err != nil {
		return err
	}
	if _, err := c.expect(lexer.RPAREN); err != nil {
		return err
	}

	if receiver {
		nArgs++
	}
	c.out.WriteCall(callName, nArgs)
	return nil
}

// compileExpressionList compiles a possibly empty comma-separated
// expression list and returns how many expressions were compiled.
func (c *Compiler) compileExpressionList() (int, error) {
	if c.cur().Type == lexer.RPAREN {
		return 0, nil
	}

	if err := c.compileExpression(); err != nil {
		return 0, err
	}
	count := 1

	for c.cur().Type == lexer.COMMA {
		c.advance()
		if err := c.compileExpression(); err != nil {
			return 0, err
		}
		count++
	}
	return count, nil
}

// compileStringConstant builds the string at runtime: allocate with
// String.new, then append each character code in order.
func (c *Compiler) compileStringConstant(s string) {
	c.out.WritePush(vm.Constant, len(s))
	c.out.WriteCall("String.new", 1)
	for i := 0; i < len(s); i++ {
		c.out.WritePush(vm.Constant, int(s[i]))
		c.out.WriteCall("String.appendChar", 2)
	}
}
