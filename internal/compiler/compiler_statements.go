package compiler

import (
	"fmt"

	"github.com/cwbudde/go-jack/internal/lexer"
	"github.com/cwbudde/go-jack/internal/vm"
)

// compileStatements compiles a statement sequence. Any token that is
// not a statement keyword ends the sequence; the caller decides whether
// what follows is legal.
func (c *Compiler) compileStatements() error {
	for {
		var err error
		switch c.cur().Type {
		case lexer.LET:
			err = c.compileLet()
		case lexer.IF:
			err = c.compileIf()
		case lexer.WHILE:
			err = c.compileWhile()
		case lexer.DO:
			err = c.compileDo()
		case lexer.RETURN:
			err = c.compileReturn()
		default:
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// compileLet compiles `let IDENT ('[' expression ']')? '=' expression ';'`.
//
// For an array element target the subscript is compiled first, then the
// base address is pushed and added, leaving the element address below
// the RHS value on the stack.
func (c *Compiler) compileLet() error {
	c.advance() // let

	nameTok, err := c.expect(lexer.IDENT)
	if err != nil {
		return err
	}
	sym, ok := c.st.Lookup(nameTok.Literal)
	if !ok {
		return c.errorf(nameTok, "undefined variable %q", nameTok.Literal)
	}

	indexed := false
	if c.cur().Type == lexer.LBRACK {
		indexed = true
		c.advance()
		if err := c.compileExpression(); err != nil {
			return err
		}
		if _, err := c.expect(lexer.RBRACK); err != nil {
			return err
		}
		c.out.WritePush(segmentOf(sym.Kind), sym.Index)
		c.out.WriteArithmetic(vm.Add)
	}

	if _, err := c.expect(lexer.EQ); err != nil {
		return err
	}
	if err := c.compileExpression(); err != nil {
		return err
	}
	if _, err := c.expect(lexer.SEMICOLON); err != nil {
		return err
	}

	if indexed {
		// Park the value in temp 0 while pointer 1 is re-aimed at the
		// target: an array read on the RHS has clobbered pointer 1.
		c.out.WritePop(vm.Temp, 0)
		c.out.WritePop(vm.Pointer, 1)
		c.out.WritePush(vm.Temp, 0)
		c.out.WritePop(vm.That, 0)
	} else {
		c.out.WritePop(segmentOf(sym.Kind), sym.Index)
	}
	return nil
}

// compileIf compiles `if '(' expression ')' '{' statements '}'
// ('else' '{' statements '}')?`.
//
// The condition leaves -1 for true and 0 for false; inverting it lets
// if-goto branch to the false label and fall through into the then
// branch.
func (c *Compiler) compileIf() error {
	c.advance() // if

	n := c.ifCounter
	c.ifCounter++
	labelFalse := fmt.Sprintf("IF_FALSE%d", n)
	labelEnd := fmt.Sprintf("IF_END%d", n)

	if _, err := c.expect(lexer.LPAREN); err != nil {
		return err
	}
	if err := c.compileExpression(); err != nil {
		return err
	}
	if _, err := c.expect(lexer.RPAREN); err != nil {
		return err
	}

	c.out.WriteArithmetic(vm.Not)
	c.out.WriteIf(labelFalse)

	if _, err := c.expect(lexer.LBRACE); err != nil {
		return err
	}
	if err := c.compileStatements(); err != nil {
		return err
	}
	if _, err := c.expect(lexer.RBRACE); err != nil {
		return err
	}

	if c.cur().Type != lexer.ELSE {
		c.out.WriteLabel(labelFalse)
		return nil
	}
	c.advance() // else

	c.out.WriteGoto(labelEnd)
	c.out.WriteLabel(labelFalse)

	if _, err := c.expect(lexer.LBRACE); err != nil {
		return err
	}
	if err := c.compileStatements(); err != nil {
		return err
	}
	if _, err := c.expect(lexer.RBRACE); err != nil {
		return err
	}

	c.out.WriteLabel(labelEnd)
	return nil
}

// compileWhile compiles `while '(' expression ')' '{' statements '}'`.
func (c *Compiler) compileWhile() error {
	c.advance() // while

	n := c.whileCounter
	c.whileCounter++
	labelExp := fmt.Sprintf("WHILE_EXP%d", n)
	labelEnd := fmt.Sprintf("WHILE_END%d", n)

	c.out.WriteLabel(labelExp)

	if _, err := c.expect(lexer.LPAREN); err != nil {
		return err
	}
	if err := c.compileExpression(); err != nil {
		return err
	}
	if _, err := c.expect(lexer.RPAREN); err != nil {
		return err
	}

	c.out.WriteArithmetic(vm.Not)
	c.out.WriteIf(labelEnd)

	if _, err := c.expect(lexer.LBRACE); err != nil {
		return err
	}
	if err := c.compileStatements(); err != nil {
		return err
	}
	if _, err := c.expect(lexer.RBRACE); err != nil {
		return err
	}

	c.out.WriteGoto(labelExp)
	c.out.WriteLabel(labelEnd)
	return nil
}

// compileDo compiles `do subroutineCall ';'`. Every Jack subroutine
// returns a word; do discards it.
func (c *Compiler) compileDo() error {
	c.advance() // do

	callee, err := c.expect(lexer.IDENT)
	if err != nil {
		return err
	}
	if err := c.compileSubroutineCall(callee); err != nil {
		return err
	}
	c.out.WritePop(vm.Temp, 0)

	_, err = c.expect(lexer.SEMICOLON)
	return err
}

// compileReturn compiles `return expression? ';'`. A bare return pushes
// constant 0 so the caller always finds a return value on the stack.
func (c *Compiler) compileReturn() error {
	c.advance() // return

	if c.cur().Type == lexer.SEMICOLON {
		c.out.WritePush(vm.Constant, 0)
	} else if err := c.compileExpression(); err != nil {
		return err
	}

	if _, err := c.expect(lexer.SEMICOLON); err != nil {
		return err
	}
	c.out.WriteReturn()
	return nil
}
