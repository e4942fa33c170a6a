package symtab

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefineAssignsDenseIndexes(t *testing.T) {
	st := New()

	st.Define("x", "int", Field)
	st.Define("y", "int", Field)
	st.Define("count", "int", Static)
	st.Define("z", "boolean", Field)

	for i, name := range []string{"x", "y", "z"} {
		sym, ok := st.Lookup(name)
		require.True(t, ok, "lookup %s", name)
		assert.Equal(t, Field, sym.Kind)
		assert.Equal(t, i, sym.Index)
	}

	sym, ok := st.Lookup("count")
	require.True(t, ok)
	assert.Equal(t, Static, sym.Kind)
	assert.Equal(t, 0, sym.Index, "static indexes count independently of fields")

	assert.Equal(t, 3, st.VarCount(Field))
	assert.Equal(t, 1, st.VarCount(Static))
}

func TestSubroutineScopeShadowsClassScope(t *testing.T) {
	st := New()
	st.Define("x", "int", Field)
	st.Define("x", "Point", Var)

	sym, ok := st.Lookup("x")
	require.True(t, ok)
	assert.Equal(t, Var, sym.Kind)
	assert.Equal(t, "Point", sym.Type)

	// The class-scope entry reappears once the subroutine scope clears.
	st.StartSubroutine()
	sym, ok = st.Lookup("x")
	require.True(t, ok)
	assert.Equal(t, Field, sym.Kind)
	assert.Equal(t, "int", sym.Type)
}

func TestStartSubroutineResetsCounters(t *testing.T) {
	st := New()
	st.Define("s", "int", Static)
	st.Define("f", "int", Field)
	st.Define("a", "int", Arg)
	st.Define("b", "int", Arg)
	st.Define("v", "int", Var)

	st.StartSubroutine()

	assert.Equal(t, 0, st.VarCount(Arg))
	assert.Equal(t, 0, st.VarCount(Var))
	assert.Equal(t, 1, st.VarCount(Static), "class counters persist")
	assert.Equal(t, 1, st.VarCount(Field), "class counters persist")

	_, ok := st.Lookup("a")
	assert.False(t, ok, "subroutine entries are gone")
	_, ok = st.Lookup("f")
	assert.True(t, ok, "class entries survive")

	// Fresh subroutine starts indexing at zero again.
	sym := st.Define("c", "int", Arg)
	assert.Equal(t, 0, sym.Index)
}

func TestLookupAbsent(t *testing.T) {
	st := New()
	st.Define("x", "int", Var)

	_, ok := st.Lookup("Math")
	assert.False(t, ok)

	_, ok = st.KindOf("Math")
	assert.False(t, ok)
	_, ok = st.TypeOf("Math")
	assert.False(t, ok)
	_, ok = st.IndexOf("Math")
	assert.False(t, ok)
}

func TestAccessorAgreement(t *testing.T) {
	st := New()
	st.Define("radius", "int", Field)
	st.Define("other", "Circle", Arg)

	kind, ok := st.KindOf("other")
	require.True(t, ok)
	assert.Equal(t, Arg, kind)

	typ, ok := st.TypeOf("other")
	require.True(t, ok)
	assert.Equal(t, "Circle", typ)

	idx, ok := st.IndexOf("other")
	require.True(t, ok)
	assert.Equal(t, 0, idx)

	// Invariant: indexOf(name) < varCount(kindOf(name)).
	assert.Less(t, idx, st.VarCount(kind))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "static", Static.String())
	assert.Equal(t, "field", Field.String())
	assert.Equal(t, "arg", Arg.String())
	assert.Equal(t, "var", Var.String())
}
