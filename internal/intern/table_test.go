package intern

import (
	"testing"

	"github.com/arloliu/vtree/format"
	"github.com/arloliu/vtree/strtab"
	"github.com/stretchr/testify/require"
)

func TestNewTable(t *testing.T) {
	table := NewTable()

	require.NotNil(t, table)
	require.Equal(t, 0, table.Len())
	_, ok := table.Get(0)
	require.False(t, ok)
}

func TestTable_Add(t *testing.T) {
	table := NewTable()

	id, ok := table.Add("alpha")
	require.True(t, ok)
	require.Equal(t, uint64(0), id)

	id, ok = table.Add("beta")
	require.True(t, ok)
	require.Equal(t, uint64(1), id)

	// re-adding returns the original id
	id, ok = table.Add("alpha")
	require.True(t, ok)
	require.Equal(t, uint64(0), id)
	require.Equal(t, 2, table.Len())

	s, ok := table.Get(1)
	require.True(t, ok)
	require.Equal(t, "beta", s)
}

func TestTable_Add_EmptyString(t *testing.T) {
	table := NewTable()

	_, ok := table.Add("")
	require.False(t, ok)
	require.Equal(t, 0, table.Len())
	_, ok = table.Lookup("")
	require.False(t, ok)
}

func TestTable_Resolve(t *testing.T) {
	extern := strtab.MustNewExtern([]string{"name", "kind"})
	table := NewTable()

	code, _ := table.Resolve("x", extern)
	require.Equal(t, format.TypeString, code)

	code, id := table.Resolve("x", extern)
	require.Equal(t, format.TypeSharedString, code)
	require.Equal(t, uint64(0), id)

	code, id = table.Resolve("kind", extern)
	require.Equal(t, format.TypeExternString, code)
	require.Equal(t, uint64(1), id)

	// extern strings never enter the session table
	code, _ = table.Resolve("kind", extern)
	require.Equal(t, format.TypeExternString, code)
	_, ok := table.Lookup("kind")
	require.False(t, ok)
	require.Equal(t, 1, table.Len())
}

func TestTable_Resolve_NilExtern(t *testing.T) {
	table := NewTable()

	code, _ := table.Resolve("name", nil)
	require.Equal(t, format.TypeString, code)
	code, id := table.Resolve("name", nil)
	require.Equal(t, format.TypeSharedString, code)
	require.Equal(t, uint64(0), id)
}

func TestTable_Resolve_EmptyStringStaysLiteral(t *testing.T) {
	table := NewTable()

	for range 3 {
		code, _ := table.Resolve("", nil)
		require.Equal(t, format.TypeString, code)
	}
	require.Equal(t, 0, table.Len())
}

func TestTable_Reset(t *testing.T) {
	table := NewTable()
	table.Add("a")
	table.Add("b")

	table.Reset()

	require.Equal(t, 0, table.Len())
	_, ok := table.Lookup("a")
	require.False(t, ok)

	id, _ := table.Add("b")
	require.Equal(t, uint64(0), id)
}
