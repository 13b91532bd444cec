package options

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type testConfig struct {
	depth  int
	name   string
	strict bool
	calls  []string
}

var errNegativeDepth = errors.New("depth cannot be negative")

func withDepth(d int) Option[*testConfig] {
	return New(func(c *testConfig) error {
		if d < 0 {
			return errNegativeDepth
		}
		c.depth = d
		c.calls = append(c.calls, "depth")

		return nil
	})
}

func withName(n string) Option[*testConfig] {
	return NoError(func(c *testConfig) {
		c.name = n
		c.calls = append(c.calls, "name")
	})
}

func withStrict() Option[*testConfig] {
	return NoError(func(c *testConfig) {
		c.strict = true
		c.calls = append(c.calls, "strict")
	})
}

func TestApply_InOrder(t *testing.T) {
	cfg := &testConfig{}

	err := Apply(cfg, withName("doc"), withDepth(8), withStrict())
	require.NoError(t, err)
	require.Equal(t, "doc", cfg.name)
	require.Equal(t, 8, cfg.depth)
	require.True(t, cfg.strict)
	require.Equal(t, []string{"name", "depth", "strict"}, cfg.calls)
}

func TestApply_StopsAtFirstError(t *testing.T) {
	cfg := &testConfig{}

	err := Apply(cfg, withName("doc"), withDepth(-1), withStrict())
	require.ErrorIs(t, err, errNegativeDepth)
	require.Equal(t, []string{"name"}, cfg.calls)
	require.False(t, cfg.strict)
}

func TestApply_NoOptions(t *testing.T) {
	cfg := &testConfig{}

	require.NoError(t, Apply(cfg))
	require.Empty(t, cfg.calls)
}

func TestApply_SkipsNil(t *testing.T) {
	cfg := &testConfig{}

	require.NoError(t, Apply(cfg, nil, withStrict(), nil))
	require.True(t, cfg.strict)
}
