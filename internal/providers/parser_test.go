package providers

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseProviderRef(t *testing.T) {
	ref := ParseProviderRef("openai:key1")
	require.Equal(t, "openai", ref.Name)
	require.Equal(t, "key1", ref.KeyAlias)
	require.Equal(t, "mock", ParseProviderRef("").Name)
}

func TestParseModelList(t *testing.T) {
	require.Equal(t, []string{"a", "b", "c"}, ParseModelList(" a | b,c|a|"))
	require.Empty(t, ParseModelList(""))
}

func TestOrderModels(t *testing.T) {
	models := []string{"m1", "m2", "m3"}
	require.Equal(t, []string{"m2", "m1", "m3"}, OrderModels(models, "m2"))
	require.Equal(t, []string{"m1", "m2", "m3"}, OrderModels(models, ""))
	require.Equal(t, []string{"x", "m1", "m2", "m3"}, OrderModels(models, "x"))
	require.Equal(t, []string{"m1", "m2", "m3"}, models, "input must not be mutated")
}
