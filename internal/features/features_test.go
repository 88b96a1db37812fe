package features_test

import (
	"os"
	"runtime"
	"testing"

	"github.com/wazerocore/corevm/internal/features"
	"github.com/wazerocore/corevm/internal/testing/require"
)

func init() {
	os.Setenv(features.EnvVarName, "hugepages,bogus")
	features.EnableFromEnvironment()
}

func TestList(t *testing.T) {
	require.Equal(t, []string{"hugepages"}, features.List())
}

func TestHave(t *testing.T) {
	require.True(t, features.Have("hugepages"))
	require.False(t, features.Have("bogus"))
	require.False(t, features.Have("nope"))
}

func TestAllocsEnabled(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("accessing features allocates memory on windows")
	}
	require.Equal(t, 0.0, testing.AllocsPerRun(100, func() {
		features.Have("hugepages")
	}))
}

func TestAllocsDisabled(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("accessing features allocates memory on windows")
	}
	require.Equal(t, 0.0, testing.AllocsPerRun(100, func() {
		features.Have("nope")
	}))
}
