package version_test

import (
	"runtime"
	"strings"
	"testing"

	"github.com/wazerocore/corevm/internal/testing/require"
	"github.com/wazerocore/corevm/internal/version"
)

func TestDeterministicIDIncludesTargetAndFeatures(t *testing.T) {
	id := version.DeterministicID([]string{"hugepages"})
	require.True(t, strings.Contains(id, runtime.GOOS))
	require.True(t, strings.Contains(id, runtime.GOARCH))
	require.True(t, strings.Contains(id, "hugepages"))
	require.True(t, strings.Contains(id, version.Version()))
}

func TestDeterministicIDNoFeatures(t *testing.T) {
	id := version.DeterministicID(nil)
	require.True(t, strings.HasSuffix(id, "-none"))
}

func TestDeterministicIDDiffersByFeatureSet(t *testing.T) {
	a := version.DeterministicID([]string{"hugepages"})
	b := version.DeterministicID([]string{"hugepages", "simd"})
	require.True(t, a != b)
}
