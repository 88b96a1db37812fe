// Package version supplies the core's deterministic id (§4.11): a stable
// string summarizing engine, target and enabled features, so an external
// compilation cache can key precompiled artifacts safely.
package version

import (
	"fmt"
	"runtime"
)

// version is the engine's own release identifier. Unlike the teacher's
// version.GetWazeroVersion (stamped at build time via -ldflags), this repo
// has no release pipeline yet, so it is a plain constant.
const version = "0.1.0-dev"

// DeterministicID returns Engine::deterministic_id(): a string combining
// the engine version, the compilation target, and the enabled feature set,
// so that two artifacts compiled under different configurations never
// collide in an external cache (§4.11).
func DeterministicID(features []string) string {
	return fmt.Sprintf("corevm-%s-%s-%s-%s", version, runtime.GOOS, runtime.GOARCH, featureKey(features))
}

func featureKey(features []string) string {
	if len(features) == 0 {
		return "none"
	}
	key := features[0]
	for _, f := range features[1:] {
		key += "," + f
	}
	return key
}

// Version returns the engine's own release identifier.
func Version() string { return version }
