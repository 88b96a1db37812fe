package experimental

import "github.com/wazerocore/corevm/internal/features"

// EnableFeatures enables the list of features passed as arguments.
//
// Features are global because they affect properties of wazero which cannot
// be decoupled, such as interaction with system capabilities that affect the
// entire process instead of a particular wazero.Runtime instance.
//
// Enabled names are recorded and can be queried with internal/features.Have;
// no allocation path in this module consults them. In particular,
// "hugepages" is accepted and recorded, but memories are plain Go slices
// and are not backed by huge pages.
//
// Features are always turned off by default, and may be activated by calling
// this function, which should usually happen before creating any wazero.Runtime
// instances. Once enabled, features cannot be disabled.
func EnableFeatures(featureNames ...string) { features.Enable(featureNames...) }
