package importer

import "github.com/Masterminds/semver/v3"

// HostABI is the running core's ABI version, checked against a module's
// declared Spec.ABIConstraint before a source/native module loads. It is
// a literal here rather than read from cli.Version, so the importer
// package has no dependency on internal/cli; cmd/zephyr does not change
// it.
var HostABI = "0.1.0"

// CheckABI reports whether hostABI satisfies a module's declared
// constraint string (spec §4.13's version-aware loader chain: a
// source/native module can declare a minimum required Zephyr ABI
// version, checked before the module's code actually runs). An empty
// constraint always satisfies.
func CheckABI(constraint, hostABI string) (bool, error) {
	if constraint == "" {
		return true, nil
	}
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return false, err
	}
	v, err := semver.NewVersion(hostABI)
	if err != nil {
		return false, err
	}
	return c.Check(v), nil
}
