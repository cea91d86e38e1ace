package version

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// Version is the release of this build. Overridden with -ldflags at build time.
var Version = "1.0.0"

// Constraint is the range of server versions this client can talk to
const Constraint = "^1.0.0"

// Message is the banner returned by the server root endpoint
func Message() string {
	return "CodeRunr Editor v" + Version
}

// CheckCompatible reports an error unless serverVersion satisfies Constraint
func CheckCompatible(serverVersion string) error {
	v, err := semver.NewVersion(serverVersion)
	if err != nil {
		return fmt.Errorf("failed to parse server version %q: %w", serverVersion, err)
	}

	c, err := semver.NewConstraint(Constraint)
	if err != nil {
		return fmt.Errorf("failed to parse constraint %q: %w", Constraint, err)
	}

	if !c.Check(v) {
		return fmt.Errorf("server version %s does not satisfy %s", v, Constraint)
	}
	return nil
}
