package core

import (
	"fmt"

	"go.uber.org/zap"
)

// Version is the engine version resolved at startup. A -ldflags build
// flag wins over Conf; NoVersion marks a build with neither.
var Version string

const NoVersion = "no_version_info"

func SetVersion(c *Conf, versionByBuildFlag string) {
	switch {
	case versionByBuildFlag != "":
		Version = versionByBuildFlag
	case c.Version != "":
		Version = c.Version
	default:
		Version = NoVersion
	}
	zap.L().Info(fmt.Sprintf("Engine version is %s", Version))
}
