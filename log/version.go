package log

import (
	"fmt"

	"github.com/qroute-team/qroute-engine/core"
	"go.uber.org/zap"
)

const VersionLogTaskName = "version_log"

type VersionLogTaskImpl struct {
	core.DefaultTaskImpl
}

func (v *VersionLogTaskImpl) Task() {
	zap.L().Debug("Engine version:" + core.Version)
	if info := core.CurrentInfo; info != nil {
		zap.L().Debug(fmt.Sprintf("Engine conf: %+v", *info.Conf))
	}
}
