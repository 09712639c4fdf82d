package core

type NonSecretConf struct {
	DevMode              bool
	DisableStdoutLog     bool
	EnableFileLog        bool
	LogDir               string
	LogLevel             string
	LogRotationMaxDays   int
	UseDummyDevice       bool
	DeviceSettingsPath   string
	QueueMaxSize         int
	QueueRefillThreshold int
	CompileWorkers       int
	CompileTimeoutSec    int
}

type Info struct {
	Conf *NonSecretConf
}

var CurrentInfo *Info

func SetInfo(c *Conf) {
	conf := &NonSecretConf{
		DevMode:              c.DevMode,
		DisableStdoutLog:     c.DisableStdoutLog,
		EnableFileLog:        c.EnableFileLog,
		LogDir:               c.LogDir,
		LogLevel:             c.LogLevel,
		LogRotationMaxDays:   c.LogRotationMaxDays,
		UseDummyDevice:       c.UseDummyDevice,
		DeviceSettingsPath:   c.DeviceSettingPath,
		QueueMaxSize:         c.QueueMaxSize,
		QueueRefillThreshold: c.QueueRefillThreshold,
		CompileWorkers:       c.CompileWorkers,
		CompileTimeoutSec:    c.CompileTimeoutSec,
	}

	CurrentInfo = &Info{
		Conf: conf,
	}
}
