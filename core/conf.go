package core

import (
	"fmt"

	flags "github.com/jessevdk/go-flags"
	"github.com/massn/envordot"
)

type Conf struct {
	Version              string `long:"version" description:"version of the engine" env:"QROUTE_ENGINE_VERSION"`
	DevMode              bool   `long:"dev-mode" description:"run in dev mode" env:"QROUTE_ENGINE_DEV_MODE"`
	DisableStdoutLog     bool   `long:"disable-stdout-log" description:"do not log in standard output" env:"QROUTE_ENGINE_DISABLE_STDOUT_LOG"`
	EnableFileLog        bool   `long:"enable-file-log" description:"enable log in file" env:"QROUTE_ENGINE_ENABLE_FILE_LOG"`
	LogDir               string `long:"log-dir" description:"rotating log file dir" default:"./shares/logs" env:"QROUTE_ENGINE_LOG_DIR"`
	LogLevel             string `long:"log-level" description:"log level" default:"info" choice:"debug" choice:"info" choice:"warn" choice:"error" env:"QROUTE_ENGINE_LOG_LEVEL"`
	LogRotationMaxDays   int    `long:"log-rotation-max-days" description:"max days of log rotation" default:"7" env:"QROUTE_ENGINE_LOG_ROTATION_MAX_DAYS"`
	UseDummyDevice       bool   `long:"enable-dummy-device" description:"use dummy device for tests and disable device settings" env:"QROUTE_ENGINE_USE_DUMMY_DEVICE"`
	DeviceSettingPath    string `long:"device-setting-path" description:"device setting file path" default:"./device_setting.toml" env:"QROUTE_ENGINE_DEVICE_SETTING_PATH"`
	QueueMaxSize         int    `long:"queue-max-size" description:"queue max size" default:"100" env:"QROUTE_ENGINE_QUEUE_MAX_SIZE"`
	QueueRefillThreshold int    `long:"queue-refill-threshold" description:"queue refill threshold" default:"10" env:"QROUTE_ENGINE_QUEUE_REFILL_THRESHOLD"`
	CompileWorkers       int    `long:"compile-workers" description:"number of concurrent compile workers" default:"4" env:"QROUTE_ENGINE_COMPILE_WORKERS"`
	CompileTimeoutSec    int    `long:"compile-timeout-sec" description:"per-job compile timeout in seconds" default:"60" env:"QROUTE_ENGINE_COMPILE_TIMEOUT_SEC"`
	SettingPath          string `long:"setting-path" description:"setting file path" default:"./setting/setting.toml" env:"QROUTE_ENGINE_SETTING_PATH"`
}

// LoadConf fills Conf from the process environment and struct defaults.
// Variables in a ".env" file take precedence over the environment when
// the file exists. The engine is embedded, so no command line is parsed.
func LoadConf() (*Conf, error) {
	if err := envordot.Load(false, ".env"); err != nil {
		fmt.Printf("Not found \".env\" file. Use only environment variables. reason:%s\n", err.Error())
	} else {
		fmt.Println("Found \".env\" file. Environment variables in the file take precedence.")
	}
	conf := &Conf{}
	parser := flags.NewParser(conf, flags.Default)
	if _, err := parser.ParseArgs([]string{}); err != nil {
		return nil, fmt.Errorf("failed to parse configuration/reason:%w", err)
	}
	return conf, nil
}
