package engine

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/oklog/run"
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/qroute-team/qroute-engine/comparison"
	"github.com/qroute-team/qroute-engine/core"
	"github.com/qroute-team/qroute-engine/device"
	"github.com/qroute-team/qroute-engine/log"
	"github.com/qroute-team/qroute-engine/scheduler"
	"github.com/qroute-team/qroute-engine/transpiler"
)

// Engine assembles the compile pipeline into a running system: DI
// container, component settings, job manager, scheduler workers and the
// periodic run group. It is embedded by the host process; there is no
// command line.
type Engine struct {
	Conf *core.Conf

	sc *core.SystemComponents
	rc *core.RunContext
}

// New loads Conf from the environment, installs the global logger and
// returns an assembled but not yet started engine.
func New() (*Engine, error) {
	conf, err := core.LoadConf()
	if err != nil {
		return nil, err
	}
	log.SetGlobal(conf)
	e := NewWithConf(conf)
	if err := e.Setup(); err != nil {
		return nil, err
	}
	return e, nil
}

// NewWithConf wraps an already-populated Conf. The caller owns logger
// installation; Setup must be called before Submit or Run.
func NewWithConf(conf *core.Conf) *Engine {
	return &Engine{Conf: conf}
}

func (e *Engine) Setup() error {
	conf := e.Conf
	core.SetVersion(conf, "")

	core.ResetSetting()
	registerSetting()
	if _, err := os.Stat(conf.SettingPath); err == nil {
		if err := core.ParseSettingFromPath(conf.SettingPath); err != nil {
			zap.L().Error(fmt.Sprintf("failed to parse settings/reason:%s", err))
			return err
		}
	} else {
		zap.L().Info(fmt.Sprintf("no setting file at %s, using registered defaults", conf.SettingPath))
	}

	container, err := provideDIContainer(conf)
	if err != nil {
		zap.L().Error(fmt.Sprintf("Failed to set up the DI container. Reason:%s", err))
		return err
	}
	zap.L().Debug("Setting up System Components")
	s := core.NewSystemComponents(container)
	if err := s.Setup(conf); err != nil {
		zap.L().Error(fmt.Sprintf("Failed to set up System Components. Reason:%s", err))
		return err
	}
	e.sc = s

	if _, err := core.NewJobManager(
		&core.CompileJob{},
		&comparison.ComparisonJob{},
	); err != nil {
		return err
	}
	if err := s.StartContainer(); err != nil {
		return err
	}
	core.SetInfo(conf)

	rc, err := e.newRunContext()
	if err != nil {
		return err
	}
	e.rc = rc
	core.SetRunContext(rc)
	return nil
}

// Submit validates a job request against the device, registers the job
// and hands it to the scheduler. The returned job carries the generated
// ID when the request omitted one.
func (e *Engine) Submit(param *core.JobParam) (core.Job, error) {
	if param.JobID == "" {
		param.JobID = uuid.NewString()
	}
	if param.Transpiler == nil {
		param.Transpiler = core.DEFAULT_TRANSPILER_CONFIG()
	}
	jc, err := core.NewJobContext()
	if err != nil {
		return nil, err
	}
	job, err := core.GetJobManager().NewJobWithValidation(param, jc)
	if err != nil {
		zap.L().Info(fmt.Sprintf("refused a job(%s). Reason:%s", param.JobID, err.Error()))
		return nil, err
	}
	job.JobData().Status = core.READY
	err = e.sc.Invoke(
		func(s core.Scheduler) error {
			s.HandleJob(job)
			return nil
		})
	if err != nil {
		return nil, err
	}
	zap.L().Debug(fmt.Sprintf("submitted a job(%s)/type:%s", param.JobID, job.JobType()))
	return job, nil
}

// Job looks up the stored state of a submitted job by ID.
func (e *Engine) Job(jobID string) (core.Job, bool) {
	j := core.GetJob(jobID)
	if j == nil {
		return nil, false
	}
	return j, true
}

// Forget drops a finished job from the store and releases its ID for
// reuse by a later submission.
func (e *Engine) Forget(jobID string) bool {
	if !core.DeleteJob(jobID) {
		return false
	}
	if err := e.sc.Invoke(
		func(d core.DBManager) error {
			d.RemoveFromInnerJobIDSet(jobID)
			return nil
		}); err != nil {
		zap.L().Error(fmt.Sprintf("failed to release the ID of a job(%s). Reason:%s", jobID, err))
	}
	return true
}

// Run blocks on the run group until a signal arrives or a member fails.
func (e *Engine) Run() error {
	e.rc.Add(
		run.SignalHandler(
			e.rc.Context,
			os.Interrupt))
	return e.rc.Run()
}

func (e *Engine) TearDown() {
	e.sc.TearDown()
}

func (e *Engine) SystemComponents() *core.SystemComponents {
	return e.sc
}

func (e *Engine) newRunContext() (*core.RunContext, error) {
	im := &core.ImplMaps{
		PeriodicTaskImplMap: core.PeriodicTaskImplMap{
			log.VersionLogTaskName: &log.VersionLogTaskImpl{},
			log.MetricsLogTaskName: &log.MetricsLogTaskImpl{},
		},
	}
	if _, err := os.Stat(e.Conf.SettingPath); err != nil {
		// no periodic tasks without a setting file
		return core.NewRunContext(), nil
	}
	rc, err := core.NewRunContextWithSettingPath(e.Conf.SettingPath, im)
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to set up run context/reason:%s", err.Error()))
		return nil, err
	}
	return rc, nil
}

func provideDIContainer(conf *core.Conf) (*dig.Container, error) {
	c := dig.New()
	if err := c.Provide(func() core.DeviceManager {
		if conf.UseDummyDevice {
			return &device.DummyDevice{}
		}
		return &device.ConfiguredDevice{}
	}); err != nil {
		return nil, err
	}
	if err := c.Provide(func() core.Transpiler { return &transpiler.QRoute{} }); err != nil {
		return nil, err
	}
	if err := c.Provide(func() core.Scheduler { return &scheduler.NormalScheduler{} }); err != nil {
		return nil, err
	}
	if err := c.Provide(func() core.DBManager { return &core.MemoryDB{} }); err != nil {
		return nil, err
	}
	return c, nil
}

func registerSetting() {
	core.RegisterSetting("qroute", transpiler.NewQRouteSetting())
	core.RegisterSetting(comparison.COMPARISON_SETTING_KEY, comparison.NewComparisonSetting())
}
