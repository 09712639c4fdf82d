package comparison

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-openapi/strfmt"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/qroute-team/qroute-engine/circuit"
	"github.com/qroute-team/qroute-engine/core"
	"github.com/qroute-team/qroute-engine/device"
	"github.com/qroute-team/qroute-engine/topology"
	"github.com/qroute-team/qroute-engine/transpiler"
)

const (
	COMPARISON_JOB         = "comparison"
	COMPARISON_SETTING_KEY = "comparison"

	DEFAULT_REFERENCE_KIND = "full"
)

var jsonIter = jsoniter.ConfigCompatibleWithStandardLibrary

type ComparisonSetting struct {
	ReferenceKind string `toml:"reference_kind"`
}

func NewComparisonSetting() ComparisonSetting {
	return ComparisonSetting{
		ReferenceKind: DEFAULT_REFERENCE_KIND,
	}
}

// ComparisonJob compiles one program twice, against the device coupling
// map and against a reference topology of the same size, and records
// both stats plus the derived deltas in its result. The device side goes
// through the registered Transpiler component, so the job result carries
// the usual transpiler info as well.
type ComparisonJob struct {
	setting    ComparisonSetting
	jobData    *core.JobData
	jobContext *core.JobContext

	referenceResult *transpiler.Result
	finished        bool
}

func (j *ComparisonJob) New(jd *core.JobData, jc *core.JobContext) core.Job {
	var setting ComparisonSetting
	s, ok := core.GetComponentSetting(COMPARISON_SETTING_KEY)
	if !ok {
		setting = NewComparisonSetting()
	} else {
		// TODO: fix this adhoc
		mapped, ok := s.(map[string]interface{})
		if !ok {
			zap.L().Debug("comparison setting is not set")
			setting = NewComparisonSetting()
		} else {
			setting = NewComparisonSetting()
			if k, ok := mapped["reference_kind"].(string); ok {
				setting.ReferenceKind = k
			}
		}
	}
	return &ComparisonJob{
		setting:    setting,
		jobData:    jd,
		jobContext: jc,
		finished:   false,
	}
}

func (j *ComparisonJob) PreProcess() {
	if err := j.preProcessImpl(); err != nil {
		zap.L().Error(fmt.Sprintf("failed to pre-process a job(%s). Reason:%s",
			j.JobData().ID, err.Error()))
		core.SetFailureWithError(j, err)
		j.finished = true
		return
	}
	return
}

func (j *ComparisonJob) preProcessImpl() (err error) {
	err = nil
	jd := j.JobData()
	container := core.GetSystemComponents().Container
	err = container.Invoke(
		func(d core.DBManager) error {
			if d.ExistInInnerJobIDSet(jd.ID) {
				return core.ErrorJobIDConflict
			}
			return nil
		})
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to check the existence of a job(%s). Reason:%s",
			jd.ID, err.Error()))
		return
	}
	err = container.Invoke(
		func(d core.DBManager) error {
			return d.Insert(j)
		})
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to insert a job(%s). Reason:%s", jd.ID, err.Error()))
		return
	}
	_ = container.Invoke(
		func(d core.DBManager) error {
			d.AddToInnerJobIDSet(jd.ID)
			return nil
		})
	return
}

func (j *ComparisonJob) Process() {
	if err := j.processImpl(); err != nil {
		zap.L().Error(fmt.Sprintf("failed to process a job(%s). Reason:%s",
			j.JobData().ID, err.Error()))
		core.SetFailureWithError(j, err)
		j.finished = true
		return
	}
	zap.L().Debug(fmt.Sprintf("finished to process a job(%s)", j.JobData().ID))
}

func (j *ComparisonJob) processImpl() error {
	jd := j.jobData
	if !jd.NeedTranspiling() {
		return fmt.Errorf("no transpiler config in a comparison job")
	}
	di := core.GetSystemComponents().GetDeviceInfo()
	spec, err := device.SpecFromJSON(di.DeviceInfoSpecJson)
	if err != nil {
		return err
	}
	refGraph, err := referenceGraph(j.setting.ReferenceKind, len(spec.Qubits))
	if err != nil {
		return err
	}
	c, err := circuit.ParseQASM(jd.QASM)
	if err != nil {
		return err
	}
	opts, err := transpiler.ParseOptions(jd.Transpiler.TranspilerOptions)
	if err != nil {
		return err
	}
	opts.ErrorModel = transpiler.DeviceErrorModel(spec)

	container := core.GetSystemComponents().Container
	start := time.Now()
	var deviceErr, refErr error
	var refRes *transpiler.Result
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		deviceErr = container.Invoke(
			func(t core.Transpiler) error {
				return t.Transpile(j)
			})
	}()
	go func() {
		defer wg.Done()
		refRes, refErr = transpiler.Compile(
			context.Background(), c, refGraph, transpiler.DeviceBasis(spec), opts)
	}()
	wg.Wait()
	jd.Result.ExecutionTime = time.Since(start)
	if err := multierr.Combine(deviceErr, refErr); err != nil {
		return err
	}
	j.referenceResult = refRes
	return nil
}

func (j *ComparisonJob) PostProcess() {
	j.finished = true
	jd := j.jobData

	var dm transpiler.Metrics
	if err := jsonIter.Unmarshal([]byte(jd.Result.TranspilerInfo.StatsRaw), &dm); err != nil {
		zap.L().Error(fmt.Sprintf("failed to unmarshal device stats of a job(%s). Reason:%s",
			jd.ID, err.Error()))
		core.SetFailureWithError(j, err)
		return
	}
	rm := j.referenceResult.Metrics
	refStats, err := jsonIter.Marshal(rm)
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to marshal reference stats of a job(%s). Reason:%s",
			jd.ID, err.Error()))
		core.SetFailureWithError(j, err)
		return
	}
	ratio := 1.0
	if rm.Depth > 0 {
		ratio = float64(dm.Depth) / float64(rm.Depth)
	}
	jd.Result.Comparison = &core.Comparison{
		DeviceStats:    jd.Result.TranspilerInfo.StatsRaw,
		ReferenceStats: core.StatsRaw(refStats),
		SwapOverhead:   dm.RoutingOps - rm.RoutingOps,
		DepthRatio:     ratio,
	}
	jd.Status = core.SUCCEEDED
	jd.Ended = strfmt.DateTime(time.Now())
	zap.L().Debug(fmt.Sprintf("compared a job(%s)/swap_overhead:%d/depth_ratio:%f",
		jd.ID, jd.Result.Comparison.SwapOverhead, ratio))
	j.jobContext.DBChan <- j
	return
}

func (j *ComparisonJob) IsFinished() bool {
	return j.finished
}

func (j *ComparisonJob) JobData() *core.JobData {
	return j.jobData
}

func (j *ComparisonJob) JobType() string {
	return COMPARISON_JOB
}

func (j *ComparisonJob) JobContext() *core.JobContext {
	return j.jobContext
}

func (j *ComparisonJob) UpdateJobData(jd *core.JobData) {
	j.jobData = jd
}

func (j *ComparisonJob) Clone() core.Job {
	cloned := &ComparisonJob{
		setting:    j.setting,
		jobData:    j.jobData.Clone(),
		jobContext: j.jobContext,
	}
	return cloned
}

func referenceGraph(kind string, n int) (*topology.Graph, error) {
	switch kind {
	case "full", "":
		return topology.Full(n)
	case "line":
		return topology.Line(n)
	case "ring":
		return topology.Ring(n)
	case "star":
		return topology.Star(n)
	default:
		return nil, fmt.Errorf("unknown reference topology kind:%s", kind)
	}
}
