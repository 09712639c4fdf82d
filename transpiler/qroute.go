package transpiler

import (
	"context"
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/qroute-team/qroute-engine/circuit"
	"github.com/qroute-team/qroute-engine/core"
	"github.com/qroute-team/qroute-engine/device"
)

var jsonIter = jsoniter.ConfigCompatibleWithStandardLibrary

type QRouteSetting struct {
	OptimizationLevel int  `toml:"optimization_level"`
	UseCache          bool `toml:"use_cache"`
}

func NewQRouteSetting() QRouteSetting {
	return QRouteSetting{
		OptimizationLevel: DEFAULT_OPTIMIZATION_LEVEL,
		UseCache:          true,
	}
}

// QRoute runs the compile pipeline in-process. One rewrite cache is
// shared by all jobs; Compile itself is safe for concurrent calls, so a
// single QRoute serves every worker.
type QRoute struct {
	setting QRouteSetting
	cache   *RewriteCache
	timeout time.Duration
}

func (t *QRoute) IsAcceptableTranspilerLib(lib string) bool {
	return lib == "qroute"
}

func (t *QRoute) Setup(conf *core.Conf) error {
	s, ok := core.GetComponentSetting("qroute")
	if !ok {
		zap.L().Info("qroute setting is not found, using defaults")
		t.setting = NewQRouteSetting()
	} else {
		zap.L().Debug(fmt.Sprintf("qroute setting:%v", s))
		// TODO: fix this adhoc
		mapped, ok := s.(map[string]interface{})
		if !ok {
			t.setting = NewQRouteSetting()
		} else {
			t.setting = NewQRouteSetting()
			if v, ok := mapped["optimization_level"].(int64); ok {
				t.setting.OptimizationLevel = int(v)
			}
			if v, ok := mapped["use_cache"].(bool); ok {
				t.setting.UseCache = v
			}
		}
	}
	if t.setting.UseCache {
		t.cache = NewRewriteCache()
	}
	if conf.CompileTimeoutSec > 0 {
		t.timeout = time.Duration(conf.CompileTimeoutSec) * time.Second
	}
	zap.L().Debug(fmt.Sprintf("QRoute is ready/optimization_level:%d/use_cache:%t/timeout:%s",
		t.setting.OptimizationLevel, t.setting.UseCache, t.timeout))
	return nil
}

func (t *QRoute) GetHealth() error {
	return nil
}

func (t *QRoute) Transpile(j core.Job) error {
	jd := j.JobData()
	c, err := circuit.ParseQASM(jd.QASM)
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to parse QASM of JobID:%s/reason:%s", jd.ID, err))
		return err
	}
	di := core.GetSystemComponents().GetDeviceInfo()
	spec, err := device.SpecFromJSON(di.DeviceInfoSpecJson)
	if err != nil {
		return err
	}
	g, err := device.GraphFromSpec(spec)
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to realize coupling graph of device:%s/reason:%s",
			di.DeviceName, err))
		return err
	}
	opts, err := ParseOptions(jd.Transpiler.TranspilerOptions)
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to parse transpiler options of JobID:%s/reason:%s",
			jd.ID, err))
		return err
	}
	if jd.Transpiler.UseDefault {
		opts.OptimizationLevel = t.setting.OptimizationLevel
	}
	opts.ErrorModel = DeviceErrorModel(spec)
	opts.Cache = t.cache

	ctx := context.Background()
	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}
	zap.L().Debug(fmt.Sprintf(
		"transpile request/JobID:%s/device:%s/qubits:%d->%d/optimization_level:%d",
		jd.ID, di.DeviceName, c.NumQubits, g.NumNodes(), opts.OptimizationLevel))
	res, err := Compile(ctx, c, g, DeviceBasis(spec), opts)
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to transpile JobID:%s/reason:%s", jd.ID, err))
		return err
	}
	jd.TranspiledQASM = res.Circuit.ToQASM()

	vpm := core.VirtualPhysicalMappingMap{}
	for logical, physical := range res.FinalLayout.LogToPhys {
		if physical >= 0 {
			vpm[uint32(logical)] = uint32(physical)
		}
	}
	raw, err := vpm.ToRaw()
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to marshal virtual physical mapping:%v/reason:%s",
			vpm, err))
		return err
	}
	ti := jd.Result.TranspilerInfo
	ti.VirtualPhysicalMappingMap = vpm
	ti.VirtualPhysicalMappingRaw = raw
	pvm := core.PhysicalVirtualMapping{}
	for virtual, physical := range vpm {
		pvm[physical] = virtual
	}
	ti.PhysicalVirtualMapping = pvm

	stats, err := jsonIter.Marshal(res.Metrics)
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to marshal stats of JobID:%s/reason:%s", jd.ID, err))
		return err
	}
	ti.StatsRaw = core.StatsRaw(stats)
	zap.L().Debug(fmt.Sprintf("transpiled JobID:%s/gates:%d/depth:%d/routing_ops:%d",
		jd.ID, res.Metrics.TotalGates, res.Metrics.Depth, res.Metrics.RoutingOps))
	return nil
}

func (t *QRoute) TearDown() {
	t.cache = nil
}

// DeviceBasis resolves the native gate set advertised in a device spec.
// Specs without basis gates get the superconducting default.
func DeviceBasis(spec *core.DeviceInfoSpec) circuit.Basis {
	if len(spec.BasisGates) == 0 {
		return circuit.SuperconductingBasis()
	}
	return circuit.NewBasis(spec.DeviceID, spec.BasisGates)
}

// DeviceErrorModel flattens per-qubit and per-coupling fidelities into
// the rates the fidelity estimate uses. Specs without qubit data yield
// no model.
func DeviceErrorModel(spec *core.DeviceInfoSpec) *ErrorModel {
	if len(spec.Qubits) == 0 {
		return nil
	}
	var oneQ, readout float64
	for _, q := range spec.Qubits {
		oneQ += 1.0 - q.Fidelity
		readout += (q.MeasError.ProbMeas1Prep0 + q.MeasError.ProbMeas0Prep1) / 2.0
	}
	n := float64(len(spec.Qubits))
	em := &ErrorModel{
		OneQubitError: oneQ / n,
		ReadoutError:  readout / n,
	}
	if len(spec.Couplings) > 0 {
		var twoQ float64
		for _, c := range spec.Couplings {
			twoQ += 1.0 - c.Fidelity
		}
		em.TwoQubitError = twoQ / float64(len(spec.Couplings))
	}
	return em
}
