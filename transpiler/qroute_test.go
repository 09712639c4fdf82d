//go:build unit
// +build unit

package transpiler

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/stretchr/testify/assert"

	"github.com/qroute-team/qroute-engine/circuit"
	"github.com/qroute-team/qroute-engine/common"
	"github.com/qroute-team/qroute-engine/core"
)

func TestIsAcceptableTranspilerLib(t *testing.T) {
	q := &QRoute{}
	assert.True(t, q.IsAcceptableTranspilerLib("qroute"))
	assert.False(t, q.IsAcceptableTranspilerLib("qiskit"))
	assert.False(t, q.IsAcceptableTranspilerLib(""))
}

func TestQRouteSetupDefaults(t *testing.T) {
	core.ResetSetting()
	q := &QRoute{}
	assert.Nil(t, q.Setup(&core.Conf{CompileTimeoutSec: 60}))
	assert.Equal(t, q.setting.OptimizationLevel, DEFAULT_OPTIMIZATION_LEVEL)
	assert.True(t, q.setting.UseCache)
	assert.NotNil(t, q.cache)
}

func TestQRouteSetupFromSettingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "setting.toml")
	content := heredoc.Doc(`
		[com.qroute]
		optimization_level = 1
		use_cache = false
	`)
	assert.Nil(t, os.WriteFile(path, []byte(content), 0644))

	core.ResetSetting()
	assert.Nil(t, core.ParseSettingFromPath(path))

	q := &QRoute{}
	assert.Nil(t, q.Setup(&core.Conf{}))
	assert.Equal(t, q.setting.OptimizationLevel, 1)
	assert.False(t, q.setting.UseCache)
	assert.Nil(t, q.cache)
}

func TestDeviceBasis(t *testing.T) {
	b := DeviceBasis(&core.DeviceInfoSpec{})
	assert.Equal(t, b.Name, "superconducting")

	b = DeviceBasis(&core.DeviceInfoSpec{
		DeviceID:   "iontrap-1",
		BasisGates: []string{"rxx", "rx", "ry"},
	})
	assert.Equal(t, b.Name, "iontrap-1")
	assert.True(t, b.Contains("rxx"))
	assert.False(t, b.Contains("cx"))
}

func TestDeviceErrorModel(t *testing.T) {
	assert.Nil(t, DeviceErrorModel(&core.DeviceInfoSpec{}))

	spec := &core.DeviceInfoSpec{
		Qubits: []core.Qubit{
			{ID: 0, Fidelity: 0.999, MeasError: core.MeasError{ProbMeas1Prep0: 0.02, ProbMeas0Prep1: 0.02}},
			{ID: 1, Fidelity: 0.997, MeasError: core.MeasError{ProbMeas1Prep0: 0.04, ProbMeas0Prep1: 0.04}},
		},
		Couplings: []core.Coupling{
			{Control: 0, Target: 1, Fidelity: 0.98},
		},
	}
	em := DeviceErrorModel(spec)
	assert.InDelta(t, em.OneQubitError, 0.002, 1e-9)
	assert.InDelta(t, em.TwoQubitError, 0.02, 1e-9)
	assert.InDelta(t, em.ReadoutError, 0.03, 1e-9)
}

func TestQRouteTranspile(t *testing.T) {
	s := core.SCWithUnimplementedContainer()
	defer s.TearDown()

	core.ResetSetting()
	q := &QRoute{}
	assert.Nil(t, q.Setup(&core.Conf{CompileTimeoutSec: 60}))

	qasm, err := common.GetAsset("bell_pair.qasm")
	assert.Nil(t, err)

	jm, err := core.NewJobManager(&core.CompileJob{})
	assert.Nil(t, err)
	jc, err := core.NewJobContext()
	assert.Nil(t, err)
	jd := core.NewJobData()
	jd.ID = "transpile-test"
	jd.QASM = qasm
	jd.Transpiler = core.DEFAULT_TRANSPILER_CONFIG()
	job, err := jm.NewJobFromJobData(jd, jc)
	assert.Nil(t, err)

	assert.Nil(t, q.Transpile(job))
	assert.NotEmpty(t, job.JobData().TranspiledQASM)

	// every output gate sits in the advertised native set
	out, err := circuit.ParseQASM(job.JobData().TranspiledQASM)
	assert.Nil(t, err)
	basis := circuit.SuperconductingBasis()
	for _, g := range out.Gates {
		assert.True(t, basis.Contains(g.Name), "gate %s is not native", g.Name)
	}

	ti := job.JobData().Result.TranspilerInfo
	assert.Equal(t, len(ti.VirtualPhysicalMappingMap), 2)
	assert.Equal(t, len(ti.PhysicalVirtualMapping), 2)
	back, err := ti.VirtualPhysicalMappingRaw.ToMap()
	assert.Nil(t, err)
	assert.Equal(t, back, ti.VirtualPhysicalMappingMap)
	assert.Contains(t, string(ti.StatsRaw), "total_gates")
}

func TestQRouteTranspileTooLarge(t *testing.T) {
	s := core.SCWithUnimplementedContainer()
	defer s.TearDown()

	core.ResetSetting()
	q := &QRoute{}
	assert.Nil(t, q.Setup(&core.Conf{}))

	jm, err := core.NewJobManager(&core.CompileJob{})
	assert.Nil(t, err)
	jc, err := core.NewJobContext()
	assert.Nil(t, err)
	jd := core.NewJobData()
	jd.ID = "too-large"
	// the mock device has 4 qubits
	jd.QASM = "OPENQASM 3;\nqubit[5] q;\n\ncx q[0], q[4];"
	jd.Transpiler = core.DEFAULT_TRANSPILER_CONFIG()
	job, err := jm.NewJobFromJobData(jd, jc)
	assert.Nil(t, err)

	err = q.Transpile(job)
	assert.ErrorIs(t, err, ErrorInsufficientPhysicalQubits)
}
