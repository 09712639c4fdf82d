//go:build unit
// +build unit

package engine

import (
	"testing"
	"time"

	"github.com/MakeNowJust/heredoc/v2"
	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qroute-team/qroute-engine/core"
	"github.com/qroute-team/qroute-engine/transpiler"
)

var jsonIter = jsoniter.ConfigCompatibleWithStandardLibrary

var testEngine *Engine

func TestMain(m *testing.M) {
	conf := &core.Conf{
		UseDummyDevice: true,
		QueueMaxSize:   100,
		CompileWorkers: 2,
		SettingPath:    "no_such_setting.toml",
	}
	testEngine = NewWithConf(conf)
	if err := testEngine.Setup(); err != nil {
		panic(err)
	}
	defer testEngine.TearDown()
	m.Run()
}

// The dummy device is a six qubit line, so a cx between the two line
// ends cannot run without routing.
var lineStressQASM = heredoc.Doc(`
	OPENQASM 3;
	qubit[6] q;
	bit[6] c;
	h q[0];
	cx q[0], q[5];
	c[0] = measure q[0];
`)

func waitFinished(t *testing.T, j core.Job) {
	t.Helper()
	require.Eventually(t, j.IsFinished, 10*time.Second, 10*time.Millisecond,
		"job(%s) did not finish", j.JobData().ID)
}

func TestSubmitCompileJob(t *testing.T) {
	j, err := testEngine.Submit(&core.JobParam{
		JobID: "compile-on-line",
		QASM:  lineStressQASM,
	})
	require.Nil(t, err)
	waitFinished(t, j)

	jd := j.JobData()
	assert.Equal(t, core.SUCCEEDED, jd.Status)
	assert.NotEmpty(t, jd.TranspiledQASM)

	var m transpiler.Metrics
	require.Nil(t, jsonUnmarshalStats(jd.Result.TranspilerInfo.StatsRaw, &m))
	assert.GreaterOrEqual(t, m.RoutingOps, 1)
	assert.Greater(t, m.Depth, 0)
	assert.NotEmpty(t, jd.Result.TranspilerInfo.VirtualPhysicalMappingMap)
}

func TestSubmitStampsEndedOnSuccess(t *testing.T) {
	j, err := testEngine.Submit(&core.JobParam{
		JobID: "ended-stamp",
		QASM:  lineStressQASM,
	})
	require.Nil(t, err)
	waitFinished(t, j)

	jd := j.JobData()
	assert.Equal(t, core.SUCCEEDED, jd.Status)
	assert.False(t, time.Time(jd.Ended).IsZero())
	assert.False(t, time.Time(jd.Ended).Before(time.Time(jd.Created)))
}

func TestJobLookupAndForget(t *testing.T) {
	j, err := testEngine.Submit(&core.JobParam{
		JobID: "lookup-me",
		QASM:  lineStressQASM,
	})
	require.Nil(t, err)
	waitFinished(t, j)

	// the DB consumer stores clones asynchronously
	require.Eventually(t, func() bool {
		stored, ok := testEngine.Job("lookup-me")
		return ok && stored.JobData().Status == core.SUCCEEDED
	}, 10*time.Second, 10*time.Millisecond)

	require.True(t, testEngine.Forget("lookup-me"))
	_, ok := testEngine.Job("lookup-me")
	assert.False(t, ok)
	assert.False(t, testEngine.Forget("lookup-me"))

	// a forgotten ID is free for a new submission
	again, err := testEngine.Submit(&core.JobParam{
		JobID: "lookup-me",
		QASM:  lineStressQASM,
	})
	require.Nil(t, err)
	waitFinished(t, again)
	assert.Equal(t, core.SUCCEEDED, again.JobData().Status)
}

func TestSubmitComparisonJob(t *testing.T) {
	j, err := testEngine.Submit(&core.JobParam{
		JobID:   "compare-line-vs-full",
		QASM:    lineStressQASM,
		JobType: "comparison",
	})
	require.Nil(t, err)
	waitFinished(t, j)

	jd := j.JobData()
	assert.Equal(t, core.SUCCEEDED, jd.Status)
	cmp := jd.Result.Comparison
	require.NotNil(t, cmp)
	// all-to-all reference needs no routing, the line does
	assert.GreaterOrEqual(t, cmp.SwapOverhead, 1)
	assert.GreaterOrEqual(t, cmp.DepthRatio, 1.0)
}

func TestSubmitGeneratesJobID(t *testing.T) {
	j, err := testEngine.Submit(&core.JobParam{QASM: lineStressQASM})
	require.Nil(t, err)
	assert.NotEmpty(t, j.JobData().ID)
	waitFinished(t, j)
	assert.Equal(t, core.SUCCEEDED, j.JobData().Status)
}

func TestSubmitRejectsInvalidQASM(t *testing.T) {
	_, err := testEngine.Submit(&core.JobParam{
		JobID: "broken-program",
		QASM:  "OPENQASM 3;\nqubit[6] q;\nfrobnicate q[0];",
	})
	assert.Error(t, err)
}

func TestSubmitRejectsOversizedCircuit(t *testing.T) {
	_, err := testEngine.Submit(&core.JobParam{
		JobID: "too-many-qubits",
		QASM:  "OPENQASM 3;\nqubit[8] q;\nh q[0];",
	})
	assert.Error(t, err)
}

func TestSubmitDuplicateJobID(t *testing.T) {
	first, err := testEngine.Submit(&core.JobParam{
		JobID: "dup-id",
		QASM:  lineStressQASM,
	})
	require.Nil(t, err)
	waitFinished(t, first)

	second, err := testEngine.Submit(&core.JobParam{
		JobID: "dup-id",
		QASM:  lineStressQASM,
	})
	require.Nil(t, err) // the conflict surfaces in pre-processing
	waitFinished(t, second)
	assert.Equal(t, core.FAILED, second.JobData().Status)
	assert.Contains(t, second.JobData().Result.Message, "already used")
}

func jsonUnmarshalStats(raw core.StatsRaw, m *transpiler.Metrics) error {
	return jsonIter.Unmarshal([]byte(raw), m)
}
