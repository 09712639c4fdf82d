//go:build unit
// +build unit

package scheduler

import (
	"sync"
	"testing"

	"github.com/qroute-team/qroute-engine/core"
	"github.com/stretchr/testify/assert"
)

type TestFIFO struct {
	conqFIFO
	queuedChan chan struct{}
}

func newTestFIFO(queuedChan chan struct{}) *TestFIFO {
	return &TestFIFO{
		conqFIFO:   *newConqFIFO(),
		queuedChan: queuedChan,
	}
}

func (t *TestFIFO) Enqueue(js *jobInScheduler) error {
	err := t.FIFO.Enqueue(js)
	t.queuedChan <- struct{}{}
	return err
}

func setUpTestNormalQueue(queuedChan chan struct{}, maxSize int) *NormalQueue {
	n := &NormalQueue{}
	conf := &core.Conf{QueueMaxSize: maxSize, QueueRefillThreshold: 2}
	n.Setup(conf)
	n.fifo = newTestFIFO(queuedChan)
	return n
}

func tearDownTestNormalQueue(n *NormalQueue) {
	close(n.fifo.(*TestFIFO).queuedChan)
	n.TearDown()
}

func newJobInSchedulerForTest(t *testing.T, jobID string) *jobInScheduler {
	jd := core.NewJobData()
	jd.ID = jobID
	jd.QASM = "test_qasm"
	jd.Status = core.READY
	jd.Transpiler = core.DEFAULT_TRANSPILER_CONFIG()
	jc, err := core.NewJobContext()
	assert.Nil(t, err)
	var wg sync.WaitGroup
	wg.Add(1)
	cj := &core.CompileJob{}
	return &jobInScheduler{
		job:      cj.New(jd, jc),
		finished: &wg,
	}
}

func TestPutNormalQueue(t *testing.T) {
	s := core.SCWithUnimplementedContainer()
	defer s.TearDown()
	queuedChan := make(chan struct{})
	n := setUpTestNormalQueue(queuedChan, 1000)
	defer tearDownTestNormalQueue(n)

	n.queueChan <- newJobInSchedulerForTest(t, "test1")
	<-queuedChan
	assert.Equal(t, 1, n.fifo.GetLen())
	js, err := n.Dequeue(false)
	assert.Nil(t, err)
	assert.Equal(t, "test1", js.job.JobData().ID)
}

func TestNormalQueueOrder(t *testing.T) {
	s := core.SCWithUnimplementedContainer()
	defer s.TearDown()
	queuedChan := make(chan struct{})
	n := setUpTestNormalQueue(queuedChan, 1000)
	defer tearDownTestNormalQueue(n)

	for _, id := range []string{"first", "second", "third"} {
		n.queueChan <- newJobInSchedulerForTest(t, id)
		<-queuedChan
	}
	assert.Equal(t, 3, n.GetCurrentSize())
	for _, want := range []string{"first", "second", "third"} {
		js, err := n.Dequeue(false)
		assert.Nil(t, err)
		assert.Equal(t, want, js.job.JobData().ID)
	}
}

func TestNormalQueueFull(t *testing.T) {
	s := core.SCWithUnimplementedContainer()
	defer s.TearDown()
	queuedChan := make(chan struct{})
	n := setUpTestNormalQueue(queuedChan, 1)
	defer tearDownTestNormalQueue(n)

	n.queueChan <- newJobInSchedulerForTest(t, "fits")
	<-queuedChan

	rejected := newJobInSchedulerForTest(t, "rejected")
	n.queueChan <- rejected
	rejected.finished.Wait() // the queue fails the job instead of enqueueing it
	assert.Equal(t, core.FAILED, rejected.job.JobData().Status)
	assert.Equal(t, 1, n.GetCurrentSize())
}

func TestNormalQueueRefillThreshold(t *testing.T) {
	s := core.SCWithUnimplementedContainer()
	defer s.TearDown()
	queuedChan := make(chan struct{})
	n := setUpTestNormalQueue(queuedChan, 1000)
	defer tearDownTestNormalQueue(n)

	assert.False(t, n.IsOverRefillThreshold())
	for i, id := range []string{"a", "b"} {
		n.queueChan <- newJobInSchedulerForTest(t, id)
		<-queuedChan
		assert.Equal(t, i+1, n.GetCurrentSize())
	}
	assert.True(t, n.IsOverRefillThreshold())
}
