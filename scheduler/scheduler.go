package scheduler

import (
	"fmt"
	"sync"
	"time"

	"github.com/qroute-team/qroute-engine/core"
	"go.uber.org/zap"
)

const DEFAULT_COMPILE_WORKERS = 4

type statusHistory map[string][]core.Status

// NormalScheduler drives jobs through PreProcess/Process/PostProcess.
// PreProcess and PostProcess run in the handler goroutine of each job;
// Process runs on one of the compile workers fed by the queue. Compile
// calls share nothing, so the workers need no coordination beyond the
// queue itself.
type NormalScheduler struct {
	queue   *NormalQueue
	workers int

	mu            sync.RWMutex
	statusHistory statusHistory
}

type jobInScheduler struct {
	job      core.Job
	queuedAt time.Time
	finished *sync.WaitGroup
}

func (n *NormalScheduler) Setup(conf *core.Conf) error {
	if err := setupMetrics(); err != nil {
		zap.L().Error(fmt.Sprintf("failed to set up scheduler metrics. Reason:%s", err))
		return err
	}
	n.queue = &NormalQueue{}
	if err := n.queue.Setup(conf); err != nil {
		return err
	}
	n.workers = conf.CompileWorkers
	if n.workers <= 0 {
		n.workers = DEFAULT_COMPILE_WORKERS
	}
	n.statusHistory = make(statusHistory)
	return nil
}

func (n *NormalScheduler) Start() error {
	zap.L().Info(fmt.Sprintf("starting %d compile workers", n.workers))
	for i := 0; i < n.workers; i++ {
		go n.workerLoop(i)
	}
	return nil
}

func (n *NormalScheduler) workerLoop(workerID int) {
	for {
		jis, err := n.queue.Dequeue(true)
		if err != nil {
			zap.L().Error(fmt.Sprintf("worker %d failed to get a job from the queue. Reason:%s",
				workerID, err))
			continue
		}
		jid := jis.job.JobData().ID
		recordQueueWait(time.Since(jis.queuedAt))
		zap.L().Debug(fmt.Sprintf("worker %d is processing a job(%s)", workerID, jid))
		n.pushStatus(jis.job, core.RUNNING)
		jis.job.JobContext().DBChan <- jis.job.Clone()
		start := time.Now()
		processWithRecover(jis.job)
		// a clean compile leaves the job RUNNING until post-processing
		st := jis.job.JobData().Status
		if st == core.RUNNING {
			st = core.SUCCEEDED
		}
		recordCompile(time.Since(start), st)
		zap.L().Debug(fmt.Sprintf("worker %d finished processing a job(%s), status:%s",
			workerID, jid, jis.job.JobData().Status))
		jis.finished.Done()
	}
}

// processWithRecover keeps a panicking job from taking its worker down.
func processWithRecover(j core.Job) {
	defer func() {
		if r := recover(); r != nil {
			zap.L().Error(fmt.Sprintf("recovered from a panic while processing a job(%s):%v",
				j.JobData().ID, r))
			core.SetFailureWithError(j, fmt.Errorf("panic in process:%v", r))
		}
	}()
	j.Process()
}

func (n *NormalScheduler) HandleJob(j core.Job) {
	zap.L().Debug(fmt.Sprintf("starting to handle a job(%s) in %s", j.JobData().ID, j.JobData().Status))
	go func() {
		defer func() {
			zap.L().Debug(fmt.Sprintf("status history of a job(%s): %v",
				j.JobData().ID, n.history(j.JobData().ID)))
			n.dropHistory(j.JobData().ID)
		}()
		n.handleImpl(j)
	}()
}

func (n *NormalScheduler) HandleJobForTest(j core.Job, wg *sync.WaitGroup) {
	go func() {
		defer wg.Done()
		n.handleImpl(j)
	}()
}

func (n *NormalScheduler) handleImpl(j core.Job) {
	jid := j.JobData().ID
	n.pushStatus(j, j.JobData().Status)
	if j.JobData().Status != core.READY {
		zap.L().Error(fmt.Sprintf("refused to handle a job(%s) with unexpected status:%s",
			jid, j.JobData().Status.String()))
		// not written to the DB
		return
	}
	zap.L().Debug(fmt.Sprintf("handling a job(%s). start pre-processing", jid))
	j.PreProcess()
	j.JobContext().DBChan <- j.Clone()
	if j.IsFinished() {
		zap.L().Debug(fmt.Sprintf("finished to handle a job(%s) after pre-processing", jid))
		n.pushStatus(j, j.JobData().Status)
		return
	}
	var wg sync.WaitGroup
	wg.Add(1)
	n.queue.queueChan <- &jobInScheduler{
		job:      j,
		queuedAt: time.Now(),
		finished: &wg,
	}
	wg.Wait() // wait for a compile worker
	zap.L().Debug(fmt.Sprintf("processed job status: %s", j.JobData().Status))
	if j.IsFinished() {
		zap.L().Debug(fmt.Sprintf("finished to handle a job(%s) after processing with status:%s",
			jid, j.JobData().Status.String()))
		n.pushStatus(j, j.JobData().Status)
		j.JobContext().DBChan <- j.Clone()
		return
	}
	zap.L().Debug(fmt.Sprintf("handling a job(%s). start post-processing", jid))
	j.PostProcess()
	n.pushStatus(j, j.JobData().Status)
	zap.L().Debug(fmt.Sprintf("finished to handle a job(%s) after post-processing with status:%s",
		jid, j.JobData().Status.String()))
	j.JobContext().DBChan <- j.Clone()
}

func (n *NormalScheduler) pushStatus(j core.Job, st core.Status) {
	j.JobData().Status = st
	n.mu.Lock()
	defer n.mu.Unlock()
	n.statusHistory[j.JobData().ID] = append(n.statusHistory[j.JobData().ID], st)
}

func (n *NormalScheduler) history(jobID string) []core.Status {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.statusHistory[jobID]
}

func (n *NormalScheduler) dropHistory(jobID string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.statusHistory, jobID)
}

func (n *NormalScheduler) GetCurrentQueueSize() int {
	return n.queue.GetCurrentSize()
}

func (n *NormalScheduler) IsOverRefillThreshold() bool {
	return n.queue.IsOverRefillThreshold()
}
