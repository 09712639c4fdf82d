package scheduler

import (
	"fmt"

	conq "github.com/enriquebris/goconcurrentqueue"
	"github.com/qroute-team/qroute-engine/core"
	"go.uber.org/zap"
)

type queueChan chan *jobInScheduler

type fifo interface {
	Enqueue(*jobInScheduler) error
	Dequeue() (*jobInScheduler, error)
	DequeueOrWaitForNextElement() (*jobInScheduler, error)
	GetLen() int
}

type conqFIFO struct {
	conq.FIFO
}

func newConqFIFO() *conqFIFO {
	return &conqFIFO{
		FIFO: *conq.NewFIFO(),
	}
}

func (c *conqFIFO) Enqueue(js *jobInScheduler) error {
	return c.FIFO.Enqueue(js)
}

func (c *conqFIFO) Dequeue() (*jobInScheduler, error) {
	tmp, err := c.FIFO.Dequeue()
	if err != nil {
		return nil, err
	}
	return tmp.(*jobInScheduler), nil
}

func (c *conqFIFO) DequeueOrWaitForNextElement() (*jobInScheduler, error) {
	tmp, err := c.FIFO.DequeueOrWaitForNextElement()
	if err != nil {
		return nil, err
	}
	return tmp.(*jobInScheduler), nil
}

func (c *conqFIFO) GetLen() int {
	return c.FIFO.GetLen()
}

// NormalQueue buffers compile requests between HandleJob goroutines and
// the compile workers. Enqueueing goes through queueChan so that a full
// queue rejects instead of blocking the handler.
type NormalQueue struct {
	fifo            fifo
	maxSize         int
	refillThreshold int
	queueChan       queueChan
	cancelChan      chan struct{}
}

func (n *NormalQueue) Setup(conf *core.Conf) error {
	n.refillThreshold = conf.QueueRefillThreshold
	n.maxSize = conf.QueueMaxSize
	n.fifo = newConqFIFO()
	n.queueChan = make(queueChan)
	n.cancelChan = make(chan struct{})
	go func() {
		defer close(n.cancelChan)
		for {
			var jis *jobInScheduler
			select {
			case <-n.cancelChan:
				return
			case jis = <-n.queueChan:
			}
			jd := jis.job.JobData()
			if n.maxSize <= n.fifo.GetLen() {
				zap.L().Info(fmt.Sprintf("failed to queue a job(%s). The compile queue is full.", jd.ID))
				core.SetFailureWithError(jis.job, fmt.Errorf("compile queue is full"))
				jis.finished.Done()
				continue
			}
			zap.L().Debug(fmt.Sprintf("queueing a job(%s) for compilation", jd.ID))
			if err := n.fifo.Enqueue(jis); err != nil {
				zap.L().Error(fmt.Sprintf("failed to queue a job(%s). Reason:%s", jd.ID, err))
				core.SetFailureWithError(jis.job, err)
				jis.finished.Done()
			}
		}
	}()
	return nil
}

func (n *NormalQueue) TearDown() {
	n.cancelChan <- struct{}{}
}

// Dequeue pops the oldest queued job. With wait set it blocks until one
// gets enqueued. The compile workers are the only callers with wait.
func (n *NormalQueue) Dequeue(wait bool) (jis *jobInScheduler, err error) {
	jis = nil
	err = nil
	if wait {
		jis, err = n.fifo.DequeueOrWaitForNextElement()
	} else {
		jis, err = n.fifo.Dequeue()
	}
	if err != nil {
		zap.L().Debug("no job in the compile queue.", zap.Error(err))
		return
	}
	zap.L().Debug(fmt.Sprintf("dequeued a job(%s)", jis.job.JobData().ID))
	return
}

func (n *NormalQueue) IsOverRefillThreshold() bool {
	return n.refillThreshold <= n.fifo.GetLen()
}

func (n *NormalQueue) GetCurrentSize() int {
	return n.fifo.GetLen()
}
