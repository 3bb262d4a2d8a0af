package dispatchpool

import (
	"context"
	"hash/fnv"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// Job is one unit of dispatch work. Jobs with the same TenantID land on the
// same shard and run in submission order.
type Job struct {
	TenantID string
	PostID   string
	Handler  func(ctx context.Context) error
}

type Stats struct {
	NumWorkers     int           `json:"num_workers"`
	QueueSize      int           `json:"queue_size"`
	ActiveWorkers  int           `json:"active_workers"`
	InFlight       int64         `json:"in_flight"`
	TotalSubmitted int64         `json:"total_submitted"`
	TotalProcessed int64         `json:"total_processed"`
	TotalRejected  int64         `json:"total_rejected"`
	TotalErrors    int64         `json:"total_errors"`
	WorkerStats    []WorkerStats `json:"worker_stats"`
}

type WorkerStats struct {
	WorkerID      int   `json:"worker_id"`
	QueueDepth    int   `json:"queue_depth"`
	IsProcessing  bool  `json:"is_processing"`
	JobsProcessed int64 `json:"jobs_processed"`
}

// Pool is a fixed set of workers, each with its own FIFO queue.
type Pool struct {
	numWorkers int
	queueSize  int
	workers    []*worker
	wg         sync.WaitGroup
	inflight   sync.WaitGroup
	startOnce  sync.Once
	stopOnce   sync.Once
	stopped    int32

	inFlight       int64
	totalSubmitted int64
	totalProcessed int64
	totalRejected  int64
	totalErrors    int64
}

type worker struct {
	id            int
	jobQueue      chan Job
	ctx           context.Context
	cancel        context.CancelFunc
	isProcessing  int32
	jobsProcessed int64
	pool          *Pool
}

func New(numWorkers, queueSize int) *Pool {
	if numWorkers <= 0 {
		numWorkers = 4
	}
	if queueSize <= 0 {
		queueSize = 64
	}
	return &Pool{
		numWorkers: numWorkers,
		queueSize:  queueSize,
		workers:    make([]*worker, numWorkers),
	}
}

// Start launches the workers. Calling it more than once is a no-op.
func (p *Pool) Start(ctx context.Context) {
	p.startOnce.Do(func() {
		for i := 0; i < p.numWorkers; i++ {
			workerCtx, cancel := context.WithCancel(ctx)
			w := &worker{
				id:       i,
				jobQueue: make(chan Job, p.queueSize),
				ctx:      workerCtx,
				cancel:   cancel,
				pool:     p,
			}
			p.workers[i] = w

			p.wg.Add(1)
			go w.run(&p.wg)
		}
		logrus.Debugf("[DISPATCH_POOL] Started with %d workers, queue size: %d", p.numWorkers, p.queueSize)
	})
}

// Submit enqueues job on its tenant shard, blocking while the shard queue is
// full. It returns false when the pool is stopped or ctx ends first.
func (p *Pool) Submit(ctx context.Context, job Job) (ok bool) {
	if atomic.LoadInt32(&p.stopped) == 1 {
		atomic.AddInt64(&p.totalRejected, 1)
		return false
	}

	shard := p.shardFor(job.TenantID)
	p.inflight.Add(1)
	atomic.AddInt64(&p.inFlight, 1)

	defer func() {
		// the queue may have closed between the stopped check and the send
		if r := recover(); r != nil {
			ok = false
		}
		if !ok {
			p.inflight.Done()
			atomic.AddInt64(&p.inFlight, -1)
			atomic.AddInt64(&p.totalRejected, 1)
			logrus.Warnf("[DISPATCH_POOL] Rejected job for post %s (tenant %s)", job.PostID, job.TenantID)
		}
	}()

	select {
	case p.workers[shard].jobQueue <- job:
		atomic.AddInt64(&p.totalSubmitted, 1)
		return true
	case <-ctx.Done():
		return false
	}
}

// Wait blocks until every submitted job has finished.
func (p *Pool) Wait() {
	p.inflight.Wait()
}

// Stop drains the queues and waits for the workers to exit.
func (p *Pool) Stop() {
	p.stopOnce.Do(func() {
		atomic.StoreInt32(&p.stopped, 1)
		for _, w := range p.workers {
			if w == nil {
				continue
			}
			close(w.jobQueue)
		}
		p.wg.Wait()
		for _, w := range p.workers {
			if w != nil {
				w.cancel()
			}
		}
		logrus.Debug("[DISPATCH_POOL] All workers stopped")
	})
}

func (p *Pool) shardFor(tenantID string) int {
	h := fnv.New32a()
	h.Write([]byte(tenantID))
	return int(h.Sum32() % uint32(p.numWorkers))
}

func (p *Pool) Stats() Stats {
	workerStats := make([]WorkerStats, 0, len(p.workers))
	active := 0
	for _, w := range p.workers {
		if w == nil {
			continue
		}
		processing := atomic.LoadInt32(&w.isProcessing) == 1
		if processing {
			active++
		}
		workerStats = append(workerStats, WorkerStats{
			WorkerID:      w.id,
			QueueDepth:    len(w.jobQueue),
			IsProcessing:  processing,
			JobsProcessed: atomic.LoadInt64(&w.jobsProcessed),
		})
	}

	return Stats{
		NumWorkers:     p.numWorkers,
		QueueSize:      p.queueSize,
		ActiveWorkers:  active,
		InFlight:       atomic.LoadInt64(&p.inFlight),
		TotalSubmitted: atomic.LoadInt64(&p.totalSubmitted),
		TotalProcessed: atomic.LoadInt64(&p.totalProcessed),
		TotalRejected:  atomic.LoadInt64(&p.totalRejected),
		TotalErrors:    atomic.LoadInt64(&p.totalErrors),
		WorkerStats:    workerStats,
	}
}

// run drains the queue until it is closed. Stop closes it only after Submit
// stops accepting jobs, so none are lost.
func (w *worker) run(wg *sync.WaitGroup) {
	defer wg.Done()
	for job := range w.jobQueue {
		w.process(job)
	}
}

func (w *worker) process(job Job) {
	atomic.StoreInt32(&w.isProcessing, 1)
	defer func() {
		if r := recover(); r != nil {
			atomic.AddInt64(&w.pool.totalErrors, 1)
			logrus.Errorf("[DISPATCH_POOL] Worker %d panic for post %s: %v", w.id, job.PostID, r)
		}
		atomic.StoreInt32(&w.isProcessing, 0)
		atomic.AddInt64(&w.jobsProcessed, 1)
		atomic.AddInt64(&w.pool.totalProcessed, 1)
		atomic.AddInt64(&w.pool.inFlight, -1)
		w.pool.inflight.Done()
	}()

	if err := job.Handler(w.ctx); err != nil {
		atomic.AddInt64(&w.pool.totalErrors, 1)
		logrus.WithError(err).Errorf("[DISPATCH_POOL] Worker %d job failed for post %s", w.id, job.PostID)
	}
}
