// Package crawler runs the discovery-and-extraction pipeline: a worker
// pool drains a per-run task queue, each task is dispatched by its
// label, and every new detail task or emitted record is accounted
// against the run's reservation ledger.
package crawler

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"zameencrawler/internal/config"
	"zameencrawler/internal/domain"
	"zameencrawler/internal/fetch"
	"zameencrawler/internal/ledger"
	"zameencrawler/internal/monitoring"
)

const taskQueueCapacity = 4096

// Fetcher is the external fetch engine.
type Fetcher interface {
	Do(ctx context.Context, task *domain.Task) (*fetch.Response, error)
}

// Sink receives emitted records. It owes no dedup guarantee; the ledger
// already enforces uniqueness by identity key.
type Sink interface {
	SaveListing(ctx context.Context, l *domain.Listing) error
}

// SeenStore remembers identity keys emitted by recent runs.
type SeenStore interface {
	WasSaved(ctx context.Context, identityKey string) (bool, error)
	MarkSaved(ctx context.Context, identityKey string, ttl time.Duration) error
}

// Crawler starts and tracks runs.
type Crawler struct {
	cfg     *config.Config
	fetcher Fetcher
	sink    Sink
	seen    SeenStore
	metrics *monitoring.Metrics
	logger  *zap.Logger

	mu     sync.RWMutex
	runs   map[string]*Run
	nextID int
}

func NewCrawler(cfg *config.Config, f Fetcher, sink Sink, seen SeenStore, m *monitoring.Metrics, l *zap.Logger) *Crawler {
	return &Crawler{
		cfg:     cfg,
		fetcher: f,
		sink:    sink,
		seen:    seen,
		metrics: m,
		logger:  l,
		runs:    make(map[string]*Run),
	}
}

// Run is one bounded scrape: its own ledger, queue and worker pool.
type Run struct {
	ID string

	ledger        *ledger.Ledger
	maxPages      int
	scrapeDetails bool

	tasks   chan *domain.Task
	pending sync.WaitGroup
	done    chan struct{}
	cancel  context.CancelFunc

	mu    sync.Mutex
	state string
}

// StartRun validates the request, seeds the queue and launches the
// worker pool. The run drains on its own; Status/Wait observe it.
func (c *Crawler) StartRun(parent context.Context, req *domain.RunRequest) (*Run, error) {
	seeds, err := c.buildSeeds(req)
	if err != nil {
		return nil, err
	}

	wanted := c.cfg.ResultsWanted
	if req.ResultsWanted != nil {
		wanted = *req.ResultsWanted
	}
	maxPages := c.cfg.MaxPages
	if req.MaxPages != nil && *req.MaxPages > 0 {
		maxPages = *req.MaxPages
	}
	scrapeDetails := c.cfg.ScrapeDetails
	if req.ScrapeDetails != nil {
		scrapeDetails = *req.ScrapeDetails
	}

	ctx, cancel := context.WithCancel(parent)
	run := &Run{
		ledger:        ledger.New(wanted, scrapeDetails),
		maxPages:      maxPages,
		scrapeDetails: scrapeDetails,
		tasks:         make(chan *domain.Task, taskQueueCapacity),
		done:          make(chan struct{}),
		cancel:        cancel,
		state:         "running",
	}

	c.mu.Lock()
	c.nextID++
	run.ID = strconv.Itoa(c.nextID)
	c.runs[run.ID] = run
	c.mu.Unlock()

	workers := c.cfg.CrawlWorkers
	if workers <= 0 {
		workers = 1
	}
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for task := range run.tasks {
				c.process(ctx, run, task)
				run.pending.Done()
			}
		}()
	}

	for _, seed := range seeds {
		if seed.Label == domain.LabelDetail {
			// Seed detail tasks count against the budget like any other.
			if !run.ledger.ReserveDetail(seed.IdentityKey) {
				continue
			}
		}
		run.enqueue(c.logger, seed)
	}

	go func() {
		run.pending.Wait()
		close(run.tasks)
		wg.Wait()
		run.setState("finished")
		cancel()
		close(run.done)
		c.logger.Info("run finished",
			zap.String("run", run.ID),
			zap.Int("saved", run.ledger.Saved()),
			zap.Int("reserved", run.ledger.Reserved()))
	}()

	return run, nil
}

// Stop cancels every run and waits for their queues to drain.
func (c *Crawler) Stop() {
	c.mu.RLock()
	runs := make([]*Run, 0, len(c.runs))
	for _, r := range c.runs {
		runs = append(runs, r)
	}
	c.mu.RUnlock()
	for _, r := range runs {
		r.cancel()
		r.Wait()
	}
}

// RunStatus looks up a run by id.
func (c *Crawler) RunStatus(id string) (domain.RunStatus, bool) {
	c.mu.RLock()
	run, ok := c.runs[id]
	c.mu.RUnlock()
	if !ok {
		return domain.RunStatus{}, false
	}
	return run.Status(), true
}

func (r *Run) Status() domain.RunStatus {
	return domain.RunStatus{
		ID:              r.ID,
		State:           r.getState(),
		Saved:           r.ledger.Saved(),
		Reserved:        r.ledger.Reserved(),
		ResultsWanted:   r.ledger.ResultsWanted(),
		MaxReservations: r.ledger.MaxReservations(),
	}
}

// Wait blocks until the run drains.
func (r *Run) Wait() {
	<-r.done
}

// enqueue adds a task without ever blocking a worker; a full queue
// drops the task, which at worst under-delivers.
func (r *Run) enqueue(logger *zap.Logger, task *domain.Task) {
	if task.PageNumber < 1 {
		task.PageNumber = 1
	}
	r.pending.Add(1)
	select {
	case r.tasks <- task:
	default:
		r.pending.Done()
		logger.Warn("task queue full, dropping task",
			zap.String("url", task.URL), zap.String("label", string(task.Label)))
	}
}

func (r *Run) setState(s string) {
	r.mu.Lock()
	r.state = s
	r.mu.Unlock()
}

func (r *Run) getState() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// process fetches one task and dispatches it to its label's handler.
func (c *Crawler) process(ctx context.Context, run *Run, task *domain.Task) {
	if ctx.Err() != nil {
		return
	}

	fetchCtx, cancel := fetch.Deadline(ctx, time.Duration(c.cfg.FetchTimeout)*time.Second)
	resp, err := c.fetcher.Do(fetchCtx, task)
	cancel()
	if err != nil {
		c.handleFetchFailure(ctx, run, task, err)
		return
	}

	switch task.Label {
	case domain.LabelBootstrap:
		err = c.handleBootstrap(run, task, resp)
	case domain.LabelBootstrapCity:
		err = c.handleBootstrapCity(run, task, resp)
	case domain.LabelList:
		err = c.handleList(ctx, run, task, resp)
	case domain.LabelAlgoliaQuery:
		err = c.handleAlgoliaQuery(ctx, run, task, resp)
	case domain.LabelDetail:
		err = c.handleDetail(ctx, run, task, resp)
	default:
		err = fmt.Errorf("unknown task label %q", task.Label)
	}
	if err != nil {
		// Handler errors are payload problems; a retry would see the
		// same bytes, so the task is dropped and the run carries on.
		c.metrics.IncErrors("malformed_payload")
		c.logger.Warn("task dropped",
			zap.String("url", task.URL), zap.String("label", string(task.Label)), zap.Error(err))
	}
}

// handleFetchFailure re-enqueues retryable failures until the retry
// budget runs out, then degrades: a detail task that carries a partial
// record emits it as-is, anything else is only logged.
func (c *Crawler) handleFetchFailure(ctx context.Context, run *Run, task *domain.Task, err error) {
	if ctx.Err() == nil && fetch.Retryable(err) && task.Retry < c.cfg.MaxRetries {
		task.Retry++
		c.metrics.IncRetries()
		c.logger.Info("task will be retried",
			zap.String("url", task.URL), zap.Int("attempt", task.Retry), zap.Error(err))
		run.enqueue(c.logger, task)
		return
	}

	if task.Label == domain.LabelDetail && task.Partial != nil {
		c.logger.Warn("detail task failed terminally, emitting partial record",
			zap.String("url", task.URL), zap.Error(err))
		partial := task.Partial
		if partial.URL == "" {
			partial.URL = task.URL
		}
		c.emit(ctx, run, partial)
		return
	}
	c.logger.Warn("task failed terminally",
		zap.String("url", task.URL), zap.String("label", string(task.Label)), zap.Error(err))
}

// emit pushes one record to the sink and marks its identity key. The
// ledger arbitrates the final slot, so concurrent emitters can never
// push saved past resultsWanted.
func (c *Crawler) emit(ctx context.Context, run *Run, rec *domain.Listing) {
	if !run.ledger.TryRecordEmitted() {
		return
	}
	if rec.Source == "" {
		rec.Source = sourceTag
	}
	c.metrics.IncRecordsEmitted()

	if err := c.sink.SaveListing(ctx, rec); err != nil {
		c.metrics.IncErrors("sink_failed")
		c.logger.Error("failed to save listing", zap.String("url", rec.URL), zap.Error(err))
		return
	}
	ttl := time.Duration(c.cfg.SeenTTLDays) * 24 * time.Hour
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if err := c.seen.MarkSaved(ctx, rec.IdentityKey(), ttl); err != nil {
		c.logger.Warn("failed to mark identity key", zap.Error(err))
	}
}
