package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/avc/logistics-backoffice/internal/docstore"
	"github.com/avc/logistics-backoffice/internal/domain"
	"go.uber.org/zap"
)

// catalog источник ID агрегатов для периодической сверки
type catalog interface {
	GetAll(ctx context.Context, c docstore.Collection) ([]docstore.Document, error)
}

// scanned коллекции, агрегаты которых сверяются сканером
var scanned = []struct {
	collection docstore.Collection
	kind       domain.AggregateKind
}{
	{domain.CollectionUsers, domain.AggregateUser},
	{domain.CollectionCreditors, domain.AggregateCreditor},
	{domain.CollectionRepresentatives, domain.AggregateRepresentative},
}

// Pool пул воркеров, пересчитывающих устаревшие агрегаты
type Pool struct {
	workers      int
	queue        chan domain.StaleAggregate
	catalog      catalog
	recalc       domain.Recalculator
	logger       *zap.Logger
	wg           sync.WaitGroup
	scanInterval time.Duration

	mu     sync.RWMutex
	closed bool
}

var _ domain.RepairQueue = (*Pool)(nil)

// NewPool создает новый worker pool. Нулевой scanInterval отключает сканер.
func NewPool(
	workers int,
	queueSize int,
	scanInterval time.Duration,
	catalog catalog,
	recalc domain.Recalculator,
	logger *zap.Logger,
) *Pool {
	return &Pool{
		workers:      workers,
		queue:        make(chan domain.StaleAggregate, queueSize),
		catalog:      catalog,
		recalc:       recalc,
		logger:       logger,
		scanInterval: scanInterval,
	}
}

// Start запускает worker pool
func (p *Pool) Start(ctx context.Context) {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(ctx, i)
	}

	if p.scanInterval > 0 {
		p.wg.Add(1)
		go p.scanner(ctx)
	}
}

// Stop останавливает worker pool; задачи, оставшиеся в очереди, дорабатываются
func (p *Pool) Stop() {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.queue)
	}
	p.mu.Unlock()

	p.wg.Wait()
}

// Enqueue ставит агрегат в очередь без ожидания.
// При заполненной или закрытой очереди задача отбрасывается; ее подберет сканер.
func (p *Pool) Enqueue(job domain.StaleAggregate) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		p.logger.Warn("repair queue is closed, dropping job",
			zap.String("kind", string(job.Kind)), zap.String("id", job.ID))
		return false
	}

	select {
	case p.queue <- job:
		return true
	default:
		p.logger.Warn("repair queue is full, dropping job",
			zap.String("kind", string(job.Kind)), zap.String("id", job.ID))
		return false
	}
}

// worker обрабатывает задачи из очереди
func (p *Pool) worker(ctx context.Context, id int) {
	defer p.wg.Done()

	p.logger.Info("worker started", zap.Int("worker_id", id))

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("worker stopping", zap.Int("worker_id", id))
			return
		case job, ok := <-p.queue:
			if !ok {
				return
			}
			p.process(ctx, job)
		}
	}
}

// scanner периодически ставит в очередь все агрегаты
func (p *Pool) scanner(ctx context.Context) {
	defer p.wg.Done()

	ticker := time.NewTicker(p.scanInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("scanner stopping")
			return
		case <-ticker.C:
			p.scan(ctx)
		}
	}
}

// scan ставит в очередь агрегаты всех сверяемых коллекций
func (p *Pool) scan(ctx context.Context) {
	for _, s := range scanned {
		docs, err := p.catalog.GetAll(ctx, s.collection)
		if err != nil {
			p.logger.Error("failed to list aggregates",
				zap.String("collection", string(s.collection)), zap.Error(err))
			continue
		}

		for _, doc := range docs {
			if ctx.Err() != nil {
				return
			}
			if !p.Enqueue(domain.StaleAggregate{Kind: s.kind, ID: doc.ID}) {
				// остаток подберет следующий проход
				return
			}
		}
	}
}

// process пересчитывает один агрегат
func (p *Pool) process(ctx context.Context, job domain.StaleAggregate) {
	p.logger.Debug("recalculating aggregate", zap.String("kind", string(job.Kind)), zap.String("id", job.ID))

	var err error
	switch job.Kind {
	case domain.AggregateUser:
		_, err = p.recalc.UserStats(ctx, job.ID)
	case domain.AggregateCreditor:
		_, err = p.recalc.CreditorDebt(ctx, job.ID)
	case domain.AggregateRepresentative:
		_, err = p.recalc.RepresentativeAssignments(ctx, job.ID)
	case domain.AggregateOrder:
		_, err = p.recalc.OrderBalance(ctx, job.ID)
	default:
		p.logger.Error("unknown aggregate kind", zap.String("kind", string(job.Kind)))
		return
	}

	switch {
	case err == nil:
	case errors.Is(err, domain.ErrNotFound):
		p.logger.Debug("aggregate no longer exists", zap.String("kind", string(job.Kind)), zap.String("id", job.ID))
	default:
		p.logger.Error("failed to recalculate aggregate",
			zap.String("kind", string(job.Kind)),
			zap.String("id", job.ID),
			zap.Error(err),
		)
	}
}
