package desk

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/wonny/symfx/internal/external/backend"
	"github.com/wonny/symfx/internal/metrics"
	"github.com/wonny/symfx/internal/orders"
	"github.com/wonny/symfx/pkg/logger"
)

// ErrNotEditing is returned by Blur when there is nothing to submit
var ErrNotEditing = errors.New("order is not being edited")

// Submitter pushes an edited record to the backend
type Submitter interface {
	UpdateOrder(ctx context.Context, o orders.Order) error
}

// Editor runs the rate edit flow: idle → editing → submitting → idle.
// A failed submit leaves the optimistic record in place; the next backend
// broadcast for the quote is what corrects it.
type Editor struct {
	store     *orders.Store
	submitter Submitter
	timeout   time.Duration
	logger    *logger.Logger

	mu     sync.Mutex
	phases map[string]orders.Phase
	wg     sync.WaitGroup
}

// NewEditor creates an editor writing through submitter
func NewEditor(store *orders.Store, submitter Submitter, timeout time.Duration, log *logger.Logger) *Editor {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Editor{
		store:     store,
		submitter: submitter,
		timeout:   timeout,
		logger:    log.Component("editor"),
		phases:    make(map[string]orders.Phase),
	}
}

// Phase returns where quoteID sits in the flow
func (e *Editor) Phase(quoteID string) orders.Phase {
	e.mu.Lock()
	defer e.mu.Unlock()

	p, ok := e.phases[quoteID]
	if !ok {
		return orders.PhaseIdle
	}
	if p == orders.PhaseEditing && !e.store.HasOverride(quoteID) {
		// a backend record replaced the edit
		return orders.PhaseIdle
	}
	return p
}

// ChangeRate applies a rate edit locally and returns the edited record
func (e *Editor) ChangeRate(quoteID, input string) (orders.Order, error) {
	current, ok := e.store.Get(quoteID)
	if !ok {
		return orders.Order{}, orders.ErrNotFound
	}

	edited := orders.ApplyRateEdit(current, input)
	if _, err := e.store.SetOverride(edited); err != nil {
		return orders.Order{}, err
	}

	e.mu.Lock()
	e.phases[quoteID] = orders.PhaseEditing
	e.mu.Unlock()

	e.logger.WithFields(map[string]interface{}{
		"quote_id":   quoteID,
		"rate":       edited.ExchangeRate,
		"buy_amount": edited.BuyAmount,
	}).Debug("Rate edited")
	return edited, nil
}

// Blur submits the edited record without waiting for the backend.
// The submit outlives ctx; it is bounded by the editor's timeout.
// Only the user's own edit is ever sent: when a backend record has replaced
// it since ChangeRate, the edit is dropped and Blur reports ErrNotEditing.
func (e *Editor) Blur(ctx context.Context, quoteID string) error {
	e.mu.Lock()
	if e.phases[quoteID] != orders.PhaseEditing {
		e.mu.Unlock()
		return ErrNotEditing
	}
	record, ok := e.store.Edited(quoteID)
	if !ok {
		delete(e.phases, quoteID)
		e.mu.Unlock()
		e.logger.WithField("quote_id", quoteID).Debug("Edit superseded by backend update")
		return ErrNotEditing
	}
	e.phases[quoteID] = orders.PhaseSubmitting
	e.mu.Unlock()

	submitCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.timeout)
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		defer cancel()
		e.submit(submitCtx, record)
	}()
	return nil
}

func (e *Editor) submit(ctx context.Context, record orders.Order) {
	start := time.Now()
	err := e.submitter.UpdateOrder(ctx, record)
	metrics.SubmitDuration.Observe(time.Since(start).Seconds())

	log := e.logger.WithFields(map[string]interface{}{
		"quote_id": record.QuoteID,
		"rate":     record.ExchangeRate,
	})
	switch {
	case err == nil:
		metrics.SubmitsTotal.WithLabelValues("ok").Inc()
		log.Info("Order update submitted")
	case errors.Is(err, backend.ErrRejected):
		metrics.SubmitsTotal.WithLabelValues("rejected").Inc()
		log.WithError(err).Warn("Backend rejected order update")
	default:
		metrics.SubmitsTotal.WithLabelValues("error").Inc()
		log.WithError(err).Error("Order update failed")
	}

	e.finish(record.QuoteID)
}

// finish returns a submitting quote to idle; a newer edit keeps it editing
func (e *Editor) finish(quoteID string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.phases[quoteID] == orders.PhaseSubmitting {
		delete(e.phases, quoteID)
	}
}

// Wait blocks until every in-flight submit has finished
func (e *Editor) Wait() {
	e.wg.Wait()
}
