// Package progression moves a new order through its fixed status sequence on
// timers and announces every transition.
//
// Timers live in process memory only. When the process stops, pending steps
// are gone and the order keeps whatever status was last written.
package progression

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/YelzhanWeb/food-delivery/internal/adapter/logger"
	"github.com/YelzhanWeb/food-delivery/internal/adapter/metrics"
	"github.com/YelzhanWeb/food-delivery/internal/config"
	"github.com/YelzhanWeb/food-delivery/internal/domain"
	"github.com/YelzhanWeb/food-delivery/internal/interfaces"
)

const changedBy = "scheduler"

// Step sets Status once After has elapsed since the previous step.
type Step struct {
	Status domain.Status
	After  time.Duration
}

type Config struct {
	Steps          []Step
	StepTimeout    time.Duration
	Retries        int
	RetryBaseDelay time.Duration
	RetryMaxDelay  time.Duration
}

// FromConfig maps the per-status delays onto the lifecycle: the delay of a
// status is how long an order stays in it before the next step.
func FromConfig(cfg config.ProgressionConfig) Config {
	return Config{
		Steps: []Step{
			{Status: domain.StatusPreparing, After: cfg.ReceivedDelay},
			{Status: domain.StatusOutForDelivery, After: cfg.PreparingDelay},
			{Status: domain.StatusDelivered, After: cfg.OutForDeliveryDelay},
		},
		StepTimeout:    cfg.StepTimeout,
		Retries:        cfg.StepRetries,
		RetryBaseDelay: cfg.RetryBaseDelay,
		RetryMaxDelay:  cfg.RetryMaxDelay,
	}
}

func (c Config) validate() error {
	if len(c.Steps) == 0 {
		return errors.New("progression needs at least one step")
	}
	prev := domain.StatusReceived
	for _, st := range c.Steps {
		if !prev.CanTransitionTo(st.Status) {
			return fmt.Errorf("step %q cannot follow %q", st.Status, prev)
		}
		if st.After <= 0 {
			return fmt.Errorf("step %q needs a positive delay", st.Status)
		}
		prev = st.Status
	}
	return nil
}

type progress struct {
	// serializes the steps of one order
	mu        sync.Mutex
	reached   int
	remaining int
	timers    []Timer
	cancelled atomic.Bool
}

type Scheduler struct {
	repo       interfaces.OrderRepository
	publishers []interfaces.StatusPublisher
	logger     logger.Logger
	clock      Clock
	cfg        Config

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	active  map[string]*progress
	stopped bool
}

func NewScheduler(
	repo interfaces.OrderRepository,
	logger logger.Logger,
	clock Clock,
	cfg Config,
	publishers ...interfaces.StatusPublisher,
) (*Scheduler, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.StepTimeout <= 0 {
		cfg.StepTimeout = 5 * time.Second
	}
	if clock == nil {
		clock = RealClock()
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		repo:       repo,
		publishers: publishers,
		logger:     logger,
		clock:      clock,
		cfg:        cfg,
		ctx:        ctx,
		cancel:     cancel,
		active:     make(map[string]*progress),
	}, nil
}

// Arm schedules every step for orderID and returns immediately. Arming an
// order that already has a live progression does nothing.
func (s *Scheduler) Arm(orderID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		s.logger.Warn("progression_rejected", "Scheduler stopped, progression not armed", "", map[string]interface{}{"order_id": orderID})
		return
	}
	if _, ok := s.active[orderID]; ok {
		return
	}

	p := &progress{reached: -1, remaining: len(s.cfg.Steps)}
	var offset time.Duration
	for i, step := range s.cfg.Steps {
		offset += step.After
		idx := i
		p.timers = append(p.timers, s.clock.AfterFunc(offset, func() { s.fire(orderID, idx, 0) }))
	}
	s.active[orderID] = p
	metrics.SetPendingProgressions(len(s.active))

	s.logger.Info("progression_armed", fmt.Sprintf("Starting status progression for order %s", orderID), "", map[string]interface{}{
		"order_id": orderID,
		"steps":    len(s.cfg.Steps),
		"total":    offset.String(),
	})
}

// Cancel stops the pending steps of orderID. It reports whether a live
// progression was found.
func (s *Scheduler) Cancel(orderID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.active[orderID]
	if !ok {
		return false
	}
	p.cancelled.Store(true)
	for _, t := range p.timers {
		t.Stop()
	}
	delete(s.active, orderID)
	metrics.SetPendingProgressions(len(s.active))

	s.logger.Info("progression_cancelled", "Status progression cancelled", "", map[string]interface{}{"order_id": orderID})
	return true
}

// Pending returns the number of orders with steps still to run.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.active)
}

// Stop drops every pending step and waits for running ones to return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	dropped := len(s.active)
	for id, p := range s.active {
		p.cancelled.Store(true)
		for _, t := range p.timers {
			t.Stop()
		}
		delete(s.active, id)
	}
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()
	metrics.SetPendingProgressions(0)

	s.logger.Info("scheduler_stopped", "Status progression scheduler stopped", "", map[string]interface{}{
		"dropped_progressions": dropped,
	})
}

func (s *Scheduler) fire(orderID string, idx, attempt int) {
	s.mu.Lock()
	p, ok := s.active[orderID]
	if !ok || s.stopped {
		s.mu.Unlock()
		return
	}
	s.wg.Add(1)
	s.mu.Unlock()
	defer s.wg.Done()

	p.mu.Lock()
	defer p.mu.Unlock()

	step := s.cfg.Steps[idx]
	details := map[string]interface{}{
		"order_id": orderID,
		"status":   step.Status,
		"attempt":  attempt + 1,
	}

	if p.cancelled.Load() {
		return
	}
	// Ретрай не должен откатить статус назад
	if p.reached >= idx {
		metrics.Transition(string(step.Status), "skipped")
		s.logger.Warn("step_skipped", "Later status already applied, step skipped", "", details)
		s.stepDone(orderID)
		return
	}

	ctx, cancel := context.WithTimeout(s.ctx, s.cfg.StepTimeout)
	defer cancel()

	order, err := s.repo.UpdateStatus(ctx, orderID, step.Status, changedBy)
	switch {
	case err == nil:
		p.reached = idx
		metrics.Transition(string(step.Status), "applied")
		s.logger.Info("status_updated", fmt.Sprintf("Order %s status updated to: %s", orderID, step.Status), "", details)

		s.publish(interfaces.StatusUpdateMessage{
			OrderID:   order.ID,
			Status:    order.Status,
			UpdatedAt: order.UpdatedAt,
		})
		s.stepDone(orderID)

	case errors.Is(err, domain.ErrNotFound):
		metrics.Transition(string(step.Status), "not_found")
		s.logger.Error("status_update_failed", "Order no longer exists, step abandoned", "", details, err)
		s.stepDone(orderID)

	default:
		if attempt < s.cfg.Retries && s.ctx.Err() == nil {
			delay := s.backoff(attempt)
			details["retry_in"] = delay.String()
			s.logger.Warn("status_update_retry", "Failed to update order status, retrying", "", details)
			s.retry(orderID, p, idx, attempt+1, delay)
			return
		}
		metrics.Transition(string(step.Status), "failed")
		s.logger.Error("status_update_failed", fmt.Sprintf("Failed to update order %s to %s", orderID, step.Status), "", details, err)
		s.stepDone(orderID)
	}
}

func (s *Scheduler) publish(msg interfaces.StatusUpdateMessage) {
	ctx, cancel := context.WithTimeout(s.ctx, s.cfg.StepTimeout)
	defer cancel()

	for _, pub := range s.publishers {
		if err := pub.PublishStatusUpdate(ctx, msg); err != nil {
			// Ошибка уведомления не влияет на шаг
			s.logger.Error("publish_failed", "Failed to publish status update", "", map[string]interface{}{
				"order_id": msg.OrderID,
				"status":   msg.Status,
			}, err)
		}
	}
}

func (s *Scheduler) retry(orderID string, p *progress, idx, attempt int, delay time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped || p.cancelled.Load() {
		return
	}
	p.timers = append(p.timers, s.clock.AfterFunc(delay, func() { s.fire(orderID, idx, attempt) }))
}

// stepDone retires one step and forgets the order after its last one.
func (s *Scheduler) stepDone(orderID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.active[orderID]
	if !ok {
		return
	}
	p.remaining--
	if p.remaining <= 0 {
		delete(s.active, orderID)
		metrics.SetPendingProgressions(len(s.active))
	}
}

func (s *Scheduler) backoff(attempt int) time.Duration {
	d := s.cfg.RetryBaseDelay
	if d <= 0 {
		d = 500 * time.Millisecond
	}
	for i := 0; i < attempt; i++ {
		d *= 2
		if s.cfg.RetryMaxDelay > 0 && d >= s.cfg.RetryMaxDelay {
			return s.cfg.RetryMaxDelay
		}
	}
	return d
}
