package worker

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/themis/pkg/domain/model"
	"github.com/secmon-lab/themis/pkg/service/notify"
	"github.com/secmon-lab/themis/pkg/usecase"
	"github.com/secmon-lab/themis/pkg/utils/logging"
)

// ReviewReminderWorker periodically sweeps the register and notifies about
// risks due for review, overdue treatments, and appetite breaches.
//
// Architecture assumptions:
// - Single instance (no distributed locking)
// - For horizontal scaling, add distributed locking or leader election
type ReviewReminderWorker struct {
	usecases *usecase.UseCases
	notifier notify.Service
	policy   *model.AppetitePolicy
	interval time.Duration
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewReviewReminderWorker creates a worker sweeping at the given interval.
// The policy may be nil, which disables appetite checks.
func NewReviewReminderWorker(usecases *usecase.UseCases, notifier notify.Service, policy *model.AppetitePolicy, interval time.Duration) *ReviewReminderWorker {
	return &ReviewReminderWorker{
		usecases: usecases,
		notifier: notifier,
		policy:   policy,
		interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background sweep loop. The first sweep runs immediately;
// Start itself does not block.
func (w *ReviewReminderWorker) Start(ctx context.Context) error {
	logging.Default().Info("Review reminder worker starting",
		"interval", w.interval.String())

	go w.run(ctx)

	return nil
}

// Stop signals the worker to stop and waits for completion
func (w *ReviewReminderWorker) Stop() {
	logging.Default().Info("Review reminder worker stopping")
	close(w.stopCh)
	<-w.doneCh
	logging.Default().Info("Review reminder worker stopped")
}

func (w *ReviewReminderWorker) run(ctx context.Context) {
	defer close(w.doneCh)

	if err := w.Sweep(ctx); err != nil {
		logging.Default().Error("Initial register sweep failed (will retry next interval)",
			"error", err.Error())
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := w.Sweep(ctx); err != nil {
				// Log error but continue worker
				logging.Default().Error("Register sweep failed (will retry next interval)",
					"error", err.Error())
			}

		case <-w.stopCh:
			logging.Default().Info("Review reminder worker received stop signal")
			return

		case <-ctx.Done():
			logging.Default().Info("Review reminder worker context cancelled")
			return
		}
	}
}

// Sweep performs a single pass over the register. Notification failures for
// individual records are logged and skipped so one bad record cannot starve
// the rest.
func (w *ReviewReminderWorker) Sweep(ctx context.Context) error {
	startTime := time.Now()
	logger := logging.From(ctx)
	logger.Info("Starting register sweep")

	reviews, err := w.sweepReviews(ctx)
	if err != nil {
		return err
	}

	overdue, err := w.sweepOverdue(ctx)
	if err != nil {
		return err
	}

	breaches, err := w.sweepAppetite(ctx)
	if err != nil {
		return err
	}

	logger.Info("Register sweep completed",
		"reviews_due", reviews,
		"treatments_overdue", overdue,
		"appetite_breaches", breaches,
		"duration", time.Since(startTime).String())

	return nil
}

func (w *ReviewReminderWorker) sweepReviews(ctx context.Context) (int, error) {
	risks, err := w.usecases.Risk.ListRisksForReview(ctx)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to list risks for review")
	}

	for _, risk := range risks {
		if err := w.notifier.ReviewDue(ctx, risk); err != nil {
			logging.From(ctx).Warn("Failed to send review reminder",
				"risk_id", risk.ID(), "error", err.Error())
		}
	}
	return len(risks), nil
}

func (w *ReviewReminderWorker) sweepOverdue(ctx context.Context) (int, error) {
	treatments, err := w.usecases.Treatment.ListOverdueTreatments(ctx)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to list overdue treatments")
	}

	for _, treatment := range treatments {
		risk, err := w.usecases.Risk.GetRisk(ctx, treatment.RiskID())
		if err != nil {
			logging.From(ctx).Warn("Failed to load risk of overdue treatment",
				"treatment_id", treatment.ID(), "risk_id", treatment.RiskID(), "error", err.Error())
			continue
		}
		if err := w.notifier.TreatmentOverdue(ctx, treatment, risk); err != nil {
			logging.From(ctx).Warn("Failed to send overdue warning",
				"treatment_id", treatment.ID(), "error", err.Error())
		}
	}
	return len(treatments), nil
}

func (w *ReviewReminderWorker) sweepAppetite(ctx context.Context) (int, error) {
	if w.policy == nil {
		return 0, nil
	}

	risks, err := w.usecases.Risk.ListRisks(ctx, model.RiskFilter{ActiveOnly: true})
	if err != nil {
		return 0, goerr.Wrap(err, "failed to list active risks")
	}

	var breaches int
	for _, risk := range risks {
		limit, exceeded := w.policy.Exceeded(risk)
		if !exceeded {
			continue
		}
		breaches++
		if err := w.notifier.AppetiteExceeded(ctx, risk, limit); err != nil {
			logging.From(ctx).Warn("Failed to send appetite warning",
				"risk_id", risk.ID(), "error", err.Error())
		}
	}
	return breaches, nil
}
