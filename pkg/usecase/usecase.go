package usecase

import (
	"time"

	"github.com/secmon-lab/themis/pkg/domain/interfaces"
	"github.com/secmon-lab/themis/pkg/service/notify"
)

// Clock supplies the current time. Injected so tests can run against fixed
// instants.
type Clock func() time.Time

type UseCases struct {
	repo     interfaces.Repository
	clock    Clock
	notifier notify.Service

	Risk      *RiskUseCase
	Treatment *TreatmentUseCase
	Stats     *StatsUseCase
}

type Option func(*UseCases)

// WithClock replaces the wall clock, mainly for tests
func WithClock(clock Clock) Option {
	return func(uc *UseCases) {
		uc.clock = clock
	}
}

// WithNotifier enables notifications on risk status changes. A nil notifier
// disables them.
func WithNotifier(notifier notify.Service) Option {
	return func(uc *UseCases) {
		uc.notifier = notifier
	}
}

func New(repo interfaces.Repository, opts ...Option) *UseCases {
	uc := &UseCases{
		repo:  repo,
		clock: time.Now,
	}

	for _, opt := range opts {
		opt(uc)
	}

	uc.Risk = NewRiskUseCase(repo, uc.clock, uc.notifier)
	uc.Treatment = NewTreatmentUseCase(repo, uc.clock, uc.notifier)
	uc.Stats = NewStatsUseCase(repo, uc.clock)

	return uc
}
