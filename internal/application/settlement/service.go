// Package settlement orchestrates settlement sessions for the HTTP host.
// It serializes operations per session, runs ledger fetches with
// most-recent-wins semantics and hands snapshots to the capture flow.
package settlement

import (
	"context"
	"sync"
	"time"

	"github.com/erp/settlement/internal/domain/settlement"
	"github.com/erp/settlement/internal/domain/shared"
	"github.com/erp/settlement/internal/infrastructure/logger"
	"github.com/erp/settlement/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultFetchTimeout = 15 * time.Second
	defaultAckTTL       = 7 * 24 * time.Hour
	defaultIdleTTL      = 2 * time.Hour
	ackKeyPrefix        = "ack:"
)

// Service hosts settlement sessions
type Service struct {
	fetcher   settlement.DueLedgerFetcher
	capturer  settlement.PaymentCapturer
	collector settlement.AdvanceCollector
	notifier  settlement.Notifier
	events    shared.EventPublisher
	acks      shared.IdempotencyStore
	metrics   *telemetry.SettlementMetrics
	logger    *zap.Logger

	fetchTimeout time.Duration
	ackTTL       time.Duration
	idleTTL      time.Duration
	rule         settlement.ReceivableSignRule
	now          func() time.Time

	mu       sync.RWMutex
	sessions map[uuid.UUID]*sessionEntry
}

// sessionEntry guards one session. fetchSeq identifies the only fetch
// whose result may still be applied.
type sessionEntry struct {
	mu          sync.Mutex
	session     *settlement.Session
	fetchSeq    uint64
	cancelFetch context.CancelFunc
	lastUsed    time.Time
}

// Option configures a Service
type Option func(*Service)

// WithNotifier sets the operator notification channel
func WithNotifier(n settlement.Notifier) Option {
	return func(s *Service) {
		s.notifier = n
	}
}

// WithEventPublisher publishes session domain events after each operation
func WithEventPublisher(p shared.EventPublisher) Option {
	return func(s *Service) {
		s.events = p
	}
}

// WithIdempotencyStore guards acknowledgements so each snapshot settles once
func WithIdempotencyStore(store shared.IdempotencyStore) Option {
	return func(s *Service) {
		s.acks = store
	}
}

// WithMetrics records business metrics
func WithMetrics(m *telemetry.SettlementMetrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithLogger sets the base logger
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithFetchTimeout bounds each ledger fetch. Zero disables the bound.
func WithFetchTimeout(d time.Duration) Option {
	return func(s *Service) {
		s.fetchTimeout = d
	}
}

// WithAckTTL sets how long acknowledged snapshot ids are remembered
func WithAckTTL(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.ackTTL = d
		}
	}
}

// WithIdleTTL sets how long an untouched session is kept
func WithIdleTTL(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.idleTTL = d
		}
	}
}

// WithReceivableSignRule sets the rule new sessions use for TotalReceivable
func WithReceivableSignRule(rule settlement.ReceivableSignRule) Option {
	return func(s *Service) {
		if rule.IsValid() {
			s.rule = rule
		}
	}
}

// WithClock overrides time.Now, for tests
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a Service. fetcher, capturer and collector are required.
func NewService(
	fetcher settlement.DueLedgerFetcher,
	capturer settlement.PaymentCapturer,
	collector settlement.AdvanceCollector,
	opts ...Option,
) *Service {
	s := &Service{
		fetcher:      fetcher,
		capturer:     capturer,
		collector:    collector,
		notifier:     nopNotifier{},
		logger:       zap.NewNop(),
		fetchTimeout: defaultFetchTimeout,
		ackTTL:       defaultAckTTL,
		idleTTL:      defaultIdleTTL,
		rule:         settlement.ReceivableSignedAmount,
		now:          time.Now,
		sessions:     make(map[uuid.UUID]*sessionEntry),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OpenSession starts an empty session for a company. Only op may act on it.
func (s *Service) OpenSession(ctx context.Context, op settlement.Operator, companyID int64) (settlement.SessionView, error) {
	if op.TenantID == uuid.Nil {
		return settlement.SessionView{}, shared.NewDomainError(shared.ErrInvalidInput.Code, "Tenant ID is required")
	}
	if op.UserID == uuid.Nil {
		return settlement.SessionView{}, shared.NewDomainError(shared.ErrInvalidInput.Code, "User ID is required")
	}
	if companyID <= 0 {
		return settlement.SessionView{}, shared.NewDomainError(shared.ErrInvalidInput.Code, "Company ID must be positive")
	}

	session := settlement.NewSession(op.TenantID, companyID,
		settlement.WithOperator(op.UserID),
		settlement.WithReceivableSignRule(s.rule),
	)
	entry := &sessionEntry{session: session, lastUsed: s.now()}

	s.mu.Lock()
	s.sessions[session.ID] = entry
	s.mu.Unlock()

	s.metrics.SessionOpened(ctx)
	s.log(ctx).Info("Settlement session opened",
		zap.String("session_id", session.ID.String()),
		zap.Int64("company_id", companyID),
		zap.String("sign_rule", s.rule.String()),
	)
	return session.View(), nil
}

// GetSession returns the current view of a session
func (s *Service) GetSession(ctx context.Context, op settlement.Operator, sessionID uuid.UUID) (settlement.SessionView, error) {
	var view settlement.SessionView
	err := s.withSession(ctx, op, sessionID, func(session *settlement.Session) error {
		view = session.View()
		return nil
	})
	return view, err
}

// CloseSession discards a session and cancels its pending fetch
func (s *Service) CloseSession(ctx context.Context, op settlement.Operator, sessionID uuid.UUID) error {
	s.mu.Lock()
	entry, ok := s.sessions[sessionID]
	if !ok || !entry.session.OwnedBy(op) {
		s.mu.Unlock()
		return settlement.ErrSessionNotFound
	}
	delete(s.sessions, sessionID)
	s.mu.Unlock()

	entry.mu.Lock()
	entry.invalidateFetch()
	entry.mu.Unlock()

	s.metrics.SessionClosed(ctx)
	s.log(ctx).Info("Settlement session closed", zap.String("session_id", sessionID.String()))
	return nil
}

// SessionCount returns the number of open sessions
func (s *Service) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// SweepIdle closes sessions untouched for longer than the idle TTL and
// returns how many were closed
func (s *Service) SweepIdle(ctx context.Context) int {
	cutoff := s.now().Add(-s.idleTTL)

	s.mu.Lock()
	var expired []*sessionEntry
	for id, entry := range s.sessions {
		entry.mu.Lock()
		idle := entry.lastUsed.Before(cutoff)
		if idle {
			entry.invalidateFetch()
		}
		entry.mu.Unlock()
		if idle {
			delete(s.sessions, id)
			expired = append(expired, entry)
		}
	}
	s.mu.Unlock()

	for _, entry := range expired {
		s.metrics.SessionClosed(ctx)
		s.logger.Info("Idle settlement session evicted",
			zap.String("session_id", entry.session.ID.String()),
			zap.String("state", entry.session.State().String()),
		)
	}
	return len(expired)
}

// RunSweeper evicts idle sessions every interval until ctx is done
func (s *Service) RunSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.SweepIdle(ctx); n > 0 {
				s.logger.Debug("Session sweep finished", zap.Int("evicted", n))
			}
		}
	}
}

// lookup finds a session opened by op. Sessions of other operators are
// reported as not found.
func (s *Service) lookup(op settlement.Operator, sessionID uuid.UUID) (*sessionEntry, error) {
	s.mu.RLock()
	entry, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok || !entry.session.OwnedBy(op) {
		return nil, settlement.ErrSessionNotFound
	}
	return entry, nil
}

// withSession runs fn under the session lock and publishes the domain
// events it raised once the lock is released
func (s *Service) withSession(ctx context.Context, op settlement.Operator, sessionID uuid.UUID, fn func(*settlement.Session) error) error {
	entry, err := s.lookup(op, sessionID)
	if err != nil {
		return err
	}

	entry.mu.Lock()
	err = fn(entry.session)
	entry.lastUsed = s.now()
	events := entry.session.PullDomainEvents()
	entry.mu.Unlock()

	s.publish(ctx, events)
	return err
}

// publish delivers domain events. Publishing failures are logged and never
// undo the engine transition that raised them.
func (s *Service) publish(ctx context.Context, events []shared.DomainEvent) {
	if s.events == nil || len(events) == 0 {
		return
	}
	if err := s.events.Publish(ctx, events...); err != nil {
		s.log(ctx).Error("Failed to publish settlement events", zap.Int("count", len(events)), zap.Error(err))
	}
}

func (s *Service) log(ctx context.Context) *logger.ContextLogger {
	return logger.WithLogger(ctx, s.logger)
}

// invalidateFetch makes any in-flight fetch stale. Caller holds e.mu.
func (e *sessionEntry) invalidateFetch() {
	e.fetchSeq++
	if e.cancelFetch != nil {
		e.cancelFetch()
		e.cancelFetch = nil
	}
}

type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, settlement.Notification) {}
