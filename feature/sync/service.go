package sync

import (
	"context"
	"errors"
	gosync "sync"

	"syncvision/feature/sync/models"

	"go.uber.org/zap"
)

// Service exposes the run lifecycle to the CLI and HTTP surfaces. It tracks
// in-process runs so an operator can abort them; the exclusivity lock itself
// lives in the ledger.
type Service struct {
	orchestrator *Orchestrator
	ledger       *Ledger
	cfg          Config
	logger       *zap.Logger

	mu      gosync.Mutex
	cancels map[string]context.CancelFunc
}

func NewService(orchestrator *Orchestrator, ledger *Ledger, cfg Config, logger *zap.Logger) *Service {
	return &Service{
		orchestrator: orchestrator,
		ledger:       ledger,
		cfg:          cfg,
		logger:       logger,
		cancels:      make(map[string]context.CancelFunc),
	}
}

// Run executes one session synchronously. Used by the CLI, where the caller's
// context carries signal-driven cancellation.
func (s *Service) Run(ctx context.Context) (*models.SyncSession, error) {
	return s.orchestrator.Run(ctx)
}

// Trigger starts a session in the background and returns it immediately in
// RUNNING state. Returns ErrSyncAlreadyRunning without creating a session
// when the lock is held. The run is detached from the caller's context so an
// HTTP disconnect does not abort it.
func (s *Service) Trigger(ctx context.Context) (*models.SyncSession, error) {
	session, err := s.ledger.Begin(ctx)
	if err != nil {
		return nil, err
	}

	runCtx, cancel := context.WithCancel(context.Background())
	s.mu.Lock()
	s.cancels[session.ID] = cancel
	s.mu.Unlock()

	go func() {
		defer func() {
			s.mu.Lock()
			delete(s.cancels, session.ID)
			s.mu.Unlock()
			cancel()
		}()
		if _, err := s.orchestrator.RunSession(runCtx, session); err != nil &&
			!errors.Is(err, context.Canceled) {
			s.logger.Error("Background sync session failed",
				zap.String("session_id", session.ID), zap.Error(err))
		}
	}()

	return session, nil
}

// Abort cancels an in-process run. The session finalizes as ABORTED at its
// next batch boundary. Returns ErrSessionNotRunning when the session is
// terminal or not running in this process.
func (s *Service) Abort(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	cancel, ok := s.cancels[sessionID]
	s.mu.Unlock()
	if ok {
		cancel()
		return nil
	}

	if _, err := s.ledger.Get(ctx, sessionID); err != nil {
		return err
	}
	return ErrSessionNotRunning
}

// Session returns one session by ID.
func (s *Service) Session(ctx context.Context, sessionID string) (*models.SyncSession, error) {
	return s.ledger.Get(ctx, sessionID)
}

// Sessions lists recent sessions, newest first.
func (s *Service) Sessions(ctx context.Context, limit int) ([]models.SyncSession, error) {
	return s.ledger.List(ctx, limit)
}

// Report compiles the report of a finished session from the ledger.
// A RUNNING session has no report: its counters are still moving.
func (s *Service) Report(ctx context.Context, sessionID string) (*ReportSummary, error) {
	session, err := s.ledger.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !SessionStatus(session.Status).Terminal() {
		return nil, ErrSessionNotFinished
	}

	discrepancies, err := s.ledger.Discrepancies(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	report := Compile(session, discrepancies, s.cfg.Recipients())
	return &report, nil
}

// Errors returns the error rows of a session.
func (s *Service) Errors(ctx context.Context, sessionID string) ([]models.SyncError, error) {
	return s.ledger.Errors(ctx, sessionID)
}
