package usecase

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultLastUsedFlushInterval is how often buffered usage timestamps are
// written to the repository when no interval is configured.
const DefaultLastUsedFlushInterval = 30 * time.Second

// LastUsedRecorder buffers credential usage timestamps in memory and flushes
// them to the repository on an interval. Record never blocks on database
// access, keeping last-used tracking off the authentication hot path. Repeated
// uses of the same credential within one interval collapse into a single write.
type LastUsedRecorder struct {
	credentialRepo CredentialRepository
	logger         *slog.Logger
	interval       time.Duration

	mu      sync.Mutex
	pending map[uuid.UUID]time.Time
}

// NewLastUsedRecorder creates a LastUsedRecorder flushing on the given
// interval. A non-positive interval falls back to DefaultLastUsedFlushInterval.
func NewLastUsedRecorder(
	credentialRepo CredentialRepository,
	interval time.Duration,
	logger *slog.Logger,
) *LastUsedRecorder {
	if interval <= 0 {
		interval = DefaultLastUsedFlushInterval
	}
	return &LastUsedRecorder{
		credentialRepo: credentialRepo,
		logger:         logger,
		interval:       interval,
		pending:        make(map[uuid.UUID]time.Time),
	}
}

// Record buffers a usage timestamp for the credential. Safe for concurrent use.
func (r *LastUsedRecorder) Record(credentialID uuid.UUID) {
	now := time.Now().UTC()

	r.mu.Lock()
	r.pending[credentialID] = now
	r.mu.Unlock()
}

// Start runs the flush loop until the context is cancelled. Buffered entries
// are flushed one final time on shutdown.
func (r *LastUsedRecorder) Start(ctx context.Context) error {
	if r.logger != nil {
		r.logger.Info("starting last-used recorder",
			slog.Duration("interval", r.interval),
		)
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if r.logger != nil {
				r.logger.Info("stopping last-used recorder")
			}

			// Flush remaining entries with a fresh context since ctx is done
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			r.Flush(flushCtx)
			cancel()

			return ctx.Err()
		case <-ticker.C:
			r.Flush(ctx)
		}
	}
}

// Flush writes all buffered usage timestamps to the repository. Failed writes
// are logged and dropped; last-used tracking is advisory and a missed update
// is corrected by the next use.
func (r *LastUsedRecorder) Flush(ctx context.Context) {
	r.mu.Lock()
	if len(r.pending) == 0 {
		r.mu.Unlock()
		return
	}
	batch := r.pending
	r.pending = make(map[uuid.UUID]time.Time)
	r.mu.Unlock()

	for credentialID, usedAt := range batch {
		if err := r.credentialRepo.TouchLastUsed(ctx, credentialID, usedAt); err != nil {
			if r.logger != nil {
				r.logger.Error("failed to record credential last-used",
					slog.String("credential_id", credentialID.String()),
					slog.Any("error", err),
				)
			}
		}
	}
}
