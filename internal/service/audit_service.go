package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/medqueue/pkg/metrics"
)

const (
	defaultAuditBuffer = 10_000
	auditWriteTimeout  = 5 * time.Second
)

// AuditService persists the audit trail off the request path. One worker
// drains a bounded queue; entries that do not fit are dropped and counted.
type AuditService struct {
	repo    domain.AuditLogRepository
	log     *zap.Logger
	metrics *metrics.Collector
	entries chan *domain.AuditLog
	done    chan struct{}

	mu     sync.RWMutex
	closed bool
}

func NewAuditService(repo domain.AuditLogRepository, log *zap.Logger, m *metrics.Collector) *AuditService {
	return newAuditService(repo, log, m, defaultAuditBuffer)
}

func newAuditService(repo domain.AuditLogRepository, log *zap.Logger, m *metrics.Collector, buffer int) *AuditService {
	svc := &AuditService{
		repo:    repo,
		log:     log.Named("audit"),
		metrics: m,
		entries: make(chan *domain.AuditLog, buffer),
		done:    make(chan struct{}),
	}
	go svc.worker()
	return svc
}

// LogAsync enqueues entry. The request IP and id on ctx fill any blanks, and
// the entry is timestamped now rather than when the worker reaches it.
func (s *AuditService) LogAsync(ctx context.Context, entry AuditEntry) {
	meta := RequestMetaFrom(ctx)
	if entry.IPAddress == "" {
		entry.IPAddress = meta.IP
	}
	if entry.RequestID == "" {
		entry.RequestID = meta.RequestID
	}

	al := &domain.AuditLog{
		OccurredAt:   time.Now().UTC(),
		UserID:       entry.UserID,
		UserRole:     entry.UserRole,
		Action:       entry.Action,
		ResourceType: entry.ResourceType,
		ResourceID:   entry.ResourceID,
		IPAddress:    entry.IPAddress,
		RequestID:    entry.RequestID,
		Changes:      entry.Changes,
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		s.drop("service shut down, dropping entry", entry)
		return
	}
	select {
	case s.entries <- al:
	default:
		s.drop("buffer full, dropping entry", entry)
	}
}

func (s *AuditService) drop(msg string, entry AuditEntry) {
	s.metrics.AuditBufferDropped.Inc()
	s.log.Warn(msg,
		zap.String("action", string(entry.Action)),
		zap.String("resource", entry.ResourceType),
		zap.String("request_id", entry.RequestID),
	)
}

// Shutdown stops accepting entries and waits for the queue to drain or ctx
// to end. Entries logged afterwards are dropped and counted.
func (s *AuditService) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.entries)
	}
	s.mu.Unlock()

	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("audit queue not drained, %d entries pending: %w", len(s.entries), ctx.Err())
	}
}

func (s *AuditService) worker() {
	defer close(s.done)
	for entry := range s.entries {
		ctx, cancel := context.WithTimeout(context.Background(), auditWriteTimeout)
		if err := s.repo.Create(ctx, entry); err != nil {
			s.log.Error("failed to persist entry",
				zap.String("action", string(entry.Action)),
				zap.String("resource", entry.ResourceType),
				zap.Error(err),
			)
		} else {
			s.metrics.AuditEntriesTotal.Inc()
		}
		cancel()
	}
}
