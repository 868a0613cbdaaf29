// Package service holds the hospital workflows: the visit queue state
// machine and the record operations around it. Every mutation passes the
// access gate before it touches the store and publishes a realtime event
// after it commits.
package service

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/access"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/realtime"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/store"
	"github.com/dmehra2102/prod-golang-projects/medqueue/pkg/metrics"
)

var tracer = otel.Tracer("github.com/dmehra2102/prod-golang-projects/medqueue/internal/service")

// Deps are shared by every service.
type Deps struct {
	Store     store.Store
	Audit     *AuditService
	Publisher realtime.Publisher
	Metrics   *metrics.Collector
	Log       *zap.Logger
	// Now defaults to time.Now.
	Now func() time.Time
}

type base struct {
	store   store.Store
	reader  *store.Reader
	audit   *AuditService
	pub     realtime.Publisher
	metrics *metrics.Collector
	log     *zap.Logger
	now     func() time.Time
}

func newBase(d Deps) base {
	now := d.Now
	if now == nil {
		now = time.Now
	}
	pub := d.Publisher
	if pub == nil {
		pub = realtime.Discard{}
	}
	return base{
		store:   d.Store,
		reader:  store.NewReader(d.Store, d.Log),
		audit:   d.Audit,
		pub:     pub,
		metrics: d.Metrics,
		log:     d.Log,
		now:     now,
	}
}

// record queues an audit entry for p's action. changes is encoded as JSON
// when non-nil.
func (b base) record(ctx context.Context, p *access.Principal, action domain.AuditAction, resource string, id int64, changes any) {
	if b.audit == nil || p == nil {
		return
	}
	entry := AuditEntry{
		UserID:       p.UserID,
		UserRole:     p.Role,
		Action:       action,
		ResourceType: resource,
		ResourceID:   strconv.FormatInt(id, 10),
	}
	if changes != nil {
		if raw, err := json.Marshal(changes); err == nil {
			entry.Changes = string(raw)
		}
	}
	b.audit.LogAsync(ctx, entry)
}

func startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return tracer.Start(ctx, name)
}

// endSpan marks the span failed when *err is set, then ends it.
func endSpan(span trace.Span, err *error) {
	if err != nil && *err != nil {
		span.RecordError(*err)
		span.SetStatus(codes.Error, (*err).Error())
	}
	span.End()
}

// RequestMeta is what the HTTP layer knows about the caller's request.
type RequestMeta struct {
	IP        string
	RequestID string
}

type requestMetaKey struct{}

func WithRequestMeta(ctx context.Context, m RequestMeta) context.Context {
	return context.WithValue(ctx, requestMetaKey{}, m)
}

func RequestMetaFrom(ctx context.Context) RequestMeta {
	m, _ := ctx.Value(requestMetaKey{}).(RequestMeta)
	return m
}

func ptr[T any](v T) *T {
	return &v
}
