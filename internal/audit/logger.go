package audit

import (
	"context"
	"log"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/ManuelDev-we/CRM-condominio-sub002/internal/audit/domain"
	"github.com/ManuelDev-we/CRM-condominio-sub002/internal/platform/clock"
)

const meterName = "condominio.audit"

// UnknownIP is recorded when the caller has no origin address.
const UnknownIP = "unknown"

// Sink is one destination for security events.
type Sink interface {
	Name() string
	Write(ctx context.Context, e *domain.SecurityEvent) error
}

// Recorder writes a single security event. Used by the auth flows.
// Record is best-effort: failures are logged and do not affect the caller.
type Recorder interface {
	Record(ctx context.Context, t domain.EventType, subjectID, originIP string, metadata map[string]string)
}

// Logger implements Recorder by fanning each event out to every sink.
type Logger struct {
	sinks   []Sink
	clock   clock.Clock
	counter metric.Int64Counter
}

// NewLogger returns a Logger writing to sinks. Nil sinks are skipped.
func NewLogger(clk clock.Clock, sinks ...Sink) *Logger {
	l := &Logger{clock: clk}
	for _, s := range sinks {
		if s != nil {
			l.sinks = append(l.sinks, s)
		}
	}
	counter, err := otel.Meter(meterName).Int64Counter("auth.security_events",
		metric.WithDescription("Security events recorded, by type."))
	if err != nil {
		log.Printf("audit: counter unavailable: %v", err)
	} else {
		l.counter = counter
	}
	return l
}

// Record builds one event and writes it to every sink. Best-effort: errors are logged and not returned.
func (l *Logger) Record(ctx context.Context, t domain.EventType, subjectID, originIP string, metadata map[string]string) {
	if l == nil {
		return
	}
	if originIP == "" {
		originIP = UnknownIP
	}
	e := &domain.SecurityEvent{
		ID:        uuid.New().String(),
		Type:      t,
		Timestamp: l.clock.Now().UTC(),
		SubjectID: subjectID,
		OriginIP:  originIP,
		Metadata:  metadata,
	}
	if l.counter != nil {
		l.counter.Add(ctx, 1, metric.WithAttributes(attribute.String("event_type", string(t))))
	}
	if len(l.sinks) == 0 {
		log.Printf("audit: %s subject=%q ip=%s %v (no sinks)", t, subjectID, originIP, metadata)
		return
	}
	for _, s := range l.sinks {
		if err := s.Write(ctx, e); err != nil {
			log.Printf("audit: %s sink failed for %s subject=%q ip=%s: %v", s.Name(), t, subjectID, originIP, err)
		}
	}
}
