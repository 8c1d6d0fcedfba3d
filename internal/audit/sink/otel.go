package sink

import (
	"context"

	otellog "go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"

	"github.com/ManuelDev-we/CRM-condominio-sub002/internal/audit/domain"
)

const loggerName = "condominio.audit"

// recordEmitter is the subset of otellog.Logger used by OTel.
type recordEmitter interface {
	Emit(ctx context.Context, rec otellog.Record)
}

// OTel emits events as OTel log records.
type OTel struct {
	logger recordEmitter
}

// NewOTel returns a sink that emits through provider. Returns nil if provider is nil.
func NewOTel(provider *sdklog.LoggerProvider) *OTel {
	if provider == nil {
		return nil
	}
	return &OTel{logger: provider.Logger(loggerName)}
}

func newOTelFromLogger(l recordEmitter) *OTel {
	return &OTel{logger: l}
}

func (o *OTel) Name() string { return "otel" }

// Write converts the event to a log record and emits it.
func (o *OTel) Write(ctx context.Context, e *domain.SecurityEvent) error {
	if o == nil || o.logger == nil || e == nil {
		return nil
	}
	var rec otellog.Record
	rec.SetTimestamp(e.Timestamp)
	rec.SetEventName(string(e.Type))
	rec.SetSeverity(severityFor(e.Type))
	rec.SetBody(otellog.StringValue(string(e.Type)))
	rec.AddAttributes(
		otellog.String("event_id", e.ID),
		otellog.String("event_type", string(e.Type)),
		otellog.String("origin_ip", e.OriginIP),
	)
	if e.SubjectID != "" {
		rec.AddAttributes(otellog.String("subject_id", e.SubjectID))
	}
	for k, v := range e.Metadata {
		rec.AddAttributes(otellog.String("meta."+k, v))
	}
	o.logger.Emit(ctx, rec)
	return nil
}

func severityFor(t domain.EventType) otellog.Severity {
	switch t {
	case domain.EventLoginFailed, domain.EventRegisterFailed, domain.EventRoleMismatch:
		return otellog.SeverityWarn
	case domain.EventRateLimited, domain.EventCSRFRejected:
		return otellog.SeverityWarn2
	default:
		return otellog.SeverityInfo
	}
}
