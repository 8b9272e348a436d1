package logger

import (
	"context"
	"log/slog"
	"time"
)

// AuditLogger mirrors security events onto a dedicated structured channel,
// separate from application logs so it can ship to long-term audit storage
// on its own retention schedule.
type AuditLogger struct {
	logger *slog.Logger
}

// NewAuditLogger creates a new audit logger
func NewAuditLogger(logger *slog.Logger) *AuditLogger {
	return &AuditLogger{
		logger: logger,
	}
}

// LogSecurityEvent records one security event on the audit channel.
// Events without an actor were detected by the engine itself; those log at
// warn so alerting pipelines can key on level alone.
func (al *AuditLogger) LogSecurityEvent(ctx context.Context, kind string, userID, actorID *string, metadata map[string]interface{}) {
	attrs := []slog.Attr{
		slog.String("audit_type", "security_event"),
		slog.String("kind", kind),
		slog.String("timestamp", time.Now().UTC().Format(time.RFC3339)),
	}

	if userID != nil {
		attrs = append(attrs, slog.String("user_id", *userID))
	}
	if actorID != nil {
		attrs = append(attrs, slog.String("actor_id", *actorID))
	}
	for key, val := range metadata {
		attrs = append(attrs, slog.Any(key, val))
	}

	level := slog.LevelInfo
	if actorID == nil {
		level = slog.LevelWarn
	}

	al.logger.LogAttrs(ctx, level, "audit", attrs...)
}
