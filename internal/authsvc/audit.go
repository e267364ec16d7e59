package authsvc

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/ZigmaSoftware/erp-final-backend/pkg/clients/postgres"
	erperr "github.com/ZigmaSoftware/erp-final-backend/pkg/errors"
)

// Audit event types written by the login and refresh handlers.
const (
	EventLoginSuccess   = "LOGIN_SUCCESS"
	EventLoginFailed    = "LOGIN_FAILED"
	EventRefreshSuccess = "REFRESH_SUCCESS"
	EventRefreshFailed  = "REFRESH_FAILED"
)

// AuditRecord is one authentication event. Records are append-only;
// nothing in the service updates or deletes them.
type AuditRecord struct {
	ID        uuid.UUID
	EventType string
	Username  string
	ClientIP  string
	UserAgent string
	// Reason carries the failure cause for failed events, empty otherwise.
	Reason string
	// TraceID links the record to the distributed trace, when one is active.
	TraceID string
}

// AuditSink receives authentication events. Satisfied by [AuditStore] and
// by test fakes.
type AuditSink interface {
	Record(ctx context.Context, rec AuditRecord) error
}

// AuditStore persists authentication events to PostgreSQL.
type AuditStore struct {
	db     *postgres.Client
	logger *slog.Logger
}

// NewAuditStore creates an AuditStore over the given database client.
func NewAuditStore(db *postgres.Client, logger *slog.Logger) *AuditStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditStore{db: db, logger: logger}
}

// Record inserts the event, assigning a fresh UUID when none is set.
// Audit failures must never block authentication, so callers log the
// returned error and continue.
func (s *AuditStore) Record(ctx context.Context, rec AuditRecord) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	_, err := s.db.Exec(ctx, `
		INSERT INTO auth_audit_log (id, event_type, username, client_ip, user_agent, reason, trace_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now())`,
		rec.ID, rec.EventType, rec.Username, rec.ClientIP, rec.UserAgent, rec.Reason, rec.TraceID)
	if err != nil {
		return erperr.Wrap(err, erperr.CodeInternalDatabase, "authsvc: failed to write audit record")
	}
	return nil
}
