package messaging

import (
	"context"
	"time"

	"scenario-admin/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AuditAction names what an admin user did.
type AuditAction string

const (
	ActionLogin             AuditAction = "login"
	ActionLogout            AuditAction = "logout"
	ActionScenarioCreated   AuditAction = "scenario.created"
	ActionScenarioUpdated   AuditAction = "scenario.updated"
	ActionScenarioDeleted   AuditAction = "scenario.deleted"
	ActionUserCreated       AuditAction = "user.created"
	ActionUserDeleted       AuditAction = "user.deleted"
	ActionUserAdminToggled  AuditAction = "user.admin_toggled"
	ActionScenariosExported AuditAction = "scenarios.exported"
)

// AuditActor identifies who performed an action.
type AuditActor struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// AuditEvent is the message published for every state-changing action.
type AuditEvent struct {
	ID          uuid.UUID   `json:"id"`
	Action      AuditAction `json:"action"`
	Actor       AuditActor  `json:"actor"`
	SubjectID   string      `json:"subject_id,omitempty"`
	SubjectName string      `json:"subject_name,omitempty"`
	At          time.Time   `json:"at"`
}

// NewAuditEvent stamps an event with a fresh ID and the current time.
func NewAuditEvent(action AuditAction, actor models.User, subjectID, subjectName string) AuditEvent {
	return AuditEvent{
		ID:          uuid.New(),
		Action:      action,
		Actor:       AuditActor{UserID: actor.ID, Email: actor.Email},
		SubjectID:   subjectID,
		SubjectName: subjectName,
		At:          time.Now().UTC(),
	}
}

// AuditPublisher sends audit events to a broker.
type AuditPublisher interface {
	Publish(ctx context.Context, event AuditEvent) error
	Close() error
}

type nopPublisher struct {
	logger *zap.Logger
}

// NewNopPublisher logs events at debug level and drops them.
func NewNopPublisher(logger *zap.Logger) AuditPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &nopPublisher{logger: logger.Named("NopAuditPublisher")}
}

func (p *nopPublisher) Publish(_ context.Context, event AuditEvent) error {
	p.logger.Debug("Audit event dropped", zap.String("action", string(event.Action)), zap.String("subjectID", event.SubjectID))
	return nil
}

func (p *nopPublisher) Close() error { return nil }
