package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/partyplanning/console/internal/config"
	"github.com/partyplanning/console/internal/events"
)

// AuditService records session events.
type AuditService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.AuditConfig
}

// NewAuditService creates the service.
func NewAuditService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.AuditConfig) *AuditService {
	return &AuditService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	a.dispatcher.Subscribe(events.EventLoginSucceeded, a.handleLoginSucceeded)
	a.dispatcher.Subscribe(events.EventLoginFailed, a.handleLoginFailed)
	a.dispatcher.Subscribe(events.EventLoginDiscarded, a.handleDebug)
	a.dispatcher.Subscribe(events.EventLoginStarted, a.handleDebug)
	a.dispatcher.Subscribe(events.EventRestored, a.handleRestored)
	a.dispatcher.Subscribe(events.EventRestoreFailed, a.handleRestoreFailed)
	a.dispatcher.Subscribe(events.EventLoggedOut, a.handleLoggedOut)
}

func (a *AuditService) handleLoginSucceeded(ctx context.Context, event events.Event) error {
	a.logger.Info("LoginSucceeded",
		zap.String("user_id", event.UserID),
		zap.String("email", event.Email),
		zap.String("role", event.Role.String()),
		zap.Uint64("attempt", event.Attempt))
	a.forwardWebhookStub(ctx, event)
	return nil
}

func (a *AuditService) handleLoginFailed(ctx context.Context, event events.Event) error {
	a.logger.Warn("LoginFailed",
		zap.String("email", event.Email),
		zap.Uint64("attempt", event.Attempt),
		zap.Any("payload", event.Payload))
	a.forwardWebhookStub(ctx, event)
	return nil
}

func (a *AuditService) handleRestored(_ context.Context, event events.Event) error {
	a.logger.Info("SessionRestored", zap.String("user_id", event.UserID), zap.String("role", event.Role.String()))
	return nil
}

func (a *AuditService) handleRestoreFailed(_ context.Context, event events.Event) error {
	a.logger.Warn("SessionRestoreDiscarded", zap.Any("payload", event.Payload))
	return nil
}

func (a *AuditService) handleLoggedOut(ctx context.Context, event events.Event) error {
	a.logger.Info("LoggedOut", zap.String("user_id", event.UserID))
	a.forwardWebhookStub(ctx, event)
	return nil
}

func (a *AuditService) handleDebug(_ context.Context, event events.Event) error {
	a.logger.Debug(string(event.Type), zap.Uint64("attempt", event.Attempt), zap.Any("payload", event.Payload))
	return nil
}

func (a *AuditService) forwardWebhookStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(a.cfg.WebhookURL) == "" {
		return
	}
	a.logger.Debug("forwardWebhookStub",
		zap.String("url", a.cfg.WebhookURL),
		zap.String("event_id", event.ID),
		zap.String("event_type", string(event.Type)))
}
