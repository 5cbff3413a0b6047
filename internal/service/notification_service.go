package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/embed-service/internal/config"
	"github.com/spec-kit/embed-service/internal/events"
)

// NotificationService handles emitting notifications for domain events.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventProjectCreated, n.handleProjectCreated)
	n.dispatcher.Subscribe(events.EventProjectDeleted, n.handleProjectDeleted)
	n.dispatcher.Subscribe(events.EventCollaboratorInvited, n.handleCollaboratorInvited)
	n.dispatcher.Subscribe(events.EventCollaboratorResponded, n.handleCollaboratorResponded)
	n.dispatcher.Subscribe(events.EventEmbedTokenIssued, n.handleEmbedTokenIssued)
}

func (n *NotificationService) handleProjectCreated(ctx context.Context, event events.Event) error {
	n.logger.Info("ProjectCreated", zap.String("project_id", event.ProjectID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleProjectDeleted(ctx context.Context, event events.Event) error {
	n.logger.Info("ProjectDeleted", zap.String("project_id", event.ProjectID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleCollaboratorInvited(ctx context.Context, event events.Event) error {
	n.logger.Info("CollaboratorInvited", zap.String("project_id", event.ProjectID), zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleCollaboratorResponded(ctx context.Context, event events.Event) error {
	n.logger.Info("CollaboratorResponded", zap.String("project_id", event.ProjectID), zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleEmbedTokenIssued(ctx context.Context, event events.Event) error {
	n.logger.Info("EmbedTokenIssued", zap.String("project_id", event.ProjectID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) sendEmailNotificationStub(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("project_id", event.ProjectID),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWebhookNotificationStub(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("project_id", event.ProjectID),
		zap.String("event_type", string(event.Type)))
}
