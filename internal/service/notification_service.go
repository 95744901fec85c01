package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/sav-suite/reclamation-service/internal/config"
	"github.com/sav-suite/reclamation-service/internal/events"
)

// NotificationService handles emitting notifications for workflow events.
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
	n.dispatcher.Subscribe(events.EventReclamationCreated, n.handleReclamationCreated)
	n.dispatcher.Subscribe(events.EventTechnicianAssigned, n.handleTechnicianAssigned)
	n.dispatcher.Subscribe(events.EventTechnicianUnassigned, n.handleTechnicianUnassigned)
	n.dispatcher.Subscribe(events.EventStatusChanged, n.handleStatusChanged)
	n.dispatcher.Subscribe(events.EventWorkOrderClosed, n.handleWorkOrderClosed)
}

func (n *NotificationService) handleReclamationCreated(ctx context.Context, event events.Event) error {
	n.logger.Info("ReclamationCreated", zap.Int64("reclamation_id", event.ReclamationID), zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event)
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleTechnicianAssigned(ctx context.Context, event events.Event) error {
	n.logger.Info("TechnicianAssigned", zap.Int64("reclamation_id", event.ReclamationID), zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event)
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleTechnicianUnassigned(ctx context.Context, event events.Event) error {
	n.logger.Info("TechnicianUnassigned", zap.Int64("reclamation_id", event.ReclamationID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleStatusChanged(ctx context.Context, event events.Event) error {
	n.logger.Info("StatusChanged", zap.Int64("reclamation_id", event.ReclamationID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleWorkOrderClosed(ctx context.Context, event events.Event) error {
	n.logger.Info("WorkOrderClosed", zap.Int64("reclamation_id", event.ReclamationID), zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event)
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) sendEmailNotificationStub(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.Int64("reclamation_id", event.ReclamationID),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWebhookNotificationStub(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.Int64("reclamation_id", event.ReclamationID),
		zap.String("event_type", string(event.Type)))
}
