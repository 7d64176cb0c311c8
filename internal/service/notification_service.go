package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/ars-claims-service/internal/config"
	"github.com/spec-kit/ars-claims-service/internal/events"
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
	n.dispatcher.Subscribe(events.EventBordereauReceived, n.handleBordereauReceived)
	n.dispatcher.Subscribe(events.EventBordereauAssigned, n.handleBordereauAssigned)
	n.dispatcher.Subscribe(events.EventBordereauStatusChanged, n.handleBordereauStatusChanged)
	n.dispatcher.Subscribe(events.EventAlertRaised, n.handleAlertRaised)
	n.dispatcher.Subscribe(events.EventAlertResolved, n.handleAlertResolved)
	n.dispatcher.Subscribe(events.EventReclamationOpened, n.handleReclamationOpened)
	n.dispatcher.Subscribe(events.EventVirementGenerated, n.handleVirementGenerated)
	n.dispatcher.Subscribe(events.EventVirementExecuted, n.handleVirementExecuted)
	n.dispatcher.Subscribe(events.EventDocumentScanned, n.handleDocumentScanned)
}

func (n *NotificationService) handleBordereauReceived(ctx context.Context, event events.Event) error {
	n.logger.Info("BordereauReceived", zap.String("bordereau_id", event.SubjectID), zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event)
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleBordereauAssigned(ctx context.Context, event events.Event) error {
	n.logger.Info("BordereauAssigned", zap.String("bordereau_id", event.SubjectID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleBordereauStatusChanged(ctx context.Context, event events.Event) error {
	n.logger.Info("BordereauStatusChanged", zap.String("bordereau_id", event.SubjectID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleAlertRaised(ctx context.Context, event events.Event) error {
	n.logger.Warn("AlertRaised", zap.String("alert_id", event.SubjectID), zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event)
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleAlertResolved(ctx context.Context, event events.Event) error {
	n.logger.Info("AlertResolved", zap.String("alert_id", event.SubjectID), zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) handleReclamationOpened(ctx context.Context, event events.Event) error {
	n.logger.Info("ReclamationOpened", zap.String("reclamation_id", event.SubjectID), zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleVirementGenerated(ctx context.Context, event events.Event) error {
	n.logger.Info("VirementGenerated", zap.String("ordre_id", event.SubjectID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleVirementExecuted(ctx context.Context, event events.Event) error {
	n.logger.Info("VirementExecuted", zap.String("ordre_id", event.SubjectID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleDocumentScanned(ctx context.Context, event events.Event) error {
	n.logger.Info("DocumentScanned", zap.String("document_id", event.SubjectID), zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) sendEmailNotificationStub(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("subject_id", event.SubjectID),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWebhookNotificationStub(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("subject_id", event.SubjectID),
		zap.String("event_type", string(event.Type)))
}
