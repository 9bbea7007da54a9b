package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/agent-portal/internal/events"
	"github.com/spec-kit/agent-portal/internal/notification"
	"github.com/spec-kit/agent-portal/internal/observability"
)

// NotificationService delivers lifecycle emails for published events.
// Sends are fire-and-forget, at-most-once: a failed delivery is logged
// and counted, never propagated back to the transition that caused it.
type NotificationService struct {
	dispatcher events.Dispatcher
	sender     notification.Sender
	logger     *zap.Logger
	metrics    *observability.Metrics
}

// NewNotificationService creates the service with an injected sender.
func NewNotificationService(dispatcher events.Dispatcher, sender notification.Sender, logger *zap.Logger, metrics *observability.Metrics) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		sender:     sender,
		logger:     logger,
		metrics:    metrics,
	}
}

var eventKinds = map[events.EventType]notification.Kind{
	events.EventAgentRegistered: notification.KindRegistrationPending,
	events.EventAgentApproved:   notification.KindApproved,
	events.EventAgentRejected:   notification.KindRejected,
	events.EventAgentBlocked:    notification.KindBlocked,
	events.EventAgentUnblocked:  notification.KindUnblocked,
}

// RegisterHandlers subscribes to every event that has an email template.
// Soft deletion has no template and stays silent.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	for eventType := range eventKinds {
		n.dispatcher.Subscribe(eventType, n.handleLifecycleEvent)
	}
}

func (n *NotificationService) handleLifecycleEvent(_ context.Context, event events.Event) error {
	kind, ok := eventKinds[event.Type]
	if !ok {
		return nil
	}

	// Detached from the request: the HTTP response never waits on
	// delivery.
	go n.send(kind, event)
	return nil
}

func (n *NotificationService) send(kind notification.Kind, event events.Event) {
	data := notification.TemplateData{Name: event.UserName, Email: event.UserEmail}
	if err := n.sender.Send(kind, event.UserEmail, data); err != nil {
		n.metrics.RecordNotificationFailure(string(kind))
		n.logger.Warn("notification send failed",
			zap.String("kind", string(kind)),
			zap.String("recipient", event.UserEmail),
			zap.Error(err),
		)
		return
	}
	n.logger.Info("notification sent",
		zap.String("kind", string(kind)),
		zap.String("recipient", event.UserEmail),
	)
}
