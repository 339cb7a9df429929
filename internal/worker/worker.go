package worker

import (
	"context"

	"grocery-service/internal/broker"
	"grocery-service/internal/models"
	"grocery-service/internal/util"

	"go.uber.org/zap"
)

// NotificationWorker consumes order events and surfaces them to the
// store-owner notification channel. The prototype channel is the log;
// email/push senders would hang off the same handlers.
type NotificationWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	logger       *zap.Logger
}

// NewNotificationWorker creates a new notification worker
func NewNotificationWorker(consumer *broker.Consumer) *NotificationWorker {
	w := &NotificationWorker{
		consumer: consumer,
		logger:   util.GetLogger(),
	}

	eventHandler := broker.NewEventHandler()
	eventHandler.OnOrderPlaced(w.handleOrderPlaced)
	eventHandler.OnOrderStatusChanged(w.handleOrderStatusChanged)
	w.eventHandler = eventHandler

	return w
}

// Start starts the worker
func (w *NotificationWorker) Start(ctx context.Context) error {
	w.logger.Info("Starting notification worker")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *NotificationWorker) Stop() error {
	w.logger.Info("Stopping notification worker")
	return w.consumer.Close()
}

func (w *NotificationWorker) handleOrderPlaced(_ context.Context, event *models.OrderPlacedEvent) error {
	w.logger.Info("New order received",
		zap.Int64("store_id", event.StoreID),
		zap.Int64("order_id", event.OrderID),
		zap.String("total", event.Total.String()),
		zap.String("fulfillment_method", event.FulfillmentMethod),
		zap.Int("line_count", len(event.Lines)))

	util.NotificationsSentTotal.WithLabelValues("order_placed").Inc()
	return nil
}

func (w *NotificationWorker) handleOrderStatusChanged(_ context.Context, event *models.OrderStatusChangedEvent) error {
	w.logger.Info("Order status changed",
		zap.Int64("store_id", event.StoreID),
		zap.Int64("order_id", event.OrderID),
		zap.String("old_status", event.OldStatus),
		zap.String("new_status", event.NewStatus))

	util.NotificationsSentTotal.WithLabelValues("status_changed").Inc()
	return nil
}
