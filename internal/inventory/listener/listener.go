package listener

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pawdesk/petshop-service/internal/inventory"
	"github.com/pawdesk/petshop-service/internal/inventory/dto"
	"github.com/pawdesk/petshop-service/internal/model"
	"github.com/pawdesk/petshop-service/pkg/broker"
	"github.com/pawdesk/petshop-service/pkg/logger"
	"go.uber.org/zap"
)

// ReceiptListener applies purchase-order receipt events from the purchasing
// system as stock receipts.
type ReceiptListener struct {
	consumer *broker.KafkaConsumer
	uc       inventory.UseCase
	logger   logger.ZapLogger
}

func NewReceiptListener(consumer *broker.KafkaConsumer, uc inventory.UseCase, logger logger.ZapLogger) *ReceiptListener {
	return &ReceiptListener{
		consumer: consumer,
		uc:       uc,
		logger:   logger,
	}
}

func (l *ReceiptListener) Start(ctx context.Context) {
	l.logger.Info("Starting purchase receipt listener")
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("Stopping purchase receipt listener")
			return
		default:
			msg, err := l.consumer.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				l.logger.Error("Failed to read kafka message", zap.Error(err))
				time.Sleep(1 * time.Second)
				continue
			}
			l.processMessage(ctx, msg.Value)
		}
	}
}

type ReceiptEvent struct {
	EventID   string         `json:"event_id"`
	EventType string         `json:"event_type"`
	Payload   ReceiptPayload `json:"payload"`
	Timestamp time.Time      `json:"timestamp"`
}

type ReceiptPayload struct {
	PurchaseOrderID string        `json:"purchase_order_id"`
	StoreID         string        `json:"store_id"`
	SupplierID      string        `json:"supplier_id"`
	Items           []ReceiptItem `json:"items"`
}

type ReceiptItem struct {
	ProductID string  `json:"product_id"`
	Quantity  float64 `json:"quantity"`
}

func (l *ReceiptListener) processMessage(ctx context.Context, value []byte) {
	var event ReceiptEvent
	if err := json.Unmarshal(value, &event); err != nil {
		l.logger.Error("Failed to unmarshal event", zap.Error(err))
		return
	}

	if event.EventType != "PurchaseOrderReceived" {
		return
	}

	l.logger.Info("Processing PurchaseOrderReceived event",
		zap.String("purchase_order_id", event.Payload.PurchaseOrderID))

	for _, item := range event.Payload.Items {
		input := &dto.AdjustStockInput{
			ProductID:      item.ProductID,
			StoreID:        &event.Payload.StoreID,
			QuantityChange: item.Quantity,
			Reason:         model.MovementReceipt,
			Notes:          "Purchase order receipt",
			ReferenceID:    event.Payload.PurchaseOrderID,
			ReferenceType:  "purchase_order",
			PerformedBy:    "system",
		}

		if _, err := l.uc.AdjustStock(ctx, input); err != nil {
			l.logger.Error("Failed to apply receipt for item",
				zap.String("purchase_order_id", event.Payload.PurchaseOrderID),
				zap.String("product_id", item.ProductID),
				zap.Error(err),
			)
		}
	}
}
