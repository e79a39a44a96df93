package interfaces

import (
	"context"

	"petstore-service/internal/models"
)

// MessagePublisher defines the contract for publishing purchase events.
type MessagePublisher interface {
	PublishPurchase(ctx context.Context, event *models.PurchaseEvent) error
	Close() error
}
