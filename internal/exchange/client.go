package exchange

import (
	"context"

	"quant_bot/internal/models"
)

// ExchangeClient is the order-side collaborator. Implementations must
// not assume a synchronous fill; callers check OrderResponse.Status.
type ExchangeClient interface {
	PlaceOrder(ctx context.Context, order models.Order) (models.OrderResponse, error)
	Balance(ctx context.Context, asset string) (models.Balance, error)
}
