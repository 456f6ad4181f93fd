package exchange

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"quant_bot/internal/models"
)

// PaperClient fills every market order instantly at the order's
// reference price against a simulated balance sheet. Used for dry runs
// and tests.
type PaperClient struct {
	mu       sync.Mutex
	balances map[string]float64
}

func NewPaperClient(balances map[string]float64) *PaperClient {
	if balances == nil {
		balances = map[string]float64{"USDT": 10000}
	}
	copied := make(map[string]float64, len(balances))
	for k, v := range balances {
		copied[k] = v
	}
	return &PaperClient{balances: copied}
}

func (c *PaperClient) PlaceOrder(_ context.Context, order models.Order) (models.OrderResponse, error) {
	return models.OrderResponse{
		OrderID:      uuid.NewString(),
		Status:       models.StatusFilled,
		FilledQty:    order.Quantity,
		AveragePrice: order.Price,
		Timestamp:    time.Now().UTC(),
	}, nil
}

func (c *PaperClient) Balance(_ context.Context, asset string) (models.Balance, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return models.Balance{Asset: asset, Free: c.balances[asset]}, nil
}

// SetBalance overrides one asset's free balance.
func (c *PaperClient) SetBalance(asset string, free float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.balances[asset] = free
}

var _ ExchangeClient = (*PaperClient)(nil)
