package service

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"quant_bot/internal/models"
	"quant_bot/pkg/db"
	"quant_bot/pkg/logger"
)

const createTradesTable = `
CREATE TABLE IF NOT EXISTS trades (
    id             text PRIMARY KEY,
    symbol         text NOT NULL,
    side           text NOT NULL,
    quantity       double precision NOT NULL,
    price          double precision NOT NULL,
    opened_at      timestamptz NOT NULL,
    entry_order_id text NOT NULL,
    exit_order_id  text,
    exit_price     double precision,
    realized_pnl   double precision,
    closed_at      timestamptz
)`

// Journal is an append-only reporting sink for the trade ledger. The
// engine never reads it back; write failures are logged and dropped so
// a database outage cannot affect trading.
type Journal struct {
	tx *db.PgTxManager
}

func NewJournal(tx *db.PgTxManager) *Journal {
	return &Journal{tx: tx}
}

func (j *Journal) Init(ctx context.Context) error {
	return j.tx.RunMaster(ctx, func(ctx context.Context, tx pgx.Tx) error {
		_, err := tx.Exec(ctx, createTradesTable)
		return err
	})
}

func (j *Journal) RecordOpen(ctx context.Context, trade models.Trade) {
	err := j.tx.RunMaster(ctx, func(ctx context.Context, tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`INSERT INTO trades (id, symbol, side, quantity, price, opened_at, entry_order_id)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)
			 ON CONFLICT (id) DO NOTHING`,
			trade.ID, trade.Symbol, string(trade.Side), trade.Quantity,
			trade.Price, trade.Timestamp, trade.EntryOrderID)
		return err
	})
	if err != nil {
		logger.Error("[JOURNAL] record open %s: %v", trade.ID, err)
	}
}

func (j *Journal) RecordClose(ctx context.Context, trade models.Trade) {
	err := j.tx.RunMaster(ctx, func(ctx context.Context, tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`UPDATE trades
			 SET exit_order_id = $2, exit_price = $3, realized_pnl = $4, closed_at = $5
			 WHERE id = $1`,
			trade.ID, trade.ExitOrderID, trade.ExitPrice, trade.RealizedPnL, time.Now().UTC())
		return err
	})
	if err != nil {
		logger.Error("[JOURNAL] record close %s: %v", trade.ID, err)
	}
}
