package service

import (
	"context"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"

	"quant_bot/internal/models"
	"quant_bot/pkg/logger"
)

// Streamer consumes Binance kline websocket frames for a batch of
// symbols on one interval, feeds the history store and fans updates out
// to the strategy and execution channels. Sends never block; a full
// consumer loses ticks instead of stalling the stream.
type Streamer struct {
	baseURL  string
	symbols  []string
	interval string

	dialer  *websocket.Dialer
	store   *HistoryStore
	updates chan<- models.MarketUpdate
	ticks   chan<- models.PriceTick

	connected    atomic.Bool
	lastTickUnix atomic.Int64
}

// Connected reports whether a websocket session is currently open.
func (s *Streamer) Connected() bool { return s.connected.Load() }

// LastTick returns the arrival time of the most recent parsed frame,
// or the zero time before the first one.
func (s *Streamer) LastTick() time.Time {
	u := s.lastTickUnix.Load()
	if u == 0 {
		return time.Time{}
	}
	return time.Unix(u, 0)
}

func NewStreamer(baseURL string, symbols []string, interval string, store *HistoryStore,
	updates chan<- models.MarketUpdate, ticks chan<- models.PriceTick) *Streamer {

	return &Streamer{
		baseURL:  baseURL,
		symbols:  symbols,
		interval: interval,
		dialer:   &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
		store:    store,
		updates:  updates,
		ticks:    ticks,
	}
}

type klineFrame struct {
	Stream string `json:"stream"`
	Data   struct {
		Event  string `json:"e"`
		Symbol string `json:"s"`
		Kline  struct {
			OpenTime    int64  `json:"t"`
			CloseTime   int64  `json:"T"`
			Symbol      string `json:"s"`
			Interval    string `json:"i"`
			Open        string `json:"o"`
			Close       string `json:"c"`
			High        string `json:"h"`
			Low         string `json:"l"`
			Volume      string `json:"v"`
			TradeCount  int64  `json:"n"`
			Closed      bool   `json:"x"`
			QuoteVolume string `json:"q"`
		} `json:"k"`
	} `json:"data"`
}

func (s *Streamer) url() string {
	streams := make([]string, 0, len(s.symbols))
	for _, sym := range s.symbols {
		streams = append(streams, strings.ToLower(sym)+"@kline_"+s.interval)
	}
	return s.baseURL + "/stream?streams=" + strings.Join(streams, "/")
}

// Run drives the connect/read/reconnect cycle until ctx is canceled.
func (s *Streamer) Run(ctx context.Context) {
	if len(s.symbols) == 0 {
		logger.Error("[WS] no symbols configured, streamer not started")
		return
	}

	url := s.url()
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		logger.Info("[WS] connect %s symbols=%d interval=%s", s.baseURL, len(s.symbols), s.interval)
		conn, _, err := s.dialer.DialContext(ctx, url, nil)
		if err != nil {
			logger.Error("[WS] dial: %v", err)
			time.Sleep(time.Second)
			continue
		}

		s.connected.Store(true)
		s.readLoop(ctx, conn)
		s.connected.Store(false)
		_ = conn.Close()

		select {
		case <-ctx.Done():
			return
		default:
			time.Sleep(time.Second)
		}
	}
}

func (s *Streamer) readLoop(ctx context.Context, conn *websocket.Conn) {
	// the server pings every few minutes and drops silent clients
	const readWait = 3 * time.Minute
	_ = conn.SetReadDeadline(time.Now().Add(readWait))
	conn.SetPingHandler(func(payload string) error {
		_ = conn.SetReadDeadline(time.Now().Add(readWait))
		return conn.WriteControl(websocket.PongMessage, []byte(payload), time.Now().Add(5*time.Second))
	})

	for {
		if ctx.Err() != nil {
			return
		}

		_, msg, err := conn.ReadMessage()
		if err != nil {
			logger.Error("[WS] read: %v", err)
			return
		}

		var frame klineFrame
		if err := sonic.Unmarshal(msg, &frame); err != nil {
			continue
		}
		if frame.Data.Event != "kline" {
			continue
		}

		k := frame.Data.Kline
		open, err1 := strconv.ParseFloat(k.Open, 64)
		high, err2 := strconv.ParseFloat(k.High, 64)
		low, err3 := strconv.ParseFloat(k.Low, 64)
		closep, err4 := strconv.ParseFloat(k.Close, 64)
		if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
			continue
		}
		if closep <= 0 {
			continue
		}
		vol, _ := strconv.ParseFloat(k.Volume, 64)
		quoteVol, _ := strconv.ParseFloat(k.QuoteVolume, 64)

		candle := models.Candle{
			Symbol:      frame.Data.Symbol,
			Interval:    k.Interval,
			OpenTime:    time.UnixMilli(k.OpenTime),
			CloseTime:   time.UnixMilli(k.CloseTime),
			Open:        open,
			High:        high,
			Low:         low,
			Close:       closep,
			Volume:      vol,
			QuoteVolume: quoteVol,
			TradeCount:  k.TradeCount,
		}

		now := time.Now().UTC()
		s.lastTickUnix.Store(now.Unix())
		if k.Closed {
			s.store.Append(candle)
		}

		select {
		case s.updates <- models.MarketUpdate{
			Symbol:    candle.Symbol,
			Interval:  candle.Interval,
			Candle:    candle,
			Closed:    k.Closed,
			Timestamp: now,
		}:
		default:
		}

		select {
		case s.ticks <- models.PriceTick{Symbol: candle.Symbol, Price: closep, Timestamp: now}:
		default:
		}
	}
}
