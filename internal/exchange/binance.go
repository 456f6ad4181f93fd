package exchange

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"

	"quant_bot/internal/models"
)

// BinanceClient talks to the Binance spot REST API with HMAC-SHA256
// signed requests.
type BinanceClient struct {
	baseURL   string
	apiKey    string
	apiSecret string
	http      *http.Client
}

func NewBinanceClient(baseURL, apiKey, apiSecret string) *BinanceClient {
	return &BinanceClient{
		baseURL:   strings.TrimRight(baseURL, "/"),
		apiKey:    apiKey,
		apiSecret: apiSecret,
		http:      &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *BinanceClient) sign(query string) string {
	mac := hmac.New(sha256.New, []byte(c.apiSecret))
	mac.Write([]byte(query))
	return hex.EncodeToString(mac.Sum(nil))
}

func (c *BinanceClient) signedRequest(ctx context.Context, method, path string, params url.Values) ([]byte, error) {
	params.Set("timestamp", strconv.FormatInt(time.Now().UnixMilli(), 10))
	params.Set("recvWindow", "5000")
	query := params.Encode()
	query += "&signature=" + c.sign(query)

	var reqURL, body string
	if method == http.MethodGet {
		reqURL = c.baseURL + path + "?" + query
	} else {
		reqURL = c.baseURL + path
		body = query
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, strings.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}
	req.Header.Set("X-MBX-APIKEY", c.apiKey)
	if method != http.MethodGet {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "%s %s", method, path)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read response")
	}
	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Code int    `json:"code"`
			Msg  string `json:"msg"`
		}
		if sonic.Unmarshal(raw, &apiErr) == nil && apiErr.Msg != "" {
			return nil, errors.Errorf("%s %s: http %d code=%d %s", method, path, resp.StatusCode, apiErr.Code, apiErr.Msg)
		}
		return nil, errors.Errorf("%s %s: http %d", method, path, resp.StatusCode)
	}
	return raw, nil
}

type binanceOrderResponse struct {
	OrderID             int64  `json:"orderId"`
	Status              string `json:"status"`
	ExecutedQty         string `json:"executedQty"`
	CummulativeQuoteQty string `json:"cummulativeQuoteQty"`
	TransactTime        int64  `json:"transactTime"`
	Fills               []struct {
		Price string `json:"price"`
		Qty   string `json:"qty"`
	} `json:"fills"`
}

func mapOrderStatus(s string) models.OrderStatus {
	switch s {
	case "FILLED":
		return models.StatusFilled
	case "PARTIALLY_FILLED":
		return models.StatusPartiallyFilled
	case "NEW":
		return models.StatusNew
	case "CANCELED":
		return models.StatusCanceled
	default:
		return models.StatusRejected
	}
}

func (c *BinanceClient) PlaceOrder(ctx context.Context, order models.Order) (models.OrderResponse, error) {
	params := url.Values{}
	params.Set("symbol", order.Symbol)
	params.Set("side", string(order.Side))
	params.Set("type", string(order.Type))
	params.Set("quantity", strconv.FormatFloat(order.Quantity, 'f', 5, 64))
	if order.Type == models.OrderLimit {
		params.Set("price", strconv.FormatFloat(order.Price, 'f', -1, 64))
		params.Set("timeInForce", "GTC")
	}

	raw, err := c.signedRequest(ctx, http.MethodPost, "/api/v3/order", params)
	if err != nil {
		return models.OrderResponse{}, errors.Wrap(err, "place order")
	}

	var br binanceOrderResponse
	if err := sonic.Unmarshal(raw, &br); err != nil {
		return models.OrderResponse{}, errors.Wrap(err, "decode order response")
	}

	filled, _ := strconv.ParseFloat(br.ExecutedQty, 64)

	// average fill price from the fills list, falling back to the
	// cumulative quote amount
	var avg float64
	if len(br.Fills) > 0 {
		var qtySum, quoteSum float64
		for _, f := range br.Fills {
			p, _ := strconv.ParseFloat(f.Price, 64)
			q, _ := strconv.ParseFloat(f.Qty, 64)
			qtySum += q
			quoteSum += p * q
		}
		if qtySum > 0 {
			avg = quoteSum / qtySum
		}
	} else if filled > 0 {
		quote, _ := strconv.ParseFloat(br.CummulativeQuoteQty, 64)
		avg = quote / filled
	}

	return models.OrderResponse{
		OrderID:      strconv.FormatInt(br.OrderID, 10),
		Status:       mapOrderStatus(br.Status),
		FilledQty:    filled,
		AveragePrice: avg,
		Timestamp:    time.UnixMilli(br.TransactTime),
	}, nil
}

func (c *BinanceClient) Balance(ctx context.Context, asset string) (models.Balance, error) {
	raw, err := c.signedRequest(ctx, http.MethodGet, "/api/v3/account", url.Values{})
	if err != nil {
		return models.Balance{}, errors.Wrap(err, "get account")
	}

	var acct struct {
		Balances []struct {
			Asset  string `json:"asset"`
			Free   string `json:"free"`
			Locked string `json:"locked"`
		} `json:"balances"`
	}
	if err := sonic.Unmarshal(raw, &acct); err != nil {
		return models.Balance{}, errors.Wrap(err, "decode account")
	}

	for _, b := range acct.Balances {
		if b.Asset != asset {
			continue
		}
		free, _ := strconv.ParseFloat(b.Free, 64)
		locked, _ := strconv.ParseFloat(b.Locked, 64)
		return models.Balance{Asset: asset, Free: free, Locked: locked}, nil
	}
	return models.Balance{Asset: asset}, nil
}

var _ ExchangeClient = (*BinanceClient)(nil)

// String implements fmt.Stringer without exposing credentials.
func (c *BinanceClient) String() string {
	return fmt.Sprintf("binance(%s)", c.baseURL)
}
