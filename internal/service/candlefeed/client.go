package candlefeed

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"Conflux/internal/domain/models"
	drepo "Conflux/internal/domain/repository"
	applogger "Conflux/pkg/logger"

	"github.com/gorilla/websocket"
)

// Client implements a CandleStream backed by a WebSocket kline feed.
type Client struct {
	websocketURL   string
	symbols        []string
	timeframes     []string
	reconnectDelay time.Duration
	pingInterval   time.Duration
	log            *applogger.Logger

	conn      *websocket.Conn
	connected bool
}

// New creates a new WebSocket CandleStream.
func New(websocketURL string, symbols, timeframes []string, reconnectDelay, pingInterval time.Duration, log *applogger.Logger) drepo.CandleStream {
	return &Client{
		websocketURL:   websocketURL,
		symbols:        symbols,
		timeframes:     timeframes,
		reconnectDelay: reconnectDelay,
		pingInterval:   pingInterval,
		log:            log,
	}
}

// Connect establishes the WebSocket connection.
func (c *Client) Connect(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.websocketURL, nil)
	if err != nil {
		return fmt.Errorf("candlefeed connect: %w", err)
	}
	c.conn = conn
	c.connected = true
	c.log.Info("candlefeed: connected", applogger.String("url", c.websocketURL))
	return nil
}

// Subscribe subscribes to kline channels for all configured symbols and timeframes.
func (c *Client) Subscribe(ctx context.Context) error {
	if c.conn == nil || !c.connected {
		return fmt.Errorf("candlefeed not connected")
	}
	for _, s := range c.symbols {
		for _, tf := range c.timeframes {
			msg := map[string]string{"type": "subscribe", "symbol": s, "interval": tf}
			if err := c.conn.WriteJSON(msg); err != nil {
				return fmt.Errorf("subscribe %s %s: %w", s, tf, err)
			}
			c.log.Info("candlefeed: subscribed",
				applogger.String("symbol", s),
				applogger.String("interval", tf),
			)
		}
	}
	return nil
}

type wsCandle struct {
	S string  `json:"s"`
	I string  `json:"i"`
	T int64   `json:"t"` // close time, ms
	O float64 `json:"o"`
	H float64 `json:"h"`
	L float64 `json:"l"`
	C float64 `json:"c"`
	V float64 `json:"v"`
	X bool    `json:"x"` // candle closed
}

type wsMessage struct {
	Type string     `json:"type"`
	Data []wsCandle `json:"data"`
}

// Read streams closed candles and errors. Open candles are skipped; only the
// final print of a bar enters the engine.
func (c *Client) Read(ctx context.Context) (<-chan *models.StreamCandle, <-chan error) {
	candles := make(chan *models.StreamCandle, 1024)
	errs := make(chan error, 1)

	// ping loop
	go func() {
		ticker := time.NewTicker(c.pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if c.conn != nil {
					_ = c.conn.WriteMessage(websocket.PingMessage, nil)
				}
			}
		}
	}()

	// read loop
	go func() {
		defer close(candles)
		defer close(errs)
		for {
			select {
			case <-ctx.Done():
				return
			default:
				if c.conn == nil {
					errs <- fmt.Errorf("candlefeed conn nil")
					return
				}
				_, b, err := c.conn.ReadMessage()
				if err != nil {
					errs <- fmt.Errorf("candlefeed read: %w", err)
					return
				}
				var m wsMessage
				if err := json.Unmarshal(b, &m); err != nil {
					// ignore non-kline frames
					continue
				}
				if m.Type != "kline" {
					continue
				}
				for _, d := range m.Data {
					if !d.X {
						continue
					}
					sc := &models.StreamCandle{
						Symbol:    d.S,
						Timeframe: d.I,
						Candle: models.Candle{
							Timestamp: time.UnixMilli(d.T),
							Open:      d.O,
							High:      d.H,
							Low:       d.L,
							Close:     d.C,
							Volume:    d.V,
						},
					}
					select {
					case candles <- sc:
					default:
						// drop on backpressure
					}
				}
			}
		}
	}()

	return candles, errs
}

// Reconnect closes and reconnects.
func (c *Client) Reconnect(ctx context.Context) error {
	_ = c.Close()
	time.Sleep(c.reconnectDelay)
	if err := c.Connect(ctx); err != nil {
		return err
	}
	return c.Subscribe(ctx)
}

// Close closes the WS connection.
func (c *Client) Close() error {
	c.connected = false
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// IsConnected indicates status.
func (c *Client) IsConnected() bool { return c.connected }
