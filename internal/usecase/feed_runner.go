package usecase

import (
	"context"

	domrepo "Conflux/internal/domain/repository"
	"Conflux/internal/service/candlefeed"
	applogger "Conflux/pkg/logger"
)

// FeedRunner drives the engine from a live candle stream: it folds closed
// candles into rolling windows and evaluates the instrument whenever a candle
// of the trigger timeframe closes.
type FeedRunner struct {
	stream    domrepo.CandleStream
	windows   *candlefeed.Windows
	engine    *SignalEngine
	triggerTF string
	log       *applogger.Logger
}

func NewFeedRunner(stream domrepo.CandleStream, windows *candlefeed.Windows, engine *SignalEngine, triggerTF string, log *applogger.Logger) *FeedRunner {
	return &FeedRunner{
		stream:    stream,
		windows:   windows,
		engine:    engine,
		triggerTF: triggerTF,
		log:       log,
	}
}

// Run blocks until the context is cancelled or the stream ends. Stream errors
// are logged and the loop exits; the caller decides whether to reconnect.
func (r *FeedRunner) Run(ctx context.Context) error {
	if err := r.stream.Connect(ctx); err != nil {
		return err
	}
	if err := r.stream.Subscribe(ctx); err != nil {
		return err
	}

	candles, errs := r.stream.Read(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err, ok := <-errs:
			if !ok {
				return nil
			}
			r.log.Error("candle stream failed", applogger.Error(err))
			return err
		case sc, ok := <-candles:
			if !ok {
				return nil
			}
			r.windows.Add(sc)
			if sc.Timeframe != r.triggerTF {
				continue
			}
			snapshot := r.windows.Snapshot(sc.Symbol)
			sig := r.engine.GenerateSignal(ctx, snapshot)
			if sig.Execute {
				r.log.Info("signal emitted",
					applogger.String("id", sig.ID),
					applogger.String("symbol", sig.Symbol),
					applogger.String("direction", string(sig.Direction)),
					applogger.Float64("confidence", sig.Confidence),
					applogger.String("setup", sig.SetupTag),
				)
			}
		}
	}
}
