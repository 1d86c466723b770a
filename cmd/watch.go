package cmd

import (
	"context"

	"go.uber.org/zap"

	"github.com/rafeeqops/rafeeq/engine"
	"github.com/rafeeqops/rafeeq/model"
)

// runWatch consumes display events headlessly and logs them, one line per
// reading. count limits the number of readings (0 = run until interrupted
// or the source is exhausted).
func runWatch(ctx context.Context, mon *engine.Monitor, logger *zap.Logger, count int, runDone <-chan struct{}) error {
	seen := 0
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-runDone:
			return nil
		case ev := <-mon.Events():
			switch ev.Kind {
			case model.DisplayVitals:
				fields := []zap.Field{
					zap.Int("num", ev.ReadingNum),
					zap.Int("hr", ev.Reading.HeartRate),
					zap.Int("spo2", ev.Reading.SpO2),
					zap.Float64("temp", ev.Reading.Temperature),
					zap.Int("score", ev.Assess.Score),
					zap.String("emotion", ev.Assess.Emotion.String()),
				}
				if ev.Unstable != "" {
					fields = append(fields, zap.String("unstable", ev.Unstable))
				}
				logger.Info("reading", fields...)
				seen++
				if count > 0 && seen >= count {
					return nil
				}

			case model.DisplayAlert:
				logger.Warn("alert dispatched",
					zap.String("alert", ev.Alert.String()),
					zap.Bool("auto", ev.Auto),
					zap.String("sid", ev.CallSID),
					zap.Int("calls_total", ev.CallsMade),
					zap.String("emotion", ev.Assess.Emotion.String()),
				)

			case model.DisplayCallFailed:
				logger.Error("alert call failed",
					zap.String("alert", ev.Alert.String()),
					zap.Bool("auto", ev.Auto),
					zap.String("status", ev.Status),
				)
			}
		}
	}
}
