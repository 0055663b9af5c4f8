package metrics

import (
	"context"

	coremetrics "github.com/kilianp07/carewatch/core/metrics"
	"github.com/kilianp07/carewatch/infra/logger"
	"github.com/kilianp07/carewatch/internal/eventbus"
)

// StartEventCollector subscribes to the event bus and records tick and
// forecast events in sink. It stops when the context is canceled or the
// bus is closed; the returned channel is closed once it has stopped.
func StartEventCollector(ctx context.Context, bus eventbus.EventBus, sink coremetrics.MetricsSink, log logger.Logger) <-chan struct{} {
	done := make(chan struct{})
	if bus == nil || sink == nil {
		close(done)
		return done
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	sub := bus.Subscribe()
	go func() {
		defer close(done)
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				switch e := ev.(type) {
				case coremetrics.TickEvent:
					if err := sink.RecordTick(e); err != nil {
						log.Errorf("record tick %d: %v", e.Tick, err)
					}
				case coremetrics.ForecastEvent:
					if r, ok := sink.(coremetrics.ForecastRecorder); ok {
						if err := r.RecordForecast(e); err != nil {
							log.Errorf("record forecast %d: %v", e.Tick, err)
						}
					}
				}
			}
		}
	}()
	return done
}
