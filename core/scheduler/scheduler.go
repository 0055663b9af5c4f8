package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/kilianp07/carewatch/core/logger"
	"github.com/kilianp07/carewatch/core/model"
	"github.com/kilianp07/carewatch/core/simulation"
)

// Stepper is the part of the simulation engine driven by the Controller.
type Stepper interface {
	Tick() simulation.TickResult
	Reset() simulation.TickResult
}

// Observer is notified after every completed tick, including the tick
// performed by a reset. Calls happen on the ticking goroutine.
type Observer interface {
	OnTick(res simulation.TickResult)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(simulation.TickResult)

// OnTick implements Observer.
func (f ObserverFunc) OnTick(res simulation.TickResult) { f(res) }

// Controller runs a Stepper on a ticker.
type Controller struct {
	engine Stepper
	log    logger.Logger

	mu        sync.Mutex
	interval  time.Duration
	running   bool
	observers []Observer

	stepMu  sync.Mutex
	restart chan struct{}
}

// NewController returns a running controller ticking every interval.
// The ticker only starts once Run is called.
func NewController(engine Stepper, interval time.Duration, log logger.Logger) (*Controller, error) {
	if engine == nil {
		return nil, fmt.Errorf("%w: engine is required", model.ErrInvalidConfiguration)
	}
	if interval <= 0 {
		return nil, fmt.Errorf("%w: tick interval must be positive, got %s", model.ErrInvalidConfiguration, interval)
	}
	if log == nil {
		log = logger.Nop{}
	}
	return &Controller{
		engine:   engine,
		log:      log,
		interval: interval,
		running:  true,
		restart:  make(chan struct{}, 1),
	}, nil
}

// AddObserver registers o for tick notifications.
func (c *Controller) AddObserver(o Observer) {
	if o == nil {
		return
	}
	c.mu.Lock()
	c.observers = append(c.observers, o)
	c.mu.Unlock()
}

// Run ticks the engine until ctx is cancelled. Pause, Resume, SetInterval
// and Reset take effect without restarting Run.
func (c *Controller) Run(ctx context.Context) error {
	c.log.Infof("scheduler started, interval %s", c.Interval())
	for {
		running, interval := c.snapshot()
		var ticker *time.Ticker
		var tick <-chan time.Time
		if running {
			ticker = time.NewTicker(interval)
			tick = ticker.C
		}
		stop := func() {
			if ticker != nil {
				ticker.Stop()
			}
		}
	loop:
		for {
			select {
			case <-ctx.Done():
				stop()
				c.log.Infof("scheduler stopped")
				return nil
			case <-c.restart:
				stop()
				break loop
			case <-tick:
				c.scheduledTick()
			}
		}
	}
}

// Tick performs one step immediately and notifies observers.
func (c *Controller) Tick() simulation.TickResult {
	c.stepMu.Lock()
	defer c.stepMu.Unlock()
	res := c.engine.Tick()
	c.notify(res)
	return res
}

// scheduledTick steps only while running. The flag is read under stepMu so
// a ticker value already buffered when Pause returns is dropped.
func (c *Controller) scheduledTick() {
	c.stepMu.Lock()
	defer c.stepMu.Unlock()
	if !c.Running() {
		return
	}
	c.notify(c.engine.Tick())
}

// Pause stops scheduling further ticks. An in-flight tick completes.
func (c *Controller) Pause() {
	c.mu.Lock()
	changed := c.running
	c.running = false
	c.mu.Unlock()
	if changed {
		c.log.Infof("scheduler paused")
		c.signal()
	}
}

// Resume restarts scheduling after Pause.
func (c *Controller) Resume() {
	c.mu.Lock()
	changed := !c.running
	c.running = true
	c.mu.Unlock()
	if changed {
		c.log.Infof("scheduler resumed")
		c.signal()
	}
}

// SetInterval changes the tick cadence. History is kept.
func (c *Controller) SetInterval(d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("%w: tick interval must be positive, got %s", model.ErrInvalidConfiguration, d)
	}
	c.mu.Lock()
	c.interval = d
	c.mu.Unlock()
	c.log.Infof("tick interval set to %s", d)
	c.signal()
	return nil
}

// Reset delegates to the engine and restarts the cadence when running.
func (c *Controller) Reset() simulation.TickResult {
	c.stepMu.Lock()
	res := c.engine.Reset()
	c.notify(res)
	c.stepMu.Unlock()
	if c.Running() {
		c.signal()
	}
	return res
}

// Running reports whether ticks are being scheduled.
func (c *Controller) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// Interval returns the current tick cadence.
func (c *Controller) Interval() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.interval
}

func (c *Controller) snapshot() (bool, time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running, c.interval
}

func (c *Controller) notify(res simulation.TickResult) {
	c.mu.Lock()
	obs := make([]Observer, len(c.observers))
	copy(obs, c.observers)
	c.mu.Unlock()
	for _, o := range obs {
		o.OnTick(res)
	}
}

func (c *Controller) signal() {
	select {
	case c.restart <- struct{}{}:
	default:
	}
}
