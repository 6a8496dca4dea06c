package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"CandlePull/internal/domain/models"
	domrepo "CandlePull/internal/domain/repository"
	mid "CandlePull/internal/middleware"
	"CandlePull/internal/service/binance"
	applogger "CandlePull/pkg/logger"
)

// Transport modes.
const (
	TransportWS   = "ws"
	TransportREST = "rest"
	TransportAuto = "auto"
)

// SupervisorState tracks the streaming lifecycle.
type SupervisorState string

const (
	StateStopped        SupervisorState = "Stopped"
	StateStartingWS     SupervisorState = "StartingWS"
	StateRunningWS      SupervisorState = "RunningWS"
	StateStartingREST   SupervisorState = "StartingREST"
	StateRunningREST    SupervisorState = "RunningREST"
	StateFailedTerminal SupervisorState = "FailedTerminal"
)

const shutdownGrace = 5 * time.Second

// StreamFactory builds the transport producers. Indirection keeps the
// supervisor testable with fake streams.
type StreamFactory interface {
	NewWS(failFast bool) domrepo.BarStream
	NewREST() domrepo.BarStream
}

// Supervisor keeps exactly one active 1m bar producer running for the
// configured symbol set and forwards every finalised bar to the aggregator.
// In auto mode a WS producer exit triggers a one-shot REST failover; the
// latch guarantees the fallback happens at most once per process lifetime.
type Supervisor struct {
	transport string
	factory   StreamFactory
	pipeline  *mid.IngestPipeline
	metrics   domrepo.Metrics
	l         *applogger.Logger

	mu                    sync.Mutex
	state                 SupervisorState
	activeTransport       string
	restFallbackTriggered bool

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewSupervisor(transport string, factory StreamFactory, pipeline *mid.IngestPipeline, metrics domrepo.Metrics, l *applogger.Logger) *Supervisor {
	switch transport {
	case TransportWS, TransportREST, TransportAuto:
	default:
		l.Warn("invalid transport, defaulting to auto", applogger.String("transport", transport))
		transport = TransportAuto
	}
	return &Supervisor{
		transport: transport,
		factory:   factory,
		pipeline:  pipeline,
		metrics:   metrics,
		l:         l,
		state:     StateStopped,
	}
}

// Start launches the configured transport. It returns immediately; producers
// run until Stop or a terminal failure.
func (s *Supervisor) Start(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)

	s.mu.Lock()
	if s.state != StateStopped {
		s.mu.Unlock()
		cancel()
		return fmt.Errorf("supervisor already started")
	}
	s.cancel = cancel
	s.mu.Unlock()

	switch s.transport {
	case TransportREST:
		s.startREST(runCtx)
	default: // ws and auto both open with the WS producer
		s.startWS(runCtx)
	}
	return nil
}

func (s *Supervisor) startWS(ctx context.Context) {
	failFast := s.transport == TransportAuto
	s.setState(StateStartingWS, TransportWS)

	stream := s.factory.NewWS(failFast)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.consume(ctx, stream, TransportWS)
		s.onWSExit(ctx)
	}()
}

func (s *Supervisor) startREST(ctx context.Context) {
	s.setState(StateStartingREST, TransportREST)

	stream := s.factory.NewREST()
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.consume(ctx, stream, TransportREST)
	}()
}

// onWSExit applies the state machine edge for a WS producer exit: terminal in
// ws mode, one-shot REST fallback in auto mode. Clean shutdown is a no-op.
func (s *Supervisor) onWSExit(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	s.mu.Lock()
	if s.transport == TransportWS {
		s.state = StateFailedTerminal
		s.mu.Unlock()
		s.l.Error("websocket producer failed; no fallback in ws mode")
		return
	}
	if s.restFallbackTriggered {
		s.mu.Unlock()
		return
	}
	s.restFallbackTriggered = true
	s.mu.Unlock()

	s.l.Warn("websocket producer exited; falling back to rest polling")
	s.startREST(ctx)
}

// consume drains one producer, forwarding bars through the ingest pipeline.
// Any producer error is contained here; it never propagates past the
// supervisor.
func (s *Supervisor) consume(ctx context.Context, stream domrepo.BarStream, transport string) {
	bars, errs := stream.Run(ctx)
	running := false

	for {
		select {
		case <-ctx.Done():
			return
		case err, ok := <-errs:
			if !ok {
				errs = nil
				if bars == nil {
					return
				}
				continue
			}
			if err != nil {
				s.metrics.RecordError("stream_" + transport)
				if errors.Is(err, binance.ErrUnavailable) {
					s.l.Warn("stream unavailable", applogger.String("transport", transport), applogger.Error(err))
				} else {
					s.l.Error("stream error", applogger.String("transport", transport), applogger.Error(err))
				}
			}
		case bar, ok := <-bars:
			if !ok {
				bars = nil
				if errs == nil {
					return
				}
				continue
			}
			if bar == nil {
				continue
			}
			if !running {
				running = true
				if transport == TransportWS {
					s.setState(StateRunningWS, TransportWS)
				} else {
					s.setState(StateRunningREST, TransportREST)
				}
			}
			s.handleBar(ctx, transport, bar)
		}
	}
}

func (s *Supervisor) handleBar(ctx context.Context, transport string, bar *models.Bar) {
	if err := s.pipeline.Process(ctx, transport, bar); err != nil {
		s.l.Warn("bar dropped",
			applogger.String("transport", transport),
			applogger.String("symbol", bar.Symbol),
			applogger.Error(err),
		)
	}
}

// Stop cancels all producers and waits up to the grace period for them to
// exit. A clean stop never triggers the REST fallback.
func (s *Supervisor) Stop() error {
	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()
	if cancel == nil {
		return nil
	}
	cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(shutdownGrace):
		s.l.Warn("producers did not exit within grace period")
	}

	s.mu.Lock()
	s.state = StateStopped
	s.activeTransport = ""
	s.mu.Unlock()
	return nil
}

func (s *Supervisor) setState(state SupervisorState, transport string) {
	s.mu.Lock()
	s.state = state
	s.activeTransport = transport
	s.mu.Unlock()
}

// State returns the current lifecycle state.
func (s *Supervisor) State() SupervisorState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// ActiveTransport reports which transport currently produces bars.
func (s *Supervisor) ActiveTransport() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeTransport
}

// RestFallbackTriggered reports whether the one-shot WS to REST failover has
// fired.
func (s *Supervisor) RestFallbackTriggered() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.restFallbackTriggered
}
