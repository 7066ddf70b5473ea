package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"solarb/internal/domain"
)

// maxConsecutiveErrors is the scan-failure ceiling. When this many scans in a
// row fail to produce a decision the engine shuts itself down rather than
// hammer a broken upstream.
const maxConsecutiveErrors = 5

// Status is a point-in-time snapshot of the engine for the control surface.
type Status struct {
	Running    bool              `json:"isRunning"`
	Config     *domain.BotConfig `json:"config,omitempty"`
	LastScanAt *time.Time        `json:"lastScanTime,omitempty"`
	ErrorCount int               `json:"errorCount"`
}

// Engine owns the scan loop: one active configuration, one scan at a time.
// Start and Stop may be called from any goroutine.
type Engine struct {
	evaluator   *Evaluator
	executor    Executor
	recorder    *Recorder
	broadcaster *Broadcaster
	chain       domain.ChainClient
	logger      *slog.Logger

	mu       sync.Mutex
	running  bool
	cfg      *domain.BotConfig
	lastScan *time.Time
	errCount int
	cancel   context.CancelFunc
}

// New assembles an Engine from its collaborators.
func New(evaluator *Evaluator, executor Executor, recorder *Recorder, broadcaster *Broadcaster, chain domain.ChainClient, logger *slog.Logger) *Engine {
	return &Engine{
		evaluator:   evaluator,
		executor:    executor,
		recorder:    recorder,
		broadcaster: broadcaster,
		chain:       chain,
		logger:      logger.With(slog.String("component", "engine")),
	}
}

// Start activates the loop for cfg. It scans once immediately and then on the
// config's interval. Returns domain.ErrAlreadyRunning if a loop is active,
// and domain.ErrWalletLoadFailed (wrapped) if live mode is requested with an
// unusable key; either rejection is also broadcast as a status event with
// the error message.
func (e *Engine) Start(ctx context.Context, cfg *domain.BotConfig) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.running {
		e.broadcaster.BotStatus(ctx, domain.BotStatusPayload{
			IsRunning:    true,
			ConfigID:     e.cfg.ID,
			ErrorMessage: domain.ErrAlreadyRunning.Error(),
		})
		return domain.ErrAlreadyRunning
	}

	if !cfg.MockMode {
		if err := e.chain.LoadWallet(cfg.PrivateKey); err != nil {
			e.broadcaster.BotStatus(ctx, domain.BotStatusPayload{
				IsRunning:    false,
				ConfigID:     cfg.ID,
				ErrorMessage: "wallet load failed: " + err.Error(),
			})
			return fmt.Errorf("engine: start: %w", err)
		}
	}

	// The loop outlives the Start caller's request context. Stop is the
	// only way to cancel it.
	runCtx, cancel := context.WithCancel(context.Background())

	e.running = true
	e.cfg = cfg
	e.lastScan = nil
	e.errCount = 0
	e.cancel = cancel

	e.logger.InfoContext(ctx, "engine started",
		slog.String("config_id", cfg.ID),
		slog.Bool("mock_mode", cfg.MockMode),
		slog.Duration("interval", cfg.ScanInterval()),
	)
	e.broadcaster.BotStatus(ctx, domain.BotStatusPayload{IsRunning: true, ConfigID: cfg.ID})

	go e.run(runCtx, cfg)
	return nil
}

// Stop deactivates the loop. An in-flight scan finishes on its own; Stop only
// prevents further ticks. Stopping an idle engine is a no-op.
func (e *Engine) Stop(ctx context.Context) error {
	return e.stop(ctx, "")
}

func (e *Engine) stop(ctx context.Context, errMsg string) error {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return nil
	}
	cfgID := e.cfg.ID
	e.running = false
	e.cancel()
	e.cancel = nil
	e.mu.Unlock()

	e.logger.InfoContext(ctx, "engine stopped",
		slog.String("config_id", cfgID),
		slog.String("reason", reasonOrManual(errMsg)),
	)
	e.broadcaster.BotStatus(ctx, domain.BotStatusPayload{
		IsRunning:    false,
		ConfigID:     cfgID,
		ErrorMessage: errMsg,
	})
	return nil
}

func reasonOrManual(errMsg string) string {
	if errMsg == "" {
		return "manual"
	}
	return errMsg
}

// Status reports the loop state. The config is copied so callers cannot
// mutate the engine's view of it.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()

	st := Status{
		Running:    e.running,
		ErrorCount: e.errCount,
	}
	if e.cfg != nil {
		cfg := *e.cfg
		cfg.PrivateKey = ""
		st.Config = &cfg
	}
	if e.lastScan != nil {
		t := *e.lastScan
		st.LastScanAt = &t
	}
	return st
}

// run is the loop body: scan now, then re-arm the timer only after each scan
// returns, so scans never overlap even when one outruns the interval.
func (e *Engine) run(ctx context.Context, cfg *domain.BotConfig) {
	interval := cfg.ScanInterval()
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		// The scan itself is never cancelled mid-flight; a submitted
		// trade must run to a terminal state.
		e.scan(context.Background(), cfg)

		select {
		case <-ctx.Done():
			return
		default:
		}
		timer.Reset(interval)
	}
}

// scan runs one tick: price the round trip, decide, maybe trade, and manage
// the consecutive-error budget.
func (e *Engine) scan(ctx context.Context, cfg *domain.BotConfig) {
	now := time.Now().UTC()
	e.mu.Lock()
	e.lastScan = &now
	e.mu.Unlock()

	opp, err := e.evaluator.Evaluate(ctx, cfg)
	if err != nil {
		e.mu.Lock()
		e.errCount++
		count := e.errCount
		e.mu.Unlock()

		e.logger.ErrorContext(ctx, "scan failed",
			slog.String("config_id", cfg.ID),
			slog.Int("consecutive_errors", count),
			slog.Any("error", err),
		)
		if count >= maxConsecutiveErrors {
			msg := fmt.Sprintf("stopped after %d consecutive scan errors: %v", count, err)
			_ = e.stop(ctx, msg)
		}
		return
	}

	if opp == nil {
		// No route this tick. Not a failure, not a success: the error
		// budget is left where it is.
		e.logger.DebugContext(ctx, "no route", slog.String("config_id", cfg.ID))
		return
	}

	e.mu.Lock()
	e.errCount = 0
	e.mu.Unlock()

	// Below-threshold ticks leave no record behind; an unprofitable round
	// trip is a non-event, not an opportunity.
	if opp.ProfitPct < cfg.ProfitThreshold {
		e.logger.DebugContext(ctx, "below threshold",
			slog.String("config_id", cfg.ID),
			slog.Float64("profit_pct", opp.ProfitPct),
			slog.Float64("threshold", cfg.ProfitThreshold),
		)
		return
	}

	e.recorder.SaveOpportunity(ctx, opp)
	e.broadcaster.Opportunity(ctx, opp)
	e.executeTrade(ctx, cfg, opp)
}

// executeTrade runs one round trip to a terminal state and records both the
// trade row and the opportunity linkage. Execution failures are terminal for
// the trade but never touch the scan error budget.
func (e *Engine) executeTrade(ctx context.Context, cfg *domain.BotConfig, opp *domain.Opportunity) {
	trade := &domain.Trade{
		ID:         uuid.NewString(),
		ConfigID:   cfg.ID,
		TokenA:     cfg.TokenASymbol,
		TokenB:     cfg.TokenBSymbol,
		AmountIn:   opp.AmountRequired,
		Status:     domain.TradePending,
		ExecutedAt: time.Now().UTC(),
		IsMock:     cfg.MockMode,
	}
	e.recorder.SaveTrade(ctx, trade)
	e.broadcaster.Trade(ctx, trade)

	res, err := e.executor.ExecuteRoundTrip(ctx, cfg, opp)
	if err != nil {
		trade.Status = domain.TradeFailed
		trade.ErrorMessage = err.Error()
		e.logger.ErrorContext(ctx, "trade failed",
			slog.String("trade_id", trade.ID),
			slog.Any("error", err),
		)
	} else {
		trade.Status = domain.TradeCompleted
		trade.AmountOut = res.AmountOut
		trade.Profit = res.Profit
		trade.ProfitPct = res.ProfitPct
		trade.TxSignature = res.TxSignature
		opp.WasExecuted = true
		opp.TradeID = &trade.ID
		e.recorder.MarkOpportunityExecuted(ctx, opp.ID, trade.ID)
		e.logger.InfoContext(ctx, "trade completed",
			slog.String("trade_id", trade.ID),
			slog.String("signature", res.TxSignature),
			slog.Int64("profit", res.Profit),
			slog.Float64("profit_pct", res.ProfitPct),
		)
	}

	e.recorder.UpdateTrade(ctx, trade)
	e.broadcaster.Trade(ctx, trade)
}
