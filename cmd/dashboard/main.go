package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"SignalBoard/internal/api"
	"SignalBoard/internal/config"
	"SignalBoard/internal/feed"
	"SignalBoard/internal/logging"
	"SignalBoard/internal/model"
	"SignalBoard/internal/notify"
	"SignalBoard/internal/portfolio"
	"SignalBoard/internal/recorder"
	"SignalBoard/internal/scheduler"
	"SignalBoard/internal/trade"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	_ = godotenv.Load()

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		logrus.WithError(err).Fatal("load config")
	}
	if err := cfg.Validate(); err != nil {
		logrus.WithError(err).Fatal("config validation")
	}

	log := logging.New(logging.Config{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})
	log.Info("SignalBoard starting...")

	// Service client
	client := api.NewClient(cfg.Service.BaseURL, cfg.Service.APIKey, cfg.Proxy, cfg.ServiceTimeout())
	log.WithField("service", cfg.Service.BaseURL).Info("signal service configured")

	// Notification center; the CLI renders transitions as they happen.
	center := notify.NewCenter(func(msg string) {
		if msg != "" {
			fmt.Printf("*** %s\n", msg)
		}
	})
	defer center.Close()

	// Trade journal
	var journal recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath, log)
		if err != nil {
			log.WithError(err).Warn("init sqlite recorder failed, using noop")
			journal = recorder.NewNoopRecorder()
		} else {
			journal = sr
			defer sr.Close()
		}
	} else {
		journal = recorder.NewNoopRecorder()
	}

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Engine components
	signals := feed.NewClient(client, log)
	poller := portfolio.NewPoller(client, log)
	submitter := trade.NewSubmitter(client, poller, center, journal, log)

	// Recurring portfolio poll
	sched := scheduler.NewScheduler(ctx, poller, log)
	if err := sched.Register(cfg.PollInterval()); err != nil {
		log.WithError(err).Fatal("register poll task")
	}
	sched.Start()
	defer sched.Stop()

	// Command loop
	done := make(chan struct{})
	go func() {
		defer close(done)
		runCommands(ctx, signals, poller, submitter)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
		log.Info("shutdown signal received, stopping...")
	case <-done:
	}
	cancel()
	log.Info("SignalBoard stopped")
}

const usage = `commands:
  signal                refresh the signal feed
  history               show the signal history (newest first)
  positions             refresh and show positions + account totals
  buy <TICKER> <USD>    submit a buy order
  sell <TICKER> <USD>   submit a sell order
  quit`

func runCommands(ctx context.Context, signals *feed.Client, poller *portfolio.Poller, submitter *trade.Submitter) {
	fmt.Println(usage)
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "signal":
			n, err := signals.Refresh(ctx)
			if err != nil {
				fmt.Printf("signal fetch failed: %v\n", err)
				continue
			}
			fmt.Printf("%d new signal(s)\n", n)
			for i, sig := range signals.History() {
				if i >= n {
					break
				}
				fmt.Print(formatSignal(sig))
			}
		case "history":
			hist := signals.History()
			if len(hist) == 0 {
				fmt.Println("no signals yet")
			}
			for _, sig := range hist {
				fmt.Print(formatSignal(sig))
			}
		case "positions":
			_ = poller.Refresh(ctx)
			fmt.Print(formatSnapshot(poller.Snapshot()))
		case "buy", "sell":
			if len(fields) != 3 {
				fmt.Println(usage)
				continue
			}
			side := model.SideBuy
			if fields[0] == "sell" {
				side = model.SideSell
			}
			submitter.SetTicker(fields[1])
			submitter.SetAmount(fields[2])
			// Success and failure are both reported through the
			// notification center.
			_ = submitter.Submit(ctx, side)
		case "quit", "exit":
			return
		default:
			fmt.Println(usage)
		}
	}
}

func formatSignal(sig model.MarketSignal) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s | %s\n", sig.Timestamp, strings.ToUpper(sig.Sentiment), sig.Summary)
	for _, rec := range sig.Recommendations {
		if rec.Ticker != "" {
			fmt.Fprintf(&b, "    %s: %s\n", rec.Ticker, rec.Action)
		} else {
			fmt.Fprintf(&b, "    %s\n", rec.Action)
		}
	}
	return b.String()
}

func formatSnapshot(snap model.PortfolioSnapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "equity $%.2f | cash $%.2f | buying power $%.2f | unrealized P/L $%.2f\n",
		snap.Account.Equity, snap.Account.Cash, snap.Account.BuyingPower, snap.Account.TotalUnrealizedPL)
	if len(snap.Positions) == 0 {
		b.WriteString("no open positions\n")
		return b.String()
	}
	for _, p := range snap.Positions {
		fmt.Fprintf(&b, "%-6s qty %.2f @ $%.2f | value $%.2f | P/L $%.2f (%.2f%%) | today %+.2f%%\n",
			p.Symbol, p.Qty, p.PricePerShare, p.MarketValue,
			p.UnrealizedPL, p.UnrealizedPLPct*100, p.ChangeTodayPct*100)
	}
	return b.String()
}
