package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"ai-contentgen-be/internal/config"
	"ai-contentgen-be/pkg/events"
	pktNats "ai-contentgen-be/pkg/nats"

	"github.com/fatih/color"
)

// Tails ledger and risk events from JetStream for on-call operators.
func main() {
	durable := flag.String("durable", "incident-watch", "JetStream durable consumer name")
	all := flag.Bool("all", false, "print every event type, not only incidents")
	flag.Parse()

	cfg := config.Load()
	sub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		color.Red("Failed to connect to NATS: %v", err)
		os.Exit(1)
	}
	defer sub.Close()

	types := []string{events.TypeLedgerInconsistency, events.TypeAccountFlagged}
	if *all {
		types = nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = sub.Subscribe(ctx, *durable, types, func(_ context.Context, e events.Event) error {
		printEvent(e)
		return nil
	})
	if err != nil {
		color.Red("Subscribe failed: %v", err)
		os.Exit(1)
	}

	color.Cyan("Watching %s (Ctrl+C to stop)", cfg.App.NatsURL)
	<-ctx.Done()
}

func printEvent(e events.Event) {
	data := e.Payload()
	ts := e.Timestamp().Format("2006-01-02 15:04:05")

	switch e.EventType() {
	case events.TypeLedgerInconsistency:
		color.Red("[%s] UNBILLED generation=%v account=%v tool=%v cost=%v cause=%v",
			ts, data["generation_id"], data["account_id"], data["tool_name"], data["cost"], data["cause"])
	case events.TypeAccountFlagged:
		color.Yellow("[%s] FLAGGED account=%v tool=%v window=%v retry_after=%vs",
			ts, data["account_id"], data["tool_name"], data["window"], data["retry_after_secs"])
	default:
		color.White("[%s] %s %v", ts, e.EventType(), data)
	}
}
