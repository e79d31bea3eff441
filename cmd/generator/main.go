// Command generator runs one synthesis batch against the external
// transaction API from the command line and prints the summary.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/banking-fraud-console/internal/batch"
	"github.com/banking-fraud-console/internal/config"
	"github.com/banking-fraud-console/internal/logger"
	"github.com/banking-fraud-console/internal/platform/txapi"
	"github.com/banking-fraud-console/internal/synth"
)

func main() {
	count := flag.Int("count", 1, "number of transactions to generate (1-100)")
	token := flag.String("token", "", "bearer token for the transaction API (optional)")
	flag.Parse()

	cfg, err := config.LoadConfig("console")
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(cfg)

	client := txapi.NewClient(log, &cfg.TxAPI, txapi.StaticToken(*token))
	source := synth.NewEnforcer(synth.NewGenerator(nil))
	orchestrator := batch.NewOrchestrator(log, source, client, cfg.Batch.Throttle)

	// SIGINT stops the run early; counts accumulated so far are still printed.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	result, err := orchestrator.Run(ctx, *count)
	if err != nil {
		if result.Succeeded+result.Failed == 0 {
			fmt.Printf("Batch run failed: %v\n", err)
			os.Exit(1)
		}
		log.Warn("batch run ended early", "error", err)
	}

	fmt.Println(result.Summary())
	if result.AllFailed() {
		os.Exit(1)
	}
}
