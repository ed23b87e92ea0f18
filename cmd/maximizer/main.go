package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/danielpatrickdp/census-maximizer/internal/config"
	"github.com/danielpatrickdp/census-maximizer/internal/history"
	"github.com/danielpatrickdp/census-maximizer/internal/logging"
	"github.com/danielpatrickdp/census-maximizer/internal/nsapi"
	"github.com/danielpatrickdp/census-maximizer/internal/provider"
	"github.com/danielpatrickdp/census-maximizer/internal/resolver"
	"github.com/danielpatrickdp/census-maximizer/internal/state"
	"github.com/danielpatrickdp/census-maximizer/internal/weights"
)

// #region main
func main() {
	configPath := flag.String("config", envOr("NS_CONFIG", "census-maximizer.yaml"), "path to YAML config")
	nationFlag := flag.String("nation", "", "nation to solve issues for (overrides config and NS_NATION)")
	showHistory := flag.Bool("history", false, "print the weighted census history instead of solving issues")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	nation := envOr("NS_NATION", cfg.Nation)
	if *nationFlag != "" {
		nation = *nationFlag
	}
	if nation == "" {
		fmt.Fprintln(os.Stderr, "usage: maximizer --nation NAME [--config path] [--history]  (NS_PASSWORD, NS_CONTACT from env)")
		os.Exit(2)
	}

	table, err := cfg.Table()
	if err != nil {
		log.Fatalf("census table: %v", err)
	}
	w, err := cfg.Weights(table)
	if err != nil {
		log.Fatalf("weights: %v", err)
	}

	client, err := nsapi.NewClient(nation, os.Getenv("NS_PASSWORD"), envOr("NS_CONTACT", cfg.Contact))
	if err != nil {
		log.Fatalf("api client: %v", err)
	}
	client.WithLimiter(nsapi.NewRateLimiter(cfg.RateLimit.Requests, time.Duration(cfg.RateLimit.WindowSeconds)*time.Second))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if *showHistory {
		if err := printHistory(ctx, client, w); err != nil {
			log.Fatalf("history: %v", err)
		}
		return
	}

	if err := solve(ctx, cfg, client, w); err != nil {
		log.Fatalf("solve: %v", err)
	}
}

// #endregion main

// #region solve
func solve(ctx context.Context, cfg config.Config, client *nsapi.Client, w *weights.Model) error {
	if err := cfg.RequireOutcomeSource(); err != nil {
		return err
	}

	var prov provider.Provider
	var extraUnsolvable []int
	if cfg.OutcomeAddr != "" {
		gp, err := provider.NewGRPCProvider(cfg.OutcomeAddr)
		if err != nil {
			return fmt.Errorf("connect to outcome service at %s: %w", cfg.OutcomeAddr, err)
		}
		defer gp.Close()
		prov = gp
	} else {
		fp, err := provider.LoadFile(cfg.OutcomeFile)
		if err != nil {
			return err
		}
		prov = fp
		extraUnsolvable = fp.Unsolvable()
	}

	store, err := state.NewStore(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	opts := resolver.Options{
		Gate:  cfg.GateConfig(extraUnsolvable...),
		Eval:  cfg.EvalConfig(),
		Store: store,
	}
	if cfg.JournalDir != "" {
		journal := logging.NewJournalWriter(cfg.JournalDir, "decisions")
		defer journal.Close()
		opts.Journal = journal
	}

	sess, err := resolver.NewSession(ctx, client, prov, w, opts)
	if err != nil {
		return err
	}

	results, err := sess.ResolveAll(ctx)
	sum := resolver.Summarize(results)
	fmt.Printf("%s: %d issues, %d committed, %d dismissed, %d unresolvable\n",
		client.Name(), sum.Total, sum.Committed, sum.Dismissed, sum.Unresolvable)
	return err
}

// #endregion solve

// #region history
func printHistory(ctx context.Context, src history.Source, w *weights.Model) error {
	series, err := history.NewReconstructor().Fetch(ctx, src, nil, w)
	if err != nil {
		return err
	}
	for i, ts := range series.Timestamps {
		fmt.Printf("%s\t%.6f\n", time.Unix(ts, 0).UTC().Format("2006-01-02"), series.Scores[i])
	}
	return nil
}

// #endregion history

// #region helpers
// loadConfig reads path, falling back to defaults when the file does not exist.
func loadConfig(path string) (config.Config, error) {
	cfg, err := config.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		log.Printf("no config at %s, using defaults", path)
		return config.DefaultConfig(), nil
	}
	return cfg, err
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// #endregion helpers
