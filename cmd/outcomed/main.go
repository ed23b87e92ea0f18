package main

import (
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"

	"google.golang.org/grpc"

	"github.com/danielpatrickdp/census-maximizer/internal/provider"
)

// #region main
func main() {
	addr := flag.String("addr", envOr("OUTCOME_ADDR", "localhost:7070"), "listen address")
	table := flag.String("table", envOr("OUTCOME_FILE", ""), "path to YAML outcome table")
	flag.Parse()

	if *table == "" {
		fmt.Fprintln(os.Stderr, "usage: outcomed --table outcomes.yaml [--addr host:port]")
		os.Exit(2)
	}

	fp, err := provider.LoadFile(*table)
	if err != nil {
		log.Fatalf("load outcome table: %v", err)
	}

	lis, err := net.Listen("tcp", *addr)
	if err != nil {
		log.Fatalf("listen on %s: %v", *addr, err)
	}

	srv := grpc.NewServer()
	provider.RegisterOutcomeServer(srv, &provider.ProviderServer{Provider: fp})

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt)
		<-sig
		log.Println("[OUTCOMES] shutting down")
		srv.GracefulStop()
	}()

	log.Printf("[OUTCOMES] serving %d issues on %s", len(fp.IssueIDs()), lis.Addr())
	if err := srv.Serve(lis); err != nil {
		log.Fatalf("serve: %v", err)
	}
}

// #endregion main

// #region helpers
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// #endregion helpers
