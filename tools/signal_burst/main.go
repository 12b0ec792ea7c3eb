// Command signal_burst fires concurrent identical signals at a running
// tradeguard and reports how many orders went through. With per-ticker
// serialization off, more than one approved BUY shows the read-then-act race.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type payload struct {
	Ticker     string `json:"ticker"`
	Action     string `json:"action"`
	Test       bool   `json:"test"`
	Passphrase string `json:"passphrase,omitempty"`
}

func main() {
	var (
		targetURL  string
		ticker     string
		action     string
		signals    int
		test       bool
		passphrase string
		timeout    time.Duration
	)

	flag.StringVar(&targetURL, "url", "http://localhost:8080/webhook", "webhook URL")
	flag.StringVar(&ticker, "ticker", "IMNM", "ticker to send")
	flag.StringVar(&action, "action", "BUY", "BUY or SELL")
	flag.IntVar(&signals, "n", 10, "number of concurrent signals")
	flag.BoolVar(&test, "test", true, "send signals in test mode")
	flag.StringVar(&passphrase, "passphrase", os.Getenv("TRADEGUARD_PASSPHRASE"), "webhook passphrase")
	flag.DurationVar(&timeout, "timeout", 30*time.Second, "per-request timeout")
	flag.Parse()

	logger, _ := zap.NewDevelopment()
	defer func() { _ = logger.Sync() }()

	if signals <= 0 {
		logger.Fatal("invalid signal count", zap.Int("n", signals))
	}

	body, err := json.Marshal(payload{Ticker: ticker, Action: action, Test: test, Passphrase: passphrase})
	if err != nil {
		logger.Fatal("failed to encode payload", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := &http.Client{Timeout: timeout}

	var (
		mu     sync.Mutex
		counts = make(map[string]int)
	)

	start := time.Now()
	ready := make(chan struct{})
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < signals; i++ {
		g.Go(func() error {
			<-ready
			req, err := http.NewRequestWithContext(gctx, http.MethodPost, targetURL, bytes.NewReader(body))
			if err != nil {
				return err
			}
			req.Header.Set("Content-Type", "application/json")

			resp, err := client.Do(req)
			if err != nil {
				mu.Lock()
				counts["transport error"]++
				mu.Unlock()
				logger.Warn("request failed", zap.Error(err))
				return nil
			}
			text, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
			_ = resp.Body.Close()

			key := fmt.Sprintf("%d %s", resp.StatusCode, text)
			mu.Lock()
			counts[key]++
			mu.Unlock()
			return nil
		})
	}
	close(ready)

	if err := g.Wait(); err != nil {
		logger.Fatal("burst aborted", zap.Error(err))
	}

	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Printf("sent %d signals in %s\n", signals, time.Since(start).Truncate(time.Millisecond))
	for _, k := range keys {
		fmt.Printf("%5d  %s\n", counts[k], k)
	}
}
