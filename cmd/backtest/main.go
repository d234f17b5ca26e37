// Package main replays historical OHLC bars from a CSV file through the
// judgment graph and prints a summary of the signals produced.
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"time"

	"fx-signal-lab/internal/backtest"
	"fx-signal-lab/internal/domain"
	"fx-signal-lab/internal/engine"
	"fx-signal-lab/internal/feed"
	"fx-signal-lab/internal/graph"
	"fx-signal-lab/internal/judge"
	"fx-signal-lab/internal/pkgid"
)

var pairs = map[string]pkgid.Currency{
	"USDJPY": pkgid.CurrencyUSDJPY,
	"EURUSD": pkgid.CurrencyEURUSD,
	"EURJPY": pkgid.CurrencyEURJPY,
}

func main() {
	csvPath := flag.String("csv", "", "CSV file of bars: time,open,high,low,close (RFC3339 time)")
	pair := flag.String("pair", "USDJPY", "currency pair")
	timeframe := flag.Int("timeframe", int(pkgid.Timeframe3Min), "timeframe code")
	windowSize := flag.Int("window-size", feed.DefaultWindowSize, "bars kept per rolling window")
	cacheTTL := flag.Duration("cache-ttl", time.Minute, "value cache TTL")
	flag.Parse()

	logger := log.New(os.Stderr, "[backtest] ", log.LstdFlags)

	if *csvPath == "" {
		logger.Fatal("--csv is required")
	}
	currency, ok := pairs[*pair]
	if !ok {
		logger.Fatalf("unknown pair %q", *pair)
	}

	updates, err := loadBars(*csvPath, pkgid.Timeframe(*timeframe), currency)
	if err != nil {
		logger.Fatalf("load bars: %v", err)
	}
	logger.Printf("loaded %d bars from %s", len(updates), *csvPath)

	g := graph.New()
	j, err := judge.Register(g, pkgid.Timeframe(*timeframe), pkgid.PeriodCommon, currency, judge.DefaultTuning(currency))
	if err != nil {
		logger.Fatalf("build graph: %v", err)
	}

	eval := engine.NewEvaluator(g, engine.NewCache(*cacheTTL), nil)
	session := feed.NewSession(g, eval, nil, j.All()...)
	session.WindowSize = *windowSize

	results, err := backtest.NewRunner(session).Run(context.Background(), updates)
	if err != nil {
		logger.Fatalf("replay: %v", err)
	}

	fmt.Print(results.Summary())
}

// loadBars reads bar updates from a CSV file. A header row is skipped when
// the first field does not parse as a time.
func loadBars(path string, tf pkgid.Timeframe, c pkgid.Currency) ([]domain.RawUpdate, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = 5

	var updates []domain.RawUpdate
	line := 0
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		line++

		at, err := time.Parse(time.RFC3339, rec[0])
		if err != nil {
			if line == 1 {
				continue // header
			}
			return nil, fmt.Errorf("line %d: bad time %q: %w", line, rec[0], err)
		}

		var ohlc [4]float64
		for i := 0; i < 4; i++ {
			v, err := strconv.ParseFloat(rec[i+1], 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: bad price %q: %w", line, rec[i+1], err)
			}
			ohlc[i] = v
		}

		updates = append(updates, domain.RawUpdate{
			Symbol:    judge.BarSymbol,
			Timeframe: tf,
			Period:    pkgid.PeriodCommon,
			Currency:  c,
			Bar:       &domain.Bar{Time: at, Open: ohlc[0], High: ohlc[1], Low: ohlc[2], Close: ohlc[3]},
			Time:      at,
		})
	}
	return updates, nil
}
