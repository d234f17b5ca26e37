// Package main prints the node table and evaluation order of the graph,
// for inspecting layer assignment and the effect of definition imports.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"text/tabwriter"

	"fx-signal-lab/internal/graph"
	"fx-signal-lab/internal/judge"
	"fx-signal-lab/internal/pkgid"
	"fx-signal-lab/internal/storage"
	"fx-signal-lab/internal/storage/migrations"
	pgstore "fx-signal-lab/internal/storage/postgres"
)

var pairs = map[string]pkgid.Currency{
	"USDJPY": pkgid.CurrencyUSDJPY,
	"EURUSD": pkgid.CurrencyEURUSD,
	"EURJPY": pkgid.CurrencyEURJPY,
}

func main() {
	pair := flag.String("pair", "USDJPY", "currency pair")
	timeframe := flag.Int("timeframe", int(pkgid.Timeframe3Min), "timeframe code")
	postgresDSN := flag.String("postgres-dsn", "", "load stored tuning from PostgreSQL (empty: defaults)")
	flag.Parse()

	logger := log.New(os.Stderr, "[graphdump] ", log.LstdFlags)

	currency, ok := pairs[*pair]
	if !ok {
		logger.Fatalf("unknown pair %q", *pair)
	}

	ctx := context.Background()
	tuning := judge.DefaultTuning(currency)

	if *postgresDSN != "" {
		pool, err := pgstore.NewPool(ctx, *postgresDSN)
		if err != nil {
			logger.Fatalf("connect to postgres: %v", err)
		}
		defer pool.Close()
		if err := migrations.RunPostgres(ctx, pool); err != nil {
			logger.Fatalf("migrate postgres: %v", err)
		}

		stored, err := pgstore.NewTuningStore(pool).GetByCurrency(ctx, currency.Pair())
		switch {
		case err == nil:
			tuning = stored
		case errors.Is(err, storage.ErrNotFound):
			logger.Printf("no stored tuning for %s, using defaults", currency.Pair())
		default:
			logger.Fatalf("load tuning: %v", err)
		}
	}

	g := graph.New()
	if _, err := judge.Register(g, pkgid.Timeframe(*timeframe), pkgid.PeriodCommon, currency, tuning); err != nil {
		logger.Fatalf("build graph: %v", err)
	}

	layers, err := g.Layers()
	if err != nil {
		logger.Fatalf("order graph: %v", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "LAYER\tID\tKIND\tFUNCTION\tINPUTS")
	for _, layer := range layers {
		for _, id := range layer {
			n, _ := g.Node(id)
			kind := "raw"
			funcType := "-"
			if n.Kind == graph.KindFunction {
				kind = "function"
				funcType = string(n.FuncType())
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\n", id.Layer, id, kind, funcType, len(n.Inputs))
		}
	}
	w.Flush()
}
