// Package main runs the evaluation server: it builds the node graph,
// consumes the market-data feed, and serves signal read-outs plus health
// and Prometheus metrics over HTTP.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fx-signal-lab/internal/config"
	"fx-signal-lab/internal/domain"
	"fx-signal-lab/internal/engine"
	"fx-signal-lab/internal/feed"
	"fx-signal-lab/internal/graph"
	"fx-signal-lab/internal/importer"
	"fx-signal-lab/internal/judge"
	"fx-signal-lab/internal/observability"
	"fx-signal-lab/internal/pkgid"
	"fx-signal-lab/internal/storage"
	chstore "fx-signal-lab/internal/storage/clickhouse"
	"fx-signal-lab/internal/storage/memory"
	"fx-signal-lab/internal/storage/migrations"
	pgstore "fx-signal-lab/internal/storage/postgres"
)

var currencies = []pkgid.Currency{
	pkgid.CurrencyUSDJPY,
	pkgid.CurrencyEURUSD,
	pkgid.CurrencyEURJPY,
}

// stores holds the storage implementations the server runs against.
type stores struct {
	tuning  storage.TuningStore
	defs    storage.GraphDefStore
	signals storage.SignalStore
	runs    storage.EvaluationRunStore
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Flags override the environment.
	httpAddr := flag.String("http-addr", cfg.HTTPAddr, "HTTP listen address")
	postgresDSN := flag.String("postgres-dsn", cfg.PostgresDSN, "PostgreSQL connection string (empty: in-memory)")
	clickhouseDSN := flag.String("clickhouse-dsn", cfg.ClickhouseDSN, "ClickHouse connection string (empty: in-memory)")
	feedURL := flag.String("feed-url", cfg.FeedURL, "websocket feed endpoint (empty: no live feed)")
	cacheTTL := flag.Duration("cache-ttl", cfg.CacheTTL, "value cache TTL")
	passBudget := flag.Duration("pass-budget", cfg.PassBudget, "evaluation pass deadline")
	workers := flag.Int("workers", cfg.Workers, "parallel evaluation workers (1: serial)")
	windowSize := flag.Int("window-size", cfg.WindowSize, "bars kept per rolling window")
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	st, cleanup, err := openStores(ctx, *postgresDSN, *clickhouseDSN)
	if err != nil {
		logger.Fatalf("open stores: %v", err)
	}
	defer cleanup()

	g := graph.New()
	watched, err := buildGraph(ctx, g, st)
	if err != nil {
		logger.Fatalf("build graph: %v", err)
	}
	observability.UpdateGraphSize(g.Len())
	logger.Printf("graph ready: %d nodes, %d watched", g.Len(), len(watched))

	eval := engine.NewEvaluator(g, engine.NewCache(*cacheTTL), nil)
	eval.Budget = *passBudget
	eval.Workers = *workers

	session := feed.NewSession(g, eval, nil, watched...)
	session.WindowSize = *windowSize
	session.Sink = &storeSink{signals: st.signals}
	session.Runs = &storeSink{runs: st.runs}

	srv := &http.Server{
		Addr:    *httpAddr,
		Handler: newMux(session, watched),
	}
	go func() {
		logger.Printf("HTTP listening on %s", *httpAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Printf("HTTP server error: %v", err)
		}
	}()

	if *feedURL != "" {
		src := feed.NewWSSource(*feedURL, nil, nil)
		logger.Printf("consuming feed %s", *feedURL)
		if err := session.Run(ctx, src); err != nil && !errors.Is(err, context.Canceled) {
			logger.Printf("feed stopped: %v", err)
		}
	} else {
		logger.Printf("no feed configured, serving HTTP only")
		<-ctx.Done()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Printf("HTTP shutdown: %v", err)
	}
	logger.Println("shutdown complete")
}

// openStores selects PostgreSQL/ClickHouse when DSNs are given, in-memory
// otherwise, and applies migrations on the real databases.
func openStores(ctx context.Context, postgresDSN, clickhouseDSN string) (*stores, func(), error) {
	st := &stores{
		tuning:  memory.NewTuningStore(),
		defs:    memory.NewGraphDefStore(),
		signals: memory.NewSignalStore(),
		runs:    memory.NewEvaluationRunStore(),
	}
	cleanup := func() {}

	if postgresDSN != "" {
		pool, err := pgstore.NewPool(ctx, postgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to postgres: %w", err)
		}
		if err := migrations.RunPostgres(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("migrate postgres: %w", err)
		}
		st.tuning = pgstore.NewTuningStore(pool)
		st.defs = pgstore.NewGraphDefStore(pool)
		prev := cleanup
		cleanup = func() { pool.Close(); prev() }
	}

	if clickhouseDSN != "" {
		conn, err := chstore.NewConn(ctx, clickhouseDSN)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("connect to clickhouse: %w", err)
		}
		if err := migrations.RunClickhouse(ctx, conn); err != nil {
			conn.Close()
			cleanup()
			return nil, nil, fmt.Errorf("migrate clickhouse: %w", err)
		}
		st.signals = chstore.NewSignalStore(conn)
		st.runs = chstore.NewEvaluationRunStore(conn)
		prev := cleanup
		cleanup = func() { conn.Close(); prev() }
	}

	return st, cleanup, nil
}

// buildGraph registers the standard judgment slice per currency, using
// stored tunings where present, then imports any stored graph definitions
// on top. Returns the watched judgment identifiers.
func buildGraph(ctx context.Context, g *graph.Graph, st *stores) ([]pkgid.ID, error) {
	var watched []pkgid.ID

	for _, c := range currencies {
		tuning, err := st.tuning.GetByCurrency(ctx, c.Pair())
		if errors.Is(err, storage.ErrNotFound) {
			tuning = judge.DefaultTuning(c)
		} else if err != nil {
			return nil, fmt.Errorf("load tuning for %s: %w", c.Pair(), err)
		}

		j, err := judge.Register(g, pkgid.Timeframe3Min, pkgid.PeriodCommon, c, tuning)
		if err != nil {
			return nil, fmt.Errorf("register judgments for %s: %w", c.Pair(), err)
		}
		watched = append(watched, j.All()...)
	}

	defs, err := st.defs.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load graph definitions: %w", err)
	}
	if len(defs) == 0 {
		return watched, nil
	}

	// Definition records may reference raw symbols the feed has not
	// produced yet; seed those as empty raw nodes so registration
	// resolves. The evaluator substitutes defaults until values arrive.
	recordNames := make(map[string]bool, len(defs))
	for _, d := range defs {
		recordNames[d.Name] = true
	}
	for _, c := range currencies {
		imp := importer.New(g, pkgid.PeriodCommon, c)
		for _, d := range defs {
			for _, sym := range d.InputSymbols {
				if recordNames[sym] {
					continue
				}
				if _, err := g.RegisterRawData(sym, pkgid.Timeframe(d.Timeframe), pkgid.PeriodCommon, c, nil); err != nil {
					return nil, fmt.Errorf("seed raw symbol %s: %w", sym, err)
				}
			}
		}
		ids, err := imp.Import(defs)
		if err != nil {
			return nil, fmt.Errorf("import graph definitions for %s: %w", c.Pair(), err)
		}
		watched = append(watched, ids...)
	}
	return watched, nil
}

// storeSink adapts the storage interfaces to the feed sinks.
type storeSink struct {
	signals storage.SignalStore
	runs    storage.EvaluationRunStore
}

func (s *storeSink) PublishSignal(ctx context.Context, sig domain.Signal) error {
	return s.signals.InsertBulk(ctx, []domain.SignalRecord{{
		NodeID:      sig.NodeID,
		Currency:    sig.Currency,
		Direction:   string(sig.Direction),
		Confidence:  sig.Confidence,
		EvaluatedMs: sig.EvaluatedAt.UnixMilli(),
	}})
}

func (s *storeSink) RecordRun(ctx context.Context, run domain.EvaluationRun) error {
	return s.runs.Insert(ctx, run)
}

// signalResponse is the JSON shape of one signal read-out.
type signalResponse struct {
	NodeID      string  `json:"node_id"`
	Currency    string  `json:"currency"`
	Direction   string  `json:"direction"`
	Confidence  float64 `json:"confidence"`
	EvaluatedAt string  `json:"evaluated_at"`
}

func newMux(session *feed.Session, watched []pkgid.ID) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	mux.Handle("/metrics", observability.Handler())

	mux.HandleFunc("/signal", func(w http.ResponseWriter, r *http.Request) {
		raw := r.URL.Query().Get("id")
		if raw == "" {
			writeSignals(w, session, watched)
			return
		}

		id, err := pkgid.Parse(raw)
		if err != nil {
			http.Error(w, fmt.Sprintf("bad id: %v", err), http.StatusBadRequest)
			return
		}
		writeSignals(w, session, []pkgid.ID{id})
	})

	return mux
}

func writeSignals(w http.ResponseWriter, session *feed.Session, ids []pkgid.ID) {
	out := make([]signalResponse, 0, len(ids))
	for _, id := range ids {
		sig, ok := session.Latest(id)
		if !ok {
			continue
		}
		out = append(out, signalResponse{
			NodeID:      sig.NodeID,
			Currency:    sig.Currency,
			Direction:   string(sig.Direction),
			Confidence:  sig.Confidence,
			EvaluatedAt: sig.EvaluatedAt.UTC().Format(time.RFC3339),
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(out)
}
