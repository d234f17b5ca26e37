package postgres

import (
	"context"
	"fmt"
	"time"

	"fx-signal-lab/internal/domain"
	"fx-signal-lab/internal/storage"
)

// TuningStore implements storage.TuningStore using PostgreSQL.
type TuningStore struct {
	pool *Pool
}

// NewTuningStore creates a new TuningStore.
func NewTuningStore(pool *Pool) *TuningStore {
	return &TuningStore{pool: pool}
}

// Compile-time interface check.
var _ storage.TuningStore = (*TuningStore)(nil)

const tuningColumns = `
	currency, dokyaku_deviation_pips, dokyaku_min_confidence,
	ikikaeri_body_ratio, ikikaeri_update_pips, ikikaeri_pause_factor,
	momi_range_pips, overshoot_vol_factor, overshoot_min_conf, pip_size
`

// Upsert inserts or replaces the tuning for its currency pair.
func (s *TuningStore) Upsert(ctx context.Context, t domain.JudgmentTuning) (err error) {
	start := time.Now()
	defer func() { observe("tuning_upsert", start, err) }()

	if t.Currency == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO judgment_tunings (` + tuningColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (currency) DO UPDATE SET
			dokyaku_deviation_pips = EXCLUDED.dokyaku_deviation_pips,
			dokyaku_min_confidence = EXCLUDED.dokyaku_min_confidence,
			ikikaeri_body_ratio = EXCLUDED.ikikaeri_body_ratio,
			ikikaeri_update_pips = EXCLUDED.ikikaeri_update_pips,
			ikikaeri_pause_factor = EXCLUDED.ikikaeri_pause_factor,
			momi_range_pips = EXCLUDED.momi_range_pips,
			overshoot_vol_factor = EXCLUDED.overshoot_vol_factor,
			overshoot_min_conf = EXCLUDED.overshoot_min_conf,
			pip_size = EXCLUDED.pip_size,
			updated_at = now()
	`

	_, err = s.pool.Exec(ctx, query,
		t.Currency,
		t.DokyakuDeviationPips,
		t.DokyakuMinConfidence,
		t.IkikaeriBodyRatio,
		t.IkikaeriUpdatePips,
		t.IkikaeriPauseFactor,
		t.MomiRangePips,
		t.OvershootVolFactor,
		t.OvershootMinConf,
		t.PipSize,
	)
	if err != nil {
		return fmt.Errorf("upsert tuning: %w", err)
	}
	return nil
}

// GetByCurrency retrieves the tuning for a pair. Returns ErrNotFound if
// the pair has no stored tuning.
func (s *TuningStore) GetByCurrency(ctx context.Context, pair string) (t domain.JudgmentTuning, err error) {
	start := time.Now()
	defer func() { observe("tuning_get", start, err) }()

	query := `SELECT ` + tuningColumns + ` FROM judgment_tunings WHERE currency = $1`

	err = s.pool.QueryRow(ctx, query, pair).Scan(
		&t.Currency,
		&t.DokyakuDeviationPips,
		&t.DokyakuMinConfidence,
		&t.IkikaeriBodyRatio,
		&t.IkikaeriUpdatePips,
		&t.IkikaeriPauseFactor,
		&t.MomiRangePips,
		&t.OvershootVolFactor,
		&t.OvershootMinConf,
		&t.PipSize,
	)
	if err != nil {
		if isNotFoundError(err) {
			return domain.JudgmentTuning{}, storage.ErrNotFound
		}
		return domain.JudgmentTuning{}, fmt.Errorf("get tuning: %w", err)
	}
	return t, nil
}

// List retrieves all stored tunings ordered by currency pair.
func (s *TuningStore) List(ctx context.Context) (result []domain.JudgmentTuning, err error) {
	start := time.Now()
	defer func() { observe("tuning_list", start, err) }()

	query := `SELECT ` + tuningColumns + ` FROM judgment_tunings ORDER BY currency ASC`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list tunings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var t domain.JudgmentTuning
		if err := rows.Scan(
			&t.Currency,
			&t.DokyakuDeviationPips,
			&t.DokyakuMinConfidence,
			&t.IkikaeriBodyRatio,
			&t.IkikaeriUpdatePips,
			&t.IkikaeriPauseFactor,
			&t.MomiRangePips,
			&t.OvershootVolFactor,
			&t.OvershootMinConf,
			&t.PipSize,
		); err != nil {
			return nil, fmt.Errorf("scan tuning: %w", err)
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tunings: %w", err)
	}
	return result, nil
}
