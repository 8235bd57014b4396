package logging

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/danielpatrickdp/adaptive-ensemble/internal/estimator"
	_ "modernc.org/sqlite"
)

// #region schema
const journalSchema = `
CREATE TABLE IF NOT EXISTS cycle_log (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	cycle_id      TEXT NOT NULL,
	qihao         TEXT,
	actual        INTEGER,
	sum_hit       INTEGER NOT NULL DEFAULT 0,
	cat_hit       INTEGER NOT NULL DEFAULT 0,
	decision      TEXT NOT NULL,
	reason        TEXT,
	weights_json  TEXT,
	created_at    TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS estimator_outcomes (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	cycle_id      TEXT NOT NULL,
	estimator     TEXT NOT NULL,
	predicted     INTEGER NOT NULL,
	actual        INTEGER NOT NULL,
	hit           INTEGER NOT NULL DEFAULT 0,
	created_at    TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_estimator_outcomes_name ON estimator_outcomes(estimator);
`

// halfLifeHours is the recency half-life used by EstimatorStats.
const halfLifeHours = 7.0 * 24.0

// #endregion schema

// #region journal
// Journal records cycle decisions and per-estimator outcomes in SQLite.
type Journal struct {
	db    *sql.DB
	owned bool
}

// NewJournal creates the journal tables in db. The caller keeps ownership of db.
func NewJournal(db *sql.DB) (*Journal, error) {
	if _, err := db.Exec(journalSchema); err != nil {
		return nil, fmt.Errorf("migrate journal: %w", err)
	}
	return &Journal{db: db}, nil
}

// OpenJournal opens (or creates) a SQLite journal file.
func OpenJournal(path string) (*Journal, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	j, err := NewJournal(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	j.owned = true
	return j, nil
}

// Close closes the database if the journal opened it.
func (j *Journal) Close() error {
	if !j.owned {
		return nil
	}
	return j.db.Close()
}

// #endregion journal

// #region log-cycle
// LogCycle writes one cycle_log row.
func (j *Journal) LogCycle(ctx context.Context, entry CycleEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	var actual interface{}
	if entry.Actual != nil {
		actual = *entry.Actual
	}

	_, err := j.db.ExecContext(ctx,
		`INSERT INTO cycle_log (cycle_id, qihao, actual, sum_hit, cat_hit, decision, reason, weights_json, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.CycleID,
		nullIfEmpty(entry.Qihao),
		actual,
		boolInt(entry.SumHit),
		boolInt(entry.CatHit),
		entry.Decision,
		nullIfEmpty(entry.Reason),
		nullIfEmpty(entry.WeightsJSON),
		entry.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("log cycle: %w", err)
	}
	return nil
}

// Recent returns the newest cycle_log rows, newest first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]CycleEntry, error) {
	rows, err := j.db.QueryContext(ctx,
		`SELECT cycle_id, qihao, actual, sum_hit, cat_hit, decision, reason, weights_json, created_at
		 FROM cycle_log ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list cycles: %w", err)
	}
	defer rows.Close()

	var entries []CycleEntry
	for rows.Next() {
		var e CycleEntry
		var qihao, reason, weights sql.NullString
		var actual sql.NullInt64
		var sumHit, catHit int
		var created string
		if err := rows.Scan(&e.CycleID, &qihao, &actual, &sumHit, &catHit, &e.Decision, &reason, &weights, &created); err != nil {
			return nil, fmt.Errorf("scan cycle: %w", err)
		}
		e.Qihao = qihao.String
		e.Reason = reason.String
		e.WeightsJSON = weights.String
		if actual.Valid {
			v := int(actual.Int64)
			e.Actual = &v
		}
		e.SumHit = sumHit == 1
		e.CatHit = catHit == 1
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// #endregion log-cycle

// #region outcomes
// RecordOutcomes stores one estimator_outcomes row per estimator.
func (j *Journal) RecordOutcomes(ctx context.Context, cycleID string, est estimator.Estimates, actual int, at time.Time) error {
	if at.IsZero() {
		at = time.Now().UTC()
	}
	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for name, predicted := range est {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO estimator_outcomes (cycle_id, estimator, predicted, actual, hit, created_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			cycleID, name, predicted, actual, boolInt(predicted == actual), at.Format(time.RFC3339Nano),
		)
		if err != nil {
			return fmt.Errorf("record outcome %s: %w", name, err)
		}
	}
	return tx.Commit()
}

// EstimatorStats returns per-estimator hit rates, sorted by name. The weighted
// rate discounts each outcome by its age relative to now.
func (j *Journal) EstimatorStats(ctx context.Context, now time.Time) ([]EstimatorStat, error) {
	rows, err := j.db.QueryContext(ctx, `SELECT estimator, hit, created_at FROM estimator_outcomes`)
	if err != nil {
		return nil, fmt.Errorf("query outcomes: %w", err)
	}
	defer rows.Close()

	type accum struct {
		samples     int
		hits        int
		weightedHit float64
		totalWeight float64
	}
	acc := make(map[string]*accum)

	for rows.Next() {
		var name, created string
		var hit int
		if err := rows.Scan(&name, &hit, &created); err != nil {
			return nil, fmt.Errorf("scan outcome: %w", err)
		}
		at, err := time.Parse(time.RFC3339Nano, created)
		if err != nil {
			continue
		}
		weight := math.Exp2(-now.Sub(at).Hours() / halfLifeHours)

		a, ok := acc[name]
		if !ok {
			a = &accum{}
			acc[name] = a
		}
		a.samples++
		a.hits += hit
		a.weightedHit += float64(hit) * weight
		a.totalWeight += weight
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	stats := make([]EstimatorStat, 0, len(acc))
	for name, a := range acc {
		st := EstimatorStat{
			Name:    name,
			Samples: a.samples,
			Hits:    a.hits,
			HitRate: float64(a.hits) / float64(a.samples),
		}
		if a.totalWeight > 0 {
			st.WeightedRate = a.weightedHit / a.totalWeight
		}
		stats = append(stats, st)
	}
	sort.Slice(stats, func(i, k int) bool { return stats[i].Name < stats[k].Name })
	return stats, nil
}

// #endregion outcomes

// #region helpers
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// #endregion helpers
