package logging

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielpatrickdp/adaptive-ensemble/internal/estimator"
)

// #region helpers
func tempJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := OpenJournal(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("OpenJournal: %v", err)
	}
	t.Cleanup(func() { j.Close() })
	return j
}

// #endregion helpers

// #region log-cycle-tests
func TestLogCycle_RoundTrip(t *testing.T) {
	j := tempJournal(t)
	ctx := context.Background()

	actual := 12
	err := j.LogCycle(ctx, CycleEntry{
		CycleID:     "c1",
		Qihao:       "3012345",
		Actual:      &actual,
		SumHit:      true,
		Decision:    DecisionScored,
		Reason:      "hits: [lcg]",
		WeightsJSON: `{"lcg":1.3}`,
		CreatedAt:   time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("LogCycle: %v", err)
	}
	if err := j.LogCycle(ctx, CycleEntry{CycleID: "c2", Decision: DecisionRejected}); err != nil {
		t.Fatalf("LogCycle: %v", err)
	}

	entries, err := j.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].CycleID != "c2" {
		t.Fatalf("expected newest first, got %s", entries[0].CycleID)
	}
	if entries[0].Actual != nil || entries[0].Qihao != "" {
		t.Fatalf("expected NULL actual and qihao, got %+v", entries[0])
	}
	if entries[0].CreatedAt.IsZero() {
		t.Fatal("expected auto-filled created_at")
	}

	first := entries[1]
	if first.Actual == nil || *first.Actual != 12 {
		t.Fatalf("expected actual 12, got %v", first.Actual)
	}
	if !first.SumHit || first.CatHit {
		t.Fatalf("unexpected hit flags %+v", first)
	}
	if first.WeightsJSON != `{"lcg":1.3}` {
		t.Fatalf("unexpected weights json %q", first.WeightsJSON)
	}
}

func TestLogCycle_Error(t *testing.T) {
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "x.db"))
	if err != nil {
		t.Fatal(err)
	}
	j, err := NewJournal(db)
	if err != nil {
		t.Fatalf("NewJournal: %v", err)
	}
	db.Close() // close to force error

	if err := j.LogCycle(context.Background(), CycleEntry{CycleID: "c", Decision: DecisionFailed}); err == nil {
		t.Fatal("expected error on closed db")
	}
}

func TestNewJournalDoesNotOwnDB(t *testing.T) {
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "shared.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	j, err := NewJournal(db)
	if err != nil {
		t.Fatalf("NewJournal: %v", err)
	}
	j.Close()
	if err := db.Ping(); err != nil {
		t.Fatalf("shared db closed by journal: %v", err)
	}
}

// #endregion log-cycle-tests

// #region outcome-tests
func TestEstimatorStats(t *testing.T) {
	j := tempJournal(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	est := estimator.Estimates{estimator.NameLCG: 5, estimator.NameVMD: 9}
	if err := j.RecordOutcomes(ctx, "c1", est, 5, now); err != nil {
		t.Fatalf("RecordOutcomes: %v", err)
	}
	if err := j.RecordOutcomes(ctx, "c2", est, 9, now); err != nil {
		t.Fatalf("RecordOutcomes: %v", err)
	}
	if err := j.RecordOutcomes(ctx, "c3", est, 1, now); err != nil {
		t.Fatalf("RecordOutcomes: %v", err)
	}

	stats, err := j.EstimatorStats(ctx, now)
	if err != nil {
		t.Fatalf("EstimatorStats: %v", err)
	}
	if len(stats) != 2 {
		t.Fatalf("expected 2 estimators, got %d", len(stats))
	}
	if stats[0].Name != estimator.NameLCG || stats[1].Name != estimator.NameVMD {
		t.Fatalf("expected sorted names, got %s, %s", stats[0].Name, stats[1].Name)
	}
	for _, st := range stats {
		if st.Samples != 3 || st.Hits != 1 {
			t.Fatalf("%s: expected 1/3, got %d/%d", st.Name, st.Hits, st.Samples)
		}
		if st.WeightedRate < 0.33 || st.WeightedRate > 0.34 {
			t.Fatalf("%s: expected weighted rate ~1/3, got %f", st.Name, st.WeightedRate)
		}
	}
}

func TestEstimatorStatsRecencyWeighting(t *testing.T) {
	j := tempJournal(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	est := estimator.Estimates{estimator.NameLagrange: 4}
	// old hit, fresh miss
	if err := j.RecordOutcomes(ctx, "old", est, 4, now.Add(-30*24*time.Hour)); err != nil {
		t.Fatal(err)
	}
	if err := j.RecordOutcomes(ctx, "new", est, 8, now); err != nil {
		t.Fatal(err)
	}

	stats, err := j.EstimatorStats(ctx, now)
	if err != nil {
		t.Fatal(err)
	}
	if stats[0].HitRate != 0.5 {
		t.Fatalf("expected raw rate 0.5, got %f", stats[0].HitRate)
	}
	if stats[0].WeightedRate >= 0.5 {
		t.Fatalf("expected old hit to count less, got %f", stats[0].WeightedRate)
	}
}

// #endregion outcome-tests

// #region logger-tests
func TestParseLevel(t *testing.T) {
	cases := map[string]string{
		"debug":   "DEBUG",
		"WARN":    "WARN",
		"warning": "WARN",
		"error":   "ERROR",
		"":        "INFO",
		"bogus":   "INFO",
	}
	for in, want := range cases {
		if got := ParseLevel(in).String(); got != want {
			t.Errorf("ParseLevel(%q) = %s, want %s", in, got, want)
		}
	}
}

// #endregion logger-tests
