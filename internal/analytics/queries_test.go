package analytics

import (
	"math"
	"path/filepath"
	"testing"
	"time"

	"whackamole/internal/db"
)

func newTestQueries(t *testing.T) (*Queries, *db.DB) {
	t.Helper()
	database, err := db.Connect("sqlite://" + filepath.Join(t.TempDir(), "analytics.db"))
	if err != nil {
		t.Fatalf("Connect() error: %v", err)
	}
	if err := database.Migrate(); err != nil {
		t.Fatalf("Migrate() error: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return NewQueries(database), database
}

func seedRound(t *testing.T, database *db.DB, id, code string, score, hits, misses int, reason string, reactions ...int) {
	t.Helper()
	now := time.Now()
	if err := database.RecordRound(db.RoundRecord{
		ID: id, SessionCode: code, Round: 1, Score: score, Hits: hits, Misses: misses,
		EndReason: reason, StartedAt: now.Add(-time.Minute), EndedAt: now,
	}); err != nil {
		t.Fatal(err)
	}
	var clicks []db.ClickEvent
	for i, ms := range reactions {
		clicks = append(clicks, db.ClickEvent{RoundID: id, SessionCode: code, CellID: i + 1, Hit: true, ReactionMs: ms, ClickedAt: now})
	}
	for i := 0; i < misses; i++ {
		clicks = append(clicks, db.ClickEvent{RoundID: id, SessionCode: code, CellID: 1, Hit: false, ClickedAt: now})
	}
	if len(clicks) > 0 {
		if err := database.BatchRecordClicks(clicks); err != nil {
			t.Fatal(err)
		}
	}
}

func TestSummary_Empty(t *testing.T) {
	q, _ := newTestQueries(t)

	s, err := q.Summary()
	if err != nil {
		t.Fatalf("Summary() error: %v", err)
	}
	if s.Rounds != 0 || s.Hits != 0 || s.HitRate != 0 {
		t.Errorf("empty summary = %+v", s)
	}
	if len(s.EndReasons) != 0 {
		t.Errorf("EndReasons = %v, want empty", s.EndReasons)
	}
}

func TestSummary_AllSessions(t *testing.T) {
	q, database := newTestQueries(t)
	seedRound(t, database, "r1", "ABCD", 3, 3, 1, "time_up", 300, 400, 500)
	seedRound(t, database, "r2", "WXYZ", 1, 1, 6, "out_of_lives", 200)

	s, err := q.Summary()
	if err != nil {
		t.Fatal(err)
	}
	if s.Rounds != 2 {
		t.Errorf("Rounds = %d, want 2", s.Rounds)
	}
	if s.Hits != 4 || s.Misses != 7 {
		t.Errorf("Hits, Misses = %d, %d; want 4, 7", s.Hits, s.Misses)
	}
	if s.AvgScore != 2 {
		t.Errorf("AvgScore = %v, want 2", s.AvgScore)
	}
	if s.AvgReactionMs != 350 {
		t.Errorf("AvgReactionMs = %v, want 350", s.AvgReactionMs)
	}
	if s.BestReactionMs != 200 {
		t.Errorf("BestReactionMs = %d, want 200", s.BestReactionMs)
	}
	if want := 4.0 / 11.0 * 100; math.Abs(s.HitRate-want) > 0.001 {
		t.Errorf("HitRate = %v, want %v", s.HitRate, want)
	}
	if s.EndReasons["time_up"] != 1 || s.EndReasons["out_of_lives"] != 1 {
		t.Errorf("EndReasons = %v", s.EndReasons)
	}
}

func TestSessionSummary_FiltersByCode(t *testing.T) {
	q, database := newTestQueries(t)
	seedRound(t, database, "r1", "ABCD", 3, 3, 1, "time_up", 300, 400, 500)
	seedRound(t, database, "r2", "WXYZ", 1, 1, 6, "out_of_lives", 200)

	s, err := q.SessionSummary("ABCD")
	if err != nil {
		t.Fatal(err)
	}
	if s.SessionCode != "ABCD" {
		t.Errorf("SessionCode = %q, want ABCD", s.SessionCode)
	}
	if s.Rounds != 1 || s.Hits != 3 || s.Misses != 1 {
		t.Errorf("summary = %+v", s)
	}
	if s.AvgReactionMs != 400 {
		t.Errorf("AvgReactionMs = %v, want 400", s.AvgReactionMs)
	}
	if _, ok := s.EndReasons["out_of_lives"]; ok {
		t.Error("summary leaked another session's end reason")
	}
}
