package store

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/mohammad-safakhou/newsreel/models"
)

func TestRecord(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	st := &Store{DB: db}
	created := time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)
	rec := models.RenderRecord{
		ID:        "prod-1",
		SessionID: "sess-1",
		Headline:  "City Council Approves New Park",
		Status:    models.RenderCompleted,
		VideoPath: "outputs/sess-1/studio_output.mp4",
		Duration:  31200 * time.Millisecond,
		Words:     58,
		ImageUsed: true,
		CreatedAt: created,
	}

	mock.ExpectExec(regexp.QuoteMeta(insertRender)).
		WithArgs("prod-1", "sess-1", rec.Headline, "completed", nil, nil, rec.VideoPath, int64(31200), 58, true, created).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := st.Record(context.Background(), rec); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestRecordMissingTable(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(insertRender)).
		WillReturnError(&pq.Error{Code: "42P01", Message: `relation "renders" does not exist`})

	err = (&Store{DB: db}).Record(context.Background(), models.RenderRecord{ID: "x", Status: models.RenderFailed})
	if !errors.Is(err, ErrNotMigrated) {
		t.Fatalf("expected ErrNotMigrated, got %v", err)
	}
}

func TestListRenders(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	cols := []string{"id", "session_id", "headline", "status", "failed_stage", "error", "video_path", "duration_ms", "words", "image_used", "created_at"}
	mock.ExpectQuery(regexp.QuoteMeta(listRenders)).
		WithArgs(50).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("prod-2", "sess-1", "Storm Moves East", "failed", "script", "openai returned status 401", nil, 0, 0, false, now).
			AddRow("prod-1", "sess-1", "City Council Approves New Park", "completed", nil, nil, "outputs/sess-1/studio_output.mp4", 31200, 58, true, now.Add(-time.Minute)))

	recs, err := (&Store{DB: db}).ListRenders(context.Background(), 0)
	if err != nil {
		t.Fatalf("ListRenders: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recs))
	}
	if recs[0].Status != models.RenderFailed || recs[0].FailedStage != "script" || recs[0].VideoPath != "" {
		t.Fatalf("unexpected failed record %+v", recs[0])
	}
	if recs[1].Duration != 31200*time.Millisecond || !recs[1].ImageUsed {
		t.Fatalf("unexpected completed record %+v", recs[1])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
