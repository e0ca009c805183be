package storage

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
)

type fakeStore struct {
	putFailures int
	putCalls    int
	objects     map[string][]byte
}

func (s *fakeStore) PutObject(_ context.Context, name string, data []byte, _ string) error {
	s.putCalls++
	if s.putFailures > 0 {
		s.putFailures--
		return errors.New("connection reset")
	}
	if s.objects == nil {
		s.objects = make(map[string][]byte)
	}
	s.objects[name] = data
	return nil
}

func (s *fakeStore) PresignedURL(_ context.Context, name string, _ time.Duration) (string, error) {
	return "https://minio.test/reports-bucket/" + name + "?X-Amz-Signature=abc", nil
}

func newTestArchiver(store ObjectStore) *ReportArchiver {
	a := NewReportArchiver(store, 15*time.Minute, nil)
	a.baseDelay = time.Millisecond
	a.now = func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) }
	return a
}

func TestArchive_Success(t *testing.T) {
	store := &fakeStore{}
	a := newTestArchiver(store)

	report, err := a.Archive(context.Background(), "reports/m1/final-stats-1.json", []byte(`{"ok":true}`))
	if err != nil {
		t.Fatalf("Archive: %v", err)
	}
	if string(store.objects["reports/m1/final-stats-1.json"]) != `{"ok":true}` {
		t.Errorf("stored payload = %q", store.objects["reports/m1/final-stats-1.json"])
	}
	if !strings.Contains(report.URL, "final-stats-1.json") {
		t.Errorf("url = %q", report.URL)
	}
	if want := time.Date(2025, 3, 1, 12, 15, 0, 0, time.UTC); !report.ExpiresAt.Equal(want) {
		t.Errorf("expiresAt = %v, want %v", report.ExpiresAt, want)
	}
}

func TestArchive_RetriesTransientFailures(t *testing.T) {
	store := &fakeStore{putFailures: 2}
	a := newTestArchiver(store)

	if _, err := a.Archive(context.Background(), "k", []byte("{}")); err != nil {
		t.Fatalf("Archive: %v", err)
	}
	if store.putCalls != 3 {
		t.Errorf("put calls = %d, want 3", store.putCalls)
	}
}

func TestArchive_BreakerOpensAfterRepeatedFailures(t *testing.T) {
	store := &fakeStore{putFailures: 100}
	a := newTestArchiver(store)
	a.maxRetries = 0

	for i := 0; i < 5; i++ {
		if _, err := a.Archive(context.Background(), "k", []byte("{}")); err == nil {
			t.Fatal("expected failure")
		}
	}
	calls := store.putCalls

	_, err := a.Archive(context.Background(), "k", []byte("{}"))
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Fatalf("err = %v, want open breaker", err)
	}
	if store.putCalls != calls {
		t.Error("open breaker still reached the store")
	}
}

func TestRewriteHost(t *testing.T) {
	got := rewriteHost("http://minio:9000/bucket/a.json?sig=1", "http", "minio:9000", "https://files.example.com")
	if got != "https://files.example.com/bucket/a.json?sig=1" {
		t.Errorf("rewriteHost = %q", got)
	}
}
