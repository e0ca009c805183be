package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestSweepRecorder(t *testing.T) {
	successBefore := testutil.ToFloat64(ActivationSweepsTotal.WithLabelValues("success"))
	errorBefore := testutil.ToFloat64(ActivationSweepsTotal.WithLabelValues("error"))
	activatedBefore := testutil.ToFloat64(MeetingsActivatedTotal)

	var rec SweepRecorder
	rec.SweepCompleted(3, 20*time.Millisecond, nil)
	rec.SweepCompleted(0, 5*time.Millisecond, errors.New("db down"))

	if got := testutil.ToFloat64(ActivationSweepsTotal.WithLabelValues("success")) - successBefore; got != 1 {
		t.Errorf("success sweeps = %v, want 1", got)
	}
	if got := testutil.ToFloat64(ActivationSweepsTotal.WithLabelValues("error")) - errorBefore; got != 1 {
		t.Errorf("error sweeps = %v, want 1", got)
	}
	if got := testutil.ToFloat64(MeetingsActivatedTotal) - activatedBefore; got != 3 {
		t.Errorf("activated = %v, want 3", got)
	}
}

func TestRecordStorageOperation(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		result string
	}{
		{name: "success", result: "success"},
		{name: "failure", err: errors.New("timeout"), result: "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := testutil.ToFloat64(StorageOperations.WithLabelValues("put_object", tt.result))
			RecordStorageOperation("put_object", 10*time.Millisecond, tt.err)
			if got := testutil.ToFloat64(StorageOperations.WithLabelValues("put_object", tt.result)) - before; got != 1 {
				t.Errorf("storage ops(%s) delta = %v, want 1", tt.result, got)
			}
		})
	}
}

func TestRecordPubSub(t *testing.T) {
	before := testutil.ToFloat64(PubSubMessages.WithLabelValues("publish", "error"))
	RecordPubSub("publish", errors.New("closed"))
	if got := testutil.ToFloat64(PubSubMessages.WithLabelValues("publish", "error")) - before; got != 1 {
		t.Errorf("pubsub errors delta = %v, want 1", got)
	}
}

func TestEchoMiddleware(t *testing.T) {
	e := echo.New()
	e.Use(EchoMiddleware())
	e.GET("/meetings/:id", func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	})
	e.GET("/boom", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusTeapot, "no")
	})

	okBefore := testutil.ToFloat64(APIRequestsTotal.WithLabelValues(http.MethodGet, "/meetings/:id", "204"))
	errBefore := testutil.ToFloat64(APIRequestsTotal.WithLabelValues(http.MethodGet, "/boom", "418"))

	for _, path := range []string{"/meetings/1", "/meetings/2", "/boom"} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	}

	if got := testutil.ToFloat64(APIRequestsTotal.WithLabelValues(http.MethodGet, "/meetings/:id", "204")) - okBefore; got != 2 {
		t.Errorf("route template count = %v, want 2", got)
	}
	if got := testutil.ToFloat64(APIRequestsTotal.WithLabelValues(http.MethodGet, "/boom", "418")) - errBefore; got != 1 {
		t.Errorf("http error count = %v, want 1", got)
	}
}
