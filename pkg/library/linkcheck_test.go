package library

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/coolbeans/lexnav/pkg/eurlex"
)

type fakeValidator struct {
	mu       sync.Mutex
	results  map[string]*eurlex.ValidationResult
	failures map[string]error
	inFlight int32
	peak     int32
}

func (validator *fakeValidator) ValidateURI(ctx context.Context, uri string) (*eurlex.ValidationResult, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	current := atomic.AddInt32(&validator.inFlight, 1)
	defer atomic.AddInt32(&validator.inFlight, -1)

	validator.mu.Lock()
	if current > validator.peak {
		validator.peak = current
	}
	result, err := validator.results[uri], validator.failures[uri]
	validator.mu.Unlock()

	time.Sleep(5 * time.Millisecond)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return &eurlex.ValidationResult{URI: uri, Valid: true, StatusCode: 200}, nil
	}
	return result, nil
}

func TestCheckLinks(t *testing.T) {
	entries := []*LawEntry{
		{Key: "ok", SourceURL: "https://example.test/ok"},
		{Key: "gone", SourceURL: "https://example.test/gone"},
		{Key: "down", SourceURL: "https://example.test/down"},
		{Key: "broken", SourceURL: "https://example.test/broken"},
		{Key: "unlinked"},
	}
	validator := &fakeValidator{
		results: map[string]*eurlex.ValidationResult{
			"https://example.test/gone": {Valid: false, StatusCode: 404},
			"https://example.test/down": {Valid: false, Error: "connection refused"},
		},
		failures: map[string]error{
			"https://example.test/broken": errors.New("bad request"),
		},
	}

	report := CheckLinks(context.Background(), validator, entries, 2)

	expected := []LinkStatus{LinkValid, LinkInvalid, LinkError, LinkError, LinkSkipped}
	for i, status := range expected {
		if report.Results[i].Key != entries[i].Key {
			t.Errorf("result %d: key %q, want %q", i, report.Results[i].Key, entries[i].Key)
		}
		if report.Results[i].Status != status {
			t.Errorf("%s: status %q, want %q", entries[i].Key, report.Results[i].Status, status)
		}
	}
	if report.Results[1].StatusCode != 404 {
		t.Errorf("gone: status code %d", report.Results[1].StatusCode)
	}
	if report.Results[2].Error != "connection refused" {
		t.Errorf("down: error %q", report.Results[2].Error)
	}
	if !report.Results[0].IsSuccess() || report.Results[1].IsSuccess() {
		t.Error("IsSuccess disagrees with status")
	}
	if report.Valid != 1 || report.Invalid != 1 || report.Errors != 2 || report.Skipped != 1 {
		t.Errorf("report counts: %+v", report)
	}
	if validator.peak > 2 {
		t.Errorf("concurrency exceeded: peak %d", validator.peak)
	}
}

func TestCheckLinks_DerivedLinks(t *testing.T) {
	validator := &fakeValidator{}
	report := CheckLinks(context.Background(), validator, DefaultCatalogue(), 0)

	if report.Valid != len(DefaultCatalogue()) {
		t.Errorf("Expected every catalogue link checked, got %+v", report)
	}
	for _, result := range report.Results {
		if result.URI == "" {
			t.Errorf("%s: no link resolved", result.Key)
		}
	}
}

func TestCheckLinks_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	entries := []*LawEntry{{Key: "a", SourceURL: "https://example.test/a"}}
	report := CheckLinks(ctx, &fakeValidator{}, entries, 1)

	if report.Results[0].Status != LinkError {
		t.Errorf("unexpected status %q", report.Results[0].Status)
	}
}
