package validation

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"testing"

	"listforge/internal/catalog"
	"listforge/internal/services"
)

type doerFunc func(req *http.Request) (*http.Response, error)

func (f doerFunc) Do(req *http.Request) (*http.Response, error) { return f(req) }

func TestValidateDecodesReport(t *testing.T) {
	body := `{
		"status": "warnings",
		"summary_counts": {"warnings": 2, "errors": 0},
		"items": [
			{"severity": "warning", "model_id": 11, "model_name": "A-1", "message": "placeholder image"},
			{"severity": "warning", "model_id": 12, "model_name": "A-2", "message": "missing gallery image"},
			{"severity": "error", "model_id": 13, "message": "no price"}
		]
	}`
	client := NewClient(Config{BaseURL: "http://validate.local"}, doerFunc(func(req *http.Request) (*http.Response, error) {
		if req.URL.Path != "/exports/validate" {
			t.Fatalf("unexpected path: %s", req.URL.Path)
		}
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(bytes.NewReader([]byte(body))),
		}, nil
	}))

	report, err := client.Validate(context.Background(), []int64{11, 12, 13}, catalog.ListingIndividual)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if report.Summary.Warnings != 2 || len(report.Items) != 3 {
		t.Fatalf("unexpected report: %+v", report)
	}
	warnings := report.Warnings()
	if len(warnings) != 2 || warnings[0].Message != "placeholder image" {
		t.Fatalf("unexpected warnings: %+v", warnings)
	}
}

func TestValidateSurfacesHTTPFailure(t *testing.T) {
	client := NewClient(Config{BaseURL: "http://validate.local"}, doerFunc(func(req *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusInternalServerError,
			Body:       io.NopCloser(bytes.NewReader(nil)),
		}, nil
	}))

	_, err := client.Validate(context.Background(), []int64{1}, catalog.ListingIndividual)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
}

func TestValidateRequiresBaseURL(t *testing.T) {
	client := NewClient(Config{}, doerFunc(func(req *http.Request) (*http.Response, error) {
		t.Fatal("no request expected")
		return nil, nil
	}))

	_, err := client.Validate(context.Background(), []int64{1}, catalog.ListingIndividual)
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestReportWarningsNilSafe(t *testing.T) {
	var report *Report
	if report.Warnings() != nil {
		t.Fatal("nil report should yield no warnings")
	}
}
