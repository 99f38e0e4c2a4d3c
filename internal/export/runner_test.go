package export

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"listforge/internal/capability"
	"listforge/internal/catalog"
	"listforge/internal/config"
	"listforge/internal/logging"
	"listforge/internal/services"
	"listforge/internal/services/validation"
	"listforge/internal/state"
	"listforge/internal/testsupport"
)

type fakeContent struct {
	calls   [][]int64
	payload []byte
	fail    func(modelIDs []int64) error
}

func (f *fakeContent) Generate(_ context.Context, modelIDs []int64, _ catalog.ListingType, _ catalog.Format) ([]byte, error) {
	f.calls = append(f.calls, modelIDs)
	if f.fail != nil {
		if err := f.fail(modelIDs); err != nil {
			return nil, err
		}
	}
	if f.payload != nil {
		return f.payload, nil
	}
	return []byte("listing-bytes"), nil
}

type fakeReadiness struct {
	calls  int
	report *validation.Report
	err    error
}

func (f *fakeReadiness) Validate(context.Context, []int64, catalog.ListingType) (*validation.Report, error) {
	f.calls++
	return f.report, f.err
}

type fakePicker struct {
	dir   string
	err   error
	picks int
}

func (f *fakePicker) Pick(context.Context) (string, error) {
	f.picks++
	if f.err != nil {
		return "", f.err
	}
	return f.dir, nil
}

type runnerFixture struct {
	runner  *Runner
	cfg     *config.Config
	store   *state.Store
	content *fakeContent
	picker  *fakePicker
	baseDir string
}

func newFixture(t *testing.T, readiness ReadinessChecker) *runnerFixture {
	t.Helper()

	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	baseDir := t.TempDir()
	content := &fakeContent{}
	picker := &fakePicker{dir: baseDir}
	gate := capability.NewGate(store, picker, logging.NewNop())
	runner := NewRunner(cfg, store, gate, content, readiness, logging.NewNop())
	return &runnerFixture{
		runner:  runner,
		cfg:     cfg,
		store:   store,
		content: content,
		picker:  picker,
		baseDir: baseDir,
	}
}

func multiSelection() *catalog.Selection {
	return &catalog.Selection{
		Manufacturer: "Acme",
		ListingType:  catalog.ListingIndividual,
		Series: []catalog.Series{
			{ID: 1, Name: "Alpha"},
			{ID: 2, Name: "Beta"},
		},
		Models: []catalog.Model{
			{ID: 1, Name: "A-100", SeriesID: 1},
			{ID: 2, Name: "A-200", SeriesID: 1},
			{ID: 3, Name: "B-100", SeriesID: 2},
		},
	}
}

func singleSelection() *catalog.Selection {
	sel := multiSelection()
	sel.Models = sel.Models[:2]
	return sel
}

func TestRunWritesAllPlanNodes(t *testing.T) {
	fx := newFixture(t, nil)

	outcome, err := fx.runner.Run(context.Background(), Request{
		Selection: multiSelection(),
		Format:    catalog.FormatXLSX,
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !outcome.Summary.AllSucceeded() {
		t.Fatalf("expected full success, got %+v", outcome.Summary)
	}
	if outcome.Summary.Total != 3 {
		t.Fatalf("expected 3 nodes, got %d", outcome.Summary.Total)
	}

	wantFiles := []string{
		filepath.Join(fx.baseDir, "Amazon", "Exports", "Acme", "Multi-Series", "Amazon-Acme-Multi_Series.xlsx"),
		filepath.Join(fx.baseDir, "Amazon", "Exports", "Acme", "Alpha", "Amazon-Acme-Alpha.xlsx"),
		filepath.Join(fx.baseDir, "Amazon", "Exports", "Acme", "Beta", "Amazon-Acme-Beta.xlsx"),
	}
	for _, path := range wantFiles {
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("expected file at %s: %v", path, err)
		}
		if string(data) != "listing-bytes" {
			t.Fatalf("unexpected content in %s: %q", path, data)
		}
	}

	run, err := fx.store.LatestRun(context.Background())
	if err != nil {
		t.Fatalf("LatestRun: %v", err)
	}
	if run == nil || run.ID != outcome.RunID {
		t.Fatalf("expected recorded run %s, got %+v", outcome.RunID, run)
	}
	results, err := fx.store.ResultsForRun(context.Background(), run.ID)
	if err != nil {
		t.Fatalf("ResultsForRun: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 persisted results, got %d", len(results))
	}
	for key, result := range results {
		if result.Status != state.ResultSuccess {
			t.Errorf("node %s: status %s, error %q", key, result.Status, result.ErrorMessage)
		}
		if !result.Verified {
			t.Errorf("node %s: not verified: %s", key, result.VerificationReason)
		}
	}
}

func TestRunSingleSeriesProducesOneFile(t *testing.T) {
	fx := newFixture(t, nil)

	outcome, err := fx.runner.Run(context.Background(), Request{Selection: singleSelection()})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if outcome.Summary.Total != 1 || outcome.Summary.Succeeded != 1 {
		t.Fatalf("expected one successful node, got %+v", outcome.Summary)
	}
	path := filepath.Join(fx.baseDir, "Amazon", "Exports", "Acme", "Alpha", "Amazon-Acme-Alpha.xlsx")
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected single-series file at %s: %v", path, err)
	}
}

func TestRunCSVFormatForcesExtension(t *testing.T) {
	fx := newFixture(t, nil)

	outcome, err := fx.runner.Run(context.Background(), Request{
		Selection: singleSelection(),
		Format:    catalog.FormatCSV,
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if got := outcome.Results[0].Result.Filename; got != "Amazon-Acme-Alpha.csv" {
		t.Fatalf("expected csv filename, got %q", got)
	}
	path := filepath.Join(fx.baseDir, "Amazon", "Exports", "Acme", "Alpha", "Amazon-Acme-Alpha.csv")
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected csv file at %s: %v", path, err)
	}
}

func TestRunRejectsDirectDownloadFormat(t *testing.T) {
	fx := newFixture(t, nil)

	_, err := fx.runner.Run(context.Background(), Request{
		Selection: multiSelection(),
		Format:    catalog.FormatXLSM,
	})
	if !errors.Is(err, ErrDirectDownload) {
		t.Fatalf("expected ErrDirectDownload, got %v", err)
	}
	// The guard fires before folder acquisition.
	if fx.picker.picks != 0 {
		t.Fatalf("picker should not run for a direct-download format, picked %d times", fx.picker.picks)
	}
	if run, _ := fx.store.LatestRun(context.Background()); run != nil {
		t.Fatal("no run should be recorded for a direct-download format")
	}
}

func TestRunCancelledPickerAbortsCleanly(t *testing.T) {
	fx := newFixture(t, nil)
	fx.picker.err = capability.ErrCancelled

	_, err := fx.runner.Run(context.Background(), Request{Selection: multiSelection()})
	if !errors.Is(err, capability.ErrCancelled) {
		t.Fatalf("expected ErrCancelled, got %v", err)
	}
	if len(fx.content.calls) != 0 {
		t.Fatal("no content should be generated after cancellation")
	}
	if run, _ := fx.store.LatestRun(context.Background()); run != nil {
		t.Fatal("no run should be recorded after cancellation")
	}
}

func TestRunEmptySelection(t *testing.T) {
	fx := newFixture(t, nil)

	_, err := fx.runner.Run(context.Background(), Request{Selection: &catalog.Selection{Manufacturer: "Acme"}})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRunRecordsNodeFailureAndContinues(t *testing.T) {
	fx := newFixture(t, nil)
	fx.content.fail = func(modelIDs []int64) error {
		for _, id := range modelIDs {
			if id == 3 {
				return errors.New("generation exploded")
			}
		}
		return nil
	}

	outcome, err := fx.runner.Run(context.Background(), Request{Selection: multiSelection()})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	// The master node aggregates model 3 and fails too; only Alpha survives.
	if outcome.Summary.Failed != 2 || outcome.Summary.Succeeded != 1 {
		t.Fatalf("expected 2 failed and 1 succeeded, got %+v", outcome.Summary)
	}

	results, err := fx.store.ResultsForRun(context.Background(), outcome.RunID)
	if err != nil {
		t.Fatalf("ResultsForRun: %v", err)
	}
	beta := results["series-2"]
	if beta.Status != state.ResultFailed || beta.ErrorMessage == "" {
		t.Fatalf("expected persisted failure for series-2, got %+v", beta)
	}
}

func TestRetrySkipsSuccessfulNodes(t *testing.T) {
	fx := newFixture(t, nil)
	fx.content.fail = func(modelIDs []int64) error {
		for _, id := range modelIDs {
			if id == 3 {
				return errors.New("generation exploded")
			}
		}
		return nil
	}

	first, err := fx.runner.Run(context.Background(), Request{Selection: multiSelection()})
	if err != nil {
		t.Fatalf("first Run failed: %v", err)
	}
	if first.Summary.Failed != 2 {
		t.Fatalf("expected 2 failures in first run, got %+v", first.Summary)
	}

	fx.content.fail = nil
	fx.content.calls = nil
	second, err := fx.runner.Run(context.Background(), Request{Retry: true})
	if err != nil {
		t.Fatalf("retry Run failed: %v", err)
	}
	if second.RunID != first.RunID {
		t.Fatalf("retry must reuse run %s, got %s", first.RunID, second.RunID)
	}
	if len(fx.content.calls) != 2 {
		t.Fatalf("expected 2 regenerated nodes, got %d", len(fx.content.calls))
	}
	if second.Summary.Skipped != 1 || second.Summary.Succeeded != 2 || second.Summary.Failed != 0 {
		t.Fatalf("unexpected retry summary %+v", second.Summary)
	}
	if !second.Summary.AllSucceeded() {
		t.Fatal("retry should complete the run")
	}
}

func TestRetryWithoutPriorRun(t *testing.T) {
	fx := newFixture(t, nil)

	_, err := fx.runner.Run(context.Background(), Request{Retry: true})
	if !errors.Is(err, ErrNoRunToRetry) {
		t.Fatalf("expected ErrNoRunToRetry, got %v", err)
	}
}

func TestReadinessWarningsSurfaced(t *testing.T) {
	readiness := &fakeReadiness{report: &validation.Report{
		Status:  "warnings",
		Summary: validation.Summary{Warnings: 1},
		Items: []validation.Finding{
			{Severity: validation.SeverityWarning, ModelID: 3, ModelName: "B-100", Message: "missing hero image"},
		},
	}}
	fx := newFixture(t, readiness)

	outcome, err := fx.runner.Run(context.Background(), Request{Selection: multiSelection()})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(outcome.Readiness) != 1 || outcome.Readiness[0].Message != "missing hero image" {
		t.Fatalf("expected surfaced warning, got %+v", outcome.Readiness)
	}
	if readiness.calls != 1 {
		t.Fatalf("expected one readiness call, got %d", readiness.calls)
	}
	if !outcome.Summary.AllSucceeded() {
		t.Fatal("warnings must not block the export")
	}
}

func TestReadinessFailureDoesNotBlockExport(t *testing.T) {
	readiness := &fakeReadiness{err: errors.New("service unreachable")}
	fx := newFixture(t, readiness)

	outcome, err := fx.runner.Run(context.Background(), Request{Selection: multiSelection()})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !outcome.Summary.AllSucceeded() {
		t.Fatalf("readiness failure must not block export, got %+v", outcome.Summary)
	}
	if len(outcome.Readiness) != 0 {
		t.Fatalf("expected no findings, got %+v", outcome.Readiness)
	}
}

func TestRetryConsultsReadinessReport(t *testing.T) {
	readiness := &fakeReadiness{report: &validation.Report{
		Status:  "warnings",
		Summary: validation.Summary{Warnings: 1},
		Items: []validation.Finding{
			{Severity: validation.SeverityWarning, ModelID: 3, ModelName: "B-100", Message: "missing hero image"},
		},
	}}
	fx := newFixture(t, readiness)
	fx.content.fail = func(modelIDs []int64) error {
		for _, id := range modelIDs {
			if id == 3 {
				return errors.New("generation exploded")
			}
		}
		return nil
	}

	if _, err := fx.runner.Run(context.Background(), Request{Selection: multiSelection()}); err != nil {
		t.Fatalf("fresh Run failed: %v", err)
	}
	if readiness.calls != 1 {
		t.Fatalf("expected one readiness call after fresh run, got %d", readiness.calls)
	}

	fx.content.fail = nil
	second, err := fx.runner.Run(context.Background(), Request{Retry: true})
	if err != nil {
		t.Fatalf("retry Run failed: %v", err)
	}
	if len(second.Readiness) != 1 || second.Readiness[0].Message != "missing hero image" {
		t.Fatalf("retry must surface readiness warnings, got %+v", second.Readiness)
	}
	// Within the TTL the retry is served from the cache.
	if readiness.calls != 1 {
		t.Fatalf("expected the retry to hit the cache, got %d calls", readiness.calls)
	}

	// A retry in a later session has no warm cache and fetches fresh.
	gate := capability.NewGate(fx.store, fx.picker, logging.NewNop())
	later := NewRunner(fx.cfg, fx.store, gate, fx.content, readiness, logging.NewNop())
	third, err := later.Run(context.Background(), Request{Retry: true})
	if err != nil {
		t.Fatalf("cross-session retry failed: %v", err)
	}
	if readiness.calls != 2 {
		t.Fatalf("expected a fresh readiness fetch, got %d calls", readiness.calls)
	}
	if len(third.Readiness) != 1 {
		t.Fatalf("cross-session retry must surface readiness warnings, got %+v", third.Readiness)
	}
}

func TestPlanFailureSkipsReadinessCall(t *testing.T) {
	readiness := &fakeReadiness{report: &validation.Report{Status: "ready"}}
	cfg := testsupport.NewConfig(t, testsupport.WithTemplate(""))
	store := testsupport.MustOpenStore(t, cfg)
	picker := &fakePicker{dir: t.TempDir()}
	gate := capability.NewGate(store, picker, logging.NewNop())
	runner := NewRunner(cfg, store, gate, &fakeContent{}, readiness, logging.NewNop())

	_, err := runner.Run(context.Background(), Request{Selection: multiSelection()})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for a missing template, got %v", err)
	}
	// No plan means no I/O of any kind, remote calls included.
	if readiness.calls != 0 {
		t.Fatalf("readiness service must not be called, got %d calls", readiness.calls)
	}
	if picker.picks != 0 {
		t.Fatalf("picker must not run, picked %d times", picker.picks)
	}
}

func TestReadinessReportIsCachedAcrossRuns(t *testing.T) {
	readiness := &fakeReadiness{report: &validation.Report{Status: "ready"}}
	fx := newFixture(t, readiness)

	for i := 0; i < 2; i++ {
		if _, err := fx.runner.Run(context.Background(), Request{Selection: multiSelection()}); err != nil {
			t.Fatalf("Run %d failed: %v", i+1, err)
		}
	}
	if readiness.calls != 1 {
		t.Fatalf("expected the second run to hit the cache, got %d calls", readiness.calls)
	}
}

func TestWriteFailureCarriesNoCleanupWarning(t *testing.T) {
	fx := newFixture(t, nil)
	// A file where the first folder segment should go blocks MkdirAll.
	if err := os.WriteFile(filepath.Join(fx.baseDir, "Amazon"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write blocker: %v", err)
	}

	outcome, err := fx.runner.Run(context.Background(), Request{Selection: singleSelection()})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	result := outcome.Results[0].Result
	if result.Status != state.ResultFailed {
		t.Fatalf("expected a failed node, got %+v", result)
	}
	if result.ErrorMessage == "" {
		t.Fatal("expected an error message on the failed node")
	}
	// Cleanup warnings accompany successful writes only.
	if result.Warning != "" {
		t.Fatalf("failed write must not carry a warning, got %q", result.Warning)
	}
}

func TestProgressLabelKeepsHyphenatedSeriesName(t *testing.T) {
	fx := newFixture(t, nil)
	sel := singleSelection()
	sel.Series[0].Name = "X-1000 Pro"

	var labels []string
	fx.runner.SetProgress(func(current, total int, label string) {
		labels = append(labels, label)
	})
	if _, err := fx.runner.Run(context.Background(), Request{Selection: sel}); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(labels) != 1 || labels[0] != "X-1000 Pro" {
		t.Fatalf("expected the series name as label, got %v", labels)
	}
}

func TestProgressCallbackCoversPlanNodes(t *testing.T) {
	fx := newFixture(t, nil)

	var labels []string
	var totals []int
	fx.runner.SetProgress(func(current, total int, label string) {
		labels = append(labels, label)
		totals = append(totals, total)
	})

	if _, err := fx.runner.Run(context.Background(), Request{Selection: multiSelection()}); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(labels) != 3 {
		t.Fatalf("expected 3 progress calls, got %d (%v)", len(labels), labels)
	}
	for _, total := range totals {
		if total != 3 {
			t.Fatalf("expected total 3 in every call, got %v", totals)
		}
	}
	if labels[0] != "Master" {
		t.Fatalf("expected master first, got %v", labels)
	}
}

func TestRunUsesConfiguredExportDirOverride(t *testing.T) {
	fx := newFixture(t, nil)
	override := t.TempDir()

	outcome, err := fx.runner.Run(context.Background(), Request{
		Selection: singleSelection(),
		Dir:       override,
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if outcome.BaseDir != override {
		t.Fatalf("expected base %s, got %s", override, outcome.BaseDir)
	}
	if fx.picker.picks != 0 {
		t.Fatal("picker should not run when a writable override is provided")
	}
}
