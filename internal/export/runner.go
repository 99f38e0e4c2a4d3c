package export

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"listforge/internal/atomicfile"
	"listforge/internal/capability"
	"listforge/internal/catalog"
	"listforge/internal/config"
	"listforge/internal/logging"
	"listforge/internal/pathplan"
	"listforge/internal/services"
	"listforge/internal/services/validation"
	"listforge/internal/state"
	"listforge/internal/validcache"
)

// ErrDirectDownload reports that the requested format is delivered straight
// to the user and never goes through the save plan.
var ErrDirectDownload = errors.New("format is delivered as a direct download")

// ErrNoRunToRetry reports that a retry was requested with no prior run.
var ErrNoRunToRetry = errors.New("no previous export run to retry")

// ContentGenerator produces the rendered listing file bytes for one node.
type ContentGenerator interface {
	Generate(ctx context.Context, modelIDs []int64, listingType catalog.ListingType, format catalog.Format) ([]byte, error)
}

// ReadinessChecker fetches the pre-export readiness report for a selection.
type ReadinessChecker interface {
	Validate(ctx context.Context, modelIDs []int64, listingType catalog.ListingType) (*validation.Report, error)
}

// ProgressFunc receives per-node progress while a run writes files.
type ProgressFunc func(current, total int, label string)

// Request describes one export invocation.
type Request struct {
	// Selection drives a fresh run. Ignored when Retry is set, where the
	// previous run's snapshotted plan is replayed instead.
	Selection *catalog.Selection
	Format    catalog.Format
	Retry     bool
	// Dir overrides the saved export folder for this run.
	Dir string
}

// Outcome is the result of one export run.
type Outcome struct {
	RunID     string
	Plan      *pathplan.SavePlan
	BaseDir   string
	Results   []NodeResult
	Readiness []validation.Finding
	Summary   Summary
}

// Runner orchestrates an export run end to end: readiness check, plan
// computation, folder acquisition, and the sequential per-node write loop.
type Runner struct {
	cfg       *config.Config
	store     *state.Store
	gate      *capability.Gate
	content   ContentGenerator
	readiness ReadinessChecker
	cache     *validcache.Cache
	logger    *slog.Logger
	now       func() time.Time
	progress  ProgressFunc
}

// NewRunner wires an export runner. readiness may be nil when the validation
// service is not configured; runs then proceed without a readiness report.
func NewRunner(cfg *config.Config, store *state.Store, gate *capability.Gate, content ContentGenerator, readiness ReadinessChecker, logger *slog.Logger) *Runner {
	ttl := time.Duration(cfg.Export.ValidationTTLSeconds) * time.Second
	return &Runner{
		cfg:       cfg,
		store:     store,
		gate:      gate,
		content:   content,
		readiness: readiness,
		cache:     validcache.New(ttl, logger),
		logger:    logging.NewComponentLogger(logger, "export"),
		now:       time.Now,
	}
}

// SetProgress installs a callback invoked once per node before its write.
func (r *Runner) SetProgress(fn ProgressFunc) {
	r.progress = fn
}

// Run executes an export request. A cancelled folder picker propagates as
// capability.ErrCancelled with no files written and no run recorded.
func (r *Runner) Run(ctx context.Context, req Request) (*Outcome, error) {
	if req.Retry {
		return r.retry(ctx, req)
	}
	return r.fresh(ctx, req)
}

func (r *Runner) fresh(ctx context.Context, req Request) (*Outcome, error) {
	sel := req.Selection
	if sel == nil || sel.IsEmpty() {
		return nil, services.Wrap(services.ErrValidation, "export", "run", "selection is empty", nil)
	}
	format := req.Format
	if format == "" {
		format = catalog.FormatXLSX
	}
	if format.DirectDownloadOnly() {
		return nil, fmt.Errorf("%w: %s", ErrDirectDownload, format)
	}

	listingType := sel.ListingType
	if listingType == "" {
		listingType = catalog.ListingIndividual
	}

	plan := pathplan.Build(sel, r.cfg.Export.PathTemplate, r.cfg.Export.Marketplace, r.now())
	if plan == nil {
		return nil, services.Wrap(services.ErrValidation, "export", "run", "selection does not produce a save plan", nil)
	}

	findings := r.checkReadiness(ctx, sel.Fingerprint(), sel.ModelIDs(), listingType)

	base, err := r.gate.AcquireWritableBase(ctx, req.Dir)
	if err != nil {
		return nil, err
	}

	planJSON, err := json.Marshal(plan)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "export", "run", "encode plan snapshot", err)
	}
	run := &state.Run{
		ID:          uuid.New().String(),
		Fingerprint: sel.Fingerprint(),
		ListingType: string(listingType),
		Format:      string(format),
		PlanJSON:    string(planJSON),
	}
	if err := r.store.CreateRun(ctx, run); err != nil {
		return nil, services.Wrap(services.ErrTransient, "export", "run", "record export run", err)
	}

	ctx = services.WithRunID(ctx, run.ID)
	r.logger.Info("export run started",
		logging.String(logging.FieldRunID, run.ID),
		logging.String("mode", string(plan.Mode)),
		logging.String("format", string(format)),
		logging.Int("nodes", len(plan.Nodes())))

	results := r.writeNodes(ctx, run.ID, plan, base, listingType, format, nil)
	outcome := &Outcome{
		RunID:     run.ID,
		Plan:      plan,
		BaseDir:   base,
		Results:   results,
		Readiness: findings,
		Summary:   Summarize(results),
	}
	r.logFinish(outcome)
	return outcome, nil
}

func (r *Runner) retry(ctx context.Context, req Request) (*Outcome, error) {
	run, err := r.store.LatestRun(ctx)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "export", "retry", "load previous run", err)
	}
	if run == nil {
		return nil, ErrNoRunToRetry
	}

	var plan pathplan.SavePlan
	if err := json.Unmarshal([]byte(run.PlanJSON), &plan); err != nil {
		return nil, services.Wrap(services.ErrTransient, "export", "retry", "decode plan snapshot", err)
	}
	listingType, err := catalog.ParseListingType(run.ListingType)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "export", "retry", "previous run has an unknown listing type", err)
	}
	format, err := catalog.ParseFormat(run.Format)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "export", "retry", "previous run has an unknown format", err)
	}

	previous, err := r.store.ResultsForRun(ctx, run.ID)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "export", "retry", "load previous results", err)
	}

	// The master node aggregates the full snapshotted selection, so its
	// model ids stand in for the selection the run was created from.
	findings := r.checkReadiness(ctx, run.Fingerprint, plan.Master.ModelIDs, listingType)

	base, err := r.gate.AcquireWritableBase(ctx, req.Dir)
	if err != nil {
		return nil, err
	}

	if err := r.store.TouchRun(ctx, run.ID); err != nil {
		r.logger.Warn("failed to bump run timestamp", logging.Error(err))
	}

	ctx = services.WithRunID(ctx, run.ID)
	r.logger.Info("retrying export run",
		logging.String(logging.FieldRunID, run.ID),
		logging.Int("nodes", len(plan.Nodes())))

	results := r.writeNodes(ctx, run.ID, &plan, base, listingType, format, previous)
	outcome := &Outcome{
		RunID:     run.ID,
		Plan:      &plan,
		BaseDir:   base,
		Results:   results,
		Readiness: findings,
		Summary:   Summarize(results),
	}
	r.logFinish(outcome)
	return outcome, nil
}

// checkReadiness runs the pre-export readiness check through the cache.
// Failures never block an export; they are logged and the run proceeds.
func (r *Runner) checkReadiness(ctx context.Context, fingerprint string, modelIDs []int64, listingType catalog.ListingType) []validation.Finding {
	if r.readiness == nil || len(modelIDs) == 0 {
		return nil
	}
	report, err := r.cache.Get(ctx, fingerprint, func(ctx context.Context) (*validation.Report, error) {
		return r.readiness.Validate(ctx, modelIDs, listingType)
	})
	if err != nil {
		r.logger.Warn("readiness check unavailable",
			logging.Error(err),
			logging.String(logging.FieldImpact, "export proceeds without a readiness report"))
		return nil
	}
	warnings := report.Warnings()
	if len(warnings) > 0 {
		r.logger.Info("readiness check reported warnings", logging.Int("warnings", len(warnings)))
	}
	return warnings
}

// writeNodes runs the sequential write loop. One node's failure is recorded
// and the loop moves on; only the surrounding run machinery can abort it.
func (r *Runner) writeNodes(ctx context.Context, runID string, plan *pathplan.SavePlan, base string, listingType catalog.ListingType, format catalog.Format, previous map[string]state.WriteResult) []NodeResult {
	nodes := plan.Nodes()
	results := make([]NodeResult, 0, len(nodes))

	for i, node := range nodes {
		if prior, ok := previous[node.Key]; ok && prior.Status == state.ResultSuccess {
			results = append(results, NodeResult{Node: node, Result: prior, Skipped: true})
			continue
		}

		label := nodeLabel(node)
		if r.progress != nil {
			r.progress(i+1, len(nodes), label)
		}
		nodeCtx := services.WithNodeKey(ctx, node.Key)
		logging.WithContext(nodeCtx, r.logger).Info("writing listing file",
			logging.String("label", label),
			logging.Int("position", i+1),
			logging.Int("total", len(nodes)))

		result := r.writeNode(nodeCtx, node, base, listingType, format)
		if err := r.store.UpsertResult(ctx, runID, result); err != nil {
			r.logger.Error("failed to persist node result",
				logging.String(logging.FieldNodeKey, node.Key),
				logging.Error(err))
		}
		results = append(results, NodeResult{Node: node, Result: result})
	}
	return results
}

func (r *Runner) writeNode(ctx context.Context, node pathplan.Node, base string, listingType catalog.ListingType, format catalog.Format) state.WriteResult {
	log := logging.WithContext(ctx, r.logger)
	filename := forceExtension(node.Filename, format)
	result := state.WriteResult{Key: node.Key, Filename: filename, Status: state.ResultFailed}

	payload, err := r.content.Generate(ctx, node.ModelIDs, listingType, format)
	if err != nil {
		result.ErrorMessage = err.Error()
		log.Error("content generation failed", logging.Error(err))
		return result
	}

	dir := base
	if segments := pathplan.SplitSegments(node.Folder); len(segments) > 0 {
		dir = filepath.Join(append([]string{base}, segments...)...)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		result.ErrorMessage = fmt.Sprintf("create folder %q: %v", dir, err)
		return result
	}

	written, err := atomicfile.Write(dir, filename, payload)
	if err != nil {
		result.ErrorMessage = err.Error()
		return result
	}

	result.Status = state.ResultSuccess
	result.Warning = written.Warning
	result.Verified, result.VerificationReason = verifyWrite(written.Path, int64(len(payload)))
	if !result.Verified {
		log.Warn("post-write verification failed",
			logging.String("reason", result.VerificationReason))
	}
	return result
}

// verifyWrite confirms the finished file is on disk with the expected size.
// A failed verification does not fail the node; the write itself succeeded.
func verifyWrite(path string, wantSize int64) (bool, string) {
	info, err := os.Stat(path)
	if err != nil {
		return false, fmt.Sprintf("file missing after write: %v", err)
	}
	if info.Size() != wantSize {
		return false, fmt.Sprintf("size mismatch: wrote %d bytes, found %d", wantSize, info.Size())
	}
	return true, ""
}

// forceExtension rewrites a planned filename's extension for the format
// actually exported. Plans are snapshotted with the default extension, so a
// retry in another format still lands on the right name.
func forceExtension(filename string, format catalog.Format) string {
	ext := format.Extension()
	if ext == "" {
		return filename
	}
	base := strings.TrimSuffix(filename, filepath.Ext(filename))
	return base + ext
}

// nodeLabel falls back to the stable key for plan snapshots recorded before
// nodes carried display labels.
func nodeLabel(node pathplan.Node) string {
	if node.Label != "" {
		return node.Label
	}
	return node.Key
}

func (r *Runner) logFinish(outcome *Outcome) {
	r.logger.Info("export run finished",
		logging.String(logging.FieldRunID, outcome.RunID),
		logging.Int("succeeded", outcome.Summary.Succeeded),
		logging.Int("failed", outcome.Summary.Failed),
		logging.Int("skipped", outcome.Summary.Skipped))
}
