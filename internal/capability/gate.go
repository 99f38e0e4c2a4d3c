package capability

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/sys/unix"

	"listforge/internal/logging"
)

// ErrCancelled reports that the user dismissed the folder picker. Callers
// treat it as a clean abort, never as a failure.
var ErrCancelled = errors.New("folder selection cancelled")

// ErrPermissionDenied reports that a freshly picked folder still is not
// writable. Fatal to the export run.
var ErrPermissionDenied = errors.New("permission denied for export folder")

// DirectoryPicker obtains a brand-new export folder from the user.
// Implementations return ErrCancelled when the user dismisses the prompt.
type DirectoryPicker interface {
	Pick(ctx context.Context) (string, error)
}

// Store is the subset of the state store the gate needs.
type Store interface {
	SaveCapability(ctx context.Context, folderPath string) error
	LoadCapability(ctx context.Context) (string, error)
	ClearCapability(ctx context.Context) error
}

// VerifyWritable reports whether path is an existing directory we can read,
// write, and traverse. It never returns an error; any failure means false.
func VerifyWritable(path string) bool {
	path = strings.TrimSpace(path)
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return false
	}
	return unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK) == nil
}

// Gate drives the export-folder acquisition state machine.
type Gate struct {
	store  Store
	picker DirectoryPicker
	logger *slog.Logger
}

// NewGate constructs a gate over the given store and picker.
func NewGate(store Store, picker DirectoryPicker, logger *slog.Logger) *Gate {
	return &Gate{
		store:  store,
		picker: picker,
		logger: logging.NewComponentLogger(logger, "capability"),
	}
}

// AcquireWritableBase returns a verified writable export folder.
//
// The candidate is the caller-provided folder when set, otherwise the saved
// one. A candidate that passes the write check is returned unchanged. In
// every other case (no candidate, stale candidate, unreadable store) the
// picker runs; its cancellation propagates verbatim. A picked folder is
// persisted and then re-checked: a folder the user chose but we still cannot
// write to is ErrPermissionDenied.
func (g *Gate) AcquireWritableBase(ctx context.Context, current string) (string, error) {
	candidate := strings.TrimSpace(current)
	if candidate == "" {
		stored, err := g.store.LoadCapability(ctx)
		if err != nil {
			// An unreadable store is handled the same as no saved folder.
			g.logger.Warn("saved folder unavailable",
				logging.Error(err),
				logging.String(logging.FieldEventType, "capability_load_failed"),
				logging.String(logging.FieldErrorHint, "state database may be corrupt; folder will be re-requested"))
		} else {
			candidate = stored
		}
	}

	if candidate != "" {
		if VerifyWritable(candidate) {
			g.logger.Debug("reusing verified export folder", logging.String("folder", candidate))
			return candidate, nil
		}
		g.logger.Info("saved export folder is no longer writable; requesting a new one",
			logging.String("folder", candidate))
	}

	picked, err := g.picker.Pick(ctx)
	if err != nil {
		// ErrCancelled must reach the caller untouched.
		return "", err
	}
	picked = strings.TrimSpace(picked)

	if err := g.store.SaveCapability(ctx, picked); err != nil {
		g.logger.Warn("failed to persist export folder",
			logging.Error(err),
			logging.String(logging.FieldEventType, "capability_save_failed"),
			logging.String(logging.FieldImpact, "folder must be re-picked next session"))
	}

	if !VerifyWritable(picked) {
		return "", ErrPermissionDenied
	}
	g.logger.Info("export folder authorized", logging.String("folder", picked))
	return picked, nil
}

// Saved returns the stored export folder without verifying it.
func (g *Gate) Saved(ctx context.Context) (string, error) {
	return g.store.LoadCapability(ctx)
}

// Reset forgets the saved export folder. The next export prompts again.
func (g *Gate) Reset(ctx context.Context) error {
	if err := g.store.ClearCapability(ctx); err != nil {
		return err
	}
	g.logger.Info("saved export folder cleared")
	return nil
}
