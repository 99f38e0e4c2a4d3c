// Package pathplan computes the deterministic folder and filename layout for
// an export run.
//
// Build turns a selection into a SavePlan: one node for a single-series
// selection, or a master node plus one child per selected series when the
// selection spans several series. Planning is pure; nothing here touches the
// filesystem.
//
// Path handling is deliberately two-pass. Template resolution strips only the
// characters that are illegal everywhere (<>"|?*) so that drive letters and
// separators embedded in the template survive. Once a resolved folder string
// is split into components, SanitizeSegment applies the strict per-segment
// rules (no separators, no trailing dots, reserved device names guarded).
package pathplan
