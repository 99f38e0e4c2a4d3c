// Package validation calls the export-readiness service and models its
// report. Findings are advisory: an export proceeds regardless, surfacing
// warnings afterwards.
package validation
