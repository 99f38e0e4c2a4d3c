// Package catalog defines the model, series, and selection types shared by
// the export pipeline.
//
// A Selection is the set of catalog models the user chose to export plus the
// listing-type mode. Helpers partition a selection by series and derive the
// deterministic fingerprint used as the validation cache key. Formats carry
// the output extension and whether the format is restricted to the browser
// direct-download path.
package catalog
