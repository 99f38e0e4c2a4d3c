package catalog

import (
	"fmt"
	"strings"
)

// Model is one catalog entry eligible for export.
type Model struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	SeriesID int64  `json:"series_id"`
}

// Series groups models under a shared product line name.
type Series struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// ListingType selects how the generated listing rows are structured.
type ListingType string

const (
	ListingIndividual  ListingType = "individual"
	ListingParentChild ListingType = "parent_child"
)

// ParseListingType converts user input into a known ListingType.
func ParseListingType(value string) (ListingType, error) {
	normalized := ListingType(strings.ToLower(strings.TrimSpace(value)))
	switch normalized {
	case ListingIndividual, ListingParentChild:
		return normalized, nil
	case "":
		return "", fmt.Errorf("listing type is required")
	default:
		return "", fmt.Errorf("unknown listing type %q", value)
	}
}

// Format identifies an output file format.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatXLSM Format = "xlsm"
	FormatCSV  Format = "csv"
)

// ParseFormat converts user input into a known Format.
func ParseFormat(value string) (Format, error) {
	normalized := Format(strings.ToLower(strings.TrimSpace(value)))
	switch normalized {
	case FormatXLSX, FormatXLSM, FormatCSV:
		return normalized, nil
	case "":
		return "", fmt.Errorf("format is required")
	default:
		return "", fmt.Errorf("unknown format %q", value)
	}
}

// Extension returns the filename extension including the leading dot.
func (f Format) Extension() string {
	return "." + string(f)
}

// DirectDownloadOnly reports whether the format must be delivered through the
// direct-download path instead of the save-to-folder path. The macro-enabled
// workbook embeds a signed template and is never written by the exporter.
func (f Format) DirectDownloadOnly() bool {
	return f == FormatXLSM
}
