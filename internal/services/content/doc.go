// Package content calls the listing-generation service that renders the
// spreadsheet or CSV payload for a set of model ids.
//
// The service returns opaque bytes. Some deployments report failures as a
// JSON body behind a 200 status; the client treats any JSON content type as
// an error payload and never hands those bytes to the writer.
package content
