// Package services defines shared error classification and context helpers
// for the external collaborators listforge talks to.
//
// The content and validation subpackages hold the HTTP clients for the
// listing-generation and export-readiness services. Errors from any
// collaborator are wrapped with a sentinel marker so callers can classify
// failures without string matching.
package services
