// Package atomicfile writes export payloads without ever leaving a partial
// file at the final name.
//
// The full payload is first written to a sibling .tmp file. That write is the
// proof that the directory is writable and the payload well-formed; only
// after it succeeds is the final name touched, and the final write is a
// single whole-buffer create-or-truncate. A failure at the temp stage leaves
// any previous file at the final name untouched. Temp-file cleanup failure
// is reported as a warning, never an error.
package atomicfile
