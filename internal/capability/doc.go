// Package capability manages the user-authorized export folder.
//
// The folder is a plain path persisted across sessions, but possession of
// the path proves nothing: permissions change underneath us, drives unmount,
// directories get deleted. Every export session therefore re-checks actual
// write access before the folder is used, and a stored folder that fails the
// check is treated exactly like no folder at all: the user is asked to pick
// one again. Only an explicit reset forgets the saved folder.
package capability
