// Package core is the orchestration layer.  It composes the device
// transport, the stream reader and the capture session into the
// running terminal and provides a builder that assembles it from a
// Config.
//
// Architecture layers (bottom → top):
//
//	transport  →  stream / capture  →  session  →  core  →  cmd (CLI)
package core

import "context"

// Mode is a complete operational mode of sniffterm.  A mode owns its
// lifecycle from opening the device to teardown.
type Mode interface {
	Run(ctx context.Context) error
}
