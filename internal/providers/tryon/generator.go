// Package tryon holds the generation backend clients that turn a subject
// photo plus item images into a composite try-on artifact. The service treats
// the backend as a black box with a success/failure contract; which
// implementation runs is a process-wide configuration switch.
package tryon

import "context"

// Backend mode names used in configuration.
const (
	ModeLive = "live"
	ModeStub = "stub"
)

// Request identifies the inputs for one generation call. Refs are storage
// keys in the uploads bucket, already ownership-checked by the caller.
type Request struct {
	JobID      string
	OwnerID    string
	SubjectRef string
	ItemRefs   []string
	Locale     string
}

// Result is the generated composite.
type Result struct {
	Data []byte
	MIME string
	// Stub is true when the artifact came from the deterministic
	// placeholder pipeline rather than the live backend.
	Stub bool
}

// Generator produces a composite artifact for a request.
type Generator interface {
	Generate(ctx context.Context, req Request) (*Result, error)
}
