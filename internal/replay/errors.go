package replay

import "errors"

// Sentinel errors for File.Validate, wrapped with fmt.Errorf("...: %w", err)
// by callers that need additional context, matching the teacher's
// persistence package error style.
var (
	ErrEntryCountMismatch = errors.New("replay: footer entry_count does not match recorded entries")
	ErrEntryBeforeStart   = errors.New("replay: first entry precedes header start_tick")
	ErrUnsupportedVersion = errors.New("replay: unsupported format_version")
)
