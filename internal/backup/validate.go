package backup

import (
	"errors"
	"fmt"
)

// ErrInvalidSnapshot matches every ImportValidationError.
var ErrInvalidSnapshot = errors.New("invalid snapshot")

// ImportValidationError reports why a snapshot was rejected. Nothing is
// written when it is returned.
type ImportValidationError struct {
	Reason string
}

func (e *ImportValidationError) Error() string {
	return "invalid snapshot: " + e.Reason
}

func (e *ImportValidationError) Is(target error) bool {
	return target == ErrInvalidSnapshot
}

func invalid(format string, args ...any) error {
	return &ImportValidationError{Reason: fmt.Sprintf(format, args...)}
}

// Validate checks the snapshot shape: data present, a supported version, and
// non-empty ids unique within each collection.
func Validate(snap *Snapshot) error {
	if snap == nil || snap.Data == nil {
		return invalid("missing data")
	}
	if snap.Version != FormatVersion {
		return invalid("unsupported version %d", snap.Version)
	}

	seen := make(map[string]bool, len(snap.Data.Memories))
	for i := range snap.Data.Memories {
		m := &snap.Data.Memories[i]
		if seen[m.ID] {
			return invalid("duplicate memory id %q", m.ID)
		}
		if err := m.Validate(); err != nil {
			return invalid("memory %d: %v", i, err)
		}
		seen[m.ID] = true
	}

	seen = make(map[string]bool, len(snap.Data.Plans))
	for i := range snap.Data.Plans {
		p := &snap.Data.Plans[i]
		if seen[p.ID] {
			return invalid("duplicate plan id %q", p.ID)
		}
		if err := p.Validate(); err != nil {
			return invalid("plan %d: %v", i, err)
		}
		seen[p.ID] = true
	}
	return nil
}
