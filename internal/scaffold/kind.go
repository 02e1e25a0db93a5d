package scaffold

import (
	"errors"
	"fmt"
	"strings"
)

// Kind selects the project template.
type Kind int

const (
	// Simple is a single Lambda project plus its test project.
	Simple Kind = iota
	// Layered splits the function into Application, Domain and
	// Infrastructure projects with two test projects.
	Layered
)

// ErrUnknownKind is returned by ParseKind for unsupported template names.
var ErrUnknownKind = errors.New("type must be either 'simple' or 'layered'")

// ParseKind parses a template name. "ddd" is accepted for Layered.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "simple":
		return Simple, nil
	case "layered", "ddd":
		return Layered, nil
	default:
		return Simple, fmt.Errorf("%w, got %q", ErrUnknownKind, s)
	}
}

func (k Kind) String() string {
	switch k {
	case Simple:
		return "simple"
	case Layered:
		return "layered"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}
