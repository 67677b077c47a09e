package testrunner

import (
	"errors"
	"fmt"
)

// Kind selects which test suites to act on.
type Kind int

const (
	Functional Kind = iota + 1
	Performance
	Unit
	Lint
	All
)

// ErrUnsupportedKind indicates a test kind outside the known set.
var ErrUnsupportedKind = errors.New("unsupported test kind")

// Canonical is the order suites are installed and run in.
var Canonical = []Kind{Functional, Performance, Unit, Lint}

// Names lists the accepted spellings, for help text and completion.
var Names = []string{"functional", "performance", "unit", "lint", "all"}

func (k Kind) String() string {
	switch k {
	case Functional:
		return "functional"
	case Performance:
		return "performance"
	case Unit:
		return "unit"
	case Lint:
		return "lint"
	case All:
		return "all"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind maps a CLI argument to a Kind.
func ParseKind(s string) (Kind, error) {
	for _, k := range []Kind{Functional, Performance, Unit, Lint, All} {
		if k.String() == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w %q (expected one of functional, performance, unit, lint, all)", ErrUnsupportedKind, s)
}

// Valid reports whether k is one of the declared kinds.
func (k Kind) Valid() bool {
	return k >= Functional && k <= All
}

// Expand returns the concrete kinds covered by k.
func (k Kind) Expand() []Kind {
	if k == All {
		return append([]Kind(nil), Canonical...)
	}
	return []Kind{k}
}

// RequirementsScript names the container script installing k's dependencies.
func (k Kind) RequirementsScript() string {
	return fmt.Sprintf("install_%s_requirements.sh", k)
}

// RunScript names the container script running k's suite.
func (k Kind) RunScript() string {
	return fmt.Sprintf("run_%s_tests.sh", k)
}
