package persona

import (
	"fmt"
	"strings"
)

// TransitionResult describes the outcome of a mode change request.
type TransitionResult struct {
	Accepted      bool
	Mode          Mode
	Message       string
	Clarification bool
}

// Controller resolves persona switches per the static mode registry.
type Controller struct{}

func NewController() *Controller {
	return &Controller{}
}

// Resolve applies a requested mode change to the current mode.
// An empty request keeps the current mode. A request for the current
// mode is an idempotent no-op. An unknown mode yields a clarification
// response without changing state.
func (c *Controller) Resolve(current Mode, requested string) TransitionResult {
	if _, ok := Lookup(current); !ok {
		current = DefaultMode
	}
	if requested == "" {
		return TransitionResult{Accepted: true, Mode: current}
	}

	target := Mode(strings.ToLower(strings.TrimSpace(requested)))
	profile, known := Lookup(target)
	if !known {
		return TransitionResult{
			Mode:          current,
			Clarification: true,
			Message: fmt.Sprintf(
				"I didn't recognize %q as a mode. Available modes are %s. Which would you like?",
				requested, modeList(),
			),
		}
	}

	if target == current {
		return TransitionResult{
			Accepted: true,
			Mode:     current,
			Message:  fmt.Sprintf("Already in %s mode.", current),
		}
	}

	cur, _ := Lookup(current)
	if !cur.allows(target) {
		return TransitionResult{
			Mode:          current,
			Clarification: true,
			Message: fmt.Sprintf(
				"Switching from %s to %s isn't available right now. Available modes are %s.",
				current, target, modeList(),
			),
		}
	}

	return TransitionResult{
		Accepted: true,
		Mode:     target,
		Message:  fmt.Sprintf("Switched to %s mode. %s", target, profile.Framing),
	}
}

func modeList() string {
	names := make([]string, 0, len(profiles))
	for _, p := range Profiles() {
		names = append(names, string(p.Mode))
	}
	return strings.Join(names, ", ")
}
