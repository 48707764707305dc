package coach

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrUnknownCoach is returned when a coach id has no configuration.
var ErrUnknownCoach = errors.New("unknown coach")

// Identity describes one coaching agent. It is carried through the
// conversation state unchanged; the orchestration engine never mutates it.
type Identity struct {
	// ID is the unique identifier for the coach.
	ID string `json:"id"`

	// Name is the coach's display name.
	Name string `json:"name"`

	// Specialty is the coach's area of expertise.
	Specialty string `json:"specialty"`

	// Approach describes the coach's methodology and style.
	Approach string `json:"approach"`

	// FocusAreas lists the coach's key areas of focus.
	FocusAreas []string `json:"focus_areas"`
}

// Registry is a closed set of coach configurations keyed by id.
// It is validated at construction so that a missing or malformed
// configuration fails at process start, not in the middle of a turn.
type Registry struct {
	coaches map[string]Identity
}

// NewRegistry builds a registry from the given identities. Every identity
// must have a non-empty id, name and specialty, and ids must be unique.
func NewRegistry(identities ...Identity) (*Registry, error) {
	coaches := make(map[string]Identity, len(identities))
	for _, id := range identities {
		key := strings.ToLower(id.ID)
		if key == "" {
			return nil, fmt.Errorf("coach with empty id: %+v", id)
		}
		if id.Name == "" || id.Specialty == "" {
			return nil, fmt.Errorf("coach %s: name and specialty are required", key)
		}
		if _, exists := coaches[key]; exists {
			return nil, fmt.Errorf("duplicate coach id: %s", key)
		}
		coaches[key] = id
	}
	return &Registry{coaches: coaches}, nil
}

// Get returns the identity for a coach id. Lookup is case-insensitive.
func (r *Registry) Get(id string) (Identity, error) {
	identity, ok := r.coaches[strings.ToLower(id)]
	if !ok {
		return Identity{}, fmt.Errorf("%w: %s", ErrUnknownCoach, id)
	}
	return identity, nil
}

// IDs returns the registered coach ids in sorted order.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.coaches))
	for id := range r.coaches {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
