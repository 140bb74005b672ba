// Package flags provides feature flags read from the config file.
// Flags are read-only after initialization and unknown flags are off.
package flags

import (
	"maps"
	"slices"

	"github.com/smbox/smbox/internal/log"
)

const (
	// FlagAutoReload reloads the mbox when new mail arrives instead of
	// showing a notification.
	FlagAutoReload = "auto-reload"

	// FlagMouseSelect lets a click on a header row select that message.
	FlagMouseSelect = "mouse-select"
)

// Known lists every flag smbox reads.
var Known = []string{FlagAutoReload, FlagMouseSelect}

// Registry holds feature flag state loaded from configuration.
type Registry struct {
	flags map[string]bool
}

// New creates a Registry from a config map. A nil map disables everything.
func New(flags map[string]bool) *Registry {
	if flags == nil {
		flags = make(map[string]bool)
	}
	r := &Registry{flags: flags}
	log.Debug(log.CatConfig, "Feature flags initialized", "count", len(flags), "flags", r.All())
	return r
}

// Enabled reports whether the named flag is on. It is nil-safe.
func (r *Registry) Enabled(name string) bool {
	if r == nil || r.flags == nil {
		return false
	}
	return r.flags[name]
}

// All returns a copy of all flags.
func (r *Registry) All() map[string]bool {
	if r == nil || r.flags == nil {
		return make(map[string]bool)
	}
	result := make(map[string]bool, len(r.flags))
	maps.Copy(result, r.flags)
	return result
}

// Unknown returns the configured flag names smbox does not read, sorted.
func (r *Registry) Unknown() []string {
	var unknown []string
	for name := range r.All() {
		if !slices.Contains(Known, name) {
			unknown = append(unknown, name)
		}
	}
	slices.Sort(unknown)
	return unknown
}
