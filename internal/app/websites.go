package service

import "sync"

// websiteRegistry tracks which websites accept submissions and appear in
// featured sampling. Websites are enabled until explicitly disabled, so
// only the disabled set is stored.
type websiteRegistry struct {
	mu       sync.RWMutex
	disabled map[string]struct{}
}

func newWebsiteRegistry() *websiteRegistry {
	return &websiteRegistry{
		disabled: make(map[string]struct{}),
	}
}

// Enabled reports whether a website currently accepts traffic.
func (r *websiteRegistry) Enabled(website string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, off := r.disabled[website]
	return !off
}

// SetEnabled flips one website's state and returns the previous state.
func (r *websiteRegistry) SetEnabled(website string, enabled bool) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, off := r.disabled[website]
	previous := !off

	if enabled {
		delete(r.disabled, website)
	} else {
		r.disabled[website] = struct{}{}
	}
	return previous
}

// filterEnabled drops disabled websites from a requested list.
func (r *websiteRegistry) filterEnabled(websites []string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(websites))
	for _, w := range websites {
		if _, off := r.disabled[w]; !off {
			out = append(out, w)
		}
	}
	return out
}
