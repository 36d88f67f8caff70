package task

import "strings"

// FilterAll is the selector value meaning "no filter on this dimension".
const FilterAll = "all"

// Filter holds optional equality predicates for listing.
// A zero field applies no predicate.
type Filter struct {
	Status   Status
	Priority Priority
}

// ParseFilter builds a Filter from raw query values. Empty and "all"
// leave the dimension unfiltered; anything else is matched verbatim.
func ParseFilter(status, priority string) Filter {
	var f Filter
	if s := strings.TrimSpace(status); s != "" && s != FilterAll {
		f.Status = Status(s)
	}
	if p := strings.TrimSpace(priority); p != "" && p != FilterAll {
		f.Priority = Priority(p)
	}
	return f
}

// StatusOrAll returns the status selector, or "all" when unset.
func (f Filter) StatusOrAll() string {
	if f.Status == "" {
		return FilterAll
	}
	return string(f.Status)
}

// PriorityOrAll returns the priority selector, or "all" when unset.
func (f Filter) PriorityOrAll() string {
	if f.Priority == "" {
		return FilterAll
	}
	return string(f.Priority)
}
