package core

import "slices"

// DefaultQueryLimit bounds result sets when a filter carries no limit.
const DefaultQueryLimit = 500

// Filter is a subscription query. Listed values per field are a union,
// fields intersect.
type Filter struct {
	IDs     []string `json:"ids,omitempty"`
	Authors []string `json:"authors,omitempty"`
	Kinds   []int    `json:"kinds,omitempty"`
	TagE    []string `json:"#e,omitempty"`
	TagP    []string `json:"#p,omitempty"`
	TagA    []string `json:"#a,omitempty"`
	TagD    []string `json:"#d,omitempty"`
	Since   *int64   `json:"since,omitempty"`
	Until   *int64   `json:"until,omitempty"`
	Limit   int      `json:"limit,omitempty"`
}

func (f Filter) matchesTag(ev Event, name string, values []string) bool {
	for _, tag := range ev.Tags {
		if len(tag) >= 2 && tag[0] == name && slices.Contains(values, tag[1]) {
			return true
		}
	}
	return false
}

// Matches reports whether an event satisfies the filter. Used for live
// delivery; stored queries translate the same semantics to SQL.
func (f Filter) Matches(ev Event) bool {
	if len(f.IDs) > 0 && !slices.Contains(f.IDs, ev.ID) {
		return false
	}
	if len(f.Authors) > 0 && !slices.Contains(f.Authors, ev.Pubkey) {
		return false
	}
	if len(f.Kinds) > 0 && !slices.Contains(f.Kinds, ev.Kind) {
		return false
	}
	if f.Since != nil && ev.CreatedAt < *f.Since {
		return false
	}
	if f.Until != nil && ev.CreatedAt > *f.Until {
		return false
	}
	if len(f.TagE) > 0 && !f.matchesTag(ev, "e", f.TagE) {
		return false
	}
	if len(f.TagP) > 0 && !f.matchesTag(ev, "p", f.TagP) {
		return false
	}
	if len(f.TagA) > 0 && !f.matchesTag(ev, "a", f.TagA) {
		return false
	}
	if len(f.TagD) > 0 && !f.matchesTag(ev, "d", f.TagD) {
		return false
	}
	return true
}
