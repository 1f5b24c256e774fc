package models

// FilterState is the table's local filter snapshot. A nil or empty selector
// places no restriction on that facet.
type FilterState struct {
	Search  string  `json:"search"`
	Program *string `json:"program,omitempty"`
	Region  *string `json:"region,omitempty"`
}

// IsEmpty reports whether no predicate is active.
func (f FilterState) IsEmpty() bool {
	return f.Search == "" && selector(f.Program) == "" && selector(f.Region) == ""
}

// ProgramValue returns the selected program name or "".
func (f FilterState) ProgramValue() string { return selector(f.Program) }

// RegionValue returns the selected region or "".
func (f FilterState) RegionValue() string { return selector(f.Region) }

func selector(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

// FacetOptions lists selector choices derived from the unfiltered list.
type FacetOptions struct {
	Programs []string `json:"programs"`
	Regions  []string `json:"regions"`
}
