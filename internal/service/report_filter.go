package service

import (
	"strings"

	"github.com/ricoeriii/pengelola-bansos/internal/models"
)

// FilterReports returns the reports satisfying every active predicate of f, in
// their original order. The input slice is never modified.
func FilterReports(reports []models.Report, f models.FilterState) []models.Report {
	search := strings.ToLower(f.Search)
	program := f.ProgramValue()
	region := f.RegionValue()

	out := make([]models.Report, 0, len(reports))
	for _, r := range reports {
		name := r.ProgramName()
		if program != "" && name != program {
			continue
		}
		if region != "" && r.Region != region {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(name), search) &&
			!strings.Contains(strings.ToLower(r.Region), search) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// FacetOptions lists distinct program names and regions in first-seen order.
// Callers pass the unfiltered list so options never shrink as filters apply.
func FacetOptions(reports []models.Report) models.FacetOptions {
	opts := models.FacetOptions{Programs: []string{}, Regions: []string{}}
	seenPrograms := make(map[string]struct{}, len(reports))
	seenRegions := make(map[string]struct{}, len(reports))
	for _, r := range reports {
		name := r.ProgramName()
		if _, ok := seenPrograms[name]; !ok {
			seenPrograms[name] = struct{}{}
			opts.Programs = append(opts.Programs, name)
		}
		if _, ok := seenRegions[r.Region]; !ok {
			seenRegions[r.Region] = struct{}{}
			opts.Regions = append(opts.Regions, r.Region)
		}
	}
	return opts
}
