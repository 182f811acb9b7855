package model

import (
	"sort"
	"strings"

	"github.com/rotisserie/eris"
)

// FilterKind selects the geographic filtering mode for a run.
type FilterKind string

const (
	FilterAll    FilterKind = "all"
	FilterStates FilterKind = "states"
	FilterRegion FilterKind = "region"
)

// censusRegions holds the four fixed, disjoint census-region memberships.
var censusRegions = map[string][]string{
	"northeast": {"CT", "ME", "MA", "NH", "NJ", "NY", "PA", "RI", "VT"},
	"midwest":   {"IL", "IN", "IA", "KS", "MI", "MN", "MO", "NE", "ND", "OH", "SD", "WI"},
	"south":     {"AL", "AR", "DE", "FL", "GA", "KY", "LA", "MD", "MS", "NC", "OK", "SC", "TN", "TX", "VA", "WV"},
	"west":      {"AK", "AZ", "CA", "CO", "HI", "ID", "MT", "NV", "NM", "OR", "UT", "WA", "WY"},
}

// stateCodes is the set of valid 2-letter codes (50 states + DC).
var stateCodes = func() map[string]bool {
	m := map[string]bool{"DC": true}
	for _, states := range censusRegions {
		for _, s := range states {
			m[s] = true
		}
	}
	return m
}()

// RegionNames returns the known census region names, sorted.
func RegionNames() []string {
	names := make([]string, 0, len(censusRegions))
	for name := range censusRegions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FilterSpec describes the geographic subset a run operates on. The zero
// value is not valid; construct via ParseFilterSpec or AllFilter.
type FilterSpec struct {
	Kind   FilterKind
	Region string          // set when Kind == FilterRegion
	States map[string]bool // resolved membership; nil when Kind == FilterAll
}

// AllFilter returns the no-op filter spec.
func AllFilter() FilterSpec {
	return FilterSpec{Kind: FilterAll}
}

// ParseFilterSpec builds a FilterSpec from either a region name or an
// explicit list of state codes. Unknown state codes are ignored rather than
// fatal; they are returned so the caller can report a count. Exactly one of
// region/states should be provided; both empty yields the ALL filter.
func ParseFilterSpec(region string, states []string) (FilterSpec, []string, error) {
	if region != "" {
		name := strings.ToLower(strings.TrimSpace(region))
		members, ok := censusRegions[name]
		if !ok {
			return FilterSpec{}, nil, eris.Errorf("geography: unknown census region %q (want one of %s)",
				region, strings.Join(RegionNames(), ", "))
		}
		set := make(map[string]bool, len(members))
		for _, s := range members {
			set[s] = true
		}
		return FilterSpec{Kind: FilterRegion, Region: name, States: set}, nil, nil
	}

	if len(states) == 0 {
		return AllFilter(), nil, nil
	}

	set := make(map[string]bool, len(states))
	var unmatched []string
	for _, s := range states {
		code := strings.ToUpper(strings.TrimSpace(s))
		if code == "" {
			continue
		}
		if !stateCodes[code] {
			unmatched = append(unmatched, code)
			continue
		}
		set[code] = true
	}
	if len(set) == 0 {
		return FilterSpec{}, unmatched, eris.New("geography: no valid state codes in filter")
	}
	return FilterSpec{Kind: FilterStates, States: set}, unmatched, nil
}

// Matches reports whether a state code passes the filter.
func (f FilterSpec) Matches(stateCode string) bool {
	if f.Kind == FilterAll {
		return true
	}
	return f.States[strings.ToUpper(stateCode)]
}

// String renders the spec for logs and run records.
func (f FilterSpec) String() string {
	switch f.Kind {
	case FilterAll:
		return "all"
	case FilterRegion:
		return "region:" + f.Region
	default:
		codes := make([]string, 0, len(f.States))
		for s := range f.States {
			codes = append(codes, s)
		}
		sort.Strings(codes)
		return "states:" + strings.Join(codes, ",")
	}
}

// stateNameToCode maps full state names as they appear in the generation
// feed's stateDescription field to postal codes.
var stateNameToCode = map[string]string{
	"Alabama": "AL", "Alaska": "AK", "Arizona": "AZ", "Arkansas": "AR",
	"California": "CA", "Colorado": "CO", "Connecticut": "CT", "Delaware": "DE",
	"Florida": "FL", "Georgia": "GA", "Hawaii": "HI", "Idaho": "ID",
	"Illinois": "IL", "Indiana": "IN", "Iowa": "IA", "Kansas": "KS",
	"Kentucky": "KY", "Louisiana": "LA", "Maine": "ME", "Maryland": "MD",
	"Massachusetts": "MA", "Michigan": "MI", "Minnesota": "MN", "Mississippi": "MS",
	"Missouri": "MO", "Montana": "MT", "Nebraska": "NE", "Nevada": "NV",
	"New Hampshire": "NH", "New Jersey": "NJ", "New Mexico": "NM", "New York": "NY",
	"North Carolina": "NC", "North Dakota": "ND", "Ohio": "OH", "Oklahoma": "OK",
	"Oregon": "OR", "Pennsylvania": "PA", "Rhode Island": "RI", "South Carolina": "SC",
	"South Dakota": "SD", "Tennessee": "TN", "Texas": "TX", "Utah": "UT",
	"Vermont": "VT", "Virginia": "VA", "Washington": "WA", "West Virginia": "WV",
	"Wisconsin": "WI", "Wyoming": "WY", "District of Columbia": "DC",
}

// StateCodeFor resolves a full state name to its postal code. Falls through
// to the input when it already looks like a 2-letter code.
func StateCodeFor(name string) (string, bool) {
	if code, ok := stateNameToCode[name]; ok {
		return code, true
	}
	upper := strings.ToUpper(strings.TrimSpace(name))
	if stateCodes[upper] {
		return upper, true
	}
	return "", false
}
