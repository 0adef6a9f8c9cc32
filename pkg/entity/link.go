package entity

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"
)

// Match tags identify which signal connected two records. Each direction
// of the cross-link uses its own vocabulary so a reviewer can tell from
// the tag alone which record initiated the comparison.
const (
	MatchOwnerName = "OWNER_NAME"
	MatchPartyName = "PARTY_NAME"
	MatchAddress   = "ADDRESS"

	MatchOwner        = "OWNER_MATCH"
	MatchParty        = "PARTY_MATCH"
	MatchAddressAlike = "ADDRESS_MATCH"
)

// matchSignals is the number of independent signal types tested per pair;
// confidence is the fraction of signals that matched.
const matchSignals = 3

// BusinessMatch is a business linked to a facility, with the signals that
// connected them.
type BusinessMatch struct {
	Business   *Business `json:"business" yaml:"business"`
	MatchTypes []string  `json:"match_types" yaml:"match_types"`
	Confidence float64   `json:"confidence" yaml:"confidence"`
}

// FacilityMatch is a facility linked to a business.
type FacilityMatch struct {
	Facility   *Facility `json:"facility" yaml:"facility"`
	MatchTypes []string  `json:"match_types" yaml:"match_types"`
	Confidence float64   `json:"confidence" yaml:"confidence"`
}

// FacilityLinks pairs one facility with its linked businesses, used by the
// sharded bulk linker.
type FacilityLinks struct {
	Facility *Facility        `json:"facility" yaml:"facility"`
	Matches  []*BusinessMatch `json:"matches" yaml:"matches"`
}

// Linker finds bidirectional links between facility and business records.
type Linker struct {
	matcher Matcher
}

// NewLinker returns a linker using the given matcher.
func NewLinker(m Matcher) Linker {
	return Linker{matcher: m}
}

// FindLinkedBusinesses returns every business connected to the facility by
// at least one signal (owner name, registered agent, or address), sorted
// by descending confidence. A nil facility or empty collection yields an
// empty list.
func (l Linker) FindLinkedBusinesses(f *Facility, businesses []*Business) []*BusinessMatch {
	matches := make([]*BusinessMatch, 0)
	if f == nil {
		return matches
	}

	for _, b := range businesses {
		if b == nil {
			continue
		}

		types := make([]string, 0, matchSignals)
		if l.matcher.NamesMatch(f.LicenseHolder, b.Name) {
			types = append(types, MatchOwnerName)
		}
		if l.matcher.NamesMatch(b.PartyName, f.LicenseHolder) {
			types = append(types, MatchPartyName)
		}
		if l.matcher.AddressesMatch(b.Address, f.Address) {
			types = append(types, MatchAddress)
		}

		if len(types) == 0 {
			continue
		}

		matches = append(matches, &BusinessMatch{
			Business:   b,
			MatchTypes: types,
			Confidence: float64(len(types)) / matchSignals,
		})
	}

	sortBusinessMatches(matches)
	return matches
}

// FindLinkedFacilities is the symmetric inverse of FindLinkedBusinesses:
// it tests the business name and registered agent against each facility's
// owner, plus the address, with the same confidence formula.
func (l Linker) FindLinkedFacilities(b *Business, facilities []*Facility) []*FacilityMatch {
	matches := make([]*FacilityMatch, 0)
	if b == nil {
		return matches
	}

	for _, f := range facilities {
		if f == nil {
			continue
		}

		types := make([]string, 0, matchSignals)
		if l.matcher.NamesMatch(b.Name, f.LicenseHolder) {
			types = append(types, MatchOwner)
		}
		if l.matcher.NamesMatch(b.PartyName, f.LicenseHolder) {
			types = append(types, MatchParty)
		}
		if l.matcher.AddressesMatch(b.Address, f.Address) {
			types = append(types, MatchAddressAlike)
		}

		if len(types) == 0 {
			continue
		}

		matches = append(matches, &FacilityMatch{
			Facility:   f,
			MatchTypes: types,
			Confidence: float64(len(types)) / matchSignals,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Confidence > matches[j].Confidence
	})
	return matches
}

// LinkAllFacilities cross-links every facility against the business
// collection, sharding the facility list across a bounded worker pool.
// Each facility's comparisons are independent, so workers share the
// read-only business slice without coordination. Facilities with no
// matches are omitted. The only error source is context cancellation.
func (l Linker) LinkAllFacilities(ctx context.Context, facilities []*Facility, businesses []*Business, workers int) ([]*FacilityLinks, error) {
	if workers < 1 {
		workers = 1
	}

	results := make([][]*BusinessMatch, len(facilities))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, f := range facilities {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = l.FindLinkedBusinesses(f, businesses)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	linked := make([]*FacilityLinks, 0, len(facilities))
	for i, matches := range results {
		if len(matches) == 0 {
			continue
		}
		linked = append(linked, &FacilityLinks{
			Facility: facilities[i],
			Matches:  matches,
		})
	}

	return linked, nil
}

// BusinessLinks pairs one business with its linked facilities.
type BusinessLinks struct {
	Business *Business        `json:"business" yaml:"business"`
	Matches  []*FacilityMatch `json:"matches" yaml:"matches"`
}

// LinkAllBusinesses is the inverse bulk operation: every business
// cross-linked against the facility collection, same worker-pool
// sharding and omission rules as LinkAllFacilities.
func (l Linker) LinkAllBusinesses(ctx context.Context, businesses []*Business, facilities []*Facility, workers int) ([]*BusinessLinks, error) {
	if workers < 1 {
		workers = 1
	}

	results := make([][]*FacilityMatch, len(businesses))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, b := range businesses {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = l.FindLinkedFacilities(b, facilities)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	linked := make([]*BusinessLinks, 0, len(businesses))
	for i, matches := range results {
		if len(matches) == 0 {
			continue
		}
		linked = append(linked, &BusinessLinks{
			Business: businesses[i],
			Matches:  matches,
		})
	}

	return linked, nil
}

func sortBusinessMatches(matches []*BusinessMatch) {
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Confidence > matches[j].Confidence
	})
}
