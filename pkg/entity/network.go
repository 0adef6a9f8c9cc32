package entity

import (
	"sort"
	"strings"
)

// minGroupKeyLength discards group keys too short to be a real name;
// single initials and empty normalizations would otherwise collect noise.
const minGroupKeyLength = 3

// RoleFilter decides whether a party type participates in an analysis.
type RoleFilter func(partyType string) bool

// RoleContains builds a case-insensitive substring predicate over the
// given role words, e.g. RoleContains("agent", "manager", "member").
func RoleContains(roles ...string) RoleFilter {
	lowered := make([]string, 0, len(roles))
	for _, r := range roles {
		lowered = append(lowered, strings.ToLower(r))
	}
	return func(partyType string) bool {
		pt := strings.ToLower(partyType)
		for _, r := range lowered {
			if strings.Contains(pt, r) {
				return true
			}
		}
		return false
	}
}

// BusinessSummary is the member view carried inside networks and clusters.
type BusinessSummary struct {
	Name       string `json:"name" yaml:"name"`
	FileNumber string `json:"file_number,omitempty" yaml:"file_number,omitempty"`
	Address    string `json:"address,omitempty" yaml:"address,omitempty"`
	City       string `json:"city,omitempty" yaml:"city,omitempty"`
	FilingDate string `json:"filing_date,omitempty" yaml:"filing_date,omitempty"`
}

// OwnershipNetwork is a group of businesses sharing a registered agent,
// manager, or member. Only materialized with at least two members.
type OwnershipNetwork struct {
	Agent          string            `json:"agent" yaml:"agent"`
	Key            string            `json:"key" yaml:"key"`
	Businesses     []BusinessSummary `json:"businesses" yaml:"businesses"`
	Addresses      []string          `json:"addresses" yaml:"addresses"`
	Cities         []string          `json:"cities" yaml:"cities"`
	BusinessCount  int               `json:"business_count" yaml:"business_count"`
	AddressCount   int               `json:"address_count" yaml:"address_count"`
	IsMultiAddress bool              `json:"is_multi_address" yaml:"is_multi_address"`
}

// AddressCluster is a group of businesses registered at the same
// normalized address.
type AddressCluster struct {
	Address       string            `json:"address" yaml:"address"`
	Key           string            `json:"key" yaml:"key"`
	Businesses    []BusinessSummary `json:"businesses" yaml:"businesses"`
	BusinessCount int               `json:"business_count" yaml:"business_count"`
}

// BuildOwnershipNetworks groups businesses by normalized party name and
// returns candidate shell-company networks: groups of two or more
// businesses whose filings share a registered agent, manager, or member.
// The role predicate is caller-supplied; nil uses the default network
// roles. Sorted by descending member count, ties in first-seen order.
func BuildOwnershipNetworks(businesses []*Business, role RoleFilter) []*OwnershipNetwork {
	if role == nil {
		role = DefaultConfig().NetworkRoleFilter()
	}

	groups := make(map[string]*OwnershipNetwork)
	seenAddresses := make(map[string]map[string]bool)
	seenCities := make(map[string]map[string]bool)
	order := make([]string, 0)

	for _, b := range businesses {
		if b == nil || b.PartyName == "" || !role(b.PartyType) {
			continue
		}

		key := NormalizeName(b.PartyName)
		if len(key) < minGroupKeyLength {
			continue
		}

		n, ok := groups[key]
		if !ok {
			n = &OwnershipNetwork{
				Agent:      b.PartyName,
				Key:        key,
				Businesses: make([]BusinessSummary, 0),
				Addresses:  make([]string, 0),
				Cities:     make([]string, 0),
			}
			groups[key] = n
			seenAddresses[key] = make(map[string]bool)
			seenCities[key] = make(map[string]bool)
			order = append(order, key)
		}

		n.Businesses = append(n.Businesses, summarize(b))

		if b.Address != "" {
			ak := NormalizeAddress(b.Address)
			if ak != "" && !seenAddresses[key][ak] {
				seenAddresses[key][ak] = true
				n.Addresses = append(n.Addresses, b.Address)
			}
		}
		if b.City != "" {
			ck := strings.ToLower(b.City)
			if !seenCities[key][ck] {
				seenCities[key][ck] = true
				n.Cities = append(n.Cities, b.City)
			}
		}
	}

	networks := make([]*OwnershipNetwork, 0, len(order))
	for _, key := range order {
		n := groups[key]
		n.BusinessCount = len(n.Businesses)
		n.AddressCount = len(n.Addresses)
		n.IsMultiAddress = n.AddressCount > 1
		if n.BusinessCount >= 2 {
			networks = append(networks, n)
		}
	}

	sort.SliceStable(networks, func(i, j int) bool {
		return networks[i].BusinessCount > networks[j].BusinessCount
	})

	return networks
}

// BuildAddressClusters groups businesses by normalized address. Clusters
// with two or more members feed the shell-company risk scorer, where a
// large cluster flags a likely registered-agent mill or virtual office.
func BuildAddressClusters(businesses []*Business) []*AddressCluster {
	groups := make(map[string]*AddressCluster)
	order := make([]string, 0)

	for _, b := range businesses {
		if b == nil || b.Address == "" {
			continue
		}

		key := NormalizeAddress(b.Address)
		if len(key) < minGroupKeyLength {
			continue
		}

		c, ok := groups[key]
		if !ok {
			c = &AddressCluster{
				Address:    b.Address,
				Key:        key,
				Businesses: make([]BusinessSummary, 0),
			}
			groups[key] = c
			order = append(order, key)
		}

		c.Businesses = append(c.Businesses, summarize(b))
	}

	clusters := make([]*AddressCluster, 0, len(order))
	for _, key := range order {
		c := groups[key]
		c.BusinessCount = len(c.Businesses)
		if c.BusinessCount >= 2 {
			clusters = append(clusters, c)
		}
	}

	sort.SliceStable(clusters, func(i, j int) bool {
		return clusters[i].BusinessCount > clusters[j].BusinessCount
	})

	return clusters
}

func summarize(b *Business) BusinessSummary {
	return BusinessSummary{
		Name:       b.Name,
		FileNumber: b.FileNumber,
		Address:    b.Address,
		City:       b.City,
		FilingDate: b.FilingDate,
	}
}
