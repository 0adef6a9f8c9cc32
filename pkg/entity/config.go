package entity

const (
	NameThresholdDefault       = 0.8
	FormationWindowDaysDefault = 90
)

// Config carries every tunable the engine uses. Nothing in this package
// reads a literal threshold or weight; jurisdictions with different data
// quality re-tune by supplying a different Config.
type Config struct {
	// NameThreshold is the minimum Jaccard similarity for a fuzzy name match.
	NameThreshold float64 `json:"name_threshold" yaml:"name_threshold"`

	// FormationWindowDays bounds a rapid-formation cluster: every member
	// files within this many days of the cluster's first filing.
	FormationWindowDays int `json:"formation_window_days" yaml:"formation_window_days"`

	// NetworkRoles are the party types that form ownership networks.
	NetworkRoles []string `json:"network_roles" yaml:"network_roles"`

	// FormationRoles are the party types considered for rapid-formation
	// detection. Kept separate from NetworkRoles on purpose: the two
	// analyses intentionally cast different nets.
	FormationRoles []string `json:"formation_roles" yaml:"formation_roles"`

	Scoring ScoringConfig `json:"scoring" yaml:"scoring"`
}

// ScoringConfig names every weight and threshold used by the risk scorer.
type ScoringConfig struct {
	ProgramWeights  map[string]int `json:"program_weights" yaml:"program_weights"`
	ProgramCountCap int            `json:"program_count_cap" yaml:"program_count_cap"`

	AllProgramsBonus int `json:"all_programs_bonus" yaml:"all_programs_bonus"`
	TwoProgramsBonus int `json:"two_programs_bonus" yaml:"two_programs_bonus"`

	LargeNetworkSize  int `json:"large_network_size" yaml:"large_network_size"`
	LargeNetworkScore int `json:"large_network_score" yaml:"large_network_score"`

	MediumNetworkSize  int `json:"medium_network_size" yaml:"medium_network_size"`
	MediumNetworkScore int `json:"medium_network_score" yaml:"medium_network_score"`

	MultiAddressMin   int `json:"multi_address_min" yaml:"multi_address_min"`
	MultiAddressScore int `json:"multi_address_score" yaml:"multi_address_score"`

	AddressClusterMin   int `json:"address_cluster_min" yaml:"address_cluster_min"`
	AddressClusterScore int `json:"address_cluster_score" yaml:"address_cluster_score"`

	// Filings dated within [ElevatedYearFrom, ElevatedYearTo] inclusive
	// carry extra risk (e.g. pandemic-relief-era formations).
	ElevatedYearFrom  int `json:"elevated_year_from" yaml:"elevated_year_from"`
	ElevatedYearTo    int `json:"elevated_year_to" yaml:"elevated_year_to"`
	ElevatedYearScore int `json:"elevated_year_score" yaml:"elevated_year_score"`

	LLCScore int `json:"llc_score" yaml:"llc_score"`

	// Level boundaries, inclusive of the lower bound.
	HighRiskMin   int `json:"high_risk_min" yaml:"high_risk_min"`
	MediumRiskMin int `json:"medium_risk_min" yaml:"medium_risk_min"`
}

// DefaultConfig returns the baseline tuning.
func DefaultConfig() Config {
	return Config{
		NameThreshold:       NameThresholdDefault,
		FormationWindowDays: FormationWindowDaysDefault,
		NetworkRoles:        []string{"agent", "manager", "member"},
		FormationRoles:      []string{"agent"},
		Scoring: ScoringConfig{
			ProgramWeights: map[string]int{
				ProgramDaycare:    10,
				ProgramHealthcare: 15,
				ProgramTransport:  15,
			},
			ProgramCountCap:     5,
			AllProgramsBonus:    50,
			TwoProgramsBonus:    30,
			LargeNetworkSize:    10,
			LargeNetworkScore:   40,
			MediumNetworkSize:   5,
			MediumNetworkScore:  25,
			MultiAddressMin:     3,
			MultiAddressScore:   15,
			AddressClusterMin:   5,
			AddressClusterScore: 30,
			ElevatedYearFrom:    2020,
			ElevatedYearTo:      2022,
			ElevatedYearScore:   15,
			LLCScore:            5,
			HighRiskMin:         50,
			MediumRiskMin:       25,
		},
	}
}

// NetworkRoleFilter returns the predicate for network-forming party types.
func (c Config) NetworkRoleFilter() RoleFilter {
	return RoleContains(c.NetworkRoles...)
}

// FormationRoleFilter returns the predicate for rapid-formation party types.
func (c Config) FormationRoleFilter() RoleFilter {
	return RoleContains(c.FormationRoles...)
}
