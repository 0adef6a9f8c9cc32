package entity

import (
	"log/slog"
	"sort"
	"time"
)

const dayFormat = "2006-01-02"

// Filing-date layouts seen across state registry exports.
var dateLayouts = []string{
	dayFormat,
	"01/02/2006",
	time.RFC3339,
}

// FormationFiling is one company formation inside a cluster.
type FormationFiling struct {
	Name       string `json:"name" yaml:"name"`
	FileNumber string `json:"file_number,omitempty" yaml:"file_number,omitempty"`
	FilingDate string `json:"filing_date" yaml:"filing_date"`
}

// FormationCluster is a burst of company formations by one agent: three or
// more filings all within the window of the cluster's first filing.
type FormationCluster struct {
	Agent         string            `json:"agent" yaml:"agent"`
	Key           string            `json:"key" yaml:"key"`
	StartDate     string            `json:"start_date" yaml:"start_date"`
	EndDate       string            `json:"end_date" yaml:"end_date"`
	DaysSpan      int               `json:"days_span" yaml:"days_span"`
	BusinessCount int               `json:"business_count" yaml:"business_count"`
	Businesses    []FormationFiling `json:"businesses" yaml:"businesses"`
}

type datedFiling struct {
	business *Business
	date     time.Time
}

// DetectRapidFormation finds clusters of rapid sequential company
// formation by the same registered agent. Only records with a party name,
// a parseable filing date, and a party type passing the role predicate are
// considered; an unparseable date skips that record alone, never the
// agent. nil role uses the default formation roles (agent only).
// Sorted by descending cluster size, ties in first-seen order.
func DetectRapidFormation(businesses []*Business, windowDays int, role RoleFilter) []*FormationCluster {
	if role == nil {
		role = DefaultConfig().FormationRoleFilter()
	}
	if windowDays <= 0 {
		windowDays = FormationWindowDaysDefault
	}

	groups := make(map[string][]datedFiling)
	agents := make(map[string]string)
	order := make([]string, 0)

	for _, b := range businesses {
		if b == nil || b.PartyName == "" || b.FilingDate == "" || !role(b.PartyType) {
			continue
		}

		key := NormalizeName(b.PartyName)
		if len(key) < minGroupKeyLength {
			continue
		}

		date, err := parseFilingDate(b.FilingDate)
		if err != nil {
			slog.Debug("skipping filing with unparseable date",
				"business", b.Name, "filing_date", b.FilingDate)
			continue
		}

		if _, ok := groups[key]; !ok {
			agents[key] = b.PartyName
			order = append(order, key)
		}
		groups[key] = append(groups[key], datedFiling{business: b, date: date})
	}

	window := time.Duration(windowDays) * 24 * time.Hour
	clusters := make([]*FormationCluster, 0)

	for _, key := range order {
		filings := groups[key]
		if len(filings) < 3 {
			continue
		}

		sort.SliceStable(filings, func(i, j int) bool {
			return filings[i].date.Before(filings[j].date)
		})

		// Sliding window: grow from each unconsumed filing, emit clusters
		// of three or more, then skip past the consumed filings so the
		// same burst is never reported twice.
		i := 0
		for i < len(filings) {
			j := i + 1
			for j < len(filings) && filings[j].date.Sub(filings[i].date) <= window {
				j++
			}

			if j-i >= 3 {
				clusters = append(clusters, makeCluster(agents[key], key, filings[i:j]))
				i = j
				continue
			}
			i++
		}
	}

	sort.SliceStable(clusters, func(i, j int) bool {
		return clusters[i].BusinessCount > clusters[j].BusinessCount
	})

	return clusters
}

func makeCluster(agent, key string, filings []datedFiling) *FormationCluster {
	members := make([]FormationFiling, 0, len(filings))
	for _, f := range filings {
		members = append(members, FormationFiling{
			Name:       f.business.Name,
			FileNumber: f.business.FileNumber,
			FilingDate: f.date.Format(dayFormat),
		})
	}

	first := filings[0].date
	last := filings[len(filings)-1].date

	return &FormationCluster{
		Agent:         agent,
		Key:           key,
		StartDate:     first.Format(dayFormat),
		EndDate:       last.Format(dayFormat),
		DaysSpan:      int(last.Sub(first).Hours() / 24),
		BusinessCount: len(filings),
		Businesses:    members,
	}
}

func parseFilingDate(val string) (time.Time, error) {
	var err error
	var t time.Time
	for _, layout := range dateLayouts {
		if t, err = time.Parse(layout, val); err == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}
