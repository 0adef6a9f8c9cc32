package entity

// Business is a single business-registry filing. Fields not present in the
// source dataset are left empty; empty fields never contribute a match signal.
type Business struct {
	Name       string `json:"name" yaml:"name"`
	Owner      string `json:"owner,omitempty" yaml:"owner,omitempty"`
	PartyName  string `json:"party_name,omitempty" yaml:"party_name,omitempty"`
	PartyType  string `json:"party_type,omitempty" yaml:"party_type,omitempty"`
	Address    string `json:"address,omitempty" yaml:"address,omitempty"`
	City       string `json:"city,omitempty" yaml:"city,omitempty"`
	FileNumber string `json:"file_number,omitempty" yaml:"file_number,omitempty"`
	FilingDate string `json:"filing_date,omitempty" yaml:"filing_date,omitempty"`
	FilingType string `json:"filing_type,omitempty" yaml:"filing_type,omitempty"`
	Status     string `json:"status,omitempty" yaml:"status,omitempty"`
}

// Facility is a licensed-facility record (e.g. childcare license roster).
type Facility struct {
	Name          string `json:"name" yaml:"name"`
	LicenseHolder string `json:"license_holder,omitempty" yaml:"license_holder,omitempty"`
	Address       string `json:"address,omitempty" yaml:"address,omitempty"`
	City          string `json:"city,omitempty" yaml:"city,omitempty"`
	LicenseNumber string `json:"license_number,omitempty" yaml:"license_number,omitempty"`
	FacilityType  string `json:"facility_type,omitempty" yaml:"facility_type,omitempty"`
	Status        string `json:"status,omitempty" yaml:"status,omitempty"`
}

// Provider is a program-roster record (healthcare or transport).
type Provider struct {
	Name        string `json:"name" yaml:"name"`
	Owner       string `json:"owner,omitempty" yaml:"owner,omitempty"`
	Address     string `json:"address,omitempty" yaml:"address,omitempty"`
	City        string `json:"city,omitempty" yaml:"city,omitempty"`
	ProgramType string `json:"program_type,omitempty" yaml:"program_type,omitempty"`
	Status      string `json:"status,omitempty" yaml:"status,omitempty"`
}

// ownerKey is the owner-like field used for cross-program matching.
// Facilities are often licensed directly under the owner's name, so the
// record name stands in when the license holder is missing.
func (f *Facility) ownerKey() string {
	if f.LicenseHolder != "" {
		return f.LicenseHolder
	}
	return f.Name
}

func (p *Provider) ownerKey() string {
	if p.Owner != "" {
		return p.Owner
	}
	return p.Name
}
