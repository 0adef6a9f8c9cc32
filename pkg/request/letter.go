// Package request generates public-records request letters from the
// per-state configuration tables.
package request

import (
	"strings"
	"text/template"
	"time"

	"github.com/civicsignal/regwatch/pkg/states"
	"github.com/pkg/errors"
)

const letterTemplate = `{{ .Date }}

{{ .Recipient }}
{{ .RegistryName }}

RE: Public records request under the {{ .Statute }}

To whom it may concern:

Pursuant to the {{ .Statute }}, I request copies of the following records
concerning {{ .Subject }}:

{{ range .Records }}  - {{ . }}
{{ end }}
I request these records in electronic form where available. If any portion
of this request is denied, please cite the specific exemption claimed and
release all reasonably segregable non-exempt portions.
{{ if .ResponseDays }}
I look forward to your response within the {{ .ResponseDays }} days provided
by statute.
{{ end }}
Sincerely,

{{ .Requester }}
`

// Request describes one records request to be rendered as a letter.
type Request struct {
	// Subject identifies the entity the records concern, e.g. a business
	// name with its registry file number.
	Subject string

	// Records are the individual record descriptions requested.
	Records []string

	// Requester is the signature line.
	Requester string

	// Date overrides the letter date; zero means today.
	Date time.Time
}

type letterData struct {
	Date         string
	Recipient    string
	RegistryName string
	Statute      string
	Subject      string
	Records      []string
	ResponseDays int
	Requester    string
}

var tmpl = template.Must(template.New("letter").Parse(letterTemplate))

// Letter renders a records-request letter for the given state profile.
func Letter(p *states.Profile, r Request) (string, error) {
	if p == nil {
		return "", errors.New("state profile is required")
	}
	if r.Subject == "" {
		return "", errors.New("subject is required")
	}
	if len(r.Records) == 0 {
		return "", errors.New("at least one record description is required")
	}

	date := r.Date
	if date.IsZero() {
		date = time.Now()
	}

	requester := r.Requester
	if requester == "" {
		requester = "Records Requester"
	}

	recipient := p.RecordsRecipient
	if recipient == "" {
		recipient = "Records Custodian"
	}

	data := letterData{
		Date:         date.Format("January 2, 2006"),
		Recipient:    recipient,
		RegistryName: p.RegistryName,
		Statute:      p.RecordsStatute,
		Subject:      r.Subject,
		Records:      r.Records,
		ResponseDays: p.ResponseDays,
		Requester:    requester,
	}

	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return "", errors.Wrap(err, "failed to render letter")
	}

	return b.String(), nil
}
