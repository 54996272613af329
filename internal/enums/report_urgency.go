package enums

import "fmt"

// ReportUrgency is the triage level a professional assigns to a report.
type ReportUrgency string

const (
	ReportUrgencyLow    ReportUrgency = "low"
	ReportUrgencyMedium ReportUrgency = "medium"
	ReportUrgencyHigh   ReportUrgency = "high"
)

var validReportUrgencys = []ReportUrgency{
	ReportUrgencyLow,
	ReportUrgencyMedium,
	ReportUrgencyHigh,
}

// String implements fmt.Stringer.
func (r ReportUrgency) String() string {
	return string(r)
}

// IsValid reports whether the value is a known ReportUrgency.
func (r ReportUrgency) IsValid() bool {
	for _, candidate := range validReportUrgencys {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseReportUrgency converts raw input into a ReportUrgency.
func ParseReportUrgency(value string) (ReportUrgency, error) {
	for _, candidate := range validReportUrgencys {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid report urgency %q", value)
}
