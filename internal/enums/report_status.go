package enums

import "fmt"

// ReportStatus is the review state of a listener report.
type ReportStatus string

const (
	ReportStatusUnreviewed       ReportStatus = "unreviewed"
	ReportStatusReviewed         ReportStatus = "reviewed"
	ReportStatusRequiresFollowup ReportStatus = "requires_followup"
)

var validReportStatuses = []ReportStatus{
	ReportStatusUnreviewed,
	ReportStatusReviewed,
	ReportStatusRequiresFollowup,
}

// String implements fmt.Stringer.
func (r ReportStatus) String() string {
	return string(r)
}

// IsValid reports whether the value is a known ReportStatus.
func (r ReportStatus) IsValid() bool {
	for _, candidate := range validReportStatuses {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseReportStatus converts raw input into a ReportStatus.
func ParseReportStatus(value string) (ReportStatus, error) {
	for _, candidate := range validReportStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid report status %q", value)
}
