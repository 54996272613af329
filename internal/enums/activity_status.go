package enums

import "fmt"

// ActivityStatus tracks progress on a user's activity.
type ActivityStatus string

const (
	ActivityStatusPending    ActivityStatus = "pending"
	ActivityStatusInProgress ActivityStatus = "in_progress"
	ActivityStatusCompleted  ActivityStatus = "completed"
)

var validActivityStatuses = []ActivityStatus{
	ActivityStatusPending,
	ActivityStatusInProgress,
	ActivityStatusCompleted,
}

// String implements fmt.Stringer.
func (a ActivityStatus) String() string {
	return string(a)
}

// IsValid reports whether the value is a known ActivityStatus.
func (a ActivityStatus) IsValid() bool {
	for _, candidate := range validActivityStatuses {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseActivityStatus converts raw input into an ActivityStatus.
func ParseActivityStatus(value string) (ActivityStatus, error) {
	for _, candidate := range validActivityStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid activity status %q", value)
}

// ActivityStatuses lists the allowed values in display order.
func ActivityStatuses() []ActivityStatus {
	out := make([]ActivityStatus, len(validActivityStatuses))
	copy(out, validActivityStatuses)
	return out
}
