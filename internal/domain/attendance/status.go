// internal/domain/attendance/status.go
package attendance

import (
	"fmt"
	"strings"
)

// Status is the canonical attendance state of a member on a duty date.
type Status string

const (
	StatusPresent Status = "PRESENT"
	StatusExcused Status = "EXCUSED"
	StatusSick    Status = "SICK"
	StatusAbsent  Status = "ABSENT"
	// StatusUnmarked is virtual: no record exists for the (member, date) pair.
	// It is never persisted and never produced by ParseStatus.
	StatusUnmarked Status = "UNMARKED"
)

// Marked lists the statuses that can be written, in display order.
var Marked = []Status{StatusPresent, StatusExcused, StatusSick, StatusAbsent}

// Label returns the Indonesian label shown to administrators.
func (s Status) Label() string {
	switch s {
	case StatusPresent:
		return "Hadir"
	case StatusExcused:
		return "Izin"
	case StatusSick:
		return "Sakit"
	case StatusAbsent:
		return "Tidak Hadir"
	default:
		return "Belum Diabsen"
	}
}

// UnknownStatusError is returned when a raw status string is not part of the vocabulary.
type UnknownStatusError struct {
	Raw string
}

func (e *UnknownStatusError) Error() string {
	return fmt.Sprintf("unknown attendance status %q", e.Raw)
}

var vocabulary = map[string]Status{
	"present":     StatusPresent,
	"hadir":       StatusPresent,
	"excused":     StatusExcused,
	"izin":        StatusExcused,
	"sick":        StatusSick,
	"sakit":       StatusSick,
	"absent":      StatusAbsent,
	"alpa":        StatusAbsent,
	"alpha":       StatusAbsent,
	"tidak hadir": StatusAbsent,
	"tidak_hadir": StatusAbsent,
	"not present": StatusAbsent,
}

// ParseStatus maps a raw status string onto the canonical enum.
// Unrecognized input is an error; it is never guessed.
func ParseStatus(raw string) (Status, error) {
	key := strings.ToLower(strings.Join(strings.Fields(raw), " "))
	if s, ok := vocabulary[key]; ok {
		return s, nil
	}
	return "", &UnknownStatusError{Raw: raw}
}
