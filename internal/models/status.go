package models

import (
	"fmt"
	"strings"
)

// Status is the pipeline stage of an application. The wire and column value
// is the upper-case name.
type Status string

const (
	StatusSubmitted Status = "SUBMITTED"
	StatusScreening Status = "SCREENING"
	StatusInterview Status = "INTERVIEW"
	StatusOffer     Status = "OFFER"
	StatusHired     Status = "HIRED"
	StatusRejected  Status = "REJECTED"
)

// Statuses lists every stage in board order.
var Statuses = []Status{
	StatusSubmitted,
	StatusScreening,
	StatusInterview,
	StatusOffer,
	StatusHired,
	StatusRejected,
}

func (s Status) Valid() bool {
	return s.Index() >= 0
}

// Index returns the column position of s, or -1.
func (s Status) Index() int {
	for i, st := range Statuses {
		if st == s {
			return i
		}
	}
	return -1
}

func (s Status) Label() string {
	if s == "" {
		return ""
	}
	return string(s[0]) + strings.ToLower(string(s[1:]))
}

// ParseStatus accepts any casing and surrounding space.
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToUpper(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", fmt.Errorf("unknown status %q", raw)
	}
	return s, nil
}
