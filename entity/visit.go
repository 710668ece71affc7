package entity

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	isoDateRe  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	usDateRe   = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`)
	time24Re   = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)
	time12Re   = regexp.MustCompile(`^(\d{1,2}):(\d{2})\s*(?i:(AM|PM))$`)
	timeFullRe = regexp.MustCompile(`^\d{2}:\d{2}:\d{2}$`)
)

// NormalizeVisitDate accepts "YYYY-MM-DD" or "MM/DD/YYYY" and returns the
// ISO form. Unknown formats are passed through unchanged rather than rejected,
// the column is free-form text.
func NormalizeVisitDate(input string) (string, error) {
	v := strings.TrimSpace(input)
	if v == "" {
		return "", ValidationError{Code: "missing_visit_date"}
	}

	if isoDateRe.MatchString(v) {
		return v, nil
	}

	if m := usDateRe.FindStringSubmatch(v); m != nil {
		month, _ := strconv.Atoi(m[1])
		day, _ := strconv.Atoi(m[2])
		return fmt.Sprintf("%s-%02d-%02d", m[3], month, day), nil
	}

	return v, nil
}

// NormalizeVisitTime accepts "HH:MM" (24h) or "h:MM AM/PM" and returns
// "HH:MM:SS".
func NormalizeVisitTime(input string) (string, error) {
	v := strings.TrimSpace(input)
	if v == "" {
		return "", ValidationError{Code: "missing_visit_time"}
	}

	if timeFullRe.MatchString(v) {
		return v, nil
	}

	if m := time24Re.FindStringSubmatch(v); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute, _ := strconv.Atoi(m[2])
		if hour > 23 || minute > 59 {
			return "", ValidationError{Code: "invalid_visit_time", Detail: v}
		}
		return fmt.Sprintf("%02d:%02d:00", hour, minute), nil
	}

	if m := time12Re.FindStringSubmatch(v); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute, _ := strconv.Atoi(m[2])
		if hour < 1 || hour > 12 || minute > 59 {
			return "", ValidationError{Code: "invalid_visit_time", Detail: v}
		}
		if strings.EqualFold(m[3], "AM") {
			if hour == 12 {
				hour = 0
			}
		} else if hour != 12 {
			hour += 12
		}
		return fmt.Sprintf("%02d:%02d:00", hour, minute), nil
	}

	return v, nil
}
