package display

import (
	"strconv"
	"strings"
)

// Status is the tag of a Resolution.
type Status int

const (
	StatusNotFound Status = iota
	StatusFound
	StatusAmbiguous
)

func (s Status) String() string {
	switch s {
	case StatusFound:
		return "found"
	case StatusAmbiguous:
		return "ambiguous"
	default:
		return "not_found"
	}
}

// Resolution is the result of resolving a selector against a snapshot.
type Resolution struct {
	Status   Status
	Selector string
	Display  Display
	// Matches holds every candidate for StatusAmbiguous.
	Matches []Display
}

// Err converts a non-found resolution into a classified error.
func (r Resolution) Err() error {
	const op = "resolve display"
	switch r.Status {
	case StatusFound:
		return nil
	case StatusAmbiguous:
		names := make([]string, len(r.Matches))
		for i, d := range r.Matches {
			names[i] = strconv.Itoa(d.Index) + ":" + d.SourceHandle
		}
		return Newf(KindAmbiguous, op, "display %q is ambiguous (matches %s)", r.Selector, strings.Join(names, ", "))
	default:
		return Newf(KindNotFound, op, "display %q not found", r.Selector)
	}
}

// IsHandle reports whether selector is prefix followed by one or more digits.
func IsHandle(selector, prefix string) bool {
	if prefix == "" || !strings.HasPrefix(selector, prefix) {
		return false
	}
	return isDigits(selector[len(prefix):])
}

// Resolve maps selector onto exactly one display of the snapshot.
//
// A source handle is returned as-is with Index -1, without checking that the
// snapshot contains it. An all-digit selector is a zero-based index. Anything
// else is matched as a case-sensitive substring of the friendly name or the
// source handle; more than one match is ambiguous.
func Resolve(selector string, displays []Display, handlePrefix string) Resolution {
	res := Resolution{Selector: selector}
	if selector == "" {
		return res
	}

	if IsHandle(selector, handlePrefix) {
		res.Status = StatusFound
		res.Display = Display{SourceHandle: selector, Index: -1}
		return res
	}

	if isDigits(selector) {
		idx, err := strconv.Atoi(selector)
		if err != nil || idx >= len(displays) {
			return res
		}
		res.Status = StatusFound
		res.Display = displays[idx]
		return res
	}

	for _, d := range displays {
		if strings.Contains(d.FriendlyName, selector) || strings.Contains(d.SourceHandle, selector) {
			res.Matches = append(res.Matches, d)
		}
	}
	switch len(res.Matches) {
	case 0:
	case 1:
		res.Status = StatusFound
		res.Display = res.Matches[0]
		res.Matches = nil
	default:
		res.Status = StatusAmbiguous
	}
	return res
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
