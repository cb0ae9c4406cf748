// Package validation holds the input rules shared by the trip engine and
// the HTTP handlers.
package validation

import (
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/tripweave/tripweave-backend/errors"
	"github.com/tripweave/tripweave-backend/types"
)

// shortIDAlphabet omits characters that are easy to misread (0, 1, i, l, o).
const shortIDAlphabet = "23456789abcdefghjkmnpqrstuvwxyz"

const shortIDLength = 7

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
	})
	return validate
}

// IsEmail reports whether s is a syntactically valid email address.
func IsEmail(s string) bool {
	return getValidator().Var(s, "required,email") == nil
}

// IsShortID reports whether s is a 7 character short user id.
func IsShortID(s string) bool {
	if len(s) != shortIDLength {
		return false
	}
	for _, r := range strings.ToLower(s) {
		if !strings.ContainsRune(shortIDAlphabet, r) {
			return false
		}
	}
	return true
}

// ValidateParticipantID accepts an email or a short user id. The id is
// trimmed before checking.
func ValidateParticipantID(id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return errors.ValidationFailed("invalid participant", "participant identifier is required")
	}
	if IsEmail(id) || IsShortID(id) {
		return nil
	}
	return errors.ValidationFailed(
		"invalid participant",
		fmt.Sprintf("%q is neither an email nor a short user id", id),
	)
}

// ParseDate parses a calendar date. ok is false for blank or malformed input.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(types.DateLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// ValidateDateRange rejects an end date before the start date. Either side
// may be blank.
func ValidateDateRange(start, end string) error {
	s, okStart := ParseDate(start)
	e, okEnd := ParseDate(end)
	if okStart && okEnd && e.Before(s) {
		return errors.ValidationFailed("invalid dates", "end date cannot be before start date")
	}
	return nil
}

// ValidateDocURL accepts absolute http and https URLs only.
func ValidateDocURL(raw string) error {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || !u.IsAbs() || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return errors.ValidationFailed("invalid url", fmt.Sprintf("%q is not an http(s) URL", raw))
	}
	return nil
}
