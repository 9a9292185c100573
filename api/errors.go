package api

import (
	"regexp"
	"strconv"
	"strings"
)

// Category is the user-facing classification of a failure. Transport errors
// and application-level failures are categorized identically; the distinction
// is never surfaced.
type Category string

const (
	// CategoryRateLimited: the provider throttled the request; wait it out
	CategoryRateLimited Category = "rate_limited"

	// CategoryQuotaExceeded: the account is out of processing credit
	CategoryQuotaExceeded Category = "quota_exceeded"

	// CategoryAuthFailure: the server's provider credentials are bad
	CategoryAuthFailure Category = "auth_failure"

	// CategoryGeneric: anything else
	CategoryGeneric Category = "generic"
)

// CategorizedError is a failure decorated with its category, a remediation
// hint, and an extracted wait time when the server mentioned one.
type CategorizedError struct {
	Category Category

	// Message is the raw server or transport error text
	Message string

	// Advice is the remediation text shown alongside the message
	Advice string

	// WaitMinutes is the wait the server asked for, when rate limited and
	// a duration could be extracted; 0 otherwise
	WaitMinutes int
}

var waitMinutesRe = regexp.MustCompile(`(\d+)\s*min`)

// Structured error kinds the server may send in an error_kind field. When
// present they take precedence over message pattern-matching.
var kindCategories = map[string]Category{
	"rate_limited":   CategoryRateLimited,
	"quota_exceeded": CategoryQuotaExceeded,
	"auth_failure":   CategoryAuthFailure,
}

// Categorize classifies a failure for display. Newer servers send a
// machine-readable error_kind; older ones only a human message, which is
// pattern-matched as a compatibility shim.
func Categorize(err error) *CategorizedError {
	message := "An unexpected error occurred"
	kind := ""
	if err != nil {
		message = err.Error()
	}
	if apiErr, ok := err.(*APIError); ok && apiErr.Kind != "" {
		kind = apiErr.Kind
	}

	category, ok := kindCategories[kind]
	if !ok {
		category = categorizeMessage(message)
	}

	ce := &CategorizedError{Category: category, Message: message}
	switch category {
	case CategoryRateLimited:
		ce.Advice = "The AI service is rate limited right now. Wait a bit and try again, or upload a file instead of a URL."
		if m := waitMinutesRe.FindStringSubmatch(message); m != nil {
			ce.WaitMinutes, _ = strconv.Atoi(m[1])
		}
	case CategoryQuotaExceeded:
		ce.Advice = "The processing quota has been used up. Check the billing settings or wait for the quota to reset."
	case CategoryAuthFailure:
		ce.Advice = "The server could not authenticate with its AI provider. This needs an administrator to fix the API credentials."
	default:
		ce.Advice = "Something went wrong. Please try again in a moment."
	}
	return ce
}

func categorizeMessage(message string) Category {
	lower := strings.ToLower(message)
	switch {
	case strings.Contains(message, "⏳") || strings.Contains(lower, "rate limit"):
		return CategoryRateLimited
	case strings.Contains(message, "💳") || strings.Contains(lower, "quota"):
		return CategoryQuotaExceeded
	case strings.Contains(message, "🔑") || strings.Contains(lower, "auth"):
		return CategoryAuthFailure
	}
	return CategoryGeneric
}
