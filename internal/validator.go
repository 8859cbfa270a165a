package internal

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	pkgerrs "github.com/jamesprial/go-redd/pkg/errors"
)

const (
	// User agent constraints
	maxUserAgentLength = 256
)

// usernameRegex matches valid reddit usernames (3-20 chars, alphanumeric + underscore + hyphen)
var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]{3,20}$`)

// Validator checks option values before they are frozen.
type Validator struct{}

// NewValidator creates a new Validator instance.
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateUserAgent validates the User-Agent string to prevent header injection attacks.
func (v *Validator) ValidateUserAgent(ua string) error {
	// User-Agent cannot be empty (should have been set to default before this check)
	if len(ua) == 0 {
		return &pkgerrs.ConfigError{Field: "user_agent", Message: "user agent cannot be empty"}
	}

	// Check for newline characters that could be used for header injection
	if strings.ContainsAny(ua, "\r\n") {
		return &pkgerrs.ConfigError{Field: "user_agent", Message: "user agent cannot contain newline characters"}
	}

	if len(ua) > maxUserAgentLength {
		return &pkgerrs.ConfigError{Field: "user_agent", Message: fmt.Sprintf("user agent too long (max %d characters)", maxUserAgentLength)}
	}

	return nil
}

// ValidateEndpoint checks that endpoint is an absolute http or https URL.
func (v *Validator) ValidateEndpoint(endpoint string) (*url.URL, error) {
	if endpoint == "" {
		return nil, &pkgerrs.ConfigError{Field: "endpoint", Message: "endpoint cannot be empty"}
	}

	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, &pkgerrs.ConfigError{Field: "endpoint", Message: "endpoint is not a valid URL", Err: err}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, &pkgerrs.ConfigError{Field: "endpoint", Message: fmt.Sprintf("endpoint scheme must be http or https, got %q", u.Scheme)}
	}
	if u.Host == "" {
		return nil, &pkgerrs.ConfigError{Field: "endpoint", Message: "endpoint must include a host"}
	}

	return u, nil
}

// ValidateUsername checks a reddit account name. An empty name is allowed;
// only the password grant needs one.
func (v *Validator) ValidateUsername(name string) error {
	if name == "" {
		return nil
	}
	if !usernameRegex.MatchString(name) {
		return &pkgerrs.ConfigError{Field: "username", Message: fmt.Sprintf("invalid reddit username %q", name)}
	}
	return nil
}

// ValidateKeys rejects option names that are not in allowed.
func (v *Validator) ValidateKeys(attrs map[string]any, allowed []string) error {
	for key := range attrs {
		known := false
		for _, a := range allowed {
			if key == a {
				known = true
				break
			}
		}
		if !known {
			return &pkgerrs.ConfigError{Field: key, Message: "unknown option"}
		}
	}
	return nil
}
