package reconcile

import (
	"errors"
	"strings"

	"github.com/aws/smithy-go"
)

// Category is the normalized class assigned to an opaque external error.
type Category string

const (
	CategoryExpiredCredentials  Category = "expired-credentials"
	CategoryNoCredentials       Category = "no-credentials"
	CategoryStackInProgress     Category = "stack-in-progress"
	CategoryChangesetInProgress Category = "changeset-in-progress"
	CategoryUnclassified        Category = "unclassified"
)

// ClassifiedError pairs a category with the original error so the category
// drives messaging while the cause stays available for logging.
type ClassifiedError struct {
	Category Category
	Err      error
}

func (c ClassifiedError) Error() string {
	if c.Err == nil {
		return string(c.Category)
	}
	return c.Err.Error()
}

func (c ClassifiedError) Unwrap() error {
	return c.Err
}

// Guidance returns the user-facing advice for the category. Unclassified
// errors carry no advice; they are surfaced verbatim.
func (c ClassifiedError) Guidance() string {
	switch c.Category {
	case CategoryExpiredCredentials:
		return "Your AWS credentials have expired. Re-authenticate (for example `aws sso login`) and retry."
	case CategoryNoCredentials:
		return "No AWS credentials found. Configure credentials (for example `aws configure` or AWS_PROFILE) and retry."
	case CategoryStackInProgress:
		return "The stack is being modified by another operation. Wait for it to finish and try again shortly."
	case CategoryChangesetInProgress:
		return "A change set operation is in progress on the stack. Wait for it to finish and try again shortly."
	default:
		return ""
	}
}

// RawError is the normalized view of an opaque thrown error: a symbolic
// kind/code, the message, and up to two levels of nested cause. It is built
// once at the external-call boundary so the rest of the system only ever
// deals in classified errors.
type RawError struct {
	Code    string
	Message string
	Cause   *RawError
}

const maxCauseDepth = 2

// Normalize builds the RawError chain for err, reading the service error
// code at each wrapping level.
func Normalize(err error) *RawError {
	return normalize(err, 0)
}

func normalize(err error, depth int) *RawError {
	if err == nil || depth > maxCauseDepth {
		return nil
	}
	raw := &RawError{Message: err.Error()}
	if api, ok := err.(smithy.APIError); ok {
		raw.Code = api.ErrorCode()
	}
	raw.Cause = normalize(errors.Unwrap(err), depth+1)
	return raw
}

// Closed set of token-expiry and signature/identity-freshness codes. The
// AccessDenied family is deliberately absent: authorization failures must
// reach the user verbatim, not be reworded as "please re-authenticate".
var expiredCredentialCodes = map[string]bool{
	"ExpiredToken":          true,
	"ExpiredTokenException": true,
	"RequestExpired":        true,
	"InvalidClientTokenId":  true,
	"SignatureDoesNotMatch": true,
	"TokenRefreshRequired":  true,
	"InvalidIdentityToken":  true,
}

var noCredentialCodes = map[string]bool{
	"CredentialsNotFound":   true,
	"NoCredentialProviders": true,
}

// Classify maps an opaque external error to its category. It never panics:
// nil and code-less errors classify as Unclassified.
func Classify(err error) ClassifiedError {
	if err == nil {
		return ClassifiedError{Category: CategoryUnclassified}
	}

	var levels []*RawError
	for raw := Normalize(err); raw != nil; raw = raw.Cause {
		levels = append(levels, raw)
	}

	// Wrapping conventions vary across SDK operations; also pick up an API
	// error code from anywhere in the chain.
	var api smithy.APIError
	if errors.As(err, &api) {
		levels = append(levels, &RawError{Code: api.ErrorCode(), Message: api.ErrorMessage()})
	}

	for _, category := range []struct {
		cat   Category
		match func(*RawError) bool
	}{
		{CategoryExpiredCredentials, matchExpiredCredentials},
		{CategoryNoCredentials, matchNoCredentials},
		{CategoryChangesetInProgress, matchChangesetInProgress},
		{CategoryStackInProgress, matchStackInProgress},
	} {
		for _, raw := range levels {
			if category.match(raw) {
				return ClassifiedError{Category: category.cat, Err: err}
			}
		}
	}

	return ClassifiedError{Category: CategoryUnclassified, Err: err}
}

func matchExpiredCredentials(raw *RawError) bool {
	if expiredCredentialCodes[raw.Code] {
		return true
	}
	msg := strings.ToLower(raw.Message)
	if strings.Contains(msg, "expired token") {
		return true
	}
	if strings.Contains(msg, "security token") && strings.Contains(msg, "expired") {
		return true
	}
	return strings.Contains(msg, "credentials have expired")
}

func matchNoCredentials(raw *RawError) bool {
	if noCredentialCodes[raw.Code] {
		return true
	}
	msg := strings.ToLower(raw.Message)
	if strings.Contains(msg, "could not load credentials") {
		return true
	}
	if strings.Contains(msg, "no ec2 imds role found") {
		return true
	}
	return strings.Contains(msg, "no") && strings.Contains(msg, "credentials") && strings.Contains(msg, "found")
}

// Checked before the generic stack match so changeset messages carrying a
// *_IN_PROGRESS status token still land in their own category.
func matchChangesetInProgress(raw *RawError) bool {
	msg := strings.ToLower(raw.Message)
	if !strings.Contains(msg, "change set") && !strings.Contains(msg, "changeset") {
		return false
	}
	return strings.Contains(msg, "in_progress") ||
		strings.Contains(msg, "in progress") ||
		strings.Contains(msg, "pending")
}

func matchStackInProgress(raw *RawError) bool {
	if strings.Contains(raw.Message, "_IN_PROGRESS") {
		return true
	}
	return strings.Contains(strings.ToLower(raw.Message), "currently being updated")
}
