// Package errs defines the coded error type used at every component boundary
// of the publish pipeline. Callers branch on Code, never on message text.
package errs

import (
	"errors"
	"fmt"
	"strings"
)

// Code is a stable, machine-readable failure identifier.
// Codes are namespaced by subsystem prefix (GIT_, REMOTE_, AUTH_, ...).
type Code string

// Tooling and repository.
const (
	CodeGitNotInstalled Code = "GIT_NOT_INSTALLED"
	CodeGitInitDeclined Code = "GIT_INIT_DECLINED"
	CodeGitInitFailed   Code = "GIT_INIT_FAILED"
	CodeGitStatusFailed Code = "GIT_STATUS_FAILED"
	CodeGitConfigFailed Code = "GIT_CONFIG_FAILED"
	CodeGitPushFailed   Code = "GIT_PUSH_FAILED"
)

// Remotes and authentication.
const (
	CodeRemoteNoTooling      Code = "REMOTE_NO_TOOLING"
	CodeRemoteCreateDeclined Code = "REMOTE_CREATE_DECLINED"
	CodeRemoteCreateFailed   Code = "REMOTE_CREATE_FAILED"
	CodeRemoteAttachFailed   Code = "REMOTE_ATTACH_FAILED"
	CodeRemoteLookupFailed   Code = "REMOTE_LOOKUP_FAILED"
	CodeAuthFailed           Code = "AUTH_FAILED"
)

// Local changes.
const (
	CodeCommitDeclined Code = "COMMIT_DECLINED"
	CodeCommitFailed   Code = "COMMIT_FAILED"
)

// Reference resolution.
const (
	CodeRefNoBranches      Code = "REF_NO_BRANCHES"
	CodeRefNoTags          Code = "REF_NO_TAGS"
	CodeRefListFailed      Code = "REF_LIST_FAILED"
	CodeRefTagCreateFailed Code = "REF_TAG_CREATE_FAILED"
)

// Registries.
const (
	CodeRegistryPublishFailed Code = "REGISTRY_PUBLISH_FAILED"
	CodeRegistryUnknown       Code = "REGISTRY_UNKNOWN"
	CodeJSRManifestMissing    Code = "JSR_MANIFEST_MISSING"
	CodeJSRManifestInvalid    Code = "JSR_MANIFEST_INVALID"
	CodeJSRAutofixDeclined    Code = "JSR_AUTOFIX_DECLINED"
	CodeJSRAutofixFailed      Code = "JSR_AUTOFIX_FAILED"
	CodeJSRTokenMissing       Code = "JSR_TOKEN_MISSING"
)

// Prompts and option validation.
const (
	CodePromptCancelled   Code = "PROMPT_CANCELLED"
	CodePromptFailed      Code = "PROMPT_FAILED"
	CodeValidationFailed  Code = "VALIDATION_FAILED"
	CodeValidationRefArgs Code = "VALIDATION_CONFLICTING_REFS"
)

// Error is a coded pipeline failure.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

// New creates an error without a cause.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates an error with a formatted message.
func Newf(code Code, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying failure.
// A nil cause yields an error without a cause.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches another *Error by code so errors.Is works against sentinels
// built with New.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// CodeOf returns the code of the outermost *Error in err's chain, or "".
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// Is reports whether err carries the given code.
func Is(err error, code Code) bool {
	return err != nil && CodeOf(err) == code
}

// IsDeclined reports whether err is a user decline of a remediation step.
func IsDeclined(err error) bool {
	return strings.HasSuffix(string(CodeOf(err)), "_DECLINED")
}

// IsCancelled reports whether an aborted prompt appears anywhere in err's
// chain.
func IsCancelled(err error) bool {
	return err != nil && errors.Is(err, errCancelled)
}

var errCancelled = New(CodePromptCancelled, "prompt cancelled")

// Detail renders the full cause chain, one cause per line. Used for
// verbose failure output.
func Detail(err error) string {
	if err == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(err.Error())
	for cause := errors.Unwrap(err); cause != nil; cause = errors.Unwrap(cause) {
		b.WriteString("\n  caused by: ")
		b.WriteString(cause.Error())
	}
	return b.String()
}
