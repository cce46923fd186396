package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a contactbook error code.
type ErrorCode string

const (
	ErrInvalidPhone    ErrorCode = "INVALID_PHONE"      // format
	ErrInvalidDate     ErrorCode = "INVALID_DATE"       // format
	ErrInvalidEmail    ErrorCode = "INVALID_EMAIL"      // format
	ErrInvalidHashtag  ErrorCode = "INVALID_HASHTAG"    // format
	ErrInvalidNote     ErrorCode = "INVALID_NOTE"       // format
	ErrInvalidName     ErrorCode = "INVALID_NAME"       // format
	ErrInvalidAddress  ErrorCode = "INVALID_ADDRESS"    // format
	ErrIndexOutOfRange ErrorCode = "INDEX_OUT_OF_RANGE" // index
	ErrNoEmail         ErrorCode = "NO_EMAIL"           // state
	ErrNoAddress       ErrorCode = "NO_ADDRESS"         // state
	ErrNotFound        ErrorCode = "NOT_FOUND"
	ErrDecode          ErrorCode = "DECODE_ERROR"
	ErrInvalidRequest  ErrorCode = "INVALID_REQUEST"
	ErrInternal        ErrorCode = "INTERNAL"
)

// Kind groups error codes by how a caller recovers from them.
type Kind string

const (
	KindFormat         Kind = "FORMAT"
	KindIndex          Kind = "INDEX"
	KindState          Kind = "STATE"
	KindNotFound       Kind = "NOT_FOUND"
	KindDecode         Kind = "DECODE"
	KindInvalidRequest Kind = "INVALID_REQUEST"
	KindInternal       Kind = "INTERNAL"
)

// ContactError represents a structured error with code, kind, and details.
type ContactError struct {
	Code    ErrorCode
	Kind    Kind
	Message string
	Details map[string]any
	Err     error
}

// Error implements the error interface.
func (e *ContactError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *ContactError) Unwrap() error {
	return e.Err
}

func newFormat(code ErrorCode, value, msg string) *ContactError {
	return &ContactError{
		Code:    code,
		Kind:    KindFormat,
		Message: msg,
		Details: map[string]any{"value": value},
	}
}

// NewInvalidPhone creates a format error for a phone that is not exactly 10 digits.
func NewInvalidPhone(value string) *ContactError {
	return newFormat(ErrInvalidPhone, value,
		fmt.Sprintf("invalid phone %q: must be exactly 10 digits", value))
}

// NewInvalidDate creates a format error for a birthday that is not a real DD.MM.YYYY date.
func NewInvalidDate(value string) *ContactError {
	return newFormat(ErrInvalidDate, value,
		fmt.Sprintf("invalid date %q: use DD.MM.YYYY", value))
}

// NewInvalidEmail creates a format error for a malformed email address.
func NewInvalidEmail(value string) *ContactError {
	return newFormat(ErrInvalidEmail, value,
		fmt.Sprintf("invalid email %q", value))
}

// NewInvalidHashtag creates a format error for a token that is not #word.
func NewInvalidHashtag(value string) *ContactError {
	return newFormat(ErrInvalidHashtag, value,
		fmt.Sprintf("invalid hashtag %q: must be # followed by letters, digits or _", value))
}

// NewInvalidNote creates a format error for note text outside 1..max characters.
func NewInvalidNote(chars, max int) *ContactError {
	return &ContactError{
		Code:    ErrInvalidNote,
		Kind:    KindFormat,
		Message: fmt.Sprintf("note text must be 1 to %d characters, got %d", max, chars),
		Details: map[string]any{"max_chars": max, "actual_chars": chars},
	}
}

// NewInvalidName creates a format error for an empty or over-long contact name.
func NewInvalidName(value string) *ContactError {
	return newFormat(ErrInvalidName, value,
		fmt.Sprintf("invalid name %q: use a first name and an optional last name", value))
}

// NewInvalidAddress creates a format error for an address outside 1..max characters.
func NewInvalidAddress(chars, max int) *ContactError {
	return &ContactError{
		Code:    ErrInvalidAddress,
		Kind:    KindFormat,
		Message: fmt.Sprintf("address must be 1 to %d characters, got %d", max, chars),
		Details: map[string]any{"max_chars": max, "actual_chars": chars},
	}
}

// NewIndexOutOfRange creates an index error for a positional phone or note reference.
func NewIndexOutOfRange(what string, index, length int) *ContactError {
	return &ContactError{
		Code:    ErrIndexOutOfRange,
		Kind:    KindIndex,
		Message: fmt.Sprintf("%s index %d out of range [0, %d)", what, index, length),
		Details: map[string]any{"what": what, "index": index, "length": length},
	}
}

// NewNoEmail creates a state error for editing an email that was never set.
func NewNoEmail(name string) *ContactError {
	return &ContactError{
		Code:    ErrNoEmail,
		Kind:    KindState,
		Message: fmt.Sprintf("contact %q has no email", name),
		Details: map[string]any{"name": name},
	}
}

// NewNoAddress creates a state error for editing or deleting a missing address.
func NewNoAddress(name string) *ContactError {
	return &ContactError{
		Code:    ErrNoAddress,
		Kind:    KindState,
		Message: fmt.Sprintf("contact %q has no address", name),
		Details: map[string]any{"name": name},
	}
}

// NewNotFound creates a not-found error for a contact, field value, or file.
func NewNotFound(what, identifier string) *ContactError {
	return &ContactError{
		Code:    ErrNotFound,
		Kind:    KindNotFound,
		Message: fmt.Sprintf("%s not found: %s", what, identifier),
		Details: map[string]any{"what": what, "identifier": identifier},
	}
}

// NewFileNotFound creates a not-found error for a missing backing file.
func NewFileNotFound(path string) *ContactError {
	return NewNotFound("file", path)
}

// NewDecode creates a decode error for a malformed or partially invalid document.
func NewDecode(source string, err error) *ContactError {
	msg := "malformed contacts document"
	if err != nil {
		msg = fmt.Sprintf("malformed contacts document: %v", err)
	}
	return &ContactError{
		Code:    ErrDecode,
		Kind:    KindDecode,
		Message: msg,
		Details: map[string]any{"source": source},
		Err:     err,
	}
}

// NewInvalidRequest creates an error for invalid command parameters.
func NewInvalidRequest(msg string) *ContactError {
	return &ContactError{
		Code:    ErrInvalidRequest,
		Kind:    KindInvalidRequest,
		Message: msg,
	}
}

// NewInternal creates an error for unexpected internal failures.
func NewInternal(err error) *ContactError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &ContactError{
		Code:    ErrInternal,
		Kind:    KindInternal,
		Message: msg,
		Err:     err,
	}
}

// Is checks if an error is a ContactError with the given code.
func Is(err error, code ErrorCode) bool {
	var cErr *ContactError
	if stderrors.As(err, &cErr) {
		return cErr.Code == code
	}
	return false
}

// Recoverable reports whether err belongs to the taxonomy a caller can report and continue past.
func Recoverable(err error) bool {
	var cErr *ContactError
	if !stderrors.As(err, &cErr) {
		return false
	}
	return cErr.Kind != KindInternal
}
