// internal/dom/errors.go
package dom

import (
	"errors"
	"fmt"
)

// ErrorKind is the DOMException legacy code carried by a recoverable error.
// The numeric values are the ones a host boundary hands across as status codes.
type ErrorKind int

const (
	IndexSize             ErrorKind = 1
	HierarchyRequest      ErrorKind = 3
	WrongDocument         ErrorKind = 4
	InvalidCharacter      ErrorKind = 5
	NoModificationAllowed ErrorKind = 7
	NotFound              ErrorKind = 8
	NotSupported          ErrorKind = 9
	InUseAttribute        ErrorKind = 10
	InvalidState          ErrorKind = 11
	Syntax                ErrorKind = 12
	InvalidModification   ErrorKind = 13
	Namespace             ErrorKind = 14
)

var kindNames = map[ErrorKind]string{
	IndexSize:             "IndexSizeError",
	HierarchyRequest:      "HierarchyRequestError",
	WrongDocument:         "WrongDocumentError",
	InvalidCharacter:      "InvalidCharacterError",
	NoModificationAllowed: "NoModificationAllowedError",
	NotFound:              "NotFoundError",
	NotSupported:          "NotSupportedError",
	InUseAttribute:        "InUseAttributeError",
	InvalidState:          "InvalidStateError",
	Syntax:                "SyntaxError",
	InvalidModification:   "InvalidModificationError",
	Namespace:             "NamespaceError",
}

var kindMessages = map[ErrorKind]string{
	IndexSize:             "index or offset is out of range",
	HierarchyRequest:      "the operation would yield an incorrect node tree",
	WrongDocument:         "the object is in the wrong document",
	InvalidCharacter:      "the string contains invalid characters",
	NoModificationAllowed: "the object can not be modified",
	NotFound:              "the object can not be found here",
	NotSupported:          "the operation is not supported",
	InUseAttribute:        "the attribute is in use by another element",
	InvalidState:          "the object is in an invalid state",
	Syntax:                "the string did not match the expected pattern",
	InvalidModification:   "the object can not be modified in this way",
	Namespace:             "the operation is not allowed by Namespaces in XML",
}

// String returns the DOMException name of the kind.
func (k ErrorKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// ErrorName returns the DOMException name for a numeric code, or "" when the
// code is 0 (success) or unknown.
func ErrorName(code int) string {
	if name, ok := kindNames[ErrorKind(code)]; ok {
		return name
	}
	return ""
}

// ErrorMessage returns the human readable description for a numeric code.
func ErrorMessage(code int) string {
	if code == 0 {
		return "success"
	}
	if msg, ok := kindMessages[ErrorKind(code)]; ok {
		return msg
	}
	return "unknown error"
}

// Error is the recoverable error returned by every failing DOM operation.
type Error struct {
	Kind ErrorKind
	Op   string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if msg == "" {
		msg = kindMessages[e.Kind]
	}
	if e.Op == "" {
		return fmt.Sprintf("%s: %s", e.Kind, msg)
	}
	return fmt.Sprintf("%s: %s: %s", e.Op, e.Kind, msg)
}

// Is matches any *Error of the same kind, so the sentinels below work with errors.Is.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

func (e *Error) Unwrap() error { return e.Err }

// Code returns the numeric DOMException code.
func (e *Error) Code() int { return int(e.Kind) }

// Sentinels for errors.Is checks.
var (
	ErrIndexSize             = &Error{Kind: IndexSize}
	ErrHierarchyRequest      = &Error{Kind: HierarchyRequest}
	ErrWrongDocument         = &Error{Kind: WrongDocument}
	ErrInvalidCharacter      = &Error{Kind: InvalidCharacter}
	ErrNoModificationAllowed = &Error{Kind: NoModificationAllowed}
	ErrNotFound              = &Error{Kind: NotFound}
	ErrNotSupported          = &Error{Kind: NotSupported}
	ErrInUseAttribute        = &Error{Kind: InUseAttribute}
	ErrInvalidState          = &Error{Kind: InvalidState}
	ErrSyntax                = &Error{Kind: Syntax}
	ErrInvalidModification   = &Error{Kind: InvalidModification}
	ErrNamespace             = &Error{Kind: Namespace}
)

func newError(kind ErrorKind, op, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// CodeOf maps any error to its numeric DOMException code: 0 for nil, -1 for
// errors that did not originate in this package.
func CodeOf(err error) int {
	if err == nil {
		return 0
	}
	var de *Error
	if errors.As(err, &de) {
		return de.Code()
	}
	return -1
}

// invariant panics when an engine-internal invariant does not hold. These
// indicate a bug in the engine and are never converted into an *Error.
func invariant(cond bool, format string, args ...any) {
	if !cond {
		panic(fmt.Sprintf("dom: invariant violated: "+format, args...))
	}
}
