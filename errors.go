package panotour

import (
	"errors"
	"fmt"
)

// ErrorKind classifies the failures the viewer can surface. None of them are
// fatal: they degrade to "stay on the current panorama" or "marker present but
// drawn without an icon".
type ErrorKind int

const (
	KindUnresolvedTarget ErrorKind = iota + 1
	KindAssetLoadFailure
	KindMissingIcon
)

func (k ErrorKind) String() string {
	switch k {
	case KindUnresolvedTarget:
		return "unresolved target"
	case KindAssetLoadFailure:
		return "asset load failure"
	case KindMissingIcon:
		return "missing icon"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// Error is returned by the navigator and session. Match the kind with
// errors.Is against ErrUnresolvedTarget, ErrAssetLoad or ErrMissingIcon.
type Error struct {
	Kind       ErrorKind
	PanoramaID int
	Ref        string
	Err        error
}

var (
	ErrUnresolvedTarget = &Error{Kind: KindUnresolvedTarget}
	ErrAssetLoad        = &Error{Kind: KindAssetLoadFailure}
	ErrMissingIcon      = &Error{Kind: KindMissingIcon}
)

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.PanoramaID != 0 {
		msg = fmt.Sprintf("%s: panorama %d", msg, e.PanoramaID)
	}
	if e.Ref != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.Ref)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches on kind only, so a sentinel matches every error of its kind.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the kind of err, or 0 when err is not an *Error.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
