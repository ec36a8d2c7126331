package application

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrBlogNotFound       = errors.New("blog not found")
	ErrCommentNotFound    = errors.New("comment not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrAccountBlocked     = errors.New("account is blocked")
	ErrInvalidRole        = errors.New("invalid role")
	ErrInvalidResetToken  = errors.New("invalid or expired token")
	ErrSelfAction         = errors.New("cannot perform this action on yourself")
)

// ForbiddenError carries the policy denial reason; handlers map it to 403.
type ForbiddenError struct {
	Reason string
}

func (e *ForbiddenError) Error() string { return "forbidden: " + e.Reason }

// Forbidden wraps a policy reason as an error.
func Forbidden(reason string) error { return &ForbiddenError{Reason: reason} }

// IsForbidden reports whether err is a policy denial.
func IsForbidden(err error) bool {
	var fe *ForbiddenError
	return errors.As(err, &fe)
}
