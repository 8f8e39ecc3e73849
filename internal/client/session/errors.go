package session

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrDuplicateAccount   = errors.New("account already exists")
	ErrWeakInput          = errors.New("input rejected")
	ErrNetwork            = errors.New("backend unreachable")
	ErrSessionExpired     = errors.New("session expired")

	ErrProfileNotFound  = errors.New("profile not found")
	ErrDuplicateProfile = errors.New("profile already exists")
)

func isNotFound(err error) bool {
	return errors.Is(err, ErrProfileNotFound)
}

func isDuplicate(err error) bool {
	return errors.Is(err, ErrDuplicateProfile)
}
