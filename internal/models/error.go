package models

import "errors"

// Sentinel errors for common failure conditions
var (
	ErrNotFound       = errors.New("resource not found")
	ErrConflict       = errors.New("resource already exists")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrBadRequest     = errors.New("bad request")
	ErrInternalServer = errors.New("internal server error")

	// Ban lifecycle errors
	ErrUserNotFound       = errors.New("user not found")
	ErrNoActiveBan        = errors.New("no active ban for user")
	ErrNoAppealableBan    = errors.New("no appealable ban for user")
	ErrAppealNotFound     = errors.New("no pending appeal for ban")
	ErrInvalidBanDuration = errors.New("invalid ban duration")
)
