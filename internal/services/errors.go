package services

import "errors"

var (
	ErrSelfInteraction      = errors.New("cannot interact with self")
	ErrInvalidAction        = errors.New("invalid action")
	ErrDuplicateInteraction = errors.New("interaction already recorded for this user")
	ErrUserNotFound         = errors.New("user not found")
	ErrMatchNotFound        = errors.New("match not found")
	ErrNoActiveMatch        = errors.New("no active match between users")
	ErrNotParticipant       = errors.New("not a match participant")
	ErrNoCandidates         = errors.New("no more candidates")
	ErrAlreadyViewed        = errors.New("candidate already viewed")
	ErrInvitationNotFound   = errors.New("invitation not found")
	ErrInvalidStatus        = errors.New("invalid invitation status")
)
