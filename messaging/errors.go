package messaging

import "errors"

// Caller-fixable failures surfaced by the message store. None of these are
// retried by the store itself; ErrUnavailable wraps transient storage faults
// and may be retried once by the caller.
var (
	ErrInvalidRecipient = errors.New("recipient does not resolve to a known participant")
	ErrEmptyContent     = errors.New("subject and content must not be empty")
	ErrSelfMessage      = errors.New("sender and recipient are the same participant")
	ErrNotFound         = errors.New("message not found")
	ErrForbidden        = errors.New("requester is neither sender nor recipient")
	ErrUnavailable      = errors.New("message store unavailable")
)
