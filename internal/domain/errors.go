package domain

import "errors"

var (
	// ErrNoChange aborts a ChatStore.UpdateChat without saving; the caller
	// sees a nil error.
	ErrNoChange = errors.New("no change")

	ErrInvalidInput     = errors.New("empty submission")
	ErrNotFound         = errors.New("chat not found")
	ErrUnsupportedMedia = errors.New("attachment unreadable")
	ErrGeneration       = errors.New("model call failed")
	ErrEmptyResponse    = errors.New("model returned no usable text")
	ErrSchemaValidation = errors.New("capability output malformed")
)
