package check

import "errors"

var (
	ErrOutOfOrderSample = errors.New("out-of-order sample")
	ErrUnknownKind      = errors.New("unknown check kind")
)
