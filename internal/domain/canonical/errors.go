package canonical

import "github.com/cockroachdb/errors"

var (
	ErrUnknownDimension    = errors.New("unknown dimension")
	ErrUnknownConversion   = errors.New("unknown conversion")
	ErrUnknownCanonicalKey = errors.New("unknown canonical key")
	ErrInvalidRegistry     = errors.New("invalid canonical registry")
)
