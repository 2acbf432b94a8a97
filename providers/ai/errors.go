package ai

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedCapability is returned when a provider, or the model it
	// was asked to use, cannot produce the requested output. It points to a
	// caller or configuration mistake rather than a transient failure.
	ErrUnsupportedCapability = errors.New("capability not supported")

	// ErrProviderCall wraps every failure coming from a provider endpoint:
	// transport errors, non-2xx responses and undecodable bodies.
	ErrProviderCall = errors.New("provider call failed")

	// ErrMissingAPIKey reports that a provider has no API key configured.
	ErrMissingAPIKey = errors.New("missing API key")

	// ErrInvalidRequest reports a request missing a field the provider needs.
	ErrInvalidRequest = errors.New("invalid request")
)

// CallError wraps err in ErrProviderCall. A nil err stays nil.
func CallError(err error) error {
	if err == nil || errors.Is(err, ErrProviderCall) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrProviderCall, err)
}

// RequireAPIKey returns ErrMissingAPIKey when key is empty.
func RequireAPIKey(provider, key string) error {
	if key == "" {
		return fmt.Errorf("%w for %s", ErrMissingAPIKey, provider)
	}
	return nil
}
