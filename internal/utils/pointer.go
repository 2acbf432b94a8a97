package utils

// Ptr returns a pointer to v, for optional request fields such as
// temperature or max tokens.
//
//	req.Temperature = utils.Ptr(0.2)
func Ptr[T any](v T) *T {
	return &v
}
