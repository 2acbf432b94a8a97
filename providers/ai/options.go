package ai

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// DecodeOptions copies the provider-specific entries of a request's Options
// map into target, a pointer to a struct with json tags. Values are converted
// weakly, so 25, 25.0 and "25" all fill an int field. Unknown keys are
// ignored and fields without a matching key keep their current value.
func DecodeOptions(options map[string]any, target any) error {
	if len(options) == 0 {
		return nil
	}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           target,
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(options); err != nil {
		return fmt.Errorf("%w: options: %w", ErrInvalidRequest, err)
	}
	return nil
}
