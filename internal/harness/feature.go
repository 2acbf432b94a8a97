package harness

import (
	"fmt"
	"strings"
)

// Feature selects what the harness exercises.
type Feature string

const (
	FeatureAll               Feature = ""
	FeatureText              Feature = "text"
	FeatureImage             Feature = "image"
	FeatureTTS               Feature = "tts"
	FeatureVideo             Feature = "video"
	FeatureSTT               Feature = "stt"
	FeatureWebSearch         Feature = "websearch"
	FeatureTool              Feature = "tool"
	FeatureConversation      Feature = "conversation"
	FeatureConversationState Feature = "conversation_state"
)

// Features lists every selectable feature in the order FeatureAll runs them.
var Features = []Feature{
	FeatureText,
	FeatureImage,
	FeatureTTS,
	FeatureVideo,
	FeatureSTT,
	FeatureWebSearch,
	FeatureTool,
	FeatureConversation,
	FeatureConversationState,
}

// ParseFeature parses a feature keyword, case-insensitively.
func ParseFeature(s string) (Feature, error) {
	f := Feature(strings.ToLower(strings.TrimSpace(s)))
	if f == FeatureAll {
		return f, nil
	}
	for _, known := range Features {
		if f == known {
			return f, nil
		}
	}
	return FeatureAll, fmt.Errorf("unknown feature %q", s)
}

// IsFeature reports whether s names a feature rather than a provider.
func IsFeature(s string) bool {
	f, err := ParseFeature(s)
	return err == nil && f != FeatureAll
}

func (f Feature) selected(target Feature) bool {
	return f == FeatureAll || f == target
}
