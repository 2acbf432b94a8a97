package ai

import (
	"github.com/leofalp/aimux/core/cost"
	"github.com/leofalp/aimux/providers/memory"
	"github.com/leofalp/aimux/providers/tool"
)

/*
	##### PROVIDER INPUT #####
*/

// SystemToolWebSearch is the provider-native web search tool.
const SystemToolWebSearch = "web_search"

// TextRequest asks a provider for a text completion.
type TextRequest struct {
	Model        string     `json:"model,omitempty"`        // Empty selects the provider's default text model
	Prompt       string     `json:"prompt"`                 // New user turn
	Instructions string     `json:"instructions,omitempty"` // Optional system / developer instruction
	Temperature  float64    `json:"temperature,omitempty"`
	MaxTokens    int        `json:"max_tokens,omitempty"`
	SystemTools  []string   `json:"system_tools,omitempty"` // Provider-native tools, e.g. SystemToolWebSearch
	UserTools    []string   `json:"user_tools,omitempty"`   // Names resolved in the tool registry
	Conversation memory.Ref `json:"-"`                      // nil for a stateless call
}

// ImageRequest asks for one or more generated images.
type ImageRequest struct {
	Model          string  `json:"model,omitempty"`
	Prompt         string  `json:"prompt"`
	Width          int     `json:"width,omitempty"` // Zero lets the provider choose
	Height         int     `json:"height,omitempty"`
	N              int     `json:"n,omitempty"`
	NegativePrompt string  `json:"negative_prompt,omitempty"`
	Steps          int     `json:"steps,omitempty"`
	CFGScale       float64 `json:"cfg_scale,omitempty"`
}

// EditImageRequest asks for an edited version of an existing image.
type EditImageRequest struct {
	Model    string `json:"model,omitempty"`
	Prompt   string `json:"prompt"`
	Image    []byte `json:"-"`
	MimeType string `json:"mime_type,omitempty"`
	N        int    `json:"n,omitempty"`
}

// TTSRequest asks for synthesized speech.
type TTSRequest struct {
	Model        string `json:"model,omitempty"`
	Prompt       string `json:"prompt"`
	Voice        string `json:"voice,omitempty"`  // Provider voice name
	Format       string `json:"format,omitempty"` // Audio container, e.g. "mp3"
	Instructions string `json:"instructions,omitempty"`
}

// VideoMode selects how a video is produced.
type VideoMode string

const (
	VideoModeAuto         VideoMode = ""
	VideoModeTextToVideo  VideoMode = "text_to_video"
	VideoModeImageToVideo VideoMode = "image_to_video"
	VideoModeVideoToVideo VideoMode = "video_to_video"
)

// VideoRequest asks for a generated video.
type VideoRequest struct {
	Model    string         `json:"model,omitempty"`
	Prompt   string         `json:"prompt"`
	ImageURL string         `json:"image_url,omitempty"`
	VideoURL string         `json:"video_url,omitempty"`
	Mode     VideoMode      `json:"mode,omitempty"`    // VideoModeAuto infers the mode from the URLs
	Options  map[string]any `json:"options,omitempty"` // Provider-specific extras, forwarded as-is
}

// TranscriptionRequest asks for speech-to-text.
type TranscriptionRequest struct {
	Model    string `json:"model,omitempty"`
	Audio    []byte `json:"-"`
	FileName string `json:"file_name,omitempty"`
	Language string `json:"language,omitempty"`
}

/*
	##### PROVIDER OUTPUT #####
*/

// TextResult is the outcome of a text generation call. On failure every field
// except Err and Error is zero.
type TextResult struct {
	Model string      `json:"model_used,omitempty"`
	Text  string      `json:"text,omitempty"`
	Tools []string    `json:"tools,omitempty"` // Tool names the model asked for, in order
	Usage cost.Usage  `json:"usage"`
	Cost  cost.Record `json:"cost"`

	// Image is set when a tool returned an image artifact; Text is then empty.
	Image *tool.Artifact `json:"-"`

	// Conversation is the updated state to pass to the next call. It has the
	// same kind as the request's Conversation.
	Conversation memory.Ref `json:"-"`
	ResponseID   string     `json:"response_id,omitempty"`

	// FollowUpUsage is the usage of the tool-result call. It is reported but
	// not included in Cost.
	FollowUpUsage *cost.Usage `json:"follow_up_usage,omitempty"`

	Err   error  `json:"-"`
	Error string `json:"error,omitempty"`
}

// ImageResult is the outcome of an image generation or edit.
type ImageResult struct {
	Model     string      `json:"model_used,omitempty"`
	Image     []byte      `json:"-"`
	ImageType string      `json:"image_type,omitempty"` // MIME type of Image
	Usage     cost.Usage  `json:"usage"`
	Cost      cost.Record `json:"cost"`
	Err       error       `json:"-"`
	Error     string      `json:"error,omitempty"`
}

// AudioResult is the outcome of a text-to-speech call.
type AudioResult struct {
	Model  string      `json:"model_used,omitempty"`
	Audio  []byte      `json:"-"`
	Format string      `json:"format,omitempty"`
	Usage  cost.Usage  `json:"usage"`
	Cost   cost.Record `json:"cost"`
	Err    error       `json:"-"`
	Error  string      `json:"error,omitempty"`
}

// VideoReference identifies an asynchronous video job.
type VideoReference struct {
	ID     string `json:"id,omitempty"`
	URL    string `json:"url,omitempty"`
	Status string `json:"status,omitempty"`
}

// VideoResult is the outcome of a video generation call. Most providers run
// video jobs asynchronously, so Video is usually empty and Reference points to
// the job.
type VideoResult struct {
	Model     string         `json:"model_used,omitempty"`
	Reference VideoReference `json:"video"`
	Video     []byte         `json:"-"`
	Usage     cost.Usage     `json:"usage"`
	Cost      cost.Record    `json:"cost"`
	Err       error          `json:"-"`
	Error     string         `json:"error,omitempty"`
}

// TranscriptionResult is the outcome of a speech-to-text call.
type TranscriptionResult struct {
	Model string      `json:"model_used,omitempty"`
	Text  string      `json:"text,omitempty"`
	Usage cost.Usage  `json:"usage"`
	Cost  cost.Record `json:"cost"`
	Err   error       `json:"-"`
	Error string      `json:"error,omitempty"`
}

// FailText returns a TextResult carrying only err.
func FailText(err error) TextResult {
	return TextResult{Err: err, Error: err.Error()}
}

// FailImage returns an ImageResult carrying only err.
func FailImage(err error) ImageResult {
	return ImageResult{Err: err, Error: err.Error()}
}

// FailAudio returns an AudioResult carrying only err.
func FailAudio(err error) AudioResult {
	return AudioResult{Err: err, Error: err.Error()}
}

// FailVideo returns a VideoResult carrying only err.
func FailVideo(err error) VideoResult {
	return VideoResult{Err: err, Error: err.Error()}
}

// FailTranscription returns a TranscriptionResult carrying only err.
func FailTranscription(err error) TranscriptionResult {
	return TranscriptionResult{Err: err, Error: err.Error()}
}
