package dispatch

import (
	"time"

	"github.com/leofalp/aimux/core/cost"
	"github.com/leofalp/aimux/providers/ai"
	"github.com/leofalp/aimux/providers/memory"
)

// Envelope is the flattened result of any generation call. Only the fields
// of the requested capability are set; Error is passed through from the
// adapter unchanged.
type Envelope struct {
	RequestID  string        `json:"request_id"`
	Provider   string        `json:"provider,omitempty"`
	Capability ai.Capability `json:"-"`
	Model      string        `json:"model_used,omitempty"`

	Text          string            `json:"text,omitempty"`
	Tools         []string          `json:"tools,omitempty"`
	Image         []byte            `json:"-"`
	ImageType     string            `json:"image_type,omitempty"`
	Audio         []byte            `json:"-"`
	AudioFormat   string            `json:"audio_format,omitempty"`
	Video         ai.VideoReference `json:"video"`
	VideoData     []byte            `json:"-"`
	Conversation  memory.Ref        `json:"-"`
	ResponseID    string            `json:"response_id,omitempty"`
	FollowUpUsage *cost.Usage       `json:"follow_up_usage,omitempty"`

	Usage   cost.Usage    `json:"usage"`
	Cost    cost.Record   `json:"cost"`
	Elapsed time.Duration `json:"elapsed"`

	Err   error  `json:"-"`
	Error string `json:"error,omitempty"`
}

func (e *Envelope) fail(err error) {
	e.Err = err
	e.Error = err.Error()
}

// setModel keeps the requested model when the adapter reports none, as
// failed results do.
func (e *Envelope) setModel(model string) {
	if model != "" {
		e.Model = model
	}
}

func (e *Envelope) setError(err error, msg string) {
	e.Err = err
	e.Error = msg
}

func flattenText(e *Envelope, r ai.TextResult) {
	e.setModel(r.Model)
	e.Text = r.Text
	e.Tools = r.Tools
	e.Conversation = r.Conversation
	e.ResponseID = r.ResponseID
	e.FollowUpUsage = r.FollowUpUsage
	e.Usage = r.Usage
	e.Cost = r.Cost
	if r.Image != nil {
		e.Image = r.Image.Data
		e.ImageType = r.Image.MimeType
	}
	e.setError(r.Err, r.Error)
}

func flattenImage(e *Envelope, r ai.ImageResult) {
	e.setModel(r.Model)
	e.Image = r.Image
	e.ImageType = r.ImageType
	e.Usage = r.Usage
	e.Cost = r.Cost
	e.setError(r.Err, r.Error)
}

func flattenAudio(e *Envelope, r ai.AudioResult) {
	e.setModel(r.Model)
	e.Audio = r.Audio
	e.AudioFormat = r.Format
	e.Usage = r.Usage
	e.Cost = r.Cost
	e.setError(r.Err, r.Error)
}

func flattenVideo(e *Envelope, r ai.VideoResult) {
	e.setModel(r.Model)
	e.Video = r.Reference
	e.VideoData = r.Video
	e.Usage = r.Usage
	e.Cost = r.Cost
	e.setError(r.Err, r.Error)
}

func flattenTranscription(e *Envelope, r ai.TranscriptionResult) {
	e.setModel(r.Model)
	e.Text = r.Text
	e.Usage = r.Usage
	e.Cost = r.Cost
	e.setError(r.Err, r.Error)
}
