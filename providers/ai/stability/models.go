package stability

/*
	TEXT TO IMAGE (v1)
*/

type textToImageRequest struct {
	TextPrompts []textPrompt `json:"text_prompts"`
	CFGScale    float64      `json:"cfg_scale"`
	Height      int          `json:"height"`
	Width       int          `json:"width"`
	Samples     int          `json:"samples"`
	Steps       int          `json:"steps"`
}

// textPrompt is one weighted prompt. Negative weights steer away from the text.
type textPrompt struct {
	Text   string  `json:"text"`
	Weight float64 `json:"weight"`
}

type textToImageResponse struct {
	Artifacts []artifact `json:"artifacts"`
}

type artifact struct {
	Base64       string `json:"base64"`
	Seed         int64  `json:"seed,omitempty"`
	FinishReason string `json:"finishReason,omitempty"` // SUCCESS, CONTENT_FILTERED or ERROR
}

/*
	IMAGE TO VIDEO (v2beta)
*/

type videoRequest struct {
	VideoParams videoParams  `json:"video_params"`
	TextPrompts []textPrompt `json:"text_prompts"`
	ImageURL    string       `json:"image_url"`
}

// videoParams doubles as the decoding target for VideoRequest.Options.
type videoParams struct {
	MotionStrength float64 `json:"motion_strength"`
	Frames         int     `json:"frames"`
	FPS            int     `json:"fps"`
}

type videoResponse struct {
	ID     string `json:"id"`
	Status string `json:"status,omitempty"`
}
