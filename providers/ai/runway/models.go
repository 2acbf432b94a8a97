package runway

// generationRequest is the body shared by the three generation endpoints.
// Image and Video are set according to the mode.
type generationRequest struct {
	Prompt string `json:"prompt"`
	Image  string `json:"image,omitempty"`
	Video  string `json:"video,omitempty"`
	generationOptions
}

// generationOptions are the tunables accepted from VideoRequest.Options.
type generationOptions struct {
	GuidanceScale  float64 `json:"guidance_scale,omitempty"`
	NumFrames      int     `json:"num_frames,omitempty"`
	NumSteps       int     `json:"num_steps,omitempty"`
	NegativePrompt string  `json:"negative_prompt,omitempty"`
	FPS            int     `json:"fps,omitempty"`
}

// generation is returned both when a job is created and when it is polled.
type generation struct {
	ID       string   `json:"id"`
	Status   string   `json:"status,omitempty"` // PENDING, RUNNING, SUCCEEDED, FAILED
	Progress float64  `json:"progress,omitempty"`
	Output   []string `json:"output,omitempty"` // Video URLs once SUCCEEDED
	Failure  string   `json:"failure,omitempty"`
}
