package elevenlabs

type speechRequest struct {
	Text    string `json:"text"`
	ModelID string `json:"model_id"`
}

type voicesResponse struct {
	Voices []Voice `json:"voices"`
}
