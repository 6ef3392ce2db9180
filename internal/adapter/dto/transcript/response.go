package transcript

// NormalizeResponse is the cleaned form of one uploaded transcript
type NormalizeResponse struct {
	Filename        string `json:"filename"`
	Format          string `json:"format"`
	OpportunityName string `json:"opportunity_name"`
	CleanedText     string `json:"cleaned_text"`
}

// TranscriptionResponse is the text recovered from an uploaded audio file
type TranscriptionResponse struct {
	Filename string `json:"filename"`
	Model    string `json:"model"`
	Text     string `json:"text"`
}
