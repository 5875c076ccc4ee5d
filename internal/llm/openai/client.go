package openai

// ImageGenerationRequest is the payload for the images/generations endpoint
type ImageGenerationRequest struct {
	Model          string `json:"model"`
	Prompt         string `json:"prompt"`
	N              int    `json:"n"`
	Size           string `json:"size"`
	ResponseFormat string `json:"response_format"`
}

// response_format asking for inline base64 instead of hosted URLs
const responseFormatB64 = "b64_json"

// image sizes accepted by gpt-image models
const (
	sizeSquare    = "1024x1024"
	sizeLandscape = "1536x1024"
	sizePortrait  = "1024x1536"
)
