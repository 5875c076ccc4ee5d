package app

import (
	"github.com/chriscorrea/nodellm/internal/llm/common"
	"github.com/chriscorrea/nodellm/internal/llm/openrouter"
)

// constructors exposed to the node-graph host; each returns a new
// Configuration and never modifies the one it was given

// BaseConfig creates the endpoint stage shared by every gateway
func BaseConfig(apiBase, apiKey, model string) common.Configuration {
	return common.NewConfiguration(apiBase, apiKey, model)
}

// OpenRouterBaseConfig creates the endpoint stage for OpenRouter, filling in the
// public endpoint and image model when left blank and attaching attribution
func OpenRouterBaseConfig(apiBase, apiKey, model, siteURL, siteName string) common.Configuration {
	if common.NormalizeBaseURL(apiBase) == "" {
		apiBase = openrouter.DefaultBaseURL
	}
	if model == "" {
		model = openrouter.DefaultImageModel
	}
	return common.NewConfiguration(apiBase, apiKey, model).WithSite(siteURL, siteName)
}

// ChatParams adds temperature and max_tokens to cfg
func ChatParams(cfg common.Configuration, temperature float64, maxTokens int) common.Configuration {
	return cfg.WithChatParams(temperature, maxTokens)
}

// ImageParams adds aspect ratio, image size and temperature to cfg
func ImageParams(cfg common.Configuration, aspectRatio, imageSize string, temperature float64) common.Configuration {
	return cfg.WithImageParams(aspectRatio, imageSize, temperature)
}
