package common

import (
	"fmt"

	"github.com/chriscorrea/nodellm/internal/media"
)

// default text substituted when a request would otherwise carry no content
const (
	DefaultChatText  = "Hello"
	DefaultImageText = "Generate an image"
)

// ChatInput is the caller-supplied content of a chat request
type ChatInput struct {
	System string
	Prompt string
	Images []media.Batch
}

// ImageInput is the caller-supplied content of an image generation request
type ImageInput struct {
	Prompt string
	// Images are reference images sent alongside the prompt
	Images         []media.Batch
	AdditionalText string
	// N is the number of images the caller wants back; zero means one
	N int
}

// BuildUserBlocks assembles the user content blocks: the prompt text first, then one
// image_url block per image in order, then trailing text. When all of these are empty
// the fallback text becomes the only block, so a request never goes out empty.
func BuildUserBlocks(prompt string, imageURLs []string, trailing, fallback string) []ContentBlock {
	blocks := make([]ContentBlock, 0, len(imageURLs)+2)
	if p := NormalizePrompt(prompt); p != "" {
		blocks = append(blocks, TextBlock(p))
	}
	for _, u := range imageURLs {
		blocks = append(blocks, ImageBlock(u))
	}
	if t := NormalizePrompt(trailing); t != "" {
		blocks = append(blocks, TextBlock(t))
	}
	if len(blocks) == 0 {
		blocks = append(blocks, TextBlock(fallback))
	}
	return blocks
}

// BuildChatMessages returns the optional system message followed by the user message
func BuildChatMessages(system string, user Content) []Message {
	messages := make([]Message, 0, 2)
	if s := NormalizePrompt(system); s != "" {
		messages = append(messages, Message{Role: RoleSystem, Content: TextContent(s)})
	}
	return append(messages, Message{Role: RoleUser, Content: user})
}

// EncodeImages turns every image of the batches into a data URL, preserving order
func EncodeImages(batches []media.Batch) ([]string, error) {
	urls, err := media.EncodeBatch(batches...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return urls, nil
}

// BuildChatRequest creates the chat-completions payload for a chat call.
// It is pure and is called again on every attempt.
func BuildChatRequest(cfg ChatConfig, in ChatInput) (*ChatRequest, error) {
	urls, err := EncodeImages(in.Images)
	if err != nil {
		return nil, err
	}

	user := BlockContent(BuildUserBlocks(in.Prompt, urls, "", DefaultChatText)...)
	return &ChatRequest{
		Model:       cfg.Model,
		Messages:    BuildChatMessages(in.System, user),
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
	}, nil
}

// BuildImageRequest creates the chat-completions payload for image generation.
// modalities is left out of the payload when empty.
func BuildImageRequest(cfg ImageConfig, in ImageInput, modalities []string) (*ImageRequest, error) {
	if cfg.AspectRatio == "" || cfg.ImageSize == "" {
		return nil, ErrMissingImageConfig
	}

	urls, err := EncodeImages(in.Images)
	if err != nil {
		return nil, err
	}

	user := BlockContent(BuildUserBlocks(in.Prompt, urls, in.AdditionalText, DefaultImageText)...)
	return &ImageRequest{
		Model:       cfg.Model,
		Messages:    []Message{{Role: RoleUser, Content: user}},
		Temperature: cfg.Temperature,
		Modalities:  modalities,
		ImageConfig: &ImageGenerationConfig{
			AspectRatio: cfg.AspectRatio,
			ImageSize:   cfg.ImageSize,
		},
	}, nil
}
