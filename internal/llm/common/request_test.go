package common

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/chriscorrea/nodellm/internal/media"
)

func solidImage(h, w int, v float32) media.Image {
	img := media.NewImage(h, w, 3)
	for i := range img.Pix {
		img.Pix[i] = v
	}
	return img
}

func testChatConfig(t *testing.T) ChatConfig {
	t.Helper()
	cfg, err := NewConfiguration("https://x/v1", strings.Repeat("k", 12), "m").Chat()
	require.NoError(t, err)
	return cfg
}

func TestBuildChatRequest_Scenario(t *testing.T) {
	req, err := BuildChatRequest(testChatConfig(t), ChatInput{Prompt: "A cat"})
	require.NoError(t, err)

	data, err := json.Marshal(req)
	require.NoError(t, err)

	expected := `{
		"model": "m",
		"messages": [{"role": "user", "content": [{"type": "text", "text": "A cat"}]}],
		"temperature": 0.7,
		"max_tokens": 2000
	}`
	assert.JSONEq(t, expected, string(data))
}

func TestBuildUserBlocks_ImageCounts(t *testing.T) {
	for _, k := range []int{0, 1, 5} {
		t.Run(fmt.Sprintf("%d images", k), func(t *testing.T) {
			urls := make([]string, k)
			for i := range urls {
				urls[i] = fmt.Sprintf("data:image/png;base64,IMG%d", i)
			}

			blocks := BuildUserBlocks("Describe what is different", urls, "", DefaultChatText)
			require.Len(t, blocks, k+1)

			assert.Equal(t, BlockText, blocks[0].Type)
			assert.Equal(t, "Describe what is different", blocks[0].Text)
			for i := 0; i < k; i++ {
				block := blocks[i+1]
				assert.Equal(t, BlockImageURL, block.Type)
				require.NotNil(t, block.ImageURL)
				assert.Equal(t, urls[i], block.ImageURL.URL, "image order must be preserved")
			}
		})
	}
}

func TestBuildUserBlocks_Fallbacks(t *testing.T) {
	blocks := BuildUserBlocks("   ", nil, "", DefaultChatText)
	require.Len(t, blocks, 1)
	assert.Equal(t, TextBlock("Hello"), blocks[0])

	// images alone need no text block
	blocks = BuildUserBlocks("", []string{"data:image/png;base64,AAAA"}, "", DefaultChatText)
	require.Len(t, blocks, 1)
	assert.Equal(t, BlockImageURL, blocks[0].Type)

	blocks = BuildUserBlocks("a fox", []string{"data:image/png;base64,AAAA"}, " in watercolor ", DefaultImageText)
	require.Len(t, blocks, 3)
	assert.Equal(t, "in watercolor", blocks[2].Text)
}

func TestBuildChatRequest_SystemAndImages(t *testing.T) {
	in := ChatInput{
		System: "You are a careful art critic.",
		Prompt: "Compare these",
		Images: []media.Batch{
			{solidImage(2, 2, 0), solidImage(3, 3, 1)},
			{solidImage(1, 4, 0.5)},
		},
	}
	req, err := BuildChatRequest(testChatConfig(t), in)
	require.NoError(t, err)

	data, err := json.Marshal(req)
	require.NoError(t, err)
	body := gjson.ParseBytes(data)

	assert.Equal(t, "system", body.Get("messages.0.role").String())
	assert.Equal(t, gjson.String, body.Get("messages.0.content").Type, "system content is plain text")
	assert.Equal(t, "user", body.Get("messages.1.role").String())

	content := body.Get("messages.1.content").Array()
	require.Len(t, content, 4)
	assert.Equal(t, "text", content[0].Get("type").String())

	// images arrive in batch order
	wantWidths := []int{2, 3, 4}
	for i, block := range content[1:] {
		assert.Equal(t, "image_url", block.Get("type").String())
		img, err := media.DecodeDataURL(block.Get("image_url.url").String())
		require.NoError(t, err)
		assert.Equal(t, wantWidths[i], img.Width)
	}
}

func TestBuildChatRequest_InvalidImage(t *testing.T) {
	in := ChatInput{Prompt: "hi", Images: []media.Batch{{media.Image{Height: 1, Width: 1, Channels: 2}}}}
	_, err := BuildChatRequest(testChatConfig(t), in)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestBuildImageRequest(t *testing.T) {
	cfg, err := NewConfiguration("https://gateway.example.com/v1", "sk-abcdefgh", "gemini/gemini-3-pro-image-preview").
		WithImageParams("9:16", "2K", 1).
		Image()
	require.NoError(t, err)

	t.Run("with modalities", func(t *testing.T) {
		req, err := BuildImageRequest(cfg, ImageInput{Prompt: "A lighthouse at dusk", AdditionalText: "film grain"}, []string{"image", "text"})
		require.NoError(t, err)

		data, err := json.Marshal(req)
		require.NoError(t, err)
		expected := `{
			"model": "gemini/gemini-3-pro-image-preview",
			"messages": [{"role": "user", "content": [
				{"type": "text", "text": "A lighthouse at dusk"},
				{"type": "text", "text": "film grain"}
			]}],
			"temperature": 1,
			"modalities": ["image", "text"],
			"image_config": {"aspect_ratio": "9:16", "image_size": "2K"}
		}`
		assert.JSONEq(t, expected, string(data))
	})

	t.Run("without modalities", func(t *testing.T) {
		req, err := BuildImageRequest(cfg, ImageInput{}, nil)
		require.NoError(t, err)

		data, err := json.Marshal(req)
		require.NoError(t, err)
		body := gjson.ParseBytes(data)
		assert.False(t, body.Get("modalities").Exists())
		assert.Equal(t, DefaultImageText, body.Get("messages.0.content.0.text").String())
	})

	t.Run("missing image config", func(t *testing.T) {
		_, err := BuildImageRequest(ImageConfig{Endpoint: cfg.Endpoint}, ImageInput{Prompt: "x"}, nil)
		assert.ErrorIs(t, err, ErrMissingImageConfig)
	})
}

func TestContent_MarshalJSON(t *testing.T) {
	data, err := json.Marshal(TextContent("plain"))
	require.NoError(t, err)
	assert.Equal(t, `"plain"`, string(data))

	data, err = json.Marshal(BlockContent())
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(data))
}
