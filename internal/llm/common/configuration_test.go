package common

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestNewConfiguration_Normalizes(t *testing.T) {
	cfg := NewConfiguration(" https://openrouter.ai/api/v1/ ", " sk-or-key ", " google/gemini-3-pro-image-preview ")
	assert.Equal(t, "https://openrouter.ai/api/v1", cfg.APIBase)
	assert.Equal(t, "sk-or-key", cfg.APIKey)
	assert.Equal(t, "google/gemini-3-pro-image-preview", cfg.Model)
}

func TestCompose_DoesNotMutateBase(t *testing.T) {
	base := NewConfiguration("https://a.example.com/v1", "key-aaaaaaa", "model-a").WithChatParams(0.3, 100)
	snapshot := base
	snapshotTemp := *base.Temperature

	out := Compose(base, Configuration{Model: "model-b", Temperature: Float64Ptr(1.5)})

	assert.Equal(t, "model-b", out.Model)
	assert.Equal(t, 1.5, *out.Temperature)
	assert.Equal(t, snapshot.Model, base.Model)
	assert.Equal(t, snapshotTemp, *base.Temperature)

	// the result never aliases the input pointers
	*out.MaxTokens = 7
	assert.Equal(t, 100, *base.MaxTokens)
}

func TestCompose_EmptyExtraNeverClears(t *testing.T) {
	base := NewConfiguration("https://a.example.com/v1", "key-aaaaaaa", "model-a").
		WithSite("https://site.example.com", "Hatchery").
		WithImageParams("16:9", "2K", 0.5)

	out := Compose(base, Configuration{})
	assert.Equal(t, base.String(), out.String())
	assert.Equal(t, *base.ImageTemperature, *out.ImageTemperature)
}

func drawConfiguration(t *rapid.T, label string) Configuration {
	str := func(name string) string {
		return rapid.SampledFrom([]string{"", "a", "b", "https://x.example.com/v1"}).Draw(t, label+"."+name)
	}
	cfg := Configuration{
		APIBase:     str("api_base"),
		APIKey:      str("api_key"),
		Model:       str("model"),
		AspectRatio: str("aspect_ratio"),
		ImageSize:   str("image_size"),
		SiteURL:     str("site_url"),
		SiteName:    str("site_name"),
	}
	if rapid.Bool().Draw(t, label+".has_temperature") {
		cfg.Temperature = Float64Ptr(rapid.Float64Range(0, 2).Draw(t, label+".temperature"))
	}
	if rapid.Bool().Draw(t, label+".has_max_tokens") {
		cfg.MaxTokens = IntPtr(rapid.IntRange(1, 128000).Draw(t, label+".max_tokens"))
	}
	if rapid.Bool().Draw(t, label+".has_image_temperature") {
		cfg.ImageTemperature = Float64Ptr(rapid.Float64Range(0, 1).Draw(t, label+".image_temperature"))
	}
	return cfg
}

func pickString(base, extra string) string {
	if extra != "" {
		return extra
	}
	return base
}

func pickPtr[T any](base, extra *T) *T {
	if extra != nil {
		return extra
	}
	return base
}

func assertPtrEqual[T comparable](t *rapid.T, want, got *T, field string) {
	if want == nil {
		if got != nil {
			t.Fatalf("%s: expected unset, got %v", field, *got)
		}
		return
	}
	if got == nil || *got != *want {
		t.Fatalf("%s: expected %v, got %v", field, *want, got)
	}
}

func TestCompose_AdditiveAndOverrideSafe(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		stages := rapid.IntRange(1, 4).Draw(rt, "stages")
		want := drawConfiguration(rt, "stage0")
		got := want
		for i := 1; i < stages; i++ {
			extra := drawConfiguration(rt, "stage"+strings.Repeat("i", i))
			want = Configuration{
				APIBase:          pickString(want.APIBase, extra.APIBase),
				APIKey:           pickString(want.APIKey, extra.APIKey),
				Model:            pickString(want.Model, extra.Model),
				AspectRatio:      pickString(want.AspectRatio, extra.AspectRatio),
				ImageSize:        pickString(want.ImageSize, extra.ImageSize),
				SiteURL:          pickString(want.SiteURL, extra.SiteURL),
				SiteName:         pickString(want.SiteName, extra.SiteName),
				Temperature:      pickPtr(want.Temperature, extra.Temperature),
				MaxTokens:        pickPtr(want.MaxTokens, extra.MaxTokens),
				ImageTemperature: pickPtr(want.ImageTemperature, extra.ImageTemperature),
			}
			got = Compose(got, extra)
		}

		for _, pair := range [][2]string{
			{want.APIBase, got.APIBase},
			{want.APIKey, got.APIKey},
			{want.Model, got.Model},
			{want.AspectRatio, got.AspectRatio},
			{want.ImageSize, got.ImageSize},
			{want.SiteURL, got.SiteURL},
			{want.SiteName, got.SiteName},
		} {
			if pair[0] != pair[1] {
				rt.Fatalf("string field: expected %q, got %q", pair[0], pair[1])
			}
		}
		assertPtrEqual(rt, want.Temperature, got.Temperature, "temperature")
		assertPtrEqual(rt, want.MaxTokens, got.MaxTokens, "max_tokens")
		assertPtrEqual(rt, want.ImageTemperature, got.ImageTemperature, "image_temperature")
	})
}

func TestConfiguration_Chat(t *testing.T) {
	base := NewConfiguration("https://x/v1", strings.Repeat("k", 12), "m")

	t.Run("defaults", func(t *testing.T) {
		cfg, err := base.Chat()
		require.NoError(t, err)
		assert.Equal(t, "https://x/v1", cfg.BaseURL)
		assert.Equal(t, DefaultTemperature, cfg.Temperature)
		assert.Equal(t, DefaultMaxTokens, cfg.MaxTokens)
	})

	t.Run("explicit params", func(t *testing.T) {
		cfg, err := base.WithChatParams(0, 512).Chat()
		require.NoError(t, err)
		assert.Equal(t, 0.0, cfg.Temperature)
		assert.Equal(t, 512, cfg.MaxTokens)
	})

	t.Run("temperature out of range", func(t *testing.T) {
		_, err := base.WithChatParams(2.5, 512).Chat()
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})
}

func TestConfiguration_RequiredFields(t *testing.T) {
	tests := []struct {
		name string
		cfg  Configuration
	}{
		{name: "missing api_base", cfg: NewConfiguration("", "key-1234567", "m")},
		{name: "missing api_key", cfg: NewConfiguration("https://x/v1", "  ", "m")},
		{name: "missing model", cfg: NewConfiguration("https://x/v1", "key-1234567", "")},
		{name: "private api_base", cfg: NewConfiguration("http://192.168.0.10:4000", "key-1234567", "m")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.cfg.Chat()
			assert.ErrorIs(t, err, ErrInvalidConfig)

			_, err = tt.cfg.WithImageParams("1:1", "1K", 1).Image()
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestConfiguration_Image(t *testing.T) {
	base := NewConfiguration("https://openrouter.ai/api/v1", "sk-or-abcdefgh", "google/gemini-3-pro-image-preview")

	t.Run("complete", func(t *testing.T) {
		cfg, err := base.WithImageParams("16:9", "4k", 0.4).Image()
		require.NoError(t, err)
		assert.Equal(t, "16:9", cfg.AspectRatio)
		assert.Equal(t, "4K", cfg.ImageSize)
		assert.Equal(t, 0.4, cfg.Temperature)
	})

	t.Run("default temperature", func(t *testing.T) {
		cfg, err := Compose(base, Configuration{AspectRatio: "1:1", ImageSize: "1K"}).Image()
		require.NoError(t, err)
		assert.Equal(t, DefaultImageTemperature, cfg.Temperature)
	})

	t.Run("missing image params", func(t *testing.T) {
		_, err := base.Image()
		assert.ErrorIs(t, err, ErrMissingImageConfig)

		_, err = Compose(base, Configuration{AspectRatio: "1:1"}).Image()
		assert.ErrorIs(t, err, ErrMissingImageConfig)
	})

	t.Run("unsupported values", func(t *testing.T) {
		_, err := base.WithImageParams("7:3", "1K", 1).Image()
		assert.ErrorIs(t, err, ErrInvalidConfig)

		_, err = base.WithImageParams("1:1", "8K", 1).Image()
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})
}

func TestConfiguration_StringRedactsKey(t *testing.T) {
	cfg := NewConfiguration("https://x/v1", "sk-very-secret-key", "m")
	assert.NotContains(t, cfg.String(), "very-secret")
	assert.Contains(t, cfg.String(), "sk-***key")
}
