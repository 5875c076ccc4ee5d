package openrouter

import "net/http"

// attribution headers understood by OpenRouter's app rankings
const (
	headerReferer = "HTTP-Referer"
	headerTitle   = "X-Title"
)

// setAttribution sets each header only when its value is non-empty
func setAttribution(h http.Header, siteURL, siteName string) {
	if siteURL != "" {
		h.Set(headerReferer, siteURL)
	}
	if siteName != "" {
		h.Set(headerTitle, siteName)
	}
}
