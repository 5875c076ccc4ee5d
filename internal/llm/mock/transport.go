package mock

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/chriscorrea/nodellm/internal/media"

	"github.com/tidwall/gjson"
)

// Response is the fixed chat reply
const Response = "Mock LLM response"

// gray level of generated mock images
const fill = 0.5

// grayDataURL is the single image every mock image response carries
var grayDataURL = sync.OnceValues(func() (string, error) {
	img := media.NewImage(media.PlaceholderHeight, media.PlaceholderWidth, 3)
	for i := range img.Pix {
		img.Pix[i] = fill
	}
	return media.EncodeDataURL(img)
})

// roundTripper answers chat-completions requests in memory, so --test runs
// take the same build, retry and parse path as the real gateways
type roundTripper struct{}

func (roundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	var body []byte
	if req.Body != nil {
		var err error
		body, err = io.ReadAll(req.Body)
		req.Body.Close()
		if err != nil {
			return nil, err
		}
	}
	if !gjson.ValidBytes(body) {
		return reply(req, http.StatusBadRequest, `{"error":{"message":"request body is not JSON"}}`), nil
	}

	if !gjson.GetBytes(body, "image_config").Exists() {
		return reply(req, http.StatusOK, fmt.Sprintf(
			`{"choices":[{"message":{"role":"assistant","content":%q}}]}`, Response)), nil
	}

	url, err := grayDataURL()
	if err != nil {
		return nil, err
	}
	return reply(req, http.StatusOK, fmt.Sprintf(
		`{"choices":[{"message":{"role":"assistant","images":[{"type":"image_url","image_url":{"url":%q}}]}}]}`, url)), nil
}

func reply(req *http.Request, status int, body string) *http.Response {
	return &http.Response{
		StatusCode:    status,
		Status:        http.StatusText(status),
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        http.Header{"Content-Type": []string{"application/json"}},
		Body:          io.NopCloser(bytes.NewBufferString(body)),
		ContentLength: int64(len(body)),
		Request:       req,
	}
}
