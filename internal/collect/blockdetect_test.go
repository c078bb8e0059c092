package collect

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectBlock(t *testing.T) {
	tests := []struct {
		name   string
		header http.Header
		body   string
		want   BlockType
	}{
		{
			name:   "cloudflare header",
			header: http.Header{"Cf-Mitigated": {"challenge"}},
			want:   BlockCloudflare,
		},
		{
			name: "cloudflare interstitial",
			body: "<html><title>Just a moment...</title><body>Checking your browser before accessing wakeabc.com</body></html>",
			want: BlockCloudflare,
		},
		{
			name: "captcha",
			body: "<html><body>Please complete the reCAPTCHA to continue</body></html>",
			want: BlockCaptcha,
		},
		{
			name: "js shell",
			body: "<html><noscript>Enable JavaScript to continue</noscript></html>",
			want: BlockJSShell,
		},
		{
			name: "meta refresh",
			body: `<html><head><meta http-equiv="refresh" content="0;url=/"></head></html>`,
			want: BlockJSShell,
		},
		{
			name: "no results page",
			body: "<html><body><p>No products matched your search.</p></body></html>",
			want: BlockNone,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := tt.header
			if h == nil {
				h = http.Header{}
			}
			assert.Equal(t, tt.want, DetectBlock(h, []byte(tt.body)))
		})
	}
}

func TestBlockedError_Message(t *testing.T) {
	err := &BlockedError{Type: BlockCaptcha, URL: "https://wakeabc.com/search-results"}
	assert.Equal(t, "collect: https://wakeabc.com/search-results blocked by captcha page", err.Error())
}
