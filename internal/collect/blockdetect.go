package collect

import (
	"fmt"
	"net/http"
	"strings"
)

// BlockType describes the kind of anti-bot page detected.
type BlockType string

// Block types.
const (
	BlockNone       BlockType = ""
	BlockCloudflare BlockType = "cloudflare"
	BlockCaptcha    BlockType = "captcha"
	BlockJSShell    BlockType = "js_shell"
)

// BlockedError reports a 2xx response that is a challenge page rather
// than search results.
type BlockedError struct {
	Type BlockType
	URL  string
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("collect: %s blocked by %s page", e.URL, e.Type)
}

// DetectBlock inspects a successful search response that produced no
// addresses for signs of anti-bot protection.
func DetectBlock(header http.Header, body []byte) BlockType {
	if header.Get("cf-mitigated") == "challenge" {
		return BlockCloudflare
	}

	lower := strings.ToLower(string(body))

	if strings.Contains(lower, "checking your browser") ||
		strings.Contains(lower, "cf-browser-verification") ||
		strings.Contains(lower, "cloudflare") && strings.Contains(lower, "challenge") {
		return BlockCloudflare
	}

	if strings.Contains(lower, "captcha") {
		return BlockCaptcha
	}

	// A tiny page that only asks for JavaScript or redirects.
	if len(body) < 2000 {
		if strings.Contains(lower, "<noscript") && strings.Contains(lower, "javascript") {
			return BlockJSShell
		}
		if strings.Contains(lower, `meta http-equiv="refresh"`) {
			return BlockJSShell
		}
	}

	return BlockNone
}
