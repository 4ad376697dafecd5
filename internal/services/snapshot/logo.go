package snapshot

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/bobmcallan/vire-ticker/internal/models"
)

// InlineLogo turns downloaded logo bytes into a data URI that can be used
// directly as an image source. SVG is percent-encoded as text, raster formats
// are base64 encoded. Anything that is not an image is rejected.
func InlineLogo(img *models.LogoImage) (string, error) {
	if img == nil || len(img.Data) == 0 {
		return "", fmt.Errorf("%w: empty image", ErrLogoUnavailable)
	}

	contentType := mediaType(img.ContentType)
	if contentType == "" || contentType == "application/octet-stream" || contentType == "text/plain" {
		contentType = mediaType(http.DetectContentType(img.Data))
	}
	if contentType != "image/svg+xml" && looksLikeSVG(img.Data) {
		contentType = "image/svg+xml"
	}

	switch {
	case contentType == "image/svg+xml":
		encoded := strings.ReplaceAll(url.QueryEscape(string(img.Data)), "+", "%20")
		return "data:image/svg+xml;charset=utf-8," + encoded, nil
	case strings.HasPrefix(contentType, "image/"):
		return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(img.Data), nil
	default:
		return "", fmt.Errorf("%w: unsupported content type %q", ErrLogoUnavailable, contentType)
	}
}

func mediaType(contentType string) string {
	if contentType == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	return strings.ToLower(mt)
}

func looksLikeSVG(data []byte) bool {
	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	head = bytes.TrimSpace(head)
	if bytes.HasPrefix(head, []byte("<svg")) {
		return true
	}
	return bytes.HasPrefix(head, []byte("<?xml")) && bytes.Contains(head, []byte("<svg"))
}
