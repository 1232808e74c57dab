package utils

import (
	"net/url"
	"strings"
)

// BuildImageURL resolves an image path returned by the API against the asset host.
// Absolute http(s) URLs are returned unchanged and an empty path yields "".
func BuildImageURL(baseURL, imagePath string) string {
	if imagePath == "" {
		return ""
	}
	if strings.HasPrefix(imagePath, "http://") || strings.HasPrefix(imagePath, "https://") {
		return imagePath
	}
	baseURL = strings.TrimRight(baseURL, "/")
	if strings.HasPrefix(imagePath, "/") {
		return baseURL + imagePath
	}
	return baseURL + "/" + imagePath
}

// IsValidImageURL reports whether u parses as an absolute URL.
func IsValidImageURL(u string) bool {
	parsed, err := url.Parse(u)
	if err != nil {
		return false
	}
	return parsed.Scheme != "" && parsed.Host != ""
}
