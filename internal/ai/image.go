package ai

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"strings"
)

// encodeImage reads the file once and returns its sniffed image type and
// standard base64 body. Unknown content is reported as jpeg.
func encodeImage(path string) (mimeType, encoded string, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", fmt.Errorf("read image: %w", err)
	}
	if len(data) == 0 {
		return "", "", fmt.Errorf("image %s is empty", path)
	}

	mimeType = http.DetectContentType(data)
	if !strings.HasPrefix(mimeType, "image/") {
		mimeType = "image/jpeg"
	}
	return mimeType, base64.StdEncoding.EncodeToString(data), nil
}

// imageDataURL builds the data: URL the vision endpoint expects.
func imageDataURL(path string) (string, error) {
	mimeType, encoded, err := encodeImage(path)
	if err != nil {
		return "", err
	}
	return "data:" + mimeType + ";base64," + encoded, nil
}
