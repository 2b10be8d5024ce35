package anticaptcha

import (
	"encoding/base64"
	"fmt"
	"os"
)

// LoadImage reads an image file and returns it base64 encoded, ready for ImageToText.
func LoadImage(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("load image %s: %w", path, err)
	}
	return EncodeImage(data), nil
}

// EncodeImage base64 encodes raw image bytes.
func EncodeImage(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}
