package gmail

import (
	"encoding/base64"
	"fmt"
	"strings"

	gmailapi "google.golang.org/api/gmail/v1"
)

// DecodeBody converts the URL-safe base64 encoding Gmail uses for message
// bodies back into readable text. Input may arrive padded or unpadded.
func DecodeBody(data string) (string, error) {
	data = strings.ReplaceAll(data, "-", "+")
	data = strings.ReplaceAll(data, "_", "/")
	if rem := len(data) % 4; rem != 0 {
		data += strings.Repeat("=", 4-rem)
	}

	decoded, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return "", fmt.Errorf("failed to decode message body: %w", err)
	}
	return string(decoded), nil
}

// extractBody selects and decodes the best body representation of a
// message payload: the text/plain part when one exists, the top-level body
// otherwise, empty text when neither is present. Decode failures count as
// an empty body rather than aborting the batch.
func extractBody(payload *gmailapi.MessagePart) string {
	if len(payload.Parts) > 0 {
		for _, part := range payload.Parts {
			if part.MimeType != "text/plain" {
				continue
			}
			if part.Body == nil || part.Body.Data == "" {
				continue
			}
			body, err := DecodeBody(part.Body.Data)
			if err != nil {
				return ""
			}
			return body
		}
		return ""
	}

	if payload.Body != nil && payload.Body.Data != "" {
		body, err := DecodeBody(payload.Body.Data)
		if err != nil {
			return ""
		}
		return body
	}
	return ""
}
