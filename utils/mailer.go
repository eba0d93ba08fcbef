package utils

import (
	"bytes"
	"regexp"

	"gopkg.in/gomail.v2"
)

var htmlTagPattern = regexp.MustCompile(`<[a-z][\s\S]*>`)

// LooksLikeHTML reports whether the body contains markup and should be
// sent with an HTML content type.
func LooksLikeHTML(body string) bool {
	return htmlTagPattern.MatchString(body)
}

// BuildMessage assembles an RFC 822 message for the Gmail send API. The
// content type is picked by sniffing the body for HTML tags. Cc and Bcc
// may be empty.
func BuildMessage(to, cc, bcc, subject, body string) ([]byte, error) {
	m := gomail.NewMessage()
	m.SetHeader("To", to)
	if cc != "" {
		m.SetHeader("Cc", cc)
	}
	if bcc != "" {
		m.SetHeader("Bcc", bcc)
	}
	m.SetHeader("Subject", subject)

	contentType := "text/plain"
	if LooksLikeHTML(body) {
		contentType = "text/html"
	}
	m.SetBody(contentType, body)

	var buf bytes.Buffer
	if _, err := m.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
