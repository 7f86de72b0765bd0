package mailer

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"
	"time"

	gomail "github.com/emersion/go-message/mail"
)

// DefaultContentType is used when a filename gives no usable MIME type.
const DefaultContentType = "application/octet-stream"

// Attachment is a file to include in an outgoing message. Data is held
// fully in memory; callers bound its size before constructing one.
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Message is an outgoing email. It is constructed fresh per send request
// and never persisted.
type Message struct {
	To         string
	Subject    string
	Body       string
	Attachment *Attachment
}

// InferContentType guesses a MIME type from the filename extension,
// falling back to application/octet-stream. Parameters such as charset
// are stripped so the result is always a bare major/minor pair.
func InferContentType(filename string) string {
	ct := mime.TypeByExtension(filepath.Ext(filename))
	if ct == "" {
		return DefaultContentType
	}
	mediaType, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return DefaultContentType
	}
	return mediaType
}

// SplitContentType splits a MIME type into its major and minor parts.
func SplitContentType(ct string) (major, minor string) {
	major, minor, found := strings.Cut(ct, "/")
	if !found {
		return "application", "octet-stream"
	}
	return major, minor
}

// Bytes serializes the message to its RFC 5322 byte representation: a
// plain-text body, plus a multipart attachment part when one is supplied.
func (m *Message) Bytes() ([]byte, error) {
	var buf bytes.Buffer

	var h gomail.Header
	h.SetDate(time.Now())
	h.SetAddressList("To", []*gomail.Address{{Address: m.To}})
	h.SetSubject(m.Subject)

	if m.Attachment == nil {
		h.SetContentType("text/plain", map[string]string{"charset": "utf-8"})
		w, err := gomail.CreateSingleInlineWriter(&buf, h)
		if err != nil {
			return nil, fmt.Errorf("create message writer: %w", err)
		}
		if _, err := io.WriteString(w, m.Body); err != nil {
			return nil, fmt.Errorf("write body: %w", err)
		}
		if err := w.Close(); err != nil {
			return nil, fmt.Errorf("close message writer: %w", err)
		}
		return buf.Bytes(), nil
	}

	mw, err := gomail.CreateWriter(&buf, h)
	if err != nil {
		return nil, fmt.Errorf("create message writer: %w", err)
	}

	var th gomail.InlineHeader
	th.SetContentType("text/plain", map[string]string{"charset": "utf-8"})
	tw, err := mw.CreateSingleInline(th)
	if err != nil {
		return nil, fmt.Errorf("create body part: %w", err)
	}
	if _, err := io.WriteString(tw, m.Body); err != nil {
		return nil, fmt.Errorf("write body: %w", err)
	}
	if err := tw.Close(); err != nil {
		return nil, fmt.Errorf("close body part: %w", err)
	}

	ct := m.Attachment.ContentType
	if ct == "" {
		ct = InferContentType(m.Attachment.Filename)
	}
	major, minor := SplitContentType(ct)

	var ah gomail.AttachmentHeader
	ah.SetFilename(m.Attachment.Filename)
	ah.SetContentType(major+"/"+minor, nil)
	aw, err := mw.CreateAttachment(ah)
	if err != nil {
		return nil, fmt.Errorf("create attachment part: %w", err)
	}
	if _, err := aw.Write(m.Attachment.Data); err != nil {
		return nil, fmt.Errorf("write attachment: %w", err)
	}
	if err := aw.Close(); err != nil {
		return nil, fmt.Errorf("close attachment part: %w", err)
	}

	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close message writer: %w", err)
	}
	return buf.Bytes(), nil
}

// Encode returns the message bytes encoded with URL-safe base64, the form
// the Gmail API expects in the "raw" field.
func (m *Message) Encode() (string, error) {
	b, err := m.Bytes()
	if err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
