package mailer

import (
	"bytes"
	"encoding/base64"
	"errors"
	"io"
	"testing"

	gomail "github.com/emersion/go-message/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// parsedMessage is the result of decoding and re-parsing an encoded message.
type parsedMessage struct {
	To          string
	Subject     string
	Body        string
	Attachments []parsedAttachment
}

type parsedAttachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// decodeAndParse round-trips the raw payload the way the provider would.
func decodeAndParse(t *testing.T, raw string) parsedMessage {
	t.Helper()

	decoded, err := base64.URLEncoding.DecodeString(raw)
	require.NoError(t, err, "payload must be URL-safe base64")

	mr, err := gomail.CreateReader(bytes.NewReader(decoded))
	require.NoError(t, err)
	defer mr.Close()

	var parsed parsedMessage
	parsed.Subject, err = mr.Header.Subject()
	require.NoError(t, err)

	toList, err := mr.Header.AddressList("To")
	require.NoError(t, err)
	require.Len(t, toList, 1)
	parsed.To = toList[0].Address

	for {
		p, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)

		switch h := p.Header.(type) {
		case *gomail.InlineHeader:
			body, err := io.ReadAll(p.Body)
			require.NoError(t, err)
			parsed.Body = string(body)
		case *gomail.AttachmentHeader:
			filename, err := h.Filename()
			require.NoError(t, err)
			ct, _, err := h.ContentType()
			require.NoError(t, err)
			data, err := io.ReadAll(p.Body)
			require.NoError(t, err)
			parsed.Attachments = append(parsed.Attachments, parsedAttachment{
				Filename:    filename,
				ContentType: ct,
				Data:        data,
			})
		}
	}
	return parsed
}

func TestMessageWithoutAttachmentRoundTrip(t *testing.T) {
	msg := &Message{
		To:      "bob@example.com",
		Subject: "Hi",
		Body:    "Hello",
	}

	raw, err := msg.Encode()
	require.NoError(t, err)

	parsed := decodeAndParse(t, raw)
	assert.Equal(t, "bob@example.com", parsed.To)
	assert.Equal(t, "Hi", parsed.Subject)
	assert.Equal(t, "Hello", parsed.Body)
	assert.Empty(t, parsed.Attachments, "no attachment part expected")
}

func TestMessageWithAttachmentRoundTrip(t *testing.T) {
	payload := []byte{0x00, 0x01, 0xfe, 0xff, 0x42, 0x00, 0x7f}
	msg := &Message{
		To:      "bob@example.com",
		Subject: "Report attached",
		Body:    "See attachment.",
		Attachment: &Attachment{
			Filename:    "report.bin",
			ContentType: DefaultContentType,
			Data:        payload,
		},
	}

	raw, err := msg.Encode()
	require.NoError(t, err)

	parsed := decodeAndParse(t, raw)
	assert.Equal(t, "See attachment.", parsed.Body)
	require.Len(t, parsed.Attachments, 1)
	att := parsed.Attachments[0]
	assert.Equal(t, "report.bin", att.Filename)
	assert.Equal(t, DefaultContentType, att.ContentType)
	assert.Equal(t, payload, att.Data, "attachment bytes must survive unchanged")
}

func TestMessageWithPDFAttachment(t *testing.T) {
	msg := &Message{
		To:      "bob@example.com",
		Subject: "Invoice",
		Body:    "Attached.",
		Attachment: &Attachment{
			Filename:    "invoice.pdf",
			ContentType: InferContentType("invoice.pdf"),
			Data:        []byte("%PDF-1.4 fake"),
		},
	}

	raw, err := msg.Encode()
	require.NoError(t, err)

	parsed := decodeAndParse(t, raw)
	require.Len(t, parsed.Attachments, 1)
	assert.Equal(t, "application/pdf", parsed.Attachments[0].ContentType)
	assert.Equal(t, []byte("%PDF-1.4 fake"), parsed.Attachments[0].Data)
}

func TestMessageNonASCIISubjectRoundTrip(t *testing.T) {
	msg := &Message{
		To:      "bob@example.com",
		Subject: "Grüße aus München",
		Body:    "Servus",
	}

	raw, err := msg.Encode()
	require.NoError(t, err)

	parsed := decodeAndParse(t, raw)
	assert.Equal(t, "Grüße aus München", parsed.Subject)
}

func TestInferContentType(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		want     string
	}{
		{name: "pdf", filename: "doc.pdf", want: "application/pdf"},
		{name: "png", filename: "image.png", want: "image/png"},
		{name: "no extension", filename: "README", want: DefaultContentType},
		{name: "unknown extension", filename: "data.zzz9", want: DefaultContentType},
		{name: "empty", filename: "", want: DefaultContentType},
		{name: "params stripped", filename: "styles.css", want: "text/css"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InferContentType(tt.filename))
		})
	}
}

func TestSplitContentType(t *testing.T) {
	major, minor := SplitContentType("application/pdf")
	assert.Equal(t, "application", major)
	assert.Equal(t, "pdf", minor)

	major, minor = SplitContentType("bogus")
	assert.Equal(t, "application", major)
	assert.Equal(t, "octet-stream", minor)
}
