package mailer

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"testing"

	gomail "github.com/emersion/go-message/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/sendgate/sendgate/internal/credstore"
	"github.com/sendgate/sendgate/internal/googleauth"
)

type fakeSender struct {
	calls []string
	err   error
}

func (f *fakeSender) SendRaw(_ context.Context, raw string) (string, error) {
	f.calls = append(f.calls, raw)
	if f.err != nil {
		return "", f.err
	}
	return "msg-123", nil
}

func newTestDispatcher(t *testing.T, store credstore.Store, sender *fakeSender, factoryErr error) *Dispatcher {
	t.Helper()
	factory := func(_ context.Context, _ oauth2.TokenSource) (RawSender, error) {
		if factoryErr != nil {
			return nil, factoryErr
		}
		return sender, nil
	}
	auth := googleauth.Config{ClientID: "client-id", ClientSecret: "client-secret"}
	return NewDispatcher(store, auth, factory, nil)
}

func TestSendHappyPath(t *testing.T) {
	ctx := context.Background()
	store := credstore.NewMemory(nil)
	require.NoError(t, store.Put(ctx, credstore.Record{
		Identity:     "alice@example.com",
		AccessToken:  "access",
		RefreshToken: "refresh",
	}))

	sender := &fakeSender{}
	d := newTestDispatcher(t, store, sender, nil)

	err := d.Send(ctx, "alice@example.com", "bob@example.com", "Hi", "Hello", nil)
	require.NoError(t, err)
	require.Len(t, sender.calls, 1, "provider capability invoked exactly once")

	// The submitted payload decodes back to the message we asked for
	decoded, err := base64.URLEncoding.DecodeString(sender.calls[0])
	require.NoError(t, err)
	mr, err := gomail.CreateReader(bytes.NewReader(decoded))
	require.NoError(t, err)
	defer mr.Close()

	subject, err := mr.Header.Subject()
	require.NoError(t, err)
	assert.Equal(t, "Hi", subject)
	toList, err := mr.Header.AddressList("To")
	require.NoError(t, err)
	require.Len(t, toList, 1)
	assert.Equal(t, "bob@example.com", toList[0].Address)
}

func TestSendUnknownIdentity(t *testing.T) {
	sender := &fakeSender{}
	d := newTestDispatcher(t, credstore.NewMemory(nil), sender, nil)

	err := d.Send(context.Background(), "unknown@example.com", "bob@example.com", "Hi", "Hello", nil)

	var notAuth *NotAuthenticatedError
	require.ErrorAs(t, err, &notAuth)
	assert.Equal(t, "unknown@example.com", notAuth.Identity)
	assert.Empty(t, sender.calls, "no external call for an unknown identity")
}

func TestSendProviderFailure(t *testing.T) {
	ctx := context.Background()
	store := credstore.NewMemory(nil)
	require.NoError(t, store.Put(ctx, credstore.Record{
		Identity:     "alice@example.com",
		AccessToken:  "expired",
		RefreshToken: "revoked",
	}))

	sender := &fakeSender{err: fmt.Errorf("googleapi: Error 401: invalid credentials")}
	d := newTestDispatcher(t, store, sender, nil)

	err := d.Send(ctx, "alice@example.com", "bob@example.com", "Hi", "Hello", nil)

	var sendErr *SendError
	require.ErrorAs(t, err, &sendErr)
	assert.ErrorContains(t, err, "invalid credentials")
}

func TestSendSenderFactoryFailure(t *testing.T) {
	ctx := context.Background()
	store := credstore.NewMemory(nil)
	require.NoError(t, store.Put(ctx, credstore.Record{
		Identity:     "alice@example.com",
		AccessToken:  "access",
		RefreshToken: "refresh",
	}))

	d := newTestDispatcher(t, store, nil, fmt.Errorf("service init failed"))

	err := d.Send(ctx, "alice@example.com", "bob@example.com", "Hi", "Hello", nil)

	var sendErr *SendError
	require.ErrorAs(t, err, &sendErr)
}

func TestSendMissingRecipient(t *testing.T) {
	sender := &fakeSender{}
	d := newTestDispatcher(t, credstore.NewMemory(nil), sender, nil)

	err := d.Send(context.Background(), "alice@example.com", "", "Hi", "Hello", nil)

	var sendErr *SendError
	require.ErrorAs(t, err, &sendErr)
	assert.Empty(t, sender.calls)
}

func TestSendWithAttachmentPassesBytesThrough(t *testing.T) {
	ctx := context.Background()
	store := credstore.NewMemory(nil)
	require.NoError(t, store.Put(ctx, credstore.Record{
		Identity:     "alice@example.com",
		AccessToken:  "access",
		RefreshToken: "refresh",
	}))

	sender := &fakeSender{}
	d := newTestDispatcher(t, store, sender, nil)

	payload := []byte("col1,col2\n1,2\n")
	att := &Attachment{
		Filename:    "data.csv",
		ContentType: InferContentType("data.csv"),
		Data:        payload,
	}
	require.NoError(t, d.Send(ctx, "alice@example.com", "bob@example.com", "Data", "Attached.", att))
	require.Len(t, sender.calls, 1)

	parsed := decodeAndParse(t, sender.calls[0])
	require.Len(t, parsed.Attachments, 1)
	assert.Equal(t, "data.csv", parsed.Attachments[0].Filename)
	assert.Equal(t, payload, parsed.Attachments[0].Data)
}
