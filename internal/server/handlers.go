package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/sendgate/sendgate/internal/authflow"
	"github.com/sendgate/sendgate/internal/logging"
	"github.com/sendgate/sendgate/internal/mailer"
	"github.com/sendgate/sendgate/internal/metrics"
)

// sendResponse is the success body for POST /send.
type sendResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// handleLogin initiates the consent flow by redirecting the browser to the
// authorization endpoint.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), s.opts.RequestTimeout)
	defer cancel()

	authURL, err := s.coord.Start(ctx)
	if err != nil {
		s.logger.Error("failed to start authorization flow", logging.Err(err))
		respondError(w, http.StatusInternalServerError, "failed to start login")
		return
	}

	http.Redirect(w, r, authURL, http.StatusFound)
}

// handleCallback completes the code exchange and redirects the browser
// back to the client application with the verified identity as a
// correlation parameter.
func (s *Server) handleCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	if providerErr := q.Get("error"); providerErr != "" {
		s.logger.Warn("authorization denied by provider", "provider_error", providerErr)
		metrics.AuthAttempts.WithLabelValues(metrics.ResultError).Inc()
		respondError(w, http.StatusBadRequest, fmt.Sprintf("authorization denied: %s", providerErr))
		return
	}

	state := q.Get("state")
	code := q.Get("code")
	if state == "" || code == "" {
		respondError(w, http.StatusBadRequest, "missing state or code parameter")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.opts.RequestTimeout)
	defer cancel()

	identity, err := s.coord.Complete(ctx, state, code)
	if err != nil {
		metrics.AuthAttempts.WithLabelValues(metrics.ResultError).Inc()
		s.logger.Error("authorization callback failed", logging.Err(err))

		status := http.StatusInternalServerError
		var verifyErr *authflow.TokenVerificationError
		var exchangeErr *authflow.AuthExchangeError
		switch {
		case errors.As(err, &verifyErr):
			status = http.StatusUnauthorized
		case errors.As(err, &exchangeErr):
			status = http.StatusBadGateway
		}
		respondError(w, status, err.Error())
		return
	}

	metrics.AuthAttempts.WithLabelValues(metrics.ResultSuccess).Inc()

	redirect := fmt.Sprintf("%s/?user_email=%s",
		strings.TrimSuffix(s.opts.ClientAppOrigin, "/"),
		url.QueryEscape(identity))
	http.Redirect(w, r, redirect, http.StatusFound)
}

// handleSend dispatches a message on behalf of the given identity. The
// form carries user_email, to, subject, message, and an optional file part.
func (s *Server) handleSend(w http.ResponseWriter, r *http.Request) {
	// Bound the whole request body; headroom over the attachment limit
	// covers the other form fields and multipart framing.
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxAttachmentBytes+1<<20)

	att, ok := s.parseSendForm(w, r)
	if !ok {
		return
	}

	userEmail := r.PostFormValue("user_email")
	to := r.PostFormValue("to")
	subject := r.PostFormValue("subject")
	message := r.PostFormValue("message")

	for field, value := range map[string]string{
		"user_email": userEmail,
		"to":         to,
		"subject":    subject,
		"message":    message,
	} {
		if value == "" {
			respondError(w, http.StatusBadRequest, fmt.Sprintf("missing required field: %s", field))
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.opts.RequestTimeout)
	defer cancel()

	err := s.dispatcher.Send(ctx, userEmail, to, subject, message, att)
	if err != nil {
		var notAuth *mailer.NotAuthenticatedError
		if errors.As(err, &notAuth) {
			metrics.SendRequests.WithLabelValues(metrics.ResultNotAuthenticated).Inc()
			s.logger.Warn("send rejected: not authenticated", logging.UserHash(userEmail))
			respondError(w, http.StatusUnauthorized, "user not authenticated")
			return
		}

		metrics.SendRequests.WithLabelValues(metrics.ResultError).Inc()
		s.logger.Error("send failed",
			logging.Err(err),
			logging.UserHash(userEmail),
			logging.Operation("send"),
		)
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	metrics.SendRequests.WithLabelValues(metrics.ResultSuccess).Inc()
	respondJSON(w, http.StatusOK, sendResponse{
		Status:  "sent",
		Message: "Email sent successfully!",
	})
}

// parseSendForm parses the request form and extracts the optional
// attachment. It writes the error response itself and reports success via
// the second return value.
func (s *Server) parseSendForm(w http.ResponseWriter, r *http.Request) (*mailer.Attachment, bool) {
	contentType := r.Header.Get("Content-Type")

	if !strings.HasPrefix(contentType, "multipart/") {
		if err := r.ParseForm(); err != nil {
			respondError(w, http.StatusBadRequest, "malformed form data")
			return nil, false
		}
		return nil, true
	}

	if err := r.ParseMultipartForm(s.opts.MaxAttachmentBytes); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			respondError(w, http.StatusRequestEntityTooLarge, "attachment too large")
			return nil, false
		}
		respondError(w, http.StatusBadRequest, "malformed multipart form")
		return nil, false
	}

	file, header, err := r.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, true
	}
	if err != nil {
		respondError(w, http.StatusBadRequest, "malformed file part")
		return nil, false
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respondError(w, http.StatusBadRequest, "failed to read file part")
		return nil, false
	}
	if int64(len(data)) > s.opts.MaxAttachmentBytes {
		respondError(w, http.StatusRequestEntityTooLarge, "attachment too large")
		return nil, false
	}

	return &mailer.Attachment{
		Filename:    header.Filename,
		ContentType: mailer.InferContentType(header.Filename),
		Data:        data,
	}, true
}
