package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go-coordinator/core/constants"
	"go-coordinator/core/logger"
)

var ErrVerificationUnavailable = errors.New("participant verification unavailable")

// ParticipantVerifier asks the participant service whether an email belongs
// to a registered participant.
type ParticipantVerifier interface {
	Verify(ctx context.Context, email string) (bool, error)
}

type ParticipantClient struct {
	url    string
	client *http.Client
}

func NewParticipantClient(url string, timeout time.Duration) *ParticipantClient {
	if timeout <= 0 {
		timeout = constants.VerificationTimeout
	}
	return &ParticipantClient{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

type verifyRequest struct {
	Email string `json:"email"`
}

// Verify returns true on any 2xx answer and false on 404. Anything else,
// including an unreachable service, is ErrVerificationUnavailable.
func (c *ParticipantClient) Verify(ctx context.Context, email string) (bool, error) {
	if c.url == "" {
		return false, fmt.Errorf("%w: no verification url configured", ErrVerificationUnavailable)
	}

	body, err := json.Marshal(verifyRequest{Email: email})
	if err != nil {
		return false, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		logger.Error("ParticipantClient:Verify:Error", "error", err)
		return false, fmt.Errorf("%w: %v", ErrVerificationUnavailable, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return true, nil
	case resp.StatusCode == http.StatusNotFound:
		return false, nil
	default:
		logger.Error("ParticipantClient:Verify:UnexpectedStatus", "status", resp.StatusCode)
		return false, fmt.Errorf("%w: status %d", ErrVerificationUnavailable, resp.StatusCode)
	}
}
