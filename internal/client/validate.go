package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"

	"github.com/failsafe-go/failsafe-go/timeout"

	"github.com/Belphemur/ReelRoulette/internal/apperrors"
	"github.com/Belphemur/ReelRoulette/internal/cache"
	"github.com/Belphemur/ReelRoulette/internal/config"
	"github.com/Belphemur/ReelRoulette/internal/models"
)

const identityPath = "/"

// Validate checks that the server is reachable and accepts the token by reading
// its root document. The identity is cached for later link building.
func (c *client) Validate(ctx context.Context, creds models.Credentials) (*models.ServerIdentity, error) {
	logger := config.GetLogger()

	if !creds.Complete() {
		return nil, &apperrors.ErrConnectivity{Reason: apperrors.ReasonOther, Err: errors.New("server address and token are required")}
	}
	baseURL, err := NormalizeBaseURL(creds.ServerAddress)
	if err != nil {
		return nil, &apperrors.ErrConnectivity{Reason: apperrors.ReasonOther, Err: err}
	}

	body, err := c.get(ctx, baseURL, creds.AuthToken, identityPath, c.validateTimeout)
	if err != nil {
		reason := classifyConnectivity(err)
		logger.Warn().Err(err).Str("server", baseURL).Str("reason", string(reason)).Msg("Credential validation failed")
		return nil, &apperrors.ErrConnectivity{Reason: reason, Err: err}
	}

	identity, err := c.identityParser.ParseOne(bytes.NewReader(body))
	if err != nil {
		logger.Warn().Err(err).Str("server", baseURL).Msg("Server answered with an unreadable identity document")
		return nil, &apperrors.ErrConnectivity{Reason: apperrors.ReasonOther, Err: err}
	}

	c.store(cache.NewKey(baseURL, creds.AuthToken, identityPath), body)
	logger.Info().
		Str("server", baseURL).
		Str("machine_identifier", identity.MachineIdentifier).
		Str("friendly_name", identity.FriendlyName).
		Msg("Media server credentials validated")
	return identity, nil
}

// Identity returns the server identity, preferring a cached root document.
func (c *client) Identity(ctx context.Context, creds models.Credentials) (*models.ServerIdentity, error) {
	baseURL, err := NormalizeBaseURL(creds.ServerAddress)
	if err != nil {
		return nil, err
	}
	key := cache.NewKey(baseURL, creds.AuthToken, identityPath)

	if body, ok := c.cached(key); ok {
		if identity, err := c.identityParser.ParseOne(bytes.NewReader(body)); err == nil {
			return identity, nil
		}
		c.forget(key)
	}

	body, err := c.get(ctx, baseURL, creds.AuthToken, identityPath, c.timeout)
	if err != nil {
		return nil, err
	}
	identity, err := c.identityParser.ParseOne(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse identity: %w", err)
	}
	c.store(key, body)
	return identity, nil
}

// classifyConnectivity maps a request failure to the reason surfaced to users.
func classifyConnectivity(err error) apperrors.ConnectivityReason {
	var status *ErrUnexpectedStatus
	if errors.As(err, &status) {
		if status.Unauthorized() {
			return apperrors.ReasonUnauthorized
		}
		return apperrors.ReasonOther
	}

	if errors.Is(err, timeout.ErrExceeded) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EHOSTUNREACH) ||
		errors.Is(err, syscall.ENETUNREACH) {
		return apperrors.ReasonUnreachable
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return apperrors.ReasonUnreachable
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return apperrors.ReasonUnreachable
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return apperrors.ReasonUnreachable
	}

	return apperrors.ReasonOther
}
