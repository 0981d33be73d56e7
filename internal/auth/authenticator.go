// Package auth orchestrates the login and registration flows on top of the
// crypto provider and the registry gateway. Every dependency failure ends
// up at the reporter before a flow fails, and the caller only ever sees
// sanitized messages: an unknown identifier and a wrong secret are
// indistinguishable from outside.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/dmitrijs2005/authguard/internal/autherr"
	"github.com/dmitrijs2005/authguard/internal/common"
	"github.com/dmitrijs2005/authguard/internal/cryptox"
	"github.com/dmitrijs2005/authguard/internal/logging"
	"github.com/dmitrijs2005/authguard/internal/registry"
	"github.com/dmitrijs2005/authguard/internal/report"
)

const minSecretLen = 8

// RegisterInput is the raw registration request.
type RegisterInput struct {
	Username string
	Secret   string
}

// LoginResult is the outcome of a successful login.
type LoginResult struct {
	User        *registry.PublicView
	AccessToken string
}

// Options carries the deployment-tunable knobs of the authenticator.
type Options struct {
	JWTSecret           []byte
	TokenValidity       time.Duration
	LoginAttemptsPerMin float64
	LoginAttemptBurst   int
}

// Authenticator runs request-scoped login/registration state machines. It
// holds no per-request state; the gateway and reporter are the only shared
// mutable collaborators.
type Authenticator struct {
	crypto   *cryptox.Provider
	gateway  *registry.Gateway
	reporter *report.Reporter
	logger   logging.Logger
	limiter  *loginLimiter

	jwtSecret     []byte
	tokenValidity time.Duration
}

func NewAuthenticator(crypto *cryptox.Provider, gateway *registry.Gateway, reporter *report.Reporter, logger logging.Logger, opts Options) *Authenticator {
	if opts.LoginAttemptsPerMin <= 0 {
		opts.LoginAttemptsPerMin = 30
	}
	if opts.LoginAttemptBurst <= 0 {
		opts.LoginAttemptBurst = 10
	}
	if opts.TokenValidity <= 0 {
		opts.TokenValidity = 15 * time.Minute
	}
	return &Authenticator{
		crypto:        crypto,
		gateway:       gateway,
		reporter:      reporter,
		logger:        logger.With("component", "auth"),
		limiter:       newLoginLimiter(rate.Limit(opts.LoginAttemptsPerMin/60.0), opts.LoginAttemptBurst),
		jwtSecret:     opts.JWTSecret,
		tokenValidity: opts.TokenValidity,
	}
}

// Register runs Validating → Hashing → Persisting. Malformed input fails
// with no side effects; a crypto fatal stops before any persistence; a
// persistence failure leaves no partial user behind.
func (a *Authenticator) Register(ctx context.Context, input RegisterInput) (*registry.PublicView, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" || input.Secret == "" {
		return nil, fmt.Errorf("username and password are required: %w", common.ErrorValidation)
	}
	if len(input.Secret) < minSecretLen {
		return nil, fmt.Errorf("password must be at least %d characters: %w", minSecretLen, common.ErrorValidation)
	}

	res, err := a.crypto.Hash([]byte(input.Secret))
	if err != nil {
		e := autherr.New(autherr.CategoryCrypto, false, err)
		a.reporter.Report(ctx, e, "auth.register")
		return nil, e
	}
	if res.FallbackUsed {
		a.reporter.Report(ctx, autherr.New(autherr.CategoryCrypto, true, nil), "auth.register")
	}

	user := &registry.User{
		ID:        uuid.NewString(),
		Username:  username,
		Digest:    res.Encoded,
		CreatedAt: time.Now().UTC(),
	}
	user.Repair()

	if err := a.gateway.CreateUser(ctx, user); err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, autherr.WithMessage(autherr.CategoryRegistry, "username is not available", false, err)
		}
		// storage failures arrive as already-reported REGISTRY errors
		return nil, err
	}

	a.logger.Info(ctx, "user registered", "user", username, "alg", res.Alg)
	return user.PublicView(), nil
}

// Login runs Looking Up → Verifying. An absent identifier and a failed
// verification return the identical error value, so their caller-visible
// payloads are byte for byte the same.
func (a *Authenticator) Login(ctx context.Context, identifier, secret string) (*LoginResult, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || secret == "" {
		return nil, common.ErrInvalidCredentials
	}

	if !a.limiter.allow(identifier) {
		a.logger.Warn(ctx, "login throttled", "user", identifier)
		return nil, common.ErrorRateLimited
	}

	user, err := a.gateway.GetUser(ctx, identifier)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidCredentials
		}
		return nil, err
	}

	ok, err := a.crypto.Verify([]byte(secret), user.Digest)
	if err != nil {
		e := autherr.New(autherr.CategoryCrypto, false, err)
		a.reporter.Report(ctx, e, "auth.login")
		return nil, e
	}
	if !ok {
		return nil, common.ErrInvalidCredentials
	}

	token, err := GenerateToken(user.ID, a.jwtSecret, a.tokenValidity)
	if err != nil {
		a.logger.Error(ctx, "token generation failed", "user", identifier)
		return nil, common.ErrorInternal
	}

	a.logger.Info(ctx, "user logged in", "user", identifier)
	return &LoginResult{User: user.PublicView(), AccessToken: token}, nil
}
