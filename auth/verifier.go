package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/kbukum/forohub/logger"
	"github.com/kbukum/forohub/observability"
)

// ErrInvalidCredentials is returned for every rejected login. Callers cannot
// tell an unknown login from a wrong secret or a disabled account.
var ErrInvalidCredentials = errors.New("auth: invalid credentials")

// Login outcomes recorded on spans, metrics and logs.
const (
	OutcomeSuccess      = "success"
	OutcomeInvalid      = "invalid_credentials"
	OutcomeStoreFailure = "store_failure"
	OutcomeThrottled    = "throttled"

	reasonUnknownLogin = "unknown_login"
	reasonBadSecret    = "bad_secret"
	reasonDisabled     = "disabled"
)

// dummySecret is hashed once and verified on unknown logins so every
// failure path pays for one hash comparison.
const dummySecret = "forohub-timing-equalizer"

// Verifier checks a login/secret pair against a CredentialStore.
type Verifier struct {
	store   CredentialStore
	hasher  SecretHasher
	log     *logger.Logger
	tracer  trace.Tracer
	metrics *observability.AuthMetrics

	dummyOnce sync.Once
	dummyHash string
}

// VerifierOption configures a Verifier.
type VerifierOption func(*Verifier)

// WithTracer sets the tracer used for login spans.
func WithTracer(t trace.Tracer) VerifierOption {
	return func(v *Verifier) { v.tracer = t }
}

// WithMetrics sets the instruments login attempts are counted on.
func WithMetrics(m *observability.AuthMetrics) VerifierOption {
	return func(v *Verifier) { v.metrics = m }
}

// NewVerifier creates a Verifier. A nil log discards output.
func NewVerifier(store CredentialStore, hasher SecretHasher, log *logger.Logger, opts ...VerifierOption) *Verifier {
	if log == nil {
		log = logger.NewNop()
	}
	v := &Verifier{
		store:  store,
		hasher: hasher,
		log:    log.WithComponent("auth"),
		tracer: noop.NewTracerProvider().Tracer("auth"),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Authenticate returns the identity for login if secret matches its stored
// digest and the account is enabled. Credential failures return
// ErrInvalidCredentials; store failures are returned wrapped.
func (v *Verifier) Authenticate(ctx context.Context, login, secret string) (*Identity, error) {
	ctx, span := v.tracer.Start(ctx, "auth.authenticate")
	defer span.End()

	identity, err := v.store.FindByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, ErrIdentityNotFound) {
			_ = v.hasher.Verify(secret, v.dummy())
			return nil, v.reject(ctx, span, login, reasonUnknownLogin)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "credential store failure")
		span.SetAttributes(attribute.String("auth.outcome", OutcomeStoreFailure))
		v.metrics.RecordLogin(ctx, OutcomeStoreFailure)
		v.log.WithContext(ctx).Error("credential lookup failed", logger.ErrorFields("find_by_login", err))
		return nil, fmt.Errorf("auth: find identity: %w", err)
	}

	// The hash check runs before the enabled check so blocked accounts
	// cost the same as active ones.
	if err := v.hasher.Verify(secret, identity.SecretHash); err != nil {
		return nil, v.reject(ctx, span, login, reasonBadSecret)
	}
	if !identity.Enabled {
		return nil, v.reject(ctx, span, login, reasonDisabled)
	}

	span.SetAttributes(attribute.String("auth.outcome", OutcomeSuccess))
	v.metrics.RecordLogin(ctx, OutcomeSuccess)
	v.log.WithContext(ctx).Info("login succeeded", logger.Fields(
		logger.FieldLogin, login,
		logger.FieldUserID, identity.ID,
	))
	return identity.Clone(), nil
}

func (v *Verifier) reject(ctx context.Context, span trace.Span, login, reason string) error {
	span.SetAttributes(
		attribute.String("auth.outcome", OutcomeInvalid),
		attribute.String("auth.reason", reason),
	)
	v.metrics.RecordLogin(ctx, OutcomeInvalid)
	v.log.WithContext(ctx).Warn("login rejected", logger.Fields(
		logger.FieldLogin, login,
		logger.FieldReason, reason,
	))
	return ErrInvalidCredentials
}

func (v *Verifier) dummy() string {
	v.dummyOnce.Do(func() {
		v.dummyHash, _ = v.hasher.Hash(dummySecret)
	})
	return v.dummyHash
}
