package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/saurav0523/liaplusAI-Backend/internal/credential"
	"github.com/saurav0523/liaplusAI-Backend/internal/domain"
	"github.com/saurav0523/liaplusAI-Backend/internal/dto"
	"github.com/saurav0523/liaplusAI-Backend/internal/metrics"
	"github.com/saurav0523/liaplusAI-Backend/internal/repository"
	"github.com/saurav0523/liaplusAI-Backend/internal/security"
	"github.com/saurav0523/liaplusAI-Backend/pkg/logger"
	"github.com/saurav0523/liaplusAI-Backend/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// AuthService defines the account lifecycle operations
type AuthService interface {
	// Signup creates an unverified account and dispatches its verification email
	Signup(ctx context.Context, req *dto.SignupRequest) (*dto.SignupResponse, error)
	// Verify consumes a verification token
	Verify(ctx context.Context, token string) error
	// Login issues a session token for a verified account
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error)
	// Me returns the account behind a session
	Me(ctx context.Context, accountID string) (*domain.AccountView, error)
	// UpdateMe changes the caller's name
	UpdateMe(ctx context.Context, accountID string, req *dto.UpdateProfileRequest) (*domain.AccountView, error)
}

// AuthServiceDeps holds the collaborators of AuthService
type AuthServiceDeps struct {
	Store    repository.AccountStore
	Hasher   security.PasswordHasher
	Tokens   *security.VerificationTokenService
	Sessions security.SessionTokenCodec
	Email    EmailSender
	Logger   *logger.Logger
}

// authService implements AuthService
type authService struct {
	store    repository.AccountStore
	hasher   security.PasswordHasher
	tokens   *security.VerificationTokenService
	sessions security.SessionTokenCodec
	email    EmailSender
	log      *logger.Logger
	now      func() time.Time
}

// NewAuthService creates a new AuthService
func NewAuthService(deps AuthServiceDeps) AuthService {
	log := deps.Logger
	if log == nil {
		log = logger.Get()
	}
	tokens := deps.Tokens
	if tokens == nil {
		tokens = security.NewVerificationTokenService(deps.Store)
	}
	return &authService{
		store:    deps.Store,
		hasher:   deps.Hasher,
		tokens:   tokens,
		sessions: deps.Sessions,
		email:    deps.Email,
		log:      log.Named("auth"),
		now:      time.Now,
	}
}

// Signup validates input, stores the account and sends the verification
// link. Uniqueness is left to InsertUnique; there is no read-before-write.
func (s *authService) Signup(ctx context.Context, req *dto.SignupRequest) (*dto.SignupResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.auth.signup")
	defer span.End()

	resp, err := s.signup(ctx, req)
	if err != nil {
		fail(span, err)
		metrics.RecordSignup(ctx, metrics.OutcomeFailure, domain.AsError(err).Code)
		return nil, err
	}

	span.SetAttributes(attribute.String("account_id", resp.User.ID))
	span.SetStatus(codes.Ok, "")
	metrics.RecordSignup(ctx, metrics.OutcomeSuccess, "")
	return resp, nil
}

func (s *authService) signup(ctx context.Context, req *dto.SignupRequest) (*dto.SignupResponse, error) {
	if field := req.MissingField(); field != "" {
		return nil, domain.MissingField(field)
	}

	email := credential.NormalizeEmail(req.Email)
	if err := credential.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := credential.ValidatePassword(req.Password); err != nil {
		return nil, err
	}
	role, err := domain.ParseRole(req.Role)
	if err != nil {
		return nil, err
	}

	hash, err := s.hash(ctx, req.Password)
	if err != nil {
		return nil, domain.Internal("hash password", err)
	}

	token, err := s.tokens.Issue()
	if err != nil {
		return nil, domain.Internal("issue verification token", err)
	}

	account := &domain.Account{
		Name:                  strings.TrimSpace(req.Name),
		Email:                 email,
		Role:                  role,
		PasswordHash:          hash,
		IsVerified:            false,
		VerificationTokenHash: &token.Hash,
	}
	if err := s.store.InsertUnique(ctx, account); err != nil {
		return nil, err
	}

	// The account stays valid when the email cannot be handed off
	sent := true
	if err := s.email.SendVerificationEmail(ctx, account.Email, token.Plain); err != nil {
		sent = false
		metrics.RecordEmailDispatchFailure(ctx)
		s.log.WithContext(ctx).Warn("Failed to dispatch verification email",
			zap.String("account_id", account.ID),
			zap.Error(err),
		)
	}

	return &dto.SignupResponse{
		User:                  account.View(),
		VerificationEmailSent: sent,
	}, nil
}

// Verify consumes token. Unknown, used and empty tokens all report
// ErrInvalidToken.
func (s *authService) Verify(ctx context.Context, token string) error {
	ctx, span := telemetry.StartSpan(ctx, "service.auth.verify")
	defer span.End()

	accountID, err := s.tokens.Consume(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrTokenNotFound) {
			err = domain.ErrInvalidToken
		}
		fail(span, err)
		metrics.RecordVerification(ctx, metrics.OutcomeFailure)
		return err
	}

	span.SetAttributes(attribute.String("account_id", accountID))
	span.SetStatus(codes.Ok, "")
	metrics.RecordVerification(ctx, metrics.OutcomeSuccess)
	s.log.WithContext(ctx).Info("Account verified", zap.String("account_id", accountID))
	return nil
}

// Login checks credentials and issues a session token
func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.auth.login")
	defer span.End()

	resp, err := s.login(ctx, req)
	if err != nil {
		fail(span, err)
		metrics.RecordLogin(ctx, metrics.OutcomeFailure, domain.AsError(err).Code)
		return nil, err
	}

	span.SetAttributes(attribute.String("account_id", resp.User.ID))
	span.SetStatus(codes.Ok, "")
	metrics.RecordLogin(ctx, metrics.OutcomeSuccess, "")
	return resp, nil
}

func (s *authService) login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	if field := req.MissingField(); field != "" {
		return nil, domain.MissingField(field)
	}

	email := credential.NormalizeEmail(req.Email)
	if err := credential.ValidateEmail(email); err != nil {
		return nil, err
	}

	account, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	if !s.verifyPassword(ctx, req.Password, account.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}
	if !account.IsVerified {
		return nil, domain.ErrEmailNotVerified
	}

	token, expiresAt, err := s.sessions.Issue(account.ID, account.Role, account.IsVerified)
	if err != nil {
		return nil, domain.Internal("issue session token", err)
	}

	return &dto.LoginResponse{
		AccessToken: token,
		TokenType:   dto.TokenTypeBearer,
		ExpiresIn:   int64(math.Round(expiresAt.Sub(s.now()).Seconds())),
		User:        account.View(),
	}, nil
}

// Me returns the current account view
func (s *authService) Me(ctx context.Context, accountID string) (*domain.AccountView, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.auth.me")
	defer span.End()

	span.SetAttributes(attribute.String("account_id", accountID))

	account, err := s.store.FindByID(ctx, accountID)
	if err != nil {
		fail(span, err)
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	view := account.View()
	return &view, nil
}

// UpdateMe trims and stores a new name. A nil or blank name is rejected.
func (s *authService) UpdateMe(ctx context.Context, accountID string, req *dto.UpdateProfileRequest) (*domain.AccountView, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.auth.update_me")
	defer span.End()

	span.SetAttributes(attribute.String("account_id", accountID))

	if req.Name == nil {
		fail(span, domain.ErrEmptyUpdate)
		return nil, domain.ErrEmptyUpdate
	}
	name := strings.TrimSpace(*req.Name)
	if name == "" {
		err := domain.MissingField("name")
		fail(span, err)
		return nil, err
	}

	account, err := s.store.UpdateFields(ctx, accountID, domain.AccountUpdate{Name: &name})
	if err != nil {
		fail(span, err)
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	view := account.View()
	return &view, nil
}

func (s *authService) hash(ctx context.Context, password string) (string, error) {
	start := time.Now()
	defer func() { metrics.RecordPasswordHash(ctx, "hash", time.Since(start)) }()
	return s.hasher.Hash(password)
}

func (s *authService) verifyPassword(ctx context.Context, password, hash string) bool {
	start := time.Now()
	defer func() { metrics.RecordPasswordHash(ctx, "verify", time.Since(start)) }()
	return s.hasher.Verify(password, hash)
}

// fail marks the span failed. Business rejections only set the status;
// internal failures are recorded with their cause.
func fail(span trace.Span, err error) {
	if errors.Is(err, domain.ErrInternal) {
		telemetry.RecordError(span, err)
		return
	}
	span.SetStatus(codes.Error, domain.AsError(err).Code)
}
