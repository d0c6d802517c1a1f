package application

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/invest-tracker/internal/domain/entity"
	repo "github.com/oksasatya/invest-tracker/internal/domain/repository"
	"github.com/oksasatya/invest-tracker/pkg/helpers"
	"github.com/oksasatya/invest-tracker/pkg/validation"
)

type PasswordHasher interface {
	Hash(ctx context.Context, plain string) (string, error)
	Verify(ctx context.Context, plain, hash string) (bool, error)
}

type TokenIssuer interface {
	Issue(userID string) (string, time.Time, error)
}

type ProfileCache interface {
	Get(ctx context.Context, userID string) (*entity.PublicUser, bool, error)
	Set(ctx context.Context, p entity.PublicUser) error
}

type EventPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// AuthResult is returned by Register and Login.
type AuthResult struct {
	Token     string            `json:"token"`
	User      entity.PublicUser `json:"user"`
	ExpiresAt time.Time         `json:"-"`
}

// Service orchestrates registration, login and profile lookup. Cache and
// Events are optional.
type Service struct {
	Repo         repo.UserRepository
	Hasher       PasswordHasher
	Tokens       TokenIssuer
	Validator    *validation.Validator
	Cache        ProfileCache
	Events       EventPublisher
	Logger       *logrus.Logger
	QueryTimeout time.Duration

	dummyHash string
	now       func() time.Time
}

type Option func(*Service)

func WithCache(c ProfileCache) Option { return func(s *Service) { s.Cache = c } }

func WithEvents(p EventPublisher) Option { return func(s *Service) { s.Events = p } }

func WithQueryTimeout(d time.Duration) Option { return func(s *Service) { s.QueryTimeout = d } }

// NewService hashes a random throwaway password once so that logins for
// unknown emails pay the same bcrypt cost as real ones.
func NewService(ctx context.Context, r repo.UserRepository, hasher PasswordHasher, tokens TokenIssuer, v *validation.Validator, logger *logrus.Logger, opts ...Option) (*Service, error) {
	s := &Service{
		Repo:         r,
		Hasher:       hasher,
		Tokens:       tokens,
		Validator:    v,
		Logger:       logger,
		QueryTimeout: 5 * time.Second,
		now:          time.Now,
	}
	for _, o := range opts {
		o(s)
	}

	seed := make([]byte, 18)
	if _, err := rand.Read(seed); err != nil {
		return nil, err
	}
	dummy, err := hasher.Hash(ctx, base64.RawURLEncoding.EncodeToString(seed))
	if err != nil {
		return nil, err
	}
	s.dummyHash = dummy
	return s, nil
}

// Register validates the input, stores the user with a hashed password and
// issues a token. Duplicate emails are decided by the store's constraint.
func (s *Service) Register(ctx context.Context, in validation.Registration) (*AuthResult, error) {
	if err := s.Validator.ValidateRegistration(in); err != nil {
		s.debug("registration rejected", logrus.Fields{"error": err.Error()})
		return nil, err
	}

	hash, err := s.Hasher.Hash(ctx, in.Password)
	if err != nil {
		return nil, s.dependency("hash password", err, nil)
	}

	u := &entity.User{Email: in.Email, PasswordHash: hash, Name: in.Name}
	qctx, cancel := s.queryCtx(ctx)
	err = s.Repo.Create(qctx, u)
	cancel()
	if err != nil {
		if errors.Is(err, repo.ErrDuplicateEmail) {
			s.debug("registration conflict", nil)
			return nil, ErrEmailTaken
		}
		return nil, s.dependency("create user", err, nil)
	}

	res, err := s.issue(u)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, entity.EventUserRegistered, u.ID, u.Email)
	return res, nil
}

// Login returns ErrInvalidCredentials for unknown emails and wrong
// passwords alike. A bcrypt comparison runs in both cases.
func (s *Service) Login(ctx context.Context, in validation.Login) (*AuthResult, error) {
	if err := s.Validator.ValidateLogin(in); err != nil {
		return nil, err
	}

	qctx, cancel := s.queryCtx(ctx)
	u, err := s.Repo.GetByEmail(qctx, in.Email)
	cancel()
	if err != nil && !errors.Is(err, repo.ErrNotFound) {
		return nil, s.dependency("get user by email", err, nil)
	}

	hash := s.dummyHash
	if u != nil {
		hash = u.PasswordHash
	}
	match, verr := s.Hasher.Verify(ctx, in.Password, hash)
	if verr != nil {
		return nil, s.dependency("verify password", verr, nil)
	}
	if u == nil || !match {
		s.debug("login rejected", nil)
		s.publish(ctx, entity.EventLoginFailed, "", in.Email)
		return nil, ErrInvalidCredentials
	}

	res, err := s.issue(u)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, entity.EventLoginSucceeded, u.ID, u.Email)
	return res, nil
}

// GetProfile looks up the user resolved by the auth middleware.
func (s *Service) GetProfile(ctx context.Context, userID string) (*entity.PublicUser, error) {
	if s.Cache != nil {
		p, ok, err := s.Cache.Get(ctx, userID)
		if err != nil {
			s.warn("profile cache read failed", err, logrus.Fields{"user_id": userID})
		} else if ok {
			return p, nil
		}
	}

	qctx, cancel := s.queryCtx(ctx)
	u, err := s.Repo.GetByID(qctx, userID)
	cancel()
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, s.dependency("get user by id", err, logrus.Fields{"user_id": userID})
	}

	p := u.Public()
	if s.Cache != nil {
		if err := s.Cache.Set(ctx, p); err != nil {
			s.warn("profile cache write failed", err, logrus.Fields{"user_id": userID})
		}
	}
	return &p, nil
}

func (s *Service) issue(u *entity.User) (*AuthResult, error) {
	tok, exp, err := s.Tokens.Issue(u.ID)
	if err != nil {
		return nil, s.dependency("issue token", err, logrus.Fields{"user_id": u.ID})
	}
	return &AuthResult{Token: tok, User: u.Public(), ExpiresAt: exp}, nil
}

func (s *Service) queryCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.QueryTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.QueryTimeout)
}

func (s *Service) publish(ctx context.Context, typ entity.AuthEventType, userID, email string) {
	if s.Events == nil {
		return
	}
	ev := entity.AuthEvent{
		ID:         uuid.NewString(),
		Type:       typ,
		UserID:     userID,
		Email:      email,
		OccurredAt: s.now().UTC(),
	}
	if err := s.Events.PublishJSON(ctx, ev); err != nil {
		s.warn("publish auth event failed", err, logrus.Fields{"type": string(typ)})
	}
}

func (s *Service) dependency(op string, err error, fields logrus.Fields) error {
	if fields == nil {
		fields = logrus.Fields{}
	}
	fields["op"] = op
	helpers.LogError(s.Logger, "auth dependency failure", err, fields)
	return &DependencyError{Op: op, Err: err}
}

func (s *Service) warn(msg string, err error, fields logrus.Fields) {
	helpers.LogWarn(s.Logger, msg, err, fields)
}

func (s *Service) debug(msg string, fields logrus.Fields) {
	helpers.LogDebug(s.Logger, msg, fields)
}
