// Package service implements the account operations: registration, login,
// profile update, account deletion with its link/visit-log cascade, and the
// dashboard analytics fetch.
package service

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/thoas/go-funk"

	"github.com/sgorbunov/shrtaccounts/internal/models"
	"github.com/sgorbunov/shrtaccounts/internal/user"
)

type userKeeper interface {
	CreateUser(ctx context.Context, usr *user.User, transaction *sql.Tx) (string, error)

	GetUserByID(ctx context.Context, userID string, transaction *sql.Tx) (*user.User, bool, error)

	GetUserByEmail(ctx context.Context, email string, transaction *sql.Tx) (*user.User, bool, error)

	UpdateUser(ctx context.Context, usr *user.User, transaction *sql.Tx) error

	DeleteUser(ctx context.Context, userID string, transaction *sql.Tx) (bool, error)
}

type linksKeeper interface {
	GetUserShortLinks(ctx context.Context, userID string, transaction *sql.Tx) ([]string, error)

	DeleteUserLinks(ctx context.Context, userID string, transaction *sql.Tx) error

	DeleteVisitLogsByShortLinks(ctx context.Context, shortLinks []string, transaction *sql.Tx) error
}

type clickStatsProvider interface {
	GetUserClickStats(ctx context.Context, userID string) (models.ClickStats, error)
}

type statsKeeper interface {
	GetNumberOfUsers(ctx context.Context) (int64, error)

	GetNumberOfLinks(ctx context.Context) (int64, error)
}

type transactioner interface {
	BeginTransaction() (*sql.Tx, error)

	RollbackTransaction(transaction *sql.Tx) error

	CommitTransaction(transaction *sql.Tx) error
}

type pinger interface {
	Ping(ctx context.Context) error
}

type storage interface {
	userKeeper
	linksKeeper
	clickStatsProvider
	statsKeeper
	transactioner
	pinger
}

type tokenIssuer interface {
	BuildJWTString(usr *user.User) (string, error)
}

type passwordHasher interface {
	Hash(password string) (string, error)

	Verify(hash, password string) error
}

// ErrUserAlreadyExists is returned when registering an email that is taken.
var ErrUserAlreadyExists = errors.New("User already exists")

// ErrUserNotFound is returned on login with an unknown email.
var ErrUserNotFound = errors.New("User not found!!")

// ErrInvalidPassword is returned on login when the password does not match.
var ErrInvalidPassword = errors.New("Invalid Password")

// ErrInvalidUser is returned by protected operations when the account
// referenced by the token claims no longer exists.
var ErrInvalidUser = errors.New("Invalid User")

// ValidationError reports a malformed or missing input field.
// Its message is user-facing and specific to the first rule violated.
type ValidationError struct {
	message string
}

func (e *ValidationError) Error() string {
	return e.message
}

func newValidationError(message string) error {
	return &ValidationError{message: message}
}

var (
	emailRegex       = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	digitsOnlyRegex  = regexp.MustCompile(`^\d+$`)
	uppercaseRegex   = regexp.MustCompile(`[A-Z]`)
	lowercaseRegex   = regexp.MustCompile(`[a-z]`)
	numberRegex      = regexp.MustCompile(`\d`)
	specialCharRegex = regexp.MustCompile(`[@$!%*?&]`)
)

// Service orchestrates the account operations over the storage,
// the password hasher and the token issuer.
type Service struct {
	db     storage
	hasher passwordHasher
	tokens tokenIssuer
}

func New(db storage, hasher passwordHasher, tokens tokenIssuer) *Service {
	return &Service{
		db:     db,
		hasher: hasher,
		tokens: tokens,
	}
}

// Register validates the registration input in a fixed order, rejects
// duplicate emails and persists a new user with a hashed password.
func (s *Service) Register(ctx context.Context, req models.RegisterRequest) error {
	if err := validateRegistration(req); err != nil {
		return err
	}

	_, found, err := s.db.GetUserByEmail(ctx, req.Email, nil)
	if err != nil {
		return err
	}
	if found {
		return ErrUserAlreadyExists
	}

	passwordHash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return err
	}

	_, err = s.db.CreateUser(
		ctx,
		&user.User{
			ID:           uuid.New().String(),
			Name:         req.Name,
			Email:        req.Email,
			PasswordHash: passwordHash,
			MobileNo:     req.MobileNo,
		},
		nil,
	)

	return err
}

// Login checks the presented credentials and, on success, returns a signed
// session token together with the user record sans the password hash.
func (s *Service) Login(ctx context.Context, req models.LoginRequest) (string, models.PublicUser, error) {
	if req.Email == "" || req.Password == "" {
		return "", models.PublicUser{}, newValidationError("All fields are required!")
	}

	usr, found, err := s.db.GetUserByEmail(ctx, req.Email, nil)
	if err != nil {
		return "", models.PublicUser{}, err
	}
	if !found {
		return "", models.PublicUser{}, ErrUserNotFound
	}

	if err := s.hasher.Verify(usr.PasswordHash, req.Password); err != nil {
		return "", models.PublicUser{}, ErrInvalidPassword
	}

	token, err := s.tokens.BuildJWTString(usr)
	if err != nil {
		return "", models.PublicUser{}, err
	}

	return token, publicUser(usr), nil
}

// Update overwrites the name, email and mobile number of the account
// identified by the verified token claims. The password hash and the
// identifier are never touched here. The new email must not belong to
// another account; emails stay unique across all users.
func (s *Service) Update(ctx context.Context, userID string, req models.UpdateRequest) error {
	if req.NewName == "" || req.NewEmail == "" || req.NewMobileNo == "" {
		return newValidationError("All fields are required")
	}

	usr, found, err := s.db.GetUserByID(ctx, userID, nil)
	if err != nil {
		return err
	}
	if !found {
		return ErrInvalidUser
	}

	owner, found, err := s.db.GetUserByEmail(ctx, req.NewEmail, nil)
	if err != nil {
		return err
	}
	if found && owner.ID != userID {
		return ErrUserAlreadyExists
	}

	usr.Name = req.NewName
	usr.Email = req.NewEmail
	usr.MobileNo = req.NewMobileNo

	return s.db.UpdateUser(ctx, usr, nil)
}

// Delete removes the account identified by the verified token claims and
// cascades over its links and their visit logs. The user row is removed
// first and its absence is the failure signal. The short codes are captured
// before the links are deleted, and the visit-log deletion uses that captured
// set. The whole cascade runs inside one transaction, so a failure in a later
// step leaves no orphaned records behind.
func (s *Service) Delete(ctx context.Context, userID string) error {
	tx, err := s.db.BeginTransaction()
	if err != nil {
		return err
	}
	defer func() {
		_ = s.db.RollbackTransaction(tx)
	}()

	deleted, err := s.db.DeleteUser(ctx, userID, tx)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrInvalidUser
	}

	shortLinks, err := s.db.GetUserShortLinks(ctx, userID, tx)
	if err != nil {
		return err
	}

	if err := s.db.DeleteUserLinks(ctx, userID, tx); err != nil {
		return err
	}

	if err := s.db.DeleteVisitLogsByShortLinks(ctx, funk.UniqString(shortLinks), tx); err != nil {
		return err
	}

	return s.db.CommitTransaction(tx)
}

// Dashboard returns the click analytics of the account identified by the
// verified token claims. The aggregation itself is delegated to the
// storage-backed stats provider.
func (s *Service) Dashboard(ctx context.Context, userID string) (models.ClickStats, error) {
	_, found, err := s.db.GetUserByID(ctx, userID, nil)
	if err != nil {
		return models.ClickStats{}, err
	}
	if !found {
		return models.ClickStats{}, ErrInvalidUser
	}

	return s.db.GetUserClickStats(ctx, userID)
}

// Ping checks the health of the database/storage layer.
func (s *Service) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// GetInternalStats returns counts of registered users and stored links.
func (s *Service) GetInternalStats(ctx context.Context) (models.InternalStatsResponse, error) {
	users, err := s.db.GetNumberOfUsers(ctx)
	if err != nil {
		return models.InternalStatsResponse{}, err
	}

	links, err := s.db.GetNumberOfLinks(ctx)
	if err != nil {
		return models.InternalStatsResponse{}, err
	}

	return models.InternalStatsResponse{
		Users: users,
		Links: links,
	}, nil
}

func validateRegistration(req models.RegisterRequest) error {
	if req.Name == "" ||
		req.Email == "" ||
		req.Password == "" ||
		req.MobileNo == "" ||
		req.ConfirmPassword == "" ||
		req.Password != req.ConfirmPassword {
		return newValidationError("All fields are required!")
	}
	if !strings.Contains(req.Email, "@") {
		return newValidationError("Email must contain '@' symbol!")
	}
	if !emailRegex.MatchString(req.Email) {
		return newValidationError("Invalid email format!")
	}
	if !digitsOnlyRegex.MatchString(req.MobileNo) {
		return newValidationError("Mobile number must contain only digits!")
	}
	if len(req.MobileNo) != 10 {
		return newValidationError("Mobile number must be exactly 10 digits!")
	}
	if len(req.Password) < 8 {
		return newValidationError("Password must be at least 8 characters long!")
	}
	if !uppercaseRegex.MatchString(req.Password) {
		return newValidationError("Password must contain at least one uppercase letter!")
	}
	if !lowercaseRegex.MatchString(req.Password) {
		return newValidationError("Password must contain at least one lowercase letter!")
	}
	if !numberRegex.MatchString(req.Password) {
		return newValidationError("Password must contain at least one number!")
	}
	if !specialCharRegex.MatchString(req.Password) {
		return newValidationError("Password must contain at least one special character (@$!%*?&)!")
	}

	return nil
}

func publicUser(usr *user.User) models.PublicUser {
	return models.PublicUser{
		ID:       usr.ID,
		Name:     usr.Name,
		Email:    usr.Email,
		MobileNo: usr.MobileNo,
	}
}
