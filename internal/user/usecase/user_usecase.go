// Package usecase implements user profile business logic. Users own API
// credentials; the profile actions resolve the authenticated credential's
// owner through this package.
package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	userDomain "github.com/actiongate/actiongate/internal/user/domain"
	userService "github.com/actiongate/actiongate/internal/user/service"
	appValidation "github.com/actiongate/actiongate/internal/validation"
)

// CreateUserInput contains the input data for account creation.
type CreateUserInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateProfileInput contains the mutable profile fields.
type UpdateProfileInput struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// ChangePasswordInput contains the input data for a password rotation.
type ChangePasswordInput struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// UserUseCase defines the interface for user profile operations.
type UserUseCase interface {
	// Create registers a new user account with a hashed password.
	Create(ctx context.Context, input CreateUserInput) (*userDomain.User, error)

	// Get retrieves a user by ID.
	Get(ctx context.Context, userID uuid.UUID) (*userDomain.User, error)

	// UpdateProfile updates the user's display name and email address.
	UpdateProfile(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*userDomain.User, error)

	// ChangePassword verifies the current password and replaces the stored
	// hash with a hash of the new password.
	ChangePassword(ctx context.Context, userID uuid.UUID, input ChangePasswordInput) error
}

// UserRepository defines user repository operations.
type UserRepository interface {
	Create(ctx context.Context, user *userDomain.User) error
	Update(ctx context.Context, user *userDomain.User) error
	Get(ctx context.Context, userID uuid.UUID) (*userDomain.User, error)
	GetByEmail(ctx context.Context, email string) (*userDomain.User, error)
}

// userUseCase handles user profile business logic.
type userUseCase struct {
	userRepo        UserRepository
	passwordService userService.PasswordService
}

// validateCreateUserInput validates account creation input using
// jellydator/validation:
// - Required field checks
// - Email format validation
// - Password strength requirements (min 8 chars, uppercase, lowercase, number, special char)
func (u *userUseCase) validateCreateUserInput(input CreateUserInput) error {
	err := validation.ValidateStruct(&input,
		validation.Field(&input.Name,
			validation.Required.Error("name is required"),
			appValidation.NotBlank,
			validation.Length(1, 255).Error("name must be between 1 and 255 characters"),
		),
		validation.Field(&input.Email,
			validation.Required.Error("email is required"),
			appValidation.NotBlank,
			appValidation.Email,
			validation.Length(5, 255).Error("email must be between 5 and 255 characters"),
		),
		validation.Field(&input.Password,
			validation.Required.Error("password is required"),
			validation.Length(8, 128).Error("password must be between 8 and 128 characters"),
			appValidation.PasswordStrength{
				MinLength:      8,
				RequireUpper:   true,
				RequireLower:   true,
				RequireNumber:  true,
				RequireSpecial: true,
			},
		),
	)
	return appValidation.WrapValidationError(err)
}

// validateUpdateProfileInput validates profile updates.
func (u *userUseCase) validateUpdateProfileInput(input UpdateProfileInput) error {
	err := validation.ValidateStruct(&input,
		validation.Field(&input.Name,
			validation.Required.Error("name is required"),
			appValidation.NotBlank,
			validation.Length(1, 255).Error("name must be between 1 and 255 characters"),
		),
		validation.Field(&input.Email,
			validation.Required.Error("email is required"),
			appValidation.NotBlank,
			appValidation.Email,
			validation.Length(5, 255).Error("email must be between 5 and 255 characters"),
		),
	)
	return appValidation.WrapValidationError(err)
}

// validateChangePasswordInput validates a password rotation request. The new
// password carries the same strength requirements as account creation.
func (u *userUseCase) validateChangePasswordInput(input ChangePasswordInput) error {
	err := validation.ValidateStruct(&input,
		validation.Field(&input.CurrentPassword,
			validation.Required.Error("current_password is required"),
		),
		validation.Field(&input.NewPassword,
			validation.Required.Error("new_password is required"),
			validation.Length(8, 128).Error("new_password must be between 8 and 128 characters"),
			appValidation.PasswordStrength{
				MinLength:      8,
				RequireUpper:   true,
				RequireLower:   true,
				RequireNumber:  true,
				RequireSpecial: true,
			},
		),
	)
	return appValidation.WrapValidationError(err)
}

// Create registers a new user account.
//
// This method:
// 1. Validates the input (name, email format, password strength)
// 2. Hashes the password with Argon2id
// 3. Persists the user; a duplicate email surfaces as ErrUserEmailTaken
func (u *userUseCase) Create(ctx context.Context, input CreateUserInput) (*userDomain.User, error) {
	if err := u.validateCreateUserInput(input); err != nil {
		return nil, err
	}

	hashedPassword, err := u.passwordService.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &userDomain.User{
		ID:           uuid.Must(uuid.NewV7()),
		Name:         strings.TrimSpace(input.Name),
		Email:        normalizeEmail(input.Email),
		PasswordHash: hashedPassword,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := u.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// Get retrieves a user by ID.
func (u *userUseCase) Get(ctx context.Context, userID uuid.UUID) (*userDomain.User, error) {
	return u.userRepo.Get(ctx, userID)
}

// UpdateProfile updates the user's display name and email address.
// A duplicate email surfaces as ErrUserEmailTaken.
func (u *userUseCase) UpdateProfile(
	ctx context.Context,
	userID uuid.UUID,
	input UpdateProfileInput,
) (*userDomain.User, error) {
	if err := u.validateUpdateProfileInput(input); err != nil {
		return nil, err
	}

	user, err := u.userRepo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.Name = strings.TrimSpace(input.Name)
	user.Email = normalizeEmail(input.Email)
	user.UpdatedAt = time.Now().UTC()

	if err := u.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// ChangePassword verifies the current password and replaces the stored hash.
//
// Security Notes:
//   - The current password must match before any change is made
//   - A mismatch returns ErrWrongPassword (mapped to a validation failure,
//     not an authentication failure, since the bearer credential is valid)
//   - The plain passwords are never persisted or logged
func (u *userUseCase) ChangePassword(ctx context.Context, userID uuid.UUID, input ChangePasswordInput) error {
	if err := u.validateChangePasswordInput(input); err != nil {
		return err
	}

	user, err := u.userRepo.Get(ctx, userID)
	if err != nil {
		return err
	}

	if !u.passwordService.ComparePassword(input.CurrentPassword, user.PasswordHash) {
		return userDomain.ErrWrongPassword
	}

	hashedPassword, err := u.passwordService.HashPassword(input.NewPassword)
	if err != nil {
		return err
	}

	user.PasswordHash = hashedPassword
	user.UpdatedAt = time.Now().UTC()

	return u.userRepo.Update(ctx, user)
}

// normalizeEmail lowercases and trims an email address for storage and lookup.
func normalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}

// NewUserUseCase creates a new UserUseCase.
func NewUserUseCase(
	userRepo UserRepository,
	passwordService userService.PasswordService,
) UserUseCase {
	return &userUseCase{
		userRepo:        userRepo,
		passwordService: passwordService,
	}
}
