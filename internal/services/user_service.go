package services

import (
	"context"
	"errors"

	"arcade-backend/internal/auth"
	"arcade-backend/internal/cache"
	"arcade-backend/internal/models"
	"arcade-backend/internal/repositories"
)

type UserService struct {
	Repo       *repositories.UserRepository
	AuditRepo  *repositories.AuditLogRepository
	JWTManager *auth.JWTManager
}

func NewUserService(repo *repositories.UserRepository, auditRepo *repositories.AuditLogRepository, jwtManager *auth.JWTManager) *UserService {
	return &UserService{
		Repo:       repo,
		AuditRepo:  auditRepo,
		JWTManager: jwtManager,
	}
}

func validRole(role string) bool {
	switch role {
	case models.RoleCrew, models.RoleTech, models.RoleManager, models.RoleAdmin:
		return true
	}
	return false
}

func (s *UserService) GetUser(ctx context.Context, id string) (*models.User, error) {
	return s.Repo.Get(ctx, id)
}

// ListUsers returns all users
func (s *UserService) ListUsers(ctx context.Context) ([]*models.User, error) {
	return s.Repo.List(ctx)
}

// CreateUser creates a user on behalf of a manager
func (s *UserService) CreateUser(ctx context.Context, req *models.SignupRequest, actorID string) (*models.User, error) {
	user, err := s.signup(ctx, req)
	if err != nil {
		return nil, err
	}

	s.AuditRepo.Create(ctx, &models.AuditLog{
		Action:     "CREATE",
		EntityType: models.EntityUser,
		EntityID:   user.ID,
		UserID:     actorID,
		Details:    map[string]interface{}{"email": user.Email, "role": user.Role},
	})
	cache.InvalidateUserCaches(ctx)
	return user, nil
}

// AdminsWithout2FA lists admin accounts that have not enabled 2FA. Admins
// are expected to run 2FA, so this feeds the periodic security audit.
func (s *UserService) AdminsWithout2FA(ctx context.Context) ([]*models.User, error) {
	return s.Repo.GetAdminsWithout2FA(ctx)
}

// UpdateUser updates an existing user
func (s *UserService) UpdateUser(ctx context.Context, id string, req *models.UpdateUserRequest, actorID string) (*models.User, error) {
	user, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, errors.New("user not found")
	}

	if req.DisplayName != "" {
		user.DisplayName = req.DisplayName
	}
	if req.Role != "" {
		if !validRole(req.Role) {
			return nil, errors.New("invalid role")
		}
		user.Role = req.Role
	}
	user.PasswordHash = ""
	if req.Password != "" {
		hashed, err := auth.HashPassword(req.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hashed
	}

	if err := s.Repo.Update(ctx, user); err != nil {
		return nil, err
	}

	s.AuditRepo.Create(ctx, &models.AuditLog{
		Action:     "UPDATE",
		EntityType: models.EntityUser,
		EntityID:   user.ID,
		UserID:     actorID,
		Details:    map[string]interface{}{"role": user.Role},
	})
	cache.InvalidateUserCaches(ctx)
	return user, nil
}

// ToggleActiveStatus suspends or reinstates a user
func (s *UserService) ToggleActiveStatus(ctx context.Context, id string, isActive bool, actorID string) error {
	if err := s.Repo.ToggleActiveStatus(ctx, id, isActive); err != nil {
		return err
	}
	s.AuditRepo.Create(ctx, &models.AuditLog{
		Action:     "UPDATE",
		EntityType: models.EntityUser,
		EntityID:   id,
		UserID:     actorID,
		Details:    map[string]interface{}{"is_active": isActive},
	})
	cache.InvalidateUserCaches(ctx)
	return nil
}

// DeleteUser deletes a user
func (s *UserService) DeleteUser(ctx context.Context, id, actorID string) error {
	if err := s.Repo.Delete(ctx, id); err != nil {
		return err
	}
	s.AuditRepo.Create(ctx, &models.AuditLog{
		Action:     "DELETE",
		EntityType: models.EntityUser,
		EntityID:   id,
		UserID:     actorID,
	})
	cache.InvalidateUserCaches(ctx)
	return nil
}

// Signup creates the first account or a self-registration
func (s *UserService) Signup(ctx context.Context, req *models.SignupRequest) (*models.AuthResponse, error) {
	user, err := s.signup(ctx, req)
	if err != nil {
		return nil, err
	}

	token, err := s.JWTManager.GenerateToken(user)
	if err != nil {
		return nil, err
	}

	return &models.AuthResponse{
		Token: token,
		User:  user,
	}, nil
}

func (s *UserService) signup(ctx context.Context, req *models.SignupRequest) (*models.User, error) {
	if req.Email == "" || req.Password == "" || req.DisplayName == "" {
		return nil, errors.New("display name, email, and password are required")
	}
	if req.Role != "" && !validRole(req.Role) {
		return nil, errors.New("invalid role")
	}

	// Check if user already exists
	existingUser, _ := s.Repo.GetByEmail(ctx, req.Email)
	if existingUser != nil {
		return nil, errors.New("user with this email already exists")
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:        req.Email,
		PasswordHash: hashedPassword,
		DisplayName:  req.DisplayName,
		Role:         req.Role,
	}

	if err := s.Repo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login authenticates a user and returns a JWT token. When 2FA is enabled
// the token is withheld until the TOTP step completes.
func (s *UserService) Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error) {
	if req.Email == "" || req.Password == "" {
		return nil, errors.New("email and password are required")
	}

	// Fast path: recently verified credentials skip the bcrypt compare
	if userID, ok := cache.GetCachedAuth(ctx, req.Email, req.Password); ok {
		user, err := s.Repo.Get(ctx, userID)
		if err == nil && user.IsActive {
			return s.loginResponse(user)
		}
		// Deleted or suspended since the credentials were cached
		cache.InvalidateAuth(ctx, req.Email, req.Password)
	}

	user, err := s.Repo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, errors.New("invalid email or password")
	}

	if !auth.VerifyPassword(user.PasswordHash, req.Password) {
		return nil, errors.New("invalid email or password")
	}

	if !user.IsActive {
		return nil, errors.New("account suspended")
	}

	cache.CacheAuth(ctx, req.Email, req.Password, user.ID)
	return s.loginResponse(user)
}

func (s *UserService) loginResponse(user *models.User) (*models.AuthResponse, error) {
	if user.TOTPEnabled {
		return &models.AuthResponse{User: user, TOTPRequired: true}, nil
	}

	token, err := s.JWTManager.GenerateToken(user)
	if err != nil {
		return nil, err
	}
	return &models.AuthResponse{Token: token, User: user}, nil
}

// CompleteTOTPLogin issues the token after a successful 2FA verification
func (s *UserService) CompleteTOTPLogin(ctx context.Context, userID string) (*models.AuthResponse, error) {
	user, err := s.Repo.Get(ctx, userID)
	if err != nil {
		return nil, errors.New("user not found")
	}
	token, err := s.JWTManager.GenerateToken(user)
	if err != nil {
		return nil, err
	}
	return &models.AuthResponse{Token: token, User: user}, nil
}
