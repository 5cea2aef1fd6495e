package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/AnshRaj112/travel-journal-backend/internal/models"
	"github.com/AnshRaj112/travel-journal-backend/internal/validation"
	"github.com/AnshRaj112/travel-journal-backend/pkg/token"
	"github.com/AnshRaj112/travel-journal-backend/pkg/utils"
)

const (
	msgInvalidCredentials = "Invalid credentials"
	msgPleaseAuthenticate = "Please authenticate"
)

// AuthService registers accounts, checks credentials and resolves bearer tokens.
type AuthService struct {
	users      UserStore
	tokens     *token.Issuer
	bcryptCost int
	log        *zap.Logger
}

func NewAuthService(users UserStore, tokens *token.Issuer, bcryptCost int, log *zap.Logger) *AuthService {
	return &AuthService{users: users, tokens: tokens, bcryptCost: bcryptCost, log: log}
}

type SignupInput struct {
	FirstName       string `json:"firstName" validate:"required,max=50"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthUser is the account block returned with a token.
type AuthUser struct {
	ID           primitive.ObjectID `json:"id"`
	FirstName    string             `json:"firstName"`
	Email        string             `json:"email"`
	ProfileImage string             `json:"profileImage,omitempty"`
	ProfilePhoto string             `json:"profilePhoto,omitempty"`
}

type AuthResult struct {
	User  AuthUser `json:"user"`
	Token string   `json:"token"`
}

func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*AuthResult, error) {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.Email = utils.NormalizeEmail(in.Email)

	if in.Password != in.ConfirmPassword {
		return nil, &utils.ValidationError{Field: "confirmPassword", Message: "Passwords do not match"}
	}
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	_, err := s.users.FindByEmail(ctx, in.Email)
	if err == nil {
		return nil, &utils.ConflictError{Message: "User already exists"}
	}
	var nf *utils.NotFoundError
	if !errors.As(err, &nf) {
		return nil, err
	}

	hash, err := utils.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	u := &models.User{
		ID:        primitive.NewObjectID(),
		CreatedAt: now,
		UpdatedAt: now,
		FirstName: in.FirstName,
		Email:     in.Email,
		Password:  hash,
		Bio:       models.DefaultBio,
		Following: []primitive.ObjectID{},
		Followers: []primitive.ObjectID{},
	}
	// The unique email index turns a concurrent duplicate into a ConflictError here.
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	s.log.Info("user signed up", zap.String("user_id", u.ID.Hex()))
	return s.issue(u)
}

func (s *AuthService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	u, err := s.users.FindByEmail(ctx, in.Email)
	if err != nil {
		var nf *utils.NotFoundError
		if errors.As(err, &nf) {
			return nil, &utils.AuthError{Message: msgInvalidCredentials}
		}
		return nil, err
	}

	ok, err := utils.VerifyPassword(in.Password, u.Password)
	if err != nil {
		s.log.Warn("stored password hash unreadable", zap.String("user_id", u.ID.Hex()), zap.Error(err))
		return nil, &utils.AuthError{Message: msgInvalidCredentials}
	}
	if !ok {
		return nil, &utils.AuthError{Message: msgInvalidCredentials}
	}
	return s.issue(u)
}

// Resolve maps a bearer token to the user it was issued for.
func (s *AuthService) Resolve(ctx context.Context, tokenStr string) (*models.User, error) {
	claims, err := s.tokens.Parse(tokenStr)
	if err != nil {
		return nil, &utils.AuthError{Message: msgPleaseAuthenticate}
	}
	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return nil, &utils.AuthError{Message: msgPleaseAuthenticate}
	}
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		var nf *utils.NotFoundError
		if errors.As(err, &nf) {
			return nil, &utils.AuthError{Message: msgPleaseAuthenticate}
		}
		return nil, err
	}
	return u, nil
}

func (s *AuthService) issue(u *models.User) (*AuthResult, error) {
	tok, err := s.tokens.Sign(u.ID.Hex())
	if err != nil {
		return nil, err
	}
	return &AuthResult{
		User: AuthUser{
			ID:           u.ID,
			FirstName:    u.FirstName,
			Email:        u.Email,
			ProfileImage: u.ProfileImage,
			ProfilePhoto: u.ProfilePhoto,
		},
		Token: tok,
	}, nil
}
