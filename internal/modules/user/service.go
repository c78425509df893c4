package user

import (
	"context"
	"fmt"
	"time"

	"github.com/circle-space/core/internal/models"
	"github.com/circle-space/core/internal/pkg/storage"
	"github.com/circle-space/core/internal/pkg/token"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service implements session termination and account lifecycle operations.
type Service struct {
	users   Users
	sigs    *token.Signatures
	tokens  token.Store
	storage *storage.Client
	logger  *zap.Logger
	now     func() time.Time
}

func NewService(users Users, sigs *token.Signatures, tokens token.Store, st *storage.Client, logger *zap.Logger) *Service {
	return &Service{
		users:   users,
		sigs:    sigs,
		tokens:  tokens,
		storage: st,
		logger:  logger,
		now:     time.Now,
	}
}

// Profile shapes the account for the client. The password hash never
// leaves the model anyway; this narrows the rest.
func (s *Service) Profile(account *models.AccountModel) profileResponse {
	return profileResponse{
		ID:           account.ID,
		FirstName:    account.FirstName,
		LastName:     account.LastName,
		FullName:     account.FullName(),
		Email:        account.Email,
		Phone:        account.Phone,
		Gender:       account.Gender,
		Role:         account.Role,
		Provider:     account.Provider,
		ProfileImage: account.ProfileImage,
		Confirmed:    account.Confirmed(),
		Frozen:       account.FreezedAt != nil,
	}
}

// Logout terminates the presented pair ("only") or every outstanding
// pair ("all"). The write lands before the caller gets its response, so
// an acknowledged logout can never be resurrected.
func (s *Service) Logout(account *models.AccountModel, claims *token.Claims, flag string) error {
	switch flag {
	case "", LogoutOnly:
		_, err := s.sigs.CreateRevokeToken(s.tokens, claims)
		return err
	case LogoutAll:
		return s.users.Updates(account.ID, map[string]interface{}{
			"change_credentials_at": s.now(),
		})
	default:
		return errBadLogoutFlag
	}
}

// Freeze suspends an account. Owners may freeze themselves; otherwise the
// requester must outrank the target. Freezing stamps the credential
// invalidation time so every live session of the target dies with it.
func (s *Service) Freeze(requester *models.AccountModel, targetID string) error {
	target, err := s.users.FindByID(targetID)
	if err != nil {
		return err
	}
	if target == nil {
		return errUserNotFound
	}
	if requester.ID != target.ID &&
		models.RoleRank(requester.Role) <= models.RoleRank(target.Role) {
		return errNotAllowed
	}
	frozen, err := s.users.Freeze(target.ID, requester.ID, s.now())
	if err != nil {
		return err
	}
	if !frozen {
		return errAlreadyFrozen
	}
	return nil
}

// Restore lifts a freeze. Runs behind the admin guard; a frozen account
// cannot talk itself back in.
func (s *Service) Restore(requester *models.AccountModel, targetID string) error {
	if requester.ID == targetID {
		return errRestoreSelf
	}
	target, err := s.users.FindByID(targetID)
	if err != nil {
		return err
	}
	if target == nil {
		return errUserNotFound
	}
	restored, err := s.users.Restore(target.ID, requester.ID, s.now())
	if err != nil {
		return err
	}
	if !restored {
		return errNotFrozen
	}
	return nil
}

// ChangeRole reassigns the target's role. The requester must outrank the
// target and cannot hand out a role above their own tier.
func (s *Service) ChangeRole(requester *models.AccountModel, targetID, newRole string) error {
	switch newRole {
	case models.RoleUser, models.RoleAdmin, models.RoleSuperAdmin:
	default:
		return errUnknownRole
	}
	if models.RoleRank(newRole) > models.RoleRank(requester.Role) {
		return errRoleEscalation
	}
	target, err := s.users.FindByID(targetID)
	if err != nil {
		return err
	}
	if target == nil {
		return errUserNotFound
	}
	if models.RoleRank(target.Role) >= models.RoleRank(requester.Role) {
		return errRoleTargetTooHigh
	}
	if target.Role == newRole {
		return nil
	}
	// A role change flips the signature level, so outstanding tokens
	// signed at the old level must die.
	return s.users.Updates(target.ID, map[string]interface{}{
		"role":                  newRole,
		"change_credentials_at": s.now(),
	})
}

// SendFriendRequest records a pending request. One request per pair,
// regardless of direction.
func (s *Service) SendFriendRequest(requester *models.AccountModel, targetID string) (*models.FriendRequestModel, error) {
	if requester.ID == targetID {
		return nil, errSelfFriendRequest
	}
	target, err := s.users.FindByID(targetID)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, errUserNotFound
	}
	existing, err := s.users.FindFriendRequest(requester.ID, target.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, errFriendRequestExists
	}
	req := &models.FriendRequestModel{CreatedBy: requester.ID, SendTo: target.ID}
	if err := s.users.CreateFriendRequest(req); err != nil {
		return nil, err
	}
	return req, nil
}

// AcceptFriendRequest accepts a pending request addressed to the
// requester. The conditional update makes double accepts a no-op race
// loser, not a second friendship.
func (s *Service) AcceptFriendRequest(requester *models.AccountModel, requestID string) error {
	accepted, err := s.users.AcceptFriendRequest(requestID, requester.ID, s.now())
	if err != nil {
		return err
	}
	if !accepted {
		return errRequestNotFound
	}
	return nil
}

// PendingFriendRequests lists requests waiting on the account.
func (s *Service) PendingFriendRequests(account *models.AccountModel) ([]models.FriendRequestModel, error) {
	return s.users.PendingFriendRequests(account.ID)
}

// PresignProfileImage hands the client a short-lived upload URL and
// stores the object key as the account's profile image.
func (s *Service) PresignProfileImage(ctx context.Context, account *models.AccountModel, contentType string) (presignImageResponse, error) {
	ext, ok := storage.ImageExt(contentType)
	if !ok {
		return presignImageResponse{}, errBadImageType
	}
	key := fmt.Sprintf("profiles/%s/%s.%s", account.ID, uuid.NewString(), ext)
	url, err := s.storage.PresignUpload(ctx, key, contentType)
	if err != nil {
		return presignImageResponse{}, err
	}
	err = s.users.Updates(account.ID, map[string]interface{}{"profile_image": key})
	if err != nil {
		return presignImageResponse{}, err
	}
	return presignImageResponse{Key: key, UploadURL: url}, nil
}
