package user

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/circle-space/core/internal/config"
	"github.com/circle-space/core/internal/models"
	"github.com/circle-space/core/internal/pkg/storage"
	"github.com/circle-space/core/internal/pkg/token"
	jwtlib "github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

type fakeUsers struct {
	byID     map[string]*models.AccountModel
	requests map[string]*models.FriendRequestModel
	updates  []map[string]interface{}
}

func newFakeUsers(accounts ...*models.AccountModel) *fakeUsers {
	f := &fakeUsers{
		byID:     map[string]*models.AccountModel{},
		requests: map[string]*models.FriendRequestModel{},
	}
	for _, a := range accounts {
		f.byID[a.ID] = a
	}
	return f
}

func (f *fakeUsers) FindByID(id string) (*models.AccountModel, error) { return f.byID[id], nil }

func (f *fakeUsers) Updates(accountID string, fields map[string]interface{}) error {
	f.updates = append(f.updates, fields)
	a := f.byID[accountID]
	if a == nil {
		return nil
	}
	if v, ok := fields["role"]; ok {
		a.Role = v.(string)
	}
	if v, ok := fields["change_credentials_at"]; ok {
		t := v.(time.Time)
		a.ChangeCredentialsAt = &t
	}
	if v, ok := fields["profile_image"]; ok {
		a.ProfileImage = v.(string)
	}
	return nil
}

func (f *fakeUsers) Freeze(targetID, byID string, at time.Time) (bool, error) {
	a := f.byID[targetID]
	if a == nil || a.FreezedAt != nil {
		return false, nil
	}
	a.FreezedAt = &at
	a.FreezedBy = byID
	a.ChangeCredentialsAt = &at
	return true, nil
}

func (f *fakeUsers) Restore(targetID, byID string, at time.Time) (bool, error) {
	a := f.byID[targetID]
	if a == nil || a.FreezedAt == nil {
		return false, nil
	}
	a.FreezedAt = nil
	a.FreezedBy = ""
	a.RestoredAt = &at
	a.RestoredBy = byID
	return true, nil
}

func (f *fakeUsers) FindFriendRequest(a, b string) (*models.FriendRequestModel, error) {
	for _, r := range f.requests {
		if (r.CreatedBy == a && r.SendTo == b) || (r.CreatedBy == b && r.SendTo == a) {
			return r, nil
		}
	}
	return nil, nil
}

func (f *fakeUsers) CreateFriendRequest(req *models.FriendRequestModel) error {
	if req.ID == "" {
		req.ID = "req-" + req.CreatedBy + "-" + req.SendTo
	}
	f.requests[req.ID] = req
	return nil
}

func (f *fakeUsers) AcceptFriendRequest(requestID, recipientID string, at time.Time) (bool, error) {
	r := f.requests[requestID]
	if r == nil || r.SendTo != recipientID || r.AcceptedAt != nil {
		return false, nil
	}
	r.AcceptedAt = &at
	return true, nil
}

func (f *fakeUsers) PendingFriendRequests(accountID string) ([]models.FriendRequestModel, error) {
	var out []models.FriendRequestModel
	for _, r := range f.requests {
		if r.SendTo == accountID && r.AcceptedAt == nil {
			out = append(out, *r)
		}
	}
	return out, nil
}

type fakeTokenStore struct {
	revoked map[string]*models.RevokedTokenModel
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{revoked: map[string]*models.RevokedTokenModel{}}
}

func (f *fakeTokenStore) FindAccountByID(string) (*models.AccountModel, error) { return nil, nil }

func (f *fakeTokenStore) RevokedExists(jti string) (bool, error) {
	_, ok := f.revoked[jti]
	return ok, nil
}

func (f *fakeTokenStore) InsertRevoked(rec *models.RevokedTokenModel) error {
	f.revoked[rec.JTI] = rec
	return nil
}

func testService(users Users, tokens token.Store) *Service {
	sigs := token.NewSignatures(config.SecurityConfig{
		AccessUserSignature:    "access-user",
		RefreshUserSignature:   "refresh-user",
		AccessSystemSignature:  "access-system",
		RefreshSystemSignature: "refresh-system",
		AccessTokenTTL:         time.Minute,
		RefreshTokenTTL:        time.Hour,
	})
	st, _ := storage.New(config.S3Config{})
	return NewService(users, sigs, tokens, st, zap.NewNop())
}

func accountWithRole(id, role string) *models.AccountModel {
	a := &models.AccountModel{Role: role, Email: id + "@x.y"}
	a.ID = id
	return a
}

func claimsFor(a *models.AccountModel, jti string) *token.Claims {
	return &token.Claims{
		AccountID: a.ID,
		RegisteredClaims: jwtlib.RegisteredClaims{
			ID:        jti,
			IssuedAt:  jwtlib.NewNumericDate(time.Now()),
			ExpiresAt: jwtlib.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

func TestLogoutOnlyRevokesPresentedPair(t *testing.T) {
	a := accountWithRole("u1", models.RoleUser)
	tokens := newFakeTokenStore()
	svc := testService(newFakeUsers(a), tokens)

	if err := svc.Logout(a, claimsFor(a, "jti-1"), LogoutOnly); err != nil {
		t.Fatal(err)
	}
	if _, ok := tokens.revoked["jti-1"]; !ok {
		t.Fatal("presented jti not in the ledger")
	}
	if a.ChangeCredentialsAt != nil {
		t.Fatal("single-pair logout must not invalidate other sessions")
	}
}

func TestLogoutAllStampsCredentialChange(t *testing.T) {
	a := accountWithRole("u1", models.RoleUser)
	tokens := newFakeTokenStore()
	svc := testService(newFakeUsers(a), tokens)

	if err := svc.Logout(a, claimsFor(a, "jti-1"), LogoutAll); err != nil {
		t.Fatal(err)
	}
	if a.ChangeCredentialsAt == nil {
		t.Fatal("change_credentials_at not stamped")
	}
	if len(tokens.revoked) != 0 {
		t.Fatal("logout-all should not touch the ledger")
	}
}

func TestLogoutRejectsUnknownFlag(t *testing.T) {
	a := accountWithRole("u1", models.RoleUser)
	svc := testService(newFakeUsers(a), newFakeTokenStore())

	if err := svc.Logout(a, claimsFor(a, "jti-1"), "some"); !errors.Is(err, errBadLogoutFlag) {
		t.Fatalf("got %v, want errBadLogoutFlag", err)
	}
}

func TestFreezeSelfAndConflict(t *testing.T) {
	a := accountWithRole("u1", models.RoleUser)
	svc := testService(newFakeUsers(a), newFakeTokenStore())

	if err := svc.Freeze(a, a.ID); err != nil {
		t.Fatal(err)
	}
	if a.FreezedAt == nil || a.ChangeCredentialsAt == nil {
		t.Fatal("freeze must stamp freezed_at and kill outstanding sessions")
	}
	if err := svc.Freeze(a, a.ID); !errors.Is(err, errAlreadyFrozen) {
		t.Fatalf("got %v, want errAlreadyFrozen", err)
	}
}

func TestFreezeRequiresOutranking(t *testing.T) {
	admin := accountWithRole("adm", models.RoleAdmin)
	peer := accountWithRole("adm2", models.RoleAdmin)
	user := accountWithRole("u1", models.RoleUser)
	svc := testService(newFakeUsers(admin, peer, user), newFakeTokenStore())

	if err := svc.Freeze(admin, user.ID); err != nil {
		t.Fatal(err)
	}
	if err := svc.Freeze(admin, peer.ID); !errors.Is(err, errNotAllowed) {
		t.Fatalf("got %v, want errNotAllowed for a peer admin", err)
	}
}

func TestRestore(t *testing.T) {
	admin := accountWithRole("adm", models.RoleAdmin)
	user := accountWithRole("u1", models.RoleUser)
	svc := testService(newFakeUsers(admin, user), newFakeTokenStore())

	if err := svc.Restore(admin, user.ID); !errors.Is(err, errNotFrozen) {
		t.Fatalf("got %v, want errNotFrozen", err)
	}
	if err := svc.Freeze(admin, user.ID); err != nil {
		t.Fatal(err)
	}
	if err := svc.Restore(user, user.ID); !errors.Is(err, errRestoreSelf) {
		t.Fatalf("got %v, want errRestoreSelf", err)
	}
	if err := svc.Restore(admin, user.ID); err != nil {
		t.Fatal(err)
	}
	if user.FreezedAt != nil || user.RestoredBy != admin.ID {
		t.Fatal("restore did not clear the freeze")
	}
}

func TestChangeRoleGuards(t *testing.T) {
	super := accountWithRole("sup", models.RoleSuperAdmin)
	admin := accountWithRole("adm", models.RoleAdmin)
	user := accountWithRole("u1", models.RoleUser)
	svc := testService(newFakeUsers(super, admin, user), newFakeTokenStore())

	if err := svc.ChangeRole(admin, user.ID, models.RoleSuperAdmin); !errors.Is(err, errRoleEscalation) {
		t.Fatalf("got %v, want errRoleEscalation", err)
	}
	if err := svc.ChangeRole(admin, super.ID, models.RoleUser); !errors.Is(err, errRoleTargetTooHigh) {
		t.Fatalf("got %v, want errRoleTargetTooHigh", err)
	}
	if err := svc.ChangeRole(super, user.ID, models.RoleAdmin); err != nil {
		t.Fatal(err)
	}
	if user.Role != models.RoleAdmin {
		t.Fatalf("role %q, want admin", user.Role)
	}
	if user.ChangeCredentialsAt == nil {
		t.Fatal("role change must invalidate outstanding tokens")
	}
}

func TestFriendRequestLifecycle(t *testing.T) {
	u1 := accountWithRole("u1", models.RoleUser)
	u2 := accountWithRole("u2", models.RoleUser)
	f := newFakeUsers(u1, u2)
	svc := testService(f, newFakeTokenStore())

	req, err := svc.SendFriendRequest(u1, u2.ID)
	if err != nil {
		t.Fatal(err)
	}
	// Duplicate in either direction is a conflict.
	if _, err := svc.SendFriendRequest(u1, u2.ID); !errors.Is(err, errFriendRequestExists) {
		t.Fatalf("got %v, want errFriendRequestExists", err)
	}
	if _, err := svc.SendFriendRequest(u2, u1.ID); !errors.Is(err, errFriendRequestExists) {
		t.Fatalf("got %v, want errFriendRequestExists (reverse)", err)
	}

	// Only the addressee can accept.
	if err := svc.AcceptFriendRequest(u1, req.ID); !errors.Is(err, errRequestNotFound) {
		t.Fatalf("got %v, want errRequestNotFound for sender accept", err)
	}
	if err := svc.AcceptFriendRequest(u2, req.ID); err != nil {
		t.Fatal(err)
	}
	if err := svc.AcceptFriendRequest(u2, req.ID); !errors.Is(err, errRequestNotFound) {
		t.Fatalf("got %v, want errRequestNotFound for double accept", err)
	}
}

func TestSendFriendRequestToSelf(t *testing.T) {
	u1 := accountWithRole("u1", models.RoleUser)
	svc := testService(newFakeUsers(u1), newFakeTokenStore())

	if _, err := svc.SendFriendRequest(u1, u1.ID); !errors.Is(err, errSelfFriendRequest) {
		t.Fatalf("got %v, want errSelfFriendRequest", err)
	}
}

func TestPresignRequiresStorage(t *testing.T) {
	u1 := accountWithRole("u1", models.RoleUser)
	svc := testService(newFakeUsers(u1), newFakeTokenStore())

	_, err := svc.PresignProfileImage(context.Background(), u1, "image/png")
	if !errors.Is(err, storage.ErrDisabled) {
		t.Fatalf("got %v, want storage.ErrDisabled", err)
	}
	if _, err := svc.PresignProfileImage(context.Background(), u1, "text/html"); !errors.Is(err, errBadImageType) {
		t.Fatalf("got %v, want errBadImageType", err)
	}
}
