package user

import "errors"

// Logout scopes.
const (
	LogoutOnly = "only"
	LogoutAll  = "all"
)

var (
	errUserNotFound        = errors.New("user not found")
	errBadLogoutFlag       = errors.New("logout flag must be 'only' or 'all'")
	errNotAllowed          = errors.New("not allowed")
	errAlreadyFrozen       = errors.New("account already frozen")
	errNotFrozen           = errors.New("account is not frozen")
	errRestoreSelf         = errors.New("a frozen account cannot restore itself")
	errRoleEscalation      = errors.New("cannot assign a role above your own")
	errRoleTargetTooHigh   = errors.New("cannot change the role of a peer or superior")
	errUnknownRole         = errors.New("unknown role")
	errSelfFriendRequest   = errors.New("cannot send a friend request to yourself")
	errFriendRequestExists = errors.New("a friend request already exists between these accounts")
	errRequestNotFound     = errors.New("friend request not found or already accepted")
	errBadImageType        = errors.New("unsupported image content type")
)

type changeRoleDTO struct {
	Role string `json:"role" binding:"required"`
}

type presignImageDTO struct {
	ContentType string `json:"contentType" binding:"required"`
}

type presignImageResponse struct {
	Key       string `json:"key"`
	UploadURL string `json:"uploadUrl"`
}

type profileResponse struct {
	ID           string `json:"id"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	FullName     string `json:"fullName"`
	Email        string `json:"email"`
	Phone        string `json:"phone,omitempty"`
	Gender       string `json:"gender,omitempty"`
	Role         string `json:"role"`
	Provider     string `json:"provider"`
	ProfileImage string `json:"profileImage,omitempty"`
	Confirmed    bool   `json:"confirmed"`
	Frozen       bool   `json:"frozen"`
}
