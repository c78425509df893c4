package chat

import "errors"

var (
	errNotFriends       = errors.New("you can only message your friends")
	errChatNotFound     = errors.New("chat not found")
	errNotParticipant   = errors.New("you are not a participant of this room")
	errEmptyMessage     = errors.New("message content is required")
	errGroupTooSmall    = errors.New("a group needs at least two other participants")
	errParticipantWrong = errors.New("all participants must be your friends")
	errSelfChat         = errors.New("cannot open a chat with yourself")
	errNotGroupOwner    = errors.New("only the group creator can change its image")
	errBadImageType     = errors.New("unsupported image content type")
)

type createGroupDTO struct {
	Name         string   `json:"name" binding:"required,max=64"`
	Participants []string `json:"participants" binding:"required,min=2"`
}

type presignImageDTO struct {
	ContentType string `json:"contentType" binding:"required"`
}

type presignImageResponse struct {
	Key       string `json:"key"`
	UploadURL string `json:"uploadUrl"`
}

// Socket payloads.

type privateMessagePayload struct {
	SendTo  string `json:"sendTo"`
	Content string `json:"content"`
}

type groupMessagePayload struct {
	RoomID  string `json:"roomId"`
	Content string `json:"content"`
}

type joinRoomPayload struct {
	RoomID string `json:"roomId"`
}
