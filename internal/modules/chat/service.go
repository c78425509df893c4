package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/circle-space/core/internal/models"
	"github.com/circle-space/core/internal/pkg/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service owns rooms and message dispatch decisions. Friendship gates
// direct messages; participancy gates rooms.
type Service struct {
	chats   Chats
	storage *storage.Client
	logger  *zap.Logger
}

func NewService(chats Chats, st *storage.Client, logger *zap.Logger) *Service {
	return &Service{chats: chats, storage: st, logger: logger}
}

// PrivateChat returns the one-to-one conversation with another account.
func (s *Service) PrivateChat(account *models.AccountModel, otherID string) (*models.ChatModel, error) {
	if account.ID == otherID {
		return nil, errSelfChat
	}
	friends, err := s.chats.AreFriends(account.ID, otherID)
	if err != nil {
		return nil, err
	}
	if !friends {
		return nil, errNotFriends
	}
	chat, err := s.chats.FindPrivateChat(account.ID, otherID)
	if err != nil {
		return nil, err
	}
	if chat == nil {
		return nil, errChatNotFound
	}
	return chat, nil
}

// GroupChat returns a group the account takes part in.
func (s *Service) GroupChat(account *models.AccountModel, id string) (*models.ChatModel, error) {
	chat, err := s.chats.FindGroupByID(id)
	if err != nil {
		return nil, err
	}
	if chat == nil {
		return nil, errChatNotFound
	}
	if !chat.HasParticipant(account.ID) {
		return nil, errNotParticipant
	}
	return chat, nil
}

// CreateGroup opens a named room. Every invited participant must be a
// friend of the creator; the creator joins implicitly.
func (s *Service) CreateGroup(account *models.AccountModel, dto createGroupDTO) (*models.ChatModel, error) {
	participants := dedupe(dto.Participants, account.ID)
	if len(participants) < 2 {
		return nil, errGroupTooSmall
	}
	for _, id := range participants {
		friends, err := s.chats.AreFriends(account.ID, id)
		if err != nil {
			return nil, err
		}
		if !friends {
			return nil, errParticipantWrong
		}
	}
	chat := &models.ChatModel{
		CreatedBy:    account.ID,
		Group:        dto.Name,
		RoomID:       slugify(dto.Name) + "_" + uuid.NewString(),
		Participants: append(models.StringArray{account.ID}, participants...),
	}
	if err := s.chats.CreateChat(chat); err != nil {
		return nil, err
	}
	return chat, nil
}

// PresignGroupImage hands the group creator an upload URL for the room
// image and stores the object key.
func (s *Service) PresignGroupImage(ctx context.Context, account *models.AccountModel, chatID, contentType string) (presignImageResponse, error) {
	ext, ok := storage.ImageExt(contentType)
	if !ok {
		return presignImageResponse{}, errBadImageType
	}
	chat, err := s.chats.FindGroupByID(chatID)
	if err != nil {
		return presignImageResponse{}, err
	}
	if chat == nil {
		return presignImageResponse{}, errChatNotFound
	}
	if chat.CreatedBy != account.ID {
		return presignImageResponse{}, errNotGroupOwner
	}
	key := fmt.Sprintf("groups/%s/%s.%s", chat.ID, uuid.NewString(), ext)
	url, err := s.storage.PresignUpload(ctx, key, contentType)
	if err != nil {
		return presignImageResponse{}, err
	}
	if err := s.chats.UpdateGroupImage(chat.ID, key); err != nil {
		return presignImageResponse{}, err
	}
	return presignImageResponse{Key: key, UploadURL: url}, nil
}

// SendPrivateMessage persists a direct message, opening the one-to-one
// chat on first contact. Only friends may message each other.
func (s *Service) SendPrivateMessage(from *models.AccountModel, toID, content string) (*models.ChatMessageModel, *models.ChatModel, error) {
	if strings.TrimSpace(content) == "" {
		return nil, nil, errEmptyMessage
	}
	if from.ID == toID {
		return nil, nil, errSelfChat
	}
	friends, err := s.chats.AreFriends(from.ID, toID)
	if err != nil {
		return nil, nil, err
	}
	if !friends {
		return nil, nil, errNotFriends
	}
	chat, err := s.chats.FindPrivateChat(from.ID, toID)
	if err != nil {
		return nil, nil, err
	}
	if chat == nil {
		chat = &models.ChatModel{
			CreatedBy:    from.ID,
			Participants: models.StringArray{from.ID, toID},
		}
		if err := s.chats.CreateChat(chat); err != nil {
			return nil, nil, err
		}
	}
	msg := &models.ChatMessageModel{ChatID: chat.ID, CreatedBy: from.ID, Content: content}
	if err := s.chats.AppendMessage(msg); err != nil {
		return nil, nil, err
	}
	return msg, chat, nil
}

// SendGroupMessage persists a message into a room the sender belongs to.
func (s *Service) SendGroupMessage(from *models.AccountModel, roomID, content string) (*models.ChatMessageModel, *models.ChatModel, error) {
	if strings.TrimSpace(content) == "" {
		return nil, nil, errEmptyMessage
	}
	chat, err := s.roomOf(from, roomID)
	if err != nil {
		return nil, nil, err
	}
	msg := &models.ChatMessageModel{ChatID: chat.ID, CreatedBy: from.ID, Content: content}
	if err := s.chats.AppendMessage(msg); err != nil {
		return nil, nil, err
	}
	return msg, chat, nil
}

// CanJoin authorizes a join_room request.
func (s *Service) CanJoin(account *models.AccountModel, roomID string) (*models.ChatModel, error) {
	return s.roomOf(account, roomID)
}

func (s *Service) roomOf(account *models.AccountModel, roomID string) (*models.ChatModel, error) {
	chat, err := s.chats.FindGroupByRoomID(roomID)
	if err != nil {
		return nil, err
	}
	if chat == nil {
		return nil, errChatNotFound
	}
	if !chat.HasParticipant(account.ID) {
		return nil, errNotParticipant
	}
	return chat, nil
}

// dedupe drops duplicates and the excluded id, keeping order.
func dedupe(ids []string, exclude string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || id == exclude {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// slugify turns a group name into the readable half of its room id.
func slugify(name string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
