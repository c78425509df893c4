package chat

import (
	"errors"

	"github.com/circle-space/core/internal/models"
	"gorm.io/gorm"
)

// Chats is the repository slice behind rooms and dispatch. Friendship
// lives in the friend_requests table: an accepted request in either
// direction makes two accounts friends.
type Chats interface {
	AreFriends(a, b string) (bool, error)
	// FindPrivateChat returns the one-to-one chat between two accounts,
	// (nil, nil) when they never talked.
	FindPrivateChat(a, b string) (*models.ChatModel, error)
	FindGroupByID(id string) (*models.ChatModel, error)
	FindGroupByRoomID(roomID string) (*models.ChatModel, error)
	CreateChat(chat *models.ChatModel) error
	UpdateGroupImage(chatID, key string) error
	AppendMessage(msg *models.ChatMessageModel) error
}

type gormChats struct{ db *gorm.DB }

func NewChats(db *gorm.DB) Chats { return &gormChats{db: db} }

func (c *gormChats) AreFriends(a, b string) (bool, error) {
	var count int64
	err := c.db.Model(&models.FriendRequestModel{}).
		Where("accepted_at IS NOT NULL").
		Where("(created_by = ? AND send_to = ?) OR (created_by = ? AND send_to = ?)", a, b, b, a).
		Count(&count).Error
	return count > 0, err
}

func (c *gormChats) FindPrivateChat(a, b string) (*models.ChatModel, error) {
	// Participants is a serialized id array; match on containment and
	// confirm in memory.
	var chats []models.ChatModel
	err := c.db.Preload("Messages", orderMessages).
		Where("`group` = ''").
		Where("participants LIKE ?", "%"+a+"%").
		Find(&chats).Error
	if err != nil {
		return nil, err
	}
	for i := range chats {
		if chats[i].HasParticipant(a) && chats[i].HasParticipant(b) {
			return &chats[i], nil
		}
	}
	return nil, nil
}

func (c *gormChats) FindGroupByID(id string) (*models.ChatModel, error) {
	return c.findGroup("id = ?", id)
}

func (c *gormChats) FindGroupByRoomID(roomID string) (*models.ChatModel, error) {
	return c.findGroup("room_id = ?", roomID)
}

func (c *gormChats) findGroup(cond string, arg interface{}) (*models.ChatModel, error) {
	var chat models.ChatModel
	err := c.db.Preload("Messages", orderMessages).
		Where("`group` <> ''").
		Where(cond, arg).
		First(&chat).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &chat, nil
}

func (c *gormChats) CreateChat(chat *models.ChatModel) error {
	return c.db.Create(chat).Error
}

func (c *gormChats) UpdateGroupImage(chatID, key string) error {
	return c.db.Model(&models.ChatModel{}).
		Where("id = ?", chatID).
		Update("group_image", key).Error
}

func (c *gormChats) AppendMessage(msg *models.ChatMessageModel) error {
	return c.db.Create(msg).Error
}

func orderMessages(db *gorm.DB) *gorm.DB {
	return db.Order("chat_messages.created_at ASC")
}
