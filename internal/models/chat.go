package models

// ChatModel is a conversation: one-to-one when Group is empty, a named
// group otherwise. Participants keep the document-era shape of an id
// array, serialized in place.
type ChatModel struct {
	Base
	CreatedBy    string      `json:"created_by"            gorm:"index;not null"`
	Group        string      `json:"group,omitempty"`
	RoomID       string      `json:"room_id,omitempty"     gorm:"index"`
	GroupImage   string      `json:"group_image,omitempty"`
	Participants StringArray `json:"participants"          gorm:"type:longtext;serializer:json"`

	Messages []ChatMessageModel `json:"messages,omitempty" gorm:"foreignKey:ChatID"`
}

func (ChatModel) TableName() string { return "chats" }

// HasParticipant reports whether the account takes part in the chat.
func (c *ChatModel) HasParticipant(accountID string) bool {
	for _, id := range c.Participants {
		if id == accountID {
			return true
		}
	}
	return false
}

// ChatMessageModel is a single message inside a chat.
type ChatMessageModel struct {
	Base
	ChatID    string `json:"-"          gorm:"index;not null"`
	CreatedBy string `json:"created_by" gorm:"index;not null"`
	Content   string `json:"content"    gorm:"type:text;not null"`
}

func (ChatMessageModel) TableName() string { return "chat_messages" }

// StringArray is a JSON-serialized list of ids.
type StringArray []string
