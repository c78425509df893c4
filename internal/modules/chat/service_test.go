package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/circle-space/core/internal/config"
	"github.com/circle-space/core/internal/models"
	"github.com/circle-space/core/internal/pkg/storage"
	"go.uber.org/zap"
)

type fakeChats struct {
	friends  map[string]bool
	chats    []*models.ChatModel
	messages []*models.ChatMessageModel
}

func newFakeChats() *fakeChats {
	return &fakeChats{friends: map[string]bool{}}
}

func (f *fakeChats) befriend(a, b string) {
	f.friends[pairKey(a, b)] = true
}

func pairKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + "|" + b
}

func (f *fakeChats) AreFriends(a, b string) (bool, error) {
	return f.friends[pairKey(a, b)], nil
}

func (f *fakeChats) FindPrivateChat(a, b string) (*models.ChatModel, error) {
	for _, c := range f.chats {
		if c.Group == "" && c.HasParticipant(a) && c.HasParticipant(b) {
			return c, nil
		}
	}
	return nil, nil
}

func (f *fakeChats) FindGroupByID(id string) (*models.ChatModel, error) {
	for _, c := range f.chats {
		if c.Group != "" && c.ID == id {
			return c, nil
		}
	}
	return nil, nil
}

func (f *fakeChats) FindGroupByRoomID(roomID string) (*models.ChatModel, error) {
	for _, c := range f.chats {
		if c.Group != "" && c.RoomID == roomID {
			return c, nil
		}
	}
	return nil, nil
}

func (f *fakeChats) CreateChat(chat *models.ChatModel) error {
	if chat.ID == "" {
		chat.ID = fmt.Sprintf("chat-%d", len(f.chats)+1)
	}
	f.chats = append(f.chats, chat)
	return nil
}

func (f *fakeChats) UpdateGroupImage(chatID, key string) error {
	for _, c := range f.chats {
		if c.ID == chatID {
			c.GroupImage = key
		}
	}
	return nil
}

func (f *fakeChats) AppendMessage(msg *models.ChatMessageModel) error {
	f.messages = append(f.messages, msg)
	return nil
}

func disabledStorage() *storage.Client {
	st, _ := storage.New(config.S3Config{})
	return st
}

func account(id string) *models.AccountModel {
	a := &models.AccountModel{FirstName: id, LastName: "t"}
	a.ID = id
	return a
}

func TestSendPrivateMessageRequiresFriendship(t *testing.T) {
	f := newFakeChats()
	svc := NewService(f, disabledStorage(), zap.NewNop())

	if _, _, err := svc.SendPrivateMessage(account("u1"), "u2", "hey"); !errors.Is(err, errNotFriends) {
		t.Fatalf("got %v, want errNotFriends", err)
	}
	if len(f.messages) != 0 {
		t.Fatal("message persisted despite authorization failure")
	}
}

func TestSendPrivateMessageOpensChatOnFirstContact(t *testing.T) {
	f := newFakeChats()
	f.befriend("u1", "u2")
	svc := NewService(f, disabledStorage(), zap.NewNop())

	msg, chat, err := svc.SendPrivateMessage(account("u1"), "u2", "hey")
	if err != nil {
		t.Fatal(err)
	}
	if chat.Group != "" || !chat.HasParticipant("u1") || !chat.HasParticipant("u2") {
		t.Fatalf("unexpected chat %+v", chat)
	}
	if msg.ChatID != chat.ID || msg.CreatedBy != "u1" {
		t.Fatalf("unexpected message %+v", msg)
	}

	// Second message reuses the same conversation.
	_, again, err := svc.SendPrivateMessage(account("u2"), "u1", "hi back")
	if err != nil {
		t.Fatal(err)
	}
	if again.ID != chat.ID {
		t.Fatalf("second message opened a new chat %q, want %q", again.ID, chat.ID)
	}
	if len(f.chats) != 1 {
		t.Fatalf("%d chats created, want 1", len(f.chats))
	}
}

func TestSendPrivateMessageRejectsEmptyAndSelf(t *testing.T) {
	f := newFakeChats()
	f.befriend("u1", "u2")
	svc := NewService(f, disabledStorage(), zap.NewNop())

	if _, _, err := svc.SendPrivateMessage(account("u1"), "u2", "   "); !errors.Is(err, errEmptyMessage) {
		t.Fatalf("got %v, want errEmptyMessage", err)
	}
	if _, _, err := svc.SendPrivateMessage(account("u1"), "u1", "hey"); !errors.Is(err, errSelfChat) {
		t.Fatalf("got %v, want errSelfChat", err)
	}
}

func TestCreateGroupValidatesFriendships(t *testing.T) {
	f := newFakeChats()
	f.befriend("u1", "u2")
	svc := NewService(f, disabledStorage(), zap.NewNop())

	_, err := svc.CreateGroup(account("u1"), createGroupDTO{
		Name:         "Weekend Plans",
		Participants: []string{"u2", "u3"},
	})
	if !errors.Is(err, errParticipantWrong) {
		t.Fatalf("got %v, want errParticipantWrong", err)
	}

	f.befriend("u1", "u3")
	chat, err := svc.CreateGroup(account("u1"), createGroupDTO{
		Name:         "Weekend Plans",
		Participants: []string{"u2", "u3", "u2", "u1"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(chat.Participants) != 3 || chat.Participants[0] != "u1" {
		t.Fatalf("participants %v, want creator first and no duplicates", chat.Participants)
	}
	if !strings.HasPrefix(chat.RoomID, "weekend-plans_") {
		t.Fatalf("room id %q, want slug prefix", chat.RoomID)
	}
	if suffix := strings.TrimPrefix(chat.RoomID, "weekend-plans_"); len(suffix) != 36 {
		t.Fatalf("room id suffix %q is not a uuid", suffix)
	}
}

func TestCreateGroupNeedsEnoughParticipants(t *testing.T) {
	f := newFakeChats()
	f.befriend("u1", "u2")
	svc := NewService(f, disabledStorage(), zap.NewNop())

	_, err := svc.CreateGroup(account("u1"), createGroupDTO{
		Name:         "Tiny",
		Participants: []string{"u2", "u1", "u2"},
	})
	if !errors.Is(err, errGroupTooSmall) {
		t.Fatalf("got %v, want errGroupTooSmall", err)
	}
}

func TestGroupMessageRequiresParticipancy(t *testing.T) {
	f := newFakeChats()
	group := &models.ChatModel{
		CreatedBy:    "u1",
		Group:        "Team",
		RoomID:       "team_room-1",
		Participants: models.StringArray{"u1", "u2"},
	}
	group.ID = "chat-g"
	f.chats = append(f.chats, group)
	svc := NewService(f, disabledStorage(), zap.NewNop())

	if _, _, err := svc.SendGroupMessage(account("u3"), "team_room-1", "hey"); !errors.Is(err, errNotParticipant) {
		t.Fatalf("got %v, want errNotParticipant", err)
	}
	if _, _, err := svc.SendGroupMessage(account("u1"), "missing-room", "hey"); !errors.Is(err, errChatNotFound) {
		t.Fatalf("got %v, want errChatNotFound", err)
	}
	msg, chat, err := svc.SendGroupMessage(account("u2"), "team_room-1", "hey")
	if err != nil {
		t.Fatal(err)
	}
	if msg.ChatID != group.ID || chat.RoomID != group.RoomID {
		t.Fatalf("message landed in %q, want %q", msg.ChatID, group.ID)
	}
}

func TestCanJoinChecksParticipancy(t *testing.T) {
	f := newFakeChats()
	group := &models.ChatModel{
		CreatedBy:    "u1",
		Group:        "Team",
		RoomID:       "team_room-1",
		Participants: models.StringArray{"u1"},
	}
	group.ID = "chat-g"
	f.chats = append(f.chats, group)
	svc := NewService(f, disabledStorage(), zap.NewNop())

	if _, err := svc.CanJoin(account("u1"), "team_room-1"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.CanJoin(account("u2"), "team_room-1"); !errors.Is(err, errNotParticipant) {
		t.Fatalf("got %v, want errNotParticipant", err)
	}
}

func TestPrivateChatAccess(t *testing.T) {
	f := newFakeChats()
	f.befriend("u1", "u2")
	chat := &models.ChatModel{
		CreatedBy:    "u1",
		Participants: models.StringArray{"u1", "u2"},
	}
	chat.ID = "chat-1"
	f.chats = append(f.chats, chat)
	svc := NewService(f, disabledStorage(), zap.NewNop())

	got, err := svc.PrivateChat(account("u2"), "u1")
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != "chat-1" {
		t.Fatalf("chat %q, want chat-1", got.ID)
	}
	if _, err := svc.PrivateChat(account("u1"), "u3"); !errors.Is(err, errNotFriends) {
		t.Fatalf("got %v, want errNotFriends", err)
	}
	if _, err := svc.PrivateChat(account("u1"), "u1"); !errors.Is(err, errSelfChat) {
		t.Fatalf("got %v, want errSelfChat", err)
	}
}

func TestPresignGroupImageGuards(t *testing.T) {
	f := newFakeChats()
	group := &models.ChatModel{
		CreatedBy:    "u1",
		Group:        "Team",
		RoomID:       "team_room-1",
		Participants: models.StringArray{"u1", "u2"},
	}
	group.ID = "chat-g"
	f.chats = append(f.chats, group)
	svc := NewService(f, disabledStorage(), zap.NewNop())
	ctx := context.Background()

	if _, err := svc.PresignGroupImage(ctx, account("u1"), "chat-g", "text/html"); !errors.Is(err, errBadImageType) {
		t.Fatalf("got %v, want errBadImageType", err)
	}
	if _, err := svc.PresignGroupImage(ctx, account("u2"), "chat-g", "image/png"); !errors.Is(err, errNotGroupOwner) {
		t.Fatalf("got %v, want errNotGroupOwner", err)
	}
	// Owner passes the guards; storage is disabled in tests.
	if _, err := svc.PresignGroupImage(ctx, account("u1"), "chat-g", "image/png"); !errors.Is(err, storage.ErrDisabled) {
		t.Fatalf("got %v, want storage.ErrDisabled", err)
	}
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Weekend Plans":   "weekend-plans",
		"  Team -- 42  ":  "team-42",
		"!!!":             "",
		"Ops/On-Call 24x7": "ops-on-call-24x7",
	}
	for in, want := range cases {
		if got := slugify(in); got != want {
			t.Errorf("slugify(%q) = %q, want %q", in, got, want)
		}
	}
}
