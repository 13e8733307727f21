package models

import (
	"strconv"
	"time"
)

// MessageSender distinguishes the two sides of a conversation.
type MessageSender string

const (
	SenderUser  MessageSender = "user"
	SenderAgent MessageSender = "agent"
)

// ChatMessage is a single message inside a conversation. The id is derived
// from the send timestamp; agent messages are born read.
type ChatMessage struct {
	ID     string        `bson:"id" json:"id"`
	Sender MessageSender `bson:"sender" json:"sender"`
	Text   string        `bson:"text" json:"text"`
	Time   string        `bson:"time" json:"time"` // display string, HH:MM
	SentAt time.Time     `bson:"sent_at" json:"sent_at"`
	Read   bool          `bson:"read" json:"read"`
}

// NewChatMessage builds a message record the way the chat flow requires:
// timestamp-derived identifier, read only when the agent sent it.
func NewChatMessage(text string, sender MessageSender, now time.Time) ChatMessage {
	return ChatMessage{
		ID:     strconv.FormatInt(now.UnixMilli(), 10),
		Sender: sender,
		Text:   text,
		Time:   now.Format("15:04"),
		SentAt: now,
		Read:   sender == SenderAgent,
	}
}

// ConversationMeta is the denormalized participant header shown in the
// conversation list, upserted together with every saved message.
type ConversationMeta struct {
	UserName   string `bson:"user_name" json:"user_name"`
	UserAvatar string `bson:"user_avatar" json:"user_avatar"`
	UserRole   Role   `bson:"user_role" json:"user_role"`
}

// Conversation holds the message thread with one end user. Its identifier is
// the string form of that user's identifier, so there is exactly one
// conversation per distinct user.
type Conversation struct {
	ID               string        `bson:"_id" json:"id"`
	ConversationMeta `bson:",inline"`
	Messages         []ChatMessage `bson:"messages" json:"messages"`
	UnreadCount      int           `bson:"unread_count" json:"unread_count"`
	LastMessage      string        `bson:"last_message" json:"last_message"`
	LastMessageTime  time.Time     `bson:"last_message_time" json:"last_message_time"`
	UpdatedAt        time.Time     `bson:"updated_at" json:"updated_at"`
}
