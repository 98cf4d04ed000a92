package main

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
)

const botReplyTimeout = 30 * time.Second

// Bot bridges Discord messages to the conversation engine
type Bot struct {
	session      *discordgo.Session
	conversation *ConversationEngine
}

// NewBot creates the Discord bridge. The token comes from config; an empty
// token disables the bot entirely.
func NewBot(token string, conversation *ConversationEngine) (*Bot, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, NewError(ErrorTypeInternal, "BOT_001", "failed to create Discord session", err)
	}

	bot := &Bot{
		session:      session,
		conversation: conversation,
	}

	session.AddHandler(bot.onMessageCreate)
	session.Identify.Intents = discordgo.IntentsGuildMessages | discordgo.IntentsDirectMessages | discordgo.IntentMessageContent

	return bot, nil
}

// Start opens the gateway connection
func (b *Bot) Start() error {
	if err := b.session.Open(); err != nil {
		return NewError(ErrorTypeInternal, "BOT_002", "failed to open Discord connection", err)
	}
	Logger().Info("Discord bot connected as %s", b.session.State.User.Username)
	return nil
}

// Stop closes the gateway connection
func (b *Bot) Stop() {
	if err := b.session.Close(); err != nil {
		Logger().Warning("Error closing Discord session: %v", err)
	}
}

// onMessageCreate routes messages addressed to the bot through the
// conversation engine
func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author.ID == s.State.User.ID || m.Author.Bot {
		return
	}

	text := strings.TrimSpace(b.stripMention(m.Content))
	if text == "" {
		return
	}

	// Only respond to DMs and explicit mentions in guild channels
	if m.GuildID != "" && !b.mentionsBot(m) {
		return
	}

	go func() {
		defer RecoverFromPanic("bot-message")

		ctx, cancel := context.WithTimeout(context.Background(), botReplyTimeout)
		defer cancel()

		turn, err := b.conversation.ProcessMessage(ctx, m.Author.ID, text)
		if err != nil {
			Logger().Error("Bot message handling failed: %v", err)
			return
		}

		reply := turn.Text
		if len(turn.Suggestions) > 0 {
			reply += "\n\n*You could also try: " + strings.Join(turn.Suggestions, " · ") + "*"
		}

		if _, err := s.ChannelMessageSendReply(m.ChannelID, reply, m.Reference()); err != nil {
			Logger().Warning("Failed to send Discord reply: %v", err)
		}
	}()
}

// mentionsBot reports whether the message mentions this bot
func (b *Bot) mentionsBot(m *discordgo.MessageCreate) bool {
	for _, user := range m.Mentions {
		if user.ID == b.session.State.User.ID {
			return true
		}
	}
	return false
}

// stripMention removes the bot's mention token from message content
func (b *Bot) stripMention(content string) string {
	if b.session.State.User == nil {
		return content
	}
	id := b.session.State.User.ID
	content = strings.ReplaceAll(content, "<@"+id+">", "")
	content = strings.ReplaceAll(content, "<@!"+id+">", "")
	return content
}
