package notify

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/sjdodge123/Raid-Ledger-sub005/internal/reminder"
)

const embedColor = 0x5865F2

// DiscordSender DMs notifications to linked Discord accounts. DM creation
// and message sends are plain REST calls, so the session never opens a
// gateway connection.
type DiscordSender struct {
	session *discordgo.Session
}

// NewDiscordSender creates a sender from a bot token. Returns nil when the
// token is empty (Discord fan-out disabled).
func NewDiscordSender(token string) (*DiscordSender, error) {
	if token == "" {
		return nil, nil
	}
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	return &DiscordSender{session: session}, nil
}

// SendDM opens (or reuses) the DM channel with the user and sends the
// notification as an embed, linking back to the event's posted embed and
// voice channel when the payload carries them.
func (s *DiscordSender) SendDM(discordID, title, message string, payload reminder.Payload) error {
	ch, err := s.session.UserChannelCreate(discordID)
	if err != nil {
		return fmt.Errorf("create DM channel: %w", err)
	}

	embed := &discordgo.MessageEmbed{
		Title:       title,
		Description: message,
		Color:       embedColor,
	}
	if payload.CharacterDisplay != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   "Attending as",
			Value:  payload.CharacterDisplay,
			Inline: true,
		})
	}
	if payload.VoiceChannelID != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   "Voice",
			Value:  fmt.Sprintf("<#%s>", payload.VoiceChannelID),
			Inline: true,
		})
	}
	if payload.DiscordURL != "" {
		embed.URL = payload.DiscordURL
	}

	if _, err := s.session.ChannelMessageSendEmbed(ch.ID, embed); err != nil {
		return fmt.Errorf("send DM: %w", err)
	}
	return nil
}
