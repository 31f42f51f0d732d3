package bot

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"coffer/bot/common"

	"github.com/bwmarrin/discordgo"
)

func (b *Bot) handleSettingsCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	options := i.ApplicationCommandData().Options
	if len(options) == 0 {
		b.respondWithError(s, i, "No subcommand provided.")
		return
	}

	switch options[0].Name {
	case "logchannel":
		b.handleSetLogChannel(s, i, options[0].Options)
	}
}

func (b *Bot) handleSetLogChannel(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	ctx := context.Background()

	guildID, _, err := interactionGuildAndUser(i)
	if err != nil {
		log.Errorf("Error parsing interaction ids: %v", err)
		b.respondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	var channel *discordgo.Channel
	for _, opt := range options {
		if opt.Name == "channel" {
			channel = opt.ChannelValue(s)
		}
	}
	if channel == nil {
		b.respondWithError(s, i, "Invalid channel.")
		return
	}
	if channel.Type != discordgo.ChannelTypeGuildText {
		b.respondWithError(s, i, "The log channel must be a text channel.")
		return
	}

	channelID, err := parseSnowflake(channel.ID)
	if err != nil {
		b.respondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	if _, err := b.guildSettingsService.SetTransactionLogChannel(ctx, guildID, channelID); err != nil {
		b.respondWithDomainError(s, i, err, "Unable to update settings. Please try again.")
		return
	}

	if err := common.RespondWithSuccess(s, i, fmt.Sprintf("Transactions will be mirrored to <#%s>", channel.ID), false); err != nil {
		log.Errorf("Error responding to settings command: %v", err)
	}
}
