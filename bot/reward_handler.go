package bot

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"coffer/bot/common"

	"github.com/bwmarrin/discordgo"
)

func (b *Bot) handleWork(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	guildID, userID, err := interactionGuildAndUser(i)
	if err != nil {
		log.Errorf("Error parsing interaction ids: %v", err)
		b.respondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	result, err := b.rewardService.Work(ctx, guildID, userID)
	if err != nil {
		b.respondWithDomainError(s, i, err, "Unable to process work. Please try again.")
		return
	}

	displayName := GetDisplayName(s, i.GuildID, i.Member.User.ID)
	message := fmt.Sprintf("💼 **%s** worked hard and earned **%s**! New balance: **%s**",
		displayName,
		common.FormatCurrencyAmount(result.Amount, result.Currency),
		common.FormatCurrencyAmount(result.NewBalance, result.Currency))

	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: message,
		},
	})
	if err != nil {
		log.Errorf("Error responding to work command: %v", err)
	}
}

func (b *Bot) handleSteal(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	guildID, actorID, err := interactionGuildAndUser(i)
	if err != nil {
		log.Errorf("Error parsing interaction ids: %v", err)
		b.respondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	var victim *discordgo.User
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == "user" {
			victim = opt.UserValue(s)
		}
	}
	if victim == nil {
		b.respondWithError(s, i, "Invalid victim user.")
		return
	}

	victimID, err := parseSnowflake(victim.ID)
	if err != nil {
		b.respondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	result, err := b.rewardService.Steal(ctx, guildID, actorID, victimID)
	if err != nil {
		b.respondWithDomainError(s, i, err, "Unable to process steal. Please try again.")
		return
	}

	actorName := GetDisplayName(s, i.GuildID, i.Member.User.ID)
	victimName := GetDisplayName(s, i.GuildID, victim.ID)
	message := fmt.Sprintf("🦝 **%s** stole **%s** from **%s**!",
		actorName,
		common.FormatCurrencyAmount(result.Amount, result.Currency),
		victimName)

	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: message,
		},
	})
	if err != nil {
		log.Errorf("Error responding to steal command: %v", err)
	}
}
