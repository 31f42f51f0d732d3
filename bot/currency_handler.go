package bot

import (
	"context"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"coffer/bot/common"

	"github.com/bwmarrin/discordgo"
)

func (b *Bot) handleCurrencyCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	options := i.ApplicationCommandData().Options
	if len(options) == 0 {
		b.respondWithError(s, i, "No subcommand provided.")
		return
	}

	switch options[0].Name {
	case "create":
		b.handleCurrencyCreate(s, i, options[0].Options)
	case "delete":
		b.handleCurrencyDelete(s, i, options[0].Options)
	case "list":
		b.handleCurrencyList(s, i)
	}
}

func (b *Bot) handleCurrencyCreate(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	ctx := context.Background()

	guildID, _, err := interactionGuildAndUser(i)
	if err != nil {
		log.Errorf("Error parsing interaction ids: %v", err)
		b.respondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	var name, symbol string
	for _, opt := range options {
		switch opt.Name {
		case "name":
			name = strings.TrimSpace(opt.StringValue())
		case "symbol":
			symbol = strings.TrimSpace(opt.StringValue())
		}
	}

	currency, err := b.currencyService.CreateCurrency(ctx, guildID, name, symbol)
	if err != nil {
		b.respondWithDomainError(s, i, err, "Unable to create currency. Please try again.")
		return
	}

	if err := common.RespondWithSuccess(s, i, fmt.Sprintf("Created currency **%s** (%s)", currency.Name, currency.Symbol), false); err != nil {
		log.Errorf("Error responding to currency create: %v", err)
	}
}

func (b *Bot) handleCurrencyDelete(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	ctx := context.Background()

	guildID, _, err := interactionGuildAndUser(i)
	if err != nil {
		log.Errorf("Error parsing interaction ids: %v", err)
		b.respondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	var name string
	for _, opt := range options {
		if opt.Name == "name" {
			name = strings.TrimSpace(opt.StringValue())
		}
	}

	if err := b.currencyService.DeleteCurrency(ctx, guildID, name); err != nil {
		b.respondWithDomainError(s, i, err, "Unable to delete currency. Please try again.")
		return
	}

	if err := common.RespondWithSuccess(s, i, fmt.Sprintf("Deleted currency **%s**", name), false); err != nil {
		log.Errorf("Error responding to currency delete: %v", err)
	}
}

func (b *Bot) handleCurrencyList(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	guildID, _, err := interactionGuildAndUser(i)
	if err != nil {
		log.Errorf("Error parsing interaction ids: %v", err)
		b.respondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	currencies, err := b.currencyService.ListCurrencies(ctx, guildID)
	if err != nil {
		b.respondWithDomainError(s, i, err, "Unable to list currencies. Please try again.")
		return
	}

	if len(currencies) == 0 {
		b.respondWithError(s, i, "This server has no currencies yet.")
		return
	}

	var lines []string
	for _, currency := range currencies {
		lines = append(lines, fmt.Sprintf("• **%s** (%s)", currency.Name, currency.Symbol))
	}

	embed := &discordgo.MessageEmbed{
		Title:       "Currencies",
		Description: strings.Join(lines, "\n"),
		Color:       0xF1C40F,
	}

	if err := common.RespondWithEmbed(s, i, embed, false); err != nil {
		log.Errorf("Error responding to currency list: %v", err)
	}
}
