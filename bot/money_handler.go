package bot

import (
	"context"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"coffer/bot/common"

	"github.com/bwmarrin/discordgo"
)

func (b *Bot) handleMoneyCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	options := i.ApplicationCommandData().Options
	if len(options) == 0 {
		b.respondWithError(s, i, "No subcommand provided.")
		return
	}

	switch options[0].Name {
	case "balance":
		b.handleBalance(s, i, options[0].Options)
	case "send":
		b.handleSend(s, i, options[0].Options)
	case "deposit":
		b.handleDeposit(s, i, options[0].Options)
	case "deduct":
		b.handleDeduct(s, i, options[0].Options)
	case "log":
		b.handleTransactionLog(s, i, options[0].Options)
	}
}

func (b *Bot) handleBalance(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	ctx := context.Background()

	guildID, userID, err := interactionGuildAndUser(i)
	if err != nil {
		log.Errorf("Error parsing interaction ids: %v", err)
		b.respondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	targetID := userID
	targetDiscordID := i.Member.User.ID
	for _, opt := range options {
		if opt.Name == "user" {
			target := opt.UserValue(s)
			if target != nil {
				targetDiscordID = target.ID
				if targetID, err = parseSnowflake(target.ID); err != nil {
					b.respondWithError(s, i, "Unable to process request. Please try again.")
					return
				}
			}
		}
	}

	wallet, err := b.ledgerService.GetOrCreateWallet(ctx, guildID, targetID)
	if err != nil {
		b.respondWithDomainError(s, i, err, "Unable to retrieve balance. Please try again.")
		return
	}

	currencies, err := b.currencyService.ListCurrencies(ctx, guildID)
	if err != nil {
		b.respondWithDomainError(s, i, err, "Unable to retrieve balance. Please try again.")
		return
	}

	displayName := GetDisplayName(s, i.GuildID, targetDiscordID)

	var lines []string
	for _, currency := range currencies {
		lines = append(lines, fmt.Sprintf("**%s**: %s", currency.Name, common.FormatCurrencyAmount(wallet.Balance(currency.Name), currency)))
	}
	if len(lines) == 0 {
		lines = append(lines, "No currencies defined in this server.")
	}

	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("%s's wallet", displayName),
		Description: strings.Join(lines, "\n"),
		Color:       0x2ECC71,
	}

	if err := common.RespondWithEmbed(s, i, embed, false); err != nil {
		log.Errorf("Error responding to balance command: %v", err)
	}
}

func (b *Bot) handleSend(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	ctx := context.Background()

	guildID, fromUserID, err := interactionGuildAndUser(i)
	if err != nil {
		log.Errorf("Error parsing interaction ids: %v", err)
		b.respondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	var recipient *discordgo.User
	var currencyName string
	var amount int64
	for _, opt := range options {
		switch opt.Name {
		case "user":
			recipient = opt.UserValue(s)
		case "currency":
			currencyName = strings.TrimSpace(opt.StringValue())
		case "amount":
			amount = opt.IntValue()
		}
	}

	if recipient == nil {
		b.respondWithError(s, i, "Invalid recipient user.")
		return
	}
	if amount <= 0 {
		b.respondWithError(s, i, "Amount must be positive.")
		return
	}

	toUserID, err := parseSnowflake(recipient.ID)
	if err != nil {
		b.respondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	result, err := b.ledgerService.Transfer(ctx, guildID, fromUserID, toUserID, currencyName, amount)
	if err != nil {
		b.respondWithDomainError(s, i, err, "Unable to process transfer. Please try again.")
		return
	}

	senderName := GetDisplayName(s, i.GuildID, i.Member.User.ID)
	recipientName := GetDisplayName(s, i.GuildID, recipient.ID)
	message := fmt.Sprintf("**%s** sent **%s** to **%s**. Your balance: **%s**",
		senderName,
		common.FormatCurrencyAmount(result.Transaction.Amount, result.Currency),
		recipientName,
		common.FormatCurrencyAmount(result.NewBalance, result.Currency))

	if err := common.RespondWithSuccess(s, i, message, false); err != nil {
		log.Errorf("Error responding to send command: %v", err)
	}
}

func (b *Bot) handleDeposit(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	ctx := context.Background()

	guildID, adminUserID, err := interactionGuildAndUser(i)
	if err != nil {
		log.Errorf("Error parsing interaction ids: %v", err)
		b.respondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	var recipient *discordgo.User
	var currencyName string
	var amount int64
	for _, opt := range options {
		switch opt.Name {
		case "user":
			recipient = opt.UserValue(s)
		case "currency":
			currencyName = strings.TrimSpace(opt.StringValue())
		case "amount":
			amount = opt.IntValue()
		}
	}

	if recipient == nil {
		b.respondWithError(s, i, "Invalid recipient user.")
		return
	}
	if amount <= 0 {
		b.respondWithError(s, i, "Amount must be positive.")
		return
	}

	toUserID, err := parseSnowflake(recipient.ID)
	if err != nil {
		b.respondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	transaction, err := b.ledgerService.Deposit(ctx, guildID, adminUserID, toUserID, currencyName, amount)
	if err != nil {
		b.respondWithDomainError(s, i, err, "Unable to process deposit. Please try again.")
		return
	}

	recipientName := GetDisplayName(s, i.GuildID, recipient.ID)
	message := fmt.Sprintf("Granted **%s %s** to **%s**",
		common.FormatAmount(transaction.Amount), transaction.CurrencyName, recipientName)

	if err := common.RespondWithSuccess(s, i, message, false); err != nil {
		log.Errorf("Error responding to deposit command: %v", err)
	}
}

func (b *Bot) handleDeduct(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	ctx := context.Background()

	guildID, userID, err := interactionGuildAndUser(i)
	if err != nil {
		log.Errorf("Error parsing interaction ids: %v", err)
		b.respondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	var currencyName string
	var amount int64
	for _, opt := range options {
		switch opt.Name {
		case "currency":
			currencyName = strings.TrimSpace(opt.StringValue())
		case "amount":
			amount = opt.IntValue()
		}
	}

	if amount <= 0 {
		b.respondWithError(s, i, "Amount must be positive.")
		return
	}

	transaction, err := b.ledgerService.Deduct(ctx, guildID, userID, currencyName, amount)
	if err != nil {
		b.respondWithDomainError(s, i, err, "Unable to process deduction. Please try again.")
		return
	}

	message := fmt.Sprintf("Removed **%s %s** from your wallet",
		common.FormatAmount(transaction.Amount), transaction.CurrencyName)

	if err := common.RespondWithSuccess(s, i, message, false); err != nil {
		log.Errorf("Error responding to deduct command: %v", err)
	}
}

func (b *Bot) handleTransactionLog(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	ctx := context.Background()

	guildID, _, err := interactionGuildAndUser(i)
	if err != nil {
		log.Errorf("Error parsing interaction ids: %v", err)
		b.respondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	limit := 10
	for _, opt := range options {
		if opt.Name == "limit" {
			limit = int(opt.IntValue())
		}
	}
	if limit <= 0 || limit > 50 {
		limit = 10
	}

	transactions, err := b.ledgerService.ListTransactions(ctx, guildID, limit)
	if err != nil {
		b.respondWithDomainError(s, i, err, "Unable to retrieve the transaction log. Please try again.")
		return
	}

	if len(transactions) == 0 {
		b.respondWithError(s, i, "No transactions recorded yet.")
		return
	}

	var lines []string
	for _, tx := range transactions {
		lines = append(lines, common.FormatTransactionLine(tx))
	}

	embed := &discordgo.MessageEmbed{
		Title:       "Transaction log",
		Description: strings.Join(lines, "\n"),
		Color:       0x3498DB,
	}

	if err := common.RespondWithEmbed(s, i, embed, false); err != nil {
		log.Errorf("Error responding to log command: %v", err)
	}
}
