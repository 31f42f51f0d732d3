package bot

import (
	"context"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"coffer/bot/common"
	"coffer/models"
	"coffer/service"

	"github.com/bwmarrin/discordgo"
)

func (b *Bot) handleCharacterCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	options := i.ApplicationCommandData().Options
	if len(options) == 0 {
		b.respondWithError(s, i, "No subcommand provided.")
		return
	}

	switch options[0].Name {
	case "create":
		b.handleCharacterCreate(s, i, options[0].Options)
	case "view":
		b.handleCharacterView(s, i, options[0].Options)
	case "list":
		b.handleCharacterList(s, i, options[0].Options)
	case "update":
		b.handleCharacterUpdate(s, i, options[0].Options)
	case "delete":
		b.handleCharacterDelete(s, i, options[0].Options)
	}
}

func (b *Bot) handleCharacterCreate(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	ctx := context.Background()

	guildID, userID, err := interactionGuildAndUser(i)
	if err != nil {
		log.Errorf("Error parsing interaction ids: %v", err)
		b.respondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	input := service.CreateCharacterInput{
		GuildID: guildID,
		UserID:  userID,
	}
	for _, opt := range options {
		switch opt.Name {
		case "name":
			input.Name = strings.TrimSpace(opt.StringValue())
		case "level":
			input.Level = int(opt.IntValue())
		case "class":
			input.Class = strings.TrimSpace(opt.StringValue())
		case "race":
			input.Race = strings.TrimSpace(opt.StringValue())
		case "alignment":
			input.Alignment = strings.TrimSpace(opt.StringValue())
		case "rank":
			input.Rank = strings.TrimSpace(opt.StringValue())
		case "languages":
			for _, language := range strings.Split(opt.StringValue(), ",") {
				if trimmed := strings.TrimSpace(language); trimmed != "" {
					input.Languages = append(input.Languages, trimmed)
				}
			}
		case "image":
			url := strings.TrimSpace(opt.StringValue())
			if url != "" {
				input.ImageURL = &url
			}
		case "n20":
			url := strings.TrimSpace(opt.StringValue())
			if url != "" {
				input.N20URL = &url
			}
		}
	}

	character, err := b.characterService.CreateCharacter(ctx, input)
	if err != nil {
		b.respondWithDomainError(s, i, err, "Unable to create character. Please try again.")
		return
	}

	if err := common.RespondWithSuccess(s, i, fmt.Sprintf("Registered **%s**, level %d %s %s", character.Name, character.Level, character.Race, character.Class), false); err != nil {
		log.Errorf("Error responding to character create: %v", err)
	}
}

func (b *Bot) handleCharacterView(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	ctx := context.Background()

	guildID, userID, err := interactionGuildAndUser(i)
	if err != nil {
		log.Errorf("Error parsing interaction ids: %v", err)
		b.respondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	targetID := userID
	targetDiscordID := i.Member.User.ID
	var name string
	for _, opt := range options {
		switch opt.Name {
		case "user":
			target := opt.UserValue(s)
			if target != nil {
				targetDiscordID = target.ID
				if targetID, err = parseSnowflake(target.ID); err != nil {
					b.respondWithError(s, i, "Unable to process request. Please try again.")
					return
				}
			}
		case "name":
			name = strings.TrimSpace(opt.StringValue())
		}
	}

	var character *models.Character
	if name != "" {
		character, err = b.characterService.GetCharacterByName(ctx, guildID, targetID, name)
	} else {
		character, err = b.characterService.GetCharacter(ctx, guildID, targetID)
	}
	if err != nil {
		b.respondWithDomainError(s, i, err, "Unable to retrieve character. Please try again.")
		return
	}

	embed := characterEmbed(s, i.GuildID, targetDiscordID, character)
	if err := common.RespondWithEmbed(s, i, embed, false); err != nil {
		log.Errorf("Error responding to character view: %v", err)
	}
}

func characterEmbed(s *discordgo.Session, guildID, ownerDiscordID string, character *models.Character) *discordgo.MessageEmbed {
	ownerName := GetDisplayName(s, guildID, ownerDiscordID)

	fields := []*discordgo.MessageEmbedField{
		{Name: "Level", Value: fmt.Sprintf("%d", character.Level), Inline: true},
		{Name: "Class", Value: character.Class, Inline: true},
		{Name: "Race", Value: character.Race, Inline: true},
		{Name: "Alignment", Value: character.Alignment, Inline: true},
		{Name: "Rank", Value: character.Rank, Inline: true},
	}
	if len(character.Languages) > 0 {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:   "Languages",
			Value:  strings.Join(character.Languages, ", "),
			Inline: true,
		})
	}
	if character.N20URL != nil {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:  "Sheet",
			Value: *character.N20URL,
		})
	}

	embed := &discordgo.MessageEmbed{
		Title:  character.Name,
		Footer: &discordgo.MessageEmbedFooter{Text: "Played by " + ownerName},
		Fields: fields,
		Color:  0x9B59B6,
	}
	if character.ImageURL != nil {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: *character.ImageURL}
	}
	return embed
}

func (b *Bot) handleCharacterList(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	ctx := context.Background()

	guildID, _, err := interactionGuildAndUser(i)
	if err != nil {
		log.Errorf("Error parsing interaction ids: %v", err)
		b.respondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	var characters []*models.Character
	for _, opt := range options {
		if opt.Name == "user" {
			target := opt.UserValue(s)
			if target != nil {
				targetID, err := parseSnowflake(target.ID)
				if err != nil {
					b.respondWithError(s, i, "Unable to process request. Please try again.")
					return
				}
				characters, err = b.characterService.ListUserCharacters(ctx, guildID, targetID)
				if err != nil {
					b.respondWithDomainError(s, i, err, "Unable to list characters. Please try again.")
					return
				}
			}
		}
	}
	if characters == nil {
		characters, err = b.characterService.ListCharacters(ctx, guildID)
		if err != nil {
			b.respondWithDomainError(s, i, err, "Unable to list characters. Please try again.")
			return
		}
	}

	if len(characters) == 0 {
		b.respondWithError(s, i, "No characters registered yet.")
		return
	}

	var lines []string
	for _, character := range characters {
		lines = append(lines, fmt.Sprintf("• **%s** (lvl %d %s %s) by <@%d>",
			character.Name, character.Level, character.Race, character.Class, character.UserID))
	}

	embed := &discordgo.MessageEmbed{
		Title:       "Characters",
		Description: strings.Join(lines, "\n"),
		Color:       0x9B59B6,
	}

	if err := common.RespondWithEmbed(s, i, embed, false); err != nil {
		log.Errorf("Error responding to character list: %v", err)
	}
}

func (b *Bot) handleCharacterUpdate(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	ctx := context.Background()

	guildID, userID, err := interactionGuildAndUser(i)
	if err != nil {
		log.Errorf("Error parsing interaction ids: %v", err)
		b.respondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	var name string
	var level *int
	var rank *string
	for _, opt := range options {
		switch opt.Name {
		case "name":
			name = strings.TrimSpace(opt.StringValue())
		case "level":
			v := int(opt.IntValue())
			level = &v
		case "rank":
			v := strings.TrimSpace(opt.StringValue())
			rank = &v
		}
	}

	if level == nil && rank == nil {
		b.respondWithError(s, i, "Provide a new level or rank.")
		return
	}

	// Updates are scoped to the caller's own characters
	character, err := b.characterService.GetCharacterByName(ctx, guildID, userID, name)
	if err != nil {
		b.respondWithDomainError(s, i, err, "Unable to update character. Please try again.")
		return
	}

	updated, err := b.characterService.UpdateCharacter(ctx, character.ID, level, rank)
	if err != nil {
		b.respondWithDomainError(s, i, err, "Unable to update character. Please try again.")
		return
	}

	if err := common.RespondWithSuccess(s, i, fmt.Sprintf("**%s** is now level %d, rank %s", updated.Name, updated.Level, updated.Rank), false); err != nil {
		log.Errorf("Error responding to character update: %v", err)
	}
}

func (b *Bot) handleCharacterDelete(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	ctx := context.Background()

	guildID, userID, err := interactionGuildAndUser(i)
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

	character, err := b.characterService.GetCharacterByName(ctx, guildID, userID, name)
	if err != nil {
		b.respondWithDomainError(s, i, err, "Unable to delete character. Please try again.")
		return
	}

	if err := b.characterService.DeleteCharacter(ctx, character.ID); err != nil {
		b.respondWithDomainError(s, i, err, "Unable to delete character. Please try again.")
		return
	}

	if err := common.RespondWithSuccess(s, i, fmt.Sprintf("Deleted character **%s**", character.Name), false); err != nil {
		log.Errorf("Error responding to character delete: %v", err)
	}
}
