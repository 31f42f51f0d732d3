package bot

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"coffer/bot/common"

	"github.com/bwmarrin/discordgo"
)

// maxImportSize caps CSV uploads at 1 MiB
const maxImportSize = 1 << 20

func (b *Bot) handleBackupCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	options := i.ApplicationCommandData().Options
	if len(options) == 0 {
		b.respondWithError(s, i, "No subcommand provided.")
		return
	}

	switch options[0].Name {
	case "export":
		b.handleBackupExport(s, i)
	case "import":
		b.handleBackupImport(s, i, options[0].Options)
	}
}

func (b *Bot) handleBackupExport(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	guildID, _, err := interactionGuildAndUser(i)
	if err != nil {
		log.Errorf("Error parsing interaction ids: %v", err)
		b.respondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	// Export can take a moment on large guilds
	if err := common.DeferResponse(s, i, true); err != nil {
		log.Errorf("Error deferring backup export: %v", err)
		return
	}

	export, err := b.backupService.Export(ctx, guildID)
	if err != nil {
		log.Errorf("Error exporting guild %d: %v", guildID, err)
		b.followUpWithError(s, i, "Unable to export server data. Please try again.")
		return
	}

	stamp := time.Now().UTC().Format("2006-01-02")
	_, err = s.FollowupMessageCreate(i.Interaction, false, &discordgo.WebhookParams{
		Content: "📦 Server backup",
		Files: []*discordgo.File{
			{Name: fmt.Sprintf("currencies-%s.csv", stamp), ContentType: "text/csv", Reader: bytes.NewReader(export.Currencies)},
			{Name: fmt.Sprintf("characters-%s.csv", stamp), ContentType: "text/csv", Reader: bytes.NewReader(export.Characters)},
			{Name: fmt.Sprintf("balances-%s.csv", stamp), ContentType: "text/csv", Reader: bytes.NewReader(export.Balances)},
		},
		Flags: discordgo.MessageFlagsEphemeral,
	})
	if err != nil {
		log.Errorf("Error sending backup files: %v", err)
	}
}

func (b *Bot) handleBackupImport(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	ctx := context.Background()

	guildID, _, err := interactionGuildAndUser(i)
	if err != nil {
		log.Errorf("Error parsing interaction ids: %v", err)
		b.respondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	var dataset string
	var attachmentID string
	for _, opt := range options {
		switch opt.Name {
		case "dataset":
			dataset = opt.StringValue()
		case "file":
			attachmentID = opt.Value.(string)
		}
	}

	attachment, ok := i.ApplicationCommandData().Resolved.Attachments[attachmentID]
	if !ok {
		b.respondWithError(s, i, "Missing file attachment.")
		return
	}
	if attachment.Size > maxImportSize {
		b.respondWithError(s, i, "File is too large.")
		return
	}

	if err := common.DeferResponse(s, i, true); err != nil {
		log.Errorf("Error deferring backup import: %v", err)
		return
	}

	data, err := downloadAttachment(ctx, attachment.URL)
	if err != nil {
		log.Errorf("Error downloading attachment: %v", err)
		b.followUpWithError(s, i, "Unable to download the file. Please try again.")
		return
	}

	var imported int
	var rowErrors []string
	switch dataset {
	case "currencies":
		imported, rowErrors, err = b.backupService.ImportCurrencies(ctx, guildID, data)
	case "characters":
		imported, rowErrors, err = b.backupService.ImportCharacters(ctx, guildID, data)
	case "balances":
		imported, rowErrors, err = b.backupService.ImportBalances(ctx, guildID, data)
	default:
		b.followUpWithError(s, i, "Unknown dataset.")
		return
	}
	if err != nil {
		log.Errorf("Error importing %s for guild %d: %v", dataset, guildID, err)
		b.followUpWithError(s, i, "Unable to import the file. Please try again.")
		return
	}

	message := fmt.Sprintf("Imported **%d** %s row(s).", imported, dataset)
	if len(rowErrors) > 0 {
		shown := rowErrors
		if len(shown) > 10 {
			shown = shown[:10]
		}
		message += fmt.Sprintf("\n⚠️ %d row(s) skipped:\n%s", len(rowErrors), strings.Join(shown, "\n"))
	}
	common.FollowUpWithSuccess(s, i, message, true)
}

func (b *Bot) followUpWithError(s *discordgo.Session, i *discordgo.InteractionCreate, message string) {
	_, err := s.FollowupMessageCreate(i.Interaction, false, &discordgo.WebhookParams{
		Content: "❌ " + message,
		Flags:   discordgo.MessageFlagsEphemeral,
	})
	if err != nil {
		log.Errorf("Error sending follow-up error message: %v", err)
	}
}

func downloadAttachment(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch attachment: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d fetching attachment", resp.StatusCode)
	}

	return io.ReadAll(io.LimitReader(resp.Body, maxImportSize))
}
