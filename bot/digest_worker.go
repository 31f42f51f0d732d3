package bot

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"coffer/bot/common"
	"coffer/models"

	"github.com/robfig/cron/v3"
)

// StartDailyDigestWorker schedules a once-a-day summary of the last 24 hours
// of activity, posted to each guild's log channel. Returns a cleanup function
// that stops the scheduler gracefully.
func (b *Bot) StartDailyDigestWorker(digestHour int) func() {
	scheduler := cron.New(cron.WithLocation(time.UTC))

	spec := fmt.Sprintf("0 %d * * *", digestHour)
	if _, err := scheduler.AddFunc(spec, b.postDailyDigests); err != nil {
		log.Errorf("Error scheduling daily digest: %v", err)
		return func() {}
	}

	scheduler.Start()
	log.Infof("Daily digest worker started, runs at %02d:00 UTC", digestHour)

	return func() {
		ctx := scheduler.Stop()
		<-ctx.Done()
	}
}

func (b *Bot) postDailyDigests() {
	ctx := context.Background()
	since := time.Now().UTC().Add(-24 * time.Hour)

	for _, guild := range b.session.State.Guilds {
		guildID, err := parseSnowflake(guild.ID)
		if err != nil {
			log.Errorf("Error parsing guild ID %s: %v", guild.ID, err)
			continue
		}

		channelID, ok := b.logChannelFor(ctx, guildID)
		if !ok {
			continue
		}

		transactions, err := b.ledgerService.ListTransactionsSince(ctx, guildID, since)
		if err != nil {
			log.Errorf("Error listing transactions for guild %d digest: %v", guildID, err)
			continue
		}
		if len(transactions) == 0 {
			continue
		}

		message := buildDigestMessage(transactions)
		if _, err := b.session.ChannelMessageSend(channelID, message); err != nil {
			log.Errorf("Error posting daily digest for guild %d: %v", guildID, err)
		}
	}
}

// buildDigestMessage summarizes a day of transactions per currency and kind
func buildDigestMessage(transactions []*models.Transaction) string {
	volumeByCurrency := map[string]int64{}
	countByKind := map[models.TransactionKind]int{}
	for _, tx := range transactions {
		volumeByCurrency[tx.CurrencyName] += tx.Amount
		countByKind[tx.Kind]++
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📊 **Daily digest**: %d transaction(s) in the last 24 hours\n", len(transactions)))

	for _, kind := range []models.TransactionKind{
		models.TransactionKindTransfer,
		models.TransactionKindDeposit,
		models.TransactionKindDeduction,
		models.TransactionKindWork,
		models.TransactionKindSteal,
	} {
		if count := countByKind[kind]; count > 0 {
			sb.WriteString(fmt.Sprintf("• %s: %d\n", kind, count))
		}
	}

	names := make([]string, 0, len(volumeByCurrency))
	for currency := range volumeByCurrency {
		names = append(names, currency)
	}
	sort.Strings(names)

	sb.WriteString("Volume moved:\n")
	for _, currency := range names {
		sb.WriteString(fmt.Sprintf("• **%s**: %s\n", currency, common.FormatAmount(volumeByCurrency[currency])))
	}

	return sb.String()
}
