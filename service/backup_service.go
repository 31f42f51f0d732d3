package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"coffer/models"
)

// languageSeparator joins a character's language list into one CSV cell.
// Pipe is not a valid language name character, so the join is unambiguous.
const languageSeparator = "|"

var (
	currencyHeader  = []string{"name", "symbol"}
	characterHeader = []string{"user_id", "name", "level", "class", "race", "alignment", "rank", "languages", "image_url", "n20_url", "created_at"}
	balanceHeader   = []string{"user_id", "currency", "balance"}
)

// backupService implements the BackupService interface
type backupService struct {
	uowFactory UnitOfWorkFactory
}

// NewBackupService creates a new backup service
func NewBackupService(uowFactory UnitOfWorkFactory) BackupService {
	return &backupService{
		uowFactory: uowFactory,
	}
}

// Export serializes the guild's currencies, characters and balances to CSV
func (s *backupService) Export(ctx context.Context, guildID int64) (*GuildExport, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	currencies, err := uow.CurrencyRepository().List(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to list currencies: %w", err)
	}
	characters, err := uow.CharacterRepository().ListByGuild(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to list characters: %w", err)
	}

	export := &GuildExport{}

	export.Currencies, err = writeCSV(currencyHeader, len(currencies), func(i int) []string {
		return []string{currencies[i].Name, currencies[i].Symbol}
	})
	if err != nil {
		return nil, err
	}

	export.Characters, err = writeCSV(characterHeader, len(characters), func(i int) []string {
		c := characters[i]
		return []string{
			strconv.FormatInt(c.UserID, 10),
			c.Name,
			strconv.Itoa(c.Level),
			c.Class,
			c.Race,
			c.Alignment,
			c.Rank,
			strings.Join(c.Languages, languageSeparator),
			derefOrEmpty(c.ImageURL),
			derefOrEmpty(c.N20URL),
			c.CreatedAt.UTC().Format(time.RFC3339),
		}
	})
	if err != nil {
		return nil, err
	}

	// Balance rows come straight off the wallets of everyone who appears in
	// the audit log or holds a character. Cheapest complete source is the
	// wallet table itself, one row per user and currency.
	balances, err := s.collectBalances(ctx, uow, guildID, currencies)
	if err != nil {
		return nil, err
	}
	export.Balances, err = writeCSV(balanceHeader, len(balances), func(i int) []string {
		return balances[i]
	})
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return export, nil
}

func (s *backupService) collectBalances(ctx context.Context, uow UnitOfWork, guildID int64, currencies []*models.Currency) ([][]string, error) {
	wallets, err := uow.WalletRepository().ListByGuild(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to list wallets: %w", err)
	}

	var rows [][]string
	for _, wallet := range wallets {
		for _, currency := range currencies {
			balance := wallet.Balance(currency.Name)
			if balance == 0 {
				continue
			}
			rows = append(rows, []string{
				strconv.FormatInt(wallet.UserID, 10),
				currency.Name,
				strconv.FormatInt(balance, 10),
			})
		}
	}
	return rows, nil
}

func writeCSV(header []string, n int, row func(i int) []string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("failed to write csv header: %w", err)
	}
	for i := 0; i < n; i++ {
		if err := w.Write(row(i)); err != nil {
			return nil, fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

func derefOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// readCSV parses the upload and strips a header row if one is present.
// Record lengths are validated per row by the caller so one bad line does
// not sink the whole import.
func readCSV(data []byte, header []string) ([][]string, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv: %w", err)
	}

	if len(records) > 0 && len(records[0]) > 0 && strings.EqualFold(records[0][0], header[0]) {
		records = records[1:]
	}
	return records, nil
}

// ImportCurrencies loads currency rows; returns the imported count and
// per-row error descriptions
func (s *backupService) ImportCurrencies(ctx context.Context, guildID int64, data []byte) (int, []string, error) {
	records, err := readCSV(data, currencyHeader)
	if err != nil {
		return 0, nil, err
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	var imported int
	var rowErrors []string
	for i, record := range records {
		if len(record) < 2 || record[0] == "" || record[1] == "" {
			rowErrors = append(rowErrors, fmt.Sprintf("row %d: expected name,symbol", i+1))
			continue
		}

		existing, err := uow.CurrencyRepository().GetByName(ctx, guildID, record[0])
		if err != nil {
			return 0, nil, fmt.Errorf("failed to get currency: %w", err)
		}
		if existing != nil {
			rowErrors = append(rowErrors, fmt.Sprintf("row %d: currency %q already exists", i+1, record[0]))
			continue
		}

		if _, err := uow.CurrencyRepository().Create(ctx, guildID, record[0], record[1]); err != nil {
			return 0, nil, err
		}
		imported++
	}

	if err := uow.Commit(); err != nil {
		return 0, nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return imported, rowErrors, nil
}

// ImportCharacters loads character rows
func (s *backupService) ImportCharacters(ctx context.Context, guildID int64, data []byte) (int, []string, error) {
	records, err := readCSV(data, characterHeader)
	if err != nil {
		return 0, nil, err
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	var imported int
	var rowErrors []string
	for i, record := range records {
		character, rowErr := parseCharacterRecord(guildID, record)
		if rowErr != "" {
			rowErrors = append(rowErrors, fmt.Sprintf("row %d: %s", i+1, rowErr))
			continue
		}

		if err := uow.CharacterRepository().Create(ctx, character); err != nil {
			return 0, nil, err
		}
		imported++
	}

	if err := uow.Commit(); err != nil {
		return 0, nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return imported, rowErrors, nil
}

func parseCharacterRecord(guildID int64, record []string) (*models.Character, string) {
	if len(record) < 8 {
		return nil, "expected at least user_id,name,level,class,race,alignment,rank,languages"
	}

	userID, err := strconv.ParseInt(record[0], 10, 64)
	if err != nil {
		return nil, fmt.Sprintf("invalid user_id %q", record[0])
	}
	if record[1] == "" {
		return nil, "character name must not be empty"
	}
	level, err := strconv.Atoi(record[2])
	if err != nil || level < MinCharacterLevel || level > MaxCharacterLevel {
		return nil, fmt.Sprintf("invalid level %q", record[2])
	}

	rank := record[6]
	if rank == "" {
		rank = models.DefaultRank
	}

	var languages []string
	if record[7] != "" {
		languages = strings.Split(record[7], languageSeparator)
	}

	character := &models.Character{
		GuildID:   guildID,
		UserID:    userID,
		Name:      record[1],
		Level:     level,
		Class:     record[3],
		Race:      record[4],
		Alignment: record[5],
		Rank:      rank,
		Languages: languages,
	}
	if len(record) > 8 && record[8] != "" {
		character.ImageURL = &record[8]
	}
	if len(record) > 9 && record[9] != "" {
		character.N20URL = &record[9]
	}
	return character, ""
}

// ImportBalances loads balance rows, replacing each user's wallet wholesale
func (s *backupService) ImportBalances(ctx context.Context, guildID int64, data []byte) (int, []string, error) {
	records, err := readCSV(data, balanceHeader)
	if err != nil {
		return 0, nil, err
	}

	// Rows are grouped per user first so one user's wallet is replaced in a
	// single pass rather than clobbered row by row
	perUser := make(map[int64]map[string]int64)
	var order []int64
	var rowErrors []string
	var imported int

	for i, record := range records {
		if len(record) < 3 {
			rowErrors = append(rowErrors, fmt.Sprintf("row %d: expected user_id,currency,balance", i+1))
			continue
		}
		userID, err := strconv.ParseInt(record[0], 10, 64)
		if err != nil {
			rowErrors = append(rowErrors, fmt.Sprintf("row %d: invalid user_id %q", i+1, record[0]))
			continue
		}
		if record[1] == "" {
			rowErrors = append(rowErrors, fmt.Sprintf("row %d: currency must not be empty", i+1))
			continue
		}
		balance, err := strconv.ParseInt(record[2], 10, 64)
		if err != nil || balance < 0 {
			rowErrors = append(rowErrors, fmt.Sprintf("row %d: invalid balance %q", i+1, record[2]))
			continue
		}

		if _, ok := perUser[userID]; !ok {
			perUser[userID] = make(map[string]int64)
			order = append(order, userID)
		}
		perUser[userID][record[1]] = balance
		imported++
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	for _, userID := range order {
		wallet, err := getOrCreateWallet(ctx, uow.WalletRepository(), guildID, userID)
		if err != nil {
			return 0, nil, err
		}
		if err := uow.WalletRepository().ReplaceBalances(ctx, wallet.ID, perUser[userID]); err != nil {
			return 0, nil, err
		}
	}

	if err := uow.Commit(); err != nil {
		return 0, nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return imported, rowErrors, nil
}
