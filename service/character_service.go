package service

import (
	"context"
	"fmt"

	"coffer/models"
)

// Character levels follow the usual tabletop band.
const (
	MinCharacterLevel = 1
	MaxCharacterLevel = 20
)

// characterService implements the CharacterService interface
type characterService struct {
	uowFactory UnitOfWorkFactory
}

// NewCharacterService creates a new character service
func NewCharacterService(uowFactory UnitOfWorkFactory) CharacterService {
	return &characterService{
		uowFactory: uowFactory,
	}
}

// CreateCharacter registers a new character sheet for a user
func (s *characterService) CreateCharacter(ctx context.Context, input CreateCharacterInput) (*models.Character, error) {
	if input.Name == "" {
		return nil, fmt.Errorf("character name must not be empty")
	}
	if input.Level < MinCharacterLevel || input.Level > MaxCharacterLevel {
		return nil, fmt.Errorf("character level must be between %d and %d, got %d", MinCharacterLevel, MaxCharacterLevel, input.Level)
	}

	rank := input.Rank
	if rank == "" {
		rank = models.DefaultRank
	}

	character := &models.Character{
		GuildID:   input.GuildID,
		UserID:    input.UserID,
		Name:      input.Name,
		Level:     input.Level,
		Class:     input.Class,
		Race:      input.Race,
		Alignment: input.Alignment,
		Rank:      rank,
		Languages: input.Languages,
		ImageURL:  input.ImageURL,
		N20URL:    input.N20URL,
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := uow.CharacterRepository().Create(ctx, character); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return character, nil
}

// GetCharacter returns a user's oldest character, failing with ErrCharacterNotFound
func (s *characterService) GetCharacter(ctx context.Context, guildID, userID int64) (*models.Character, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	character, err := uow.CharacterRepository().GetByUser(ctx, guildID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get character: %w", err)
	}
	if character == nil {
		return nil, fmt.Errorf("user %d in guild %d: %w", userID, guildID, ErrCharacterNotFound)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return character, nil
}

// GetCharacterByName returns a user's character by name, failing with ErrCharacterNotFound
func (s *characterService) GetCharacterByName(ctx context.Context, guildID, userID int64, name string) (*models.Character, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	character, err := uow.CharacterRepository().GetByUserAndName(ctx, guildID, userID, name)
	if err != nil {
		return nil, fmt.Errorf("failed to get character: %w", err)
	}
	if character == nil {
		return nil, fmt.Errorf("character %q for user %d: %w", name, userID, ErrCharacterNotFound)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return character, nil
}

// ListCharacters returns all characters in a guild, newest first
func (s *characterService) ListCharacters(ctx context.Context, guildID int64) ([]*models.Character, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	characters, err := uow.CharacterRepository().ListByGuild(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to list characters: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return characters, nil
}

// ListUserCharacters returns a user's characters in a guild, newest first
func (s *characterService) ListUserCharacters(ctx context.Context, guildID, userID int64) ([]*models.Character, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	characters, err := uow.CharacterRepository().ListByUser(ctx, guildID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list characters: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return characters, nil
}

// UpdateCharacter merges level and/or rank; nil leaves a field unchanged
func (s *characterService) UpdateCharacter(ctx context.Context, id int64, level *int, rank *string) (*models.Character, error) {
	if level == nil && rank == nil {
		return nil, fmt.Errorf("nothing to update for character %d", id)
	}
	if level != nil && (*level < MinCharacterLevel || *level > MaxCharacterLevel) {
		return nil, fmt.Errorf("character level must be between %d and %d, got %d", MinCharacterLevel, MaxCharacterLevel, *level)
	}
	if rank != nil && *rank == "" {
		return nil, fmt.Errorf("character rank must not be empty")
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	character, err := uow.CharacterRepository().Update(ctx, id, level, rank)
	if err != nil {
		return nil, err
	}
	if character == nil {
		return nil, fmt.Errorf("character %d: %w", id, ErrCharacterNotFound)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return character, nil
}

// DeleteCharacter removes a character, failing with ErrCharacterNotFound if absent
func (s *characterService) DeleteCharacter(ctx context.Context, id int64) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	deleted, err := uow.CharacterRepository().Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("character %d: %w", id, ErrCharacterNotFound)
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
