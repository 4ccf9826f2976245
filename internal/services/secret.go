package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"secret-friends-backend/internal/models"
	"secret-friends-backend/internal/policy"
	"secret-friends-backend/internal/repository"

	"github.com/google/uuid"
)

// SecretService handles secret message business logic
type SecretService struct {
	secretRepo SecretStore
}

// NewSecretService creates a new secret service
func NewSecretService(secretRepo SecretStore) *SecretService {
	return &SecretService{
		secretRepo: secretRepo,
	}
}

func normalizeContent(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", invalid("content must not be empty")
	}
	return content, nil
}

// CreateSecret stores a new secret for the owner. Earlier secrets are kept.
func (s *SecretService) CreateSecret(ctx context.Context, ownerID, content string) (*models.SecretMessage, error) {
	content, err := normalizeContent(content)
	if err != nil {
		return nil, err
	}

	secret := &models.SecretMessage{
		ID:        uuid.New().String(),
		OwnerID:   ownerID,
		Content:   content,
		UpdatedAt: time.Now().UTC(),
	}

	if err := s.secretRepo.Create(ctx, secret); err != nil {
		if errors.Is(err, repository.ErrReferenceMissing) {
			return nil, invalid("user %s is not registered", ownerID)
		}
		return nil, storeError("failed to create secret", err)
	}

	return secret, nil
}

// ListSecrets returns every secret of the owner
func (s *SecretService) ListSecrets(ctx context.Context, ownerID string) ([]*models.SecretMessage, error) {
	secrets, err := s.secretRepo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, storeError("failed to list secrets", err)
	}
	return secrets, nil
}

// ownedSecret loads the secret and hides it from anyone but the owner
func (s *SecretService) ownedSecret(ctx context.Context, secretID, actingUserID string) (*models.SecretMessage, error) {
	if secretID == "" {
		return nil, invalid("secret id is required")
	}

	secret, err := s.secretRepo.GetByID(ctx, secretID)
	if err != nil {
		return nil, storeError("failed to get secret", err)
	}
	if !policy.CanModifySecret(secret, actingUserID) {
		return nil, fmt.Errorf("secret %s: %w", secretID, ErrNotFound)
	}
	return secret, nil
}

// UpdateSecret replaces the content of a secret owned by actingUserID
func (s *SecretService) UpdateSecret(ctx context.Context, secretID, content, actingUserID string) (*models.SecretMessage, error) {
	content, err := normalizeContent(content)
	if err != nil {
		return nil, err
	}

	if _, err := s.ownedSecret(ctx, secretID, actingUserID); err != nil {
		return nil, err
	}

	// owner_id is matched again by the UPDATE itself
	secret, err := s.secretRepo.Update(ctx, secretID, actingUserID, content, time.Now().UTC())
	if err != nil {
		return nil, storeError("failed to update secret", err)
	}
	return secret, nil
}

// DeleteSecret removes a secret owned by actingUserID
func (s *SecretService) DeleteSecret(ctx context.Context, secretID, actingUserID string) (*models.SecretMessage, error) {
	if _, err := s.ownedSecret(ctx, secretID, actingUserID); err != nil {
		return nil, err
	}

	secret, err := s.secretRepo.Delete(ctx, secretID, actingUserID)
	if err != nil {
		return nil, storeError("failed to delete secret", err)
	}
	return secret, nil
}
