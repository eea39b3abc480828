package app

import (
	"context"
	"fmt"

	cryptoDomain "github.com/allisson/tradejournal/internal/crypto/domain"
	cryptoService "github.com/allisson/tradejournal/internal/crypto/service"
)

// KMSService returns the KMS service.
func (c *Container) KMSService() cryptoService.KMSService {
	c.kmsServiceInit.Do(func() {
		c.kmsService = c.initKMSService()
	})
	return c.kmsService
}

// KeyRegistry returns the master key registry loaded from the registry file.
func (c *Container) KeyRegistry() (*cryptoDomain.MasterKeyRegistry, error) {
	var err error
	c.keyRegistryInit.Do(func() {
		c.keyRegistry, err = c.initKeyRegistry()
		if err != nil {
			c.initErrors["keyRegistry"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["keyRegistry"]; exists {
		return nil, storedErr
	}
	return c.keyRegistry, nil
}

// SecretCipher returns the cipher that protects stored credentials.
func (c *Container) SecretCipher() (cryptoService.SecretCipher, error) {
	var err error
	c.cipherInit.Do(func() {
		c.cipher, err = c.initSecretCipher()
		if err != nil {
			c.initErrors["cipher"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["cipher"]; exists {
		return nil, storedErr
	}
	return c.cipher, nil
}

// KMSKeeper opens the keeper configured by KMS_KEY_URI. Returns nil when no URI is set.
// The keeper is owned by the container and closed on Shutdown.
func (c *Container) KMSKeeper(ctx context.Context) (cryptoDomain.KMSKeeper, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.kmsKeeper != nil || c.config.KMSKeyURI == "" {
		return c.kmsKeeper, nil
	}

	keeper, err := c.KMSService().OpenKeeper(ctx, c.config.KMSKeyURI)
	if err != nil {
		return nil, fmt.Errorf("failed to open kms keeper: %w", err)
	}
	c.kmsKeeper = keeper
	return keeper, nil
}

// initKMSService creates the KMS service for unwrapping registry entries.
func (c *Container) initKMSService() cryptoService.KMSService {
	return cryptoService.NewKMSService()
}

// initKeyRegistry loads the registry with fail-fast validation.
func (c *Container) initKeyRegistry() (*cryptoDomain.MasterKeyRegistry, error) {
	ctx := context.Background()

	keeper, err := c.KMSKeeper(ctx)
	if err != nil {
		return nil, err
	}

	registry, err := cryptoDomain.LoadRegistry(ctx, c.config.KeyRegistryPath, keeper)
	if err != nil {
		return nil, fmt.Errorf("failed to load key registry: %w", err)
	}

	c.Logger().Info("key registry loaded",
		"active_key_id", registry.Active().ID,
		"key_count", len(registry.KeyIDs()),
	)
	return registry, nil
}

// initSecretCipher creates the registry aware cipher.
func (c *Container) initSecretCipher() (cryptoService.SecretCipher, error) {
	registry, err := c.KeyRegistry()
	if err != nil {
		return nil, fmt.Errorf("failed to get key registry for secret cipher: %w", err)
	}
	return cryptoService.NewSecretCipher(registry)
}
