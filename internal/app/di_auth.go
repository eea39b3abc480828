package app

import (
	"fmt"

	authService "github.com/allisson/tradejournal/internal/auth/service"
)

// TokenService returns the service that verifies and issues bearer tokens.
func (c *Container) TokenService() (authService.TokenService, error) {
	var err error
	c.tokenServiceInit.Do(func() {
		c.tokenService, err = c.initTokenService()
		if err != nil {
			c.initErrors["tokenService"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["tokenService"]; exists {
		return nil, storedErr
	}
	return c.tokenService, nil
}

// initTokenService creates the HMAC token service from JWT_SECRET.
func (c *Container) initTokenService() (authService.TokenService, error) {
	service, err := authService.NewTokenService([]byte(c.config.JWTSecret), c.config.JWTIssuer)
	if err != nil {
		return nil, fmt.Errorf("failed to create token service: %w", err)
	}
	return service, nil
}
