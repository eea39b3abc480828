// Package mocks provides mock implementations of the crypto service interfaces.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	cryptoDomain "github.com/allisson/tradejournal/internal/crypto/domain"
)

// MockSecretCipher is a mock implementation of SecretCipher.
type MockSecretCipher struct {
	mock.Mock
}

// Encrypt mocks the Encrypt method of SecretCipher.
func (m *MockSecretCipher) Encrypt(plaintext string) (cryptoDomain.EncryptedSecret, error) {
	args := m.Called(plaintext)
	return args.Get(0).(cryptoDomain.EncryptedSecret), args.Error(1)
}

// Decrypt mocks the Decrypt method of SecretCipher.
func (m *MockSecretCipher) Decrypt(blob cryptoDomain.EncryptedSecret) (string, error) {
	args := m.Called(blob)
	return args.String(0), args.Error(1)
}

// NeedsRewrap mocks the NeedsRewrap method of SecretCipher.
func (m *MockSecretCipher) NeedsRewrap(blob cryptoDomain.EncryptedSecret) bool {
	args := m.Called(blob)
	return args.Bool(0)
}

// ActiveKeyID mocks the ActiveKeyID method of SecretCipher.
func (m *MockSecretCipher) ActiveKeyID() string {
	args := m.Called()
	return args.String(0)
}

// MockKMSService is a mock implementation of KMSService.
type MockKMSService struct {
	mock.Mock
}

// OpenKeeper mocks the OpenKeeper method of KMSService.
func (m *MockKMSService) OpenKeeper(ctx context.Context, keyURI string) (cryptoDomain.KMSKeeper, error) {
	args := m.Called(ctx, keyURI)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(cryptoDomain.KMSKeeper), args.Error(1)
}

// MockKMSKeeper is a mock implementation of KMSKeeper.
type MockKMSKeeper struct {
	mock.Mock
}

// Encrypt mocks the Encrypt method of KMSKeeper.
func (m *MockKMSKeeper) Encrypt(ctx context.Context, plaintext []byte) ([]byte, error) {
	args := m.Called(ctx, plaintext)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// Decrypt mocks the Decrypt method of KMSKeeper.
func (m *MockKMSKeeper) Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error) {
	args := m.Called(ctx, ciphertext)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// Close mocks the Close method of KMSKeeper.
func (m *MockKMSKeeper) Close() error {
	args := m.Called()
	return args.Error(0)
}
