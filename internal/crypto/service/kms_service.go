package service

import (
	"context"
	"fmt"
	"net/url"

	"gocloud.dev/secrets"
	_ "gocloud.dev/secrets/awskms"
	_ "gocloud.dev/secrets/azurekeyvault"
	_ "gocloud.dev/secrets/gcpkms"
	_ "gocloud.dev/secrets/hashivault"
	_ "gocloud.dev/secrets/localsecrets"

	cryptoDomain "github.com/allisson/tradejournal/internal/crypto/domain"
)

// kmsSchemes lists the keeper URI schemes whose drivers are linked in above.
var kmsSchemes = map[string]bool{
	"awskms":        true,
	"azurekeyvault": true,
	"gcpkms":        true,
	"hashivault":    true,
	"base64key":     true,
}

// kmsService opens gocloud keepers that wrap and unwrap "kms:" registry entries.
type kmsService struct{}

// NewKMSService creates a new KMS service instance.
func NewKMSService() KMSService {
	return &kmsService{}
}

// OpenKeeper opens the keeper for keyURI. base64key:// is the local driver, meant for
// development and tests.
func (k *kmsService) OpenKeeper(ctx context.Context, keyURI string) (cryptoDomain.KMSKeeper, error) {
	if keyURI == "" {
		return nil, fmt.Errorf("%w: empty KMS key URI", cryptoDomain.ErrKMSKeeperRequired)
	}

	u, err := url.Parse(keyURI)
	if err != nil || !kmsSchemes[u.Scheme] {
		return nil, fmt.Errorf("%w: %q", cryptoDomain.ErrUnsupportedKMSScheme, schemeOf(keyURI))
	}

	keeper, err := secrets.OpenKeeper(ctx, keyURI)
	if err != nil {
		return nil, fmt.Errorf("failed to open KMS keeper: %w", err)
	}
	return keeper, nil
}

// schemeOf returns the part of uri before "://" without echoing key material.
func schemeOf(uri string) string {
	for i := 0; i+2 < len(uri); i++ {
		if uri[i:i+3] == "://" {
			return uri[:i]
		}
	}
	return ""
}
