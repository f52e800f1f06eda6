// package credentials stores and refreshes provider OAuth tokens at rest.
//
// There is no OS-keychain binding (keyring/go-keychain/DPAPI) anywhere in
// the retrieval pack this was built from, so this is the one ambient
// concern implemented directly on the standard library's crypto packages
// rather than a pack dependency.
package credentials

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/grit-vcs/grit/internal/models"
	"github.com/grit-vcs/grit/internal/providers"
	"github.com/grit-vcs/grit/internal/shared"
)

const keySize = 32 // AES-256

func dir(root string) string {
	return filepath.Join(root, "credentials")
}

func tokenPath(root string, kind models.ProviderKind) string {
	return filepath.Join(dir(root), string(kind)+".json")
}

func keyPath(root string) string {
	return filepath.Join(dir(root), ".key")
}

// loadOrCreateKey reads the per-root AES key, generating and persisting a
// new random one on first use.
func loadOrCreateKey(root string) ([]byte, error) {
	path := keyPath(root)

	if data, err := os.ReadFile(path); err == nil {
		if len(data) != keySize {
			return nil, fmt.Errorf("credentials key at %s has unexpected length %d", path, len(data))
		}
		return data, nil
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read credentials key: %w", err)
	}

	if err := shared.EnsureDir(dir(root)); err != nil {
		return nil, err
	}

	key := make([]byte, keySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("failed to generate credentials key: %w", err)
	}

	if err := os.WriteFile(path, key, 0600); err != nil {
		return nil, fmt.Errorf("failed to write credentials key: %w", err)
	}

	return key, nil
}

func gcm(root string) (cipher.AEAD, error) {
	key, err := loadOrCreateKey(root)
	if err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to construct cipher: %w", err)
	}

	return cipher.NewGCM(block)
}

func encrypt(root string, plaintext []byte) ([]byte, error) {
	aead, err := gcm(root)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	return aead.Seal(nonce, nonce, plaintext, nil), nil
}

func decrypt(root string, ciphertext []byte) ([]byte, error) {
	aead, err := gcm(root)
	if err != nil {
		return nil, err
	}

	nonceSize := aead.NonceSize()
	if len(ciphertext) < nonceSize {
		return nil, fmt.Errorf("credentials file too short to contain a nonce")
	}

	nonce, sealed := ciphertext[:nonceSize], ciphertext[nonceSize:]
	return aead.Open(nil, nonce, sealed, nil)
}

// Save encrypts and writes a token for the given provider kind.
func Save(root string, kind models.ProviderKind, token models.OAuthToken) error {
	plaintext, err := shared.MarshalJSON(token)
	if err != nil {
		return err
	}

	ciphertext, err := encrypt(root, plaintext)
	if err != nil {
		return err
	}

	if err := shared.EnsureDir(dir(root)); err != nil {
		return err
	}

	return os.WriteFile(tokenPath(root, kind), ciphertext, 0600)
}

// Load reads and decrypts the stored token for kind. If it has expired, it
// is refreshed via p.RefreshToken and the refreshed token is rewritten,
// carrying the old refresh token forward if the response omits a new one.
func Load(ctx context.Context, root string, kind models.ProviderKind, p providers.Provider) (models.OAuthToken, error) {
	var token models.OAuthToken

	ciphertext, err := os.ReadFile(tokenPath(root, kind))
	if err != nil {
		if os.IsNotExist(err) {
			return token, fmt.Errorf("%w: run 'grit auth login %s' first", shared.ErrNotAuthenticated, kind)
		}
		return token, fmt.Errorf("failed to read credentials: %w", err)
	}

	plaintext, err := decrypt(root, ciphertext)
	if err != nil {
		return token, fmt.Errorf("failed to decrypt credentials: %w", err)
	}

	if err := shared.UnmarshalJSON(plaintext, &token); err != nil {
		return token, err
	}

	if !token.Expired(time.Now()) {
		return token, nil
	}

	if token.RefreshToken == "" {
		return token, fmt.Errorf("%w for %s", shared.ErrNoRefreshToken, kind)
	}

	refreshed, err := p.RefreshToken(ctx, token)
	if err != nil {
		return token, fmt.Errorf("%w: %v", shared.ErrRefreshFailed, err)
	}

	if refreshed.RefreshToken == "" {
		refreshed.RefreshToken = token.RefreshToken
	}

	if err := Save(root, kind, refreshed); err != nil {
		return refreshed, err
	}

	return refreshed, nil
}
