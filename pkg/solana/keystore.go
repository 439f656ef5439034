package solana

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/blocto/solana-go-sdk/types"
)

// KeyStoreEntry is the on-disk form of the custodial presale key.
type KeyStoreEntry struct {
	Address      string `json:"address"`
	EncryptedKey string `json:"encrypted_key"`
	Version      int    `json:"version"`
}

// KeyStore manages the custodial presale keypair: generation, AES-256-GCM
// encryption at rest, and loading for the settlement worker.
type KeyStore struct {
	path     string
	password string
}

// NewKeyStore returns a keystore rooted at path, protected by password.
func NewKeyStore(path, password string) *KeyStore {
	return &KeyStore{path: path, password: password}
}

// GenerateKeyPair generates a new Solana key pair.
func (ks *KeyStore) GenerateKeyPair() (*types.Account, error) {
	account := types.NewAccount()
	return &account, nil
}

// EncryptPrivateKey encrypts a private key using AES-256-GCM.
func (ks *KeyStore) EncryptPrivateKey(privateKey []byte, password string) (string, error) {
	key := deriveKey(password)
	block, err := aes.NewCipher(key)
	if err != nil {
		return "", fmt.Errorf("failed to create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("failed to create GCM: %w", err)
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	// Nonce is prepended to the ciphertext for storage
	ciphertext := gcm.Seal(nonce, nonce, privateKey, nil)
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

// DecryptPrivateKey decrypts a private key using AES-256-GCM.
func (ks *KeyStore) DecryptPrivateKey(encryptedKey string, password string) ([]byte, error) {
	ciphertext, err := base64.StdEncoding.DecodeString(encryptedKey)
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64: %w", err)
	}

	key := deriveKey(password)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	if len(ciphertext) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}

	nonce, sealed := ciphertext[:gcm.NonceSize()], ciphertext[gcm.NonceSize():]
	plaintext, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt: %w", err)
	}
	return plaintext, nil
}

// Save writes the account to the keystore file, encrypted.
func (ks *KeyStore) Save(account *types.Account) error {
	encrypted, err := ks.EncryptPrivateKey(account.PrivateKey, ks.password)
	if err != nil {
		return err
	}

	entry := KeyStoreEntry{
		Address:      account.PublicKey.ToBase58(),
		EncryptedKey: encrypted,
		Version:      1,
	}

	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal keystore: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(ks.path), 0700); err != nil {
		return fmt.Errorf("failed to create keystore dir: %w", err)
	}
	return os.WriteFile(ks.path, data, 0600)
}

// Load reads and decrypts the account from the keystore file.
func (ks *KeyStore) Load() (*types.Account, error) {
	data, err := os.ReadFile(ks.path)
	if err != nil {
		return nil, err
	}

	var entry KeyStoreEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("failed to unmarshal keystore: %w", err)
	}

	privateKey, err := ks.DecryptPrivateKey(entry.EncryptedKey, ks.password)
	if err != nil {
		return nil, err
	}

	account, err := types.AccountFromBytes(privateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to restore account: %w", err)
	}
	if account.PublicKey.ToBase58() != entry.Address {
		return nil, errors.New("keystore address mismatch")
	}
	return &account, nil
}

// LoadOrCreate loads the custodial key, generating and saving a fresh one
// when the keystore file does not exist yet.
func (ks *KeyStore) LoadOrCreate() (*types.Account, error) {
	account, err := ks.Load()
	if err == nil {
		return account, nil
	}
	if !os.IsNotExist(err) {
		return nil, err
	}

	account, err = ks.GenerateKeyPair()
	if err != nil {
		return nil, err
	}
	if err := ks.Save(account); err != nil {
		return nil, err
	}
	return account, nil
}

// deriveKey derives a 32-byte AES key from the password.
func deriveKey(password string) []byte {
	hash := sha256.Sum256([]byte(password))
	return hash[:]
}
