package security

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/zalando/go-keyring"
	"golang.org/x/crypto/pbkdf2"

	"callsight/internal/config"
)

const (
	keyringService = "callsight"

	saltSize         = 32
	pbkdf2Iterations = 100000
	keySize          = 32 // AES-256
)

// CredentialStore handles secure storage of the Snowflake password.
// It prefers the OS keyring and falls back to an AES-GCM encrypted file
// under the config directory when no keyring is available.
type CredentialStore struct {
	useKeyring bool
	masterKey  []byte
}

// NewCredentialStore creates a credential store
func NewCredentialStore() (*CredentialStore, error) {
	cs := &CredentialStore{useKeyring: keyringAvailable()}

	if !cs.useKeyring {
		key, err := cs.loadMasterKey()
		if err != nil {
			return nil, fmt.Errorf("failed to initialize master key: %w", err)
		}
		cs.masterKey = key
	}

	return cs, nil
}

// Set stores a named secret
func (cs *CredentialStore) Set(name, value string) error {
	if cs.useKeyring {
		if err := keyring.Set(keyringService, name, value); err != nil {
			return fmt.Errorf("failed to store in keyring: %w", err)
		}
		return nil
	}

	encrypted, err := cs.encrypt(value)
	if err != nil {
		return fmt.Errorf("failed to encrypt credential: %w", err)
	}
	return os.WriteFile(cs.credentialPath(name), []byte(encrypted), 0600)
}

// Get retrieves a named secret
func (cs *CredentialStore) Get(name string) (string, error) {
	if cs.useKeyring {
		value, err := keyring.Get(keyringService, name)
		if err != nil {
			return "", fmt.Errorf("failed to read from keyring: %w", err)
		}
		return value, nil
	}

	data, err := os.ReadFile(cs.credentialPath(name)) // #nosec G304 - path is under the config dir
	if err != nil {
		return "", err
	}
	return cs.decrypt(string(data))
}

// Delete removes a named secret
func (cs *CredentialStore) Delete(name string) error {
	if cs.useKeyring {
		return keyring.Delete(keyringService, name)
	}
	return os.Remove(cs.credentialPath(name))
}

func keyringAvailable() bool {
	probe := "callsight-probe"
	if err := keyring.Set(keyringService, probe, "ok"); err != nil {
		return false
	}
	_ = keyring.Delete(keyringService, probe)
	return true
}

func (cs *CredentialStore) credentialPath(name string) string {
	return filepath.Join(config.GetConfigPath(), name+".cred")
}

func (cs *CredentialStore) masterKeyPath() string {
	return filepath.Join(config.GetConfigPath(), ".master.key")
}

// loadMasterKey reads or creates the salt used to derive the file
// encryption key. The key is derived from the salt plus a machine-local
// secret so the .cred files are not portable in plain form.
func (cs *CredentialStore) loadMasterKey() ([]byte, error) {
	if err := os.MkdirAll(config.GetConfigPath(), 0700); err != nil {
		return nil, err
	}

	path := cs.masterKeyPath()
	salt, err := os.ReadFile(path) // #nosec G304 - path is under the config dir
	if os.IsNotExist(err) {
		salt = make([]byte, saltSize)
		if _, err := io.ReadFull(rand.Reader, salt); err != nil {
			return nil, err
		}
		if err := os.WriteFile(path, salt, 0600); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}

	host, _ := os.Hostname()
	passphrase := fmt.Sprintf("callsight:%s:%d", host, os.Getuid())
	return pbkdf2.Key([]byte(passphrase), salt, pbkdf2Iterations, keySize, sha256.New), nil
}

func (cs *CredentialStore) encrypt(plaintext string) (string, error) {
	block, err := aes.NewCipher(cs.masterKey)
	if err != nil {
		return "", err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	ciphertext := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

func (cs *CredentialStore) decrypt(ciphertext string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", err
	}

	block, err := aes.NewCipher(cs.masterKey)
	if err != nil {
		return "", err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	nonceSize := gcm.NonceSize()
	if len(data) < nonceSize {
		return "", fmt.Errorf("ciphertext too short")
	}

	nonce, encryptedData := data[:nonceSize], data[nonceSize:]
	plaintext, err := gcm.Open(nil, nonce, encryptedData, nil)
	if err != nil {
		return "", err
	}

	return string(plaintext), nil
}
