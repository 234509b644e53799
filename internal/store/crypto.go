package store

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/crypto/pbkdf2"
)

const (
	keySize          = 32 // AES-256
	nonceSize        = 12 // GCM standard nonce size
	saltSize         = 16
	secretSize       = 32
	pbkdf2Iterations = 100000

	keyFileName = "credentials.key"
)

// Crypto encrypts credentials at rest. The key derives from a random
// machine secret generated on first use, the closest portable analog to OS
// keychain storage: the secret file is owner-only, the database is not
// enough on its own to recover a token.
type Crypto struct {
	key []byte
}

// LoadCrypto loads the machine secret under dir, creating it when missing.
func LoadCrypto(dir string) (*Crypto, error) {
	path := filepath.Join(dir, keyFileName)

	raw, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		material := make([]byte, saltSize+secretSize)
		if _, err := rand.Read(material); err != nil {
			return nil, err
		}
		encoded := base64.StdEncoding.EncodeToString(material)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
		if err := os.WriteFile(path, []byte(encoded), 0600); err != nil {
			return nil, err
		}
		return newCrypto(material), nil
	case err != nil:
		return nil, err
	}

	material, err := base64.StdEncoding.DecodeString(string(raw))
	if err != nil {
		return nil, errors.New("corrupted credentials key file")
	}
	if len(material) != saltSize+secretSize {
		return nil, errors.New("corrupted credentials key file")
	}
	return newCrypto(material), nil
}

func newCrypto(material []byte) *Crypto {
	salt, secret := material[:saltSize], material[saltSize:]
	key := pbkdf2.Key(secret, salt, pbkdf2Iterations, keySize, sha256.New)
	return &Crypto{key: key}
}

// Encrypt encrypts data using AES-256-GCM
func (c *Crypto) Encrypt(plaintext []byte) (string, error) {
	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, nonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	// Seal appends nonce + ciphertext
	ciphertext := gcm.Seal(nonce, nonce, plaintext, nil)
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

// Decrypt decrypts data using AES-256-GCM
func (c *Crypto) Decrypt(encrypted string) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(encrypted)
	if err != nil {
		return nil, err
	}

	if len(data) < nonceSize {
		return nil, errors.New("ciphertext too short")
	}

	block, err := aes.NewCipher(c.key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	nonce := data[:nonceSize]
	ciphertext := data[nonceSize:]

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, errors.New("decryption failed: invalid key or corrupted data")
	}

	return plaintext, nil
}
