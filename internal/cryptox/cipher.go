// Package cryptox implements reversible protection for short secret strings
// (third-party API keys) before they are persisted.
//
// Secrets are encrypted with AES-256-GCM using a 16-byte random IV. The key
// is derived once from a server-held passphrase with scrypt and a fixed,
// application-specific salt. The persisted envelope is three colon-separated
// hex fields:
//
//	hex(iv) + ":" + hex(tag) + ":" + hex(ciphertext)
//
// Decrypt distinguishes malformed envelopes from authentication failures via
// sentinel errors; DecryptOrEmpty maps both to "" for callers that treat a
// corrupt or foreign-key secret the same as an unset one.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/clipforge/clipforge/internal/common"
	"golang.org/x/crypto/scrypt"
)

const (
	// kdfSalt binds derived keys to this application's credential store.
	kdfSalt = "clipforge-credentials-v1"

	keySize = 32
	ivSize  = 16
	tagSize = 16

	// scrypt cost parameters; deliberately slow to derive.
	scryptN = 1 << 14
	scryptR = 8
	scryptP = 1
)

var (
	// ErrNoPassphrase is returned when the cipher is constructed without key material.
	ErrNoPassphrase = errors.New("encryption passphrase is not configured")

	// ErrMalformedEnvelope is returned when a stored value does not parse as iv:tag:ciphertext.
	ErrMalformedEnvelope = errors.New("malformed secret envelope")

	// ErrDecryptFailed is returned when authentication fails (tampered data or wrong key).
	ErrDecryptFailed = errors.New("secret decryption failed")
)

// Cipher encrypts and decrypts short secret strings with a process-wide key.
// It is immutable after construction and safe for concurrent use.
type Cipher struct {
	aead cipher.AEAD
}

// New derives the AES key from the passphrase and returns a ready Cipher.
// An empty passphrase yields ErrNoPassphrase: the caller must refuse to
// serve encryption-dependent operations in that case.
func New(passphrase string) (*Cipher, error) {
	if passphrase == "" {
		return nil, ErrNoPassphrase
	}

	key, err := scrypt.Key([]byte(passphrase), []byte(kdfSalt), scryptN, scryptR, scryptP, keySize)
	if err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}

	aead, err := cipher.NewGCMWithNonceSize(block, ivSize)
	if err != nil {
		return nil, fmt.Errorf("create GCM: %w", err)
	}

	// The AEAD holds its own key schedule; the derived key is not needed
	// after this point.
	common.WipeByteArray(key)

	return &Cipher{aead: aead}, nil
}

// Encrypt encrypts plaintext into the iv:tag:ciphertext hex envelope.
// An empty input returns an empty envelope: "nothing to protect" is stored
// as an empty value, never as an encrypted empty string.
func (c *Cipher) Encrypt(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}

	iv := make([]byte, ivSize)
	if _, err := rand.Read(iv); err != nil {
		return "", fmt.Errorf("generate iv: %w", err)
	}

	sealed := c.aead.Seal(nil, iv, []byte(plaintext), nil)

	// Seal appends the authentication tag to the ciphertext.
	ct := sealed[:len(sealed)-tagSize]
	tag := sealed[len(sealed)-tagSize:]

	return hex.EncodeToString(iv) + ":" + hex.EncodeToString(tag) + ":" + hex.EncodeToString(ct), nil
}

// Decrypt parses the envelope and returns the plaintext. Empty input returns
// ("", nil). A value that does not split into exactly three hex fields of the
// right sizes yields ErrMalformedEnvelope; a failed authentication check
// yields ErrDecryptFailed. Plaintext is never logged here.
func (c *Cipher) Decrypt(envelope string) (string, error) {
	if envelope == "" {
		return "", nil
	}

	parts := strings.Split(envelope, ":")
	if len(parts) != 3 {
		return "", ErrMalformedEnvelope
	}

	iv, err := hex.DecodeString(parts[0])
	if err != nil || len(iv) != ivSize {
		return "", ErrMalformedEnvelope
	}
	tag, err := hex.DecodeString(parts[1])
	if err != nil || len(tag) != tagSize {
		return "", ErrMalformedEnvelope
	}
	ct, err := hex.DecodeString(parts[2])
	if err != nil {
		return "", ErrMalformedEnvelope
	}

	sealed := make([]byte, 0, len(ct)+len(tag))
	sealed = append(sealed, ct...)
	sealed = append(sealed, tag...)

	plaintext, err := c.aead.Open(nil, iv, sealed, nil)
	if err != nil {
		return "", ErrDecryptFailed
	}

	return string(plaintext), nil
}

// DecryptOrEmpty maps every Decrypt failure to "". Callers that use this
// form must positively check for emptiness before using a credential.
func (c *Cipher) DecryptOrEmpty(envelope string) string {
	plaintext, err := c.Decrypt(envelope)
	if err != nil {
		return ""
	}
	return plaintext
}

// Mask returns a display-safe form of a credential: only the last four
// characters are kept.
func Mask(credential string) string {
	if credential == "" {
		return ""
	}
	if len(credential) <= 4 {
		return "****"
	}
	return "****..." + credential[len(credential)-4:]
}
