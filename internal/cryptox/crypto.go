// Package cryptox is the crypto collaborator of the account layer.
//
// A secured key is a random 256-bit data key sealed with a key-encryption
// key derived from the master passphrase (argon2id). Account passwords are
// sealed with the unlocked data key using AES-256-GCM, so the stored
// (pass, key) pair is only usable together with the passphrase, and a
// mismatched pair fails authentication instead of yielding garbage.
//
// Layouts:
//
//	secured key: version(1) | salt(16) | nonce(12) | sealed data key
//	ciphertext:  nonce(12) | sealed plaintext
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/passkeeper/internal/common"
	"golang.org/x/crypto/argon2"
)

const (
	keySize           = 32
	saltSize          = 16
	securedKeyVersion = 1
)

var errMalformed = errors.New("malformed input")

// DeriveMasterKey derives a 32-byte key-encryption key from password and salt.
func DeriveMasterKey(password []byte, salt []byte) []byte {
	return argon2.IDKey(password, salt, 1, 64*1024, 4, keySize)
}

// MakeSecuredKey creates a fresh data key and locks it with passphrase.
func MakeSecuredKey(passphrase []byte) ([]byte, error) {
	dataKey := common.GenerateRandByteArray(keySize)
	defer common.WipeByteArray(dataKey)

	salt := common.GenerateRandByteArray(saltSize)
	kek := DeriveMasterKey(passphrase, salt)
	defer common.WipeByteArray(kek)

	sealed, err := seal(kek, dataKey)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, 1+saltSize+len(sealed))
	out = append(out, securedKeyVersion)
	out = append(out, salt...)
	out = append(out, sealed...)
	return out, nil
}

// Encrypt seals plaintext with the data key held in securedKey.
func Encrypt(plaintext, securedKey, passphrase []byte) ([]byte, error) {
	key, err := unlockKey(securedKey, passphrase)
	if err != nil {
		return nil, err
	}
	defer common.WipeByteArray(key)

	return seal(key, plaintext)
}

// Decrypt opens a ciphertext produced by Encrypt with the same secured key
// and passphrase. Any mismatch returns an error wrapping common.ErrCrypto.
func Decrypt(ciphertext, securedKey, passphrase []byte) ([]byte, error) {
	key, err := unlockKey(securedKey, passphrase)
	if err != nil {
		return nil, err
	}
	defer common.WipeByteArray(key)

	return open(key, ciphertext)
}

func unlockKey(securedKey, passphrase []byte) ([]byte, error) {
	if len(securedKey) < 1+saltSize || securedKey[0] != securedKeyVersion {
		return nil, fmt.Errorf("%w: secured key: %w", common.ErrCrypto, errMalformed)
	}

	salt := securedKey[1 : 1+saltSize]
	kek := DeriveMasterKey(passphrase, salt)
	defer common.WipeByteArray(kek)

	key, err := open(kek, securedKey[1+saltSize:])
	if err != nil {
		return nil, fmt.Errorf("unlock key: %w", err)
	}
	return key, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrCrypto, err)
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrCrypto, err)
	}
	return aesgcm, nil
}

func seal(key, plaintext []byte) ([]byte, error) {
	aesgcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	nonce := common.GenerateRandByteArray(aesgcm.NonceSize())
	return aesgcm.Seal(nonce, nonce, plaintext, nil), nil
}

func open(key, data []byte) ([]byte, error) {
	aesgcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	ns := aesgcm.NonceSize()
	if len(data) < ns+aesgcm.Overhead() {
		return nil, fmt.Errorf("%w: %w", common.ErrCrypto, errMalformed)
	}
	plaintext, err := aesgcm.Open(nil, data[:ns], data[ns:], nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrCrypto, err)
	}
	return plaintext, nil
}
