// Package secrets keeps small per-user secrets in a 0600 file, sealed with
// AES-GCM under a key derived from the OS user. It is not a keychain
// replacement, but it keeps signing material out of the config file.
package secrets

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
	"runtime"
	"strings"
)

const (
	fileName      = "keys.json"
	signingKeyID  = "session-signing"
	signingKeyLen = 32
)

var ErrNotFound = errors.New("secrets: key not found")

type secretFile struct {
	Keys map[string]string `json:"keys"` // name -> base64(nonce|ciphertext)
}

// SigningKey returns the session signing key stored under dir, generating
// and persisting a random one on first use.
func SigningKey(dir string) ([]byte, error) {
	key, err := Fetch(dir, signingKeyID)
	if err == nil && len(key) == signingKeyLen {
		return key, nil
	}
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	key = make([]byte, signingKeyLen)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return nil, fmt.Errorf("generate signing key: %w", err)
	}
	if err := Store(dir, signingKeyID, key); err != nil {
		return nil, err
	}
	return key, nil
}

// DeleteSigningKey removes the signing key, invalidating every issued token.
func DeleteSigningKey(dir string) error {
	return Delete(dir, signingKeyID)
}

func Store(dir, name string, value []byte) error {
	if name = norm(name); name == "" {
		return fmt.Errorf("secrets: name required")
	}
	path, err := filePath(dir)
	if err != nil {
		return err
	}
	sf, err := load(path)
	if err != nil {
		return err
	}
	if sf.Keys == nil {
		sf.Keys = map[string]string{}
	}
	ct, err := encrypt(value)
	if err != nil {
		return err
	}
	sf.Keys[name] = base64.StdEncoding.EncodeToString(ct)
	return save(path, sf)
}

func Fetch(dir, name string) ([]byte, error) {
	if name = norm(name); name == "" {
		return nil, fmt.Errorf("secrets: name required")
	}
	path, err := filePath(dir)
	if err != nil {
		return nil, err
	}
	sf, err := load(path)
	if err != nil {
		return nil, err
	}
	enc, ok := sf.Keys[name]
	if !ok {
		return nil, ErrNotFound
	}
	raw, err := base64.StdEncoding.DecodeString(enc)
	if err != nil {
		return nil, fmt.Errorf("secrets: decode %s: %w", name, err)
	}
	return decrypt(raw)
}

func Delete(dir, name string) error {
	path, err := filePath(dir)
	if err != nil {
		return err
	}
	sf, err := load(path)
	if err != nil {
		return err
	}
	delete(sf.Keys, norm(name))
	return save(path, sf)
}

// DefaultDir is the per-user config directory for the app.
func DefaultDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "sceneflow"), nil
}

func filePath(dir string) (string, error) {
	if dir == "" {
		d, err := DefaultDir()
		if err != nil {
			return "", err
		}
		dir = d
	}
	if err := os.MkdirAll(dir, 0o700); err != nil { // restrict directory
		return "", err
	}
	return filepath.Join(dir, fileName), nil
}

func load(path string) (secretFile, error) {
	var sf secretFile
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return secretFile{}, nil
		}
		return sf, err
	}
	if err := json.Unmarshal(data, &sf); err != nil {
		return sf, fmt.Errorf("secrets: parse %s: %w", path, err)
	}
	return sf, nil
}

func save(path string, sf secretFile) error {
	data, err := json.MarshalIndent(sf, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func norm(s string) string {
	return strings.TrimSpace(strings.ToLower(s))
}

func masterKey() []byte {
	base := fmt.Sprintf("sceneflow-%s-%s", runtime.GOOS, os.Getenv("USER"))
	sum := sha256.Sum256([]byte(base))
	return sum[:]
}

func newGCM() (cipher.AEAD, error) {
	block, err := aes.NewCipher(masterKey())
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

func encrypt(plain []byte) ([]byte, error) {
	gcm, err := newGCM()
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, plain, nil), nil
}

func decrypt(ciphertext []byte) ([]byte, error) {
	gcm, err := newGCM()
	if err != nil {
		return nil, err
	}
	if len(ciphertext) < gcm.NonceSize() {
		return nil, fmt.Errorf("secrets: ciphertext too short")
	}
	nonce, body := ciphertext[:gcm.NonceSize()], ciphertext[gcm.NonceSize():]
	return gcm.Open(nil, nonce, body, nil)
}
