// Package credentials stores chemistry-service login material encrypted at
// rest and tracks bearer-token validity.
package credentials

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"

	"golang.org/x/crypto/nacl/secretbox"
	"golang.org/x/crypto/scrypt"
)

// Credentials is the login material for the remote chemistry service.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
	RootURL  string `json:"root_url"`
}

// scrypt parameters follow the package's recommended interactive defaults.
const (
	scryptN = 1 << 15
	scryptR = 8
	scryptP = 1

	saltSize  = 32
	nonceSize = 24
	keySize   = 32
)

// envelope is the on-disk form of a sealed credential file.
type envelope struct {
	KDF   string `json:"kdf"`
	N     int    `json:"n"`
	R     int    `json:"r"`
	P     int    `json:"p"`
	Salt  string `json:"salt"`
	Nonce string `json:"nonce"`
	Box   string `json:"box"`
}

// Save seals creds with a key derived from passphrase and writes the
// envelope to path with owner-only permissions.
func Save(path string, creds Credentials, passphrase string) error {
	if passphrase == "" {
		return fmt.Errorf("credentials: passphrase is required")
	}

	plaintext, err := json.Marshal(creds)
	if err != nil {
		return fmt.Errorf("credentials: encode: %w", err)
	}

	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return fmt.Errorf("credentials: generate salt: %w", err)
	}
	var nonce [nonceSize]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return fmt.Errorf("credentials: generate nonce: %w", err)
	}

	key, err := deriveKey(passphrase, salt, scryptN, scryptR, scryptP)
	if err != nil {
		return err
	}
	box := secretbox.Seal(nil, plaintext, &nonce, key)

	env := envelope{
		KDF:   "scrypt",
		N:     scryptN,
		R:     scryptR,
		P:     scryptP,
		Salt:  base64.StdEncoding.EncodeToString(salt),
		Nonce: base64.StdEncoding.EncodeToString(nonce[:]),
		Box:   base64.StdEncoding.EncodeToString(box),
	}
	data, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return fmt.Errorf("credentials: encode envelope: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("credentials: write %s: %w", path, err)
	}
	return nil
}

// Load opens the sealed file at path. A wrong passphrase fails cleanly.
func Load(path, passphrase string) (Credentials, error) {
	var creds Credentials

	data, err := os.ReadFile(path)
	if err != nil {
		return creds, fmt.Errorf("credentials: read %s: %w", path, err)
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return creds, fmt.Errorf("credentials: parse envelope: %w", err)
	}
	if env.KDF != "scrypt" {
		return creds, fmt.Errorf("credentials: unsupported kdf %q", env.KDF)
	}

	salt, err := base64.StdEncoding.DecodeString(env.Salt)
	if err != nil {
		return creds, fmt.Errorf("credentials: decode salt: %w", err)
	}
	nonceBytes, err := base64.StdEncoding.DecodeString(env.Nonce)
	if err != nil {
		return creds, fmt.Errorf("credentials: decode nonce: %w", err)
	}
	if len(nonceBytes) != nonceSize {
		return creds, fmt.Errorf("credentials: nonce has wrong size")
	}
	box, err := base64.StdEncoding.DecodeString(env.Box)
	if err != nil {
		return creds, fmt.Errorf("credentials: decode box: %w", err)
	}

	key, err := deriveKey(passphrase, salt, env.N, env.R, env.P)
	if err != nil {
		return creds, err
	}

	var nonce [nonceSize]byte
	copy(nonce[:], nonceBytes)
	plaintext, ok := secretbox.Open(nil, box, &nonce, key)
	if !ok {
		return creds, fmt.Errorf("credentials: open failed: wrong passphrase or corrupted file")
	}

	if err := json.Unmarshal(plaintext, &creds); err != nil {
		return creds, fmt.Errorf("credentials: decode: %w", err)
	}
	return creds, nil
}

func deriveKey(passphrase string, salt []byte, n, r, p int) (*[keySize]byte, error) {
	raw, err := scrypt.Key([]byte(passphrase), salt, n, r, p, keySize)
	if err != nil {
		return nil, fmt.Errorf("credentials: derive key: %w", err)
	}
	var key [keySize]byte
	copy(key[:], raw)
	return &key, nil
}
