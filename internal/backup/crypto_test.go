package backup

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestDeriveKeyDeterminism(t *testing.T) {
	salt := []byte("1234567890abcdef")

	key1 := DeriveKey("mypassphrase", salt)
	key2 := DeriveKey("mypassphrase", salt)

	if !bytes.Equal(key1, key2) {
		t.Error("same passphrase+salt should produce same key")
	}
	if len(key1) != keySize {
		t.Errorf("key length = %d, want %d", len(key1), keySize)
	}
}

func TestDeriveKeyDifferentPassphrases(t *testing.T) {
	salt := []byte("1234567890abcdef")

	key1 := DeriveKey("password1", salt)
	key2 := DeriveKey("password2", salt)

	if bytes.Equal(key1, key2) {
		t.Error("different passphrases should produce different keys")
	}
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	dir := t.TempDir()
	srcPath := filepath.Join(dir, "source.db")
	encPath := filepath.Join(dir, "encrypted.db.enc")
	decPath := filepath.Join(dir, "decrypted.db")

	original := []byte("This is test database content with some data in it.")
	if err := os.WriteFile(srcPath, original, 0600); err != nil {
		t.Fatalf("write source: %v", err)
	}

	if err := EncryptFile(srcPath, encPath, "correct horse battery"); err != nil {
		t.Fatalf("encrypt: %v", err)
	}

	encrypted, err := os.ReadFile(encPath)
	if err != nil {
		t.Fatalf("read encrypted: %v", err)
	}
	if len(encrypted) <= saltSize+nonceSize {
		t.Fatal("encrypted file has no ciphertext")
	}
	if bytes.Contains(encrypted, original) {
		t.Error("encrypted file contains plaintext")
	}

	if err := DecryptFile(encPath, decPath, "correct horse battery"); err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	decrypted, err := os.ReadFile(decPath)
	if err != nil {
		t.Fatalf("read decrypted: %v", err)
	}
	if !bytes.Equal(decrypted, original) {
		t.Error("round trip did not preserve content")
	}
}

func TestDecryptWrongPassphrase(t *testing.T) {
	dir := t.TempDir()
	srcPath := filepath.Join(dir, "source.db")
	encPath := filepath.Join(dir, "encrypted.db.enc")
	decPath := filepath.Join(dir, "decrypted.db")

	if err := os.WriteFile(srcPath, []byte("secret data"), 0600); err != nil {
		t.Fatalf("write source: %v", err)
	}
	if err := EncryptFile(srcPath, encPath, "right-passphrase"); err != nil {
		t.Fatalf("encrypt: %v", err)
	}

	if err := DecryptFile(encPath, decPath, "wrong-passphrase"); err == nil {
		t.Fatal("expected decryption failure with wrong passphrase")
	}
}

func TestEncryptFreshSaltPerBackup(t *testing.T) {
	dir := t.TempDir()
	srcPath := filepath.Join(dir, "source.db")
	enc1 := filepath.Join(dir, "one.enc")
	enc2 := filepath.Join(dir, "two.enc")

	if err := os.WriteFile(srcPath, []byte("same content"), 0600); err != nil {
		t.Fatalf("write source: %v", err)
	}
	if err := EncryptFile(srcPath, enc1, "pass"); err != nil {
		t.Fatalf("encrypt 1: %v", err)
	}
	if err := EncryptFile(srcPath, enc2, "pass"); err != nil {
		t.Fatalf("encrypt 2: %v", err)
	}

	data1, _ := os.ReadFile(enc1)
	data2, _ := os.ReadFile(enc2)
	if bytes.Equal(data1[:saltSize], data2[:saltSize]) {
		t.Error("two backups used the same salt")
	}
}

func TestDecryptTruncatedFile(t *testing.T) {
	dir := t.TempDir()
	encPath := filepath.Join(dir, "tiny.enc")
	if err := os.WriteFile(encPath, []byte("short"), 0600); err != nil {
		t.Fatalf("write: %v", err)
	}

	if err := DecryptFile(encPath, filepath.Join(dir, "out.db"), "pass"); err == nil {
		t.Fatal("expected error for truncated file")
	}
}
