package auth

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/oauth2"
)

// Dir returns ~/.treesync, creating it when missing.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	dir := filepath.Join(home, ".treesync")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}

	return dir, nil
}

func readDirFile(name string) ([]byte, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}

	return os.ReadFile(filepath.Join(dir, name))
}

func saveToken(name string, token *oauth2.Token) (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}

	b, err := json.Marshal(token)
	if err != nil {
		return "", err
	}

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, b, 0600); err != nil {
		return "", fmt.Errorf("failed to save token: %w", err)
	}

	return path, nil
}

func loadToken(name, provider string) (*oauth2.Token, error) {
	b, err := readDirFile(name)
	if err != nil {
		return nil, fmt.Errorf("%s auth needed. Please run 'treesync auth %s' first: %w", provider, provider, err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(b, &token); err != nil {
		return nil, fmt.Errorf("failed to parse %s token: %w", provider, err)
	}

	return &token, nil
}
