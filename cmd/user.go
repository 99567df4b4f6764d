package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"slidesmith/internal/store"
)

var userFlag string

// userScope returns the anonymous id of this machine's user, minting and
// persisting one under ~/.slidesmith on first use.
func userScope() (store.Scope, error) {
	if userFlag != "" {
		return store.Scope(userFlag), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("find home dir: %w", err)
	}
	return loadOrCreateUserID(filepath.Join(home, ".slidesmith", "user_id"))
}

func loadOrCreateUserID(path string) (store.Scope, error) {
	data, err := os.ReadFile(path)
	if err == nil {
		if id := strings.TrimSpace(string(data)); id != "" {
			return store.Scope(id), nil
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("read user id: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return "", fmt.Errorf("create user dir: %w", err)
	}

	id := uuid.NewString()
	if err := os.WriteFile(path, []byte(id+"\n"), 0600); err != nil {
		return "", fmt.Errorf("write user id: %w", err)
	}
	return store.Scope(id), nil
}
