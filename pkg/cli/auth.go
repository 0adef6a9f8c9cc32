package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path"
	"strings"

	"github.com/urfave/cli/v2"
	"github.com/zalando/go-keyring"
)

const (
	tokenFileName  = "registry_token"
	keyringService = "regwatch"
	keyringUser    = "registry_token"
)

var (
	authTokenFlag = &cli.StringFlag{
		Name:  "token",
		Usage: "Registry API token to store",
	}

	authClearFlag = &cli.BoolFlag{
		Name:  "clear",
		Usage: "Remove the stored token",
	}

	authCmd = &cli.Command{
		Name:            "auth",
		HideHelpCommand: true,
		Usage:           "Store the registry API token used for bulk-data downloads",
		UsageText: `regwatch auth --token XYZ   # store a token
   regwatch auth                # show whether a token is stored
   regwatch auth --clear        # remove the stored token`,
		Action: cmdAuth,
		Flags: []cli.Flag{
			authTokenFlag,
			authClearFlag,
		},
	}
)

func cmdAuth(c *cli.Context) error {
	if c.Bool(authClearFlag.Name) {
		return clearRegistryToken()
	}

	token := strings.TrimSpace(c.String(authTokenFlag.Name))
	if token == "" {
		stored, err := getRegistryToken()
		if err != nil || stored == "" {
			fmt.Println("No token stored")
			return nil
		}
		fmt.Printf("Token stored (%s...)\n", mask(stored))
		return nil
	}

	if err := saveRegistryToken(token); err != nil {
		return fmt.Errorf("saving token: %w", err)
	}

	fmt.Println("Token saved to OS keychain")
	return nil
}

func mask(token string) string {
	if len(token) < 5 {
		return "****"
	}
	return token[:4]
}

func saveRegistryToken(token string) error {
	if err := keyring.Set(keyringService, keyringUser, token); err != nil {
		slog.Warn("keychain unavailable, falling back to file", "error", err)
		return saveRegistryTokenFile(token)
	}

	// Clean up the file copy if one exists.
	os.Remove(path.Join(getHomeDir(), tokenFileName))

	return nil
}

func getRegistryToken() (string, error) {
	// Try keychain first
	token, err := keyring.Get(keyringService, keyringUser)
	if err == nil && token != "" {
		return token, nil
	}

	// Fall back to file
	token, err = getRegistryTokenFile()
	if err != nil {
		return "", err
	}

	// Migrate to keychain
	if migrateErr := keyring.Set(keyringService, keyringUser, token); migrateErr == nil {
		slog.Info("migrated token from file to OS keychain")
		os.Remove(path.Join(getHomeDir(), tokenFileName))
	}

	return token, nil
}

func clearRegistryToken() error {
	if err := keyring.Delete(keyringService, keyringUser); err != nil {
		slog.Debug("no keychain entry to remove", "error", err)
	}
	if err := os.Remove(path.Join(getHomeDir(), tokenFileName)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing token file: %w", err)
	}
	fmt.Println("Token removed")
	return nil
}

func saveRegistryTokenFile(token string) error {
	tokenPath := path.Join(getHomeDir(), tokenFileName)
	return os.WriteFile(tokenPath, []byte(token), 0600)
}

func getRegistryTokenFile() (string, error) {
	tokenPath := path.Join(getHomeDir(), tokenFileName)
	b, err := os.ReadFile(tokenPath)
	if err != nil {
		return "", fmt.Errorf("reading token file %s: %w", tokenPath, err)
	}
	return strings.TrimSpace(string(b)), nil
}
