package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tidwall/jsonc"
)

// profileConfig is one named registry profile from the config file.
type profileConfig struct {
	BaseURL    string `json:"base_url"`
	APIKey     string `json:"api_key"`
	APIVersion int    `json:"api_version,omitempty"`
}

// signingKeyPair names a signing key and the local private key that
// produces signatures for it.
type signingKeyPair struct {
	SigningKeyPRN  string `json:"signing_key_prn"`
	PrivateKeyPath string `json:"signing_key_private_path"`
}

// configFile is the on-disk config shape. The file may contain comments
// and trailing commas (JSONC).
type configFile struct {
	DefaultProfile  string                    `json:"default_profile,omitempty"`
	Profiles        map[string]profileConfig  `json:"profiles"`
	SigningKeyPairs map[string]signingKeyPair `json:"signing_key_pairs,omitempty"`
}

// defaultConfigPath is ~/.config/hoist/config.json.
func defaultConfigPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config dir: %w", err)
	}
	return filepath.Join(dir, "hoist", "config.json"), nil
}

// readConfig parses the config file. A missing file yields an empty
// config and ok=false rather than an error.
func readConfig(path string) (configFile, string, bool, error) {
	if path == "" {
		var err error
		path, err = defaultConfigPath()
		if err != nil {
			return configFile{}, "", false, err
		}
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return configFile{}, path, false, nil
	}
	if err != nil {
		return configFile{}, path, false, fmt.Errorf("read config: %w", err)
	}

	var cfg configFile
	if err := json.Unmarshal(jsonc.ToJSON(data), &cfg); err != nil {
		return configFile{}, path, false, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, path, true, nil
}

// loadProfile returns the named profile, or the file's default profile
// when name is empty. A missing file with no requested profile resolves
// to an empty profile so flag-only invocations work without any config.
func loadProfile(path, name string) (profileConfig, error) {
	cfg, resolved, ok, err := readConfig(path)
	if err != nil {
		return profileConfig{}, err
	}
	if !ok {
		if name == "" {
			return profileConfig{}, nil
		}
		return profileConfig{}, fmt.Errorf("profile %q requested but %s does not exist", name, resolved)
	}

	if name == "" {
		name = cfg.DefaultProfile
	}
	if name == "" {
		return profileConfig{}, nil
	}
	profile, found := cfg.Profiles[name]
	if !found {
		return profileConfig{}, fmt.Errorf("profile %q not found in %s", name, resolved)
	}
	return profile, nil
}

// loadSigningKeyPair returns the named signing key pair from the config
// file. Unlike profiles, a requested pair must exist.
func loadSigningKeyPair(path, name string) (signingKeyPair, error) {
	cfg, resolved, ok, err := readConfig(path)
	if err != nil {
		return signingKeyPair{}, err
	}
	if !ok {
		return signingKeyPair{}, fmt.Errorf("signing key pair %q requested but %s does not exist", name, resolved)
	}
	pair, found := cfg.SigningKeyPairs[name]
	if !found {
		return signingKeyPair{}, fmt.Errorf("signing key pair %q not found in %s", name, resolved)
	}
	if pair.SigningKeyPRN == "" || pair.PrivateKeyPath == "" {
		return signingKeyPair{}, fmt.Errorf("signing key pair %q is missing a key PRN or private key path", name)
	}
	return pair, nil
}
