// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 The openknob authors

package cmd

import (
	"os"

	"github.com/pelletier/go-toml/v2"
)

// DefaultSettingsPath is the default location of the persisted settings
// file, relative to the working directory.
const DefaultSettingsPath = "knobctl.toml"

// settingsFile is the persisted state written on every successful connect.
type settingsFile struct {
	LastAddress string `toml:"last_address"`
}

// loadLastAddress returns the persisted device address, or "" when the file
// is absent or unreadable. A damaged settings file is never fatal.
func loadLastAddress(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	var s settingsFile
	if err := toml.Unmarshal(data, &s); err != nil {
		return ""
	}
	return s.LastAddress
}

// saveLastAddress persists the device address for the next run.
func saveLastAddress(path, address string) error {
	data, err := toml.Marshal(settingsFile{LastAddress: address})
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
