// Copyright 2025 Blues Inc.  All rights reserved.
// Use of this source code is governed by licenses granted by the
// copyright holder including that found in the LICENSE file.

package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fwflash-cli/flash"
	"github.com/fwflash-cli/lib"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// GetFlashTimeout returns how long normal-mode transfers are retried
func GetFlashTimeout() time.Duration {
	if d := viper.GetDuration("flash_timeout"); d > 0 {
		return d
	}
	return flash.FlashTimeout
}

// SaveConfig writes the current viper configuration to disk
func SaveConfig() error {
	configPath := lib.ConfigPath()

	// Ensure the config directory exists
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Write the config file
	if err := viper.WriteConfigAs(configPath); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Display current configuration",
	Long:  `Display the current configuration, including the device, platform definitions and timeouts.`,
	Run: func(cmd *cobra.Command, args []string) {
		displayConfig()
	},
}

// configSetCmd stores a setting in the config file
var configSetCmd = &cobra.Command{
	Use:   "set KEY VALUE",
	Short: "Save a setting in the config file",
	Long:  `Save a setting (device, platforms, verbose, flash_timeout or yes) in the config file.`,
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]
		switch key {
		case "device", "platforms":
			viper.Set(key, value)
		case "verbose", "yes":
			viper.Set(key, value == "true")
		case "flash_timeout":
			d, err := time.ParseDuration(value)
			if err != nil {
				return fmt.Errorf("invalid flash_timeout: %w", err)
			}
			viper.Set(key, d.String())
		default:
			return fmt.Errorf("unknown setting %q", key)
		}
		return SaveConfig()
	},
}

func init() {
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}

// displayConfig prints the current configuration in a readable format
func displayConfig() {
	fmt.Println("\nCurrent Configuration:")
	fmt.Println("=====================")

	platforms := GetPlatforms()
	if platforms == "" {
		platforms = "(built-in)"
	}
	fmt.Printf("\nPlatforms: %s\n", platforms)
	fmt.Printf("Flash timeout: %s\n", GetFlashTimeout())

	// Display active flag values (only non-empty ones)
	fmt.Println("\nActive Settings:")

	settings := []struct {
		name  string
		value string
	}{
		{"device", GetDevice()},
		{"verbose", fmt.Sprint(GetVerbose())},
		{"yes", fmt.Sprint(GetYes())},
	}

	for _, setting := range settings {
		fmt.Printf("  %s: %s\n", setting.name, setting.value)
	}

	// Display config file location
	configFile := viper.ConfigFileUsed()
	if configFile == "" {
		configFile = lib.ConfigPath()
	}
	fmt.Printf("\nConfig file: %s\n\n", configFile)
}
