// Copyright 2025 Blues Inc.  All rights reserved.
// Use of this source code is governed by licenses granted by the
// copyright holder including that found in the LICENSE file.

package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fwflash-cli/flash"
	"github.com/fwflash-cli/lib"
	"github.com/golang/glog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// CLI Version - Set by ldflags during build/release
var version = "development"

// Global flags
var (
	flagDevice    string
	flagPlatforms string
	flagVerbose   bool
	flagYes       bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "fwflash",
	Short: "fwflash - Flash firmware modules onto devices",
	Long: `fwflash is a command-line tool for flashing firmware modules onto devices.

It orders modules by their dependencies, decides which ones go over DFU and
which over control requests, and moves the device between modes as needed.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if GetVerbose() {
			flag.Set("logtostderr", "true")
			flag.Set("v", "1")
		}
	},
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	// Interrupts cancel the flash, which still resets and closes the device
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	glog.Flush()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		stop()
		os.Exit(1)
	}
}

func init() {
	// Initialize config before running any command
	cobra.OnInitialize(initConfig)

	// Global flags available to all commands
	rootCmd.PersistentFlags().StringVarP(&flagDevice, "device", "d", "", "Device directory, or a comma-separated list of them")
	rootCmd.PersistentFlags().StringVar(&flagPlatforms, "platforms", "", "Platform definitions file to use instead of the built-in one")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Log device requests and retries")
	rootCmd.PersistentFlags().BoolVarP(&flagYes, "yes", "y", false, "Don't ask for confirmation")

	// glog registers its flags on the standard flag set
	rootCmd.PersistentFlags().AddGoFlagSet(flag.CommandLine)

	// Bind flags to Viper (allows flags to override config file values)
	viper.BindPFlag("device", rootCmd.PersistentFlags().Lookup("device"))
	viper.BindPFlag("platforms", rootCmd.PersistentFlags().Lookup("platforms"))
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	viper.BindPFlag("yes", rootCmd.PersistentFlags().Lookup("yes"))

	// Enable environment variable support (FWFLASH_DEVICE, FWFLASH_FLASH_TIMEOUT, etc.)
	viper.SetEnvPrefix("FWFLASH")
	viper.AutomaticEnv()
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	configDir, err := lib.ConfigDir()
	if err != nil {
		fmt.Printf("Error getting home directory: %s\n", err)
		os.Exit(1)
	}

	viper.AddConfigPath(configDir)
	viper.SetConfigName(lib.ConfigName)
	viper.SetConfigType(lib.ConfigType)

	// Set defaults
	viper.SetDefault("flash_timeout", flash.FlashTimeout)

	// Attempt to read config file
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; create with defaults
			if err := SaveConfig(); err != nil {
				fmt.Printf("Error creating config file: %s\n", err)
				os.Exit(1)
			}
		} else {
			// Config file was found but another error was produced
			fmt.Printf("Error reading config file: %s\n", err)
			os.Exit(1)
		}
	}
}

// Helper functions to get flag values from Viper
// These allow flags, config file, and environment variables to work together

func GetDevice() string {
	return viper.GetString("device")
}

func GetPlatforms() string {
	return viper.GetString("platforms")
}

func GetVerbose() bool {
	return viper.GetBool("verbose")
}

func GetYes() bool {
	return viper.GetBool("yes")
}
