package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"fastfox/internal/config"
	"fastfox/internal/deps"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigValidateCommand(ctx))
	configCmd.AddCommand(newConfigInitCommand())

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a sample configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = defaultPath
			} else {
				expanded, err := config.ExpandPath(target)
				if err != nil {
					return fmt.Errorf("resolve config path: %w", err)
				}
				target = expanded
			}

			dir := filepath.Dir(target)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create config directory %q: %w", dir, err)
			}

			if !overwrite {
				if _, err := os.Stat(target); err == nil {
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				} else if !os.IsNotExist(err) {
					return fmt.Errorf("check config path: %w", err)
				}
			}

			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("create sample config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Set llm.api_key (or export GROQ_API_KEY) and caption.api_token (or export HUGGINGFACE_API_TOKEN) before organizing.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:         "validate",
		Short:       "Validate configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, exists, err := config.Load(ctx.configFlagValue())
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return fmt.Errorf("ensure directories: %w", err)
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			fmt.Fprintf(out, "Config path: %s\n", path)
			if !exists {
				fmt.Fprintln(out, "Config file did not exist; defaults were used")
			}
			fmt.Fprintln(out, renderStatusLine("LLM provider", statusInfo, cfg.LLM.Provider+" ("+cfg.LLM.Model+")", colorize))
			fmt.Fprintln(out, renderStatusLine("Caption provider", statusInfo, cfg.Caption.Provider+" ("+cfg.Caption.Model+")", colorize))
			fmt.Fprintln(out, renderStatusLine("Legacy bridge", statusInfo, yesNo(cfg.Bridge.Enabled), colorize))
			for _, status := range deps.CheckBinaries(deps.ForConfig(cfg)) {
				kind := statusOK
				if !status.Available {
					kind = statusWarn
				}
				fmt.Fprintln(out, renderStatusLine(status.Name, kind, status.Detail, colorize))
			}
			fmt.Fprintln(out, renderStatusLine("Record history", statusInfo, yesNo(cfg.Organize.RecordHistory), colorize))
			if err := cfg.ValidateCredentials(); err != nil {
				fmt.Fprintln(out, renderStatusLine("Credentials", statusWarn, err.Error(), colorize))
			} else {
				fmt.Fprintln(out, renderStatusLine("Credentials", statusOK, "", colorize))
			}
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
}
