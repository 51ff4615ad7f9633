package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/algorithmia/pkg/config"
	"github.com/matzehuels/algorithmia/pkg/errors"
)

// configCommand creates the config command with its subcommands.
func (c *CLI) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show and edit configuration profiles",
	}

	cmd.AddCommand(c.configPathCommand())
	cmd.AddCommand(c.configShowCommand())
	cmd.AddCommand(c.configSetCommand())

	return cmd
}

func (c *CLI) configPathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the config file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := c.configFile()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
}

func (c *CLI) configShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective settings of the active profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := c.loadProfile()
			if err != nil {
				return err
			}

			name := c.profile
			if name == "" {
				name = config.DefaultProfile
			}

			w := cmd.OutOrStdout()
			fmt.Fprintln(w, StyleTitle.Render("Profile "+name))
			printKeyValue(w, "api key", orNone(p.MaskedKey()))
			printKeyValue(w, "api address", orNone(p.APIAddress))
			printKeyValue(w, "retries", strconv.Itoa(p.MaxRetries))
			if p.Timeout > 0 {
				printKeyValue(w, "timeout", p.Timeout.String())
			}
			switch {
			case !p.Cache.Enabled:
				printKeyValue(w, "cache", "off")
			case p.Cache.Redis != "":
				printKeyValue(w, "cache", "redis "+p.Cache.Redis)
			default:
				printKeyValue(w, "cache", "file")
			}

			if p.APIKey == "" {
				fmt.Fprintln(w)
				printNextStep(w, "Set an API key", "algo config set api_key <key>")
			}
			return nil
		},
	}
}

// configKeys lists the settings accepted by "config set".
var configKeys = []string{"api_key", "api_address", "max_retries", "timeout", "cache.enabled", "cache.ttl", "cache.redis"}

func (c *CLI) configSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:       "set <key> <value>",
		Short:     "Set a value in the active profile",
		ValidArgs: configKeys,
		Args:      cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := c.configFile()
			if err != nil {
				return err
			}
			f, err := config.Load(path)
			if err != nil {
				return err
			}

			p := f.Profiles[profileName(c.profile)]
			if err := setProfileValue(&p, args[0], args[1]); err != nil {
				return err
			}
			f.SetProfile(c.profile, p)
			if err := f.Save(path); err != nil {
				return fmt.Errorf("save config: %w", err)
			}

			printSuccess(cmd.OutOrStdout(), "Set %s in profile %s", StyleHighlight.Render(args[0]), profileName(c.profile))
			printDetail(cmd.OutOrStdout(), "File: %s", path)
			return nil
		},
	}
}

func setProfileValue(p *config.Profile, key, value string) error {
	var err error
	switch key {
	case "api_key":
		p.APIKey = value
	case "api_address":
		if err := errors.ValidateURL(value); err != nil {
			return err
		}
		p.APIAddress = value
	case "max_retries":
		p.MaxRetries, err = strconv.Atoi(value)
	case "timeout":
		p.Timeout, err = time.ParseDuration(value)
	case "cache.enabled":
		p.Cache.Enabled, err = strconv.ParseBool(value)
	case "cache.ttl":
		p.Cache.TTL, err = time.ParseDuration(value)
	case "cache.redis":
		p.Cache.Redis = value
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown setting %q (valid: %v)", key, configKeys)
	}
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid value for %s", key)
	}
	return nil
}

func profileName(name string) string {
	if name == "" {
		return config.DefaultProfile
	}
	return name
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
