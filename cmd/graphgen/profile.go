package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"graphgen/internal/middleware"
)

// Profile holds per-user defaults for the CLI. Unset fields fall through to
// the environment and then to built-in defaults.
type Profile struct {
	BackendURL string `toml:"backend_url,omitempty" json:"backend_url,omitempty" yaml:"backend_url,omitempty"`
	UseMock    *bool  `toml:"use_mock,omitempty" json:"use_mock,omitempty" yaml:"use_mock,omitempty"`
	Timeout    string `toml:"timeout,omitempty" json:"timeout,omitempty" yaml:"timeout,omitempty"`
	Locale     string `toml:"locale,omitempty" json:"locale,omitempty" yaml:"locale,omitempty"`
}

var profileKeys = []string{"backend_url", "use_mock", "timeout", "locale"}

func profilePath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "graphgen", "profile.toml"), nil
}

func loadProfile() (Profile, error) {
	path, err := profilePath()
	if err != nil {
		return Profile{}, err
	}
	var p Profile
	if _, err := toml.DecodeFile(path, &p); err != nil {
		if os.IsNotExist(err) {
			return Profile{}, nil
		}
		return Profile{}, fmt.Errorf("read profile %s: %w", path, err)
	}
	return p, nil
}

func saveProfile(p Profile) error {
	path, err := profilePath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(p)
}

// set applies one key/value pair, rejecting values the CLI could not use.
func (p *Profile) set(key, value string) error {
	value = strings.TrimSpace(value)
	switch key {
	case "backend_url":
		p.BackendURL = value
	case "use_mock":
		if value == "" {
			p.UseMock = nil
			return nil
		}
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("use_mock must be true or false, got %q", value)
		}
		p.UseMock = &b
	case "timeout":
		if value != "" {
			d, err := time.ParseDuration(value)
			if err != nil || d < 0 {
				return fmt.Errorf("timeout must be a non-negative duration such as 45s, got %q", value)
			}
		}
		p.Timeout = value
	case "locale":
		if value != "" {
			value = middleware.NormalizeLocale(value)
		}
		p.Locale = value
	default:
		return fmt.Errorf("unknown profile key %q (valid keys: %s)", key, strings.Join(profileKeys, ", "))
	}
	return nil
}

func newProfileCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show or change saved CLI defaults",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the saved profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProfile()
			if err != nil {
				return err
			}
			format, err := opts.format()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if ok, err := writeStructured(out, p, format); ok {
				return err
			}
			path, _ := profilePath()
			fmt.Fprintf(out, "# %s\n", path)
			return toml.NewEncoder(out).Encode(p)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Save a profile value (backend_url, use_mock, timeout, locale); an empty value clears it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProfile()
			if err != nil {
				return err
			}
			if err := p.set(args[0], args[1]); err != nil {
				return err
			}
			if err := saveProfile(p); err != nil {
				return fmt.Errorf("save profile: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s updated\n", args[0])
			return nil
		},
	})

	return cmd
}
