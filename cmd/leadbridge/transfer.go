package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/xavierca1/leadbridge/internal/config"
	"github.com/xavierca1/leadbridge/internal/usecase"
)

func newExportCmd(opts *cliOptions) *cobra.Command {
	var format, out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the whole store as JSON or YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "json" && format != "yaml" {
				return fmt.Errorf("invalid --format %q (json or yaml)", format)
			}

			return withStore(cmd.Context(), opts, func(cfg config.Config, store *usecase.Store) error {
				data, err := encodeSnapshot(store.Snapshot(), format)
				if err != nil {
					return err
				}
				if out == "" {
					_, err = cmd.OutOrStdout().Write(data)
					return err
				}
				if err := os.WriteFile(out, data, 0o644); err != nil {
					return fmt.Errorf("write %s: %w", out, err)
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "exported to %s\n", out)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "json", "Output format: json or yaml")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Write to file instead of stdout")
	return cmd
}

func newImportCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file|->",
		Short: "Replace the whole store with an exported JSON or YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				raw []byte
				err error
			)
			if args[0] == "-" {
				raw, err = io.ReadAll(cmd.InOrStdin())
			} else {
				raw, err = os.ReadFile(args[0])
			}
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}

			snap, err := decodeSnapshot(raw, isYAML(args[0]))
			if err != nil {
				return err
			}

			return withStore(cmd.Context(), opts, func(cfg config.Config, store *usecase.Store) error {
				if err := store.Restore(cmd.Context(), snap); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "imported %d leads and %d tasks\n", len(snap.Leads), len(snap.Tasks))
				return nil
			})
		},
	}
}

func newResetCmd(opts *cliOptions) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Discard all data and restore the sample leads and tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("reset deletes every lead, task and meeting; pass --yes to confirm")
			}
			return withStore(cmd.Context(), opts, func(cfg config.Config, store *usecase.Store) error {
				if err := store.Reset(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "store reset to sample data")
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm the reset")
	return cmd
}

// encodeSnapshot renders YAML from the JSON form so both formats share the same keys.
func encodeSnapshot(snap usecase.Snapshot, format string) ([]byte, error) {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	if format == "json" {
		return append(data, '\n'), nil
	}

	var generic any
	if err := json.Unmarshal(data, &generic); err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	out, err := yaml.Marshal(generic)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot as yaml: %w", err)
	}
	return out, nil
}

func decodeSnapshot(raw []byte, fromYAML bool) (usecase.Snapshot, error) {
	var snap usecase.Snapshot

	if fromYAML {
		var generic any
		if err := yaml.Unmarshal(raw, &generic); err != nil {
			return snap, fmt.Errorf("decode yaml: %w", err)
		}
		data, err := json.Marshal(generic)
		if err != nil {
			return snap, fmt.Errorf("decode yaml: %w", err)
		}
		raw = data
	}

	if err := json.Unmarshal(raw, &snap); err != nil {
		return snap, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap, nil
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}
