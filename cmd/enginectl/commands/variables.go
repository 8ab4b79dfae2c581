package commands

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewVariablesCmd groups the get/set subcommands for a task's variable
// bucket, the way the teacher groups its resource verbs under one parent.
func NewVariablesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "variables",
		Short: "Inspect or set a task's variable bucket",
	}
	cmd.AddCommand(newVariablesGetCmd())
	cmd.AddCommand(newVariablesSetCmd())
	return cmd
}

func newVariablesGetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <entity-id> <task-id>",
		Short: "Print a pending task's variables",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := clientFromFlags(cmd)
			if err != nil {
				return err
			}
			path := fmt.Sprintf("/instances/%s/variables/%s", args[0], args[1])
			result, err := c.do("GET", path, nil)
			if err != nil {
				return err
			}
			return printResult(cmd, result)
		},
	}
	return cmd
}

func newVariablesSetCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "set <entity-id> <task-id>",
		Short: "Merge fields into a pending task's variables",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("read fields file: %w", err)
			}

			var fields map[string]any
			if err := json.Unmarshal(raw, &fields); err != nil {
				return fmt.Errorf("parse fields file: %w", err)
			}

			c, err := clientFromFlags(cmd)
			if err != nil {
				return err
			}
			path := fmt.Sprintf("/instances/%s/variables/%s", args[0], args[1])
			result, err := c.do("POST", path, fields)
			if err != nil {
				return err
			}
			return printResult(cmd, result)
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "path to a JSON object of fields to merge")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

// NewStateCmd groups the raw get/set state-bytes subcommands, used to move
// an instance's encoded state between processes.
func NewStateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "state",
		Short: "Read or overwrite an instance's raw encoded state",
	}
	cmd.AddCommand(newStateGetCmd())
	cmd.AddCommand(newStateSetCmd())
	return cmd
}

func newStateGetCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "get <entity-id>",
		Short: "Fetch an instance's encoded state bytes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := clientFromFlags(cmd)
			if err != nil {
				return err
			}
			result, err := c.do("GET", "/instances/"+args[0]+"/state", nil)
			if err != nil {
				return err
			}
			encoded, _ := result["state"].(string)
			data, err := base64.StdEncoding.DecodeString(encoded)
			if err != nil {
				return fmt.Errorf("decode state: %w", err)
			}
			if out == "" {
				return printResult(cmd, result)
			}
			return os.WriteFile(out, data, 0o644)
		},
	}

	cmd.Flags().StringVar(&out, "out", "", "write the decoded state bytes to this file instead of stdout")
	return cmd
}

func newStateSetCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "set <entity-id>",
		Short: "Overwrite an instance's encoded state bytes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("read state file: %w", err)
			}

			c, err := clientFromFlags(cmd)
			if err != nil {
				return err
			}
			result, err := c.do("POST", "/instances/"+args[0]+"/state", map[string]string{
				"state": base64.StdEncoding.EncodeToString(data),
			})
			if err != nil {
				return err
			}
			return printResult(cmd, result)
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "path to the encoded state bytes")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}
