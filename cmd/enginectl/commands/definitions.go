package commands

import (
	"encoding/base64"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewCreateDefinitionCmd loads a compiled definition archive from disk and
// registers it with the server.
func NewCreateDefinitionCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "create-definition",
		Short: "Register a compiled definition archive",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("read definition file: %w", err)
			}

			c, err := clientFromFlags(cmd)
			if err != nil {
				return err
			}

			result, err := c.do("POST", "/definitions", map[string]string{
				"data": base64.StdEncoding.EncodeToString(data),
			})
			if err != nil {
				return err
			}
			return printResult(cmd, result)
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "path to the compiled definition archive")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

// NewTasksCmd lists the user tasks of a registered definition.
func NewTasksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks <definition-id>",
		Short: "List a definition's user tasks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := clientFromFlags(cmd)
			if err != nil {
				return err
			}
			result, err := c.do("GET", "/definitions/"+args[0]+"/tasks", nil)
			if err != nil {
				return err
			}
			return printResult(cmd, result)
		},
	}
	return cmd
}
