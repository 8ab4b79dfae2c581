package commands

import (
	"encoding/base64"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewStartCmd starts a fresh instance of a definition for an entity id.
func NewStartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start <definition-id> <entity-id>",
		Short: "Start a new instance",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := clientFromFlags(cmd)
			if err != nil {
				return err
			}
			path := fmt.Sprintf("/definitions/%s/instances/%s/start", args[0], args[1])
			result, err := c.do("POST", path, nil)
			if err != nil {
				return err
			}
			return printResult(cmd, result)
		},
	}
	return cmd
}

// NewLoadCmd loads (or lazily creates) an instance from persisted state.
func NewLoadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "load <definition-id> <entity-id>",
		Short: "Load an instance's persisted state",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := clientFromFlags(cmd)
			if err != nil {
				return err
			}
			path := fmt.Sprintf("/definitions/%s/instances/%s/load", args[0], args[1])
			result, err := c.do("POST", path, nil)
			if err != nil {
				return err
			}
			return printResult(cmd, result)
		},
	}
	return cmd
}

// NewRestoreCmd restores an instance from externally-held state bytes and
// correlates it with a remote id/version.
func NewRestoreCmd() *cobra.Command {
	var stateFile, remoteID string
	var remoteVersion int64

	cmd := &cobra.Command{
		Use:   "restore <definition-id> <entity-id>",
		Short: "Restore an instance from a state file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(stateFile)
			if err != nil {
				return fmt.Errorf("read state file: %w", err)
			}

			c, err := clientFromFlags(cmd)
			if err != nil {
				return err
			}

			path := fmt.Sprintf("/definitions/%s/instances/%s/restore", args[0], args[1])
			result, err := c.do("POST", path, map[string]any{
				"remote_id":      remoteID,
				"remote_version": remoteVersion,
				"state":          base64.StdEncoding.EncodeToString(data),
			})
			if err != nil {
				return err
			}
			return printResult(cmd, result)
		},
	}

	cmd.Flags().StringVar(&stateFile, "state-file", "", "path to the encoded state bytes")
	cmd.Flags().StringVar(&remoteID, "remote-id", "", "external correlation id")
	cmd.Flags().Int64Var(&remoteVersion, "remote-version", 0, "external correlation version")
	_ = cmd.MarkFlagRequired("state-file")

	return cmd
}

// NewCompleteCmd completes the given user task on a live instance.
func NewCompleteCmd() *cobra.Command {
	var taskID int32

	cmd := &cobra.Command{
		Use:   "complete <entity-id>",
		Short: "Complete a pending user task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := clientFromFlags(cmd)
			if err != nil {
				return err
			}
			result, err := c.do("POST", "/instances/"+args[0]+"/complete", map[string]int32{"task_id": taskID})
			if err != nil {
				return err
			}
			return printResult(cmd, result)
		},
	}

	cmd.Flags().Int32Var(&taskID, "task-id", 0, "task index to complete")
	_ = cmd.MarkFlagRequired("task-id")

	return cmd
}

// NewNavigateCmd jumps the instance's active task back to a previously
// visited user task.
func NewNavigateCmd() *cobra.Command {
	var taskID int32

	cmd := &cobra.Command{
		Use:   "navigate <entity-id>",
		Short: "Navigate an instance to a previously visited task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := clientFromFlags(cmd)
			if err != nil {
				return err
			}
			result, err := c.do("POST", "/instances/"+args[0]+"/navigate", map[string]int32{"task_id": taskID})
			if err != nil {
				return err
			}
			return printResult(cmd, result)
		},
	}

	cmd.Flags().Int32Var(&taskID, "task-id", 0, "task index to navigate to")
	_ = cmd.MarkFlagRequired("task-id")

	return cmd
}

// NewDestroyCmd removes an instance's persisted record.
func NewDestroyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "destroy <entity-id>",
		Short: "Delete an instance's persisted record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := clientFromFlags(cmd)
			if err != nil {
				return err
			}
			if _, err := c.do("DELETE", "/instances/"+args[0], nil); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "destroyed")
			return nil
		},
	}
	return cmd
}

// NewSnapshotCmd prints the server's snapshot of a live instance: active
// task, pending, visited and maybe-visited tasks, and the completed flag.
func NewSnapshotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot <entity-id>",
		Short: "Print an instance's active, pending and visited tasks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := clientFromFlags(cmd)
			if err != nil {
				return err
			}
			result, err := c.do("GET", "/instances/"+args[0]+"/snapshot", nil)
			if err != nil {
				return err
			}
			return printResult(cmd, result)
		},
	}
	return cmd
}
