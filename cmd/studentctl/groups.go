package main

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"student-records/students"
)

func newGroupsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "groups",
		Short: "List or delete import groups",
	}
	cmd.AddCommand(newGroupsListCmd(), newGroupsDeleteCmd())
	return cmd
}

func newGroupsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List groups with their student counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, err := openStore()
			if err != nil {
				return err
			}

			groups, err := store.ListGroups(cmd.Context())
			if err != nil {
				return err
			}

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.SetHeader([]string{"ID", "Name", "Students", "Created"})
			for _, g := range groups {
				table.Append([]string{
					strconv.FormatUint(uint64(g.ID), 10),
					g.Name,
					strconv.FormatInt(g.StudentCount, 10),
					g.CreatedAt.Format(time.DateTime),
				})
			}
			table.Render()
			return nil
		},
	}
}

func newGroupsDeleteCmd() *cobra.Command {
	var id uint

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete a group, its students and their transfer requests",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, err := openStore()
			if err != nil {
				return err
			}

			if err := store.DeleteGroup(cmd.Context(), id); err != nil {
				if errors.Is(err, students.ErrNotFound) {
					return fmt.Errorf("group %d not found", id)
				}
				return err
			}

			color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "Deleted group %d\n", id)
			return nil
		},
	}

	cmd.Flags().UintVar(&id, "id", 0, "Group ID (required)")
	_ = cmd.MarkFlagRequired("id")

	return cmd
}
