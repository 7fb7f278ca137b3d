// Command studentctl imports student files and manages import groups from the
// command line, against the same database as the HTTP server.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"student-records/common"
	"student-records/students"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "studentctl",
		Short:         "Import and manage student records",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newImportCmd(), newAnalyzeCmd(), newGroupsCmd())
	return root
}

// openStore connects using the server's environment configuration
func openStore() (*students.Store, *common.Config, error) {
	cfg := common.LoadConfig()

	db, err := common.Init(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	if err := students.AutoMigrate(db); err != nil {
		return nil, nil, fmt.Errorf("migrate: %w", err)
	}
	return students.NewStore(db), cfg, nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}
