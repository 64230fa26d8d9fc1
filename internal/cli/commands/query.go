package commands

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	// sqlite driver for index database queries.
	_ "modernc.org/sqlite"
)

// openIndexDBReadOnly opens the index database in read-only mode.
func openIndexDBReadOnly(path string) (*sql.DB, error) {
	return sql.Open("sqlite", path+"?mode=ro")
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// QueryOptions holds options for the query command.
type QueryOptions struct {
	Format string
	Input  string
	REPL   bool
}

// NewQueryCommand creates the query command.
func NewQueryCommand() *cobra.Command {
	opts := &QueryOptions{}

	cmd := &cobra.Command{
		Use:   "query [SQL]",
		Short: "Query the index database",
		Long: `Run SQL directly against the index database to inspect snapshots,
targets, and dependency edges. Supports multiple output formats for
scripting.

When invoked without arguments on a terminal, enters interactive REPL
mode.`,
		Example: `  # Count targets by kind
  depscope query "SELECT kind, COUNT(*) FROM targets GROUP BY kind"

  # List available tables
  depscope query tables

  # Show schema for a table
  depscope query schema targets

  # Output as JSON
  depscope query "SELECT * FROM snapshots" --format json

  # Interactive mode
  depscope query`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", "table", "Output format: table, json, csv, md")
	cmd.Flags().StringVarP(&opts.Input, "input", "i", "", "Read SQL from file")
	cmd.Flags().BoolVar(&opts.REPL, "repl", false, "Start the interactive REPL")

	cmd.AddCommand(newQueryTablesCommand(opts))
	cmd.AddCommand(newQuerySchemaCommand(opts))

	return cmd
}

func runQuery(cmd *cobra.Command, args []string, opts *QueryOptions) error {
	cmdCtx := NewCommandContext(cmd)
	statePath := cmdCtx.Cfg.StatePath

	if _, err := os.Stat(statePath); os.IsNotExist(err) {
		return fmt.Errorf("index database not found at %s (run 'depscope index' first)", statePath)
	}

	var sqlQuery string
	switch {
	case len(args) > 0:
		sqlQuery = strings.Join(args, " ")
	case opts.Input != "":
		content, err := os.ReadFile(opts.Input)
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}
		sqlQuery = string(content)
	case opts.REPL:
		return runQueryREPL(cmd, statePath, opts)
	case !isTerminal(os.Stdin):
		content, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		sqlQuery = string(content)
	default:
		return runQueryREPL(cmd, statePath, opts)
	}

	sqlQuery = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(sqlQuery), ";"))
	if sqlQuery == "" {
		return fmt.Errorf("empty query")
	}

	db, err := openIndexDBReadOnly(statePath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = db.Close() }()

	return executeAndRenderQuery(cmd.Context(), cmd, db, sqlQuery, opts.Format)
}

// executeAndRenderQuery runs a query and renders the results.
func executeAndRenderQuery(ctx context.Context, cmd *cobra.Command, db *sql.DB, query, format string) error {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()

	return renderResults(cmd.OutOrStdout(), rows, format)
}

func newQueryTablesCommand(opts *QueryOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tables",
		Short: "List the index database tables",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx := NewCommandContext(cmd)

			db, err := openIndexDBReadOnly(cmdCtx.Cfg.StatePath)
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer func() { _ = db.Close() }()

			return listTablesFromDB(cmd.Context(), cmd.OutOrStdout(), db, opts.Format)
		},
	}
}

func newQuerySchemaCommand(opts *QueryOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "schema <table>",
		Short: "Show the schema of an index table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx := NewCommandContext(cmd)

			db, err := openIndexDBReadOnly(cmdCtx.Cfg.StatePath)
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer func() { _ = db.Close() }()

			return showSchemaFromDB(cmd.Context(), cmd.OutOrStdout(), db, args[0], opts.Format)
		},
	}
}

func listTablesFromDB(ctx context.Context, w io.Writer, db *sql.DB, format string) error {
	rows, err := db.QueryContext(ctx, `
		SELECT name, type
		FROM sqlite_master
		WHERE type IN ('table', 'view')
		AND name NOT LIKE 'sqlite_%'
		AND name NOT LIKE 'goose_%'
		ORDER BY type DESC, name`)
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()

	return renderResults(w, rows, format)
}

func showSchemaFromDB(ctx context.Context, w io.Writer, db *sql.DB, tableName, format string) error {
	// table_info takes an identifier, not a bind parameter.
	if strings.ContainsAny(tableName, "\"';`()") {
		return fmt.Errorf("invalid table name %q", tableName)
	}

	rows, err := db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%q)", tableName))
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()

	return renderResults(w, rows, format)
}
