package service

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"postboard/app/config"
	"postboard/app/models"

	"github.com/dgraph-io/badger/v4"
	"github.com/spf13/cobra"
)

var errCancelled = errors.New("operation cancelled")

// dbTool runs maintenance on the badger store in dir.
type dbTool struct {
	dir       string
	backupDir string
	in        *bufio.Reader
	out       io.Writer
	logger    *slog.Logger
}

func newDBCommand() *cobra.Command {
	var dataDir, backupDir string
	tool := func(cmd *cobra.Command) (*dbTool, error) {
		cfg, err := config.Load()
		if err != nil {
			return nil, err
		}
		if cmd.Flags().Changed("data-dir") {
			cfg.DataDir = dataDir
		}
		return &dbTool{
			dir:       cfg.DataDir,
			backupDir: backupDir,
			in:        bufio.NewReader(cmd.InOrStdin()),
			out:       cmd.OutOrStdout(),
			logger:    newLogger(cfg, cmd.ErrOrStderr()),
		}, nil
	}

	cmd := &cobra.Command{
		Use:   "db",
		Short: "Maintain the local badger store",
	}
	cmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "Badger data directory (DATA_DIR)")
	cmd.PersistentFlags().StringVar(&backupDir, "backup-dir", "data/backups", "Directory for backup files")

	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Initialize a new empty database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := tool(cmd)
			if err != nil {
				return err
			}
			return t.initDB()
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "clean",
		Short: "Remove the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := tool(cmd)
			if err != nil {
				return err
			}
			return t.clean()
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "backup",
		Short: "Create a backup of the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := tool(cmd)
			if err != nil {
				return err
			}
			_, err = t.backup()
			return err
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "restore <file>",
		Short: "Restore the database from a backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := tool(cmd)
			if err != nil {
				return err
			}
			return t.restore(args[0])
		},
	})
	return cmd
}

func (t *dbTool) confirm(prompt string) bool {
	fmt.Fprintf(t.out, "%s [y/N] ", prompt)
	response, _ := t.in.ReadString('\n')
	response = strings.TrimSpace(response)
	return response == "y" || response == "Y"
}

func (t *dbTool) open() (*badger.DB, error) {
	return openBadger(t.dir, t.logger)
}

// clean removes the database.
func (t *dbTool) clean() error {
	if _, err := os.Stat(t.dir); os.IsNotExist(err) {
		fmt.Fprintln(t.out, "Database is already clean (does not exist)")
		return nil
	}

	if !t.confirm("Are you sure you want to clean the database? This cannot be undone.") {
		fmt.Fprintln(t.out, "Operation cancelled")
		return nil
	}

	if err := os.RemoveAll(t.dir); err != nil {
		return fmt.Errorf("failed to clean database: %w", err)
	}
	fmt.Fprintln(t.out, "Database cleaned successfully")
	return nil
}

// initDB initializes a new empty database.
func (t *dbTool) initDB() error {
	if _, err := os.Stat(t.dir); err == nil {
		fmt.Fprintln(t.out, "Database already exists. Use 'db clean' first if you want to reinitialize.")
		return nil
	}

	db, err := t.open()
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	fmt.Fprintln(t.out, "Database initialized successfully")
	return nil
}

// backup writes a full backup and returns its path.
func (t *dbTool) backup() (string, error) {
	if _, err := os.Stat(t.dir); os.IsNotExist(err) {
		fmt.Fprintln(t.out, "No database exists to backup")
		return "", nil
	}

	if err := os.MkdirAll(t.backupDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	db, err := t.open()
	if err != nil {
		return "", fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	backupFile := filepath.Join(t.backupDir, fmt.Sprintf("backup_%d.db", time.Now().UnixNano()))
	f, err := os.Create(backupFile)
	if err != nil {
		return "", fmt.Errorf("failed to create backup file: %w", err)
	}
	defer f.Close()

	if _, err := db.Backup(f, 0); err != nil {
		return "", fmt.Errorf("failed to backup database: %w", err)
	}

	fmt.Fprintf(t.out, "Database backed up successfully to %s\n", backupFile)
	return backupFile, nil
}

// restore replaces the database with the contents of backupFile.
func (t *dbTool) restore(backupFile string) (err error) {
	fi, err := os.Stat(backupFile)
	if os.IsNotExist(err) {
		return fmt.Errorf("backup file does not exist: %s", backupFile)
	}
	if err != nil {
		return fmt.Errorf("failed to stat backup file: %w", err)
	}
	if fi.Size() == 0 {
		return fmt.Errorf("backup file is empty: %s", backupFile)
	}

	if _, err := os.Stat(t.dir); err == nil {
		if !t.confirm("Existing database found. Do you want to replace it?") {
			fmt.Fprintln(t.out, "Operation cancelled")
			return errCancelled
		}
		if err := os.RemoveAll(t.dir); err != nil {
			return fmt.Errorf("failed to remove existing database: %w", err)
		}
	}

	db, err := t.open()
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	f, err := os.Open(backupFile)
	if err != nil {
		return fmt.Errorf("failed to open backup file: %w", err)
	}
	defer f.Close()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic occurred during restore: %v", r)
		}
	}()
	if err := db.Load(f, 4); err != nil {
		return fmt.Errorf("failed to restore database: %w", err)
	}

	fmt.Fprintln(t.out, "Database restored successfully")
	return nil
}

func newUsersCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage author profiles in the identity store",
	}

	var id, name, email string
	put := &cobra.Command{
		Use:   "put",
		Short: "Create or replace an author profile",
		Long: `Create or replace the profile used for author summaries.

The id must match the id claim carried in the author's tokens.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			user := &models.User{ID: models.NewIdentity(id), Name: strings.TrimSpace(name), Email: strings.TrimSpace(email)}
			return putUser(cmd.Context(), cfg, newLogger(cfg, cmd.ErrOrStderr()), user, cmd.OutOrStdout())
		},
	}
	put.Flags().StringVar(&id, "id", "", "User id (token id claim)")
	put.Flags().StringVar(&name, "name", "", "Display name")
	put.Flags().StringVar(&email, "email", "", "Email address")
	_ = put.MarkFlagRequired("id")
	_ = put.MarkFlagRequired("name")
	_ = put.MarkFlagRequired("email")

	cmd.AddCommand(put)
	return cmd
}

// putUser validates user and upserts it into the configured store.
func putUser(ctx context.Context, cfg config.Config, logger *slog.Logger, user *models.User, out io.Writer) error {
	if err := user.Validate(); err != nil {
		return fmt.Errorf("invalid user: %w", err)
	}

	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.close(context.Background()); err != nil {
			logger.Error("close store", "event", "store_close_failed", "error", err)
		}
	}()

	if err := st.users.Upsert(ctx, user); err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	fmt.Fprintf(out, "User %s saved\n", user.ID)
	return nil
}
