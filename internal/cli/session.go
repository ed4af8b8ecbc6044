package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/roach88/eacctl/internal/eac"
	"github.com/roach88/eacctl/internal/journal"
	"github.com/roach88/eacctl/internal/preset"
	"github.com/roach88/eacctl/internal/store"
)

// storeOptions are the flags shared by database-touching commands.
type storeOptions struct {
	Database  string
	Backup    bool
	Force     bool
	Journal   string
	NoJournal bool
}

// addStoreFlags registers --database and, for mutating commands, the
// backup and journal flags.
func addStoreFlags(cmd *cobra.Command, opts *storeOptions, mutating bool) {
	cmd.Flags().StringVar(&opts.Database, "database", "", "store data file (the .crc sidecar sits next to it)")
	_ = cmd.MarkFlagRequired("database")
	if mutating {
		cmd.Flags().BoolVar(&opts.Backup, "backup", true, "back up the store pair before modifying it")
		cmd.Flags().BoolVar(&opts.Force, "force", false, "overwrite existing backups")
		cmd.Flags().StringVar(&opts.Journal, "journal", "", "journal file (default <database>.history.db)")
		cmd.Flags().BoolVar(&opts.NoJournal, "no-journal", false, "do not record this operation in the journal")
	}
}

// journalPath resolves the journal location for this invocation.
func (o *storeOptions) journalPath() string {
	if o.Journal != "" {
		return o.Journal
	}
	return o.Database + ".history.db"
}

// session bundles the open store, the manager over it, and the
// optional journal for one command invocation.
type session struct {
	store   *store.Store
	manager *eac.Manager
	journal *journal.Journal
	log     *zap.Logger
	backups []string
}

// openSession opens the store and builds a manager over it. Mutating
// commands get a backup hook that copies the pair before the first
// store access and reports the copies. A journal that cannot be opened
// is a logged warning, never a command failure.
func openSession(rootOpts *RootOptions, opts *storeOptions, presets *preset.Catalog, f *OutputFormatter, mutating bool) (*session, error) {
	log := rootOpts.logger()

	st, err := store.Open(opts.Database)
	if err != nil {
		return nil, err
	}
	sess := &session{store: st, log: log}

	mgrOpts := []eac.Option{eac.WithLogger(log)}
	if mutating && opts.Backup {
		mgrOpts = append(mgrOpts, eac.WithBackup(func() error {
			dataBackup, crcBackup, err := st.Backup(opts.Force)
			if err != nil {
				return err
			}
			sess.backups = []string{dataBackup, crcBackup}
			if f.Format != "json" {
				fmt.Fprintf(f.Writer, "Created backups: %s, %s\n", dataBackup, crcBackup)
			}
			return nil
		}))
	}
	sess.manager = eac.NewManager(st, presets, mgrOpts...)

	if mutating && !opts.NoJournal {
		j, err := journal.Open(opts.journalPath(), log)
		if err != nil {
			log.Warn("journal unavailable",
				zap.String("path", opts.journalPath()),
				zap.Error(err))
		} else {
			sess.journal = j
		}
	}
	return sess, nil
}

// record appends a journal entry for a mutating command. Best effort.
func (s *session) record(entry journal.Entry) {
	if s.journal == nil {
		return
	}
	if err := s.journal.Append(context.Background(), entry); err != nil {
		s.log.Warn("journal append failed", zap.Error(err))
	}
}

func (s *session) close() {
	if s.journal == nil {
		return
	}
	if err := s.journal.Close(); err != nil {
		s.log.Warn("journal close failed", zap.Error(err))
	}
}

// outcome converts an operation result to journal terms.
func outcome(err error) (string, string) {
	if err != nil {
		return journal.OutcomeError, err.Error()
	}
	return journal.OutcomeOK, ""
}

// loadPresets returns the built-in catalog, extended by the optional
// catalog file.
func loadPresets(path string) (*preset.Catalog, error) {
	catalog := preset.Builtin()
	if path == "" {
		return catalog, nil
	}
	if err := catalog.LoadFile(path); err != nil {
		return nil, fmt.Errorf("load presets %s: %w", path, err)
	}
	return catalog, nil
}
