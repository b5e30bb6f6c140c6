package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"asset-registry/internal/config"
	"asset-registry/internal/logger"
	"asset-registry/internal/peercli"
	"asset-registry/internal/registry"
	"asset-registry/internal/statestore"
)

type app struct {
	usePeer bool
	dbPath  string

	log  *logger.Logger
	peer config.Peer
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "assetctl",
		Short: "Run asset registry transactions",
		Long: `assetctl runs asset registry transactions either against a local
leveldb world state, one committed batch per transaction, or against a Fabric
channel through the peer CLI.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load()
		},
	}

	root.PersistentFlags().BoolVar(&a.usePeer, "peer", false, "send transactions through the peer CLI")
	root.PersistentFlags().StringVar(&a.dbPath, "db", "", "local world state directory (default $ASSET_DB_PATH)")

	for _, tx := range registry.Transactions() {
		root.AddCommand(a.transactionCmd(tx))
	}
	root.AddCommand(a.listCmd())
	return root
}

func (a *app) load() error {
	var local config.Local
	if err := config.ParseEnv(&local); err != nil {
		return err
	}
	if a.dbPath == "" {
		a.dbPath = local.DBPath
	}
	if a.log == nil {
		lg, err := logger.New(local.LogMode)
		if err != nil {
			return fmt.Errorf("create logger: %w", err)
		}
		a.log = lg
	}
	if a.usePeer {
		if err := config.ParseEnv(&a.peer); err != nil {
			return err
		}
	}
	return nil
}

func (a *app) transactionCmd(tx registry.Transaction) *cobra.Command {
	use := tx.Name
	if len(tx.Params) > 0 {
		use += " <" + strings.Join(tx.Params, "> <") + ">"
	}
	return &cobra.Command{
		Use:   use,
		Short: tx.Description,
		Args:  cobra.ExactArgs(len(tx.Params)),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				out string
				err error
			)
			if a.usePeer {
				out, err = peercli.New(a.peer, a.log).Submit(cmd.Context(), tx.Name, args)
			} else {
				out, err = a.runLocal(tx, args)
			}
			if err != nil {
				return err
			}
			if out != "" {
				fmt.Fprintln(cmd.OutOrStdout(), out)
			}
			return nil
		},
	}
}

// runLocal executes tx in its own session. Read-only transactions are
// evaluated and their session discarded; the rest commit on success.
func (a *app) runLocal(tx registry.Transaction, args []string) (string, error) {
	db, err := statestore.OpenLevelDB(a.dbPath)
	if err != nil {
		return "", err
	}
	defer db.Close()

	reg := registry.New(a.log)
	var out string
	run := func(s *statestore.Session) error {
		var err error
		out, err = reg.Invoke(s, tx.Name, args)
		return err
	}

	if tx.ReadOnly {
		return out, db.View(run)
	}

	ev, err := db.Update(run)
	if err != nil {
		return "", err
	}
	if ev != nil {
		a.log.Info("event emitted", "name", ev.Name, "payload", string(ev.Payload))
	}
	return out, nil
}

func (a *app) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "transactions",
		Short: "List the available transactions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tMODE\tRETURNS\tPARAMS")
			for _, tx := range registry.Transactions() {
				mode := "submit"
				if tx.ReadOnly {
					mode = "evaluate"
				}
				returns := tx.Returns
				if returns == registry.ReturnsNothing {
					returns = "-"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", tx.Name, mode, returns, strings.Join(tx.Params, " "))
			}
			return w.Flush()
		},
	}
}
