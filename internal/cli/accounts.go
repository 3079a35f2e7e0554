package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/mcoot/gomoku-server/internal/api/response"
	"github.com/mcoot/gomoku-server/internal/dependencies/clock"
	"github.com/mcoot/gomoku-server/internal/factory"
	"github.com/mcoot/gomoku-server/internal/model"
	"github.com/mcoot/gomoku-server/internal/services/mail"
)

func newAccountsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Inspect stored accounts without a running server",
	}

	cmd.AddCommand(newAccountsListCmd())
	cmd.AddCommand(newAccountsShowCmd())

	return cmd
}

func newAccountsListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List every stored account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			accounts, err := loadAccounts(cmd)
			if err != nil {
				return err
			}

			result := make([]response.Account, len(accounts))
			for i, a := range accounts {
				result[i] = response.AccountFromModel(a)
			}
			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
	addStorageFlags(cmd.Flags())
	return cmd
}

func newAccountsShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <name>",
		Short: "Show one stored account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			accounts, messages, err := loadStored(cmd, true)
			if err != nil {
				return err
			}

			mailbox := mail.New(clock.New(), slog.New(slog.DiscardHandler))
			mailbox.Load(messages)
			for _, a := range accounts {
				if a.Name == args[0] {
					resp := response.AccountFromModel(a)
					resp.UnreadMail = mailbox.Unread(a.Name)
					NewOutput(cfg.Output, cmd.OutOrStdout()).Print(resp)
					return nil
				}
			}
			return fmt.Errorf("%w: %s", model.ErrAccountNotFound, args[0])
		},
	}
	addStorageFlags(cmd.Flags())
	return cmd
}

// loadAccounts reads every account from the configured store, sorted by name
func loadAccounts(cmd *cobra.Command) ([]model.Account, error) {
	accounts, _, err := loadStored(cmd, false)
	return accounts, err
}

// loadStored reads the accounts, and the mail when withMail is set
func loadStored(cmd *cobra.Command, withMail bool) (_ []model.Account, _ []model.Mail, err error) {
	serverCfg, err := loadServerConfig(cmd)
	if err != nil {
		return nil, nil, err
	}

	store, err := factory.OpenStorage(serverCfg.Storage, false)
	if err != nil {
		return nil, nil, fmt.Errorf("open storage: %w", err)
	}
	defer func() { err = errors.Join(err, store.Close()) }()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	accounts, err := store.LoadAccounts(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load accounts: %w", err)
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].Name < accounts[j].Name })

	if !withMail {
		return accounts, nil, nil
	}
	messages, err := store.LoadMail(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load mail: %w", err)
	}
	return accounts, messages, nil
}

// addStorageFlags registers the flags selecting the persistence backend
func addStorageFlags(flags *pflag.FlagSet) {
	flags.String("storage", "file", "Storage backend: memory, file, redis, sqlite")
	flags.String("data-dir", ".", "Directory holding the flat data files")
	flags.String("redis-url", "redis://localhost:6379/0", "Redis URL for the redis backend")
	flags.String("sqlite-path", "gomoku.db", "Database file for the sqlite backend")
}
