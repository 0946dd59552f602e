package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"weighttracker/internal/domain"
	"weighttracker/internal/menu"
)

func newAddCmd(opts *options) *cobra.Command {
	var at string
	cmd := &cobra.Command{
		Use:   "add <weight>",
		Short: "Record one weight without the menu",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := domain.ParseWeight(args[0])
			if err != nil {
				return err
			}
			var when time.Time
			if at != "" {
				if when, err = time.Parse(time.RFC3339, at); err != nil {
					return fmt.Errorf("--at: %w", err)
				}
			}

			s, err := openSession(cmd, opts)
			if err != nil {
				return err
			}
			defer s.close()

			e, err := s.store.Add(cmd.Context(), v, when)
			if errors.Is(err, domain.ErrPersistence) {
				return fmt.Errorf("%s %s was not saved: %w", domain.FormatWeight(v), s.cfg.Unit, err)
			}
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Recorded %s %s at %s\n",
				domain.FormatWeight(e.Value), s.cfg.Unit, e.CreatedAt.Local().Format(time.RFC3339))
			return err
		},
	}
	cmd.Flags().StringVar(&at, "at", "", "measurement time (RFC 3339), defaults to now")
	return cmd
}

func newListCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print all records with trend columns",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, opts)
			if err != nil {
				return err
			}
			defer s.close()

			menu.Render(cmd.OutOrStdout(), s.store.Trend(), s.store.Summary(), s.cfg.Unit)
			return nil
		},
	}
}
