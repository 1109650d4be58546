package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"menuwise/internal/app"
	"menuwise/internal/menu"

	"github.com/spf13/cobra"
)

const recalcPageSize = 100

func newRecalculateCmd(open opener) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "recalculate [menu-id...]",
		Short: "Refresh stored menu health scores from live dish scores",
		Example: `  menuwise recalculate 3f0c...
  menuwise recalculate --all`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if all == (len(args) > 0) {
				return errors.New("pass menu ids or --all, not both")
			}

			a, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			if all {
				return recalculateAll(cmd.Context(), a, cmd.OutOrStdout())
			}
			for _, id := range args {
				if err := recalculateOne(cmd.Context(), a, id, cmd.OutOrStdout()); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Recalculate every menu")
	return cmd
}

func recalculateOne(ctx context.Context, a *app.App, id string, out io.Writer) error {
	m, err := a.Menus.Recalculate(ctx, id)
	if err != nil {
		return fmt.Errorf("menu %s: %w", id, err)
	}
	fmt.Fprintf(out, "%s\t%d\t%s\n", m.ID, m.AverageHealthScore, m.RestaurantName)
	return nil
}

func recalculateAll(ctx context.Context, a *app.App, out io.Writer) error {
	var ids []string
	for offset := 0; ; offset += recalcPageSize {
		page, err := a.Menus.List(ctx, menu.ListFilter{Limit: recalcPageSize, Offset: offset})
		if err != nil {
			return err
		}
		for _, m := range page {
			ids = append(ids, m.ID)
		}
		if len(page) < recalcPageSize {
			break
		}
	}

	for _, id := range ids {
		if err := recalculateOne(ctx, a, id, out); err != nil {
			return err
		}
	}
	fmt.Fprintf(out, "recalculated %d menus\n", len(ids))
	return nil
}
