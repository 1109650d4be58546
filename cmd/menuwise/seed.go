package main

import (
	"context"
	"fmt"
	"os"

	"menuwise/internal/app"
	"menuwise/internal/auth"
	"menuwise/internal/dish"
	"menuwise/internal/menu"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// fixtures is the seed file layout. Menus name their uploader by the
// email of a user in the same file.
type fixtures struct {
	Users []auth.RegisterInput `yaml:"users"`
	Menus []menuFixture        `yaml:"menus"`
}

type menuFixture struct {
	UploadedBy string       `yaml:"uploadedBy"`
	Menu       menu.Input   `yaml:"menu"`
	Dishes     []dish.Input `yaml:"dishes"`
}

type seedResult struct {
	Users  int
	Menus  int
	Dishes int
}

func newSeedCmd(open opener) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:     "seed",
		Short:   "Load users, menus and dishes from a YAML fixture file",
		Example: `  STORE_DRIVER=postgres menuwise seed -f fixtures.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("read fixtures: %w", err)
			}

			var fx fixtures
			if err := yaml.Unmarshal(raw, &fx); err != nil {
				return fmt.Errorf("parse fixtures: %w", err)
			}

			a, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := seed(cmd.Context(), a, fx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d users, %d menus, %d dishes\n", res.Users, res.Menus, res.Dishes)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML fixture file")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

// seed goes through the services so every dish is scored and every menu
// average is computed the same way the API does it.
func seed(ctx context.Context, a *app.App, fx fixtures) (seedResult, error) {
	var res seedResult
	owners := make(map[string]string, len(fx.Users))

	for _, in := range fx.Users {
		u, _, err := a.Auth.Register(ctx, in)
		if err != nil {
			return res, fmt.Errorf("user %s: %w", in.Email, err)
		}
		owners[u.Email] = u.ID
		res.Users++
	}

	for i, mf := range fx.Menus {
		ownerID, err := resolveOwner(ctx, a, owners, mf.UploadedBy)
		if err != nil {
			return res, fmt.Errorf("menu %d: %w", i, err)
		}

		m, err := a.Menus.Create(ctx, ownerID, mf.Menu)
		if err != nil {
			return res, fmt.Errorf("menu %d: %w", i, err)
		}
		res.Menus++

		for j, din := range mf.Dishes {
			din.MenuID = &m.ID
			d, err := a.Dishes.Create(ctx, ownerID, din)
			if err != nil {
				return res, fmt.Errorf("menu %d dish %d: %w", i, j, err)
			}
			if _, err := a.Menus.AttachDish(ctx, m.ID, d.ID); err != nil {
				return res, fmt.Errorf("menu %d dish %d: %w", i, j, err)
			}
			res.Dishes++
		}

		if _, err := a.Menus.Recalculate(ctx, m.ID); err != nil {
			return res, fmt.Errorf("menu %d: %w", i, err)
		}
	}
	return res, nil
}

// resolveOwner maps an email onto a user id, falling back to users that
// already exist in the store.
func resolveOwner(ctx context.Context, a *app.App, owners map[string]string, email string) (string, error) {
	if id, ok := owners[email]; ok {
		return id, nil
	}
	u, err := a.Users.FindByEmail(ctx, email)
	if err != nil {
		return "", fmt.Errorf("uploader %q: %w", email, err)
	}
	owners[email] = u.ID
	return u.ID, nil
}
