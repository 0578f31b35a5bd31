package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alexanderramin/focustrack/internal/cli/formatter"
	"github.com/alexanderramin/focustrack/internal/domain"
	"github.com/alexanderramin/focustrack/internal/repository"
	"github.com/spf13/cobra"
)

func newCategoriesCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "categories",
		Aliases: []string{"category", "cat"},
		Short:   "Manage application categories",
	}

	cmd.AddCommand(
		newCategoriesListCmd(app),
		newCategoriesAddCmd(app),
		newCategoriesDeleteCmd(app),
		newCategoriesAssignCmd(app),
	)

	return cmd
}

func newCategoriesListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			groups, err := app.Store.GetApplicationsByCategory(cmd.Context())
			if err != nil {
				return err
			}

			cats := make([]*domain.Category, 0, len(groups))
			counts := make(map[string]int, len(groups))
			for _, g := range groups {
				c := g.Category
				cats = append(cats, &c)
				counts[c.ID] = len(g.Applications)
			}

			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatCategories(cats, counts))
			return nil
		},
	}
}

func newCategoriesAddCmd(app *App) *cobra.Command {
	var icon, color string

	cmd := &cobra.Command{
		Use:   "add [name]",
		Short: "Create a category",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := categoryInput{Icon: icon, Color: color}
			if len(args) == 1 {
				in.Name = args[0]
			}

			if in.Name == "" {
				if !app.IsInteractive() {
					return fmt.Errorf("category name is required")
				}
				if err := categoryForm(&in).Run(); err != nil {
					return err
				}
			}
			if err := validateColor(in.Color); err != nil {
				return fmt.Errorf("invalid --color: %w", err)
			}

			c, err := app.Store.CreateCategory(cmd.Context(), in.Name, strings.TrimSpace(in.Icon), strings.TrimSpace(in.Color))
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s Created category %s\n",
				formatter.StyleGreen.Render("✔"), formatter.CategoryBadge(c.Name, c.Color))
			return nil
		},
	}

	cmd.Flags().StringVar(&icon, "icon", "", "Icon name")
	cmd.Flags().StringVar(&color, "color", "", "Hex color such as #83a598")

	return cmd
}

func newCategoriesDeleteCmd(app *App) *cobra.Command {
	var reassign string

	cmd := &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a category, moving its applications elsewhere",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := resolveCategory(ctx, app, args[0])
			if err != nil {
				return err
			}

			var target string
			if reassign != "" {
				r, err := resolveCategory(ctx, app, reassign)
				if err != nil {
					return err
				}
				target = r.ID
			}

			if err := app.Store.DeleteCategory(ctx, c.ID, target); err != nil {
				if errors.Is(err, repository.ErrDefaultCategory) {
					return fmt.Errorf("%s is the default category and cannot be deleted", c.Name)
				}
				return err
			}

			dest := domain.CategoryUncategorized
			if reassign != "" {
				dest = reassign
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Deleted category %s, applications moved to %s\n",
				formatter.StyleGreen.Render("✔"), c.Name, dest)
			return nil
		},
	}

	cmd.Flags().StringVar(&reassign, "reassign", "", "Category that receives the deleted category's applications")

	return cmd
}

func newCategoriesAssignCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "assign <app> <category>",
		Short: "Move an application to a category",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := resolveApplication(ctx, app, args[0])
			if err != nil {
				return err
			}
			c, err := resolveCategory(ctx, app, args[1])
			if err != nil {
				return err
			}
			if err := app.Store.SetApplicationCategory(ctx, a.ID, c.ID); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s %s is now in %s\n",
				formatter.StyleGreen.Render("✔"), a.Name, formatter.CategoryBadge(c.Name, c.Color))
			return nil
		},
	}
}
