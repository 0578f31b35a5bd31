package cli

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/alexanderramin/focustrack/internal/cli/formatter"
	"github.com/alexanderramin/focustrack/internal/domain"
	"github.com/alexanderramin/focustrack/internal/repository"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func newAppsCmd(app *App) *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "apps",
		Short: "List tracked applications by total time",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			apps, err := app.Store.GetAllApplications(ctx)
			if err != nil {
				return err
			}
			cats, err := app.Store.ListCategories(ctx)
			if err != nil {
				return err
			}
			if category != "" {
				c, err := resolveCategory(ctx, app, category)
				if err != nil {
					return err
				}
				apps = filterApps(apps, func(a *domain.Application) bool { return a.CategoryID == c.ID })
			}

			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatApplications(apps, formatter.NewCategoryIndex(cats), app.Clock.Now()))
			return nil
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "Only show applications in this category")

	return cmd
}

func newWindowsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "windows <app>",
		Short: "Show window titles recorded for an application",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := resolveApplication(ctx, app, args[0])
			if err != nil {
				return err
			}
			windows, err := app.Store.GetWindows(ctx, a.ID)
			if err != nil {
				return err
			}
			today, err := app.Store.GetTodayTime(ctx, a.ID)
			if err != nil {
				return err
			}

			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatWindows(a, windows, today))
			return nil
		},
	}
}

func newTodayCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "today",
		Short: "Show time per application for today",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			now := app.Clock.Now()

			apps, err := app.Store.GetAllApplications(ctx)
			if err != nil {
				return err
			}
			cats, err := app.Store.ListCategories(ctx)
			if err != nil {
				return err
			}

			var entries []formatter.AppTime
			for _, a := range apps {
				d, err := app.Store.GetTodayTime(ctx, a.ID)
				if err != nil {
					return err
				}
				if d > 0 {
					entries = append(entries, formatter.AppTime{App: a, Time: d})
				}
			}
			sort.SliceStable(entries, func(i, j int) bool { return entries[i].Time > entries[j].Time })

			total, err := app.Store.GetTime(ctx, now)
			if err != nil {
				return err
			}

			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatToday(domain.StartOfDay(now), entries, total, formatter.NewCategoryIndex(cats)))
			return nil
		},
	}
}

func newStatsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show all-time totals per category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			stats, err := app.Store.GetCategoryStats(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatCategoryStats(stats))
			return nil
		},
	}
}

func newWeekCmd(app *App) *cobra.Command {
	var start dateValue

	cmd := &cobra.Command{
		Use:   "week",
		Short: "Show daily category totals for a week",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			from := weekStart(app.Clock.Now())
			if !start.t.IsZero() {
				from = start.t
			}

			days, err := app.Store.GetCategoryTotalsForWeek(ctx, from)
			if err != nil {
				return err
			}
			cats, err := app.Store.ListCategories(ctx)
			if err != nil {
				return err
			}

			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatWeek(days, cats))
			return nil
		},
	}

	cmd.Flags().Var(&start, "start", "First day of the week (YYYY-MM-DD, default this Monday)")

	return cmd
}

const dateLayout = "2006-01-02"

// dateValue is a pflag.Value holding a local calendar date.
type dateValue struct {
	t time.Time
}

var _ pflag.Value = (*dateValue)(nil)

func (d *dateValue) String() string {
	if d.t.IsZero() {
		return ""
	}
	return d.t.Format(dateLayout)
}

func (d *dateValue) Set(s string) error {
	t, err := time.ParseInLocation(dateLayout, s, time.Local)
	if err != nil {
		return fmt.Errorf("use YYYY-MM-DD")
	}
	d.t = t
	return nil
}

func (d *dateValue) Type() string { return "date" }

// weekStart returns local midnight of the Monday on or before t.
func weekStart(t time.Time) time.Time {
	day := domain.StartOfDay(t)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

func resolveApplication(ctx context.Context, app *App, name string) (*domain.Application, error) {
	a, err := app.Store.GetApplication(ctx, name)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("application %q not found", name)
	}
	return a, err
}

func resolveCategory(ctx context.Context, app *App, name string) (*domain.Category, error) {
	c, err := app.Store.GetCategoryByName(ctx, name)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("category %q not found", name)
	}
	return c, err
}

func filterApps(apps []*domain.Application, keep func(*domain.Application) bool) []*domain.Application {
	out := apps[:0:0]
	for _, a := range apps {
		if keep(a) {
			out = append(out, a)
		}
	}
	return out
}
