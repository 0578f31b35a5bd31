package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/alexanderramin/focustrack/internal/config"
	"github.com/alexanderramin/focustrack/internal/domain"
	"github.com/alexanderramin/focustrack/internal/eventsource"
	"github.com/alexanderramin/focustrack/internal/service"
	"github.com/alexanderramin/focustrack/internal/store"
	"github.com/alexanderramin/focustrack/internal/testutil"
	"github.com/coder/quartz"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

func stripANSI(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}

func testConfig() *config.Config {
	return &config.Config{
		Storage: config.StorageConfig{Path: ":memory:"},
		Tracking: config.TrackingConfig{
			IdleThreshold:    5 * time.Minute,
			PollInterval:     time.Second,
			TickInterval:     time.Second,
			RecentAppsLimit:  5,
			ReconcileOrphans: true,
		},
		Source: config.SourceConfig{Kind: config.SourceX11},
	}
}

// testApp wires an App over an in-memory store and a mock clock at
// testutil.Epoch.
func testApp(t *testing.T) (*App, *quartz.Mock) {
	t.Helper()
	clock := quartz.NewMock(t)
	clock.Set(testutil.Epoch)

	st := store.New(testutil.NewTestDB(t), store.Options{Clock: clock, Logger: zerolog.Nop()})
	t.Cleanup(func() { _ = st.Close() })

	return &App{
		Config: testConfig(),
		Logger: zerolog.Nop(),
		Store:  st,
		Clock:  clock,
	}, clock
}

// seedUsage records Code for 65s then Thunderbird for 30s.
func seedUsage(t *testing.T, app *App, clock *quartz.Mock) {
	t.Helper()
	ctx := context.Background()
	m := service.NewSessionManager(app.Store, clock, zerolog.Nop())

	require.NoError(t, m.StartNewSession(ctx, "Code", "main.go"))
	clock.Advance(65 * time.Second)
	require.NoError(t, m.StartNewSession(ctx, "Thunderbird", "Inbox"))
	clock.Advance(30 * time.Second)
	m.EndCurrentSession(ctx)
	require.NoError(t, app.Store.Flush(ctx))
}

func execute(t *testing.T, app *App, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd(app)
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return stripANSI(buf.String()), err
}

func TestAppsCmd(t *testing.T) {
	app, clock := testApp(t)
	seedUsage(t, app, clock)

	out, err := execute(t, app, "apps")
	require.NoError(t, err)
	assert.Contains(t, out, "Code")
	assert.Contains(t, out, "1m 5s")
	assert.Contains(t, out, "● Development")
	assert.Contains(t, out, "Thunderbird")
	assert.Contains(t, out, "● Productivity")
	assert.Contains(t, out, "30s")
	assert.Contains(t, out, "Total 1m 35s across 2 apps")

	out, err = execute(t, app, "apps", "--category", "Development")
	require.NoError(t, err)
	assert.Contains(t, out, "Code")
	assert.NotContains(t, out, "Thunderbird")

	_, err = execute(t, app, "apps", "--category", "Nope")
	assert.EqualError(t, err, `category "Nope" not found`)
}

func TestWindowsCmd(t *testing.T) {
	app, clock := testApp(t)
	seedUsage(t, app, clock)

	out, err := execute(t, app, "windows", "Code")
	require.NoError(t, err)
	assert.Contains(t, out, "main.go")
	assert.Contains(t, out, "Today 1m 5s")

	_, err = execute(t, app, "windows", "Missing")
	assert.EqualError(t, err, `application "Missing" not found`)

	_, err = execute(t, app, "windows")
	assert.Error(t, err)
}

func TestTodayCmd(t *testing.T) {
	app, clock := testApp(t)

	out, err := execute(t, app, "today")
	require.NoError(t, err)
	assert.Contains(t, out, "Nothing tracked today.")

	seedUsage(t, app, clock)
	out, err = execute(t, app, "today")
	require.NoError(t, err)
	assert.Contains(t, out, "TODAY MON MAR 2")
	assert.Contains(t, out, "Code")
	assert.Contains(t, out, "Total 1m 35s")
	assert.Less(t, bytes.Index([]byte(out), []byte("Code")), bytes.Index([]byte(out), []byte("Thunderbird")),
		"most used first")
}

func TestStatsCmd(t *testing.T) {
	app, clock := testApp(t)
	seedUsage(t, app, clock)

	out, err := execute(t, app, "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "● Development")
	assert.Contains(t, out, "● Uncategorized")
	assert.Contains(t, out, "Total 1m 35s")
}

func TestWeekCmd(t *testing.T) {
	app, clock := testApp(t)
	seedUsage(t, app, clock)

	out, err := execute(t, app, "week")
	require.NoError(t, err)
	assert.Contains(t, out, "WEEK OF MAR 2, 2026")
	assert.Contains(t, out, "DEVELOPMENT")
	assert.Contains(t, out, "Week total 1m 35s")

	out, err = execute(t, app, "week", "--start", "2026-02-23")
	require.NoError(t, err)
	assert.Contains(t, out, "WEEK OF FEB 23, 2026")
	assert.Contains(t, out, "Week total 0s")

	_, err = execute(t, app, "week", "--start", "03/02/2026")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "use YYYY-MM-DD")
}

func TestWeekStart(t *testing.T) {
	monday := time.Date(2026, 3, 2, 0, 0, 0, 0, time.Local)
	tests := []struct {
		name string
		in   time.Time
	}{
		{"monday morning", time.Date(2026, 3, 2, 9, 0, 0, 0, time.Local)},
		{"wednesday", time.Date(2026, 3, 4, 18, 30, 0, 0, time.Local)},
		{"sunday night", time.Date(2026, 3, 8, 23, 59, 0, 0, time.Local)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, monday.Equal(weekStart(tt.in)), "got %s", weekStart(tt.in))
		})
	}
}

func TestCategoriesListAndAdd(t *testing.T) {
	app, clock := testApp(t)
	seedUsage(t, app, clock)

	out, err := execute(t, app, "categories", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Uncategorized (default)")
	assert.Contains(t, out, "Development")

	out, err = execute(t, app, "categories", "add", "Reading", "--icon", "book", "--color", "#00ff00")
	require.NoError(t, err)
	assert.Contains(t, out, "Created category ● Reading")

	c, err := app.Store.GetCategoryByName(context.Background(), "Reading")
	require.NoError(t, err)
	assert.Equal(t, "book", c.Icon)
	assert.Equal(t, "#00ff00", c.Color)

	_, err = execute(t, app, "categories", "add")
	assert.EqualError(t, err, "category name is required")

	_, err = execute(t, app, "categories", "add", "Bad", "--color", "green")
	assert.EqualError(t, err, "invalid --color: use #RRGGBB format")
}

func TestCategoriesDelete(t *testing.T) {
	app, clock := testApp(t)
	seedUsage(t, app, clock)
	ctx := context.Background()

	out, err := execute(t, app, "categories", "delete", "Development", "--reassign", "Work")
	require.NoError(t, err)
	assert.Contains(t, out, "applications moved to Work")

	work, err := app.Store.GetCategoryByName(ctx, domain.CategoryWork)
	require.NoError(t, err)
	code, err := app.Store.GetApplication(ctx, "Code")
	require.NoError(t, err)
	assert.Equal(t, work.ID, code.CategoryID)

	out, err = execute(t, app, "categories", "delete", "Productivity")
	require.NoError(t, err)
	assert.Contains(t, out, "applications moved to Uncategorized")
	mail, err := app.Store.GetApplication(ctx, "Thunderbird")
	require.NoError(t, err)
	assert.Equal(t, domain.UncategorizedID, mail.CategoryID)

	_, err = execute(t, app, "categories", "delete", "Uncategorized")
	assert.EqualError(t, err, "Uncategorized is the default category and cannot be deleted")

	_, err = execute(t, app, "categories", "delete", "Work", "--reassign", "Nope")
	assert.EqualError(t, err, `category "Nope" not found`)
}

func TestCategoriesAssign(t *testing.T) {
	app, clock := testApp(t)
	seedUsage(t, app, clock)

	out, err := execute(t, app, "categories", "assign", "Code", "Work")
	require.NoError(t, err)
	assert.Contains(t, out, "Code is now in ● Work")

	out, err = execute(t, app, "apps", "--category", "Work")
	require.NoError(t, err)
	assert.Contains(t, out, "Code")

	_, err = execute(t, app, "categories", "assign", "Missing", "Work")
	assert.EqualError(t, err, `application "Missing" not found`)
}

func TestSetupFromConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("logging:\n  level: error\n  format: json\n"), 0o644))
	dbPath := filepath.Join(dir, "data", "usage.db")

	app := &App{}
	out, err := execute(t, app, "--config", cfgPath, "--db", dbPath, "apps")
	require.NoError(t, err)
	assert.Contains(t, out, "No applications tracked yet.")

	assert.Equal(t, dbPath, app.Config.Storage.Path)
	assert.Equal(t, "error", app.Config.Logging.Level)
	assert.FileExists(t, dbPath)
	assert.NoError(t, app.Close(), "store already closed by the command")
}

func TestSetupBadConfig(t *testing.T) {
	_, err := execute(t, &App{}, "--config", filepath.Join(t.TempDir(), "missing.yaml"), "apps")
	assert.Error(t, err)
}

func TestDisabledStoreReportsUnavailable(t *testing.T) {
	app := &App{
		Config: testConfig(),
		Logger: zerolog.Nop(),
		Store:  store.Disabled(zerolog.Nop()),
		Clock:  quartz.NewMock(t),
	}
	_, err := execute(t, app, "apps")
	assert.ErrorIs(t, err, store.ErrUnavailable)
}

func TestDefaultSource(t *testing.T) {
	cfg := testConfig()
	logger := zerolog.Nop()
	clock := quartz.NewMock(t)

	src, err := DefaultSource(cfg, clock, logger)
	require.NoError(t, err)
	assert.IsType(t, &eventsource.Poller{}, src)

	cfg.Source.Kind = config.SourceFeed
	_, err = DefaultSource(cfg, clock, logger)
	assert.Error(t, err, "feed needs a path")

	cfg.Source.FeedPath = filepath.Join(t.TempDir(), "focus.jsonl")
	src, err = DefaultSource(cfg, clock, logger)
	require.NoError(t, err)
	assert.IsType(t, &eventsource.Feed{}, src)

	cfg.Source.Kind = "wayland"
	_, err = DefaultSource(cfg, clock, logger)
	assert.EqualError(t, err, `unknown source kind "wayland"`)
}
