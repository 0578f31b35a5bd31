package cli

import (
	"context"
	"errors"
	"testing"

	"github.com/alexanderramin/focustrack/internal/config"
	"github.com/alexanderramin/focustrack/internal/eventsource"
	"github.com/alexanderramin/focustrack/internal/testutil"
	"github.com/coder/quartz"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedSource replays a fixed event sequence and returns.
type scriptedSource struct {
	events func(l eventsource.Listener)
	err    error
}

func (s scriptedSource) Run(ctx context.Context, l eventsource.Listener) error {
	s.events(l)
	return s.err
}

func sourceFactory(src eventsource.Source) SourceFactory {
	return func(*config.Config, quartz.Clock, zerolog.Logger) (eventsource.Source, error) {
		return src, nil
	}
}

func TestTrackCmd_RecordsFocusAndClosesSession(t *testing.T) {
	app, _ := testApp(t)
	app.NewSource = sourceFactory(scriptedSource{events: func(l eventsource.Listener) {
		l.OnAppChanged(eventsource.AppIdentity{PID: 7, Name: "Code"}, "main.go")
		l.OnTick()
		l.OnWindowChanged("util.go")
	}})

	_, err := execute(t, app, "track")
	require.NoError(t, err)

	ctx := context.Background()
	code, err := app.Store.GetApplication(ctx, "Code")
	require.NoError(t, err)
	windows, err := app.Store.GetWindows(ctx, code.ID)
	require.NoError(t, err)
	assert.Len(t, windows, 2)

	open, err := app.Store.GetOpenSessions(ctx)
	require.NoError(t, err)
	assert.Empty(t, open)
}

func TestTrackCmd_ReconcilesOrphans(t *testing.T) {
	app, _ := testApp(t)
	ctx := context.Background()

	a, _, err := app.Store.GetOrCreateApplication(ctx, "Code")
	require.NoError(t, err)
	w, _, err := app.Store.GetOrCreateWindow(ctx, a.ID, "main.go")
	require.NoError(t, err)
	orphan, err := app.Store.CreateSession(ctx, w.ID)
	require.NoError(t, err)

	app.NewSource = sourceFactory(scriptedSource{events: func(eventsource.Listener) {}})
	_, err = execute(t, app, "track")
	require.NoError(t, err)

	sessions, err := app.Store.GetSessions(ctx, w.ID)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, orphan.ID, sessions[0].ID)
	require.NotNil(t, sessions[0].EndTime)
	assert.True(t, sessions[0].StartTime.Equal(*sessions[0].EndTime))
	assert.Zero(t, sessions[0].Duration)
}

func TestTrackCmd_SourceError(t *testing.T) {
	app, _ := testApp(t)
	boom := errors.New("display not available")
	app.NewSource = sourceFactory(scriptedSource{events: func(eventsource.Listener) {}, err: boom})

	_, err := execute(t, app, "track")
	assert.ErrorIs(t, err, boom)
}

func TestTrackCmd_MetricsServer(t *testing.T) {
	app, _ := testApp(t)
	app.Config.Metrics.Addr = "127.0.0.1:0"
	app.NewSource = sourceFactory(scriptedSource{events: func(eventsource.Listener) {}})

	_, err := execute(t, app, "track")
	require.NoError(t, err)
}

func TestTrackCmd_UnknownSource(t *testing.T) {
	app, _ := testApp(t)
	app.Config.Source.Kind = "carrier-pigeon"

	_, err := execute(t, app, "track")
	assert.EqualError(t, err, `unknown source kind "carrier-pigeon"`)
}

func TestTrackCmd_StartTimeFromClock(t *testing.T) {
	app, _ := testApp(t)
	app.NewSource = sourceFactory(scriptedSource{events: func(l eventsource.Listener) {
		l.OnAppChanged(eventsource.AppIdentity{Name: "Code"}, "main.go")
	}})

	_, err := execute(t, app, "track")
	require.NoError(t, err)

	code, err := app.Store.GetApplication(context.Background(), "Code")
	require.NoError(t, err)
	assert.True(t, testutil.Epoch.Equal(code.FirstSeen))
}
