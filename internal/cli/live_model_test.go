package cli

import (
	"testing"

	core "github.com/alexanderramin/focustrack/internal/app"
	"github.com/alexanderramin/focustrack/internal/teatest"
	"github.com/stretchr/testify/assert"
)

func newLiveDriver(t *testing.T, initial *core.View) *teatest.Driver {
	t.Helper()
	updates := make(chan core.View, 1)
	if initial != nil {
		updates <- *initial
	}
	t.Cleanup(func() { close(updates) })

	d := teatest.New(t, newLiveModel(updates), teatest.WithSize(100, 30))
	d.DrainInit()
	return d
}

func TestLiveModel_WaitsForFirstView(t *testing.T) {
	d := newLiveDriver(t, nil)
	assert.Contains(t, stripANSI(d.View()), "Waiting for focus events")
}

func TestLiveModel_RendersActiveSession(t *testing.T) {
	d := newLiveDriver(t, &core.View{
		ActiveApp:       "Code",
		ActiveWindow:    "main.go",
		ElapsedText:     "1:05",
		CategoryName:    "Development",
		CategoryColor:   "#83a598",
		RecentApps:      []string{"Code", "Thunderbird"},
		TrackingEnabled: true,
	})

	out := stripANSI(d.View())
	assert.Contains(t, out, "Code")
	assert.Contains(t, out, "main.go")
	assert.Contains(t, out, "1:05")
	assert.Contains(t, out, "● Development")
	assert.Contains(t, out, "RECENT")
	assert.Contains(t, out, "Thunderbird")
	assert.NotContains(t, out, "paused")
}

func TestLiveModel_IdleAndUpdates(t *testing.T) {
	d := newLiveDriver(t, &core.View{ActiveApp: "Code", ElapsedText: "0:10", TrackingEnabled: true})

	d.Send(viewUpdateMsg(core.View{ActiveApp: "Code", ElapsedText: "0:20", Idle: true, TrackingEnabled: true}))
	out := stripANSI(d.View())
	assert.Contains(t, out, "0:20  paused (idle)")

	d.Send(viewUpdateMsg(core.View{TrackingEnabled: true, ElapsedText: "0:00"}))
	assert.Contains(t, stripANSI(d.View()), "No active application")
}

func TestLiveModel_TrackingDisabled(t *testing.T) {
	d := newLiveDriver(t, &core.View{ActiveApp: "Code"})
	assert.Contains(t, stripANSI(d.View()), "Tracking disabled")
}

func TestLiveModel_QuitKeys(t *testing.T) {
	d := newLiveDriver(t, &core.View{TrackingEnabled: true})
	d.PressKey('q')
	assert.True(t, d.Quitting)

	d = newLiveDriver(t, &core.View{TrackingEnabled: true})
	d.PressCtrlC()
	assert.True(t, d.Quitting)
}

func TestLiveModel_QuitsWhenCoordinatorStops(t *testing.T) {
	updates := make(chan core.View)
	close(updates)

	d := teatest.New(t, newLiveModel(updates))
	d.DrainInit()
	assert.True(t, d.Quitting)
}
