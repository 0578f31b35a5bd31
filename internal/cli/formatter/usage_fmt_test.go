package formatter

import (
	"testing"
	"time"

	"github.com/alexanderramin/focustrack/internal/domain"
	"github.com/stretchr/testify/assert"
)

var (
	devCat  = &domain.Category{ID: "dev", Name: "Development", Color: "#83a598"}
	mailCat = &domain.Category{ID: "mail", Name: "Productivity", Color: "#fabd2f"}
	defCat  = &domain.Category{ID: domain.UncategorizedID, Name: "Uncategorized", Color: "#928374", IsDefault: true}
)

func TestFormatApplications(t *testing.T) {
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	apps := []*domain.Application{
		{Name: "Code", CategoryID: "dev", TotalTimeSpent: time.Hour + 5*time.Minute, VisitCount: 12, LastSeen: now.Add(-3 * time.Minute)},
		{Name: "Thunderbird", CategoryID: "mail", TotalTimeSpent: 45 * time.Second, VisitCount: 1, LastSeen: now.Add(-2 * time.Hour)},
	}

	out := stripANSI(FormatApplications(apps, NewCategoryIndex([]*domain.Category{devCat, mailCat}), now))

	assert.Contains(t, out, "APPLICATIONS")
	assert.Contains(t, out, "Code")
	assert.Contains(t, out, "● Development")
	assert.Contains(t, out, "1h 5m")
	assert.Contains(t, out, "3 minutes ago")
	assert.Contains(t, out, "2 hours ago")
	assert.Contains(t, out, "Total 1h 5m across 2 apps")
}

func TestFormatApplications_Empty(t *testing.T) {
	out := stripANSI(FormatApplications(nil, nil, time.Now()))
	assert.Contains(t, out, "No applications tracked yet.")
}

func TestFormatWindows(t *testing.T) {
	app := &domain.Application{Name: "Code", TotalTimeSpent: 10 * time.Minute}
	windows := []*domain.Window{
		{Title: "main.go", TotalTimeSpent: 7 * time.Minute, VisitCount: 3},
		{Title: "a very long window title that keeps going well past the column width limit", TotalTimeSpent: 3 * time.Minute, VisitCount: 1},
	}

	out := stripANSI(FormatWindows(app, windows, 2*time.Minute))

	assert.Contains(t, out, "CODE")
	assert.Contains(t, out, "Total 10m")
	assert.Contains(t, out, "Today 2m")
	assert.Contains(t, out, "main.go")
	assert.Contains(t, out, "…")
	assert.NotContains(t, out, "column width limit")

	empty := stripANSI(FormatWindows(app, nil, 0))
	assert.Contains(t, empty, "No windows recorded.")
}

func TestFormatToday(t *testing.T) {
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	code := &domain.Application{Name: "Code", CategoryID: "dev"}
	mail := &domain.Application{Name: "Thunderbird", CategoryID: "mail"}
	cats := NewCategoryIndex([]*domain.Category{devCat, mailCat})

	out := stripANSI(FormatToday(day, []AppTime{
		{App: code, Time: 30 * time.Minute},
		{App: mail, Time: 30 * time.Minute},
	}, time.Hour, cats))

	assert.Contains(t, out, "TODAY MON MAR 2")
	assert.Contains(t, out, " 50%")
	assert.Contains(t, out, "Total 1h")

	none := stripANSI(FormatToday(day, nil, 0, cats))
	assert.Contains(t, none, "Nothing tracked today.")
}

func TestFormatCategoryStats(t *testing.T) {
	out := stripANSI(FormatCategoryStats([]domain.CategoryStat{
		{Category: *defCat, TotalTime: 0, AppCount: 0},
		{Category: *devCat, TotalTime: 3 * time.Hour, AppCount: 2},
		{Category: *mailCat, TotalTime: time.Hour, AppCount: 1},
	}))

	assert.Contains(t, out, "● Development")
	assert.Contains(t, out, "2 apps")
	assert.Contains(t, out, " 75%")
	assert.Contains(t, out, " 25%")
	assert.Contains(t, out, "  0%")
	assert.Contains(t, out, "Total 4h")
}

func TestFormatWeek(t *testing.T) {
	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	days := make([]domain.DayCategoryTotals, 7)
	for i := range days {
		days[i] = domain.DayCategoryTotals{Day: start.AddDate(0, 0, i), Totals: map[string]time.Duration{}}
	}
	days[0].Totals["dev"] = 2 * time.Hour
	days[2].Totals["dev"] = 30 * time.Minute
	days[2].Totals["mail"] = 15 * time.Minute

	out := stripANSI(FormatWeek(days, []*domain.Category{defCat, devCat, mailCat}))

	assert.Contains(t, out, "WEEK OF MAR 2, 2026")
	assert.Contains(t, out, "DEVELOPMENT")
	assert.Contains(t, out, "PRODUCTIVITY")
	assert.NotContains(t, out, "UNCATEGORIZED", "categories without time are omitted")
	assert.Contains(t, out, "Mon 02")
	assert.Contains(t, out, "Sun 08")
	assert.Contains(t, out, "45m")
	assert.Contains(t, out, "Week total 2h 45m")
}

func TestFormatCategories(t *testing.T) {
	out := stripANSI(FormatCategories([]*domain.Category{defCat, devCat}, map[string]int{"dev": 4}))

	assert.Contains(t, out, "Uncategorized (default)")
	assert.Contains(t, out, "#83a598")
	assert.Contains(t, out, "4")
}
