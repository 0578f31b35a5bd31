package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/focustrack/internal/domain"
)

const (
	titleWidth = 60
	shareWidth = 20
)

// CategoryIndex resolves category IDs for display.
type CategoryIndex map[string]domain.Category

func NewCategoryIndex(cats []*domain.Category) CategoryIndex {
	idx := make(CategoryIndex, len(cats))
	for _, c := range cats {
		idx[c.ID] = *c
	}
	return idx
}

func (idx CategoryIndex) badge(id string) string {
	c, ok := idx[id]
	if !ok {
		return CategoryBadge("", "")
	}
	return CategoryBadge(c.Name, c.Color)
}

// FormatApplications renders the tracked applications table.
func FormatApplications(apps []*domain.Application, cats CategoryIndex, now time.Time) string {
	if len(apps) == 0 {
		return Dim("No applications tracked yet.") + "\n"
	}

	rows := make([][]string, 0, len(apps))
	var total time.Duration
	for _, a := range apps {
		total += a.TotalTimeSpent
		rows = append(rows, []string{
			Bold(a.Name),
			cats.badge(a.CategoryID),
			FormatDuration(a.TotalTimeSpent),
			fmt.Sprintf("%d", a.VisitCount),
			Dim(LastSeen(a.LastSeen, now)),
		})
	}

	var b strings.Builder
	b.WriteString(Header("Applications"))
	b.WriteString("\n\n")
	b.WriteString(RenderTable([]string{"APP", "CATEGORY", "TIME", "VISITS", "LAST SEEN"}, rows, 2, 3))
	b.WriteString(fmt.Sprintf("\n%s %s across %s\n", Dim("Total"), Bold(FormatDuration(total)), Plural(len(apps), "app")))
	return b.String()
}

// FormatWindows renders one application's windows.
func FormatWindows(app *domain.Application, windows []*domain.Window, today time.Duration) string {
	var b strings.Builder
	b.WriteString(Header(app.Name))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("%s %s   %s %s\n\n",
		Dim("Total"), Bold(FormatDuration(app.TotalTimeSpent)),
		Dim("Today"), Bold(FormatDuration(today))))

	if len(windows) == 0 {
		b.WriteString(Dim("No windows recorded.") + "\n")
		return b.String()
	}

	rows := make([][]string, 0, len(windows))
	for _, w := range windows {
		rows = append(rows, []string{
			Truncate(w.Title, titleWidth),
			FormatDuration(w.TotalTimeSpent),
			fmt.Sprintf("%d", w.VisitCount),
		})
	}
	b.WriteString(RenderTable([]string{"WINDOW", "TIME", "VISITS"}, rows, 1, 2))
	return b.String()
}

// AppTime pairs an application with a time figure for reports.
type AppTime struct {
	App  *domain.Application
	Time time.Duration
}

// FormatToday renders today's per-application time, most used first.
func FormatToday(day time.Time, entries []AppTime, total time.Duration, cats CategoryIndex) string {
	var b strings.Builder
	b.WriteString(Header("Today " + day.Format("Mon Jan 2")))
	b.WriteString("\n\n")

	if len(entries) == 0 || total <= 0 {
		b.WriteString(Dim("Nothing tracked today.") + "\n")
		return b.String()
	}

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		c := cats[e.App.CategoryID]
		rows = append(rows, []string{
			Bold(e.App.Name),
			cats.badge(e.App.CategoryID),
			FormatDuration(e.Time),
			RenderShare(float64(e.Time)/float64(total), shareWidth, c.Color),
		})
	}
	b.WriteString(RenderTable([]string{"APP", "CATEGORY", "TIME", "SHARE"}, rows, 2))
	b.WriteString(fmt.Sprintf("\n%s %s\n", Dim("Total"), Bold(FormatDuration(total))))
	return b.String()
}

// FormatCategoryStats renders all-time totals per category.
func FormatCategoryStats(stats []domain.CategoryStat) string {
	var total time.Duration
	for _, s := range stats {
		total += s.TotalTime
	}

	var b strings.Builder
	b.WriteString(Header("Categories"))
	b.WriteString("\n\n")

	rows := make([][]string, 0, len(stats))
	for _, s := range stats {
		share := 0.0
		if total > 0 {
			share = float64(s.TotalTime) / float64(total)
		}
		rows = append(rows, []string{
			CategoryBadge(s.Category.Name, s.Category.Color),
			Plural(s.AppCount, "app"),
			FormatDuration(s.TotalTime),
			RenderShare(share, shareWidth, s.Category.Color),
		})
	}
	b.WriteString(RenderTable([]string{"CATEGORY", "APPS", "TIME", "SHARE"}, rows, 1, 2))
	b.WriteString(fmt.Sprintf("\n%s %s\n", Dim("Total"), Bold(FormatDuration(total))))
	return b.String()
}

// FormatWeek renders seven day buckets with one column per category that
// has time in the week.
func FormatWeek(days []domain.DayCategoryTotals, cats []*domain.Category) string {
	var b strings.Builder
	if len(days) == 0 {
		return Dim("No days to show.") + "\n"
	}
	b.WriteString(Header("Week of " + days[0].Day.Format("Jan 2, 2006")))
	b.WriteString("\n\n")

	var used []*domain.Category
	for _, c := range cats {
		for _, d := range days {
			if d.Totals[c.ID] > 0 {
				used = append(used, c)
				break
			}
		}
	}

	headers := []string{"DAY"}
	for _, c := range used {
		headers = append(headers, strings.ToUpper(c.Name))
	}
	headers = append(headers, "TOTAL")

	right := make([]int, 0, len(used)+1)
	for i := 1; i < len(headers); i++ {
		right = append(right, i)
	}

	var weekTotal time.Duration
	rows := make([][]string, 0, len(days))
	for _, d := range days {
		row := []string{d.Day.Format("Mon 02")}
		for _, c := range used {
			if v := d.Totals[c.ID]; v > 0 {
				row = append(row, CategoryStyle(c.Color).Render(FormatDuration(v)))
			} else {
				row = append(row, Dim("-"))
			}
		}
		dayTotal := d.Total()
		weekTotal += dayTotal
		row = append(row, Bold(FormatDuration(dayTotal)))
		rows = append(rows, row)
	}
	b.WriteString(RenderTable(headers, rows, right...))
	b.WriteString(fmt.Sprintf("\n%s %s\n", Dim("Week total"), Bold(FormatDuration(weekTotal))))
	return b.String()
}

// FormatCategories renders the category list with application counts.
func FormatCategories(cats []*domain.Category, appCounts map[string]int) string {
	rows := make([][]string, 0, len(cats))
	for _, c := range cats {
		name := CategoryBadge(c.Name, c.Color)
		if c.IsDefault {
			name += Dim(" (default)")
		}
		rows = append(rows, []string{
			name,
			Dim(c.Icon),
			c.Color,
			fmt.Sprintf("%d", appCounts[c.ID]),
		})
	}
	return RenderTable([]string{"CATEGORY", "ICON", "COLOR", "APPS"}, rows, 3)
}
