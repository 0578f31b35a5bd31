package domain

import "strings"

// CategoryRule maps application names containing any of Patterns
// (case-insensitive) to the category named Category.
type CategoryRule struct {
	Category string
	Patterns []string
}

// DefaultCategoryRules is evaluated in order; the first rule with a matching
// pattern wins.
var DefaultCategoryRules = []CategoryRule{
	{Category: CategoryDevelopment, Patterns: []string{
		"code", "terminal", "iterm", "xcode", "intellij", "goland", "pycharm",
		"webstorm", "android studio", "sublime", "vim", "emacs", "cursor",
		"github", "docker", "postman", "alacritty", "kitty", "wezterm",
	}},
	{Category: CategoryCommunication, Patterns: []string{
		"slack", "teams", "zoom", "skype", "messages", "telegram", "whatsapp",
		"signal", "webex", "meet", "facetime",
	}},
	{Category: CategoryEntertainment, Patterns: []string{
		"safari", "chrome", "chromium", "firefox", "microsoft edge", "brave",
		"opera", "youtube", "netflix", "spotify", "music", "vlc", "twitch",
		"steam",
	}},
	{Category: CategorySocial, Patterns: []string{
		"twitter", "facebook", "instagram", "reddit", "tiktok", "mastodon",
		"linkedin", "discord",
	}},
	{Category: CategoryProductivity, Patterns: []string{
		"notes", "notion", "obsidian", "calendar", "mail", "outlook",
		"reminders", "todoist", "evernote", "thunderbird",
	}},
	{Category: CategoryWork, Patterns: []string{
		"word", "excel", "powerpoint", "keynote", "pages", "numbers",
		"libreoffice", "onlyoffice",
	}},
}

// Categorize returns the category name for an application name using rules.
// Unmatched names fall back to CategoryUncategorized.
func Categorize(rules []CategoryRule, appName string) string {
	name := strings.ToLower(appName)
	for _, r := range rules {
		for _, p := range r.Patterns {
			if strings.Contains(name, p) {
				return r.Category
			}
		}
	}
	return CategoryUncategorized
}
