package cli

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/alexanderramin/focustrack/internal/cli/formatter"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// focustrackHuhTheme returns a huh theme using the formatter palette.
func focustrackHuhTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Title = lipgloss.NewStyle().Foreground(formatter.ColorHeader).Bold(true)
	t.Focused.TextInput.Cursor = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Focused.Description = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	t.Blurred.Title = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	return t
}

type categoryInput struct {
	Name  string
	Icon  string
	Color string
}

// categoryForm collects a new category interactively.
func categoryForm(in *categoryInput) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Placeholder("Reading").
				Value(&in.Name).
				Validate(validateCategoryName),
			huh.NewInput().
				Title("Icon").
				Description("Optional").
				Placeholder("book").
				Value(&in.Icon),
			huh.NewInput().
				Title("Color").
				Description("Hex RGB, blank for the default gray").
				Placeholder("#83a598").
				Value(&in.Color).
				Validate(validateColor),
		),
	).WithTheme(focustrackHuhTheme()).WithShowHelp(false)
}

func validateCategoryName(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("name is required")
	}
	return nil
}

var hexColorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// validateColor accepts empty or a #RRGGBB hex color.
func validateColor(s string) error {
	s = strings.TrimSpace(s)
	if s == "" || hexColorPattern.MatchString(s) {
		return nil
	}
	return fmt.Errorf("use #RRGGBB format")
}
