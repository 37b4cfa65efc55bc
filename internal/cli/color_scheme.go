package cli

import (
	"image/color"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/x/exp/charmtone"

	"github.com/macropower/folio/pkg/config"
	"github.com/macropower/folio/pkg/ui/theme"
)

// ColorSchemeFunc styles the CLI with the theme from the config, or the
// default theme without one.
func ColorSchemeFunc(c lipgloss.LightDarkFunc) fang.ColorScheme {
	cl, err := config.NewConfigLoaderFromFile(config.GetPath(), config.WithThemeFromData())
	if err != nil {
		return ThemeColorScheme(theme.Default, c)
	}

	return ThemeColorScheme(cl.GetTheme(), c)
}

func ThemeColorScheme(t *theme.Theme, c lipgloss.LightDarkFunc) fang.ColorScheme {
	return fang.ColorScheme{
		Base:           t.Page.GetForeground(),
		Title:          t.Logo.GetBackground(),
		Codeblock:      c(charmtone.Salt, lipgloss.Color("#2F2E36")),
		Program:        t.Selected.GetForeground(),
		Command:        t.Selected.GetForeground(),
		DimmedArgument: t.Subtle.GetForeground(),
		Comment:        t.Subtle.GetForeground(),
		Flag:           t.Selected.GetForeground(),
		Argument:       t.Page.GetForeground(),
		Description:    t.Page.GetForeground(),
		FlagDefault:    t.SelectedDim.GetForeground(),
		QuotedString:   t.Heading.GetForeground(),
		ErrorHeader: [2]color.Color{
			t.ErrorTitle.GetForeground(),
			t.ErrorTitle.GetBackground(),
		},
	}
}
