package styles

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTheme(t *testing.T) {
	theme := DefaultTheme()

	require.NotNil(t, theme)
	assert.NotEmpty(t, string(theme.Primary))
	assert.NotEmpty(t, string(theme.Accent))
	assert.NotEmpty(t, string(theme.Foreground))
	assert.NotEmpty(t, string(theme.Muted))
	assert.NotEmpty(t, string(theme.Fresh))
	assert.NotEmpty(t, string(theme.Error))
	assert.NotEmpty(t, string(theme.Border))
	assert.NotEmpty(t, string(theme.Bar))
}

func TestDefaultTheme_AccentsAreDistinct(t *testing.T) {
	theme := DefaultTheme()

	seen := make(map[lipgloss.Color]bool)
	for _, c := range []lipgloss.Color{theme.Primary, theme.Accent, theme.Fresh, theme.Error} {
		assert.False(t, seen[c], "duplicate colour: %s", c)
		seen[c] = true
	}
}

func TestNewStyles_WithTheme(t *testing.T) {
	theme := DefaultTheme()
	styles := NewStyles(theme)

	require.NotNil(t, styles)
	assert.Equal(t, theme, styles.Theme())
}

func TestNewStyles_NilTheme(t *testing.T) {
	styles := NewStyles(nil)

	require.NotNil(t, styles)
	assert.NotNil(t, styles.Theme())
}

func TestStyles_AllStylesInitialised(t *testing.T) {
	styles := DefaultStyles()

	for name, style := range map[string]lipgloss.Style{
		"Title":      styles.Title,
		"Updated":    styles.Updated,
		"NotUpdated": styles.NotUpdated,
		"Normal":     styles.Normal,
		"Muted":      styles.Muted,
		"Selected":   styles.Selected,
		"Link":       styles.Link,
		"Error":      styles.Error,
		"StatusBar":  styles.StatusBar,
		"Help":       styles.Help,
		"Border":     styles.Border,
	} {
		assert.NotEqual(t, lipgloss.Style{}, style, name)
		assert.Contains(t, style.Render("text"), "text", name)
	}
}
