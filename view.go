package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"clipdeck/internal/editor"
)

// fileLabel is the display name of an asset
func fileLabel(asset editor.MediaAsset) string {
	if !asset.Loaded() {
		return ""
	}
	return filepath.Base(asset.Path)
}

// titleWidth is how many runes of the file name fit next to the icon
func titleWidth(cfg Config) int {
	return cfg.UI.MaxWidth - 12
}

// barWidth leaves room for the track label and the frame around the bar
func barWidth(cfg Config) int {
	return cfg.UI.MaxWidth - 12
}

// timelineColumn maps a time onto a bar column
func timelineColumn(t, duration float64, width int) int {
	if duration <= 0 || width <= 1 {
		return 0
	}
	col := int(t / duration * float64(width-1))
	if col < 0 {
		return 0
	}
	if col > width-1 {
		return width - 1
	}
	return col
}

// timelineRow draws one track: filled where an action covers the media,
// a thin line elsewhere, and the cursor as a bar
func timelineRow(actions []editor.TimelineAction, duration float64, width int, cursor float64) string {
	if width <= 0 {
		return ""
	}
	cells := []rune(strings.Repeat("─", width))
	if duration > 0 {
		for _, a := range actions {
			from := timelineColumn(a.Start, duration, width)
			to := timelineColumn(a.End, duration, width)
			for i := from; i <= to; i++ {
				cells[i] = '█'
			}
		}
		cells[timelineColumn(cursor, duration, width)] = '│'
	}
	return string(cells)
}

// rulerRow marks the trim bounds with [ ] and the cursor with ▲
func rulerRow(trim editor.TrimRange, duration float64, width int, cursor float64) string {
	if width <= 0 {
		return ""
	}
	cells := []rune(strings.Repeat(" ", width))
	if duration > 0 {
		cells[timelineColumn(trim.Start, duration, width)] = '['
		cells[timelineColumn(trim.End, duration, width)] = ']'
		cells[timelineColumn(cursor, duration, width)] = '▲'
	}
	return string(cells)
}

// statusLine summarizes playback intent
func statusLine(p editor.PlaybackState) string {
	icon, state := "󰐊 ", "Playing"
	if !p.IsPlaying {
		icon, state = "󰏤 ", "Paused"
	}
	return fmt.Sprintf("%s%s  %gx  vol %d%%", icon, state, p.Rate, int(p.Volume*100+0.5))
}

// cropLine lists the crop fields with the selected one bracketed
func cropLine(crop editor.CropRect, selected editor.CropField) string {
	parts := make([]string, 0, len(editor.CropFields))
	for _, f := range editor.CropFields {
		part := fmt.Sprintf("%s %g", f, crop.Field(f))
		if f == selected {
			part = "[" + part + "]"
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, "  ")
}

func (m model) View() string {
	cfg := config.Get()
	snap := m.editor.Snapshot()

	color := lipgloss.Color(m.color)
	highlight := lipgloss.NewStyle().Foreground(color)
	white := lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	labelStyle := lipgloss.NewStyle().Foreground(color).Bold(true)
	mutedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	errorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	warnStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("214"))

	borderStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(color).
		Padding(1, 2)

	var text strings.Builder
	text.WriteString(highlight.Render("󰕧 clipdeck") + "\n\n")

	if !snap.Asset.Loaded() {
		text.WriteString(mutedStyle.Render("Nothing loaded") + "\n\n")
		text.WriteString(dimStyle.Render("Pass a file on the command line or drop one here"))
	} else {
		icon := "󰕧 "
		if snap.Asset.Kind == editor.KindAudio {
			icon = "󰎈 "
		}
		text.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render(icon),
			scrollText(fileLabel(snap.Asset), titleWidth(cfg), m.scrollOffset)))
		text.WriteString(fmt.Sprintf("%s\n", statusLine(snap.Playback)))
		if !snap.Asset.DurationKnown {
			text.WriteString(dimStyle.Render("Resolving duration...") + "\n")
		}
	}

	var topSection string
	if m.previewEncoded != "" && m.supportsKitty && cfg.Preview.Enabled {
		paddedText := lipgloss.NewStyle().
			PaddingLeft(cfg.Preview.Padding).
			Render(text.String())
		topSection = m.previewEncoded + paddedText
	} else if m.supportsKitty {
		// Remove a preview left over from the previous asset or crop
		topSection = "\033_Ga=d,d=A\033\\" + text.String()
	} else {
		topSection = text.String()
	}

	var timeline strings.Builder
	if snap.Asset.DurationKnown {
		width := barWidth(cfg)
		d := snap.Asset.Duration
		for _, tr := range snap.Tracks {
			label := fmt.Sprintf("%-6s", tr.ID)
			if tr.ID == m.selectedTrack {
				label = labelStyle.Render(label)
			} else {
				label = dimStyle.Render(label)
			}
			row := timelineRow(tr.Actions, d, width, snap.Cursor)
			timeline.WriteString(label + highlight.Render(row) + "\n")
		}
		timeline.WriteString(strings.Repeat(" ", 6) + white.Render(rulerRow(snap.Trim, d, width, snap.Cursor)) + "\n")
		timeline.WriteString(fmt.Sprintf("%s/%s   %s %s–%s\n",
			highlight.Render(snap.CurrentLabel),
			highlight.Render(snap.DurationLabel),
			labelStyle.Render("trim"),
			editor.FormatTime(snap.Trim.Start),
			editor.FormatTime(snap.Trim.End),
		))
	}

	var cropSection strings.Builder
	if snap.Asset.Kind != editor.KindAudio {
		cropSection.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("crop"), cropLine(snap.Crop, m.cropField)))
		cropSection.WriteString(dimStyle.Render(snap.Inset.CSS()))
		if snap.CropOverflow {
			cropSection.WriteString("  " + warnStyle.Render("extends past the frame"))
		}
		cropSection.WriteString("\n")
	}

	var errorLine string
	if m.lastError != nil {
		if isNothingLoaded(m.lastError) {
			errorLine = mutedStyle.Render("Waiting for the media duration")
		} else {
			errorLine = errorStyle.Render("Error: " + m.lastError.Error())
		}
	}

	sections := []string{topSection}
	if timeline.Len() > 0 {
		sections = append(sections, timeline.String())
	}
	if cropSection.Len() > 0 {
		sections = append(sections, cropSection.String())
	}
	if errorLine != "" {
		sections = append(sections, errorLine)
	}

	contentStr := borderStyle.
		Width(cfg.UI.MaxWidth).
		Render(strings.Join(sections, "\n"))

	var helpText string
	if m.showHelp {
		helpText = lipgloss.NewStyle().
			Width(cfg.UI.MaxWidth).
			Align(lipgloss.Center).
			Render(strings.Join([]string{
				"Play/Pause: " + highlight.Render("space"),
				"Seek: " + highlight.Render("←/→ home/end"),
				"Volume: " + highlight.Render("↑/↓"),
				"Rate: " + highlight.Render("r"),
				"Trim: " + highlight.Render("[ ]"),
				"Track: " + highlight.Render("t"),
				"Resize: " + highlight.Render("{ }"),
				"Crop: " + highlight.Render("tab +/-"),
				"Quit: " + highlight.Render("q"),
				"Hide: " + highlight.Render("?"),
			}, "  "))
	} else {
		helpText = mutedStyle.Render("Press ? for help")
	}

	fullUI := lipgloss.JoinVertical(lipgloss.Center, contentStr, "\n"+helpText)

	return lipgloss.Place(
		m.width, m.height,
		lipgloss.Center, lipgloss.Center,
		fullUI,
	)
}
