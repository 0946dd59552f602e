package menu

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"weighttracker/internal/domain"
)

const timestampLayout = "2006-01-02 15:04:05"

var recordHeaders = []string{"timestamp", "day", "value", "change", "rate_7", "ema_7", "ema_30"}

// Render writes the records table and summary for points to w. Styling is
// dropped automatically when w is not a terminal.
func Render(w io.Writer, points []domain.TrendPoint, sum domain.Summary, unit string) {
	if len(points) == 0 {
		_, _ = io.WriteString(w, "No records found!\n\n")
		return
	}

	r := lipgloss.NewRenderer(w)
	titleStyle := r.NewStyle().Bold(true)
	headerStyle := r.NewStyle().Bold(true).Underline(true)
	ruleStyle := r.NewStyle().Faint(true)

	rows := make([][]string, 0, len(points))
	for _, p := range points {
		rows = append(rows, []string{
			p.Entry.CreatedAt.Local().Format(timestampLayout),
			strconv.Itoa(p.Day),
			domain.FormatWeight(p.Entry.Value),
			fmt.Sprintf("%+.2f", p.Change),
			fmt.Sprintf("%+.2f", p.WeeklyRate),
			fmt.Sprintf("%.2f", p.EMA7),
			fmt.Sprintf("%.2f", p.EMA30),
		})
	}

	widths := make([]int, len(recordHeaders))
	for i, h := range recordHeaders {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}
	total := 2 * (len(widths) - 1)
	for _, wd := range widths {
		total += wd
	}

	var sb strings.Builder
	sb.WriteString(titleStyle.Render(fmt.Sprintf("Records (%s):", unit)))
	sb.WriteString("\n")
	header := make([]string, len(recordHeaders))
	for i, h := range recordHeaders {
		header[i] = headerStyle.Render(h) + strings.Repeat(" ", widths[i]-lipgloss.Width(h))
	}
	sb.WriteString(strings.Join(header, "  "))
	sb.WriteString("\n")
	for _, row := range rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			cells[i] = pad(cell, widths[i], i > 0)
		}
		sb.WriteString(strings.TrimRight(strings.Join(cells, "  "), " "))
		sb.WriteString("\n")
	}
	sb.WriteString(ruleStyle.Render(strings.Repeat("-", total)))
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "%d records, first %s, last %s, min %s, max %s, net %+.2f %s\n\n",
		sum.Count,
		domain.FormatWeight(sum.First),
		domain.FormatWeight(sum.Last),
		domain.FormatWeight(sum.Min),
		domain.FormatWeight(sum.Max),
		sum.Change, unit)

	_, _ = io.WriteString(w, sb.String())
}

// pad aligns s within width, to the right for numeric columns.
func pad(s string, width int, right bool) string {
	gap := strings.Repeat(" ", max(0, width-lipgloss.Width(s)))
	if right {
		return gap + s
	}
	return s + gap
}
