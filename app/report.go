package app

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"qastats/domain/core"
	"qastats/domain/stats"
	"qastats/internal/metrics"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// Report is the outcome of one comparison
type Report struct {
	ID        core.ID                         `json:"id"`
	Request   ComparisonRequest               `json:"request"`
	SummaryA  stats.Summary                   `json:"summary_a"`
	SummaryB  stats.Summary                   `json:"summary_b"`
	Method    stats.Method                    `json:"method,omitempty"`
	Levene    *stats.TestResult               `json:"levene,omitempty"` // Set when Levene picked the method
	Result    *stats.TestResult               `json:"result,omitempty"`
	Interval  *stats.ConfidenceIntervalReport `json:"interval,omitempty"`
	CreatedAt time.Time                       `json:"created_at"`
}

func (r *Report) outcome() string {
	switch {
	case r.Interval != nil:
		return metrics.OutcomeInterval
	case r.Result != nil && r.Result.Significant:
		return metrics.OutcomeSignificant
	default:
		return metrics.OutcomeNotSignificant
	}
}

// Title returns the bracketed heading used in text output
func (r *Report) Title() string {
	switch r.Request.Test {
	case TestLevene:
		return "[Levene Test]"
	case TestWelch:
		return "[Welch Test]"
	case TestInterval:
		return fmt.Sprintf("[Confidence Interval — %s%%]", formatPercent(r.Request.ConfidenceLevel))
	default:
		return "[T-Test]"
	}
}

// Text renders the report the way the results pane shows it
func (r *Report) Text() string {
	var b strings.Builder
	b.WriteString(r.Title())
	b.WriteString("\n")

	if r.Interval != nil {
		ci := r.Interval
		fmt.Fprintf(&b, "Method: %s\n", ci.Method.Label())
		fmt.Fprintf(&b, "Difference in means: %.2f\n", ci.MeanDifference)
		fmt.Fprintf(&b, "%s%% Confidence Interval: [%.2f, %.2f]\n", formatPercent(ci.ConfidencePercent), ci.Lower, ci.Upper)
		fmt.Fprintf(&b, "Degrees of freedom (df): %.2f", ci.DegreesOfFreedom)
		return b.String()
	}

	if r.Result != nil {
		b.WriteString(r.Result.Verdict)
		b.WriteString("\n")
		fmt.Fprintf(&b, "p-value: %.4f", r.Result.PValue)
	}
	return b.String()
}

// Markdown renders the report with group summaries and test details
func (r *Report) Markdown() string {
	req := r.Request
	var b strings.Builder

	fmt.Fprintf(&b, "### %s\n\n", strings.Trim(r.Title(), "[]"))
	fmt.Fprintf(&b, "**%s** by **%s**: %s vs %s\n\n",
		escapeMarkdown(req.Target), escapeMarkdown(req.FilterColumn), escapeMarkdown(req.GroupA), escapeMarkdown(req.GroupB))

	b.WriteString("| Group | N | Mean | Median | Std Dev | Min | Max |\n")
	b.WriteString("|---|---|---|---|---|---|---|\n")
	for _, row := range []struct {
		name string
		s    stats.Summary
	}{{req.GroupA, r.SummaryA}, {req.GroupB, r.SummaryB}} {
		fmt.Fprintf(&b, "| %s | %d | %.4f | %.4f | %.4f | %.4f | %.4f |\n",
			escapeMarkdown(row.name), row.s.N, row.s.Mean, row.s.Median, row.s.StdDev, row.s.Min, row.s.Max)
	}
	b.WriteString("\n")

	if r.Interval != nil {
		ci := r.Interval
		fmt.Fprintf(&b, "- Method: %s (Levene p = %.4f)\n", ci.Method.Label(), ci.LevenePValue)
		fmt.Fprintf(&b, "- Difference in means: %.2f\n", ci.MeanDifference)
		fmt.Fprintf(&b, "- %s%% Confidence Interval: **[%.2f, %.2f]**\n", formatPercent(ci.ConfidencePercent), ci.Lower, ci.Upper)
		fmt.Fprintf(&b, "- Degrees of freedom (df): %.2f\n", ci.DegreesOfFreedom)
		return b.String()
	}

	if r.Result != nil {
		fmt.Fprintf(&b, "**%s**\n\n", r.Result.Verdict)
		fmt.Fprintf(&b, "- Statistic: %.4f\n", r.Result.Statistic)
		fmt.Fprintf(&b, "- p-value: %.4f\n", r.Result.PValue)
		fmt.Fprintf(&b, "- Degrees of freedom (df): %.2f\n", r.Result.DegreesOfFreedom)
		if r.Method != "" {
			fmt.Fprintf(&b, "- Method: %s\n", r.Method.Label())
		}
		if r.Levene != nil {
			fmt.Fprintf(&b, "- Levene p-value: %.4f\n", r.Levene.PValue)
		}
	}
	return b.String()
}

// HTML renders Markdown to an HTML fragment
func (r *Report) HTML() string {
	return RenderMarkdown(r.Markdown())
}

// RenderMarkdown converts markdown text to HTML. Raw HTML in the input is
// dropped.
func RenderMarkdown(md string) string {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.NoEmptyLineBeforeBlock)
	doc := p.Parse([]byte(md))
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.SkipHTML})
	return string(markdown.Render(doc, renderer))
}

// escapeMarkdown backslash-escapes markdown and HTML punctuation so sheet
// values render as literal text
func escapeMarkdown(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '\n' || c == '\r':
			b.WriteByte(' ')
			continue
		case bytes.IndexByte(parser.EscapeChars, c) >= 0:
			b.WriteByte('\\')
		}
		b.WriteByte(c)
	}
	return b.String()
}

// formatPercent prints whole percentages without decimals
func formatPercent(p float64) string {
	p = math.Round(p*1e6) / 1e6
	if p == math.Trunc(p) {
		return strconv.FormatFloat(p, 'f', 0, 64)
	}
	return strconv.FormatFloat(p, 'f', -1, 64)
}
