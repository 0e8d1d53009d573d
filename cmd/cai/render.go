package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/fyrsmithlabs/agentinsights/internal/insights"
)

// styles renders search results. Colours are dropped automatically when w
// is not a terminal.
type styles struct {
	kind  lipgloss.Style
	score lipgloss.Style
	dim   lipgloss.Style
}

func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		kind:  r.NewStyle().Foreground(lipgloss.Color("51")).Bold(true),
		score: r.NewStyle().Foreground(lipgloss.Color("245")),
		dim:   r.NewStyle().Foreground(lipgloss.Color("245")),
	}
}

// writeLearningHit prints one learning as
//
//	[fix] (score: 0.87)
//	  content
//	  Tags: a, b
func writeLearningHit(w io.Writer, st styles, hit insights.Hit) {
	l := hit.Learning
	fmt.Fprintf(w, "%s %s\n", st.kind.Render("["+l.Type+"]"), st.score.Render(fmt.Sprintf("(score: %.2f)", hit.Score)))
	fmt.Fprintf(w, "  %s\n", l.Content)
	if len(l.Tags) > 0 {
		fmt.Fprintf(w, "  %s\n", st.dim.Render("Tags: "+strings.Join(l.Tags, ", ")))
	}
	fmt.Fprintln(w)
}

// writeSessionHit prints one session with its project and summary.
func writeSessionHit(w io.Writer, st styles, hit insights.Hit) {
	s := hit.Session
	fmt.Fprintf(w, "%s %s\n", st.kind.Render("[session "+shortID(s.ID)+"]"), st.score.Render(fmt.Sprintf("(score: %.2f)", hit.Score)))
	if s.ProjectPath != "" {
		fmt.Fprintf(w, "  Project: %s\n", s.ProjectPath)
	}
	if s.Summary != nil {
		fmt.Fprintf(w, "  %s\n", *s.Summary)
	}
	if s.Outcome != nil {
		fmt.Fprintf(w, "  %s\n", st.dim.Render("Outcome: "+*s.Outcome))
	}
	fmt.Fprintln(w)
}

// progressBar prints one line per stored chunk.
type progressBar struct {
	w   io.Writer
	bar progress.Model
}

func newProgressBar(w io.Writer) *progressBar {
	return &progressBar{
		w:   w,
		bar: progress.New(progress.WithSolidFill("#00ffff"), progress.WithWidth(30)),
	}
}

func (p *progressBar) report(pr insights.Progress) {
	label := strings.ToUpper(string(pr.Kind[:1])) + string(pr.Kind[1:]) + "s"
	frac := 0.0
	if pr.Total > 0 {
		frac = float64(pr.Done) / float64(pr.Total)
	}
	fmt.Fprintf(p.w, "  %s: %d/%d %s\n", label, pr.Done, pr.Total, p.bar.ViewAs(frac))
}
