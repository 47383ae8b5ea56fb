package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/jaakkos/blackboard/internal/domain"
)

var (
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
	red    = color.New(color.FgRed, color.Bold)
	cyan   = color.New(color.FgCyan)
	faint  = color.New(color.Faint)
)

// emitJSON writes v as indented JSON, the --json output mode.
func emitJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// successf prints a green checkmarked line unless quiet.
func successf(opts *globalOpts, format string, a ...any) {
	if opts.quiet {
		return
	}
	green.Printf("✓ "+format+"\n", a...)
}

// infof prints a plain line unless quiet.
func infof(opts *globalOpts, format string, a ...any) {
	if opts.quiet {
		return
	}
	fmt.Printf(format+"\n", a...)
}

// newTable returns a tablewriter configured for terminal output.
func newTable(w io.Writer, header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetBorder(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoWrapText(false)
	return table
}

// renderAgents prints the agent roster as a table.
func renderAgents(w io.Writer, agents []domain.AgentWithLiveness) {
	if len(agents) == 0 {
		fmt.Fprintln(w, "No agents on the blackboard.")
		return
	}
	table := newTable(w, []string{"Agent", "Status", "Liveness", "Task", "Progress", "Last seen"})
	for _, a := range agents {
		table.Append([]string{
			a.ID,
			colorStatus(a.Status),
			colorLiveness(a.Liveness),
			truncate(a.CurrentTask, 40),
			strconv.Itoa(a.Progress) + "%",
			fmt.Sprintf("%dm ago", a.MinutesSinceLastSeen),
		})
	}
	table.Render()

	for _, a := range agents {
		if a.Status == domain.StatusBlocked && a.Blockers != "" {
			red.Fprintf(w, "  %s blocked on: %s\n", a.ID, a.Blockers)
		}
	}
}

// renderAgent prints one agent in a key/value layout.
func renderAgent(w io.Writer, a domain.AgentWithLiveness) {
	fmt.Fprintf(w, "%s  %s (%s)\n", cyan.Sprint(a.ID), colorStatus(a.Status), colorLiveness(a.Liveness))
	if a.CurrentTask != "" {
		fmt.Fprintf(w, "  task:     %s\n", a.CurrentTask)
	}
	fmt.Fprintf(w, "  progress: %d%%\n", a.Progress)
	if a.Blockers != "" {
		red.Fprintf(w, "  blocked:  %s\n", a.Blockers)
	}
	fmt.Fprintf(w, "  seen:     %s (%dm ago)\n", a.LastSeen.Local().Format("2006-01-02 15:04:05"), a.MinutesSinceLastSeen)
}

// renderMessages prints messages in the log layout, one block per message.
func renderMessages(w io.Writer, messages []domain.Message) {
	if len(messages) == 0 {
		fmt.Fprintln(w, "No messages.")
		return
	}
	for _, m := range messages {
		renderMessage(w, m, "")
	}
}

// renderThread prints the root and its replies, replies indented.
func renderThread(w io.Writer, thread []domain.Message) {
	for i, m := range thread {
		indent := ""
		if i > 0 {
			indent = "  "
		}
		renderMessage(w, m, indent)
	}
}

func renderMessage(w io.Writer, m domain.Message, indent string) {
	header := fmt.Sprintf("#%d %s %s", m.ID, m.FromAgent, m.CreatedAt.Local().Format("2006-01-02 15:04"))
	if m.InReplyTo != nil {
		header += fmt.Sprintf(" (reply to #%d)", *m.InReplyTo)
	}
	fmt.Fprintf(w, "%s%s %s\n", indent, cyan.Sprint(header), colorPriority(m.Priority))
	if len(m.Tags) > 0 {
		faint.Fprintf(w, "%s  tags: %s\n", indent, strings.Join(m.Tags, ", "))
	}
	if len(m.Refs) > 0 {
		faint.Fprintf(w, "%s  refs: %s\n", indent, joinRefs(m.Refs))
	}
	for _, line := range strings.Split(m.Content, "\n") {
		fmt.Fprintf(w, "%s  %s\n", indent, line)
	}
	fmt.Fprintln(w)
}

// renderArtifacts prints the artifact registry as a table.
func renderArtifacts(w io.Writer, artifacts []domain.Artifact) {
	if len(artifacts) == 0 {
		fmt.Fprintln(w, "No artifacts registered.")
		return
	}
	table := newTable(w, []string{"Path", "By", "Version", "Description", "Registered"})
	for _, a := range artifacts {
		table.Append([]string{
			a.Path,
			a.ProducedBy,
			a.Version,
			truncate(a.Description, 50),
			a.CreatedAt.Local().Format("2006-01-02 15:04"),
		})
	}
	table.Render()
}

// renderArtifact prints one artifact in a key/value layout.
func renderArtifact(w io.Writer, a domain.Artifact) {
	fmt.Fprintf(w, "%s\n", cyan.Sprint(a.Path))
	fmt.Fprintf(w, "  by:          %s\n", a.ProducedBy)
	if a.Version != "" {
		fmt.Fprintf(w, "  version:     %s\n", a.Version)
	}
	fmt.Fprintf(w, "  description: %s\n", a.Description)
	if len(a.Refs) > 0 {
		fmt.Fprintf(w, "  refs:        %s\n", joinRefs(a.Refs))
	}
	fmt.Fprintf(w, "  registered:  %s\n", a.CreatedAt.Local().Format("2006-01-02 15:04:05"))
}

func colorStatus(s domain.AgentStatus) string {
	switch s {
	case domain.StatusBlocked:
		return red.Sprint(string(s))
	case domain.StatusOffline:
		return faint.Sprint(string(s))
	case domain.StatusIdle:
		return yellow.Sprint(string(s))
	default:
		return green.Sprint(string(s))
	}
}

func colorLiveness(l domain.Liveness) string {
	switch l {
	case domain.LivenessActive:
		return green.Sprint(string(l))
	case domain.LivenessStale:
		return yellow.Sprint(string(l))
	default:
		return faint.Sprint(string(l))
	}
}

func colorPriority(p domain.Priority) string {
	switch p {
	case domain.PriorityCritical:
		return red.Sprint("[critical]")
	case domain.PriorityHigh:
		return yellow.Sprint("[high]")
	case domain.PriorityLow:
		return faint.Sprint("[low]")
	default:
		return ""
	}
}

func joinRefs(refs []domain.Reference) string {
	parts := make([]string, 0, len(refs))
	for _, r := range refs {
		parts = append(parts, r.String())
	}
	return strings.Join(parts, ", ")
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "…"
}

// sinceTime converts a --since duration string to an absolute cutoff.
func sinceTime(s string, now time.Time) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	d, err := domain.ParseDuration(s)
	if err != nil {
		return nil, err
	}
	t := now.Add(-d)
	return &t, nil
}
