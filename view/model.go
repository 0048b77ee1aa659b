// Package view turns assistant replies into the HTML fragments shown in the chat widget.
package view

import (
	"fmt"
	"strings"

	"github.com/gbme/platform-assistant/chat"
	"github.com/gbme/platform-assistant/inventory"
	"github.com/gbme/platform-assistant/rancher"
	"github.com/gbme/platform-assistant/resources"
)

// Message is one bot message: prose followed by result cards.
type Message struct {
	Text  string
	Cards []Card
	Error bool
}

type Card struct {
	Title   string
	Icon    string
	Badge   *Badge
	Warning bool // some nodes are down
	Fields  []Field
	Bars    []Bar
	Nodes   []NodeRow
}

type Badge struct {
	Label string
	Tier  resources.ColorTier
}

// Icon is the emoji shown before the badge label.
func (b Badge) Icon() string {
	switch b.Tier {
	case resources.TierOK:
		return "✅"
	case resources.TierWarn:
		return "⚠️"
	default:
		return "🔴"
	}
}

// Field is a label/value row. Note is an optional coloured suffix.
type Field struct {
	Label    string
	Value    string
	Note     string
	NoteTier resources.ColorTier
}

// Bar is a utilization bar with its caption.
type Bar struct {
	Label   string
	Percent int
	Tier    resources.ColorTier
	Caption string
}

type NodeRow struct {
	Name  string
	Roles string
	State string
	Down  bool
	Bars  []Bar
}

// FromReply builds the message for an assistant reply.
func FromReply(r chat.Reply) Message {
	m := Message{Text: r.Message}
	switch {
	case len(r.Clusters) > 0:
		m.Cards = ClusterCards(r.Clusters)
	case len(r.Records) > 0:
		m.Cards = RecordCards(r.Records)
	}
	return m
}

// ErrorMessage builds a message for a failed request.
func ErrorMessage(text string) Message {
	return Message{Text: text, Error: true}
}

// ClusterCards builds one card per cluster, with a row per node.
func ClusterCards(summaries []rancher.ClusterSummary) []Card {
	cards := make([]Card, 0, len(summaries))
	for _, s := range summaries {
		c := Card{
			Title:   s.Name,
			Icon:    "🖥️",
			Badge:   stateBadge(s.State),
			Warning: s.DownNodes > 0,
			Fields: []Field{
				{Label: "Provider", Value: orNA(s.Provider)},
				{Label: "K8s Version", Value: orNA(s.K8sVersion)},
				nodesField(s),
			},
			Bars: resourceBars(s.CPURequested, s.CPUCapacity, s.MemoryRequested, s.MemoryCapacity),
		}
		for _, n := range s.Nodes {
			c.Nodes = append(c.Nodes, NodeRow{
				Name:  n.Name,
				Roles: strings.Join(n.Roles, ", "),
				State: n.State,
				Down:  n.Down,
				Bars:  resourceBars(n.CPURequested, n.CPUCapacity, n.MemoryRequested, n.MemoryCapacity),
			})
		}
		cards = append(cards, c)
	}
	return cards
}

// RecordCards builds one card per inventory record.
func RecordCards(records []inventory.Record) []Card {
	cards := make([]Card, 0, len(records))
	for _, r := range records {
		c := Card{
			Title: r.Server,
			Icon:  "🖥️",
			Fields: []Field{
				{Label: "Application", Value: orNA(r.Application)},
				{Label: "Environment", Value: orNA(r.Environment)},
				{Label: "Port", Value: orNA(r.Port)},
			},
		}
		if r.Status != "" {
			c.Badge = stateBadge(r.Status)
		}
		if r.Notes != "" {
			c.Fields = append(c.Fields, Field{Label: "Notes", Value: r.Notes})
		}
		cards = append(cards, c)
	}
	return cards
}

// resourceBars returns the CPU and memory bars that can be drawn; a value pair without a
// usable capacity has no bar.
func resourceBars(cpuReq, cpuCap, memReq, memCap string) []Bar {
	var bars []Bar
	if b, ok := NewBar("CPU", resources.KindCPU, cpuReq, cpuCap); ok {
		bars = append(bars, b)
	}
	if b, ok := NewBar("Memory", resources.KindMemory, memReq, memCap); ok {
		bars = append(bars, b)
	}
	return bars
}

// NewBar computes a bar from raw quantity strings.
func NewBar(label string, kind resources.Kind, requested, capacity string) (Bar, bool) {
	u, ok := resources.ComputeUtilization(kind, requested, capacity)
	if !ok {
		return Bar{}, false
	}
	return Bar{Label: label, Percent: u.Percent, Tier: u.Tier, Caption: u.Label()}, true
}

func stateBadge(state string) *Badge {
	if state == "" {
		state = "unknown"
	}
	return &Badge{Label: state, Tier: resources.StateTier(state)}
}

func nodesField(s rancher.ClusterSummary) Field {
	f := Field{Label: "Nodes", Value: fmt.Sprintf("%d total", s.TotalNodes)}
	if s.DownNodes > 0 {
		f.Note = fmt.Sprintf("⚠️ %d DOWN", s.DownNodes)
		f.NoteTier = resources.TierCritical
	} else {
		f.Note = "all healthy"
		f.NoteTier = resources.TierOK
	}
	return f
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
