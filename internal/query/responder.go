// Package query answers free-text operational questions by matching a small
// fixed set of topics and running read-only aggregates over current entity
// state. This is deliberately a keyword table, not a language model; an
// unrecognised question gets the fallback, never an error.
package query

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// StatsStore runs the read-only aggregate queries behind answers.
type StatsStore interface {
	ProcedureStats(ctx context.Context) (ProcedureStats, error)
	SessionStats(ctx context.Context) (SessionStats, error)
	StaffingStats(ctx context.Context) (StaffingStats, error)
	InventoryStats(ctx context.Context) (InventoryStats, error)
}

// Responder maps recognised intents to aggregate reads.
type Responder struct {
	stats  StatsStore
	logger *slog.Logger
}

type Option func(r *Responder)

func WithLogger(logger *slog.Logger) Option {
	return func(r *Responder) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func NewResponder(stats StatsStore, opts ...Option) *Responder {
	r := &Responder{stats: stats, logger: slog.Default()}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// intent pairs a keyword set with its handler. The table is ordered: the
// first intent with any keyword present in the question wins.
type intent struct {
	topic    string
	keywords []string
	answer   func(r *Responder, ctx context.Context) (*Response, error)
}

var intents = []intent{
	{
		topic:    "breaches",
		keywords: []string{"breach", "overdue", "target date", "waiting list"},
		answer:   (*Responder).answerBreaches,
	},
	{
		topic:    "scheduling",
		keywords: []string{"session", "schedul", "theatre list", "capacity", "utilization", "utilisation"},
		answer:   (*Responder).answerScheduling,
	},
	{
		topic:    "staffing",
		keywords: []string{"staff", "shortage", "roster", "cover", "scrub", "anaes"},
		answer:   (*Responder).answerStaffing,
	},
	{
		topic:    "inventory",
		keywords: []string{"stock", "inventory", "expir", "supplies", "reorder"},
		answer:   (*Responder).answerInventory,
	},
}

// Answer resolves the question against the intent table. Unanswerable
// questions return the fallback response; only a failing aggregate read
// surfaces as an error.
func (r *Responder) Answer(ctx context.Context, question string) (*Response, error) {
	q := strings.ToLower(question)

	for _, in := range intents {
		for _, kw := range in.keywords {
			if strings.Contains(q, kw) {
				resp, err := in.answer(r, ctx)
				if err != nil {
					return nil, fmt.Errorf("answer %s: %w", in.topic, err)
				}
				r.logger.Debug("question answered", "topic", in.topic)
				return resp, nil
			}
		}
	}

	return fallbackResponse(), nil
}

func (r *Responder) answerBreaches(ctx context.Context) (*Response, error) {
	stats, err := r.stats.ProcedureStats(ctx)
	if err != nil {
		return nil, err
	}
	return &Response{
		Topic: "breaches",
		Answer: fmt.Sprintf(
			"Tracking %d procedures: %d breached, %d at risk, %d on track.",
			stats.Total, stats.Breached, stats.AtRisk, stats.OnTrack,
		),
		Confidence: 100,
		QuickActions: []QuickAction{
			{Label: "View breached procedures", Ref: "/procedures?filter=breached"},
			{Label: "View at-risk procedures", Ref: "/procedures?filter=at-risk"},
		},
	}, nil
}

func (r *Responder) answerScheduling(ctx context.Context) (*Response, error) {
	stats, err := r.stats.SessionStats(ctx)
	if err != nil {
		return nil, err
	}
	return &Response{
		Topic: "scheduling",
		Answer: fmt.Sprintf(
			"%d theatre lists scheduled, %d near capacity, average utilization %.0f%%.",
			stats.Total, stats.NearCapacity, stats.AvgUtilization,
		),
		Confidence: 100,
		QuickActions: []QuickAction{
			{Label: "Open the theatre planner", Ref: "/sessions"},
		},
	}, nil
}

func (r *Responder) answerStaffing(ctx context.Context) (*Response, error) {
	stats, err := r.stats.StaffingStats(ctx)
	if err != nil {
		return nil, err
	}
	return &Response{
		Topic: "staffing",
		Answer: fmt.Sprintf(
			"%d sessions have staffing shortfalls across %d roles.",
			stats.RecordsShort, stats.RolesShort,
		),
		Confidence: 100,
		QuickActions: []QuickAction{
			{Label: "Open the roster", Ref: "/staffing"},
		},
	}, nil
}

func (r *Responder) answerInventory(ctx context.Context) (*Response, error) {
	stats, err := r.stats.InventoryStats(ctx)
	if err != nil {
		return nil, err
	}
	return &Response{
		Topic: "inventory",
		Answer: fmt.Sprintf(
			"%d items below reorder level, %d expiring soon, %d expired.",
			stats.LowStock, stats.ExpiringSoon, stats.Expired,
		),
		Confidence: 100,
		QuickActions: []QuickAction{
			{Label: "Open inventory", Ref: "/inventory"},
		},
	}, nil
}

func fallbackResponse() *Response {
	return &Response{
		Topic: "unknown",
		Answer: "I can answer questions about breaches, scheduling, staffing, and inventory. " +
			"Try asking \"how many breaches?\" or \"what is the staffing position?\".",
		Confidence: 0,
	}
}
