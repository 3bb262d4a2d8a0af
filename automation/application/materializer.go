package application

import (
	"context"
	"fmt"
	"time"

	"github.com/Abhishek-kmr525/admin.freereminders.net-sub000/automation/domain"
	"github.com/Abhishek-kmr525/admin.freereminders.net-sub000/automation/schedule"
	"github.com/Abhishek-kmr525/admin.freereminders.net-sub000/contentgen"
	"github.com/sirupsen/logrus"
)

// ContentGenerator is the part of contentgen.Generator the materializer uses.
type ContentGenerator interface {
	Generate(ctx context.Context, provider contentgen.Provider, prompt contentgen.Prompt) (contentgen.Result, error)
}

// Lookahead bounds how far ahead posts are created.
type Lookahead struct {
	Days     int
	MaxPosts int
}

// Report summarizes one materialization run.
type Report struct {
	AutomationID string   `json:"automation_id"`
	Expanded     int      `json:"expanded"`
	Created      int      `json:"created"`
	Skipped      int      `json:"skipped"`
	Fallbacks    int      `json:"fallbacks"`
	Failed       int      `json:"failed"`
	Through      string   `json:"through,omitempty"`
	Errors       []string `json:"errors,omitempty"`
}

func (r *Report) add(o Report) {
	r.Expanded += o.Expanded
	r.Created += o.Created
	r.Skipped += o.Skipped
	r.Fallbacks += o.Fallbacks
	r.Failed += o.Failed
	r.Errors = append(r.Errors, o.Errors...)
}

type Materializer struct {
	automations domain.AutomationRepository
	posts       domain.PostRepository
	generator   ContentGenerator
	lookahead   Lookahead
}

func NewMaterializer(automations domain.AutomationRepository, posts domain.PostRepository, generator ContentGenerator, lookahead Lookahead) *Materializer {
	if lookahead.Days <= 0 {
		lookahead.Days = 5
	}
	if lookahead.MaxPosts <= 0 {
		lookahead.MaxPosts = 10
	}
	return &Materializer{automations: automations, posts: posts, generator: generator, lookahead: lookahead}
}

// Window returns the look-ahead window for a at now: future instants only,
// within Days calendar days counting today, and at most MaxPosts posts.
func (m *Materializer) Window(loc *time.Location, now time.Time) schedule.Window {
	return schedule.Window{
		NotBefore: now,
		Through:   schedule.LocalDay(now, loc).AddDate(0, 0, m.lookahead.Days-1),
		Limit:     m.lookahead.MaxPosts,
	}
}

// MaterializeAt creates the pending posts of a's look-ahead window at now.
func (m *Materializer) MaterializeAt(ctx context.Context, a *domain.Automation, now time.Time) (Report, error) {
	params, err := a.ScheduleParams()
	if err != nil {
		return Report{AutomationID: a.ID}, err
	}
	return m.Materialize(ctx, a, m.Window(params.Location, now))
}

// Materialize expands a over w and inserts one pending post per instant that
// does not exist yet. Failures are isolated per instant.
func (m *Materializer) Materialize(ctx context.Context, a *domain.Automation, w schedule.Window) (Report, error) {
	report := Report{AutomationID: a.ID}

	params, err := a.ScheduleParams()
	if err != nil {
		return report, err
	}

	// numbering is over the whole series so "post N of M" is stable across runs
	series, err := schedule.Occurrences(params, schedule.Window{})
	if err != nil {
		return report, err
	}
	seq := make(map[string]int, len(series))
	for i, o := range series {
		seq[o.Day] = i + 1
	}

	// the existing-day check is per calendar window, before the limit, so
	// already materialized days do not use up the post budget
	candidates, err := schedule.Occurrences(params, schedule.Window{NotBefore: w.NotBefore, Through: w.Through})
	if err != nil {
		return report, err
	}
	days := make([]string, len(candidates))
	for i, o := range candidates {
		days[i] = o.Day
	}
	existing, err := m.posts.ExistingDays(ctx, a.ID, days)
	if err != nil {
		return report, fmt.Errorf("load existing posts: %w", err)
	}

	report.Expanded = len(candidates)
	limitHit := false
	for _, occ := range candidates {
		if existing[occ.Day] {
			report.Skipped++
			continue
		}
		if w.Limit > 0 && report.Created+report.Failed >= w.Limit {
			limitHit = true
			break
		}
		if err := ctx.Err(); err != nil {
			return report, err
		}

		created, fallback, err := m.materializeOne(ctx, a, occ, seq[occ.Day], len(series))
		switch {
		case err != nil:
			report.Failed++
			report.Errors = append(report.Errors, fmt.Sprintf("%s: %v", occ.Day, err))
			logrus.WithError(err).WithFields(logrus.Fields{
				"automation_id": a.ID,
				"day":           occ.Day,
			}).Warn("[MATERIALIZER] failed to materialize post")
			continue
		case !created:
			report.Skipped++
		default:
			report.Created++
			if fallback {
				report.Fallbacks++
			}
		}
		report.Through = occ.Day
	}

	if !limitHit {
		report.Through = lastDay(params, w)
	}
	if report.Through != "" && report.Through > a.MaterializedThrough && report.Failed == 0 {
		if err := m.automations.UpdateMaterializedThrough(ctx, a.ID, report.Through); err != nil {
			return report, fmt.Errorf("update horizon: %w", err)
		}
		a.MaterializedThrough = report.Through
	}

	logrus.WithFields(logrus.Fields{
		"automation_id": a.ID,
		"created":       report.Created,
		"skipped":       report.Skipped,
		"fallbacks":     report.Fallbacks,
		"failed":        report.Failed,
		"through":       report.Through,
	}).Info("[MATERIALIZER] window materialized")

	return report, nil
}

func (m *Materializer) materializeOne(ctx context.Context, a *domain.Automation, occ schedule.Occurrence, seq, total int) (bool, bool, error) {
	res, err := m.generator.Generate(ctx, a.Provider, BuildPrompt(a, seq, total))
	if err != nil {
		return false, false, err
	}

	post := &domain.ScheduledPost{
		AutomationID: a.ID,
		TenantID:     a.TenantID,
		Content:      withHashtags(res.Text, a),
		ScheduledAt:  occ.At,
		ScheduledDay: occ.Day,
		Status:       domain.PostPending,
		Provider:     res.Provider,
		UsedFallback: res.Fallback,
	}
	created, err := m.posts.Insert(ctx, post)
	if err != nil {
		return false, false, fmt.Errorf("insert post: %w", err)
	}
	return created, res.Fallback, nil
}

// lastDay is the last civil day the window covers for params.
func lastDay(p schedule.Params, w schedule.Window) string {
	last := p.End
	if !w.Through.IsZero() && w.Through.Before(last) {
		last = w.Through
	}
	return last.Format("2006-01-02")
}
