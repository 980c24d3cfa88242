// Seawatch - Maritime Live Operations and Alert Triage
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

// Package triage is the per-operator alert console. It joins the query
// pipeline, the bulk selection, the capability matrix and the local
// annotations into one view and gates every mutating action on the
// operator's role.
package triage

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/tomtom215/seawatch/internal/alerts"
	"github.com/tomtom215/seawatch/internal/annotations"
	"github.com/tomtom215/seawatch/internal/authz"
	"github.com/tomtom215/seawatch/internal/logging"
	"github.com/tomtom215/seawatch/internal/models"
	"github.com/tomtom215/seawatch/internal/selection"
	"github.com/tomtom215/seawatch/internal/validation"
)

var (
	// ErrEmptySelection is returned by BulkDispatch when nothing is selected.
	ErrEmptySelection = errors.New("no alerts selected")

	ErrUnknownBulkAction = errors.New("unknown bulk action")
)

// BulkAction is an action applied to every selected alert.
type BulkAction string

const (
	BulkAcknowledge BulkAction = "acknowledge"
	BulkExport      BulkAction = "export"
	BulkAssign      BulkAction = "assign"
)

// capability maps a bulk action to the action it is gated on.
func (b BulkAction) capability() (authz.Action, bool) {
	switch b {
	case BulkAcknowledge:
		return authz.ActionBulkAcknowledge, true
	case BulkExport:
		return authz.ActionBulkExport, true
	case BulkAssign:
		return authz.ActionBulkAssign, true
	default:
		return "", false
	}
}

// BulkResult describes a dispatched bulk action.
type BulkResult struct {
	Action BulkAction `json:"action"`
	IDs    []int64    `json:"ids"`
	CSV    []byte     `json:"-"`
}

// QueryUpdate is a partial change to the listing query. Nil fields are
// left alone.
type QueryUpdate struct {
	Search   *string               `json:"search,omitempty"`
	Severity *alerts.SeverityFilter `json:"severity,omitempty"`
	Sort     *alerts.SortMode      `json:"sort,omitempty"`
	PageSize *int                  `json:"page_size,omitempty"`
}

// applyTo returns q with every set field of u applied, on page 1.
func (u QueryUpdate) applyTo(q alerts.Query) alerts.Query {
	if u.Search != nil {
		q.Search = *u.Search
	}
	if u.Severity != nil {
		q.Severity = *u.Severity
	}
	if u.Sort != nil {
		q.Sort = *u.Sort
	}
	if u.PageSize != nil {
		q.PageSize = *u.PageSize
	}
	q.Page = 1
	return q
}

// Row is one alert as the console shows it.
type Row struct {
	models.Alert
	Acknowledged bool          `json:"acknowledged"`
	Note         string        `json:"note,omitempty"`
	HasNote      bool          `json:"has_note"`
	Parsed       alerts.Parsed `json:"parsed"`
	HighRisk     bool          `json:"high_risk"`
	New          bool          `json:"new"`
	Selected     bool          `json:"selected"`
}

// View is a snapshot of the console.
type View struct {
	Username     string            `json:"username"`
	Role         authz.Role        `json:"role"`
	Capabilities []authz.Action    `json:"capabilities"`
	Query        alerts.Query      `json:"query"`
	Rows         []Row             `json:"rows"`
	Pagination   models.Pagination `json:"pagination"`
	RangeLabel   string            `json:"range_label"`
	HasPrev      bool              `json:"has_prev"`
	HasNext      bool              `json:"has_next"`
	Stats        models.AlertStats `json:"stats"`
	Loading      bool              `json:"loading"`
	Error        string            `json:"error,omitempty"`
	Selected     []int64           `json:"selected"`
	AllSelected  bool              `json:"all_selected"`
	Notices      []Notice          `json:"notices"`
}

// Options configures a Console.
type Options struct {
	Debounce    time.Duration
	PageSize    int
	NoticeLimit int
	Now         func() time.Time
}

// Console is one operator's triage console.
type Console struct {
	id       string
	username string
	role     authz.Role

	pipeline    *alerts.Pipeline
	selection   *selection.Set
	authorizer  *authz.Authorizer
	annotations *annotations.Store
	notices     *noticeRing
	now         func() time.Time
}

// NewConsole wires a console. Debounced loads run under ctx.
func NewConsole(ctx context.Context, id, username string, role authz.Role, f alerts.Fetcher,
	a *authz.Authorizer, notes *annotations.Store, opts Options) *Console {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	c := &Console{
		id:          id,
		username:    username,
		role:        role,
		pipeline:    alerts.NewPipeline(ctx, f, alerts.Config{Debounce: opts.Debounce, PageSize: opts.PageSize}),
		selection:   selection.New(),
		authorizer:  a,
		annotations: notes,
		notices:     newNoticeRing(opts.NoticeLimit),
		now:         opts.Now,
	}
	c.pipeline.OnResult(func(r alerts.Result) {
		ids := make([]int64, len(r.Alerts))
		for i, a := range r.Alerts {
			ids[i] = a.ID
		}
		c.selection.Replace(ids)
	})
	return c
}

// ID returns the session id the console belongs to.
func (c *Console) ID() string { return c.id }

// Role returns the operator's role.
func (c *Console) Role() authz.Role { return c.role }

// Close stops pending loads.
func (c *Console) Close() { c.pipeline.Close() }

// EnsureLoaded runs the first load if none has been issued yet. It fails
// with alerts.ErrClosed once the console was closed.
func (c *Console) EnsureLoaded(ctx context.Context) (View, error) {
	if c.pipeline.Result().Seq == 0 && !c.pipeline.Loading() {
		if _, err := c.pipeline.Reload(ctx); err != nil {
			return View{}, err
		}
	}
	return c.View(ctx), nil
}

// Update applies a partial query change. A search change is debounced;
// any other change loads at once and carries the new search with it. The
// whole change is validated first, so a rejected update changes nothing.
func (c *Console) Update(ctx context.Context, u QueryUpdate) (View, error) {
	if err := u.applyTo(c.pipeline.Query()).Validate(); err != nil {
		return View{}, err
	}
	if u.Search != nil {
		if err := c.pipeline.SetSearch(*u.Search); err != nil {
			return View{}, err
		}
	}
	steps := []func() error{}
	if u.Severity != nil {
		steps = append(steps, func() error { _, err := c.pipeline.SetSeverity(ctx, *u.Severity); return err })
	}
	if u.Sort != nil {
		steps = append(steps, func() error { _, err := c.pipeline.SetSort(ctx, *u.Sort); return err })
	}
	if u.PageSize != nil {
		steps = append(steps, func() error { _, err := c.pipeline.SetPageSize(ctx, *u.PageSize); return err })
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return View{}, err
		}
	}
	return c.View(ctx), nil
}

// GoToPage loads page n.
func (c *Console) GoToPage(ctx context.Context, n int) (View, error) {
	if _, err := c.pipeline.GoToPage(ctx, n); err != nil {
		return View{}, err
	}
	return c.View(ctx), nil
}

// Reload reissues the current query.
func (c *Console) Reload(ctx context.Context) (View, error) {
	if _, err := c.pipeline.Reload(ctx); err != nil {
		return View{}, err
	}
	return c.View(ctx), nil
}

// ToggleSelect flips the selection of a visible alert.
func (c *Console) ToggleSelect(id int64) bool { return c.selection.Toggle(id) }

// ToggleSelectAll selects every visible alert, or none if all were selected.
func (c *Console) ToggleSelectAll() int { return c.selection.ToggleAll() }

// Acknowledge marks id acknowledged.
func (c *Console) Acknowledge(ctx context.Context, id int64) error {
	if err := c.authorize(authz.ActionAcknowledge); err != nil {
		return err
	}
	if err := c.annotations.Acknowledge(ctx, id); err != nil {
		c.notices.add(NoticeError, "Could not save acknowledgement")
		return err
	}
	logging.Ctx(ctx).Info().Int64("alert_id", id).Str("username", c.username).Msg("Alert acknowledged")
	c.notices.add(NoticeSuccess, "Alert acknowledged")
	return nil
}

// EditNote replaces the note on id. Blank text removes it.
func (c *Console) EditNote(ctx context.Context, id int64, text string) error {
	if err := c.authorize(authz.ActionEditNotes); err != nil {
		return err
	}
	if err := validation.ValidateVar("note", text, fmt.Sprintf("max=%d", annotations.MaxNoteLength)); err != nil {
		return err
	}
	if err := c.annotations.SetNote(ctx, id, text); err != nil {
		c.notices.add(NoticeError, "Could not save note")
		return err
	}
	if strings.TrimSpace(text) == "" {
		c.notices.add(NoticeInfo, "Note removed")
	} else {
		c.notices.add(NoticeSuccess, "Note saved")
	}
	return nil
}

// Note returns the note on id.
func (c *Console) Note(ctx context.Context, id int64) (string, bool, error) {
	if err := c.authorize(authz.ActionViewNotes); err != nil {
		return "", false, err
	}
	text, ok := c.annotations.Note(ctx, id)
	return text, ok, nil
}

// Export renders the visible alerts with the given ids as CSV. With no ids
// every visible alert is exported.
func (c *Console) Export(ctx context.Context, ids []int64) ([]byte, error) {
	if err := c.authorize(authz.ActionExport); err != nil {
		return nil, err
	}
	return c.exportCSV(ctx, ids)
}

// BulkDispatch applies action to the selected alerts. The selection is
// cleared whatever the outcome.
func (c *Console) BulkDispatch(ctx context.Context, action BulkAction) (BulkResult, error) {
	defer c.selection.Clear()

	capability, ok := action.capability()
	if !ok {
		return BulkResult{}, fmt.Errorf("%w %q", ErrUnknownBulkAction, action)
	}
	if err := c.authorize(capability); err != nil {
		return BulkResult{}, err
	}
	ids := c.selection.IDs()
	if len(ids) == 0 {
		return BulkResult{}, ErrEmptySelection
	}

	res := BulkResult{Action: action, IDs: ids}
	switch action {
	case BulkAcknowledge:
		if err := c.annotations.Acknowledge(ctx, ids...); err != nil {
			c.notices.add(NoticeError, "Could not save acknowledgements")
			return BulkResult{}, err
		}
		c.notices.add(NoticeSuccess, fmt.Sprintf("%d alerts acknowledged", len(ids)))
	case BulkExport:
		data, err := c.exportCSV(ctx, ids)
		if err != nil {
			return BulkResult{}, err
		}
		res.CSV = data
		c.notices.add(NoticeInfo, fmt.Sprintf("Exporting %d alerts to CSV", len(ids)))
	case BulkAssign:
		c.notices.add(NoticeInfo, fmt.Sprintf("%d alerts assigned to %s", len(ids), c.username))
	}
	logging.Ctx(ctx).Info().
		Str("action", string(action)).
		Int("count", len(ids)).
		Str("username", c.username).
		Msg("Bulk action dispatched")
	return res, nil
}

// Capabilities lists what the operator may do.
func (c *Console) Capabilities() []authz.Action {
	return c.authorizer.Capabilities(c.role)
}

// View returns a snapshot joined with the operator's annotations.
func (c *Console) View(ctx context.Context) View {
	res := c.pipeline.Result()
	acked := c.annotations.AcknowledgedSet(ctx)
	canViewNotes := c.authorizer.Allowed(c.role, authz.ActionViewNotes)
	var notes map[int64]string
	if canViewNotes {
		notes = c.annotations.Notes(ctx)
	}
	now := c.now()

	rows := make([]Row, len(res.Alerts))
	for i, a := range res.Alerts {
		parsed := alerts.ParseMessage(a.Message)
		note, hasNote := notes[a.ID]
		rows[i] = Row{
			Alert:        a,
			Acknowledged: acked[a.ID],
			Note:         note,
			HasNote:      hasNote,
			Parsed:       parsed,
			HighRisk:     parsed.HighRiskCongestion() || parsed.HighRiskWait(),
			New:          alerts.IsRecent(a.Timestamp, now) && !acked[a.ID],
			Selected:     c.selection.Contains(a.ID),
		}
	}

	v := View{
		Username:     c.username,
		Role:         c.role,
		Capabilities: c.Capabilities(),
		Query:        c.pipeline.Query(),
		Rows:         rows,
		Pagination:   res.Pagination,
		RangeLabel:   res.Pagination.Label(),
		HasPrev:      res.Pagination.HasPrev(),
		HasNext:      res.Pagination.HasNext(),
		Stats:        res.Stats,
		Loading:      c.pipeline.Loading(),
		Selected:     c.selection.IDs(),
		AllSelected:  c.selection.AllSelected(),
		Notices:      c.notices.list(),
	}
	if res.Err != nil {
		v.Error = "Unable to load alerts"
	}
	return v
}

// authorize checks action for the console's role and records a notice on
// rejection.
func (c *Console) authorize(action authz.Action) error {
	if err := c.authorizer.Check(c.role, action); err != nil {
		c.notices.add(NoticeDenied, err.Error())
		return err
	}
	return nil
}

func (c *Console) exportCSV(ctx context.Context, ids []int64) ([]byte, error) {
	res := c.pipeline.Result()
	rows := res.Alerts
	if len(ids) > 0 {
		rows = make([]models.Alert, 0, len(ids))
		for _, a := range res.Alerts {
			if slices.Contains(ids, a.ID) {
				rows = append(rows, a)
			}
		}
	}
	var notes map[int64]string
	if c.authorizer.Allowed(c.role, authz.ActionViewNotes) {
		notes = c.annotations.Notes(ctx)
	}
	return writeCSV(rows, c.annotations.AcknowledgedSet(ctx), notes)
}
