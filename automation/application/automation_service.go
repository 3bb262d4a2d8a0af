package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Abhishek-kmr525/admin.freereminders.net-sub000/automation/domain"
	"github.com/Abhishek-kmr525/admin.freereminders.net-sub000/automation/schedule"
	"github.com/Abhishek-kmr525/admin.freereminders.net-sub000/contentgen"
	pkgError "github.com/Abhishek-kmr525/admin.freereminders.net-sub000/pkg/error"
	"github.com/Abhishek-kmr525/admin.freereminders.net-sub000/pkg/timeutils"
	"github.com/Abhishek-kmr525/admin.freereminders.net-sub000/validations"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	defaultPreviewLimit = 20
	maxPreviewLimit     = 366
)

// ExtendReport aggregates one horizon-extension pass.
type ExtendReport struct {
	Automations int      `json:"automations"`
	Skipped     int      `json:"skipped"`
	Report      Report   `json:"report"`
	Errors      []string `json:"errors,omitempty"`
}

type AutomationService struct {
	automations  domain.AutomationRepository
	posts        domain.PostRepository
	credentials  domain.CredentialRepository
	materializer *Materializer
	platformName string
	now          func() time.Time
}

func NewAutomationService(automations domain.AutomationRepository, posts domain.PostRepository, credentials domain.CredentialRepository, materializer *Materializer, platformName string) *AutomationService {
	return &AutomationService{
		automations:  automations,
		posts:        posts,
		credentials:  credentials,
		materializer: materializer,
		platformName: platformName,
		now:          time.Now,
	}
}

// Create validates and stores the automation, then materializes its first
// look-ahead window. Generation problems never fail the call.
func (s *AutomationService) Create(ctx context.Context, tenantID string, req domain.CreateAutomationRequest) (*domain.Automation, Report, error) {
	if tenantID == "" {
		return nil, Report{}, domain.ErrMissingTenant
	}
	a, err := buildAutomation(ctx, req)
	if err != nil {
		return nil, Report{}, err
	}
	a.ID = uuid.NewString()
	a.TenantID = tenantID
	a.Status = domain.AutomationActive

	if err := s.automations.Create(ctx, a); err != nil {
		return nil, Report{}, fmt.Errorf("store automation: %w", err)
	}
	logrus.WithFields(logrus.Fields{
		"automation_id": a.ID,
		"tenant_id":     tenantID,
		"frequency":     a.Frequency,
	}).Info("[AUTOMATION] created")

	report, err := s.materializer.MaterializeAt(ctx, a, s.now())
	if err != nil {
		return a, report, fmt.Errorf("materialize: %w", err)
	}
	return a, report, nil
}

func buildAutomation(ctx context.Context, req domain.CreateAutomationRequest) (*domain.Automation, error) {
	if err := validations.ValidateCreateAutomation(ctx, req); err != nil {
		return nil, err
	}

	provider, err := contentgen.ParseProvider(req.Provider)
	if err != nil {
		return nil, pkgError.ValidationError(err.Error())
	}
	freq, err := schedule.ParseFrequency(req.Frequency)
	if err != nil {
		return nil, pkgError.ValidationError(err.Error())
	}
	var days []time.Weekday
	if freq == schedule.CustomDays {
		if days, err = timeutils.ParseWeekdays(req.Days); err != nil {
			return nil, pkgError.ValidationError(err.Error())
		}
	}
	clock, err := timeutils.ParseClock(req.TimeOfDay)
	if err != nil {
		return nil, pkgError.ValidationError(err.Error())
	}
	tz := strings.TrimSpace(req.Timezone)
	if tz == "" {
		tz = "UTC"
	}

	a := &domain.Automation{
		Name:         strings.TrimSpace(req.Name),
		Topic:        strings.TrimSpace(req.Topic),
		Provider:     provider,
		Style:        strings.TrimSpace(req.Style),
		Instructions: strings.TrimSpace(req.Instructions),
		TimeOfDay:    clock.String(),
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		Frequency:    freq,
		Days:         days,
		Timezone:     tz,
		Hashtags:     cleanHashtags(req.Hashtags),
	}
	if _, err := a.ScheduleParams(); err != nil {
		return nil, pkgError.ValidationError(err.Error())
	}
	return a, nil
}

func cleanHashtags(tags []string) []string {
	var out []string
	for _, t := range tags {
		t = strings.TrimPrefix(strings.TrimSpace(t), "#")
		t = strings.ReplaceAll(t, ",", "")
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

func (s *AutomationService) Get(ctx context.Context, tenantID, id string) (*domain.Automation, error) {
	return s.automations.Get(ctx, tenantID, id)
}

func (s *AutomationService) List(ctx context.Context, tenantID string, filter domain.AutomationFilter) ([]*domain.Automation, error) {
	return s.automations.List(ctx, tenantID, filter)
}

func (s *AutomationService) Pause(ctx context.Context, tenantID, id string) (*domain.Automation, error) {
	a, err := s.automations.Get(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if a.Status != domain.AutomationActive {
		return nil, fmt.Errorf("%w: cannot pause a %s automation", domain.ErrInvalidTransition, a.Status)
	}
	if err := s.automations.UpdateStatus(ctx, tenantID, id, domain.AutomationPaused); err != nil {
		return nil, err
	}
	a.Status = domain.AutomationPaused
	return a, nil
}

// Resume reactivates a paused automation and tops up its look-ahead window.
func (s *AutomationService) Resume(ctx context.Context, tenantID, id string) (*domain.Automation, Report, error) {
	a, err := s.automations.Get(ctx, tenantID, id)
	if err != nil {
		return nil, Report{}, err
	}
	if a.Status != domain.AutomationPaused {
		return nil, Report{}, fmt.Errorf("%w: cannot resume a %s automation", domain.ErrInvalidTransition, a.Status)
	}
	if err := s.automations.UpdateStatus(ctx, tenantID, id, domain.AutomationActive); err != nil {
		return nil, Report{}, err
	}
	a.Status = domain.AutomationActive

	report, err := s.materializer.MaterializeAt(ctx, a, s.now())
	if err != nil {
		return a, report, fmt.Errorf("materialize: %w", err)
	}
	return a, report, nil
}

// Delete marks the automation deleted and drops its pending posts. Posts
// that were already attempted are kept for history.
func (s *AutomationService) Delete(ctx context.Context, tenantID, id string) (int64, error) {
	a, err := s.automations.Get(ctx, tenantID, id)
	if err != nil {
		return 0, err
	}
	if a.Status == domain.AutomationDeleted {
		return 0, nil
	}
	if err := s.automations.UpdateStatus(ctx, tenantID, id, domain.AutomationDeleted); err != nil {
		return 0, err
	}
	removed, err := s.posts.DeletePending(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("delete pending posts: %w", err)
	}
	logrus.WithFields(logrus.Fields{"automation_id": id, "removed": removed}).Info("[AUTOMATION] deleted")
	return removed, nil
}

// Preview expands a request without storing anything.
func (s *AutomationService) Preview(ctx context.Context, req domain.CreateAutomationRequest, limit int) ([]domain.PreviewItem, error) {
	a, err := buildAutomation(ctx, req)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultPreviewLimit
	}
	if limit > maxPreviewLimit {
		limit = maxPreviewLimit
	}

	params, err := a.ScheduleParams()
	if err != nil {
		return nil, pkgError.ValidationError(err.Error())
	}
	occ, err := schedule.Occurrences(params, schedule.Window{Limit: limit})
	if err != nil {
		return nil, pkgError.ValidationError(err.Error())
	}

	items := make([]domain.PreviewItem, len(occ))
	for i, o := range occ {
		local := o.At.In(params.Location)
		items[i] = domain.PreviewItem{
			Day:     o.Day,
			At:      o.At,
			Local:   local.Format("2006-01-02 15:04 MST"),
			Weekday: local.Weekday().String(),
		}
	}
	return items, nil
}

// ExtendHorizons materializes the current look-ahead window of every active
// automation that has not ended. Safe to run repeatedly.
func (s *AutomationService) ExtendHorizons(ctx context.Context) (ExtendReport, error) {
	now := s.now()
	var out ExtendReport

	active, err := s.automations.ListActive(ctx)
	if err != nil {
		return out, fmt.Errorf("list active automations: %w", err)
	}

	for _, a := range active {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		if a.Ended(now) {
			out.Skipped++
			continue
		}
		out.Automations++
		report, err := s.materializer.MaterializeAt(ctx, a, now)
		out.Report.add(report)
		if err != nil {
			out.Errors = append(out.Errors, fmt.Sprintf("%s: %v", a.ID, err))
			logrus.WithError(err).WithField("automation_id", a.ID).Error("[MATERIALIZER] horizon extension failed")
		}
	}

	logrus.WithFields(logrus.Fields{
		"automations": out.Automations,
		"created":     out.Report.Created,
		"skipped":     out.Skipped,
	}).Info("[MATERIALIZER] horizons extended")
	return out, nil
}

func (s *AutomationService) ListPosts(ctx context.Context, tenantID string, filter domain.PostFilter) ([]*domain.ScheduledPost, error) {
	return s.posts.List(ctx, tenantID, filter)
}

func (s *AutomationService) GetPost(ctx context.Context, tenantID, id string) (*domain.ScheduledPost, error) {
	return s.posts.Get(ctx, tenantID, id)
}

// UpdatePostContent edits a post that has not been picked up yet.
func (s *AutomationService) UpdatePostContent(ctx context.Context, tenantID, id string, req domain.UpdatePostRequest) (*domain.ScheduledPost, error) {
	if err := validations.ValidateUpdatePost(ctx, req); err != nil {
		return nil, err
	}
	if err := s.posts.UpdateContent(ctx, tenantID, id, strings.TrimSpace(req.Content)); err != nil {
		return nil, err
	}
	return s.posts.Get(ctx, tenantID, id)
}

// ResubmitPost puts a failed post back in the queue. Published posts are
// never resubmitted to avoid posting twice.
func (s *AutomationService) ResubmitPost(ctx context.Context, tenantID, id string) (*domain.ScheduledPost, error) {
	if err := s.posts.Resubmit(ctx, tenantID, id); err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{"post_id": id, "tenant_id": tenantID}).Info("[AUTOMATION] post resubmitted")
	return s.posts.Get(ctx, tenantID, id)
}

func (s *AutomationService) PostStats(ctx context.Context, tenantID string) (domain.PostStats, error) {
	return s.posts.Stats(ctx, tenantID)
}

// StoreCredential records the token handed over by the vault.
func (s *AutomationService) StoreCredential(ctx context.Context, tenantID string, req domain.StoreCredentialRequest) (*domain.Credential, error) {
	if err := validations.ValidateStoreCredential(ctx, req); err != nil {
		return nil, err
	}
	cred := &domain.Credential{
		TenantID:       tenantID,
		Platform:       s.platformName,
		AccessToken:    req.AccessToken,
		RefreshToken:   req.RefreshToken,
		ExpiresAt:      req.ExpiresAt.UTC(),
		PlatformUserID: req.PlatformUserID,
	}
	if err := s.credentials.Upsert(ctx, cred); err != nil {
		return nil, fmt.Errorf("store credential: %w", err)
	}
	return cred, nil
}

// CredentialStatus describes the stored token without exposing it.
type CredentialStatus struct {
	Platform       string    `json:"platform"`
	Connected      bool      `json:"connected"`
	Valid          bool      `json:"valid"`
	ExpiresAt      time.Time `json:"expires_at,omitempty"`
	PlatformUserID string    `json:"platform_user_id,omitempty"`
}

func (s *AutomationService) CredentialStatus(ctx context.Context, tenantID string) (CredentialStatus, error) {
	status := CredentialStatus{Platform: s.platformName}
	cred, err := s.credentials.Get(ctx, tenantID, s.platformName)
	if err != nil {
		if IsCredentialError(err) {
			return status, nil
		}
		return status, err
	}
	status.Connected = true
	status.Valid = cred.ValidAt(s.now())
	status.ExpiresAt = cred.ExpiresAt
	status.PlatformUserID = cred.PlatformUserID
	return status, nil
}
