package deployment

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
)

// Reasons reported for deployments the cleanup left alone
const (
	SkipProduction = "production deployment excluded"
	SkipKept       = "within the newest keepCount"
	SkipRecent     = "newer than the cutoff"
	SkipProtected  = "production deployments are protected"
)

// maxCleanupPages bounds how many listing pages one cleanup run reads
const maxCleanupPages = 50

// API is the part of the Vercel client the cleanup needs
type API interface {
	ListDeploymentPage(ctx context.Context, input ListInput) (*DeploymentPage, error)
	DeleteDeployment(ctx context.Context, id string) (*DeleteResult, error)
}

// CleanupInput selects what a cleanup run may delete
type CleanupInput struct {
	ProjectID         string
	OlderThanDays     int
	KeepCount         int
	ExcludeProduction bool
	DryRun            bool
}

// DeploymentRef identifies a deployment in a cleanup report
type DeploymentRef struct {
	UID       string    `json:"uid"`
	URL       string    `json:"url"`
	Target    string    `json:"target"`
	CreatedAt time.Time `json:"createdAt"`
}

// SkippedDeployment is a deployment the cleanup did not delete
type SkippedDeployment struct {
	DeploymentRef
	Reason string `json:"reason"`
}

// FailedDeployment is a deployment whose delete call failed
type FailedDeployment struct {
	DeploymentRef
	Error string `json:"error"`
}

// CleanupReport lists what a cleanup run did. In a dry run Deleted holds
// the deployments that would have been deleted.
type CleanupReport struct {
	ProjectID string              `json:"projectId"`
	Cutoff    time.Time           `json:"cutoff"`
	DryRun    bool                `json:"dryRun"`
	Scanned   int                 `json:"scanned"`
	Truncated bool                `json:"truncated,omitempty"`
	Deleted   []DeploymentRef     `json:"deleted"`
	Skipped   []SkippedDeployment `json:"skipped"`
	Failed    []FailedDeployment  `json:"failed"`
}

// Cleaner deletes old deployments while keeping the newest ones
type Cleaner struct {
	api    API
	logger *zap.Logger
	now    func() time.Time
}

// CleanerOption configures a Cleaner
type CleanerOption func(*Cleaner)

// WithCleanerClock replaces time.Now, for tests
func WithCleanerClock(now func() time.Time) CleanerOption {
	return func(c *Cleaner) {
		c.now = now
	}
}

// NewCleaner creates a Cleaner over api
func NewCleaner(api API, logger *zap.Logger, opts ...CleanerOption) *Cleaner {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Cleaner{api: api, logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// listAll follows the pagination cursor until the last page or
// maxCleanupPages. truncated is set when pages were left unread.
func (c *Cleaner) listAll(ctx context.Context, projectID string) ([]Deployment, bool, error) {
	var all []Deployment
	input := ListInput{ProjectID: projectID, Limit: MaxListLimit}
	for pages := 0; ; pages++ {
		if pages == maxCleanupPages {
			c.logger.Warn("Cleanup stopped listing at page limit",
				zap.String("project_id", projectID),
				zap.Int("pages", pages),
				zap.Int("scanned", len(all)))
			return all, true, nil
		}
		page, err := c.api.ListDeploymentPage(ctx, input)
		if err != nil {
			return nil, false, err
		}
		all = append(all, page.Deployments...)
		// stop on a cursor that does not move back in time
		if page.Next == 0 || len(page.Deployments) == 0 || (input.Until > 0 && page.Next >= input.Until) {
			return all, false, nil
		}
		input.Until = page.Next
	}
}

// Cleanup deletes deployments older than OlderThanDays. Every listing page
// of the project is read, then candidates are taken newest first; production
// ones are dropped when ExcludeProduction is set, the first KeepCount
// remaining are kept and the rest are deleted when older than the cutoff.
// Production deployments that reach the delete step are refused by the
// client and reported as skipped.
func (c *Cleaner) Cleanup(ctx context.Context, input CleanupInput) (*CleanupReport, error) {
	if input.OlderThanDays < 1 {
		return nil, fmt.Errorf("vercel: olderThanDays must be at least 1")
	}
	if input.KeepCount < 0 {
		return nil, fmt.Errorf("vercel: keepCount cannot be negative")
	}

	deployments, truncated, err := c.listAll(ctx, input.ProjectID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(deployments, func(i, j int) bool {
		return deployments[i].CreatedAt.After(deployments[j].CreatedAt)
	})

	cutoff := c.now().UTC().AddDate(0, 0, -input.OlderThanDays)
	report := &CleanupReport{
		ProjectID: input.ProjectID,
		Cutoff:    cutoff,
		DryRun:    input.DryRun,
		Scanned:   len(deployments),
		Truncated: truncated,
		Deleted:   []DeploymentRef{},
		Skipped:   []SkippedDeployment{},
		Failed:    []FailedDeployment{},
	}

	kept := 0
	for _, d := range deployments {
		ref := DeploymentRef{UID: d.UID, URL: d.URL, Target: d.Target, CreatedAt: d.CreatedAt}

		switch {
		case input.ExcludeProduction && d.IsProduction():
			report.Skipped = append(report.Skipped, SkippedDeployment{ref, SkipProduction})
			continue
		case kept < input.KeepCount:
			kept++
			report.Skipped = append(report.Skipped, SkippedDeployment{ref, SkipKept})
			continue
		case !d.CreatedAt.Before(cutoff):
			report.Skipped = append(report.Skipped, SkippedDeployment{ref, SkipRecent})
			continue
		}

		if input.DryRun {
			if d.IsProduction() {
				report.Skipped = append(report.Skipped, SkippedDeployment{ref, SkipProtected})
				continue
			}
			report.Deleted = append(report.Deleted, ref)
			continue
		}

		if _, err := c.api.DeleteDeployment(ctx, d.UID); err != nil {
			if errors.Is(err, ErrProductionProtected) {
				report.Skipped = append(report.Skipped, SkippedDeployment{ref, SkipProtected})
				continue
			}
			c.logger.Warn("Cleanup failed to delete deployment",
				zap.String("deployment_id", d.UID),
				zap.Error(err))
			report.Failed = append(report.Failed, FailedDeployment{ref, err.Error()})
			continue
		}
		report.Deleted = append(report.Deleted, ref)
	}

	c.logger.Info("Deployment cleanup finished",
		zap.String("project_id", input.ProjectID),
		zap.Bool("dry_run", input.DryRun),
		zap.Int("scanned", report.Scanned),
		zap.Int("deleted", len(report.Deleted)),
		zap.Int("failed", len(report.Failed)))
	return report, nil
}
