package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"fbsync/internal/compose"
	"fbsync/internal/domain"
	"fbsync/internal/logging"
	"fbsync/internal/ports"
	"fbsync/internal/settings"
)

const errNoImage = "No image available"

// PipelineDeps wires all driven adapters into the sync pipeline.
type PipelineDeps struct {
	Settings     *settings.Provider
	Catalog      ports.CatalogReader
	Ledger       ports.Ledger
	Publisher    ports.Publisher
	StoreBaseURL string
	Location     *time.Location
	Logger       *slog.Logger
	Now          func() time.Time
	NewID        func() string
}

// Pipeline implements the daily publication workflow: gate on settings,
// select candidates, compose one post, publish, settle the ledger.
type Pipeline struct {
	settings     *settings.Provider
	catalog      ports.CatalogReader
	ledger       ports.Ledger
	publisher    ports.Publisher
	storeBaseURL string
	location     *time.Location
	logger       *slog.Logger
	now          func() time.Time
	newID        func() string
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	p := &Pipeline{
		settings:     deps.Settings,
		catalog:      deps.Catalog,
		ledger:       deps.Ledger,
		publisher:    deps.Publisher,
		storeBaseURL: deps.StoreBaseURL,
		location:     deps.Location,
		logger:       deps.Logger,
		now:          deps.Now,
		newID:        deps.NewID,
	}
	if p.location == nil {
		p.location = time.UTC
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	if p.now == nil {
		p.now = time.Now
	}
	if p.newID == nil {
		p.newID = uuid.NewString
	}
	return p
}

// ProcessDay runs one sync for the day before trigger. Every failure is
// handled here: logged and, where records exist, settled into the
// ledger. Nothing propagates to the process exit code.
func (p *Pipeline) ProcessDay(ctx context.Context, trigger time.Time) error {
	logger := logging.WithRun(p.logger, p.newID())

	enabled, err := p.settings.Enabled(ctx)
	if err != nil {
		logger.Error("read sync flag", "error", err)
		return nil
	}
	if !enabled {
		logger.Info("facebook sync is disabled, skipping")
		return nil
	}

	pageID, err := p.settings.PageID(ctx)
	if err != nil {
		logger.Error("read page id", "error", err)
		return nil
	}
	accessToken, err := p.settings.AccessToken(ctx)
	if err != nil {
		logger.Error("read access token", "error", err)
		return nil
	}
	if pageID == "" || accessToken == "" {
		logger.Error("facebook page id or access token is not configured")
		return nil
	}

	windowStart, windowEnd := syncWindow(trigger, p.location)
	logger.Info("selecting candidates",
		"window_start", windowStart.Format(time.DateTime),
		"window_end", windowEnd.Format(time.DateTime))

	renderOpts, err := p.renderOptions(ctx)
	if err != nil {
		logger.Error("read render settings", "error", err)
		return nil
	}

	imageURL, err := p.settings.PostImageURL(ctx)
	if err != nil {
		logger.Error("read post image", "error", err)
		return nil
	}

	candidates := p.selectCandidates(ctx, logger, windowStart, windowEnd, renderOpts.Attributes, imageURL)
	logger.Info("found products to post", "count", len(candidates))
	if len(candidates) == 0 {
		return nil
	}

	message := compose.Batch(candidates, renderOpts)

	if imageURL == "" {
		logger.Error("no facebook post image configured")
		p.settleFailed(ctx, logger, candidates, errNoImage)
		return nil
	}

	postID, err := p.publisher.PostPhoto(ctx, pageID, accessToken, domain.PhotoPost{
		ImageURL: imageURL,
		Caption:  message,
	})
	if err != nil {
		logger.Error("posting to facebook failed", "error", err)
		p.settleFailed(ctx, logger, candidates, err.Error())
		return nil
	}

	p.settlePublished(ctx, logger, candidates, postID, message)
	logger.Info("successfully posted products to facebook",
		"count", len(candidates), "post_id", postID)
	return nil
}

func (p *Pipeline) renderOptions(ctx context.Context) (compose.Options, error) {
	attributes, err := p.settings.DisplayAttributes(ctx)
	if err != nil {
		return compose.Options{}, err
	}
	overrides, err := p.settings.LabelOverrides(ctx)
	if err != nil {
		return compose.Options{}, err
	}
	currency, err := p.settings.Currency(ctx)
	if err != nil {
		return compose.Options{}, err
	}

	return compose.Options{
		Attributes: attributes,
		Overrides:  overrides,
		Currency:   currency,
	}, nil
}

// settlePublished moves every record of the batch to published with the
// shared post id. Per-record write failures are logged and skipped so
// siblings still settle.
func (p *Pipeline) settlePublished(ctx context.Context, logger *slog.Logger, candidates []domain.Candidate, postID, message string) {
	at := p.now()
	for _, candidate := range candidates {
		rec, err := p.ledger.FindByID(ctx, candidate.RecordID)
		if err != nil {
			logger.Error("load record for publish update", "sku", candidate.SKU, "error", err)
			continue
		}
		rec.MarkPublished(postID, message, at)
		if err := p.ledger.Save(ctx, rec); err != nil {
			logger.Error("update record to published", "sku", candidate.SKU, "error", err)
		}
	}
}

// settleFailed mirrors settlePublished for the failure path; the whole
// batch shares one reason because it is one physical post.
func (p *Pipeline) settleFailed(ctx context.Context, logger *slog.Logger, candidates []domain.Candidate, reason string) {
	at := p.now()
	for _, candidate := range candidates {
		rec, err := p.ledger.FindByID(ctx, candidate.RecordID)
		if err != nil {
			logger.Error("load record for failure update", "sku", candidate.SKU, "error", err)
			continue
		}
		rec.MarkFailed(reason, at)
		if err := p.ledger.Save(ctx, rec); err != nil {
			logger.Error("update record to failed", "sku", candidate.SKU, "error", err)
		}
	}
}

// syncWindow returns yesterday's day-bounded range in loc.
func syncWindow(trigger time.Time, loc *time.Location) (time.Time, time.Time) {
	local := trigger.In(loc)
	yesterday := local.AddDate(0, 0, -1)
	start := time.Date(yesterday.Year(), yesterday.Month(), yesterday.Day(), 0, 0, 0, 0, loc)
	end := time.Date(yesterday.Year(), yesterday.Month(), yesterday.Day(), 23, 59, 59, 0, loc)
	return start, end
}
