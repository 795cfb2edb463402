package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/amolmagar-dev/jobsuitex/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ResultRepository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewResultRepository(pool *pgxpool.Pool, logger *slog.Logger) *ResultRepository {
	return &ResultRepository{pool: pool, logger: logger.With("component", "result_repo")}
}

func (r *ResultRepository) SaveApplication(ctx context.Context, res *domain.ApplicationResult) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO applications (
			id, campaign_id, title, company, location, experience,
			salary, rating, skills, posted_on, apply_link,
			status, reason, applied_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		res.ID, res.CampaignID,
		res.Listing.Title, res.Listing.Company, res.Listing.Location, res.Listing.Experience,
		res.Listing.Salary, res.Listing.Rating, res.Listing.Skills, res.Listing.PostedOn, res.Listing.ApplyLink,
		string(res.Status), res.Reason, res.AppliedAt,
	)
	if err != nil {
		return fmt.Errorf("save application: %w", err)
	}
	return nil
}

func (r *ResultRepository) SaveRunSummary(ctx context.Context, s *domain.RunSummary) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO run_summaries (
			id, campaign_id, found, applied, failed, reason, started_at, ended_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		s.ID, s.CampaignID, s.Found, s.Applied, s.Failed, s.Reason, s.StartedAt, s.EndedAt,
	)
	if err != nil {
		return fmt.Errorf("save run summary: %w", err)
	}
	return nil
}

func (r *ResultRepository) ListRecentSummaries(ctx context.Context, campaignID string, limit int) ([]*domain.RunSummary, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, campaign_id, found, applied, failed, reason, started_at, ended_at
		FROM run_summaries
		WHERE campaign_id = $1
		ORDER BY started_at DESC
		LIMIT $2`,
		campaignID, limit)
	if err != nil {
		return nil, fmt.Errorf("list run summaries: %w", err)
	}
	defer rows.Close()

	var summaries []*domain.RunSummary
	for rows.Next() {
		var s domain.RunSummary
		if err := rows.Scan(&s.ID, &s.CampaignID, &s.Found, &s.Applied, &s.Failed, &s.Reason, &s.StartedAt, &s.EndedAt); err != nil {
			return nil, fmt.Errorf("scan run summary: %w", err)
		}
		summaries = append(summaries, &s)
	}
	return summaries, rows.Err()
}
