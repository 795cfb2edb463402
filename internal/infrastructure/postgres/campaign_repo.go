package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/amolmagar-dev/jobsuitex/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CampaignRepository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewCampaignRepository(pool *pgxpool.Pool, logger *slog.Logger) *CampaignRepository {
	return &CampaignRepository{pool: pool, logger: logger.With("component", "campaign_repo")}
}

const campaignColumns = `
	id, owner_id, active, portal, notify_email,
	keywords, location, min_experience, max_experience,
	min_rating, required_skills, exclude_companies,
	frequency, days, time_of_day, hourly_interval,
	profile_text, last_run_at, next_run_at, created_at, updated_at`

func (r *CampaignRepository) FindDue(ctx context.Context, now time.Time) ([]*domain.Campaign, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM campaigns
		WHERE active = TRUE AND next_run_at <= $1
		ORDER BY next_run_at ASC`, campaignColumns)

	rows, err := r.pool.Query(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("find due campaigns: %w", err)
	}
	defer rows.Close()

	var campaigns []*domain.Campaign
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, err
		}
		campaigns = append(campaigns, c)
	}
	return campaigns, rows.Err()
}

func (r *CampaignRepository) FindByID(ctx context.Context, id string) (*domain.Campaign, error) {
	query := fmt.Sprintf(`SELECT %s FROM campaigns WHERE id = $1`, campaignColumns)
	return scanCampaign(r.pool.QueryRow(ctx, query, id))
}

func (r *CampaignRepository) List(ctx context.Context, ownerID string) ([]*domain.Campaign, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM campaigns
		WHERE owner_id = $1
		ORDER BY created_at DESC`, campaignColumns)

	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list campaigns: %w", err)
	}
	defer rows.Close()

	var campaigns []*domain.Campaign
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, err
		}
		campaigns = append(campaigns, c)
	}
	return campaigns, rows.Err()
}

func (r *CampaignRepository) Create(ctx context.Context, c *domain.Campaign) (*domain.Campaign, error) {
	query := fmt.Sprintf(`
		INSERT INTO campaigns (
			owner_id, active, portal, notify_email,
			keywords, location, min_experience, max_experience,
			min_rating, required_skills, exclude_companies,
			frequency, days, time_of_day, hourly_interval,
			profile_text, next_run_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING %s`, campaignColumns)

	row := r.pool.QueryRow(ctx, query,
		c.OwnerID, c.Active, c.Portal, c.NotifyEmail,
		c.Search.Keywords, c.Search.Location, c.Search.MinExperience, c.Search.MaxExperience,
		c.Filter.MinRating, c.Filter.RequiredSkills, c.Filter.ExcludeCompanies,
		string(c.Schedule.Frequency), weekdaysToInts(c.Schedule.Days), c.Schedule.TimeOfDay, c.Schedule.HourlyInterval,
		c.ProfileText, c.NextRunAt,
	)
	return scanCampaign(row)
}

func (r *CampaignRepository) UpdateScheduleTimestamps(ctx context.Context, id string, lastRun, nextRun *time.Time) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE campaigns
		SET last_run_at = COALESCE($2, last_run_at), next_run_at = COALESCE($3, next_run_at), updated_at = NOW()
		WHERE id = $1`,
		id, lastRun, nextRun)
	if err != nil {
		return fmt.Errorf("update schedule timestamps: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCampaignNotFound
	}
	return nil
}

func (r *CampaignRepository) SetActive(ctx context.Context, id string, active bool) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE campaigns
		SET active = $2, updated_at = NOW()
		WHERE id = $1`,
		id, active)
	if err != nil {
		return fmt.Errorf("set campaign active: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCampaignNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCampaign(row rowScanner) (*domain.Campaign, error) {
	var (
		c         domain.Campaign
		frequency string
		days      []int32
	)
	err := row.Scan(
		&c.ID, &c.OwnerID, &c.Active, &c.Portal, &c.NotifyEmail,
		&c.Search.Keywords, &c.Search.Location, &c.Search.MinExperience, &c.Search.MaxExperience,
		&c.Filter.MinRating, &c.Filter.RequiredSkills, &c.Filter.ExcludeCompanies,
		&frequency, &days, &c.Schedule.TimeOfDay, &c.Schedule.HourlyInterval,
		&c.ProfileText, &c.LastRunAt, &c.NextRunAt, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCampaignNotFound
		}
		return nil, fmt.Errorf("scan campaign: %w", err)
	}

	c.Schedule.Frequency = domain.Frequency(frequency)
	c.Schedule.Days = make([]time.Weekday, len(days))
	for i, d := range days {
		c.Schedule.Days[i] = time.Weekday(d)
	}
	return &c, nil
}

func weekdaysToInts(days []time.Weekday) []int32 {
	out := make([]int32, len(days))
	for i, d := range days {
		out[i] = int32(d)
	}
	return out
}
