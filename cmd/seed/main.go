// seed creates the engine schema and inserts a demo campaign with
// portal credentials into the local dev database.
// Run: go run ./cmd/seed
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/amolmagar-dev/jobsuitex/internal/domain"
	"github.com/amolmagar-dev/jobsuitex/internal/infrastructure/postgres"
)

const seedOwner = "seed-owner"

const schema = `
CREATE EXTENSION IF NOT EXISTS "pgcrypto";

CREATE TABLE IF NOT EXISTS campaigns (
	id               UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	owner_id         TEXT        NOT NULL,
	active           BOOLEAN     NOT NULL DEFAULT TRUE,
	portal           TEXT        NOT NULL,
	notify_email     TEXT        NOT NULL DEFAULT '',
	keywords         TEXT[]      NOT NULL DEFAULT '{}',
	location         TEXT        NOT NULL DEFAULT '',
	min_experience   INT         NOT NULL DEFAULT 0,
	max_experience   INT         NOT NULL DEFAULT 0,
	min_rating       DOUBLE PRECISION NOT NULL DEFAULT 0,
	required_skills  TEXT[]      NOT NULL DEFAULT '{}',
	exclude_companies TEXT[]     NOT NULL DEFAULT '{}',
	frequency        TEXT        NOT NULL,
	days             INT[]       NOT NULL DEFAULT '{}',
	time_of_day      TEXT        NOT NULL DEFAULT '',
	hourly_interval  INT         NOT NULL DEFAULT 0,
	profile_text     TEXT        NOT NULL DEFAULT '',
	last_run_at      TIMESTAMPTZ,
	next_run_at      TIMESTAMPTZ NOT NULL,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_campaigns_due
	ON campaigns (next_run_at) WHERE active = TRUE;

CREATE TABLE IF NOT EXISTS portal_credentials (
	owner_id   TEXT NOT NULL,
	portal     TEXT NOT NULL,
	username   TEXT NOT NULL,
	password   TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (owner_id, portal)
);

CREATE TABLE IF NOT EXISTS applications (
	id          UUID PRIMARY KEY,
	campaign_id UUID NOT NULL,
	title       TEXT NOT NULL,
	company     TEXT NOT NULL,
	location    TEXT NOT NULL DEFAULT '',
	experience  TEXT NOT NULL DEFAULT '',
	salary      TEXT NOT NULL DEFAULT '',
	rating      TEXT NOT NULL DEFAULT '',
	skills      TEXT[] NOT NULL DEFAULT '{}',
	posted_on   TEXT NOT NULL DEFAULT '',
	apply_link  TEXT NOT NULL DEFAULT '',
	status      TEXT NOT NULL,
	reason      TEXT NOT NULL DEFAULT '',
	applied_at  TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_applications_campaign
	ON applications (campaign_id, applied_at DESC);

CREATE TABLE IF NOT EXISTS run_summaries (
	id          UUID PRIMARY KEY,
	campaign_id UUID NOT NULL,
	found       INT  NOT NULL DEFAULT 0,
	applied     INT  NOT NULL DEFAULT 0,
	failed      INT  NOT NULL DEFAULT 0,
	reason      TEXT NOT NULL DEFAULT '',
	started_at  TIMESTAMPTZ NOT NULL,
	ended_at    TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_run_summaries_campaign
	ON run_summaries (campaign_id, started_at DESC);
`

func main() {
	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set, run: direnv allow")
	}

	pool, err := postgres.NewPool(ctx, dbURL)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer pool.Close()

	if _, err := pool.Exec(ctx, schema); err != nil {
		log.Fatalf("create schema: %v", err)
	}

	if _, err := pool.Exec(ctx, `
		INSERT INTO portal_credentials (owner_id, portal, username, password)
		VALUES ($1, 'naukri', 'seed@test.local', 'changeme')
		ON CONFLICT (owner_id, portal) DO UPDATE SET updated_at = NOW()`,
		seedOwner,
	); err != nil {
		log.Fatalf("upsert credentials: %v", err)
	}

	firstRun := time.Now().Add(time.Minute)

	var campaignID string
	err = pool.QueryRow(ctx, `
		INSERT INTO campaigns (
			owner_id, active, portal, notify_email,
			keywords, location, min_experience, max_experience,
			min_rating, required_skills, exclude_companies,
			frequency, days, time_of_day, hourly_interval,
			profile_text, next_run_at
		) VALUES (
			$1, TRUE, 'naukri', 'seed@test.local',
			$2, 'Pune', 2, 8,
			3.5, $3, $4,
			$5, '{}', '09:30', 0,
			$6, $7
		)
		RETURNING id`,
		seedOwner,
		[]string{"golang", "backend"},
		[]string{"go"},
		[]string{"Evil Corp"},
		string(domain.FrequencyDaily),
		"Backend engineer with 4 years of Go, Postgres and Kubernetes. Based in Pune, 30 day notice period, open to hybrid roles.",
		firstRun,
	).Scan(&campaignID)
	if err != nil {
		log.Fatalf("insert campaign: %v", err)
	}

	fmt.Println("Seed complete")
	fmt.Println()
	fmt.Printf("  Owner:       %s\n", seedOwner)
	fmt.Printf("  Campaign:    %s\n", campaignID)
	fmt.Printf("  First run:   %s  (~1 minute from now)\n", firstRun.Format(time.RFC3339))
	fmt.Println()
	fmt.Println("  Trigger immediately:")
	fmt.Printf("    curl -X POST localhost:8080/campaigns/%s/run-now\n", campaignID)
}
