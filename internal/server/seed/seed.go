// Package seed loads projects and milestones from a YAML fixture file into
// the database. Milestones have no create API; local environments use this
// to get rows to work against.
package seed

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/dmitrijs2005/milestonegate/internal/common"
	"github.com/dmitrijs2005/milestonegate/internal/dbx"
)

type Milestone struct {
	ID         string `yaml:"id"`
	Title      string `yaml:"title"`
	PriceMinor int64  `yaml:"price_minor"`
}

type Project struct {
	ID           string      `yaml:"id"`
	Title        string      `yaml:"title"`
	FreelancerID string      `yaml:"freelancer_id"`
	ClientID     string      `yaml:"client_id"`
	Milestones   []Milestone `yaml:"milestones"`
}

type Fixture struct {
	Projects []Project `yaml:"projects"`
}

// Load reads and validates a fixture. Milestones without an id get a
// random UUID.
func Load(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	f := &Fixture{}
	if err := yaml.Unmarshal(data, f); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrValidation, err)
	}
	if err := f.validate(); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *Fixture) validate() error {
	for i := range f.Projects {
		p := &f.Projects[i]
		if p.ID == "" || p.FreelancerID == "" || p.ClientID == "" {
			return fmt.Errorf("%w: project %d needs id, freelancer_id and client_id", common.ErrValidation, i)
		}
		if p.FreelancerID == p.ClientID {
			return fmt.Errorf("%w: project %s: freelancer and client must differ", common.ErrValidation, p.ID)
		}
		for j := range p.Milestones {
			m := &p.Milestones[j]
			if m.PriceMinor < 0 {
				return fmt.Errorf("%w: milestone %q has negative price", common.ErrValidation, m.Title)
			}
			if m.ID == "" {
				m.ID = uuid.NewString()
			}
		}
	}
	return nil
}

const upsertProject = `
INSERT INTO projects (id, title, freelancer_id, client_id)
VALUES ($1, $2, $3, $4)
ON CONFLICT (id) DO UPDATE
SET title = EXCLUDED.title, freelancer_id = EXCLUDED.freelancer_id, client_id = EXCLUDED.client_id`

const insertMilestone = `
INSERT INTO milestones (id, project_id, title, price_minor)
VALUES ($1, $2, $3, $4)
ON CONFLICT (id) DO NOTHING`

// Apply writes the fixture in one transaction. Existing milestones are left
// as they are so a rerun never resets workflow state.
func Apply(ctx context.Context, db *sql.DB, f *Fixture) (inserted int, err error) {
	err = dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		inserted = 0
		for _, p := range f.Projects {
			if _, err := tx.ExecContext(ctx, upsertProject, p.ID, p.Title, p.FreelancerID, p.ClientID); err != nil {
				return fmt.Errorf("%w: project %s: %w", common.ErrPersistence, p.ID, dbx.Classify(err))
			}
			for _, m := range p.Milestones {
				res, err := tx.ExecContext(ctx, insertMilestone, m.ID, p.ID, m.Title, m.PriceMinor)
				if err != nil {
					return fmt.Errorf("%w: milestone %s: %w", common.ErrPersistence, m.ID, dbx.Classify(err))
				}
				if n, _ := res.RowsAffected(); n > 0 {
					inserted++
				}
			}
		}
		return nil
	})
	return inserted, err
}
