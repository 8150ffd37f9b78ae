// Package provision seeds a starter data set for first-time users so a
// fresh account opens onto a populated dashboard. Seeding runs at most
// once per user, guarded by a marker on the profile row.
package provision

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/medsta/portal/internal/domain/cart"
	"github.com/medsta/portal/internal/domain/labtest"
	"github.com/medsta/portal/internal/domain/profile"
	"github.com/medsta/portal/internal/domain/report"
)

type Provisioner struct {
	profiles profile.Repository
	labTests labtest.Repository
	reports  report.Repository
	carts    cart.Repository
	log      zerolog.Logger
	now      func() time.Time
}

func New(profiles profile.Repository, labTests labtest.Repository, reports report.Repository, carts cart.Repository, log zerolog.Logger) *Provisioner {
	return &Provisioner{
		profiles: profiles,
		labTests: labTests,
		reports:  reports,
		carts:    carts,
		log:      log,
		now:      time.Now,
	}
}

// WithClock overrides the provisioner clock.
func (p *Provisioner) WithClock(now func() time.Time) *Provisioner {
	p.now = now
	return p
}

// EnsureDefaults seeds starter data for the user unless they were
// provisioned before. It returns true when seeding actually ran.
func (p *Provisioner) EnsureDefaults(ctx context.Context, uid string) (bool, error) {
	prof, err := p.profiles.GetByUID(ctx, uid)
	if err != nil && !errors.Is(err, profile.ErrNotFound) {
		return false, fmt.Errorf("check provisioning marker: %w", err)
	}
	if prof != nil && prof.ProvisionedAt != nil {
		return false, nil
	}

	now := p.now().UTC()

	// Seeded rows reference the user row, so it must exist first.
	if err := p.profiles.Ensure(ctx, uid, nil); err != nil {
		return false, fmt.Errorf("ensure user row: %w", err)
	}

	for _, t := range []labtest.LabTest{
		{
			UserID:      uid,
			Name:        "Complete Blood Count (CBC)",
			Mode:        labtest.ModeAtCenter,
			Center:      "City Diagnostics Center",
			ScheduledAt: now.Add(14 * 24 * time.Hour),
		},
		{
			UserID:      uid,
			Name:        "Thyroid Profile",
			Mode:        labtest.ModeAtHome,
			ScheduledAt: now.Add(-30 * 24 * time.Hour),
		},
	} {
		t := t
		if err := p.labTests.Create(ctx, &t); err != nil {
			return false, fmt.Errorf("seed lab tests: %w", err)
		}
	}

	for _, r := range []report.Report{
		{
			UserID:     uid,
			Title:      "Lipid Profile",
			Source:     "City Diagnostics Center",
			ReportDate: time.Date(2024, 7, 10, 0, 0, 0, 0, time.UTC),
		},
		{
			UserID:     uid,
			Title:      "Chest X-Ray",
			Source:     "General Hospital",
			ReportDate: time.Date(2024, 6, 25, 0, 0, 0, 0, time.UTC),
		},
	} {
		r := r
		if err := p.reports.Create(ctx, &r); err != nil {
			return false, fmt.Errorf("seed reports: %w", err)
		}
	}

	seedCart := &cart.Cart{
		UserID: uid,
		Items: []cart.Item{
			{ID: "med-paracetamol-500", Name: "Paracetamol 500mg", Qty: 2, Price: 25, Pharmacy: "City Pharmacy"},
			{ID: "med-cough-syrup-100", Name: "Cough Syrup 100ml", Qty: 1, Price: 120, Pharmacy: "HealthPlus Store"},
		},
		UpdatedAt: now,
	}
	if err := p.carts.Put(ctx, seedCart); err != nil {
		return false, fmt.Errorf("seed cart: %w", err)
	}

	if err := p.profiles.MarkProvisioned(ctx, uid, now); err != nil {
		return false, fmt.Errorf("mark provisioned: %w", err)
	}

	p.log.Info().Str("uid", uid).Msg("seeded starter data")
	return true, nil
}
