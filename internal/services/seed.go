package services

import (
	"context"
	"log"
	"time"

	"github.com/tfml/tender-console/internal/models"
	"github.com/tfml/tender-console/internal/repository"
)

// Seeder наполняет пустую базу примерами тендеров с готовыми EOI,
// чтобы дашборд не встречал пользователя нулями.
type Seeder struct {
	Repo   repository.TenderRepository
	Drafts *DraftService
	Logger *log.Logger
}

// NewSeeder создаёт новый экземпляр Seeder.
func NewSeeder(repo repository.TenderRepository, drafts *DraftService, logger *log.Logger) *Seeder {
	return &Seeder{Repo: repo, Drafts: drafts, Logger: logger}
}

type sampleTender struct {
	title       string
	org         string
	sector      models.TenderSector
	inDays      int
	description string
	status      models.TenderStatus
	assignee    string
}

var samples = []sampleTender{
	{
		title:       "IFMA Abuja Secretariat FM Services",
		org:         "IFMA Nigeria",
		sector:      models.FacilitiesManagement,
		inDays:      6,
		description: "Provision of integrated FM services (hard + soft) for IFMA Secretariat building in Abuja, including planned preventive maintenance, SLA reporting, and helpdesk.",
		status:      models.DraftTender,
		assignee:    "bids@tfml.ng",
	},
	{
		title:       "AATC HQ Janitorial & Waste Management",
		org:         "Afreximbank AATC",
		sector:      models.FacilitiesManagement,
		inDays:      12,
		description: "Comprehensive janitorial, pest control, and waste management services for AATC HQ office complex with quarterly deep-clean and ISO-aligned documentation.",
		status:      models.SubmittedTender,
		assignee:    "enoch@tfml.ng",
	},
	{
		title:       "Wuse District Streetlighting Retrofit",
		org:         "FCTA",
		sector:      models.Energy,
		inDays:      3,
		description: "LED retrofit and solar hybridization for Wuse district arterial roads, including energy audit and post-implementation M&V.",
		status:      models.PendingTender,
		assignee:    "femi@tfml.ng",
	},
	{
		title:       "MTN Regional Hub M&E Maintenance",
		org:         "MTN Nigeria",
		sector:      models.Construction,
		inDays:      20,
		description: "HVAC, power distribution, fire systems and generator maintenance for MTN regional hub; 24/7 response; CMMS-based reporting.",
		status:      models.DraftTender,
		assignee:    "greg@tfml.ng",
	},
	{
		title:       "Airport Concourse Cleaning & Consumables",
		org:         "FAAN",
		sector:      models.FacilitiesManagement,
		inDays:      9,
		description: "Terminal concourse cleaning, restrooms, and traveler touchpoints with IoT counters and predictive replenishment for consumables.",
		status:      models.SubmittedTender,
		assignee:    "bids@tfml.ng",
	},
	{
		title:       "Data Centre Critical Environment FM",
		org:         "NIBSS",
		sector:      models.FacilitiesManagement,
		inDays:      1,
		description: "Tier-III data centre operations: chilled water, precision cooling, UPS, fire suppression; 15-min incident response; trained critical environment techs.",
		status:      models.DraftTender,
		assignee:    "ops@tfml.ng",
	},
}

// Run добавляет примеры, только если база пуста. Для каждого тендера
// сразу генерируется первый EOI.
func (s *Seeder) Run(ctx context.Context) error {
	rows, err := s.Repo.GetTenders(ctx)
	if err != nil {
		return err
	}
	if len(rows) > 0 {
		return nil
	}

	today := time.Now()
	for i, sample := range samples {
		tender := models.Tender{
			ID:          int64(i + 1),
			Title:       sample.title,
			Org:         sample.org,
			Sector:      sample.sector,
			Deadline:    today.AddDate(0, 0, sample.inDays).Format(models.DeadlineLayout),
			Description: sample.description,
			Status:      sample.status,
			Score:       0.0,
			Assignee:    sample.assignee,
			Drafts:      []models.Draft{},
		}
		if err := s.Repo.SaveTender(ctx, &tender); err != nil {
			return err
		}
		if _, err := s.Drafts.CreateDraft(ctx, tender.ID, models.EOIKind, ""); err != nil {
			s.Logger.Printf("seed: failed to generate EOI for %q: %v", tender.Title, err)
		}
	}
	s.Logger.Printf("seeded %d sample tenders", len(samples))
	return nil
}
