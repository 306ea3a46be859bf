package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"case_flow_app_go/logging"
	"case_flow_app_go/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DefaultSeedCases is the number of demo cases inserted by SeedDemoData
const DefaultSeedCases = 8

var seedCaseTypes = []string{
	"Personal Injury - Car Accident",
	"Personal Injury - Slip and Fall",
	"Workers Compensation",
	"Medical Malpractice",
	"Product Liability",
	"Wrongful Death",
	"Dog Bite Injury",
	"Premises Liability",
}

var seedClients = []string{
	"Sarah Johnson", "Michael Chen", "Emma Rodriguez", "David Williams",
	"Lisa Thompson", "James Martinez", "Amanda Davis", "Robert Garcia",
	"Jennifer Lee", "Christopher Brown", "Maria Gonzalez", "William Taylor",
}

var seedPhones = []string{
	"(555) 123-4567", "(555) 234-5678", "(555) 345-6789", "(555) 456-7890",
	"(555) 567-8901", "(555) 678-9012", "(555) 789-0123", "(555) 890-1234",
}

var seedFiles = []struct {
	name     string
	fileType string
	size     string
}{
	{"Medical_Bill_ER_Visit.pdf", models.FileTypePDF, "245 KB"},
	{"Police_Report_Accident.pdf", models.FileTypePDF, "1.2 MB"},
	{"Witness_Statement.pdf", models.FileTypeDocument, "88 KB"},
	{"Property_Damage_Photos.jpg", models.FileTypeImage, "3.4 MB"},
	{"Lost_Wages_Documentation.csv", models.FileTypeCSV, "12 KB"},
}

var seedEmails = []struct {
	subject string
	body    string
}{
	{"Re: My accident claim - medical bills", "I just got back from my follow-up appointment and wanted to update you. The doctor said I might need physical therapy for another 6-8 weeks.\n\nThanks for all your help,\n%s"},
	{"Question about my case timeline", "I wanted to check in on the status of my case. Do you have any updates on when we might hear from the insurance company?\n\nBest regards,\n%s"},
	{"Urgent: Settlement offer received", "I just received a letter from the insurance company with a settlement offer. Can we schedule a call to discuss this?\n\nThanks,\n%s"},
}

var seedTexts = []string{
	"forgot to mention the store manager saw me fall",
	"went to physical therapy today. they said 3x per week for 2 months. will insurance cover this?",
	"URGENT: insurance company called me directly. i didnt answer. what should i do???",
	"just got the bill from the ER. is this normal?",
}

var seedStatuses = []string{
	models.CaseStatusActive,
	models.CaseStatusActive,
	models.CaseStatusPending,
	models.CaseStatusOpen,
	models.CaseStatusOnHold,
	models.CaseStatusClosed,
}

var seedPriorities = []string{
	models.CasePriorityHigh,
	models.CasePriorityMedium,
	models.CasePriorityLow,
	models.CasePriorityUrgent,
}

// SeedSummary reports what SeedDemoData inserted
type SeedSummary struct {
	Cases        int
	Emails       int
	TextMessages int
	Files        int
	ReasonChains int
	Skipped      bool
}

// SeedDemoData inserts demo cases with communications, files and a pending
// agent action each. It does nothing when any case already exists.
func SeedDemoData(ctx context.Context, db *gorm.DB, count int, now time.Time) (*SeedSummary, error) {
	if count <= 0 {
		return nil, NewValidationError("case count must be positive")
	}

	var existing int64
	if err := db.WithContext(ctx).Model(&models.Case{}).Count(&existing).Error; err != nil {
		return nil, persistenceError("count cases", err)
	}
	if existing > 0 {
		logging.L().Info("Cases already exist, skipping demo seed", zap.Int64("cases", existing))
		return &SeedSummary{Skipped: true}, nil
	}

	summary := &SeedSummary{}
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := 0; i < count; i++ {
			if err := seedCase(tx, i, now, summary); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, persistenceError("seed demo data", err)
	}

	logging.L().Info("Seeded demo data",
		zap.Int("cases", summary.Cases),
		zap.Int("emails", summary.Emails),
		zap.Int("text_messages", summary.TextMessages),
		zap.Int("files", summary.Files),
	)
	return summary, nil
}

func seedCase(tx *gorm.DB, i int, now time.Time, summary *SeedSummary) error {
	client := seedClients[i%len(seedClients)]
	phone := seedPhones[i%len(seedPhones)]
	caseType := seedCaseTypes[i%len(seedCaseTypes)]
	nextAction := "Review new client correspondence"

	c := models.Case{
		ClientName:   client,
		CaseType:     caseType,
		Status:       seedStatuses[i%len(seedStatuses)],
		Priority:     seedPriorities[i%len(seedPriorities)],
		AssignedTo:   "Attorney Smith",
		Description:  fmt.Sprintf("%s matter for %s.", caseType, client),
		NextAction:   &nextAction,
		ClientPhone:  &phone,
		LastActivity: now.Add(-time.Duration(i) * 6 * time.Hour),
	}
	if err := tx.Create(&c).Error; err != nil {
		return err
	}
	summary.Cases++

	clientEmail := strings.ToLower(strings.ReplaceAll(client, " ", ".")) + "@example.com"
	tmpl := seedEmails[i%len(seedEmails)]
	email := models.Email{
		CaseID:    c.ID,
		From:      clientEmail,
		To:        "intake@caseflow.example.com",
		Subject:   tmpl.subject,
		Content:   fmt.Sprintf(tmpl.body, client),
		CreatedAt: now.Add(-time.Duration(i) * 24 * time.Hour),
	}
	if err := tx.Create(&email).Error; err != nil {
		return err
	}
	summary.Emails++

	text := models.TextMessage{
		CaseID:    c.ID,
		From:      phone,
		To:        "(555) 000-0000",
		Text:      seedTexts[i%len(seedTexts)],
		CreatedAt: now.Add(-time.Duration(i)*24*time.Hour - time.Hour),
	}
	if err := tx.Create(&text).Error; err != nil {
		return err
	}
	summary.TextMessages++

	for j := 0; j < 2; j++ {
		sf := seedFiles[(i+j)%len(seedFiles)]
		key := fmt.Sprintf("cases/%s/%s", c.ID, sf.name)
		size := sf.size
		file := models.File{
			CaseID:     c.ID,
			Name:       sf.name,
			URL:        "https://files.example.com/" + key,
			StorageKey: &key,
			Type:       sf.fileType,
			Size:       &size,
			UploadedBy: client,
		}
		if err := tx.Create(&file).Error; err != nil {
			return err
		}
		summary.Files++
	}

	confidence := 0.78
	chain := models.ReasonChain{
		CaseID:     c.ID,
		AgentType:  models.AgentTypeClientComs,
		Action:     "Draft reply to " + tmpl.subject,
		Reasoning:  "The client asked a direct question that needs an attorney-approved response.",
		Status:     models.ReasonChainStatusPending,
		Impact:     models.ImpactMedium,
		Confidence: &confidence,
	}
	if err := tx.Create(&chain).Error; err != nil {
		return err
	}
	summary.ReasonChains++

	return nil
}
