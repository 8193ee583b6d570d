package gormstore

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/goliatone/go-offerform/pkg/store"
)

// SubmissionModel is the form_submissions table. Email carries the unique
// index that conditional upserts conflict on.
type SubmissionModel struct {
	ID              string         `gorm:"column:id;primaryKey;size:36"`
	Email           string         `gorm:"column:email;size:320;not null;uniqueIndex:idx_form_submissions_email"`
	AvatarDesc      string         `gorm:"column:avatar_desc;type:text"`
	AvatarPainList  string         `gorm:"column:avatar_pain_list;type:text"`
	UniqueValueProp string         `gorm:"column:unique_value_prop;type:text"`
	UVPType         string         `gorm:"column:uvp_type;size:64"`
	OtherUVPDesc    *string        `gorm:"column:other_uvp_desc;type:text"`
	LeadMagnetDesc  string         `gorm:"column:lead_magnet_desc;type:text"`
	NumTicketItems  int            `gorm:"column:num_ticket_items"`
	TicketOrder     datatypes.JSON `gorm:"column:ticket_order"`
	TicketItems     datatypes.JSON `gorm:"column:ticket_items"`
	CreatedAt       time.Time      `gorm:"column:created_at"`
	UpdatedAt       time.Time      `gorm:"column:updated_at"`
}

func (SubmissionModel) TableName() string { return store.TableSubmissions }

// SummaryModel is the business_summaries table.
type SummaryModel struct {
	ID        string    `gorm:"column:id;primaryKey;size:36"`
	Email     string    `gorm:"column:email;size:320;not null;index"`
	Summary   string    `gorm:"column:summary;type:text"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (SummaryModel) TableName() string { return store.TableSummaries }

// OutputModel is the llm_outputs table.
type OutputModel struct {
	ID        string    `gorm:"column:id;primaryKey;size:36"`
	Email     string    `gorm:"column:email;size:320;not null;index"`
	Context   string    `gorm:"column:context;type:text"`
	Topic     string    `gorm:"column:topic;size:255"`
	Analysis  string    `gorm:"column:analysis;type:text"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (OutputModel) TableName() string { return store.TableOutputs }

// Migrate creates or updates the three tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&SubmissionModel{}, &SummaryModel{}, &OutputModel{})
}

type tableSpec struct {
	json      map[string]bool
	updatedAt bool
}

var tables = map[string]tableSpec{
	store.TableSubmissions: {
		json:      map[string]bool{"ticket_order": true, "ticket_items": true},
		updatedAt: true,
	},
	store.TableSummaries: {},
	store.TableOutputs:   {},
}
