package repositories

import (
	"context"
	"time"

	"github.com/brodiemcgee/thegloryapp-sub002/pkg/types"
	"gorm.io/gorm"
)

type ContactRepository struct {
	db *gorm.DB
}

func NewContactRepository(db *gorm.DB) *ContactRepository {
	return &ContactRepository{db: db}
}

type eligibleRow struct {
	ContactID   string
	DisplayName string
	UserRef     string
	Phone       string
	LastMet     time.Time
}

// EligibleContacts returns each distinct contact whose most recent encounter
// with the reporting user falls inside [testDate - lookback, testDate]. The
// vague elapsed phrase is attached here so downstream code never has to
// format, or even see, an exact date for display.
func (r *ContactRepository) EligibleContacts(ctx context.Context, reportingUserRef string, testDate time.Time, lookbackDays int) ([]types.ContactToNotify, error) {
	windowStart := testDate.AddDate(0, 0, -lookbackDays)

	var rows []eligibleRow
	err := r.db.WithContext(ctx).
		Table("encounters").
		Select("contacts.id AS contact_id, contacts.display_name, contacts.user_ref, contacts.phone, MAX(encounters.occurred_at) AS last_met").
		Joins("JOIN contacts ON contacts.id = encounters.contact_id").
		Where("encounters.owner_ref = ?", reportingUserRef).
		Where("encounters.occurred_at BETWEEN ? AND ?", windowStart, testDate).
		Group("contacts.id, contacts.display_name, contacts.user_ref, contacts.phone").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]types.ContactToNotify, 0, len(rows))
	for _, row := range rows {
		out = append(out, types.ContactToNotify{
			ContactID:     row.ContactID,
			DisplayName:   row.DisplayName,
			UserRef:       row.UserRef,
			PhoneNumber:   row.Phone,
			VagueElapsed:  VagueElapsed(time.Since(row.LastMet)),
			EncounterDate: row.LastMet,
		})
	}
	return out, nil
}
