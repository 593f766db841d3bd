package jobs

import (
	"log"
	"time"

	"github.com/vibralabs/vibra_backend/database"
	"github.com/vibralabs/vibra_backend/models"
)

// PurgeExpiredStories deletes stories whose visibility window has lapsed.
// Reads already filter on expires_at, so this only reclaims rows.
func PurgeExpiredStories() {
	log.Println("Running job: PurgeExpiredStories...")

	res := database.DB.Delete(&models.Story{}, "expires_at <= ?", time.Now())
	if res.Error != nil {
		log.Printf("Error purging expired stories: %v", res.Error)
		return
	}
	if res.RowsAffected > 0 {
		log.Printf("Purged %d expired stories", res.RowsAffected)
	}
}
