package tenant

import "gorm.io/gorm"

// ForSite returns a GORM scope that filters by site_id. Every session and user
// query must be site-scoped; cross-site session confusion is a security bug.
func ForSite(siteID string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("site_id = ?", siteID)
	}
}
