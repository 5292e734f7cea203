package model

import "time"

// DeviceClass is the fixed device taxonomy produced by the User-Agent classifier.
type DeviceClass string

const (
	DeviceIOS     DeviceClass = "ios"
	DeviceAndroid DeviceClass = "android"
	DeviceMobile  DeviceClass = "mobile"
	DeviceTablet  DeviceClass = "tablet"
	DeviceDesktop DeviceClass = "desktop"
)

// DeviceRule maps one device class to a destination override.
type DeviceRule struct {
	Device DeviceClass `json:"device"`
	URL    string      `json:"url"`
}

// DeviceRuleSet is the per-link device targeting config, toggleable as a whole.
type DeviceRuleSet struct {
	Enabled bool         `json:"enabled"`
	Rules   []DeviceRule `json:"rules"`
}

// TimeRule scopes a destination override to a weekly day/time window in a
// specific IANA timezone. Start and End are "HH:MM" local times; the window
// is half-open [Start, End). Days uses 0=Sunday..6=Saturday.
type TimeRule struct {
	Start    string `json:"start"`
	End      string `json:"end"`
	Days     []int  `json:"days"`
	Timezone string `json:"timezone"`
	URL      string `json:"url"`
}

// TimeRuleSet is the per-link schedule config. Rules are evaluated in stored
// order; the first match wins.
type TimeRuleSet struct {
	Enabled bool       `json:"enabled"`
	Rules   []TimeRule `json:"rules"`
}

// Link is the short-link record as stored in Postgres. The resolver reads it,
// never writes it; all mutation happens through the dashboard API, which
// validates the rule sets on write.
type Link struct {
	Code           string        `db:"code" gorm:"primaryKey;size:32"`
	Alias          string        `db:"alias" gorm:"size:64;index"`
	URL            string        `db:"url" gorm:"type:text;not null"`
	OwnerID        string        `db:"owner_id" gorm:"size:36;index"`
	Active         bool          `db:"active" gorm:"not null;default:true"`
	OwnerSuspended bool          `db:"owner_suspended" gorm:"not null;default:false"`
	PasswordHash   string        `db:"password_hash" gorm:"size:72"`
	ActiveFrom     *time.Time    `db:"active_from"`
	ExpiresAt      *time.Time    `db:"expires_at" gorm:"index"`
	DeviceRules    DeviceRuleSet `db:"device_rules" gorm:"type:jsonb;serializer:json"`
	TimeRules      TimeRuleSet   `db:"time_rules" gorm:"type:jsonb;serializer:json"`
	CreatedAt      time.Time     `db:"created_at" gorm:"autoCreateTime"`
	UpdatedAt      time.Time     `db:"updated_at" gorm:"autoUpdateTime"`
}

// PasswordProtected reports whether the access gate must challenge visitors.
func (l *Link) PasswordProtected() bool {
	return l.PasswordHash != ""
}
