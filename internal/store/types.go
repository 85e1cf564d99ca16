package store

type DatabaseType string

const (
	DBTypePostgres DatabaseType = "postgres"
	DBTypeSQLite   DatabaseType = "sqlite"
)

// DashboardCounts are the headline numbers for the landing view.
type DashboardCounts struct {
	Students      int `json:"students"`
	PresentToday  int `json:"present_today"`
	AbsentToday   int `json:"absent_today"`
	HolidaysMonth int `json:"holidays_month"`
}
