package models

// Summary holds the dashboard aggregate statistics.
type Summary struct {
	TotalReports    int   `json:"totalReports"`
	TotalRecipients int64 `json:"totalRecipients"`
	CoveredRegions  int   `json:"coveredRegions"`
}
