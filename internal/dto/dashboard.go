package dto

import (
	"strconv"

	"github.com/ricoeriii/pengelola-bansos/internal/models"
)

// LoadingPlaceholder is shown in place of card values until the summary arrives.
const LoadingPlaceholder = "Loading..."

// Dashboard card titles.
const (
	CardTotalReports    = "Total Laporan"
	CardTotalRecipients = "Jumlah Penerima"
	CardCoveredRegions  = "Wilayah Tercakup"
)

// DashboardCard is one summary statistic card.
type DashboardCard struct {
	Title string `json:"title"`
	Value string `json:"value"`
}

// DashboardView is the rendered dashboard screen.
type DashboardView struct {
	Loading bool            `json:"loading"`
	Summary models.Summary  `json:"summary"`
	Cards   []DashboardCard `json:"cards"`
}

// NewDashboardView renders summary into cards. While loading every card shows
// the placeholder.
func NewDashboardView(summary models.Summary, loading bool) DashboardView {
	values := []string{
		strconv.Itoa(summary.TotalReports),
		strconv.FormatInt(summary.TotalRecipients, 10),
		strconv.Itoa(summary.CoveredRegions),
	}
	if loading {
		values = []string{LoadingPlaceholder, LoadingPlaceholder, LoadingPlaceholder}
	}
	return DashboardView{
		Loading: loading,
		Summary: summary,
		Cards: []DashboardCard{
			{Title: CardTotalReports, Value: values[0]},
			{Title: CardTotalRecipients, Value: values[1]},
			{Title: CardCoveredRegions, Value: values[2]},
		},
	}
}
