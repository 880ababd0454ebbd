package update_series

import "github.com/m04kA/RidingSchool-SchedulingService/internal/service/recurrence/models"

// UpdateSeriesResponse HTTP response model
type UpdateSeriesResponse struct {
	Series  *models.SeriesResponse `json:"series"`
	Created int                    `json:"created"` // Новых вхождений после перегенерации
}
