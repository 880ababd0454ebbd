package models

import (
	"time"
)

// CreateSeriesRequest запрос на создание серии
// windowStart и windowEnd задаются датами YYYY-MM-DD в часовом поясе школы
type CreateSeriesRequest struct {
	ActorID         int64   `json:"-"`
	Kind            string  `json:"kind"`
	Title           string  `json:"title"`
	Description     *string `json:"description,omitempty"`
	Pattern         string  `json:"pattern"`
	DaysOfWeek      []int   `json:"daysOfWeek,omitempty"`
	TimeOfDay       string  `json:"timeOfDay"`
	DurationMinutes int     `json:"durationMinutes"`
	WindowStart     string  `json:"windowStart"`
	WindowEnd       *string `json:"windowEnd,omitempty"`
	MaxOccurrences  *int    `json:"maxOccurrences,omitempty"`
	Capacity        int     `json:"capacity"`
	Category        string  `json:"category,omitempty"`
	Instructor      *string `json:"instructor,omitempty"`
	Location        *string `json:"location,omitempty"`
}

// UpdateSeriesRequest изменения шаблона серии, nil означает "без изменений"
type UpdateSeriesRequest struct {
	Title           *string `json:"title,omitempty"`
	Description     *string `json:"description,omitempty"`
	Pattern         *string `json:"pattern,omitempty"`
	DaysOfWeek      []int   `json:"daysOfWeek,omitempty"`
	TimeOfDay       *string `json:"timeOfDay,omitempty"`
	DurationMinutes *int    `json:"durationMinutes,omitempty"`
	WindowEnd       *string `json:"windowEnd,omitempty"`
	MaxOccurrences  *int    `json:"maxOccurrences,omitempty"`
	Capacity        *int    `json:"capacity,omitempty"`
	Category        *string `json:"category,omitempty"`
	Instructor      *string `json:"instructor,omitempty"`
	Location        *string `json:"location,omitempty"`
	IsActive        *bool   `json:"isActive,omitempty"`
}

// UpdateOccurrenceRequest изменения одного вхождения
type UpdateOccurrenceRequest struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	StartTime   *time.Time `json:"startTime,omitempty"`
	EndTime     *time.Time `json:"endTime,omitempty"`
	Capacity    *int       `json:"capacity,omitempty"`
	Category    *string    `json:"category,omitempty"`
	Instructor  *string    `json:"instructor,omitempty"`
	Location    *string    `json:"location,omitempty"`
}

// SeriesResponse данные серии
type SeriesResponse struct {
	ID              int64     `json:"id"`
	Kind            string    `json:"kind"`
	Title           string    `json:"title"`
	Description     *string   `json:"description,omitempty"`
	Pattern         string    `json:"pattern"`
	DaysOfWeek      []int     `json:"daysOfWeek,omitempty"`
	TimeOfDay       string    `json:"timeOfDay"`
	DurationMinutes int       `json:"durationMinutes"`
	WindowStart     string    `json:"windowStart"`
	WindowEnd       *string   `json:"windowEnd,omitempty"`
	MaxOccurrences  *int      `json:"maxOccurrences,omitempty"`
	Capacity        int       `json:"capacity"`
	Category        string    `json:"category,omitempty"`
	Instructor      *string   `json:"instructor,omitempty"`
	Location        *string   `json:"location,omitempty"`
	IsActive        bool      `json:"isActive"`
	RRule           string    `json:"rrule,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}

// SeriesListResponse список серий
type SeriesListResponse struct {
	Series []SeriesResponse `json:"series"`
	Total  int              `json:"total"`
}

// CreateSeriesResponse созданная серия и число сгенерированных вхождений
type CreateSeriesResponse struct {
	Series  SeriesResponse `json:"series"`
	Created int            `json:"created"`
}

// OccurrenceResponse одно вхождение (слот или событие)
type OccurrenceResponse struct {
	Kind          string    `json:"kind"`
	ID            int64     `json:"id"`
	SeriesID      *int64    `json:"seriesId,omitempty"`
	Title         string    `json:"title"`
	StartTime     time.Time `json:"startTime"`
	EndTime       time.Time `json:"endTime"`
	OriginalStart time.Time `json:"originalStart"`
	Capacity      int       `json:"capacity"`
	IsException   bool      `json:"isException"`
}

// SeriesCalendar данные серии для экспорта в календарь
type SeriesCalendar struct {
	ID          int64
	Title       string
	Description *string
	Location    *string
	Start       time.Time
	End         time.Time
	RRule       string
}
