package calendar

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/google/uuid"
)

const (
	productID = "-//RidingSchool//SchedulingService//RU"

	googleURL  = "https://calendar.google.com/calendar/render"
	outlookURL = "https://outlook.live.com/calendar/0/deeplink/compose"
	yahooURL   = "https://calendar.yahoo.com/"

	compactLayout = "20060102T150405Z"
)

// ErrInvalidEntry возвращается при некорректных данных для экспорта
var ErrInvalidEntry = errors.New("calendar: invalid entry")

// Entry данные занятия или события для экспорта
type Entry struct {
	UID         string
	Title       string
	Description string
	Location    string
	Start       time.Time
	End         time.Time
	RRule       string    // правило повторения без префикса RRULE:, опционально
	Stamp       time.Time // DTSTAMP, по умолчанию Start
}

// Links ссылки для добавления в популярные календари
type Links struct {
	Google  string `json:"google"`
	Outlook string `json:"outlook"`
	Yahoo   string `json:"yahoo"`
}

// Result результат экспорта
type Result struct {
	ICS   string `json:"ics"`
	Links Links  `json:"links"`
}

// Export формирует iCalendar и ссылки для календарей. Функция не имеет побочных эффектов,
// кроме генерации UID, если он не задан
func Export(entry Entry) (*Result, error) {
	if entry.Title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidEntry)
	}
	if entry.Start.IsZero() || !entry.End.After(entry.Start) {
		return nil, fmt.Errorf("%w: end must be after start", ErrInvalidEntry)
	}
	if entry.UID == "" {
		entry.UID = uuid.NewString()
	}
	if entry.Stamp.IsZero() {
		entry.Stamp = entry.Start
	}
	entry.RRule = strings.TrimPrefix(entry.RRule, "RRULE:")

	return &Result{
		ICS: renderICS(entry),
		Links: Links{
			Google:  googleLink(entry),
			Outlook: outlookLink(entry),
			Yahoo:   yahooLink(entry),
		},
	}, nil
}

func renderICS(entry Entry) string {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)

	event := cal.AddEvent(entry.UID)
	event.SetDtStampTime(entry.Stamp.UTC())
	event.SetStartAt(entry.Start.UTC())
	event.SetEndAt(entry.End.UTC())
	event.SetSummary(entry.Title)
	if entry.Description != "" {
		event.SetDescription(entry.Description)
	}
	if entry.Location != "" {
		event.SetLocation(entry.Location)
	}
	if entry.RRule != "" {
		event.AddProperty(ical.ComponentPropertyRrule, entry.RRule)
	}

	return cal.Serialize()
}

func compact(t time.Time) string {
	return t.UTC().Format(compactLayout)
}

func googleLink(entry Entry) string {
	q := url.Values{}
	q.Set("action", "TEMPLATE")
	q.Set("text", entry.Title)
	q.Set("dates", compact(entry.Start)+"/"+compact(entry.End))
	if entry.Description != "" {
		q.Set("details", entry.Description)
	}
	if entry.Location != "" {
		q.Set("location", entry.Location)
	}
	if entry.RRule != "" {
		q.Set("recur", "RRULE:"+entry.RRule)
	}
	return googleURL + "?" + q.Encode()
}

func outlookLink(entry Entry) string {
	q := url.Values{}
	q.Set("path", "/calendar/action/compose")
	q.Set("rru", "addevent")
	q.Set("subject", entry.Title)
	q.Set("startdt", entry.Start.UTC().Format(time.RFC3339))
	q.Set("enddt", entry.End.UTC().Format(time.RFC3339))
	if entry.Description != "" {
		q.Set("body", entry.Description)
	}
	if entry.Location != "" {
		q.Set("location", entry.Location)
	}
	return outlookURL + "?" + q.Encode()
}

func yahooLink(entry Entry) string {
	q := url.Values{}
	q.Set("v", "60")
	q.Set("title", entry.Title)
	q.Set("st", compact(entry.Start))
	q.Set("et", compact(entry.End))
	if entry.Description != "" {
		q.Set("desc", entry.Description)
	}
	if entry.Location != "" {
		q.Set("in_loc", entry.Location)
	}
	return yahooURL + "?" + q.Encode()
}
