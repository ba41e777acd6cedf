package transport

import "github.com/RichardoC/chatwidget/internal/models"

// Reply is an answered chat turn.
type Reply struct {
	Text  string
	ID    string
	Agent string
}

type chatRequest struct {
	Message   string `json:"message"`
	Agent     string `json:"agent"`
	AgentType string `json:"agent_type"`
	Language  string `json:"language"`
}

type chatResponse struct {
	Success   *bool  `json:"success"`
	Response  string `json:"response"`
	QueryID   models.ID `json:"query_id"`
	MessageID models.ID `json:"message_id"`
	AgentName string `json:"agent_name"`
	Error     string `json:"error"`
}

type rateRequest struct {
	Rating string `json:"rating"`
}

type rateResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

type Faculty struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Code string `json:"code"`
}

type Group struct {
	ID       int     `json:"id"`
	Name     string  `json:"name"`
	Year     int     `json:"year"`
	Semester int     `json:"semester"`
	Faculty  Faculty `json:"faculty"`
}

// Lesson is one scheduled class.
type Lesson struct {
	ID                 int    `json:"id"`
	Date               string `json:"date"`
	StartTime          string `json:"start_time"`
	EndTime            string `json:"end_time"`
	SubjectName        string `json:"subject_name"`
	SubjectCode        string `json:"subject_code"`
	TeacherName        string `json:"teacher_name"`
	Classroom          string `json:"classroom"`
	LessonType         string `json:"lesson_type"`
	LessonTypeDisplay  string `json:"lesson_type_display"`
	Notes              string `json:"notes"`
	IsCancelled        bool   `json:"is_cancelled"`
	CancellationReason string `json:"cancellation_reason"`
	DurationMinutes    int    `json:"duration_minutes"`
	GroupName          string `json:"group_name"`
	Location           string `json:"location"`
}

// DaySchedule is the answer for a single day.
type DaySchedule struct {
	Date    string   `json:"date"`
	Group   string   `json:"group"`
	Lessons []Lesson `json:"schedules"`
}

// WeekSchedule groups lessons by ISO date.
type WeekSchedule struct {
	StartDate string              `json:"start_date"`
	EndDate   string              `json:"end_date"`
	Group     string              `json:"group"`
	Days      map[string][]Lesson `json:"schedule_by_days"`
	Total     int                 `json:"total_lessons"`
}

type envelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

type groupsResponse struct {
	envelope
	Groups []Group `json:"groups"`
}

type dayResponse struct {
	envelope
	DaySchedule
}

type weekResponse struct {
	envelope
	WeekSchedule
}
