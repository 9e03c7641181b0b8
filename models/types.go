package models

import "time"

// Answer is an invitee's response to one option
type Answer string

// Answer constants
const (
	AnswerAvailable   Answer = "available"
	AnswerMaybe       Answer = "maybe"
	AnswerUnavailable Answer = "unavailable"
)

// AllAnswers lists the accepted answers in display order
var AllAnswers = []Answer{AnswerAvailable, AnswerMaybe, AnswerUnavailable}

// Domain types

type PollOption struct {
	ID    string    `json:"id"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type PollBase struct {
	Title       string       `json:"title,omitempty"`
	Description string       `json:"description,omitempty"`
	Location    string       `json:"location,omitempty"`
	Options     []PollOption `json:"options"`
}

type Poll struct {
	PollBase
	ID        string `json:"id"`
	AccountID string `json:"-"`
}

type OptionAvailability struct {
	OptionID string `json:"option_id"`
	Answer   Answer `json:"answer"`
}

type PollAccountAvailability struct {
	PollID         string               `json:"poll_id"`
	AccountID      string               `json:"account_id"`
	AccountEmail   string               `json:"account_email"`
	Availabilities []OptionAvailability `json:"availabilities"`
}

type Account struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Name     string `json:"name"`
}

// Session is the authenticated caller of a request. It is resolved once
// per request and never modified afterwards.
type Session struct {
	Token     string
	AccountID string
	Email     string
	ExpiresAt time.Time
}

// Request types

type CreateOptionRequest struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type CreatePollRequest struct {
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Location    string                `json:"location"`
	Options     []CreateOptionRequest `json:"options"`
}

// SubmitVoteRequest is the raw list of answers posted by an invitee
type SubmitVoteRequest []OptionAvailability

// Response types

// DataResponse wraps every successful payload
type DataResponse struct {
	Data interface{} `json:"data"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type MeResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type GetPollResponse struct {
	Poll           Poll                      `json:"poll"`
	Availabilities []PollAccountAvailability `json:"availabilities"`
}

type HealthResponse struct {
	Server string `json:"server"`
	DB     string `json:"db"`
}

// Results types

type AnswerGroup struct {
	Answer Answer   `json:"answer"`
	Emails []string `json:"emails"`
}

type RankedOption struct {
	Rank      int           `json:"rank"`
	RankLabel string        `json:"rank_label"`
	Option    PollOption    `json:"option"`
	Score     int           `json:"score"`
	Answers   []AnswerGroup `json:"answers"`
	When      string        `json:"when"`
	Relative  string        `json:"relative"`
}

type ResultsResponse struct {
	PollID      string         `json:"poll_id"`
	Respondents int            `json:"respondents"`
	Ranking     []RankedOption `json:"ranking"`
}

type ExportResponse struct {
	GoogleCalendarURL string   `json:"google_calendar_url"`
	ICSDataURL        string   `json:"ics_data_url"`
	Filename          string   `json:"filename"`
	Delivery          string   `json:"delivery"`
	Supported         bool     `json:"supported"`
	Guests            []string `json:"guests"`
}
