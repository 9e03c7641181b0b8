// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"cmp"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/exp/slices"

	"github.com/danielhkuo/roodle/models"
)

// EmailAnswer is one invitee's answer to one option
type EmailAnswer struct {
	Answer models.Answer `json:"answer"`
	Email  string        `json:"email"`
}

// Aggregation maps option IDs to the answers recorded for them, in the
// order invitees appear and, per invitee, in the order they answered.
type Aggregation map[string][]EmailAnswer

// Aggregate groups every answer in records under its option. Answers for
// options that are not in options are ignored. Duplicates are kept.
func Aggregate(options []models.PollOption, records []models.PollAccountAvailability) Aggregation {
	known := make(map[string]bool, len(options))
	for _, o := range options {
		known[o.ID] = true
	}

	agg := make(Aggregation, len(options))
	for _, rec := range records {
		for _, a := range rec.Availabilities {
			if !known[a.OptionID] {
				continue
			}
			agg[a.OptionID] = append(agg[a.OptionID], EmailAnswer{Answer: a.Answer, Email: rec.AccountEmail})
		}
	}
	return agg
}

// answerWeights scores answers; anything not listed counts 0
var answerWeights = map[models.Answer]int{
	models.AnswerAvailable:   3,
	models.AnswerMaybe:       1,
	models.AnswerUnavailable: -3,
}

// ScoreAnswers sums the weights of entries
func ScoreAnswers(entries []EmailAnswer) int {
	score := 0
	for _, e := range entries {
		score += answerWeights[e.Answer]
	}
	return score
}

// RankOptions returns options best-first: highest score, then earliest
// start. The order comes from a stable ascending sort (ties: later start
// first) that is then reversed, which is not the same as a descending sort
// with the same tie-break. options is not modified.
func RankOptions(options []models.PollOption, agg Aggregation) []models.PollOption {
	scores := make(map[string]int, len(options))
	for _, o := range options {
		scores[o.ID] = ScoreAnswers(agg[o.ID])
	}

	ranked := slices.Clone(options)
	slices.SortStableFunc(ranked, func(a, b models.PollOption) int {
		if c := cmp.Compare(scores[a.ID], scores[b.ID]); c != 0 {
			return c
		}
		return b.Start.Compare(a.Start)
	})
	slices.Reverse(ranked)
	return ranked
}

// GroupByAnswer groups entries by answer, sorted by answer name. Emails keep
// their entry order.
func GroupByAnswer(entries []EmailAnswer) []models.AnswerGroup {
	groups := []models.AnswerGroup{}
	index := make(map[models.Answer]int)
	for _, e := range entries {
		i, ok := index[e.Answer]
		if !ok {
			i = len(groups)
			index[e.Answer] = i
			groups = append(groups, models.AnswerGroup{Answer: e.Answer})
		}
		groups[i].Emails = append(groups[i].Emails, e.Email)
	}

	slices.SortFunc(groups, func(a, b models.AnswerGroup) int {
		return cmp.Compare(a.Answer, b.Answer)
	})
	return groups
}

// Emails returns the distinct emails in entries, in first-seen order
func Emails(entries []EmailAnswer) []string {
	var emails []string
	for _, e := range entries {
		if !slices.Contains(emails, e.Email) {
			emails = append(emails, e.Email)
		}
	}
	return emails
}

// BuildRanking ranks options and decorates each with its tally and labels.
// when labels are rendered in loc; relative labels are measured from now.
func BuildRanking(options []models.PollOption, records []models.PollAccountAvailability, loc *time.Location, now time.Time) []models.RankedOption {
	agg := Aggregate(options, records)
	ranked := RankOptions(options, agg)

	result := make([]models.RankedOption, 0, len(ranked))
	for i, o := range ranked {
		entries := agg[o.ID]
		result = append(result, models.RankedOption{
			Rank:      i + 1,
			RankLabel: humanize.Ordinal(i + 1),
			Option:    o,
			Score:     ScoreAnswers(entries),
			Answers:   GroupByAnswer(entries),
			When:      formatWhen(o, loc),
			Relative:  humanize.RelTime(o.Start, now, "ago", "from now"),
		})
	}
	return result
}

// formatWhen renders an option like "Mon 1 Jan 2024, 06:00 - 08:00"
func formatWhen(o models.PollOption, loc *time.Location) string {
	start, end := o.Start.In(loc), o.End.In(loc)
	const day, clock = "Mon 2 Jan 2006", "15:04"

	if start.Format(day) == end.Format(day) {
		return start.Format(day+", "+clock) + " - " + end.Format(clock)
	}
	return start.Format(day+", "+clock) + " - " + end.Format(day+", "+clock)
}
