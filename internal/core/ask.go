package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ancientdna/internal/genai"
)

// Fixed answers for the dispatcher's terminal states.
const (
	answerNoData = "No data has been uploaded yet. Please upload a CSV file first."

	answerInsufficient = "I'm sorry, I don't have enough information to answer that question. " +
		"Please try asking about the age, region, or number of records in the uploaded data."
)

// promptContextLimit bounds how many samples are summarized into the
// fallback prompt to keep it inside the model's token budget.
const promptContextLimit = 10

// askRule pairs a keyword predicate with the handler that produces the
// answer. Rules are evaluated in declaration order; the first match wins.
// Rules with answersEmpty set still apply when the store has no samples;
// the rest are shadowed by the no-data answer.
type askRule struct {
	name         string
	answersEmpty bool
	match        func(question string) bool
	answer       func(ctx context.Context, s *Service) string
}

func containsAny(q string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(q, w) {
			return true
		}
	}
	return false
}

// askRules is the dispatcher's priority-ordered rule list. The question is
// lower-cased before matching.
var askRules = []askRule{
	{
		name: "average-age",
		match: func(q string) bool {
			return strings.Contains(q, "average") && strings.Contains(q, "age")
		},
		answer: func(ctx context.Context, s *Service) string {
			avg, ok, err := s.AverageAge(ctx)
			if err != nil {
				return fmt.Sprintf("I encountered an error while calculating the average age: %v", err)
			}
			if !ok {
				return "I couldn't find age data in the uploaded information."
			}
			return fmt.Sprintf("The average age in the uploaded data is %.2f years.", avg)
		},
	},
	{
		name: "regions",
		match: func(q string) bool {
			return containsAny(q, "region", "regions")
		},
		answer: func(ctx context.Context, s *Service) string {
			counts, err := s.RegionCounts(ctx)
			if err != nil {
				return fmt.Sprintf("I encountered an error while analyzing regions: %v", err)
			}
			parts := make([]string, 0, len(counts))
			for _, rc := range counts {
				parts = append(parts, fmt.Sprintf("%s: %d", rc.Region, rc.Count))
			}
			return fmt.Sprintf("The data includes the following regions: %s", strings.Join(parts, ", "))
		},
	},
	{
		name: "record-count",
		// counting zero records is still a well-defined answer
		answersEmpty: true,
		match: func(q string) bool {
			return containsAny(q, "many", "count", "number", "records", "samples")
		},
		answer: func(ctx context.Context, s *Service) string {
			n, err := s.CountSamples(ctx)
			if err != nil {
				return fmt.Sprintf("I encountered an error while counting records: %v", err)
			}
			return fmt.Sprintf("There are %d records in the uploaded data.", n)
		},
	},
}

// Ask answers a free-text question about the uploaded data. Keyword rules are
// tried in priority order; unmatched questions go to the external model when
// one is configured. Every failure becomes a textual answer, never an error.
func (s *Service) Ask(ctx context.Context, question string) string {
	n, err := s.CountSamples(ctx)
	if err != nil {
		s.logger.Error("ask: count samples", "err", err)
		return answerNoData
	}
	lowered := strings.ToLower(question)
	if n == 0 {
		for _, rule := range askRules {
			if rule.answersEmpty && rule.match(lowered) {
				return rule.answer(ctx, s)
			}
		}
		return answerNoData
	}

	for _, rule := range askRules {
		if rule.match(lowered) {
			s.logger.Debug("ask: matched rule", "rule", rule.name)
			return rule.answer(ctx, s)
		}
	}

	if s.answerer == nil {
		return answerInsufficient
	}
	return s.askModel(ctx, question)
}

func (s *Service) askModel(ctx context.Context, question string) string {
	prompt, err := s.buildPrompt(ctx, question)
	if err != nil {
		return fmt.Sprintf("I encountered an error: %v", err)
	}
	answer, err := s.answerer.Answer(ctx, prompt)
	if err == nil {
		return answer
	}
	s.logger.Error("ask: model call failed", "err", err)
	var se genai.StatusError
	switch {
	case errors.As(err, &se):
		return fmt.Sprintf("Error: %d. The API couldn't process your request.", se.Code)
	case errors.Is(err, genai.ErrMalformedResponse):
		return "Sorry, I couldn't process the response from the AI model."
	default:
		return fmt.Sprintf("I encountered an error: %v", err)
	}
}

// buildPrompt prefixes the question with a bounded summary of the stored
// samples so the model can ground its answer in the uploaded data.
func (s *Service) buildPrompt(ctx context.Context, question string) (string, error) {
	list, err := s.store.List(ctx)
	if err != nil {
		return "", err
	}
	if len(list) > promptContextLimit {
		list = list[:promptContextLimit]
	}
	var b strings.Builder
	b.WriteString("Based on the following data:\n")
	for _, sample := range list {
		fmt.Fprintf(&b, "ID: %s, Region: %s, Age: %d, Seed: %s\n", sample.ID, sample.Region, sample.Age, sample.Seed)
	}
	fmt.Fprintf(&b, "\nQuestion: %s", question)
	return b.String(), nil
}
