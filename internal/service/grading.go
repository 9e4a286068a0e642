package service

import (
	"fmt"
	"math"
	"strings"

	"github.com/promptmaster/api/internal/constants"
	"github.com/promptmaster/api/internal/model"
)

// gradeResult is the outcome of grading one submission.
type gradeResult struct {
	Results        []model.QuestionResult
	PointsEarned   int
	PointsPossible int
	Score          int
}

// grade scores answers, keyed by question ID, against the assessment.
// Unanswered questions earn nothing.
func grade(assessment *model.Assessment, answers map[string]any) gradeResult {
	var out gradeResult
	out.Results = make([]model.QuestionResult, 0, len(assessment.Questions))

	for _, q := range assessment.Questions {
		given := normalizeAnswer(answers[q.ID])
		correct := gradeQuestion(q, given)

		earned := 0
		if correct {
			earned = q.Points
		}
		out.PointsEarned += earned
		out.PointsPossible += q.Points

		out.Results = append(out.Results, model.QuestionResult{
			QuestionID:     q.ID,
			Correct:        correct,
			PointsEarned:   earned,
			PointsPossible: q.Points,
			CorrectAnswer:  q.CorrectAnswer,
			Explanation:    q.Explanation,
		})
	}

	if out.PointsPossible > 0 {
		out.Score = int(math.Round(float64(out.PointsEarned) * 100 / float64(out.PointsPossible)))
	}
	return out
}

func gradeQuestion(q model.Question, given []string) bool {
	if len(given) == 0 || len(q.CorrectAnswer) == 0 {
		return false
	}

	switch q.Type {
	case constants.QuestionMultipleChoice, constants.QuestionTrueFalse:
		return len(given) == 1 && sameAnswer(given[0], q.CorrectAnswer[0])
	case constants.QuestionShortAnswer:
		if len(given) != 1 {
			return false
		}
		for _, accepted := range q.CorrectAnswer {
			if sameAnswer(given[0], accepted) {
				return true
			}
		}
		return false
	case constants.QuestionMultipleSelect:
		return sameSet(given, q.CorrectAnswer)
	case constants.QuestionScenario, constants.QuestionCode:
		text := strings.ToLower(strings.Join(given, " "))
		for _, keyword := range q.CorrectAnswer {
			if !strings.Contains(text, foldAnswer(keyword)) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// normalizeAnswer flattens a decoded JSON answer into strings.
func normalizeAnswer(v any) []string {
	switch a := v.(type) {
	case nil:
		return nil
	case string:
		return []string{a}
	case []string:
		return a
	case []any:
		out := make([]string, 0, len(a))
		for _, item := range a {
			out = append(out, normalizeAnswer(item)...)
		}
		return out
	case bool:
		if a {
			return []string{"true"}
		}
		return []string{"false"}
	case float64:
		return []string{fmt.Sprintf("%g", a)}
	default:
		return []string{fmt.Sprint(a)}
	}
}

func foldAnswer(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func sameAnswer(a, b string) bool {
	return foldAnswer(a) == foldAnswer(b)
}

func sameSet(given, expected []string) bool {
	want := make(map[string]struct{}, len(expected))
	for _, e := range expected {
		want[foldAnswer(e)] = struct{}{}
	}
	got := make(map[string]struct{}, len(given))
	for _, g := range given {
		key := foldAnswer(g)
		if _, ok := want[key]; !ok {
			return false
		}
		got[key] = struct{}{}
	}
	return len(got) == len(want)
}
