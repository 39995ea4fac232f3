package service

import (
	"encoding/json"
	"math"
	"strings"
	"unicode"

	"github.com/gradpush/recommend-api/internal/models"
)

// EvaluationOutcome distinguishes "no node matched" from "matched with a score
// of zero". Score is always 0 when Matched is false.
type EvaluationOutcome struct {
	Matched bool
	Score   float64
}

// RuleEvaluator prices a category path against a rule's calculation tree.
type RuleEvaluator interface {
	Evaluate(rule models.Rule, categoryPath []string) EvaluationOutcome
}

type ruleEvaluator struct{}

// NewRuleEvaluator constructs the tree evaluator.
func NewRuleEvaluator() RuleEvaluator {
	return &ruleEvaluator{}
}

type categoryNode struct {
	Name     string         `json:"name"`
	Score    float64        `json:"score"`
	Children []categoryNode `json:"children"`
}

type calculationParameters struct {
	Tree struct {
		Children []categoryNode `json:"children"`
	} `json:"tree"`
}

// Evaluate walks the rule's category tree along categoryPath and returns the
// score of the node that consumes the final path element. Names are compared
// with all whitespace stripped. A path that is not fully consumed yields no
// match; when several sibling branches consume the full path, the highest
// score wins. Malformed configuration never errors, it evaluates to zero.
func (e *ruleEvaluator) Evaluate(rule models.Rule, categoryPath []string) EvaluationOutcome {
	if len(categoryPath) == 0 {
		return EvaluationOutcome{}
	}
	if rule.Calculation == nil || rule.Calculation.CalculationType != models.CalculationTypeTree {
		return EvaluationOutcome{}
	}
	if len(rule.Calculation.Parameters) == 0 {
		return EvaluationOutcome{}
	}

	var parameters calculationParameters
	if err := json.Unmarshal(rule.Calculation.Parameters, &parameters); err != nil {
		return EvaluationOutcome{}
	}

	path := make([]string, len(categoryPath))
	for i, label := range categoryPath {
		path[i] = stripWhitespace(label)
	}

	score, matched := matchPath(parameters.Tree.Children, path)
	if !matched {
		return EvaluationOutcome{}
	}

	if rule.MaxScore != nil {
		score = math.Min(score, *rule.MaxScore)
	}

	return EvaluationOutcome{Matched: true, Score: roundScore(score)}
}

// matchPath returns the best score among sibling branches that consume the
// entire path. A branch that matches only a prefix contributes nothing.
func matchPath(nodes []categoryNode, path []string) (float64, bool) {
	var best float64
	matched := false

	for _, node := range nodes {
		if stripWhitespace(node.Name) != path[0] {
			continue
		}

		var candidate float64
		ok := false
		if len(path) == 1 {
			candidate = node.Score
			ok = true
		} else {
			candidate, ok = matchPath(node.Children, path[1:])
		}

		if ok && (!matched || candidate > best) {
			best = candidate
			matched = true
		}
	}

	return best, matched
}

func stripWhitespace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

func roundScore(v float64) float64 {
	return math.Round(v*10000) / 10000
}
