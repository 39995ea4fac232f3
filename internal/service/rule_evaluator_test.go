package service

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/gradpush/recommend-api/internal/models"
)

func treeRule(parameters string, maxScore *float64) models.Rule {
	return models.Rule{
		ID:       1,
		Name:     "学科竞赛",
		Type:     "academic",
		MaxScore: maxScore,
		Status:   models.RuleStatusActive,
		Calculation: &models.RuleCalculation{
			RuleID:          1,
			CalculationType: models.CalculationTypeTree,
			Parameters:      datatypes.JSON(parameters),
		},
	}
}

const competitionTree = `{
	"tree": {
		"children": [
			{
				"name": "学术专长",
				"score": 1,
				"children": [
					{
						"name": "学科竞赛",
						"score": 2,
						"children": [
							{"name": "国家级一等奖", "score": 10, "children": []},
							{"name": "省级一等奖", "score": 5, "children": []}
						]
					}
				]
			}
		]
	}
}`

func TestEvaluateMatchesLeaf(t *testing.T) {
	evaluator := NewRuleEvaluator()

	outcome := evaluator.Evaluate(treeRule(competitionTree, nil), []string{"学术专长", "学科竞赛", "国家级一等奖"})
	require.True(t, outcome.Matched)
	require.Equal(t, 10.0, outcome.Score)
}

func TestEvaluateReturnsIntermediateNodeScore(t *testing.T) {
	evaluator := NewRuleEvaluator()

	outcome := evaluator.Evaluate(treeRule(competitionTree, nil), []string{"学术专长", "学科竞赛"})
	require.True(t, outcome.Matched)
	require.Equal(t, 2.0, outcome.Score)
}

func TestEvaluateStripsWhitespaceInNames(t *testing.T) {
	evaluator := NewRuleEvaluator()

	outcome := evaluator.Evaluate(treeRule(competitionTree, nil), []string{" 学术 专长 ", "学科竞赛", "国家级 一等奖"})
	require.True(t, outcome.Matched)
	require.Equal(t, 10.0, outcome.Score)
}

func TestEvaluatePartialPathDoesNotMatch(t *testing.T) {
	evaluator := NewRuleEvaluator()

	// "学科竞赛" matches but the final segment has no node, so the branch
	// yields nothing rather than falling back to the prefix score.
	outcome := evaluator.Evaluate(treeRule(competitionTree, nil), []string{"学术专长", "学科竞赛", "校级奖项"})
	require.False(t, outcome.Matched)
	require.Equal(t, 0.0, outcome.Score)
}

func TestEvaluateClampsToMaxScore(t *testing.T) {
	evaluator := NewRuleEvaluator()
	maxScore := 3.0

	outcome := evaluator.Evaluate(treeRule(competitionTree, &maxScore), []string{"学术专长", "学科竞赛", "国家级一等奖"})
	require.True(t, outcome.Matched)
	require.Equal(t, 3.0, outcome.Score)
}

func TestEvaluatePrefersHighestSiblingBranch(t *testing.T) {
	evaluator := NewRuleEvaluator()
	parameters := `{
		"tree": {
			"children": [
				{"name": "论文", "score": 2, "children": [{"name": "SCI", "score": 4, "children": []}]},
				{"name": "论文", "score": 3, "children": [{"name": "SCI", "score": 8, "children": []}]}
			]
		}
	}`

	outcome := evaluator.Evaluate(treeRule(parameters, nil), []string{"论文", "SCI"})
	require.True(t, outcome.Matched)
	require.Equal(t, 8.0, outcome.Score)
}

func TestEvaluateDegradesToZero(t *testing.T) {
	evaluator := NewRuleEvaluator()
	maxScore := 10.0

	cases := map[string]models.Rule{
		"no calculation": {ID: 1, Status: models.RuleStatusActive, MaxScore: &maxScore},
		"wrong type": {ID: 1, Status: models.RuleStatusActive, Calculation: &models.RuleCalculation{
			CalculationType: "multiply",
			Parameters:      datatypes.JSON(`{"factor": 2}`),
		}},
		"malformed parameters": {ID: 1, Status: models.RuleStatusActive, Calculation: &models.RuleCalculation{
			CalculationType: models.CalculationTypeTree,
			Parameters:      datatypes.JSON(`{"tree": [`),
		}},
		"empty parameters": {ID: 1, Status: models.RuleStatusActive, Calculation: &models.RuleCalculation{
			CalculationType: models.CalculationTypeTree,
		}},
	}

	for name, rule := range cases {
		t.Run(name, func(t *testing.T) {
			outcome := evaluator.Evaluate(rule, []string{"学术专长"})
			require.False(t, outcome.Matched)
			require.Equal(t, 0.0, outcome.Score)
		})
	}
}

func TestEvaluateEmptyPath(t *testing.T) {
	evaluator := NewRuleEvaluator()

	outcome := evaluator.Evaluate(treeRule(competitionTree, nil), nil)
	require.False(t, outcome.Matched)
	require.Equal(t, 0.0, outcome.Score)
}

func TestEvaluateRoundsToFourDecimals(t *testing.T) {
	evaluator := NewRuleEvaluator()
	parameters := `{"tree": {"children": [{"name": "加分项", "score": 1.23456789, "children": []}]}}`

	outcome := evaluator.Evaluate(treeRule(parameters, nil), []string{"加分项"})
	require.True(t, outcome.Matched)
	require.Equal(t, 1.2346, outcome.Score)
}
