package contract_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/stretchr/testify/require"

	"github.com/gradpush/recommend-api/internal/dto"
	"github.com/gradpush/recommend-api/internal/handler"
)

type stubRankingService struct {
	response dto.RankingResponse
}

func (s stubRankingService) Rank(context.Context, dto.RankingRequest) (dto.RankingResponse, error) {
	return s.response, nil
}

func (s stubRankingService) InvalidateCache(context.Context) error {
	return nil
}

func TestRankingContract(t *testing.T) {
	schemaPath, err := filepath.Abs(filepath.Join("..", "contracts", "ranking.schema.json"))
	require.NoError(t, err)

	compiler := jsonschema.NewCompiler()
	schema, err := compiler.Compile("file://" + schemaPath)
	require.NoError(t, err)

	facultyID := uint(1)
	response := dto.RankingResponse{
		Students: []dto.RankedStudentResponse{
			{
				ID:                            1,
				StudentNumber:                 "2021001",
				StudentName:                   "王晓明",
				FacultyID:                     &facultyID,
				Faculty:                       "信息学院",
				DepartmentID:                  10,
				Department:                    "计算机系",
				MajorID:                       100,
				Major:                         "软件工程",
				GPA:                           ptrFloat(3.8),
				AcademicScore:                 ptrFloat(90),
				AcademicSpecialtyTotal:        12.5,
				ComprehensivePerformanceTotal: 3,
				ComprehensiveScore:            87.5,
				MajorRanking:                  1,
				TotalStudents:                 2,
				Sequence:                      1,
			},
			{
				ID:                 2,
				StudentNumber:      "2021002",
				StudentName:        "李华",
				DepartmentID:       10,
				Department:         "计算机系",
				MajorID:            100,
				Major:              "软件工程",
				ComprehensiveScore: 80.25,
				MajorRanking:       2,
				TotalStudents:      2,
				Sequence:           2,
			},
		},
		Total: 2,
	}

	svc := stubRankingService{response: response}
	rankingHandler := handler.NewRankingHandler(svc, zerolog.Nop())

	app := fiber.New()
	group := app.Group("/api/v1/ranking", func(c *fiber.Ctx) error {
		c.Locals("user_id", uint(1))
		c.Locals("user_role", "teacher")
		return c.Next()
	})
	rankingHandler.Register(group)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/ranking", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()

	var payload interface{}
	require.NoError(t, json.Unmarshal(body, &payload))
	require.NoError(t, schema.Validate(payload))
}

func ptrFloat(v float64) *float64 {
	return &v
}
