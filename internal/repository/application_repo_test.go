package repository

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/gradpush/recommend-api/internal/models"
)

func TestApplicationRepositoryListApprovedByStudent(t *testing.T) {
	db := setupApplicationTestDB(t)
	repo := NewApplicationRepository(db)

	score := 8.0
	seed := []models.Application{
		{StudentNumber: "2021001", ApplicationType: models.ApplicationTypeAcademic, ProjectName: "数学建模竞赛", Status: models.ApplicationStatusApproved, FinalScore: &score, DepartmentID: 10, MajorID: 100},
		{StudentNumber: "2021001", ApplicationType: models.ApplicationTypeComprehensive, ProjectName: "志愿服务", Status: models.ApplicationStatusPending, DepartmentID: 10, MajorID: 100},
		{StudentNumber: "2021002", ApplicationType: models.ApplicationTypeAcademic, ProjectName: "程序设计大赛", Status: models.ApplicationStatusApproved, FinalScore: &score, DepartmentID: 10, MajorID: 100},
	}
	for i := range seed {
		require.NoError(t, db.Create(&seed[i]).Error)
	}

	applications, err := repo.ListApprovedByStudent(context.Background(), "2021001")
	require.NoError(t, err)
	require.Len(t, applications, 1)
	require.Equal(t, "数学建模竞赛", applications[0].ProjectName)
}

func TestApplicationRepositoryListByIDs(t *testing.T) {
	db := setupApplicationTestDB(t)
	repo := NewApplicationRepository(db)

	seed := []models.Application{
		{StudentNumber: "2021001", ApplicationType: models.ApplicationTypeAcademic, ProjectName: "甲", Status: models.ApplicationStatusPending, DepartmentID: 10, MajorID: 100},
		{StudentNumber: "2021001", ApplicationType: models.ApplicationTypeAcademic, ProjectName: "乙", Status: models.ApplicationStatusPending, DepartmentID: 10, MajorID: 100},
		{StudentNumber: "2021001", ApplicationType: models.ApplicationTypeAcademic, ProjectName: "丙", Status: models.ApplicationStatusPending, DepartmentID: 10, MajorID: 100},
	}
	for i := range seed {
		require.NoError(t, db.Create(&seed[i]).Error)
	}

	applications, err := repo.ListByIDs(context.Background(), []uint{seed[0].ID, seed[2].ID})
	require.NoError(t, err)
	require.Len(t, applications, 2)

	applications, err = repo.ListByIDs(context.Background(), nil)
	require.NoError(t, err)
	require.Empty(t, applications)
}

func TestApplicationRepositoryListFiltersByStatusAndType(t *testing.T) {
	db := setupApplicationTestDB(t)
	repo := NewApplicationRepository(db)

	seed := []models.Application{
		{StudentNumber: "2021001", ApplicationType: models.ApplicationTypeAcademic, ProjectName: "甲", Status: models.ApplicationStatusApproved, DepartmentID: 10, MajorID: 100},
		{StudentNumber: "2021001", ApplicationType: models.ApplicationTypeComprehensive, ProjectName: "乙", Status: models.ApplicationStatusApproved, DepartmentID: 10, MajorID: 100},
		{StudentNumber: "2021001", ApplicationType: models.ApplicationTypeAcademic, ProjectName: "丙", Status: models.ApplicationStatusRejected, DepartmentID: 10, MajorID: 100},
	}
	for i := range seed {
		require.NoError(t, db.Create(&seed[i]).Error)
	}

	applications, total, err := repo.List(context.Background(), ApplicationFilter{
		Status:          models.ApplicationStatusApproved,
		ApplicationType: models.ApplicationTypeAcademic,
		PageSize:        10,
	})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Len(t, applications, 1)
	require.Equal(t, "甲", applications[0].ProjectName)
}

func TestApplicationRepositoryUpdateAllCommitsBatch(t *testing.T) {
	db := setupApplicationTestDB(t)
	repo := NewApplicationRepository(db)

	seed := []models.Application{
		{StudentNumber: "2021001", ApplicationType: models.ApplicationTypeAcademic, ProjectName: "甲", Status: models.ApplicationStatusPending, DepartmentID: 10, MajorID: 100},
		{StudentNumber: "2021002", ApplicationType: models.ApplicationTypeAcademic, ProjectName: "乙", Status: models.ApplicationStatusPending, DepartmentID: 10, MajorID: 100},
	}
	for i := range seed {
		require.NoError(t, db.Create(&seed[i]).Error)
	}

	score := 5.0
	for i := range seed {
		seed[i].Status = models.ApplicationStatusApproved
		seed[i].FinalScore = &score
	}
	require.NoError(t, repo.UpdateAll(context.Background(), seed))

	for _, app := range seed {
		stored, err := repo.GetByID(context.Background(), app.ID)
		require.NoError(t, err)
		require.Equal(t, models.ApplicationStatusApproved, stored.Status)
		require.NotNil(t, stored.FinalScore)
		require.Equal(t, 5.0, *stored.FinalScore)
	}
}

func setupApplicationTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Application{}))
	return db
}
