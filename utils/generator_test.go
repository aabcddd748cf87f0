package utils

import (
	"testing"
	"time"

	"github.com/Hieupu/ATPS-BE-sub002/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestGenerateOrderCode(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"),
		&gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Enrollment{}))

	seen := make(map[int64]bool)
	for i := 0; i < 20; i++ {
		code, err := GenerateOrderCode(db)
		require.NoError(t, err)
		assert.Greater(t, code, int64(0))
		assert.LessOrEqual(t, code, models.MaxSafeOrderCode)
		seen[code] = true
		time.Sleep(time.Millisecond)
	}
	assert.Greater(t, len(seen), 1)
}

func TestGenerateOrderCodeAvoidsExistingCodes(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"),
		&gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Enrollment{}))

	code, err := GenerateOrderCode(db)
	require.NoError(t, err)

	enrollment := models.Enrollment{
		LearnerID:      uuid.New(),
		ClassID:        uuid.New(),
		Status:         models.EnrollmentPending,
		OrderCode:      code,
		EnrollmentDate: time.Now(),
	}
	require.NoError(t, db.Create(&enrollment).Error)

	next, err := GenerateOrderCode(db)
	require.NoError(t, err)
	assert.NotEqual(t, code, next)
}
