package utils

import (
	"math/rand"
	"time"

	"github.com/Hieupu/ATPS-BE-sub002/models"
	"gorm.io/gorm"
)

const orderCodeAttempts = 3

// GenerateOrderCode builds a numeric idempotency key from the current
// millisecond timestamp with a 2-digit random suffix, clamped to the
// gateway's safe-integer ceiling. Collisions are checked against existing
// enrollments with a bounded retry; the unique index on order_code is the
// real safety net if a collision survives all attempts.
func GenerateOrderCode(tx *gorm.DB) (int64, error) {
	seededRand := rand.New(rand.NewSource(time.Now().UnixNano()))

	var code int64
	for attempt := 0; attempt < orderCodeAttempts; attempt++ {
		code = time.Now().UnixMilli()*100 + int64(seededRand.Intn(100))
		if code > models.MaxSafeOrderCode {
			code = models.MaxSafeOrderCode
		}

		var count int64
		if err := tx.Model(&models.Enrollment{}).Where("order_code = ?", code).Count(&count).Error; err != nil {
			return 0, err
		}
		if count == 0 {
			return code, nil
		}
	}
	return code, nil
}
