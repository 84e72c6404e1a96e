package progress

import (
	"context"
	"time"

	"github.com/peerstudy-hub/peerstudy-matching/internal/domain/shared"
)

// Repository определяет операции над журналом учебных часов.
type Repository interface {
	// LogHours записывает (или заменяет) часы занятий за день.
	LogHours(ctx context.Context, id shared.ParticipantID, date time.Time, hours float64) error

	// History возвращает до days последних дневных записей, отсортированных
	// по дате по возрастанию.
	History(ctx context.Context, id shared.ParticipantID, days int) ([]DailyStudyEntry, error)
}
