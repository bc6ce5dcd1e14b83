package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"OnDuty/internal/model"
)

func scheduleWith(id int64, startDate time.Time) model.UserSchedule {
	s := model.UserSchedule{StartDate: startDate}
	s.ID = id
	return s
}

func TestPickSchedule(t *testing.T) {
	jan := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	t.Run("empty", func(t *testing.T) {
		assert.Nil(t, PickSchedule(nil))
	})

	t.Run("single", func(t *testing.T) {
		picked := PickSchedule([]model.UserSchedule{scheduleWith(1, jan)})
		require.NotNil(t, picked)
		assert.Equal(t, int64(1), picked.ID)
	})

	t.Run("latest start date wins", func(t *testing.T) {
		picked := PickSchedule([]model.UserSchedule{
			scheduleWith(1, jan),
			scheduleWith(2, feb),
			scheduleWith(3, jan),
		})
		require.NotNil(t, picked)
		assert.Equal(t, int64(2), picked.ID)
	})

	t.Run("highest id breaks start date tie", func(t *testing.T) {
		picked := PickSchedule([]model.UserSchedule{
			scheduleWith(5, feb),
			scheduleWith(9, feb),
			scheduleWith(7, feb),
		})
		require.NotNil(t, picked)
		assert.Equal(t, int64(9), picked.ID)
	})

	t.Run("order independent", func(t *testing.T) {
		forward := PickSchedule([]model.UserSchedule{scheduleWith(1, jan), scheduleWith(2, feb)})
		backward := PickSchedule([]model.UserSchedule{scheduleWith(2, feb), scheduleWith(1, jan)})
		assert.Equal(t, forward.ID, backward.ID)
	})
}
