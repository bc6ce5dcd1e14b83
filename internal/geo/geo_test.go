package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"OnDuty/internal/model"
	"OnDuty/pkg/errors"
)

func TestValidateCoordinates(t *testing.T) {
	v := NewValidator(Config{MaxAccuracyMeters: 100})

	tests := []struct {
		name    string
		lat     float64
		lng     float64
		wantErr bool
	}{
		{"valid city coordinates", 51.5074, -0.1278, false},
		{"latitude north boundary", 90, 0.5, false},
		{"latitude south boundary", -90, 0.5, false},
		{"longitude east boundary", 0.5, 180, false},
		{"longitude west boundary", 0.5, -180, false},
		{"latitude just above boundary", 90.0001, 0.5, true},
		{"latitude just below boundary", -90.0001, 0.5, true},
		{"longitude just above boundary", 0.5, 180.0001, true},
		{"longitude just below boundary", 0.5, -180.0001, true},
		{"null island exact", 0, 0, true},
		{"null island nearby", 0.00005, -0.00005, true},
		{"just outside null island zone", 0.0001, 0.0001, false},
		{"NaN latitude", math.NaN(), 0.5, true},
		{"Inf longitude", 0.5, math.Inf(1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateCoordinates(tt.lat, tt.lng)
			if tt.wantErr {
				assert.ErrorIs(t, err, errors.InvalidCoordinates)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDistanceMeters(t *testing.T) {
	// 伦敦到巴黎的大圆距离约 343 公里
	got := DistanceMeters(51.5074, -0.1278, 48.8566, 2.3522)
	assert.InEpsilon(t, 343000.0, got, 0.01)

	// 同一点距离为零
	assert.Zero(t, DistanceMeters(51.5074, -0.1278, 51.5074, -0.1278))

	// 距离对称
	forward := DistanceMeters(51.5074, -0.1278, 48.8566, 2.3522)
	backward := DistanceMeters(48.8566, 2.3522, 51.5074, -0.1278)
	assert.InDelta(t, forward, backward, 1e-9)
}

func TestValidateAgainstLocation(t *testing.T) {
	v := NewValidator(Config{MaxAccuracyMeters: 100})
	loc := &model.Location{
		Latitude:       51.5074,
		Longitude:      -0.1278,
		AllowedRadiusM: 100,
	}

	t.Run("inside radius", func(t *testing.T) {
		result, err := v.ValidateAgainstLocation(51.5074, -0.1278, nil, loc)
		require.NoError(t, err)
		assert.Zero(t, result.DistanceM)
	})

	t.Run("accuracy rejected before distance", func(t *testing.T) {
		accuracy := 150.0
		// 坐标与地点完全重合，仍然因精度被拒，且结果中没有距离
		result, err := v.ValidateAgainstLocation(51.5074, -0.1278, &accuracy, loc)
		assert.ErrorIs(t, err, errors.GPSAccuracyTooLow)
		assert.Zero(t, result.DistanceM)
	})

	t.Run("accuracy at limit passes", func(t *testing.T) {
		accuracy := 100.0
		_, err := v.ValidateAgainstLocation(51.5074, -0.1278, &accuracy, loc)
		assert.NoError(t, err)
	})

	t.Run("outside radius reports rounded distance", func(t *testing.T) {
		// 向北偏移约 200 米（1 度纬度 ≈ 111,195 米）
		offsetLat := loc.Latitude + 200.0/111195.0
		result, err := v.ValidateAgainstLocation(offsetLat, loc.Longitude, nil, loc)
		assert.ErrorIs(t, err, errors.OutsideAllowedRadius)
		assert.InDelta(t, 200.0, result.DistanceM, 1.0)
		// 两位小数
		assert.Equal(t, math.Round(result.DistanceM*100)/100, result.DistanceM)
	})

	t.Run("comparison uses raw distance not rounded", func(t *testing.T) {
		// 距离略超半径但四舍五入后等于半径，仍然拒绝
		offsetLat := loc.Latitude + 100.004/111195.0
		result, err := v.ValidateAgainstLocation(offsetLat, loc.Longitude, nil, loc)
		assert.ErrorIs(t, err, errors.OutsideAllowedRadius)
		assert.InDelta(t, 100.0, result.DistanceM, 0.01)
	})
}
