package barcode

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"OnDuty/pkg/errors"
)

func newTestService(secret string, at time.Time) *Service {
	s := NewService(Config{
		RotationSeconds: 300,
		SecretKey:       secret,
		Tolerance:       1,
	})
	s.now = func() time.Time { return at }
	return s
}

func TestCurrentSlot(t *testing.T) {
	at := time.Unix(1700000000, 0)
	s := newTestService("test-secret", at)

	want := s.CurrentSlot()
	assert.Equal(t, int64(1700000000/300), want)

	// 同一槽内时间推进不改变槽号
	s.now = func() time.Time { return at.Add(99 * time.Second) }
	assert.Equal(t, want, s.CurrentSlot())

	// 跨过轮换间隔后槽号 +1
	s.now = func() time.Time { return at.Add(150 * time.Second) }
	assert.Equal(t, want+1, s.CurrentSlot())
}

func TestGenerateDeterministic(t *testing.T) {
	at := time.Unix(1700000000, 0)
	s := newTestService("test-secret", at)

	first := s.Generate("HQ-01")
	second := s.Generate("HQ-01")
	assert.Equal(t, first, second)

	// 不同地点生成不同条码
	assert.NotEqual(t, first, s.Generate("HQ-02"))

	// 内容可解码且结构正确
	decoded, err := base64.StdEncoding.DecodeString(first)
	require.NoError(t, err)
	assert.Contains(t, string(decoded), "HQ-01:")
	assert.Contains(t, string(decoded), "|")
}

func TestValidateRoundTrip(t *testing.T) {
	at := time.Unix(1700000000, 0)
	s := newTestService("test-secret", at)

	claims, err := s.Validate(s.Generate("HQ-01"))
	require.NoError(t, err)
	assert.Equal(t, "HQ-01", claims.LocationCode)
	assert.Equal(t, s.CurrentSlot(), claims.Slot)
}

func TestValidateSlotTolerance(t *testing.T) {
	at := time.Unix(1700000000, 0)
	s := newTestService("test-secret", at)
	slot := s.CurrentSlot()

	tests := []struct {
		name    string
		slot    int64
		wantErr error
	}{
		{"current slot", slot, nil},
		{"previous slot", slot - 1, nil},
		{"two slots ago", slot - 2, errors.BarcodeExpired},
		{"future slot", slot + 1, errors.BarcodeExpired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Validate(s.GenerateForSlot("HQ-01", tt.slot))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateWrongSecret(t *testing.T) {
	at := time.Unix(1700000000, 0)
	issuer := newTestService("secret-a", at)
	verifier := newTestService("secret-b", at)

	_, err := verifier.Validate(issuer.Generate("HQ-01"))
	assert.ErrorIs(t, err, errors.BarcodeSignatureMismatch)
}

func TestValidateMalformedInput(t *testing.T) {
	at := time.Unix(1700000000, 0)
	s := newTestService("test-secret", at)

	tests := []struct {
		name    string
		barcode string
		wantErr error
	}{
		{"not base64", "!!!not-base64!!!", errors.BarcodeMalformed},
		{"missing signature separator", base64.StdEncoding.EncodeToString([]byte("HQ-01:123")), errors.BarcodeStructureInvalid},
		{"too many separators", base64.StdEncoding.EncodeToString([]byte("a|b|c")), errors.BarcodeStructureInvalid},
		{"payload without slot", base64.StdEncoding.EncodeToString([]byte("HQ-01|deadbeefdeadbeef")), errors.BarcodePayloadInvalid},
		{"tampered signature", base64.StdEncoding.EncodeToString([]byte("HQ-01:5666666|0000000000000000")), errors.BarcodeSignatureMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Validate(tt.barcode)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestExpiresIn(t *testing.T) {
	// 槽起点，剩余整个轮换间隔
	s := newTestService("test-secret", time.Unix(1700000100, 0))
	assert.Equal(t, 300, s.ExpiresIn())

	// 槽结束前 1 秒
	s.now = func() time.Time { return time.Unix(1700000399, 0) }
	assert.Equal(t, 1, s.ExpiresIn())
}
