package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeviceFingerprint(t *testing.T) {
	s := &DeviceService{}

	components := map[string]string{
		"platform":   "android",
		"model":      "Pixel 9",
		"resolution": "1080x2400",
	}

	first := s.Fingerprint(components)
	second := s.Fingerprint(map[string]string{
		"resolution": "1080x2400",
		"platform":   "android",
		"model":      "Pixel 9",
	})

	// 与 map 遍历顺序无关
	assert.Equal(t, first, second)
	assert.Len(t, first, 64) // sha256 hex

	// 任一特征变化产生不同指纹
	components["model"] = "Pixel 8"
	assert.NotEqual(t, first, s.Fingerprint(components))
}
