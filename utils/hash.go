package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// FingerprintDevice 由客户端上报的特征拼接后取 sha256，作为设备指纹
// 组成部分：user agent、accept-language、屏幕分辨率、时区、canvas 指纹
func FingerprintDevice(components ...string) string {
	data := strings.Join(components, "|")

	sum := sha256.Sum256([]byte(data))

	return hex.EncodeToString(sum[:])
}
