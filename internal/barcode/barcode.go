package barcode

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"OnDuty/pkg/errors"
)

// signatureLength 签名截断长度，较短的签名可以缩小二维码
const signatureLength = 16

// Config 轮换条码配置
type Config struct {
	RotationSeconds int    // 轮换间隔（秒）
	SecretKey       string // HMAC 密钥
	Tolerance       int    // 容忍的历史时间槽数量，1 表示接受当前和上一个槽
}

// Service 轮换条码服务，纯计算，无外部依赖。
// 条码格式：base64(locationCode:slot|signature)，签名为 HMAC-SHA256 十六进制前 16 位。
type Service struct {
	cfg Config
	now func() time.Time
}

func NewService(cfg Config) *Service {
	return &Service{cfg: cfg, now: time.Now}
}

// CurrentSlot 返回当前时间槽，slot = floor(unix / rotationSeconds)
func (s *Service) CurrentSlot() int64 {
	return s.slotAt(0)
}

func (s *Service) slotAt(intervalsAgo int) int64 {
	return s.now().Unix()/int64(s.cfg.RotationSeconds) - int64(intervalsAgo)
}

// ExpiresIn 返回当前时间槽剩余的秒数
func (s *Service) ExpiresIn() int {
	slotEnd := (s.CurrentSlot() + 1) * int64(s.cfg.RotationSeconds)
	return int(slotEnd - s.now().Unix())
}

// Generate 为地点生成当前时间槽的条码，同一槽内结果确定
func (s *Service) Generate(locationCode string) string {
	return s.GenerateForSlot(locationCode, s.CurrentSlot())
}

// GenerateForSlot 为指定时间槽生成条码
func (s *Service) GenerateForSlot(locationCode string, slot int64) string {
	payload := fmt.Sprintf("%s:%d", locationCode, slot)
	data := payload + "|" + s.sign(payload)
	return base64.StdEncoding.EncodeToString([]byte(data))
}

func (s *Service) sign(payload string) string {
	mac := hmac.New(sha256.New, []byte(s.cfg.SecretKey))
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))[:signatureLength]
}

// isHexSignature 签名部分必须是恰好 16 位十六进制字符
func isHexSignature(s string) bool {
	if len(s) != signatureLength {
		return false
	}
	if _, err := hex.DecodeString(s); err != nil {
		return false
	}
	return true
}

// Claims 条码校验通过后得到的内容
type Claims struct {
	LocationCode string
	Slot         int64
}

// Validate 解码并校验条码。
// 依次检查 base64、结构、载荷格式、签名、时间槽，任一失败返回对应业务错误。
// 地点是否存在由调用方查库确认。
func (s *Service) Validate(barcodeData string) (Claims, error) {
	decoded, err := base64.StdEncoding.DecodeString(barcodeData)
	if err != nil {
		return Claims{}, errors.BarcodeMalformed
	}

	parts := strings.Split(string(decoded), "|")
	if len(parts) != 2 || !isHexSignature(parts[1]) {
		return Claims{}, errors.BarcodeStructureInvalid
	}
	payload, providedSignature := parts[0], parts[1]

	payloadParts := strings.Split(payload, ":")
	if len(payloadParts) != 2 {
		return Claims{}, errors.BarcodePayloadInvalid
	}
	locationCode, slotStr := payloadParts[0], payloadParts[1]

	// 常数时间比较，防止签名逐字节试探
	expected := s.sign(payload)
	if !hmac.Equal([]byte(expected), []byte(providedSignature)) {
		return Claims{}, errors.BarcodeSignatureMismatch
	}

	slot, err := strconv.ParseInt(slotStr, 10, 64)
	if err != nil {
		return Claims{}, errors.BarcodeExpired
	}
	valid := false
	for i := 0; i <= s.cfg.Tolerance; i++ {
		if slot == s.slotAt(i) {
			valid = true
			break
		}
	}
	if !valid {
		return Claims{}, errors.BarcodeExpired
	}

	return Claims{LocationCode: locationCode, Slot: slot}, nil
}
