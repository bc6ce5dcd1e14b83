package dto

// ========== Barcode 相关 DTO ==========

// BarcodeShowResponse 当前条码响应，供打卡终端轮询展示
type BarcodeShowResponse struct {
	LocationCode string `json:"location_code"`
	Barcode      string `json:"barcode"`
	Slot         int64  `json:"slot"`
	ExpiresIn    int    `json:"expires_in"` // 距当前时间槽结束的秒数
}

// BarcodeInfoResponse 条码轮换参数响应
type BarcodeInfoResponse struct {
	RotationSeconds int `json:"rotation_seconds"`
	SlotTolerance   int `json:"slot_tolerance"`
}

// LocationBarcode 单个地点的条码条目
type LocationBarcode struct {
	LocationCode string `json:"location_code"`
	LocationName string `json:"location_name"`
	Barcode      string `json:"barcode"`
}

// BarcodeIndexResponse 全部启用地点的条码响应
type BarcodeIndexResponse struct {
	Slot      int64             `json:"slot"`
	ExpiresIn int               `json:"expires_in"`
	Barcodes  []LocationBarcode `json:"barcodes"`
}
