package model

// AbsentMarkedMessage 缺勤标记消息，夜间扫描任务对每个缺勤用户发布一条
type AbsentMarkedMessage struct {
	MessageID string `json:"message_id"` // 消息唯一ID，用于幂等性检查
	BatchID   string `json:"batch_id"`
	UserID    int64  `json:"user_id"`
	Date      string `json:"date"` // 缺勤日期 "2006-01-02"
	ShiftCode string `json:"shift_code"`
	MarkedAt  string `json:"marked_at"`
}

// RequestSubmittedMessage 补卡申请提交消息，通知管理员待审批
type RequestSubmittedMessage struct {
	MessageID   string `json:"message_id"` // 消息唯一ID，用于幂等性检查
	RequestID   int64  `json:"request_id"`
	UserID      int64  `json:"user_id"`
	CheckType   string `json:"check_type"`
	RequestTime string `json:"request_time"`
	Reason      string `json:"reason"`
}

// RequestReviewedMessage 补卡申请审批结果消息，通知申请人
type RequestReviewedMessage struct {
	MessageID  string `json:"message_id"` // 消息唯一ID，用于幂等性检查
	RequestID  int64  `json:"request_id"`
	UserID     int64  `json:"user_id"`
	Status     string `json:"status"` // APPROVED / REJECTED
	ReviewedBy int64  `json:"reviewed_by"`
	ReviewedAt string `json:"reviewed_at"`
	AdminNote  string `json:"admin_note,omitempty"`
}
