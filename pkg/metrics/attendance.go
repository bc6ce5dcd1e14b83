package metrics

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var meter = otel.Meter("onduty")

var (
	// 扫码打卡相关指标
	scanAcceptedTotal metric.Int64Counter
	scanRejectedTotal metric.Int64Counter
	scanDuration      metric.Float64Histogram

	// 缺勤扫描相关指标
	absentMarkedTotal metric.Int64Counter

	// 补卡审批相关指标
	requestReviewTotal metric.Int64Counter

	// 条码生成相关指标，缓存命中不计入
	barcodeGeneratedTotal metric.Int64Counter
)

// Init 初始化考勤业务指标
func Init() error {
	var err error

	scanAcceptedTotal, err = meter.Int64Counter(
		"attendance.scans.accepted.total",
		metric.WithDescription("Total number of accepted attendance scans"),
		metric.WithUnit("{scan}"),
	)
	if err != nil {
		return err
	}

	scanRejectedTotal, err = meter.Int64Counter(
		"attendance.scans.rejected.total",
		metric.WithDescription("Total number of rejected attendance scans"),
		metric.WithUnit("{scan}"),
	)
	if err != nil {
		return err
	}

	scanDuration, err = meter.Float64Histogram(
		"attendance.scan.duration",
		metric.WithDescription("Attendance scan pipeline duration"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5),
	)
	if err != nil {
		return err
	}

	absentMarkedTotal, err = meter.Int64Counter(
		"attendance.absent.marked.total",
		metric.WithDescription("Total number of users marked absent by the sweep"),
		metric.WithUnit("{user}"),
	)
	if err != nil {
		return err
	}

	requestReviewTotal, err = meter.Int64Counter(
		"attendance.requests.reviewed.total",
		metric.WithDescription("Total number of reviewed attendance requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return err
	}

	barcodeGeneratedTotal, err = meter.Int64Counter(
		"attendance.barcodes.generated.total",
		metric.WithDescription("Total number of barcodes generated on cache miss"),
		metric.WithUnit("{barcode}"),
	)
	if err != nil {
		return err
	}

	return nil
}

// RecordScanAccepted 记录一次成功打卡
func RecordScanAccepted(ctx context.Context, checkType, status string, seconds float64) {
	if scanAcceptedTotal == nil {
		return
	}

	labels := metric.WithAttributes(
		attribute.String("check_type", checkType),
		attribute.String("status", status),
	)
	scanAcceptedTotal.Add(ctx, 1, labels)
	scanDuration.Record(ctx, seconds, labels)
}

// RecordScanRejected 记录一次被拒绝的打卡，code 为业务错误码
func RecordScanRejected(ctx context.Context, code string) {
	if scanRejectedTotal == nil {
		return
	}

	scanRejectedTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("code", code),
	))
}

// RecordAbsentMarked 记录缺勤扫描标记的人数
func RecordAbsentMarked(ctx context.Context, count int64) {
	if absentMarkedTotal == nil {
		return
	}

	absentMarkedTotal.Add(ctx, count)
}

// RecordBarcodeGenerated 记录一次条码实际生成
func RecordBarcodeGenerated(ctx context.Context, locationCode string) {
	if barcodeGeneratedTotal == nil {
		return
	}

	barcodeGeneratedTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("location_code", locationCode),
	))
}

// RecordRequestReview 记录一次补卡审批，decision 为 APPROVED 或 REJECTED
func RecordRequestReview(ctx context.Context, decision string) {
	if requestReviewTotal == nil {
		return
	}

	requestReviewTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("decision", decision),
	))
}
