package repository

import (
	"fmt"
	"os"

	"gorm.io/gen"

	"OnDuty/internal/model"
	"OnDuty/storage/database"
)

// ========== User 相关查询接口 ==========

// UserQuerier 用户查询接口
type UserQuerier interface {
	// GetByPublicID 根据 PublicID 查询用户（API 中 userID 是 public_id）
	//
	// SELECT * FROM @@table WHERE public_id = @publicID LIMIT 1
	GetByPublicID(publicID int64) (*gen.T, error)

	// GetByEmail 根据邮箱查询用户（登录）
	//
	// SELECT * FROM @@table WHERE email = @email LIMIT 1
	GetByEmail(email string) (*gen.T, error)

	// GetByEmployeeID 根据工号查询用户
	//
	// SELECT * FROM @@table WHERE employee_id = @employeeID LIMIT 1
	GetByEmployeeID(employeeID string) (*gen.T, error)

	// ListByStatus 根据状态查询用户列表（管理后台）
	//
	// SELECT * FROM @@table
	// WHERE status = @status
	// {{if limit > 0}}
	// LIMIT @limit
	// {{end}}
	// {{if offset > 0}}
	// OFFSET @offset
	// {{end}}
	ListByStatus(status string, limit, offset int) ([]*gen.T, error)
}

// ========== Attendance 相关查询接口 ==========

// AttendanceQuerier 考勤记录查询接口
type AttendanceQuerier interface {
	// GetLastEventOnDate 获取用户某天最后一条考勤事件（打卡方向判定）
	//
	// SELECT * FROM @@table
	// WHERE user_id = @userID
	//   AND scan_time >= @dayStart AND scan_time < @dayEnd
	// ORDER BY scan_time DESC
	// LIMIT 1
	GetLastEventOnDate(userID int64, dayStart, dayEnd string) (*gen.T, error)

	// ListByUserAndDateRange 按用户和日期范围查询考勤记录（分页）
	//
	// SELECT * FROM @@table
	// WHERE user_id = @userID
	//   AND scan_time >= @from AND scan_time < @to
	//   {{if status != ""}}
	//   AND status = @status
	//   {{end}}
	// ORDER BY scan_time DESC
	// LIMIT @limit OFFSET @offset
	ListByUserAndDateRange(userID int64, from, to string, status string, limit, offset int) ([]*gen.T, error)

	// CountByUserAndStatus 统计用户考勤记录数量（按状态）
	//
	// SELECT status, COUNT(*) as count
	// FROM @@table
	// WHERE user_id = @userID
	// GROUP BY status
	CountByUserAndStatus(userID int64) ([]gen.M, error)

	// CountLateByUserAndMonth 统计用户某月迟到次数（报表）
	//
	// SELECT COUNT(*) as count
	// FROM @@table
	// WHERE user_id = @userID
	//   AND status = 'LATE'
	//   AND to_char(scan_time, 'YYYY-MM') = @month
	CountLateByUserAndMonth(userID int64, month string) (int64, error)
}

// ========== AttendanceRequest 相关查询接口 ==========

// AttendanceRequestQuerier 补卡申请查询接口
type AttendanceRequestQuerier interface {
	// ListPendingRequests 查询待审批的申请（管理后台）
	//
	// SELECT * FROM @@table
	// WHERE status = 'PENDING'
	// ORDER BY created_at ASC
	// LIMIT @limit
	ListPendingRequests(limit int) ([]*gen.T, error)

	// ListByUserAndStatus 按用户和状态查询申请（分页）
	//
	// SELECT * FROM @@table
	// WHERE user_id = @userID
	//   {{if status != ""}}
	//   AND status = @status
	//   {{end}}
	// ORDER BY created_at DESC
	// LIMIT @limit OFFSET @offset
	ListByUserAndStatus(userID int64, status string, limit, offset int) ([]*gen.T, error)
}

// ========== AttendanceLog 相关查询接口 ==========

// AttendanceLogQuerier 审计日志查询接口
type AttendanceLogQuerier interface {
	// ListByAttendanceID 根据考勤记录查询审计日志
	//
	// SELECT * FROM @@table
	// WHERE attendance_id = @attendanceID
	// ORDER BY created_at DESC
	ListByAttendanceID(attendanceID int64) ([]*gen.T, error)

	// ListByUserAndAction 按用户和动作查询审计日志（分页）
	//
	// SELECT * FROM @@table
	// WHERE user_id = @userID
	//   {{if action != ""}}
	//   AND action = @action
	//   {{end}}
	// ORDER BY created_at DESC
	// LIMIT @limit OFFSET @offset
	ListByUserAndAction(userID int64, action string, limit, offset int) ([]*gen.T, error)
}

func Generate() error {
	if err := database.Init(); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	// 运行数据库迁移（确保表存在）
	if err := database.Migrate(); err != nil {
		return fmt.Errorf("failed to run database migration: %w", err)
	}

	db := database.DB()
	if db == nil {
		return fmt.Errorf("database connection is nil")
	}

	g := gen.NewGenerator(gen.Config{
		OutPath:           "./internal/repository/query", // 生成代码的输出路径
		ModelPkgPath:      "OnDuty/internal/model",
		Mode:              gen.WithDefaultQuery | gen.WithQueryInterface | gen.WithoutContext,
		FieldNullable:     true, // 字段可以为 null
		FieldCoverable:    false,
		FieldSignable:     false,
		FieldWithIndexTag: false,
		FieldWithTypeTag:  true,
	})

	g.UseDB(db)

	// 注册现有的 model，GORM Gen 会使用这些 model 而不是生成新的
	g.ApplyBasic(
		&model.User{},
		&model.Location{},
		&model.Shift{},
		&model.UserSchedule{},
		&model.Attendance{},
		&model.AttendanceRequest{},
		&model.AttendanceLog{},
	)

	g.ApplyInterface(func(UserQuerier) {}, &model.User{})
	g.ApplyInterface(func(AttendanceQuerier) {}, &model.Attendance{})
	g.ApplyInterface(func(AttendanceRequestQuerier) {}, &model.AttendanceRequest{})
	g.ApplyInterface(func(AttendanceLogQuerier) {}, &model.AttendanceLog{})

	g.Execute()

	return nil
}

func RunGenerate() {
	if err := Generate(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to generate code: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Code generation completed successfully!")
}
