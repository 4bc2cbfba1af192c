package service

import (
	"time"

	"caltrack/backend/internal/dto"
	"caltrack/backend/internal/model"
)

// ── model → DTO 映射辅助 ──

const dateLayout = "2006-01-02"

func fmtDate(t time.Time) string {
	return t.Format(dateLayout)
}

func fmtDatePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}

func fmtTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}

func toDepartmentBrief(d *model.Department) *dto.DepartmentBrief {
	if d == nil {
		return nil
	}
	return &dto.DepartmentBrief{ID: d.DepartmentID, Name: d.Name}
}

func toUserBrief(u *model.User) *dto.UserBrief {
	if u == nil {
		return nil
	}
	return &dto.UserBrief{
		ID:         u.UserID,
		Name:       u.Name,
		EmployeeNo: u.EmployeeNo,
		Role:       string(u.Role),
		Department: toDepartmentBrief(u.Department),
	}
}

func toLocationBrief(l *model.Location) *dto.LocationBrief {
	if l == nil {
		return nil
	}
	return &dto.LocationBrief{ID: l.LocationID, Name: l.Name, Plant: l.Plant}
}

func toEquipmentBrief(e *model.Equipment) *dto.EquipmentBrief {
	if e == nil {
		return nil
	}
	return &dto.EquipmentBrief{
		ID:           e.EquipmentID,
		RecallNumber: e.RecallNumber,
		SerialNumber: e.SerialNumber,
		Description:  e.Description,
		Manufacturer: e.Manufacturer,
		ModelNo:      e.ModelNo,
	}
}

func toIntakeResponse(rec *model.IntakeRecord) *dto.IntakeResponse {
	resp := &dto.IntakeResponse{
		ID:           rec.IntakeID,
		RecallNumber: rec.RecallNumber,
		Description:  rec.Description,
		SerialNumber: rec.SerialNumber,
		Manufacturer: rec.Manufacturer,
		ModelNo:      rec.ModelNo,
		DateIn:       rec.DateIn.Format(time.RFC3339),
		DueDate:      fmtDate(rec.DueDate),
		Status:       string(rec.Status),
		Equipment:    toEquipmentBrief(rec.Equipment),
		Technician:   toUserBrief(rec.Technician),
		Location:     toLocationBrief(rec.Location),
		EmployeeIn:   toUserBrief(rec.EmployeeIn),
		ReceivedBy:   toUserBrief(rec.ReceivedBy),
	}
	if rec.Completion != nil {
		resp.Completion = toCompletionResponse(rec.Completion)
	}
	return resp
}

func toCompletionResponse(rec *model.CompletionRecord) *dto.CompletionResponse {
	resp := &dto.CompletionResponse{
		ID:          rec.CompletionID,
		IntakeID:    rec.IntakeID,
		CalDate:     fmtDatePtr(rec.CalDate),
		CalDueDate:  fmtDatePtr(rec.CalDueDate),
		DateOut:     fmtTimePtr(rec.DateOut),
		CycleTime:   rec.CycleTime,
		CTReqd:      rec.CTReqd,
		CommitETC:   fmtDatePtr(rec.CommitETC),
		ActualETC:   fmtDatePtr(rec.ActualETC),
		Overdue:     dto.OverdueFlag(rec.Overdue),
		Status:      string(rec.Status),
		EmployeeOut: toUserBrief(rec.EmployeeOut),
		ReleasedBy:  toUserBrief(rec.ReleasedBy),
		PickedUpAt:  fmtTimePtr(rec.PickedUpAt),
		PickedUpBy:  toUserBrief(rec.PickedUpBy),
	}
	if rec.Intake != nil {
		// 只带一层，避免 Intake ↔ Completion 相互嵌套
		intake := *rec.Intake
		intake.Completion = nil
		resp.Intake = toIntakeResponse(&intake)
	}
	return resp
}
