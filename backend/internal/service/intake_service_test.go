package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"caltrack/backend/internal/dto"
	"caltrack/backend/internal/model"
	pkgerrors "caltrack/backend/pkg/errors"
)

func strPtr(s string) *string { return &s }

// newIntakeTestEnv 构造进件服务测试环境并预置参考数据
func newIntakeTestEnv(t *testing.T) (IntakeService, *testMocks) {
	t.Helper()
	repo, m := newTestRepo()

	dept := &model.Department{DepartmentID: "dept-qa", Name: "质量部", IsActive: true}
	m.department.departments[dept.DepartmentID] = dept

	m.user.users["tech-1"] = &model.User{
		UserID: "tech-1", Name: "张技术", EmployeeNo: "T001",
		Role: model.RoleTechnician, DepartmentID: dept.DepartmentID, Department: dept,
	}
	m.user.users["emp-1"] = &model.User{
		UserID: "emp-1", Name: "李员工", EmployeeNo: "E001",
		Role: model.RoleEmployee, DepartmentID: dept.DepartmentID, Department: dept,
	}
	m.location.locations["loc-1"] = &model.Location{LocationID: "loc-1", Name: "计量室", IsActive: true}

	return NewIntakeService(repo, zap.NewNop()), m
}

func adminActor() model.Actor {
	return model.Actor{UserID: "admin-1", Role: model.RoleAdmin, DepartmentID: "dept-qa"}
}

func employeeActor() model.Actor {
	return model.Actor{UserID: "emp-1", Role: model.RoleEmployee, DepartmentID: "dept-qa"}
}

func validCreateIntakeReq(requestType string) *dto.CreateIntakeRequest {
	return &dto.CreateIntakeRequest{
		RequestType:  requestType,
		Description:  "数字万用表",
		TechnicianID: "tech-1",
		LocationID:   "loc-1",
		EmployeeInID: "emp-1",
		DueDate:      "2026-09-30",
	}
}

func TestIntakeService_Create_StatusByRequestType(t *testing.T) {
	svc, _ := newIntakeTestEnv(t)
	ctx := context.Background()

	got, err := svc.Create(ctx, adminActor(), validCreateIntakeReq("new_equipment"))
	if err != nil {
		t.Fatalf("创建新设备进件失败: %v", err)
	}
	if got.Status != string(model.IntakeStatusForConfirmation) {
		t.Errorf("新设备进件初始状态期望 for_confirmation，实际 %s", got.Status)
	}

	got, err = svc.Create(ctx, adminActor(), validCreateIntakeReq("routine"))
	if err != nil {
		t.Fatalf("创建例行进件失败: %v", err)
	}
	if got.Status != string(model.IntakeStatusPendingCalibration) {
		t.Errorf("例行进件初始状态期望 pending_calibration，实际 %s", got.Status)
	}
}

func TestIntakeService_Create_UnknownReference(t *testing.T) {
	svc, _ := newIntakeTestEnv(t)
	ctx := context.Background()

	req := validCreateIntakeReq("routine")
	req.TechnicianID = "ghost"
	if _, err := svc.Create(ctx, adminActor(), req); !pkgerrors.IsKind(err, pkgerrors.KindValidation) {
		t.Errorf("未知技术员应返回 validation 错误，实际 %v", err)
	}

	req = validCreateIntakeReq("routine")
	req.LocationID = "nowhere"
	if _, err := svc.Create(ctx, adminActor(), req); !pkgerrors.IsKind(err, pkgerrors.KindValidation) {
		t.Errorf("未知地点应返回 validation 错误，实际 %v", err)
	}
}

func TestIntakeService_Create_CopiesEquipmentRecallNumber(t *testing.T) {
	svc, m := newIntakeTestEnv(t)
	ctx := context.Background()

	m.equipment.items["eq-1"] = &model.Equipment{
		EquipmentID: "eq-1", Description: "卡尺", RecallNumber: strPtr("RC-100"), IsActive: true,
	}

	req := validCreateIntakeReq("routine")
	req.EquipmentID = strPtr("eq-1")
	got, err := svc.Create(ctx, adminActor(), req)
	if err != nil {
		t.Fatalf("创建进件失败: %v", err)
	}
	if got.RecallNumber == nil || *got.RecallNumber != "RC-100" {
		t.Error("召回号缺省时应从设备目录带入")
	}
}

func TestIntakeService_Create_DuplicateRecallNumber(t *testing.T) {
	svc, _ := newIntakeTestEnv(t)
	ctx := context.Background()

	req := validCreateIntakeReq("routine")
	req.RecallNumber = strPtr("RC-200")
	if _, err := svc.Create(ctx, adminActor(), req); err != nil {
		t.Fatalf("首次使用召回号应成功: %v", err)
	}

	req2 := validCreateIntakeReq("routine")
	req2.RecallNumber = strPtr("RC-200")
	if _, err := svc.Create(ctx, adminActor(), req2); !pkgerrors.IsKind(err, pkgerrors.KindConflict) {
		t.Errorf("重复召回号应返回 conflict 错误，实际 %v", err)
	}
}

func TestIntakeService_Confirm(t *testing.T) {
	svc, m := newIntakeTestEnv(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, adminActor(), validCreateIntakeReq("new_equipment"))
	if err != nil {
		t.Fatalf("创建进件失败: %v", err)
	}

	got, err := svc.Confirm(ctx, adminActor(), created.ID)
	if err != nil {
		t.Fatalf("确认进件失败: %v", err)
	}
	if got.Status != string(model.IntakeStatusPendingCalibration) {
		t.Errorf("确认后状态期望 pending_calibration，实际 %s", got.Status)
	}

	// 重复确认不允许：状态只能向前流转
	if _, err := svc.Confirm(ctx, adminActor(), created.ID); !pkgerrors.IsKind(err, pkgerrors.KindConflict) {
		t.Errorf("重复确认应返回 conflict 错误，实际 %v", err)
	}

	// 已完成的进件同样不可确认
	m.intake.records[created.ID].Status = model.IntakeStatusCompleted
	if _, err := svc.Confirm(ctx, adminActor(), created.ID); !pkgerrors.IsKind(err, pkgerrors.KindConflict) {
		t.Errorf("已完成进件确认应返回 conflict 错误，实际 %v", err)
	}
}

func TestIntakeService_Update_CompletedRequiresAdmin(t *testing.T) {
	svc, m := newIntakeTestEnv(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, adminActor(), validCreateIntakeReq("routine"))
	if err != nil {
		t.Fatalf("创建进件失败: %v", err)
	}
	m.intake.records[created.ID].Status = model.IntakeStatusCompleted

	req := &dto.UpdateIntakeRequest{Description: strPtr("修正描述")}

	_, err = svc.Update(ctx, employeeActor(), created.ID, req)
	if !pkgerrors.IsKind(err, pkgerrors.KindAuthorization) {
		t.Fatalf("普通员工编辑已完成进件应返回 authorization 错误，实际 %v", err)
	}
	if !strings.Contains(err.Error(), "Only administrators can edit completed records") {
		t.Errorf("错误消息不符: %v", err)
	}

	got, err := svc.Update(ctx, adminActor(), created.ID, req)
	if err != nil {
		t.Fatalf("管理员编辑已完成进件应成功: %v", err)
	}
	if got.Description != "修正描述" {
		t.Errorf("描述未更新，实际 %s", got.Description)
	}
}

func TestIntakeService_Update_NotFound(t *testing.T) {
	svc, _ := newIntakeTestEnv(t)

	_, err := svc.Update(context.Background(), adminActor(), "missing", &dto.UpdateIntakeRequest{})
	if !pkgerrors.IsKind(err, pkgerrors.KindNotFound) {
		t.Errorf("不存在的进件应返回 not_found 错误，实际 %v", err)
	}
}

func TestIntakeService_ListOverdue(t *testing.T) {
	svc, m := newIntakeTestEnv(t)
	ctx := context.Background()

	now := time.Now()
	m.intake.records["overdue-1"] = &model.IntakeRecord{
		IntakeID: "overdue-1", Description: "压力表",
		TechnicianID: "tech-1", LocationID: "loc-1", EmployeeInID: "emp-1", ReceivedByID: "admin-1",
		DateIn: now.AddDate(0, 0, -30), DueDate: now.AddDate(0, 0, -2),
		Status: model.IntakeStatusPendingCalibration,
	}
	m.intake.records["done-1"] = &model.IntakeRecord{
		IntakeID: "done-1", Description: "温度计",
		TechnicianID: "tech-1", LocationID: "loc-1", EmployeeInID: "emp-1", ReceivedByID: "admin-1",
		DateIn: now.AddDate(0, 0, -30), DueDate: now.AddDate(0, 0, -2),
		Status: model.IntakeStatusCompleted,
	}
	m.intake.records["future-1"] = &model.IntakeRecord{
		IntakeID: "future-1", Description: "天平",
		TechnicianID: "tech-1", LocationID: "loc-1", EmployeeInID: "emp-1", ReceivedByID: "admin-1",
		DateIn: now, DueDate: now.AddDate(0, 0, 10),
		Status: model.IntakeStatusForConfirmation,
	}

	got, total, err := svc.ListOverdue(ctx, &dto.PaginationRequest{})
	if err != nil {
		t.Fatalf("查询逾期进件失败: %v", err)
	}
	if total != 1 || len(got) != 1 || got[0].ID != "overdue-1" {
		t.Errorf("逾期列表应只含到期未完成的进件，实际 %d 条", total)
	}
}

func TestIntakeService_ArchiveAndRestore(t *testing.T) {
	svc, _ := newIntakeTestEnv(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, adminActor(), validCreateIntakeReq("routine"))
	if err != nil {
		t.Fatalf("创建进件失败: %v", err)
	}

	if err := svc.Archive(ctx, employeeActor(), created.ID); err != nil {
		t.Fatalf("归档进件失败: %v", err)
	}
	if _, err := svc.GetByID(ctx, created.ID); !pkgerrors.IsKind(err, pkgerrors.KindNotFound) {
		t.Error("归档后的进件不应出现在常规查询中")
	}

	// 恢复仅管理员可操作
	if err := svc.Restore(ctx, employeeActor(), created.ID); !pkgerrors.IsKind(err, pkgerrors.KindAuthorization) {
		t.Errorf("普通员工恢复归档应返回 authorization 错误，实际 %v", err)
	}
	if err := svc.Restore(ctx, adminActor(), created.ID); err != nil {
		t.Fatalf("管理员恢复归档失败: %v", err)
	}
	if _, err := svc.GetByID(ctx, created.ID); err != nil {
		t.Errorf("恢复后进件应可查询: %v", err)
	}
}

func TestIntakeService_ForceDeleteRequiresAdmin(t *testing.T) {
	svc, m := newIntakeTestEnv(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, adminActor(), validCreateIntakeReq("routine"))
	if err != nil {
		t.Fatalf("创建进件失败: %v", err)
	}

	if err := svc.ForceDelete(ctx, employeeActor(), created.ID); !pkgerrors.IsKind(err, pkgerrors.KindAuthorization) {
		t.Errorf("普通员工物理删除应返回 authorization 错误，实际 %v", err)
	}
	if err := svc.ForceDelete(ctx, adminActor(), created.ID); err != nil {
		t.Fatalf("管理员物理删除失败: %v", err)
	}
	if _, ok := m.intake.records[created.ID]; ok {
		t.Error("物理删除后记录不应存在")
	}
}
