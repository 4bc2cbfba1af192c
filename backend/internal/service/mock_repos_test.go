package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"

	"caltrack/backend/internal/model"
	"caltrack/backend/internal/repository"
	pkgerrors "caltrack/backend/pkg/errors"
)

// ── 测试用 Repository 聚合 ──

type testMocks struct {
	user       *mockUserRepo
	department *mockDeptRepo
	location   *mockLocationRepo
	equipment  *mockEquipmentRepo
	intake     *mockIntakeRepo
	completion *mockCompletionRepo
}

// newTestRepo 构造不带数据库连接的 Repository（BeginTx 返回 nil 事务）
func newTestRepo() (*repository.Repository, *testMocks) {
	m := &testMocks{
		user:       newMockUserRepo(),
		department: newMockDeptRepo(),
		location:   newMockLocationRepo(),
		equipment:  newMockEquipmentRepo(),
		intake:     newMockIntakeRepo(),
		completion: newMockCompletionRepo(),
	}
	repo := &repository.Repository{
		User:       m.user,
		Department: m.department,
		Location:   m.location,
		Equipment:  m.equipment,
		Intake:     m.intake,
		Completion: m.completion,
	}
	return repo, m
}

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if user.UserID == "" {
		user.UserID = "uid-" + user.EmployeeNo
	}
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmployeeNo(_ context.Context, employeeNo string) (*model.User, error) {
	for _, u := range m.users {
		if u.EmployeeNo == employeeNo {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) List(_ context.Context, _, _ int) ([]model.User, int64, error) {
	var result []model.User
	for _, u := range m.users {
		result = append(result, *u)
	}
	return result, int64(len(result)), nil
}

// ── Mock DepartmentRepository ──

type mockDeptRepo struct {
	departments map[string]*model.Department
}

func newMockDeptRepo() *mockDeptRepo {
	return &mockDeptRepo{departments: make(map[string]*model.Department)}
}

func (m *mockDeptRepo) Create(_ context.Context, dept *model.Department) error {
	if dept.DepartmentID == "" {
		dept.DepartmentID = "dept-" + dept.Name
	}
	m.departments[dept.DepartmentID] = dept
	return nil
}

func (m *mockDeptRepo) GetByID(_ context.Context, id string) (*model.Department, error) {
	if d, ok := m.departments[id]; ok {
		return d, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockDeptRepo) GetByName(_ context.Context, name string) (*model.Department, error) {
	for _, d := range m.departments {
		if d.Name == name {
			return d, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockDeptRepo) Update(_ context.Context, dept *model.Department) error {
	m.departments[dept.DepartmentID] = dept
	return nil
}

func (m *mockDeptRepo) List(_ context.Context) ([]model.Department, error) {
	var result []model.Department
	for _, d := range m.departments {
		result = append(result, *d)
	}
	return result, nil
}

// ── Mock LocationRepository ──

type mockLocationRepo struct {
	locations map[string]*model.Location
}

func newMockLocationRepo() *mockLocationRepo {
	return &mockLocationRepo{locations: make(map[string]*model.Location)}
}

func (m *mockLocationRepo) Create(_ context.Context, loc *model.Location) error {
	if loc.LocationID == "" {
		loc.LocationID = "loc-" + loc.Name
	}
	m.locations[loc.LocationID] = loc
	return nil
}

func (m *mockLocationRepo) GetByID(_ context.Context, id string) (*model.Location, error) {
	if l, ok := m.locations[id]; ok {
		return l, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockLocationRepo) Update(_ context.Context, loc *model.Location) error {
	m.locations[loc.LocationID] = loc
	return nil
}

func (m *mockLocationRepo) List(_ context.Context) ([]model.Location, error) {
	var result []model.Location
	for _, l := range m.locations {
		result = append(result, *l)
	}
	return result, nil
}

// ── Mock EquipmentRepository ──

type mockEquipmentRepo struct {
	items map[string]*model.Equipment
}

func newMockEquipmentRepo() *mockEquipmentRepo {
	return &mockEquipmentRepo{items: make(map[string]*model.Equipment)}
}

func (m *mockEquipmentRepo) Create(_ context.Context, eq *model.Equipment) error {
	if eq.EquipmentID == "" {
		eq.EquipmentID = fmt.Sprintf("eq-%d", len(m.items)+1)
	}
	m.items[eq.EquipmentID] = eq
	return nil
}

func (m *mockEquipmentRepo) GetByID(_ context.Context, id string) (*model.Equipment, error) {
	if e, ok := m.items[id]; ok {
		return e, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockEquipmentRepo) GetByRecallNumber(_ context.Context, recallNumber string) (*model.Equipment, error) {
	for _, e := range m.items {
		if e.RecallNumber != nil && *e.RecallNumber == recallNumber {
			return e, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockEquipmentRepo) Update(_ context.Context, eq *model.Equipment) error {
	m.items[eq.EquipmentID] = eq
	return nil
}

func (m *mockEquipmentRepo) SetRecallNumber(_ context.Context, id, recallNumber, _ string) error {
	e, ok := m.items[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	e.RecallNumber = &recallNumber
	return nil
}

func (m *mockEquipmentRepo) List(_ context.Context, _ string, _, _ int) ([]model.Equipment, int64, error) {
	var result []model.Equipment
	for _, e := range m.items {
		result = append(result, *e)
	}
	return result, int64(len(result)), nil
}

// ── Mock IntakeRepository ──

type mockIntakeRepo struct {
	records   map[string]*model.IntakeRecord
	idCounter int
}

func newMockIntakeRepo() *mockIntakeRepo {
	return &mockIntakeRepo{records: make(map[string]*model.IntakeRecord)}
}

func (m *mockIntakeRepo) Create(_ context.Context, rec *model.IntakeRecord) error {
	if rec.IntakeID == "" {
		m.idCounter++
		rec.IntakeID = fmt.Sprintf("intake-%d", m.idCounter)
	}
	if rec.Version == 0 {
		rec.Version = 1
	}
	m.records[rec.IntakeID] = rec
	return nil
}

func (m *mockIntakeRepo) GetByID(_ context.Context, id string) (*model.IntakeRecord, error) {
	if r, ok := m.records[id]; ok && !r.DeletedAt.Valid {
		return r, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockIntakeRepo) GetByIDForUpdate(ctx context.Context, id string) (*model.IntakeRecord, error) {
	return m.GetByID(ctx, id)
}

func (m *mockIntakeRepo) GetByRecallNumber(_ context.Context, recallNumber string) (*model.IntakeRecord, error) {
	for _, r := range m.records {
		if r.RecallNumber != nil && *r.RecallNumber == recallNumber && !r.DeletedAt.Valid {
			return r, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockIntakeRepo) Update(_ context.Context, rec *model.IntakeRecord, updates map[string]interface{}) error {
	stored, ok := m.records[rec.IntakeID]
	if !ok || stored.Version != rec.Version {
		return pkgerrors.ErrOptimisticLock
	}
	for k, v := range updates {
		switch k {
		case "status":
			stored.Status = v.(model.IntakeStatus)
		case "recall_number":
			rn := v.(string)
			stored.RecallNumber = &rn
		case "description":
			stored.Description = v.(string)
		case "serial_number":
			stored.SerialNumber = v.(string)
		case "manufacturer":
			stored.Manufacturer = v.(string)
		case "model_no":
			stored.ModelNo = v.(string)
		case "technician_id":
			stored.TechnicianID = v.(string)
		case "location_id":
			stored.LocationID = v.(string)
		}
	}
	stored.Version++
	rec.Version = stored.Version
	return nil
}

func (m *mockIntakeRepo) List(_ context.Context, filters repository.IntakeListFilters, _, _ int) ([]model.IntakeRecord, int64, error) {
	var result []model.IntakeRecord
	for _, r := range m.records {
		if r.DeletedAt.Valid {
			continue
		}
		if filters.Status != "" && r.Status != filters.Status {
			continue
		}
		if filters.TechnicianID != "" && r.TechnicianID != filters.TechnicianID {
			continue
		}
		if filters.LocationID != "" && r.LocationID != filters.LocationID {
			continue
		}
		result = append(result, *r)
	}
	return result, int64(len(result)), nil
}

func (m *mockIntakeRepo) ListOverdue(_ context.Context, now time.Time, _, _ int) ([]model.IntakeRecord, int64, error) {
	var result []model.IntakeRecord
	for _, r := range m.records {
		if r.DeletedAt.Valid || r.Status == model.IntakeStatusCompleted {
			continue
		}
		if r.DueDate.Before(now) {
			result = append(result, *r)
		}
	}
	return result, int64(len(result)), nil
}

func (m *mockIntakeRepo) Archive(_ context.Context, id, operatorID string) error {
	r, ok := m.records[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	r.DeletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	r.DeletedBy = &operatorID
	return nil
}

func (m *mockIntakeRepo) Restore(_ context.Context, id string) error {
	r, ok := m.records[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	r.DeletedAt = gorm.DeletedAt{}
	r.DeletedBy = nil
	return nil
}

func (m *mockIntakeRepo) ForceDelete(_ context.Context, id string) error {
	delete(m.records, id)
	return nil
}

func (m *mockIntakeRepo) GetArchivedByID(_ context.Context, id string) (*model.IntakeRecord, error) {
	if r, ok := m.records[id]; ok && r.DeletedAt.Valid {
		return r, nil
	}
	return nil, gorm.ErrRecordNotFound
}

// ── Mock CompletionRepository ──

// mu 保护 records：取件确认的并发安全测试依赖 MarkPickedUp 的原子检查
type mockCompletionRepo struct {
	mu        sync.Mutex
	records   map[string]*model.CompletionRecord
	idCounter int
}

func newMockCompletionRepo() *mockCompletionRepo {
	return &mockCompletionRepo{records: make(map[string]*model.CompletionRecord)}
}

func (m *mockCompletionRepo) Create(_ context.Context, rec *model.CompletionRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rec.CompletionID == "" {
		m.idCounter++
		rec.CompletionID = fmt.Sprintf("comp-%d", m.idCounter)
	}
	if rec.Version == 0 {
		rec.Version = 1
	}
	m.records[rec.CompletionID] = rec
	return nil
}

// GetByID 返回副本：并发取件测试中读写互不干扰
func (m *mockCompletionRepo) GetByID(_ context.Context, id string) (*model.CompletionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.records[id]; ok && !r.DeletedAt.Valid {
		cp := *r
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCompletionRepo) GetByIDForUpdate(ctx context.Context, id string) (*model.CompletionRecord, error) {
	return m.GetByID(ctx, id)
}

func (m *mockCompletionRepo) GetByIntakeID(_ context.Context, intakeID string) (*model.CompletionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.records {
		if r.IntakeID != nil && *r.IntakeID == intakeID && !r.DeletedAt.Valid {
			cp := *r
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCompletionRepo) Update(_ context.Context, rec *model.CompletionRecord, updates map[string]interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.records[rec.CompletionID]
	if !ok || stored.Version != rec.Version {
		return pkgerrors.ErrOptimisticLock
	}
	for k, v := range updates {
		switch k {
		case "cal_date":
			t := v.(time.Time)
			stored.CalDate = &t
		case "cal_due_date":
			t := v.(time.Time)
			stored.CalDueDate = &t
		case "commit_etc":
			t := v.(time.Time)
			stored.CommitETC = &t
		case "actual_etc":
			t := v.(time.Time)
			stored.ActualETC = &t
		case "ct_reqd":
			n := v.(int)
			stored.CTReqd = &n
		case "cycle_time":
			n := v.(int)
			stored.CycleTime = &n
		case "overdue":
			stored.Overdue = v.(int)
		}
	}
	stored.Version++
	rec.Version = stored.Version
	return nil
}

func (m *mockCompletionRepo) List(_ context.Context, status model.CompletionStatus, _, _ int) ([]model.CompletionRecord, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.CompletionRecord
	for _, r := range m.records {
		if r.DeletedAt.Valid {
			continue
		}
		if status != "" && r.Status != status {
			continue
		}
		result = append(result, *r)
	}
	return result, int64(len(result)), nil
}

func (m *mockCompletionRepo) ListDueSoon(_ context.Context, now time.Time, windowDays int, _, _ int) ([]model.CompletionRecord, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	windowEnd := now.AddDate(0, 0, windowDays)
	var result []model.CompletionRecord
	for _, r := range m.records {
		if r.CalDueDate == nil {
			continue
		}
		if !r.CalDueDate.Before(now) && !r.CalDueDate.After(windowEnd) {
			result = append(result, *r)
		}
	}
	return result, int64(len(result)), nil
}

func (m *mockCompletionRepo) MarkPickedUp(_ context.Context, id, employeeID, actorID string, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.records[id]
	if !ok {
		return false, gorm.ErrRecordNotFound
	}
	if r.Status != model.CompletionStatusForPickup {
		return false, nil
	}
	r.Status = model.CompletionStatusCompleted
	r.EmployeeOutID = &employeeID
	r.PickedUpByID = &employeeID
	r.PickedUpAt = &at
	r.UpdatedBy = &actorID
	r.Version++
	return true, nil
}

func (m *mockCompletionRepo) Archive(_ context.Context, id, operatorID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.records[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	r.DeletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	r.DeletedBy = &operatorID
	return nil
}

func (m *mockCompletionRepo) Restore(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.records[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	r.DeletedAt = gorm.DeletedAt{}
	r.DeletedBy = nil
	return nil
}

func (m *mockCompletionRepo) GetArchivedByID(_ context.Context, id string) (*model.CompletionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.records[id]; ok && r.DeletedAt.Valid {
		cp := *r
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}
