package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"caltrack/backend/internal/dto"
	"caltrack/backend/internal/model"
	pkgerrors "caltrack/backend/pkg/errors"
	"caltrack/backend/pkg/jwt"
	"caltrack/backend/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const (
	testUserID     = "11111111-1111-4111-8111-111111111111"
	testEmployeeID = "22222222-2222-4222-8222-222222222222"
	testRecordID   = "33333333-3333-4333-8333-333333333333"
)

// authAs 注入认证上下文，模拟 JWT 中间件通过后的状态
func authAs(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", testUserID)
		c.Set("role", role)
		c.Set("department_id", "dept-qa")
		c.Set("claims", &jwt.Claims{UserID: testUserID, Role: role, TokenType: "access"})
		c.Next()
	}
}

func jsonBody(v interface{}) *bytes.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder) *response.Response {
	t.Helper()
	var resp response.Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("解析响应失败: %v，原始响应: %s", err, w.Body.String())
	}
	return &resp
}

// ── Mock Services ──

type mockCompletionService struct {
	createResult        *dto.CompletionResponse
	createErr           error
	getResult           *dto.CompletionResponse
	getErr              error
	updateResult        *dto.CompletionResponse
	updateErr           error
	confirmPickupResult *dto.ConfirmPickupResponse
	confirmPickupErr    error
	archiveCalled       bool
	restoreCalled       bool
	archiveErr          error
	restoreErr          error
}

func (m *mockCompletionService) Create(_ context.Context, _ model.Actor, _ *dto.CreateCompletionRequest) (*dto.CompletionResponse, error) {
	return m.createResult, m.createErr
}
func (m *mockCompletionService) GetByID(_ context.Context, _ string) (*dto.CompletionResponse, error) {
	return m.getResult, m.getErr
}
func (m *mockCompletionService) List(_ context.Context, _ *dto.CompletionListRequest) ([]dto.CompletionResponse, int64, error) {
	return nil, 0, nil
}
func (m *mockCompletionService) ListDueSoon(_ context.Context, _ *dto.DueSoonRequest) ([]dto.CompletionResponse, int64, error) {
	return nil, 0, nil
}
func (m *mockCompletionService) Update(_ context.Context, _ model.Actor, _ string, _ *dto.UpdateCompletionRequest) (*dto.CompletionResponse, error) {
	return m.updateResult, m.updateErr
}
func (m *mockCompletionService) ConfirmPickup(_ context.Context, _ model.Actor, _ string, _ *dto.ConfirmPickupRequest) (*dto.ConfirmPickupResponse, error) {
	return m.confirmPickupResult, m.confirmPickupErr
}
func (m *mockCompletionService) Archive(_ context.Context, _ model.Actor, _ string) error {
	m.archiveCalled = true
	return m.archiveErr
}
func (m *mockCompletionService) Restore(_ context.Context, _ model.Actor, _ string) error {
	m.restoreCalled = true
	return m.restoreErr
}

type mockIntakeService struct {
	createResult  *dto.IntakeResponse
	createErr     error
	updateResult  *dto.IntakeResponse
	updateErr     error
	archiveCalled bool
	forceCalled   bool
	deleteErr     error
}

func (m *mockIntakeService) Create(_ context.Context, _ model.Actor, _ *dto.CreateIntakeRequest) (*dto.IntakeResponse, error) {
	return m.createResult, m.createErr
}
func (m *mockIntakeService) GetByID(_ context.Context, _ string) (*dto.IntakeResponse, error) {
	return nil, pkgerrors.NotFound("进件记录不存在")
}
func (m *mockIntakeService) List(_ context.Context, _ *dto.IntakeListRequest) ([]dto.IntakeResponse, int64, error) {
	return nil, 0, nil
}
func (m *mockIntakeService) ListOverdue(_ context.Context, _ *dto.PaginationRequest) ([]dto.IntakeResponse, int64, error) {
	return nil, 0, nil
}
func (m *mockIntakeService) Update(_ context.Context, _ model.Actor, _ string, _ *dto.UpdateIntakeRequest) (*dto.IntakeResponse, error) {
	return m.updateResult, m.updateErr
}
func (m *mockIntakeService) Confirm(_ context.Context, _ model.Actor, _ string) (*dto.IntakeResponse, error) {
	return m.updateResult, m.updateErr
}
func (m *mockIntakeService) Archive(_ context.Context, _ model.Actor, _ string) error {
	m.archiveCalled = true
	return m.deleteErr
}
func (m *mockIntakeService) Restore(_ context.Context, _ model.Actor, _ string) error {
	return m.deleteErr
}
func (m *mockIntakeService) ForceDelete(_ context.Context, _ model.Actor, _ string) error {
	m.forceCalled = true
	return m.deleteErr
}

type mockAuthService struct {
	loginResult *dto.TokenResponse
	loginErr    error
	meResult    *dto.UserDetailResponse
	meErr       error
}

func (m *mockAuthService) Login(_ context.Context, _ *dto.LoginRequest) (*dto.TokenResponse, error) {
	return m.loginResult, m.loginErr
}
func (m *mockAuthService) Logout(_ context.Context, _ *jwt.Claims) error { return nil }
func (m *mockAuthService) Refresh(_ context.Context, _ *dto.RefreshRequest) (*dto.TokenResponse, error) {
	return m.loginResult, m.loginErr
}
func (m *mockAuthService) Me(_ context.Context, _ string) (*dto.UserDetailResponse, error) {
	return m.meResult, m.meErr
}
func (m *mockAuthService) ChangePassword(_ context.Context, _ string, _ *dto.ChangePasswordRequest) error {
	return nil
}
func (m *mockAuthService) SetPin(_ context.Context, _ string, _ *dto.SetPinRequest) error {
	return nil
}

// ── 取件确认 ──

func TestCompletionHandler_ConfirmPickup_ErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		svcErr     error
		wantStatus int
		wantCode   int
	}{
		{"取件人不存在", pkgerrors.NotFound("Employee not found"), http.StatusNotFound, 20001},
		{"PIN 无效", pkgerrors.Authentication("Invalid PIN"), http.StatusUnauthorized, 10002},
		{"部门缺失", pkgerrors.Validation("missing department assignment"), http.StatusUnprocessableEntity, 10001},
		{"部门不一致", pkgerrors.Authorization("department mismatch: 制造部 / 质量部"), http.StatusForbidden, 10003},
		{"记录不可取件", pkgerrors.Conflict("not ready for pickup"), http.StatusBadRequest, 10004},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			h := NewCompletionHandler(&mockCompletionService{confirmPickupErr: c.svcErr})

			r := gin.New()
			r.POST("/completions/:id/confirm-pickup", authAs("employee"), h.ConfirmPickup)

			body := jsonBody(gin.H{"employee_id": testEmployeeID, "confirmation_pin": "135790"})
			req := httptest.NewRequest(http.MethodPost, "/completions/"+testRecordID+"/confirm-pickup", body)
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != c.wantStatus {
				t.Errorf("HTTP 状态码期望 %d，实际 %d", c.wantStatus, w.Code)
			}
			resp := parseResponse(t, w)
			if resp.Code != c.wantCode {
				t.Errorf("业务码期望 %d，实际 %d", c.wantCode, resp.Code)
			}
			if resp.Message != c.svcErr.Error() {
				t.Errorf("错误消息期望 %q，实际 %q", c.svcErr.Error(), resp.Message)
			}
		})
	}
}

func TestCompletionHandler_ConfirmPickup_Success(t *testing.T) {
	h := NewCompletionHandler(&mockCompletionService{
		confirmPickupResult: &dto.ConfirmPickupResponse{
			Success:     true,
			BypassedPIN: true,
			Data:        &dto.CompletionResponse{ID: testRecordID, Status: "completed"},
		},
	})

	r := gin.New()
	r.POST("/completions/:id/confirm-pickup", authAs("technician"), h.ConfirmPickup)

	body := jsonBody(gin.H{"employee_id": testEmployeeID})
	req := httptest.NewRequest(http.MethodPost, "/completions/"+testRecordID+"/confirm-pickup", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("HTTP 状态码期望 200，实际 %d: %s", w.Code, w.Body.String())
	}
	resp := parseResponse(t, w)
	if resp.Code != 0 {
		t.Errorf("业务码期望 0，实际 %d", resp.Code)
	}
}

func TestCompletionHandler_ConfirmPickup_InvalidBody(t *testing.T) {
	h := NewCompletionHandler(&mockCompletionService{})

	r := gin.New()
	r.POST("/completions/:id/confirm-pickup", authAs("employee"), h.ConfirmPickup)

	// PIN 必须为 6 位数字
	body := jsonBody(gin.H{"employee_id": testEmployeeID, "confirmation_pin": "12"})
	req := httptest.NewRequest(http.MethodPost, "/completions/"+testRecordID+"/confirm-pickup", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("非法请求体期望 422，实际 %d", w.Code)
	}
}

func TestCompletionHandler_ConfirmPickup_Unauthenticated(t *testing.T) {
	h := NewCompletionHandler(&mockCompletionService{})

	r := gin.New()
	r.POST("/completions/:id/confirm-pickup", h.ConfirmPickup) // 无认证上下文

	body := jsonBody(gin.H{"employee_id": testEmployeeID, "confirmation_pin": "135790"})
	req := httptest.NewRequest(http.MethodPost, "/completions/"+testRecordID+"/confirm-pickup", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("缺少认证上下文期望 401，实际 %d", w.Code)
	}
}

// ── 完成件创建与编辑 ──

func TestCompletionHandler_Create(t *testing.T) {
	h := NewCompletionHandler(&mockCompletionService{
		createResult: &dto.CompletionResponse{ID: testRecordID, Status: "for_pickup", Overdue: 1},
	})

	r := gin.New()
	r.POST("/completions", authAs("technician"), h.Create)

	body := jsonBody(gin.H{
		"intake_id":    testRecordID,
		"cal_date":     "2026-08-20",
		"cal_due_date": "2027-08-20",
		"ct_reqd":      3,
	})
	req := httptest.NewRequest(http.MethodPost, "/completions", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("HTTP 状态码期望 201，实际 %d: %s", w.Code, w.Body.String())
	}
}

func TestCompletionHandler_Create_OverdueAliases(t *testing.T) {
	h := NewCompletionHandler(&mockCompletionService{
		createResult: &dto.CompletionResponse{ID: testRecordID, Status: "for_pickup"},
	})

	r := gin.New()
	r.POST("/completions", authAs("technician"), h.Create)

	// 历史客户端的 overdue 写法均应被接受
	for _, overdue := range []interface{}{1, "1", "yes", true, 0, "no", false} {
		body := jsonBody(gin.H{
			"intake_id":    testRecordID,
			"cal_date":     "2026-08-20",
			"cal_due_date": "2027-08-20",
			"overdue":      overdue,
		})
		req := httptest.NewRequest(http.MethodPost, "/completions", body)
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusCreated {
			t.Errorf("overdue=%v 期望 201，实际 %d: %s", overdue, w.Code, w.Body.String())
		}
	}
}

func TestCompletionHandler_Update_Forbidden(t *testing.T) {
	h := NewCompletionHandler(&mockCompletionService{
		updateErr: pkgerrors.Authorization("Only administrators can edit completed records"),
	})

	r := gin.New()
	r.PUT("/completions/:id", authAs("employee"), h.Update)

	req := httptest.NewRequest(http.MethodPut, "/completions/"+testRecordID, jsonBody(gin.H{"ct_reqd": 30}))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("非管理员编辑已完成记录期望 403，实际 %d", w.Code)
	}
}

func TestCompletionHandler_DeleteAndRestore(t *testing.T) {
	svc := &mockCompletionService{}
	h := NewCompletionHandler(svc)
	r := gin.New()
	r.DELETE("/completions/:id", authAs("employee"), h.Delete)
	r.POST("/completions/:id/restore", authAs("admin"), h.Restore)

	req := httptest.NewRequest(http.MethodDelete, "/completions/"+testRecordID, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("归档期望 200，实际 %d", w.Code)
	}
	if !svc.archiveCalled {
		t.Error("DELETE 应调用归档")
	}

	req = httptest.NewRequest(http.MethodPost, "/completions/"+testRecordID+"/restore", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("恢复期望 200，实际 %d", w.Code)
	}
	if !svc.restoreCalled {
		t.Error("restore 路由应调用恢复")
	}
}

// ── 进件 ──

func TestIntakeHandler_Create(t *testing.T) {
	h := NewIntakeHandler(&mockIntakeService{
		createResult: &dto.IntakeResponse{ID: testRecordID, Status: "for_confirmation"},
	})

	r := gin.New()
	r.POST("/intakes", authAs("admin"), h.Create)

	body := jsonBody(gin.H{
		"request_type":   "new_equipment",
		"description":    "数字万用表",
		"technician_id":  testUserID,
		"location_id":    testUserID,
		"employee_in_id": testEmployeeID,
		"due_date":       "2026-09-30",
	})
	req := httptest.NewRequest(http.MethodPost, "/intakes", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("HTTP 状态码期望 201，实际 %d: %s", w.Code, w.Body.String())
	}
}

func TestIntakeHandler_Create_InvalidRequestType(t *testing.T) {
	h := NewIntakeHandler(&mockIntakeService{})

	r := gin.New()
	r.POST("/intakes", authAs("admin"), h.Create)

	body := jsonBody(gin.H{
		"request_type":   "walk_in",
		"description":    "数字万用表",
		"technician_id":  testUserID,
		"location_id":    testUserID,
		"employee_in_id": testEmployeeID,
		"due_date":       "2026-09-30",
	})
	req := httptest.NewRequest(http.MethodPost, "/intakes", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("非法 request_type 期望 422，实际 %d", w.Code)
	}
}

func TestIntakeHandler_Delete_ForceFlag(t *testing.T) {
	// 默认归档
	svc := &mockIntakeService{}
	h := NewIntakeHandler(svc)
	r := gin.New()
	r.DELETE("/intakes/:id", authAs("admin"), h.Delete)

	req := httptest.NewRequest(http.MethodDelete, "/intakes/"+testRecordID, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("归档期望 200，实际 %d", w.Code)
	}
	if !svc.archiveCalled || svc.forceCalled {
		t.Error("无 force 参数应走归档而非物理删除")
	}

	// force=true 物理删除
	svc = &mockIntakeService{}
	h = NewIntakeHandler(svc)
	r = gin.New()
	r.DELETE("/intakes/:id", authAs("admin"), h.Delete)

	req = httptest.NewRequest(http.MethodDelete, "/intakes/"+testRecordID+"?force=true", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("物理删除期望 200，实际 %d", w.Code)
	}
	if svc.archiveCalled || !svc.forceCalled {
		t.Error("force=true 应走物理删除而非归档")
	}
}

// ── 认证 ──

func TestAuthHandler_Login(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{
		loginResult: &dto.TokenResponse{
			AccessToken:  "access",
			RefreshToken: "refresh",
			ExpiresIn:    900,
			User:         dto.UserBrief{ID: testUserID, EmployeeNo: "E001", Role: "employee"},
		},
	})

	r := gin.New()
	r.POST("/auth/login", h.Login)

	body := jsonBody(gin.H{"employee_no": "E001", "password": "secret-pass-1"})
	req := httptest.NewRequest(http.MethodPost, "/auth/login", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("HTTP 状态码期望 200，实际 %d: %s", w.Code, w.Body.String())
	}
	if parseResponse(t, w).Code != 0 {
		t.Error("业务码期望 0")
	}
}

func TestAuthHandler_Login_BadCredentials(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{
		loginErr: pkgerrors.Authentication("工号或密码错误"),
	})

	r := gin.New()
	r.POST("/auth/login", h.Login)

	body := jsonBody(gin.H{"employee_no": "E001", "password": "wrong-password"})
	req := httptest.NewRequest(http.MethodPost, "/auth/login", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("登录失败期望 401，实际 %d", w.Code)
	}
}

func TestAuthHandler_Login_InvalidBody(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})

	r := gin.New()
	r.POST("/auth/login", h.Login)

	// 密码长度不满足最小限制
	body := jsonBody(gin.H{"employee_no": "E001", "password": "short"})
	req := httptest.NewRequest(http.MethodPost, "/auth/login", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("非法请求体期望 422，实际 %d", w.Code)
	}
}

func TestAuthHandler_Me_Unauthenticated(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{
		meResult: &dto.UserDetailResponse{ID: testUserID},
	})

	r := gin.New()
	r.GET("/auth/me", h.Me) // 无认证上下文

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("缺少认证上下文期望 401，实际 %d", w.Code)
	}
}
