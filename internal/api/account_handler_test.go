package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"campusjob/internal/auth"
	"campusjob/internal/database"
)

// 速率限制与锁定在单元测试里不可达，指向一个没人监听的地址即可，
// 相关路径在 redis 出错时放行。
func newDeadRedis() *redis.Client {
	return redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
}

func newAccountHandler(t *testing.T) (*AccountHandler, *auth.AuthService, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	authService := newTestAuthService(t)
	h := NewAccountHandler(db, authService, newDeadRedis(), nil, 30, 5, 10*time.Minute)
	return h, authService, db
}

func runJSON(t *testing.T, handler gin.HandlerFunc, method, target string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = newJSONRequest(t, method, target, payload)
	handler(c)
	return w
}

func TestSignupJobSeeker_HashesPassword(t *testing.T) {
	h, authService, db := newAccountHandler(t)

	w := runJSON(t, h.SignupJobSeeker, http.MethodPost, "/api/signup-jobseeker", map[string]any{
		"studentId": "20260001",
		"email":     "stu@campus.ac.kr",
		"password":  "secret-pass",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", w.Code, w.Body.String())
	}

	var seeker database.JobSeeker
	if err := db.First(&seeker, "id = ?", "20260001").Error; err != nil {
		t.Fatalf("load seeker: %v", err)
	}
	if seeker.PasswordHash == "secret-pass" {
		t.Fatal("password stored in plaintext")
	}
	if !authService.CheckPasswordHash("secret-pass", seeker.PasswordHash) {
		t.Fatal("stored hash does not verify against original password")
	}
}

func TestSignupJobSeeker_DuplicateDeclined(t *testing.T) {
	h, _, db := newAccountHandler(t)
	payload := map[string]any{
		"studentId": "20260001",
		"email":     "stu@campus.ac.kr",
		"password":  "secret-pass",
	}

	if w := runJSON(t, h.SignupJobSeeker, http.MethodPost, "/api/signup-jobseeker", payload); w.Code != http.StatusOK {
		t.Fatalf("first signup: expected 200 got %d body=%s", w.Code, w.Body.String())
	}

	w := runJSON(t, h.SignupJobSeeker, http.MethodPost, "/api/signup-jobseeker", payload)
	if w.Code != http.StatusOK {
		t.Fatalf("duplicate signup: expected 200 got %d body=%s", w.Code, w.Body.String())
	}
	if decodeBody(t, w)["success"] != false {
		t.Fatalf("duplicate signup must be declined, body=%s", w.Body.String())
	}

	var count int64
	db.Model(&database.JobSeeker{}).Count(&count)
	if count != 1 {
		t.Fatalf("expected a single row, got %d", count)
	}
}

func TestValidateJobSeeker_ReportsTakenID(t *testing.T) {
	h, _, db := newAccountHandler(t)
	seedJobSeeker(t, db, "20260001")

	w := runJSON(t, h.ValidateJobSeeker, http.MethodPost, "/api/validate-jobseeker", map[string]any{
		"studentId": "20260001",
		"email":     "other@campus.ac.kr",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", w.Code, w.Body.String())
	}
	if decodeBody(t, w)["isValid"] != false {
		t.Fatalf("taken id must be invalid, body=%s", w.Body.String())
	}
}

func TestLogin_IssuesTokensWithRoleClaim(t *testing.T) {
	h, authService, db := newAccountHandler(t)

	hashed, err := auth.HashPassword("dept-pass")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	employer := database.Employer{ID: "lib01", PasswordHash: hashed, DepartmentName: "도서관"}
	if err := db.Create(&employer).Error; err != nil {
		t.Fatalf("seed employer: %v", err)
	}

	w := runJSON(t, h.Login, http.MethodPost, "/api/login", map[string]any{
		"userType": "employer",
		"id":       "lib01",
		"password": "dept-pass",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", w.Code, w.Body.String())
	}

	body := decodeBody(t, w)
	accessToken, _ := body["accessToken"].(string)
	if accessToken == "" {
		t.Fatalf("missing access token, body=%s", w.Body.String())
	}
	claims, err := authService.ValidateToken(accessToken)
	if err != nil {
		t.Fatalf("validate issued token: %v", err)
	}
	if claims.Role != auth.RoleEmployer || claims.Subject != "lib01" {
		t.Fatalf("unexpected claims role=%q subject=%q", claims.Role, claims.Subject)
	}
	if claims.TokenType != "access" {
		t.Fatalf("expected access token type got %q", claims.TokenType)
	}
}

func TestLogin_UniformFailureMessage(t *testing.T) {
	h, _, db := newAccountHandler(t)

	hashed, _ := auth.HashPassword("dept-pass")
	if err := db.Create(&database.Employer{ID: "lib01", PasswordHash: hashed, DepartmentName: "도서관"}).Error; err != nil {
		t.Fatalf("seed employer: %v", err)
	}

	wrongPassword := runJSON(t, h.Login, http.MethodPost, "/api/login", map[string]any{
		"userType": "employer", "id": "lib01", "password": "nope",
	})
	unknownAccount := runJSON(t, h.Login, http.MethodPost, "/api/login", map[string]any{
		"userType": "employer", "id": "ghost", "password": "nope",
	})

	for _, w := range []*httptest.ResponseRecorder{wrongPassword, unknownAccount} {
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401 got %d body=%s", w.Code, w.Body.String())
		}
	}
	if wrongPassword.Body.String() != unknownAccount.Body.String() {
		t.Fatalf("failure responses must be indistinguishable: %s vs %s",
			wrongPassword.Body.String(), unknownAccount.Body.String())
	}
}

func TestLogin_RejectsUnknownUserType(t *testing.T) {
	h, _, _ := newAccountHandler(t)

	w := runJSON(t, h.Login, http.MethodPost, "/api/login", map[string]any{
		"userType": "superuser", "id": "lib01", "password": "x",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d body=%s", w.Code, w.Body.String())
	}
}

func TestRefresh_RejectsAccessToken(t *testing.T) {
	h, authService, _ := newAccountHandler(t)

	pair, err := authService.GenerateTokenPair("20260001", auth.RoleJobSeeker)
	if err != nil {
		t.Fatalf("generate pair: %v", err)
	}

	// 把访问令牌当刷新令牌用必须被拒绝。
	w := runJSON(t, h.Refresh, http.MethodPost, "/api/refresh", map[string]any{
		"refreshToken": pair.AccessToken,
	})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d body=%s", w.Code, w.Body.String())
	}
}
