package api

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/minio/minio-go/v7"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"campusjob/internal/auth"
	"campusjob/internal/database"
)

type fakeStorage struct {
	mu       sync.Mutex
	uploaded map[string][]byte
	deleted  []string
	prefixes []string
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{uploaded: map[string][]byte{}}
}

func (s *fakeStorage) UploadFile(_ context.Context, objectName string, reader io.Reader, _ int64, _ string) (*minio.UploadInfo, error) {
	b, _ := io.ReadAll(reader)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploaded[objectName] = b
	return &minio.UploadInfo{}, nil
}

func (s *fakeStorage) GeneratePresignedURL(_ context.Context, objectKey string, _ time.Duration) (string, error) {
	return "https://example.invalid/" + objectKey, nil
}

func (s *fakeStorage) DeleteObject(_ context.Context, objectKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, objectKey)
	delete(s.uploaded, objectKey)
	return nil
}

func (s *fakeStorage) DeletePrefix(_ context.Context, prefix string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prefixes = append(s.prefixes, prefix)
	for key := range s.uploaded {
		if strings.HasPrefix(key, prefix) {
			delete(s.uploaded, key)
		}
	}
	return nil
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newTestAuthService(t *testing.T) *auth.AuthService {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate rsa key: %v", err)
	}
	privatePEM := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})
	publicDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		t.Fatalf("marshal public key: %v", err)
	}
	publicPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: publicDER})

	service, err := auth.NewAuthService(privatePEM, publicPEM, 15*time.Minute, 24*time.Hour)
	if err != nil {
		t.Fatalf("new auth service: %v", err)
	}
	return service
}

func newJSONRequest(t *testing.T, method, target string, payload any) *http.Request {
	t.Helper()
	var body *bytes.Buffer
	if payload == nil {
		body = &bytes.Buffer{}
	} else {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewBuffer(raw)
	}
	req := httptest.NewRequest(method, target, body)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// newAuthedContext 绕过令牌校验，直接把账号与角色放进上下文，
// 等价于 AuthMiddleware 成功后的状态。
func newAuthedContext(w *httptest.ResponseRecorder, req *http.Request, subjectID, role string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Set("subjectID", subjectID)
	c.Set("role", role)
	return c
}

func intToStr(v uint) string {
	return strconv.FormatUint(uint64(v), 10)
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body %q: %v", w.Body.String(), err)
	}
	return body
}

func seedEmployer(t *testing.T, db *gorm.DB, id string) database.Employer {
	t.Helper()
	employer := database.Employer{
		ID:             id,
		PasswordHash:   "x",
		DepartmentName: "도서관",
		PhoneNumber:    "031-123-4567",
		Email:          "lib@campus.ac.kr",
	}
	if err := db.Create(&employer).Error; err != nil {
		t.Fatalf("seed employer: %v", err)
	}
	return employer
}

func seedJobSeeker(t *testing.T, db *gorm.DB, id string) database.JobSeeker {
	t.Helper()
	seeker := database.JobSeeker{
		ID:           id,
		Email:        id + "@campus.ac.kr",
		PasswordHash: "x",
	}
	if err := db.Create(&seeker).Error; err != nil {
		t.Fatalf("seed job seeker: %v", err)
	}
	return seeker
}

func seedPosting(t *testing.T, db *gorm.DB, employerID, deadline string) database.JobPosting {
	t.Helper()
	posting := database.JobPosting{
		EmployerID:          employerID,
		Title:               "도서관 사서 보조",
		Contents:            "서가 정리 및 대출 업무 보조",
		CompanyName:         "중앙도서관",
		Location:            "본관 2층",
		QualificationType:   "재학생",
		WorkPeriodStart:     "2026-09-01",
		WorkPeriodEnd:       "2026-12-31",
		RecruitmentDeadline: deadline,
		HourlyWage:          10030,
		ApplicationMethod:   "온라인 지원",
		ContactNumber:       "031-123-4567",
	}
	if err := db.Create(&posting).Error; err != nil {
		t.Fatalf("seed posting: %v", err)
	}
	return posting
}
