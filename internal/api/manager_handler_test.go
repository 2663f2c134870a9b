package api

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"campusjob/internal/auth"
	"campusjob/internal/database"
)

func seedSeekerProfile(t *testing.T, db *gorm.DB, seekerID string) {
	t.Helper()
	rows := []any{
		&database.BasicInfo{JobSeekerID: seekerID, Name: "김철수", BirthDate: "20000101",
			Email: "kim@campus.ac.kr", Phone: "010-1234-5678", ImageKey: "profile-images/" + seekerID + "/a.png"},
		&database.Education{JobSeekerID: seekerID, UniversityType: "대학교(4년)", SchoolName: "한국대학교",
			AdmissionDate: "2022-03", GraduationDate: "2026-02", GraduationStatus: "재학중", Major: "컴퓨터공학"},
		&database.ExperienceActivity{JobSeekerID: seekerID, ActivityType: "동아리",
			Organization: "프로그래밍 동아리", StartDate: "2024-03", EndDate: "2024-06", Description: "스터디"},
		&database.Certification{JobSeekerID: seekerID, Name: "정보처리기사",
			IssuingOrganization: "한국산업인력공단", AcquisitionDate: "2025-06-01"},
		&database.CareerStatement{JobSeekerID: seekerID, GrowthProcess: "성장 과정"},
	}
	for _, row := range rows {
		if err := db.Create(row).Error; err != nil {
			t.Fatalf("seed profile row: %v", err)
		}
	}
}

func TestDeleteUser_JobSeekerCascades(t *testing.T) {
	db := newTestDB(t)
	seedEmployer(t, db, "libadmin")
	seeker := seedJobSeeker(t, db, "20260001")
	posting := seedPosting(t, db, "libadmin", futureDeadline())
	seedApplication(t, db, posting.ID, seeker.ID)
	seedSeekerProfile(t, db, seeker.ID)
	storage := newFakeStorage()

	h := NewManagerHandler(db, storage, nil)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/api/users/jobSeeker/20260001", nil)
	c := newAuthedContext(w, req, "admin", auth.RoleManager)
	c.Params = gin.Params{
		{Key: "type", Value: "jobSeeker"},
		{Key: "id", Value: seeker.ID},
	}

	h.DeleteUser(c)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", w.Code, w.Body.String())
	}

	counts := map[string]int64{}
	for name, model := range map[string]any{
		"job_seekers":          &database.JobSeeker{},
		"applications":         &database.Application{},
		"basic_infos":          &database.BasicInfo{},
		"educations":           &database.Education{},
		"experience_activity":  &database.ExperienceActivity{},
		"certifications":       &database.Certification{},
		"career_statements":    &database.CareerStatement{},
	} {
		var count int64
		db.Model(model).Count(&count)
		counts[name] = count
	}
	for name, count := range counts {
		if count != 0 {
			t.Fatalf("expected %s to be empty, got %d", name, count)
		}
	}

	if len(storage.prefixes) != 1 || storage.prefixes[0] != "profile-images/20260001/" {
		t.Fatalf("expected image prefix cleanup, got %v", storage.prefixes)
	}

	// 公告本身不属于求职者，保持原样。
	var postings int64
	db.Model(&database.JobPosting{}).Count(&postings)
	if postings != 1 {
		t.Fatalf("postings must survive a seeker deletion, got %d", postings)
	}
}

func TestDeleteUser_EmployerCascades(t *testing.T) {
	db := newTestDB(t)
	seedEmployer(t, db, "libadmin")
	seeker := seedJobSeeker(t, db, "20260001")
	posting := seedPosting(t, db, "libadmin", futureDeadline())
	seedApplication(t, db, posting.ID, seeker.ID)

	h := NewManagerHandler(db, newFakeStorage(), nil)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/api/users/employer/libadmin", nil)
	c := newAuthedContext(w, req, "admin", auth.RoleManager)
	c.Params = gin.Params{
		{Key: "type", Value: "employer"},
		{Key: "id", Value: "libadmin"},
	}

	h.DeleteUser(c)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", w.Code, w.Body.String())
	}

	var employers, postings, applications int64
	db.Model(&database.Employer{}).Count(&employers)
	db.Model(&database.JobPosting{}).Count(&postings)
	db.Model(&database.Application{}).Count(&applications)
	if employers != 0 || postings != 0 || applications != 0 {
		t.Fatalf("cascade failed: employers=%d postings=%d applications=%d",
			employers, postings, applications)
	}

	// 求职者账号不受雇主删除影响。
	var seekers int64
	db.Model(&database.JobSeeker{}).Count(&seekers)
	if seekers != 1 {
		t.Fatalf("seekers must survive, got %d", seekers)
	}
}

func TestDeleteUser_UnknownTypeRejected(t *testing.T) {
	db := newTestDB(t)
	h := NewManagerHandler(db, newFakeStorage(), nil)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/api/users/root/1", nil)
	c := newAuthedContext(w, req, "admin", auth.RoleManager)
	c.Params = gin.Params{{Key: "type", Value: "root"}, {Key: "id", Value: "1"}}

	h.DeleteUser(c)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d body=%s", w.Code, w.Body.String())
	}
}

func TestSearchPostings_ByCategory(t *testing.T) {
	db := newTestDB(t)
	seedEmployer(t, db, "libadmin")
	seedPosting(t, db, "libadmin", futureDeadline())

	h := NewManagerHandler(db, newFakeStorage(), nil)

	search := func(category, keyword string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet,
			"/api/postManagement/selectManagerPostJob?category="+category+"&keyword="+url.QueryEscape(keyword), nil)
		h.SearchPostings(newAuthedContext(w, req, "admin", auth.RoleManager))
		return w
	}

	byTitle := search("1", "사서")
	if posts := decodeBody(t, byTitle)["posts"].([]any); len(posts) != 1 {
		t.Fatalf("title search: expected 1 hit got %d", len(posts))
	}

	byCompany := search("3", "중앙도서관")
	if posts := decodeBody(t, byCompany)["posts"].([]any); len(posts) != 1 {
		t.Fatalf("company search: expected 1 hit got %d", len(posts))
	}

	miss := search("2", "존재하지않는키워드")
	if posts := decodeBody(t, miss)["posts"].([]any); len(posts) != 0 {
		t.Fatalf("miss search: expected 0 hits got %d", len(posts))
	}

	bad := search("9", "사서")
	if bad.Code != http.StatusBadRequest {
		t.Fatalf("unknown category: expected 400 got %d", bad.Code)
	}
}

func TestManagerDeletePosting_CascadesApplications(t *testing.T) {
	db := newTestDB(t)
	seedEmployer(t, db, "libadmin")
	seeker := seedJobSeeker(t, db, "20260001")
	posting := seedPosting(t, db, "libadmin", futureDeadline())
	seedApplication(t, db, posting.ID, seeker.ID)

	h := NewManagerHandler(db, newFakeStorage(), nil)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/api/postManagement/deleteManagerPostJob/1", nil)
	c := newAuthedContext(w, req, "admin", auth.RoleManager)
	c.Params = gin.Params{{Key: "id", Value: intToStr(posting.ID)}}

	h.DeletePosting(c)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", w.Code, w.Body.String())
	}
	var postings, applications int64
	db.Model(&database.JobPosting{}).Count(&postings)
	db.Model(&database.Application{}).Count(&applications)
	if postings != 0 || applications != 0 {
		t.Fatalf("cascade failed: postings=%d applications=%d", postings, applications)
	}
}
