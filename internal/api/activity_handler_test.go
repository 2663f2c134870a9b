package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"campusjob/internal/auth"
	"campusjob/internal/database"
)

func TestListExperienceActivities_EmptyDeclined(t *testing.T) {
	db := newTestDB(t)
	seeker := seedJobSeeker(t, db, "20260001")
	h := NewActivityHandler(db, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/experience-activities/20260001", nil)
	c := newAuthedContext(w, req, seeker.ID, auth.RoleJobSeeker)
	c.Params = gin.Params{{Key: "jobSeekerId", Value: seeker.ID}}

	h.ListExperienceActivities(c)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	if body["success"] != false {
		t.Fatalf("empty list must be declined, body=%s", w.Body.String())
	}
}

func TestExperienceActivity_CreateThenListOrdered(t *testing.T) {
	db := newTestDB(t)
	seeker := seedJobSeeker(t, db, "20260001")
	h := NewActivityHandler(db, nil)

	for _, span := range [][2]string{{"2024-03", "2024-06"}, {"2025-03", "2025-06"}} {
		w := httptest.NewRecorder()
		req := newJSONRequest(t, http.MethodPost, "/api/experience-activities", map[string]any{
			"jobSeekerId":  seeker.ID,
			"activityType": "동아리",
			"organization": "프로그래밍 동아리",
			"startDate":    span[0],
			"endDate":      span[1],
			"description":  "알고리즘 스터디 운영",
		})
		h.CreateExperienceActivity(newAuthedContext(w, req, seeker.ID, auth.RoleJobSeeker))
		if w.Code != http.StatusOK {
			t.Fatalf("create: expected 200 got %d body=%s", w.Code, w.Body.String())
		}
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/experience-activities/20260001", nil)
	c := newAuthedContext(w, req, seeker.ID, auth.RoleJobSeeker)
	c.Params = gin.Params{{Key: "jobSeekerId", Value: seeker.ID}}
	h.ListExperienceActivities(c)

	body := decodeBody(t, w)
	if body["count"].(float64) != 2 {
		t.Fatalf("expected count 2, body=%s", w.Body.String())
	}
	activities := body["activities"].([]any)
	first := activities[0].(map[string]any)
	if first["start_date"] != "2025-03" {
		t.Fatalf("expected newest first, got %v", first["start_date"])
	}
}

func TestUpdateExperienceActivity_ForeignRowNotFound(t *testing.T) {
	db := newTestDB(t)
	owner := seedJobSeeker(t, db, "20260001")
	other := seedJobSeeker(t, db, "20260002")
	activity := database.ExperienceActivity{
		JobSeekerID:  owner.ID,
		ActivityType: "동아리",
		Organization: "프로그래밍 동아리",
		StartDate:    "2024-03",
		EndDate:      "2024-06",
		Description:  "스터디",
	}
	if err := db.Create(&activity).Error; err != nil {
		t.Fatalf("seed activity: %v", err)
	}

	h := NewActivityHandler(db, nil)
	w := httptest.NewRecorder()
	req := newJSONRequest(t, http.MethodPut, "/api/update-experience-activity/1", map[string]any{
		"activityType": "동아리",
		"organization": "다른 동아리",
		"startDate":    "2024-03",
		"endDate":      "2024-06",
		"description":  "탈취 시도",
	})
	c := newAuthedContext(w, req, other.ID, auth.RoleJobSeeker)
	c.Params = gin.Params{{Key: "activityId", Value: intToStr(activity.ID)}}

	h.UpdateExperienceActivity(c)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d body=%s", w.Code, w.Body.String())
	}
	var current database.ExperienceActivity
	db.First(&current, activity.ID)
	if current.Organization != "프로그래밍 동아리" {
		t.Fatalf("row must be untouched, got %q", current.Organization)
	}
}

func TestCertification_CreateUpdateDelete(t *testing.T) {
	db := newTestDB(t)
	seeker := seedJobSeeker(t, db, "20260001")
	h := NewActivityHandler(db, nil)

	create := httptest.NewRecorder()
	createReq := newJSONRequest(t, http.MethodPost, "/api/save-certification", map[string]any{
		"jobSeekerId":         seeker.ID,
		"name":                "정보처리기사",
		"issuingOrganization": "한국산업인력공단",
		"acquisitionDate":     "2025-06-01",
	})
	h.CreateCertification(newAuthedContext(create, createReq, seeker.ID, auth.RoleJobSeeker))
	if create.Code != http.StatusOK {
		t.Fatalf("create: expected 200 got %d body=%s", create.Code, create.Body.String())
	}

	var certification database.Certification
	if err := db.First(&certification, "job_seeker_id = ?", seeker.ID).Error; err != nil {
		t.Fatalf("load certification: %v", err)
	}

	update := httptest.NewRecorder()
	updateReq := newJSONRequest(t, http.MethodPost, "/api/update-certification", map[string]any{
		"jobSeekerId":         seeker.ID,
		"certificationId":     certification.ID,
		"name":                "정보처리산업기사",
		"issuingOrganization": "한국산업인력공단",
		"acquisitionDate":     "2025-06-01",
	})
	h.UpdateCertification(newAuthedContext(update, updateReq, seeker.ID, auth.RoleJobSeeker))
	if update.Code != http.StatusOK {
		t.Fatalf("update: expected 200 got %d body=%s", update.Code, update.Body.String())
	}
	db.First(&certification, certification.ID)
	if certification.Name != "정보처리산업기사" {
		t.Fatalf("expected updated name got %q", certification.Name)
	}

	remove := httptest.NewRecorder()
	removeReq := httptest.NewRequest(http.MethodDelete, "/api/delete-certification/1/20260001", nil)
	c := newAuthedContext(remove, removeReq, seeker.ID, auth.RoleJobSeeker)
	c.Params = gin.Params{
		{Key: "certificationId", Value: intToStr(certification.ID)},
		{Key: "jobSeekerId", Value: seeker.ID},
	}
	h.DeleteCertification(c)
	if remove.Code != http.StatusOK {
		t.Fatalf("delete: expected 200 got %d body=%s", remove.Code, remove.Body.String())
	}

	var count int64
	db.Model(&database.Certification{}).Count(&count)
	if count != 0 {
		t.Fatalf("expected no rows got %d", count)
	}
}
