package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"campusjob/internal/auth"
	"campusjob/internal/database"
)

func TestEmployerDelete_RemovesPostingsAndApplications(t *testing.T) {
	db := newTestDB(t)
	employer := seedEmployer(t, db, "libadmin")
	seeker := seedJobSeeker(t, db, "20260001")
	posting := seedPosting(t, db, employer.ID, futureDeadline())
	seedApplication(t, db, posting.ID, seeker.ID)

	h := NewEmployerHandler(db, nil)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/api/delete-employer/libadmin", nil)
	c := newAuthedContext(w, req, employer.ID, auth.RoleEmployer)
	c.Params = gin.Params{{Key: "id", Value: employer.ID}}

	h.Delete(c)

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
}

func TestEmployerUpdateProfile_NormalizesPhone(t *testing.T) {
	db := newTestDB(t)
	employer := seedEmployer(t, db, "libadmin")

	h := NewEmployerHandler(db, nil)
	w := httptest.NewRecorder()
	req := newJSONRequest(t, http.MethodPut, "/api/update-employer-profile/libadmin", map[string]any{
		"phone_number": "0311239876",
		"email":        "new@campus.ac.kr",
	})
	c := newAuthedContext(w, req, employer.ID, auth.RoleEmployer)
	c.Params = gin.Params{{Key: "id", Value: employer.ID}}

	h.UpdateProfile(c)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", w.Code, w.Body.String())
	}
	var current database.Employer
	db.First(&current, "id = ?", employer.ID)
	if current.PhoneNumber != "031-123-9876" {
		t.Fatalf("expected normalized phone got %q", current.PhoneNumber)
	}
	if current.Email != "new@campus.ac.kr" {
		t.Fatalf("expected updated email got %q", current.Email)
	}
}

func TestEmployerProfile_ForeignAccountForbidden(t *testing.T) {
	db := newTestDB(t)
	seedEmployer(t, db, "libadmin")

	h := NewEmployerHandler(db, nil)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/employer-profile/libadmin", nil)
	c := newAuthedContext(w, req, "cafeteria", auth.RoleEmployer)
	c.Params = gin.Params{{Key: "id", Value: "libadmin"}}

	h.Profile(c)

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d body=%s", w.Code, w.Body.String())
	}
}
