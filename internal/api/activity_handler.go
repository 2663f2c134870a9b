package api

import (
	"log/slog"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"campusjob/internal/api/middleware"
	"campusjob/internal/database"
	"campusjob/internal/validation"
)

// ActivityHandler 负责经历/活动与资格证，两者都是一对多的子实体，
// 写操作一律按 (id, job_seeker_id) 双条件限定在本人名下。
type ActivityHandler struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewActivityHandler 构造 ActivityHandler。
func NewActivityHandler(db *gorm.DB, logger *slog.Logger) *ActivityHandler {
	return &ActivityHandler{db: db, logger: logger}
}

type experienceActivityRequest struct {
	JobSeekerID  string `json:"jobSeekerId"`
	ActivityType string `json:"activityType"`
	Organization string `json:"organization"`
	StartDate    string `json:"startDate"`
	EndDate      string `json:"endDate"`
	Description  string `json:"description"`
}

// CreateExperienceActivity 新增一条经历/活动记录。
func (h *ActivityHandler) CreateExperienceActivity(c *gin.Context) {
	var req experienceActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.JobSeekerID == "" {
		BadRequest(c, "모든 필드를 입력해주세요.")
		return
	}
	if !ownSubject(c, req.JobSeekerID) {
		Forbidden(c, "접근 권한이 없습니다.")
		return
	}
	if err := validation.ExperienceActivity(req.ActivityType, req.Organization,
		req.StartDate, req.EndDate, req.Description); err != nil {
		BadRequest(c, err.Error())
		return
	}

	activity := database.ExperienceActivity{
		JobSeekerID:  req.JobSeekerID,
		ActivityType: req.ActivityType,
		Organization: req.Organization,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		Description:  req.Description,
	}
	if err := h.db.WithContext(c.Request.Context()).Create(&activity).Error; err != nil {
		middleware.LoggerFromContext(c).Error("create activity failed", slog.Any("error", err))
		Internal(c)
		return
	}
	OK(c, gin.H{"message": "경험/활동/교육 정보가 저장되었습니다.", "id": activity.ID})
}

// ListExperienceActivities 按开始年月倒序列出全部经历/活动。
func (h *ActivityHandler) ListExperienceActivities(c *gin.Context) {
	jobSeekerID := c.Param("jobSeekerId")
	if !ownSubject(c, jobSeekerID) {
		Forbidden(c, "접근 권한이 없습니다.")
		return
	}

	var activities []database.ExperienceActivity
	if err := h.db.WithContext(c.Request.Context()).
		Where("job_seeker_id = ?", jobSeekerID).
		Order("start_date DESC").
		Find(&activities).Error; err != nil {
		middleware.LoggerFromContext(c).Error("list activities failed", slog.Any("error", err))
		Internal(c)
		return
	}
	if len(activities) == 0 {
		Declined(c, "경험/활동/교육 정보가 없습니다.")
		return
	}

	items := make([]gin.H, 0, len(activities))
	for _, a := range activities {
		items = append(items, gin.H{
			"id":            a.ID,
			"jobSeeker_id":  a.JobSeekerID,
			"activity_type": a.ActivityType,
			"organization":  a.Organization,
			"start_date":    a.StartDate,
			"end_date":      a.EndDate,
			"description":   a.Description,
		})
	}
	OK(c, gin.H{"count": len(items), "activities": items})
}

// UpdateExperienceActivity 更新本人名下的一条记录，0 行受影响按 404 处理。
func (h *ActivityHandler) UpdateExperienceActivity(c *gin.Context) {
	activityID, err := strconv.ParseUint(c.Param("activityId"), 10, 64)
	if err != nil {
		BadRequest(c, "잘못된 활동 ID입니다.")
		return
	}

	var req experienceActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "모든 필드를 입력해주세요.")
		return
	}
	if err := validation.ExperienceActivity(req.ActivityType, req.Organization,
		req.StartDate, req.EndDate, req.Description); err != nil {
		BadRequest(c, err.Error())
		return
	}

	subject, _, _ := middleware.SubjectFromContext(c)
	result := h.db.WithContext(c.Request.Context()).
		Model(&database.ExperienceActivity{}).
		Where("id = ? AND job_seeker_id = ?", uint(activityID), subject).
		Updates(map[string]any{
			"activity_type": req.ActivityType,
			"organization":  req.Organization,
			"start_date":    req.StartDate,
			"end_date":      req.EndDate,
			"description":   req.Description,
		})
	if result.Error != nil {
		middleware.LoggerFromContext(c).Error("update activity failed", slog.Any("error", result.Error))
		Internal(c)
		return
	}
	if result.RowsAffected == 0 {
		NotFound(c, "해당 활동 정보를 찾을 수 없습니다.")
		return
	}
	OK(c, gin.H{"message": "경험/활동/교육 정보가 수정되었습니다."})
}

// DeleteExperienceActivity 删除本人名下的一条记录。
func (h *ActivityHandler) DeleteExperienceActivity(c *gin.Context) {
	activityID, err := strconv.ParseUint(c.Param("activityId"), 10, 64)
	if err != nil {
		BadRequest(c, "잘못된 활동 ID입니다.")
		return
	}
	jobSeekerID := c.Param("jobSeekerId")
	if !ownSubject(c, jobSeekerID) {
		Forbidden(c, "접근 권한이 없습니다.")
		return
	}

	result := h.db.WithContext(c.Request.Context()).
		Where("id = ? AND job_seeker_id = ?", uint(activityID), jobSeekerID).
		Delete(&database.ExperienceActivity{})
	if result.Error != nil {
		middleware.LoggerFromContext(c).Error("delete activity failed", slog.Any("error", result.Error))
		Internal(c)
		return
	}
	if result.RowsAffected == 0 {
		NotFound(c, "해당 활동 정보를 찾을 수 없습니다.")
		return
	}
	OK(c, gin.H{"message": "경험/활동/교육 정보가 삭제되었습니다."})
}

type certificationRequest struct {
	JobSeekerID         string `json:"jobSeekerId"`
	CertificationID     uint   `json:"certificationId"`
	Name                string `json:"name"`
	IssuingOrganization string `json:"issuingOrganization"`
	AcquisitionDate     string `json:"acquisitionDate"`
}

// CreateCertification 新增一条资格证记录。
func (h *ActivityHandler) CreateCertification(c *gin.Context) {
	var req certificationRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.JobSeekerID == "" {
		BadRequest(c, "모든 필드를 입력해주세요.")
		return
	}
	if !ownSubject(c, req.JobSeekerID) {
		Forbidden(c, "접근 권한이 없습니다.")
		return
	}
	if err := validation.Certification(req.Name, req.IssuingOrganization, req.AcquisitionDate); err != nil {
		BadRequest(c, err.Error())
		return
	}

	certification := database.Certification{
		JobSeekerID:         req.JobSeekerID,
		Name:                req.Name,
		IssuingOrganization: req.IssuingOrganization,
		AcquisitionDate:     req.AcquisitionDate,
	}
	if err := h.db.WithContext(c.Request.Context()).Create(&certification).Error; err != nil {
		middleware.LoggerFromContext(c).Error("create certification failed", slog.Any("error", err))
		Internal(c)
		return
	}
	OK(c, gin.H{"message": "자격증 정보가 저장되었습니다.", "id": certification.ID})
}

// ListCertifications 按取得日倒序列出资格证。
func (h *ActivityHandler) ListCertifications(c *gin.Context) {
	jobSeekerID := c.Param("jobSeekerId")
	if !ownSubject(c, jobSeekerID) {
		Forbidden(c, "접근 권한이 없습니다.")
		return
	}

	var certifications []database.Certification
	if err := h.db.WithContext(c.Request.Context()).
		Where("job_seeker_id = ?", jobSeekerID).
		Order("acquisition_date DESC").
		Find(&certifications).Error; err != nil {
		middleware.LoggerFromContext(c).Error("list certifications failed", slog.Any("error", err))
		Internal(c)
		return
	}

	items := make([]gin.H, 0, len(certifications))
	for _, cert := range certifications {
		items = append(items, gin.H{
			"id":                   cert.ID,
			"jobSeeker_id":         cert.JobSeekerID,
			"name":                 cert.Name,
			"issuing_organization": cert.IssuingOrganization,
			"acquisition_date":     cert.AcquisitionDate,
		})
	}
	OK(c, gin.H{"count": len(items), "certifications": items})
}

// UpdateCertification 更新本人名下的资格证，目标记录靠 body 里的 ID 指定。
func (h *ActivityHandler) UpdateCertification(c *gin.Context) {
	var req certificationRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.JobSeekerID == "" || req.CertificationID == 0 {
		BadRequest(c, "모든 필드를 입력해주세요.")
		return
	}
	if !ownSubject(c, req.JobSeekerID) {
		Forbidden(c, "접근 권한이 없습니다.")
		return
	}
	if err := validation.Certification(req.Name, req.IssuingOrganization, req.AcquisitionDate); err != nil {
		BadRequest(c, err.Error())
		return
	}

	result := h.db.WithContext(c.Request.Context()).
		Model(&database.Certification{}).
		Where("id = ? AND job_seeker_id = ?", req.CertificationID, req.JobSeekerID).
		Updates(map[string]any{
			"name":                 req.Name,
			"issuing_organization": req.IssuingOrganization,
			"acquisition_date":     req.AcquisitionDate,
		})
	if result.Error != nil {
		middleware.LoggerFromContext(c).Error("update certification failed", slog.Any("error", result.Error))
		Internal(c)
		return
	}
	if result.RowsAffected == 0 {
		NotFound(c, "해당 자격증 정보를 찾을 수 없습니다.")
		return
	}
	OK(c, gin.H{"message": "자격증 정보가 수정되었습니다."})
}

// DeleteCertification 删除本人名下的资格证。
func (h *ActivityHandler) DeleteCertification(c *gin.Context) {
	certificationID, err := strconv.ParseUint(c.Param("certificationId"), 10, 64)
	if err != nil {
		BadRequest(c, "잘못된 자격증 ID입니다.")
		return
	}
	jobSeekerID := c.Param("jobSeekerId")
	if !ownSubject(c, jobSeekerID) {
		Forbidden(c, "접근 권한이 없습니다.")
		return
	}

	result := h.db.WithContext(c.Request.Context()).
		Where("id = ? AND job_seeker_id = ?", uint(certificationID), jobSeekerID).
		Delete(&database.Certification{})
	if result.Error != nil {
		middleware.LoggerFromContext(c).Error("delete certification failed", slog.Any("error", result.Error))
		Internal(c)
		return
	}
	if result.RowsAffected == 0 {
		NotFound(c, "해당 자격증 정보를 찾을 수 없습니다.")
		return
	}
	OK(c, gin.H{"message": "자격증 정보가 삭제되었습니다."})
}
