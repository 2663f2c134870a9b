package api

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"campusjob/internal/api/middleware"
	"campusjob/internal/database"
)

// ApplicationHandler 负责申请的创建、状态流转与列表。
// 状态机：pending → {accepted, rejected, interview_requested}，
// interview_requested 仍可转向 accepted/rejected。
type ApplicationHandler struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewApplicationHandler 构造 ApplicationHandler。
func NewApplicationHandler(db *gorm.DB, logger *slog.Logger) *ApplicationHandler {
	return &ApplicationHandler{db: db, logger: logger}
}

type applyRequest struct {
	JobID       uint   `json:"jobId" binding:"required"`
	JobSeekerID string `json:"jobSeekerId" binding:"required"`
}

// Apply 报名一条公告。靠 (job_posting_id, job_seeker_id) 唯一索引
// 加 ON CONFLICT DO NOTHING 一条语句完成"至多报一次"：
// 没插进去就说明已报过，返回 success:false，不算错误。
func (h *ApplicationHandler) Apply(c *gin.Context) {
	var req applyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "모든 필드를 입력해주세요.")
		return
	}

	subject, _, _ := middleware.SubjectFromContext(c)
	if subject != req.JobSeekerID {
		Forbidden(c, "접근 권한이 없습니다.")
		return
	}

	ctx := c.Request.Context()

	var posting database.JobPosting
	if err := h.db.WithContext(ctx).First(&posting, req.JobID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "해당 구인 공고를 찾을 수 없습니다.")
			return
		}
		middleware.LoggerFromContext(c).Error("load posting failed", slog.Any("error", err))
		Internal(c)
		return
	}

	application := database.Application{
		JobPostingID: req.JobID,
		JobSeekerID:  req.JobSeekerID,
		Status:       database.StatusPending,
	}
	result := h.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&application)
	if result.Error != nil {
		middleware.LoggerFromContext(c).Error("create application failed", slog.Any("error", result.Error))
		Internal(c)
		return
	}
	if result.RowsAffected == 0 {
		// 已报过名：业务拒绝，不是错误。
		Declined(c, "")
		return
	}

	OK(c, nil)
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateStatus 更新申请状态。枚举外的值一律 400 且不落库；
// 旧版客户端发的韩文文案会被映射到规范枚举。
func (h *ApplicationHandler) UpdateStatus(c *gin.Context) {
	applicationID, err := strconv.ParseUint(c.Param("applicationId"), 10, 64)
	if err != nil {
		BadRequest(c, "잘못된 지원 ID입니다.")
		return
	}

	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "유효하지 않은 상태값입니다.")
		return
	}

	status, ok := database.ParseApplicationStatus(req.Status)
	if !ok {
		BadRequest(c, "유효하지 않은 상태값입니다.")
		return
	}

	employerID, _, _ := middleware.SubjectFromContext(c)
	ctx := c.Request.Context()

	// 状态更新限定在自家公告的申请上，0 行受影响统一按 404 处理。
	result := h.db.WithContext(ctx).
		Model(&database.Application{}).
		Where("id = ? AND job_posting_id IN (?)",
			uint(applicationID),
			h.db.Model(&database.JobPosting{}).Select("id").Where("employer_id = ?", employerID),
		).
		Updates(map[string]any{"status": status, "updated_at": time.Now()})
	if result.Error != nil {
		middleware.LoggerFromContext(c).Error("update status failed", slog.Any("error", result.Error))
		Internal(c)
		return
	}
	if result.RowsAffected == 0 {
		NotFound(c, "해당 지원 정보를 찾을 수 없습니다.")
		return
	}

	OK(c, gin.H{"message": fmt.Sprintf("지원자 상태가 %q(으)로 업데이트되었습니다.", status.Label())})
}

type applicationRow struct {
	ID                uint
	JobPostingID      uint
	JobSeekerID       string
	Status            database.ApplicationStatus
	AppliedAt         time.Time
	UpdatedAt         time.Time
	Title             string
	CompanyName       string
	Location          string
	QualificationType string
}

func (r applicationRow) toItem() gin.H {
	return gin.H{
		"id":                 r.ID,
		"job_id":             r.JobPostingID,
		"jobSeeker_id":       r.JobSeekerID,
		"status":             r.Status,
		"application_status": r.Status.Label(),
		"applied_at":         r.AppliedAt,
		"updated_at":         r.UpdatedAt,
		"title":              r.Title,
	}
}

// ListForEmployer 列出某部门全部公告的申请人，按申请时间倒序。
func (h *ApplicationHandler) ListForEmployer(c *gin.Context) {
	employerID := c.Param("employerId")
	if subject, _, _ := middleware.SubjectFromContext(c); subject != employerID {
		Forbidden(c, "접근 권한이 없습니다.")
		return
	}

	var rows []applicationRow
	if err := h.db.WithContext(c.Request.Context()).
		Model(&database.Application{}).
		Select("applications.id, applications.job_posting_id, applications.job_seeker_id, applications.status, applications.applied_at, applications.updated_at, job_postings.title").
		Joins("JOIN job_postings ON job_postings.id = applications.job_posting_id").
		Where("job_postings.employer_id = ?", employerID).
		Order("applications.applied_at DESC").
		Scan(&rows).Error; err != nil {
		middleware.LoggerFromContext(c).Error("list employer applications failed", slog.Any("error", err))
		Internal(c)
		return
	}

	items := make([]gin.H, 0, len(rows))
	for _, r := range rows {
		items = append(items, r.toItem())
	}
	OK(c, gin.H{"applications": items})
}

// ListForJobSeeker 列出某求职者的全部申请，连带公告的标题/单位/地点。
func (h *ApplicationHandler) ListForJobSeeker(c *gin.Context) {
	jobSeekerID := c.Param("jobSeekerId")
	if subject, _, _ := middleware.SubjectFromContext(c); subject != jobSeekerID {
		Forbidden(c, "접근 권한이 없습니다.")
		return
	}

	var rows []applicationRow
	if err := h.db.WithContext(c.Request.Context()).
		Model(&database.Application{}).
		Select("applications.id, applications.job_posting_id, applications.job_seeker_id, applications.status, applications.applied_at, applications.updated_at, job_postings.title, job_postings.company_name, job_postings.location, job_postings.qualification_type").
		Joins("JOIN job_postings ON job_postings.id = applications.job_posting_id").
		Where("applications.job_seeker_id = ?", jobSeekerID).
		Order("applications.applied_at DESC").
		Scan(&rows).Error; err != nil {
		middleware.LoggerFromContext(c).Error("list jobseeker applications failed", slog.Any("error", err))
		Internal(c)
		return
	}

	items := make([]gin.H, 0, len(rows))
	for _, r := range rows {
		item := r.toItem()
		item["company_name"] = r.CompanyName
		item["location"] = r.Location
		item["qualification_type"] = r.QualificationType
		items = append(items, item)
	}
	OK(c, gin.H{"applications": items})
}

// 지원자 상세：五个子查询各自独立，缺哪块就在 JSON 里给 null，
// 不用哨兵文案，展示文案交给客户端。
type applicantDetailResponse struct {
	Application     *applicationView     `json:"application"`
	JobPost         *jobPostView         `json:"jobPost"`
	BasicInfo       *basicInfoView       `json:"basicInfo"`
	Education       *educationView       `json:"education"`
	CareerStatement *careerStatementView `json:"careerStatement"`
}

type applicationView struct {
	ID          uint                       `json:"id"`
	JobID       uint                       `json:"job_id"`
	JobSeekerID string                     `json:"jobSeeker_id"`
	Status      database.ApplicationStatus `json:"status"`
	StatusLabel string                     `json:"application_status"`
	AppliedAt   time.Time                  `json:"applied_at"`
}

type jobPostView struct {
	Title       string `json:"title"`
	CompanyName string `json:"company_name"`
}

type basicInfoView struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	BirthDate string `json:"birthDate"`
}

type educationView struct {
	UniversityType   string `json:"university_type"`
	SchoolName       string `json:"school_name"`
	Major            string `json:"major"`
	GraduationStatus string `json:"graduation_status"`
}

type careerStatementView struct {
	GrowthProcess string `json:"growth_process"`
	Personality   string `json:"personality"`
	Motivation    string `json:"motivation"`
	Aspiration    string `json:"aspiration"`
	CareerHistory string `json:"career_history"`
}

// ApplicantDetail 聚合申请、公告与求职者档案三块资料为一个复合视图。
// 先核实公告归属再查档案：档案各块缺失不让整个请求失败，
// 但公告不存在或不属于调用方时直接拒绝，不泄露求职者资料。
func (h *ApplicationHandler) ApplicantDetail(c *gin.Context) {
	jobSeekerID := c.Param("jobSeekerId")
	jobID, err := strconv.ParseUint(c.Param("jobId"), 10, 64)
	if err != nil {
		BadRequest(c, "잘못된 공고 ID입니다.")
		return
	}

	employerID, _, _ := middleware.SubjectFromContext(c)
	ctx := c.Request.Context()
	logger := middleware.LoggerFromContext(c)
	detail := applicantDetailResponse{}

	var posting database.JobPosting
	if err := h.db.WithContext(ctx).First(&posting, uint(jobID)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "해당 구인 공고를 찾을 수 없습니다.")
			return
		}
		logger.Error("load posting failed", slog.Any("error", err))
		Internal(c)
		return
	}
	if posting.EmployerID != employerID {
		Forbidden(c, "접근 권한이 없습니다.")
		return
	}
	detail.JobPost = &jobPostView{Title: posting.Title, CompanyName: posting.CompanyName}

	var application database.Application
	switch err := h.db.WithContext(ctx).
		Where("job_posting_id = ? AND job_seeker_id = ?", uint(jobID), jobSeekerID).
		First(&application).Error; {
	case err == nil:
		detail.Application = &applicationView{
			ID:          application.ID,
			JobID:       application.JobPostingID,
			JobSeekerID: application.JobSeekerID,
			Status:      application.Status,
			StatusLabel: application.Status.Label(),
			AppliedAt:   application.AppliedAt,
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
	default:
		logger.Error("load application failed", slog.Any("error", err))
		Internal(c)
		return
	}

	var info database.BasicInfo
	switch err := h.db.WithContext(ctx).Where("job_seeker_id = ?", jobSeekerID).First(&info).Error; {
	case err == nil:
		detail.BasicInfo = &basicInfoView{
			Name:      info.Name,
			Email:     info.Email,
			Phone:     info.Phone,
			BirthDate: info.BirthDate,
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
	default:
		logger.Error("load basic info failed", slog.Any("error", err))
		Internal(c)
		return
	}

	var education database.Education
	switch err := h.db.WithContext(ctx).Where("job_seeker_id = ?", jobSeekerID).First(&education).Error; {
	case err == nil:
		detail.Education = &educationView{
			UniversityType:   education.UniversityType,
			SchoolName:       education.SchoolName,
			Major:            education.Major,
			GraduationStatus: education.GraduationStatus,
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
	default:
		logger.Error("load education failed", slog.Any("error", err))
		Internal(c)
		return
	}

	var statement database.CareerStatement
	switch err := h.db.WithContext(ctx).Where("job_seeker_id = ?", jobSeekerID).First(&statement).Error; {
	case err == nil:
		detail.CareerStatement = &careerStatementView{
			GrowthProcess: statement.GrowthProcess,
			Personality:   statement.Personality,
			Motivation:    statement.Motivation,
			Aspiration:    statement.Aspiration,
			CareerHistory: statement.CareerHistory,
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
	default:
		logger.Error("load career statement failed", slog.Any("error", err))
		Internal(c)
		return
	}

	OK(c, gin.H{"detail": detail})
}
