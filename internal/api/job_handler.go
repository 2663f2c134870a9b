package api

import (
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"campusjob/internal/api/middleware"
	"campusjob/internal/database"
	"campusjob/internal/validation"
)

// JobHandler 负责招聘公告的增删改查与列表。
type JobHandler struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewJobHandler 构造 JobHandler。
func NewJobHandler(db *gorm.DB, logger *slog.Logger) *JobHandler {
	return &JobHandler{db: db, logger: logger}
}

// todayUTC 返回 UTC 当天的 ISO 日期串。active/closed 是派生状态：
// 截止日期与它做字符串比较即可，两边都是 YYYY-MM-DD。
func todayUTC() string {
	return time.Now().UTC().Format("2006-01-02")
}

type postJobRequest struct {
	Title               string `json:"title"`
	Contents            string `json:"contents"`
	CompanyName         string `json:"companyName"`
	Location            string `json:"location"`
	QualificationType   string `json:"qualificationType"`
	WorkPeriodStart     string `json:"workPeriodStart"`
	WorkPeriodEnd       string `json:"workPeriodEnd"`
	RecruitmentDeadline string `json:"recruitmentDeadline"`
	HourlyWage          string `json:"hourlyWage"`
	ApplicationMethod   string `json:"applicationMethod"`
	ContactNumber       string `json:"contactNumber"`
}

func (r postJobRequest) validate() error {
	return validation.PostJobFields(
		r.Title, r.Contents, r.CompanyName, r.Location, r.QualificationType,
		r.WorkPeriodStart, r.WorkPeriodEnd, r.RecruitmentDeadline, r.HourlyWage,
		r.ApplicationMethod, r.ContactNumber,
	)
}

type jobResponse struct {
	ID                  uint      `json:"id"`
	EmployerID          string    `json:"employer_id"`
	Title               string    `json:"title"`
	Contents            string    `json:"contents"`
	CompanyName         string    `json:"company_name"`
	Location            string    `json:"location"`
	QualificationType   string    `json:"qualification_type"`
	WorkPeriodStart     string    `json:"work_period_start"`
	WorkPeriodEnd       string    `json:"work_period_end"`
	RecruitmentDeadline string    `json:"recruitment_deadline"`
	HourlyWage          int       `json:"hourly_wage"`
	ApplicationMethod   string    `json:"application_method"`
	ContactNumber       string    `json:"contact_number"`
	CreatedAt           time.Time `json:"created_at"`
}

func newJobResponse(p database.JobPosting) jobResponse {
	return jobResponse{
		ID:                  p.ID,
		EmployerID:          p.EmployerID,
		Title:               p.Title,
		Contents:            p.Contents,
		CompanyName:         p.CompanyName,
		Location:            p.Location,
		QualificationType:   p.QualificationType,
		WorkPeriodStart:     p.WorkPeriodStart,
		WorkPeriodEnd:       p.WorkPeriodEnd,
		RecruitmentDeadline: p.RecruitmentDeadline,
		HourlyWage:          p.HourlyWage,
		ApplicationMethod:   p.ApplicationMethod,
		ContactNumber:       p.ContactNumber,
		CreatedAt:           p.CreatedAt,
	}
}

func newJobResponses(postings []database.JobPosting) []jobResponse {
	items := make([]jobResponse, 0, len(postings))
	for _, p := range postings {
		items = append(items, newJobResponse(p))
	}
	return items
}

// CreateJob 由登录的部门账号发布一条公告。公告创建即发布，没有草稿态。
func (h *JobHandler) CreateJob(c *gin.Context) {
	employerID, _, ok := middleware.SubjectFromContext(c)
	if !ok {
		NeedLogin(c)
		return
	}

	var req postJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "모든 항목을 입력하세요")
		return
	}
	if err := req.validate(); err != nil {
		BadRequest(c, err.Error())
		return
	}

	wage, err := strconv.Atoi(req.HourlyWage)
	if err != nil {
		BadRequest(c, "시급은 숫자만 입력할 수 있습니다.")
		return
	}

	posting := database.JobPosting{
		EmployerID:          employerID,
		Title:               req.Title,
		Contents:            req.Contents,
		CompanyName:         req.CompanyName,
		Location:            req.Location,
		QualificationType:   req.QualificationType,
		WorkPeriodStart:     req.WorkPeriodStart,
		WorkPeriodEnd:       req.WorkPeriodEnd,
		RecruitmentDeadline: req.RecruitmentDeadline,
		HourlyWage:          wage,
		ApplicationMethod:   req.ApplicationMethod,
		ContactNumber:       req.ContactNumber,
	}
	if err := h.db.WithContext(c.Request.Context()).Create(&posting).Error; err != nil {
		middleware.LoggerFromContext(c).Error("create posting failed", slog.Any("error", err))
		Internal(c)
		return
	}

	OK(c, gin.H{"message": "구인 공고가 성공적으로 등록되었습니다.", "jobId": posting.ID})
}

// ListJobsByEmployer 按派生状态列出某部门的公告。
// active 按创建时间倒序，closed 按截止日期倒序；未知状态直接 400。
func (h *JobHandler) ListJobsByEmployer(c *gin.Context) {
	employerID := c.Param("employerId")
	if subject, _, _ := middleware.SubjectFromContext(c); subject != employerID {
		Forbidden(c, "접근 권한이 없습니다.")
		return
	}

	query := h.db.WithContext(c.Request.Context()).Where("employer_id = ?", employerID)
	switch c.Query("status") {
	case "active":
		query = query.Where("recruitment_deadline >= ?", todayUTC()).Order("created_at DESC")
	case "closed":
		query = query.Where("recruitment_deadline < ?", todayUTC()).Order("recruitment_deadline DESC")
	default:
		BadRequest(c, "잘못된 상태 파라미터입니다.")
		return
	}

	var postings []database.JobPosting
	if err := query.Find(&postings).Error; err != nil {
		middleware.LoggerFromContext(c).Error("list postings failed", slog.Any("error", err))
		Internal(c)
		return
	}

	OK(c, gin.H{"jobs": newJobResponses(postings)})
}

// JobDetail 返回公告全文。
func (h *JobHandler) JobDetail(c *gin.Context) {
	jobID, err := strconv.ParseUint(c.Param("jobId"), 10, 64)
	if err != nil {
		BadRequest(c, "잘못된 공고 ID입니다.")
		return
	}

	var posting database.JobPosting
	if err := h.db.WithContext(c.Request.Context()).First(&posting, uint(jobID)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "해당 구인 공고를 찾을 수 없습니다.")
			return
		}
		middleware.LoggerFromContext(c).Error("load posting failed", slog.Any("error", err))
		Internal(c)
		return
	}

	OK(c, gin.H{"job": newJobResponse(posting)})
}

// UpdateJob 整行覆盖公告的全部可变字段，仅限所属部门。
func (h *JobHandler) UpdateJob(c *gin.Context) {
	posting, ok := h.loadOwnedPosting(c)
	if !ok {
		return
	}

	var req postJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "모든 항목을 입력하세요")
		return
	}
	if err := req.validate(); err != nil {
		BadRequest(c, err.Error())
		return
	}
	wage, err := strconv.Atoi(req.HourlyWage)
	if err != nil {
		BadRequest(c, "시급은 숫자만 입력할 수 있습니다.")
		return
	}

	updates := map[string]any{
		"title":                req.Title,
		"contents":             req.Contents,
		"company_name":         req.CompanyName,
		"location":             req.Location,
		"qualification_type":   req.QualificationType,
		"work_period_start":    req.WorkPeriodStart,
		"work_period_end":      req.WorkPeriodEnd,
		"recruitment_deadline": req.RecruitmentDeadline,
		"hourly_wage":          wage,
		"application_method":   req.ApplicationMethod,
		"contact_number":       req.ContactNumber,
	}
	if err := h.db.WithContext(c.Request.Context()).Model(posting).Updates(updates).Error; err != nil {
		middleware.LoggerFromContext(c).Error("update posting failed", slog.Any("error", err))
		Internal(c)
		return
	}

	OK(c, gin.H{"message": "구인 공고가 성공적으로 수정되었습니다."})
}

// DeleteJob 在一个事务里先删申请记录再删公告，要么全成要么全不动。
func (h *JobHandler) DeleteJob(c *gin.Context) {
	posting, ok := h.loadOwnedPosting(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	err := h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("job_posting_id = ?", posting.ID).Delete(&database.Application{}).Error; err != nil {
			return err
		}
		return tx.Delete(&database.JobPosting{}, posting.ID).Error
	})
	if err != nil {
		middleware.LoggerFromContext(c).Error("delete posting failed", slog.Any("error", err))
		Internal(c)
		return
	}

	OK(c, gin.H{"message": "구인 공고가 성공적으로 삭제되었습니다."})
}

// ListAllJobs 是求职者的浏览视图：全量公告按状态过滤，可再按部门集合过滤。
func (h *JobHandler) ListAllJobs(c *gin.Context) {
	query := h.db.WithContext(c.Request.Context()).
		Model(&database.JobPosting{}).
		Joins("JOIN employers ON employers.id = job_postings.employer_id")

	switch c.Query("status") {
	case "active":
		query = query.Where("job_postings.recruitment_deadline >= ?", todayUTC())
	case "closed":
		query = query.Where("job_postings.recruitment_deadline < ?", todayUTC())
	default:
		BadRequest(c, "잘못된 상태 파라미터입니다.")
		return
	}

	if raw := c.Query("departments"); raw != "" {
		departments := strings.Split(raw, ",")
		query = query.Where("employers.department_name IN ?", departments)
	}

	var postings []database.JobPosting
	if err := query.Order("job_postings.created_at DESC").Find(&postings).Error; err != nil {
		middleware.LoggerFromContext(c).Error("list all postings failed", slog.Any("error", err))
		Internal(c)
		return
	}

	OK(c, gin.H{"jobs": newJobResponses(postings)})
}

// ListDepartments 返回现有公告部门的去重列表，供浏览视图做筛选。
func (h *JobHandler) ListDepartments(c *gin.Context) {
	var departments []string
	if err := h.db.WithContext(c.Request.Context()).
		Model(&database.Employer{}).
		Distinct("department_name").
		Order("department_name").
		Pluck("department_name", &departments).Error; err != nil {
		middleware.LoggerFromContext(c).Error("list departments failed", slog.Any("error", err))
		Internal(c)
		return
	}

	OK(c, gin.H{"departments": departments})
}

// loadOwnedPosting 解析 :jobId、加载公告并校验归属。
// 404 对"不存在"与"不是你的"一视同仁，避免泄露他人公告的存在性。
func (h *JobHandler) loadOwnedPosting(c *gin.Context) (*database.JobPosting, bool) {
	jobID, err := strconv.ParseUint(c.Param("jobId"), 10, 64)
	if err != nil {
		BadRequest(c, "잘못된 공고 ID입니다.")
		return nil, false
	}

	employerID, _, ok := middleware.SubjectFromContext(c)
	if !ok {
		NeedLogin(c)
		return nil, false
	}

	var posting database.JobPosting
	if err := h.db.WithContext(c.Request.Context()).
		Where("id = ? AND employer_id = ?", uint(jobID), employerID).
		First(&posting).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "해당 구인 공고를 찾을 수 없습니다.")
			return nil, false
		}
		middleware.LoggerFromContext(c).Error("load posting failed", slog.Any("error", err))
		Internal(c)
		return nil, false
	}
	return &posting, true
}
