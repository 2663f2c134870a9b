package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"time"

	"github.com/dutchcoders/go-clamd"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"campusjob/internal/api/middleware"
	"campusjob/internal/database"
	"campusjob/internal/validation"
)

// ObjectStorage 抽象出档案图片所需的对象存储操作，便于测试替换。
type ObjectStorage interface {
	UploadFile(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) (*minio.UploadInfo, error)
	GeneratePresignedURL(ctx context.Context, objectKey string, duration time.Duration) (string, error)
	DeleteObject(ctx context.Context, objectKey string) error
	DeletePrefix(ctx context.Context, prefix string) error
}

// ProfileHandler 负责求职者档案：基本信息、学历与自我介绍。
// 三块各自一行记录，全部走 ON CONFLICT 的原子 upsert。
type ProfileHandler struct {
	db        *gorm.DB
	storage   ObjectStorage
	logger    *slog.Logger
	clamdAddr string
	maxBytes  int64
}

// NewProfileHandler 构造 ProfileHandler。clamdAddr 为空时跳过病毒扫描。
func NewProfileHandler(db *gorm.DB, storage ObjectStorage, logger *slog.Logger, clamdAddr string, maxBytes int64) *ProfileHandler {
	return &ProfileHandler{
		db:        db,
		storage:   storage,
		logger:    logger,
		clamdAddr: clamdAddr,
		maxBytes:  maxBytes,
	}
}

func ownSubject(c *gin.Context, id string) bool {
	subject, _, _ := middleware.SubjectFromContext(c)
	return subject == id
}

// scanUpload 在入库前把文件流送给 clamd 扫描。
func (h *ProfileHandler) scanUpload(file *multipart.FileHeader) error {
	if h.clamdAddr == "" {
		return nil
	}

	reader, err := file.Open()
	if err != nil {
		return err
	}

	clamdClient := clamd.NewClamd(h.clamdAddr)
	abortChan := make(chan bool)
	scanChan, err := clamdClient.ScanStream(reader, abortChan)
	reader.Close()
	if err != nil {
		return err
	}
	defer close(abortChan)

	for result := range scanChan {
		if result.Status != clamd.RES_OK {
			return errors.New("malicious content detected")
		}
	}
	return nil
}

func (h *ProfileHandler) uploadProfileImage(c *gin.Context, jobSeekerID string, file *multipart.FileHeader) (string, error) {
	if h.maxBytes > 0 && file.Size > h.maxBytes {
		return "", fmt.Errorf("file too large: %d bytes", file.Size)
	}
	if err := h.scanUpload(file); err != nil {
		return "", err
	}

	reader, err := file.Open()
	if err != nil {
		return "", err
	}
	defer reader.Close()

	objectKey := fmt.Sprintf("profile-images/%s/%s.png", jobSeekerID, uuid.NewString())
	contentType := file.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	if _, err := h.storage.UploadFile(c.Request.Context(), objectKey, reader, file.Size, contentType); err != nil {
		return "", err
	}
	return objectKey, nil
}

// SaveBasicInfo 保存基本信息（multipart，图片可选）。
// 同一求职者重复提交时覆盖旧值，旧图片在新记录落库后清理。
func (h *ProfileHandler) SaveBasicInfo(c *gin.Context) {
	jobSeekerID := c.PostForm("jobSeekerId")
	if jobSeekerID == "" {
		BadRequest(c, "모든 필드를 입력해주세요.")
		return
	}
	if !ownSubject(c, jobSeekerID) {
		Forbidden(c, "접근 권한이 없습니다.")
		return
	}

	name := c.PostForm("name")
	birthDate := c.PostForm("birthDate")
	email := c.PostForm("email")
	phone := validation.NormalizePhone(c.PostForm("phone"))
	gender := c.PostForm("gender")

	if err := validation.BasicInfo(name, birthDate, email, phone); err != nil {
		BadRequest(c, err.Error())
		return
	}

	logger := middleware.LoggerFromContext(c)
	ctx := c.Request.Context()

	var imageKey string
	if file, err := c.FormFile("image"); err == nil {
		imageKey, err = h.uploadProfileImage(c, jobSeekerID, file)
		if err != nil {
			logger.Error("upload profile image failed", slog.Any("error", err))
			BadRequest(c, "이미지 업로드에 실패했습니다.")
			return
		}
	}

	var previous database.BasicInfo
	hadPrevious := h.db.WithContext(ctx).
		Where("job_seeker_id = ?", jobSeekerID).
		First(&previous).Error == nil

	info := database.BasicInfo{
		JobSeekerID: jobSeekerID,
		Name:        name,
		BirthDate:   birthDate,
		Email:       email,
		Phone:       phone,
		Gender:      gender,
		ImageKey:    imageKey,
	}
	assign := map[string]any{
		"name":       name,
		"birth_date": birthDate,
		"email":      email,
		"phone":      phone,
		"gender":     gender,
		"updated_at": time.Now(),
	}
	// 没带新图时保留既有的 image_key。
	if imageKey != "" {
		assign["image_key"] = imageKey
	}

	if err := h.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "job_seeker_id"}},
			DoUpdates: clause.Assignments(assign),
		}).
		Create(&info).Error; err != nil {
		logger.Error("save basic info failed", slog.Any("error", err))
		Internal(c)
		return
	}

	if imageKey != "" && hadPrevious && previous.ImageKey != "" {
		if err := h.storage.DeleteObject(ctx, previous.ImageKey); err != nil {
			logger.Warn("delete stale profile image failed",
				slog.String("objectKey", previous.ImageKey), slog.Any("error", err))
		}
	}

	OK(c, gin.H{"message": "기본 정보가 저장되었습니다."})
}

// GetBasicInfo 返回基本信息。图片以限时预签名 URL 下发。
func (h *ProfileHandler) GetBasicInfo(c *gin.Context) {
	jobSeekerID := c.Param("jobSeekerId")
	if !ownSubject(c, jobSeekerID) {
		Forbidden(c, "접근 권한이 없습니다.")
		return
	}

	var info database.BasicInfo
	if err := h.db.WithContext(c.Request.Context()).
		Where("job_seeker_id = ?", jobSeekerID).
		First(&info).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "기본 정보가 없습니다.")
			return
		}
		middleware.LoggerFromContext(c).Error("load basic info failed", slog.Any("error", err))
		Internal(c)
		return
	}

	var imageURL *string
	if info.ImageKey != "" {
		url, err := h.storage.GeneratePresignedURL(c.Request.Context(), info.ImageKey, 15*time.Minute)
		if err != nil {
			middleware.LoggerFromContext(c).Warn("presign profile image failed", slog.Any("error", err))
		} else {
			imageURL = &url
		}
	}

	OK(c, gin.H{"basicInfo": gin.H{
		"jobSeeker_id": info.JobSeekerID,
		"name":         info.Name,
		"birthDate":    info.BirthDate,
		"email":        info.Email,
		"phone":        info.Phone,
		"gender":       info.Gender,
		"image_url":    imageURL,
	}})
}

// ProfileSummary 返回首页用的姓名与头像 URL。
func (h *ProfileHandler) ProfileSummary(c *gin.Context) {
	jobSeekerID := c.Param("jobSeekerId")
	if !ownSubject(c, jobSeekerID) {
		Forbidden(c, "접근 권한이 없습니다.")
		return
	}

	var info database.BasicInfo
	if err := h.db.WithContext(c.Request.Context()).
		Where("job_seeker_id = ?", jobSeekerID).
		First(&info).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			OK(c, gin.H{"name": nil, "image_url": nil})
			return
		}
		middleware.LoggerFromContext(c).Error("load profile summary failed", slog.Any("error", err))
		Internal(c)
		return
	}

	var imageURL *string
	if info.ImageKey != "" {
		if url, err := h.storage.GeneratePresignedURL(c.Request.Context(), info.ImageKey, 15*time.Minute); err == nil {
			imageURL = &url
		}
	}
	OK(c, gin.H{"name": info.Name, "image_url": imageURL})
}

type educationRequest struct {
	JobSeekerID      string `json:"jobSeekerId" binding:"required"`
	UniversityType   string `json:"universityType"`
	SchoolName       string `json:"schoolName"`
	Region           string `json:"region"`
	AdmissionDate    string `json:"admissionDate"`
	GraduationDate   string `json:"graduationDate"`
	GraduationStatus string `json:"graduationStatus"`
	Major            string `json:"major"`
}

// SaveEducation 保存学历信息，重复提交覆盖旧值。
func (h *ProfileHandler) SaveEducation(c *gin.Context) {
	var req educationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "모든 필드를 입력해주세요.")
		return
	}
	if !ownSubject(c, req.JobSeekerID) {
		Forbidden(c, "접근 권한이 없습니다.")
		return
	}
	if err := validation.Education(req.UniversityType, req.SchoolName,
		req.AdmissionDate, req.GraduationDate, req.GraduationStatus, req.Major); err != nil {
		BadRequest(c, err.Error())
		return
	}

	education := database.Education{
		JobSeekerID:      req.JobSeekerID,
		UniversityType:   req.UniversityType,
		SchoolName:       req.SchoolName,
		Region:           req.Region,
		AdmissionDate:    req.AdmissionDate,
		GraduationDate:   req.GraduationDate,
		GraduationStatus: req.GraduationStatus,
		Major:            req.Major,
	}
	if err := h.db.WithContext(c.Request.Context()).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "job_seeker_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"university_type":   req.UniversityType,
				"school_name":       req.SchoolName,
				"region":            req.Region,
				"admission_date":    req.AdmissionDate,
				"graduation_date":   req.GraduationDate,
				"graduation_status": req.GraduationStatus,
				"major":             req.Major,
				"updated_at":        time.Now(),
			}),
		}).
		Create(&education).Error; err != nil {
		middleware.LoggerFromContext(c).Error("save education failed", slog.Any("error", err))
		Internal(c)
		return
	}
	OK(c, gin.H{"message": "학력 정보가 저장되었습니다."})
}

// GetEducation 返回学历信息。
func (h *ProfileHandler) GetEducation(c *gin.Context) {
	jobSeekerID := c.Param("jobSeekerId")
	if !ownSubject(c, jobSeekerID) {
		Forbidden(c, "접근 권한이 없습니다.")
		return
	}

	var education database.Education
	if err := h.db.WithContext(c.Request.Context()).
		Where("job_seeker_id = ?", jobSeekerID).
		First(&education).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "학력 정보가 없습니다.")
			return
		}
		middleware.LoggerFromContext(c).Error("load education failed", slog.Any("error", err))
		Internal(c)
		return
	}

	OK(c, gin.H{"education": gin.H{
		"jobSeeker_id":      education.JobSeekerID,
		"university_type":   education.UniversityType,
		"school_name":       education.SchoolName,
		"region":            education.Region,
		"admission_date":    education.AdmissionDate,
		"graduation_date":   education.GraduationDate,
		"graduation_status": education.GraduationStatus,
		"major":             education.Major,
	}})
}

// DeleteEducation 删除学历信息。不存在时返回 404。
func (h *ProfileHandler) DeleteEducation(c *gin.Context) {
	jobSeekerID := c.Param("jobSeekerId")
	if !ownSubject(c, jobSeekerID) {
		Forbidden(c, "접근 권한이 없습니다.")
		return
	}

	result := h.db.WithContext(c.Request.Context()).
		Where("job_seeker_id = ?", jobSeekerID).
		Delete(&database.Education{})
	if result.Error != nil {
		middleware.LoggerFromContext(c).Error("delete education failed", slog.Any("error", result.Error))
		Internal(c)
		return
	}
	if result.RowsAffected == 0 {
		NotFound(c, "학력 정보가 없습니다.")
		return
	}
	OK(c, gin.H{"message": "학력 정보가 삭제되었습니다."})
}

type careerStatementRequest struct {
	JobSeekerID   string `json:"jobSeekerId"`
	GrowthProcess string `json:"growthProcess"`
	Personality   string `json:"personality"`
	Motivation    string `json:"motivation"`
	Aspiration    string `json:"aspiration"`
	CareerHistory string `json:"careerHistory"`
}

func (r careerStatementRequest) assignments() map[string]any {
	return map[string]any{
		"growth_process": r.GrowthProcess,
		"personality":    r.Personality,
		"motivation":     r.Motivation,
		"aspiration":     r.Aspiration,
		"career_history": r.CareerHistory,
		"updated_at":     time.Now(),
	}
}

// SaveCareerStatement 保存自我介绍（成长过程、性格、志愿动机等）。
func (h *ProfileHandler) SaveCareerStatement(c *gin.Context) {
	var req careerStatementRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.JobSeekerID == "" {
		BadRequest(c, "모든 필드를 입력해주세요.")
		return
	}
	if !ownSubject(c, req.JobSeekerID) {
		Forbidden(c, "접근 권한이 없습니다.")
		return
	}

	statement := database.CareerStatement{
		JobSeekerID:   req.JobSeekerID,
		GrowthProcess: req.GrowthProcess,
		Personality:   req.Personality,
		Motivation:    req.Motivation,
		Aspiration:    req.Aspiration,
		CareerHistory: req.CareerHistory,
	}
	if err := h.db.WithContext(c.Request.Context()).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "job_seeker_id"}},
			DoUpdates: clause.Assignments(req.assignments()),
		}).
		Create(&statement).Error; err != nil {
		middleware.LoggerFromContext(c).Error("save career statement failed", slog.Any("error", err))
		Internal(c)
		return
	}
	OK(c, gin.H{"message": "자기소개서가 저장되었습니다."})
}

// GetCareerStatement 返回自我介绍。
func (h *ProfileHandler) GetCareerStatement(c *gin.Context) {
	jobSeekerID := c.Param("jobSeekerId")
	if !ownSubject(c, jobSeekerID) {
		Forbidden(c, "접근 권한이 없습니다.")
		return
	}

	var statement database.CareerStatement
	if err := h.db.WithContext(c.Request.Context()).
		Where("job_seeker_id = ?", jobSeekerID).
		First(&statement).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "자기소개서가 없습니다.")
			return
		}
		middleware.LoggerFromContext(c).Error("load career statement failed", slog.Any("error", err))
		Internal(c)
		return
	}

	OK(c, gin.H{"careerStatement": gin.H{
		"jobSeeker_id":   statement.JobSeekerID,
		"growth_process": statement.GrowthProcess,
		"personality":    statement.Personality,
		"motivation":     statement.Motivation,
		"aspiration":     statement.Aspiration,
		"career_history": statement.CareerHistory,
	}})
}

// UpdateCareerStatement 更新既有自我介绍，没有记录时返回 404。
func (h *ProfileHandler) UpdateCareerStatement(c *gin.Context) {
	jobSeekerID := c.Param("jobSeekerId")
	if !ownSubject(c, jobSeekerID) {
		Forbidden(c, "접근 권한이 없습니다.")
		return
	}

	var req careerStatementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "모든 필드를 입력해주세요.")
		return
	}

	result := h.db.WithContext(c.Request.Context()).
		Model(&database.CareerStatement{}).
		Where("job_seeker_id = ?", jobSeekerID).
		Updates(req.assignments())
	if result.Error != nil {
		middleware.LoggerFromContext(c).Error("update career statement failed", slog.Any("error", result.Error))
		Internal(c)
		return
	}
	if result.RowsAffected == 0 {
		NotFound(c, "자기소개서가 없습니다.")
		return
	}
	OK(c, gin.H{"message": "자기소개서가 수정되었습니다."})
}

// DeleteCareerStatement 删除自我介绍。
func (h *ProfileHandler) DeleteCareerStatement(c *gin.Context) {
	jobSeekerID := c.Param("jobSeekerId")
	if !ownSubject(c, jobSeekerID) {
		Forbidden(c, "접근 권한이 없습니다.")
		return
	}

	result := h.db.WithContext(c.Request.Context()).
		Where("job_seeker_id = ?", jobSeekerID).
		Delete(&database.CareerStatement{})
	if result.Error != nil {
		middleware.LoggerFromContext(c).Error("delete career statement failed", slog.Any("error", result.Error))
		Internal(c)
		return
	}
	if result.RowsAffected == 0 {
		NotFound(c, "자기소개서가 없습니다.")
		return
	}
	OK(c, gin.H{"message": "자기소개서가 삭제되었습니다."})
}
