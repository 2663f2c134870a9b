package api

import (
	"errors"
	"log/slog"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"campusjob/internal/api/middleware"
	"campusjob/internal/database"
	"campusjob/internal/validation"
)

// EmployerHandler 负责用人部门账号的资料与注销。
type EmployerHandler struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewEmployerHandler 构造 EmployerHandler。
func NewEmployerHandler(db *gorm.DB, logger *slog.Logger) *EmployerHandler {
	return &EmployerHandler{db: db, logger: logger}
}

// Profile 返回部门名、电话与邮箱。
func (h *EmployerHandler) Profile(c *gin.Context) {
	employerID := c.Param("id")
	if !ownSubject(c, employerID) {
		Forbidden(c, "접근 권한이 없습니다.")
		return
	}

	var employer database.Employer
	if err := h.db.WithContext(c.Request.Context()).First(&employer, "id = ?", employerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "해당 기업 정보를 찾을 수 없습니다.")
			return
		}
		middleware.LoggerFromContext(c).Error("load employer failed", slog.Any("error", err))
		Internal(c)
		return
	}

	OK(c, gin.H{"profile": gin.H{
		"id":              employer.ID,
		"department_name": employer.DepartmentName,
		"phone_number":    employer.PhoneNumber,
		"email":           employer.Email,
	}})
}

type employerProfileUpdateRequest struct {
	PhoneNumber string `json:"phone_number"`
	Email       string `json:"email"`
}

// UpdateProfile 更新联系方式。部门名不可改，换名等于换账号。
func (h *EmployerHandler) UpdateProfile(c *gin.Context) {
	employerID := c.Param("id")
	if !ownSubject(c, employerID) {
		Forbidden(c, "접근 권한이 없습니다.")
		return
	}

	var req employerProfileUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "모든 필드를 입력해주세요.")
		return
	}
	if req.Email != "" && !validation.IsEmail(req.Email) {
		BadRequest(c, "올바른 이메일 형식이 아닙니다.")
		return
	}
	phone := validation.NormalizePhone(req.PhoneNumber)

	result := h.db.WithContext(c.Request.Context()).
		Model(&database.Employer{}).
		Where("id = ?", employerID).
		Updates(map[string]any{"phone_number": phone, "email": req.Email})
	if result.Error != nil {
		middleware.LoggerFromContext(c).Error("update employer failed", slog.Any("error", result.Error))
		Internal(c)
		return
	}
	if result.RowsAffected == 0 {
		NotFound(c, "해당 기업 정보를 찾을 수 없습니다.")
		return
	}
	OK(c, gin.H{"message": "기업 정보가 수정되었습니다."})
}

// Delete 注销账号。申请、公告、账号三层在一个事务里一起删，
// 原子性同生共死，不留半截数据。
func (h *EmployerHandler) Delete(c *gin.Context) {
	employerID := c.Param("id")
	if !ownSubject(c, employerID) {
		Forbidden(c, "접근 권한이 없습니다.")
		return
	}

	var deleted int64
	err := h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		postingIDs := tx.Model(&database.JobPosting{}).Select("id").Where("employer_id = ?", employerID)
		if err := tx.Where("job_posting_id IN (?)", postingIDs).
			Delete(&database.Application{}).Error; err != nil {
			return err
		}
		if err := tx.Where("employer_id = ?", employerID).
			Delete(&database.JobPosting{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", employerID).Delete(&database.Employer{})
		if result.Error != nil {
			return result.Error
		}
		deleted = result.RowsAffected
		return nil
	})
	if err != nil {
		middleware.LoggerFromContext(c).Error("delete employer failed", slog.Any("error", err))
		Internal(c)
		return
	}
	if deleted == 0 {
		NotFound(c, "해당 기업 정보를 찾을 수 없습니다.")
		return
	}
	OK(c, gin.H{"message": "회원 탈퇴가 완료되었습니다."})
}
