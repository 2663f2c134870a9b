package api

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"campusjob/internal/api/middleware"
	"campusjob/internal/auth"
	"campusjob/internal/database"
)

// ManagerHandler 负责管理员侧的用户与公告治理。
type ManagerHandler struct {
	db      *gorm.DB
	storage ObjectStorage
	logger  *slog.Logger
}

// NewManagerHandler 构造 ManagerHandler。
func NewManagerHandler(db *gorm.DB, storage ObjectStorage, logger *slog.Logger) *ManagerHandler {
	return &ManagerHandler{db: db, storage: storage, logger: logger}
}

// ListUsers 按类型列出账号。type=all|employer|jobSeeker。
func (h *ManagerHandler) ListUsers(c *gin.Context) {
	userType := c.DefaultQuery("type", "all")
	if userType != "all" && userType != auth.RoleJobSeeker && userType != auth.RoleEmployer {
		BadRequest(c, "유효하지 않은 사용자 유형입니다.")
		return
	}

	ctx := c.Request.Context()
	logger := middleware.LoggerFromContext(c)

	users := make([]gin.H, 0)

	if userType == "all" || userType == auth.RoleJobSeeker {
		var seekers []database.JobSeeker
		if err := h.db.WithContext(ctx).Order("created_at DESC").Find(&seekers).Error; err != nil {
			logger.Error("list job seekers failed", slog.Any("error", err))
			Internal(c)
			return
		}
		for _, s := range seekers {
			users = append(users, gin.H{
				"id":         s.ID,
				"email":      s.Email,
				"user_type":  auth.RoleJobSeeker,
				"created_at": s.CreatedAt,
			})
		}
	}

	if userType == "all" || userType == auth.RoleEmployer {
		var employers []database.Employer
		if err := h.db.WithContext(ctx).Order("created_at DESC").Find(&employers).Error; err != nil {
			logger.Error("list employers failed", slog.Any("error", err))
			Internal(c)
			return
		}
		for _, e := range employers {
			users = append(users, gin.H{
				"id":              e.ID,
				"department_name": e.DepartmentName,
				"email":           e.Email,
				"user_type":       auth.RoleEmployer,
				"created_at":      e.CreatedAt,
			})
		}
	}

	OK(c, gin.H{"count": len(users), "users": users})
}

// DeleteUser 删除一个账号并级联清掉其全部关联数据。
// 求职者还会顺带清理对象存储里的档案图片。
func (h *ManagerHandler) DeleteUser(c *gin.Context) {
	userType := c.Param("type")
	userID := c.Param("id")
	logger := middleware.LoggerFromContext(c)
	ctx := c.Request.Context()

	var deleted int64
	var err error

	switch userType {
	case auth.RoleEmployer:
		err = h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			postingIDs := tx.Model(&database.JobPosting{}).Select("id").Where("employer_id = ?", userID)
			if err := tx.Where("job_posting_id IN (?)", postingIDs).
				Delete(&database.Application{}).Error; err != nil {
				return err
			}
			if err := tx.Where("employer_id = ?", userID).
				Delete(&database.JobPosting{}).Error; err != nil {
				return err
			}
			result := tx.Where("id = ?", userID).Delete(&database.Employer{})
			if result.Error != nil {
				return result.Error
			}
			deleted = result.RowsAffected
			return nil
		})
	case auth.RoleJobSeeker:
		err = h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			for _, model := range []any{
				&database.Application{},
				&database.CareerStatement{},
				&database.Certification{},
				&database.ExperienceActivity{},
				&database.Education{},
				&database.BasicInfo{},
			} {
				if err := tx.Where("job_seeker_id = ?", userID).Delete(model).Error; err != nil {
					return err
				}
			}
			result := tx.Where("id = ?", userID).Delete(&database.JobSeeker{})
			if result.Error != nil {
				return result.Error
			}
			deleted = result.RowsAffected
			return nil
		})
		if err == nil && deleted > 0 {
			// 图片清理失败不回滚账号删除，只记日志。
			prefix := fmt.Sprintf("profile-images/%s/", userID)
			if cleanupErr := h.storage.DeletePrefix(ctx, prefix); cleanupErr != nil {
				logger.Warn("cleanup profile images failed",
					slog.String("prefix", prefix), slog.Any("error", cleanupErr))
			}
		}
	default:
		BadRequest(c, "유효하지 않은 사용자 유형입니다.")
		return
	}

	if err != nil {
		logger.Error("delete user failed", slog.Any("error", err))
		Internal(c)
		return
	}
	if deleted == 0 {
		NotFound(c, "해당 사용자를 찾을 수 없습니다.")
		return
	}
	OK(c, gin.H{"message": "사용자가 삭제되었습니다."})
}

func postingSummary(p database.JobPosting) gin.H {
	return gin.H{
		"id":           p.ID,
		"title":        p.Title,
		"contents":     p.Contents,
		"company_name": p.CompanyName,
	}
}

// ListAllPostings 列出全部公告的治理摘要。
func (h *ManagerHandler) ListAllPostings(c *gin.Context) {
	var postings []database.JobPosting
	if err := h.db.WithContext(c.Request.Context()).
		Order("created_at DESC").
		Find(&postings).Error; err != nil {
		middleware.LoggerFromContext(c).Error("list postings failed", slog.Any("error", err))
		Internal(c)
		return
	}

	items := make([]gin.H, 0, len(postings))
	for _, p := range postings {
		items = append(items, postingSummary(p))
	}
	OK(c, gin.H{"posts": items})
}

// SearchPostings 按类别关键词检索公告。
// category: 1=标题, 2=内容, 3=单位名。
func (h *ManagerHandler) SearchPostings(c *gin.Context) {
	keyword := c.Query("keyword")
	var column string
	switch c.Query("category") {
	case "1":
		column = "title"
	case "2":
		column = "contents"
	case "3":
		column = "company_name"
	default:
		BadRequest(c, "잘못된 검색 카테고리입니다.")
		return
	}

	var postings []database.JobPosting
	if err := h.db.WithContext(c.Request.Context()).
		Where(column+" LIKE ?", "%"+keyword+"%").
		Order("created_at DESC").
		Find(&postings).Error; err != nil {
		middleware.LoggerFromContext(c).Error("search postings failed", slog.Any("error", err))
		Internal(c)
		return
	}

	items := make([]gin.H, 0, len(postings))
	for _, p := range postings {
		items = append(items, postingSummary(p))
	}
	OK(c, gin.H{"posts": items})
}

// DeletePosting 管理员强制下架公告，连同其申请一起删。
func (h *ManagerHandler) DeletePosting(c *gin.Context) {
	postingID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		BadRequest(c, "잘못된 공고 ID입니다.")
		return
	}

	var deleted int64
	err = h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("job_posting_id = ?", uint(postingID)).
			Delete(&database.Application{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&database.JobPosting{}, uint(postingID))
		if result.Error != nil {
			return result.Error
		}
		deleted = result.RowsAffected
		return nil
	})
	if err != nil {
		middleware.LoggerFromContext(c).Error("delete posting failed", slog.Any("error", err))
		Internal(c)
		return
	}
	if deleted == 0 {
		NotFound(c, "해당 게시글을 찾을 수 없습니다.")
		return
	}
	OK(c, gin.H{"message": "게시글이 삭제되었습니다."})
}
