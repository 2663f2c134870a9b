package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"campusjob/internal/api/middleware"
	"campusjob/internal/auth"
	"campusjob/internal/database"
	"campusjob/internal/validation"
)

const refreshTokenBlacklistKeyPrefix = "auth:refresh:blacklist:"

// AccountHandler 处理可用性校验、注册、登录、刷新与退出。
type AccountHandler struct {
	db                    *gorm.DB
	authService           *auth.AuthService
	redis                 redis.UniversalClient
	logger                *slog.Logger
	loginRateLimitPerHour int
	loginLockThreshold    int
	loginLockTTL          time.Duration
}

// NewAccountHandler 构造账号处理器。
func NewAccountHandler(db *gorm.DB, authService *auth.AuthService, redisClient redis.UniversalClient, logger *slog.Logger, loginRateLimitPerHour, loginLockThreshold int, loginLockTTL time.Duration) *AccountHandler {
	return &AccountHandler{
		db:                    db,
		authService:           authService,
		redis:                 redisClient,
		logger:                logger,
		loginRateLimitPerHour: loginRateLimitPerHour,
		loginLockThreshold:    loginLockThreshold,
		loginLockTTL:          loginLockTTL,
	}
}

type validateJobSeekerRequest struct {
	StudentID string `json:"studentId" binding:"required"`
	Email     string `json:"email" binding:"required"`
}

// ValidateJobSeeker 检查学号或邮箱是否已被占用，不产生任何写入。
func (h *AccountHandler) ValidateJobSeeker(c *gin.Context) {
	var req validateJobSeekerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "모든 필드를 입력해주세요.")
		return
	}

	ctx := c.Request.Context()
	var count int64
	if err := h.db.WithContext(ctx).Model(&database.JobSeeker{}).
		Where("id = ? OR email = ?", req.StudentID, req.Email).
		Count(&count).Error; err != nil {
		h.loggerFromContext(c).Error("validate jobseeker lookup failed", slog.Any("error", err))
		c.JSON(http.StatusInternalServerError, gin.H{"isValid": false, "message": msgServerError})
		return
	}

	if count > 0 {
		c.JSON(http.StatusOK, gin.H{"isValid": false, "message": "이미 등록된 학번 또는 이메일입니다."})
		return
	}
	c.JSON(http.StatusOK, gin.H{"isValid": true, "message": "유효성 검사 통과"})
}

type validateEmployerRequest struct {
	ID string `json:"id" binding:"required"`
}

// ValidateEmployer 检查部门账号 ID 是否已被占用。
func (h *AccountHandler) ValidateEmployer(c *gin.Context) {
	var req validateEmployerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "모든 필드를 입력해주세요.")
		return
	}

	ctx := c.Request.Context()
	var count int64
	if err := h.db.WithContext(ctx).Model(&database.Employer{}).
		Where("id = ?", req.ID).
		Count(&count).Error; err != nil {
		h.loggerFromContext(c).Error("validate employer lookup failed", slog.Any("error", err))
		c.JSON(http.StatusInternalServerError, gin.H{"isValid": false, "message": msgServerError})
		return
	}

	if count > 0 {
		c.JSON(http.StatusOK, gin.H{"isValid": false, "message": "이미 등록된 아이디입니다."})
		return
	}
	c.JSON(http.StatusOK, gin.H{"isValid": true, "message": "유효성 검사 통과"})
}

type signupJobSeekerRequest struct {
	StudentID string `json:"studentId" binding:"required"`
	Email     string `json:"email" binding:"required"`
	Password  string `json:"password" binding:"required"`
}

// SignupJobSeeker 注册求职者账号。唯一性除了先查一遍之外还有
// 主键/唯一索引兜底，并发重复提交不会落下重复行。
func (h *AccountHandler) SignupJobSeeker(c *gin.Context) {
	var req signupJobSeekerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "모든 필드를 입력해주세요.")
		return
	}
	if err := validation.JobSeekerSignup(req.StudentID, req.Email, req.Password); err != nil {
		BadRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()
	logger := h.loggerFromContext(c).With(slog.String("job_seeker_id", req.StudentID))

	hashed, err := h.authService.HashPassword(req.Password)
	if err != nil {
		logger.Error("hash password failed", slog.Any("error", err))
		Internal(c)
		return
	}

	seeker := database.JobSeeker{
		ID:           req.StudentID,
		Email:        req.Email,
		PasswordHash: hashed,
	}
	if err := h.db.WithContext(ctx).Create(&seeker).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			Declined(c, "이미 등록된 학번 또는 이메일입니다.")
			return
		}
		logger.Error("create job seeker failed", slog.Any("error", err))
		Internal(c)
		return
	}

	logger.Info("job seeker registered")
	OK(c, gin.H{"message": "구직자 회원가입이 완료되었습니다."})
}

type signupEmployerRequest struct {
	ID             string `json:"id" binding:"required"`
	Password       string `json:"password" binding:"required"`
	DepartmentName string `json:"departmentName" binding:"required"`
}

// SignupEmployer 注册部门（用人方）账号。
func (h *AccountHandler) SignupEmployer(c *gin.Context) {
	var req signupEmployerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "모든 필드를 입력해주세요.")
		return
	}
	if err := validation.EmployerSignup(req.ID, req.DepartmentName, req.Password); err != nil {
		BadRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()
	logger := h.loggerFromContext(c).With(slog.String("employer_id", req.ID))

	hashed, err := h.authService.HashPassword(req.Password)
	if err != nil {
		logger.Error("hash password failed", slog.Any("error", err))
		Internal(c)
		return
	}

	employer := database.Employer{
		ID:             req.ID,
		PasswordHash:   hashed,
		DepartmentName: req.DepartmentName,
	}
	if err := h.db.WithContext(ctx).Create(&employer).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			Declined(c, "이미 등록된 아이디입니다.")
			return
		}
		logger.Error("create employer failed", slog.Any("error", err))
		Internal(c)
		return
	}

	logger.Info("employer registered")
	OK(c, gin.H{"message": "구인자 회원가입이 완료되었습니다."})
}

type loginRequest struct {
	UserType string `json:"userType" binding:"required"`
	ID       string `json:"id" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login 按角色查对应表、校验 bcrypt 哈希，成功后签发令牌对。
// 失败统一回"아이디 또는 비밀번호가 올바르지 않습니다"，不区分账号不存在与密码错误。
func (h *AccountHandler) Login(c *gin.Context) {
	ip := c.ClientIP()
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "모든 필드를 입력해주세요.")
		return
	}
	if !auth.ValidRole(req.UserType) {
		BadRequest(c, "유효하지 않은 사용자 유형입니다.")
		return
	}

	ctx := c.Request.Context()
	logger := h.loggerFromContext(c).With(
		slog.String("user_type", req.UserType),
		slog.String("login_id", req.ID),
	)

	// 速率限制：每 IP+账号 每小时 N 次
	loginID := strings.ToLower(req.ID)
	rateKey := "rate:login:" + ip + ":" + loginID + ":" + time.Now().UTC().Format("2006010215")
	count, err := incrWithTTL(ctx, h.redis, rateKey, time.Hour)
	if err != nil {
		count = 0
	}
	if count > int64(h.loginRateLimitPerHour) {
		c.JSON(http.StatusTooManyRequests, gin.H{"success": false, "message": "요청이 너무 많습니다. 잠시 후 다시 시도해주세요."})
		return
	}

	// 锁定检查
	lockKey := "lock:login:" + loginID
	if ttl, _ := h.redis.TTL(ctx, lockKey).Result(); ttl > 0 {
		c.JSON(http.StatusTooManyRequests, gin.H{"success": false, "message": "계정이 일시적으로 잠겼습니다. 잠시 후 다시 시도해주세요."})
		return
	}

	passwordHash, found, err := h.lookupCredential(ctx, req.UserType, req.ID)
	if err != nil {
		logger.Error("login query failed", slog.Any("error", err))
		Internal(c)
		return
	}
	if !found {
		logger.Info("login failed: account not found")
		_ = h.incrementLoginFail(ctx, loginID)
		Unauthorized(c)
		return
	}

	if !h.authService.CheckPasswordHash(req.Password, passwordHash) {
		logger.Info("login failed: password mismatch")
		_ = h.incrementLoginFail(ctx, loginID)
		Unauthorized(c)
		return
	}

	// 登录成功：清理失败计数
	_ = h.redis.Del(ctx, "lock:login:fail:"+loginID).Err()

	tokenPair, err := h.authService.GenerateTokenPair(req.ID, req.UserType)
	if err != nil {
		logger.Error("generate token pair failed", slog.Any("error", err))
		Internal(c)
		return
	}

	logger.Info("login succeeded")
	OK(c, gin.H{
		"userType":     req.UserType,
		"message":      "로그인 성공",
		"accessToken":  tokenPair.AccessToken,
		"refreshToken": tokenPair.RefreshToken,
		"tokenType":    "Bearer",
		"expiresIn":    int(h.authService.AccessTokenTTL().Seconds()),
	})
}

func (h *AccountHandler) lookupCredential(ctx context.Context, role, id string) (hash string, found bool, err error) {
	var queryErr error
	switch role {
	case auth.RoleJobSeeker:
		var account database.JobSeeker
		queryErr = h.db.WithContext(ctx).First(&account, "id = ?", id).Error
		hash = account.PasswordHash
	case auth.RoleEmployer:
		var account database.Employer
		queryErr = h.db.WithContext(ctx).First(&account, "id = ?", id).Error
		hash = account.PasswordHash
	case auth.RoleManager:
		var account database.Manager
		queryErr = h.db.WithContext(ctx).First(&account, "id = ?", id).Error
		hash = account.PasswordHash
	}
	if queryErr != nil {
		if errors.Is(queryErr, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, queryErr
	}
	return hash, true, nil
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// Refresh 校验刷新令牌并颁发新的令牌对，旧令牌立即作废。
func (h *AccountHandler) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		NeedLogin(c)
		return
	}

	ctx := c.Request.Context()
	logger := h.loggerFromContext(c)

	claims, err := h.authService.ValidateToken(req.RefreshToken)
	if err != nil || claims.TokenType != "refresh" || claims.ID == "" {
		logger.Info("refresh token invalid")
		NeedLogin(c)
		return
	}

	key := refreshTokenBlacklistKeyPrefix + claims.ID
	if err := h.redis.Get(ctx, key).Err(); err == nil {
		logger.Info("refresh token revoked", slog.String("jti", claims.ID))
		NeedLogin(c)
		return
	} else if !errors.Is(err, redis.Nil) {
		logger.Error("refresh token blacklist lookup failed", slog.Any("error", err))
		Internal(c)
		return
	}

	// 账号仍需存在（可能已被管理员删除）。
	if _, found, err := h.lookupCredential(ctx, claims.Role, claims.Subject); err != nil {
		logger.Error("refresh account lookup failed", slog.Any("error", err))
		Internal(c)
		return
	} else if !found {
		NeedLogin(c)
		return
	}

	tokenPair, err := h.authService.GenerateTokenPair(claims.Subject, claims.Role)
	if err != nil {
		logger.Error("refresh generate token pair failed", slog.Any("error", err))
		Internal(c)
		return
	}

	// 旋转旧刷新令牌，防止重复使用。
	if err := h.revokeRefreshToken(ctx, key, claims.ExpiresAt.Time); err != nil {
		logger.Error("refresh revoke old token failed", slog.Any("error", err))
		Internal(c)
		return
	}

	OK(c, gin.H{
		"accessToken":  tokenPair.AccessToken,
		"refreshToken": tokenPair.RefreshToken,
		"tokenType":    "Bearer",
		"expiresIn":    int(h.authService.AccessTokenTTL().Seconds()),
	})
}

// Logout 将刷新令牌加入黑名单，防止继续使用。
func (h *AccountHandler) Logout(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "refresh token missing")
		return
	}

	ctx := c.Request.Context()
	logger := h.loggerFromContext(c)

	claims, err := h.authService.ValidateToken(req.RefreshToken)
	if err != nil || claims.TokenType != "refresh" || claims.ID == "" {
		logger.Info("logout token invalid")
		NeedLogin(c)
		return
	}

	key := refreshTokenBlacklistKeyPrefix + claims.ID
	if err := h.revokeRefreshToken(ctx, key, claims.ExpiresAt.Time); err != nil {
		logger.Error("logout revoke token failed", slog.Any("error", err))
		Internal(c)
		return
	}

	OK(c, nil)
}

func (h *AccountHandler) revokeRefreshToken(ctx context.Context, key string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		ttl = time.Second
	}
	return h.redis.Set(ctx, key, "revoked", ttl).Err()
}

func (h *AccountHandler) incrementLoginFail(ctx context.Context, loginID string) error {
	failKey := "lock:login:fail:" + loginID
	count, err := h.redis.Incr(ctx, failKey).Result()
	if err != nil {
		return err
	}
	if count == 1 {
		_ = h.redis.Expire(ctx, failKey, h.loginLockTTL).Err()
	}
	if count >= int64(h.loginLockThreshold) {
		_ = h.redis.Set(ctx, "lock:login:"+loginID, "1", h.loginLockTTL).Err()
	}
	return nil
}

func (h *AccountHandler) loggerFromContext(c *gin.Context) *slog.Logger {
	if logger := middleware.LoggerFromContext(c); logger != nil {
		return logger
	}
	if h.logger != nil {
		return h.logger
	}
	return slog.Default()
}
