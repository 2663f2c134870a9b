package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// 所有接口统一回 {success, message?, ...payload}。
// 业务上的"拒绝"（重复报名、资料为空）也是 200，客户端按 body 分支。
const msgServerError = "서버 오류가 발생했습니다."

// OK 返回 200，payload 会与 success:true 合并。
func OK(c *gin.Context, payload gin.H) {
	body := gin.H{"success": true}
	for k, v := range payload {
		body[k] = v
	}
	c.JSON(http.StatusOK, body)
}

// Declined 返回 200 但 success:false，表示业务上被拒绝而非出错。
func Declined(c *gin.Context, msg string) {
	if msg == "" {
		c.JSON(http.StatusOK, gin.H{"success": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": false, "message": msg})
}

func fail(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"success": false, "message": msg})
}

func BadRequest(c *gin.Context, msg string) { fail(c, http.StatusBadRequest, msg) }
func NotFound(c *gin.Context, msg string)   { fail(c, http.StatusNotFound, msg) }
func Forbidden(c *gin.Context, msg string)  { fail(c, http.StatusForbidden, msg) }
func Internal(c *gin.Context)               { fail(c, http.StatusInternalServerError, msgServerError) }

func Unauthorized(c *gin.Context) {
	fail(c, http.StatusUnauthorized, "아이디 또는 비밀번호가 올바르지 않습니다.")
}

// NeedLogin 用于令牌缺失或失效的场景。
func NeedLogin(c *gin.Context) { fail(c, http.StatusUnauthorized, "로그인이 필요합니다.") }
