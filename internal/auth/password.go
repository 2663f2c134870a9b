package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// 校内账号均为本地口令，bcrypt 默认成本足够。
const passwordHashCost = bcrypt.DefaultCost

// HashPassword 使用 bcrypt 生成密码哈希。
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), passwordHashCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(bytes), nil
}

// CheckPasswordHash 校验密码是否匹配哈希，供登录与管理员引导共用。
func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
