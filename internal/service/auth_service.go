package service

import (
	"errors"
	"wiki-qa-go/internal/config"
	"wiki-qa-go/pkg/log"
	"wiki-qa-go/pkg/token"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials 表示用户名或密码错误。
var ErrInvalidCredentials = errors.New("invalid credentials")

// AuthService 定义了管理员认证的业务接口。
// 服务只有一个管理员账号，凭据来自配置文件（密码为 bcrypt 哈希）。
type AuthService interface {
	Login(username, password string) (string, error)
}

type authService struct {
	adminCfg   config.AdminConfig
	jwtManager *token.JWTManager
}

// NewAuthService 创建一个新的 AuthService 实例。
func NewAuthService(adminCfg config.AdminConfig, jwtManager *token.JWTManager) AuthService {
	return &authService{
		adminCfg:   adminCfg,
		jwtManager: jwtManager,
	}
}

// Login 校验管理员凭据并签发 access token。
func (s *authService) Login(username, password string) (string, error) {
	if username != s.adminCfg.Username {
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.adminCfg.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	accessToken, err := s.jwtManager.GenerateToken(username, "admin")
	if err != nil {
		log.Error("签发 access token 失败", err)
		return "", err
	}
	return accessToken, nil
}
