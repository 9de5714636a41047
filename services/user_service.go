package services

import (
	"errors"
	"fmt"

	"github.com/chinaharsle/stock-machine/models"

	"gorm.io/gorm"
)

// InterfaceUserService 定义登录账户服务接口
type InterfaceUserService interface {
	Register(email, password, name string) (*models.User, error)
	Authenticate(email, password string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
}

// UserService 维护登录账户（邮箱+密码）
type UserService struct {
	DB *gorm.DB
}

// NewUserService 创建账户服务
func NewUserService(db *gorm.DB) *UserService {
	return &UserService{DB: db}
}

// Register 注册新账户
func (s *UserService) Register(email, password, name string) (*models.User, error) {
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: 邮箱和密码不能为空", ErrInvalidArgument)
	}
	if len(password) < 8 {
		return nil, fmt.Errorf("%w: 密码长度至少8位", ErrInvalidArgument)
	}

	hashed, err := models.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("密码加密失败: %w", err)
	}

	user := &models.User{
		Email:    email,
		Password: hashed,
		Name:     name,
	}
	if err := s.DB.Create(user).Error; err != nil {
		if IsDuplicateKey(err) {
			return nil, fmt.Errorf("%w: 邮箱已被注册", ErrAlreadyExists)
		}
		return nil, err
	}
	return user, nil
}

// Authenticate 校验邮箱和密码，成功返回账户
func (s *UserService) Authenticate(email, password string) (*models.User, error) {
	var user models.User
	if err := s.DB.Where("email = ?", email).Take(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: 邮箱或密码错误", ErrNotFound)
		}
		return nil, err
	}
	if !models.CheckPassword(user.Password, password) {
		return nil, fmt.Errorf("%w: 邮箱或密码错误", ErrNotFound)
	}
	return &user, nil
}

// GetUserByID 根据ID获取账户
func (s *UserService) GetUserByID(id string) (*models.User, error) {
	var user models.User
	if err := s.DB.Where("id = ?", id).Take(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: 用户不存在", ErrNotFound)
		}
		return nil, err
	}
	return &user, nil
}
