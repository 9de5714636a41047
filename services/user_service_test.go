package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndAuthenticate(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)

	user, err := svc.Register("user@test.local", "secret123", "测试用户")
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.NotEqual(t, "secret123", user.Password, "密码必须哈希存储")

	// 正确密码
	got, err := svc.Authenticate("user@test.local", "secret123")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	// 错误密码和未知邮箱都返回同一类错误
	_, err = svc.Authenticate("user@test.local", "wrongpass")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.Authenticate("ghost@test.local", "secret123")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRegisterValidation(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)

	// 密码太短
	_, err := svc.Register("short@test.local", "123", "")
	assert.ErrorIs(t, err, ErrInvalidArgument)

	// 邮箱为空
	_, err = svc.Register("", "secret123", "")
	assert.ErrorIs(t, err, ErrInvalidArgument)

	// 邮箱唯一
	_, err = svc.Register("dup@test.local", "secret123", "")
	require.NoError(t, err)
	_, err = svc.Register("dup@test.local", "secret456", "")
	assert.ErrorIs(t, err, ErrAlreadyExists)
}
