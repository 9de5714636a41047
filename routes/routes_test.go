package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/chinaharsle/stock-machine/config"
	"github.com/chinaharsle/stock-machine/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf(
		"file:%s?mode=memory&cache=shared&_busy_timeout=10000&_txlock=immediate",
		uuid.NewString(),
	)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.AdminUser{},
		&models.BootstrapMarker{},
		&models.Machine{},
		&models.Banner{},
		&models.Inquiry{},
	))

	cfg := &config.Config{
		JWTSecretKey: "routes-test-secret",
		SiteURL:      "http://localhost:8080",
		UploadDir:    t.TempDir(),
	}
	return SetupRouter(db, cfg, nil), db
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// register+login 返回令牌
func obtainToken(t *testing.T, r *gin.Engine, email string) string {
	t.Helper()

	w := doJSON(t, r, http.MethodPost, "/api/auth/register", "", gin.H{
		"email":    email,
		"password": "secret123",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(t, r, http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    email,
		"password": "secret123",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Data.Token)
	return resp.Data.Token
}

func TestPing(t *testing.T) {
	r, _ := setupTestRouter(t)

	w := doJSON(t, r, http.MethodGet, "/api/ping", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "pong")
}

// TestFirstLoginBecomesAdmin 首个登录的账户被引导为管理员，
// 之后登录的账户是普通用户，访问管理接口被拒绝。
func TestFirstLoginBecomesAdmin(t *testing.T) {
	r, _ := setupTestRouter(t)

	adminToken := obtainToken(t, r, "first@test.local")
	userToken := obtainToken(t, r, "second@test.local")

	// 管理员可以访问管理接口
	w := doJSON(t, r, http.MethodGet, "/api/admin/machines", adminToken, nil)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// 普通用户被拒绝
	w = doJSON(t, r, http.MethodGet, "/api/admin/machines", userToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// 无令牌
	w = doJSON(t, r, http.MethodGet, "/api/admin/machines", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// 伪造令牌
	w = doJSON(t, r, http.MethodGet, "/api/admin/machines", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// TestMachineReorderFlow 走一遍创建和三种排序接口
func TestMachineReorderFlow(t *testing.T) {
	r, db := setupTestRouter(t)
	token := obtainToken(t, r, "admin@test.local")

	// 创建三台机器
	for _, mod := range []string{"A", "B", "C"} {
		w := doJSON(t, r, http.MethodPost, "/api/admin/machines", token, gin.H{"model": mod})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}

	ids := map[string]string{}
	var machines []models.Machine
	require.NoError(t, db.Order("sort_order ASC").Find(&machines).Error)
	require.Len(t, machines, 3)
	for _, m := range machines {
		ids[m.Model] = m.ID
	}

	// 相对移动：C上移
	w := doJSON(t, r, http.MethodPost, "/api/admin/machines/reorder", token, gin.H{
		"machineId": ids["C"],
		"direction": "up",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// 指定位置：B到第1位
	w = doJSON(t, r, http.MethodPut, "/api/admin/machines/reorder", token, gin.H{
		"machineId": ids["B"],
		"sortOrder": 1,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// 整体重排
	w = doJSON(t, r, http.MethodPatch, "/api/admin/machines/reorder", token, gin.H{
		"machineIds": []string{ids["C"], ids["A"], ids["B"]},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	require.NoError(t, db.Order("sort_order ASC").Find(&machines).Error)
	got := []string{machines[0].Model, machines[1].Model, machines[2].Model}
	assert.Equal(t, []string{"C", "A", "B"}, got)

	// 越界的指定位置
	w = doJSON(t, r, http.MethodPut, "/api/admin/machines/reorder", token, gin.H{
		"machineId": ids["B"],
		"sortOrder": 99,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// 顶部机器上移触达边界
	w = doJSON(t, r, http.MethodPost, "/api/admin/machines/reorder", token, gin.H{
		"machineId": ids["C"],
		"direction": "up",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// 公开目录按最终顺序返回
	w = doJSON(t, r, http.MethodGet, "/api/machines", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var pub struct {
		Data []models.PublicMachine `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &pub))
	require.Len(t, pub.Data, 3)
	assert.Equal(t, "C", pub.Data[0].Model)
}

// TestInquirySubmission 公开询盘入口
func TestInquirySubmission(t *testing.T) {
	r, db := setupTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/inquiries", "", gin.H{
		"full_name": "王工",
		"email":     "buyer@example.com",
		"message":   "请报价",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var count int64
	require.NoError(t, db.Model(&models.Inquiry{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	// 缺少必填字段
	w = doJSON(t, r, http.MethodPost, "/api/inquiries", "", gin.H{"email": "x@example.com"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
