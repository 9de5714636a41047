package services

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/chinaharsle/stock-machine/config"
	"github.com/chinaharsle/stock-machine/models"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
)

// 管理端通知主题
const (
	TopicAdminInquiry = "stock_machine/admin/inquiry"
	TopicAdminSystem  = "stock_machine/admin/system"
)

// InterfaceNotificationService 定义管理端MQTT通知服务接口
type InterfaceNotificationService interface {
	Connect() error
	Disconnect()
	PublishInquiryNotification(inquiry *models.Inquiry) error
	PublishSystemMessage(messageType string, payload map[string]interface{}) error
}

// NotificationService 通过MQTT向管理端推送实时通知
type NotificationService struct {
	Config         *config.Config
	Client         mqtt.Client
	IsConnected    bool
	connectedMutex sync.RWMutex // 保护IsConnected字段的读写
	publishMutex   sync.Mutex   // 保护消息发布
}

// NotificationMessage MQTT通知消息基础结构
type NotificationMessage struct {
	Type      string                 `json:"type"`
	Timestamp int64                  `json:"timestamp"`
	Payload   map[string]interface{} `json:"payload"`
}

// NewNotificationService 创建通知服务
func NewNotificationService(cfg *config.Config) *NotificationService {
	return &NotificationService{
		Config: cfg,
	}
}

// Connect 连接MQTT服务器。未配置Broker地址时直接返回错误，
// 调用方可以选择继续运行（通知属于尽力而为）。
func (s *NotificationService) Connect() error {
	if s.Config.MQTTBrokerURL == "" {
		return fmt.Errorf("未配置MQTT Broker地址")
	}

	opts := mqtt.NewClientOptions().
		AddBroker(s.Config.MQTTBrokerURL).
		SetClientID(fmt.Sprintf("stock-machine-%s", uuid.NewString()[:8])).
		SetUsername(s.Config.MQTTUsername).
		SetPassword(s.Config.MQTTPassword).
		SetAutoReconnect(true).
		SetConnectTimeout(10 * time.Second).
		SetKeepAlive(30 * time.Second)

	opts.OnConnect = func(client mqtt.Client) {
		s.connectedMutex.Lock()
		s.IsConnected = true
		s.connectedMutex.Unlock()
		config.Info("MQTT连接成功: %s", s.Config.MQTTBrokerURL)
	}
	opts.OnConnectionLost = func(client mqtt.Client, err error) {
		s.connectedMutex.Lock()
		s.IsConnected = false
		s.connectedMutex.Unlock()
		config.Warning("MQTT连接断开: %v", err)
	}

	s.Client = mqtt.NewClient(opts)
	token := s.Client.Connect()
	if !token.WaitTimeout(10*time.Second) || token.Error() != nil {
		return fmt.Errorf("连接MQTT服务器失败: %v", token.Error())
	}
	return nil
}

// Disconnect 断开MQTT连接
func (s *NotificationService) Disconnect() {
	if s.Client != nil && s.Client.IsConnected() {
		s.Client.Disconnect(250)
	}
	s.connectedMutex.Lock()
	s.IsConnected = false
	s.connectedMutex.Unlock()
}

// PublishInquiryNotification 推送新询盘通知
func (s *NotificationService) PublishInquiryNotification(inquiry *models.Inquiry) error {
	return s.publish(TopicAdminInquiry, NotificationMessage{
		Type:      "new_inquiry",
		Timestamp: time.Now().Unix(),
		Payload: map[string]interface{}{
			"inquiry_id":    inquiry.ID,
			"full_name":     inquiry.FullName,
			"email":         inquiry.Email,
			"product_model": inquiry.ProductModel,
			"country":       inquiry.Country,
		},
	})
}

// PublishSystemMessage 推送系统消息
func (s *NotificationService) PublishSystemMessage(messageType string, payload map[string]interface{}) error {
	return s.publish(TopicAdminSystem, NotificationMessage{
		Type:      messageType,
		Timestamp: time.Now().Unix(),
		Payload:   payload,
	})
}

func (s *NotificationService) publish(topic string, msg NotificationMessage) error {
	s.connectedMutex.RLock()
	connected := s.IsConnected && s.Client != nil
	s.connectedMutex.RUnlock()
	if !connected {
		return fmt.Errorf("MQTT未连接")
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("序列化MQTT消息失败: %w", err)
	}

	s.publishMutex.Lock()
	defer s.publishMutex.Unlock()
	token := s.Client.Publish(topic, 1, false, data)
	if !token.WaitTimeout(5*time.Second) || token.Error() != nil {
		return fmt.Errorf("发布MQTT消息失败: %v", token.Error())
	}
	return nil
}
