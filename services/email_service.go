package services

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/chinaharsle/stock-machine/config"
	"github.com/chinaharsle/stock-machine/models"

	"gopkg.in/gomail.v2"
)

// InterfaceEmailService 定义邮件通知服务接口
type InterfaceEmailService interface {
	SendInquiryNotification(inquiry *models.Inquiry, specs models.JSONMap) error
}

// EmailService 通过SMTP发送询盘通知邮件（阿里云邮件推送）
type EmailService struct {
	Config *config.Config
	dialer *gomail.Dialer
}

// NewEmailService 创建邮件服务
func NewEmailService(cfg *config.Config) *EmailService {
	return &EmailService{
		Config: cfg,
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword),
	}
}

// 询盘通知邮件模板
var inquiryEmailTemplate = template.Must(template.New("inquiry").Parse(`<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>新的询盘通知</title>
    <style>
        body { font-family: 'Helvetica Neue', Arial, sans-serif; color: #333; margin: 0; padding: 0; background-color: #f5f5f5; }
        .container { max-width: 600px; margin: 20px auto; background: #ffffff; border-radius: 8px; overflow: hidden; }
        .header { background: #1a56db; color: #ffffff; padding: 24px; }
        .header h1 { margin: 0; font-size: 20px; }
        .content { padding: 24px; }
        .field { margin-bottom: 12px; }
        .label { font-weight: bold; color: #555; }
        .specs { background: #f8fafc; border-radius: 6px; padding: 12px; margin-top: 16px; }
        .spec-item { padding: 4px 0; border-bottom: 1px solid #e2e8f0; }
        .footer { padding: 16px 24px; font-size: 12px; color: #888; background: #f8fafc; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header"><h1>新的询盘通知</h1></div>
        <div class="content">
            <div class="field"><span class="label">客户姓名:</span> {{.FullName}}</div>
            <div class="field"><span class="label">邮箱:</span> {{.Email}}</div>
            <div class="field"><span class="label">电话:</span> {{.Phone}}</div>
            {{if .CompanyName}}<div class="field"><span class="label">公司:</span> {{.CompanyName}}</div>{{end}}
            {{if .ProductModel}}<div class="field"><span class="label">咨询产品:</span> {{.ProductModel}}</div>{{end}}
            <div class="field"><span class="label">留言内容:</span><br>{{.Message}}</div>
            {{if .IPAddress}}<div class="field"><span class="label">来源IP:</span> {{.IPAddress}} {{.Country}}</div>{{end}}
            {{if .Specs}}
            <div class="specs">
                <div class="label">产品参数</div>
                {{range $key, $value := .Specs}}
                <div class="spec-item">{{$key}}: {{$value}}</div>
                {{end}}
            </div>
            {{end}}
        </div>
        <div class="footer">提交时间: {{.SubmittedAt}} (北京时间)</div>
    </div>
</body>
</html>`))

type inquiryEmailData struct {
	FullName     string
	Email        string
	Phone        string
	CompanyName  string
	Message      string
	ProductModel string
	IPAddress    string
	Country      string
	Specs        models.JSONMap
	SubmittedAt  string
}

// SendInquiryNotification 向销售邮箱发送询盘通知
func (s *EmailService) SendInquiryNotification(inquiry *models.Inquiry, specs models.JSONMap) error {
	if s.Config.SMTPUser == "" || s.Config.SalesEmail == "" {
		return fmt.Errorf("SMTP未配置，跳过询盘通知")
	}

	loc, err := time.LoadLocation("Asia/Shanghai")
	if err != nil {
		loc = time.UTC
	}

	data := inquiryEmailData{
		FullName:     inquiry.FullName,
		Email:        inquiry.Email,
		Phone:        inquiry.Phone,
		CompanyName:  inquiry.CompanyName,
		Message:      inquiry.Message,
		ProductModel: inquiry.ProductModel,
		IPAddress:    inquiry.IPAddress,
		Country:      inquiry.Country,
		Specs:        specs,
		SubmittedAt:  time.Now().In(loc).Format("2006-01-02 15:04"),
	}

	var body bytes.Buffer
	if err := inquiryEmailTemplate.Execute(&body, data); err != nil {
		return fmt.Errorf("渲染询盘邮件模板失败: %w", err)
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", s.Config.SMTPUser)
	msg.SetHeader("To", s.Config.SalesEmail)
	msg.SetHeader("Reply-To", inquiry.Email)
	subject := "新的询盘通知"
	if inquiry.ProductModel != "" {
		subject = fmt.Sprintf("新的询盘通知 - %s", inquiry.ProductModel)
	}
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body.String())

	if err := s.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("发送询盘邮件失败: %w", err)
	}

	config.Info("询盘通知邮件已发送: %s -> %s", inquiry.Email, s.Config.SalesEmail)
	return nil
}
