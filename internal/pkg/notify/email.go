package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"taskhub/internal/config"
	"taskhub/internal/model"

	"gopkg.in/gomail.v2"
)

// EmailNotifier 实现邮件通知。
type EmailNotifier struct {
	cfg    *config.EmailConfig
	logger *slog.Logger
}

// NewEmailNotifier 创建一个新的邮件通知器。
func NewEmailNotifier(cfg *config.EmailConfig, logger *slog.Logger) *EmailNotifier {
	return &EmailNotifier{
		cfg:    cfg,
		logger: logger,
	}
}

// SendTaskAssigned 发送任务指派邮件。SMTP 未配置时直接跳过。
func (n *EmailNotifier) SendTaskAssigned(ctx context.Context, toEmail string, title string, priority model.TaskPriority) error {
	if n.cfg.SMTPHost == "" || n.cfg.SMTPUser == "" || n.cfg.FromEmail == "" {
		n.logger.Warn("email config missing, skip notification")
		return nil
	}
	if strings.TrimSpace(toEmail) == "" {
		n.logger.Warn("email recipient empty, skip notification")
		return nil
	}

	m := gomail.NewMessage()
	m.SetHeader("From", n.cfg.FromEmail)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", "[TaskHub] 有新任务指派给你")
	m.SetBody("text/html", n.buildHTMLBody(title, priority))

	d := gomail.NewDialer(n.cfg.SMTPHost, n.cfg.SMTPPort, n.cfg.SMTPUser, n.cfg.SMTPPass)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("send email: %w", err)
	}

	n.logger.Info("assignment notification sent", slog.String("to", toEmail), slog.String("title", title))
	return nil
}

func (n *EmailNotifier) buildHTMLBody(title string, priority model.TaskPriority) string {
	return fmt.Sprintf(`
<div style="font-family: sans-serif; max-width: 480px;">
  <h2 style="margin-bottom: 4px;">有新任务指派给你</h2>
  <p style="color: #555;">请登录系统查看详情并开始处理。</p>
  <table style="border-collapse: collapse;">
    <tr><td style="padding: 4px 12px 4px 0; color: #888;">标题</td><td>%s</td></tr>
    <tr><td style="padding: 4px 12px 4px 0; color: #888;">优先级</td><td>%s</td></tr>
  </table>
</div>`, title, priority)
}
