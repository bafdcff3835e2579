// internal/services/notification_service.go
package services

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/shoploop/shoploop-backend/internal/config"
	"github.com/shoploop/shoploop-backend/internal/models"
)

type NotificationService struct {
	db     *gorm.DB
	config *config.Config
}

type EmailTemplate struct {
	Subject string
	Body    string
}

func NewNotificationService(db *gorm.DB, config *config.Config) *NotificationService {
	return &NotificationService{
		db:     db,
		config: config,
	}
}

func (s *NotificationService) SendWelcomeEmail(user *models.User) error {
	tmpl := s.getEmailTemplate("welcome")

	data := map[string]interface{}{
		"Username":     user.Username,
		"StoreURL":     s.config.Frontend.BaseURL,
		"PlatformName": "Shoploop",
	}

	body, err := s.renderTemplate(tmpl.Body, data)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	return s.sendEmail(user.Email, tmpl.Subject, body)
}

// SendOrderConfirmationEmail is fired after order placement. It loads
// the order fresh because callers run it on a goroutine.
func (s *NotificationService) SendOrderConfirmationEmail(orderID uuid.UUID) error {
	order, user, err := s.orderWithUser(orderID)
	if err != nil {
		logrus.WithError(err).WithField("order_id", orderID).Warn("Order confirmation email skipped")
		return err
	}

	tmpl := s.getEmailTemplate("order_confirmation")

	data := map[string]interface{}{
		"Username":    user.Username,
		"OrderNumber": order.OrderNumber,
		"Total":       fmt.Sprintf("%.2f", order.Total),
		"OrderURL":    fmt.Sprintf("%s/orders/%s", s.config.Frontend.BaseURL, order.ID),
	}

	body, err := s.renderTemplate(tmpl.Body, data)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	return s.sendEmail(user.Email, tmpl.Subject+" - "+order.OrderNumber, body)
}

func (s *NotificationService) SendOrderShippedEmail(orderID uuid.UUID) error {
	order, user, err := s.orderWithUser(orderID)
	if err != nil {
		logrus.WithError(err).WithField("order_id", orderID).Warn("Order shipped email skipped")
		return err
	}

	tmpl := s.getEmailTemplate("order_shipped")

	data := map[string]interface{}{
		"Username":       user.Username,
		"OrderNumber":    order.OrderNumber,
		"TrackingNumber": order.TrackingNumber,
		"Carrier":        order.Carrier,
		"OrderURL":       fmt.Sprintf("%s/orders/%s", s.config.Frontend.BaseURL, order.ID),
	}

	body, err := s.renderTemplate(tmpl.Body, data)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	return s.sendEmail(user.Email, tmpl.Subject+" - "+order.OrderNumber, body)
}

func (s *NotificationService) SendStoreReviewedEmail(store *models.Store) error {
	var seller models.User
	if err := s.db.First(&seller, store.SellerID).Error; err != nil {
		return fmt.Errorf("seller not found: %w", err)
	}

	tmpl := s.getEmailTemplate("store_reviewed")

	data := map[string]interface{}{
		"Username":  seller.Username,
		"StoreName": store.Name,
		"Status":    store.Status,
	}

	body, err := s.renderTemplate(tmpl.Body, data)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	return s.sendEmail(seller.Email, tmpl.Subject, body)
}

func (s *NotificationService) orderWithUser(orderID uuid.UUID) (*models.Order, *models.User, error) {
	var order models.Order
	if err := s.db.First(&order, orderID).Error; err != nil {
		return nil, nil, fmt.Errorf("order not found: %w", err)
	}
	var user models.User
	if err := s.db.First(&user, order.UserID).Error; err != nil {
		return nil, nil, fmt.Errorf("user not found: %w", err)
	}
	return &order, &user, nil
}

func (s *NotificationService) sendEmail(to, subject, body string) error {
	if s.config.Email.SMTPUsername == "" {
		// Email not configured, just log
		logrus.WithFields(logrus.Fields{"to": to, "subject": subject}).Info("Email skipped, SMTP not configured")
		return nil
	}

	auth := smtp.PlainAuth("", s.config.Email.SMTPUsername, s.config.Email.SMTPPassword, s.config.Email.SMTPHost)

	msg := []byte(fmt.Sprintf("To: %s\r\nSubject: %s\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n%s", to, subject, body))

	addr := fmt.Sprintf("%s:%s", s.config.Email.SMTPHost, s.config.Email.SMTPPort)
	return smtp.SendMail(addr, auth, s.config.Email.FromEmail, []string{to}, msg)
}

func (s *NotificationService) renderTemplate(templateStr string, data interface{}) (string, error) {
	tmpl, err := template.New("email").Parse(templateStr)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}

func (s *NotificationService) getEmailTemplate(templateType string) EmailTemplate {
	// In a real implementation, these would be loaded from files or database
	templates := map[string]EmailTemplate{
		"welcome": {
			Subject: "Welcome to Shoploop",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<h2>Welcome {{.Username}}!</h2>
	<p>Thank you for joining Shoploop. Start browsing the catalog:</p>
	<a href="{{.StoreURL}}">Shop now</a>
	<p>Best regards,<br>{{.PlatformName}} Team</p>
</body>
</html>`,
		},
		"order_confirmation": {
			Subject: "Order Confirmation",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<h2>Thanks for your order, {{.Username}}!</h2>
	<p>Order {{.OrderNumber}} has been placed. Total: ${{.Total}}</p>
	<a href="{{.OrderURL}}">View order</a>
	<p>Best regards,<br>Shoploop Team</p>
</body>
</html>`,
		},
		"order_shipped": {
			Subject: "Your order has shipped",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<h2>Good news, {{.Username}}!</h2>
	<p>Order {{.OrderNumber}} is on its way.</p>
	<p>Carrier: {{.Carrier}}<br>Tracking number: {{.TrackingNumber}}</p>
	<a href="{{.OrderURL}}">Track order</a>
	<p>Best regards,<br>Shoploop Team</p>
</body>
</html>`,
		},
		"store_reviewed": {
			Subject: "Store Review Update",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<h2>Hello {{.Username}},</h2>
	<p>Your store "{{.StoreName}}" has been reviewed. New status: {{.Status}}</p>
	<p>Best regards,<br>Shoploop Team</p>
</body>
</html>`,
		},
	}

	if tmpl, exists := templates[templateType]; exists {
		return tmpl
	}

	return EmailTemplate{
		Subject: "Notification",
		Body:    "<p>{{.Message}}</p>",
	}
}
