package utils

import (
	"fmt"
	"log"
	"net/smtp"
	"os"
	"strings"
)

type EmailConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

func GetEmailConfig() *EmailConfig {
	return &EmailConfig{
		Host:     os.Getenv("SMTP_HOST"),
		Port:     os.Getenv("SMTP_PORT"),
		Username: os.Getenv("SMTP_USERNAME"),
		Password: os.Getenv("SMTP_PASSWORD"),
		From:     os.Getenv("SMTP_FROM"),
	}
}

func SendEmail(to, subject, htmlBody string) error {
	config := GetEmailConfig()
	if config.Host == "" || config.Port == "" || config.From == "" {
		return fmt.Errorf("SMTP not configured")
	}

	headers := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n",
		config.From, to, subject)
	msg := []byte(headers + htmlBody)

	var auth smtp.Auth
	if config.Username != "" && config.Password != "" {
		auth = smtp.PlainAuth("", config.Username, config.Password, config.Host)
	}

	addr := config.Host + ":" + config.Port
	return smtp.SendMail(addr, auth, config.From, []string{to}, msg)
}

func SendWelcomeEmail(email, name string) {
	go func() {
		subject := "Welcome to Tiendita!"
		body := fmt.Sprintf(`<h2>Welcome to Tiendita, %s!</h2>
<p>Thank you for creating your account. You can now:</p>
<ul>
<li>Order from your favourite local businesses</li>
<li>Track your order from acceptance to pickup</li>
</ul>
<p>¡Buen provecho!</p>
<p>The Tiendita Team</p>`, strings.Split(name, " ")[0])
		if err := SendEmail(email, subject, body); err != nil {
			log.Printf("Failed to send welcome email to %s: %v", email, err)
		}
	}()
}

func SendOrderReceived(email, name, orderNumber string, total float64, estimatedMinutes *int) {
	go func() {
		subject := fmt.Sprintf("Order Received - %s", orderNumber)
		eta := ""
		if estimatedMinutes != nil {
			eta = fmt.Sprintf("<p>Estimated ready in <strong>%d minutes</strong>.</p>", *estimatedMinutes)
		}
		body := fmt.Sprintf(`<h2>Order Received!</h2>
<p>Hi %s,</p>
<p>Your order <strong>%s</strong> has been placed successfully.</p>
<p>Order total: <strong>€%.2f</strong></p>
%s<p>We'll notify you when your order status changes.</p>
<p>The Tiendita Team</p>`, strings.Split(name, " ")[0], orderNumber, total, eta)
		if err := SendEmail(email, subject, body); err != nil {
			log.Printf("Failed to send order received email to %s: %v", email, err)
		}
	}()
}

func SendOrderStatusUpdate(email, name, orderNumber, status string) {
	go func() {
		subject := fmt.Sprintf("Order %s - Status Update", orderNumber)
		body := fmt.Sprintf(`<h2>Order Status Update</h2>
<p>Hi %s,</p>
<p>Your order <strong>%s</strong> status has been updated to: <strong>%s</strong></p>
<p>The Tiendita Team</p>`, strings.Split(name, " ")[0], orderNumber, strings.ReplaceAll(status, "_", " "))
		if err := SendEmail(email, subject, body); err != nil {
			log.Printf("Failed to send status update email to %s: %v", email, err)
		}
	}()
}
