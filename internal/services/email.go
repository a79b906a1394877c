// Package services holds outbound notification senders. Email delivery is
// fire-and-forget: a failed send is logged and never rolls back the entity
// change that triggered it.
package services

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/shoply-dev/shoply/internal/models"
	"gopkg.in/gomail.v2"
)

func appURL() string {
	if url := os.Getenv("APP_URL"); url != "" {
		return url
	}

	return "http://localhost:3000"
}

func smtpConfigured() bool {
	return os.Getenv("APP_ENV") == "production" && os.Getenv("SMTP_HOST") != ""
}

// SendPasswordResetEmail mails the reset link. Outside production (or
// without SMTP settings) the link is logged to the console instead.
func SendPasswordResetEmail(email, name, token string) {
	resetLink := fmt.Sprintf("%s/api/auth/reset-password/%s", appURL(), token)

	greeting := "Hello"

	if name != "" {
		greeting = "Hello, " + name
	}

	body := fmt.Sprintf(`<p>%s!</p>
<p>We received a request to reset the password for your account.</p>
<p>Follow this link to set a new password:</p>
<p><a href="%s">%s</a></p>
<p><strong>The link is valid for 1 hour.</strong></p>
<p>If you did not request a password reset, just ignore this email.</p>`, greeting, resetLink, resetLink)

	send(email, "Password reset", body, "password reset link: "+resetLink)
}

// SendActivationEmail mails the account activation link.
func SendActivationEmail(email, name, token string) {
	activateLink := fmt.Sprintf("%s/api/auth/activate/%s", appURL(), token)

	greeting := "Hello"

	if name != "" {
		greeting = "Hello, " + name
	}

	body := fmt.Sprintf(`<p>%s!</p>
<p>Thanks for registering. Activate your account by following this link:</p>
<p><a href="%s">%s</a></p>`, greeting, activateLink, activateLink)

	send(email, "Activate your account", body, "activation link: "+activateLink)
}

// SendOrderConfirmation mails a short confirmation for a freshly placed order.
func SendOrderConfirmation(email string, order *models.Order) {
	body := fmt.Sprintf(`<p>Thank you for your order!</p>
<p>Order #%d has been placed for a total of %s.</p>
<p>We will let you know when it ships.</p>`, order.ID, order.Amount.StringFixed(2))

	send(email, fmt.Sprintf("Order #%d confirmed", order.ID), body, fmt.Sprintf("order #%d confirmation", order.ID))
}

func send(to, subject, htmlBody, logHint string) {
	if !smtpConfigured() {
		log.Printf("[email] to=%s subject=%q %s", to, subject, logHint)
		return
	}

	port, err := strconv.Atoi(os.Getenv("SMTP_PORT"))

	if err != nil {
		port = 587
	}

	m := gomail.NewMessage()
	m.SetHeader("From", os.Getenv("SMTP_USER"))
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	d := gomail.NewDialer(os.Getenv("SMTP_HOST"), port, os.Getenv("SMTP_USER"), os.Getenv("SMTP_PASS"))

	if err := d.DialAndSend(m); err != nil {
		log.Printf("Failed to send email to %s: %v", to, err)
	}
}
