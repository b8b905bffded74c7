package utils

import (
	"fmt"
	"log"
	"net/smtp"
	"os"
	"strings"
)

var (
	emailFrom     = os.Getenv("EMAIL_FROM")
	emailPassword = os.Getenv("EMAIL_PASSWORD")
	smtpHost      = os.Getenv("SMTP_HOST")
	smtpPort      = os.Getenv("SMTP_PORT")
	companyName   = "Ridewell Chauffeurs"
	baseURL       = os.Getenv("BASE_URL")
)

// Common header template for all emails
const emailHeader = `
<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333; margin: 0; padding: 0;">
	<div style="max-width: 600px; margin: 0 auto; padding: 20px;">
		<div style="text-align: center; margin-bottom: 30px; background-color: #f9f9f9; padding: 20px;">
			<h2 style="color: #1a2b4a; margin: 0;">Ridewell</h2>
		</div>
`

// Common footer template for all emails
const emailFooter = `
		<div style="text-align: center; margin-top: 20px; font-size: 12px; color: #666; border-top: 1px solid #eee; padding-top: 20px;">
			<p>This is an automated message, please do not reply to this email.</p>
			<p>© 2026 Ridewell Chauffeurs. All rights reserved.</p>
		</div>
	</div>
</body>
</html>
`

func sendEmail(to []string, subject, body string) error {
	if emailFrom == "" || emailPassword == "" || smtpHost == "" || smtpPort == "" {
		return fmt.Errorf("email configuration not set")
	}

	// Headers
	headers := make(map[string]string)
	headers["From"] = fmt.Sprintf("%s <%s>", companyName, emailFrom)
	headers["To"] = strings.Join(to, ",")
	headers["Subject"] = subject
	headers["MIME-Version"] = "1.0"
	headers["Content-Type"] = "text/html; charset=UTF-8"
	headers["X-Mailer"] = "Ridewell-Mailer"

	// Build message
	message := ""
	for key, value := range headers {
		message += fmt.Sprintf("%s: %s\r\n", key, value)
	}
	message += "\r\n" + body

	// Authentication
	auth := smtp.PlainAuth("", emailFrom, emailPassword, smtpHost)

	// Send email
	err := smtp.SendMail(smtpHost+":"+smtpPort, auth, emailFrom, to, []byte(message))
	if err != nil {
		log.Printf("Failed to send email: %v", err)
		return err
	}

	log.Printf("Successfully sent email to recipients: %v", to)
	return nil
}

func SendBookingConfirmationEmail(to string, bookingID uint, pickupAddress string, totalPrice float64, currency string) error {
	subject := "Booking Received - Ridewell"
	body := fmt.Sprintf(emailHeader+`
				<div style="background-color: #f9f9f9; padding: 20px; border-radius: 5px;">
					<h1 style="color: #2c3e50; text-align: center;">Booking Received</h1>
					<p>Hello,</p>
					<p>Your booking <strong>#%d</strong> has been received.</p>
					<p>Pickup: <strong>%s</strong></p>
					<p>Quoted total: <strong>%.2f %s</strong></p>
					<p>We will confirm your chauffeur shortly.</p>
					<p>Best regards,<br>The Ridewell Team</p>
				</div>`+emailFooter,
		bookingID, pickupAddress, totalPrice, strings.ToUpper(currency))

	return sendEmail([]string{to}, subject, body)
}

func SendBookingCancelledEmail(to string, bookingID uint, cancellationFee float64, currency string) error {
	subject := "Booking Cancelled - Ridewell"
	feeLine := "No cancellation fee applies."
	if cancellationFee > 0 {
		feeLine = fmt.Sprintf("A cancellation fee of <strong>%.2f %s</strong> applies.", cancellationFee, strings.ToUpper(currency))
	}
	body := fmt.Sprintf(emailHeader+`
				<div style="background-color: #f9f9f9; padding: 20px; border-radius: 5px;">
					<h1 style="color: #2c3e50; text-align: center;">Booking Cancelled</h1>
					<p>Hello,</p>
					<p>Your booking <strong>#%d</strong> has been cancelled.</p>
					<p>%s</p>
					<p>Best regards,<br>The Ridewell Team</p>
				</div>`+emailFooter,
		bookingID, feeLine)

	return sendEmail([]string{to}, subject, body)
}
