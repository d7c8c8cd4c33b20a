package mailer

import "fmt"

func otpEmailContent(firstName, otp string) (subject, text, html string) {
	greeting := "Hi"
	if firstName != "" {
		greeting = "Hi " + firstName
	}

	subject = "Your Verification Code"
	text = fmt.Sprintf("%s,\n\nYour verification code is: %s\n\nThis code will expire in 10 minutes.\n\nIf you didn't request this code, please ignore this email.", greeting, otp)
	html = fmt.Sprintf(`
		<h2>Email Verification</h2>
		<p>%s,</p>
		<p>Your verification code is:</p>
		<p><strong style="font-size: 24px; letter-spacing: 4px;">%s</strong></p>
		<p>This code will expire in 10 minutes.</p>
		<p>If you didn't request this code, please ignore this email.</p>
	`, greeting, otp)
	return subject, text, html
}

func passwordResetEmailContent(firstName, resetURL, secret string) (subject, text, html string) {
	greeting := "Hi"
	if firstName != "" {
		greeting = "Hi " + firstName
	}

	subject = "Password Reset"
	text = fmt.Sprintf("%s,\n\nYou requested a password reset. Use this link to choose a new password: %s\n\nOr submit this reset code directly: %s\n\nThis link will expire in 1 hour. If you didn't request a reset, you can safely ignore this email.", greeting, resetURL, secret)
	html = fmt.Sprintf(`
		<h2>Password Reset</h2>
		<p>%s,</p>
		<p>You requested a password reset. Click the link below to choose a new password:</p>
		<p><a href="%s" style="background-color: #4CAF50; color: white; padding: 10px 20px; text-decoration: none; border-radius: 5px;">Reset Password</a></p>
		<p>Or submit this reset code directly: <strong>%s</strong></p>
		<p>This link will expire in 1 hour.</p>
		<p>If you didn't request a reset, you can safely ignore this email.</p>
	`, greeting, resetURL, secret)
	return subject, text, html
}
