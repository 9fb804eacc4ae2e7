package service

import "fmt"

func welcomeEmailTemplate(name, verifyURL, appName string) (subject, body string) {
	subject = fmt.Sprintf("Welcome to %s!", appName)
	body = fmt.Sprintf(`Hi %s,

Welcome to %s! Please confirm your email address to unlock posting:

%s

The link expires in 24 hours.

The %s Team`, name, appName, verifyURL, appName)
	return subject, body
}

func forgotPasswordEmailTemplate(resetURL, appName string) (subject, body string) {
	subject = "Reset Your Password"
	body = fmt.Sprintf(`Hi,

We received a request to reset your %s password. Follow this link to choose a new one:

%s

The link expires in 1 hour. If you didn't request this, you can ignore this email.

The %s Team`, appName, resetURL, appName)
	return subject, body
}

func accountRestoreEmailTemplate(restoreURL, appName string) (subject, body string) {
	subject = "Restore Your Account"
	body = fmt.Sprintf(`Hi,

Your %s account is waiting for you. Follow this link to restore it and set a new password:

%s

The link expires in 1 hour.

The %s Team`, appName, restoreURL, appName)
	return subject, body
}

func logoutEmailTemplate(name, appName string) (subject, body string) {
	subject = "You've Logged Out"
	body = fmt.Sprintf(`Hi %s,

You have been logged out of %s. If this wasn't you, reset your password right away.

The %s Team`, name, appName, appName)
	return subject, body
}

func oldVisitEmailTemplate(name, appURL, appName string) (subject, body string) {
	subject = "We Miss You!"
	body = fmt.Sprintf(`Hi %s,

It's been a while since your last visit to %s. Come see what's new:

%s

The %s Team`, name, appName, appURL, appName)
	return subject, body
}
