package notification

import (
	"fmt"
	"html"

	"freshmart/internal/domain/model"
	"freshmart/internal/infra/mailer"
)

const (
	signatureText = "Best Regards,\nThe FreshMart Team"
	signatureHTML = "<br/>\n<p>Best Regards,<br/>The FreshMart Team</p>"
)

func welcomeMessage(u model.User) mailer.Message {
	name := html.EscapeString(u.Name)
	return mailer.Message{
		To:      u.Email,
		Subject: "Welcome to FreshMart!",
		Text: fmt.Sprintf("Hi %s,\n\nWelcome to FreshMart! We are excited to have you on board. Start shopping for fresh groceries now!\n\n%s",
			u.Name, signatureText),
		HTML: fmt.Sprintf("<h1>Welcome to FreshMart!</h1>\n<p>Hi <strong>%s</strong>,</p>\n<p>Welcome to FreshMart! We are excited to have you on board. Start shopping for fresh groceries now!</p>\n%s",
			name, signatureHTML),
	}
}

func orderPlacedMessage(u model.User, o model.Order) mailer.Message {
	name := html.EscapeString(u.Name)
	total := o.TotalAmount.StringFixed(2)
	return mailer.Message{
		To:      u.Email,
		Subject: fmt.Sprintf("Order Confirmation - #%s", o.ID),
		Text: fmt.Sprintf("Hi %s,\n\nThank you for your order! Your order ID is %s. Total Amount: Rs. %s.\n\nWe will notify you once it's shipped.\n\n%s",
			u.Name, o.ID, total, signatureText),
		HTML: fmt.Sprintf("<h1>Order Confirmation</h1>\n<p>Hi <strong>%s</strong>,</p>\n<p>Thank you for your order! Your order ID is <strong>#%s</strong>.</p>\n<p><strong>Total Amount:</strong> Rs. %s</p>\n<p>We will notify you once it's shipped.</p>\n%s",
			name, o.ID, total, signatureHTML),
	}
}

func orderCancelledMessage(u model.User, o model.Order) mailer.Message {
	return mailer.Message{
		To:      u.Email,
		Subject: fmt.Sprintf("Order Cancelled - #%s", o.ID),
		Text:    fmt.Sprintf("Hi,\n\nYour order #%s has been cancelled successfully.\n\n%s", o.ID, signatureText),
		HTML: fmt.Sprintf("<h1>Order Cancelled</h1>\n<p>Your order <strong>#%s</strong> has been cancelled successfully.</p>\n%s",
			o.ID, signatureHTML),
	}
}

func orderStatusMessage(u model.User, o model.Order) mailer.Message {
	name := html.EscapeString(u.Name)
	return mailer.Message{
		To:      u.Email,
		Subject: fmt.Sprintf("Order Update - #%s", o.ID),
		Text: fmt.Sprintf("Hi %s,\n\nYour order #%s status has been updated to: %s.\n\n%s",
			u.Name, o.ID, o.Status, signatureText),
		HTML: fmt.Sprintf("<h1>Order Status Update</h1>\n<p>Hi <strong>%s</strong>,</p>\n<p>Your order <strong>#%s</strong> status has been updated to: <strong>%s</strong>.</p>\n%s",
			name, o.ID, o.Status, signatureHTML),
	}
}
