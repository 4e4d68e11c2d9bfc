package mailer

import (
	"fmt"
	"strings"
)

// RequestSubmitted renders the submission confirmation email.
func RequestSubmitted(userName, requestNumber string) (subject, text, html string) {
	subject = "Service Request Submitted Successfully"
	text = fmt.Sprintf(`Dear %s,

Your service request #%s has been submitted successfully.

We will review your request and notify you of any updates.

Thank you,
E-Government Portal`, userName, requestNumber)
	html = fmt.Sprintf(`<h2>Service Request Submitted</h2>
<p>Dear %s,</p>
<p>Your service request <strong>#%s</strong> has been submitted successfully.</p>
<p>We will review your request and notify you of any updates.</p>
<br>
<p>Thank you,<br>E-Government Portal</p>`, userName, requestNumber)
	return subject, text, html
}

// RequestStatusUpdated renders the status change email.
func RequestStatusUpdated(userName, requestNumber, status, comments string) (subject, text, html string) {
	subject = fmt.Sprintf("Service Request %s - Status Updated", requestNumber)

	commentLine := ""
	commentHTML := ""
	if comments != "" {
		commentLine = "Comments: " + comments
		commentHTML = fmt.Sprintf("<p><strong>Comments:</strong> %s</p>", comments)
	}

	text = fmt.Sprintf(`Dear %s,

Your service request #%s status has been updated to: %s

%s

Thank you,
E-Government Portal`, userName, requestNumber, strings.ToUpper(status), commentLine)
	html = fmt.Sprintf(`<h2>Request Status Update</h2>
<p>Dear %s,</p>
<p>Your service request <strong>#%s</strong> status has been updated to: <strong>%s</strong></p>
%s
<br>
<p>Thank you,<br>E-Government Portal</p>`, userName, requestNumber, strings.ToUpper(status), commentHTML)
	return subject, text, html
}

// PaymentConfirmation renders the payment confirmation email.
func PaymentConfirmation(userName, requestNumber string, amount float64, transactionID string) (subject, text, html string) {
	subject = "Payment Confirmation"
	text = fmt.Sprintf(`Dear %s,

Your payment of $%.2f for request #%s has been confirmed.

Transaction ID: %s

Thank you,
E-Government Portal`, userName, amount, requestNumber, transactionID)
	html = fmt.Sprintf(`<h2>Payment Confirmation</h2>
<p>Dear %s,</p>
<p>Your payment of <strong>$%.2f</strong> for request <strong>#%s</strong> has been confirmed.</p>
<p>Transaction ID: %s</p>
<br>
<p>Thank you,<br>E-Government Portal</p>`, userName, amount, requestNumber, transactionID)
	return subject, text, html
}
