package sendgrid

import (
	"context"
	"fmt"
	"strings"

	sg "github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/shopora/shopora-platform/internal/models"
)

type EmailService interface {
	Send(ctx context.Context, to, subject, plainContent, htmlContent string) error
	SendOrderConfirmation(ctx context.Context, user *models.User, order *models.Order) error
}

type emailService struct {
	client    *sg.Client
	fromEmail string
	fromName  string
}

func NewEmailService(apiKey, fromEmail, fromName string) EmailService {
	return &emailService{
		client:    sg.NewSendClient(apiKey),
		fromEmail: fromEmail,
		fromName:  fromName,
	}
}

func (e *emailService) Send(ctx context.Context, to, subject, plainContent, htmlContent string) error {

	from := mail.NewEmail(e.fromName, e.fromEmail)

	message := mail.NewV3Mail()
	message.SetFrom(from)

	personalization := mail.NewPersonalization()
	personalization.AddTos(mail.NewEmail("", to))
	personalization.Subject = subject
	message.AddPersonalizations(personalization)

	message.AddContent(mail.NewContent("text/plain", plainContent))
	message.AddContent(mail.NewContent("text/html", htmlContent))

	response, err := e.client.SendWithContext(ctx, message)
	if err != nil {
		return err
	}

	if response.StatusCode >= 400 {
		return fmt.Errorf("failed to send email, status code: %d", response.StatusCode)
	}

	return nil
}

func (e *emailService) SendOrderConfirmation(ctx context.Context, user *models.User, order *models.Order) error {

	subject := fmt.Sprintf("Order confirmation #%s", shortOrderRef(order))

	var plain, html strings.Builder

	fmt.Fprintf(&plain, "Hi %s,\n\nThanks for your order!\n\n", user.Username)
	fmt.Fprintf(&html, "<p>Hi %s,</p><p>Thanks for your order!</p><ul>", user.Username)

	for _, item := range order.Items {
		fmt.Fprintf(&plain, "%d x %s - $%.2f\n", item.Quantity, item.Name, item.Price*float64(item.Quantity))
		fmt.Fprintf(&html, "<li>%d x %s - $%.2f</li>", item.Quantity, item.Name, item.Price*float64(item.Quantity))
	}

	fmt.Fprintf(&plain, "\nTotal: $%.2f\n", order.Total)
	fmt.Fprintf(&html, "</ul><p><strong>Total: $%.2f</strong></p>", order.Total)

	return e.Send(ctx, user.Email, subject, plain.String(), html.String())
}

// shortOrderRef is the first UUID block, enough for a human-facing reference.
func shortOrderRef(order *models.Order) string {
	id := order.ID.String()
	if i := strings.IndexByte(id, '-'); i > 0 {
		return id[:i]
	}

	return id
}
