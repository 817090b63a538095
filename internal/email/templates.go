package email

import (
	"bytes"
	"fmt"
	"html/template"
	"time"
)

const verificationHTML = `<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h1 style="color: #333;">Confirm your email</h1>
  <p>Use this code to finish signing in to Khare Construction:</p>
  <p style="font-size: 32px; letter-spacing: 8px; font-weight: bold;">{{.Code}}</p>
  <p style="color: #666;">The code expires in {{.ValidMinutes}} minutes. Requesting a new code cancels this one.</p>
  <p style="color: #888; font-size: 12px;">If you did not request this code you can ignore this email.</p>
</div>`

const interestHTML = `<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h1 style="color: #333;">Someone is Interested in Your Project!</h1>
  <div style="background-color: #f5f5f5; padding: 20px; border-radius: 8px; margin: 20px 0;">
    <h2 style="color: #555; margin-top: 0;">Project: {{.ProjectTitle}}</h2>
    <p style="color: #666;">You have received a new inquiry for your construction project.</p>
  </div>
  <div style="background-color: #fff; padding: 20px; border: 1px solid #ddd; border-radius: 8px;">
    <h3 style="color: #333; margin-top: 0;">Contact Information:</h3>
    <p><strong>Email:</strong> {{.InterestedEmail}}</p>
    <p><strong>Contact Number:</strong> {{.InterestedContact}}</p>
  </div>
  <div style="margin: 20px 0; padding: 15px; background-color: #e8f4fd; border-radius: 8px;">
    <p style="margin: 0; color: #0066cc;"><strong>Next Steps:</strong> Please reach out to this potential client using the contact information provided above to discuss your project details.</p>
  </div>
  <hr style="border: none; border-top: 1px solid #eee; margin: 30px 0;">
  <p style="color: #888; font-size: 12px;">This notification was sent from your Khare Construction project listing.{{if .ProjectURL}} <a href="{{.ProjectURL}}">View project</a>.{{end}}</p>
</div>`

var (
	verificationTemplate = template.Must(template.New("verification").Parse(verificationHTML))
	interestTemplate     = template.Must(template.New("interest").Parse(interestHTML))
)

type VerificationData struct {
	Code      string
	ExpiresIn time.Duration
}

func (data VerificationData) ValidMinutes() int {
	return int(data.ExpiresIn / time.Minute)
}

// VerificationMessage renders the one-time code email for to.
func VerificationMessage(to string, data VerificationData) (Message, error) {
	var body bytes.Buffer
	if err := verificationTemplate.Execute(&body, data); err != nil {
		return Message{}, fmt.Errorf("render verification email: %w", err)
	}
	return Message{
		To:       []string{to},
		Subject:  "Your Khare Construction verification code",
		HTMLBody: body.String(),
		TextBody: fmt.Sprintf("Your verification code is %s. It expires in %d minutes.", data.Code, data.ValidMinutes()),
	}, nil
}

type InterestData struct {
	ProjectTitle      string
	ProjectURL        string
	InterestedEmail   string
	InterestedContact string
}

// InterestMessage renders the owner notification for a new project inquiry.
// All fields are HTML escaped.
func InterestMessage(to string, data InterestData) (Message, error) {
	var body bytes.Buffer
	if err := interestTemplate.Execute(&body, data); err != nil {
		return Message{}, fmt.Errorf("render interest email: %w", err)
	}
	return Message{
		To:       []string{to},
		Subject:  "New Interest in Your Project: " + data.ProjectTitle,
		HTMLBody: body.String(),
	}, nil
}
