package services

import (
	"context"
	"strings"

	"github.com/terraincognita07/khare/internal/email"
	"github.com/terraincognita07/khare/internal/logging"
)

type InterestNotification struct {
	ProjectID             string
	ProjectTitle          string
	ProjectOwnerEmail     string
	InterestedUserEmail   string
	InterestedUserContact string
	InterestedUserID      string
}

// InterestNotifier mails a project owner when someone asks about their project.
type InterestNotifier struct {
	mailer    email.Sender
	publicURL string
}

func NewInterestNotifier(mailer email.Sender, publicURL string) *InterestNotifier {
	return &InterestNotifier{mailer: mailer, publicURL: strings.TrimRight(publicURL, "/")}
}

func (notifier *InterestNotifier) Notify(ctx context.Context, request InterestNotification) (email.Receipt, error) {
	owner := strings.TrimSpace(request.ProjectOwnerEmail)
	if owner == "" {
		return email.Receipt{}, validationError("Project owner email not found")
	}

	data := email.InterestData{
		ProjectTitle:      strings.TrimSpace(request.ProjectTitle),
		InterestedEmail:   strings.TrimSpace(request.InterestedUserEmail),
		InterestedContact: strings.TrimSpace(request.InterestedUserContact),
	}
	if notifier.publicURL != "" && request.ProjectID != "" {
		data.ProjectURL = notifier.publicURL + "/projects/" + request.ProjectID
	}

	message, err := email.InterestMessage(owner, data)
	if err != nil {
		return email.Receipt{}, newError(ErrDelivery, err.Error(), err)
	}
	receipt, err := notifier.mailer.Send(ctx, message)
	if err != nil {
		return email.Receipt{}, newError(ErrDelivery, err.Error(), err)
	}

	logging.FromContext(ctx).Info("interest notification sent",
		"project_id", request.ProjectID,
		"receipt_id", receipt.ID,
		"interested_user_id", request.InterestedUserID,
	)
	return receipt, nil
}
