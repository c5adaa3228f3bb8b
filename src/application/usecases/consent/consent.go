package consent

import (
	"errors"

	domainDispatch "condo-notify-api/src/domain/dispatch"
	domainErrors "condo-notify-api/src/domain/errors"
	domainGateway "condo-notify-api/src/domain/gateway"
	domainResident "condo-notify-api/src/domain/resident"
	logger "condo-notify-api/src/infrastructure/logger"
	"condo-notify-api/src/infrastructure/messaging"

	"go.uber.org/zap"
)

// Gateway webhook vocabulary for the consent handshake.
const (
	EventButtonClicked = "message_button_clicked"
	ButtonOptInYes     = "whatsapp_optin_yes"
	ButtonOptInNo      = "whatsapp_optin_no"
)

// Webhook processing outcomes. Skipped covers unknown phones and button ids;
// those are reported, not errored.
const (
	ResultAccepted = "accepted"
	ResultDeclined = "declined"
	ResultIgnored  = "ignored"
	ResultSkipped  = "skipped"
)

type IConsentUseCase interface {
	HandleWebhook(eventType, phone, buttonID string) (string, error)
	RequestOptIn(residentID int) error
}

// ConsentUseCase maintains the per-resident opt-in flag from gateway webhook
// events and sends the opt-in handshake message.
type ConsentUseCase struct {
	residentRepository domainResident.Repository
	configRepository   domainGateway.ConfigRepository
	gatewayClient      domainGateway.Client
	templates          *messaging.Templates
	Logger             *logger.Logger
}

func NewConsentUseCase(
	residentRepository domainResident.Repository,
	configRepository domainGateway.ConfigRepository,
	gatewayClient domainGateway.Client,
	templates *messaging.Templates,
	loggerInstance *logger.Logger,
) IConsentUseCase {
	return &ConsentUseCase{
		residentRepository: residentRepository,
		configRepository:   configRepository,
		gatewayClient:      gatewayClient,
		templates:          templates,
		Logger:             loggerInstance,
	}
}

// HandleWebhook maps a button click to a consent state. Only
// message_button_clicked events are processed; anything unknown is reported
// as ignored or skipped so the gateway does not retry.
func (u *ConsentUseCase) HandleWebhook(eventType, phone, buttonID string) (string, error) {
	if eventType != EventButtonClicked {
		return ResultIgnored, nil
	}

	var state domainResident.ConsentState
	switch buttonID {
	case ButtonOptInYes:
		state = domainResident.ConsentAccepted
	case ButtonOptInNo:
		state = domainResident.ConsentDeclined
	default:
		u.Logger.Info("Skipping webhook with unknown button id", zap.String("buttonID", buttonID))
		return ResultSkipped, nil
	}

	normalized, ok := domainDispatch.NormalizePhone(phone)
	if !ok {
		u.Logger.Info("Skipping webhook with unusable phone")
		return ResultSkipped, nil
	}

	res, err := u.residentRepository.GetByPhone(normalized)
	if err != nil {
		var appErr *domainErrors.AppError
		if errors.As(err, &appErr) && appErr.Type == domainErrors.NotFound {
			u.Logger.Info("Skipping webhook for unknown phone")
			return ResultSkipped, nil
		}
		return "", err
	}

	if err := u.residentRepository.UpdateConsent(res.ID, state); err != nil {
		return "", err
	}

	u.Logger.Info("Consent updated from webhook",
		zap.Int("residentID", res.ID),
		zap.String("state", string(state)))

	if state == domainResident.ConsentAccepted {
		return ResultAccepted, nil
	}
	return ResultDeclined, nil
}

// RequestOptIn sends the two-button consent handshake to one resident.
func (u *ConsentUseCase) RequestOptIn(residentID int) error {
	res, err := u.residentRepository.GetByID(residentID)
	if err != nil {
		return err
	}

	phone, ok := domainDispatch.NormalizePhone(res.Phone)
	if !ok {
		return domainErrors.NewAppError(errors.New("resident phone cannot be normalized"), domainErrors.ValidationError)
	}

	cfg, err := u.configRepository.GetActiveByCondominium(res.CondominiumID)
	if err != nil {
		return domainErrors.NewAppError(errors.New("no active gateway configuration"), domainErrors.UnprocessableError)
	}

	message := messaging.Render(u.templates.OptInRequest, res.Name, 0)
	buttons := []domainGateway.Button{
		{ID: ButtonOptInYes, Label: "Yes, notify me"},
		{ID: ButtonOptInNo, Label: "No, thanks"},
	}

	if _, err := u.gatewayClient.SendButtonList(cfg, phone, message, buttons); err != nil {
		u.Logger.Error("Error sending opt-in handshake", zap.Error(err), zap.Int("residentID", residentID))
		return err
	}

	u.Logger.Info("Opt-in handshake sent", zap.Int("residentID", residentID))
	return nil
}
