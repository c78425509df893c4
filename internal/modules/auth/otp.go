package auth

import (
	"time"

	"github.com/circle-space/core/internal/models"
	"github.com/circle-space/core/internal/pkg/mail"
	"github.com/circle-space/core/internal/pkg/otp"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	otpCooldown    = 2 * time.Minute
	otpTTL         = 2 * time.Minute
	otpMaxFailures = 5
	otpBanWindow   = 5 * time.Minute
)

// OTPController owns the one-time-code lifecycle shared by the
// confirm-email and password-reset flows. An account carries a single
// pending code at a time; issuing a new one replaces it and resets the
// failure counter. Five cumulative failures buy a temporary ban that
// rejects even correct codes until it lapses.
type OTPController struct {
	accounts Accounts
	mailer   *mail.Sender
	logger   *zap.Logger

	now func() time.Time
}

func NewOTPController(accounts Accounts, mailer *mail.Sender, logger *zap.Logger) *OTPController {
	return &OTPController{
		accounts: accounts,
		mailer:   mailer,
		logger:   logger,
		now:      time.Now,
	}
}

// Issue generates a fresh code, stores its hash and mails the plain code.
// Confirm-email issuance is refused for already-verified accounts; both
// kinds are refused while a ban or the re-request cooldown is active.
func (c *OTPController) Issue(account *models.AccountModel, kind mail.Kind) error {
	if kind == mail.KindConfirmEmail && account.Confirmed() {
		return errAlreadyVerified
	}
	now := c.now()
	if account.OTPBannedUntil != nil && now.Before(*account.OTPBannedUntil) {
		return errStillBanned
	}
	if account.OTPCreatedAt != nil && now.Sub(*account.OTPCreatedAt) < otpCooldown {
		return errCooldownActive
	}

	code, err := otp.Generate()
	if err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	err = c.accounts.Updates(account.ID, map[string]interface{}{
		"otp_hash":            string(hash),
		"otp_created_at":      now,
		"otp_failed_attempts": 0,
		"otp_banned_until":    nil,
	})
	if err != nil {
		return err
	}
	c.mailer.SendOTP(account.Email, code, kind)
	return nil
}

// Check validates the supplied code against the pending one without
// consuming it. A mismatch bumps the failure counter; the fifth
// cumulative failure bans the account for otpBanWindow and resets the
// counter so a lapsed ban starts from a clean slate.
func (c *OTPController) Check(account *models.AccountModel, supplied string) error {
	now := c.now()
	if account.OTPBannedUntil != nil && now.Before(*account.OTPBannedUntil) {
		return errStillBanned
	}
	if account.OTPHash == "" || account.OTPCreatedAt == nil {
		return errNoPendingOTP
	}
	if now.Sub(*account.OTPCreatedAt) > otpTTL {
		return errOTPExpired
	}
	if bcrypt.CompareHashAndPassword([]byte(account.OTPHash), []byte(supplied)) != nil {
		attempts := account.OTPFailedAttempts + 1
		fields := map[string]interface{}{"otp_failed_attempts": attempts}
		if attempts >= otpMaxFailures {
			fields["otp_failed_attempts"] = 0
			fields["otp_banned_until"] = now.Add(otpBanWindow)
		}
		if err := c.accounts.Updates(account.ID, fields); err != nil {
			c.logger.Warn("persist otp failure counter", zap.Error(err))
		}
		account.OTPFailedAttempts = attempts
		return errInvalidOTP
	}
	return nil
}

// Verify consumes the pending code. On match every OTP field is cleared
// in a single update; the caller folds its own success effect (marking
// the email confirmed, swapping the password) into the same update.
func (c *OTPController) Verify(account *models.AccountModel, supplied string, success func(fields map[string]interface{})) error {
	if err := c.Check(account, supplied); err != nil {
		return err
	}
	fields := map[string]interface{}{
		"otp_hash":            "",
		"otp_created_at":      nil,
		"otp_failed_attempts": 0,
		"otp_banned_until":    nil,
	}
	if success != nil {
		success(fields)
	}
	return c.accounts.Updates(account.ID, fields)
}
