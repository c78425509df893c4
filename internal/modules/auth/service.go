package auth

import (
	"context"
	"time"

	"github.com/circle-space/core/internal/models"
	"github.com/circle-space/core/internal/pkg/mail"
	"github.com/circle-space/core/internal/pkg/token"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Service implements registration, login and credential-recovery flows.
type Service struct {
	accounts     Accounts
	otp          *OTPController
	sigs         *token.Signatures
	tokens       token.Store
	verifyGoogle googleVerifier
	logger       *zap.Logger
	now          func() time.Time
}

func NewService(accounts Accounts, otp *OTPController, sigs *token.Signatures, tokens token.Store, googleAudiences []string, logger *zap.Logger) *Service {
	s := &Service{
		accounts: accounts,
		otp:      otp,
		sigs:     sigs,
		tokens:   tokens,
		logger:   logger,
		now:      time.Now,
	}
	if len(googleAudiences) > 0 {
		s.verifyGoogle = verifyGoogleToken(googleAudiences)
	}
	return s
}

// Signup creates an unconfirmed system-provider account and mails the
// first confirm-email code.
func (s *Service) Signup(dto signupDTO) error {
	existing, err := s.accounts.FindByEmail(dto.Email)
	if err != nil {
		return err
	}
	if existing != nil {
		return errEmailExists
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(dto.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	account := &models.AccountModel{
		FirstName: dto.FirstName,
		LastName:  dto.LastName,
		Email:     dto.Email,
		Password:  string(hash),
		Phone:     dto.Phone,
		Gender:    dto.Gender,
		Role:      models.RoleUser,
		Provider:  models.ProviderSystem,
	}
	if err := s.accounts.Create(account); err != nil {
		return err
	}
	return s.otp.Issue(account, mail.KindConfirmEmail)
}

// Login checks the password and issues a credential pair. Unknown email
// and wrong password collapse into the same error.
func (s *Service) Login(dto loginDTO) (token.Credentials, error) {
	account, err := s.accounts.FindByEmail(dto.Email)
	if err != nil {
		return token.Credentials{}, err
	}
	if account == nil || account.Provider != models.ProviderSystem {
		return token.Credentials{}, errInvalidLogin
	}
	if !account.Confirmed() {
		return token.Credentials{}, errNotConfirmed
	}
	if bcrypt.CompareHashAndPassword([]byte(account.Password), []byte(dto.Password)) != nil {
		return token.Credentials{}, errInvalidLogin
	}
	return s.sigs.IssueCredentials(account)
}

// SendConfirmOTP re-issues a confirm-email code for a not-yet-verified
// account.
func (s *Service) SendConfirmOTP(email string) error {
	account, err := s.accounts.FindByEmail(email)
	if err != nil {
		return err
	}
	if account == nil {
		return errInvalidAccount
	}
	return s.otp.Issue(account, mail.KindConfirmEmail)
}

// ConfirmEmail consumes a pending confirm-email code and marks the
// account verified.
func (s *Service) ConfirmEmail(dto confirmEmailDTO) error {
	account, err := s.accounts.FindByEmail(dto.Email)
	if err != nil {
		return err
	}
	if account == nil || account.Confirmed() {
		return errInvalidAccount
	}
	return s.otp.Verify(account, dto.OTP, func(fields map[string]interface{}) {
		fields["confirmed_at"] = s.now()
	})
}

// SendForgetCode mails a password-reset code to a confirmed account.
func (s *Service) SendForgetCode(email string) error {
	account, err := s.accounts.FindByEmail(email)
	if err != nil {
		return err
	}
	if account == nil || account.Provider != models.ProviderSystem || !account.Confirmed() {
		return errInvalidAccount
	}
	return s.otp.Issue(account, mail.KindResetPassword)
}

// VerifyForgetCode validates a reset code without consuming it, so the
// client can gate its password form before the final call.
func (s *Service) VerifyForgetCode(dto confirmEmailDTO) error {
	account, err := s.accounts.FindByEmail(dto.Email)
	if err != nil {
		return err
	}
	if account == nil {
		return errInvalidAccount
	}
	return s.otp.Check(account, dto.OTP)
}

// ResetPassword consumes the reset code, swaps the password and stamps
// change_credentials_at so every outstanding token pair goes stale.
func (s *Service) ResetPassword(dto resetPasswordDTO) error {
	account, err := s.accounts.FindByEmail(dto.Email)
	if err != nil {
		return err
	}
	if account == nil {
		return errInvalidAccount
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(dto.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.otp.Verify(account, dto.OTP, func(fields map[string]interface{}) {
		fields["password"] = string(hash)
		fields["change_credentials_at"] = s.now()
	})
}

// SignupWithGoogle registers a federated account as already confirmed
// and logs it straight in.
func (s *Service) SignupWithGoogle(ctx context.Context, idToken string) (token.Credentials, error) {
	if s.verifyGoogle == nil {
		return token.Credentials{}, errGoogleDisabled
	}
	profile, err := s.verifyGoogle(ctx, idToken)
	if err != nil {
		return token.Credentials{}, err
	}
	existing, err := s.accounts.FindByEmail(profile.Email)
	if err != nil {
		return token.Credentials{}, err
	}
	if existing != nil {
		return token.Credentials{}, errEmailExists
	}
	// Federated accounts never log in with a password; the random one
	// only keeps the column non-empty.
	hash, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), bcrypt.DefaultCost)
	if err != nil {
		return token.Credentials{}, err
	}
	now := s.now()
	account := &models.AccountModel{
		FirstName:    profile.GivenName,
		LastName:     profile.FamilyName,
		Email:        profile.Email,
		Password:     string(hash),
		Role:         models.RoleUser,
		Provider:     models.ProviderGoogle,
		ProfileImage: profile.Picture,
		ConfirmedAt:  &now,
	}
	if err := s.accounts.Create(account); err != nil {
		return token.Credentials{}, err
	}
	return s.sigs.IssueCredentials(account)
}

// LoginWithGoogle logs in an existing federated account.
func (s *Service) LoginWithGoogle(ctx context.Context, idToken string) (token.Credentials, error) {
	if s.verifyGoogle == nil {
		return token.Credentials{}, errGoogleDisabled
	}
	profile, err := s.verifyGoogle(ctx, idToken)
	if err != nil {
		return token.Credentials{}, err
	}
	account, err := s.accounts.FindByEmail(profile.Email)
	if err != nil {
		return token.Credentials{}, err
	}
	if account == nil {
		return token.Credentials{}, errInvalidLogin
	}
	if account.Provider != models.ProviderGoogle {
		return token.Credentials{}, errWrongProvider
	}
	return s.sigs.IssueCredentials(account)
}

// Refresh exchanges a valid refresh token for a fresh pair. The old
// pair's jti lands in the revocation ledger before the new pair is
// handed back, so a lost response never leaves two live pairs.
func (s *Service) Refresh(decoded *token.Decoded) (token.Credentials, error) {
	creds, err := s.sigs.IssueCredentials(decoded.Account)
	if err != nil {
		return token.Credentials{}, err
	}
	if _, err := s.sigs.CreateRevokeToken(s.tokens, decoded.Claims); err != nil {
		return token.Credentials{}, err
	}
	return creds, nil
}
