package auth

import "errors"

var (
	errEmailExists    = errors.New("email already registered")
	errInvalidLogin   = errors.New("invalid email or password")
	errNotConfirmed   = errors.New("email not confirmed")
	errInvalidAccount = errors.New("invalid account")

	errAlreadyVerified = errors.New("account already verified")
	errStillBanned     = errors.New("too many failed attempts, try again later")
	errCooldownActive  = errors.New("a code was sent recently, wait before requesting another")
	errNoPendingOTP    = errors.New("no verification code pending")
	errOTPExpired      = errors.New("verification code expired")
	errInvalidOTP      = errors.New("invalid verification code")

	errGoogleToken    = errors.New("invalid google token")
	errWrongProvider  = errors.New("account registered with another provider")
	errGoogleDisabled = errors.New("google login is not configured")
)

type signupDTO struct {
	FirstName string `json:"firstName" binding:"required,max=64"`
	LastName  string `json:"lastName" binding:"required,max=64"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8,max=72"`
	Phone     string `json:"phone" binding:"omitempty,max=32"`
	Gender    string `json:"gender" binding:"omitempty,oneof=male female"`
}

type loginDTO struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type emailDTO struct {
	Email string `json:"email" binding:"required,email"`
}

type confirmEmailDTO struct {
	Email string `json:"email" binding:"required,email"`
	OTP   string `json:"otp" binding:"required,len=6"`
}

type resetPasswordDTO struct {
	Email    string `json:"email" binding:"required,email"`
	OTP      string `json:"otp" binding:"required,len=6"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

type googleDTO struct {
	IDToken string `json:"idToken" binding:"required"`
}
