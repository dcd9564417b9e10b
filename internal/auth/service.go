package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	pkgauth "github.com/kunalverma/groupbuy-backend/pkg/auth"
	"github.com/kunalverma/groupbuy-backend/pkg/config"
	"github.com/kunalverma/groupbuy-backend/pkg/db/models"
	pkgerrors "github.com/kunalverma/groupbuy-backend/pkg/errors"
	"github.com/kunalverma/groupbuy-backend/pkg/logger"
)

var phonePattern = regexp.MustCompile(`^\+[1-9][0-9]{9,14}$`)

type otpStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)
	OTPKey(phone string) string
	OTPAttemptsKey(phone string) string
}

// RetailerReader resolves a verified phone to its retailer profile, if one
// has been registered.
type RetailerReader interface {
	FindByPhone(ctx context.Context, phone string) (*models.Retailer, error)
}

// SendOTPResult reports the outcome of an OTP send. Code is populated only in
// dev mode; production delivery goes through an SMS gateway, not the API.
type SendOTPResult struct {
	Phone     string `json:"phone"`
	ExpiresIn int    `json:"expires_in_seconds"`
	Code      string `json:"code,omitempty"`
}

// VerifyOTPResult carries the minted token and what is known about the caller.
type VerifyOTPResult struct {
	Token      string     `json:"token"`
	Phone      string     `json:"phone"`
	RetailerID *uuid.UUID `json:"retailer_id,omitempty"`
	IsAdmin    bool       `json:"is_admin"`
	Registered bool       `json:"registered"`
}

// Service implements phone-based OTP login.
type Service interface {
	SendOTP(ctx context.Context, phone string) (*SendOTPResult, error)
	VerifyOTP(ctx context.Context, phone, code string) (*VerifyOTPResult, error)
}

type service struct {
	store     otpStore
	retailers RetailerReader
	admins    *AdminChecker
	jwtCfg    config.JWTConfig
	otpCfg    config.OTPConfig
	logg      *logger.Logger
	now       func() time.Time
	generate  func() (string, error)
}

// NewService wires the OTP login flow.
func NewService(store otpStore, retailers RetailerReader, admins *AdminChecker, jwtCfg config.JWTConfig, otpCfg config.OTPConfig, logg *logger.Logger) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("otp store required")
	}
	if retailers == nil {
		return nil, fmt.Errorf("retailer reader required")
	}
	if admins == nil {
		return nil, fmt.Errorf("admin checker required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if jwtCfg.Secret == "" {
		return nil, fmt.Errorf("jwt secret required")
	}
	if otpCfg.TTL <= 0 {
		return nil, fmt.Errorf("otp ttl must be positive")
	}
	if otpCfg.MaxAttempts <= 0 {
		return nil, fmt.Errorf("otp max attempts must be positive")
	}
	return &service{
		store:     store,
		retailers: retailers,
		admins:    admins,
		jwtCfg:    jwtCfg,
		otpCfg:    otpCfg,
		logg:      logg,
		now:       time.Now,
		generate:  generateCode,
	}, nil
}

func (s *service) SendOTP(ctx context.Context, phone string) (*SendOTPResult, error) {
	if !phonePattern.MatchString(phone) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "phone must be in E.164 format")
	}
	code, err := s.generate()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate otp")
	}
	if err := s.store.Set(ctx, s.store.OTPKey(phone), code, s.otpCfg.TTL); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store otp")
	}

	// SMS delivery is out of scope; the code is logged for operators and
	// echoed in dev mode.
	logCtx := s.logg.WithFields(ctx, map[string]any{"phone": phone, "otp": code})
	s.logg.Info(logCtx, "otp generated")

	result := &SendOTPResult{
		Phone:     phone,
		ExpiresIn: int(s.otpCfg.TTL.Seconds()),
	}
	if s.otpCfg.EchoInResponse {
		result.Code = code
	}
	return result, nil
}

func (s *service) VerifyOTP(ctx context.Context, phone, code string) (*VerifyOTPResult, error) {
	if !phonePattern.MatchString(phone) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "phone must be in E.164 format")
	}
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "otp code required")
	}

	attempts, err := s.store.IncrWithTTL(ctx, s.store.OTPAttemptsKey(phone), s.otpCfg.TTL)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count otp attempts")
	}
	if attempts > int64(s.otpCfg.MaxAttempts) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "too many otp attempts, request a new code")
	}

	stored, err := s.store.Get(ctx, s.store.OTPKey(phone))
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "otp expired or never sent")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load otp")
	}
	if stored != code {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid otp")
	}

	if err := s.store.Del(ctx, s.store.OTPKey(phone), s.store.OTPAttemptsKey(phone)); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear otp")
	}

	payload := pkgauth.AccessTokenPayload{
		Phone:   phone,
		IsAdmin: s.admins.IsAdmin(phone),
	}
	registered := false
	retailer, err := s.retailers.FindByPhone(ctx, phone)
	switch {
	case err == nil:
		payload.RetailerID = &retailer.ID
		registered = true
	case err == gorm.ErrRecordNotFound:
		// first login, profile registration comes next
	default:
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load retailer")
	}

	token, err := pkgauth.MintAccessToken(s.jwtCfg, s.now(), payload)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint token")
	}
	return &VerifyOTPResult{
		Token:      token,
		Phone:      phone,
		RetailerID: payload.RetailerID,
		IsAdmin:    payload.IsAdmin,
		Registered: registered,
	}, nil
}

func generateCode() (string, error) {
	max := big.NewInt(1000000)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
