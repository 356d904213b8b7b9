package httpapi

import (
	"reflect"
	"strings"
	"unicode"

	"github.com/dmitrijs2005/classroom/internal/common"
	"github.com/dmitrijs2005/classroom/internal/dto"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/pmezard/go-difflib/difflib"
)

var (
	passwordTag  = "password"
	passwordText = "password must not contain whitespace or be entirely numeric"

	pwdAttrSimTag  = "pwdtoosim"
	pwdAttrSimText = "password is too similar to your name or email"
	pwdMaxSim      = .7

	githubRepoTag = "githubrepo"
)

// requestValidator validates bound request bodies and renders failures as
// English messages keyed by JSON field names.
type requestValidator struct {
	validate   *validator.Validate
	translator ut.Translator
}

func newRequestValidator() *requestValidator {
	v := validator.New()

	_en := en.New()
	uni := ut.New(_en, _en)
	trans, _ := uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(v, trans)

	// Use JSON tag names for errors instead of Go struct names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	rv := &requestValidator{validate: v, translator: trans}

	_ = v.RegisterValidation(passwordTag, passwordValidation)
	rv.registerTranslation(passwordTag, passwordText)

	_ = v.RegisterValidation(githubRepoTag, githubRepoValidation)
	rv.registerTranslation(githubRepoTag, common.MsgInvalidRepoURL)

	v.RegisterStructValidation(signupStructValidation, dto.SignupRequest{})
	rv.registerTranslation(pwdAttrSimTag, pwdAttrSimText)

	return rv
}

func (rv *requestValidator) registerTranslation(tag, text string) {
	_ = rv.validate.RegisterTranslation(
		tag, rv.translator,
		func(t ut.Translator) error { return t.Add(tag, text, false) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

// Validate implements echo.Validator.
func (rv *requestValidator) Validate(i any) error {
	return rv.validate.Struct(i)
}

// message joins the translated field errors into one line.
func (rv *requestValidator) message(errs validator.ValidationErrors) string {
	msgs := make([]string, 0, len(errs))
	for _, fe := range errs {
		msgs = append(msgs, fe.Translate(rv.translator))
	}
	return strings.Join(msgs, "; ")
}

func passwordValidation(fl validator.FieldLevel) bool {
	pass := fl.Field().String()
	if strings.IndexFunc(pass, unicode.IsSpace) >= 0 {
		return false
	}
	return strings.IndexFunc(pass, func(r rune) bool { return !unicode.IsDigit(r) }) >= 0
}

func githubRepoValidation(fl validator.FieldLevel) bool {
	return common.ValidateRepoURL(fl.Field().String()) == nil
}

func signupStructValidation(sl validator.StructLevel) {
	req, ok := sl.Current().Interface().(dto.SignupRequest)
	if !ok || req.Password == "" {
		return
	}
	local, _, _ := strings.Cut(req.Email, "@")
	for _, attr := range []string{req.Name, local} {
		if passwordSimilarity(req.Password, attr) > pwdMaxSim {
			sl.ReportError(req.Password, "password", "Password", pwdAttrSimTag, "")
			return
		}
	}
}

// passwordSimilarity compares pass with a user attribute, ignoring case.
func passwordSimilarity(pass, attr string) float64 {
	pass, attr = strings.ToLower(pass), strings.ToLower(attr)
	if attr == "" {
		return 0
	}
	return difflib.NewMatcher(strings.Split(pass, ""), strings.Split(attr, "")).QuickRatio()
}
