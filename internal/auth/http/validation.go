package http

import (
	"net/http"
	"net/mail"
	"regexp"
	"strings"
	"unicode"

	"github.com/Noctuaa/coach-appointment-manager/pkg/httpx"
)

// fieldError mirrors the shape the front-end expects for form-level errors.
type fieldError struct {
	Field string `json:"field"`
	Msg   string `json:"msg"`
}

type validationErrors struct {
	Errors []fieldError `json:"errors"`
}

var nameRe = regexp.MustCompile(`^[a-zA-Z\s-]+$`)

const specialChars = `!@#$%^&*(),.?":{}|<>_-`

// validateSignup checks the signup form. Password policy: at least 8
// characters, one digit, one special character, one uppercase and one
// lowercase letter, and the confirmation must match.
func validateSignup(req signupRequest) []fieldError {
	var errs []fieldError

	if _, err := mail.ParseAddress(req.Email); err != nil {
		errs = append(errs, fieldError{Field: "email", Msg: "Email Invalide"})
	}

	errs = append(errs, validateName("lastname", "nom", req.Lastname)...)
	errs = append(errs, validateName("firstname", "prénom", req.Firstname)...)

	if len(req.Password) < 8 {
		errs = append(errs, fieldError{Field: "password", Msg: "Doit contenir au moins 8 caractères"})
	}
	if !strings.ContainsFunc(req.Password, unicode.IsDigit) {
		errs = append(errs, fieldError{Field: "password", Msg: "Doit contenir au moins un chiffre"})
	}
	if !strings.ContainsAny(req.Password, specialChars) {
		errs = append(errs, fieldError{Field: "password", Msg: `Doit contenir au moins un caractère spécial ( !@#$%^&*(),.?":{}|<>_- )`})
	}
	if !strings.ContainsFunc(req.Password, unicode.IsUpper) {
		errs = append(errs, fieldError{Field: "password", Msg: "Doit contenir au moins une lettre majuscule"})
	}
	if !strings.ContainsFunc(req.Password, unicode.IsLower) {
		errs = append(errs, fieldError{Field: "password", Msg: "Doit contenir au moins une lettre minuscule"})
	}
	if req.ConfirmPassword != req.Password {
		errs = append(errs, fieldError{Field: "confirmPassword", Msg: "Les mots de passe ne correspondent pas"})
	}

	return errs
}

func validateName(field, label, value string) []fieldError {
	var errs []fieldError
	if value == "" {
		return append(errs, fieldError{Field: field, Msg: "Le " + label + " est requis"})
	}
	if len(value) < 3 || len(value) > 50 {
		errs = append(errs, fieldError{Field: field, Msg: "Le " + label + " doit contenir entre 3 et 50 caractères"})
	}
	if !nameRe.MatchString(value) {
		errs = append(errs, fieldError{Field: field, Msg: "Le " + label + " ne doit contenir que des lettres, des espaces et des tirets"})
	}
	return errs
}

// validateLogin checks the login form: a plausible email and a non-empty
// password. Anything beyond that is the credential service's business.
func validateLogin(req loginRequest) []fieldError {
	var errs []fieldError
	if _, err := mail.ParseAddress(req.Email); err != nil {
		errs = append(errs, fieldError{Field: "email", Msg: "Email Invalide"})
	}
	if req.Password == "" {
		errs = append(errs, fieldError{Field: "password", Msg: "Mot de passe requis."})
	}
	return errs
}

func writeValidationErrors(w http.ResponseWriter, errs []fieldError) {
	httpx.WriteJSON(w, http.StatusBadRequest, validationErrors{Errors: errs})
}
