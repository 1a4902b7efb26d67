package registration

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	// MinPasswordLength is the provider password minimum.
	MinPasswordLength = 8
	// MinCompanyNameLength counts runes after trimming.
	MinCompanyNameLength = 2
	// MaxDescriptionLength counts runes.
	MaxDescriptionLength = 2000
	// PhoneDigits is the length of a national phone number.
	PhoneDigits = 10
	// SiretDigits is the length of a French business registration number.
	SiretDigits = 14
)

// User-facing messages. The product ships in French.
const (
	msgCompanyNameRequired = "Le nom de l'entreprise est requis"
	msgCompanyNameShort    = "Le nom de l'entreprise doit contenir au moins 2 caractères"
	msgEmailRequired       = "L'email est requis"
	msgEmailInvalid        = "L'email est invalide"
	msgPhoneRequired       = "Le numéro de téléphone est requis"
	msgPhoneInvalid        = "Le numéro de téléphone doit contenir 10 chiffres"
	msgPasswordRequired    = "Le mot de passe est requis"
	msgPasswordShort       = "Le mot de passe doit contenir au moins 8 caractères"
	msgConfirmRequired     = "Veuillez confirmer le mot de passe"
	msgPasswordMismatch    = "Les mots de passe ne correspondent pas"
	msgCategoryRequired    = "La catégorie est requise"
	msgCategoryInvalid     = "Catégorie inconnue"
	msgStatusRequired      = "Le statut est requis"
	msgStatusInvalid       = "Statut inconnu"
	msgSiretRequired       = "Le numéro SIRET est requis pour un professionnel"
	msgSiretInvalid        = "Le numéro SIRET doit contenir 14 chiffres"
	msgDescriptionLong     = "La description ne doit pas dépasser 2000 caractères"
	msgOpeningInvalid      = "L'heure d'ouverture doit être au format HH:MM"
	msgClosingInvalid      = "L'heure de fermeture doit être au format HH:MM"
	msgClosingBeforeOpen   = "L'heure de fermeture doit être après l'heure d'ouverture"
	msgHourlyRateInvalid   = "Le tarif horaire doit être un nombre positif"
)

var (
	emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneRe = regexp.MustCompile(fmt.Sprintf(`^[0-9]{%d}$`, PhoneDigits))
	siretRe = regexp.MustCompile(fmt.Sprintf(`^[0-9]{%d}$`, SiretDigits))
	clockRe = regexp.MustCompile(`^([01][0-9]|2[0-3]):([0-5][0-9])$`)
	rateRe  = regexp.MustCompile(`^[0-9]+([.][0-9]+)?$`)

	digitSeparators = strings.NewReplacer(" ", "", ".", "", "-", "")
)

// Rule inspects the current form and returns an error message, or "" when the
// field is valid. Rules never mutate the form.
type Rule func(*Form) string

var rules = map[Field]Rule{
	FieldCompanyName:                companyNameRule,
	FieldAddress:                    optional,
	FieldEmail:                      emailRule,
	FieldPhone:                      phoneRule,
	FieldPassword:                   passwordRule,
	FieldConfirmPassword:            confirmPasswordRule,
	FieldCategory:                   categoryRule,
	FieldProfessionalStatus:         statusRule,
	FieldBusinessRegistrationNumber: siretRule,
	FieldDescription:                descriptionRule,
	FieldSchedule:                   optional,
	FieldOpeningTime:                openingTimeRule,
	FieldClosingTime:                closingTimeRule,
	FieldHourlyRate:                 hourlyRateRule,
	FieldAcceptsDeposit:             optional,
	FieldPaymentMethods:             optional,
}

// RuleFor returns the validation rule of a field.
func RuleFor(f Field) (Rule, bool) {
	r, ok := rules[f]
	return r, ok
}

func optional(*Form) string { return "" }

func companyNameRule(f *Form) string {
	name := trimmed(f.CompanyName)
	switch {
	case name == "":
		return msgCompanyNameRequired
	case utf8.RuneCountInString(name) < MinCompanyNameLength:
		return msgCompanyNameShort
	}
	return ""
}

func emailRule(f *Form) string {
	email := trimmed(f.Email)
	switch {
	case email == "":
		return msgEmailRequired
	case !emailRe.MatchString(email):
		return msgEmailInvalid
	}
	return ""
}

func phoneRule(f *Form) string {
	if trimmed(f.Phone) == "" {
		return msgPhoneRequired
	}
	if !phoneRe.MatchString(normalizeDigits(f.Phone)) {
		return msgPhoneInvalid
	}
	return ""
}

func passwordRule(f *Form) string {
	switch {
	case f.Password == "":
		return msgPasswordRequired
	case utf8.RuneCountInString(f.Password) < MinPasswordLength:
		return msgPasswordShort
	}
	return ""
}

func confirmPasswordRule(f *Form) string {
	switch {
	case f.ConfirmPassword == "":
		return msgConfirmRequired
	case f.ConfirmPassword != f.Password:
		return msgPasswordMismatch
	}
	return ""
}

func categoryRule(f *Form) string {
	switch {
	case f.Category == "":
		return msgCategoryRequired
	case !f.Category.Valid():
		return msgCategoryInvalid
	}
	return ""
}

func statusRule(f *Form) string {
	switch {
	case f.ProfessionalStatus == "":
		return msgStatusRequired
	case !f.ProfessionalStatus.Valid():
		return msgStatusInvalid
	}
	return ""
}

// siretRule is required only for professionals. An individual may leave it
// empty; a value that is present is still checked.
func siretRule(f *Form) string {
	siret := normalizeDigits(f.BusinessRegistrationNumber)
	if siret == "" {
		if f.ProfessionalStatus == StatusProfessional {
			return msgSiretRequired
		}
		return ""
	}
	if !siretRe.MatchString(siret) {
		return msgSiretInvalid
	}
	return ""
}

func descriptionRule(f *Form) string {
	if utf8.RuneCountInString(f.Description) > MaxDescriptionLength {
		return msgDescriptionLong
	}
	return ""
}

func openingTimeRule(f *Form) string {
	if _, ok := minutesOfDay(f.openingTime()); !ok {
		return msgOpeningInvalid
	}
	return ""
}

func closingTimeRule(f *Form) string {
	closing, ok := minutesOfDay(f.closingTime())
	if !ok {
		return msgClosingInvalid
	}
	opening, ok := minutesOfDay(f.openingTime())
	if !ok {
		// reported on openingTime
		return ""
	}
	if closing <= opening {
		return msgClosingBeforeOpen
	}
	return ""
}

func hourlyRateRule(f *Form) string {
	rate := normalizeRate(f.HourlyRate)
	if rate == "" {
		return ""
	}
	if !rateRe.MatchString(rate) {
		return msgHourlyRateInvalid
	}
	return ""
}

func minutesOfDay(clock string) (int, bool) {
	m := clockRe.FindStringSubmatch(strings.TrimSpace(clock))
	if m == nil {
		return 0, false
	}
	h, _ := strconv.Atoi(m[1])
	mins, _ := strconv.Atoi(m[2])
	return h*60 + mins, true
}

func trimmed(s string) string {
	return strings.TrimSpace(s)
}

func normalizeDigits(s string) string {
	return digitSeparators.Replace(strings.TrimSpace(s))
}

func normalizeRate(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
}
