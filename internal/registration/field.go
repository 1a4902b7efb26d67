package registration

import "fmt"

// Field names a provider form field. Values match the JSON names used by the
// onboarding API, not the wire names of the accounts service.
type Field string

const (
	FieldCompanyName                Field = "companyName"
	FieldAddress                    Field = "address"
	FieldEmail                      Field = "email"
	FieldPhone                      Field = "phone"
	FieldPassword                   Field = "password"
	FieldConfirmPassword            Field = "confirmPassword"
	FieldCategory                   Field = "category"
	FieldProfessionalStatus         Field = "professionalStatus"
	FieldBusinessRegistrationNumber Field = "businessRegistrationNumber"
	FieldDescription                Field = "description"
	FieldSchedule                   Field = "schedule"
	FieldOpeningTime                Field = "openingTime"
	FieldClosingTime                Field = "closingTime"
	FieldHourlyRate                 Field = "hourlyRate"
	FieldAcceptsDeposit             Field = "acceptsDeposit"
	FieldPaymentMethods             Field = "paymentMethods"
)

// Fields lists every form field in wizard order. ValidateAll walks it, so the
// first invalid field it reports is also the earliest one on screen.
var Fields = []Field{
	FieldCompanyName,
	FieldAddress,
	FieldEmail,
	FieldPhone,
	FieldPassword,
	FieldConfirmPassword,
	FieldCategory,
	FieldProfessionalStatus,
	FieldBusinessRegistrationNumber,
	FieldDescription,
	FieldSchedule,
	FieldOpeningTime,
	FieldClosingTime,
	FieldHourlyRate,
	FieldAcceptsDeposit,
	FieldPaymentMethods,
}

var fieldSteps = map[Field]Step{
	FieldCompanyName:                StepIdentity,
	FieldAddress:                    StepIdentity,
	FieldEmail:                      StepIdentity,
	FieldPhone:                      StepIdentity,
	FieldPassword:                   StepCredentials,
	FieldConfirmPassword:            StepCredentials,
	FieldCategory:                   StepActivity,
	FieldProfessionalStatus:         StepActivity,
	FieldBusinessRegistrationNumber: StepActivity,
	FieldDescription:                StepActivity,
	FieldSchedule:                   StepAvailability,
	FieldOpeningTime:                StepAvailability,
	FieldClosingTime:                StepAvailability,
	FieldHourlyRate:                 StepAvailability,
	FieldAcceptsDeposit:             StepAvailability,
	FieldPaymentMethods:             StepAvailability,
}

// dependents lists fields whose rule reads another field's value.
var dependents = map[Field][]Field{
	FieldPassword:           {FieldConfirmPassword},
	FieldProfessionalStatus: {FieldBusinessRegistrationNumber},
	FieldOpeningTime:        {FieldClosingTime},
}

// ParseField converts a field name into a Field.
func ParseField(name string) (Field, error) {
	f := Field(name)
	if _, ok := fieldSteps[f]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	return f, nil
}

// StepOf returns the wizard step that owns the field.
func StepOf(f Field) (Step, bool) {
	s, ok := fieldSteps[f]
	return s, ok
}

func (f Field) String() string {
	return string(f)
}
