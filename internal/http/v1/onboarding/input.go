package onboarding

// DraftCreateInput for POST /registrations/provider
type DraftCreateInput struct{}

// DraftPathInput addresses one draft.
type DraftPathInput struct {
	ID string `path:"id" format:"uuid" doc:"Draft identifier"`
}

// DraftUpdateInput for PATCH /registrations/provider/{id}. Only provided
// fields are written. Values are checked by the wizard rules, not by the
// schema, so that every message comes from the same place.
type DraftUpdateInput struct {
	ID       string `path:"id"        format:"uuid" doc:"Draft identifier"`
	Validate bool   `query:"validate"               doc:"Validate each provided field after writing it"`
	Body     struct {
		CompanyName                *string         `json:"companyName,omitempty"                maxLength:"200"  doc:"Company name"`
		Address                    *string         `json:"address,omitempty"                    maxLength:"500"  doc:"Postal address"`
		Email                      *string         `json:"email,omitempty"                      maxLength:"254"  doc:"Contact email"`
		Phone                      *string         `json:"phone,omitempty"                      maxLength:"32"   doc:"Phone number"`
		Password                   *string         `json:"password,omitempty"                   maxLength:"128"  doc:"Password"`
		ConfirmPassword            *string         `json:"confirmPassword,omitempty"            maxLength:"128"  doc:"Password confirmation"`
		Category                   *string         `json:"category,omitempty"                   maxLength:"32"   doc:"Service category"`
		ProfessionalStatus         *string         `json:"professionalStatus,omitempty"         maxLength:"32"   doc:"professional or individual"`
		BusinessRegistrationNumber *string         `json:"businessRegistrationNumber,omitempty" maxLength:"32"   doc:"SIRET"`
		Description                *string         `json:"description,omitempty"                maxLength:"4000" doc:"Free description"`
		Schedule                   *string         `json:"schedule,omitempty"                   maxLength:"500"  doc:"Free-text availability"`
		OpeningTime                *string         `json:"openingTime,omitempty"                maxLength:"5"    doc:"Opening time (HH:MM)"`
		ClosingTime                *string         `json:"closingTime,omitempty"                maxLength:"5"    doc:"Closing time (HH:MM)"`
		HourlyRate                 *string         `json:"hourlyRate,omitempty"                 maxLength:"16"   doc:"Hourly rate"`
		AcceptsDeposit             *bool           `json:"acceptsDeposit,omitempty"                              doc:"Whether a deposit is taken"`
		PaymentMethods             *PaymentMethods `json:"paymentMethods,omitempty"                              doc:"Accepted payment methods"`
	}
}

// DraftValidateInput for POST /registrations/provider/{id}/validate
type DraftValidateInput struct {
	ID    string `path:"id"     format:"uuid" doc:"Draft identifier"`
	Field string `query:"field"               doc:"Validate only this field; every field when empty" example:"email"`
}

// DraftStepInput for POST /registrations/provider/{id}/step
type DraftStepInput struct {
	ID   string `path:"id" format:"uuid" doc:"Draft identifier"`
	Body struct {
		Step int `json:"step" minimum:"1" maximum:"4" doc:"Step to show" example:"3"`
	}
}

// ClientRegisterInput for POST /registrations/client
type ClientRegisterInput struct {
	Body struct {
		Name            string `json:"name"            maxLength:"200" doc:"Full name"             example:"Marie Curie"`
		Email           string `json:"email"           maxLength:"254" doc:"Email"                 example:"marie@example.fr"`
		Phone           string `json:"phone"           maxLength:"32"  doc:"Phone number"          example:"0102030405"`
		Password        string `json:"password"        maxLength:"128" doc:"Password"`
		ConfirmPassword string `json:"confirmPassword" maxLength:"128" doc:"Password confirmation"`
	}
}
