package onboarding

// DraftCreateOutput for POST /registrations/provider (201 Created)
type DraftCreateOutput struct {
	Location string `header:"Location" doc:"URL of the created draft"`
	Body     ProviderDraft
}

// DraftOutput returns the state of a draft.
type DraftOutput struct {
	Body ProviderDraft
}

// DraftValidateOutput for POST /registrations/provider/{id}/validate
type DraftValidateOutput struct {
	Body Validation
}

// RegistrationOutput for successful account creation (201 Created)
type RegistrationOutput struct {
	Body Registration
}
