// Command onboard creates provider and client accounts from the command line,
// with the same validation the API applies.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/janisto/provider-onboarding/internal/config"
	"github.com/janisto/provider-onboarding/internal/registration"
	"github.com/janisto/provider-onboarding/internal/service/accounts"
)

type options struct {
	baseURL string
	timeout time.Duration
	dryRun  bool
}

// service returns the accounts backend selected by the flags.
func (o *options) service() accounts.Service {
	if o.dryRun {
		return accounts.NewMockService()
	}
	return accounts.NewClient(&http.Client{Timeout: o.timeout}, accounts.WithBaseURL(o.baseURL))
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:          "onboard",
		Short:        "Create provider and client accounts",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&opts.baseURL, "accounts-url",
		envOr("ACCOUNTS_BASE_URL", config.DefaultAccountsBaseURL), "accounts service base URL (env ACCOUNTS_BASE_URL)")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", config.DefaultAccountsTimeout, "request timeout")
	root.PersistentFlags().BoolVar(&opts.dryRun, "dry-run", false, "validate and submit to an in-memory accounts service")

	root.AddCommand(newProviderCmd(opts), newClientCmd(opts), newLoginCmd(opts))
	return root
}

func newProviderCmd(opts *options) *cobra.Command {
	var (
		form    registration.Form
		payment registration.PaymentMethods
	)
	cmd := &cobra.Command{
		Use:   "provider",
		Short: "Register a service provider",
		RunE: func(cmd *cobra.Command, _ []string) error {
			form.PaymentMethods = payment
			return registerProvider(cmd.Context(), cmd.OutOrStdout(), opts.service(), form)
		},
	}
	f := cmd.Flags()
	f.StringVar(&form.CompanyName, "company-name", "", "company name")
	f.StringVar(&form.Address, "address", "", "postal address")
	f.StringVar(&form.Email, "email", "", "contact email")
	f.StringVar(&form.Phone, "phone", "", "phone number (10 digits)")
	f.StringVar(&form.Password, "password", "", "password")
	f.StringVar(&form.ConfirmPassword, "confirm-password", "", "password confirmation")
	f.StringVar((*string)(&form.Category), "category", "", "haircut|cleaning|cooking|handiwork|gardening|electricity|plumbing|other")
	f.StringVar((*string)(&form.ProfessionalStatus), "status", "", "professional|individual")
	f.StringVar(&form.BusinessRegistrationNumber, "siret", "", "SIRET number, required for professionals")
	f.StringVar(&form.Description, "description", "", "description")
	f.StringVar(&form.Schedule, "schedule", "", "free-text availability")
	f.StringVar(&form.OpeningTime, "opening-time", registration.DefaultOpeningTime, "opening time HH:MM")
	f.StringVar(&form.ClosingTime, "closing-time", registration.DefaultClosingTime, "closing time HH:MM")
	f.StringVar(&form.HourlyRate, "hourly-rate", "", "hourly rate in euros")
	f.BoolVar(&form.AcceptsDeposit, "deposit", false, "a deposit is taken")
	f.BoolVar(&payment.Card, "card", false, "card payments accepted")
	f.BoolVar(&payment.Cash, "cash", false, "cash payments accepted")
	f.BoolVar(&payment.Check, "check", false, "cheque payments accepted")
	return cmd
}

// registerProvider drives a wizard the way the app does: fill every step,
// then submit once from the last one.
func registerProvider(ctx context.Context, out io.Writer, svc accounts.Service, form registration.Form) error {
	w := registration.New(svc, nil)
	if err := fillWizard(w, form); err != nil {
		return err
	}
	if err := w.GoTo(registration.LastStep); err != nil {
		return err
	}
	success, err := w.Submit(ctx)
	if err != nil {
		return reportFailure(out, err)
	}
	fmt.Fprintln(out, success.Message)
	if success.UserID != "" {
		fmt.Fprintf(out, "id: %s\n", success.UserID)
	}
	return nil
}

func fillWizard(w *registration.Wizard, form registration.Form) error {
	values := []struct {
		field registration.Field
		value any
	}{
		{registration.FieldCompanyName, form.CompanyName},
		{registration.FieldAddress, form.Address},
		{registration.FieldEmail, form.Email},
		{registration.FieldPhone, form.Phone},
		{registration.FieldPassword, form.Password},
		{registration.FieldConfirmPassword, form.ConfirmPassword},
		{registration.FieldCategory, form.Category},
		{registration.FieldProfessionalStatus, form.ProfessionalStatus},
		{registration.FieldBusinessRegistrationNumber, form.BusinessRegistrationNumber},
		{registration.FieldDescription, form.Description},
		{registration.FieldSchedule, form.Schedule},
		{registration.FieldOpeningTime, form.OpeningTime},
		{registration.FieldClosingTime, form.ClosingTime},
		{registration.FieldHourlyRate, form.HourlyRate},
		{registration.FieldAcceptsDeposit, form.AcceptsDeposit},
		{registration.FieldPaymentMethods, form.PaymentMethods},
	}
	for _, v := range values {
		if err := w.UpdateField(v.field, v.value); err != nil {
			return err
		}
	}
	return nil
}

func newClientCmd(opts *options) *cobra.Command {
	var form registration.ClientForm
	cmd := &cobra.Command{
		Use:   "client",
		Short: "Register a client",
		RunE: func(cmd *cobra.Command, _ []string) error {
			success, err := registration.RegisterClient(cmd.Context(), opts.service(), form)
			if err != nil {
				return reportFailure(cmd.OutOrStdout(), err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), success.Message)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&form.Name, "name", "", "full name")
	f.StringVar(&form.Email, "email", "", "email")
	f.StringVar(&form.Phone, "phone", "", "phone number")
	f.StringVar(&form.Password, "password", "", "password")
	f.StringVar(&form.ConfirmPassword, "confirm-password", "", "password confirmation")
	return cmd
}

func newLoginCmd(opts *options) *cobra.Command {
	var creds accounts.Credentials
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and print the session token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := opts.service().Login(cmd.Context(), creds)
			if err != nil {
				var upstream *accounts.UpstreamError
				if errors.As(err, &upstream) && upstream.ServerMessage != "" {
					return errors.New(upstream.ServerMessage)
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "role: %s\ntoken: %s\n", s.Role, s.Token)
			return nil
		},
	}
	cmd.Flags().StringVar(&creds.Email, "email", "", "account email")
	cmd.Flags().StringVar(&creds.Password, "password", "", "account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

// reportFailure prints what the user has to fix and returns a short error for
// the exit status.
func reportFailure(out io.Writer, err error) error {
	var subErr *registration.SubmissionError
	if !errors.As(err, &subErr) {
		return err
	}
	if subErr.Kind == registration.KindValidation {
		for _, f := range append([]registration.Field{registration.FieldName}, registration.Fields...) {
			if msg, ok := subErr.Fields[f]; ok {
				fmt.Fprintf(out, "%s: %s\n", f, msg)
			}
		}
		return fmt.Errorf("%d invalid field(s)", len(subErr.Fields))
	}
	return errors.New(subErr.Message)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
