package main

import (
	"encoding/json"

	"github.com/jrsteele09/flow-client/apiclient"
	"github.com/jrsteele09/flow-client/users"
	"github.com/spf13/cobra"
)

// consentCmd shows the recorded consents, or changes marketing consent when
// the flag is given.
func (a *app) consentCmd() *cobra.Command {
	var marketing bool
	cmd := &cobra.Command{
		Use:   "consent [--marketing=true|false]",
		Short: "show or change consent choices",
		Args:  cobra.NoArgs,
	}
	fs := cmd.Flags()
	fs.BoolVar(&marketing, "marketing", false, "receive marketing email")
	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		req := users.ConsentUpdateRequest{MarketingConsent: optional(fs, "marketing", marketing)}
		resp := authed(ctx, a, func(c *apiclient.Client) apiclient.Response[users.ConsentStatus] {
			if req.MarketingConsent == nil {
				return c.GetConsent(ctx)
			}
			return c.UpdateConsent(ctx, req)
		})
		if !resp.OK() {
			return a.failure(resp.Error, nil)
		}
		if resp.Data.PrivacyConsentAt != nil {
			a.printf("Privacy policy accepted: %s\n", resp.Data.PrivacyConsentAt.Format("2006-01-02"))
		}
		a.printf("Data processing: %t\n", resp.Data.DataProcessingConsent)
		a.printf("Marketing email: %t\n", resp.Data.MarketingConsent)
		return nil
	}
	return cmd
}

// exportCmd prints everything the backend holds about the account as JSON.
func (a *app) exportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "download your data as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			resp := authed(ctx, a, func(c *apiclient.Client) apiclient.Response[users.DataExport] {
				return c.ExportData(ctx)
			})
			if !resp.OK() {
				return a.failure(resp.Error, nil)
			}
			enc := json.NewEncoder(a.out)
			enc.SetIndent("", "  ")
			return enc.Encode(resp.Data)
		},
	}
}

func (a *app) deleteAccountCmd() *cobra.Command {
	var confirm bool
	cmd := &cobra.Command{
		Use:   "delete-account --confirm",
		Short: "erase the account and sign out everywhere",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res := a.store.DeleteAccount(cmd.Context(), confirm)
			if !res.Success {
				return a.failure(res.Error, res.FieldErrors)
			}
			a.printf("%s\n", res.Message)
			return nil
		},
	}
	cmd.Flags().BoolVar(&confirm, "confirm", false, "confirm the account should be erased")
	return cmd
}
