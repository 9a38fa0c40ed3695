package main

import (
	"github.com/spf13/cobra"

	"github.com/seastack/hostpanel/internal/domain"
)

func refFlags(cmd *cobra.Command, ref *domain.AccountRef) {
	cmd.Flags().StringVar(&ref.CustomerID, "customer-id", "", "Vendor customer identifier")
	cmd.Flags().StringVar(&ref.SubscriptionID, "subscription-id", "", "Vendor subscription or package identifier")
}

func newCreateCmd() *cobra.Command {
	var params domain.CreateParams
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Provision a new hosting account",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := provisioner()
			if err != nil {
				return err
			}
			account, err := p.Create(cmd.Context(), &params)
			if err != nil {
				return err
			}
			return printJSON(account)
		},
	}
	cmd.Flags().StringVar(&params.CustomerID, "customer-id", "", "Existing customer identifier (skips customer creation)")
	cmd.Flags().StringVar(&params.Email, "email", "", "Customer email address")
	cmd.Flags().StringVar(&params.Password, "password", "", "Customer password (generated when empty)")
	cmd.Flags().StringVar(&params.Domain, "domain", "", "Domain to host")
	cmd.Flags().StringVar(&params.Package, "package", "", "Plan name or numeric id")
	return cmd
}

func newSuspendCmd() *cobra.Command {
	var params domain.SuspendParams
	cmd := &cobra.Command{
		Use:   "suspend",
		Short: "Suspend a hosting account",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := provisioner()
			if err != nil {
				return err
			}
			account, err := p.Suspend(cmd.Context(), &params)
			if err != nil {
				return err
			}
			return printJSON(account)
		},
	}
	refFlags(cmd, &params.AccountRef)
	cmd.Flags().StringVar(&params.Reason, "reason", "", "Suspension reason")
	return cmd
}

func newUnsuspendCmd() *cobra.Command {
	var ref domain.AccountRef
	cmd := &cobra.Command{
		Use:   "unsuspend",
		Short: "Reactivate a suspended hosting account",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := provisioner()
			if err != nil {
				return err
			}
			account, err := p.Unsuspend(cmd.Context(), ref)
			if err != nil {
				return err
			}
			return printJSON(account)
		},
	}
	refFlags(cmd, &ref)
	return cmd
}

func newTerminateCmd() *cobra.Command {
	var ref domain.AccountRef
	cmd := &cobra.Command{
		Use:   "terminate",
		Short: "Delete a hosting account",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := provisioner()
			if err != nil {
				return err
			}
			if err := p.Terminate(cmd.Context(), ref); err != nil {
				return err
			}
			return printJSON(map[string]string{"message": "Account Terminated"})
		},
	}
	refFlags(cmd, &ref)
	return cmd
}

func newInfoCmd() *cobra.Command {
	var ref domain.AccountRef
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Show the current account record",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := provisioner()
			if err != nil {
				return err
			}
			account, err := p.GetInfo(cmd.Context(), ref)
			if err != nil {
				return err
			}
			return printJSON(account)
		},
	}
	refFlags(cmd, &ref)
	return cmd
}

func newUsageCmd() *cobra.Command {
	var ref domain.AccountRef
	cmd := &cobra.Command{
		Use:   "usage",
		Short: "Show current resource usage",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := provisioner()
			if err != nil {
				return err
			}
			usage, err := p.GetUsage(cmd.Context(), ref)
			if err != nil {
				return err
			}
			return printJSON(usage)
		},
	}
	refFlags(cmd, &ref)
	return cmd
}

func newChangePasswordCmd() *cobra.Command {
	var params domain.ChangePasswordParams
	cmd := &cobra.Command{
		Use:   "change-password",
		Short: "Update or reset the account owner's password",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := provisioner()
			if err != nil {
				return err
			}
			if err := p.ChangePassword(cmd.Context(), &params); err != nil {
				return err
			}
			return printJSON(map[string]string{"message": "Password Updated"})
		},
	}
	refFlags(cmd, &params.AccountRef)
	cmd.Flags().StringVar(&params.Email, "email", "", "Owner email address")
	cmd.Flags().StringVar(&params.Password, "password", "", "New password")
	return cmd
}

func newChangePackageCmd() *cobra.Command {
	var params domain.ChangePackageParams
	cmd := &cobra.Command{
		Use:   "change-package",
		Short: "Move the account to a different plan",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := provisioner()
			if err != nil {
				return err
			}
			account, err := p.ChangePackage(cmd.Context(), &params)
			if err != nil {
				return err
			}
			return printJSON(account)
		},
	}
	refFlags(cmd, &params.AccountRef)
	cmd.Flags().StringVar(&params.Package, "package", "", "Target plan name or numeric id")
	return cmd
}

func newLoginURLCmd() *cobra.Command {
	var params domain.LoginURLParams
	cmd := &cobra.Command{
		Use:   "login-url",
		Short: "Print a control-panel login URL for the account",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := provisioner()
			if err != nil {
				return err
			}
			url, err := p.LoginURL(cmd.Context(), &params)
			if err != nil {
				return err
			}
			return printJSON(map[string]string{"url": url})
		},
	}
	refFlags(cmd, &params.AccountRef)
	cmd.Flags().StringVar(&params.Email, "email", "", "Owner email address")
	return cmd
}
