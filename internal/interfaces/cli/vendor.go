package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/fulfill-billing/internal/domain/vendor"
	"github.com/turtacn/fulfill-billing/pkg/types/common"
)

// NewVendorCmd creates the vendor registry command tree.
func NewVendorCmd(deps Dependencies, opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vendor",
		Short: "Manage vendors and their source log aliases",
	}

	cmd.AddCommand(
		newVendorAddCmd(deps, opts),
		newVendorListCmd(deps, opts),
		newVendorDeleteCmd(deps),
		newVendorAliasCmd(deps, opts),
		newVendorNamesCmd(deps, opts),
	)
	return cmd
}

func newVendorAddCmd(deps Dependencies, opts *RootOptions) *cobra.Command {
	var (
		ratePlan string
		barcode  bool
		voidFill bool
		polyBag  bool
	)

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Register a vendor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := vendor.NewVendor(args[0], common.RatePlan(ratePlan))
			if err != nil {
				return err
			}
			v.Flags.Barcode = barcode
			v.Flags.VoidFill = voidFill
			v.Flags.PolyBag = polyBag

			if err := deps.VendorRepo.Save(cmd.Context(), v); err != nil {
				return err
			}
			return printResult(cmd, opts, fmt.Sprintf("vendor %q registered (plan %s)", v.Name, v.RatePlan))
		},
	}

	cmd.Flags().StringVar(&ratePlan, "rate-plan", string(common.RatePlanStandard), "zone rate plan")
	cmd.Flags().BoolVar(&barcode, "barcode", false, "enable the barcode labeling fee")
	cmd.Flags().BoolVar(&voidFill, "void-fill", false, "enable the void fill fee")
	cmd.Flags().BoolVar(&polyBag, "poly-bag", false, "enable the poly bag fee")
	return cmd
}

// vendorList renders vendors as a table.
type vendorList struct {
	Vendors []*vendor.Vendor `json:"vendors"`
}

func (l vendorList) TableHeaders() []string {
	return []string{"NAME", "RATE PLAN", "SIZE BUCKET"}
}

func (l vendorList) TableRows() [][]string {
	rows := make([][]string, 0, len(l.Vendors))
	for _, v := range l.Vendors {
		rows = append(rows, []string{v.Name, string(v.RatePlan), v.SizeBucket})
	}
	return rows
}

func (l vendorList) String() string {
	names := make([]string, 0, len(l.Vendors))
	for _, v := range l.Vendors {
		names = append(names, v.Name)
	}
	return fmt.Sprintf("%d vendor(s): %s", len(l.Vendors), strings.Join(names, ", "))
}

func newVendorListCmd(deps Dependencies, opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered vendors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			vendors, err := deps.VendorRepo.List(cmd.Context())
			if err != nil {
				return err
			}
			return printResult(cmd, opts, vendorList{Vendors: vendors})
		},
	}
}

func newVendorDeleteCmd(deps Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a vendor and all of its aliases",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := deps.Identity.DeleteVendor(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "vendor %q deleted\n", args[0])
			return nil
		},
	}
}

func newVendorAliasCmd(deps Dependencies, opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "alias",
		Short: "Manage vendor aliases per source log type",
	}

	var sourceType string

	addCmd := &cobra.Command{
		Use:   "add <vendor> <alias>",
		Short: "Register an alias for a vendor in one source log type",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := deps.Identity.RegisterAlias(cmd.Context(),
				args[1], args[0], common.SourceType(sourceType))
			if err != nil {
				return err
			}
			return printResult(cmd, opts,
				fmt.Sprintf("alias %q -> %q registered for %s", a.Alias, a.Vendor, a.SourceType))
		},
	}
	addCmd.Flags().StringVar(&sourceType, "source-type", string(common.SourceAll), "source log type the alias applies to")

	var removeSourceType string
	removeCmd := &cobra.Command{
		Use:   "remove <vendor> <alias>",
		Short: "Remove an alias registration",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := deps.Identity.RemoveAlias(cmd.Context(),
				args[1], args[0], common.SourceType(removeSourceType))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "alias %q removed\n", args[1])
			return nil
		},
	}
	removeCmd.Flags().StringVar(&removeSourceType, "source-type", string(common.SourceAll), "source log type the alias applies to")

	cmd.AddCommand(addCmd, removeCmd)
	return cmd
}

func newVendorNamesCmd(deps Dependencies, opts *RootOptions) *cobra.Command {
	var sourceType string

	cmd := &cobra.Command{
		Use:   "names <vendor>",
		Short: "Show every spelling a vendor is known by in a source log type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := deps.Identity.ResolveNames(cmd.Context(),
				args[0], common.SourceType(sourceType))
			if err != nil {
				return err
			}
			return printResult(cmd, opts, strings.Join(names, "\n"))
		},
	}
	cmd.Flags().StringVar(&sourceType, "source-type", string(common.SourceAll), "source log type to resolve against")
	return cmd
}
