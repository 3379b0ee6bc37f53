package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	appbilling "github.com/turtacn/fulfill-billing/internal/application/billing"
	"github.com/turtacn/fulfill-billing/internal/domain/billing"
	"github.com/turtacn/fulfill-billing/pkg/errors"
	"github.com/turtacn/fulfill-billing/pkg/types/common"
)

// parsePeriod parses two YYYY-MM-DD dates into a billing period window.
func parsePeriod(from, to string) (common.DateRange, error) {
	f, err := time.Parse("2006-01-02", from)
	if err != nil {
		return common.DateRange{}, errors.New(errors.ErrCodePeriodInvalid, "invalid period start date").WithDetail(from)
	}
	t, err := time.Parse("2006-01-02", to)
	if err != nil {
		return common.DateRange{}, errors.New(errors.ErrCodePeriodInvalid, "invalid period end date").WithDetail(to)
	}
	period, err := common.NewDateRange(f, t)
	if err != nil {
		return common.DateRange{}, errors.Wrap(err, errors.ErrCodePeriodInvalid, "invalid billing period")
	}
	return period, nil
}

// NewInvoiceCmd creates the invoice command tree.
func NewInvoiceCmd(deps Dependencies, opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "invoice",
		Short: "Compute and manage fulfillment invoices",
	}

	cmd.AddCommand(
		newInvoiceComputeCmd(deps, opts),
		newInvoiceGetCmd(deps, opts),
		newInvoiceHistoryCmd(deps, opts),
	)
	return cmd
}

// invoiceView renders an invoice with its advisories in every output format.
type invoiceView struct {
	Invoice    *billing.Invoice   `json:"invoice"`
	Advisories []billing.Advisory `json:"advisories,omitempty"`
}

func (v invoiceView) TableHeaders() []string {
	return []string{"LINE", "QTY", "UNIT PRICE", "AMOUNT"}
}

func (v invoiceView) TableRows() [][]string {
	rows := make([][]string, 0, len(v.Invoice.Items)+1)
	for _, item := range v.Invoice.Items {
		rows = append(rows, []string{
			item.Label,
			strconv.FormatInt(item.Qty, 10),
			strconv.FormatInt(item.UnitPrice, 10),
			strconv.FormatInt(item.Amount, 10),
		})
	}
	rows = append(rows, []string{"TOTAL", "", "", strconv.FormatInt(v.Invoice.TotalAmount, 10)})
	return rows
}

func (v invoiceView) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Invoice %s — %s (%s, %s)\n",
		v.Invoice.ID, v.Invoice.Vendor, v.Invoice.Period.String(), v.Invoice.Status)
	for _, item := range v.Invoice.Items {
		fmt.Fprintf(&sb, "  %-24s %8d x %8d = %10d\n",
			item.Label, item.Qty, item.UnitPrice, item.Amount)
	}
	fmt.Fprintf(&sb, "  TOTAL %d %s", v.Invoice.TotalAmount, v.Invoice.Currency)
	for _, adv := range v.Advisories {
		fmt.Fprintf(&sb, "\n  ! %s", adv.Message)
	}
	return sb.String()
}

func newInvoiceComputeCmd(deps Dependencies, opts *RootOptions) *cobra.Command {
	var (
		from     string
		to       string
		finalize bool
	)

	cmd := &cobra.Command{
		Use:   "compute <vendor>",
		Short: "Compute an invoice for a vendor over a billing period",
		Long:  "Computes every fee line from the warehouse source logs for the period.\nWithout --finalize the result is a draft preview and nothing is persisted.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			period, err := parsePeriod(from, to)
			if err != nil {
				return err
			}

			res, err := deps.Invoices.Compute(cmd.Context(), appbilling.ComputeRequest{
				VendorName: args[0],
				Period:     period,
			})
			if err != nil {
				return err
			}

			if finalize {
				if err := deps.Invoices.Finalize(cmd.Context(), res.Invoice); err != nil {
					return err
				}
			}
			return printResult(cmd, opts, invoiceView{Invoice: res.Invoice, Advisories: res.Advisories})
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "period start date (YYYY-MM-DD) [REQUIRED]")
	cmd.Flags().StringVar(&to, "to", "", "period end date (YYYY-MM-DD) [REQUIRED]")
	cmd.Flags().BoolVar(&finalize, "finalize", false, "persist the invoice as final after computing")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func newInvoiceGetCmd(deps Dependencies, opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <invoice-id>",
		Short: "Show one invoice with its line items",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inv, err := deps.Invoices.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printResult(cmd, opts, invoiceView{Invoice: inv})
		},
	}
}

// invoiceHistory renders a vendor's invoice headers.
type invoiceHistory struct {
	Invoices []*billing.Invoice `json:"invoices"`
}

func (h invoiceHistory) TableHeaders() []string {
	return []string{"ID", "PERIOD", "STATUS", "TOTAL"}
}

func (h invoiceHistory) TableRows() [][]string {
	rows := make([][]string, 0, len(h.Invoices))
	for _, inv := range h.Invoices {
		rows = append(rows, []string{
			inv.ID,
			inv.Period.String(),
			string(inv.Status),
			strconv.FormatInt(inv.TotalAmount, 10),
		})
	}
	return rows
}

func (h invoiceHistory) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d invoice(s)", len(h.Invoices))
	for _, inv := range h.Invoices {
		fmt.Fprintf(&sb, "\n  %s  %s  %s  %d", inv.ID, inv.Period.String(), inv.Status, inv.TotalAmount)
	}
	return sb.String()
}

func newInvoiceHistoryCmd(deps Dependencies, opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "history <vendor>",
		Short: "List a vendor's invoices, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			invoices, err := deps.Invoices.History(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printResult(cmd, opts, invoiceHistory{Invoices: invoices})
		},
	}
}
